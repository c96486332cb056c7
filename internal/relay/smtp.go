package relay

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

type SMTPConfig struct {
	Host string // e.g. "smtp.gmail.com"
	Port string // e.g. "587"
	User string
	Pass string // app password
	To   string // where contact messages land
}

// SMTP delivers messages with plain auth against a mail server.
type SMTP struct {
	cfg    SMTPConfig
	logger *zap.Logger

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTP(cfg SMTPConfig, logger *zap.Logger) *SMTP {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &SMTP{cfg: cfg, logger: logger, sendMail: smtp.SendMail}
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if s.cfg.User == "" || s.cfg.Pass == "" || s.cfg.To == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	err := s.sendMail(s.cfg.Host+":"+s.cfg.Port, auth, s.cfg.User, []string{s.cfg.To}, s.compose(msg))
	if err != nil {
		return fmt.Errorf("smtp: %w", err)
	}

	s.logger.Info("email sent", zap.String("relay", ProviderSMTP), zap.String("from", msg.Email))
	return nil
}

// compose builds the message the owner receives. Replying to it answers the
// visitor directly.
func (s *SMTP) compose(msg Message) []byte {
	name, email := headerValue(msg.Name), headerValue(msg.Email)

	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", s.cfg.To)
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.User)
	fmt.Fprintf(&b, "Reply-To: %s\r\n", email)
	fmt.Fprintf(&b, "Subject: Get in Touch: %s\r\n", name)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&b, "%s <%s> wrote through the Get in Touch form:\r\n\r\n", name, email)
	body := strings.ReplaceAll(msg.Message, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

// headerValue keeps visitor input on one header line.
func headerValue(v string) string {
	return strings.Join(strings.Fields(v), " ")
}
