// Package relay delivers contact-form messages through an outside email
// provider.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("relay: credentials not configured")

// Message is what a visitor typed into the contact form.
type Message struct {
	Name    string
	Email   string
	Message string
}

type Relay interface {
	Send(ctx context.Context, msg Message) error
}

// Provider names accepted by New.
const (
	ProviderEmailJS = "emailjs"
	ProviderSMTP    = "smtp"
	ProviderLog     = "log"
)

type Config struct {
	Provider string
	EmailJS  EmailJSConfig
	SMTP     SMTPConfig
	// Timeout bounds outbound HTTP calls. Zero leaves the transport default.
	Timeout time.Duration
}

func New(cfg Config, logger *zap.Logger) (Relay, error) {
	switch cfg.Provider {
	case ProviderEmailJS, "":
		return NewEmailJS(cfg.EmailJS, &http.Client{Timeout: cfg.Timeout}), nil
	case ProviderSMTP:
		return NewSMTP(cfg.SMTP, logger), nil
	case ProviderLog:
		return NewLog(logger), nil
	default:
		return nil, fmt.Errorf("relay: unknown provider %q", cfg.Provider)
	}
}
