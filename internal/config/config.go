// Package config reads server settings from the environment. A .env file in
// the working directory is loaded first by the binary.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirjanpreet/portfolio/internal/carousel"
	"github.com/sirjanpreet/portfolio/internal/relay"
	"github.com/sirjanpreet/portfolio/internal/visitors"
)

type Config struct {
	Port        string
	ContentPath string // empty means the embedded content
	DBPath      string

	Relay relay.Config
	Admin Admin

	RolePeriod       time.Duration
	SessionTTL       time.Duration
	VisitorRetention time.Duration
	ShutdownTimeout  time.Duration
	TrackVisitors    bool
}

type Admin struct {
	Username string
	Password string
}

// Defaults returns the settings used when nothing is set.
func Defaults() Config {
	return Config{
		Port:   "8080",
		DBPath: "portfolio.db",
		Relay: relay.Config{
			Provider: relay.ProviderEmailJS,
		},
		RolePeriod:       carousel.DefaultPeriod,
		SessionTTL:       30 * time.Minute,
		VisitorRetention: visitors.DefaultRetention,
		ShutdownTimeout:  10 * time.Second,
		TrackVisitors:    true,
	}
}

// Load reads the process environment.
func Load() (Config, error) {
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Defaults()
	var errs []error

	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		v := getenv(key)
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}
	boolean := func(key string, dst *bool) {
		v := getenv(key)
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}

	str("PORT", &cfg.Port)
	str("CONTENT_PATH", &cfg.ContentPath)
	str("DB_PATH", &cfg.DBPath)

	str("RELAY_PROVIDER", &cfg.Relay.Provider)
	dur("RELAY_TIMEOUT", &cfg.Relay.Timeout)
	str("EMAILJS_SERVICE_ID", &cfg.Relay.EmailJS.ServiceID)
	str("EMAILJS_TEMPLATE_ID", &cfg.Relay.EmailJS.TemplateID)
	str("EMAILJS_PUBLIC_KEY", &cfg.Relay.EmailJS.PublicKey)
	str("EMAILJS_PRIVATE_KEY", &cfg.Relay.EmailJS.PrivateKey)
	str("EMAILJS_ENDPOINT", &cfg.Relay.EmailJS.Endpoint)
	str("SMTP_HOST", &cfg.Relay.SMTP.Host)
	str("SMTP_PORT", &cfg.Relay.SMTP.Port)
	str("SMTP_USER", &cfg.Relay.SMTP.User)
	str("SMTP_PASS", &cfg.Relay.SMTP.Pass)
	str("TO_EMAIL", &cfg.Relay.SMTP.To)

	str("ADMIN_USERNAME", &cfg.Admin.Username)
	str("ADMIN_PASSWORD", &cfg.Admin.Password)

	dur("ROLE_PERIOD", &cfg.RolePeriod)
	dur("SESSION_TTL", &cfg.SessionTTL)
	dur("VISITOR_RETENTION", &cfg.VisitorRetention)
	dur("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)
	boolean("TRACK_VISITORS", &cfg.TrackVisitors)

	if cfg.RolePeriod <= 0 {
		errs = append(errs, errors.New("ROLE_PERIOD: must be positive"))
	}
	if cfg.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL: must be positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
