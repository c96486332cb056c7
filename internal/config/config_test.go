package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirjanpreet/portfolio/internal/relay"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.RolePeriod)
	assert.Equal(t, relay.ProviderEmailJS, cfg.Relay.Provider)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"PORT":                "9000",
		"RELAY_PROVIDER":      "smtp",
		"RELAY_TIMEOUT":       "15s",
		"EMAILJS_SERVICE_ID":  "service_x",
		"EMAILJS_TEMPLATE_ID": "template_x",
		"EMAILJS_PUBLIC_KEY":  "key_x",
		"SMTP_USER":           "me@example.com",
		"TO_EMAIL":            "inbox@example.com",
		"ADMIN_USERNAME":      "root",
		"ROLE_PERIOD":         "500ms",
		"TRACK_VISITORS":      "false",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, relay.ProviderSMTP, cfg.Relay.Provider)
	assert.Equal(t, 15*time.Second, cfg.Relay.Timeout)
	assert.Equal(t, relay.EmailJSConfig{ServiceID: "service_x", TemplateID: "template_x", PublicKey: "key_x"}, cfg.Relay.EmailJS)
	assert.Equal(t, "me@example.com", cfg.Relay.SMTP.User)
	assert.Equal(t, "inbox@example.com", cfg.Relay.SMTP.To)
	assert.Equal(t, "root", cfg.Admin.Username)
	assert.Equal(t, 500*time.Millisecond, cfg.RolePeriod)
	assert.False(t, cfg.TrackVisitors)
}

func TestFromEnv_Invalid(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{
		"ROLE_PERIOD":    "soon",
		"SESSION_TTL":    "-1m",
		"TRACK_VISITORS": "maybe",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROLE_PERIOD")
	assert.Contains(t, err.Error(), "SESSION_TTL")
	assert.Contains(t, err.Error(), "TRACK_VISITORS")
}
