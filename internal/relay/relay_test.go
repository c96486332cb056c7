package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testMessage = Message{Name: "Ada", Email: "ada@example.com", Message: "Hello there"}

func testEmailJSConfig(endpoint string) EmailJSConfig {
	return EmailJSConfig{
		ServiceID:  "service_test",
		TemplateID: "template_test",
		PublicKey:  "public_test",
		Endpoint:   endpoint,
	}
}

func TestEmailJS_Send(t *testing.T) {
	t.Run("it posts credentials and template params", func(t *testing.T) {
		var got emailJSRequest
		var method, contentType string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
			contentType = r.Header.Get("Content-Type")
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Fatal(err.Error())
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		}))
		defer srv.Close()

		ej := NewEmailJS(testEmailJSConfig(srv.URL), srv.Client())
		require.NoError(t, ej.Send(context.Background(), testMessage))

		want := emailJSRequest{
			ServiceID:  "service_test",
			TemplateID: "template_test",
			UserID:     "public_test",
			TemplateParams: map[string]string{
				"from_name":  "Ada",
				"from_email": "ada@example.com",
				"message":    "Hello there",
			},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("request mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, http.MethodPost, method)
		assert.Equal(t, "application/json", contentType)
	})

	t.Run("it reports provider rejections", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("The template ID is invalid\n"))
		}))
		defer srv.Close()

		err := NewEmailJS(testEmailJSConfig(srv.URL), srv.Client()).Send(context.Background(), testMessage)

		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
		assert.Equal(t, "The template ID is invalid", perr.Body)
	})

	t.Run("it reports transport failures", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		err := NewEmailJS(testEmailJSConfig(url), nil).Send(context.Background(), testMessage)
		assert.Error(t, err)
	})

	t.Run("it refuses to send without credentials", func(t *testing.T) {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		err := NewEmailJS(EmailJSConfig{Endpoint: srv.URL}, srv.Client()).Send(context.Background(), testMessage)
		assert.ErrorIs(t, err, ErrNotConfigured)
		assert.False(t, called)
	})

	t.Run("it sends the private key as access token when set", func(t *testing.T) {
		var raw map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&raw)
		}))
		defer srv.Close()

		cfg := testEmailJSConfig(srv.URL)
		cfg.PrivateKey = "secret"
		require.NoError(t, NewEmailJS(cfg, srv.Client()).Send(context.Background(), testMessage))
		assert.Equal(t, "secret", raw["accessToken"])
	})
}

func TestSMTP_Send(t *testing.T) {
	cfg := SMTPConfig{User: "me@example.com", Pass: "app-pass", To: "inbox@example.com"}

	t.Run("it composes a reply-to message", func(t *testing.T) {
		s := NewSMTP(cfg, zap.NewNop())
		var gotAddr, gotFrom string
		var gotTo []string
		var gotMsg string
		s.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
			return nil
		}

		require.NoError(t, s.Send(context.Background(), testMessage))
		assert.Equal(t, "smtp.gmail.com:587", gotAddr)
		assert.Equal(t, "me@example.com", gotFrom)
		assert.Equal(t, []string{"inbox@example.com"}, gotTo)
		assert.Contains(t, gotMsg, "Subject: Get in Touch: Ada\r\n")
		assert.Contains(t, gotMsg, "Reply-To: ada@example.com\r\n")
		assert.Contains(t, gotMsg, "\r\n\r\nAda <ada@example.com> wrote through the Get in Touch form:\r\n")
		assert.True(t, strings.Contains(gotMsg, "Hello there"))
	})

	t.Run("visitor input cannot add headers", func(t *testing.T) {
		s := NewSMTP(cfg, zap.NewNop())
		var gotMsg string
		s.sendMail = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
			gotMsg = string(msg)
			return nil
		}

		msg := Message{Name: "Ada\r\nBcc: all@example.com", Email: "ada@example.com", Message: "line one\r\nline two\nline three"}
		require.NoError(t, s.Send(context.Background(), msg))
		headers, body, ok := strings.Cut(gotMsg, "\r\n\r\n")
		require.True(t, ok)
		assert.NotContains(t, headers, "\r\nBcc:")
		assert.Contains(t, headers, "Subject: Get in Touch: Ada Bcc: all@example.com\r\n")
		assert.Contains(t, body, "line one\r\nline two\r\nline three\r\n")
		assert.NotContains(t, body, "\r\r\n")
	})

	t.Run("it wraps server errors", func(t *testing.T) {
		s := NewSMTP(cfg, zap.NewNop())
		boom := errors.New("535 auth failed")
		s.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return boom }

		assert.ErrorIs(t, s.Send(context.Background(), testMessage), boom)
	})

	t.Run("it needs credentials", func(t *testing.T) {
		s := NewSMTP(SMTPConfig{}, zap.NewNop())
		assert.ErrorIs(t, s.Send(context.Background(), testMessage), ErrNotConfigured)
	})
}

func TestNew(t *testing.T) {
	for provider, want := range map[string]any{
		"":              &EmailJS{},
		ProviderEmailJS: &EmailJS{},
		ProviderSMTP:    &SMTP{},
		ProviderLog:     &Log{},
	} {
		r, err := New(Config{Provider: provider}, zap.NewNop())
		require.NoError(t, err, provider)
		assert.IsType(t, want, r, provider)
	}

	_, err := New(Config{Provider: "carrier-pigeon"}, zap.NewNop())
	assert.Error(t, err)
}

func TestLog_Send(t *testing.T) {
	assert.NoError(t, NewLog(zap.NewNop()).Send(context.Background(), testMessage))
}
