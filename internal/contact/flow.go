// Package contact runs the contact form: it holds what the visitor typed,
// relays it on submit and tracks whether the last attempt went through.
package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sirjanpreet/portfolio/internal/relay"
)

var (
	ErrIncomplete  = errors.New("contact: name, email and message are required")
	ErrPending     = errors.New("contact: a submission is already in flight")
	ErrRelayFailed = errors.New("contact: message could not be delivered")
	ErrField       = errors.New("contact: unknown field")
)

type Status int

const (
	Idle Status = iota
	Success
	Error
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "idle"
	}
}

// Form field names, as posted by the page.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldMessage = "message"
)

type Form struct {
	Name    string
	Email   string
	Message string
}

func (f Form) complete() bool {
	return strings.TrimSpace(f.Name) != "" &&
		strings.TrimSpace(f.Email) != "" &&
		strings.TrimSpace(f.Message) != ""
}

// Snapshot is a point-in-time copy of a Flow.
type Snapshot struct {
	Form       Form
	Status     Status
	Submitting bool
}

// Flow is one contact form as seen by one visitor. It is safe for
// concurrent use.
type Flow struct {
	relay  relay.Relay
	logger *zap.Logger

	mu         sync.Mutex
	form       Form
	status     Status
	submitting bool
}

func NewFlow(r relay.Relay, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{relay: r, logger: logger}
}

func (f *Flow) Update(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch field {
	case FieldName:
		f.form.Name = value
	case FieldEmail:
		f.form.Email = value
	case FieldMessage:
		f.form.Message = value
	default:
		return fmt.Errorf("%w: %q", ErrField, field)
	}
	return nil
}

// Fill replaces all three fields at once. It refuses while a submission is
// outstanding so the message on its way is not rewritten underneath it.
func (f *Flow) Fill(form Form) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrPending
	}
	f.form = form
	return nil
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{Form: f.form, Status: f.status, Submitting: f.submitting}
}

// Submit relays the current form. The relay is not called when a field is
// blank or another submission is still outstanding. On success the form is
// cleared; on failure it is kept so the visitor can resend it as is.
func (f *Flow) Submit(ctx context.Context) (Snapshot, error) {
	return f.submit(ctx, nil)
}

// SubmitForm fills the form and submits it in one step.
func (f *Flow) SubmitForm(ctx context.Context, form Form) (Snapshot, error) {
	return f.submit(ctx, &form)
}

func (f *Flow) submit(ctx context.Context, form *Form) (Snapshot, error) {
	f.mu.Lock()
	if f.submitting {
		s := f.snapshotLocked()
		f.mu.Unlock()
		return s, ErrPending
	}
	if form != nil {
		f.form = *form
	}
	if !f.form.complete() {
		s := f.snapshotLocked()
		f.mu.Unlock()
		return s, ErrIncomplete
	}
	f.submitting = true
	f.status = Idle
	msg := relay.Message{Name: f.form.Name, Email: f.form.Email, Message: f.form.Message}
	f.mu.Unlock()

	err := f.relay.Send(ctx, msg)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.status = Error
		f.logger.Error("error sending email", zap.Error(err), zap.String("from_email", msg.Email))
		return f.snapshotLocked(), fmt.Errorf("%w: %w", ErrRelayFailed, err)
	}

	f.status = Success
	f.form = Form{}
	f.logger.Info("email sent", zap.String("from_name", msg.Name), zap.String("from_email", msg.Email))
	return f.snapshotLocked(), nil
}

func (f *Flow) snapshotLocked() Snapshot {
	return Snapshot{Form: f.form, Status: f.status, Submitting: f.submitting}
}
