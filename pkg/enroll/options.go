package enroll

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-enroll/pkg/student"
)

// EmailResetPolicy decides when a failed submission clears the draft email.
type EmailResetPolicy int

const (
	// ResetEmailOnEmailError clears the email only when a field error targets
	// it, which is how the service reports an already registered address.
	ResetEmailOnEmailError EmailResetPolicy = iota
	// ResetEmailOnAnyFailure clears the email after every failure.
	ResetEmailOnAnyFailure
	// ResetEmailNever keeps the email untouched.
	ResetEmailNever
)

// ParseEmailResetPolicy maps config values ("email-error", "any-failure",
// "never") onto a policy. Empty selects ResetEmailOnEmailError.
func ParseEmailResetPolicy(raw string) (EmailResetPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "email-error":
		return ResetEmailOnEmailError, nil
	case "any-failure":
		return ResetEmailOnAnyFailure, nil
	case "never":
		return ResetEmailNever, nil
	default:
		return ResetEmailOnEmailError, fmt.Errorf("enroll: unknown email reset policy %q", raw)
	}
}

func (p EmailResetPolicy) String() string {
	switch p {
	case ResetEmailOnAnyFailure:
		return "any-failure"
	case ResetEmailNever:
		return "never"
	default:
		return "email-error"
	}
}

func (p EmailResetPolicy) applies(f Failure) bool {
	switch p {
	case ResetEmailOnAnyFailure:
		return true
	case ResetEmailNever:
		return false
	default:
		return f.HasFieldError(student.FieldEmail)
	}
}

// DraftValidator gates submission. student.Validator satisfies it.
type DraftValidator interface {
	Validate(d student.Draft) error
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithForm injects the form state holder.
func WithForm(form *Form) Option {
	return func(w *Workflow) {
		if form != nil {
			w.form = form
		}
	}
}

// WithSlot injects the outcome slot shared with the request goroutine.
func WithSlot(slot *Slot) Option {
	return func(w *Workflow) {
		if slot != nil {
			w.slot = slot
		}
	}
}

// WithValidator gates Submit on the supplied validator.
func WithValidator(v DraftValidator) Option {
	return func(w *Workflow) {
		w.validator = v
	}
}

// WithPresenter wires the operator-facing error and summary output.
func WithPresenter(p Presenter) Option {
	return func(w *Workflow) {
		w.presenter = p
	}
}

// WithLogger sets the workflow logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// WithEmailReset selects the email reset policy applied on failures.
func WithEmailReset(policy EmailResetPolicy) Option {
	return func(w *Workflow) {
		w.emailReset = policy
	}
}

// WithIDGenerator overrides how outcome IDs are minted.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(w *Workflow) {
		if fn != nil {
			w.newID = fn
		}
	}
}
