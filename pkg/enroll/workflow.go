package enroll

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-enroll/pkg/student"
)

// State is the per-submission workflow state.
type State int

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

// Presenter shows workflow results to the operator.
type Presenter interface {
	// ShowErrors surfaces a failed submission. Best-effort: errors are
	// logged and otherwise ignored.
	ShowErrors(ctx context.Context, errs Errors) error
	// Acknowledge shows the credential summary and blocks until the
	// operator confirms having seen it.
	Acknowledge(ctx context.Context, summary Summary) error
}

// Workflow runs the Add-Student submission cycle:
//
//	Idle -> Submitting -> Success -> reconcile and reset -> Idle
//	                   -> Failure -> show errors         -> Idle
//
// A Workflow is driven from a single goroutine. The create-request runs on
// its own goroutine and only touches the Slot.
type Workflow struct {
	form       *Form
	creator    Creator
	slot       *Slot
	validator  DraftValidator
	presenter  Presenter
	logger     zerolog.Logger
	emailReset EmailResetPolicy
	newID      func() uuid.UUID

	state   State
	errs    Errors
	pending uuid.UUID
	handled uuid.UUID
}

// New builds a Workflow around creator.
func New(creator Creator, options ...Option) (*Workflow, error) {
	if creator == nil {
		return nil, ErrNoCreator
	}
	w := &Workflow{
		form:    NewForm(),
		creator: creator,
		slot:    NewSlot(),
		logger:  zerolog.Nop(),
		newID:   uuid.New,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	return w, nil
}

// Form returns the form state holder.
func (w *Workflow) Form() *Form {
	return w.form
}

// Slot returns the outcome slot.
func (w *Workflow) Slot() *Slot {
	return w.slot
}

// State reports the current state.
func (w *Workflow) State() State {
	return w.state
}

// Submitting reports whether a create-request is outstanding.
func (w *Workflow) Submitting() bool {
	return w.state == StateSubmitting
}

// Errors returns the errors currently displayed.
func (w *Workflow) Errors() Errors {
	return w.errs.clone()
}

// Submit issues one create-request for the current draft. It returns false
// without doing anything while a previous submission is unreconciled, and
// false with a *student.ValidationError when the draft cannot be sent.
func (w *Workflow) Submit(ctx context.Context) (bool, error) {
	if w.state == StateSubmitting {
		w.logger.Debug().Str("pending", w.pending.String()).Msg("submit ignored: request in flight")
		return false, nil
	}
	if o, ok := w.slot.Peek(); ok {
		w.logger.Debug().Str("outcome", o.ID.String()).Msg("submit ignored: outcome not yet handled")
		return false, nil
	}

	draft := w.form.Draft()
	if w.validator != nil {
		if err := w.validator.Validate(draft); err != nil {
			return false, err
		}
	}

	id := w.newID()
	w.state = StateSubmitting
	w.pending = id
	w.errs = Errors{}

	w.logger.Info().
		Str("submission", id.String()).
		Str("department", draft.Department).
		Bool("avatar", draft.Avatar != "").
		Msg("create student request issued")

	go w.dispatch(context.WithoutCancel(ctx), id, draft)
	return true, nil
}

func (w *Workflow) dispatch(ctx context.Context, id uuid.UUID, draft student.Draft) {
	result, err := w.creator.CreateStudent(ctx, draft)
	switch {
	case err != nil:
		result = Failure{BackendError: err.Error()}
	case result == nil:
		result = Failure{BackendError: "create student: empty response"}
	}
	if err := w.slot.Put(Outcome{ID: id, Result: result}); err != nil {
		w.logger.Error().Err(err).Str("submission", id.String()).Msg("outcome dropped")
	}
}

// Await blocks until an outcome is available and handles it.
func (w *Workflow) Await(ctx context.Context) error {
	for {
		if o, ok := w.slot.Take(); ok {
			return w.Handle(ctx, o)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.slot.Ready():
		}
	}
}

// Handle consumes an outcome exactly once. Outcomes already handled, or not
// belonging to the outstanding submission, are dropped.
func (w *Workflow) Handle(ctx context.Context, o Outcome) error {
	w.slot.Discard(o.ID)

	if o.ID == w.handled && o.ID != uuid.Nil {
		w.logger.Debug().Str("outcome", o.ID.String()).Msg("outcome already handled")
		return nil
	}
	if w.state != StateSubmitting || o.ID != w.pending {
		w.logger.Warn().Str("outcome", o.ID.String()).Str("pending", w.pending.String()).Msg("stale outcome dropped")
		return nil
	}
	w.handled = o.ID

	switch r := o.Result.(type) {
	case Failure:
		return w.handleFailure(ctx, o.ID, r)
	case Success:
		return w.handleSuccess(ctx, o.ID, r)
	default:
		w.finish()
		return fmt.Errorf("enroll: unexpected result type %T", o.Result)
	}
}

// Clear resets the draft and displayed errors. Refused while submitting.
func (w *Workflow) Clear() error {
	if w.state == StateSubmitting {
		return ErrBusy
	}
	w.form.Reset()
	w.errs = Errors{}
	return nil
}

func (w *Workflow) handleFailure(ctx context.Context, id uuid.UUID, f Failure) error {
	w.errs = Errors{Fields: f.FieldErrors, Backend: strings.TrimSpace(f.BackendError)}.clone()

	resetEmail := w.emailReset.applies(f)
	if resetEmail {
		next := w.form.Draft()
		next.Email = ""
		w.form.Replace(next)
	}
	w.finish()

	w.logger.Info().
		Str("submission", id.String()).
		Int("field_errors", len(f.FieldErrors)).
		Bool("backend_error", w.errs.Backend != "").
		Bool("email_reset", resetEmail).
		Msg("create student failed")

	if w.presenter != nil {
		if err := w.presenter.ShowErrors(ctx, w.Errors()); err != nil {
			w.logger.Warn().Err(err).Msg("show errors")
		}
	}
	return nil
}

func (w *Workflow) handleSuccess(ctx context.Context, id uuid.UUID, s Success) error {
	summary := Reconcile(w.form.Draft(), s.Student)

	var ackErr error
	if w.presenter != nil {
		ackErr = w.presenter.Acknowledge(ctx, summary)
	}

	w.form.Reset()
	w.errs = Errors{}
	w.slot.Discard(id)
	w.finish()

	w.logger.Info().
		Str("submission", id.String()).
		Str("username", summary.Username).
		Bool("acknowledged", ackErr == nil).
		Msg("student created")

	if ackErr != nil {
		return fmt.Errorf("enroll: acknowledge summary: %w", ackErr)
	}
	return nil
}

func (w *Workflow) finish() {
	w.state = StateIdle
	w.pending = uuid.Nil
}
