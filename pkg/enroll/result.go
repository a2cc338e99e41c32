package enroll

import (
	"context"

	"github.com/google/uuid"

	"github.com/goliatone/go-enroll/pkg/student"
)

// Creator performs the create-student request. A returned error means the
// request never produced a service answer (transport failure, timeout); the
// workflow turns it into a Failure.
type Creator interface {
	CreateStudent(ctx context.Context, draft student.Draft) (Result, error)
}

// CreatorFunc adapts a function to Creator.
type CreatorFunc func(ctx context.Context, draft student.Draft) (Result, error)

// CreateStudent calls fn.
func (fn CreatorFunc) CreateStudent(ctx context.Context, draft student.Draft) (Result, error) {
	return fn(ctx, draft)
}

// Result is the outcome of one create-request: Success or Failure.
type Result interface {
	isResult()
}

// Success carries the student record returned by the service. It holds at
// least the server-assigned username and the echoed dob.
type Success struct {
	Student Record
}

// Failure carries field-keyed messages and an optional general message.
type Failure struct {
	FieldErrors  map[string]string
	BackendError string
}

func (Success) isResult() {}
func (Failure) isResult() {}

// HasFieldError reports whether the failure targets field.
func (f Failure) HasFieldError(field student.Field) bool {
	_, ok := f.FieldErrors[string(field)]
	return ok
}

// Outcome pairs a Result with the submission that produced it.
type Outcome struct {
	ID     uuid.UUID
	Result Result
}
