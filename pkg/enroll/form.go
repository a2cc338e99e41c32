package enroll

import "github.com/goliatone/go-enroll/pkg/student"

// Form holds the draft being edited. Updates replace the whole draft; there
// is no validation at edit time.
type Form struct {
	draft student.Draft
}

// NewForm returns a form seeded with the empty draft.
func NewForm() *Form {
	return &Form{}
}

// Draft returns a copy of the current draft.
func (f *Form) Draft() student.Draft {
	return f.draft
}

// Replace swaps in d as the current draft.
func (f *Form) Replace(d student.Draft) {
	f.draft = d
}

// Set replaces the draft with a copy carrying value in field.
func (f *Form) Set(field student.Field, value string) error {
	next, err := f.draft.With(field, value)
	if err != nil {
		return err
	}
	f.Replace(next)
	return nil
}

// Reset restores the empty default.
func (f *Form) Reset() {
	f.Replace(student.Draft{})
}
