package student

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned when a field name does not belong to the draft.
var ErrUnknownField = errors.New("student: unknown field")

// Field identifies a draft field by its wire key.
type Field string

const (
	FieldName                Field = "name"
	FieldDOB                 Field = "dob"
	FieldEmail               Field = "email"
	FieldPassword            Field = "password"
	FieldDepartment          Field = "department"
	FieldContactNumber       Field = "contactNumber"
	FieldAvatar              Field = "avatar"
	FieldBatch               Field = "batch"
	FieldGender              Field = "gender"
	FieldYear                Field = "year"
	FieldFatherName          Field = "fatherName"
	FieldMotherName          Field = "motherName"
	FieldSection             Field = "section"
	FieldFatherContactNumber Field = "fatherContactNumber"
	FieldMotherContactNumber Field = "motherContactNumber"
)

var fields = []Field{
	FieldName,
	FieldDOB,
	FieldEmail,
	FieldPassword,
	FieldDepartment,
	FieldContactNumber,
	FieldAvatar,
	FieldBatch,
	FieldGender,
	FieldYear,
	FieldFatherName,
	FieldMotherName,
	FieldSection,
	FieldFatherContactNumber,
	FieldMotherContactNumber,
}

// Fields returns every draft field in canonical order.
func Fields() []Field {
	return append([]Field(nil), fields...)
}

// ParseField resolves a wire key (case-insensitive) into a Field.
func ParseField(name string) (Field, bool) {
	trimmed := strings.TrimSpace(name)
	for _, f := range fields {
		if strings.EqualFold(string(f), trimmed) {
			return f, true
		}
	}
	return "", false
}

// Draft is the student record being composed. The zero value is the empty
// default; absent values are always the empty string.
//
// Password is a placeholder only: the service generates the real password,
// so the draft always sends it empty.
type Draft struct {
	Name                string `json:"name" validate:"required"`
	DOB                 string `json:"dob" validate:"required,datetime=2006-01-02"`
	Email               string `json:"email" validate:"required,email"`
	Password            string `json:"password"`
	Department          string `json:"department" validate:"required,department"`
	ContactNumber       string `json:"contactNumber" validate:"required,number"`
	Avatar              string `json:"avatar"`
	Batch               string `json:"batch" validate:"required"`
	Gender              string `json:"gender" validate:"required,oneof=Male Female Other"`
	Year                string `json:"year" validate:"required,oneof=1 2 3 4"`
	FatherName          string `json:"fatherName" validate:"required"`
	MotherName          string `json:"motherName" validate:"required"`
	Section             string `json:"section" validate:"required,oneof=1 2 3"`
	FatherContactNumber string `json:"fatherContactNumber" validate:"required,number"`
	MotherContactNumber string `json:"motherContactNumber" validate:"required,number"`
}

// Get returns the value stored for field, or "" for unknown fields.
func (d Draft) Get(field Field) string {
	if ref := d.ref(field); ref != nil {
		return *ref
	}
	return ""
}

// With returns a copy of the draft with field set to value.
func (d Draft) With(field Field, value string) (Draft, error) {
	ref := d.ref(field)
	if ref == nil {
		return d, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	*ref = value
	return d, nil
}

// IsEmpty reports whether every field holds the empty string.
func (d Draft) IsEmpty() bool {
	return d == Draft{}
}

// Map returns the draft keyed by wire name.
func (d Draft) Map() map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[string(f)] = d.Get(f)
	}
	return out
}

func (d *Draft) ref(field Field) *string {
	switch field {
	case FieldName:
		return &d.Name
	case FieldDOB:
		return &d.DOB
	case FieldEmail:
		return &d.Email
	case FieldPassword:
		return &d.Password
	case FieldDepartment:
		return &d.Department
	case FieldContactNumber:
		return &d.ContactNumber
	case FieldAvatar:
		return &d.Avatar
	case FieldBatch:
		return &d.Batch
	case FieldGender:
		return &d.Gender
	case FieldYear:
		return &d.Year
	case FieldFatherName:
		return &d.FatherName
	case FieldMotherName:
		return &d.MotherName
	case FieldSection:
		return &d.Section
	case FieldFatherContactNumber:
		return &d.FatherContactNumber
	case FieldMotherContactNumber:
		return &d.MotherContactNumber
	default:
		return nil
	}
}
