package terminal

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-enroll/pkg/student"
)

type promptKind int

const (
	promptText promptKind = iota
	promptEmail
	promptDate
	promptNumber
	promptChoice
	promptDepartment
	promptAvatar
)

// noneOption is the first entry of every select; it stores the empty string.
const noneOption = "None"

type fieldPrompt struct {
	field    student.Field
	label    string
	kind     promptKind
	help     string
	choices  []string
	optional bool
}

// formPrompts lists the prompts in the order the enrollment form shows them.
// The password placeholder is never prompted.
var formPrompts = []fieldPrompt{
	{field: student.FieldName, label: "Name", kind: promptText, help: "Full Name"},
	{field: student.FieldDOB, label: "DOB", kind: promptDate, help: "yyyy-mm-dd"},
	{field: student.FieldEmail, label: "Email", kind: promptEmail},
	{field: student.FieldBatch, label: "Batch", kind: promptText, help: "yyyy-yyyy"},
	{field: student.FieldFatherName, label: "Father's Name", kind: promptText},
	{field: student.FieldMotherName, label: "Mother's Name", kind: promptText},
	{field: student.FieldYear, label: "Year", kind: promptChoice, choices: []string{"1", "2", "3", "4"}},
	{field: student.FieldDepartment, label: "Department", kind: promptDepartment},
	{field: student.FieldGender, label: "Gender", kind: promptChoice, choices: []string{"Male", "Female", "Other"}},
	{field: student.FieldContactNumber, label: "Contact Number", kind: promptNumber},
	{field: student.FieldFatherContactNumber, label: "Father's Contact Number", kind: promptNumber},
	{field: student.FieldMotherContactNumber, label: "Mother's Contact Number", kind: promptNumber},
	{field: student.FieldSection, label: "Section", kind: promptChoice, choices: []string{"1", "2", "3"}},
	{field: student.FieldAvatar, label: "Avatar", kind: promptAvatar, help: "path to an image file, empty to skip", optional: true},
}

func promptFor(field student.Field) (fieldPrompt, bool) {
	for _, p := range formPrompts {
		if p.field == field {
			return p, true
		}
	}
	return fieldPrompt{}, false
}

// Label returns the form label of field, or its wire name when the field is
// not prompted.
func Label(field student.Field) string {
	if p, ok := promptFor(field); ok {
		return p.label
	}
	return string(field)
}

var (
	inputChecksOnce sync.Once
	inputChecks     *validator.Validate
)

func checks() *validator.Validate {
	inputChecksOnce.Do(func() {
		inputChecks = validator.New()
	})
	return inputChecks
}

// check applies the input-level constraints of the form widgets: required,
// email, digits and calendar date. Everything else is left to submission.
func (p fieldPrompt) check(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if p.optional {
			return nil
		}
		return errors.New("this field is required")
	}

	var tag, msg string
	switch p.kind {
	case promptEmail:
		tag, msg = "email", "enter a valid email address"
	case promptDate:
		tag, msg = "datetime=2006-01-02", "enter a date as yyyy-mm-dd"
	case promptNumber:
		tag, msg = "number", "only digits are allowed"
	default:
		return nil
	}
	if err := checks().Var(trimmed, tag); err != nil {
		return errors.New(msg)
	}
	return nil
}

// options returns the select entries for choice prompts, None first.
func (p fieldPrompt) options(departments []string) []string {
	src := p.choices
	if p.kind == promptDepartment {
		src = departments
	}
	out := make([]string, 0, len(src)+1)
	out = append(out, noneOption)
	return append(out, src...)
}

// selectedIndex finds current among the options, defaulting to None.
func selectedIndex(options []string, current string) int {
	if current == "" {
		return 0
	}
	for i, option := range options {
		if i > 0 && option == current {
			return i
		}
	}
	return 0
}

// optionValue maps a select index back to the stored value.
func optionValue(options []string, idx int) string {
	if idx <= 0 || idx >= len(options) {
		return ""
	}
	return options[idx]
}
