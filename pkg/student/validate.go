package student

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	departmentTag  = "department"
	departmentText = "select one of the listed departments"

	requiredTag  = "required"
	requiredText = "this field is required"

	datetimeTag  = "datetime"
	datetimeText = "must be a date in yyyy-mm-dd format"

	numberTag  = "number"
	numberText = "only digits are allowed"
)

// ValidationError lists the draft fields that block submission.
type ValidationError struct {
	Fields map[Field]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "student: invalid draft"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range fields {
		if msg, ok := e.Fields[f]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", f, msg))
		}
	}
	return "student: invalid draft: " + strings.Join(parts, "; ")
}

// Message returns the message attached to field, if any.
func (e *ValidationError) Message(field Field) string {
	if e == nil {
		return ""
	}
	return e.Fields[field]
}

// Validator gates submission on the checks the form widgets enforce:
// required fields, email and number inputs, the date picker format and the
// fixed select options.
type Validator struct {
	validate    *validator.Validate
	translator  ut.Translator
	departments map[string]struct{}
}

// NewValidator builds a Validator that accepts the given department names.
// An empty list accepts any non-empty department.
func NewValidator(departments []string) *Validator {
	locale := en.New()
	uni := ut.New(locale, locale)
	translator, _ := uni.GetTranslator("en")

	v := &Validator{
		validate:    validator.New(),
		translator:  translator,
		departments: make(map[string]struct{}, len(departments)),
	}
	for _, name := range departments {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			v.departments[trimmed] = struct{}{}
		}
	}

	_ = en_translations.RegisterDefaultTranslations(v.validate, translator)

	// Report wire keys instead of Go field names.
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.validate.RegisterValidation(departmentTag, v.knownDepartment)

	registerTranslation(v.validate, translator, departmentTag, departmentText)
	registerTranslation(v.validate, translator, requiredTag, requiredText)
	registerTranslation(v.validate, translator, datetimeTag, datetimeText)
	registerTranslation(v.validate, translator, numberTag, numberText)

	return v
}

// Validate returns a *ValidationError when the draft cannot be submitted.
func (v *Validator) Validate(d Draft) error {
	err := v.validate.Struct(d)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("student: validate draft: %w", err)
	}

	out := &ValidationError{Fields: make(map[Field]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		field, ok := ParseField(fe.Field())
		if !ok {
			continue
		}
		if _, exists := out.Fields[field]; exists {
			continue
		}
		out.Fields[field] = fe.Translate(v.translator)
	}
	return out
}

func (v *Validator) knownDepartment(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return false
	}
	if len(v.departments) == 0 {
		return true
	}
	_, ok := v.departments[value]
	return ok
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}
