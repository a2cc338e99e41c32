package terminal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-enroll/pkg/avatar"
	"github.com/goliatone/go-enroll/pkg/enroll"
	"github.com/goliatone/go-enroll/pkg/student"
)

const (
	actionSubmit = "Submit"
	actionEdit   = "Edit a field"
	actionAvatar = "Set avatar"
	actionReview = "Review draft"
	actionClear  = "Clear"
	actionQuit   = "Quit"
)

var menuActions = []string{actionSubmit, actionEdit, actionAvatar, actionReview, actionClear, actionQuit}

// Session drives one operator through the Add Student form in the terminal.
// It owns the workflow and must be run from a single goroutine.
type Session struct {
	workflow    *enroll.Workflow
	departments []string
	driver      PromptDriver
	theme       Theme
	avatarMax   int64
	logger      zerolog.Logger
}

// New builds a session for workflow offering the given departments.
func New(workflow *enroll.Workflow, departments []string, options ...Option) (*Session, error) {
	if workflow == nil {
		return nil, errors.New("terminal: workflow is required")
	}
	if len(departments) == 0 {
		return nil, ErrNoDepartments
	}

	s := &Session{
		workflow:    workflow,
		departments: append([]string(nil), departments...),
		theme:       DefaultTheme,
		logger:      zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver()
	}
	return s, nil
}

// Run fills the form, then loops over the action menu until the operator
// quits. ErrAborted is returned when input is interrupted.
func (s *Session) Run(ctx context.Context) error {
	if err := s.fill(ctx); err != nil {
		return err
	}

	for {
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message: "Add Student",
			Options: menuActions,
		})
		if err != nil {
			return err
		}

		var next bool
		switch optionAt(menuActions, idx) {
		case actionSubmit:
			next, err = s.submit(ctx)
		case actionEdit:
			err = s.editField(ctx)
		case actionAvatar:
			err = s.promptField(ctx, mustPrompt(student.FieldAvatar))
		case actionReview:
			err = s.review(ctx)
		case actionClear:
			next, err = s.clear(ctx)
		case actionQuit:
			return nil
		default:
			continue
		}
		if err != nil {
			return err
		}
		if next {
			if err := s.fill(ctx); err != nil {
				return err
			}
		}
	}
}

// fill prompts every form field in display order.
func (s *Session) fill(ctx context.Context) error {
	for _, p := range formPrompts {
		if err := s.promptField(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// submit sends the draft and waits for the outcome. It reports whether the
// form was reset and the operator wants to enroll another student.
func (s *Session) submit(ctx context.Context) (bool, error) {
	ok, err := s.workflow.Submit(ctx)

	var verr *student.ValidationError
	if errors.As(err, &verr) {
		for _, f := range student.Fields() {
			if msg := verr.Message(f); msg != "" {
				s.fail(ctx, Label(f)+": "+msg)
			}
		}
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !ok {
		s.info(ctx, "A submission is already in progress.")
		return false, nil
	}

	s.info(ctx, "Adding Student...")
	if err := s.workflow.Await(ctx); err != nil {
		if errors.Is(err, ErrAborted) {
			return false, err
		}
		s.logger.Warn().Err(err).Msg("submission handling")
		s.fail(ctx, err.Error())
	}

	if !s.workflow.Errors().Empty() || !s.workflow.Form().Draft().IsEmpty() {
		return false, nil
	}
	return s.driver.Confirm(ctx, ConfirmConfig{
		Message: "Add another student?",
		Default: true,
	})
}

func (s *Session) editField(ctx context.Context) error {
	labels := make([]string, 0, len(formPrompts))
	draft := s.workflow.Form().Draft()
	for _, p := range formPrompts {
		labels = append(labels, fmt.Sprintf("%s [%s]", p.label, displayValue(p, draft.Get(p.field))))
	}
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:  "Field to edit",
		Options:  labels,
		PageSize: len(labels),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(formPrompts) {
		return nil
	}
	return s.promptField(ctx, formPrompts[idx])
}

func (s *Session) review(ctx context.Context) error {
	draft := s.workflow.Form().Draft()
	var b strings.Builder
	for i, p := range formPrompts {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", p.label, displayValue(p, draft.Get(p.field)))
	}
	if errs := s.workflow.Errors(); !errs.Empty() {
		for _, msg := range errs.Messages() {
			b.WriteString("\n" + s.theme.ErrorPrefix + msg)
		}
	}
	return s.driver.Info(ctx, b.String())
}

func (s *Session) clear(ctx context.Context) (bool, error) {
	if err := s.workflow.Clear(); err != nil {
		if errors.Is(err, enroll.ErrBusy) {
			s.info(ctx, "Cannot clear while a student is being added.")
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// promptField asks for one field, showing any displayed server error as
// help text, and stores the answer in the form.
func (s *Session) promptField(ctx context.Context, p fieldPrompt) error {
	current := s.workflow.Form().Draft().Get(p.field)
	help := p.help
	if msg, ok := s.workflow.Errors().Fields[string(p.field)]; ok && msg != "" {
		help = msg
	}

	var value string
	switch p.kind {
	case promptChoice, promptDepartment:
		options := p.options(s.departments)
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      p.label,
			Options:      options,
			DefaultIndex: selectedIndex(options, current),
			Help:         help,
		})
		if err != nil {
			return err
		}
		value = optionValue(options, idx)
	case promptAvatar:
		encoded, err := s.promptAvatar(ctx, p, help)
		if err != nil {
			return err
		}
		if encoded == "" {
			return nil
		}
		value = encoded
	default:
		answer, err := s.driver.Input(ctx, InputConfig{
			Message:   p.label,
			Default:   current,
			Help:      help,
			Validator: p.check,
		})
		if err != nil {
			return err
		}
		value = strings.TrimSpace(answer)
	}

	return s.workflow.Form().Set(p.field, value)
}

// promptAvatar loops until the path names an acceptable image or is left
// empty, which keeps the current avatar.
func (s *Session) promptAvatar(ctx context.Context, p fieldPrompt, help string) (string, error) {
	for {
		path, err := s.driver.Input(ctx, InputConfig{
			Message: p.label,
			Help:    help,
		})
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(path) == "" {
			return "", nil
		}
		encoded, err := avatar.EncodeFile(path, s.avatarMax)
		if err != nil {
			s.fail(ctx, fmt.Sprintf("Invalid %s: %v", strings.ToLower(p.label), err))
			continue
		}
		return encoded, nil
	}
}

func (s *Session) info(ctx context.Context, msg string) {
	s.print(ctx, s.theme.InfoPrefix+msg)
}

func (s *Session) fail(ctx context.Context, msg string) {
	s.print(ctx, s.theme.ErrorPrefix+msg)
}

func (s *Session) print(ctx context.Context, line string) {
	if err := s.driver.Info(ctx, line); err != nil {
		s.logger.Debug().Err(err).Msg("print")
	}
}

func displayValue(p fieldPrompt, value string) string {
	switch {
	case value == "" && (p.kind == promptChoice || p.kind == promptDepartment):
		return noneOption
	case value == "":
		return "-"
	case p.kind == promptAvatar:
		return fmt.Sprintf("image (%d chars)", len(value))
	default:
		return value
	}
}

func optionAt(options []string, idx int) string {
	if idx < 0 || idx >= len(options) {
		return ""
	}
	return options[idx]
}

func mustPrompt(field student.Field) fieldPrompt {
	p, ok := promptFor(field)
	if !ok {
		panic("terminal: no prompt for " + string(field))
	}
	return p
}
