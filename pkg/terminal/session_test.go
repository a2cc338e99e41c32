package terminal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-enroll/pkg/enroll"
	"github.com/goliatone/go-enroll/pkg/student"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	passwords    []string
	infoMessages []string
	inputPos     int
	selectPos    int
	confirmPos   int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) printed(substr string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

type recordingCreator struct {
	mu     sync.Mutex
	result enroll.Result
	drafts []student.Draft
}

func (c *recordingCreator) CreateStudent(_ context.Context, d student.Draft) (enroll.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafts = append(c.drafts, d)
	return c.result, nil
}

func (c *recordingCreator) calls() []student.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]student.Draft(nil), c.drafts...)
}

var testDepartments = []string{"Civil", "Computer Science"}

// Scripted answers for a complete fill: text inputs in form order (avatar
// skipped) and select indices for year, department, gender and section.
func fillInputs() []string {
	return []string{
		"Ada Lovelace", "2001-05-17", "ada@example.edu", "2021-2025",
		"George", "Anne", "5550101", "5550102", "5550103", "",
	}
}

func fillSelects(department int) []int {
	return []int{2, department, 2, 1}
}

func newSession(t *testing.T, creator enroll.Creator, driver *stubDriver) (*Session, *enroll.Workflow) {
	t.Helper()
	wf, err := enroll.New(creator,
		enroll.WithPresenter(NewPresenter(driver, DefaultTheme)),
		enroll.WithValidator(student.NewValidator(testDepartments)),
	)
	if err != nil {
		t.Fatalf("new workflow: %v", err)
	}
	s, err := New(wf, testDepartments, WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s, wf
}

func TestSessionSubmitSuccess(t *testing.T) {
	creator := &recordingCreator{
		result: enroll.Success{Student: enroll.NewRecord("username", "ada17", "dob", "2001-05-17")},
	}
	driver := &stubDriver{
		inputs:    fillInputs(),
		selectIdx: append(fillSelects(2), 0, 5),
		confirm:   []bool{true, false},
	}
	s, wf := newSession(t, creator, driver)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	calls := creator.calls()
	if len(calls) != 1 {
		t.Fatalf("create calls = %d, want 1", len(calls))
	}
	want := student.Draft{
		Name:                "Ada Lovelace",
		DOB:                 "2001-05-17",
		Email:               "ada@example.edu",
		Department:          "Computer Science",
		ContactNumber:       "5550101",
		Batch:               "2021-2025",
		Gender:              "Female",
		Year:                "2",
		FatherName:          "George",
		MotherName:          "Anne",
		Section:             "1",
		FatherContactNumber: "5550102",
		MotherContactNumber: "5550103",
	}
	if diff := cmp.Diff(want, calls[0]); diff != "" {
		t.Fatalf("draft mismatch (-want +got):\n%s", diff)
	}

	for _, expected := range []string{"Adding Student...", "Username: ada17", "Password: 17-05-2001"} {
		if !driver.printed(expected) {
			t.Fatalf("expected %q in output, got %v", expected, driver.infoMessages)
		}
	}
	if !wf.Form().Draft().IsEmpty() {
		t.Fatalf("form not reset: %+v", wf.Form().Draft())
	}
	if driver.confirmPos != 2 {
		t.Fatalf("confirm prompts consumed = %d, want 2", driver.confirmPos)
	}
}

func TestSessionValidationBlocksSubmit(t *testing.T) {
	creator := &recordingCreator{result: enroll.Success{}}
	driver := &stubDriver{
		inputs:    fillInputs(),
		selectIdx: append(fillSelects(0), 0, 5),
	}
	s, _ := newSession(t, creator, driver)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(creator.calls()) != 0 {
		t.Fatal("create-request issued for an invalid draft")
	}
	if !driver.printed("error: Department: this field is required") {
		t.Fatalf("missing validation message, got %v", driver.infoMessages)
	}
}

func TestSessionFailureThenEdit(t *testing.T) {
	creator := &recordingCreator{
		result: enroll.Failure{FieldErrors: map[string]string{"email": "Email already registered"}},
	}
	driver := &stubDriver{
		inputs: append(fillInputs(), "lovelace@example.edu"),
		// fill, Submit, Edit, Email row, Quit
		selectIdx: append(fillSelects(1), 0, 1, 2, 5),
	}
	s, wf := newSession(t, creator, driver)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !driver.printed("error: Email already registered") {
		t.Fatalf("missing server error, got %v", driver.infoMessages)
	}
	draft := wf.Form().Draft()
	if draft.Email != "lovelace@example.edu" {
		t.Fatalf("email = %q", draft.Email)
	}
	if draft.Name != "Ada Lovelace" {
		t.Fatalf("other fields should survive a failure, name = %q", draft.Name)
	}
	if got := wf.Errors().Fields["email"]; got != "Email already registered" {
		t.Fatalf("displayed email error = %q", got)
	}
}

func TestSessionClearRefills(t *testing.T) {
	creator := &recordingCreator{result: enroll.Success{}}
	second := fillInputs()
	second[0] = "Grace Hopper"
	driver := &stubDriver{
		inputs:    append(fillInputs(), second...),
		selectIdx: append(append(fillSelects(1), 4), append(fillSelects(1), 5)...),
	}
	s, wf := newSession(t, creator, driver)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := wf.Form().Draft().Name; got != "Grace Hopper" {
		t.Fatalf("name after clear = %q", got)
	}
}

func TestSessionAbortPropagates(t *testing.T) {
	driver := &stubDriver{}
	s, _ := newSession(t, &recordingCreator{}, driver)
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error when the driver runs dry")
	}
}

func TestNewRequiresDepartments(t *testing.T) {
	wf, err := enroll.New(&recordingCreator{})
	if err != nil {
		t.Fatalf("new workflow: %v", err)
	}
	if _, err := New(wf, nil); !errors.Is(err, ErrNoDepartments) {
		t.Fatalf("expected ErrNoDepartments, got %v", err)
	}
	if _, err := New(nil, testDepartments); err == nil {
		t.Fatal("expected error for nil workflow")
	}
}

func TestPresenterAcknowledgeRepeatsUntilConfirmed(t *testing.T) {
	driver := &stubDriver{confirm: []bool{false, false, true}}
	p := NewPresenter(driver, DefaultTheme)

	summary := enroll.Reconcile(student.Draft{DOB: "2001-05-17"}, enroll.NewRecord("username", "ada17"))
	if err := p.Acknowledge(context.Background(), summary); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if driver.confirmPos != 3 {
		t.Fatalf("confirm prompts = %d, want 3", driver.confirmPos)
	}
	if !driver.printed("Student added successfully!") {
		t.Fatalf("summary not printed: %v", driver.infoMessages)
	}
}

func TestPresenterShowErrors(t *testing.T) {
	driver := &stubDriver{}
	p := NewPresenter(driver, Theme{ErrorPrefix: "! "})
	errs := enroll.Errors{
		Fields:  map[string]string{"email": "Email already registered"},
		Backend: "Could not add student",
	}
	if err := p.ShowErrors(context.Background(), errs); err != nil {
		t.Fatalf("show errors: %v", err)
	}
	want := []string{"! Email already registered", "! Could not add student"}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}
