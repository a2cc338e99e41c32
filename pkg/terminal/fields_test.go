package terminal

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-enroll/pkg/student"
)

func TestFieldPromptCheck(t *testing.T) {
	tests := []struct {
		field student.Field
		value string
		ok    bool
	}{
		{student.FieldName, "Ada", true},
		{student.FieldName, "   ", false},
		{student.FieldEmail, "ada@example.edu", true},
		{student.FieldEmail, "ada@", false},
		{student.FieldDOB, "2001-05-17", true},
		{student.FieldDOB, "17-05-2001", false},
		{student.FieldDOB, "2001-02-30", false},
		{student.FieldContactNumber, "5550101", true},
		{student.FieldContactNumber, "+5550101", false},
		{student.FieldContactNumber, "555.01", false},
		{student.FieldAvatar, "", true},
	}
	for _, tt := range tests {
		p, ok := promptFor(tt.field)
		if !ok {
			t.Fatalf("no prompt for %s", tt.field)
		}
		err := p.check(tt.value)
		if (err == nil) != tt.ok {
			t.Fatalf("check(%s, %q) err = %v, want ok=%v", tt.field, tt.value, err, tt.ok)
		}
	}
}

func TestPromptsCoverDraftExceptPassword(t *testing.T) {
	seen := make(map[student.Field]bool)
	for _, p := range formPrompts {
		seen[p.field] = true
	}
	for _, f := range student.Fields() {
		if f == student.FieldPassword {
			if seen[f] {
				t.Fatal("password placeholder must not be prompted")
			}
			continue
		}
		if !seen[f] {
			t.Fatalf("field %s has no prompt", f)
		}
	}
}

func TestSelectOptions(t *testing.T) {
	p, _ := promptFor(student.FieldDepartment)
	options := p.options([]string{"Civil", "Mechanical"})
	if diff := cmp.Diff([]string{"None", "Civil", "Mechanical"}, options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if got := selectedIndex(options, "Mechanical"); got != 2 {
		t.Fatalf("selectedIndex = %d", got)
	}
	if got := selectedIndex(options, "Unknown"); got != 0 {
		t.Fatalf("selectedIndex for unknown = %d", got)
	}
	if got := optionValue(options, 0); got != "" {
		t.Fatalf("None should map to empty, got %q", got)
	}
	if got := optionValue(options, 1); got != "Civil" {
		t.Fatalf("optionValue = %q", got)
	}

	year, _ := promptFor(student.FieldYear)
	if diff := cmp.Diff([]string{"None", "1", "2", "3", "4"}, year.options(nil)); diff != "" {
		t.Fatalf("year options mismatch (-want +got):\n%s", diff)
	}
}

func TestLabel(t *testing.T) {
	if got := Label(student.FieldFatherContactNumber); got != "Father's Contact Number" {
		t.Fatalf("label = %q", got)
	}
	if got := Label(student.FieldPassword); got != "password" {
		t.Fatalf("label for unprompted field = %q", got)
	}
}
