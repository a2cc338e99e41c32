package enroll

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-enroll/pkg/student"
)

// NotAvailable replaces values the service response does not provide.
const NotAvailable = "not available"

const (
	keyUsername = "username"
	keyDOB      = "dob"

	// Values longer than this are abbreviated in the summary text.
	summaryValueLimit = 96
)

// DisplayPassword derives the initial password shown to the operator from a
// yyyy-mm-dd date of birth, as dd-mm-yyyy. It is a presentation convention
// mirroring how the service seeds new accounts, not the stored password.
func DisplayPassword(dob string) string {
	parts := strings.Split(dob, "-")
	if len(parts) != 3 {
		return NotAvailable
	}
	for _, p := range parts {
		if p == "" {
			return NotAvailable
		}
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}

// Merge overlays the service record on the draft. Server values win.
func Merge(draft student.Draft, created Record) Record {
	return Overlay(RecordFromDraft(draft), created)
}

// SummaryField is one line of the credential summary.
type SummaryField struct {
	Key   string
	Value string
}

// Summary is the one-time credential summary shown after a student is
// created.
type Summary struct {
	Username string
	Password string
	Fields   []SummaryField
}

// Reconcile builds the summary for a created student from the draft that
// was submitted and the record the service returned.
func Reconcile(draft student.Draft, created Record) Summary {
	username, _ := created.Get(keyUsername)
	if strings.TrimSpace(username) == "" {
		username = NotAvailable
	}
	dob, _ := created.Get(keyDOB)

	combined := Merge(draft, created)
	summary := Summary{
		Username: username,
		Password: DisplayPassword(dob),
	}
	for _, key := range combined.Keys() {
		if key == keyUsername {
			continue
		}
		value, _ := combined.Get(key)
		summary.Fields = append(summary.Fields, SummaryField{Key: key, Value: value})
	}
	return summary
}

// Field returns the summary value for key.
func (s Summary) Field(key string) (string, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

func (s Summary) String() string {
	var b strings.Builder
	b.WriteString("Student added successfully!\n\n")
	fmt.Fprintf(&b, "Username: %s\n", s.Username)
	fmt.Fprintf(&b, "Password: %s\n", s.Password)
	b.WriteString("(initial password derived from the date of birth as dd-mm-yyyy; shown only once)\n\n")
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "%s: %s\n", f.Key, abbreviate(f.Value))
	}
	return b.String()
}

func abbreviate(value string) string {
	if len(value) <= summaryValueLimit {
		return value
	}
	return fmt.Sprintf("%s... (%d chars)", value[:summaryValueLimit/2], len(value))
}
