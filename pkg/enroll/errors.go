package enroll

import (
	"errors"
	"sort"
	"strings"

	"github.com/goliatone/go-enroll/pkg/student"
)

var (
	// ErrBusy signals an operation refused while a submission is in flight.
	ErrBusy = errors.New("enroll: submission in progress")
	// ErrSlotOccupied is returned by Slot.Put while an outcome is pending.
	ErrSlotOccupied = errors.New("enroll: outcome slot occupied")
	// ErrNoCreator is returned by New when no Creator is supplied.
	ErrNoCreator = errors.New("enroll: creator is required")
)

// Errors is the error state displayed to the operator after a failed
// submission.
type Errors struct {
	Fields  map[string]string
	Backend string
}

// Empty reports whether nothing is displayed.
func (e Errors) Empty() bool {
	return len(e.Fields) == 0 && strings.TrimSpace(e.Backend) == ""
}

// Messages lists field messages in draft field order (unknown keys sorted
// after them), then the backend message.
func (e Errors) Messages() []string {
	var out []string
	seen := make(map[string]struct{}, len(e.Fields))
	for _, f := range student.Fields() {
		if msg, ok := e.Fields[string(f)]; ok {
			seen[string(f)] = struct{}{}
			if msg = strings.TrimSpace(msg); msg != "" {
				out = append(out, msg)
			}
		}
	}

	var extra []string
	for key := range e.Fields {
		if _, ok := seen[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		if msg := strings.TrimSpace(e.Fields[key]); msg != "" {
			out = append(out, msg)
		}
	}

	if msg := strings.TrimSpace(e.Backend); msg != "" {
		out = append(out, msg)
	}
	return out
}

// Message joins Messages with newlines.
func (e Errors) Message() string {
	return strings.Join(e.Messages(), "\n")
}

func (e Errors) clone() Errors {
	out := Errors{Backend: e.Backend}
	if len(e.Fields) > 0 {
		out.Fields = make(map[string]string, len(e.Fields))
		for k, v := range e.Fields {
			out.Fields[k] = v
		}
	}
	return out
}
