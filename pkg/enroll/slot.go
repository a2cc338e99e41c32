package enroll

import (
	"sync"

	"github.com/google/uuid"
)

// Slot holds at most one unconsumed Outcome. The request goroutine puts,
// the workflow takes; taking clears the slot so an outcome is never handled
// twice.
type Slot struct {
	mu      sync.Mutex
	outcome *Outcome
	ready   chan struct{}
}

// NewSlot returns an empty slot.
func NewSlot() *Slot {
	return &Slot{ready: make(chan struct{}, 1)}
}

// Put deposits an outcome. It fails with ErrSlotOccupied while a previous
// outcome is still pending.
func (s *Slot) Put(o Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome != nil {
		return ErrSlotOccupied
	}
	s.outcome = &o
	select {
	case s.ready <- struct{}{}:
	default:
	}
	return nil
}

// Take removes and returns the pending outcome.
func (s *Slot) Take() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return Outcome{}, false
	}
	o := *s.outcome
	s.clearLocked()
	return o, true
}

// Peek returns the pending outcome without consuming it.
func (s *Slot) Peek() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return Outcome{}, false
	}
	return *s.outcome, true
}

// Discard clears the slot when it holds the outcome with the given id.
func (s *Slot) Discard(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil || s.outcome.ID != id {
		return false
	}
	s.clearLocked()
	return true
}

// Clear drops any pending outcome.
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Ready is signalled whenever an outcome is deposited.
func (s *Slot) Ready() <-chan struct{} {
	return s.ready
}

func (s *Slot) clearLocked() {
	s.outcome = nil
	select {
	case <-s.ready:
	default:
	}
}
