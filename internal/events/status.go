package events

import (
	"sort"
	"sync"
)

// Kind names a category of asynchronous request, e.g. sign-in.
type Kind string

// State is the lifecycle position of one request kind.
type State int

const (
	NotStarted State = iota
	InProgress
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the shared record a background unit resolves. Payload is opaque
// to the machine; Err carries the failure message.
type Status struct {
	State   State
	Payload []byte
	Err     string
}

// Terminal reports whether the status will not change for this dispatch.
func (s Status) Terminal() bool {
	return s.State == Done || s.State == Failed
}

// slot is the only channel between the UI goroutine and background units.
// Every access goes through modify or tryModify.
type slot struct {
	mu       sync.Mutex
	statuses map[Kind]Status
}

func newSlot() *slot {
	return &slot{statuses: make(map[Kind]Status)}
}

// modify runs fn with the lock held.
func (s *slot) modify(fn func(statuses map[Kind]Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.statuses)
}

// tryModify runs fn only if the lock is free and reports whether it ran.
func (s *slot) tryModify(fn func(statuses map[Kind]Status)) bool {
	if !s.mu.TryLock() {
		return false
	}
	defer s.mu.Unlock()
	fn(s.statuses)
	return true
}

func sortedKinds(kinds []Kind) []Kind {
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
