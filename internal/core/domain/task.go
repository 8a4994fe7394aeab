package domain

import "time"

// Completion is the tri-state completion status of a task. A record that has
// never been hydrated, or whose remote field is absent, is Unknown — not
// NotDone. Rendering code must treat Unknown explicitly.
type Completion int

const (
	CompletionUnknown Completion = iota
	CompletionNotDone
	CompletionDone
)

// CompletionFromBool converts a known remote boolean into a Completion.
func CompletionFromBool(done bool) Completion {
	if done {
		return CompletionDone
	}
	return CompletionNotDone
}

// Known reports whether the completion status has been resolved.
func (c Completion) Known() bool { return c != CompletionUnknown }

// Bool returns the completion status as a boolean; ok is false for Unknown.
func (c Completion) Bool() (done bool, ok bool) {
	switch c {
	case CompletionDone:
		return true, true
	case CompletionNotDone:
		return false, true
	default:
		return false, false
	}
}

// Task is a unit of work stored remotely under Tasks/{id}.
//
// A Task is either a stub (ID only, Hydrated false) or hydrated. Hydration of
// a record that does not exist in the store still produces a hydrated Task —
// all optional fields stay unset. Absent fields are nil, never zero-valued.
type Task struct {
	ID          string
	Title       *string
	Description *string
	StartDate   *time.Time
	DueDate     *time.Time
	ProjectID   *string
	Completion  Completion
	// Members holds the ids of assigned users. Order carries no meaning.
	Members  []string
	Hydrated bool
}

// NewTaskStub returns a Task known only by id.
func NewTaskStub(id string) *Task {
	return &Task{ID: id}
}
