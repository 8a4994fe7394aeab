package ports

import (
	"context"
	"time"

	"github.com/rjtc/pms-sync/internal/core/domain"
)

// TaskReader is the read side of the task cache: id-set loading and lazy
// per-id hydration.
type TaskReader interface {
	// GetTaskIDs fetches the set of task ids assigned to a user. Order is
	// whatever the store returns; callers must not assume it is sorted.
	GetTaskIDs(ctx context.Context, userID string) ([]string, error)

	// GetTask returns the cached hydrated task when present. Otherwise it
	// hydrates from the remote store, with at most one in-flight read per
	// id regardless of how many callers are waiting. Hydrating an id with
	// no backing record succeeds and yields a task with all optional
	// fields unset.
	GetTask(ctx context.Context, id string) (*domain.Task, error)

	// Invalidate drops the cached entry for id, forcing the next GetTask
	// to re-hydrate.
	Invalidate(id string)
}

// CreateTaskInput carries the fields required to create a task. All fields
// are mandatory; validation failures surface as domain.ErrInvalidArgument
// before any write is issued.
type CreateTaskInput struct {
	Title       string    `validate:"required"`
	Description string    `validate:"required"`
	StartDate   time.Time `validate:"required"`
	DueDate     time.Time `validate:"required"`
	ProjectID   string    `validate:"required"`
}

// TaskWriter applies task mutations with their multi-location write
// semantics.
type TaskWriter interface {
	// CreateTask writes a new task record under a store-generated key and
	// assigns it to the creating session's user. The assignment is a
	// dependent step: it is only issued after the create write succeeds,
	// and if it fails the created record is deleted again.
	CreateTask(ctx context.Context, sess *domain.Session, input CreateTaskInput) (*domain.Task, error)

	// AssignTask writes the reciprocal user->task and task->member links.
	// It reports success only after both writes are acknowledged.
	AssignTask(ctx context.Context, taskID, userID string) error

	// SetCompletionStatus sets the isCompleted flag of a task.
	SetCompletionStatus(ctx context.Context, taskID string, done bool) error
}
