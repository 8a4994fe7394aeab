package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rjtc/pms-sync/internal/core/domain"
	"github.com/rjtc/pms-sync/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func managerSession() *domain.Session {
	return &domain.Session{
		UserID: "u1",
		Email:  "mark@example.com",
		Name:   "Mark",
		Role:   domain.RoleManager,
	}
}

func validInput() ports.CreateTaskInput {
	return ports.CreateTaskInput{
		Title:       "Design",
		Description: "Design the landing page",
		StartDate:   time.Date(2018, 1, 23, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2018, 2, 1, 0, 0, 0, 0, time.UTC),
		ProjectID:   "p1",
	}
}

func newCoordinator(store *stubRemoteStore) (*MutationCoordinator, *TaskCache) {
	cache := NewTaskCache(store, zerolog.Nop())
	return NewMutationCoordinator(store, cache, zerolog.Nop()), cache
}

// ---------------------------------------------------------------------------
// CreateTask validation
// ---------------------------------------------------------------------------

func TestMutation_Create_MissingFieldsRejectedBeforeAnyWrite(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ports.CreateTaskInput)
	}{
		{"title", func(in *ports.CreateTaskInput) { in.Title = "" }},
		{"description", func(in *ports.CreateTaskInput) { in.Description = "" }},
		{"start date", func(in *ports.CreateTaskInput) { in.StartDate = time.Time{} }},
		{"due date", func(in *ports.CreateTaskInput) { in.DueDate = time.Time{} }},
		{"project id", func(in *ports.CreateTaskInput) { in.ProjectID = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newStubRemoteStore()
			coord, _ := newCoordinator(store)

			input := validInput()
			tc.mutate(&input)

			_, err := coord.CreateTask(context.Background(), managerSession(), input)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got: %v", err)
			}
			if len(store.writes) != 0 {
				t.Fatalf("expected no writes on validation failure, got %d", len(store.writes))
			}
		})
	}
}

func TestMutation_Create_NoSession(t *testing.T) {
	coord, _ := newCoordinator(newStubRemoteStore())

	if _, err := coord.CreateTask(context.Background(), nil, validInput()); !errors.Is(err, domain.ErrNoUserLoggedIn) {
		t.Fatalf("expected ErrNoUserLoggedIn for nil session, got: %v", err)
	}
	if _, err := coord.CreateTask(context.Background(), &domain.Session{}, validInput()); !errors.Is(err, domain.ErrNoUserLoggedIn) {
		t.Fatalf("expected ErrNoUserLoggedIn for empty session, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// CreateTask happy path
// ---------------------------------------------------------------------------

func TestMutation_Create_WritesRecordAndAssignsCreator(t *testing.T) {
	store := newStubRemoteStore()
	store.nextKey = "t-new"
	coord, cache := newCoordinator(store)

	task, err := coord.CreateTask(context.Background(), managerSession(), validInput())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if task.ID != "t-new" {
		t.Fatalf("expected store-generated id t-new, got %s", task.ID)
	}

	// Task record written with isCompleted=false.
	taskWrites := store.writesTo("Tasks/t-new")
	if len(taskWrites) != 1 {
		t.Fatalf("expected 1 write to Tasks/t-new, got %d", len(taskWrites))
	}
	if done, ok := taskWrites[0].fields["isCompleted"].(bool); !ok || done {
		t.Fatalf("expected isCompleted=false in created record, got %v", taskWrites[0].fields["isCompleted"])
	}
	if taskWrites[0].fields["title"] != "Design" || taskWrites[0].fields["projectID"] != "p1" {
		t.Fatalf("unexpected task record: %v", taskWrites[0].fields)
	}

	// Reciprocal links: new id under the creator's task set, creator under
	// the task's member set.
	userLinks := store.writesTo("Users/u1/tasks")
	if len(userLinks) != 1 || userLinks[0].fields["t-new"] != true {
		t.Fatalf("expected Users/u1/tasks/t-new=true, got %v", userLinks)
	}
	memberLinks := store.writesTo("Tasks/t-new/members")
	if len(memberLinks) != 1 || memberLinks[0].fields["u1"] != true {
		t.Fatalf("expected Tasks/t-new/members/u1=true, got %v", memberLinks)
	}

	// The created task is cached: no remote read needed to render it.
	cached, err := cache.GetTask(context.Background(), "t-new")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if store.readCount("Tasks/t-new") != 0 {
		t.Fatalf("expected created task to be served from cache, got %d reads", store.readCount("Tasks/t-new"))
	}
	if done, ok := cached.Completion.Bool(); !ok || done {
		t.Fatalf("expected known not-done completion, got %v", cached.Completion)
	}
}

// ---------------------------------------------------------------------------
// CreateTask failure paths
// ---------------------------------------------------------------------------

func TestMutation_Create_AssignFailureCompensatesCreate(t *testing.T) {
	store := newStubRemoteStore()
	store.nextKey = "t-new"
	store.writeErr["Users/u1/tasks"] = errors.New("write refused")
	coord, _ := newCoordinator(store)

	_, err := coord.CreateTask(context.Background(), managerSession(), validInput())
	if !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Fatalf("expected ErrRemoteUnavailable, got: %v", err)
	}

	if len(store.deletes) != 1 || store.deletes[0] != "Tasks/t-new" {
		t.Fatalf("expected compensating delete of Tasks/t-new, got %v", store.deletes)
	}
}

func TestMutation_Create_RecordWriteFailure(t *testing.T) {
	store := newStubRemoteStore()
	store.nextKey = "t-new"
	store.writeErr["Tasks/t-new"] = errors.New("write refused")
	coord, _ := newCoordinator(store)

	_, err := coord.CreateTask(context.Background(), managerSession(), validInput())
	if !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Fatalf("expected ErrRemoteUnavailable, got: %v", err)
	}
	if len(store.writesTo("Users/u1/tasks")) != 0 {
		t.Fatal("assignment must not be issued when the create write fails")
	}
}

// ---------------------------------------------------------------------------
// AssignTask
// ---------------------------------------------------------------------------

func TestMutation_Assign_BothLinksWritten(t *testing.T) {
	store := newStubRemoteStore()
	coord, _ := newCoordinator(store)

	if err := coord.AssignTask(context.Background(), "t1", "u2"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if links := store.writesTo("Users/u2/tasks"); len(links) != 1 || links[0].fields["t1"] != true {
		t.Fatalf("expected user->task link, got %v", links)
	}
	if links := store.writesTo("Tasks/t1/members"); len(links) != 1 || links[0].fields["u2"] != true {
		t.Fatalf("expected task->member link, got %v", links)
	}
}

func TestMutation_Assign_SecondWriteFailureReported(t *testing.T) {
	store := newStubRemoteStore()
	store.writeErr["Tasks/t1/members"] = errors.New("write refused")
	coord, _ := newCoordinator(store)

	err := coord.AssignTask(context.Background(), "t1", "u2")
	if !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Fatalf("expected ErrRemoteUnavailable, got: %v", err)
	}
}

func TestMutation_Assign_InvalidatesCachedTask(t *testing.T) {
	store := newStubRemoteStore()
	store.records["Tasks/t1"] = ports.Record{"title": "Design", "members": map[string]any{"u1": true}}
	coord, cache := newCoordinator(store)

	if _, err := cache.GetTask(context.Background(), "t1"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if err := coord.AssignTask(context.Background(), "t1", "u2"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	task, err := cache.GetTask(context.Background(), "t1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if store.readCount("Tasks/t1") != 2 {
		t.Fatalf("expected re-hydration after assignment, got %d reads", store.readCount("Tasks/t1"))
	}
	if len(task.Members) != 2 {
		t.Fatalf("expected refreshed member list, got %v", task.Members)
	}
}

// ---------------------------------------------------------------------------
// SetCompletionStatus
// ---------------------------------------------------------------------------

func TestMutation_SetCompletion_WritesAndUpdatesCacheInPlace(t *testing.T) {
	store := newStubRemoteStore()
	store.records["Tasks/t1"] = ports.Record{"title": "Design", "isCompleted": false}
	coord, cache := newCoordinator(store)

	if _, err := cache.GetTask(context.Background(), "t1"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if err := coord.SetCompletionStatus(context.Background(), "t1", true); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	writes := store.writesTo("Tasks/t1")
	if len(writes) != 1 || writes[0].fields["isCompleted"] != true {
		t.Fatalf("expected single isCompleted=true write, got %v", writes)
	}

	task, err := cache.GetTask(context.Background(), "t1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if store.readCount("Tasks/t1") != 1 {
		t.Fatalf("completion toggle must not trigger re-hydration, got %d reads", store.readCount("Tasks/t1"))
	}
	if done, ok := task.Completion.Bool(); !ok || !done {
		t.Fatalf("expected cached completion done, got %v", task.Completion)
	}
}

func TestMutation_SetCompletion_WriteFailure(t *testing.T) {
	store := newStubRemoteStore()
	store.writeErr["Tasks/t1"] = errors.New("write refused")
	coord, _ := newCoordinator(store)

	if err := coord.SetCompletionStatus(context.Background(), "t1", true); !errors.Is(err, domain.ErrRemoteUnavailable) {
		t.Fatalf("expected ErrRemoteUnavailable, got: %v", err)
	}
}
