package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/rjtc/pms-sync/internal/pkg/metrics"
	"github.com/rjtc/pms-sync/internal/core/domain"
	"github.com/rjtc/pms-sync/internal/core/ports"
)

// MutationCoordinator applies task mutations, performing each multi-location
// update as one logical operation. Dependent writes are sequenced: the assign
// step of a create is only issued after the task record write succeeded, and
// an operation reports success only after every underlying write has been
// acknowledged by the store.
type MutationCoordinator struct {
	store    ports.RemoteStore
	cache    *TaskCache
	validate *validator.Validate
	log      zerolog.Logger
}

func NewMutationCoordinator(store ports.RemoteStore, cache *TaskCache, log zerolog.Logger) *MutationCoordinator {
	return &MutationCoordinator{
		store:    store,
		cache:    cache,
		validate: validator.New(),
		log:      log,
	}
}

// CreateTask writes a new task record under a store-generated key with
// isCompleted=false, then assigns it to the creating user. If the assignment
// fails the record is deleted again, so a half-created task is never left
// behind.
func (m *MutationCoordinator) CreateTask(ctx context.Context, sess *domain.Session, input ports.CreateTaskInput) (*domain.Task, error) {
	if sess == nil || sess.UserID == "" {
		return nil, domain.ErrNoUserLoggedIn
	}
	if err := m.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, missingFields(err))
	}

	id, err := m.store.GenerateKey(ctx, "Tasks")
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("create", "error").Inc()
		return nil, fmt.Errorf("create task: %w: %s", domain.ErrRemoteUnavailable, err)
	}

	fields := ports.Record{
		"title":       input.Title,
		"description": input.Description,
		"start date":  float64(input.StartDate.Unix()),
		"due date":    float64(input.DueDate.Unix()),
		"projectID":   input.ProjectID,
		"isCompleted": false,
	}
	if err := m.store.Write(ctx, taskPath(id), fields); err != nil {
		metrics.MutationsTotal.WithLabelValues("create", "error").Inc()
		return nil, fmt.Errorf("create task: %w: %s", domain.ErrRemoteUnavailable, err)
	}

	// Dependent step: the creator joins the member list. On failure the
	// freshly written record is compensated away.
	if err := m.AssignTask(ctx, id, sess.UserID); err != nil {
		if delErr := m.store.Delete(ctx, taskPath(id)); delErr != nil {
			m.log.Error().Err(delErr).Str("task_id", id).Msg("compensating delete failed, task record orphaned")
		}
		metrics.MutationsTotal.WithLabelValues("create", "error").Inc()
		return nil, err
	}

	start := input.StartDate.UTC()
	due := input.DueDate.UTC()
	task := &domain.Task{
		ID:          id,
		Title:       &input.Title,
		Description: &input.Description,
		StartDate:   &start,
		DueDate:     &due,
		ProjectID:   &input.ProjectID,
		Completion:  domain.CompletionNotDone,
		Members:     []string{sess.UserID},
		Hydrated:    true,
	}
	m.cache.put(task)

	metrics.MutationsTotal.WithLabelValues("create", "ok").Inc()
	m.log.Info().Str("task_id", id).Str("user_id", sess.UserID).Msg("task created")
	return task, nil
}

// AssignTask writes the two reciprocal links: Users/{uid}/tasks/{taskID}=true
// and Tasks/{taskID}/members/{uid}=true. Success is reported only once both
// writes are acknowledged; membership may have changed beyond what is known
// locally, so the cached entry is invalidated.
func (m *MutationCoordinator) AssignTask(ctx context.Context, taskID, userID string) error {
	if err := m.store.Write(ctx, userTasksPath(userID), ports.Record{taskID: true}); err != nil {
		metrics.MutationsTotal.WithLabelValues("assign", "error").Inc()
		return fmt.Errorf("assign task: user link: %w: %s", domain.ErrRemoteUnavailable, err)
	}
	if err := m.store.Write(ctx, taskMembersPath(taskID), ports.Record{userID: true}); err != nil {
		metrics.MutationsTotal.WithLabelValues("assign", "error").Inc()
		return fmt.Errorf("assign task: member link: %w: %s", domain.ErrRemoteUnavailable, err)
	}

	m.cache.Invalidate(taskID)
	metrics.MutationsTotal.WithLabelValues("assign", "ok").Inc()
	m.log.Info().Str("task_id", taskID).Str("user_id", userID).Msg("task assigned")
	return nil
}

// SetCompletionStatus sets the isCompleted flag. The write is awaited, then
// the cached entry (if any) is updated in place rather than re-hydrated.
func (m *MutationCoordinator) SetCompletionStatus(ctx context.Context, taskID string, done bool) error {
	if err := m.store.Write(ctx, taskPath(taskID), ports.Record{"isCompleted": done}); err != nil {
		metrics.MutationsTotal.WithLabelValues("set_completion", "error").Inc()
		return fmt.Errorf("set completion: %w: %s", domain.ErrRemoteUnavailable, err)
	}

	m.cache.markCompletion(taskID, done)
	metrics.MutationsTotal.WithLabelValues("set_completion", "ok").Inc()
	return nil
}

// missingFields renders validator errors as "title is required; duedate is
// required".
func missingFields(err error) string {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, strings.ToLower(fe.Field())+" is required")
	}
	return strings.Join(msgs, "; ")
}
