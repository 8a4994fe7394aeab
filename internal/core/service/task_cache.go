package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rjtc/pms-sync/internal/pkg/metrics"
	"github.com/rjtc/pms-sync/internal/core/domain"
	"github.com/rjtc/pms-sync/internal/core/ports"
)

// TaskCache is the read-through cache over remote task records. It owns the
// mapping from task id to hydrated Task and guarantees at most one in-flight
// remote read per id, no matter how many callers ask concurrently.
//
// All map access goes through a single mutex; hydration completions arriving
// on arbitrary goroutines are serialized through it.
type TaskCache struct {
	store ports.RemoteStore
	log   zerolog.Logger

	group singleflight.Group

	mu    sync.RWMutex
	tasks map[string]*domain.Task
}

func NewTaskCache(store ports.RemoteStore, log zerolog.Logger) *TaskCache {
	return &TaskCache{
		store: store,
		log:   log,
		tasks: make(map[string]*domain.Task),
	}
}

// GetTaskIDs fetches the set of task ids assigned to userID from
// Users/{id}/tasks. The record stores ids as an id->true mapping; the keys
// are the id set, in no guaranteed order. A user with no record yields an
// empty list.
func (c *TaskCache) GetTaskIDs(ctx context.Context, userID string) ([]string, error) {
	rec, err := c.store.ReadOnce(ctx, userTasksPath(userID))
	if err != nil {
		return nil, fmt.Errorf("get task ids: %w: %s", domain.ErrRemoteUnavailable, err)
	}

	ids := make([]string, 0, len(rec))
	for id := range rec {
		ids = append(ids, id)
	}
	return ids, nil
}

// GetTask returns the hydrated task for id. A cached entry is returned
// immediately. Otherwise exactly one remote read is issued for the id;
// concurrent callers coalesce onto it and all receive the same Task.
//
// An id with no backing record hydrates successfully to a Task with all
// optional fields unset. Only transport failures are errors.
func (c *TaskCache) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	if t := c.lookup(id); t != nil {
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return t, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()

	v, err, shared := c.group.Do(id, func() (any, error) {
		// A racing caller may have completed hydration between the lookup
		// above and acquiring the flight.
		if t := c.lookup(id); t != nil {
			return t, nil
		}
		return c.hydrate(ctx, id)
	})
	if shared {
		metrics.HydrationsDeduplicatedTotal.Inc()
	}
	if err != nil {
		return nil, err
	}
	return v.(*domain.Task), nil
}

// Invalidate drops the cached entry for id. The next GetTask re-hydrates.
// Used after a mutation that changed fields not already known locally.
func (c *TaskCache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.tasks, id)
	c.mu.Unlock()
}

// hydrate reads Tasks/{id} and caches the mapped task.
func (c *TaskCache) hydrate(ctx context.Context, id string) (*domain.Task, error) {
	rec, err := c.store.ReadOnce(ctx, taskPath(id))
	if err != nil {
		metrics.HydrationsTotal.WithLabelValues("error").Inc()
		c.log.Warn().Err(err).Str("task_id", id).Msg("task hydration failed")
		return nil, fmt.Errorf("hydrate task %s: %w: %s", id, domain.ErrRemoteUnavailable, err)
	}
	if rec == nil {
		metrics.HydrationsTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.HydrationsTotal.WithLabelValues("loaded").Inc()
	}

	t := taskFromRecord(id, rec)
	c.put(t)
	return t, nil
}

func (c *TaskCache) lookup(id string) *domain.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tasks[id]
}

// put stores a hydrated task. Stubs are never cached, so a hydrated entry
// can never be downgraded back to one.
func (c *TaskCache) put(t *domain.Task) {
	if !t.Hydrated {
		return
	}
	c.mu.Lock()
	c.tasks[t.ID] = t
	c.mu.Unlock()
}

// markCompletion updates the completion state of a cached entry in place.
// A miss is fine: the next hydration reads the authoritative value anyway.
func (c *TaskCache) markCompletion(id string, done bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tasks[id]
	if !ok {
		return
	}
	clone := *t
	clone.Completion = domain.CompletionFromBool(done)
	c.tasks[id] = &clone
}
