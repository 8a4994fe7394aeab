package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rjtc/pms-sync/internal/pkg/metrics"
	"github.com/rjtc/pms-sync/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Prefetcher warms the task cache in the background after an id list has
// been served, so visible rows usually resolve without waiting on a remote
// read. Ids are routed to a fixed set of workers by consistent hashing,
// keeping per-id ordering; the cache's per-id dedup makes a prefetch
// racing an on-demand hydration harmless.
type Prefetcher struct {
	workers []chan string
	reader  ports.TaskReader
	log     zerolog.Logger
}

// NewPrefetcher creates a Prefetcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewPrefetcher(numWorkers int, reader ports.TaskReader, log zerolog.Logger) *Prefetcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	p := &Prefetcher{
		workers: make([]chan string, numWorkers),
		reader:  reader,
		log:     log,
	}
	for i := range p.workers {
		p.workers[i] = make(chan string, channelBuffer)
	}
	return p
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (p *Prefetcher) Start(ctx context.Context) {
	for i, ch := range p.workers {
		go p.runWorker(ctx, i, ch)
	}
}

// Enqueue schedules one task id for background hydration. When the worker's
// buffer is full the id is dropped: prefetching is best effort and the next
// on-demand GetTask hydrates it anyway.
func (p *Prefetcher) Enqueue(id string) {
	i := p.shardIndex(id)
	select {
	case p.workers[i] <- id:
		metrics.PrefetchQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(p.workers[i])))
	default:
		p.log.Debug().Str("task_id", id).Msg("prefetch queue full, id dropped")
	}
}

// EnqueueBatch schedules multiple ids, preserving per-id ordering.
func (p *Prefetcher) EnqueueBatch(ids []string) {
	for _, id := range ids {
		p.Enqueue(id)
	}
}

// shardIndex maps a task id deterministically to a worker index.
func (p *Prefetcher) shardIndex(id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32()) % len(p.workers)
}

func (p *Prefetcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case taskID, ok := <-ch:
			if !ok {
				return
			}
			metrics.PrefetchQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if _, err := p.reader.GetTask(ctx, taskID); err != nil {
				// Degraded, not fatal: the row stays unresolved until
				// the user refreshes.
				p.log.Warn().Err(err).Str("task_id", taskID).Msg("background hydration failed")
			}
		}
	}
}
