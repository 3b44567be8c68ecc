package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryBroker is an in-process broker backed by a buffered channel
type MemoryBroker struct {
	tasks  chan *Task
	mu     sync.RWMutex
	closed bool
}

// NewMemoryBroker creates a broker holding up to capacity queued tasks
func NewMemoryBroker(capacity int) *MemoryBroker {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryBroker{
		tasks: make(chan *Task, capacity),
	}
}

// Enqueue implements Broker. It never blocks: a full queue returns ErrTaskQueueFull.
func (b *MemoryBroker) Enqueue(_ context.Context, task *Task) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBrokerClosed
	}

	// Workers get their own copy; the submitter keeps the pending snapshot.
	queued := *task
	select {
	case b.tasks <- &queued:
		return nil
	default:
		return ErrTaskQueueFull
	}
}

// Dequeue implements Broker
func (b *MemoryBroker) Dequeue(ctx context.Context) (*Task, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case task, ok := <-b.tasks:
		if !ok {
			return nil, ErrBrokerClosed
		}
		return task, nil
	}
}

// Close implements Broker. Queued tasks that were not picked up are dropped.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	close(b.tasks)
	return nil
}

// Len returns the number of queued tasks
func (b *MemoryBroker) Len() int {
	return len(b.tasks)
}

// MemoryResultBackend keeps task records in a map. Records expire ttl after
// their last store and are evicted lazily on StoreResult and LoadResult.
type MemoryResultBackend struct {
	mu      sync.Mutex
	ttl     time.Duration
	results map[uuid.UUID]memoryResult
	now     func() time.Time

	lastSweep time.Time
}

// memoryResultSweepInterval bounds how often StoreResult scans for expired records
const memoryResultSweepInterval = time.Minute

type memoryResult struct {
	task      Task
	expiresAt time.Time
}

// NewMemoryResultBackend creates an empty in-memory result backend. A
// non-positive ttl falls back to 24h, the redis backend default.
func NewMemoryResultBackend(ttl time.Duration) *MemoryResultBackend {
	if ttl <= 0 {
		ttl = defaultResultTTL
	}
	return &MemoryResultBackend{
		ttl:     ttl,
		results: make(map[uuid.UUID]memoryResult),
		now:     time.Now,
	}
}

// StoreResult implements ResultBackend
func (r *MemoryResultBackend) StoreResult(_ context.Context, task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.evictExpired(now)
	r.results[task.ID] = memoryResult{task: *task, expiresAt: now.Add(r.ttl)}
	return nil
}

// LoadResult implements ResultBackend. An expired record is ErrTaskNotFound.
func (r *MemoryResultBackend) LoadResult(_ context.Context, id uuid.UUID) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.results[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	if !r.now().Before(entry.expiresAt) {
		delete(r.results, id)
		return nil, ErrTaskNotFound
	}
	task := entry.task
	return &task, nil
}

// Len returns the number of records held, expired ones included
func (r *MemoryResultBackend) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

// evictExpired must be called with mu held
func (r *MemoryResultBackend) evictExpired(now time.Time) {
	if now.Sub(r.lastSweep) < min(r.ttl, memoryResultSweepInterval) {
		return
	}
	r.lastSweep = now
	for id, entry := range r.results {
		if !now.Before(entry.expiresAt) {
			delete(r.results, id)
		}
	}
}

var (
	_ Broker        = (*MemoryBroker)(nil)
	_ ResultBackend = (*MemoryResultBackend)(nil)
)
