package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the status of a background task
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "PENDING"
	TaskStatusRunning TaskStatus = "RUNNING"
	TaskStatusSuccess TaskStatus = "SUCCESS"
	TaskStatusFailed  TaskStatus = "FAILED"
)

// Task is one fire-and-forget unit of work. Payload and Result are JSON so
// tasks can travel through an out-of-process broker.
type Task struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Payload     json.RawMessage `json:"payload"`
	Status      TaskStatus      `json:"status"`
	Error       string          `json:"error,omitempty"`
	Result      any             `json:"result,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// NewTask creates a pending task with payload encoded as JSON
func NewTask(name string, payload any) (*Task, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidTask)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode payload: %v", ErrInvalidTask, err)
	}
	return &Task{
		ID:          uuid.New(),
		Name:        name,
		Payload:     raw,
		Status:      TaskStatusPending,
		SubmittedAt: time.Now(),
	}, nil
}

// Start marks the task as running
func (t *Task) Start() {
	now := time.Now()
	t.Status = TaskStatusRunning
	t.StartedAt = &now
	t.Error = ""
}

// Complete marks the task as successful with its return value
func (t *Task) Complete(result any) {
	now := time.Now()
	t.Status = TaskStatusSuccess
	t.CompletedAt = &now
	t.Result = result
}

// Fail marks the task as failed
func (t *Task) Fail(err string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.CompletedAt = &now
	t.Error = err
}

// IsFinished returns true once the task succeeded or failed
func (t *Task) IsFinished() bool {
	return t.Status == TaskStatusSuccess || t.Status == TaskStatusFailed
}

// HandlerFunc executes a task payload and returns the task result
type HandlerFunc func(ctx context.Context, payload json.RawMessage) (any, error)

// Broker moves tasks from submitters to workers
type Broker interface {
	// Enqueue hands a task to the broker
	Enqueue(ctx context.Context, task *Task) error
	// Dequeue blocks until a task is available, ctx is done, or the broker is
	// closed (ErrBrokerClosed)
	Dequeue(ctx context.Context) (*Task, error)
	// Close stops the broker from accepting and handing out tasks
	Close() error
}

// ResultBackend keeps finished tasks so callers can look up their outcome
type ResultBackend interface {
	StoreResult(ctx context.Context, task *Task) error
	LoadResult(ctx context.Context, id uuid.UUID) (*Task, error)
}
