package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when stopping or querying a scheduler that was never started
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrTaskQueueFull is returned when the in-memory queue is full
	ErrTaskQueueFull = errors.New("task queue is full")

	// ErrBrokerClosed is returned by brokers after Close
	ErrBrokerClosed = errors.New("task broker is closed")

	// ErrTaskNotFound is returned when no result is stored for a task
	ErrTaskNotFound = errors.New("task not found")

	// ErrUnknownTask is recorded on tasks whose name has no registered handler
	ErrUnknownTask = errors.New("no handler registered for task")

	// ErrInvalidTask is returned for tasks without a name
	ErrInvalidTask = errors.New("invalid task")

	// ErrTaskPanicked is recorded on tasks whose handler panicked
	ErrTaskPanicked = errors.New("task handler panicked")

	// ErrHandlerAlreadyRegistered is returned when registering a task name twice
	ErrHandlerAlreadyRegistered = errors.New("task handler already registered")
)
