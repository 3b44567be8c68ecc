package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wecre8/oto/internal/infrastructure/logger"
)

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	MaxConcurrentTasks int
	TaskTimeout        time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		MaxConcurrentTasks: 4,
		TaskTimeout:        5 * time.Minute,
	}
}

// Scheduler runs named task handlers on a worker pool fed by a Broker.
// Tasks are executed at most once by this process: failures are recorded
// and logged, never retried, and duplicate submissions are not merged.
type Scheduler struct {
	config   SchedulerConfig
	broker   Broker
	results  ResultBackend
	logger   *zap.Logger
	handlers map[string]HandlerFunc
	tasksRun *prometheus.CounterVec

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithResultBackend stores every finished task in rb
func WithResultBackend(rb ResultBackend) Option {
	return func(s *Scheduler) {
		s.results = rb
	}
}

// WithMetrics registers task counters with reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Scheduler) {
		s.tasksRun = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "oto",
				Subsystem: "tasks",
				Name:      "processed_total",
				Help:      "Total number of background tasks processed.",
			},
			[]string{"name", "status"},
		)
		reg.MustRegister(s.tasksRun)
	}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, broker Broker, logger *zap.Logger, opts ...Option) *Scheduler {
	if config.MaxConcurrentTasks <= 0 {
		config.MaxConcurrentTasks = DefaultSchedulerConfig().MaxConcurrentTasks
	}
	s := &Scheduler{
		config:   config,
		broker:   broker,
		logger:   logger.Named("scheduler"),
		handlers: make(map[string]HandlerFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register binds a handler to a task name. Handlers must be registered before Start.
func (s *Scheduler) Register(name string, handler HandlerFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" || handler == nil {
		return fmt.Errorf("%w: name and handler are required", ErrInvalidTask)
	}
	if _, exists := s.handlers[name]; exists {
		return fmt.Errorf("%w: %s", ErrHandlerAlreadyRegistered, name)
	}
	s.handlers[name] = handler
	return nil
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentTasks; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Task scheduler started",
		zap.Int("workers", s.config.MaxConcurrentTasks),
		zap.Duration("task_timeout", s.config.TaskTimeout),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if err := s.broker.Close(); err != nil {
		s.logger.Warn("Failed to close task broker", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Task scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Task scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether workers are consuming tasks
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Submit enqueues a task and returns immediately. The caller does not wait
// for execution; the outcome is available through Lookup when a result
// backend is configured.
func (s *Scheduler) Submit(ctx context.Context, name string, payload any) (*Task, error) {
	task, err := NewTask(name, payload)
	if err != nil {
		return nil, err
	}
	if s.results != nil {
		if err := s.results.StoreResult(ctx, task); err != nil {
			s.logger.Warn("Failed to record pending task", zap.String("task_id", task.ID.String()), zap.Error(err))
		}
	}
	if err := s.broker.Enqueue(ctx, task); err != nil {
		s.recordRejected(ctx, task, err)
		return nil, err
	}

	s.logger.Debug("Task submitted",
		zap.String("task_id", task.ID.String()),
		zap.String("task_name", task.Name),
	)
	return task, nil
}

// recordRejected overwrites the pending record of a task the broker refused,
// so Lookup reports the enqueue error instead of a task that never runs.
func (s *Scheduler) recordRejected(ctx context.Context, task *Task, cause error) {
	if s.results == nil {
		return
	}
	task.Fail(cause.Error())
	if err := s.results.StoreResult(context.WithoutCancel(ctx), task); err != nil {
		s.logger.Warn("Failed to record rejected task", zap.String("task_id", task.ID.String()), zap.Error(err))
	}
}

// Lookup returns the last recorded state of a task
func (s *Scheduler) Lookup(ctx context.Context, id uuid.UUID) (*Task, error) {
	if s.results == nil {
		return nil, ErrTaskNotFound
	}
	return s.results.LoadResult(ctx, id)
}

// worker processes tasks from the broker
func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	s.logger.Debug("Worker started", zap.Int("worker_id", workerID))

	for {
		task, err := s.broker.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrBrokerClosed) {
				s.logger.Debug("Worker stopping", zap.Int("worker_id", workerID))
				return
			}
			s.logger.Error("Failed to dequeue task", zap.Int("worker_id", workerID), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		s.processTask(ctx, task, workerID)
	}
}

// processTask executes a single task
func (s *Scheduler) processTask(ctx context.Context, task *Task, workerID int) {
	s.mu.RLock()
	handler, ok := s.handlers[task.Name]
	s.mu.RUnlock()

	task.Start()
	s.logger.Info("Processing task",
		zap.Int("worker_id", workerID),
		zap.String("task_id", task.ID.String()),
		zap.String("task_name", task.Name),
	)

	var (
		result any
		err    error
	)
	if !ok {
		err = fmt.Errorf("%w: %s", ErrUnknownTask, task.Name)
	} else {
		taskCtx, _ := logger.WithTaskID(ctx, s.logger, task.ID.String())
		if s.config.TaskTimeout > 0 {
			var cancel context.CancelFunc
			taskCtx, cancel = context.WithTimeout(taskCtx, s.config.TaskTimeout)
			defer cancel()
		}
		result, err = runHandler(taskCtx, handler, task.Payload)
	}

	if err != nil {
		task.Fail(err.Error())
		s.logger.Error("Task failed",
			zap.Int("worker_id", workerID),
			zap.String("task_id", task.ID.String()),
			zap.String("task_name", task.Name),
			zap.Error(err),
		)
	} else {
		task.Complete(result)
		s.logger.Info("Task completed successfully",
			zap.Int("worker_id", workerID),
			zap.String("task_id", task.ID.String()),
			zap.String("task_name", task.Name),
		)
	}

	if s.tasksRun != nil {
		s.tasksRun.WithLabelValues(task.Name, string(task.Status)).Inc()
	}
	if s.results != nil {
		// The task context may already be canceled on shutdown; the outcome is still recorded.
		storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.results.StoreResult(storeCtx, task); err != nil {
			s.logger.Warn("Failed to store task result", zap.String("task_id", task.ID.String()), zap.Error(err))
		}
	}
}

// runHandler turns a handler panic into a task failure so one bad payload
// cannot take the worker down
func runHandler(ctx context.Context, handler HandlerFunc, payload json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return handler(ctx, payload)
}
