package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultQueueKey        = "oto:tasks"
	defaultResultKeyPrefix = "oto:task:result:"
	defaultResultTTL       = 24 * time.Hour
	defaultPollTimeout     = time.Second
)

// RedisBrokerConfig holds Redis broker settings
type RedisBrokerConfig struct {
	QueueKey        string
	ResultKeyPrefix string
	ResultTTL       time.Duration
	// PollTimeout bounds each BRPOP so Close is noticed promptly
	PollTimeout time.Duration
}

// RedisBroker is a broker on a Redis list, shared by every process that
// points at the same Redis. It is also a result backend.
type RedisBroker struct {
	client *redis.Client
	config RedisBrokerConfig
	closed atomic.Bool
}

// NewRedisBroker creates a Redis broker using an existing client
func NewRedisBroker(client *redis.Client, cfg RedisBrokerConfig) *RedisBroker {
	if cfg.QueueKey == "" {
		cfg.QueueKey = defaultQueueKey
	}
	if cfg.ResultKeyPrefix == "" {
		cfg.ResultKeyPrefix = defaultResultKeyPrefix
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = defaultResultTTL
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	return &RedisBroker{
		client: client,
		config: cfg,
	}
}

// Enqueue implements Broker
func (b *RedisBroker) Enqueue(ctx context.Context, task *Task) error {
	if b.closed.Load() {
		return ErrBrokerClosed
	}
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}
	if err := b.client.LPush(ctx, b.config.QueueKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// Dequeue implements Broker
func (b *RedisBroker) Dequeue(ctx context.Context) (*Task, error) {
	for {
		if b.closed.Load() {
			return nil, ErrBrokerClosed
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := b.client.BRPop(ctx, b.config.PollTimeout, b.config.QueueKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to dequeue task: %w", err)
		}

		// BRPOP replies with [key, value]
		var task Task
		if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
			return nil, fmt.Errorf("failed to decode task: %w", err)
		}
		return &task, nil
	}
}

// Close implements Broker. The Redis client is owned by the caller and stays open.
func (b *RedisBroker) Close() error {
	b.closed.Store(true)
	return nil
}

// Len returns the number of queued tasks
func (b *RedisBroker) Len(ctx context.Context) (int64, error) {
	return b.client.LLen(ctx, b.config.QueueKey).Result()
}

// StoreResult implements ResultBackend
func (b *RedisBroker) StoreResult(ctx context.Context, task *Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode task result: %w", err)
	}
	key := b.config.ResultKeyPrefix + task.ID.String()
	if err := b.client.Set(ctx, key, data, b.config.ResultTTL).Err(); err != nil {
		return fmt.Errorf("failed to store task result: %w", err)
	}
	return nil
}

// LoadResult implements ResultBackend
func (b *RedisBroker) LoadResult(ctx context.Context, id uuid.UUID) (*Task, error) {
	data, err := b.client.Get(ctx, b.config.ResultKeyPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task result: %w", err)
	}
	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to decode task result: %w", err)
	}
	return &task, nil
}

var (
	_ Broker        = (*RedisBroker)(nil)
	_ ResultBackend = (*RedisBroker)(nil)
)
