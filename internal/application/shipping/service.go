package shipping

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wecre8/oto/internal/domain/fulfillment"
	"github.com/wecre8/oto/internal/domain/shared"
	"github.com/wecre8/oto/internal/infrastructure/logger"
	"github.com/wecre8/oto/internal/infrastructure/oto"
	"github.com/wecre8/oto/internal/infrastructure/scheduler"
	"github.com/wecre8/oto/internal/infrastructure/telemetry"
)

// ErrPluginInactive is returned when a manual dispatch is requested while
// the OTO plugin is disabled
var ErrPluginInactive = shared.ErrInvalidState.WithMessage("OTO plugin is not active")

// TaskQueue is the part of the scheduler the service depends on
type TaskQueue interface {
	Submit(ctx context.Context, name string, payload any) (*scheduler.Task, error)
	Register(name string, handler scheduler.HandlerFunc) error
	Lookup(ctx context.Context, id uuid.UUID) (*scheduler.Task, error)
}

// RequestSender performs one OTO API call
type RequestSender interface {
	SendRequest(ctx context.Context, f *fulfillment.Fulfillment, cfg oto.Config, destination string) (any, error)
}

// EventNotifier fans fulfillment events out to the registered plugins
type EventNotifier interface {
	FulfillmentCreated(ctx context.Context, f *fulfillment.Fulfillment) error
	FulfillmentCanceled(ctx context.Context, f *fulfillment.Fulfillment) error
}

// Service coordinates fulfillment events, OTO dispatch and task execution
type Service struct {
	repo      fulfillment.Repository
	plugins   EventNotifier
	otoPlugin *oto.Plugin
	tasks     TaskQueue
	sender    RequestSender
	logger    *zap.Logger
}

// NewService creates a new shipping Service
func NewService(
	repo fulfillment.Repository,
	plugins EventNotifier,
	otoPlugin *oto.Plugin,
	tasks TaskQueue,
	sender RequestSender,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		plugins:   plugins,
		otoPlugin: otoPlugin,
		tasks:     tasks,
		sender:    sender,
		logger:    logger.Named("shipping"),
	}
}

// RegisterHandlers installs the task handlers owned by the service
func (s *Service) RegisterHandlers() error {
	return s.tasks.Register(oto.TaskSendRequest, s.HandleSendRequest)
}

// =============================================================================
// Hook Operations
// =============================================================================

// NotifyFulfillmentCreated loads the fulfillment and notifies every plugin
func (s *Service) NotifyFulfillmentCreated(ctx context.Context, fulfillmentID int64) error {
	return s.notify(ctx, "fulfillment_created", fulfillmentID, s.plugins.FulfillmentCreated)
}

// NotifyFulfillmentCanceled loads the fulfillment and notifies every plugin
func (s *Service) NotifyFulfillmentCanceled(ctx context.Context, fulfillmentID int64) error {
	return s.notify(ctx, "fulfillment_canceled", fulfillmentID, s.plugins.FulfillmentCanceled)
}

func (s *Service) notify(
	ctx context.Context,
	event string,
	fulfillmentID int64,
	hook func(context.Context, *fulfillment.Fulfillment) error,
) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipping", event,
		telemetry.SpanAttrFulfillmentID, fulfillmentID)
	defer span.End()

	f, err := s.repo.FindFulfillment(ctx, fulfillmentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := hook(ctx, f); err != nil {
		telemetry.RecordError(span, err)
		logger.Ctx(ctx, s.logger).Error("Plugin hook failed",
			zap.String("event", event),
			zap.Int64("fulfillment_id", fulfillmentID),
			zap.Error(err),
		)
		return err
	}

	logger.Ctx(ctx, s.logger).Info("Fulfillment event delivered to plugins",
		zap.String("event", event),
		zap.Int64("fulfillment_id", fulfillmentID),
	)
	telemetry.SetOK(span)
	return nil
}

// =============================================================================
// Dispatch Operations
// =============================================================================

// DispatchRequest queues one OTO call for the fulfillment with the current
// plugin configuration. The fulfillment is checked to exist first.
func (s *Service) DispatchRequest(ctx context.Context, req DispatchRequest) (*TaskResponse, error) {
	if s.otoPlugin == nil || !s.otoPlugin.IsActive() {
		return nil, ErrPluginInactive
	}
	if _, err := s.repo.FindFulfillment(ctx, req.FulfillmentID); err != nil {
		return nil, err
	}

	task, err := s.otoPlugin.SendRequestAsync(ctx, req.FulfillmentID, req.Destination)
	if err != nil {
		return nil, err
	}
	return ToTaskResponse(task), nil
}

// LookupTask returns the last recorded state of a task
func (s *Service) LookupTask(ctx context.Context, id uuid.UUID) (*TaskResponse, error) {
	task, err := s.tasks.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToTaskResponse(task), nil
}

// HandleSendRequest executes a queued OTO call. The decoded response body
// becomes the task result.
func (s *Service) HandleSendRequest(ctx context.Context, payload json.RawMessage) (any, error) {
	var args oto.SendRequestTask
	if err := json.Unmarshal(payload, &args); err != nil {
		return nil, fmt.Errorf("shipping: invalid %s payload: %w", oto.TaskSendRequest, err)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "shipping", "send_request",
		telemetry.SpanAttrFulfillmentID, args.FulfillmentID,
		telemetry.SpanAttrDestination, args.Destination,
		telemetry.SpanAttrTaskID, logger.GetTaskID(ctx),
	)
	defer span.End()

	log := logger.Ctx(ctx, s.logger).With(
		zap.Int64("fulfillment_id", args.FulfillmentID),
		zap.String("destination", args.Destination),
	)

	f, err := s.repo.FindFulfillment(ctx, args.FulfillmentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("shipping: load fulfillment %d: %w", args.FulfillmentID, err)
	}

	result, err := s.sender.SendRequest(ctx, f, args.Config, args.Destination)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("OTO request failed", zap.Error(err))
		return nil, err
	}

	log.Info("OTO request sent")
	telemetry.SetOK(span)
	return result, nil
}
