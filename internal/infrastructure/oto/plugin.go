package oto

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wecre8/oto/internal/domain/fulfillment"
	domainPlugin "github.com/wecre8/oto/internal/domain/shared/plugin"
	"github.com/wecre8/oto/internal/infrastructure/scheduler"
)

// PluginName is the registry name of the OTO plugin
const PluginName = "oto"

// TaskSubmitter enqueues background tasks
type TaskSubmitter interface {
	Submit(ctx context.Context, name string, payload any) (*scheduler.Task, error)
}

// Plugin forwards fulfillment lifecycle events to OTO. It never calls the
// API inline: each hook submits one TaskSendRequest task.
type Plugin struct {
	active bool
	config Config
	tasks  TaskSubmitter
	logger *zap.Logger
}

// NewPlugin creates the OTO plugin
func NewPlugin(active bool, cfg Config, tasks TaskSubmitter, logger *zap.Logger) *Plugin {
	return &Plugin{
		active: active,
		config: cfg,
		tasks:  tasks,
		logger: logger.Named("oto.plugin"),
	}
}

// Name implements FulfillmentPlugin
func (p *Plugin) Name() string {
	return PluginName
}

// IsActive implements FulfillmentPlugin
func (p *Plugin) IsActive() bool {
	return p.active
}

// Config returns the plugin configuration
func (p *Plugin) Config() Config {
	return p.config
}

// FulfillmentCreated implements FulfillmentPlugin
func (p *Plugin) FulfillmentCreated(ctx context.Context, f *fulfillment.Fulfillment) error {
	_, err := p.SendRequestAsync(ctx, f.ID, DestinationCreateOrder)
	return err
}

// FulfillmentCanceled implements FulfillmentPlugin
func (p *Plugin) FulfillmentCanceled(ctx context.Context, f *fulfillment.Fulfillment) error {
	_, err := p.SendRequestAsync(ctx, f.ID, DestinationCancelOrder)
	return err
}

// SendRequestAsync submits a TaskSendRequest task carrying the plugin
// configuration. Repeated calls are not deduplicated.
func (p *Plugin) SendRequestAsync(ctx context.Context, fulfillmentID int64, destination string) (*scheduler.Task, error) {
	if !p.active {
		p.logger.Debug("OTO plugin inactive, skipping request",
			zap.Int64("fulfillment_id", fulfillmentID),
			zap.String("destination", destination),
		)
		return nil, nil
	}

	task, err := p.tasks.Submit(ctx, TaskSendRequest, SendRequestTask{
		FulfillmentID: fulfillmentID,
		Destination:   destination,
		Config:        p.config,
	})
	if err != nil {
		return nil, fmt.Errorf("oto: failed to submit %s task: %w", destination, err)
	}

	p.logger.Info("OTO request queued",
		zap.String("task_id", task.ID.String()),
		zap.Int64("fulfillment_id", fulfillmentID),
		zap.String("destination", destination),
	)
	return task, nil
}

// Ensure Plugin implements FulfillmentPlugin interface
var _ domainPlugin.FulfillmentPlugin = (*Plugin)(nil)
