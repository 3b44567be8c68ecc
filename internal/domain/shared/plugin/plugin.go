package plugin

import (
	"context"

	"github.com/wecre8/oto/internal/domain/fulfillment"
)

// FulfillmentPlugin defines the hooks a shipping integration receives from
// the host platform's fulfillment lifecycle
type FulfillmentPlugin interface {
	// Name returns the unique identifier for the plugin
	Name() string
	// IsActive reports whether the plugin is enabled in configuration
	IsActive() bool
	// FulfillmentCreated is called after a fulfillment has been created
	FulfillmentCreated(ctx context.Context, f *fulfillment.Fulfillment) error
	// FulfillmentCanceled is called after a fulfillment has been canceled
	FulfillmentCanceled(ctx context.Context, f *fulfillment.Fulfillment) error
}
