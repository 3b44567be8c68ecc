package fulfillment

import "context"

// Status is the fulfillment status on the host platform
type Status string

const (
	StatusFulfilled Status = "fulfilled"
	StatusCanceled  Status = "canceled"
	StatusReturned  Status = "returned"
)

// Fulfillment is one shipment unit of an order
type Fulfillment struct {
	ID               int64
	FulfillmentOrder int
	Status           Status
	Order            *Order
}

// Repository loads fulfillments together with their order graph
type Repository interface {
	// FindFulfillment returns the fulfillment with its order, user, shipping
	// address, lines (with variants, products and images) and payments loaded.
	// Returns shared.ErrNotFound when no fulfillment has the given ID.
	FindFulfillment(ctx context.Context, id int64) (*Fulfillment, error)
}
