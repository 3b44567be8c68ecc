package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wecre8/oto/internal/application/shipping"
	"github.com/wecre8/oto/internal/interfaces/http/dto"
)

// ShippingService is the application service behind the hook and OTO routes
type ShippingService interface {
	NotifyFulfillmentCreated(ctx context.Context, fulfillmentID int64) error
	NotifyFulfillmentCanceled(ctx context.Context, fulfillmentID int64) error
	DispatchRequest(ctx context.Context, req shipping.DispatchRequest) (*shipping.TaskResponse, error)
	LookupTask(ctx context.Context, id uuid.UUID) (*shipping.TaskResponse, error)
}

// Hook event names echoed in accepted responses
const (
	EventFulfillmentCreated  = "fulfillment_created"
	EventFulfillmentCanceled = "fulfillment_canceled"
)

// FulfillmentHookHandler receives fulfillment lifecycle events from the host
type FulfillmentHookHandler struct {
	BaseHandler
	service ShippingService
}

// NewFulfillmentHookHandler creates a new FulfillmentHookHandler
func NewFulfillmentHookHandler(service ShippingService) *FulfillmentHookHandler {
	return &FulfillmentHookHandler{service: service}
}

// Created handles POST /hooks/fulfillments/:id/created
func (h *FulfillmentHookHandler) Created(c *gin.Context) {
	h.handle(c, EventFulfillmentCreated, h.service.NotifyFulfillmentCreated)
}

// Canceled handles POST /hooks/fulfillments/:id/canceled
func (h *FulfillmentHookHandler) Canceled(c *gin.Context) {
	h.handle(c, EventFulfillmentCanceled, h.service.NotifyFulfillmentCanceled)
}

func (h *FulfillmentHookHandler) handle(c *gin.Context, event string, notify func(context.Context, int64) error) {
	id, ok := h.fulfillmentID(c)
	if !ok {
		return
	}
	if err := notify(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, dto.AcceptedResponse{FulfillmentID: id, Event: event})
}

func (h *FulfillmentHookHandler) fulfillmentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, "Invalid fulfillment ID")
		return 0, false
	}
	return id, true
}
