package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wecre8/oto/internal/application/shipping"
	"github.com/wecre8/oto/internal/interfaces/http/middleware"
)

// OTOHandler exposes manual dispatch and task inspection
type OTOHandler struct {
	BaseHandler
	service ShippingService
}

// NewOTOHandler creates a new OTOHandler
func NewOTOHandler(service ShippingService) *OTOHandler {
	return &OTOHandler{service: service}
}

// Dispatch handles POST /oto/dispatch. The call is queued; the response
// carries the pending task.
func (h *OTOHandler) Dispatch(c *gin.Context) {
	var req shipping.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	task, err := h.service.DispatchRequest(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, task)
}

// GetTask handles GET /oto/tasks/:id
func (h *OTOHandler) GetTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.service.LookupTask(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}
