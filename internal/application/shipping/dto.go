package shipping

import (
	"time"

	"github.com/google/uuid"

	"github.com/wecre8/oto/internal/infrastructure/scheduler"
)

// ---- Request DTOs ----

// DispatchRequest asks for one OTO API call for a fulfillment
type DispatchRequest struct {
	FulfillmentID int64  `json:"fulfillment_id" binding:"required,gt=0"`
	Destination   string `json:"destination" binding:"required,oneof=createOrder cancelOrder"`
}

// ---- Response DTOs ----

// TaskResponse is the externally visible state of a background task
type TaskResponse struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Status      scheduler.TaskStatus `json:"status"`
	Result      any                  `json:"result,omitempty"`
	Error       string               `json:"error,omitempty"`
	SubmittedAt time.Time            `json:"submitted_at"`
	StartedAt   *time.Time           `json:"started_at,omitempty"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
}

// ToTaskResponse converts a scheduler task. A nil task yields nil.
func ToTaskResponse(t *scheduler.Task) *TaskResponse {
	if t == nil {
		return nil
	}
	return &TaskResponse{
		ID:          t.ID,
		Name:        t.Name,
		Status:      t.Status,
		Result:      t.Result,
		Error:       t.Error,
		SubmittedAt: t.SubmittedAt,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
	}
}
