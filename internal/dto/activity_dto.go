package dto

import (
	"time"

	"github.com/oppspot/oppspot-api/internal/models"
)

// ActivityResponse is the serialized representation of one audit entry.
type ActivityResponse struct {
	ID           uint                   `json:"id"`
	DataRoomID   uint                   `json:"data_room_id"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   *uint                  `json:"resource_id,omitempty"`
	ActorID      uint                   `json:"actor_id"`
	Action       string                 `json:"action"`
	Detail       map[string]interface{} `json:"detail"`
	CreatedAt    time.Time              `json:"created_at"`
}

// ActivityListResponse wraps a page of activity entries.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewActivityResponse converts a model into a DTO.
func NewActivityResponse(model models.ActivityLog) ActivityResponse {
	return ActivityResponse{
		ID:           model.ID,
		DataRoomID:   model.DataRoomID,
		ResourceType: model.ResourceType,
		ResourceID:   model.ResourceID,
		ActorID:      model.ActorID,
		Action:       model.Action,
		Detail:       model.Detail,
		CreatedAt:    model.CreatedAt,
	}
}

// NewActivityResponseSlice converts a slice of models into DTOs.
func NewActivityResponseSlice(entries []models.ActivityLog) []ActivityResponse {
	responses := make([]ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewActivityResponse(entry))
	}
	return responses
}
