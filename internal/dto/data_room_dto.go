package dto

import (
	"time"

	"github.com/oppspot/oppspot-api/internal/models"
)

// DataRoomCreateRequest describes the payload for creating a data room.
type DataRoomCreateRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=255"`
	CompanyName string `json:"company_name" validate:"omitempty,max=255"`
	DealType    string `json:"deal_type" validate:"omitempty,max=64"`
}

// DataRoomUpdateRequest describes the mutable data-room fields. Pointer
// fields form the update allow-list; anything else in the body is ignored.
type DataRoomUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=3,max=255"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=255"`
	DealType    *string `json:"deal_type" validate:"omitempty,max=64"`
	Status      *string `json:"status" validate:"omitempty,oneof=active archived"`
}

// DataRoomResponse is the serialized representation returned to API clients.
type DataRoomResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	CompanyName string    `json:"company_name"`
	DealType    string    `json:"deal_type"`
	OwnerID     uint      `json:"owner_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DataRoomListResponse wraps a page of data rooms.
type DataRoomListResponse struct {
	Items      []DataRoomResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// DataRoomSummaryResponse aggregates per-room counts for the overview panel.
type DataRoomSummaryResponse struct {
	DataRoomID       uint  `json:"data_room_id"`
	DocumentCount    int64 `json:"document_count"`
	TaskCount        int64 `json:"task_count"`
	OpenTaskCount    int64 `json:"open_task_count"`
	PendingApprovals int64 `json:"pending_approvals"`
	ActivityCount    int64 `json:"activity_count"`
	CacheHit         bool  `json:"cache_hit"`
}

// NewDataRoomResponse converts a model into a DTO.
func NewDataRoomResponse(model models.DataRoom) DataRoomResponse {
	return DataRoomResponse{
		ID:          model.ID,
		Name:        model.Name,
		CompanyName: model.CompanyName,
		DealType:    model.DealType,
		OwnerID:     model.OwnerID,
		Status:      model.Status,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewDataRoomResponseSlice converts a slice of models into DTOs.
func NewDataRoomResponseSlice(rooms []models.DataRoom) []DataRoomResponse {
	responses := make([]DataRoomResponse, 0, len(rooms))
	for _, room := range rooms {
		responses = append(responses, NewDataRoomResponse(room))
	}
	return responses
}
