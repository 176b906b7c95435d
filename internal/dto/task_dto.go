package dto

import (
	"time"

	"github.com/oppspot/oppspot-api/internal/models"
)

// TaskCreateRequest describes the payload for creating a task.
type TaskCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=255"`
	Description string  `json:"description" validate:"omitempty"`
	AssigneeID  *uint   `json:"assignee_id" validate:"omitempty,gt=0"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// TaskUpdateRequest describes the mutable task fields. A status change to
// completed stamps completed_at in the same operation.
type TaskUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string `json:"description" validate:"omitempty"`
	AssigneeID  *uint   `json:"assignee_id" validate:"omitempty,gt=0"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      *string `json:"status" validate:"omitempty,oneof=open in_progress completed cancelled"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// TaskResponse is the serialized representation returned to API clients.
type TaskResponse struct {
	ID          uint       `json:"id"`
	DataRoomID  uint       `json:"data_room_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  *uint      `json:"assignee_id,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskListResponse wraps a page of tasks.
type TaskListResponse struct {
	Items      []TaskResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// NewTaskResponse converts a model into a DTO.
func NewTaskResponse(model models.Task) TaskResponse {
	return TaskResponse{
		ID:          model.ID,
		DataRoomID:  model.DataRoomID,
		Title:       model.Title,
		Description: model.Description,
		AssigneeID:  model.AssigneeID,
		Status:      model.Status,
		Priority:    model.Priority,
		DueDate:     model.DueDate,
		CompletedAt: model.CompletedAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewTaskResponseSlice converts a slice of models into DTOs.
func NewTaskResponseSlice(tasks []models.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, NewTaskResponse(task))
	}
	return responses
}
