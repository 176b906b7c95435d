package dto

import (
	"time"

	"github.com/oppspot/oppspot-api/internal/models"
)

// WorkflowStepInput names one step when creating a workflow.
type WorkflowStepInput struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// WorkflowCreateRequest describes the payload for creating a workflow.
type WorkflowCreateRequest struct {
	Name  string              `json:"name" validate:"required,min=3,max=255"`
	Steps []WorkflowStepInput `json:"steps" validate:"required,min=1,max=50,dive"`
}

// WorkflowStepAdvanceRequest moves a step to a new state.
type WorkflowStepAdvanceRequest struct {
	Status string `json:"status" validate:"required,oneof=active completed skipped"`
}

// WorkflowStepResponse is the serialized representation of one step.
type WorkflowStepResponse struct {
	ID          uint       `json:"id"`
	Position    int        `json:"position"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// WorkflowResponse is the serialized representation returned to API clients.
type WorkflowResponse struct {
	ID         uint                   `json:"id"`
	DataRoomID uint                   `json:"data_room_id"`
	Name       string                 `json:"name"`
	CreatedBy  uint                   `json:"created_by"`
	Steps      []WorkflowStepResponse `json:"steps"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// NewWorkflowResponse converts a model into a DTO.
func NewWorkflowResponse(model models.Workflow) WorkflowResponse {
	steps := make([]WorkflowStepResponse, 0, len(model.Steps))
	for _, step := range model.Steps {
		steps = append(steps, WorkflowStepResponse{
			ID:          step.ID,
			Position:    step.Position,
			Name:        step.Name,
			Status:      step.Status,
			CompletedAt: step.CompletedAt,
		})
	}

	return WorkflowResponse{
		ID:         model.ID,
		DataRoomID: model.DataRoomID,
		Name:       model.Name,
		CreatedBy:  model.CreatedBy,
		Steps:      steps,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// NewWorkflowResponseSlice converts a slice of models into DTOs.
func NewWorkflowResponseSlice(workflows []models.Workflow) []WorkflowResponse {
	responses := make([]WorkflowResponse, 0, len(workflows))
	for _, workflow := range workflows {
		responses = append(responses, NewWorkflowResponse(workflow))
	}
	return responses
}
