package dto

import (
	"time"

	"github.com/oppspot/oppspot-api/internal/models"
)

// ApprovalCreateRequest asks an approver to sign off.
type ApprovalCreateRequest struct {
	Title          string `json:"title" validate:"required,min=3,max=255"`
	ApproverID     uint   `json:"approver_id" validate:"required,gt=0"`
	WorkflowStepID *uint  `json:"workflow_step_id" validate:"omitempty,gt=0"`
}

// ApprovalDecisionRequest records the approver's decision.
type ApprovalDecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Note     string `json:"note" validate:"omitempty,max=2000"`
}

// ApprovalResponse is the serialized representation returned to API clients.
type ApprovalResponse struct {
	ID             uint       `json:"id"`
	DataRoomID     uint       `json:"data_room_id"`
	WorkflowStepID *uint      `json:"workflow_step_id,omitempty"`
	RequesterID    uint       `json:"requester_id"`
	ApproverID     uint       `json:"approver_id"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	DecisionNote   string     `json:"decision_note,omitempty"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ApprovalListResponse wraps a page of approval requests.
type ApprovalListResponse struct {
	Items      []ApprovalResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewApprovalResponse converts a model into a DTO.
func NewApprovalResponse(model models.ApprovalRequest) ApprovalResponse {
	return ApprovalResponse{
		ID:             model.ID,
		DataRoomID:     model.DataRoomID,
		WorkflowStepID: model.WorkflowStepID,
		RequesterID:    model.RequesterID,
		ApproverID:     model.ApproverID,
		Title:          model.Title,
		Status:         model.Status,
		DecisionNote:   model.DecisionNote,
		DecidedAt:      model.DecidedAt,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

// NewApprovalResponseSlice converts a slice of models into DTOs.
func NewApprovalResponseSlice(approvals []models.ApprovalRequest) []ApprovalResponse {
	responses := make([]ApprovalResponse, 0, len(approvals))
	for _, approval := range approvals {
		responses = append(responses, NewApprovalResponse(approval))
	}
	return responses
}
