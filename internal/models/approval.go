package models

import "time"

// Approval request statuses.
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

// ApprovalRequest asks a named approver to sign off on a data-room step.
type ApprovalRequest struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	DataRoomID     uint       `gorm:"not null;index" json:"data_room_id"`
	WorkflowStepID *uint      `json:"workflow_step_id,omitempty"`
	RequesterID    uint       `gorm:"not null" json:"requester_id"`
	ApproverID     uint       `gorm:"not null;index" json:"approver_id"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	Status         string     `gorm:"size:32;not null;default:pending" json:"status"`
	DecisionNote   string     `gorm:"type:text" json:"decision_note"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
