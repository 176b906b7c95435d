package models

import "time"

// Workflow step statuses.
const (
	StepStatusPending   = "pending"
	StepStatusActive    = "active"
	StepStatusCompleted = "completed"
	StepStatusSkipped   = "skipped"
)

// Workflow is an ordered checklist driving a data room through a deal process.
type Workflow struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	DataRoomID uint           `gorm:"not null;index" json:"data_room_id"`
	Name       string         `gorm:"size:255;not null" json:"name"`
	CreatedBy  uint           `gorm:"not null" json:"created_by"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Steps      []WorkflowStep `gorm:"foreignKey:WorkflowID" json:"steps"`
}

// WorkflowStep is a single stage within a workflow. Steps advance
// pending -> active -> completed, or may be skipped.
type WorkflowStep struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	WorkflowID  uint       `gorm:"not null;index" json:"workflow_id"`
	Position    int        `gorm:"not null" json:"position"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Status      string     `gorm:"size:32;not null;default:pending" json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
