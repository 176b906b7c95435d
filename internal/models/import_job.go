package models

import (
	"time"

	"gorm.io/datatypes"
)

// Import job statuses.
const (
	ImportStatusPending   = "pending"
	ImportStatusRunning   = "running"
	ImportStatusCompleted = "completed"
	ImportStatusFailed    = "failed"
)

// ImportJob tracks one bulk company import. Progress is persisted so any
// node can answer a poll by job id.
type ImportJob struct {
	ID            string            `gorm:"primaryKey;size:36" json:"id"`
	CreatedBy     uint              `gorm:"not null;index" json:"created_by"`
	FileName      string            `gorm:"size:255" json:"file_name"`
	Status        string            `gorm:"size:32;not null" json:"status"`
	TotalRows     int               `json:"total_rows"`
	ProcessedRows int               `json:"processed_rows"`
	FailedRows    int               `json:"failed_rows"`
	RowErrors     datatypes.JSONMap `gorm:"type:json" json:"row_errors"`
	FinishedAt    *time.Time        `json:"finished_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Terminal reports whether the job has reached a final state.
func (j ImportJob) Terminal() bool {
	return j.Status == ImportStatusCompleted || j.Status == ImportStatusFailed
}
