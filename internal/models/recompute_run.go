package models

import "time"

// Recompute run statuses.
const (
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
	RunStatusCancelled  = "cancelled"
)

// Recompute kinds.
const (
	RunKindRedFlags = "red_flags"
)

// RecomputeRun is the durable record of one expensive analysis pass over a
// data room. The newest run's start time drives the cooldown throttle.
type RecomputeRun struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	DataRoomID uint       `gorm:"not null;index" json:"data_room_id"`
	Kind       string     `gorm:"size:32;not null" json:"kind"`
	Status     string     `gorm:"size:32;not null" json:"status"`
	TriggeredBy uint      `gorm:"not null" json:"triggered_by"`
	StartedAt  time.Time  `gorm:"not null;index" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Summary    string     `gorm:"type:text" json:"summary"`
	Error      string     `gorm:"type:text" json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Terminal reports whether the run has reached a final state.
func (r RecomputeRun) Terminal() bool {
	switch r.Status {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	default:
		return false
	}
}
