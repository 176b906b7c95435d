package dto

import (
	"time"

	"github.com/oppspot/oppspot-api/internal/models"
)

// RecomputeAcceptedResponse is returned when a run has been started.
type RecomputeAcceptedResponse struct {
	RunID   string `json:"run_id"`
	Status  string `json:"status"`
	PollURL string `json:"poll_url"`
}

// RecomputeRunResponse is the serialized representation of a run record.
type RecomputeRunResponse struct {
	RunID      string     `json:"run_id"`
	DataRoomID uint       `json:"data_room_id"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Summary    string     `json:"summary,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// NewRecomputeRunResponse converts a model into a DTO.
func NewRecomputeRunResponse(model models.RecomputeRun) RecomputeRunResponse {
	return RecomputeRunResponse{
		RunID:      model.ID,
		DataRoomID: model.DataRoomID,
		Kind:       model.Kind,
		Status:     model.Status,
		StartedAt:  model.StartedAt,
		FinishedAt: model.FinishedAt,
		Summary:    model.Summary,
		Error:      model.Error,
	}
}
