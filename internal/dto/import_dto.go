package dto

import (
	"time"

	"github.com/oppspot/oppspot-api/internal/models"
)

// ImportAcceptedResponse is returned when a bulk import has been queued.
type ImportAcceptedResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	PollURL string `json:"poll_url"`
}

// ImportJobResponse is the serialized representation of a job record.
type ImportJobResponse struct {
	JobID         string                 `json:"job_id"`
	FileName      string                 `json:"file_name"`
	Status        string                 `json:"status"`
	TotalRows     int                    `json:"total_rows"`
	ProcessedRows int                    `json:"processed_rows"`
	FailedRows    int                    `json:"failed_rows"`
	RowErrors     map[string]interface{} `json:"row_errors,omitempty"`
	FinishedAt    *time.Time             `json:"finished_at,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// NewImportJobResponse converts a model into a DTO.
func NewImportJobResponse(model models.ImportJob) ImportJobResponse {
	return ImportJobResponse{
		JobID:         model.ID,
		FileName:      model.FileName,
		Status:        model.Status,
		TotalRows:     model.TotalRows,
		ProcessedRows: model.ProcessedRows,
		FailedRows:    model.FailedRows,
		RowErrors:     model.RowErrors,
		FinishedAt:    model.FinishedAt,
		CreatedAt:     model.CreatedAt,
	}
}
