package dto

import (
	"time"

	"github.com/oppspot/oppspot-api/internal/models"
)

// DocumentCreateRequest carries the metadata accompanying a file upload.
type DocumentCreateRequest struct {
	Name     string `form:"name" json:"name" validate:"required,min=1,max=255"`
	Category string `form:"category" json:"category" validate:"omitempty,max=64"`
}

// DocumentUpdateRequest describes the mutable document fields.
type DocumentUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	Category *string `json:"category" validate:"omitempty,max=64"`
	Status   *string `json:"status" validate:"omitempty,oneof=active archived"`
}

// DocumentResponse is the serialized representation returned to API clients.
type DocumentResponse struct {
	ID         uint      `json:"id"`
	DataRoomID uint      `json:"data_room_id"`
	UploaderID uint      `json:"uploader_id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	FileURL    string    `json:"file_url"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DocumentListResponse wraps a page of documents.
type DocumentListResponse struct {
	Items      []DocumentResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewDocumentResponse converts a model into a DTO.
func NewDocumentResponse(model models.Document) DocumentResponse {
	return DocumentResponse{
		ID:         model.ID,
		DataRoomID: model.DataRoomID,
		UploaderID: model.UploaderID,
		Name:       model.Name,
		Category:   model.Category,
		MimeType:   model.MimeType,
		SizeBytes:  model.SizeBytes,
		FileURL:    model.FileURL,
		Status:     model.Status,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// NewDocumentResponseSlice converts a slice of models into DTOs.
func NewDocumentResponseSlice(documents []models.Document) []DocumentResponse {
	responses := make([]DocumentResponse, 0, len(documents))
	for _, document := range documents {
		responses = append(responses, NewDocumentResponse(document))
	}
	return responses
}
