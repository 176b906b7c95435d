package dto

import (
	"time"

	"github.com/oppspot/oppspot-api/internal/models"
)

// ProfileUpdateRequest is the fixed allow-list of profile fields a user may
// change. Fields absent from this struct never reach the row.
type ProfileUpdateRequest struct {
	FullName    *string                `json:"full_name" validate:"omitempty,max=255"`
	Title       *string                `json:"title" validate:"omitempty,max=128"`
	Company     *string                `json:"company" validate:"omitempty,max=255"`
	Bio         *string                `json:"bio" validate:"omitempty,max=4000"`
	Preferences map[string]interface{} `json:"preferences" validate:"omitempty"`
}

// ProfileResponse is the serialized representation returned to API clients.
type ProfileResponse struct {
	UserID      uint                   `json:"user_id"`
	FullName    string                 `json:"full_name"`
	Title       string                 `json:"title"`
	Company     string                 `json:"company"`
	Bio         string                 `json:"bio"`
	Preferences map[string]interface{} `json:"preferences"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// NewProfileResponse converts a model into a DTO.
func NewProfileResponse(model models.Profile) ProfileResponse {
	return ProfileResponse{
		UserID:      model.UserID,
		FullName:    model.FullName,
		Title:       model.Title,
		Company:     model.Company,
		Bio:         model.Bio,
		Preferences: model.Preferences,
		UpdatedAt:   model.UpdatedAt,
	}
}
