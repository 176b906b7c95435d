package dto

import (
	"time"

	"github.com/oppspot/oppspot-api/internal/models"
)

// AccessGrantCreateRequest invites a user into a data room at a level.
type AccessGrantCreateRequest struct {
	UserID      uint    `json:"user_id" validate:"required,gt=0"`
	InviteEmail string  `json:"invite_email" validate:"omitempty,email"`
	Level       string  `json:"permission_level" validate:"required,oneof=editor viewer"`
	ExpiresAt   *string `json:"expires_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// AccessGrantResponse is the serialized representation of a grant.
type AccessGrantResponse struct {
	ID          uint       `json:"id"`
	DataRoomID  uint       `json:"data_room_id"`
	UserID      uint       `json:"user_id"`
	InviteEmail string     `json:"invite_email,omitempty"`
	Level       string     `json:"permission_level"`
	GrantedBy   uint       `json:"granted_by"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewAccessGrantResponse converts a model into a DTO.
func NewAccessGrantResponse(model models.AccessGrant) AccessGrantResponse {
	return AccessGrantResponse{
		ID:          model.ID,
		DataRoomID:  model.DataRoomID,
		UserID:      model.UserID,
		InviteEmail: model.InviteEmail,
		Level:       string(model.Level),
		GrantedBy:   model.GrantedBy,
		ExpiresAt:   model.ExpiresAt,
		RevokedAt:   model.RevokedAt,
		CreatedAt:   model.CreatedAt,
	}
}

// NewAccessGrantResponseSlice converts a slice of models into DTOs.
func NewAccessGrantResponseSlice(grants []models.AccessGrant) []AccessGrantResponse {
	responses := make([]AccessGrantResponse, 0, len(grants))
	for _, grant := range grants {
		responses = append(responses, NewAccessGrantResponse(grant))
	}
	return responses
}
