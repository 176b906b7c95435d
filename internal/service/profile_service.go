package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/repository"
)

// ProfileService manages per-user profiles. A user who has never saved a
// profile reads back a zero-value one rather than a 404.
type ProfileService interface {
	Get(ctx context.Context, userID uint) (dto.ProfileResponse, error)
	Update(ctx context.Context, userID uint, req dto.ProfileUpdateRequest) (dto.ProfileResponse, error)
}

type profileService struct {
	profiles repository.ProfileRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewProfileService builds the profile service.
func NewProfileService(profiles repository.ProfileRepository, validate *validator.Validate, logger zerolog.Logger) *profileService {
	return &profileService{
		profiles: profiles,
		validate: validate,
		logger:   logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, userID uint) (dto.ProfileResponse, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NewProfileResponse(models.Profile{UserID: userID, Preferences: datatypes.JSONMap{}}), nil
		}
		return dto.ProfileResponse{}, err
	}
	return dto.NewProfileResponse(profile), nil
}

// Update applies only the fields present in the request. Unknown fields in
// the payload are discarded during binding, so a stale client cannot widen
// what it writes.
func (s *profileService) Update(ctx context.Context, userID uint, req dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.ProfileResponse{}, err
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, err
		}
		profile = models.Profile{UserID: userID, Preferences: datatypes.JSONMap{}}
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.Title != nil {
		profile.Title = *req.Title
	}
	if req.Company != nil {
		profile.Company = *req.Company
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Preferences != nil {
		if profile.Preferences == nil {
			profile.Preferences = datatypes.JSONMap{}
		}
		for k, v := range req.Preferences {
			profile.Preferences[k] = v
		}
	}

	if err := s.profiles.Upsert(ctx, &profile); err != nil {
		return dto.ProfileResponse{}, err
	}

	return dto.NewProfileResponse(profile), nil
}
