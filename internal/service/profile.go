package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/repository"
)

// ErrInvalidGoal indicates a goal value outside its allowed range.
var ErrInvalidGoal = errors.New("invalid goal value")

// ErrInvalidTimezone indicates a timezone name unknown to the IANA database.
var ErrInvalidTimezone = errors.New("invalid timezone")

type profileService struct {
	profileRepo repository.ProfileRepository
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo repository.ProfileRepository) ProfileService {
	return &profileService{profileRepo: profileRepo}
}

// defaultProfile is the row a user gets before they touch any setting.
func defaultProfile(userID string) *models.Profile {
	return &models.Profile{
		UserID:      userID,
		ProteinGoal: models.DefaultProteinGoal,
		Timezone:    models.DefaultTimezone,
	}
}

func (s *profileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		// Signup bootstraps the row, but tolerates failure. Recreate it
		// here so the profile endpoint never 404s for a valid user.
		return s.profileRepo.Upsert(ctx, defaultProfile(userID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (s *profileService) Update(ctx context.Context, userID string, patch *models.ProfilePatch) (*models.Profile, error) {
	if patch.ProteinGoal != nil && *patch.ProteinGoal <= 0 {
		return nil, fmt.Errorf("%w: protein goal must be positive", ErrInvalidGoal)
	}
	// Zero clears the calorie goal; only negatives are rejected.
	if patch.CalorieGoal != nil && *patch.CalorieGoal < 0 {
		return nil, fmt.Errorf("%w: calorie goal cannot be negative", ErrInvalidGoal)
	}
	if patch.Timezone != nil {
		if _, err := time.LoadLocation(*patch.Timezone); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, *patch.Timezone)
		}
	}

	profile, err := s.profileRepo.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		profile = defaultProfile(userID)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if patch.DisplayName.Set {
		// Explicit null clears the display name
		if patch.DisplayName.Valid {
			profile.DisplayName = patch.DisplayName.Value
		} else {
			profile.DisplayName = ""
		}
	}
	if patch.ProteinGoal != nil {
		profile.ProteinGoal = *patch.ProteinGoal
	}
	if patch.CalorieGoal != nil {
		profile.CalorieGoal = *patch.CalorieGoal
	}
	if patch.Timezone != nil {
		profile.Timezone = *patch.Timezone
	}

	return s.profileRepo.Upsert(ctx, profile)
}
