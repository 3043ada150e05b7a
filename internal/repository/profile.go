package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/pkg/supabase"
)

type profileRepository struct {
	client *supabase.Client
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(client *supabase.Client) ProfileRepository {
	return &profileRepository{client: client}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
	}

	body, err := r.client.Query("profiles", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profiles []models.Profile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("profile for user %s: %w", userID, ErrNotFound)
	}

	return &profiles[0], nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	data := map[string]interface{}{
		"user_id":      profile.UserID,
		"display_name": profile.DisplayName,
		"protein_goal": profile.ProteinGoal,
		"calorie_goal": profile.CalorieGoal,
		"timezone":     profile.Timezone,
	}

	body, err := r.client.Upsert("profiles", data, "user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	var profiles []models.Profile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profile returned")
	}

	return &profiles[0], nil
}

func (r *profileRepository) Delete(ctx context.Context, userID string) error {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
	}
	if err := r.client.DeleteWhere("profiles", query); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
