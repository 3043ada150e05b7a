package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/pkg/supabase"
)

type mealRepository struct {
	client *supabase.Client
}

// NewMealRepository creates a new meal repository
func NewMealRepository(client *supabase.Client) MealRepository {
	return &mealRepository{client: client}
}

func (r *mealRepository) Create(ctx context.Context, meal *models.Meal) (*models.Meal, error) {
	data := map[string]interface{}{
		"user_id":     meal.UserID,
		"description": meal.Description,
		"protein":     meal.Protein,
		"source":      meal.Source,
		"timestamp":   meal.Timestamp,
	}

	// Use client-provided ID if present (offline-first clients generate UUIDv7)
	if meal.ID != "" {
		data["id"] = meal.ID
	}

	if meal.Calories != nil {
		data["calories"] = *meal.Calories
	}
	if meal.PhotoURL != nil {
		data["photo_url"] = *meal.PhotoURL
	}

	body, err := r.client.Insert("meals", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}

	var meals []models.Meal
	if err := json.Unmarshal(body, &meals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(meals) == 0 {
		return nil, fmt.Errorf("no meal returned")
	}

	return &meals[0], nil
}

func (r *mealRepository) GetByID(ctx context.Context, id string) (*models.Meal, error) {
	query := map[string]interface{}{
		"id": fmt.Sprintf("eq.%s", id),
	}

	body, err := r.client.Query("meals", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get meal: %w", err)
	}

	var meals []models.Meal
	if err := json.Unmarshal(body, &meals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(meals) == 0 {
		return nil, fmt.Errorf("meal %s: %w", id, ErrNotFound)
	}

	return &meals[0], nil
}

func (r *mealRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]models.Meal, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"order":   "timestamp.desc",
		"limit":   limit,
		"offset":  offset,
	}

	body, err := r.client.Query("meals", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get meals: %w", err)
	}

	var meals []models.Meal
	if err := json.Unmarshal(body, &meals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return meals, nil
}

func (r *mealRepository) GetByUserIDAndDateRange(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.Meal, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and":     fmt.Sprintf("(timestamp.gte.%s,timestamp.lte.%s)", startDate.Format(time.RFC3339), endDate.Format(time.RFC3339)),
		"order":   "timestamp.asc",
	}

	body, err := r.client.Query("meals", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get meals: %w", err)
	}

	var meals []models.Meal
	if err := json.Unmarshal(body, &meals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return meals, nil
}

// Update patches only the given columns. The service layer decides which
// fields changed; nil-vs-absent semantics are resolved before this call.
func (r *mealRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Meal, error) {
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}

	body, err := r.client.Update("meals", id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update meal: %w", err)
	}

	var meals []models.Meal
	if err := json.Unmarshal(body, &meals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(meals) == 0 {
		return nil, fmt.Errorf("meal %s: %w", id, ErrNotFound)
	}

	return &meals[0], nil
}

func (r *mealRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Delete("meals", id); err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	return nil
}

func (r *mealRepository) DeleteByUserID(ctx context.Context, userID string) error {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
	}
	if err := r.client.DeleteWhere("meals", query); err != nil {
		return fmt.Errorf("failed to delete meals for user: %w", err)
	}
	return nil
}
