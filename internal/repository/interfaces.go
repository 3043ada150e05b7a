package repository

import (
	"context"
	"errors"
	"time"

	"github.com/macrolog/backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
// Callers should test with errors.Is.
var ErrNotFound = errors.New("not found")

// MealRepository defines the interface for meal data access
type MealRepository interface {
	Create(ctx context.Context, meal *models.Meal) (*models.Meal, error)
	GetByID(ctx context.Context, id string) (*models.Meal, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]models.Meal, error)
	GetByUserIDAndDateRange(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.Meal, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Meal, error)
	Delete(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// ProfileRepository defines the interface for profile data access
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	Delete(ctx context.Context, userID string) error
}
