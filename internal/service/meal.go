package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/repository"
	"github.com/macrolog/backend/internal/timeutil"
)

// ErrIDTaken indicates a client-provided meal ID already belongs to a
// different user.
var ErrIDTaken = errors.New("meal id already in use")

// ErrNotOwner indicates the record exists but belongs to someone else.
// It wraps ErrNotFound so handlers answer 404 and resource existence is
// not leaked.
var ErrNotOwner = fmt.Errorf("record does not belong to user: %w", repository.ErrNotFound)

type mealService struct {
	mealRepo repository.MealRepository
}

// NewMealService creates a new meal service
func NewMealService(mealRepo repository.MealRepository) MealService {
	return &mealService{mealRepo: mealRepo}
}

func (s *mealService) CreateMeal(ctx context.Context, userID string, req *models.CreateMealRequest) (*models.Meal, bool, error) {
	// Reject timestamps too far in the future, with tolerance for clock skew
	maxAllowed := time.Now().Add(time.Duration(MaxFutureMinutes) * time.Minute)
	if req.Timestamp.After(maxAllowed) {
		return nil, false, fmt.Errorf("%w: meal timestamp %s", ErrFutureTimestamp, req.Timestamp.Format(time.RFC3339))
	}

	meal := &models.Meal{
		UserID:      userID,
		Description: req.Description,
		Protein:     req.Protein,
		Calories:    req.Calories,
		PhotoURL:    req.PhotoURL,
		Source:      req.Source,
		Timestamp:   req.Timestamp,
	}
	if meal.Source == "" {
		meal.Source = models.SourceManual
	}

	// Client-provided IDs must be UUIDv7 (offline-first clients generate
	// them locally). A resubmitted ID replays the stored meal.
	if req.ID != nil {
		if err := ValidateUUIDv7(*req.ID); err != nil {
			return nil, false, err
		}

		existing, err := s.mealRepo.GetByID(ctx, *req.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, false, err
		}
		if existing != nil {
			if existing.UserID != userID {
				return nil, false, ErrIDTaken
			}
			return existing, false, nil
		}

		meal.ID = *req.ID
	}

	created, err := s.mealRepo.Create(ctx, meal)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (s *mealService) GetMeal(ctx context.Context, userID, mealID string) (*models.Meal, error) {
	meal, err := s.mealRepo.GetByID(ctx, mealID)
	if err != nil {
		return nil, err
	}

	if meal.UserID != userID {
		return nil, fmt.Errorf("meal %s: %w", mealID, ErrNotOwner)
	}

	return meal, nil
}

func (s *mealService) GetUserMeals(ctx context.Context, userID string, limit, offset int) ([]models.Meal, error) {
	// Set default pagination limits
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return s.mealRepo.GetByUserID(ctx, userID, limit, offset)
}

// GetMealsInRange lists meals between two optional bounds, widened to
// whole days. A missing start means everything on record, a missing end
// means up to today.
func (s *mealService) GetMealsInRange(ctx context.Context, userID string, start, end *time.Time) ([]models.Meal, error) {
	from := time.Unix(0, 0)
	if start != nil {
		from = timeutil.StartOfDay(*start)
	}
	to := timeutil.EndOfDay(time.Now())
	if end != nil {
		to = timeutil.EndOfDay(*end)
	}
	if from.After(to) {
		return []models.Meal{}, nil
	}

	return s.mealRepo.GetByUserIDAndDateRange(ctx, userID, from, to)
}

func (s *mealService) UpdateMeal(ctx context.Context, userID, mealID string, patch *models.MealPatch) (*models.Meal, error) {
	existing, err := s.mealRepo.GetByID(ctx, mealID)
	if err != nil {
		return nil, err
	}

	if existing.UserID != userID {
		return nil, fmt.Errorf("meal %s: %w", mealID, ErrNotOwner)
	}

	fields := make(map[string]interface{})
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Protein != nil {
		fields["protein"] = *patch.Protein
	}
	if patch.Calories.Set {
		// Explicit null clears the calorie count
		if patch.Calories.Valid {
			fields["calories"] = patch.Calories.Value
		} else {
			fields["calories"] = nil
		}
	}
	if patch.Timestamp != nil {
		maxAllowed := time.Now().Add(time.Duration(MaxFutureMinutes) * time.Minute)
		if patch.Timestamp.After(maxAllowed) {
			return nil, fmt.Errorf("%w: meal timestamp %s", ErrFutureTimestamp, patch.Timestamp.Format(time.RFC3339))
		}
		fields["timestamp"] = *patch.Timestamp
	}

	return s.mealRepo.Update(ctx, mealID, fields)
}

func (s *mealService) DeleteMeal(ctx context.Context, userID, mealID string) error {
	meal, err := s.mealRepo.GetByID(ctx, mealID)
	if err != nil {
		return err
	}

	if meal.UserID != userID {
		return fmt.Errorf("meal %s: %w", mealID, ErrNotOwner)
	}

	return s.mealRepo.Delete(ctx, mealID)
}
