package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/repository"
	"github.com/macrolog/backend/internal/repository/mocks"
)

func notFoundErr(id string) error {
	return fmt.Errorf("meal %s: %w", id, repository.ErrNotFound)
}

func TestCreateMeal_WithoutClientID(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMealRepository(ctrl)
	svc := NewMealService(repo)

	ctx := context.Background()
	req := &models.CreateMealRequest{
		Description: "Poulet et riz",
		Protein:     42,
		Timestamp:   time.Now().Add(-time.Hour),
		Source:      models.SourceManual,
	}

	repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, meal *models.Meal) (*models.Meal, error) {
			if meal.ID != "" {
				t.Errorf("Expected no ID before insert, got %q", meal.ID)
			}
			if meal.UserID != "user-1" {
				t.Errorf("Expected user-1, got %q", meal.UserID)
			}
			out := *meal
			out.ID = "generated-id"
			return &out, nil
		})

	meal, created, err := svc.CreateMeal(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("CreateMeal failed: %v", err)
	}
	if !created {
		t.Error("Expected created=true for a new meal")
	}
	if meal.ID != "generated-id" {
		t.Errorf("Expected generated-id, got %q", meal.ID)
	}
}

func TestCreateMeal_DuplicateIDReplays(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMealRepository(ctrl)
	svc := NewMealService(repo)

	ctx := context.Background()
	id := newUUIDv7AtTime(time.Now().Add(-time.Minute)).String()
	existing := &models.Meal{ID: id, UserID: "user-1", Description: "Omelette", Protein: 18}

	// Create must not be called for a duplicate
	repo.EXPECT().GetByID(ctx, id).Return(existing, nil)

	req := &models.CreateMealRequest{
		ID:          &id,
		Description: "Omelette",
		Protein:     18,
		Timestamp:   time.Now().Add(-time.Hour),
	}

	meal, created, err := svc.CreateMeal(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("CreateMeal failed: %v", err)
	}
	if created {
		t.Error("Expected created=false for a duplicate ID")
	}
	if meal.ID != id {
		t.Errorf("Expected replayed meal %q, got %q", id, meal.ID)
	}
}

func TestCreateMeal_IDBelongsToOtherUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMealRepository(ctrl)
	svc := NewMealService(repo)

	ctx := context.Background()
	id := newUUIDv7AtTime(time.Now().Add(-time.Minute)).String()
	repo.EXPECT().GetByID(ctx, id).Return(&models.Meal{ID: id, UserID: "someone-else"}, nil)

	req := &models.CreateMealRequest{
		ID:          &id,
		Description: "Salade",
		Timestamp:   time.Now().Add(-time.Hour),
	}

	_, _, err := svc.CreateMeal(ctx, "user-1", req)
	if !errors.Is(err, ErrIDTaken) {
		t.Errorf("Expected ErrIDTaken, got %v", err)
	}
}

func TestCreateMeal_NewClientIDInserted(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMealRepository(ctrl)
	svc := NewMealService(repo)

	ctx := context.Background()
	id := newUUIDv7AtTime(time.Now().Add(-time.Minute)).String()

	repo.EXPECT().GetByID(ctx, id).Return(nil, notFoundErr(id))
	repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, meal *models.Meal) (*models.Meal, error) {
			if meal.ID != id {
				t.Errorf("Expected client ID %q to be kept, got %q", id, meal.ID)
			}
			return meal, nil
		})

	req := &models.CreateMealRequest{
		ID:          &id,
		Description: "Yaourt grec",
		Protein:     15,
		Timestamp:   time.Now().Add(-time.Hour),
	}

	_, created, err := svc.CreateMeal(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("CreateMeal failed: %v", err)
	}
	if !created {
		t.Error("Expected created=true when ID was unused")
	}
}

func TestCreateMeal_InvalidClientID(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMealRepository(ctrl)
	svc := NewMealService(repo)

	ctx := context.Background()

	badID := "not-a-uuid"
	_, _, err := svc.CreateMeal(ctx, "user-1", &models.CreateMealRequest{
		ID:          &badID,
		Description: "Soupe",
		Timestamp:   time.Now().Add(-time.Hour),
	})
	if !errors.Is(err, ErrInvalidUUID) {
		t.Errorf("Expected ErrInvalidUUID, got %v", err)
	}

	// UUIDv4 is well-formed but the wrong version
	v4 := "7f9c24e5-2e4b-4a2e-9c35-1b42f6e7d8a9"
	_, _, err = svc.CreateMeal(ctx, "user-1", &models.CreateMealRequest{
		ID:          &v4,
		Description: "Soupe",
		Timestamp:   time.Now().Add(-time.Hour),
	})
	if !errors.Is(err, ErrNotUUIDv7) {
		t.Errorf("Expected ErrNotUUIDv7, got %v", err)
	}
}

func TestCreateMeal_RejectsFutureTimestamp(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMealRepository(ctrl)
	svc := NewMealService(repo)

	_, _, err := svc.CreateMeal(context.Background(), "user-1", &models.CreateMealRequest{
		Description: "Dîner de demain",
		Timestamp:   time.Now().Add(10 * time.Minute),
	})
	if !errors.Is(err, ErrFutureTimestamp) {
		t.Errorf("Expected ErrFutureTimestamp, got %v", err)
	}
}

func TestCreateMeal_DefaultsSourceToManual(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMealRepository(ctrl)
	svc := NewMealService(repo)

	ctx := context.Background()
	repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, meal *models.Meal) (*models.Meal, error) {
			if meal.Source != models.SourceManual {
				t.Errorf("Expected source=manual, got %q", meal.Source)
			}
			return meal, nil
		})

	_, _, err := svc.CreateMeal(ctx, "user-1", &models.CreateMealRequest{
		Description: "Pâtes",
		Timestamp:   time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateMeal failed: %v", err)
	}
}

func TestUpdateMeal_ClearsCalories(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMealRepository(ctrl)
	svc := NewMealService(repo)

	ctx := context.Background()
	existing := &models.Meal{ID: "m-1", UserID: "user-1"}

	repo.EXPECT().GetByID(ctx, "m-1").Return(existing, nil)
	repo.EXPECT().Update(ctx, "m-1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, fields map[string]interface{}) (*models.Meal, error) {
			v, present := fields["calories"]
			if !present {
				t.Error("Expected calories key in update fields")
			}
			if v != nil {
				t.Errorf("Expected calories=nil to clear the value, got %v", v)
			}
			return existing, nil
		})

	patch := &models.MealPatch{
		Calories: models.NullableFloat{Set: true, Valid: false},
	}
	if _, err := svc.UpdateMeal(ctx, "user-1", "m-1", patch); err != nil {
		t.Fatalf("UpdateMeal failed: %v", err)
	}
}

func TestUpdateMeal_OwnershipHidesExistence(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMealRepository(ctrl)
	svc := NewMealService(repo)

	ctx := context.Background()
	repo.EXPECT().GetByID(ctx, "m-2").Return(&models.Meal{ID: "m-2", UserID: "someone-else"}, nil)

	_, err := svc.UpdateMeal(ctx, "user-1", "m-2", &models.MealPatch{})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign meal, got %v", err)
	}
}

func TestGetUserMeals_PaginationDefaults(t *testing.T) {
	tests := []struct {
		name             string
		limit, offset    int
		wantLimit, wantO int
	}{
		{"zero_limit", 0, 0, 50, 0},
		{"over_cap", 500, 10, 50, 10},
		{"negative_offset", 20, -5, 20, 0},
		{"in_range", 25, 5, 25, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockMealRepository(ctrl)
			svc := NewMealService(repo)

			ctx := context.Background()
			repo.EXPECT().GetByUserID(ctx, "user-1", tt.wantLimit, tt.wantO).Return([]models.Meal{}, nil)

			if _, err := svc.GetUserMeals(ctx, "user-1", tt.limit, tt.offset); err != nil {
				t.Fatalf("GetUserMeals failed: %v", err)
			}
		})
	}
}

func TestGetMealsInRange_WidensBoundsToWholeDays(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMealRepository(ctrl)
	svc := NewMealService(repo)

	ctx := context.Background()
	start := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	end := time.Date(2026, 3, 12, 2, 0, 0, 0, time.UTC)

	repo.EXPECT().GetByUserIDAndDateRange(ctx, "user-1", gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, from, to time.Time) ([]models.Meal, error) {
			if from.Day() != 10 || from.Hour() != 0 {
				t.Errorf("Expected start widened to midnight of the 10th, got %v", from)
			}
			if to.Day() != 12 || to.Hour() != 23 {
				t.Errorf("Expected end widened to the last moment of the 12th, got %v", to)
			}
			return []models.Meal{}, nil
		})

	if _, err := svc.GetMealsInRange(ctx, "user-1", &start, &end); err != nil {
		t.Fatalf("GetMealsInRange failed: %v", err)
	}
}

func TestGetMealsInRange_OpenBounds(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMealRepository(ctrl)
	svc := NewMealService(repo)

	ctx := context.Background()
	repo.EXPECT().GetByUserIDAndDateRange(ctx, "user-1", gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, from, to time.Time) ([]models.Meal, error) {
			if !from.Equal(time.Unix(0, 0)) {
				t.Errorf("Expected open start to reach the epoch, got %v", from)
			}
			if !to.After(time.Now()) {
				t.Errorf("Expected open end to cover the rest of today, got %v", to)
			}
			return []models.Meal{}, nil
		})

	if _, err := svc.GetMealsInRange(ctx, "user-1", nil, nil); err != nil {
		t.Fatalf("GetMealsInRange failed: %v", err)
	}
}

func TestGetMealsInRange_InvertedRangeIsEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMealRepository(ctrl)
	svc := NewMealService(repo)

	start := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	meals, err := svc.GetMealsInRange(context.Background(), "user-1", &start, &end)
	if err != nil {
		t.Fatalf("GetMealsInRange failed: %v", err)
	}
	if len(meals) != 0 {
		t.Errorf("Expected empty result for an inverted range, got %d meals", len(meals))
	}
}

func TestDeleteMeal_ChecksOwnership(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMealRepository(ctrl)
	svc := NewMealService(repo)

	ctx := context.Background()
	repo.EXPECT().GetByID(ctx, "m-3").Return(&models.Meal{ID: "m-3", UserID: "someone-else"}, nil)

	err := svc.DeleteMeal(ctx, "user-1", "m-3")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign meal, got %v", err)
	}
}
