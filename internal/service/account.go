package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/macrolog/backend/internal/logger"
	"github.com/macrolog/backend/internal/repository"
	"github.com/macrolog/backend/pkg/supabase"
)

type accountService struct {
	mealRepo    repository.MealRepository
	profileRepo repository.ProfileRepository
	client      *supabase.Client
	bucket      string
}

// NewAccountService creates a new account service
func NewAccountService(mealRepo repository.MealRepository, profileRepo repository.ProfileRepository, client *supabase.Client, bucket string) AccountService {
	return &accountService{
		mealRepo:    mealRepo,
		profileRepo: profileRepo,
		client:      client,
		bucket:      bucket,
	}
}

// DeleteAccount removes everything the user owns: stored photos, meal
// rows, the profile, and finally the auth user. Photo and auth-user
// deletion are best effort; the data rows are gone either way.
func (s *accountService) DeleteAccount(ctx context.Context, userID string) error {
	to := time.Now().Add(time.Duration(MaxFutureMinutes) * time.Minute)
	meals, err := s.mealRepo.GetByUserIDAndDateRange(ctx, userID, time.Unix(0, 0).UTC(), to)
	if err != nil {
		return fmt.Errorf("failed to get meals: %w", err)
	}

	for i := range meals {
		s.deletePhoto(ctx, meals[i].PhotoURL)
	}

	if err := s.mealRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete meals: %w", err)
	}
	if err := s.profileRepo.Delete(ctx, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	if err := s.client.AdminDeleteUser(userID); err != nil {
		// An orphaned auth user holds no nutrition data; log and move on.
		logger.Ctx(ctx).Warn("auth user deletion failed",
			logger.String("user_id", userID),
			logger.Err(err))
	}

	return nil
}

func (s *accountService) deletePhoto(ctx context.Context, photoURL *string) {
	if photoURL == nil {
		return
	}
	path, ok := s.objectPath(*photoURL)
	if !ok {
		return
	}
	if err := s.client.DeleteObject(s.bucket, path); err != nil {
		logger.Ctx(ctx).Warn("photo deletion failed",
			logger.String("path", path),
			logger.Err(err))
	}
}

// objectPath extracts the bucket-relative path from a public object URL.
// URLs pointing anywhere else are not ours to delete.
func (s *accountService) objectPath(photoURL string) (string, bool) {
	prefix := fmt.Sprintf("%s/storage/v1/object/public/%s/", s.client.URL, s.bucket)
	if !strings.HasPrefix(photoURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(photoURL, prefix), true
}
