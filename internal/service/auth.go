package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/macrolog/backend/internal/logger"
	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/repository"
	"github.com/macrolog/backend/pkg/supabase"
)

// Auth failures the handlers translate into typed API errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already registered")
)

type authService struct {
	client      *supabase.Client
	anonKey     string
	profileRepo repository.ProfileRepository
}

// NewAuthService creates a new auth service. GoTrue endpoints are called
// with the anon key; the user's credentials or tokens carry the rest.
func NewAuthService(client *supabase.Client, anonKey string, profileRepo repository.ProfileRepository) AuthService {
	return &authService{
		client:      client,
		anonKey:     anonKey,
		profileRepo: profileRepo,
	}
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	body, status, err := s.authPost(ctx, "/auth/v1/token?grant_type=password", map[string]string{
		"email":    req.Email,
		"password": req.Password,
	})
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if status >= 400 {
		return nil, fmt.Errorf("login failed (status %d): %s", status, string(body))
	}

	return decodeAuthResponse(body)
}

func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	body, status, err := s.authPost(ctx, "/auth/v1/signup", map[string]string{
		"email":    req.Email,
		"password": req.Password,
	})
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		return nil, ErrUserExists
	}
	if status >= 400 {
		return nil, fmt.Errorf("signup failed (status %d): %s", status, string(body))
	}

	authResp, err := decodeAuthResponse(body)
	if err != nil {
		return nil, err
	}

	// Bootstrap the profile with product defaults. Failure is tolerated:
	// the auth user exists either way, and the row is upserted again on
	// the first profile write.
	profile := &models.Profile{
		UserID:      authResp.User.ID,
		ProteinGoal: models.DefaultProteinGoal,
		Timezone:    models.DefaultTimezone,
	}
	if _, err := s.profileRepo.Upsert(ctx, profile); err != nil {
		logger.Ctx(ctx).Warn("profile bootstrap failed",
			logger.String("user_id", authResp.User.ID), logger.Err(err))
	}

	return authResp, nil
}

func (s *authService) Refresh(ctx context.Context, req *models.RefreshRequest) (*models.AuthResponse, error) {
	body, status, err := s.authPost(ctx, "/auth/v1/token?grant_type=refresh_token", map[string]string{
		"refresh_token": req.RefreshToken,
	})
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if status >= 400 {
		return nil, fmt.Errorf("token refresh failed (status %d): %s", status, string(body))
	}

	return decodeAuthResponse(body)
}

func (s *authService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	url := fmt.Sprintf("%s/auth/v1/admin/users/%s", s.client.URL, userID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("apikey", s.client.ServiceKey)
	httpReq.Header.Set("Authorization", "Bearer "+s.client.ServiceKey)

	resp, err := s.client.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("user %s: %w", userID, repository.ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("get user failed (status %d): %s", resp.StatusCode, string(body))
	}

	var user struct {
		ID        string    `json:"id"`
		Email     string    `json:"email"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &models.User{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}, nil
}

// authPost sends a GoTrue request and hands the raw body and status back
// so each flow can map failure statuses to its own sentinel.
func (s *authService) authPost(ctx context.Context, path string, payload map[string]string) ([]byte, int, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.URL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("apikey", s.anonKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func decodeAuthResponse(body []byte) (*models.AuthResponse, error) {
	var authResp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		User         struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &authResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &models.AuthResponse{
		AccessToken:  authResp.AccessToken,
		RefreshToken: authResp.RefreshToken,
		User: models.User{
			ID:    authResp.User.ID,
			Email: authResp.User.Email,
		},
	}, nil
}
