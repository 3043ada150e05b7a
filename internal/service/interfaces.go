package service

import (
	"context"
	"time"

	"github.com/macrolog/backend/internal/models"
)

// MealService defines the interface for meal business logic.
// CreateMeal returns created=false when the client-provided ID already
// exists for the same user, so retried submissions replay instead of
// duplicating.
type MealService interface {
	CreateMeal(ctx context.Context, userID string, req *models.CreateMealRequest) (meal *models.Meal, created bool, err error)
	GetMeal(ctx context.Context, userID, mealID string) (*models.Meal, error)
	GetUserMeals(ctx context.Context, userID string, limit, offset int) ([]models.Meal, error)
	GetMealsInRange(ctx context.Context, userID string, start, end *time.Time) ([]models.Meal, error)
	UpdateMeal(ctx context.Context, userID, mealID string, patch *models.MealPatch) (*models.Meal, error)
	DeleteMeal(ctx context.Context, userID, mealID string) error
}

// AnalyticsService defines the interface for period statistics.
type AnalyticsService interface {
	DailyBuckets(ctx context.Context, userID string, days int) ([]models.DailyBucket, error)
	WeeklySummaries(ctx context.Context, userID string, weeks int) ([]models.PeriodSummary, error)
	MonthlySummaries(ctx context.Context, userID string, months int) ([]models.PeriodSummary, error)
	CustomSummary(ctx context.Context, userID string, start, end time.Time) (*models.PeriodSummary, error)
	Insights(ctx context.Context, userID, period string, count int) (*models.InsightReport, error)
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error)
	Refresh(ctx context.Context, req *models.RefreshRequest) (*models.AuthResponse, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// AIService defines the interface for AI-assisted meal analysis
type AIService interface {
	AnalyzeText(ctx context.Context, text string) (*models.MealAnalysis, error)
	AnalyzePhoto(ctx context.Context, userID string, photo []byte, contentType string) (*models.PhotoAnalysisResult, error)
}

// FoodService defines the interface for barcode lookups
type FoodService interface {
	LookupBarcode(ctx context.Context, barcode string) (*models.FoodProduct, error)
}

// ProfileService defines the interface for profile management
type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, userID string, patch *models.ProfilePatch) (*models.Profile, error)
}

// ExportService defines the interface for user data exports
type ExportService interface {
	MealsCSV(ctx context.Context, userID string, start, end *time.Time) ([]byte, error)
	SummaryCSV(ctx context.Context, userID, period string, count int) ([]byte, error)
	ReportHTML(ctx context.Context, userID string, start, end *time.Time) ([]byte, error)
	AccountExport(ctx context.Context, userID string) (*models.AccountExport, error)
}

// AccountService defines the interface for account lifecycle operations
type AccountService interface {
	DeleteAccount(ctx context.Context, userID string) error
}
