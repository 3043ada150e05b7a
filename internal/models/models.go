package models

import (
	"encoding/json"
	"time"
)

// User represents an authenticated account, mirrored from Supabase auth.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile holds per-user settings, including the goals every period
// summary is computed against. Goals are always passed explicitly into
// the engine; nothing reads them as ambient state.
type Profile struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	ProteinGoal float64   `json:"protein_goal"` // grams per day
	CalorieGoal float64   `json:"calorie_goal"` // kcal per day; 0 means no goal
	Timezone    string    `json:"timezone"`     // IANA name
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Defaults applied to a fresh profile at signup.
const (
	DefaultProteinGoal = 120
	DefaultTimezone    = "Europe/Paris"
)

// MealSource identifies how a meal entered the system.
type MealSource string

const (
	SourceManual  MealSource = "manual"
	SourceVoice   MealSource = "voice"
	SourcePhoto   MealSource = "photo"
	SourceBarcode MealSource = "barcode"
)

// ValidSource reports whether s is a known meal source.
func ValidSource(s MealSource) bool {
	switch s {
	case SourceManual, SourceVoice, SourcePhoto, SourceBarcode:
		return true
	}
	return false
}

// Meal represents one logged meal. Calories is a pointer because an
// unknown calorie count is not the same as zero kcal.
type Meal struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Description string     `json:"description"`
	Protein     float64    `json:"protein"`            // grams
	Calories    *float64   `json:"calories,omitempty"` // kcal; nil when unknown
	PhotoURL    *string    `json:"photo_url,omitempty"`
	Source      MealSource `json:"source"`
	Timestamp   time.Time  `json:"timestamp"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RawCreateMealRequest is the wire shape of POST /meals. Numeric and
// date fields are loosely typed on purpose: clients, voice transcripts,
// and AI extraction all send numbers as strings now and then. The
// handler coerces these exactly once; nothing downstream sees raw input.
type RawCreateMealRequest struct {
	ID          *string `json:"id"`
	Description string  `json:"description"`
	Protein     any     `json:"protein"`
	Calories    any     `json:"calories"`
	Timestamp   any     `json:"timestamp"`
	Source      string  `json:"source"`
	PhotoURL    *string `json:"photo_url"`
}

// CreateMealRequest is the coerced, validated form of RawCreateMealRequest.
type CreateMealRequest struct {
	ID          *string
	Description string
	Protein     float64
	Calories    *float64
	Timestamp   time.Time
	Source      MealSource
	PhotoURL    *string
}

// UpdateMealRequest carries a partial meal update. Calories uses
// NullableFloat so "forget the calorie count" and "leave unchanged"
// stay distinguishable.
type UpdateMealRequest struct {
	Description *string       `json:"description"`
	Protein     any           `json:"protein"`
	Calories    NullableFloat `json:"calories"`
	Timestamp   any           `json:"timestamp"`
}

// MealPatch is the coerced form of UpdateMealRequest. Nil pointers mean
// "leave unchanged"; Calories keeps the explicit-null distinction.
type MealPatch struct {
	Description *string
	Protein     *float64
	Calories    NullableFloat
	Timestamp   *time.Time
}

// UpdateProfileRequest carries a partial profile update. Goal fields are
// loosely typed like meal macros; DisplayName distinguishes clearing
// from omitting.
type UpdateProfileRequest struct {
	DisplayName NullableString `json:"display_name"`
	ProteinGoal any            `json:"protein_goal"`
	CalorieGoal any            `json:"calorie_goal"`
	Timezone    *string        `json:"timezone"`
}

// ProfilePatch is the coerced form of UpdateProfileRequest.
type ProfilePatch struct {
	DisplayName NullableString
	ProteinGoal *float64
	CalorieGoal *float64
	Timezone    *string
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest represents the signup request
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// RefreshRequest represents the token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// FoodProduct is a food-database entry, macros per 100g. Cached locally
// per barcode so repeated scans skip the network.
type FoodProduct struct {
	Barcode     string    `json:"barcode"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	Protein     float64   `json:"protein"`  // g per 100g
	Calories    float64   `json:"calories"` // kcal per 100g
	Carbs       float64   `json:"carbs"`    // g per 100g
	Fat         float64   `json:"fat"`      // g per 100g
	ServingSize string    `json:"serving_size,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// MealAnalysis is the structured result of an AI meal analysis. The
// model's JSON is parsed, coerced, and validated before anything trusts
// these fields.
type MealAnalysis struct {
	Description string   `json:"description" validate:"required"`
	Protein     float64  `json:"protein" validate:"gte=0,lte=1000"`
	Calories    *float64 `json:"calories,omitempty"`
	Confidence  float64  `json:"confidence" validate:"gte=0,lte=1"`
}

// PhotoAnalysisResult bundles an uploaded meal photo with its analysis.
type PhotoAnalysisResult struct {
	PhotoURL string       `json:"photo_url"`
	Analysis MealAnalysis `json:"analysis"`
}

// AnalyzeTextRequest is the body of POST /ai/analyze-text.
type AnalyzeTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// IdempotencyRecord caches the first response seen for an idempotency
// key so retried creates replay instead of duplicating.
type IdempotencyRecord struct {
	ID           string          `json:"id"`
	Key          string          `json:"key"`
	Route        string          `json:"route"`
	UserID       string          `json:"user_id"`
	ResponseBody json.RawMessage `json:"response_body"`
	StatusCode   int             `json:"status_code"`
	CreatedAt    time.Time       `json:"created_at"`
}

// AccountExport is the full personal-data bundle a user can download.
type AccountExport struct {
	GeneratedAt time.Time `json:"generated_at"`
	Profile     *Profile  `json:"profile"`
	Meals       []Meal    `json:"meals"`
}
