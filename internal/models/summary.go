package models

import "time"

// DailyBucket aggregates one calendar day of meals. Buckets are derived
// on every call and never persisted; a period's buckets always cover
// every day in the range, zero-filled for days without meals. Protein
// and calorie values are raw sums; rounding applies to the period
// aggregates, not here.
type DailyBucket struct {
	Date           string  `json:"date"` // ISO calendar date in the user's timezone
	Protein        float64 `json:"protein"`
	Calories       float64 `json:"calories"`
	MealCount      int     `json:"meal_count"`
	ProteinGoalMet bool    `json:"protein_goal_met"`
	CalorieGoalMet bool    `json:"calorie_goal_met"`
}

// MealFrequency counts meals by time of day.
type MealFrequency struct {
	Morning   int `json:"morning"`   // 05:00–11:59
	Afternoon int `json:"afternoon"` // 12:00–16:59
	Evening   int `json:"evening"`   // 17:00–20:59
	Night     int `json:"night"`     // 21:00–04:59
}

// TrendDirection classifies the slope of a fitted daily series.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// TrendConfidence grades how well the linear fit explains the series.
type TrendConfidence string

const (
	ConfidenceHigh   TrendConfidence = "high"
	ConfidenceMedium TrendConfidence = "medium"
	ConfidenceLow    TrendConfidence = "low"
)

// TrendResult is the outcome of fitting a least-squares line to a short
// daily series.
type TrendResult struct {
	Slope       float64         `json:"slope"`
	Correlation float64         `json:"correlation"`
	Direction   TrendDirection  `json:"direction"`
	Confidence  TrendConfidence `json:"confidence"`
}

// PeriodSummary is the engine's output contract: every field name, unit
// (grams, kcal), and rounding rule (integer totals and averages,
// one-decimal percentages) is relied on by exports and clients.
// Averages are per active day, computed over days with a non-zero value.
type PeriodSummary struct {
	Label      string    `json:"label"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	TotalDays  int       `json:"total_days"`
	ActiveDays int       `json:"active_days"` // days with at least one meal

	TotalProtein        float64 `json:"total_protein"`
	AverageProtein      float64 `json:"average_protein"`
	MaxProtein          float64 `json:"max_protein"`
	MinProtein          float64 `json:"min_protein"`
	ProteinGoal         float64 `json:"protein_goal"`
	ProteinGoalAchieved int     `json:"protein_goal_achieved"` // days meeting the goal
	ProteinGoalPct      float64 `json:"protein_goal_pct"`

	TotalCalories       float64 `json:"total_calories"`
	AverageCalories     float64 `json:"average_calories"`
	MaxCalories         float64 `json:"max_calories"`
	MinCalories         float64 `json:"min_calories"`
	CalorieGoal         float64 `json:"calorie_goal"`
	CalorieGoalAchieved int     `json:"calorie_goal_achieved"`
	CalorieGoalPct      float64 `json:"calorie_goal_pct"`

	ProteinTrend  TrendResult   `json:"protein_trend"`
	CalorieTrend  TrendResult   `json:"calorie_trend"`
	MealFrequency MealFrequency `json:"meal_frequency"`
	DailyData     []DailyBucket `json:"daily_data"`
}

// InsightReport groups the textual insights derived from one or more
// period summaries.
type InsightReport struct {
	Achievements []string `json:"achievements"`
	Improvements []string `json:"improvements"`
	Trends       []string `json:"trends"`
}
