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

// Defaults and caps for the period endpoints. A zero or negative count
// falls back to the default; anything above the cap is clamped so a
// single request cannot scan years of history.
const (
	DefaultDays   = 30
	MaxDays       = 365
	DefaultWeeks  = 12
	MaxWeeks      = 52
	DefaultMonths = 6
	MaxMonths     = 24

	DefaultInsightPeriods = 4
)

// Period selectors accepted by Insights.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// CustomRangeLabel names summaries over an ad-hoc date range.
const CustomRangeLabel = "Période personnalisée"

type analyticsService struct {
	mealRepo    repository.MealRepository
	profileRepo repository.ProfileRepository

	// now is replaceable in tests so range boundaries are deterministic.
	now func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(mealRepo repository.MealRepository, profileRepo repository.ProfileRepository) AnalyticsService {
	return &analyticsService{
		mealRepo:    mealRepo,
		profileRepo: profileRepo,
		now:         time.Now,
	}
}

// periodGoals carries the per-user inputs every summary is computed
// against. Goals and timezone come from the profile, with signup
// defaults when no profile row exists yet.
type periodGoals struct {
	protein  float64
	calories float64
	loc      *time.Location
}

func (s *analyticsService) DailyBuckets(ctx context.Context, userID string, days int) ([]models.DailyBucket, error) {
	days = clampCount(days, DefaultDays, MaxDays)

	goals, err := s.goalsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	dayStarts := timeutil.LastNDays(s.now().In(goals.loc), days)
	start := dayStarts[0]
	end := timeutil.EndOfDay(dayStarts[len(dayStarts)-1])

	meals, err := s.mealsBetween(ctx, userID, start, end, goals.loc)
	if err != nil {
		return nil, err
	}

	summary := CalculatePeriodSummary(meals, start, end, timeutil.FormatRange(start, end), goals.protein, goals.calories)
	return summary.DailyData, nil
}

func (s *analyticsService) WeeklySummaries(ctx context.Context, userID string, weeks int) ([]models.PeriodSummary, error) {
	weeks = clampCount(weeks, DefaultWeeks, MaxWeeks)

	goals, err := s.goalsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	ranges := timeutil.WeekRanges(s.now().In(goals.loc), weeks)
	return s.summarize(ctx, userID, ranges, goals)
}

func (s *analyticsService) MonthlySummaries(ctx context.Context, userID string, months int) ([]models.PeriodSummary, error) {
	months = clampCount(months, DefaultMonths, MaxMonths)

	goals, err := s.goalsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	ranges := timeutil.MonthRanges(s.now().In(goals.loc), months)
	return s.summarize(ctx, userID, ranges, goals)
}

func (s *analyticsService) CustomSummary(ctx context.Context, userID string, start, end time.Time) (*models.PeriodSummary, error) {
	goals, err := s.goalsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	from := timeutil.StartOfDay(start.In(goals.loc))
	to := timeutil.EndOfDay(end.In(goals.loc))

	// An inverted range is a valid empty period, not an error. Skip the
	// fetch; the engine normalizes the rest.
	if from.After(to) {
		return CalculatePeriodSummary(nil, from, to, CustomRangeLabel, goals.protein, goals.calories), nil
	}

	meals, err := s.mealsBetween(ctx, userID, from, to, goals.loc)
	if err != nil {
		return nil, err
	}

	return CalculatePeriodSummary(meals, from, to, CustomRangeLabel, goals.protein, goals.calories), nil
}

func (s *analyticsService) Insights(ctx context.Context, userID, period string, count int) (*models.InsightReport, error) {
	if count <= 0 {
		count = DefaultInsightPeriods
	}

	var (
		summaries []models.PeriodSummary
		err       error
	)
	if period == PeriodMonth {
		summaries, err = s.MonthlySummaries(ctx, userID, count)
	} else {
		summaries, err = s.WeeklySummaries(ctx, userID, count)
	}
	if err != nil {
		return nil, err
	}

	return BuildInsights(summaries), nil
}

// summarize computes one summary per range from a single meal fetch
// spanning all of them. Ranges arrive oldest first and contiguous, so
// the span is simply first start to last end.
func (s *analyticsService) summarize(ctx context.Context, userID string, ranges []timeutil.Range, goals periodGoals) ([]models.PeriodSummary, error) {
	if len(ranges) == 0 {
		return []models.PeriodSummary{}, nil
	}

	meals, err := s.mealsBetween(ctx, userID, ranges[0].Start, ranges[len(ranges)-1].End, goals.loc)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.PeriodSummary, 0, len(ranges))
	for _, r := range ranges {
		summaries = append(summaries, *CalculatePeriodSummary(meals, r.Start, r.End, r.Label, goals.protein, goals.calories))
	}
	return summaries, nil
}

// mealsBetween fetches the user's meals over [start, end] and shifts
// their timestamps into loc so bucketing follows the user's calendar,
// not the server's.
func (s *analyticsService) mealsBetween(ctx context.Context, userID string, start, end time.Time, loc *time.Location) ([]models.Meal, error) {
	meals, err := s.mealRepo.GetByUserIDAndDateRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get meals: %w", err)
	}
	for i := range meals {
		meals[i].Timestamp = meals[i].Timestamp.In(loc)
	}
	return meals, nil
}

func (s *analyticsService) goalsFor(ctx context.Context, userID string) (periodGoals, error) {
	goals := periodGoals{protein: models.DefaultProteinGoal, loc: defaultLocation()}

	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return goals, nil
		}
		return periodGoals{}, fmt.Errorf("failed to get profile: %w", err)
	}

	if profile.ProteinGoal > 0 {
		goals.protein = profile.ProteinGoal
	}
	goals.calories = profile.CalorieGoal
	if profile.Timezone != "" {
		if loc, err := time.LoadLocation(profile.Timezone); err == nil {
			goals.loc = loc
		}
	}
	return goals, nil
}

// defaultLocation resolves the product default timezone, falling back
// to UTC when zoneinfo is unavailable.
func defaultLocation() *time.Location {
	if loc, err := time.LoadLocation(models.DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

func clampCount(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
