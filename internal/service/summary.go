package service

import (
	"math"
	"time"

	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/numutil"
	"github.com/macrolog/backend/internal/timeutil"
)

const (
	// Slope magnitude below which a fitted series counts as flat
	TrendSlopeThreshold = 0.1

	// Correlation thresholds grading how well a fit explains the series
	TrendConfidenceHigh   = 0.7
	TrendConfidenceMedium = 0.4
)

// Meal-frequency boundaries, local hours. Night wraps around midnight.
const (
	morningStartHour   = 5
	afternoonStartHour = 12
	eveningStartHour   = 17
	nightStartHour     = 21
)

// CalculatePeriodSummary groups meals into zero-filled daily buckets
// over [start, end] inclusive and computes the period's aggregates.
//
// The function is pure: no clock, no I/O, deterministic output for
// identical input, buckets always in chronological order. It never
// fails; malformed values were coerced at the boundary and are guarded
// again here, and an inverted range normalizes to an empty period.
//
// Day boundaries follow the location the inputs carry; callers convert
// timestamps and range bounds to the user's timezone beforehand.
func CalculatePeriodSummary(meals []models.Meal, start, end time.Time, label string, proteinGoal, calorieGoal float64) *models.PeriodSummary {
	start = timeutil.StartOfDay(start)
	end = timeutil.EndOfDay(end)

	summary := &models.PeriodSummary{
		Label:        label,
		Start:        start,
		End:          end,
		ProteinGoal:  proteinGoal,
		CalorieGoal:  calorieGoal,
		ProteinTrend: flatTrend(),
		CalorieTrend: flatTrend(),
		DailyData:    []models.DailyBucket{},
	}
	if start.After(end) {
		return summary
	}

	// One bucket per calendar day, zero-filled. Days without meals must
	// exist so active-day ratios and averages stay well-defined.
	keys := make([]string, 0)
	buckets := make(map[string]*models.DailyBucket)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := timeutil.DateKey(day)
		buckets[key] = &models.DailyBucket{Date: key}
		keys = append(keys, key)
	}

	for i := range meals {
		meal := &meals[i]
		if !timeutil.InRange(meal.Timestamp, start, end) {
			continue
		}
		bucket, ok := buckets[timeutil.DateKey(meal.Timestamp)]
		if !ok {
			continue
		}
		bucket.Protein += numutil.SafeNumber(meal.Protein, 0)
		bucket.Calories += numutil.SafeNumber(meal.Calories, 0)
		bucket.MealCount++
		countMealHour(&summary.MealFrequency, meal.Timestamp.Hour())
	}

	var proteinValues, calorieValues []float64
	for _, key := range keys {
		bucket := buckets[key]
		bucket.ProteinGoalMet = bucket.Protein >= proteinGoal
		bucket.CalorieGoalMet = calorieGoal <= 0 || bucket.Calories >= calorieGoal
		if bucket.MealCount > 0 {
			summary.ActiveDays++
		}
		if bucket.ProteinGoalMet {
			summary.ProteinGoalAchieved++
		}
		if bucket.CalorieGoalMet {
			summary.CalorieGoalAchieved++
		}
		if bucket.Protein > 0 {
			proteinValues = append(proteinValues, bucket.Protein)
		}
		if bucket.Calories > 0 {
			calorieValues = append(calorieValues, bucket.Calories)
		}
		summary.DailyData = append(summary.DailyData, *bucket)
	}
	summary.TotalDays = len(keys)

	// Aggregates run over days with a non-zero value only: a day whose
	// meals sum to 0g counts as missing data, not as a measured zero,
	// even though the day itself is active. Percentages come from the
	// unrounded average and are rounded once.
	avgProtein := mean(proteinValues)
	summary.TotalProtein = numutil.SafeRound(sum(proteinValues), 0)
	summary.AverageProtein = numutil.SafeRound(avgProtein, 0)
	summary.MaxProtein = numutil.SafeRound(maxOf(proteinValues), 0)
	summary.MinProtein = numutil.SafeRound(minOf(proteinValues), 0)
	if summary.ActiveDays > 0 && proteinGoal > 0 {
		summary.ProteinGoalPct = numutil.SafeRound(avgProtein/proteinGoal*100, 1)
	}

	avgCalories := mean(calorieValues)
	summary.TotalCalories = numutil.SafeRound(sum(calorieValues), 0)
	summary.AverageCalories = numutil.SafeRound(avgCalories, 0)
	summary.MaxCalories = numutil.SafeRound(maxOf(calorieValues), 0)
	summary.MinCalories = numutil.SafeRound(minOf(calorieValues), 0)
	if summary.ActiveDays > 0 && calorieGoal > 0 {
		summary.CalorieGoalPct = numutil.SafeRound(avgCalories/calorieGoal*100, 1)
	}

	summary.ProteinTrend = CalculateTrend(proteinValues)
	summary.CalorieTrend = CalculateTrend(calorieValues)

	return summary
}

// CalculateTrend fits an ordinary-least-squares line to values against
// their indexes 0..n-1 and grades the fit with Pearson correlation.
// Series too short to fit, or without variance, report a flat trend
// instead of dividing by zero.
func CalculateTrend(values []float64) models.TrendResult {
	n := len(values)
	if n < 2 {
		return flatTrend()
	}

	var sumX, sumY float64
	for i, y := range values {
		sumX += float64(i)
		sumY += y
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var numerator, denomX, denomY float64
	for i, y := range values {
		dx := float64(i) - meanX
		dy := y - meanY
		numerator += dx * dy
		denomX += dx * dx
		denomY += dy * dy
	}
	if denomX == 0 || denomY == 0 {
		return flatTrend()
	}

	slope := numerator / denomX
	correlation := numerator / math.Sqrt(denomX*denomY)

	direction := models.TrendStable
	if math.Abs(slope) >= TrendSlopeThreshold {
		if slope > 0 {
			direction = models.TrendIncreasing
		} else {
			direction = models.TrendDecreasing
		}
	}

	confidence := models.ConfidenceLow
	switch {
	case math.Abs(correlation) > TrendConfidenceHigh:
		confidence = models.ConfidenceHigh
	case math.Abs(correlation) > TrendConfidenceMedium:
		confidence = models.ConfidenceMedium
	}

	return models.TrendResult{
		Slope:       slope,
		Correlation: correlation,
		Direction:   direction,
		Confidence:  confidence,
	}
}

func flatTrend() models.TrendResult {
	return models.TrendResult{Direction: models.TrendStable, Confidence: models.ConfidenceLow}
}

func countMealHour(freq *models.MealFrequency, hour int) {
	switch {
	case hour >= morningStartHour && hour < afternoonStartHour:
		freq.Morning++
	case hour >= afternoonStartHour && hour < eveningStartHour:
		freq.Afternoon++
	case hour >= eveningStartHour && hour < nightStartHour:
		freq.Evening++
	default:
		freq.Night++
	}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

func maxOf(values []float64) float64 {
	var m float64
	for i, v := range values {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	var m float64
	for i, v := range values {
		if i == 0 || v < m {
			m = v
		}
	}
	return m
}
