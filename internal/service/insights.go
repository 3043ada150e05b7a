package service

import (
	"fmt"

	"github.com/macrolog/backend/internal/models"
)

const (
	// Goal-percentage thresholds for achievement and improvement insights
	InsightGoalReachedPct = 100.0
	InsightGoalClosePct   = 80.0

	// Active-day ratios separating steady tracking from sparse logging
	InsightSteadyTrackingRatio = 0.8
	InsightSparseTrackingRatio = 0.5

	// Calorie alignment band around the goal, in percent of goal
	InsightCalorieBandLowPct  = 90.0
	InsightCalorieBandHighPct = 110.0
)

// BuildInsights derives categorized textual insights from consecutive
// period summaries, oldest first. The rules are a fixed threshold table
// over the latest summary plus a comparison against the one before it;
// no state, no randomness, same input same output.
func BuildInsights(summaries []models.PeriodSummary) *models.InsightReport {
	report := &models.InsightReport{
		Achievements: []string{},
		Improvements: []string{},
		Trends:       []string{},
	}
	if len(summaries) == 0 {
		return report
	}

	latest := summaries[len(summaries)-1]
	ratio := activeRatio(latest)

	if latest.ProteinGoalPct >= InsightGoalReachedPct {
		report.Achievements = append(report.Achievements,
			"Objectif de protéines atteint sur la période")
	} else if latest.ActiveDays > 0 && latest.ProteinGoalPct < InsightGoalClosePct {
		report.Improvements = append(report.Improvements,
			fmt.Sprintf("Apport moyen sous l'objectif de protéines : visez %.0f g par jour", latest.ProteinGoal))
	}

	if latest.TotalDays > 0 {
		if ratio >= InsightSteadyTrackingRatio {
			report.Achievements = append(report.Achievements,
				"Suivi très régulier : des repas enregistrés presque chaque jour")
		} else if ratio < InsightSparseTrackingRatio {
			report.Improvements = append(report.Improvements,
				"Enregistrez vos repas plus régulièrement pour des statistiques fiables")
		}
	}

	if latest.CalorieGoal > 0 &&
		latest.CalorieGoalPct >= InsightCalorieBandLowPct &&
		latest.CalorieGoalPct <= InsightCalorieBandHighPct {
		report.Achievements = append(report.Achievements,
			"Apport calorique bien aligné sur l'objectif")
	}

	switch latest.ProteinTrend.Direction {
	case models.TrendIncreasing:
		report.Trends = append(report.Trends,
			"Apport en protéines en hausse sur la période")
	case models.TrendDecreasing:
		report.Trends = append(report.Trends,
			"Apport en protéines en baisse sur la période")
	}

	if len(summaries) >= 2 {
		previousRatio := activeRatio(summaries[len(summaries)-2])
		if ratio > previousRatio {
			report.Trends = append(report.Trends,
				"Régularité en hausse par rapport à la période précédente")
		} else if ratio < previousRatio {
			report.Trends = append(report.Trends,
				"Régularité en baisse par rapport à la période précédente")
		}
	}

	return report
}

func activeRatio(s models.PeriodSummary) float64 {
	if s.TotalDays == 0 {
		return 0
	}
	return float64(s.ActiveDays) / float64(s.TotalDays)
}
