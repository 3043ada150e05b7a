package service

import (
	"strings"
	"testing"

	"github.com/macrolog/backend/internal/models"
)

// A neutral week: goal percentage between the improvement and
// achievement thresholds, activity ratio between sparse and steady.
func baseSummary() models.PeriodSummary {
	return models.PeriodSummary{
		Label:          "Cette semaine",
		TotalDays:      7,
		ActiveDays:     5,
		ProteinGoal:    120,
		ProteinGoalPct: 85,
		ProteinTrend:   models.TrendResult{Direction: models.TrendStable, Confidence: models.ConfidenceLow},
		CalorieTrend:   models.TrendResult{Direction: models.TrendStable, Confidence: models.ConfidenceLow},
	}
}

func containsInsight(list []string, fragment string) bool {
	for _, s := range list {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}

func TestBuildInsights_Empty(t *testing.T) {
	report := BuildInsights(nil)
	if report == nil {
		t.Fatal("report should never be nil")
	}
	if report.Achievements == nil || report.Improvements == nil || report.Trends == nil {
		t.Fatal("categories should be empty slices, not nil")
	}
	if len(report.Achievements)+len(report.Improvements)+len(report.Trends) != 0 {
		t.Errorf("expected no insights, got %+v", report)
	}
}

func TestBuildInsights_NeutralWeekIsQuiet(t *testing.T) {
	report := BuildInsights([]models.PeriodSummary{baseSummary()})
	if len(report.Achievements) != 0 || len(report.Improvements) != 0 {
		t.Errorf("neutral summary should produce no achievements or improvements, got %+v", report)
	}
}

func TestBuildInsights_GoalReached(t *testing.T) {
	s := baseSummary()
	s.ProteinGoalPct = 112
	report := BuildInsights([]models.PeriodSummary{s})

	if !containsInsight(report.Achievements, "Objectif de protéines atteint") {
		t.Errorf("expected goal achievement, got %+v", report.Achievements)
	}
	if containsInsight(report.Improvements, "protéines") {
		t.Errorf("no protein improvement expected, got %+v", report.Improvements)
	}
}

func TestBuildInsights_UnderGoal(t *testing.T) {
	s := baseSummary()
	s.ProteinGoalPct = 62
	report := BuildInsights([]models.PeriodSummary{s})

	if !containsInsight(report.Improvements, "visez 120 g") {
		t.Errorf("expected protein improvement naming the goal, got %+v", report.Improvements)
	}
}

func TestBuildInsights_TrackingRegularity(t *testing.T) {
	steady := baseSummary()
	steady.ActiveDays = 7
	report := BuildInsights([]models.PeriodSummary{steady})
	if !containsInsight(report.Achievements, "Suivi très régulier") {
		t.Errorf("expected steady-tracking achievement, got %+v", report.Achievements)
	}

	sparse := baseSummary()
	sparse.ActiveDays = 2
	report = BuildInsights([]models.PeriodSummary{sparse})
	if !containsInsight(report.Improvements, "plus régulièrement") {
		t.Errorf("expected sparse-tracking improvement, got %+v", report.Improvements)
	}
}

func TestBuildInsights_CalorieAlignment(t *testing.T) {
	s := baseSummary()
	s.CalorieGoal = 2000
	s.CalorieGoalPct = 95
	report := BuildInsights([]models.PeriodSummary{s})
	if !containsInsight(report.Achievements, "calorique") {
		t.Errorf("expected calorie alignment achievement, got %+v", report.Achievements)
	}

	// Outside the band, and without a goal at all: no calorie insight.
	s.CalorieGoalPct = 130
	report = BuildInsights([]models.PeriodSummary{s})
	if containsInsight(report.Achievements, "calorique") {
		t.Errorf("no calorie achievement expected at 130%%, got %+v", report.Achievements)
	}
}

func TestBuildInsights_ProteinTrendDirection(t *testing.T) {
	up := baseSummary()
	up.ProteinTrend.Direction = models.TrendIncreasing
	report := BuildInsights([]models.PeriodSummary{up})
	if !containsInsight(report.Trends, "en hausse") {
		t.Errorf("expected rising trend line, got %+v", report.Trends)
	}

	down := baseSummary()
	down.ProteinTrend.Direction = models.TrendDecreasing
	report = BuildInsights([]models.PeriodSummary{down})
	if !containsInsight(report.Trends, "en baisse") {
		t.Errorf("expected falling trend line, got %+v", report.Trends)
	}
}

func TestBuildInsights_RegularityComparison(t *testing.T) {
	previous := baseSummary()
	previous.ActiveDays = 3
	latest := baseSummary()
	latest.ActiveDays = 6

	report := BuildInsights([]models.PeriodSummary{previous, latest})
	if !containsInsight(report.Trends, "Régularité en hausse") {
		t.Errorf("expected rising regularity, got %+v", report.Trends)
	}

	report = BuildInsights([]models.PeriodSummary{latest, previous})
	if !containsInsight(report.Trends, "Régularité en baisse") {
		t.Errorf("expected falling regularity, got %+v", report.Trends)
	}

	report = BuildInsights([]models.PeriodSummary{latest, latest})
	if containsInsight(report.Trends, "Régularité") {
		t.Errorf("equal regularity should produce no comparison line, got %+v", report.Trends)
	}
}
