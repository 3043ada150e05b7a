package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/repository"
	"github.com/macrolog/backend/internal/timeutil"
)

type exportService struct {
	mealRepo    repository.MealRepository
	profileRepo repository.ProfileRepository
	analytics   AnalyticsService
	now         func() time.Time
}

// NewExportService creates a new export service
func NewExportService(mealRepo repository.MealRepository, profileRepo repository.ProfileRepository, analytics AnalyticsService) ExportService {
	return &exportService{
		mealRepo:    mealRepo,
		profileRepo: profileRepo,
		analytics:   analytics,
		now:         time.Now,
	}
}

// Column names stay accent-free so the files survive naive CSV tooling.
var (
	mealsCSVHeader   = []string{"id", "date", "description", "proteines_g", "calories_kcal", "source", "photo_url"}
	summaryCSVHeader = []string{"periode", "debut", "fin", "jour", "proteines_g", "calories_kcal", "repas", "jours_actifs", "objectif_proteines_pct"}
)

func (s *exportService) MealsCSV(ctx context.Context, userID string, start, end *time.Time) ([]byte, error) {
	loc := s.userLocation(ctx, userID)
	from, to := s.resolveRange(start, end, loc)

	meals, err := s.mealRepo.GetByUserIDAndDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get meals: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(mealsCSVHeader)
	for i := range meals {
		m := &meals[i]
		calories := ""
		if m.Calories != nil {
			calories = formatNum(*m.Calories)
		}
		photo := ""
		if m.PhotoURL != nil {
			photo = *m.PhotoURL
		}
		_ = w.Write([]string{
			m.ID,
			m.Timestamp.In(loc).Format(time.RFC3339),
			m.Description,
			formatNum(m.Protein),
			calories,
			string(m.Source),
			photo,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *exportService) SummaryCSV(ctx context.Context, userID, period string, count int) ([]byte, error) {
	var (
		summaries []models.PeriodSummary
		err       error
	)
	if period == PeriodMonth {
		summaries, err = s.analytics.MonthlySummaries(ctx, userID, count)
	} else {
		summaries, err = s.analytics.WeeklySummaries(ctx, userID, count)
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(summaryCSVHeader)
	for i := range summaries {
		sum := &summaries[i]
		_ = w.Write([]string{
			sum.Label,
			timeutil.DateKey(sum.Start),
			timeutil.DateKey(sum.End),
			"",
			formatNum(sum.TotalProtein),
			formatNum(sum.TotalCalories),
			strconv.Itoa(totalMeals(sum)),
			strconv.Itoa(sum.ActiveDays),
			formatNum(sum.ProteinGoalPct),
		})
		// One detail row per day, under its period row
		for _, day := range sum.DailyData {
			_ = w.Write([]string{
				sum.Label,
				"",
				"",
				day.Date,
				formatNum(day.Protein),
				formatNum(day.Calories),
				strconv.Itoa(day.MealCount),
				"",
				"",
			})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *exportService) ReportHTML(ctx context.Context, userID string, start, end *time.Time) ([]byte, error) {
	loc := s.userLocation(ctx, userID)
	to := s.now().In(loc)
	if end != nil {
		to = end.In(loc)
	}
	// A report without bounds covers the last 30 days
	from := to.AddDate(0, 0, -29)
	if start != nil {
		from = start.In(loc)
	}

	summary, err := s.analytics.CustomSummary(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	insights := BuildInsights([]models.PeriodSummary{*summary})

	data := reportData{
		GeneratedAt:  s.now().In(loc).Format("02/01/2006 15:04"),
		RangeLabel:   timeutil.FormatRange(summary.Start, summary.End),
		Summary:      summary,
		Insights:     insights,
		ProteinTrend: trendLabel(summary.ProteinTrend.Direction),
		CalorieTrend: trendLabel(summary.CalorieTrend.Direction),
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *exportService) AccountExport(ctx context.Context, userID string) (*models.AccountExport, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	// Same clock-skew tolerance as meal creation, so nothing on record
	// falls outside the window.
	to := s.now().Add(time.Duration(MaxFutureMinutes) * time.Minute)
	meals, err := s.mealRepo.GetByUserIDAndDateRange(ctx, userID, time.Unix(0, 0).UTC(), to)
	if err != nil {
		return nil, fmt.Errorf("failed to get meals: %w", err)
	}

	return &models.AccountExport{
		GeneratedAt: s.now().UTC(),
		Profile:     profile,
		Meals:       meals,
	}, nil
}

// userLocation resolves the profile timezone, falling back to the
// default when the profile is missing or names an unknown zone.
func (s *exportService) userLocation(ctx context.Context, userID string) *time.Location {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		return defaultLocation()
	}
	if loc, err := time.LoadLocation(profile.Timezone); err == nil {
		return loc
	}
	return defaultLocation()
}

// resolveRange widens missing bounds: no start means everything on
// record, no end means up to today.
func (s *exportService) resolveRange(start, end *time.Time, loc *time.Location) (time.Time, time.Time) {
	to := s.now().In(loc)
	if end != nil {
		to = end.In(loc)
	}
	from := time.Unix(0, 0).UTC()
	if start != nil {
		from = timeutil.StartOfDay(start.In(loc))
	}
	return from, timeutil.EndOfDay(to)
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func totalMeals(sum *models.PeriodSummary) int {
	f := sum.MealFrequency
	return f.Morning + f.Afternoon + f.Evening + f.Night
}

func trendLabel(d models.TrendDirection) string {
	switch d {
	case models.TrendIncreasing:
		return "en hausse"
	case models.TrendDecreasing:
		return "en baisse"
	default:
		return "stable"
	}
}

type reportData struct {
	GeneratedAt  string
	RangeLabel   string
	Summary      *models.PeriodSummary
	Insights     *models.InsightReport
	ProteinTrend string
	CalorieTrend string
}

var reportTemplate = template.Must(template.New("report").Parse(reportHTMLTemplate))

const reportHTMLTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>Rapport nutritionnel</title>
<style>
body { font-family: "Helvetica Neue", Arial, sans-serif; margin: 2rem auto; max-width: 52rem; color: #1f2933; }
h1 { font-size: 1.5rem; }
h2 { font-size: 1.1rem; margin-top: 2rem; }
.meta { color: #616e7c; font-size: 0.9rem; }
table { border-collapse: collapse; width: 100%; margin-top: 0.75rem; }
th, td { border: 1px solid #d3dce6; padding: 0.3rem 0.6rem; font-size: 0.85rem; text-align: right; }
th:first-child, td:first-child { text-align: left; }
tr.goal-met td { background: #f0fff4; }
ul { margin: 0.5rem 0 0 1.2rem; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>Rapport nutritionnel</h1>
<p class="meta">{{.Summary.Label}} ({{.RangeLabel}}), rapport du {{.GeneratedAt}}</p>

<h2>Résumé</h2>
<table>
<tr><th></th><th>Protéines</th><th>Calories</th></tr>
<tr><td>Total</td><td>{{printf "%.0f" .Summary.TotalProtein}} g</td><td>{{printf "%.0f" .Summary.TotalCalories}} kcal</td></tr>
<tr><td>Moyenne par jour actif</td><td>{{printf "%.0f" .Summary.AverageProtein}} g</td><td>{{printf "%.0f" .Summary.AverageCalories}} kcal</td></tr>
<tr><td>Maximum</td><td>{{printf "%.0f" .Summary.MaxProtein}} g</td><td>{{printf "%.0f" .Summary.MaxCalories}} kcal</td></tr>
<tr><td>Objectif</td><td>{{printf "%.0f" .Summary.ProteinGoal}} g</td><td>{{if gt .Summary.CalorieGoal 0.0}}{{printf "%.0f" .Summary.CalorieGoal}} kcal{{else}}aucun{{end}}</td></tr>
<tr><td>Jours objectif atteint</td><td>{{.Summary.ProteinGoalAchieved}} / {{.Summary.TotalDays}}</td><td>{{.Summary.CalorieGoalAchieved}} / {{.Summary.TotalDays}}</td></tr>
<tr><td>Tendance</td><td>{{.ProteinTrend}}</td><td>{{.CalorieTrend}}</td></tr>
</table>
<p class="meta">{{.Summary.ActiveDays}} jours actifs sur {{.Summary.TotalDays}}.</p>

<h2>Détail par jour</h2>
<table>
<tr><th>Date</th><th>Protéines (g)</th><th>Calories (kcal)</th><th>Repas</th></tr>
{{range .Summary.DailyData}}<tr{{if .ProteinGoalMet}} class="goal-met"{{end}}><td>{{.Date}}</td><td>{{printf "%.0f" .Protein}}</td><td>{{printf "%.0f" .Calories}}</td><td>{{.MealCount}}</td></tr>
{{end}}</table>

{{if .Insights.Achievements}}<h2>Réussites</h2>
<ul>{{range .Insights.Achievements}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Insights.Improvements}}<h2>Axes d'amélioration</h2>
<ul>{{range .Insights.Improvements}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Insights.Trends}}<h2>Tendances</h2>
<ul>{{range .Insights.Trends}}<li>{{.}}</li>{{end}}</ul>{{end}}
</body>
</html>
`
