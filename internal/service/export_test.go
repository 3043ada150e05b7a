package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/repository"
	"github.com/macrolog/backend/internal/repository/mocks"
)

// newExportForTest wires the export service to a real analytics service
// over mocked repositories, with the clock pinned to analyticsNow.
func newExportForTest(t *testing.T) (*exportService, *mocks.MockMealRepository, *mocks.MockProfileRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mealRepo := mocks.NewMockMealRepository(ctrl)
	profileRepo := mocks.NewMockProfileRepository(ctrl)
	analytics := &analyticsService{
		mealRepo:    mealRepo,
		profileRepo: profileRepo,
		now:         func() time.Time { return analyticsNow },
	}
	svc := &exportService{
		mealRepo:    mealRepo,
		profileRepo: profileRepo,
		analytics:   analytics,
		now:         func() time.Time { return analyticsNow },
	}
	return svc, mealRepo, profileRepo
}

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("Export is not valid CSV: %v", err)
	}
	return rows
}

func TestMealsCSV_Shape(t *testing.T) {
	svc, mealRepo, profileRepo := newExportForTest(t)
	profileRepo.EXPECT().Get(gomock.Any(), "user-1").Return(testProfile(), nil)

	withPhoto := mealAt(time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC), 45, fptr(650))
	photo := "https://example.test/p.jpg"
	withPhoto.PhotoURL = &photo
	bare := mealAt(time.Date(2026, 3, 18, 12, 30, 0, 0, time.UTC), 30.5, nil)
	mealRepo.EXPECT().
		GetByUserIDAndDateRange(gomock.Any(), "user-1", gomock.Any(), gomock.Any()).
		Return([]models.Meal{withPhoto, bare}, nil)

	data, err := svc.MealsCSV(context.Background(), "user-1", nil, nil)
	if err != nil {
		t.Fatalf("MealsCSV failed: %v", err)
	}

	rows := parseCSV(t, data)
	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(rows))
	}
	for i, want := range mealsCSVHeader {
		if rows[0][i] != want {
			t.Errorf("Header[%d] = %q, want %q", i, rows[0][i], want)
		}
	}
	first := rows[1]
	if first[1] != "2026-03-17T09:00:00Z" {
		t.Errorf("Unexpected timestamp %q", first[1])
	}
	if first[3] != "45" || first[4] != "650" {
		t.Errorf("Unexpected macros %q / %q", first[3], first[4])
	}
	if first[5] != "manual" || first[6] != photo {
		t.Errorf("Unexpected source/photo %q / %q", first[5], first[6])
	}
	second := rows[2]
	if second[3] != "30.5" {
		t.Errorf("Expected fractional protein kept, got %q", second[3])
	}
	if second[4] != "" {
		t.Errorf("Expected empty cell for missing calories, got %q", second[4])
	}
}

func TestMealsCSV_NormalizesExplicitRange(t *testing.T) {
	svc, mealRepo, profileRepo := newExportForTest(t)
	profileRepo.EXPECT().Get(gomock.Any(), "user-1").Return(testProfile(), nil)

	var gotStart, gotEnd time.Time
	mealRepo.EXPECT().
		GetByUserIDAndDateRange(gomock.Any(), "user-1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, start, end time.Time) ([]models.Meal, error) {
			gotStart, gotEnd = start, end
			return nil, nil
		})

	start := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 12, 2, 0, 0, 0, time.UTC)
	if _, err := svc.MealsCSV(context.Background(), "user-1", &start, &end); err != nil {
		t.Fatalf("MealsCSV failed: %v", err)
	}

	if !gotStart.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected start snapped to midnight, got %v", gotStart)
	}
	if gotEnd.Day() != 12 || gotEnd.Hour() != 23 {
		t.Errorf("Expected end pushed to end of day, got %v", gotEnd)
	}
}

func TestSummaryCSV_WeekShape(t *testing.T) {
	svc, mealRepo, profileRepo := newExportForTest(t)
	profileRepo.EXPECT().Get(gomock.Any(), "user-1").Return(testProfile(), nil)

	meals := []models.Meal{mealAt(time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC), 45, fptr(650))}
	mealRepo.EXPECT().
		GetByUserIDAndDateRange(gomock.Any(), "user-1", gomock.Any(), gomock.Any()).
		Return(meals, nil)

	data, err := svc.SummaryCSV(context.Background(), "user-1", PeriodWeek, 2)
	if err != nil {
		t.Fatalf("SummaryCSV failed: %v", err)
	}

	rows := parseCSV(t, data)
	// Header, then per week one period row and seven day rows
	if len(rows) != 1+2*8 {
		t.Fatalf("Expected 17 rows, got %d", len(rows))
	}

	lastWeek := rows[1]
	if lastWeek[0] != "Semaine dernière" || lastWeek[3] != "" {
		t.Errorf("Unexpected period row %v", lastWeek)
	}
	if lastWeek[1] != "2026-03-09" || lastWeek[2] != "2026-03-15" {
		t.Errorf("Unexpected period bounds %q / %q", lastWeek[1], lastWeek[2])
	}

	thisWeek := rows[9]
	if thisWeek[0] != "Cette semaine" {
		t.Errorf("Expected current week row, got %v", thisWeek)
	}
	if thisWeek[4] != "45" || thisWeek[6] != "1" || thisWeek[7] != "1" {
		t.Errorf("Unexpected aggregates %v", thisWeek)
	}
	if thisWeek[8] != "45" {
		t.Errorf("Expected goal pct 45, got %q", thisWeek[8])
	}

	wednesday := rows[12]
	if wednesday[3] != "2026-03-18" || wednesday[4] != "45" {
		t.Errorf("Unexpected day row %v", wednesday)
	}
	if wednesday[1] != "" || wednesday[2] != "" {
		t.Errorf("Day rows must leave period bounds empty, got %v", wednesday)
	}
}

func TestSummaryCSV_MonthPeriod(t *testing.T) {
	svc, mealRepo, profileRepo := newExportForTest(t)
	profileRepo.EXPECT().Get(gomock.Any(), "user-1").Return(testProfile(), nil)
	mealRepo.EXPECT().
		GetByUserIDAndDateRange(gomock.Any(), "user-1", gomock.Any(), gomock.Any()).
		Return(nil, nil)

	data, err := svc.SummaryCSV(context.Background(), "user-1", PeriodMonth, 1)
	if err != nil {
		t.Fatalf("SummaryCSV failed: %v", err)
	}

	rows := parseCSV(t, data)
	// March has 31 days
	if len(rows) != 1+1+31 {
		t.Fatalf("Expected 33 rows, got %d", len(rows))
	}
	if rows[1][0] != "Ce mois-ci" {
		t.Errorf("Expected current month label, got %q", rows[1][0])
	}
}

func TestReportHTML_RendersSummaryAndInsights(t *testing.T) {
	svc, mealRepo, profileRepo := newExportForTest(t)
	profileRepo.EXPECT().Get(gomock.Any(), "user-1").Return(testProfile(), nil).Times(2)

	meals := []models.Meal{mealAt(time.Date(2026, 3, 11, 19, 0, 0, 0, time.UTC), 120, fptr(700))}
	mealRepo.EXPECT().
		GetByUserIDAndDateRange(gomock.Any(), "user-1", gomock.Any(), gomock.Any()).
		Return(meals, nil)

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	data, err := svc.ReportHTML(context.Background(), "user-1", &start, &end)
	if err != nil {
		t.Fatalf("ReportHTML failed: %v", err)
	}

	html := string(data)
	for _, want := range []string{
		"Rapport nutritionnel",
		"Période personnalisée",
		"rapport du 18/03/2026 14:30",
		"2026-03-11",
		`class="goal-met"`,
		"Réussites",
		"Objectif de protéines atteint sur la période",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Report missing %q", want)
		}
	}
}

func TestReportHTML_DefaultsToLastThirtyDays(t *testing.T) {
	svc, mealRepo, profileRepo := newExportForTest(t)
	profileRepo.EXPECT().Get(gomock.Any(), "user-1").Return(testProfile(), nil).Times(2)

	var gotStart time.Time
	mealRepo.EXPECT().
		GetByUserIDAndDateRange(gomock.Any(), "user-1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, start, end time.Time) ([]models.Meal, error) {
			gotStart = start
			return nil, nil
		})

	if _, err := svc.ReportHTML(context.Background(), "user-1", nil, nil); err != nil {
		t.Fatalf("ReportHTML failed: %v", err)
	}

	if !gotStart.Equal(time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected 30-day default window, got start %v", gotStart)
	}
}

func TestAccountExport_Bundle(t *testing.T) {
	svc, mealRepo, profileRepo := newExportForTest(t)
	profileRepo.EXPECT().Get(gomock.Any(), "user-1").Return(testProfile(), nil)

	meals := []models.Meal{
		mealAt(time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC), 40, fptr(500)),
		mealAt(time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC), 30, nil),
	}
	mealRepo.EXPECT().
		GetByUserIDAndDateRange(gomock.Any(), "user-1", gomock.Any(), gomock.Any()).
		Return(meals, nil)

	export, err := svc.AccountExport(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("AccountExport failed: %v", err)
	}

	if !export.GeneratedAt.Equal(analyticsNow) {
		t.Errorf("Unexpected GeneratedAt %v", export.GeneratedAt)
	}
	if export.Profile == nil || export.Profile.UserID != "user-1" {
		t.Errorf("Unexpected profile %+v", export.Profile)
	}
	if len(export.Meals) != 2 {
		t.Errorf("Expected 2 meals, got %d", len(export.Meals))
	}
}

func TestAccountExport_MissingProfileTolerated(t *testing.T) {
	svc, mealRepo, profileRepo := newExportForTest(t)
	profileRepo.EXPECT().Get(gomock.Any(), "user-1").Return(nil, repository.ErrNotFound)
	mealRepo.EXPECT().
		GetByUserIDAndDateRange(gomock.Any(), "user-1", gomock.Any(), gomock.Any()).
		Return(nil, nil)

	export, err := svc.AccountExport(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("AccountExport failed: %v", err)
	}
	if export.Profile != nil {
		t.Errorf("Expected nil profile, got %+v", export.Profile)
	}
}
