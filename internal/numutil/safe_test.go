package numutil

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestSafeNumber(t *testing.T) {
	ptr := func(f float64) *float64 { return &f }

	tests := []struct {
		name  string
		input any
		def   float64
		want  float64
	}{
		{"float64 passes through", 42.5, 0, 42.5},
		{"float32 passes through", float32(1.5), 0, 1.5},
		{"int passes through", 30, 0, 30},
		{"int64 passes through", int64(-7), 0, -7},
		{"uint passes through", uint(9), 0, 9},
		{"NaN rejected", math.NaN(), 5, 5},
		{"positive infinity rejected", math.Inf(1), 5, 5},
		{"negative infinity rejected", math.Inf(-1), 5, 5},
		{"numeric string parsed", "30", 0, 30},
		{"decimal string parsed", "30.5", 0, 30.5},
		{"padded string trimmed", "  12.25  ", 0, 12.25},
		{"negative string parsed", "-4", 0, -4},
		{"garbage string defaults", "abc", 3, 3},
		{"empty string defaults", "", 3, 3},
		{"NaN string rejected", "NaN", 3, 3},
		{"Inf string rejected", "Inf", 3, 3},
		{"json.Number parsed", json.Number("88.5"), 0, 88.5},
		{"json.Number garbage defaults", json.Number("x"), 2, 2},
		{"nil defaults", nil, 7, 7},
		{"bool defaults", true, 7, 7},
		{"slice defaults", []int{1, 2}, 7, 7},
		{"map defaults", map[string]int{"a": 1}, 7, 7},
		{"nil float pointer defaults", (*float64)(nil), 7, 7},
		{"float pointer dereferenced", ptr(19.5), 0, 19.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeNumber(tt.input, tt.def)
			if got != tt.want {
				t.Errorf("SafeNumber(%v, %v) = %v, want %v", tt.input, tt.def, got, tt.want)
			}
		})
	}
}

// Coercion must be total: no input type may produce NaN or an infinity.
func TestSafeNumber_AlwaysFinite(t *testing.T) {
	inputs := []any{
		math.NaN(), math.Inf(1), math.Inf(-1),
		float32(float64(math.NaN())), "NaN", "-Inf", "+Inf", "Infinity",
		"1e999", json.Number("NaN"), nil, struct{}{}, []string{"x"},
		map[string]any{}, true, func() {},
	}
	for _, in := range inputs {
		got := SafeNumber(in, 0)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("SafeNumber(%v, 0) = %v, want finite", in, got)
		}
	}
}

func TestSafeSum(t *testing.T) {
	// The central defense against mixed-type input: strings parse,
	// nil and garbage contribute zero.
	if got := SafeSum("10", 5, nil, "abc", 2.5); got != 17.5 {
		t.Errorf("SafeSum mixed types = %v, want 17.5", got)
	}
	if got := SafeSum(); got != 0 {
		t.Errorf("SafeSum() = %v, want 0", got)
	}
	if got := SafeSum(math.NaN(), math.Inf(1), 3); got != 3 {
		t.Errorf("SafeSum with NaN/Inf = %v, want 3", got)
	}
}

func TestSafeAverage(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   float64
	}{
		{"zeros filtered before averaging", []any{0, 100, 200}, 150},
		{"all zero yields zero", []any{0, 0, 0}, 0},
		{"empty yields zero", nil, 0},
		{"single value", []any{42.0}, 42},
		{"mixed types coerced", []any{"50", 0, 100.0}, 75},
		{"negatives are kept", []any{-10, 10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeAverage(tt.values...); got != tt.want {
				t.Errorf("SafeAverage(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestSafeRound(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		decimals int
		want     float64
	}{
		{"half rounds away from zero", 47.5, 0, 48},
		{"negative half rounds away from zero", -2.5, 0, -3},
		{"one decimal", 1.25, 1, 1.3},
		{"two decimals from string", "3.14159", 2, 3.14},
		{"negative decimals treated as zero", 2.345, -1, 2},
		{"nil defaults to zero", nil, 1, 0},
		{"NaN defaults to zero", math.NaN(), 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeRound(tt.value, tt.decimals); got != tt.want {
				t.Errorf("SafeRound(%v, %d) = %v, want %v", tt.value, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestSafeDate(t *testing.T) {
	def := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input any
		want  time.Time
	}{
		{"time passes through", time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC), time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)},
		{"zero time defaults", time.Time{}, def},
		{"RFC3339 string", "2026-03-02T08:30:00Z", time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)},
		{"RFC3339 with nanos", "2026-03-02T08:30:00.5Z", time.Date(2026, 3, 2, 8, 30, 0, 500000000, time.UTC)},
		{"naive datetime string", "2026-03-02T08:30:00", time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)},
		{"date-only string", "2026-03-02", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"garbage string defaults", "not a date", def},
		{"empty string defaults", "", def},
		{"unix seconds", int64(1767225600), time.Unix(1767225600, 0)},
		{"unix milliseconds", int64(1767225600000), time.UnixMilli(1767225600000)},
		{"nil defaults", nil, def},
		{"bool defaults", true, def},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeDate(tt.input, def)
			if !got.Equal(tt.want) {
				t.Errorf("SafeDate(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
