package models

import (
	"encoding/json"
	"testing"
)

func TestNullableFloat_ThreeStates(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValid bool
		wantValue float64
	}{
		{"absent", `{}`, false, false, 0},
		{"null", `{"calories": null}`, true, false, 0},
		{"number", `{"calories": 450}`, true, true, 450},
		{"numeric string coerced", `{"calories": "450.5"}`, true, true, 450.5},
		{"garbage coerced to zero", `{"calories": "plenty"}`, true, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateMealRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if req.Calories.Set != tt.wantSet {
				t.Errorf("Set = %v, want %v", req.Calories.Set, tt.wantSet)
			}
			if req.Calories.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", req.Calories.Valid, tt.wantValid)
			}
			if req.Calories.Value != tt.wantValue {
				t.Errorf("Value = %v, want %v", req.Calories.Value, tt.wantValue)
			}
		})
	}
}

func TestNullableFloat_ToPtr(t *testing.T) {
	var req UpdateMealRequest
	if err := json.Unmarshal([]byte(`{"calories": 320}`), &req); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	p := req.Calories.ToPtr()
	if p == nil || *p != 320 {
		t.Fatalf("ToPtr = %v, want pointer to 320", p)
	}

	var cleared UpdateMealRequest
	if err := json.Unmarshal([]byte(`{"calories": null}`), &cleared); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if cleared.Calories.ToPtr() != nil {
		t.Error("ToPtr for null should be nil")
	}
}

func TestNullableString_ThreeStates(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValid bool
		wantValue string
	}{
		{"absent", `{}`, false, false, ""},
		{"null clears", `{"display_name": null}`, true, false, ""},
		{"value", `{"display_name": "Camille"}`, true, true, "Camille"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateProfileRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if req.DisplayName.Set != tt.wantSet || req.DisplayName.Valid != tt.wantValid || req.DisplayName.Value != tt.wantValue {
				t.Errorf("got {Set:%v Valid:%v Value:%q}, want {Set:%v Valid:%v Value:%q}",
					req.DisplayName.Set, req.DisplayName.Valid, req.DisplayName.Value,
					tt.wantSet, tt.wantValid, tt.wantValue)
			}
		})
	}
}

func TestNullableFloat_MarshalRoundTrip(t *testing.T) {
	nf := NullableFloat{Value: 82.5, Valid: true, Set: true}
	out, err := json.Marshal(nf)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != "82.5" {
		t.Errorf("marshal = %s, want 82.5", out)
	}

	null := NullableFloat{Set: true}
	out, err = json.Marshal(null)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != "null" {
		t.Errorf("marshal = %s, want null", out)
	}
}
