package models

import (
	"encoding/json"

	"github.com/macrolog/backend/internal/numutil"
)

// NullableString distinguishes the three states a JSON string field can
// arrive in:
//   - absent:             Set=false, Valid=false
//   - present, null:      Set=true,  Valid=false
//   - present with value: Set=true,  Valid=true
//
// Standard unmarshaling collapses the first two into nil for pointer
// fields, which partial updates cannot live with.
type NullableString struct {
	Value string
	Valid bool // Value is non-null
	Set   bool // field was present in the JSON
}

func (ns *NullableString) UnmarshalJSON(data []byte) error {
	ns.Set = true
	if string(data) == "null" {
		ns.Valid = false
		ns.Value = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	ns.Value = s
	ns.Valid = true
	return nil
}

func (ns NullableString) MarshalJSON() ([]byte, error) {
	if !ns.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(ns.Value)
}

// ToPtr returns nil for a null value, a pointer to Value otherwise.
func (ns NullableString) ToPtr() *string {
	if !ns.Valid {
		return nil
	}
	return &ns.Value
}

// NullableFloat is NullableString's numeric counterpart, with the same
// three states. A present value goes through the standard coercion, so
// "30" and 30 both land as 30 and garbage degrades to 0 rather than
// failing the whole request.
type NullableFloat struct {
	Value float64
	Valid bool
	Set   bool
}

func (nf *NullableFloat) UnmarshalJSON(data []byte) error {
	nf.Set = true
	if string(data) == "null" {
		nf.Valid = false
		nf.Value = 0
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	nf.Value = numutil.SafeNumber(raw, 0)
	nf.Valid = true
	return nil
}

func (nf NullableFloat) MarshalJSON() ([]byte, error) {
	if !nf.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(nf.Value)
}

// ToPtr returns nil for a null value, a pointer to Value otherwise.
func (nf NullableFloat) ToPtr() *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Value
}
