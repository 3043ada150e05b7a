// Package numutil coerces untrusted numeric and date values into
// well-defined Go values. Meal data enters the system as loosely-typed
// JSON (user forms, AI extraction, food-database payloads), where a
// protein amount may arrive as 30, "30", " 30.5 ", null, or garbage.
// Every function here is pure and total: it never panics and never
// returns NaN or an infinity.
package numutil

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// SafeNumber returns v coerced to a finite float64. Numeric types pass
// through unless they carry NaN or Inf. Strings are trimmed and parsed.
// Everything else, nil included, yields def.
func SafeNumber(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return finiteOr(n, def)
	case float32:
		return finiteOr(float64(n), def)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return def
		}
		return finiteOr(f, def)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return def
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return def
		}
		// ParseFloat accepts "NaN" and "Inf" as valid input.
		return finiteOr(f, def)
	case *float64:
		if n == nil {
			return def
		}
		return finiteOr(*n, def)
	default:
		return def
	}
}

// SafeSum adds arbitrary-typed values, coercing each with SafeNumber
// first. Unparseable entries contribute 0.
func SafeSum(values ...any) float64 {
	var total float64
	for _, v := range values {
		total += SafeNumber(v, 0)
	}
	return total
}

// SafeAverage returns the mean of the coerced values after filtering out
// zeros. An empty or all-zero input yields 0. The zero filter means a
// logged zero is indistinguishable from a missing value; period averages
// rely on exactly this behavior.
func SafeAverage(values ...any) float64 {
	var sum float64
	var count int
	for _, v := range values {
		f := SafeNumber(v, 0)
		if f == 0 {
			continue
		}
		sum += f
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// SafeRound coerces v and rounds half away from zero at the given number
// of decimals. Negative decimals are treated as 0.
func SafeRound(v any, decimals int) float64 {
	if decimals < 0 {
		decimals = 0
	}
	f := SafeNumber(v, 0)
	pow := math.Pow(10, float64(decimals))
	r := math.Round(f*pow) / pow
	return finiteOr(r, f)
}

// SafeDate returns v coerced to a time.Time. Strings are tried against a
// fixed set of layouts, numbers are read as Unix epochs (milliseconds
// when the magnitude says so), and anything unparseable yields def.
func SafeDate(v any, def time.Time) time.Time {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return def
		}
		return d
	case *time.Time:
		if d == nil || d.IsZero() {
			return def
		}
		return *d
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return def
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return def
	case int:
		return epochTime(int64(d))
	case int64:
		return epochTime(d)
	case float64:
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return def
		}
		return epochTime(int64(d))
	case json.Number:
		f, err := d.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return def
		}
		return epochTime(int64(f))
	default:
		return def
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func finiteOr(f, def float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// epochTime interprets n as Unix milliseconds when it is too large to be
// a plausible seconds value (past year 33658), seconds otherwise.
func epochTime(n int64) time.Time {
	const msThreshold = 1e12
	if n >= msThreshold || n <= -msThreshold {
		return time.UnixMilli(n)
	}
	return time.Unix(n, 0)
}
