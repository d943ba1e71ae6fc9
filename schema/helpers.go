package schema

import (
	"math"
	"strings"
	"time"
	"unicode"
)

// ParseDate parses an ISO 8601 calendar date or an RFC3339 timestamp and
// truncates it to midnight UTC. The second return value is false when the
// value is empty or unparseable.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		u := t.UTC()
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// FormatDate renders a time as an ISO 8601 calendar date, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// ParseSeriesKey resolves a loosely formatted series key such as "spa.actual",
// "Microservice Planned" or "ms_actual" into its track and kind.
func ParseSeriesKey(key string) (ServiceType, SeriesKind, bool) {
	fields := strings.FieldsFunc(strings.ToLower(key), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	var (
		st       ServiceType
		kind     SeriesKind
		haveType bool
		haveKind bool
	)
	for _, f := range fields {
		switch f {
		case "spa", "spas":
			st, haveType = SpaType, true
		case "ms", "microservice", "microservices":
			st, haveType = MsType, true
		case "actual", "actuals", "remaining":
			kind, haveKind = ActualKind, true
		case "planned", "plan", "target":
			kind, haveKind = PlannedKind, true
		}
	}
	if !haveType || !haveKind {
		return "", "", false
	}
	return st, kind, true
}

// CountFromFloat converts a raw count into a non-negative integer.
// Fractions are rounded; negative values are clamped to zero and huge ones to MaxCount.
func CountFromFloat(v float64) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v < 0 {
		return 0, true
	}
	if v >= MaxCount {
		return MaxCount, true
	}
	return int(math.Round(v)), true
}

// IntPtr returns a pointer to a copy of v.
func IntPtr(v int) *int {
	return &v
}
