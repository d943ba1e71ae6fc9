package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/burndown/schema"
)

// relativeTimeRe captures "N [units] ago" and "in N [units]",
// e.g. "2 weeks ago", "in 3 days".
var relativeTimeRe = regexp.MustCompile(`^(?:(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago|in\s+(\d+)\s+(year|month|week|day|hour|minute)s?)$`)

// ParseRelativeTime converts strings like "2 weeks ago" or "in 3 days" into a time relative to now.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	m := relativeTimeRe.FindStringSubmatch(s)
	if len(m) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	valueStr, unit, sign := m[1], m[2], -1
	if valueStr == "" {
		valueStr, unit, sign = m[3], m[4], 1
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid relative time value: %s", valueStr)
	}
	value *= sign

	switch unit {
	case "year":
		return now.AddDate(value, 0, 0), nil
	case "month":
		return now.AddDate(0, value, 0), nil
	case "week":
		return now.AddDate(0, 0, 7*value), nil
	case "day":
		return now.AddDate(0, 0, value), nil
	case "hour":
		return now.Add(time.Duration(value) * time.Hour), nil
	default:
		return now.Add(time.Duration(value) * time.Minute), nil
	}
}

// ParseNow resolves the --now flag. It accepts "now", "today" (midnight UTC),
// an ISO date, an RFC3339 timestamp or a relative expression.
func ParseNow(s string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "", "now":
		return now.UTC(), nil
	case "today":
		u := now.UTC()
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	if t, err := time.Parse(schema.DateLayout, trimmed); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(DateTimeFormat, trimmed); err == nil {
		return t.UTC(), nil
	}
	t, err := ParseRelativeTime(trimmed, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, RFC3339 or relative time like '3 days ago': %w", err)
	}
	return t.UTC(), nil
}
