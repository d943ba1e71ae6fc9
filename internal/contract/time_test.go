package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.November, 3, 10, 0, 0, 0, time.UTC)

// TestParseRelativeTimeUnit covers various valid and invalid cases.
func TestParseRelativeTimeUnit(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{
			name:     "plural months mixed case",
			input:    "3 MoNtHs AgO",
			expected: fixedNow.AddDate(0, -3, 0),
		},
		{
			name:     "singular week",
			input:    "1 Week Ago",
			expected: fixedNow.AddDate(0, 0, -7),
		},
		{
			name:     "days upper case",
			input:    "10 DAYS AGO",
			expected: fixedNow.AddDate(0, 0, -10),
		},
		{
			name:     "future days",
			input:    "in 2 days",
			expected: fixedNow.AddDate(0, 0, 2),
		},
		{
			name:     "future hours",
			input:    "in 5 hours",
			expected: fixedNow.Add(5 * time.Hour),
		},
		{
			name:     "minutes ago",
			input:    "30 minutes ago",
			expected: fixedNow.Add(-30 * time.Minute),
		},
		{
			name:        "missing ago",
			input:       "2 years",
			expectError: true,
		},
		{
			name:        "bad unit",
			input:       "4 decades ago",
			expectError: true,
		},
		{
			name:        "non-numeric value",
			input:       "one year ago",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, fixedNow)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseNow(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{name: "empty", input: "", expected: fixedNow},
		{name: "now", input: "NOW", expected: fixedNow},
		{name: "today", input: "today", expected: time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)},
		{name: "iso date", input: "2024-05-01", expected: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339 offset", input: "2024-05-01T08:00:00+02:00", expected: time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)},
		{name: "relative", input: "3 days ago", expected: fixedNow.AddDate(0, 0, -3)},
		{name: "garbage", input: "yesterday-ish", expectError: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNow(tt.input, fixedNow)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %v", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func FuzzParseNow(f *testing.F) {
	for _, seed := range []string{"now", "2024-01-01", "3 days ago", "in 1 week", "", "2024-05-01T08:00:00Z"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		got, err := ParseNow(s, fixedNow)
		if err == nil {
			assert.Equal(t, time.UTC, got.Location())
		}
	})
}
