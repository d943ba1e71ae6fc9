package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/burndown/schema"
)

// Color variables for console output.
var (
	MissedColor    = color.New(color.FgRed, color.Bold)    // missed deadlines stand out
	AtRiskColor    = color.New(color.FgYellow, color.Bold) // needs attention
	OnTrackColor   = color.New(color.FgCyan)               // informational
	CompletedColor = color.New(color.FgGreen)              // done on time
	LateColor      = color.New(color.FgMagenta)            // done after the deadline
)

// GetColorLabel returns a colored status label for console output (table).
// It uses schema.GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(s schema.Status) string {
	text := schema.GetPlainLabel(s)

	switch s {
	case schema.MissedStatus:
		return MissedColor.Sprint(text)
	case schema.OnTrackStatus:
		return OnTrackColor.Sprint(text)
	case schema.CompletedStatus:
		return CompletedColor.Sprint(text)
	case schema.CompletedLateStatus:
		return LateColor.Sprint(text)
	default:
		return AtRiskColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ParseList splits a comma separated flag value, trimming blanks and dropping empties.
func ParseList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// GetDataDir returns the directory holding local database files.
func GetDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".burndown"
	}
	return filepath.Join(homeDir, ".burndown")
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	return filepath.Join(GetDataDir(), "cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	return filepath.Join(GetDataDir(), "analysis.db")
}
