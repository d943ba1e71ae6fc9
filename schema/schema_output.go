package schema

// GetPlainLabel returns a human readable label for a status.
func GetPlainLabel(s Status) string {
	switch s {
	case CompletedStatus:
		return "Completed"
	case CompletedLateStatus:
		return "Completed late"
	case OnTrackStatus:
		return "On track"
	case MissedStatus:
		return "Missed"
	default:
		return "At risk"
	}
}

// GetConfidenceBand buckets a confidence score.
func GetConfidenceBand(confidence float64) ConfidenceBand {
	switch {
	case confidence >= 0.8:
		return ConfidenceHigh
	case confidence >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// SeriesOutput is the normalized point set of every environment, in presentation order.
type SeriesOutput struct {
	Environments []EnvironmentSeries `json:"environments"`
}
