package core

import (
	"time"

	"github.com/huangsam/burndown/schema"
)

// UnknownRemaining marks a track that has never been observed.
const UnknownRemaining = -1

// ClassifyStatus assigns the status of one track. A zero target means no deadline.
// Comparisons are made at millisecond precision; now equal to the target is on time.
func ClassifyStatus(remaining int, target time.Time, trend schema.TrendDirection, now time.Time) schema.Status {
	if remaining < 0 {
		return schema.AtRiskStatus
	}
	pastTarget := !target.IsZero() && now.UnixMilli() > target.UnixMilli()
	switch {
	case remaining == 0 && pastTarget:
		return schema.CompletedLateStatus
	case remaining == 0:
		return schema.CompletedStatus
	case pastTarget:
		return schema.MissedStatus
	case trend == schema.TrendImproving:
		return schema.OnTrackStatus
	default:
		return schema.AtRiskStatus
	}
}

// CombineStatus derives the environment status from both track statuses.
// Full completion dominates, then a miss, then agreement on track; anything else is at risk.
func CombineStatus(spa, ms schema.Status) schema.Status {
	switch {
	case spa.IsCompleted() && ms.IsCompleted():
		if spa == schema.CompletedLateStatus || ms == schema.CompletedLateStatus {
			return schema.CompletedLateStatus
		}
		return schema.CompletedStatus
	case spa == schema.MissedStatus || ms == schema.MissedStatus:
		return schema.MissedStatus
	case spa == schema.OnTrackStatus && ms == schema.OnTrackStatus:
		return schema.OnTrackStatus
	default:
		return schema.AtRiskStatus
	}
}
