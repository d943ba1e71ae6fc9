package schema

import "time"

// BurndownPoint is one calendar date of one environment's burndown.
// Count fields are nil when no series reported a value for that date.
type BurndownPoint struct {
	Date            string `json:"date"`
	Timestamp       int64  `json:"timestamp"`
	SpaActual       *int   `json:"spaActual,omitempty"`
	SpaPlanned      *int   `json:"spaPlanned,omitempty"`
	MsActual        *int   `json:"msActual,omitempty"`
	MsPlanned       *int   `json:"msPlanned,omitempty"`
	SpaTotal        *int   `json:"spaTotal,omitempty"`
	MsTotal         *int   `json:"msTotal,omitempty"`
	CombinedActual  int    `json:"combinedActual"`
	CombinedPlanned int    `json:"combinedPlanned"`
}

// Actual returns the remaining count observed for the given track.
func (p BurndownPoint) Actual(t ServiceType) *int {
	if t == MsType {
		return p.MsActual
	}
	return p.SpaActual
}

// Planned returns the planned remaining count for the given track.
func (p BurndownPoint) Planned(t ServiceType) *int {
	if t == MsType {
		return p.MsPlanned
	}
	return p.SpaPlanned
}

// Total returns the scope denominator carried on the point for the given track.
func (p BurndownPoint) Total(t ServiceType) *int {
	if t == MsType {
		return p.MsTotal
	}
	return p.SpaTotal
}

// Targets holds the per-track completion deadlines of an environment.
// A zero time means the track has no usable target.
type Targets struct {
	Spa          time.Time
	Microservice time.Time
}

// For returns the target of the given track.
func (t Targets) For(st ServiceType) time.Time {
	if st == MsType {
		return t.Microservice
	}
	return t.Spa
}

// Earliest returns the nearer of the valid targets and whether any exists.
func (t Targets) Earliest() (time.Time, bool) {
	switch {
	case t.Spa.IsZero() && t.Microservice.IsZero():
		return time.Time{}, false
	case t.Spa.IsZero():
		return t.Microservice, true
	case t.Microservice.IsZero():
		return t.Spa, true
	case t.Microservice.Before(t.Spa):
		return t.Microservice, true
	default:
		return t.Spa, true
	}
}

// EnvironmentSeries is the normalized, date-ordered burndown of one environment.
type EnvironmentSeries struct {
	Env      string          `json:"env"`
	Points   []BurndownPoint `json:"points"`
	Targets  Targets         `json:"-"`
	SpaTotal int             `json:"spaTotal"`
	MsTotal  int             `json:"msTotal"`
}

// TotalFor returns the inferred scope total of the given track.
func (s EnvironmentSeries) TotalFor(t ServiceType) int {
	if t == MsType {
		return s.MsTotal
	}
	return s.SpaTotal
}

// Projection is the regression outcome for one backlog.
type Projection struct {
	BurnRate            float64        `json:"burnRate"`
	Confidence          float64        `json:"confidence"`
	Band                ConfidenceBand `json:"confidenceBand"`
	ProjectedCompletion string         `json:"projectedCompletion,omitempty"`
	ProjectedTimestamp  int64          `json:"-"`
	Samples             int            `json:"samples"`
	Trend               TrendDirection `json:"trend"`
}

// HasCompletion reports whether the projection produced a completion date.
func (p Projection) HasCompletion() bool {
	return p.ProjectedCompletion != ""
}

// EnvironmentProgress is the analytics record of one environment as of a given instant.
type EnvironmentProgress struct {
	Env                 string      `json:"env"`
	TargetSpa           string      `json:"targetSpa,omitempty"`
	TargetMs            string      `json:"targetMs,omitempty"`
	CurrentSpa          int         `json:"currentSpa"`
	CurrentMs           int         `json:"currentMs"`
	TotalSpa            int         `json:"totalSpa"`
	TotalMs             int         `json:"totalMs"`
	SpaProgress         int         `json:"spaProgress"`
	MsProgress          int         `json:"msProgress"`
	OverallProgress     int         `json:"overallProgress"`
	DaysToTarget        *int        `json:"daysToTarget"`
	SpaStatus           Status      `json:"spaStatus"`
	MsStatus            Status      `json:"msStatus"`
	Status              Status      `json:"status"`
	BurnRate            float64     `json:"burnRate"`
	ProjectedCompletion string      `json:"projectedCompletion,omitempty"`
	Confidence          float64     `json:"confidence"`
	SpaProjection       *Projection `json:"spaProjection,omitempty"`
	MsProjection        *Projection `json:"msProjection,omitempty"`
	Combined            *Projection `json:"combinedProjection,omitempty"`
	LastObserved        string      `json:"lastObserved,omitempty"`
}

// StatusFor returns the per-track status.
func (e EnvironmentProgress) StatusFor(t ServiceType) Status {
	if t == MsType {
		return e.MsStatus
	}
	return e.SpaStatus
}
