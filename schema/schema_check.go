package schema

import "time"

// CheckResult holds the outcome of a target gate over the selected environments.
type CheckResult struct {
	Passed       bool               `json:"passed"`
	Now          time.Time          `json:"now"`
	FailOn       []Status           `json:"failOn"`
	Environments []CheckEnvironment `json:"environments"`
	Failed       []string           `json:"failed"`
}

// CheckEnvironment is the gate verdict for one environment.
type CheckEnvironment struct {
	Env             string `json:"env"`
	Status          Status `json:"status"`
	SpaStatus       Status `json:"spaStatus"`
	MsStatus        Status `json:"msStatus"`
	OverallProgress int    `json:"overallProgress"`
	DaysToTarget    *int   `json:"daysToTarget"`
	Failed          bool   `json:"failed"`
}
