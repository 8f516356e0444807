package domain

import "time"

// WorkdayStatus enumerates business session states.
type WorkdayStatus string

const (
	WorkdayStatusOpen   WorkdayStatus = "OPEN"
	WorkdayStatusClosed WorkdayStatus = "CLOSED"
)

// Workday is the business session that scopes ticket numbering and daily
// metrics. At most one workday is OPEN at any time.
type Workday struct {
	ID        string
	Status    WorkdayStatus
	StartTime time.Time
	EndTime   *time.Time
}
