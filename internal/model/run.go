package model

import "time"

// RunStatus tracks an archived run's lifecycle.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one archived execution of the research agent.
type Run struct {
	ID          string     `json:"id"`
	Topic       string     `json:"topic"`
	Status      RunStatus  `json:"status"`
	StopReason  StopReason `json:"stop_reason,omitempty"`
	Attempted   int        `json:"attempted"`
	Succeeded   int        `json:"succeeded"`
	Failed      int        `json:"failed"`
	Report      *Report    `json:"report,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
