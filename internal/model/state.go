package model

import "time"

// StopReason classifies why a run left its fetch loop.
type StopReason string

const (
	StopDepthExhausted StopReason = "depth_exhausted"
	StopTimeExhausted  StopReason = "time_exhausted"
	StopQueueExhausted StopReason = "queue_exhausted"
)

// ResearchState is the single mutable aggregate a run accumulates into.
// Findings are kept in completion order, which with a worker pool is not
// the priority order the queue popped them in.
type ResearchState struct {
	Topic         string                   `json:"topic"`
	Findings      []Finding                `json:"findings"`
	FailedSources map[string]FailureReason `json:"failed_sources"`
	StartedAt     time.Time                `json:"started_at"`
	Elapsed       time.Duration            `json:"elapsed"`
	Attempted     int                      `json:"attempted"`
	StopReason    StopReason               `json:"stop_reason"`
}

// NewResearchState creates an empty state for a run.
func NewResearchState(topic string, startedAt time.Time) *ResearchState {
	return &ResearchState{
		Topic:         topic,
		FailedSources: make(map[string]FailureReason),
		StartedAt:     startedAt,
	}
}
