package model

import "time"

// FailedSource is one failed source entry in a report, flattened for
// stable presentation.
type FailedSource struct {
	URL    string      `json:"url" yaml:"url"`
	Kind   FailureKind `json:"kind" yaml:"kind"`
	Detail string      `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// ReportMeta carries enough run metadata to distinguish "topic has no
// content" from "every fetch was blocked".
type ReportMeta struct {
	StopReason StopReason    `json:"stop_reason" yaml:"stop_reason"`
	Attempted  int           `json:"attempted" yaml:"attempted"`
	Succeeded  int           `json:"succeeded" yaml:"succeeded"`
	Failed     int           `json:"failed" yaml:"failed"`
	Elapsed    time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Report is the synthesized, read-only view over a run's findings.
// Findings are ranked by relevance descending; Facts are deduplicated
// across findings with first-seen order preserved.
type Report struct {
	Topic         string         `json:"topic" yaml:"topic"`
	GeneratedAt   time.Time      `json:"generated_at" yaml:"generated_at"`
	Findings      []Finding      `json:"findings" yaml:"findings"`
	Facts         []string       `json:"facts" yaml:"facts"`
	FailedSources []FailedSource `json:"failed_sources" yaml:"failed_sources"`
	Meta          ReportMeta     `json:"meta" yaml:"meta"`
}
