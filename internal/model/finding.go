package model

import "errors"

var errEmptyURL = errors.New("model: empty url")

// Link is a follow-up link suggested by the analyzer, with the model's
// relevance estimate for it.
type Link struct {
	URL       string  `json:"url"`
	Relevance float64 `json:"relevance"`
}

// Finding is the structured output of analyzing one fetched page.
// It is owned by the ResearchState once produced and never mutated.
type Finding struct {
	SourceURL      string   `json:"source_url"`
	Title          string   `json:"title,omitempty"`
	Summary        string   `json:"summary"`
	Facts          []string `json:"facts"`
	RelevanceScore float64  `json:"relevance_score"`
	Links          []Link   `json:"links,omitempty"`
}

// FailureKind classifies why a source produced no finding.
type FailureKind string

const (
	// Fetch failures.
	FailTimeout      FailureKind = "timeout"
	FailBlocked      FailureKind = "blocked"
	FailNetwork      FailureKind = "network_error"
	FailEmptyContent FailureKind = "empty_content"

	// Analysis failures.
	FailModelUnavailable FailureKind = "model_unavailable"
	FailMalformedOutput  FailureKind = "malformed_output"
	FailRateLimited      FailureKind = "rate_limited"
)

// FailureReason records why a single source failed.
type FailureReason struct {
	Kind   FailureKind `json:"kind"`
	Detail string      `json:"detail,omitempty"`
}
