// Package analyze turns fetched pages into structured findings using an
// LLM provider. Providers share one prompt and output contract; failures
// are classified so the agent can record them per source.
package analyze

import (
	"context"
	"errors"
	"fmt"

	"github.com/sells-group/web-agent/internal/fetch"
	"github.com/sells-group/web-agent/internal/model"
)

// Analyzer extracts a Finding from one fetched page for a research topic.
type Analyzer interface {
	Analyze(ctx context.Context, topic string, page *fetch.Page) (*model.Finding, error)
	Name() string
}

// Error is a classified analysis failure.
type Error struct {
	Kind model.FailureKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("analyze: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a failure kind.
func NewError(kind model.FailureKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Kind extracts the failure kind from an error chain. Unclassified
// errors are treated as the model being unreachable.
func Kind(err error) model.FailureKind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return model.FailModelUnavailable
}

// kindForStatus maps an LLM API HTTP status to a failure kind.
func kindForStatus(status int) model.FailureKind {
	switch {
	case status == 429:
		return model.FailRateLimited
	case status == 529: // anthropic overloaded
		return model.FailModelUnavailable
	case status >= 500:
		return model.FailModelUnavailable
	default:
		return model.FailModelUnavailable
	}
}
