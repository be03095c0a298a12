// Package fetch provides page fetching for the research agent: a common
// Fetcher contract, failure classification, and implementations backed by
// plain HTTP, a headless browser, and reader/scrape APIs.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sells-group/web-agent/internal/model"
)

// Page is the raw content of one fetched URL.
type Page struct {
	URL        string   // requested URL (normalized)
	FinalURL   string   // URL after redirects
	Title      string
	Content    string   // extracted text or markdown
	Links      []string // absolute links discovered on the page
	StatusCode int
}

// Fetcher retrieves a single URL's content within the given timeout.
// Failures are returned as *Error so callers can classify them.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (*Page, error)
	Name() string
}

// Error is a classified fetch failure.
type Error struct {
	Kind model.FailureKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a failure kind.
func NewError(kind model.FailureKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Kind extracts the failure kind from an error chain, classifying plain
// transport errors when no *Error is present.
func Kind(err error) model.FailureKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.FailTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.FailTimeout
	}
	return model.FailNetwork
}

// minContentLength is the threshold below which a page is treated as
// empty: challenge shells and parked domains rarely exceed it.
const minContentLength = 100
