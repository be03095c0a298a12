package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/web-agent/internal/model"
	"github.com/sells-group/web-agent/pkg/jina"
)

// JinaFetcher fetches pages through the Jina reader API, which renders
// JavaScript and returns markdown. Useful against sites a plain HTTP GET
// cannot read.
type JinaFetcher struct {
	client jina.Client
}

// NewJinaFetcher creates a JinaFetcher.
func NewJinaFetcher(client jina.Client) *JinaFetcher {
	return &JinaFetcher{client: client}
}

func (f *JinaFetcher) Name() string { return "jina" }

// Fetch reads the URL via the reader API within timeout.
func (f *JinaFetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (*Page, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := f.client.Read(fetchCtx, rawURL)
	if err != nil {
		return nil, NewError(classifyAPIErr(err), eris.Wrap(err, "jina fetch"))
	}

	if resp.Code != 0 && resp.Code != http.StatusOK {
		return nil, NewError(model.FailBlocked, eris.Errorf("jina fetch: reader code %d for %s", resp.Code, rawURL))
	}

	content := strings.TrimSpace(resp.Data.Content)
	if DetectBlockedContent(content) {
		return nil, NewError(model.FailBlocked, eris.Errorf("jina fetch: challenge page at %s", rawURL))
	}
	if len(content) < minContentLength {
		return nil, NewError(model.FailEmptyContent, eris.Errorf("jina fetch: empty content at %s", rawURL))
	}

	finalURL := resp.Data.URL
	if finalURL == "" {
		finalURL = rawURL
	}
	base, _ := url.Parse(finalURL)

	return &Page{
		URL:        rawURL,
		FinalURL:   finalURL,
		Title:      resp.Data.Title,
		Content:    content,
		Links:      ExtractMarkdownLinks(content, base),
		StatusCode: http.StatusOK,
	}, nil
}

// classifyAPIErr maps a reader/scrape API transport error to a failure kind.
func classifyAPIErr(err error) model.FailureKind {
	var jinaErr *jina.APIError
	if errors.As(err, &jinaErr) {
		return kindForStatus(jinaErr.StatusCode)
	}
	return Kind(err)
}

func kindForStatus(status int) model.FailureKind {
	switch {
	case status == http.StatusForbidden || status == http.StatusUnauthorized:
		return model.FailBlocked
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return model.FailTimeout
	default:
		return model.FailNetwork
	}
}
