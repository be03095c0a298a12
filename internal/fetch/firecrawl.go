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
	"github.com/sells-group/web-agent/pkg/firecrawl"
)

// FirecrawlFetcher fetches pages through the Firecrawl scrape API, the
// last line of defense for heavily protected sites.
type FirecrawlFetcher struct {
	client firecrawl.Client
}

// NewFirecrawlFetcher creates a FirecrawlFetcher.
func NewFirecrawlFetcher(client firecrawl.Client) *FirecrawlFetcher {
	return &FirecrawlFetcher{client: client}
}

func (f *FirecrawlFetcher) Name() string { return "firecrawl" }

// Fetch scrapes the URL within timeout.
func (f *FirecrawlFetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (*Page, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := f.client.Scrape(fetchCtx, firecrawl.ScrapeRequest{
		URL:     rawURL,
		Formats: []string{"markdown"},
	})
	if err != nil {
		var apiErr *firecrawl.APIError
		if errors.As(err, &apiErr) {
			return nil, NewError(kindForStatus(apiErr.StatusCode), eris.Wrap(err, "firecrawl fetch"))
		}
		return nil, NewError(Kind(err), eris.Wrap(err, "firecrawl fetch"))
	}

	content := strings.TrimSpace(resp.Data.Markdown)
	if !resp.Success || len(content) < minContentLength {
		return nil, NewError(model.FailEmptyContent, eris.Errorf("firecrawl fetch: empty content at %s", rawURL))
	}
	if DetectBlockedContent(content) {
		return nil, NewError(model.FailBlocked, eris.Errorf("firecrawl fetch: challenge page at %s", rawURL))
	}

	finalURL := resp.Data.URL
	if finalURL == "" {
		finalURL = rawURL
	}
	base, _ := url.Parse(finalURL)

	status := resp.Data.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	return &Page{
		URL:        rawURL,
		FinalURL:   finalURL,
		Title:      resp.Data.Title,
		Content:    content,
		Links:      ExtractMarkdownLinks(content, base),
		StatusCode: status,
	}, nil
}
