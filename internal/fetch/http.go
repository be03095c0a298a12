package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/web-agent/internal/model"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; ResearchBot/1.0)"

// maxBodyBytes caps how much of a page body is read.
const maxBodyBytes = 1 * 1024 * 1024

// HTTPFetcher fetches pages with plain HTTP GET, with a per-host rate
// limiter for politeness. It cannot run JavaScript; JS shells and bot
// challenges surface as Blocked failures for a fallback fetcher to handle.
type HTTPFetcher struct {
	http      *http.Client
	userAgent string
	perHost   rate.Limit
	burst     int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithUserAgent overrides the default user agent.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) { f.userAgent = ua }
}

// WithPerHostRate sets the per-host request rate and burst.
func WithPerHostRate(r rate.Limit, burst int) HTTPOption {
	return func(f *HTTPFetcher) { f.perHost = r; f.burst = burst }
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(f *HTTPFetcher) { f.http = hc }
}

// NewHTTPFetcher creates an HTTPFetcher with sane transport defaults.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConnsPerHost: 4,
			},
		},
		userAgent: defaultUserAgent,
		perHost:   rate.Limit(2),
		burst:     2,
		limiters:  make(map[string]*rate.Limiter),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *HTTPFetcher) Name() string { return "http" }

// Fetch retrieves the URL within timeout, classifying bot blocks, empty
// bodies, timeouts, and transport errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (*Page, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, NewError(Kind(err), eris.Wrap(err, "http: parse url"))
	}

	if err := f.limiter(parsed.Host).Wait(fetchCtx); err != nil {
		return nil, NewError(Kind(err), eris.Wrap(err, "http: rate limit wait"))
	}

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, NewError(Kind(err), eris.Wrap(err, "http: create request"))
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, NewError(Kind(err), eris.Wrap(err, "http: execute request"))
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, NewError(Kind(err), eris.Wrap(err, "http: read body"))
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, NewError(model.FailBlocked, eris.Errorf("http: blocked (%s) at %s", blockType, rawURL))
	}

	text := extractText(string(body))
	if len(strings.TrimSpace(text)) < minContentLength {
		return nil, NewError(model.FailEmptyContent, eris.Errorf("http: empty content at %s", rawURL))
	}

	finalURL := rawURL
	base := parsed
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
		base = resp.Request.URL
	}

	return &Page{
		URL:        rawURL,
		FinalURL:   finalURL,
		Title:      extractTitle(string(body)),
		Content:    text,
		Links:      ExtractHTMLLinks(string(body), base),
		StatusCode: resp.StatusCode,
	}, nil
}

func (f *HTTPFetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(f.perHost, f.burst)
		f.limiters[host] = lim
	}
	return lim
}

// extractTitle pulls the <title> text out of an HTML document.
func extractTitle(html string) string {
	lower := strings.ToLower(html)
	start := strings.Index(lower, "<title")
	if start == -1 {
		return ""
	}
	open := strings.Index(html[start:], ">")
	if open == -1 {
		return ""
	}
	start += open + 1
	end := strings.Index(lower[start:], "</title>")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(html[start : start+end])
}
