package fetch

import (
	"context"
	"math/rand/v2"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/web-agent/internal/model"
)

// BrowserConfig configures the headless-browser fetcher.
type BrowserConfig struct {
	Headless     bool
	UserAgent    string
	EmulateHuman bool
}

// selectorSet names the CSS selectors used to pull text from a page.
type selectorSet struct {
	Headers string
	Content string
}

var defaultSelectors = selectorSet{
	Headers: "h1, h2, h3",
	Content: "p, article",
}

// siteSelectors overrides content selectors for sites whose articles
// live outside plain <p>/<article> elements.
var siteSelectors = map[string]selectorSet{
	"bbc":       {Headers: defaultSelectors.Headers, Content: "article, .article__body-content"},
	"reuters":   {Headers: defaultSelectors.Headers, Content: "article, .article-body"},
	"bloomberg": {Headers: defaultSelectors.Headers, Content: "article, .body-content"},
}

func selectorsFor(host string) selectorSet {
	for key, sel := range siteSelectors {
		if strings.Contains(host, key) {
			return sel
		}
	}
	return defaultSelectors
}

// BrowserFetcher drives a real (headless) Chromium page via CDP. It runs
// JavaScript, so it reads pages the plain HTTP fetcher reports as JS
// shells, and it can optionally emulate human scrolling to look less
// like a bot. The browser launches lazily on first fetch and is shared
// across fetches until Close.
type BrowserFetcher struct {
	cfg BrowserConfig

	mu       sync.Mutex
	browser  *rod.Browser
	cleanup  func()
	launched bool
}

// NewBrowserFetcher creates a BrowserFetcher; the browser process starts
// on first use.
func NewBrowserFetcher(cfg BrowserConfig) *BrowserFetcher {
	return &BrowserFetcher{cfg: cfg}
}

func (f *BrowserFetcher) Name() string { return "browser" }

// Fetch navigates a fresh page to the URL, waits for load, and extracts
// header/paragraph text plus links.
func (f *BrowserFetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (*Page, error) {
	browser, err := f.connect()
	if err != nil {
		return nil, NewError(model.FailNetwork, err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, NewError(model.FailNetwork, eris.Wrap(err, "browser: create page"))
	}
	defer func() { _ = page.Close() }()

	page = page.Context(fetchCtx)

	if f.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.cfg.UserAgent}); err != nil {
			zap.L().Debug("browser: set user agent", zap.Error(err))
		}
	}

	if err := page.Navigate(rawURL); err != nil {
		return nil, NewError(Kind(err), eris.Wrapf(err, "browser: navigate %s", rawURL))
	}
	if err := page.WaitLoad(); err != nil {
		return nil, NewError(Kind(err), eris.Wrap(err, "browser: wait load"))
	}

	if f.cfg.EmulateHuman {
		f.emulateHuman(page)
	}

	info, err := page.Info()
	if err != nil {
		return nil, NewError(Kind(err), eris.Wrap(err, "browser: page info"))
	}

	parsed, _ := url.Parse(info.URL)
	host := ""
	if parsed != nil {
		host = parsed.Host
	}
	sel := selectorsFor(host)

	headers := collectText(page, sel.Headers)
	paragraphs := collectText(page, sel.Content)
	content := strings.TrimSpace(strings.Join(append(headers, paragraphs...), "\n"))

	if DetectBlockedContent(content) {
		return nil, NewError(model.FailBlocked, eris.Errorf("browser: challenge page at %s", rawURL))
	}
	if len(content) < minContentLength {
		return nil, NewError(model.FailEmptyContent, eris.Errorf("browser: empty content at %s", rawURL))
	}

	html, err := page.HTML()
	if err != nil {
		html = ""
	}

	return &Page{
		URL:        rawURL,
		FinalURL:   info.URL,
		Title:      info.Title,
		Content:    content,
		Links:      ExtractHTMLLinks(html, parsed),
		StatusCode: 200,
	}, nil
}

// Close shuts down the shared browser process.
func (f *BrowserFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.launched {
		return nil
	}
	f.launched = false
	err := f.browser.Close()
	if f.cleanup != nil {
		f.cleanup()
	}
	f.browser = nil
	return err
}

func (f *BrowserFetcher) connect() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.launched {
		return f.browser, nil
	}

	l := launcher.New().
		Headless(f.cfg.Headless).
		Set("disable-blink-features", "AutomationControlled")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, eris.Wrap(err, "browser: launch")
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, eris.Wrap(err, "browser: connect")
	}

	f.browser = browser
	f.cleanup = l.Cleanup
	f.launched = true
	zap.L().Debug("browser: launched", zap.Bool("headless", f.cfg.Headless))
	return browser, nil
}

// emulateHuman adds a short random pause and scroll so the page sees
// activity resembling a reader. Errors are ignored; this is best effort.
func (f *BrowserFetcher) emulateHuman(page *rod.Page) {
	time.Sleep(time.Duration(500+rand.IntN(1500)) * time.Millisecond)
	_ = page.Mouse.Scroll(0, float64(300+rand.IntN(400)), 3)
	time.Sleep(time.Duration(200+rand.IntN(600)) * time.Millisecond)
}

func collectText(page *rod.Page, selector string) []string {
	elements, err := page.Elements(selector)
	if err != nil {
		return nil
	}
	var out []string
	for _, el := range elements {
		text, err := el.Text()
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, text)
		}
	}
	return out
}
