package fetch

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestExtractHTMLLinks_ResolvesRelative(t *testing.T) {
	base := mustParse(t, "https://example.com/docs/index.html")
	html := `<a href="/about">About</a> <a href="guide.html">Guide</a>`
	links := ExtractHTMLLinks(html, base)
	assert.Equal(t, []string{
		"https://example.com/about",
		"https://example.com/docs/guide.html",
	}, links)
}

func TestExtractHTMLLinks_SkipsNonHTTP(t *testing.T) {
	base := mustParse(t, "https://example.com")
	html := `<a href="#top">Top</a> <a href="javascript:void(0)">JS</a> <a href="mailto:x@example.com">Mail</a> <a href="https://example.com/real">Real</a>`
	links := ExtractHTMLLinks(html, base)
	assert.Equal(t, []string{"https://example.com/real"}, links)
}

func TestExtractHTMLLinks_DedupsAndDropsFragments(t *testing.T) {
	base := mustParse(t, "https://example.com")
	html := `<a href="/a#one">A</a> <a href="/a#two">A again</a>`
	links := ExtractHTMLLinks(html, base)
	assert.Equal(t, []string{"https://example.com/a"}, links)
}

func TestExtractMarkdownLinks(t *testing.T) {
	base := mustParse(t, "https://example.com")
	md := "See [the guide](https://example.com/guide) and [local](/local) for more."
	links := ExtractMarkdownLinks(md, base)
	assert.Equal(t, []string{
		"https://example.com/guide",
		"https://example.com/local",
	}, links)
}

func TestExtractMarkdownLinks_IgnoresImagesWithTitles(t *testing.T) {
	base := mustParse(t, "https://example.com")
	md := `![alt](https://example.com/img.png "caption") plus [real](https://example.com/page)`
	links := ExtractMarkdownLinks(md, base)
	assert.Contains(t, links, "https://example.com/page")
}

func TestExtractText_StripsMarkup(t *testing.T) {
	html := `<html><head><title>T</title><script>var x = 1;</script><style>p{}</style></head>
<body><h1>Header</h1><p>First &amp; second.</p></body></html>`
	text := extractText(html)
	assert.Contains(t, text, "Header")
	assert.Contains(t, text, "First & second.")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "p{}")
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "My Page", extractTitle("<html><head><title>My Page</title></head></html>"))
	assert.Equal(t, "", extractTitle("<html><body>no title</body></html>"))
}
