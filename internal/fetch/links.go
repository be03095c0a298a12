package fetch

import (
	"net/url"
	"strings"
)

// ExtractHTMLLinks pulls href targets out of raw HTML, resolves them
// against base, and returns absolute http(s) URLs, deduplicated in
// document order. Anchors, javascript: and mailto: targets are skipped.
func ExtractHTMLLinks(html string, base *url.URL) []string {
	var links []string
	seen := make(map[string]bool)

	idx := 0
	for {
		pos := strings.Index(html[idx:], "href=\"")
		if pos == -1 {
			break
		}
		idx += pos + 6

		end := strings.Index(html[idx:], "\"")
		if end == -1 {
			break
		}
		href := html[idx : idx+end]
		idx += end + 1

		if resolved, ok := resolveLink(href, base); ok && !seen[resolved] {
			seen[resolved] = true
			links = append(links, resolved)
		}
	}
	return links
}

// ExtractMarkdownLinks pulls [text](url) targets out of markdown, as
// produced by reader APIs. Returns absolute http(s) URLs deduplicated
// in document order.
func ExtractMarkdownLinks(markdown string, base *url.URL) []string {
	var links []string
	seen := make(map[string]bool)

	idx := 0
	for {
		pos := strings.Index(markdown[idx:], "](")
		if pos == -1 {
			break
		}
		idx += pos + 2

		end := strings.IndexAny(markdown[idx:], ") \n")
		if end == -1 {
			break
		}
		href := markdown[idx : idx+end]
		idx += end + 1

		if resolved, ok := resolveLink(href, base); ok && !seen[resolved] {
			seen[resolved] = true
			links = append(links, resolved)
		}
	}
	return links
}

func resolveLink(href string, base *url.URL) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return "", false
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	u.Fragment = ""
	return u.String(), true
}
