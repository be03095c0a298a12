package fetch

import "strings"

// extractText flattens an HTML document into readable text: scripts and
// styles are dropped, tags become whitespace, and runs of whitespace
// collapse. Good enough for analysis input; not a full DOM parser.
func extractText(html string) string {
	html = stripElement(html, "script")
	html = stripElement(html, "style")
	html = stripElement(html, "noscript")

	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	text := decodeEntities(b.String())
	return strings.Join(strings.Fields(text), " ")
}

// stripElement removes <name ...>...</name> blocks, case-insensitively.
func stripElement(html, name string) string {
	lower := strings.ToLower(html)
	openTag := "<" + name
	closeTag := "</" + name + ">"

	var b strings.Builder
	idx := 0
	for {
		start := strings.Index(lower[idx:], openTag)
		if start == -1 {
			b.WriteString(html[idx:])
			break
		}
		start += idx
		end := strings.Index(lower[start:], closeTag)
		if end == -1 {
			b.WriteString(html[idx:start])
			break
		}
		b.WriteString(html[idx:start])
		idx = start + end + len(closeTag)
	}
	return b.String()
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", "\"",
	"&#39;", "'",
	"&nbsp;", " ",
)

func decodeEntities(s string) string {
	return entityReplacer.Replace(s)
}
