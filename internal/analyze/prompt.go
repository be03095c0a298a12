package analyze

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/web-agent/internal/model"
)

const analyzeSystemPrompt = `You are a research assistant extracting structured notes from web pages. Given a research topic and a page's content, respond with a valid JSON object and nothing else:
{"summary": "<2-4 sentence summary of what the page says about the topic>", "facts": ["<discrete factual statement>", ...], "relevance": <0.0-1.0 score for how relevant the page is to the topic>, "follow_links": [{"url": "<absolute URL from the page worth visiting next>", "relevance": <0.0-1.0>}, ...]}
Only include facts actually stated on the page. Only include follow_links that appear on the page and plausibly extend the research. If the page is irrelevant, return relevance 0.0 with empty facts.`

const analyzeUserPrompt = `Topic: %s
URL: %s
Title: %s

Page content (first %d chars):
%s`

// maxContentChars caps how much page text is sent to the model.
const maxContentChars = 12000

// buildUserPrompt formats the per-page prompt, truncating long content.
func buildUserPrompt(topic string, url, title, content string) string {
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}
	return fmt.Sprintf(analyzeUserPrompt, topic, url, title, maxContentChars, content)
}

// rawFinding is the model's JSON output contract.
type rawFinding struct {
	Summary     string    `json:"summary"`
	Facts       []string  `json:"facts"`
	Relevance   float64   `json:"relevance"`
	FollowLinks []rawLink `json:"follow_links"`
}

type rawLink struct {
	URL       string  `json:"url"`
	Relevance float64 `json:"relevance"`
}

// parseFinding decodes the model's response into a Finding for the page.
// Malformed JSON, out-of-range scores, and missing summaries all fail
// as MalformedOutput.
func parseFinding(text, sourceURL, title string) (*model.Finding, error) {
	cleaned := cleanJSON(text)
	if cleaned == "" {
		return nil, NewError(model.FailMalformedOutput, eris.New("analyze: empty model response"))
	}

	var raw rawFinding
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, NewError(model.FailMalformedOutput, eris.Wrap(err, "analyze: decode model response"))
	}

	if strings.TrimSpace(raw.Summary) == "" {
		return nil, NewError(model.FailMalformedOutput, eris.New("analyze: response missing summary"))
	}
	if raw.Relevance < 0 || raw.Relevance > 1 {
		return nil, NewError(model.FailMalformedOutput,
			eris.Errorf("analyze: relevance %v out of range", raw.Relevance))
	}

	finding := &model.Finding{
		SourceURL:      sourceURL,
		Title:          title,
		Summary:        strings.TrimSpace(raw.Summary),
		RelevanceScore: raw.Relevance,
	}
	for _, f := range raw.Facts {
		if s := strings.TrimSpace(f); s != "" {
			finding.Facts = append(finding.Facts, s)
		}
	}
	for _, l := range raw.FollowLinks {
		u := strings.TrimSpace(l.URL)
		if u == "" || l.Relevance < 0 || l.Relevance > 1 {
			continue
		}
		finding.Links = append(finding.Links, model.Link{URL: u, Relevance: l.Relevance})
	}
	return finding, nil
}

// cleanJSON strips markdown fences and extracts the JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
