package model

import (
	"net/url"
	"strings"
)

// Candidate is a not-yet-fetched URL with its discovery depth and priority.
// Candidates are immutable once created: they are either skipped as
// duplicates or consumed by a fetch attempt.
type Candidate struct {
	URL            string  `json:"url"`
	SourceDepth    int     `json:"source_depth"`
	DiscoveredFrom string  `json:"discovered_from,omitempty"`
	PriorityScore  float64 `json:"priority_score"`
}

// PriorityFunc assigns a priority score to a link discovered on a parent
// page. The model-assigned relevance is passed through; implementations
// may decay it by depth or apply their own heuristics.
type PriorityFunc func(linkURL string, depth int, modelRelevance float64) float64

// DepthDecayPriority decays the model-assigned relevance by discovery
// depth so shallower sources win ties between equally relevant links.
func DepthDecayPriority(_ string, depth int, modelRelevance float64) float64 {
	return modelRelevance / float64(1+depth)
}

// NormalizeURL canonicalizes a URL for dedup purposes: lowercased scheme
// and host, stripped trailing slash, dropped fragment, and query string
// re-encoded with sorted keys. A bare host is assumed to be https.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errEmptyURL
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	if u.RawQuery != "" {
		// url.Values.Encode emits keys in sorted order.
		u.RawQuery = u.Query().Encode()
	}
	return u.String(), nil
}
