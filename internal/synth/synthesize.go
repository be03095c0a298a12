// Package synth turns an accumulated research state into a final report.
// Synthesis is a pure function of the state: it never mutates its input,
// so calling it twice on the same state yields identical reports.
package synth

import (
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/web-agent/internal/model"
)

// Synthesize builds a Report from a completed run's state. Findings are
// ranked by relevance descending (completion order breaks ties), facts
// are deduplicated across findings with the first-seen phrasing kept,
// and failed sources are listed sorted by URL. A state with zero
// findings still produces a report; only a malformed state is rejected.
func Synthesize(state *model.ResearchState, generatedAt time.Time) (*model.Report, error) {
	if state == nil {
		return nil, eris.New("synth: nil research state")
	}
	if strings.TrimSpace(state.Topic) == "" {
		return nil, eris.New("synth: research state missing topic")
	}

	findings := make([]model.Finding, len(state.Findings))
	copy(findings, state.Findings)
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].RelevanceScore > findings[j].RelevanceScore
	})

	// Facts walk the ranked findings so the most relevant source's
	// phrasing wins a collision.
	var facts []string
	seen := make(map[string]struct{})
	for _, f := range findings {
		for _, fact := range f.Facts {
			key := normalizeFact(fact)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			facts = append(facts, fact)
		}
	}

	failed := make([]model.FailedSource, 0, len(state.FailedSources))
	for url, reason := range state.FailedSources {
		failed = append(failed, model.FailedSource{
			URL:    url,
			Kind:   reason.Kind,
			Detail: reason.Detail,
		})
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].URL < failed[j].URL })

	return &model.Report{
		Topic:         state.Topic,
		GeneratedAt:   generatedAt,
		Findings:      findings,
		Facts:         facts,
		FailedSources: failed,
		Meta: model.ReportMeta{
			StopReason: state.StopReason,
			Attempted:  state.Attempted,
			Succeeded:  len(state.Findings),
			Failed:     len(state.FailedSources),
			Elapsed:    state.Elapsed,
		},
	}, nil
}

// normalizeFact produces the dedup key for a fact: NFKC-normalized,
// case-folded, whitespace-collapsed, trailing punctuation dropped.
func normalizeFact(fact string) string {
	s := norm.NFKC.String(fact)
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimRight(s, ".!?,;: ")
	return s
}
