package agent

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/web-agent/internal/model"
	"github.com/sells-group/web-agent/pkg/jina"
)

// SeedSource produces the initial candidates for a research topic.
type SeedSource interface {
	Seeds(ctx context.Context, topic string) ([]model.Candidate, error)
}

// StaticSeeds seeds a run from a fixed URL list, highest priority first.
// Used for single-task runs where the caller already knows the sources.
type StaticSeeds []string

func (s StaticSeeds) Seeds(_ context.Context, _ string) ([]model.Candidate, error) {
	out := make([]model.Candidate, 0, len(s))
	for i, u := range s {
		out = append(out, model.Candidate{
			URL:           u,
			SourceDepth:   0,
			PriorityScore: seedPriority(i, len(s)),
		})
	}
	return out, nil
}

// SearchSeeds seeds a run from web search results for the topic.
type SearchSeeds struct {
	client jina.Client
	limit  int
}

// NewSearchSeeds creates a search-backed seed source. A limit of 0
// keeps the default of 8 results.
func NewSearchSeeds(client jina.Client, limit int) *SearchSeeds {
	if limit <= 0 {
		limit = 8
	}
	return &SearchSeeds{client: client, limit: limit}
}

func (s *SearchSeeds) Seeds(ctx context.Context, topic string) ([]model.Candidate, error) {
	resp, err := s.client.Search(ctx, topic)
	if err != nil {
		return nil, eris.Wrap(err, "agent: search seeds")
	}

	results := resp.Data
	if len(results) > s.limit {
		results = results[:s.limit]
	}

	out := make([]model.Candidate, 0, len(results))
	for i, r := range results {
		if r.URL == "" {
			continue
		}
		out = append(out, model.Candidate{
			URL:           r.URL,
			SourceDepth:   0,
			PriorityScore: seedPriority(i, len(results)),
		})
	}
	zap.L().Info("agent: seeded from search",
		zap.String("topic", topic),
		zap.Int("seeds", len(out)),
	)
	return out, nil
}

// seedPriority ranks seeds by position so the first result pops first.
// All seed priorities sit above 1.0, ahead of any discovered link.
func seedPriority(index, total int) float64 {
	if total <= 1 {
		return 2.0
	}
	return 2.0 - float64(index)/float64(total)
}
