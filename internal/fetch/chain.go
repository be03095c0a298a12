package fetch

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/web-agent/internal/model"
)

// Chain tries fetchers in priority order, falling through on failure.
// The cheap HTTP fetcher goes first; browser or scrape-API fetchers
// recover blocked and JS-only pages behind it. The error returned when
// every fetcher fails is the last one's, so a terminal Blocked beats an
// earlier EmptyContent in the failure record.
type Chain struct {
	fetchers []Fetcher
}

// NewChain creates a Chain over the given fetchers, tried in order.
func NewChain(fetchers ...Fetcher) *Chain {
	return &Chain{fetchers: fetchers}
}

func (c *Chain) Name() string { return "chain" }

// Fetch tries each fetcher until one succeeds. Context cancellation
// stops the fallthrough immediately.
func (c *Chain) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (*Page, error) {
	if len(c.fetchers) == 0 {
		return nil, NewError(model.FailNetwork, eris.New("chain: no fetchers configured"))
	}

	var lastErr error
	for _, f := range c.fetchers {
		if ctx.Err() != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, NewError(Kind(ctx.Err()), eris.Wrap(ctx.Err(), "chain: cancelled"))
		}

		page, err := f.Fetch(ctx, rawURL, timeout)
		if err == nil {
			return page, nil
		}
		lastErr = err
		zap.L().Debug("chain: fetcher failed, trying next",
			zap.String("fetcher", f.Name()),
			zap.String("url", rawURL),
			zap.Error(err),
		)
	}
	return nil, lastErr
}
