package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/web-agent/internal/agent"
	"github.com/sells-group/web-agent/internal/analyze"
	"github.com/sells-group/web-agent/internal/fetch"
	"github.com/sells-group/web-agent/internal/store"
	"github.com/sells-group/web-agent/pkg/firecrawl"
	"github.com/sells-group/web-agent/pkg/jina"
)

// runtime holds the wired collaborators shared by the CLI commands.
type runtime struct {
	Fetcher  fetch.Fetcher
	Analyzer analyze.Analyzer
	Store    store.Store
	Jina     jina.Client

	closers []func() error
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			zap.L().Warn("cleanup failed", zap.Error(err))
		}
	}
}

// initRuntime wires the fetch chain, analyzer, and run archive from config.
func initRuntime(ctx context.Context) (*runtime, error) {
	rt := &runtime{}

	var httpOpts []fetch.HTTPOption
	if cfg.Fetch.UserAgent != "" {
		httpOpts = append(httpOpts, fetch.WithUserAgent(cfg.Fetch.UserAgent))
	}
	if cfg.Fetch.PerHostRate > 0 {
		httpOpts = append(httpOpts, fetch.WithPerHostRate(rate.Limit(cfg.Fetch.PerHostRate), 2))
	}
	fetchers := []fetch.Fetcher{fetch.NewHTTPFetcher(httpOpts...)}

	if cfg.Jina.Key != "" {
		rt.Jina = jina.NewClient(cfg.Jina.Key,
			jina.WithBaseURL(cfg.Jina.BaseURL),
			jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL),
		)
	}

	for _, name := range cfg.Fetch.Fallbacks {
		switch name {
		case "jina":
			if rt.Jina == nil {
				zap.L().Warn("jina fallback configured without an api key, skipping")
				continue
			}
			fetchers = append(fetchers, fetch.NewJinaFetcher(rt.Jina))
		case "firecrawl":
			if cfg.Firecrawl.Key == "" {
				zap.L().Warn("firecrawl fallback configured without an api key, skipping")
				continue
			}
			fc := firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
			fetchers = append(fetchers, fetch.NewFirecrawlFetcher(fc))
		case "browser":
			bf := fetch.NewBrowserFetcher(fetch.BrowserConfig{
				Headless:     cfg.Browser.Headless,
				UserAgent:    cfg.Fetch.UserAgent,
				EmulateHuman: cfg.Browser.EmulateHuman,
			})
			fetchers = append(fetchers, bf)
			rt.closers = append(rt.closers, bf.Close)
		default:
			return nil, eris.Errorf("unknown fetch fallback %q", name)
		}
	}
	rt.Fetcher = fetch.NewChain(fetchers...)

	apiKey := cfg.Anthropic.Key
	modelName := cfg.Analyzer.Model
	if modelName == "" {
		modelName = cfg.Anthropic.Model
	}
	if cfg.Analyzer.Provider == "perplexity" {
		apiKey = cfg.Perplexity.Key
		if cfg.Analyzer.Model == "" {
			modelName = cfg.Perplexity.Model
		}
	}
	analyzer, err := analyze.NewFromProvider(cfg.Analyzer.Provider, apiKey, modelName)
	if err != nil {
		return nil, err
	}
	rt.Analyzer = analyzer

	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	rt.Store = st
	rt.closers = append(rt.closers, st.Close)

	return rt, nil
}

// agentOptions maps config onto run options, letting flags override.
func agentOptions(depth, maxTimeSecs int) agent.Options {
	opts := agent.Options{
		Depth:        cfg.Agent.Depth,
		MaxTime:      cfg.Agent.MaxTime(),
		MaxLinkDepth: cfg.Agent.MaxLinkDepth,
		Workers:      cfg.Agent.Workers,
		FetchCeiling: cfg.Agent.FetchCeiling(),
		GracePeriod:  cfg.Agent.Grace(),
	}
	if depth > 0 {
		opts.Depth = depth
	}
	if maxTimeSecs >= 0 {
		opts.MaxTime = time.Duration(maxTimeSecs) * time.Second
	}
	return opts
}
