// Package agent runs a time-and-depth-bounded research loop: seed
// candidates are popped from a priority queue, fetched, analyzed into
// findings, and their discovered links re-enqueued until the queue or
// the budget runs out. A per-source failure never aborts the run; the
// result is always a report, partial or complete.
package agent

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/web-agent/internal/analyze"
	"github.com/sells-group/web-agent/internal/budget"
	"github.com/sells-group/web-agent/internal/fetch"
	"github.com/sells-group/web-agent/internal/model"
	"github.com/sells-group/web-agent/internal/queue"
	"github.com/sells-group/web-agent/internal/synth"
)

// ErrInvalidConfiguration rejects a run before it starts. It is the only
// error Run returns without a report.
var ErrInvalidConfiguration = eris.New("agent: invalid configuration")

// Options bounds and tunes a research run.
type Options struct {
	// Depth is the maximum number of sources visited, counting both
	// successes and failures.
	Depth int
	// MaxTime is the wall-clock ceiling. Zero stops the run before any
	// fetch is dispatched; negative is rejected.
	MaxTime time.Duration
	// MaxLinkDepth caps how deep discovered links may be followed.
	// Zero defaults to Depth.
	MaxLinkDepth int
	// Workers bounds parallel fetch+analyze. Zero defaults to 4.
	Workers int
	// FetchCeiling is the fixed per-fetch timeout ceiling; the actual
	// timeout is the smaller of this and the remaining run time.
	FetchCeiling time.Duration
	// GracePeriod is how long in-flight work may drain after the
	// deadline before being cancelled.
	GracePeriod time.Duration
	// Priority scores discovered links. Nil defaults to
	// model.DepthDecayPriority.
	Priority model.PriorityFunc

	now func() time.Time // test clock
}

func (o *Options) applyDefaults() {
	if o.MaxLinkDepth <= 0 {
		o.MaxLinkDepth = o.Depth
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.FetchCeiling <= 0 {
		o.FetchCeiling = 30 * time.Second
	}
	if o.GracePeriod <= 0 {
		o.GracePeriod = 5 * time.Second
	}
	if o.Priority == nil {
		o.Priority = model.DepthDecayPriority
	}
	if o.now == nil {
		o.now = time.Now
	}
}

func (o Options) validate(topic string) error {
	if strings.TrimSpace(topic) == "" {
		return eris.Wrap(ErrInvalidConfiguration, "empty topic")
	}
	if o.Depth <= 0 {
		return eris.Wrap(ErrInvalidConfiguration, "depth must be positive")
	}
	if o.MaxTime < 0 {
		return eris.Wrap(ErrInvalidConfiguration, "max time must not be negative")
	}
	return nil
}

// Agent wires a fetcher and an analyzer into the research loop.
type Agent struct {
	fetcher  fetch.Fetcher
	analyzer analyze.Analyzer
	opts     Options
}

// New creates an Agent. The fetcher and analyzer are shared across runs;
// all per-run state lives inside Run.
func New(fetcher fetch.Fetcher, analyzer analyze.Analyzer, opts Options) *Agent {
	opts.applyDefaults()
	return &Agent{fetcher: fetcher, analyzer: analyzer, opts: opts}
}

// Run researches topic until the queue or the budget is exhausted and
// synthesizes a report. Per-source failures are recorded, not raised;
// only an invalid configuration fails without a report.
func (a *Agent) Run(ctx context.Context, topic string, seeds SeedSource) (*model.Report, error) {
	if err := a.opts.validate(topic); err != nil {
		return nil, err
	}

	start := a.opts.now()
	state := model.NewResearchState(topic, start)
	tracker := budget.NewWithClock(a.opts.Depth, a.opts.MaxTime, a.opts.now)
	q := queue.New()

	zap.L().Info("agent: starting run",
		zap.String("topic", topic),
		zap.Int("depth", a.opts.Depth),
		zap.Duration("max_time", a.opts.MaxTime),
		zap.Int("workers", a.opts.Workers),
	)

	// A zero time budget stops the run before seeding: no fetch may
	// start at or past the deadline.
	if !tracker.MayContinue() {
		state.StopReason = tracker.StopReason()
		return a.finish(state, tracker)
	}

	candidates, err := seeds.Seeds(ctx, topic)
	if err != nil {
		// Seeding is a collaborator call; its failure degrades to an
		// empty run rather than aborting.
		zap.L().Warn("agent: seeding failed", zap.String("topic", topic), zap.Error(err))
	}
	for _, c := range candidates {
		q.Enqueue(c)
	}

	// In-flight work may drain for the grace period past the deadline.
	runCtx := ctx
	cancel := context.CancelFunc(func() {})
	if a.opts.MaxTime > 0 {
		runCtx, cancel = context.WithDeadline(ctx, start.Add(a.opts.MaxTime+a.opts.GracePeriod))
	}
	defer cancel()

	var mu sync.Mutex // serializes state mutation across workers

	for {
		if q.Len() == 0 {
			state.StopReason = model.StopQueueExhausted
			break
		}
		if !tracker.MayContinue() {
			state.StopReason = tracker.StopReason()
			break
		}

		// Drain one batch, never popping more than the depth budget
		// has room for: a popped candidate is burned either way.
		room := a.opts.Depth - tracker.Visited()
		batch := make([]model.Candidate, 0, a.opts.Workers)
		for len(batch) < a.opts.Workers && len(batch) < room {
			c, ok := q.Pop()
			if !ok {
				break
			}
			batch = append(batch, c)
		}
		if len(batch) == 0 {
			state.StopReason = model.StopQueueExhausted
			break
		}

		g, gCtx := errgroup.WithContext(runCtx)
		g.SetLimit(a.opts.Workers)
		for _, cand := range batch {
			g.Go(func() error {
				a.process(gCtx, topic, cand, tracker, state, q, &mu)
				return nil
			})
		}
		_ = g.Wait()
	}

	return a.finish(state, tracker)
}

// process handles one candidate end to end: fetch, analyze, record the
// outcome, enqueue discovered links. Every completed attempt records
// exactly one visit against the budget.
func (a *Agent) process(ctx context.Context, topic string, cand model.Candidate, tracker *budget.Tracker, state *model.ResearchState, q *queue.SourceQueue, mu *sync.Mutex) {
	timeout := tracker.FetchTimeout(a.opts.FetchCeiling)
	if timeout <= 0 {
		// Deadline passed between pop and dispatch; the candidate is
		// dropped without counting as an attempt.
		return
	}

	page, err := a.fetcher.Fetch(ctx, cand.URL, timeout)
	if err != nil {
		a.recordFailure(state, tracker, mu, cand.URL, fetch.Kind(err), err)
		return
	}

	finding, err := a.analyzer.Analyze(ctx, topic, page)
	if err != nil {
		a.recordFailure(state, tracker, mu, cand.URL, analyze.Kind(err), err)
		return
	}

	mu.Lock()
	state.Findings = append(state.Findings, *finding)
	state.Attempted++
	mu.Unlock()
	tracker.RecordVisit()

	// Discovered links go one level deeper; anything past the link
	// depth cap is discarded at discovery time.
	depth := cand.SourceDepth + 1
	if depth > a.opts.MaxLinkDepth {
		return
	}
	enqueued := 0
	for _, link := range finding.Links {
		ok := q.Enqueue(model.Candidate{
			URL:            link.URL,
			SourceDepth:    depth,
			DiscoveredFrom: cand.URL,
			PriorityScore:  a.opts.Priority(link.URL, depth, link.Relevance),
		})
		if ok {
			enqueued++
		}
	}
	zap.L().Debug("agent: source analyzed",
		zap.String("url", cand.URL),
		zap.Float64("relevance", finding.RelevanceScore),
		zap.Int("links_enqueued", enqueued),
	)
}

func (a *Agent) recordFailure(state *model.ResearchState, tracker *budget.Tracker, mu *sync.Mutex, url string, kind model.FailureKind, err error) {
	mu.Lock()
	state.FailedSources[url] = model.FailureReason{Kind: kind, Detail: eris.Cause(err).Error()}
	state.Attempted++
	mu.Unlock()
	tracker.RecordVisit()

	zap.L().Warn("agent: source failed",
		zap.String("url", url),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
}

func (a *Agent) finish(state *model.ResearchState, tracker *budget.Tracker) (*model.Report, error) {
	state.Elapsed = a.opts.now().Sub(state.StartedAt)

	report, err := synth.Synthesize(state, a.opts.now())
	if err != nil {
		return nil, eris.Wrap(err, "agent: synthesize report")
	}

	zap.L().Info("agent: run finished",
		zap.String("topic", state.Topic),
		zap.String("stop_reason", string(state.StopReason)),
		zap.Int("attempted", state.Attempted),
		zap.Int("findings", len(state.Findings)),
		zap.Int("failed", len(state.FailedSources)),
		zap.Duration("elapsed", state.Elapsed),
	)
	return report, nil
}
