package analyze

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/web-agent/internal/fetch"
	"github.com/sells-group/web-agent/internal/model"
	"github.com/sells-group/web-agent/internal/resilience"
	"github.com/sells-group/web-agent/pkg/anthropic"
)

const defaultClaudeModel = "claude-sonnet-4-5"

// ClaudeAnalyzer extracts findings with the Anthropic messages API.
type ClaudeAnalyzer struct {
	client anthropic.Client
	model  string
	retry  resilience.Config
}

// ClaudeOption configures a ClaudeAnalyzer.
type ClaudeOption func(*ClaudeAnalyzer)

// WithClaudeModel overrides the default model.
func WithClaudeModel(m string) ClaudeOption {
	return func(a *ClaudeAnalyzer) { a.model = m }
}

// WithClaudeRetry overrides the retry configuration.
func WithClaudeRetry(cfg resilience.Config) ClaudeOption {
	return func(a *ClaudeAnalyzer) { a.retry = cfg }
}

// NewClaudeAnalyzer creates an analyzer backed by the given client.
func NewClaudeAnalyzer(client anthropic.Client, opts ...ClaudeOption) *ClaudeAnalyzer {
	a := &ClaudeAnalyzer{
		client: client,
		model:  defaultClaudeModel,
		retry:  resilience.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *ClaudeAnalyzer) Name() string { return "claude" }

// Analyze sends the page to the model and parses the structured output.
// Rate limits and overload responses are retried before being surfaced.
func (a *ClaudeAnalyzer) Analyze(ctx context.Context, topic string, page *fetch.Page) (*model.Finding, error) {
	req := anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: 2048,
		System:    analyzeSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildUserPrompt(topic, page.URL, page.Title, page.Content)},
		},
	}

	cfg := a.retry
	cfg.ShouldRetry = func(err error) bool {
		status := anthropic.StatusCode(err)
		return status == 429 || status >= 500 || resilience.IsTransient(err)
	}

	resp, err := resilience.Do(ctx, cfg, "analyze claude", func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return a.client.CreateMessage(ctx, req)
	})
	if err != nil {
		return nil, NewError(a.classify(err), eris.Wrap(err, "analyze: claude request"))
	}

	finding, err := parseFinding(resp.Text, page.URL, page.Title)
	if err != nil {
		zap.L().Warn("analyze: malformed model output",
			zap.String("url", page.URL),
			zap.String("model", resp.Model),
			zap.Error(err),
		)
		return nil, err
	}

	zap.L().Debug("analyze: page analyzed",
		zap.String("url", page.URL),
		zap.Float64("relevance", finding.RelevanceScore),
		zap.Int("facts", len(finding.Facts)),
		zap.Int("links", len(finding.Links)),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
	)
	return finding, nil
}

func (a *ClaudeAnalyzer) classify(err error) model.FailureKind {
	if status := anthropic.StatusCode(err); status != 0 {
		return kindForStatus(status)
	}
	return model.FailModelUnavailable
}
