package analyze

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/web-agent/internal/fetch"
	"github.com/sells-group/web-agent/internal/model"
	"github.com/sells-group/web-agent/internal/resilience"
	"github.com/sells-group/web-agent/pkg/perplexity"
)

// PerplexityAnalyzer extracts findings with the Perplexity chat API.
// It shares the prompt and output contract with the Claude analyzer.
type PerplexityAnalyzer struct {
	client perplexity.Client
	model  string
	retry  resilience.Config
}

// PerplexityOption configures a PerplexityAnalyzer.
type PerplexityOption func(*PerplexityAnalyzer)

// WithPerplexityModel overrides the request model.
func WithPerplexityModel(m string) PerplexityOption {
	return func(a *PerplexityAnalyzer) { a.model = m }
}

// WithPerplexityRetry overrides the retry configuration.
func WithPerplexityRetry(cfg resilience.Config) PerplexityOption {
	return func(a *PerplexityAnalyzer) { a.retry = cfg }
}

// NewPerplexityAnalyzer creates an analyzer backed by the given client.
func NewPerplexityAnalyzer(client perplexity.Client, opts ...PerplexityOption) *PerplexityAnalyzer {
	a := &PerplexityAnalyzer{
		client: client,
		retry:  resilience.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *PerplexityAnalyzer) Name() string { return "perplexity" }

// Analyze sends the page to the model and parses the structured output.
func (a *PerplexityAnalyzer) Analyze(ctx context.Context, topic string, page *fetch.Page) (*model.Finding, error) {
	req := perplexity.ChatCompletionRequest{
		Model: a.model,
		Messages: []perplexity.Message{
			{Role: "system", Content: analyzeSystemPrompt},
			{Role: "user", Content: buildUserPrompt(topic, page.URL, page.Title, page.Content)},
		},
	}

	cfg := a.retry
	cfg.ShouldRetry = func(err error) bool {
		var apiErr *perplexity.APIError
		if errors.As(err, &apiErr) {
			return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
		}
		return resilience.IsTransient(err)
	}

	resp, err := resilience.Do(ctx, cfg, "analyze perplexity", func(ctx context.Context) (*perplexity.ChatCompletionResponse, error) {
		return a.client.ChatCompletion(ctx, req)
	})
	if err != nil {
		return nil, NewError(a.classify(err), eris.Wrap(err, "analyze: perplexity request"))
	}
	if len(resp.Choices) == 0 {
		return nil, NewError(model.FailMalformedOutput, eris.New("analyze: perplexity returned no choices"))
	}

	finding, err := parseFinding(resp.Choices[0].Message.Content, page.URL, page.Title)
	if err != nil {
		zap.L().Warn("analyze: malformed model output",
			zap.String("url", page.URL),
			zap.Error(err),
		)
		return nil, err
	}
	return finding, nil
}

func (a *PerplexityAnalyzer) classify(err error) model.FailureKind {
	var apiErr *perplexity.APIError
	if errors.As(err, &apiErr) {
		return kindForStatus(apiErr.StatusCode)
	}
	return model.FailModelUnavailable
}
