package analyze

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/web-agent/pkg/anthropic"
	"github.com/sells-group/web-agent/pkg/perplexity"
)

// NewFromProvider builds an Analyzer for the named provider. An empty
// model selects the provider's default.
func NewFromProvider(provider, apiKey, modelName string) (Analyzer, error) {
	switch provider {
	case "claude", "anthropic":
		var opts []ClaudeOption
		if modelName != "" {
			opts = append(opts, WithClaudeModel(modelName))
		}
		return NewClaudeAnalyzer(anthropic.NewClient(apiKey), opts...), nil
	case "perplexity":
		var opts []PerplexityOption
		if modelName != "" {
			opts = append(opts, WithPerplexityModel(modelName))
		}
		return NewPerplexityAnalyzer(perplexity.NewClient(apiKey), opts...), nil
	default:
		return nil, eris.Errorf("analyze: unknown provider %q", provider)
	}
}
