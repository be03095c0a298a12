// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Agent      AgentConfig      `yaml:"agent" mapstructure:"agent"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Browser    BrowserConfig    `yaml:"browser" mapstructure:"browser"`
	Analyzer   AnalyzerConfig   `yaml:"analyzer" mapstructure:"analyzer"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Firecrawl  FirecrawlConfig  `yaml:"firecrawl" mapstructure:"firecrawl"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run archive database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// AgentConfig bounds the research loop.
type AgentConfig struct {
	Depth            int `yaml:"depth" mapstructure:"depth"`
	MaxTimeSecs      int `yaml:"max_time_secs" mapstructure:"max_time_secs"`
	MaxLinkDepth     int `yaml:"max_link_depth" mapstructure:"max_link_depth"`
	Workers          int `yaml:"workers" mapstructure:"workers"`
	FetchCeilingSecs int `yaml:"fetch_ceiling_secs" mapstructure:"fetch_ceiling_secs"`
	GraceSecs        int `yaml:"grace_secs" mapstructure:"grace_secs"`
	Seeds            int `yaml:"seeds" mapstructure:"seeds"`
}

// MaxTime returns the run's wall-clock ceiling.
func (a AgentConfig) MaxTime() time.Duration {
	return time.Duration(a.MaxTimeSecs) * time.Second
}

// FetchCeiling returns the fixed per-fetch timeout ceiling.
func (a AgentConfig) FetchCeiling() time.Duration {
	return time.Duration(a.FetchCeilingSecs) * time.Second
}

// Grace returns how long in-flight work may drain past the deadline.
func (a AgentConfig) Grace() time.Duration {
	return time.Duration(a.GraceSecs) * time.Second
}

// FetchConfig configures the HTTP fetcher and the fallback chain.
type FetchConfig struct {
	UserAgent   string   `yaml:"user_agent" mapstructure:"user_agent"`
	PerHostRate float64  `yaml:"per_host_rate" mapstructure:"per_host_rate"`
	Fallbacks   []string `yaml:"fallbacks" mapstructure:"fallbacks"`
}

// BrowserConfig configures the headless browser fallback.
type BrowserConfig struct {
	Headless     bool `yaml:"headless" mapstructure:"headless"`
	EmulateHuman bool `yaml:"emulate_human" mapstructure:"emulate_human"`
}

// AnalyzerConfig selects the content analysis provider.
type AnalyzerConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	Model    string `yaml:"model" mapstructure:"model"`
}

// JinaConfig holds Jina AI reader and search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// FirecrawlConfig holds Firecrawl API settings (fallback only).
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("WEBAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "webagent.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("agent.depth", 10)
	v.SetDefault("agent.max_time_secs", 300)
	v.SetDefault("agent.workers", 4)
	v.SetDefault("agent.fetch_ceiling_secs", 30)
	v.SetDefault("agent.grace_secs", 5)
	v.SetDefault("agent.seeds", 8)
	v.SetDefault("fetch.per_host_rate", 2.0)
	v.SetDefault("fetch.fallbacks", []string{"jina"})
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.emulate_human", true)
	v.SetDefault("analyzer.provider", "claude")
	v.SetDefault("jina.key", "")
	v.SetDefault("firecrawl.key", "")
	v.SetDefault("perplexity.key", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v2")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
