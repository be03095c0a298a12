package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "webagent.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Agent.Depth)
	assert.Equal(t, 300, cfg.Agent.MaxTimeSecs)
	assert.Equal(t, 4, cfg.Agent.Workers)
	assert.Equal(t, 8, cfg.Agent.Seeds)
	assert.Equal(t, 5*time.Minute, cfg.Agent.MaxTime())
	assert.Equal(t, 30*time.Second, cfg.Agent.FetchCeiling())
	assert.Equal(t, 5*time.Second, cfg.Agent.Grace())
	assert.InDelta(t, 2.0, cfg.Fetch.PerHostRate, 0.001)
	assert.Equal(t, []string{"jina"}, cfg.Fetch.Fallbacks)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "claude", cfg.Analyzer.Provider)
	assert.Equal(t, "https://r.jina.ai", cfg.Jina.BaseURL)
	assert.Equal(t, "https://s.jina.ai", cfg.Jina.SearchBaseURL)
	assert.Equal(t, "https://api.firecrawl.dev/v2", cfg.Firecrawl.BaseURL)
	assert.Equal(t, "sonar-pro", cfg.Perplexity.Model)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Anthropic.Model)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  path: /tmp/runs.db
log:
  level: debug
  format: console
agent:
  depth: 25
  workers: 8
analyzer:
  provider: perplexity
browser:
  headless: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/runs.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 25, cfg.Agent.Depth)
	assert.Equal(t, 8, cfg.Agent.Workers)
	assert.Equal(t, "perplexity", cfg.Analyzer.Provider)
	assert.False(t, cfg.Browser.Headless)
	// Defaults still apply for unset keys.
	assert.Equal(t, 300, cfg.Agent.MaxTimeSecs)
}

func TestLoadFromEnv(t *testing.T) {
	chTempDir(t)

	t.Setenv("WEBAGENT_ANTHROPIC_KEY", "sk-test")
	t.Setenv("WEBAGENT_AGENT_DEPTH", "3")
	t.Setenv("WEBAGENT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
	assert.Equal(t, 3, cfg.Agent.Depth)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level"})
	require.Error(t, err)
}
