package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/web-agent/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		Topic:       "fjord ecology",
		GeneratedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Findings: []model.Finding{
			{SourceURL: "https://b.test/two", Title: "Key page", Summary: "The key page.", RelevanceScore: 0.9},
			{SourceURL: "https://a.test/one", Summary: "Background.", RelevanceScore: 0.4},
		},
		Facts: []string{"Fjords are glacial inlets.", "Fjord waters are stratified."},
		FailedSources: []model.FailedSource{
			{URL: "https://c.test/blocked", Kind: model.FailBlocked, Detail: "cloudflare"},
		},
		Meta: model.ReportMeta{
			StopReason: model.StopQueueExhausted,
			Attempted:  3,
			Succeeded:  2,
			Failed:     1,
			Elapsed:    42 * time.Second,
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":         FormatMarkdown,
		"md":       FormatMarkdown,
		"Markdown": FormatMarkdown,
		"json":     FormatJSON,
		"yaml":     FormatYAML,
		"yml":      FormatYAML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sampleReport())
	assert.Contains(t, out, "# Research Report: fjord ecology")
	assert.Contains(t, out, "## Key Facts")
	assert.Contains(t, out, "- Fjords are glacial inlets.")
	assert.Contains(t, out, "### 1. Key page")
	// Findings without a title fall back to the URL.
	assert.Contains(t, out, "### 2. https://a.test/one")
	assert.Contains(t, out, "## Failed Sources")
	assert.Contains(t, out, "blocked (cloudflare)")
	assert.Contains(t, out, "queue_exhausted")
}

func TestMarkdown_EmptyReport(t *testing.T) {
	r := &model.Report{
		Topic: "nothing found",
		Meta:  model.ReportMeta{StopReason: model.StopTimeExhausted},
	}
	out := Markdown(r)
	assert.Contains(t, out, "No sources reached.")
	assert.NotContains(t, out, "## Key Facts")
	assert.NotContains(t, out, "## Sources")
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatJSON))

	var decoded model.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "fjord ecology", decoded.Topic)
	assert.Len(t, decoded.Findings, 2)
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatYAML))
	assert.Contains(t, buf.String(), "topic: fjord ecology")
	assert.Contains(t, buf.String(), "stop_reason: queue_exhausted")
}

func TestWrite_NilReport(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, Write(&buf, nil, FormatJSON))
}
