package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/web-agent/internal/model"
)

func TestCleanJSON_Fenced(t *testing.T) {
	in := "```json\n{\"summary\": \"ok\"}\n```"
	assert.Equal(t, `{"summary": "ok"}`, cleanJSON(in))
}

func TestCleanJSON_BareFence(t *testing.T) {
	in := "```\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, cleanJSON(in))
}

func TestCleanJSON_SurroundingProse(t *testing.T) {
	in := `Here is the result: {"a": 1} Hope that helps!`
	assert.Equal(t, `{"a": 1}`, cleanJSON(in))
}

func TestParseFinding_Full(t *testing.T) {
	text := `{"summary": "Fjords are deep glacial inlets.",
		"facts": ["Fjords form by glacial erosion", " ", "Norway has over 1000 fjords"],
		"relevance": 0.85,
		"follow_links": [
			{"url": "https://example.org/geology", "relevance": 0.7},
			{"url": "", "relevance": 0.5},
			{"url": "https://example.org/bad", "relevance": 1.5}
		]}`

	f, err := parseFinding(text, "https://example.org/fjords", "Fjords")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/fjords", f.SourceURL)
	assert.Equal(t, "Fjords", f.Title)
	assert.Equal(t, 0.85, f.RelevanceScore)
	assert.Equal(t, []string{"Fjords form by glacial erosion", "Norway has over 1000 fjords"}, f.Facts)
	// Empty and out-of-range links are dropped.
	require.Len(t, f.Links, 1)
	assert.Equal(t, model.Link{URL: "https://example.org/geology", Relevance: 0.7}, f.Links[0])
}

func TestParseFinding_NotJSON(t *testing.T) {
	_, err := parseFinding("I could not analyze this page.", "https://x.test", "")
	require.Error(t, err)
	assert.Equal(t, model.FailMalformedOutput, Kind(err))
}

func TestParseFinding_MissingSummary(t *testing.T) {
	_, err := parseFinding(`{"facts": ["a"], "relevance": 0.5}`, "https://x.test", "")
	require.Error(t, err)
	assert.Equal(t, model.FailMalformedOutput, Kind(err))
}

func TestParseFinding_RelevanceOutOfRange(t *testing.T) {
	_, err := parseFinding(`{"summary": "s", "relevance": 1.2}`, "https://x.test", "")
	require.Error(t, err)
	assert.Equal(t, model.FailMalformedOutput, Kind(err))
}

func TestParseFinding_Empty(t *testing.T) {
	_, err := parseFinding("", "https://x.test", "")
	require.Error(t, err)
	assert.Equal(t, model.FailMalformedOutput, Kind(err))
}

func TestBuildUserPrompt_Truncates(t *testing.T) {
	long := make([]byte, maxContentChars+500)
	for i := range long {
		long[i] = 'a'
	}
	p := buildUserPrompt("topic", "https://x.test", "t", string(long))
	assert.Less(t, len(p), maxContentChars+300)
}
