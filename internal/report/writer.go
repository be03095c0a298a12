// Package report renders synthesized reports for output: markdown for
// humans, JSON and YAML for pipelines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/web-agent/internal/model"
)

// Format selects an output rendering.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md", "":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", eris.Errorf("report: unknown format %q", s)
	}
}

// Write renders the report to w in the given format.
func Write(w io.Writer, r *model.Report, format Format) error {
	if r == nil {
		return eris.New("report: nil report")
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(r), "report: encode json")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close() //nolint:errcheck
		return eris.Wrap(enc.Encode(r), "report: encode yaml")
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r))
		return eris.Wrap(err, "report: write markdown")
	default:
		return eris.Errorf("report: unknown format %q", format)
	}
}

// Markdown renders the report as a markdown document.
func Markdown(r *model.Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Research Report: %s\n\n", r.Topic)
	fmt.Fprintf(&sb, "Generated %s | stop reason: %s | sources: %d attempted, %d succeeded, %d failed | elapsed: %s\n\n",
		r.GeneratedAt.Format("2006-01-02 15:04 MST"),
		r.Meta.StopReason, r.Meta.Attempted, r.Meta.Succeeded, r.Meta.Failed,
		r.Meta.Elapsed.Round(100_000_000), // tenths of a second
	)

	if len(r.Findings) == 0 {
		sb.WriteString("No sources reached.\n")
	}

	if len(r.Facts) > 0 {
		sb.WriteString("## Key Facts\n\n")
		for _, fact := range r.Facts {
			fmt.Fprintf(&sb, "- %s\n", fact)
		}
		sb.WriteString("\n")
	}

	if len(r.Findings) > 0 {
		sb.WriteString("## Sources\n\n")
		for i, f := range r.Findings {
			title := f.Title
			if title == "" {
				title = f.SourceURL
			}
			fmt.Fprintf(&sb, "### %d. %s\n\n", i+1, title)
			fmt.Fprintf(&sb, "<%s> (relevance %.2f)\n\n", f.SourceURL, f.RelevanceScore)
			if f.Summary != "" {
				fmt.Fprintf(&sb, "%s\n\n", f.Summary)
			}
		}
	}

	if len(r.FailedSources) > 0 {
		sb.WriteString("## Failed Sources\n\n")
		for _, fs := range r.FailedSources {
			if fs.Detail != "" {
				fmt.Fprintf(&sb, "- <%s>: %s (%s)\n", fs.URL, fs.Kind, fs.Detail)
			} else {
				fmt.Fprintf(&sb, "- <%s>: %s\n", fs.URL, fs.Kind)
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
