package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/web-agent/internal/agent"
	"github.com/sells-group/web-agent/internal/report"
)

var (
	researchDepth   int
	researchTime    int
	researchFormat  string
	researchOutput  string
	researchNoStore bool
)

var researchCmd = &cobra.Command{
	Use:   "research <topic>",
	Short: "Research a topic within a time and depth budget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := args[0]

		format, err := report.ParseFormat(researchFormat)
		if err != nil {
			return err
		}

		rt, err := initRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		if rt.Jina == nil {
			return eris.New("research: a jina api key is required for search seeding; use the task command for explicit URLs")
		}
		seeds := agent.NewSearchSeeds(rt.Jina, cfg.Agent.Seeds)

		return executeRun(cmd, rt, topic, seeds, format)
	},
}

// executeRun drives one research run: archive bookkeeping, the run
// itself, and report output.
func executeRun(cmd *cobra.Command, rt *runtime, topic string, seeds agent.SeedSource, format report.Format) error {
	ctx := cmd.Context()

	var runID string
	if !researchNoStore {
		run, err := rt.Store.CreateRun(ctx, topic)
		if err != nil {
			return err
		}
		runID = run.ID
	}

	a := agent.New(rt.Fetcher, rt.Analyzer, agentOptions(researchDepth, researchTime))
	rep, err := a.Run(ctx, topic, seeds)
	if err != nil {
		if runID != "" {
			if ferr := rt.Store.FailRun(ctx, runID, err.Error()); ferr != nil {
				zap.L().Warn("archiving failed run", zap.Error(ferr))
			}
		}
		return err
	}

	if runID != "" {
		if err := rt.Store.CompleteRun(ctx, runID, rep); err != nil {
			zap.L().Warn("archiving run", zap.Error(err))
		}
	}

	out := cmd.OutOrStdout()
	if researchOutput != "" {
		f, err := os.Create(researchOutput)
		if err != nil {
			return eris.Wrapf(err, "create output file %s", researchOutput)
		}
		defer f.Close()
		out = f
	}
	return report.Write(out, rep, format)
}

func init() {
	researchCmd.Flags().IntVar(&researchDepth, "depth", 0, "max sources to visit (default from config)")
	researchCmd.Flags().IntVar(&researchTime, "max-time", -1, "time budget in seconds (default from config)")
	researchCmd.Flags().StringVar(&researchFormat, "format", "markdown", "output format: markdown, json, yaml")
	researchCmd.Flags().StringVarP(&researchOutput, "output", "o", "", "write report to file instead of stdout")
	researchCmd.Flags().BoolVar(&researchNoStore, "no-store", false, "skip archiving the run")
	rootCmd.AddCommand(researchCmd)
}
