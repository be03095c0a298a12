package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/web-agent/internal/agent"
	"github.com/sells-group/web-agent/internal/report"
)

var taskURLs []string

var taskCmd = &cobra.Command{
	Use:   "task <topic>",
	Short: "Research a topic starting from explicit source URLs",
	Long:  "Runs the research loop seeded from the given URLs instead of web search. Useful when the caller already knows where to look, or when no search API key is configured.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(researchFormat)
		if err != nil {
			return err
		}

		rt, err := initRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		return executeRun(cmd, rt, args[0], agent.StaticSeeds(taskURLs), format)
	},
}

func init() {
	taskCmd.Flags().StringSliceVar(&taskURLs, "url", nil, "seed URL (repeatable)")
	taskCmd.Flags().IntVar(&researchDepth, "depth", 0, "max sources to visit (default from config)")
	taskCmd.Flags().IntVar(&researchTime, "max-time", -1, "time budget in seconds (default from config)")
	taskCmd.Flags().StringVar(&researchFormat, "format", "markdown", "output format: markdown, json, yaml")
	taskCmd.Flags().StringVarP(&researchOutput, "output", "o", "", "write report to file instead of stdout")
	taskCmd.Flags().BoolVar(&researchNoStore, "no-store", false, "skip archiving the run")
	_ = taskCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(taskCmd)
}
