package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/web-agent/internal/model"
	"github.com/sells-group/web-agent/internal/report"
	"github.com/sells-group/web-agent/internal/store"
)

var (
	runsStatus string
	runsLimit  int
	runsFormat string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect archived research runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := initRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		runs, err := rt.Store.ListRuns(cmd.Context(), store.RunFilter{
			Status: model.RunStatus(runsStatus),
			Limit:  runsLimit,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTOPIC\tSTATUS\tSTOP\tATTEMPTED\tFOUND\tSTARTED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
				r.ID, r.Topic, r.Status, r.StopReason, r.Attempted, r.Succeeded,
				r.StartedAt.Format("2006-01-02 15:04"),
			)
		}
		return w.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show an archived run's report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(runsFormat)
		if err != nil {
			return err
		}

		rt, err := initRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		run, err := rt.Store.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if run.Report == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "run %s has no report (status %s)\n", run.ID, run.Status)
			return nil
		}
		return report.Write(cmd.OutOrStdout(), run.Report, format)
	},
}

func init() {
	runsListCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status: running, complete, failed")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "max runs to list")
	runsShowCmd.Flags().StringVar(&runsFormat, "format", "markdown", "output format: markdown, json, yaml")
	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
