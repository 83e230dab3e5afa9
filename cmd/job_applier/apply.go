package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-applier/internal/ingestion"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Submit applications for every job in a batch file",
	Long: `Reads a batch file of job artifacts and applies to each job in order through one browser session.

Configuration can be loaded from a JSON or YAML file using --config. Command-line flags override config file values.
Every attempted application is appended to the outcome log; one failure never stops the batch.`,
	RunE: runApply,
}

var (
	applyFlags       runFlags
	applyBatchPath   string
	applyMetricsAddr string
)

func init() {
	applyFlags.register(applyCmd)
	applyCmd.Flags().StringVarP(&applyBatchPath, "batch", "b", "", "Path to the batch JSON file (required)")
	applyCmd.Flags().StringVar(&applyMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the batch runs (e.g. :9090)")

	_ = applyCmd.MarkFlagRequired("batch")

	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := applyFlags.load(cmd)
	if err != nil {
		return err
	}

	batch, err := ingestion.LoadBatch(applyBatchPath)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return fmt.Errorf("batch %s has no entries", applyBatchPath)
	}

	a, err := newApp(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	if applyMetricsAddr != "" {
		a.serveMetrics(applyMetricsAddr)
	}

	summary := a.orchestrator(applyFlags.verbose).RunBatch(ctx, batch)
	a.printer.PrintBatchSummary(summary.Outcomes, summary.Skipped)

	if summary.Cancelled {
		return fmt.Errorf("batch cancelled after %d applications", len(summary.Outcomes))
	}
	return nil
}
