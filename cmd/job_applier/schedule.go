package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-applier/internal/ingestion"
	"github.com/jonathan/job-applier/internal/pipeline"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Re-run a batch file on a schedule",
	Long: `Applies to every job in the batch file on a fixed interval (--every) or cron expression (--cron)
until interrupted. The batch file is re-read before each run so upstream tools can refresh it.
A run still in progress when the next one is due is skipped.`,
	RunE: runSchedule,
}

var (
	scheduleFlags     runFlags
	scheduleBatchPath string
	scheduleEvery     time.Duration
	scheduleCron      string
	scheduleNow       bool
)

func init() {
	scheduleFlags.register(scheduleCmd)
	scheduleCmd.Flags().StringVarP(&scheduleBatchPath, "batch", "b", "", "Path to the batch JSON file (required)")
	scheduleCmd.Flags().DurationVar(&scheduleEvery, "every", 0, "Run interval (e.g. 6h)")
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "Cron expression (e.g. \"0 9 * * 1-5\"); mutually exclusive with --every")
	scheduleCmd.Flags().BoolVar(&scheduleNow, "now", true, "Run once immediately on start")

	_ = scheduleCmd.MarkFlagRequired("batch")

	rootCmd.AddCommand(scheduleCmd)
}

// scheduleSpec turns the --every/--cron flags into a cron spec.
func scheduleSpec(every time.Duration, expr string) (string, error) {
	expr = strings.TrimSpace(expr)
	switch {
	case every > 0 && expr != "":
		return "", fmt.Errorf("--every and --cron are mutually exclusive; provide only one")
	case every > 0:
		return "@every " + every.String(), nil
	case expr != "":
		return expr, nil
	default:
		return "", fmt.Errorf("either --every or --cron must be provided")
	}
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	spec, err := scheduleSpec(scheduleEvery, scheduleCron)
	if err != nil {
		return err
	}
	cfg, err := scheduleFlags.load(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	orch := a.orchestrator(scheduleFlags.verbose)
	run := func(ctx context.Context) {
		batch, err := ingestion.LoadBatch(scheduleBatchPath)
		if err != nil {
			a.logger.Error("failed to load batch", zap.String("path", scheduleBatchPath), zap.Error(err))
			return
		}
		summary := orch.RunBatch(ctx, batch)
		a.printer.PrintBatchSummary(summary.Outcomes, summary.Skipped)
	}

	scheduler := pipeline.NewScheduler(ctx, spec, run, a.logger.Named("scheduler"))
	if err := scheduler.Start(scheduleNow); err != nil {
		return err
	}

	<-ctx.Done()
	a.logger.Info("shutting down scheduler")
	<-scheduler.Stop().Done()
	return nil
}
