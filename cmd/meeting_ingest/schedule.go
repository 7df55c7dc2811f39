package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/opencouncil/meeting-ingest/internal/observability"
)

// defaultSchedule runs one batch every morning at 06:00.
const defaultSchedule = "0 6 * * *"

var scheduleCommand = &cobra.Command{
	Use:   "schedule",
	Short: "Run ingestion batches on a cron schedule",
	Long: `Runs the ingestion batch periodically until interrupted. The schedule is a
standard five-field cron expression; each tick runs one full batch.`,
	RunE: runScheduleCmd,
}

var scheduleExpr string

func init() {
	scheduleCommand.Flags().StringVar(&scheduleExpr, "schedule", "", fmt.Sprintf("Cron expression for batch runs (default %q)", defaultSchedule))

	// The schedule command accepts the same source/storage flags as ingest.
	scheduleCommand.Flags().StringVar(&ingestConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	scheduleCommand.Flags().StringVarP(&ingestListingURL, "listing-url", "l", "", "Meeting listing URL (defaults to MEETING_LISTING_URL env var)")
	scheduleCommand.Flags().StringVar(&ingestDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	scheduleCommand.Flags().StringVar(&ingestDocumentDir, "document-dir", "", "Root directory for stored raw documents")
	scheduleCommand.Flags().StringVar(&ingestAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	scheduleCommand.Flags().IntVar(&ingestConcurrency, "concurrency", 0, "Concurrent meeting pipelines (default 4)")
	scheduleCommand.Flags().BoolVar(&ingestUseBrowser, "use-browser", false, "Use headless browser for script-rendered listings (requires Chrome)")
	scheduleCommand.Flags().BoolVarP(&ingestVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(scheduleCommand)
}

func runScheduleCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadIngestConfig(cmd)
	if err != nil {
		return err
	}

	expr := cfg.Schedule
	if cmd.Flags().Changed("schedule") {
		expr = scheduleExpr
	}
	if expr == "" {
		expr = defaultSchedule
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer := observability.NewPrinter(os.Stdout)
	scheduler := cron.New()
	_, err = scheduler.AddFunc(expr, func() {
		fmt.Printf("Starting scheduled ingestion batch\n")
		report, err := runBatch(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Batch failed: %v\n", err)
			return
		}
		printer.PrintBatchReport(report)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}

	fmt.Printf("Scheduler running with %q, press Ctrl+C to stop\n", expr)
	scheduler.Start()

	<-ctx.Done()
	fmt.Printf("Shutting down scheduler\n")
	<-scheduler.Stop().Done()
	return nil
}
