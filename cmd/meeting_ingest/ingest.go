package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencouncil/meeting-ingest/internal/categorize"
	"github.com/opencouncil/meeting-ingest/internal/config"
	"github.com/opencouncil/meeting-ingest/internal/db"
	"github.com/opencouncil/meeting-ingest/internal/docstore"
	"github.com/opencouncil/meeting-ingest/internal/fetch"
	"github.com/opencouncil/meeting-ingest/internal/ingest"
	"github.com/opencouncil/meeting-ingest/internal/llm"
	"github.com/opencouncil/meeting-ingest/internal/observability"
	"github.com/opencouncil/meeting-ingest/internal/types"
)

var ingestCommand = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion batch against the configured meeting source",
	Long: `Fetches the meeting listing, then for each meeting runs fetch -> parse -> extract -> categorize -> upsert.
Re-running against unchanged source content is a no-op: meetings whose document hashes match the stored hashes are skipped.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runIngestCmd,
}

var (
	ingestConfigPath  string
	ingestListingURL  string
	ingestDatabaseURL string
	ingestDocumentDir string
	ingestAPIKey      string
	ingestConcurrency int
	ingestUseBrowser  bool
	ingestVerbose     bool
	ingestReportPath  string
)

func init() {
	// Config file flag (processed first)
	ingestCommand.Flags().StringVar(&ingestConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	ingestCommand.Flags().StringVarP(&ingestListingURL, "listing-url", "l", "", "Meeting listing URL (defaults to MEETING_LISTING_URL env var)")
	ingestCommand.Flags().StringVar(&ingestDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	ingestCommand.Flags().StringVar(&ingestDocumentDir, "document-dir", "", "Root directory for stored raw documents")
	ingestCommand.Flags().StringVar(&ingestAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var; empty disables model categorization)")
	ingestCommand.Flags().IntVar(&ingestConcurrency, "concurrency", 0, "Concurrent meeting pipelines (default 4)")
	ingestCommand.Flags().BoolVar(&ingestUseBrowser, "use-browser", false, "Use headless browser for script-rendered listings (requires Chrome)")
	ingestCommand.Flags().BoolVarP(&ingestVerbose, "verbose", "v", false, "Print detailed debug information")
	ingestCommand.Flags().StringVar(&ingestReportPath, "report", "", "Write the batch report as JSON to this path")

	rootCmd.AddCommand(ingestCommand)
}

// loadIngestConfig assembles the effective configuration: config file, then
// environment, then explicitly set flags.
func loadIngestConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg config.Config
	if ingestConfigPath != "" {
		loaded, err := config.Load(ingestConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		if ingestVerbose {
			fmt.Printf("Loaded config from: %s\n", ingestConfigPath)
		}
	}

	cfg.ApplyEnv()

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("listing-url") {
		cfg.ListingURL = ingestListingURL
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = ingestDatabaseURL
	}
	if cmd.Flags().Changed("document-dir") {
		cfg.DocumentDir = ingestDocumentDir
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = ingestAPIKey
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = ingestConcurrency
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = ingestUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = ingestVerbose
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func runIngestCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadIngestConfig(cmd)
	if err != nil {
		return err
	}

	report, err := runBatch(ctx, cfg)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintBatchReport(report)

	if ingestReportPath != "" {
		if err := writeReport(ingestReportPath, report); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", ingestReportPath)
	}

	if len(report.Failed) > 0 {
		fmt.Printf("Completed with %d failed meetings\n", len(report.Failed))
	}
	return nil
}

// runBatch wires the pipeline collaborators and runs one batch. Shared by
// the ingest and schedule commands.
func runBatch(ctx context.Context, cfg *config.Config) (*types.BatchReport, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	store, err := docstore.NewLocal(cfg.DocumentDir)
	if err != nil {
		return nil, err
	}

	var client llm.Client
	if cfg.APIKey != "" {
		client, err = llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() { _ = client.Close() }()
	} else if cfg.Verbose {
		fmt.Printf("No API key configured, categorizing with keywords only\n")
	}

	engineOpts := categorize.DefaultOptions()
	if cfg.ModelTimeoutSeconds > 0 {
		engineOpts.ModelTimeout = time.Duration(cfg.ModelTimeoutSeconds) * time.Second
	}
	engine := categorize.NewEngine(client, categorize.DefaultTaxonomy(), engineOpts)

	coordinator := ingest.NewCoordinator(
		fetch.NewFetcher(fetch.DefaultOptions()),
		database,
		store,
		engine,
		ingest.Options{
			ListingURL:  cfg.ListingURL,
			Concurrency: cfg.Concurrency,
			UseBrowser:  cfg.UseBrowser,
			Verbose:     cfg.Verbose,
		},
	)

	return coordinator.IngestBatch(ctx)
}

func writeReport(path string, report *types.BatchReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
