package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencouncil/meeting-ingest/internal/db"
	"github.com/opencouncil/meeting-ingest/internal/match"
	"github.com/opencouncil/meeting-ingest/internal/observability"
)

var notifyCommand = &cobra.Command{
	Use:   "notify",
	Short: "Match recently ingested meetings against interest topics",
	Long: `Reads meetings ingested or updated within the lookback window, matches them
against user-declared interest topics, and emits one JSON match event per line
on stdout for downstream delivery (email, SMS).`,
	RunE: runNotifyCmd,
}

var (
	notifyDatabaseURL string
	notifySinceHours  int
	notifyVerbose     bool
)

func init() {
	notifyCommand.Flags().StringVar(&notifyDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	notifyCommand.Flags().IntVar(&notifySinceHours, "since-hours", 24, "Lookback window for recently ingested meetings")
	notifyCommand.Flags().BoolVarP(&notifyVerbose, "verbose", "v", false, "Print a summary of matches to stderr")

	rootCmd.AddCommand(notifyCommand)
}

func runNotifyCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	dsn := notifyDatabaseURL
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		return fmt.Errorf("no database URL configured (use --db-url or DATABASE_URL)")
	}

	database, err := db.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer database.Close()

	since := time.Now().Add(-time.Duration(notifySinceHours) * time.Hour)
	meetings, err := database.ListMeetingsSince(ctx, since)
	if err != nil {
		return err
	}

	topics, err := database.ListInterestTopics(ctx)
	if err != nil {
		return err
	}

	events := match.Meetings(meetings, topics)

	encoder := json.NewEncoder(os.Stdout)
	for _, event := range events {
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode match event: %w", err)
		}
	}

	if notifyVerbose {
		fmt.Fprintf(os.Stderr, "Matched %d meetings against %d topics: %d events\n",
			len(meetings), len(topics), len(events))
		observability.NewPrinter(os.Stderr).PrintMatchEvents(events)
	}
	return nil
}
