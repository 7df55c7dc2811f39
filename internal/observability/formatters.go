// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/opencouncil/meeting-ingest/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintMeeting outputs a human-readable summary of an extracted meeting.
func (p *Printer) PrintMeeting(meeting *types.Meeting, items []types.AgendaItem) {
	if meeting == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("ID:      %s\n", meeting.ExternalID))
	sb.WriteString(fmt.Sprintf("Title:   %s\n", meeting.Title))
	sb.WriteString(fmt.Sprintf("Date:    %s\n", meeting.Date.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Type:    %s\n", meeting.Type))
	sb.WriteString(fmt.Sprintf("Status:  %s\n", meeting.Status))

	if len(meeting.Assignments) > 0 {
		sb.WriteString("\nCategories:\n")
		for _, a := range meeting.Assignments {
			marker := " "
			if a.Primary {
				marker = "*"
			}
			sb.WriteString(fmt.Sprintf("  %s %s (%.2f)\n", marker, a.Code, a.Confidence))
		}
	}

	if len(items) > 0 {
		sb.WriteString("\nAgenda Items:\n")
		count := min(len(items), maxItemsToShow)
		for i := 0; i < count; i++ {
			item := items[i]
			sb.WriteString(fmt.Sprintf("  %d. %s", item.Ordinal, item.Title))
			if item.Outcome != types.OutcomeUnknown && item.Outcome != "" {
				sb.WriteString(fmt.Sprintf(" [%s]", item.Outcome))
			}
			sb.WriteString("\n")
		}
		if len(items) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
		}
	}

	p.printBox("EXTRACTED MEETING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBatchReport outputs the summary of one ingestion batch.
func (p *Printer) PrintBatchReport(report *types.BatchReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Attempted: %d\n", report.Total()))
	sb.WriteString(fmt.Sprintf("Ingested:  %d\n", report.Ingested))
	sb.WriteString(fmt.Sprintf("Skipped:   %d (unchanged)\n", report.Skipped))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", len(report.Failed)))

	if len(report.Failed) > 0 {
		sb.WriteString("\nFailures:\n")
		count := min(len(report.Failed), maxItemsToShow)
		for i := 0; i < count; i++ {
			f := report.Failed[i]
			sb.WriteString(fmt.Sprintf("  %s [%s] %s\n", f.ExternalID, f.Stage, f.Reason))
		}
		if len(report.Failed) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.Failed)-maxItemsToShow))
		}
	}

	if !report.FinishedAt.IsZero() && !report.StartedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("\nDuration:  %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)))
	}

	p.printBox("INGESTION BATCH REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatchEvents outputs the notification events produced for a batch.
func (p *Printer) PrintMatchEvents(events []types.MatchEvent) {
	if len(events) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total events: %d\n\n", len(events)))

	count := min(len(events), maxItemsToShow)
	for i := 0; i < count; i++ {
		e := events[i]
		sb.WriteString(fmt.Sprintf("%s -> %s\n", e.TopicName, e.ExternalID))
		sb.WriteString(fmt.Sprintf("    %s\n", e.Reason))
	}
	if len(events) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(events)-maxItemsToShow))
	}

	p.printBox("SUBSCRIPTION MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}
