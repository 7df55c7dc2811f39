// Package types provides type definitions for structured data used throughout the meeting ingestion system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// MeetingType enumerates the kinds of government meetings the source publishes.
type MeetingType string

// Meeting type constants
const (
	MeetingTypeRegular   MeetingType = "regular"
	MeetingTypeSpecial   MeetingType = "special"
	MeetingTypeCommittee MeetingType = "committee"
)

// MeetingStatus tracks how completely a meeting was ingested.
type MeetingStatus string

// Meeting status constants
const (
	// StatusIngested means every source document was fetched, parsed, and persisted.
	StatusIngested MeetingStatus = "ingested"
	// StatusPartial means at least one document failed to fetch or parse but the
	// meeting was persisted from the documents that succeeded.
	StatusPartial MeetingStatus = "partially_ingested"
)

// Outcome is the recorded result of an agenda item vote.
type Outcome string

// Agenda item outcome constants
const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeTabled  Outcome = "tabled"
	OutcomeUnknown Outcome = "unknown"
)

// Meeting is the canonical persisted meeting record. ExternalID is the natural
// key assigned by the source system; re-ingestion of the same ExternalID
// updates the existing row, never duplicates it.
type Meeting struct {
	ID           uuid.UUID     `json:"id"`
	ExternalID   string        `json:"external_id"`
	Title        string        `json:"title"`
	Date         time.Time     `json:"date"`
	Type         MeetingType   `json:"type"`
	Status       MeetingStatus `json:"status"`
	AgendaURI    string        `json:"agenda_uri,omitempty"`
	MinutesURI   string        `json:"minutes_uri,omitempty"`
	ImagePaths   []string      `json:"image_paths,omitempty"`
	KeyDecisions []string      `json:"key_decisions,omitempty"`
	Assignments  []Assignment  `json:"assignments,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// AgendaItem is a single numbered item on a meeting's agenda. Ordinal is
// unique within its parent meeting and preserves the source ordering.
type AgendaItem struct {
	Ordinal     int         `json:"ordinal"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Outcome     Outcome     `json:"outcome"`
	Assignment  *Assignment `json:"assignment,omitempty"`
}

// MeetingDraft is the extractor's output before categorization and
// persistence. It carries no database identity.
type MeetingDraft struct {
	ExternalID   string      `json:"external_id"`
	Title        string      `json:"title"`
	Date         time.Time   `json:"date"`
	Type         MeetingType `json:"type"`
	KeyDecisions []string    `json:"key_decisions,omitempty"`
	AgendaURI    string      `json:"agenda_uri,omitempty"`
	MinutesURI   string      `json:"minutes_uri,omitempty"`
	ImagePaths   []string    `json:"image_paths,omitempty"`
}
