package types

import "time"

// DocumentKind identifies what role a fetched artifact plays for a meeting.
type DocumentKind string

// Document kind constants
const (
	DocListing DocumentKind = "listing"
	DocAgenda  DocumentKind = "agenda"
	DocMinutes DocumentKind = "minutes"
	DocImage   DocumentKind = "image"
)

// RawDocument is an immutable fetched artifact. It is produced by the fetcher,
// consumed once by the parser, and never mutated.
type RawDocument struct {
	SourceURL   string       `json:"source_url"`
	Kind        DocumentKind `json:"kind"`
	Content     []byte       `json:"-"`
	ContentHash string       `json:"content_hash"`
	ContentType string       `json:"content_type"`
	FetchedAt   time.Time    `json:"fetched_at"`
}

// SectionHint tags a text block with the part of the meeting record it came from.
type SectionHint string

// Section hint constants
const (
	SectionAgenda     SectionHint = "agenda"
	SectionMinutes    SectionHint = "minutes"
	SectionAttachment SectionHint = "attachment"
)

// TextBlock is one ordered unit of extracted text. Page is 1-indexed for PDF
// sources and zero for HTML sources.
type TextBlock struct {
	Section SectionHint `json:"section"`
	Page    int         `json:"page,omitempty"`
	Text    string      `json:"text"`
}

// ParsedMeetingText is the structured text extracted from the documents of one
// meeting. It exists only for the duration of a single ingestion pass.
type ParsedMeetingText struct {
	ExternalID string      `json:"external_id"`
	Blocks     []TextBlock `json:"blocks"`
}

// MeetingRef is one row of a parsed source listing page: the pointer to a
// meeting and its document URLs, before any documents are fetched.
type MeetingRef struct {
	ExternalID string      `json:"external_id"`
	Title      string      `json:"title"`
	DateText   string      `json:"date_text,omitempty"`
	Type       MeetingType `json:"type,omitempty"`
	AgendaURL  string      `json:"agenda_url,omitempty"`
	MinutesURL string      `json:"minutes_url,omitempty"`
	ImageURLs  []string    `json:"image_urls,omitempty"`
}
