// Package parse extracts plain text and structural hints from fetched meeting
// documents. PDFs keep page boundaries as section hints; HTML listing pages
// are reduced to one row per meeting using tag and attribute anchors so minor
// markup drift does not break ingestion.
package parse

import (
	"fmt"
	"strings"

	"github.com/opencouncil/meeting-ingest/internal/types"
)

// Error represents a failure to parse one document. A parse failure is
// always scoped to its document and never fails the batch.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Document extracts text blocks from a single raw document. The section hint
// on each block comes from the document's kind. Unsupported content types and
// documents yielding no usable text return an Error.
func Document(doc types.RawDocument) ([]types.TextBlock, error) {
	section := sectionFor(doc.Kind)

	switch {
	case isPDF(doc):
		return pdfBlocks(doc, section)
	case isHTML(doc):
		text, err := HTMLText(string(doc.Content))
		if err != nil {
			return nil, &Error{URL: doc.SourceURL, Message: "failed to parse HTML", Cause: err}
		}
		if strings.TrimSpace(text) == "" {
			return nil, &Error{URL: doc.SourceURL, Message: "no usable text content"}
		}
		return []types.TextBlock{{Section: section, Text: text}}, nil
	case isPlainText(doc):
		text := strings.TrimSpace(string(doc.Content))
		if text == "" {
			return nil, &Error{URL: doc.SourceURL, Message: "no usable text content"}
		}
		return []types.TextBlock{{Section: section, Text: text}}, nil
	default:
		return nil, &Error{
			URL:     doc.SourceURL,
			Message: fmt.Sprintf("unsupported content type %q", doc.ContentType),
		}
	}
}

// Documents parses every document of one meeting into a single
// ParsedMeetingText. Failed documents are reported in the returned error
// slice (parallel to docs) while successful ones still contribute blocks.
func Documents(externalID string, docs []types.RawDocument) (types.ParsedMeetingText, []error) {
	parsed := types.ParsedMeetingText{ExternalID: externalID}
	errs := make([]error, len(docs))
	for i, doc := range docs {
		if doc.SourceURL == "" {
			// Slot left empty by an upstream fetch failure.
			continue
		}
		if doc.Kind == types.DocImage {
			// Images carry no text; they are stored, not parsed.
			continue
		}
		blocks, err := Document(doc)
		if err != nil {
			errs[i] = err
			continue
		}
		parsed.Blocks = append(parsed.Blocks, blocks...)
	}
	return parsed, errs
}

func sectionFor(kind types.DocumentKind) types.SectionHint {
	switch kind {
	case types.DocAgenda:
		return types.SectionAgenda
	case types.DocMinutes:
		return types.SectionMinutes
	default:
		return types.SectionAttachment
	}
}

func isPDF(doc types.RawDocument) bool {
	if strings.Contains(doc.ContentType, "application/pdf") {
		return true
	}
	// Content sniff for servers that mislabel PDFs.
	return len(doc.Content) > 4 && string(doc.Content[:5]) == "%PDF-"
}

func isHTML(doc types.RawDocument) bool {
	return strings.Contains(doc.ContentType, "text/html") ||
		strings.Contains(doc.ContentType, "application/xhtml")
}

func isPlainText(doc types.RawDocument) bool {
	return strings.Contains(doc.ContentType, "text/plain")
}
