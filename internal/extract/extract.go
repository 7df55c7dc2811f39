// Package extract maps parsed meeting text into a canonical meeting draft and
// ordered agenda items using pattern rules: date layouts, "Item N:" markers,
// and AGENDA/MINUTES keyword anchors. Extraction is pure and deterministic:
// identical input text always produces identical structured output, which is
// what makes re-ingestion of unchanged documents a no-op against the store.
package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/opencouncil/meeting-ingest/internal/types"
)

// Error indicates that no meeting could be derived from the parsed text.
// It is fatal for its meeting only, never for the batch.
type Error struct {
	ExternalID string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction error for %s: %s", e.ExternalID, e.Message)
}

var (
	itemMarkerRe = regexp.MustCompile(`(?i)\bitem\s+(\d+)\s*[:.]`)
	headerLineRe = regexp.MustCompile(`(?i)^\s*(agenda|minutes|attachment)s?\s*$`)
)

// Meeting derives a meeting draft and its ordered agenda items from the
// parsed text of one meeting. The listing row supplies fallback values for
// title, date, and type. Fails only when neither a date nor a title can be
// derived at all.
func Meeting(ref types.MeetingRef, parsed types.ParsedMeetingText) (*types.MeetingDraft, []types.AgendaItem, error) {
	draft := &types.MeetingDraft{
		ExternalID: ref.ExternalID,
		Title:      strings.TrimSpace(ref.Title),
	}

	fullText := joinBlocks(parsed.Blocks)

	// Date: listing text first, then the document text.
	if date, ok := FindDate(ref.DateText); ok {
		draft.Date = date
	} else if date, ok := FindDate(fullText); ok {
		draft.Date = date
	}

	if draft.Title == "" {
		draft.Title = deriveTitle(parsed.Blocks)
	}

	if draft.Date.IsZero() && draft.Title == "" {
		return nil, nil, &Error{ExternalID: ref.ExternalID, Message: "no date or title derivable from source text"}
	}
	if draft.Date.IsZero() {
		return nil, nil, &Error{ExternalID: ref.ExternalID, Message: "no recognizable meeting date in source text"}
	}
	if draft.Title == "" {
		return nil, nil, &Error{ExternalID: ref.ExternalID, Message: "no meeting title derivable from source text"}
	}

	draft.Type = ref.Type
	if draft.Type == "" {
		draft.Type = deriveType(fullText)
	}

	items, decisions := itemsAndDecisions(parsed.Blocks)
	draft.KeyDecisions = decisions

	return draft, items, nil
}

// segment is one "Item N" slice of a text block.
type segment struct {
	ordinal int
	title   string
	body    string
}

// itemsAndDecisions segments agenda and minutes blocks into numbered items
// and collects unmatched text as the key-decisions summary. Minutes take
// precedence over the agenda for item outcomes and descriptions; the agenda
// wins for titles and establishes ordering.
func itemsAndDecisions(blocks []types.TextBlock) ([]types.AgendaItem, []string) {
	byOrdinal := make(map[int]*types.AgendaItem)
	var decisions []string
	hasMinutes := false
	for _, b := range blocks {
		if b.Section == types.SectionMinutes {
			hasMinutes = true
			break
		}
	}

	for _, block := range blocks {
		prefix, segments := segmentItems(block.Text)

		fromMinutes := block.Section == types.SectionMinutes

		// Unmatched text becomes key decisions. When minutes exist they are
		// the authoritative narrative; agenda leftovers are boilerplate.
		if fromMinutes || !hasMinutes {
			decisions = append(decisions, decisionLines(prefix)...)
		}

		for _, seg := range segments {
			item, exists := byOrdinal[seg.ordinal]
			if !exists {
				item = &types.AgendaItem{Ordinal: seg.ordinal, Outcome: types.OutcomeUnknown}
				byOrdinal[seg.ordinal] = item
			}

			switch {
			case fromMinutes:
				// Minutes override the description and decide the outcome.
				if seg.body != "" {
					item.Description = seg.body
				}
				if outcome := deriveOutcome(seg.title + " " + seg.body); outcome != types.OutcomeUnknown {
					item.Outcome = outcome
				}
				if item.Title == "" {
					item.Title = seg.title
				}
			default:
				// Agenda blocks come before minutes in document order, so
				// the agenda title lands first and sticks.
				if item.Title == "" {
					item.Title = seg.title
				}
				if item.Description == "" {
					item.Description = seg.body
				}
			}
		}
	}

	items := make([]types.AgendaItem, 0, len(byOrdinal))
	for _, item := range byOrdinal {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Ordinal < items[j].Ordinal })
	return items, decisions
}

// segmentItems splits text at "Item N:" markers. The returned prefix is the
// text before the first marker (the whole text when no markers exist).
func segmentItems(text string) (string, []segment) {
	locs := itemMarkerRe.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return text, nil
	}

	prefix := text[:locs[0][0]]

	segments := make([]segment, 0, len(locs))
	for i, loc := range locs {
		ordinal, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}

		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		chunk := strings.TrimSpace(text[loc[1]:end])

		title, body := chunk, ""
		if nl := strings.IndexByte(chunk, '\n'); nl >= 0 {
			title = strings.TrimSpace(chunk[:nl])
			body = strings.TrimSpace(chunk[nl+1:])
		}

		segments = append(segments, segment{ordinal: ordinal, title: title, body: body})
	}
	return prefix, segments
}

// deriveOutcome scans item text for vote-result keywords.
func deriveOutcome(text string) types.Outcome {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "passed") || strings.Contains(lower, "approved") || strings.Contains(lower, "carried"):
		return types.OutcomePassed
	case strings.Contains(lower, "failed") || strings.Contains(lower, "denied") || strings.Contains(lower, "rejected"):
		return types.OutcomeFailed
	case strings.Contains(lower, "tabled") || strings.Contains(lower, "postponed") || strings.Contains(lower, "deferred"):
		return types.OutcomeTabled
	default:
		return types.OutcomeUnknown
	}
}

// deriveType infers the meeting type from document text.
func deriveType(text string) types.MeetingType {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "special meeting") || strings.Contains(lower, "special session"):
		return types.MeetingTypeSpecial
	case strings.Contains(lower, "committee"):
		return types.MeetingTypeCommittee
	default:
		return types.MeetingTypeRegular
	}
}

// deriveTitle falls back to the first line that is neither a section header
// nor a bare date.
func deriveTitle(blocks []types.TextBlock) string {
	for _, block := range blocks {
		for _, line := range strings.Split(block.Text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || headerLineRe.MatchString(line) {
				continue
			}
			if _, isDate := FindDate(line); isDate && len(line) < 25 {
				continue
			}
			return line
		}
	}
	return ""
}

// decisionLines filters unmatched text down to lines worth keeping as key
// decisions: section headers and bare dates are dropped.
func decisionLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || headerLineRe.MatchString(line) {
			continue
		}
		if _, isDate := FindDate(line); isDate && len(line) < 25 {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func joinBlocks(blocks []types.TextBlock) string {
	var sb strings.Builder
	for i, block := range blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(block.Text)
	}
	return sb.String()
}
