// Package match compares newly ingested meetings against user-declared
// interest topics and emits subscription-trigger events. It is read-only on
// both sides; delivery (email, SMS) is an external consumer of the events.
package match

import (
	"fmt"
	"strings"

	"github.com/opencouncil/meeting-ingest/internal/types"
)

// Meeting produces zero or more match events for one meeting. A topic
// matches when its category codes intersect the meeting's assignments, or
// when any of its keywords appears (case-insensitive) in the meeting title
// or key-decisions text. Each topic yields at most one event, with the
// first matching rule as its reason.
func Meeting(meeting *types.Meeting, topics []types.InterestTopic) []types.MatchEvent {
	var events []types.MatchEvent
	for _, topic := range topics {
		reason, ok := matchTopic(meeting, topic)
		if !ok {
			continue
		}
		events = append(events, types.MatchEvent{
			TopicID:    topic.ID,
			TopicName:  topic.Name,
			ExternalID: meeting.ExternalID,
			Title:      meeting.Title,
			Reason:     reason,
		})
	}
	return events
}

// Meetings runs Meeting over a batch, preserving meeting order.
func Meetings(meetings []types.Meeting, topics []types.InterestTopic) []types.MatchEvent {
	var events []types.MatchEvent
	for i := range meetings {
		events = append(events, Meeting(&meetings[i], topics)...)
	}
	return events
}

func matchTopic(meeting *types.Meeting, topic types.InterestTopic) (string, bool) {
	for _, code := range topic.CategoryCodes {
		for _, a := range meeting.Assignments {
			if a.Code == code {
				return fmt.Sprintf("category %s", code), true
			}
		}
	}

	haystack := strings.ToLower(meeting.Title + "\n" + strings.Join(meeting.KeyDecisions, "\n"))
	for _, kw := range topic.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return fmt.Sprintf("keyword %q", kw), true
		}
	}
	return "", false
}
