package types

import "github.com/google/uuid"

// InterestTopic is a user's declared interest: a set of taxonomy category
// codes and/or free-text keywords. The matcher reads topics as read-only
// input and never writes back to user records.
type InterestTopic struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	CategoryCodes []string  `json:"category_codes,omitempty"`
	Keywords      []string  `json:"keywords,omitempty"`
}

// MatchEvent signals that a newly ingested meeting intersects a declared
// interest topic. Delivery channels consume these events downstream.
type MatchEvent struct {
	TopicID    uuid.UUID `json:"topic_id"`
	TopicName  string    `json:"topic_name"`
	ExternalID string    `json:"external_id"`
	Title      string    `json:"title"`
	Reason     string    `json:"reason"`
}
