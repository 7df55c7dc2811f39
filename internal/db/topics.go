package db

import (
	"context"
	"fmt"

	"github.com/opencouncil/meeting-ingest/internal/types"
)

// ListInterestTopics returns every user-declared interest topic. The matcher
// treats these as read-only input; user records are never written here.
func (db *DB) ListInterestTopics(ctx context.Context) ([]types.InterestTopic, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, COALESCE(category_codes, '{}'), COALESCE(keywords, '{}')
		 FROM interest_topics
		 ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list interest topics: %w", err)
	}
	defer rows.Close()

	var topics []types.InterestTopic
	for rows.Next() {
		var topic types.InterestTopic
		if err := rows.Scan(&topic.ID, &topic.Name, &topic.CategoryCodes, &topic.Keywords); err != nil {
			return nil, fmt.Errorf("failed to scan interest topic: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}
