package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/opencouncil/meeting-ingest/internal/types"
)

// GetDocumentHashes returns the stored content hash per source URL for a
// meeting's documents. An unseen external ID yields an empty map.
func (db *DB) GetDocumentHashes(ctx context.Context, externalID string) (map[string]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT source_url, content_hash FROM meeting_documents WHERE external_id = $1`,
		externalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get document hashes for %s: %w", externalID, err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var url, hash string
		if err := rows.Scan(&url, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan document hash: %w", err)
		}
		hashes[url] = hash
	}
	return hashes, rows.Err()
}

// UpsertMeeting persists a meeting, its agenda items, its category
// assignments, and its document hashes in a single transaction keyed on the
// meeting's external ID. Agenda items are diffed by ordinal: rows whose
// ordinal survives are updated in place, so their identity is stable across
// re-ingestion; only the ordinal delta is inserted or deleted. On success
// the meeting's ID and timestamps are filled in.
func (db *DB) UpsertMeeting(ctx context.Context, meeting *types.Meeting, items []types.AgendaItem, hashes map[string]string) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && rErr != pgx.ErrTxClosed {
			_ = rErr
		}
	}()

	err = tx.QueryRow(ctx,
		`INSERT INTO meetings (external_id, title, meeting_date, meeting_type, status,
		                       agenda_uri, minutes_uri, image_paths, key_decisions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (external_id) DO UPDATE SET
		     title = $2,
		     meeting_date = $3,
		     meeting_type = $4,
		     status = $5,
		     agenda_uri = $6,
		     minutes_uri = $7,
		     image_paths = $8,
		     key_decisions = $9,
		     updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		meeting.ExternalID, meeting.Title, meeting.Date, meeting.Type, meeting.Status,
		nullIfEmpty(meeting.AgendaURI), nullIfEmpty(meeting.MinutesURI),
		meeting.ImagePaths, meeting.KeyDecisions,
	).Scan(&meeting.ID, &meeting.CreatedAt, &meeting.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert meeting %s: %w", meeting.ExternalID, err)
	}

	if err := upsertDocumentHashes(ctx, tx, meeting.ExternalID, hashes); err != nil {
		return err
	}
	if err := diffAgendaItems(ctx, tx, meeting.ID, items); err != nil {
		return err
	}
	if err := replaceAssignments(ctx, tx, meeting.ID, meeting.Assignments); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit meeting %s: %w", meeting.ExternalID, err)
	}
	return nil
}

func upsertDocumentHashes(ctx context.Context, tx pgx.Tx, externalID string, hashes map[string]string) error {
	urls := make([]string, 0, len(hashes))
	for url, hash := range hashes {
		urls = append(urls, url)
		_, err := tx.Exec(ctx,
			`INSERT INTO meeting_documents (external_id, source_url, content_hash)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (external_id, source_url) DO UPDATE SET
			     content_hash = $3,
			     fetched_at = NOW()`,
			externalID, url, hash,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert document hash for %s: %w", url, err)
		}
	}

	// Drop hashes for documents the source no longer publishes
	_, err := tx.Exec(ctx,
		`DELETE FROM meeting_documents WHERE external_id = $1 AND NOT (source_url = ANY($2))`,
		externalID, urls,
	)
	if err != nil {
		return fmt.Errorf("failed to prune document hashes for %s: %w", externalID, err)
	}
	return nil
}

func diffAgendaItems(ctx context.Context, tx pgx.Tx, meetingID any, items []types.AgendaItem) error {
	ordinals := make([]int, 0, len(items))
	for _, item := range items {
		ordinals = append(ordinals, item.Ordinal)
	}

	_, err := tx.Exec(ctx,
		`DELETE FROM agenda_items WHERE meeting_id = $1 AND NOT (ordinal = ANY($2))`,
		meetingID, ordinals,
	)
	if err != nil {
		return fmt.Errorf("failed to prune agenda items: %w", err)
	}

	for _, item := range items {
		var code any
		var confidence any
		if item.Assignment != nil {
			code = item.Assignment.Code
			confidence = item.Assignment.Confidence
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO agenda_items (meeting_id, ordinal, title, description, outcome,
			                           category_code, category_confidence)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (meeting_id, ordinal) DO UPDATE SET
			     title = $3,
			     description = $4,
			     outcome = $5,
			     category_code = $6,
			     category_confidence = $7`,
			meetingID, item.Ordinal, item.Title, nullIfEmpty(item.Description),
			item.Outcome, code, confidence,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert agenda item %d: %w", item.Ordinal, err)
		}
	}
	return nil
}

func replaceAssignments(ctx context.Context, tx pgx.Tx, meetingID any, assignments []types.Assignment) error {
	_, err := tx.Exec(ctx, `DELETE FROM meeting_categories WHERE meeting_id = $1`, meetingID)
	if err != nil {
		return fmt.Errorf("failed to clear category assignments: %w", err)
	}

	for _, a := range assignments {
		_, err := tx.Exec(ctx,
			`INSERT INTO meeting_categories (meeting_id, category_code, confidence, is_primary)
			 VALUES ($1, $2, $3, $4)`,
			meetingID, a.Code, a.Confidence, a.Primary,
		)
		if err != nil {
			return fmt.Errorf("failed to insert category assignment %s: %w", a.Code, err)
		}
	}
	return nil
}

// GetMeetingByExternalID retrieves a meeting and its agenda items by natural
// key. Returns (nil, nil, nil) when no meeting exists.
func (db *DB) GetMeetingByExternalID(ctx context.Context, externalID string) (*types.Meeting, []types.AgendaItem, error) {
	var m types.Meeting
	err := db.pool.QueryRow(ctx,
		`SELECT id, external_id, title, meeting_date, meeting_type, status,
		        COALESCE(agenda_uri, ''), COALESCE(minutes_uri, ''),
		        COALESCE(image_paths, '{}'), COALESCE(key_decisions, '{}'),
		        created_at, updated_at
		 FROM meetings WHERE external_id = $1`,
		externalID,
	).Scan(&m.ID, &m.ExternalID, &m.Title, &m.Date, &m.Type, &m.Status,
		&m.AgendaURI, &m.MinutesURI, &m.ImagePaths, &m.KeyDecisions,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to get meeting %s: %w", externalID, err)
	}

	assignments, err := db.meetingAssignments(ctx, m.ID)
	if err != nil {
		return nil, nil, err
	}
	m.Assignments = assignments

	items, err := db.agendaItems(ctx, m.ID)
	if err != nil {
		return nil, nil, err
	}
	return &m, items, nil
}

// ListMeetingsSince returns meetings updated at or after the given time,
// with category assignments loaded. This feeds the notification matcher.
func (db *DB) ListMeetingsSince(ctx context.Context, since time.Time) ([]types.Meeting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, external_id, title, meeting_date, meeting_type, status,
		        COALESCE(agenda_uri, ''), COALESCE(minutes_uri, ''),
		        COALESCE(image_paths, '{}'), COALESCE(key_decisions, '{}'),
		        created_at, updated_at
		 FROM meetings WHERE updated_at >= $1
		 ORDER BY meeting_date, external_id`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []types.Meeting
	for rows.Next() {
		var m types.Meeting
		if err := rows.Scan(&m.ID, &m.ExternalID, &m.Title, &m.Date, &m.Type, &m.Status,
			&m.AgendaURI, &m.MinutesURI, &m.ImagePaths, &m.KeyDecisions,
			&m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range meetings {
		assignments, err := db.meetingAssignments(ctx, meetings[i].ID)
		if err != nil {
			return nil, err
		}
		meetings[i].Assignments = assignments
	}
	return meetings, nil
}

func (db *DB) meetingAssignments(ctx context.Context, meetingID any) ([]types.Assignment, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT category_code, confidence, is_primary
		 FROM meeting_categories WHERE meeting_id = $1
		 ORDER BY is_primary DESC, category_code`,
		meetingID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get category assignments: %w", err)
	}
	defer rows.Close()

	var assignments []types.Assignment
	for rows.Next() {
		var a types.Assignment
		if err := rows.Scan(&a.Code, &a.Confidence, &a.Primary); err != nil {
			return nil, fmt.Errorf("failed to scan category assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (db *DB) agendaItems(ctx context.Context, meetingID any) ([]types.AgendaItem, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT ordinal, title, COALESCE(description, ''), outcome,
		        category_code, category_confidence
		 FROM agenda_items WHERE meeting_id = $1
		 ORDER BY ordinal`,
		meetingID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get agenda items: %w", err)
	}
	defer rows.Close()

	var items []types.AgendaItem
	for rows.Next() {
		var item types.AgendaItem
		var code *string
		var confidence *float64
		if err := rows.Scan(&item.Ordinal, &item.Title, &item.Description,
			&item.Outcome, &code, &confidence); err != nil {
			return nil, fmt.Errorf("failed to scan agenda item: %w", err)
		}
		if code != nil {
			item.Assignment = &types.Assignment{Code: *code, Primary: true}
			if confidence != nil {
				item.Assignment.Confidence = *confidence
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
