package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/archivecast/podcaster/internal/apierr"
)

// AppendEvent writes one append-only event, assigning an id if the
// caller didn't supply one.
func (s *Store) AppendEvent(ctx context.Context, e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, event_type, data, ip, user_agent, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.EventType, e.Data, e.IP, e.UserAgent, e.Timestamp.Format(time.RFC3339))
	if err != nil {
		return apierr.Store("append event", err)
	}
	return nil
}

// ListEvents returns events matching the filter, most recent first.
func (s *Store) ListEvents(ctx context.Context, f EventFilter) ([]Event, error) {
	where := "1=1"
	args := []any{}
	if f.EventType != "" {
		where += " AND event_type = ?"
		args = append(args, f.EventType)
	}
	if f.Since != nil {
		where += " AND timestamp >= ?"
		args = append(args, f.Since.UTC().Format(time.RFC3339))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_type, data, ip, user_agent, timestamp
		FROM events WHERE `+where+`
		ORDER BY timestamp DESC LIMIT ?
	`, args...)
	if err != nil {
		return nil, apierr.Store("list events", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var ts string
		if err := rows.Scan(&e.ID, &e.EventType, &e.Data, &e.IP, &e.UserAgent, &ts); err != nil {
			return nil, apierr.Store("scan event", err)
		}
		e.Timestamp = mustParseTime(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// PruneEvents deletes events older than the cutoff and returns the
// number of rows removed. Backs the configurable retention window.
func (s *Store) PruneEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE timestamp < ?", olderThan.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, apierr.Store("prune events", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apierr.Store("count pruned events", err)
	}
	return n, nil
}
