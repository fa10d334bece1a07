package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/archivecast/podcaster/internal/apierr"
)

// UpsertSpeeches inserts or replaces speeches by id and returns the
// number of rows written.
func (s *Store) UpsertSpeeches(ctx context.Context, records []Speech) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apierr.Store("begin upsert transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO speeches (
			id, title, date, source, rally_location, video_url, audio_url,
			transcript_url, transcript, duration, thumbnail_url, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			date = excluded.date,
			source = excluded.source,
			rally_location = excluded.rally_location,
			video_url = excluded.video_url,
			audio_url = excluded.audio_url,
			transcript_url = excluded.transcript_url,
			transcript = excluded.transcript,
			duration = excluded.duration,
			thumbnail_url = excluded.thumbnail_url,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, apierr.Store("prepare upsert statement", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	written := 0
	for _, rec := range records {
		status := rec.Status
		if status == "" {
			status = SpeechActive
		}
		created := rec.CreatedAt
		createdStr := now
		if !created.IsZero() {
			createdStr = created.UTC().Format(time.RFC3339)
		}
		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.Title, rec.Date, rec.Source, rec.RallyLocation,
			rec.VideoURL, rec.AudioURL, rec.TranscriptURL, rec.Transcript,
			rec.Duration, rec.ThumbnailURL, string(status), createdStr, now,
		); err != nil {
			return written, apierr.Store(fmt.Sprintf("upsert speech %q", rec.ID), err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, apierr.Store("commit upsert transaction", err)
	}
	return written, nil
}

// SearchSpeeches returns matching rows plus the unpaginated total count.
// Keyword matches case-insensitively against title, transcript, or
// rally_location. Results are ordered date DESC (nulls last), ties
// broken by id ASC for determinism.
func (s *Store) SearchSpeeches(ctx context.Context, f SearchFilter) ([]Speech, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	where := []string{"1=1"}
	args := []any{}

	if f.Keyword != "" {
		where = append(where, "(title LIKE ? ESCAPE '\\' OR transcript LIKE ? ESCAPE '\\' OR rally_location LIKE ? ESCAPE '\\')")
		pat := "%" + escapeLike(f.Keyword) + "%"
		args = append(args, pat, pat, pat)
	}
	if f.StartDate != "" {
		where = append(where, "date >= ?")
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		where = append(where, "date <= ?")
		args = append(args, f.EndDate)
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM speeches WHERE " + whereClause
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apierr.Store("count search results", err)
	}

	query := fmt.Sprintf(`
		SELECT id, title, date, source, rally_location, video_url, audio_url,
		       transcript_url, transcript, duration, thumbnail_url, status,
		       created_at, updated_at
		FROM speeches
		WHERE %s
		ORDER BY (date IS NULL) ASC, date DESC, id ASC
		LIMIT ? OFFSET ?
	`, whereClause)
	rowArgs := append(append([]any{}, args...), limit, offset)

	rows, err := s.db.QueryContext(ctx, query, rowArgs...)
	if err != nil {
		return nil, 0, apierr.Store("search speeches", err)
	}
	defer rows.Close()

	var results []Speech
	for rows.Next() {
		sp, err := scanSpeech(rows)
		if err != nil {
			return nil, 0, apierr.Store("scan speech row", err)
		}
		results = append(results, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apierr.Store("iterate speech rows", err)
	}
	return results, total, nil
}

// GetSpeech looks up a single speech by id.
func (s *Store) GetSpeech(ctx context.Context, id string) (*Speech, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, date, source, rally_location, video_url, audio_url,
		       transcript_url, transcript, duration, thumbnail_url, status,
		       created_at, updated_at
		FROM speeches WHERE id = ?
	`, id)
	sp, err := scanSpeech(row)
	if err == sql.ErrNoRows {
		return nil, apierr.NotFound(fmt.Sprintf("speech %q not found", id), err)
	}
	if err != nil {
		return nil, apierr.Store("get speech", err)
	}
	return &sp, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSpeech(row rowScanner) (Speech, error) {
	var sp Speech
	var date, rallyLocation, transcript sql.NullString
	var statusStr, createdStr, updatedStr string
	err := row.Scan(
		&sp.ID, &sp.Title, &date, &sp.Source, &rallyLocation, &sp.VideoURL,
		&sp.AudioURL, &sp.TranscriptURL, &transcript, &sp.Duration,
		&sp.ThumbnailURL, &statusStr, &createdStr, &updatedStr,
	)
	if err != nil {
		return Speech{}, err
	}
	if date.Valid {
		d := date.String
		sp.Date = &d
	}
	if rallyLocation.Valid {
		r := rallyLocation.String
		sp.RallyLocation = &r
	}
	if transcript.Valid {
		t := transcript.String
		sp.Transcript = &t
	}
	sp.Status = SpeechStatus(statusStr)
	sp.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	sp.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
	return sp, nil
}

// escapeLike escapes LIKE metacharacters so user keyword input cannot
// inject wildcard behavior.
func escapeLike(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "%", "\\%", "_", "\\_")
	return r.Replace(s)
}
