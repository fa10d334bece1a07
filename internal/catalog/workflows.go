package catalog

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/archivecast/podcaster/internal/apierr"
)

// NewWorkflowID generates an opaque, time-sortable workflow identifier.
func NewWorkflowID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generate workflow id: %w", err)
	}
	return id.String(), nil
}

// CreateWorkflow inserts a new workflow in the draft stage.
func (s *Store) CreateWorkflow(ctx context.Context, name string, speechIDs []string) (*Workflow, error) {
	if len(speechIDs) == 0 {
		return nil, apierr.Input("workflow requires at least one speech id", nil)
	}
	id, err := NewWorkflowID()
	if err != nil {
		return nil, apierr.Store("generate workflow id", err)
	}

	idsJSON, err := json.Marshal(speechIDs)
	if err != nil {
		return nil, apierr.Store("marshal speech ids", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, speech_ids, script, audio_url, rss_url, status, created_at, updated_at)
		VALUES (?, ?, ?, NULL, NULL, NULL, ?, ?, ?)
	`, id, name, string(idsJSON), string(WorkflowDraft), now, now)
	if err != nil {
		return nil, apierr.Store("insert workflow", err)
	}

	return &Workflow{
		ID:        id,
		Name:      name,
		SpeechIDs: speechIDs,
		Status:    WorkflowDraft,
		CreatedAt: mustParseTime(now),
		UpdatedAt: mustParseTime(now),
	}, nil
}

// GetWorkflow looks up a workflow by id.
func (s *Store) GetWorkflow(ctx context.Context, id string) (*Workflow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, speech_ids, script, audio_url, rss_url, status, created_at, updated_at
		FROM workflows WHERE id = ?
	`, id)

	var wf Workflow
	var idsJSON string
	var script, audioURL, rssURL sql.NullString
	var statusStr, createdStr, updatedStr string

	err := row.Scan(&wf.ID, &wf.Name, &idsJSON, &script, &audioURL, &rssURL, &statusStr, &createdStr, &updatedStr)
	if err == sql.ErrNoRows {
		return nil, apierr.NotFound(fmt.Sprintf("workflow %q not found", id), err)
	}
	if err != nil {
		return nil, apierr.Store("get workflow", err)
	}

	if err := json.Unmarshal([]byte(idsJSON), &wf.SpeechIDs); err != nil {
		return nil, apierr.Store("unmarshal speech ids", err)
	}
	if script.Valid {
		wf.Script = &script.String
	}
	if audioURL.Valid {
		wf.AudioURL = &audioURL.String
	}
	if rssURL.Valid {
		wf.RSSURL = &rssURL.String
	}
	wf.Status = WorkflowStatus(statusStr)
	wf.CreatedAt = mustParseTime(createdStr)
	wf.UpdatedAt = mustParseTime(updatedStr)
	return &wf, nil
}

// UpdateWorkflow applies a partial update of mutable fields and bumps
// updated_at. Only non-nil fields in WorkflowFields are written.
func (s *Store) UpdateWorkflow(ctx context.Context, id string, fields WorkflowFields) error {
	sets := []string{}
	args := []any{}

	if fields.Script != nil {
		sets = append(sets, "script = ?")
		args = append(args, *fields.Script)
	}
	if fields.AudioURL != nil {
		sets = append(sets, "audio_url = ?")
		args = append(args, *fields.AudioURL)
	}
	if fields.RSSURL != nil {
		sets = append(sets, "rss_url = ?")
		args = append(args, *fields.RSSURL)
	}
	if fields.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*fields.Status))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = ?")
	now := time.Now().UTC().Format(time.RFC3339)
	args = append(args, now)
	args = append(args, id)

	query := "UPDATE workflows SET "
	for i, set := range sets {
		if i > 0 {
			query += ", "
		}
		query += set
	}
	query += " WHERE id = ?"

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apierr.Store("update workflow", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apierr.Store("check update result", err)
	}
	if n == 0 {
		return apierr.NotFound(fmt.Sprintf("workflow %q not found", id), nil)
	}
	return nil
}

func mustParseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
