package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
)

// SQLiteHistoryRepo implements HistoryRepo. Entries store the network as a
// JSON document keyed by a per-stack sequence number.
type SQLiteHistoryRepo struct {
	db db.DBTX
}

func NewSQLiteHistoryRepo(tx db.DBTX) *SQLiteHistoryRepo {
	return &SQLiteHistoryRepo{db: tx}
}

func (r *SQLiteHistoryRepo) Push(ctx context.Context, projectID string, stack Stack, e HistoryEntry, limit int) error {
	payload, err := json.Marshal(e.Snapshot)
	if err != nil {
		return fmt.Errorf("encoding history snapshot: %w", err)
	}
	var top int
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM history WHERE project_id = ? AND stack = ?`,
		projectID, string(stack)).Scan(&top)
	if err != nil {
		return fmt.Errorf("reading history head: %w", err)
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO history (project_id, stack, seq, label, snapshot, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		projectID, string(stack), top+1, e.Label, string(payload), created.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("pushing history: %w", err)
	}
	if limit > 0 {
		_, err = r.db.ExecContext(ctx,
			`DELETE FROM history WHERE project_id = ? AND stack = ? AND seq <= ?`,
			projectID, string(stack), top+1-limit)
		if err != nil {
			return fmt.Errorf("trimming history: %w", err)
		}
	}
	return nil
}

func (r *SQLiteHistoryRepo) Pop(ctx context.Context, projectID string, stack Stack) (*HistoryEntry, error) {
	var seq int
	var label, payload, createdStr string
	err := r.db.QueryRowContext(ctx,
		`SELECT seq, label, snapshot, created_at FROM history
		WHERE project_id = ? AND stack = ? ORDER BY seq DESC LIMIT 1`,
		projectID, string(stack)).Scan(&seq, &label, &payload, &createdStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading history: %w", err)
	}

	e := HistoryEntry{Label: label}
	if err := json.Unmarshal([]byte(payload), &e.Snapshot); err != nil {
		return nil, fmt.Errorf("decoding history snapshot: %w", err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return nil, fmt.Errorf("parsing history created_at: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`DELETE FROM history WHERE project_id = ? AND stack = ? AND seq = ?`, projectID, string(stack), seq)
	if err != nil {
		return nil, fmt.Errorf("popping history: %w", err)
	}
	return &e, nil
}

func (r *SQLiteHistoryRepo) Clear(ctx context.Context, projectID string, stack Stack) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM history WHERE project_id = ? AND stack = ?`, projectID, string(stack))
	if err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

func (r *SQLiteHistoryRepo) Count(ctx context.Context, projectID string, stack Stack) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM history WHERE project_id = ? AND stack = ?`, projectID, string(stack)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return n, nil
}
