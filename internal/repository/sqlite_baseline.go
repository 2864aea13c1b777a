package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
)

// SQLiteBaselineRepo implements BaselineRepo. Snapshots are write-once; only
// the name of a stored baseline can change.
type SQLiteBaselineRepo struct {
	db db.DBTX
}

func NewSQLiteBaselineRepo(tx db.DBTX) *SQLiteBaselineRepo {
	return &SQLiteBaselineRepo{db: tx}
}

func (r *SQLiteBaselineRepo) Create(ctx context.Context, b domain.Baseline) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO baselines (id, project_id, name, created_at) VALUES (?, ?, ?, ?)`,
		b.ID, b.ProjectID, b.Name, formatCreated(b.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting baseline: %w", err)
	}
	for _, s := range b.Snapshots {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO baseline_tasks (baseline_id, task_id, name, wbs, start_at, end_at, duration, percent_complete, summary)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, s.TaskID, s.Name, s.WBS, formatInstant(s.Start), formatInstant(s.End),
			s.Duration, s.PercentComplete, boolToInt(s.Summary))
		if err != nil {
			return fmt.Errorf("inserting baseline task %d: %w", s.TaskID, err)
		}
	}
	return nil
}

// ListByProject returns baselines oldest first with their snapshots.
func (r *SQLiteBaselineRepo) ListByProject(ctx context.Context, projectID string) ([]domain.Baseline, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM baselines WHERE project_id = ? ORDER BY created_at, rowid`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing baselines: %w", err)
	}
	var out []domain.Baseline
	index := make(map[string]int)
	for rows.Next() {
		b := domain.Baseline{ProjectID: projectID, Snapshots: make(map[int]domain.TaskSnapshot)}
		var createdStr string
		if err := rows.Scan(&b.ID, &b.Name, &createdStr); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning baseline: %w", err)
		}
		if b.CreatedAt, err = time.Parse(createdLayout, createdStr); err != nil {
			rows.Close()
			return nil, fmt.Errorf("parsing baseline created_at: %w", err)
		}
		index[b.ID] = len(out)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating baselines: %w", err)
	}
	rows.Close()
	if len(out) == 0 {
		return nil, nil
	}

	snapRows, err := r.db.QueryContext(ctx,
		`SELECT bt.baseline_id, bt.task_id, bt.name, bt.wbs, bt.start_at, bt.end_at, bt.duration,
			bt.percent_complete, bt.summary
		FROM baseline_tasks bt JOIN baselines b ON b.id = bt.baseline_id
		WHERE b.project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing baseline tasks: %w", err)
	}
	defer snapRows.Close()

	for snapRows.Next() {
		var id, startStr, endStr string
		var summary int
		var s domain.TaskSnapshot
		if err := snapRows.Scan(&id, &s.TaskID, &s.Name, &s.WBS, &startStr, &endStr,
			&s.Duration, &s.PercentComplete, &summary); err != nil {
			return nil, fmt.Errorf("scanning baseline task: %w", err)
		}
		s.Summary = intToBool(summary)
		if s.Start, err = parseInstant("start_at", startStr); err != nil {
			return nil, err
		}
		if s.End, err = parseInstant("end_at", endStr); err != nil {
			return nil, err
		}
		out[index[id]].Snapshots[s.TaskID] = s
	}
	if err := snapRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating baseline tasks: %w", err)
	}
	return out, nil
}

func (r *SQLiteBaselineRepo) Rename(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE baselines SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("renaming baseline: %w", err)
	}
	return requireOneRow(res, "baseline")
}

func (r *SQLiteBaselineRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM baselines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting baseline: %w", err)
	}
	return requireOneRow(res, "baseline")
}

// createdLayout is fixed width so that text order matches time order, even
// for captures within the same second.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatCreated(t time.Time) string {
	return t.UTC().Format(createdLayout)
}
