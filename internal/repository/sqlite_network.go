package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
)

// SQLiteNetworkRepo implements NetworkRepo. Save replaces the whole network,
// so callers run it inside a unit of work.
type SQLiteNetworkRepo struct {
	db db.DBTX
}

func NewSQLiteNetworkRepo(tx db.DBTX) *SQLiteNetworkRepo {
	return &SQLiteNetworkRepo{db: tx}
}

func (r *SQLiteNetworkRepo) Save(ctx context.Context, projectID string, snap graph.Snapshot) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET next_task_id = ?, next_resource_id = ?, updated_at = ? WHERE id = ?`,
		snap.NextTaskID, snap.NextResourceID, nowUTC(), projectID)
	if err != nil {
		return fmt.Errorf("updating project counters: %w", err)
	}
	if err := requireOneRow(res, "project"); err != nil {
		return err
	}

	// Dependencies, assignments and exceptions cascade.
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("clearing tasks: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("clearing resources: %w", err)
	}

	for _, res := range snap.Resources {
		if err := r.insertResource(ctx, projectID, res); err != nil {
			return err
		}
	}
	for i, t := range snap.Tasks {
		if err := r.insertTask(ctx, projectID, i, t); err != nil {
			return err
		}
	}
	for _, t := range snap.Tasks {
		for j, d := range t.Dependencies {
			_, err := r.db.ExecContext(ctx,
				`INSERT INTO dependencies (project_id, predecessor_id, successor_id, type, lag, position)
				VALUES (?, ?, ?, ?, ?, ?)`,
				projectID, d.PredecessorID, t.ID, d.Type.Code(), d.Lag, j)
			if err != nil {
				return fmt.Errorf("inserting dependency %s on task %d: %w", d.Notation(), t.ID, err)
			}
		}
		for j, a := range t.Assignments {
			_, err := r.db.ExecContext(ctx,
				`INSERT INTO assignments (project_id, task_id, resource_id, allocation, position)
				VALUES (?, ?, ?, ?, ?)`,
				projectID, t.ID, a.ResourceID, a.Allocation, j)
			if err != nil {
				return fmt.Errorf("inserting assignment of resource %d to task %d: %w", a.ResourceID, t.ID, err)
			}
		}
	}
	return nil
}

func (r *SQLiteNetworkRepo) insertResource(ctx context.Context, projectID string, res domain.Resource) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO resources (project_id, id, name, rate, capacity) VALUES (?, ?, ?, ?, ?)`,
		projectID, res.ID, res.Name, res.Rate, res.EffectiveCapacity())
	if err != nil {
		return fmt.Errorf("inserting resource %d: %w", res.ID, err)
	}
	for _, ex := range res.Exceptions {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO resource_exceptions (project_id, resource_id, start_day, end_day) VALUES (?, ?, ?, ?)`,
			projectID, res.ID, ex.Start.Format(domain.DateLayout), ex.End.Format(domain.DateLayout))
		if err != nil {
			return fmt.Errorf("inserting exception for resource %d: %w", res.ID, err)
		}
	}
	return nil
}

func (r *SQLiteNetworkRepo) insertTask(ctx context.Context, projectID string, position int, t domain.Task) error {
	style, err := encodeStyle(t.Style)
	if err != nil {
		return err
	}
	var o, m, p any
	if t.Estimate != nil {
		o, m, p = t.Estimate.Optimistic, t.Estimate.Likely, t.Estimate.Pessimistic
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO tasks (project_id, id, parent_id, position, name, notes, start_at, end_at, duration,
			percent_complete, milestone, mode, est_optimistic, est_likely, est_pessimistic, style)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		projectID, t.ID, nullableIntToValue(t.ParentID), position, t.Name, t.Notes,
		formatInstant(t.Start), formatInstant(t.End), t.Duration,
		t.PercentComplete, boolToInt(t.Milestone), string(t.Mode), o, m, p, style)
	if err != nil {
		return fmt.Errorf("inserting task %d: %w", t.ID, err)
	}
	return nil
}

// Load returns the network with tasks in stored WBS order. Children are left
// for graph.Load to rebuild.
func (r *SQLiteNetworkRepo) Load(ctx context.Context, projectID string) (graph.Snapshot, error) {
	var snap graph.Snapshot
	err := r.db.QueryRowContext(ctx,
		`SELECT next_task_id, next_resource_id FROM projects WHERE id = ?`, projectID,
	).Scan(&snap.NextTaskID, &snap.NextResourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return graph.Snapshot{}, fmt.Errorf("project not found")
		}
		return graph.Snapshot{}, fmt.Errorf("loading project counters: %w", err)
	}

	if snap.Tasks, err = r.loadTasks(ctx, projectID); err != nil {
		return graph.Snapshot{}, err
	}
	index := make(map[int]int, len(snap.Tasks))
	for i, t := range snap.Tasks {
		index[t.ID] = i
	}
	if err := r.loadDependencies(ctx, projectID, snap.Tasks, index); err != nil {
		return graph.Snapshot{}, err
	}
	if err := r.loadAssignments(ctx, projectID, snap.Tasks, index); err != nil {
		return graph.Snapshot{}, err
	}
	if snap.Resources, err = r.loadResources(ctx, projectID); err != nil {
		return graph.Snapshot{}, err
	}
	return snap, nil
}

func (r *SQLiteNetworkRepo) loadTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, parent_id, name, notes, start_at, end_at, duration, percent_complete, milestone, mode,
			est_optimistic, est_likely, est_pessimistic, style
		FROM tasks WHERE project_id = ? ORDER BY position`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		var parent sql.NullInt64
		var startStr, endStr, modeStr, style string
		var milestone int
		var o, m, p sql.NullFloat64
		if err := rows.Scan(&t.ID, &parent, &t.Name, &t.Notes, &startStr, &endStr, &t.Duration,
			&t.PercentComplete, &milestone, &modeStr, &o, &m, &p, &style); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		t.ParentID = parseNullableInt(parent)
		t.Milestone = intToBool(milestone)
		t.Mode = domain.ScheduleMode(modeStr)
		if o.Valid && m.Valid && p.Valid {
			t.Estimate = &domain.ThreePoint{Optimistic: o.Float64, Likely: m.Float64, Pessimistic: p.Float64}
		}
		if t.Start, err = parseInstant("start_at", startStr); err != nil {
			return nil, err
		}
		if t.End, err = parseInstant("end_at", endStr); err != nil {
			return nil, err
		}
		if t.Style, err = decodeStyle(style); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLiteNetworkRepo) loadDependencies(ctx context.Context, projectID string, tasks []domain.Task, index map[int]int) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT predecessor_id, successor_id, type, lag FROM dependencies
		WHERE project_id = ? ORDER BY successor_id, position`, projectID)
	if err != nil {
		return fmt.Errorf("listing dependencies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.Dependency
		var code string
		if err := rows.Scan(&d.PredecessorID, &d.SuccessorID, &code, &d.Lag); err != nil {
			return fmt.Errorf("scanning dependency: %w", err)
		}
		if d.Type, err = domain.ParseDependencyType(code); err != nil {
			return err
		}
		i, ok := index[d.SuccessorID]
		if !ok {
			return fmt.Errorf("dependency on unknown task %d", d.SuccessorID)
		}
		tasks[i].Dependencies = append(tasks[i].Dependencies, d)
	}
	return rows.Err()
}

func (r *SQLiteNetworkRepo) loadAssignments(ctx context.Context, projectID string, tasks []domain.Task, index map[int]int) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT task_id, resource_id, allocation FROM assignments
		WHERE project_id = ? ORDER BY task_id, position`, projectID)
	if err != nil {
		return fmt.Errorf("listing assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.TaskID, &a.ResourceID, &a.Allocation); err != nil {
			return fmt.Errorf("scanning assignment: %w", err)
		}
		i, ok := index[a.TaskID]
		if !ok {
			return fmt.Errorf("assignment on unknown task %d", a.TaskID)
		}
		tasks[i].Assignments = append(tasks[i].Assignments, a)
	}
	return rows.Err()
}

func (r *SQLiteNetworkRepo) loadResources(ctx context.Context, projectID string) ([]domain.Resource, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, rate, capacity FROM resources WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}
	var resources []domain.Resource
	index := make(map[int]int)
	for rows.Next() {
		var res domain.Resource
		if err := rows.Scan(&res.ID, &res.Name, &res.Rate, &res.Capacity); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning resource: %w", err)
		}
		index[res.ID] = len(resources)
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating resources: %w", err)
	}
	rows.Close()

	exRows, err := r.db.QueryContext(ctx,
		`SELECT resource_id, start_day, end_day FROM resource_exceptions
		WHERE project_id = ? ORDER BY resource_id, rowid`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing resource exceptions: %w", err)
	}
	defer exRows.Close()

	for exRows.Next() {
		var id int
		var startStr, endStr string
		if err := exRows.Scan(&id, &startStr, &endStr); err != nil {
			return nil, fmt.Errorf("scanning resource exception: %w", err)
		}
		ex, err := domain.ParseException(startStr + " to " + endStr)
		if err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			resources[i].Exceptions = append(resources[i].Exceptions, ex)
		}
	}
	return resources, exRows.Err()
}
