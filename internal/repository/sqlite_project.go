package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
)

// SQLiteProjectRepo implements ProjectRepo. The calendar lives in the
// projects row plus the holidays table.
type SQLiteProjectRepo struct {
	db db.DBTX
}

func NewSQLiteProjectRepo(tx db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: tx}
}

const projectColumns = `id, short_id, name, start_date, target_date, unit, currency,
	working_days, hours_per_day, day_start_min, created_at, updated_at`

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.ShortID,
		p.Name,
		p.StartDate.Format(domain.DateLayout),
		nullableTimeToString(p.TargetDate, domain.DateLayout),
		string(p.Unit),
		p.Currency,
		encodeWeekdays(p.Calendar.WorkingDays),
		p.Calendar.HoursPerDay,
		int(p.Calendar.DayStart/time.Minute),
		p.CreatedAt.UTC().Format(time.RFC3339),
		p.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return r.writeHolidays(ctx, p)
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return r.load(ctx, row)
}

func (r *SQLiteProjectRepo) GetByShortID(ctx context.Context, shortID string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE UPPER(short_id) = UPPER(?)`, shortID)
	return r.load(ctx, row)
}

func (r *SQLiteProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at, short_id`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	rows.Close()

	for _, p := range projects {
		if err := r.readHolidays(ctx, p); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	query := `UPDATE projects SET short_id = ?, name = ?, start_date = ?, target_date = ?, unit = ?,
		currency = ?, working_days = ?, hours_per_day = ?, day_start_min = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.ShortID,
		p.Name,
		p.StartDate.Format(domain.DateLayout),
		nullableTimeToString(p.TargetDate, domain.DateLayout),
		string(p.Unit),
		p.Currency,
		encodeWeekdays(p.Calendar.WorkingDays),
		p.Calendar.HoursPerDay,
		int(p.Calendar.DayStart/time.Minute),
		p.UpdatedAt.UTC().Format(time.RFC3339),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	if err := requireOneRow(res, "project"); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM holidays WHERE project_id = ?`, p.ID); err != nil {
		return fmt.Errorf("clearing holidays: %w", err)
	}
	return r.writeHolidays(ctx, p)
}

// Delete removes the project; its network, baselines and history cascade.
func (r *SQLiteProjectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return requireOneRow(res, "project")
}

func (r *SQLiteProjectRepo) writeHolidays(ctx context.Context, p *domain.Project) error {
	for _, h := range p.Calendar.Holidays {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO holidays (project_id, day) VALUES (?, ?)`,
			p.ID, h.Format(domain.DateLayout))
		if err != nil {
			return fmt.Errorf("inserting holiday: %w", err)
		}
	}
	return nil
}

func (r *SQLiteProjectRepo) readHolidays(ctx context.Context, p *domain.Project) error {
	rows, err := r.db.QueryContext(ctx, `SELECT day FROM holidays WHERE project_id = ? ORDER BY day`, p.ID)
	if err != nil {
		return fmt.Errorf("listing holidays: %w", err)
	}
	defer rows.Close()

	p.Calendar.Holidays = nil
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return fmt.Errorf("scanning holiday: %w", err)
		}
		d, err := time.Parse(domain.DateLayout, day)
		if err != nil {
			return fmt.Errorf("parsing holiday: %w", err)
		}
		p.Calendar.Holidays = append(p.Calendar.Holidays, d)
	}
	return rows.Err()
}

func (r *SQLiteProjectRepo) load(ctx context.Context, row *sql.Row) (*domain.Project, error) {
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project not found")
		}
		return nil, err
	}
	if err := r.readHolidays(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*domain.Project, error) {
	var p domain.Project
	var startDateStr, unitStr, workingDays, createdAtStr, updatedAtStr string
	var targetDateStr sql.NullString
	var dayStartMin int

	err := s.Scan(
		&p.ID, &p.ShortID, &p.Name,
		&startDateStr, &targetDateStr,
		&unitStr, &p.Currency,
		&workingDays, &p.Calendar.HoursPerDay, &dayStartMin,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	p.Unit = domain.DurationUnit(unitStr)
	p.Calendar.DayStart = time.Duration(dayStartMin) * time.Minute

	var parseErr error
	if p.Calendar.WorkingDays, parseErr = decodeWeekdays(workingDays); parseErr != nil {
		return nil, parseErr
	}
	if p.StartDate, parseErr = time.Parse(domain.DateLayout, startDateStr); parseErr != nil {
		return nil, fmt.Errorf("parsing start_date: %w", parseErr)
	}
	if p.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr); parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	if p.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr); parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	p.TargetDate = parseNullableTime(targetDateStr, domain.DateLayout)
	return &p, nil
}

func requireOneRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s not found", what)
	}
	return nil
}
