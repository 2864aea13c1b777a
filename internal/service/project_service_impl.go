package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/google/uuid"
)

type projectService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewProjectService(uow db.UnitOfWork, observers ...UseCaseObserver) ProjectService {
	return &projectService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *projectService) Create(ctx context.Context, req contract.CreateProjectRequest) (project *domain.Project, err error) {
	ctx, uc := startUseCase(ctx, s.observer, "create-project", map[string]any{"short_id": req.ShortID})
	defer func() { uc.end(err) }()

	now := time.Now().UTC()
	p := &domain.Project{
		ID:         uuid.New().String(),
		ShortID:    strings.ToUpper(strings.TrimSpace(req.ShortID)),
		Name:       strings.TrimSpace(req.Name),
		StartDate:  domain.DateOf(req.StartDate),
		TargetDate: req.TargetDate,
		Unit:       domain.DurationUnit(domain.CoalesceStr(string(req.Unit), string(domain.UnitDays))),
		Currency:   req.Currency,
		Calendar:   req.Calendar,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if len(p.Calendar.WorkingDays) == 0 && p.Calendar.HoursPerDay == 0 {
		p.Calendar = domain.DefaultCalendar()
	}
	if err := validateProject(p); err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLiteProjectRepo(tx)
		if existing, err := projects.GetByShortID(ctx, p.ShortID); err == nil {
			return domain.Errorf(domain.ErrValidation, domain.Entity{Type: domain.EntityProject, ID: p.ShortID},
				"short ID %s is already used by %q", p.ShortID, existing.Name)
		}
		if err := projects.Create(ctx, p); err != nil {
			return err
		}
		return repository.NewSQLiteNetworkRepo(tx).Save(ctx, p.ID, graph.Snapshot{NextTaskID: 1, NextResourceID: 1})
	})
	if err != nil {
		return nil, err
	}
	uc.set("project_id", p.ID)
	return p, nil
}

// validateProject checks the fields a project cannot be stored without.
func validateProject(p *domain.Project) error {
	entity := domain.Entity{Type: domain.EntityProject, ID: p.ShortID}
	if p.Name == "" {
		return domain.Errorf(domain.ErrValidation, entity, "project name is required")
	}
	if len([]rune(p.Name)) > graph.MaxNameLength {
		return domain.Errorf(domain.ErrValidation, entity, "project name exceeds %d characters", graph.MaxNameLength)
	}
	if err := p.ValidateShortID(); err != nil {
		return domain.Errorf(domain.ErrValidation, entity, "%v", err)
	}
	if _, err := domain.ParseDurationUnit(string(p.Unit)); err != nil {
		return domain.Errorf(domain.ErrValidation, entity, "%v", err)
	}
	if p.StartDate.IsZero() {
		return domain.Errorf(domain.ErrValidation, entity, "start date is required")
	}
	if p.TargetDate != nil && domain.DateOf(*p.TargetDate).Before(p.StartDate) {
		return domain.Errorf(domain.ErrValidation, entity, "target date %s is before start date %s",
			p.TargetDate.Format(domain.DateLayout), p.StartDate.Format(domain.DateLayout))
	}
	if _, err := calendar.New(p.Calendar, p.Unit); err != nil {
		return err
	}
	return nil
}

func (s *projectService) GetByID(ctx context.Context, id string) (project *domain.Project, err error) {
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		project, err = repository.NewSQLiteProjectRepo(tx).GetByID(ctx, id)
		return err
	})
	return project, err
}

func (s *projectService) Resolve(ctx context.Context, ref string) (project *domain.Project, err error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("project reference is required")
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLiteProjectRepo(tx)
		if p, err := projects.GetByShortID(ctx, ref); err == nil {
			project = p
			return nil
		}
		if p, err := projects.GetByID(ctx, ref); err == nil {
			project = p
			return nil
		}
		all, err := projects.List(ctx)
		if err != nil {
			return err
		}
		var matches []*domain.Project
		for _, p := range all {
			if strings.HasPrefix(p.ID, strings.ToLower(ref)) {
				matches = append(matches, p)
			}
		}
		switch len(matches) {
		case 0:
			return fmt.Errorf("project %q not found", ref)
		case 1:
			project = matches[0]
			return nil
		default:
			return fmt.Errorf("project prefix %q is ambiguous (%d matches)", ref, len(matches))
		}
	})
	return project, err
}

func (s *projectService) List(ctx context.Context) (projects []*domain.Project, err error) {
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects, err = repository.NewSQLiteProjectRepo(tx).List(ctx)
		return err
	})
	return projects, err
}

// UpdateSettings applies settings and reschedules the network on the new
// calendar in the same transaction.
func (s *projectService) UpdateSettings(ctx context.Context, id string, settings contract.ProjectSettings) (result *contract.PlanResult, err error) {
	ctx, uc := startUseCase(ctx, s.observer, "update-project", map[string]any{"project_id": id})
	defer func() { uc.end(err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLiteProjectRepo(tx)
		p, err := projects.GetByID(ctx, id)
		if err != nil {
			return err
		}
		applySettings(p, settings)
		if err := validateProject(p); err != nil {
			return err
		}
		p.UpdatedAt = time.Now().UTC()

		networks := repository.NewSQLiteNetworkRepo(tx)
		snap, err := networks.Load(ctx, p.ID)
		if err != nil {
			return err
		}
		g, err := buildGraph(p, snap)
		if err != nil {
			return err
		}
		sched, err := reschedule(g)
		if err != nil {
			return err
		}
		if err := projects.Update(ctx, p); err != nil {
			return err
		}
		if err := networks.Save(ctx, p.ID, g.Snapshot()); err != nil {
			return err
		}
		result = planResult(p, g, sched, time.Now().UTC())
		result.Action = "update project settings"
		result.UndoDepth, result.RedoDepth, err = historyDepths(ctx, repository.NewSQLiteHistoryRepo(tx), p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func applySettings(p *domain.Project, s contract.ProjectSettings) {
	if s.Name != nil {
		p.Name = strings.TrimSpace(*s.Name)
	}
	if s.StartDate != nil {
		p.StartDate = domain.DateOf(*s.StartDate)
	}
	if s.ClearTarget {
		p.TargetDate = nil
	} else if s.TargetDate != nil {
		t := domain.DateOf(*s.TargetDate)
		p.TargetDate = &t
	}
	if s.Unit != nil {
		p.Unit = *s.Unit
	}
	if s.Currency != nil {
		p.Currency = *s.Currency
	}
	if s.WorkingDays != nil {
		p.Calendar.WorkingDays = append([]time.Weekday(nil), (*s.WorkingDays)...)
	}
	if s.Holidays != nil {
		p.Calendar.Holidays = append([]time.Time(nil), (*s.Holidays)...)
	}
	if s.HoursPerDay != nil {
		p.Calendar.HoursPerDay = *s.HoursPerDay
	}
	if s.DayStart != nil {
		p.Calendar.DayStart = *s.DayStart
	}
}

func (s *projectService) Delete(ctx context.Context, id string) (err error) {
	ctx, uc := startUseCase(ctx, s.observer, "delete-project", map[string]any{"project_id": id})
	defer func() { uc.end(err) }()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteProjectRepo(tx).Delete(ctx, id)
	})
}
