package service

import (
	"context"
	"time"

	"github.com/alexanderramin/tempo/internal/baseline"
	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
)

type baselineService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewBaselineService(uow db.UnitOfWork, observers ...UseCaseObserver) BaselineService {
	return &baselineService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func loadBaselines(ctx context.Context, tx db.DBTX, projectID string) (*baseline.Set, error) {
	existing, err := repository.NewSQLiteBaselineRepo(tx).ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return baseline.NewSet(projectID, existing), nil
}

// Capture freezes the freshly scheduled network.
func (s *baselineService) Capture(ctx context.Context, projectID, name string) (captured *domain.Baseline, err error) {
	ctx, uc := startUseCase(ctx, s.observer, "capture-baseline", map[string]any{"project_id": projectID, "name": name})
	defer func() { uc.end(err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ws, err := loadWorkspace(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if _, err := reschedule(ws.graph); err != nil {
			return err
		}
		set, err := loadBaselines(ctx, tx, projectID)
		if err != nil {
			return err
		}
		b, err := set.Capture(ws.graph, name, time.Now())
		if err != nil {
			return err
		}
		if err := repository.NewSQLiteBaselineRepo(tx).Create(ctx, b); err != nil {
			return err
		}
		captured = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.set("baseline_id", captured.ID)
	return captured, nil
}

func (s *baselineService) List(ctx context.Context, projectID string) (list []domain.Baseline, err error) {
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := repository.NewSQLiteProjectRepo(tx).GetByID(ctx, projectID); err != nil {
			return err
		}
		set, err := loadBaselines(ctx, tx, projectID)
		if err != nil {
			return err
		}
		list = set.List()
		return nil
	})
	return list, err
}

func (s *baselineService) Rename(ctx context.Context, projectID, ref, name string) (renamed *domain.Baseline, err error) {
	ctx, uc := startUseCase(ctx, s.observer, "rename-baseline", map[string]any{"project_id": projectID, "baseline": ref})
	defer func() { uc.end(err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		set, err := loadBaselines(ctx, tx, projectID)
		if err != nil {
			return err
		}
		b, err := set.Rename(ref, name)
		if err != nil {
			return err
		}
		if err := repository.NewSQLiteBaselineRepo(tx).Rename(ctx, b.ID, b.Name); err != nil {
			return err
		}
		renamed = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renamed, nil
}

func (s *baselineService) Delete(ctx context.Context, projectID, ref string) (deleted *domain.Baseline, err error) {
	ctx, uc := startUseCase(ctx, s.observer, "delete-baseline", map[string]any{"project_id": projectID, "baseline": ref})
	defer func() { uc.end(err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		set, err := loadBaselines(ctx, tx, projectID)
		if err != nil {
			return err
		}
		b, err := set.Delete(ref)
		if err != nil {
			return err
		}
		if err := repository.NewSQLiteBaselineRepo(tx).Delete(ctx, b.ID); err != nil {
			return err
		}
		deleted = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// Compare measures the current schedule against a stored baseline.
func (s *baselineService) Compare(ctx context.Context, projectID, ref string) (result *contract.CompareResult, err error) {
	ctx, uc := startUseCase(ctx, s.observer, "compare-baseline", map[string]any{"project_id": projectID, "baseline": ref})
	defer func() { uc.end(err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ws, err := loadWorkspace(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if _, err := reschedule(ws.graph); err != nil {
			return err
		}
		set, err := loadBaselines(ctx, tx, projectID)
		if err != nil {
			return err
		}
		b, err := set.Get(ref)
		if err != nil {
			return err
		}
		result = &contract.CompareResult{Project: ws.project, Comparison: baseline.Compare(b, ws.graph)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.set("status", string(result.Comparison.Status))
	return result, nil
}
