package service

import (
	"context"
	"time"

	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/scheduler"
)

type costService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewCostService(uow db.UnitOfWork, observers ...UseCaseObserver) CostService {
	return &costService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *costService) Costs(ctx context.Context, req contract.CostRequest) (result *contract.CostResult, err error) {
	ctx, uc := startUseCase(ctx, s.observer, "costs", map[string]any{"project_id": req.ProjectID})
	defer func() { uc.end(err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ws, err := loadWorkspace(ctx, tx, req.ProjectID)
		if err != nil {
			return err
		}
		if _, err := reschedule(ws.graph); err != nil {
			return err
		}
		in := scheduler.CostInput{
			Calendar:  ws.graph.Calendar(),
			Tasks:     ws.graph.Tasks(),
			Resources: ws.graph.Resources(),
		}
		if req.AsOf != nil {
			in.AsOf = *req.AsOf
		}
		result = &contract.CostResult{Project: ws.project, Report: scheduler.ComputeCosts(in)}
		if req.Breakdown {
			// Periods always span the full plan.
			in.AsOf = time.Time{}
			result.Periods = scheduler.CostBreakdown(in)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.set("total", result.Report.Total)
	return result, nil
}

func (s *costService) Allocation(ctx context.Context, projectID string) (result *contract.AllocationResult, err error) {
	ctx, uc := startUseCase(ctx, s.observer, "allocation", map[string]any{"project_id": projectID})
	defer func() { uc.end(err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ws, err := loadWorkspace(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if _, err := reschedule(ws.graph); err != nil {
			return err
		}
		profile := scheduler.AllocationProfile(scheduler.AllocationInput{
			Calendar:  ws.graph.Calendar(),
			Tasks:     ws.graph.Tasks(),
			Resources: ws.graph.Resources(),
		})
		result = &contract.AllocationResult{
			Project:         ws.project,
			Profile:         profile,
			OverAllocations: scheduler.OverAllocations(profile),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.set("over_allocated_days", len(result.OverAllocations))
	return result, nil
}
