package service

import (
	"context"
	"time"

	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/evm"
)

type evmService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewEVMService(uow db.UnitOfWork, observers ...UseCaseObserver) EVMService {
	return &evmService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// Evaluate measures progress against a baseline as of the status date,
// which defaults to now.
func (s *evmService) Evaluate(ctx context.Context, req contract.EVMRequest) (result *contract.EVMResult, err error) {
	ctx, uc := startUseCase(ctx, s.observer, "evm", map[string]any{"project_id": req.ProjectID})
	defer func() { uc.end(err) }()

	status := time.Now().UTC()
	if req.StatusDate != nil {
		status = *req.StatusDate
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ws, err := loadWorkspace(ctx, tx, req.ProjectID)
		if err != nil {
			return err
		}
		if _, err := reschedule(ws.graph); err != nil {
			return err
		}
		set, err := loadBaselines(ctx, tx, req.ProjectID)
		if err != nil {
			return err
		}
		var b domain.Baseline
		if req.Baseline == "" {
			list := set.List()
			if len(list) == 0 {
				return domain.Errorf(domain.ErrInvalidReference, domain.Entity{Type: domain.EntityBaseline},
					"earned value needs a baseline; capture one first")
			}
			b = list[len(list)-1]
		} else if b, err = set.Get(req.Baseline); err != nil {
			return err
		}

		report := evm.Compute(evm.Input{
			Calendar:    ws.graph.Calendar(),
			Baseline:    b,
			Tasks:       ws.graph.Tasks(),
			Resources:   ws.graph.Resources(),
			StatusDate:  status,
			CurvePoints: req.CurvePoints,
		})
		result = &contract.EVMResult{Project: ws.project, Report: report}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.set("baseline", result.Report.BaselineName)
	uc.set("cpi", result.Report.Project.CPI.String())
	uc.set("spi", result.Report.Project.SPI.String())
	return result, nil
}
