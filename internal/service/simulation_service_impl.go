package service

import (
	"context"
	"time"

	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/montecarlo"
	"github.com/alexanderramin/tempo/internal/scheduler"
)

type simulationService struct {
	uow       db.UnitOfWork
	simulator *montecarlo.Simulator
	defaults  montecarlo.Config
	observer  UseCaseObserver
}

// NewSimulationService runs simulations on simulator. Zero request fields
// fall back to defaults.
func NewSimulationService(uow db.UnitOfWork, simulator *montecarlo.Simulator, defaults montecarlo.Config, observers ...UseCaseObserver) SimulationService {
	if simulator == nil {
		simulator = montecarlo.New(nil, nil)
	}
	return &simulationService{
		uow:       uow,
		simulator: simulator,
		defaults:  defaults,
		observer:  useCaseObserverOrNoop(observers),
	}
}

// Simulate snapshots the network in a read transaction and runs the
// simulation outside it, so a long run holds no database locks.
func (s *simulationService) Simulate(ctx context.Context, req contract.SimulationRequest) (result *contract.SimulationResult, err error) {
	ctx, uc := startUseCase(ctx, s.observer, "simulate", map[string]any{
		"project_id": req.ProjectID,
		"iterations": req.Iterations,
		"seed":       req.Seed,
	})
	defer func() { uc.end(err) }()

	cfg := s.config(req)
	if _, err := montecarlo.ParseDistribution(string(cfg.Distribution)); err != nil {
		return nil, domain.Errorf(domain.ErrValidation, domain.Entity{Type: domain.EntityProject, ID: req.ProjectID}, "%v", err)
	}

	var project *domain.Project
	var plan *scheduler.Plan
	var finish time.Time
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ws, err := loadWorkspace(ctx, tx, req.ProjectID)
		if err != nil {
			return err
		}
		sched, err := reschedule(ws.graph)
		if err != nil {
			return err
		}
		if plan, err = scheduler.Compile(ws.graph); err != nil {
			return err
		}
		project, finish = ws.project, sched.ProjectFinish
		return nil
	})
	if err != nil {
		return nil, err
	}

	res, err := s.simulator.Run(ctx, plan, cfg)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if req.Now != nil {
		now = *req.Now
	}
	uc.set("p80", res.P80.Format(time.RFC3339))
	return &contract.SimulationResult{
		Project: project,
		Result:  res,
		Finish:  finish,
		Risk:    res.Risk(now, targetDeadline(project)),
	}, nil
}

func (s *simulationService) config(req contract.SimulationRequest) montecarlo.Config {
	cfg := montecarlo.Config{
		Iterations:   req.Iterations,
		Seed:         req.Seed,
		Workers:      req.Workers,
		Bins:         req.Bins,
		Distribution: req.Distribution,
		Drivers:      req.Drivers,
		Progress:     req.Progress,
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = s.defaults.Iterations
	}
	if cfg.Workers <= 0 {
		cfg.Workers = s.defaults.Workers
	}
	if cfg.Bins <= 0 {
		cfg.Bins = s.defaults.Bins
	}
	if cfg.Distribution == "" {
		cfg.Distribution = s.defaults.Distribution
	}
	if cfg.Drivers <= 0 {
		cfg.Drivers = s.defaults.Drivers
	}
	return cfg
}
