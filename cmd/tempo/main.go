package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/tempo/internal/cli"
	"github.com/alexanderramin/tempo/internal/config"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/montecarlo"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	database, err := db.OpenDB(cfg.DB)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	uow := db.NewSQLiteUnitOfWork(database)

	var observers []service.UseCaseObserver
	if cfg.Log.UseCases {
		observers = append(observers, service.NewSlogUseCaseObserver(logger))
	}

	registry := prometheus.NewRegistry()
	simulator := montecarlo.New(logger, montecarlo.NewMetrics(registry))

	app := &cli.App{
		Projects:    service.NewProjectService(uow, observers...),
		Plans:       service.NewPlanService(uow, observers...),
		Baselines:   service.NewBaselineService(uow, observers...),
		Costs:       service.NewCostService(uow, observers...),
		EVM:         service.NewEVMService(uow, observers...),
		Simulations: service.NewSimulationService(uow, simulator, cfg.MonteCarlo(), observers...),
		Import:      service.NewImportService(uow, cfg.ImportLimits(), observers...),
		Export:      service.NewExportService(uow, observers...),
		Metrics:     registry,
	}

	// Progress views and prompts need a terminal on both ends.
	app.IsInteractive = isTerminal(os.Stdin) && isTerminal(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
