package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/montecarlo"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newSimulateCmd(app *App) *cobra.Command {
	var (
		iterations  int
		seed        uint64
		workers     int
		bins        int
		drivers     int
		dist        string
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Monte Carlo forecast of the finish date from three-point estimates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}

			// Unset knobs stay zero so the configured defaults apply.
			req := contract.NewSimulationRequest(projectID)
			req.Iterations = iterations
			req.Workers = workers
			req.Bins = bins
			req.Drivers = drivers
			req.Distribution = ""
			if dist != "" {
				if req.Distribution, err = montecarlo.ParseDistribution(dist); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = seed
			}

			var res *contract.SimulationResult
			if app.IsInteractive {
				res, err = simulateWithProgress(ctx, cmd, app, req)
			} else {
				res, err = app.Simulations.Simulate(ctx, req)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSimulation(res))

			if metricsFile != "" {
				if app.Metrics == nil {
					return errors.New("--metrics-file: no metrics registry configured")
				}
				if err := prometheus.WriteToTextfile(metricsFile, app.Metrics); err != nil {
					return fmt.Errorf("writing metrics: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "Number of iterations (default from config, 1000)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed for a reproducible run (default from the clock)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker goroutines (default GOMAXPROCS)")
	cmd.Flags().IntVar(&bins, "bins", 0, "Histogram bins (default from config, 20)")
	cmd.Flags().IntVar(&drivers, "drivers", 0, "Schedule drivers to list (default from config, 5)")
	cmd.Flags().StringVar(&dist, "dist", "", "Sampling distribution: triangular or pert (default from config)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")

	return cmd
}

// simulateWithProgress runs the simulation in the background and drives a
// progress bar on stderr until it reports back.
func simulateWithProgress(ctx context.Context, cmd *cobra.Command, app *App, req contract.SimulationRequest) (*contract.SimulationResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newSimulateModel("Running Monte Carlo simulation", req.Iterations, cancel)
	p := tea.NewProgram(model,
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.ErrOrStderr()),
	)

	req.Progress = func(done, total int) {
		step := max(1, total/100)
		if done%step == 0 || done == total {
			p.Send(simProgressMsg{done: done, total: total})
		}
	}

	go func() {
		res, err := app.Simulations.Simulate(ctx, req)
		p.Send(simDoneMsg{result: res, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(simulateModel)
	if m.cancelled && m.err != nil {
		return nil, errors.New("simulation cancelled")
	}
	return m.result, m.err
}
