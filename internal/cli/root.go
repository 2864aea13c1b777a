package cli

import (
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Projects    service.ProjectService
	Plans       service.PlanService
	Baselines   service.BaselineService
	Costs       service.CostService
	EVM         service.EVMService
	Simulations service.SimulationService
	Import      service.ImportService
	Export      service.ExportService

	// IsInteractive enables the progress view, spinners and confirmation
	// prompts. Set when stdout is a terminal.
	IsInteractive bool
	// Confirm asks a yes/no question; nil falls back to the huh form.
	Confirm func(title string) (bool, error)
	// Metrics is written out by `simulate --metrics-file`; nil disables it.
	Metrics prometheus.Gatherer
}

// NewRootCmd creates the top-level "tempo" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tempo",
		Short:         "Project scheduling engine: CPM, resources, baselines, Monte Carlo and EVM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("project", "p", "", "Project short ID, UUID or UUID prefix (defaults to the only project)")

	root.AddCommand(
		newProjectCmd(app),
		newTaskCmd(app),
		newDepCmd(app),
		newResourceCmd(app),
		newAssignCmd(app),
		newUnassignCmd(app),
		newScheduleCmd(app),
		newCostCmd(app),
		newAllocationCmd(app),
		newBaselineCmd(app),
		newEVMCmd(app),
		newSimulateCmd(app),
		newImportCmd(app),
		newExportCmd(app),
		newUndoCmd(app),
		newRedoCmd(app),
	)

	return root
}
