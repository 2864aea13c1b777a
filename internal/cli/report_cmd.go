package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/spf13/cobra"
)

func newScheduleCmd(app *App) *cobra.Command {
	var critical, tree bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Recompute the schedule and show dates, float and the critical path",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			res, err := app.Plans.Schedule(ctx, projectID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatScheduleSummary(res))
			switch {
			case critical:
				fmt.Fprint(out, formatter.FormatCriticalPath(res.Schedule))
			case tree:
				fmt.Fprint(out, formatter.FormatTaskTree(res, time.Now()))
			default:
				fmt.Fprint(out, formatter.FormatTaskTable(res, time.Now()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&critical, "critical", false, "Only list the critical path")
	cmd.Flags().BoolVar(&tree, "tree", false, "Show the outline as a tree")

	return cmd
}

func newCostCmd(app *App) *cobra.Command {
	var asOf string
	var noBreakdown bool

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Show cost per resource, task and period",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			req := contract.NewCostRequest(projectID)
			req.Breakdown = !noBreakdown
			if asOf != "" {
				t, err := parseInstant("as-of", asOf, true)
				if err != nil {
					return err
				}
				req.AsOf = &t
			}

			res, err := app.Costs.Costs(ctx, req)
			if err != nil {
				return err
			}
			plan, err := app.Plans.Get(ctx, projectID)
			if err != nil {
				return err
			}
			names := make(map[int]string, len(plan.Tasks))
			for _, t := range plan.Tasks {
				names[t.ID] = t.Name
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCosts(res, names))
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "Only count work performed up to this date")
	cmd.Flags().BoolVar(&noBreakdown, "no-breakdown", false, "Skip the per-period breakdown")

	return cmd
}

func newAllocationCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "allocation",
		Aliases: []string{"load"},
		Short:   "Show resource load and over-allocated days",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			res, err := app.Costs.Allocation(ctx, projectID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAllocation(res))
			return nil
		},
	}
}

func newEVMCmd(app *App) *cobra.Command {
	var baselineRef, statusDate string
	var points int

	cmd := &cobra.Command{
		Use:   "evm",
		Short: "Earned value analysis against a baseline",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			req := contract.NewEVMRequest(projectID)
			req.Baseline = baselineRef
			if cmd.Flags().Changed("points") {
				req.CurvePoints = points
			}
			if statusDate != "" {
				t, err := parseInstant("status-date", statusDate, true)
				if err != nil {
					return err
				}
				req.StatusDate = &t
			}

			res, err := app.EVM.Evaluate(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEVM(res))
			return nil
		},
	}

	cmd.Flags().StringVarP(&baselineRef, "baseline", "b", "", "Baseline id or name (default newest)")
	cmd.Flags().StringVar(&statusDate, "status-date", "", "Status date (default now)")
	cmd.Flags().IntVar(&points, "points", 0, "Points on the planned value curve")

	return cmd
}
