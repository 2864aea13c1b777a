package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
	"github.com/spf13/cobra"
)

func newResourceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Manage resources",
	}

	cmd.AddCommand(
		newResourceAddCmd(app),
		newResourceEditCmd(app),
		newResourceRemoveCmd(app),
		newResourceListCmd(app),
	)

	return cmd
}

func parseExceptions(specs []string) ([]domain.ExceptionInterval, error) {
	out := make([]domain.ExceptionInterval, 0, len(specs))
	for _, s := range specs {
		e, err := domain.ParseException(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func newResourceAddCmd(app *App) *cobra.Command {
	var rate, capacity float64
	var exceptions []string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			exc, err := parseExceptions(exceptions)
			if err != nil {
				return err
			}
			res, err := app.Plans.AddResource(ctx, projectID, graph.ResourceInput{
				Name:       args[0],
				Rate:       rate,
				Capacity:   capacity,
				Exceptions: exc,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation(res))
			return nil
		},
	}

	cmd.Flags().Float64Var(&rate, "rate", 0, "Cost per project unit of work")
	cmd.Flags().Float64Var(&capacity, "capacity", domain.DefaultCapacity, "Daily capacity in percent")
	cmd.Flags().StringArrayVar(&exceptions, "off", nil, "Unavailable day or range (YYYY-MM-DD or \"YYYY-MM-DD to YYYY-MM-DD\"), repeatable")

	return cmd
}

func newResourceEditCmd(app *App) *cobra.Command {
	var name string
	var rate, capacity float64
	var exceptions []string
	var clearOff bool

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			id, err := parseID("resource", args[0])
			if err != nil {
				return err
			}

			var patch graph.ResourcePatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("rate") {
				patch.Rate = &rate
			}
			if flags.Changed("capacity") {
				patch.Capacity = &capacity
			}
			if flags.Changed("off") || clearOff {
				exc, err := parseExceptions(exceptions)
				if err != nil {
					return err
				}
				patch.Exceptions = &exc
			}

			res, err := app.Plans.UpdateResource(ctx, projectID, id, patch)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New resource name")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Cost per project unit of work")
	cmd.Flags().Float64Var(&capacity, "capacity", 0, "Daily capacity in percent")
	cmd.Flags().StringArrayVar(&exceptions, "off", nil, "Replace unavailable days, repeatable")
	cmd.Flags().BoolVar(&clearOff, "clear-off", false, "Remove every unavailable day")

	return cmd
}

func newResourceRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a resource and its assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			id, err := parseID("resource", args[0])
			if err != nil {
				return err
			}
			res, err := app.Plans.RemoveResource(ctx, projectID, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation(res))
			return nil
		},
	}
}

func newResourceListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			res, err := app.Plans.Get(ctx, projectID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatResources(res))
			return nil
		},
	}
}

func newAssignCmd(app *App) *cobra.Command {
	var allocation float64

	cmd := &cobra.Command{
		Use:   "assign TASK RESOURCE",
		Short: "Assign a resource to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			taskID, err := parseID("task", args[0])
			if err != nil {
				return err
			}
			resourceID, err := parseID("resource", args[1])
			if err != nil {
				return err
			}
			res, err := app.Plans.Assign(ctx, projectID, taskID, resourceID, allocation)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation(res))
			return nil
		},
	}

	cmd.Flags().Float64VarP(&allocation, "alloc", "a", 100, "Allocation percent")

	return cmd
}

func newUnassignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign TASK RESOURCE",
		Short: "Remove a resource from a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			taskID, err := parseID("task", args[0])
			if err != nil {
				return err
			}
			resourceID, err := parseID("resource", args[1])
			if err != nil {
				return err
			}
			res, err := app.Plans.Unassign(ctx, projectID, taskID, resourceID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation(res))
			return nil
		},
	}
}
