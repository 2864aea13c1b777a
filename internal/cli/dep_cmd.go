package cli

import (
	"fmt"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/spf13/cobra"
)

func newDepCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage dependencies between tasks",
		Long: `Dependencies are written on the successor in the notation
<predecessor><type><lag>, for example 3, 3FS, 7SS-1 or 5FF+2.
Types are FS (finish-to-start, default), SS, FF and SF.`,
	}

	cmd.AddCommand(
		newDepAddCmd(app),
		newDepEditCmd(app),
		newDepRemoveCmd(app),
	)

	return cmd
}

func depArgs(args []string) (domain.Dependency, error) {
	succ, err := parseID("task", args[0])
	if err != nil {
		return domain.Dependency{}, err
	}
	return domain.ParseDependency(args[1], succ)
}

func newDepAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add SUCCESSOR PREDECESSOR",
		Short: "Link a predecessor to a task, e.g. dep add 5 3FS+2",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			dep, err := depArgs(args)
			if err != nil {
				return err
			}
			res, err := app.Plans.AddDependency(ctx, projectID, dep)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation(res))
			return nil
		},
	}
}

func newDepEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit SUCCESSOR PREDECESSOR",
		Short: "Change the type or lag of an existing link, e.g. dep edit 5 3SS-1",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			dep, err := depArgs(args)
			if err != nil {
				return err
			}
			res, err := app.Plans.UpdateDependency(ctx, projectID, dep)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation(res))
			return nil
		},
	}
}

func newDepRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove SUCCESSOR PREDECESSOR",
		Short: "Remove the link between two tasks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			succ, err := parseID("task", args[0])
			if err != nil {
				return err
			}
			pred, err := parseID("task", args[1])
			if err != nil {
				return err
			}
			res, err := app.Plans.RemoveDependency(ctx, projectID, pred, succ)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation(res))
			return nil
		},
	}
}
