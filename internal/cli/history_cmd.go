package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/spf13/cobra"
)

func newUndoCmd(app *App) *cobra.Command {
	return newHistoryCmd(app, "undo", "Revert the last change to the task network",
		func(ctx context.Context, id string) (*contract.PlanResult, error) { return app.Plans.Undo(ctx, id) })
}

func newRedoCmd(app *App) *cobra.Command {
	return newHistoryCmd(app, "redo", "Re-apply the last undone change",
		func(ctx context.Context, id string) (*contract.PlanResult, error) { return app.Plans.Redo(ctx, id) })
}

func newHistoryCmd(app *App, use, short string, step func(context.Context, string) (*contract.PlanResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			res, err := step(ctx, projectID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatMutation(res))
			fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("%d undo · %d redo left", res.UndoDepth, res.RedoDepth)))
			return nil
		},
	}
}
