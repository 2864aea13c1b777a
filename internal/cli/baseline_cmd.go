package cli

import (
	"fmt"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newBaselineCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Capture and compare schedule baselines",
	}

	cmd.AddCommand(
		newBaselineCaptureCmd(app),
		newBaselineListCmd(app),
		newBaselineRenameCmd(app),
		newBaselineDeleteCmd(app),
		newBaselineCompareCmd(app),
	)

	return cmd
}

func newBaselineCaptureCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "capture NAME",
		Short: "Snapshot the current schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			b, err := app.Baselines.Capture(ctx, projectID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s captured baseline %s (%d tasks) %s\n",
				formatter.StyleGreen.Render("✔"), b.Name, len(b.Snapshots), formatter.TruncID(b.ID))
			return nil
		},
	}
}

func newBaselineListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List baselines, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			list, err := app.Baselines.List(ctx, projectID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatBaselines(list))
			return nil
		},
	}
}

func newBaselineRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename BASELINE NAME",
		Short: "Rename a baseline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			b, err := app.Baselines.Rename(ctx, projectID, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed baseline %s to %s\n", formatter.TruncID(b.ID), b.Name)
			return nil
		},
	}
}

func newBaselineDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete BASELINE",
		Short: "Delete a baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			b, err := app.Baselines.Delete(ctx, projectID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted baseline %s\n", b.Name)
			return nil
		},
	}
}

func newBaselineCompareCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "compare [BASELINE]",
		Short: "Compare the current schedule with a baseline (default newest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			res, err := app.Baselines.Compare(ctx, projectID, ref)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatComparison(res))
			return nil
		},
	}
}
