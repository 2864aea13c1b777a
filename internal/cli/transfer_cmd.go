package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/importer"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a project from a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := contract.NewImportRequest(args[0])
			req.Strict = strict

			stop := func() {}
			if app.IsInteractive {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Importing "+args[0])
			}
			res, err := app.Import.ImportFile(cmd.Context(), req)
			stop()
			if err != nil {
				var rejected *importer.RejectedError
				if errors.As(err, &rejected) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s import rejected, %d issue(s):\n",
						formatter.StyleRed.Render("✘"), len(rejected.Issues))
					fmt.Fprint(cmd.OutOrStdout(), formatter.FormatIssues(rejected.Issues))
				}
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatImport(res))
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Reject the whole document on any invalid entry")

	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Export the project as a JSON document (stdout when FILE is omitted or -)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}

			if len(args) == 0 || args[0] == "-" {
				doc, err := app.Export.Export(ctx, projectID)
				if err != nil {
					return err
				}
				return importer.WriteDocument(cmd.OutOrStdout(), doc)
			}

			if err := app.Export.ExportFile(ctx, projectID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s exported to %s\n", formatter.StyleGreen.Render("✔"), args[0])
			return nil
		},
	}
}
