package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskEditCmd(app),
		newTaskRemoveCmd(app),
		newTaskMoveCmd(app),
		newTaskIndentCmd(app),
		newTaskOutdentCmd(app),
		newTaskListCmd(app),
	)

	return cmd
}

// taskFlags holds the fields shared by add and edit.
type taskFlags struct {
	notes     string
	start     string
	end       string
	duration  float64
	percent   float64
	milestone bool
	manual    bool
	estimate  string
	style     []string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&f.start, "start", "", "Start (YYYY-MM-DD or \"YYYY-MM-DD HH:MM\")")
	cmd.Flags().StringVar(&f.end, "end", "", "Finish (YYYY-MM-DD means end of that day)")
	cmd.Flags().Float64VarP(&f.duration, "duration", "d", 0, "Duration in the project unit")
	cmd.Flags().Float64Var(&f.percent, "done", 0, "Percent complete (0-100)")
	cmd.Flags().BoolVar(&f.milestone, "milestone", false, "Zero-duration milestone")
	cmd.Flags().BoolVar(&f.manual, "manual", false, "Pin the task to its start date")
	cmd.Flags().StringVar(&f.estimate, "estimate", "", "Three-point estimate optimistic/likely/pessimistic")
	cmd.Flags().StringArrayVar(&f.style, "style", nil, "Presentation attribute key=value, repeatable")
}

func (f *taskFlags) mode() domain.ScheduleMode {
	if f.manual {
		return domain.ScheduleManual
	}
	return domain.ScheduleAuto
}

func newTaskAddCmd(app *App) *cobra.Command {
	var f taskFlags
	var parent int
	var after string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}

			in := graph.TaskInput{
				Name:            args[0],
				Notes:           f.notes,
				PercentComplete: f.percent,
				Milestone:       f.milestone,
				Mode:            f.mode(),
			}
			flags := cmd.Flags()
			if flags.Changed("parent") {
				in.ParentID = &parent
			}
			if f.start != "" {
				t, err := parseInstant("start", f.start, false)
				if err != nil {
					return err
				}
				in.Start = &t
			}
			if f.end != "" {
				t, err := parseInstant("end", f.end, true)
				if err != nil {
					return err
				}
				in.End = &t
			}
			if flags.Changed("duration") {
				in.Duration = &f.duration
			}
			if f.estimate != "" {
				if in.Estimate, err = parseEstimate(f.estimate); err != nil {
					return err
				}
			}
			if in.Style, err = parseStyle(f.style); err != nil {
				return err
			}

			res, err := app.Plans.AddTask(ctx, projectID, in)
			if err != nil {
				return err
			}
			if after != "" {
				created, action := res.CreatedID, res.Action
				deps, errs := domain.ParseDependencyList(after, created)
				if len(errs) > 0 {
					return fmt.Errorf("task %d was added but --after is invalid: %w", created, errs[0])
				}
				for _, d := range deps {
					linked, err := app.Plans.AddDependency(ctx, projectID, d)
					if err != nil {
						return fmt.Errorf("task %d was added but dependency %s failed: %w", created, d.Notation(), err)
					}
					res = linked
				}
				res.CreatedID = created
				res.Action = action + " after " + after
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation(res))
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().IntVar(&parent, "parent", 0, "Parent task id")
	cmd.Flags().StringVar(&after, "after", "", "Predecessors in dependency notation, e.g. \"3,5SS+2\"")

	return cmd
}

func newTaskEditCmd(app *App) *cobra.Command {
	var f taskFlags
	var name string
	var auto, clearEstimate bool

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			id, err := parseID("task", args[0])
			if err != nil {
				return err
			}

			var patch graph.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("notes") {
				patch.Notes = &f.notes
			}
			if flags.Changed("start") {
				t, err := parseInstant("start", f.start, false)
				if err != nil {
					return err
				}
				patch.Start = &t
			}
			if flags.Changed("end") {
				t, err := parseInstant("end", f.end, true)
				if err != nil {
					return err
				}
				patch.End = &t
			}
			if flags.Changed("duration") {
				patch.Duration = &f.duration
			}
			if flags.Changed("done") {
				patch.PercentComplete = &f.percent
			}
			if flags.Changed("milestone") {
				patch.Milestone = &f.milestone
			}
			if flags.Changed("manual") || flags.Changed("auto") {
				mode := f.mode()
				if auto {
					mode = domain.ScheduleAuto
				}
				patch.Mode = &mode
			}
			if f.estimate != "" {
				if patch.Estimate, err = parseEstimate(f.estimate); err != nil {
					return err
				}
			}
			patch.ClearEstimate = clearEstimate
			if patch.Style, err = parseStyle(f.style); err != nil {
				return err
			}

			res, err := app.Plans.UpdateTask(ctx, projectID, id, patch)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation(res))
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "New task name")
	cmd.Flags().BoolVar(&auto, "auto", false, "Let the scheduler place the task again")
	cmd.Flags().BoolVar(&clearEstimate, "clear-estimate", false, "Remove the three-point estimate")

	return cmd
}

func newTaskRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a task, its subtasks and their links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			id, err := parseID("task", args[0])
			if err != nil {
				return err
			}

			current, err := app.Plans.Get(ctx, projectID)
			if err != nil {
				return err
			}
			if t, ok := current.Task(id); ok && t.IsSummary() {
				title := fmt.Sprintf("Task %d %q has subtasks. Remove it with all of them?", id, t.Name)
				if err := confirmDestructive(app, yes, title); err != nil {
					return err
				}
			}

			res, err := app.Plans.RemoveTask(ctx, projectID, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation(res))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt for summary tasks")

	return cmd
}

func newTaskMoveCmd(app *App) *cobra.Command {
	var parent, index int
	var root bool

	cmd := &cobra.Command{
		Use:   "move ID",
		Short: "Move a task under another parent or to another position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			id, err := parseID("task", args[0])
			if err != nil {
				return err
			}
			if root == cmd.Flags().Changed("parent") {
				return fmt.Errorf("give exactly one of --parent or --root")
			}
			var newParent *int
			if !root {
				newParent = &parent
			}
			res, err := app.Plans.MoveTask(ctx, projectID, id, newParent, index)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation(res))
			return nil
		},
	}

	cmd.Flags().IntVar(&parent, "parent", 0, "New parent task id")
	cmd.Flags().BoolVar(&root, "root", false, "Move to the top level")
	cmd.Flags().IntVar(&index, "index", -1, "Position among the new siblings (default last)")

	return cmd
}

func newTaskIndentCmd(app *App) *cobra.Command {
	return newTaskShiftCmd(app, "indent", "Make a task a subtask of its previous sibling",
		func(ctx context.Context, projectID string, id int) (*contract.PlanResult, error) {
			return app.Plans.IndentTask(ctx, projectID, id)
		})
}

func newTaskOutdentCmd(app *App) *cobra.Command {
	return newTaskShiftCmd(app, "outdent", "Move a task up one outline level",
		func(ctx context.Context, projectID string, id int) (*contract.PlanResult, error) {
			return app.Plans.OutdentTask(ctx, projectID, id)
		})
}

type taskShift func(ctx context.Context, projectID string, id int) (*contract.PlanResult, error)

func newTaskShiftCmd(app *App, use, short string, shift taskShift) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}
			id, err := parseID("task", args[0])
			if err != nil {
				return err
			}
			res, err := shift(ctx, projectID, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation(res))
			return nil
		},
	}
}

func newTaskListCmd(app *App) *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks in outline order",
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
			if tree {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskTree(res, time.Now()))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskTable(res, time.Now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&tree, "tree", false, "Show the outline as a tree")

	return cmd
}
