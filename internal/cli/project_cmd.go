package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectCreateCmd(app),
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectSetCmd(app),
		newProjectDeleteCmd(app),
	)

	return cmd
}

// calendarFlags are shared by create and set.
type calendarFlags struct {
	workdays string
	holidays []string
	hours    float64
	dayStart string
}

func (f *calendarFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.workdays, "workdays", "", "Working weekdays, e.g. mon,tue,wed,thu,fri")
	cmd.Flags().StringSliceVar(&f.holidays, "holiday", nil, "Non-working date (YYYY-MM-DD), repeatable")
	cmd.Flags().Float64Var(&f.hours, "hours", 0, "Working hours per day")
	cmd.Flags().StringVar(&f.dayStart, "day-start", "", "Start of the working day (HH:MM)")
}

func (f *calendarFlags) holidayDates() ([]time.Time, error) {
	out := make([]time.Time, 0, len(f.holidays))
	for _, h := range f.holidays {
		d, err := parseDate("holiday", h)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func newProjectCreateCmd(app *App) *cobra.Command {
	var shortID, start, target, unit, currency string
	var cal calendarFlags

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := parseDate("start", start)
			if err != nil {
				return err
			}
			req := contract.NewCreateProjectRequest(args[0], shortID, startDate)
			req.Currency = strings.ToUpper(currency)
			if req.Unit, err = domain.ParseDurationUnit(unit); err != nil {
				return err
			}
			if target != "" {
				t, err := parseDate("target", target)
				if err != nil {
					return err
				}
				req.TargetDate = &t
			}
			if cal.workdays != "" {
				if req.Calendar.WorkingDays, err = parseWeekdays(cal.workdays); err != nil {
					return err
				}
			}
			if req.Calendar.Holidays, err = cal.holidayDates(); err != nil {
				return err
			}
			if cal.hours > 0 {
				req.Calendar.HoursPerDay = cal.hours
			}
			if cal.dayStart != "" {
				if req.Calendar.DayStart, err = parseClock("day-start", cal.dayStart); err != nil {
					return err
				}
			}

			p, err := app.Projects.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s [%s]\n", p.Name, p.ShortID)
			return nil
		},
	}

	cmd.Flags().StringVar(&shortID, "id", "", "Short ID (3-6 uppercase letters + 2-4 digits, e.g. WEB01)")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&target, "target", "", "Target finish date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&unit, "unit", "days", "Duration unit (days|hours)")
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code for costs, e.g. EUR")
	cal.register(cmd)
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}
}

func newProjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show project settings and calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), cmd, app)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectDetail(p, time.Now()))
			return nil
		},
	}
}

func newProjectSetCmd(app *App) *cobra.Command {
	var name, start, target, unit, currency string
	var clearTarget bool
	var cal calendarFlags

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change project settings and reschedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectID, err := resolveProjectID(ctx, cmd, app)
			if err != nil {
				return err
			}

			var s contract.ProjectSettings
			flags := cmd.Flags()
			if flags.Changed("name") {
				s.Name = &name
			}
			if flags.Changed("start") {
				d, err := parseDate("start", start)
				if err != nil {
					return err
				}
				s.StartDate = &d
			}
			if flags.Changed("target") {
				d, err := parseDate("target", target)
				if err != nil {
					return err
				}
				s.TargetDate = &d
			}
			s.ClearTarget = clearTarget
			if flags.Changed("unit") {
				u, err := domain.ParseDurationUnit(unit)
				if err != nil {
					return err
				}
				s.Unit = &u
			}
			if flags.Changed("currency") {
				c := strings.ToUpper(currency)
				s.Currency = &c
			}
			if flags.Changed("workdays") {
				days, err := parseWeekdays(cal.workdays)
				if err != nil {
					return err
				}
				s.WorkingDays = &days
			}
			if flags.Changed("holiday") {
				hs, err := cal.holidayDates()
				if err != nil {
					return err
				}
				s.Holidays = &hs
			}
			if flags.Changed("hours") {
				s.HoursPerDay = &cal.hours
			}
			if flags.Changed("day-start") {
				d, err := parseClock("day-start", cal.dayStart)
				if err != nil {
					return err
				}
				s.DayStart = &d
			}

			res, err := app.Projects.UpdateSettings(ctx, projectID, s)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&target, "target", "", "Target finish date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearTarget, "clear-target", false, "Remove the target date")
	cmd.Flags().StringVar(&unit, "unit", "", "Duration unit (days|hours)")
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code")
	cal.register(cmd)

	return cmd
}

func newProjectDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a project with its network, baselines and history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, cmd, app)
			if err != nil {
				return err
			}
			if err := confirmDestructive(app, yes, fmt.Sprintf("Delete project %s and everything in it?", p.DisplayID())); err != nil {
				return err
			}
			if err := app.Projects.Delete(ctx, p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s [%s]\n", p.Name, p.DisplayID())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
