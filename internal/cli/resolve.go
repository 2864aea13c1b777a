package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/spf13/cobra"
)

// resolveProject resolves the --project flag. Without the flag the only
// existing project is used.
func resolveProject(ctx context.Context, cmd *cobra.Command, app *App) (*domain.Project, error) {
	ref, _ := cmd.Flags().GetString("project")
	if ref != "" {
		return app.Projects.Resolve(ctx, ref)
	}
	projects, err := app.Projects.List(ctx)
	if err != nil {
		return nil, err
	}
	switch len(projects) {
	case 0:
		return nil, fmt.Errorf("no projects yet (create one with: tempo project create)")
	case 1:
		return projects[0], nil
	default:
		return nil, fmt.Errorf("%d projects exist; choose one with --project", len(projects))
	}
}

func resolveProjectID(ctx context.Context, cmd *cobra.Command, app *App) (string, error) {
	p, err := resolveProject(ctx, cmd, app)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// parseID parses a task or resource id argument, accepting an optional '#'.
func parseID(kind, s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, s)
	}
	return id, nil
}

const instantLayout = "2006-01-02 15:04"

// parseDate accepts YYYY-MM-DD.
func parseDate(flag, s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: use YYYY-MM-DD", flag, s)
	}
	return t, nil
}

// parseInstant accepts "YYYY-MM-DD HH:MM", "YYYY-MM-DDTHH:MM" or a bare
// date. A bare date means the start of that day, or its end when endOfDay is
// set.
func parseInstant(flag, s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(strings.Replace(s, "T", " ", 1))
	if t, err := time.Parse(instantLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: use YYYY-MM-DD or \"YYYY-MM-DD HH:MM\"", flag, s)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

// parseClock parses HH:MM into an offset from midnight.
func parseClock(flag, s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid --%s %q: use HH:MM", flag, s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// parseWeekdays parses a comma separated list such as "mon,tue,wed".
func parseWeekdays(s string) ([]time.Weekday, error) {
	var out []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if len(part) > 3 {
			part = part[:3]
		}
		d, ok := weekdayNames[part]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		out = append(out, d)
	}
	return out, nil
}

// parseEstimate parses "o/m/p", e.g. "3/5/10".
func parseEstimate(s string) (*domain.ThreePoint, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid --estimate %q: use optimistic/likely/pessimistic", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --estimate %q: %w", s, err)
		}
		v[i] = f
	}
	e := &domain.ThreePoint{Optimistic: v[0], Likely: v[1], Pessimistic: v[2]}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// parseStyle parses key=value pairs.
func parseStyle(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --style format %q, expected key=value", kv)
		}
		out[k] = v
	}
	return out, nil
}
