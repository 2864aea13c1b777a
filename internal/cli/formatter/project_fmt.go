package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

// FormatProjectList renders a styled project list inside a bordered box.
func FormatProjectList(projects []*domain.Project) string {
	if len(projects) == 0 {
		return Dim("No projects yet. Create one with: tempo project create <name> --start YYYY-MM-DD") + "\n"
	}
	headers := []string{"ID", "NAME", "START", "TARGET", "UNIT", "UPDATED"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		id := p.ShortID
		if strings.TrimSpace(id) == "" {
			id = TruncID(p.ID)
		}
		target := Dim("--")
		if p.TargetDate != nil {
			target = FormatDate(*p.TargetDate)
		}
		rows = append(rows, []string{
			id,
			Bold(p.Name),
			FormatDate(p.StartDate),
			target,
			string(p.Unit),
			Dim(HumanTimestamp(p.UpdatedAt)),
		})
	}
	return RenderBox("Projects", RenderTable(headers, rows))
}

// FormatProjectDetail renders the project's settings and calendar.
func FormatProjectDetail(p *domain.Project, now time.Time) string {
	var b strings.Builder
	field := func(label, value string) {
		fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render(fmt.Sprintf("%-9s", label)), value)
	}

	b.WriteString(StyleBold.Render(p.Name) + "\n\n")
	field("ID", p.DisplayID())
	field("UUID", TruncID(p.ID))
	field("START", FormatDate(p.StartDate))
	if p.TargetDate != nil {
		field("TARGET", FormatDate(*p.TargetDate)+"  "+Dim(RelativeDateFrom(*p.TargetDate, now)))
	} else {
		field("TARGET", Dim("--"))
	}
	field("UNIT", string(p.Unit))
	if p.Currency != "" {
		field("CURRENCY", p.Currency)
	}

	cal := p.Calendar
	days := make([]string, len(cal.WorkingDays))
	for i, d := range cal.WorkingDays {
		days[i] = d.String()[:3]
	}
	field("WORKDAYS", strings.Join(days, " "))
	end := cal.DayStart + time.Duration(cal.HoursPerDay*float64(time.Hour))
	field("HOURS", fmt.Sprintf("%s-%s (%gh)", clock(cal.DayStart), clock(end), cal.HoursPerDay))
	if len(cal.Holidays) > 0 {
		hs := make([]string, len(cal.Holidays))
		for i, h := range cal.Holidays {
			hs[i] = h.Format(domain.DateLayout)
		}
		field("HOLIDAYS", strings.Join(hs, ", "))
	}
	field("CREATED", HumanDate(p.CreatedAt))
	return RenderBox("Project", b.String())
}

func clock(d time.Duration) string {
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%02d:%02d", h, m)
}
