package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/scheduler"
)

func taskLevel(wbs string) int {
	if wbs == "" {
		return 0
	}
	return strings.Count(wbs, ".")
}

func criticalSet(res *contract.PlanResult) map[int]bool {
	out := map[int]bool{}
	if res.Schedule == nil {
		return out
	}
	for _, id := range res.Schedule.CriticalIDs() {
		out[id] = true
	}
	return out
}

func taskFlags(t domain.Task, critical bool) string {
	var flags []string
	if critical {
		flags = append(flags, StyleRed.Render("C"))
	}
	if t.Milestone {
		flags = append(flags, StylePurple.Render("M"))
	}
	if t.Mode == domain.ScheduleManual {
		flags = append(flags, StyleYellow.Render("F"))
	}
	if t.Estimate != nil {
		flags = append(flags, StyleBlue.Render("E"))
	}
	return strings.Join(flags, "")
}

func depList(t domain.Task) string {
	if len(t.Dependencies) == 0 {
		return Dim("--")
	}
	parts := make([]string, len(t.Dependencies))
	for i, d := range t.Dependencies {
		parts[i] = d.Notation()
	}
	return strings.Join(parts, ",")
}

// FormatTaskTable renders every task in outline order with its computed
// dates, float and predecessors.
func FormatTaskTable(res *contract.PlanResult, now time.Time) string {
	if len(res.Tasks) == 0 {
		return Dim("No tasks yet. Add one with: tempo task add <name>") + "\n"
	}
	unit := res.Project.Unit
	critical := criticalSet(res)

	headers := []string{"ID", "WBS", "TASK", "START", "FINISH", "DUR", "FLOAT", "DONE", "PRED", ""}
	rows := make([][]string, 0, len(res.Tasks))
	for _, t := range res.Tasks {
		wbs := res.WBS[t.ID]
		name := strings.Repeat("  ", taskLevel(wbs)) + t.Name
		switch {
		case t.IsSummary():
			name = Bold(name)
		case critical[t.ID]:
			name = StyleRed.Render(name)
		}

		float := Dim("--")
		if res.Schedule != nil {
			if ts, ok := res.Schedule.Task(t.ID); ok && !ts.Summary {
				float = FormatDuration(ts.Slack, unit)
			}
		}

		done := RenderCompactBar(t.PercentComplete/100, 6, t.IsSummary()) + " " + FormatPercent(t.PercentComplete)
		if t.State(now) == domain.TaskOverdue {
			done += StyleRed.Render(" !")
		}

		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			Dim(wbs),
			name,
			FormatInstant(t.Start),
			FormatInstant(t.End),
			FormatDuration(t.Duration, unit),
			float,
			done,
			depList(t),
			taskFlags(t, critical[t.ID]),
		})
	}
	align := []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight}
	return RenderAlignedTable(headers, rows, align)
}

// FormatTaskTree renders the outline with progress state and durations.
func FormatTaskTree(res *contract.PlanResult, now time.Time) string {
	critical := criticalSet(res)
	lastSibling := map[int]bool{}
	for _, t := range res.Tasks {
		siblings := rootsOrChildren(res, t.ParentID)
		if len(siblings) > 0 && siblings[len(siblings)-1] == t.ID {
			lastSibling[t.ID] = true
		}
	}

	items := make([]TreeItem, 0, len(res.Tasks))
	for _, t := range res.Tasks {
		wbs := res.WBS[t.ID]
		items = append(items, TreeItem{
			Title:    fmt.Sprintf("%s %s", t.Name, Dim("#"+strconv.Itoa(t.ID))),
			WBS:      wbs,
			Level:    taskLevel(wbs),
			IsLast:   lastSibling[t.ID],
			State:    t.State(now),
			Critical: critical[t.ID] && !t.IsSummary(),
			Detail:   FormatDuration(t.Duration, res.Project.Unit) + " " + StatePill(t.State(now)),
		})
	}
	return RenderTree(items)
}

func rootsOrChildren(res *contract.PlanResult, parent *int) []int {
	if parent != nil {
		if p, ok := res.Task(*parent); ok {
			return p.Children
		}
		return nil
	}
	var roots []int
	for _, t := range res.Tasks {
		if t.ParentID == nil {
			roots = append(roots, t.ID)
		}
	}
	return roots
}

// FormatResources lists resources with rate, capacity and exceptions.
func FormatResources(res *contract.PlanResult) string {
	if len(res.Resources) == 0 {
		return Dim("No resources yet. Add one with: tempo resource add <name> --rate <n>") + "\n"
	}
	headers := []string{"ID", "NAME", "RATE", "CAPACITY", "EXCEPTIONS"}
	rows := make([][]string, 0, len(res.Resources))
	for _, r := range res.Resources {
		exc := Dim("--")
		if len(r.Exceptions) > 0 {
			parts := make([]string, len(r.Exceptions))
			for i, e := range r.Exceptions {
				parts[i] = e.String()
			}
			exc = strings.Join(parts, ", ")
		}
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			Bold(r.Name),
			FormatMoney(r.Rate, res.Project.Currency),
			FormatPercent(r.EffectiveCapacity()),
			exc,
		})
	}
	return RenderAlignedTable(headers, rows, []Align{AlignRight, AlignLeft, AlignRight, AlignRight})
}

// FormatScheduleSummary renders project finish, risk and the critical path.
func FormatScheduleSummary(res *contract.PlanResult) string {
	var b strings.Builder
	p := res.Project
	s := res.Schedule

	b.WriteString(Header(p.Name) + "\n")
	if s != nil {
		fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("START "), FormatInstant(s.ProjectStart))
		fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("FINISH"), StyleBold.Render(FormatInstant(s.ProjectFinish)))
	}
	if p.TargetDate != nil {
		fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("TARGET"), FormatDate(*p.TargetDate))
	}
	fmt.Fprintf(&b, "%s  %s", StyleDim.Render("RISK  "), RiskIndicator(res.Risk.Level))
	if res.Risk.DaysLeft != nil {
		fmt.Fprintf(&b, "  %s", Dim(fmt.Sprintf("buffer %.1f days", res.Risk.BufferDays)))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("DONE  "), RenderProgress(res.Completion/100, 20))

	if s != nil {
		crit := s.CriticalPath()
		if len(crit) > 0 {
			names := make([]string, len(crit))
			for i, ts := range crit {
				names[i] = fmt.Sprintf("%s (#%d)", ts.Name, ts.TaskID)
			}
			fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("CRIT  "), StyleRed.Render(strings.Join(names, " → ")))
		}
	}
	if w := FormatOverAllocations(res.OverAllocations); w != "" {
		b.WriteString("\n" + w)
	}
	return b.String()
}

// FormatOverAllocations warns about resource days above capacity, one line
// per resource with its worst day.
func FormatOverAllocations(over []scheduler.OverAllocation) string {
	if len(over) == 0 {
		return ""
	}
	type worst struct {
		name string
		days int
		peak scheduler.OverAllocation
	}
	byRes := map[int]*worst{}
	for _, o := range over {
		w, ok := byRes[o.ResourceID]
		if !ok {
			w = &worst{name: o.Name, peak: o}
			byRes[o.ResourceID] = w
		}
		w.days++
		if o.Percent > w.peak.Percent {
			w.peak = o
		}
	}
	ids := make([]int, 0, len(byRes))
	for id := range byRes {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var b strings.Builder
	for _, id := range ids {
		w := byRes[id]
		fmt.Fprintf(&b, "%s %s over-allocated on %d day(s), peak %s of %s on %s\n",
			StyleYellow.Render("⚠"), Bold(w.name), w.days,
			StyleRed.Render(FormatPercent(w.peak.Percent)), FormatPercent(w.peak.Capacity), FormatDate(w.peak.Date))
	}
	return b.String()
}

// FormatMutation is the one-line confirmation printed after an edit.
func FormatMutation(res *contract.PlanResult) string {
	var b strings.Builder
	b.WriteString(StyleGreen.Render("✔ ") + res.Action)
	if len(res.Removed) > 1 {
		ids := make([]string, len(res.Removed))
		for i, id := range res.Removed {
			ids[i] = strconv.Itoa(id)
		}
		b.WriteString(Dim(" (removed " + strings.Join(ids, ", ") + ")"))
	}
	if res.Schedule != nil {
		fmt.Fprintf(&b, "  %s %s", Dim("finish"), FormatInstant(res.Schedule.ProjectFinish))
	}
	if res.Risk.Level != "" {
		b.WriteString("  " + RiskIndicator(res.Risk.Level))
	}
	b.WriteString("\n")
	if w := FormatOverAllocations(res.OverAllocations); w != "" {
		b.WriteString(w)
	}
	return b.String()
}
