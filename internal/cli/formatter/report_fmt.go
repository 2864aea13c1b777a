package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderramin/tempo/internal/baseline"
	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/evm"
	"github.com/alexanderramin/tempo/internal/scheduler"
)

var rightNumbers = []Align{AlignRight, AlignLeft, AlignRight, AlignRight}

// FormatCosts renders cost per resource, per task and, when present, per
// calendar period.
func FormatCosts(res *contract.CostResult, taskNames map[int]string) string {
	cur := res.Project.Currency
	unit := res.Project.Unit
	var b strings.Builder

	b.WriteString(Header("Cost by resource") + "\n")
	rows := make([][]string, 0, len(res.Report.Resources))
	for _, r := range res.Report.Resources {
		rows = append(rows, []string{strconv.Itoa(r.ResourceID), Bold(r.Name), FormatDuration(r.Work, unit), FormatMoney(r.Cost, cur)})
	}
	b.WriteString(RenderAlignedTable([]string{"ID", "RESOURCE", "WORK", "COST"}, rows, rightNumbers))

	if len(res.Report.Tasks) > 0 {
		b.WriteString("\n" + Header("Cost by task") + "\n")
		rows = rows[:0]
		for _, t := range res.Report.Tasks {
			rows = append(rows, []string{strconv.Itoa(t.TaskID), taskNames[t.TaskID], FormatDuration(t.Work, unit), FormatMoney(t.Cost, cur)})
		}
		b.WriteString(RenderAlignedTable([]string{"ID", "TASK", "WORK", "COST"}, rows, rightNumbers))
	}

	if len(res.Periods) > 0 {
		b.WriteString("\n" + Header("Cost by period") + "\n")
		rows = rows[:0]
		for _, p := range res.Periods {
			rows = append(rows, []string{p.Label, FormatDate(p.Start), FormatDate(p.End), FormatMoney(p.Cost, cur)})
		}
		b.WriteString(RenderAlignedTable([]string{"PERIOD", "FROM", "TO", "COST"}, rows, []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight}))
	}

	fmt.Fprintf(&b, "\n%s  %s\n", StyleDim.Render("TOTAL"), StyleBold.Render(FormatMoney(res.Report.Total, cur)))
	return b.String()
}

// FormatAllocation renders each resource's peak load and the days it
// exceeds capacity.
func FormatAllocation(res *contract.AllocationResult) string {
	if len(res.Profile) == 0 {
		return Dim("No resources assigned.") + "\n"
	}
	var b strings.Builder
	b.WriteString(Header("Resource load") + "\n")

	over := map[int]int{}
	for _, o := range res.OverAllocations {
		over[o.ResourceID]++
	}
	rows := make([][]string, 0, len(res.Profile))
	for _, l := range res.Profile {
		peak := l.Peak()
		peakStr := FormatPercent(peak)
		if peak > l.Capacity+1e-9 {
			peakStr = StyleRed.Render(peakStr)
		}
		days := Dim("0")
		if n := over[l.ResourceID]; n > 0 {
			days = StyleRed.Render(strconv.Itoa(n))
		}
		rows = append(rows, []string{
			strconv.Itoa(l.ResourceID),
			Bold(l.Name),
			FormatPercent(l.Capacity),
			peakStr,
			strconv.Itoa(len(l.Days)),
			days,
		})
	}
	b.WriteString(RenderAlignedTable([]string{"ID", "RESOURCE", "CAPACITY", "PEAK", "DAYS", "OVER"}, rows,
		[]Align{AlignRight, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight}))

	if len(res.OverAllocations) > 0 {
		b.WriteString("\n" + Header("Over-allocated days") + "\n")
		rows = rows[:0]
		for _, o := range res.OverAllocations {
			rows = append(rows, []string{FormatDate(o.Date), o.Name, StyleRed.Render(FormatPercent(o.Percent)), FormatPercent(o.Capacity), joinIDs(o.TaskIDs)})
		}
		b.WriteString(RenderAlignedTable([]string{"DATE", "RESOURCE", "LOAD", "CAPACITY", "TASKS"}, rows,
			[]Align{AlignLeft, AlignLeft, AlignRight, AlignRight}))
	}
	return b.String()
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

func indexStyled(i evm.Index) string {
	if !i.Defined {
		return Dim(i.String())
	}
	switch {
	case i.Value < 0.9:
		return StyleRed.Render(i.String())
	case i.Value < 1:
		return StyleYellow.Render(i.String())
	default:
		return StyleGreen.Render(i.String())
	}
}

func varianceStyled(v float64) string {
	s := money(v)
	if v > 0 {
		s = "+" + s
	}
	switch {
	case v < 0:
		return StyleRed.Render(s)
	case v > 0:
		return StyleGreen.Render(s)
	default:
		return s
	}
}

// FormatEVM renders project and per-task earned value metrics and the
// planned value curve.
func FormatEVM(res *contract.EVMResult) string {
	r := res.Report
	m := r.Project
	cur := res.Project.Currency
	var b strings.Builder

	title := fmt.Sprintf("Earned value at %s", FormatDate(r.StatusDate))
	b.WriteString(Header(title) + "\n")
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("BASELINE"), r.BaselineName)

	rows := [][]string{
		{"BAC", FormatMoney(m.BAC, cur), "budget at completion"},
		{"PV", FormatMoney(m.PV, cur), "planned value"},
		{"EV", FormatMoney(m.EV, cur), "earned value"},
		{"AC", FormatMoney(m.AC, cur), "actual cost"},
		{"CV", varianceStyled(m.CV), "cost variance"},
		{"SV", varianceStyled(m.SV), "schedule variance"},
		{"CPI", indexStyled(m.CPI), "cost performance index"},
		{"SPI", indexStyled(m.SPI), "schedule performance index"},
		{"EAC", m.EAC.String(), "estimate at completion"},
		{"VAC", m.VAC.String(), "variance at completion"},
	}
	b.WriteString(RenderAlignedTable([]string{"METRIC", "VALUE", ""}, rows, []Align{AlignLeft, AlignRight}))

	if len(r.Tasks) > 0 {
		b.WriteString("\n" + Header("By task") + "\n")
		rows = rows[:0]
		for _, t := range r.Tasks {
			rows = append(rows, []string{
				strconv.Itoa(t.TaskID), t.Name,
				money(t.Metrics.PV), money(t.Metrics.EV), money(t.Metrics.AC),
				indexStyled(t.Metrics.CPI), indexStyled(t.Metrics.SPI),
			})
		}
		b.WriteString(RenderAlignedTable([]string{"ID", "TASK", "PV", "EV", "AC", "CPI", "SPI"}, rows,
			[]Align{AlignRight, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight}))
	}

	if len(r.Curve) > 0 {
		b.WriteString("\n" + Header("Planned value curve") + "\n")
		peak := r.Curve[len(r.Curve)-1].PV
		for _, p := range r.Curve {
			pct := 0.0
			if peak > 0 {
				pct = p.PV / peak
			}
			fmt.Fprintf(&b, "%-15s %s %s\n", FormatDate(p.Date), RenderCompactBar(pct, 20, false), money(p.PV))
		}
	}
	return b.String()
}

// FormatComparison renders a baseline comparison: project finish variance,
// the per-task grid and the status summary.
func FormatComparison(res *contract.CompareResult) string {
	c := res.Comparison
	unit := res.Project.Unit
	var b strings.Builder

	b.WriteString(Header("Baseline "+c.BaselineName) + "\n")
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("CAPTURED"), FormatInstant(c.CapturedAt))
	fmt.Fprintf(&b, "%s  %s → %s  %s  %s\n", StyleDim.Render("FINISH  "),
		FormatInstant(c.BaselineFinish), FormatInstant(c.CurrentFinish),
		FormatSigned(c.FinishVariance, unit), VarianceIndicator(c.Status))
	b.WriteString("\n")

	rows := make([][]string, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		name := strings.Repeat("  ", taskLevel(t.WBS)) + t.Name
		if t.Summary {
			name = Bold(name)
		}
		row := []string{strconv.Itoa(t.TaskID), Dim(t.WBS), name}
		switch t.Kind {
		case baseline.KindNew:
			row = append(row, Dim("--"), FormatDate(t.CurrentEnd), "", "", StyleBlue.Render("+ new"))
		case baseline.KindDeleted:
			row = append(row, FormatDate(t.BaselineEnd), Dim("--"), "", "", Dim("− deleted"))
		default:
			row = append(row,
				FormatDate(t.BaselineEnd), FormatDate(t.CurrentEnd),
				FormatSigned(t.StartVariance, unit), FormatSigned(t.EndVariance, unit),
				VarianceIndicator(t.Status))
		}
		rows = append(rows, row)
	}
	b.WriteString(RenderAlignedTable(
		[]string{"ID", "WBS", "TASK", "BASE END", "CUR END", "ΔSTART", "ΔEND", "STATUS"}, rows,
		[]Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight}))

	s := c.Summary
	fmt.Fprintf(&b, "\n%s %d ahead · %d on track · %d behind · %d new · %d deleted\n",
		StyleDim.Render("SUMMARY"), s.Ahead, s.OnTrack, s.Behind, s.New, s.Deleted)
	fmt.Fprintf(&b, "%s start %s · end %s\n", StyleDim.Render("AVERAGE"),
		FormatSigned(s.AvgStartVariance, unit), FormatSigned(s.AvgEndVariance, unit))
	return b.String()
}

// FormatBaselines lists captured baselines, newest first.
func FormatBaselines(baselines []domain.Baseline) string {
	if len(baselines) == 0 {
		return Dim("No baselines. Capture one with: tempo baseline capture <name>") + "\n"
	}
	sorted := append([]domain.Baseline(nil), baselines...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })

	rows := make([][]string, 0, len(sorted))
	for _, bl := range sorted {
		rows = append(rows, []string{TruncID(bl.ID), Bold(bl.Name), FormatInstant(bl.CreatedAt), strconv.Itoa(len(bl.Snapshots))})
	}
	return RenderAlignedTable([]string{"ID", "NAME", "CAPTURED", "TASKS"}, rows, []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight})
}

// FormatCriticalPath renders the critical tasks with their early dates.
func FormatCriticalPath(s *scheduler.Schedule) string {
	path := s.CriticalPath()
	if len(path) == 0 {
		return Dim("No critical tasks.") + "\n"
	}
	rows := make([][]string, 0, len(path))
	for _, t := range path {
		rows = append(rows, []string{strconv.Itoa(t.TaskID), StyleRed.Render(t.Name), FormatInstant(t.ES), FormatInstant(t.EF), FormatDuration(t.Duration, s.Unit)})
	}
	return RenderAlignedTable([]string{"ID", "TASK", "START", "FINISH", "DUR"}, rows,
		[]Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignRight})
}
