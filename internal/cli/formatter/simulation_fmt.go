package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/tempo/internal/contract"
)

const histogramWidth = 30

// FormatSimulation renders the finish distribution of a Monte Carlo run.
func FormatSimulation(res *contract.SimulationResult) string {
	r := res.Result
	unit := res.Project.Unit
	var b strings.Builder

	b.WriteString(Header("Finish forecast") + "\n")
	fmt.Fprintf(&b, "%s\n\n", Dim(fmt.Sprintf("%d iterations · %s · seed %d", r.Iterations, r.Distribution, r.Seed)))

	rows := [][]string{
		{"CPM", FormatInstant(res.Finish)},
		{"P50", FormatInstant(r.P50)},
		{"P80", StyleBold.Render(FormatInstant(r.P80))},
		{"P90", FormatInstant(r.P90)},
		{"EARLIEST", FormatInstant(r.Earliest)},
		{"LATEST", FormatInstant(r.Latest)},
	}
	b.WriteString(RenderTable([]string{"", "FINISH"}, rows))

	fmt.Fprintf(&b, "\n%s  mean %s · σ %s · range %s to %s\n", StyleDim.Render("DURATION"),
		FormatDuration(r.Mean, unit), FormatDuration(r.StdDev, unit),
		FormatDuration(r.Min, unit), FormatDuration(r.Max, unit))
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("RISK    "), RiskIndicator(res.Risk.Level))

	if len(r.Histogram) > 0 {
		b.WriteString("\n" + Header("Distribution") + "\n")
		peak := 0
		for _, bin := range r.Histogram {
			peak = max(peak, bin.Count)
		}
		for _, bin := range r.Histogram {
			label := fmt.Sprintf("%s–%s", trimFloat(bin.Lower), FormatDuration(bin.Upper, unit))
			fmt.Fprintf(&b, "%14s %s %s\n", label, RenderHistogramBar(bin.Count, peak, histogramWidth), Dim(strconv.Itoa(bin.Count)))
		}
	}

	if len(r.Drivers) > 0 {
		b.WriteString("\n" + Header("Schedule drivers") + "\n")
		rows = rows[:0]
		for _, d := range r.Drivers {
			rows = append(rows, []string{strconv.Itoa(d.TaskID), d.Name, FormatPercent(d.Frequency * 100)})
		}
		b.WriteString(RenderAlignedTable([]string{"ID", "TASK", "CRITICAL"}, rows, []Align{AlignRight, AlignLeft, AlignRight}))
	}
	return b.String()
}
