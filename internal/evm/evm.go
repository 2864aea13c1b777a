// Package evm computes earned-value metrics against a baseline.
package evm

import (
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/scheduler"
)

// DefaultCurvePoints is the number of samples on the planned-value curve.
const DefaultCurvePoints = 10

// Index is a ratio that may be undefined because its denominator is zero.
type Index struct {
	Value   float64
	Defined bool
}

func defined(v float64) Index { return Index{Value: v, Defined: true} }

func (i Index) String() string {
	if !i.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", i.Value)
}

type Metrics struct {
	BAC float64
	PV  float64
	EV  float64
	AC  float64
	CV  float64
	SV  float64
	CPI Index
	SPI Index
	EAC Index
	VAC Index
}

// Derive computes the variances and indices from the four base values.
// Indices with a zero denominator are reported undefined.
func Derive(bac, pv, ev, ac float64) Metrics {
	m := Metrics{BAC: bac, PV: pv, EV: ev, AC: ac, CV: ev - ac, SV: ev - pv}
	if ac != 0 {
		m.CPI = defined(ev / ac)
	}
	if pv != 0 {
		m.SPI = defined(ev / pv)
	}
	if m.CPI.Defined && m.CPI.Value != 0 {
		m.EAC = defined(bac / m.CPI.Value)
		m.VAC = defined(bac - m.EAC.Value)
	}
	return m
}

type TaskMetrics struct {
	TaskID int
	Name   string
	Metrics
}

type CurvePoint struct {
	Date time.Time
	PV   float64
}

type Report struct {
	BaselineID   string
	BaselineName string
	StatusDate   time.Time
	Tasks        []TaskMetrics
	Project      Metrics
	Curve        []CurvePoint
}

type Input struct {
	Calendar   *calendar.Calendar
	Baseline   domain.Baseline
	Tasks      []domain.Task
	Resources  []domain.Resource
	StatusDate time.Time
	// CurvePoints defaults to DefaultCurvePoints when zero.
	CurvePoints int
}

// Compute evaluates every leaf task and the project as of the status date.
// Budgets come from baseline dates and current rates; actual cost is the
// work realized on each resource's calendar up to the status date.
func Compute(in Input) Report {
	resources := make(map[int]domain.Resource, len(in.Resources))
	for _, r := range in.Resources {
		resources[r.ID] = r
	}

	report := Report{
		BaselineID:   in.Baseline.ID,
		BaselineName: in.Baseline.Name,
		StatusDate:   in.StatusDate,
	}
	var bac, pv, ev, ac float64
	for _, t := range in.Tasks {
		if t.IsSummary() {
			continue
		}
		tb := budget(t, resources, in.Baseline)
		tpv := plannedValue(in.Calendar, tb, in.Baseline.Snapshots[t.ID], in.StatusDate)
		tev := t.PercentComplete / 100 * tb
		tac := actualCost(in.Calendar, t, resources, in.StatusDate)

		report.Tasks = append(report.Tasks, TaskMetrics{TaskID: t.ID, Name: t.Name, Metrics: Derive(tb, tpv, tev, tac)})
		bac += tb
		pv += tpv
		ev += tev
		ac += tac
	}
	report.Project = Derive(bac, pv, ev, ac)
	report.Curve = plannedValueCurve(in, resources)
	return report
}

// budget is baseline duration x sum(allocation x rate). Tasks added after
// the baseline have no budget.
func budget(t domain.Task, resources map[int]domain.Resource, b domain.Baseline) float64 {
	snap, ok := b.Snapshots[t.ID]
	if !ok {
		return 0
	}
	var rate float64
	for _, a := range t.Assignments {
		if r, ok := resources[a.ResourceID]; ok {
			rate += a.Allocation / 100 * r.Rate
		}
	}
	return snap.Duration * rate
}

// plannedValue is the budget scaled by the share of baseline working time
// elapsed by the status date.
func plannedValue(cal *calendar.Calendar, bac float64, snap domain.TaskSnapshot, status time.Time) float64 {
	if bac == 0 || snap.End.IsZero() {
		return 0
	}
	if snap.Duration <= 0 {
		if status.Before(snap.End) {
			return 0
		}
		return bac
	}
	until := status
	if until.After(snap.End) {
		until = snap.End
	}
	if !until.After(snap.Start) {
		return 0
	}
	frac := cal.WorkingTimeBetween(snap.Start, until) / snap.Duration
	if frac > 1 {
		frac = 1
	}
	return bac * frac
}

// actualCost is the cost of work realized between the task's start and the
// status date.
func actualCost(cal *calendar.Calendar, t domain.Task, resources map[int]domain.Resource, status time.Time) float64 {
	until := status
	if until.After(t.End) {
		until = t.End
	}
	var cost float64
	for _, a := range t.Assignments {
		r, ok := resources[a.ResourceID]
		if !ok {
			continue
		}
		cost += scheduler.AssignmentWork(cal, r, t.Start, until) * a.Allocation / 100 * r.Rate
	}
	return cost
}

// plannedValueCurve samples project PV evenly between the baseline's first
// start and last finish.
func plannedValueCurve(in Input, resources map[int]domain.Resource) []CurvePoint {
	var first, last time.Time
	for _, s := range in.Baseline.Snapshots {
		if s.Summary {
			continue
		}
		if first.IsZero() || s.Start.Before(first) {
			first = s.Start
		}
		if last.IsZero() || s.End.After(last) {
			last = s.End
		}
	}
	if first.IsZero() || !last.After(first) {
		return nil
	}
	points := in.CurvePoints
	if points <= 0 {
		points = DefaultCurvePoints
	}
	if points < 2 {
		points = 2
	}
	step := last.Sub(first) / time.Duration(points-1)
	curve := make([]CurvePoint, points)
	for i := range curve {
		at := first.Add(step * time.Duration(i))
		if i == points-1 {
			at = last
		}
		var pv float64
		for _, t := range in.Tasks {
			if t.IsSummary() {
				continue
			}
			pv += plannedValue(in.Calendar, budget(t, resources, in.Baseline), in.Baseline.Snapshots[t.ID], at)
		}
		curve[i] = CurvePoint{Date: at, PV: pv}
	}
	return curve
}
