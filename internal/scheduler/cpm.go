package scheduler

import (
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
)

// SlackTolerance is the slack, in project units, at or below which a task is
// critical.
const SlackTolerance = 1e-6

type TaskSchedule struct {
	TaskID   int
	Name     string
	ES       time.Time
	EF       time.Time
	LS       time.Time
	LF       time.Time
	Duration float64
	Slack    float64
	Critical bool
	Summary  bool
}

// Schedule is the result of one CPM pass.
type Schedule struct {
	ProjectStart  time.Time
	ProjectFinish time.Time
	Unit          domain.DurationUnit
	// Tasks are in WBS order.
	Tasks []TaskSchedule
	index map[int]int
}

// Task returns the computed row for a task id.
func (s *Schedule) Task(id int) (TaskSchedule, bool) {
	i, ok := s.index[id]
	if !ok {
		return TaskSchedule{}, false
	}
	return s.Tasks[i], true
}

// CriticalPath returns the critical leaf tasks ordered by early start.
func (s *Schedule) CriticalPath() []TaskSchedule {
	var out []TaskSchedule
	for _, t := range s.Tasks {
		if t.Critical && !t.Summary {
			out = append(out, t)
		}
	}
	CanonicalSort(out)
	return out
}

// CriticalIDs returns the ids of CriticalPath.
func (s *Schedule) CriticalIDs() []int {
	path := s.CriticalPath()
	ids := make([]int, len(path))
	for i, t := range path {
		ids[i] = t.TaskID
	}
	return ids
}

// Dates returns the early dates of every leaf task for write-back.
func (s *Schedule) Dates() map[int]graph.DateRange {
	out := make(map[int]graph.DateRange, len(s.Tasks))
	for _, t := range s.Tasks {
		if !t.Summary {
			out[t.TaskID] = graph.DateRange{Start: t.ES, End: t.EF}
		}
	}
	return out
}

// Compute compiles net and runs CPM with its deterministic durations.
func Compute(net Network) (*Schedule, error) {
	p, err := Compile(net)
	if err != nil {
		return nil, err
	}
	return p.Run(p.Durations()), nil
}

// Run executes the forward and backward passes with the given durations,
// indexed like the plan. Summary entries of durations are ignored.
func (p *Plan) Run(durations []float64) *Schedule {
	if len(durations) != len(p.ids) {
		panic(fmt.Sprintf("scheduler: %d durations for %d tasks", len(durations), len(p.ids)))
	}
	n := len(p.ids)
	es := make([]time.Time, n)
	ef := make([]time.Time, n)
	ls := make([]time.Time, n)
	lf := make([]time.Time, n)
	cal := p.cal

	for _, i := range p.order {
		d := durations[i]
		bound := p.start
		if p.manual[i] {
			bound = p.pinned[i]
		} else {
			for _, e := range p.preds[i] {
				if b := p.forwardBound(e, es, ef, d); b.After(bound) {
					bound = b
				}
			}
		}
		es[i] = p.startAt(bound, d)
		ef[i] = cal.AddDuration(es[i], d)
	}

	finish := cal.SnapForward(p.start)
	for _, i := range p.order {
		if ef[i].After(finish) {
			finish = ef[i]
		}
	}

	for k := len(p.order) - 1; k >= 0; k-- {
		i := p.order[k]
		d := durations[i]
		bound := finish
		for _, e := range p.succs[i] {
			if b := p.backwardBound(e, ls, lf, d); b.Before(bound) {
				bound = b
			}
		}
		lf[i] = p.finishAt(bound, d)
		ls[i] = cal.SubtractDuration(lf[i], d)
	}

	s := &Schedule{
		ProjectStart:  p.start,
		ProjectFinish: finish,
		Unit:          cal.Unit(),
		Tasks:         make([]TaskSchedule, n),
		index:         make(map[int]int, n),
	}
	for _, i := range p.order {
		slack := 0.0
		if !es[i].Equal(ls[i]) {
			slack = cal.WorkingTimeBetween(es[i], ls[i])
		}
		s.Tasks[i] = TaskSchedule{
			TaskID:   p.ids[i],
			Name:     p.names[i],
			ES:       es[i],
			EF:       ef[i],
			LS:       ls[i],
			LF:       lf[i],
			Duration: durations[i],
			Slack:    slack,
			Critical: slack <= SlackTolerance,
		}
	}
	for _, i := range p.rollupOrder {
		row := TaskSchedule{TaskID: p.ids[i], Name: p.names[i], Summary: true}
		for k, c := range p.children[i] {
			child := s.Tasks[c]
			if k == 0 {
				row.ES, row.EF, row.LS, row.LF, row.Slack = child.ES, child.EF, child.LS, child.LF, child.Slack
			}
			if child.ES.Before(row.ES) {
				row.ES = child.ES
			}
			if child.EF.After(row.EF) {
				row.EF = child.EF
			}
			if child.LS.Before(row.LS) {
				row.LS = child.LS
			}
			if child.LF.After(row.LF) {
				row.LF = child.LF
			}
			if child.Slack < row.Slack {
				row.Slack = child.Slack
			}
			row.Critical = row.Critical || child.Critical
		}
		row.Duration = cal.WorkingTimeBetween(row.ES, row.EF)
		s.Tasks[i] = row
	}
	for i, id := range p.ids {
		s.index[id] = i
	}
	return s
}

// startAt normalizes an earliest-start bound for a task of duration d.
func (p *Plan) startAt(bound time.Time, d float64) time.Time {
	if d == 0 {
		return p.cal.SnapForward(bound)
	}
	return p.cal.NextWorkingTime(bound)
}

// finishAt normalizes a latest-finish bound for a task of duration d.
func (p *Plan) finishAt(bound time.Time, d float64) time.Time {
	if d == 0 {
		return p.cal.SnapBackward(bound)
	}
	return p.cal.PrevWorkingTime(bound)
}

// forwardBound is the earliest start a predecessor edge allows for a
// successor of duration d.
func (p *Plan) forwardBound(e edge, es, ef []time.Time, d float64) time.Time {
	cal := p.cal
	switch e.typ {
	case domain.FinishToStart:
		return cal.Shift(ef[e.other], e.lag)
	case domain.StartToStart:
		return cal.Shift(es[e.other], e.lag)
	case domain.FinishToFinish:
		return cal.SubtractDuration(cal.Shift(ef[e.other], e.lag), d)
	case domain.StartToFinish:
		return cal.SubtractDuration(cal.Shift(es[e.other], e.lag), d)
	default:
		panic(fmt.Sprintf("scheduler: unknown dependency type %d", int(e.typ)))
	}
}

// backwardBound is the latest finish a successor edge allows for a
// predecessor of duration d.
func (p *Plan) backwardBound(e edge, ls, lf []time.Time, d float64) time.Time {
	cal := p.cal
	switch e.typ {
	case domain.FinishToStart:
		return cal.Shift(ls[e.other], -e.lag)
	case domain.StartToStart:
		return cal.AddDuration(cal.Shift(ls[e.other], -e.lag), d)
	case domain.FinishToFinish:
		return cal.Shift(lf[e.other], -e.lag)
	case domain.StartToFinish:
		return cal.AddDuration(cal.Shift(lf[e.other], -e.lag), d)
	default:
		panic(fmt.Sprintf("scheduler: unknown dependency type %d", int(e.typ)))
	}
}
