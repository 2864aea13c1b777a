// Package graph holds the schedule network: tasks keyed by stable integer
// ids, their hierarchy, dependency edges, resources and assignments.
//
// Every mutation validates before it changes anything, so a rejected call
// leaves the graph exactly as it was.
package graph

import (
	"math"
	"sort"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
)

type Graph struct {
	cal            *calendar.Calendar
	start          time.Time
	tasks          map[int]*domain.Task
	roots          []int
	resources      map[int]*domain.Resource
	nextTaskID     int
	nextResourceID int
}

// Snapshot is a self-contained copy of a graph's contents. Tasks are in WBS
// order, so parents always precede their children.
type Snapshot struct {
	Tasks          []domain.Task
	Resources      []domain.Resource
	NextTaskID     int
	NextResourceID int
}

// New returns an empty graph scheduled on cal from projectStart.
func New(cal *calendar.Calendar, projectStart time.Time) *Graph {
	return &Graph{
		cal:            cal,
		start:          projectStart,
		tasks:          make(map[int]*domain.Task),
		resources:      make(map[int]*domain.Resource),
		nextTaskID:     1,
		nextResourceID: 1,
	}
}

// Load rebuilds a graph from a snapshot, validating every reference and
// rejecting cycles.
func Load(cal *calendar.Calendar, projectStart time.Time, snap Snapshot) (*Graph, error) {
	g := New(cal, projectStart)
	for _, r := range snap.Resources {
		if err := g.InsertResource(r); err != nil {
			return nil, err
		}
	}
	for _, t := range snap.Tasks {
		bare := t.Clone()
		bare.Children = nil
		bare.Dependencies = nil
		bare.Assignments = nil
		if err := g.InsertTask(bare); err != nil {
			return nil, err
		}
	}
	for _, t := range snap.Tasks {
		for _, a := range t.Assignments {
			if err := g.Assign(t.ID, a.ResourceID, a.Allocation); err != nil {
				return nil, err
			}
		}
		for _, d := range t.Dependencies {
			d.SuccessorID = t.ID
			if err := g.AddDependency(d); err != nil {
				return nil, err
			}
		}
	}
	if snap.NextTaskID > g.nextTaskID {
		g.nextTaskID = snap.NextTaskID
	}
	if snap.NextResourceID > g.nextResourceID {
		g.nextResourceID = snap.NextResourceID
	}
	g.rollup()
	return g, nil
}

func (g *Graph) Calendar() *calendar.Calendar { return g.cal }

func (g *Graph) ProjectStart() time.Time { return g.start }

// Len returns the number of tasks.
func (g *Graph) Len() int { return len(g.tasks) }

func (g *Graph) NextTaskID() int { return g.nextTaskID }

func (g *Graph) NextResourceID() int { return g.nextResourceID }

// Task returns a copy of the task with the given id.
func (g *Graph) Task(id int) (domain.Task, bool) {
	t, ok := g.tasks[id]
	if !ok {
		return domain.Task{}, false
	}
	return t.Clone(), true
}

// Tasks returns copies of all tasks in WBS order.
func (g *Graph) Tasks() []domain.Task {
	ids := g.TaskIDs()
	out := make([]domain.Task, len(ids))
	for i, id := range ids {
		out[i] = g.tasks[id].Clone()
	}
	return out
}

// TaskIDs returns task ids in WBS order (depth-first, children in order).
func (g *Graph) TaskIDs() []int {
	out := make([]int, 0, len(g.tasks))
	var walk func(ids []int)
	walk = func(ids []int) {
		for _, id := range ids {
			out = append(out, id)
			walk(g.tasks[id].Children)
		}
	}
	walk(g.roots)
	return out
}

// Children returns the ordered child ids of id, or the roots for nil.
func (g *Graph) Children(parent *int) []int {
	if parent == nil {
		return append([]int(nil), g.roots...)
	}
	if t, ok := g.tasks[*parent]; ok {
		return append([]int(nil), t.Children...)
	}
	return nil
}

// Descendants returns every task below id, depth-first.
func (g *Graph) Descendants(id int) []int {
	var out []int
	t, ok := g.tasks[id]
	if !ok {
		return nil
	}
	for _, c := range t.Children {
		out = append(out, c)
		out = append(out, g.Descendants(c)...)
	}
	return out
}

// Leaves returns ids of tasks without children in WBS order.
func (g *Graph) Leaves() []int {
	var out []int
	for _, id := range g.TaskIDs() {
		if !g.tasks[id].IsSummary() {
			out = append(out, id)
		}
	}
	return out
}

// Resource returns a copy of the resource with the given id.
func (g *Graph) Resource(id int) (domain.Resource, bool) {
	r, ok := g.resources[id]
	if !ok {
		return domain.Resource{}, false
	}
	return r.Clone(), true
}

// Resources returns copies of all resources ordered by id.
func (g *Graph) Resources() []domain.Resource {
	ids := make([]int, 0, len(g.resources))
	for id := range g.resources {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]domain.Resource, len(ids))
	for i, id := range ids {
		out[i] = g.resources[id].Clone()
	}
	return out
}

// Edges returns every dependency ordered by (successor, predecessor).
func (g *Graph) Edges() []domain.Dependency {
	var out []domain.Dependency
	for _, t := range g.tasks {
		out = append(out, t.Dependencies...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SuccessorID != out[j].SuccessorID {
			return out[i].SuccessorID < out[j].SuccessorID
		}
		return out[i].PredecessorID < out[j].PredecessorID
	})
	return out
}

// Snapshot copies the graph's contents.
func (g *Graph) Snapshot() Snapshot {
	return Snapshot{
		Tasks:          g.Tasks(),
		Resources:      g.Resources(),
		NextTaskID:     g.nextTaskID,
		NextResourceID: g.nextResourceID,
	}
}

// Clone returns an independent structural copy sharing only the immutable
// calendar.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		cal:            g.cal,
		start:          g.start,
		tasks:          make(map[int]*domain.Task, len(g.tasks)),
		roots:          append([]int(nil), g.roots...),
		resources:      make(map[int]*domain.Resource, len(g.resources)),
		nextTaskID:     g.nextTaskID,
		nextResourceID: g.nextResourceID,
	}
	for id, t := range g.tasks {
		ct := t.Clone()
		c.tasks[id] = &ct
	}
	for id, r := range g.resources {
		cr := r.Clone()
		c.resources[id] = &cr
	}
	return c
}

// DateRange is a scheduled start and finish.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ApplyDates writes computed dates back onto auto-scheduled leaf tasks and
// recomputes summary rollups. Manual tasks and unknown ids are ignored.
func (g *Graph) ApplyDates(dates map[int]DateRange) {
	for id, dr := range dates {
		t, ok := g.tasks[id]
		if !ok || t.IsSummary() || t.Mode == domain.ScheduleManual {
			continue
		}
		t.Start, t.End = dr.Start, dr.End
	}
	g.rollup()
}

// rollup derives summary dates, duration and duration-weighted completion
// from descendants, bottom-up.
func (g *Graph) rollup() {
	var visit func(id int)
	visit = func(id int) {
		t := g.tasks[id]
		if !t.IsSummary() {
			return
		}
		var start, end time.Time
		var weighted, weight, plain float64
		for i, cid := range t.Children {
			visit(cid)
			c := g.tasks[cid]
			if i == 0 || c.Start.Before(start) {
				start = c.Start
			}
			if i == 0 || c.End.After(end) {
				end = c.End
			}
			weighted += c.PercentComplete * c.Duration
			weight += c.Duration
			plain += c.PercentComplete
		}
		t.Start, t.End = start, end
		t.Duration = g.cal.WorkingTimeBetween(start, end)
		if weight > 0 {
			t.PercentComplete = clampPercent(weighted / weight)
		} else {
			t.PercentComplete = clampPercent(plain / float64(len(t.Children)))
		}
		t.Milestone = false
	}
	for _, id := range g.roots {
		visit(id)
	}
}

// OverallCompletion is the duration-weighted completion of all leaf tasks.
func (g *Graph) OverallCompletion() float64 {
	var weighted, weight float64
	for _, t := range g.tasks {
		if t.IsSummary() {
			continue
		}
		weighted += t.PercentComplete * t.Duration
		weight += t.Duration
	}
	if weight == 0 {
		return 0
	}
	return clampPercent(weighted / weight)
}

// clampPercent keeps averaged percentages inside [0, 100] where float
// rounding of the weighted sum would otherwise overshoot.
func clampPercent(p float64) float64 {
	return math.Min(100, math.Max(0, p))
}
