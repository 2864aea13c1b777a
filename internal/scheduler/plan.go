package scheduler

import (
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
)

// Network is the read side of a schedule graph that CPM needs.
type Network interface {
	Calendar() *calendar.Calendar
	ProjectStart() time.Time
	Tasks() []domain.Task
	TopologicalOrder() ([]int, error)
}

type edge struct {
	other int
	typ   domain.DependencyType
	lag   float64
}

// Plan is a network compiled into flat index arrays. It is immutable, so a
// single Plan can be run concurrently with different duration vectors.
type Plan struct {
	cal       *calendar.Calendar
	start     time.Time
	ids       []int
	names     []string
	index     map[int]int
	order     []int
	preds     [][]edge
	succs     [][]edge
	durations []float64
	estimates []*domain.ThreePoint
	manual    []bool
	pinned    []time.Time
	summary   []bool
	children  [][]int
	// rollupOrder lists summary indices children-first.
	rollupOrder []int
}

// Compile snapshots net into a Plan. Tasks keep the network's WBS order.
func Compile(net Network) (*Plan, error) {
	tasks := net.Tasks()
	topo, err := net.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	n := len(tasks)
	p := &Plan{
		cal:       net.Calendar(),
		start:     net.ProjectStart(),
		ids:       make([]int, n),
		names:     make([]string, n),
		index:     make(map[int]int, n),
		preds:     make([][]edge, n),
		succs:     make([][]edge, n),
		durations: make([]float64, n),
		estimates: make([]*domain.ThreePoint, n),
		manual:    make([]bool, n),
		pinned:    make([]time.Time, n),
		summary:   make([]bool, n),
		children:  make([][]int, n),
	}
	for i, t := range tasks {
		p.ids[i] = t.ID
		p.names[i] = t.Name
		p.index[t.ID] = i
	}
	for i, t := range tasks {
		p.summary[i] = t.IsSummary()
		p.manual[i] = t.Mode == domain.ScheduleManual
		p.pinned[i] = t.Start
		if !t.Milestone {
			p.durations[i] = t.Duration
		}
		if t.Estimate != nil && !t.Milestone {
			e := *t.Estimate
			p.estimates[i] = &e
		}
		for _, c := range t.Children {
			ci, ok := p.index[c]
			if !ok {
				return nil, domain.Errorf(domain.ErrInvalidReference, domain.TaskRef(t.ID), "child task %d does not exist", c)
			}
			p.children[i] = append(p.children[i], ci)
		}
		for _, d := range t.Dependencies {
			pi, ok := p.index[d.PredecessorID]
			if !ok {
				return nil, domain.Errorf(domain.ErrInvalidReference, domain.EdgeRef(d.PredecessorID, t.ID), "predecessor task %d does not exist", d.PredecessorID)
			}
			p.preds[i] = append(p.preds[i], edge{other: pi, typ: d.Type, lag: d.Lag})
			p.succs[pi] = append(p.succs[pi], edge{other: i, typ: d.Type, lag: d.Lag})
		}
	}
	for _, id := range topo {
		i, ok := p.index[id]
		if !ok {
			return nil, domain.Errorf(domain.ErrInvalidReference, domain.TaskRef(id), "ordered task %d does not exist", id)
		}
		if !p.summary[i] {
			p.order = append(p.order, i)
		}
	}

	var visit func(i int)
	visit = func(i int) {
		for _, c := range p.children[i] {
			visit(c)
		}
		if p.summary[i] {
			p.rollupOrder = append(p.rollupOrder, i)
		}
	}
	for i, t := range tasks {
		if t.ParentID == nil {
			visit(i)
		}
	}
	return p, nil
}

// Len returns the number of tasks in the plan.
func (p *Plan) Len() int { return len(p.ids) }

// TaskID returns the task id at index i.
func (p *Plan) TaskID(i int) int { return p.ids[i] }

// Name returns the task name at index i.
func (p *Plan) Name(i int) string { return p.names[i] }

// Index returns the plan index of a task id.
func (p *Plan) Index(id int) (int, bool) {
	i, ok := p.index[id]
	return i, ok
}

// IsSummary reports whether index i is a summary task.
func (p *Plan) IsSummary(i int) bool { return p.summary[i] }

// Estimate returns the three-point estimate at index i, if any.
func (p *Plan) Estimate(i int) (domain.ThreePoint, bool) {
	if p.estimates[i] == nil {
		return domain.ThreePoint{}, false
	}
	return *p.estimates[i], true
}

// Durations returns a fresh copy of the deterministic duration vector.
func (p *Plan) Durations() []float64 {
	return append([]float64(nil), p.durations...)
}

func (p *Plan) Calendar() *calendar.Calendar { return p.cal }

// ProjectStart returns the project start the plan was compiled with.
func (p *Plan) ProjectStart() time.Time { return p.start }
