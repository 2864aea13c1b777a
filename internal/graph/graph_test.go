package graph

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

func newGraph(t *testing.T) *Graph {
	t.Helper()
	return New(calendar.MustNew(domain.DefaultCalendar(), domain.UnitDays), monday)
}

func ptr[T any](v T) *T { return &v }

func addTask(t *testing.T, g *Graph, name string, days float64) int {
	t.Helper()
	id, err := g.AddTask(TaskInput{Name: name, Duration: &days})
	require.NoError(t, err)
	return id
}

func addSubtask(t *testing.T, g *Graph, parent int, name string, days float64) int {
	t.Helper()
	id, err := g.AddTask(TaskInput{Name: name, Duration: &days, ParentID: &parent})
	require.NoError(t, err)
	return id
}

func TestAddTask_DerivesEndFromDuration(t *testing.T) {
	g := newGraph(t)
	id := addTask(t, g, "Design", 5)

	task, ok := g.Task(id)
	require.True(t, ok)
	assert.Equal(t, 1, id)
	assert.Equal(t, monday, task.Start)
	assert.Equal(t, time.Date(2025, 3, 7, 16, 0, 0, 0, time.UTC), task.End)
	assert.Equal(t, domain.ScheduleAuto, task.Mode)
}

func TestAddTask_DerivesDurationFromEnd(t *testing.T) {
	g := newGraph(t)
	end := time.Date(2025, 3, 11, 16, 0, 0, 0, time.UTC)
	id, err := g.AddTask(TaskInput{Name: "Build", End: &end})
	require.NoError(t, err)

	task, _ := g.Task(id)
	assert.InDelta(t, 7.0, task.Duration, 1e-9)
}

func TestAddTask_Validation(t *testing.T) {
	g := newGraph(t)
	cases := []TaskInput{
		{Name: ""},
		{Name: "x", Duration: ptr(2.0), End: ptr(monday.Add(48 * time.Hour))},
		{Name: "x", Duration: ptr(-1.0)},
		{Name: "x", PercentComplete: 120},
		{Name: "x", Mode: domain.ScheduleMode("floating")},
		{Name: "x", Estimate: &domain.ThreePoint{Optimistic: 5, Likely: 3, Pessimistic: 9}},
	}
	for i, in := range cases {
		_, err := g.AddTask(in)
		assert.ErrorIs(t, err, domain.ErrValidation, "case %d", i)
	}

	_, err := g.AddTask(TaskInput{Name: "orphan", ParentID: ptr(99)})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
	assert.Equal(t, 0, g.Len())
}

func TestAddTask_Milestone(t *testing.T) {
	g := newGraph(t)
	id, err := g.AddTask(TaskInput{Name: "Go live", Milestone: true, Duration: ptr(3.0)})
	require.NoError(t, err)
	task, _ := g.Task(id)
	assert.Zero(t, task.Duration)
	assert.Equal(t, task.Start, task.End)

	_, err = g.AddTask(TaskInput{Name: "child", ParentID: &id})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateTask_EndRecomputesDuration(t *testing.T) {
	g := newGraph(t)
	id := addTask(t, g, "Design", 5)

	require.NoError(t, g.UpdateTask(id, TaskPatch{End: ptr(time.Date(2025, 3, 4, 16, 0, 0, 0, time.UTC))}))
	task, _ := g.Task(id)
	assert.InDelta(t, 2.0, task.Duration, 1e-9)

	require.NoError(t, g.UpdateTask(id, TaskPatch{Duration: ptr(3.0), Name: ptr("Design v2")}))
	task, _ = g.Task(id)
	assert.Equal(t, "Design v2", task.Name)
	assert.Equal(t, time.Date(2025, 3, 5, 16, 0, 0, 0, time.UTC), task.End)
}

func TestUpdateTask_RejectedPatchLeavesTaskUnchanged(t *testing.T) {
	g := newGraph(t)
	id := addTask(t, g, "Design", 5)
	before, _ := g.Task(id)

	err := g.UpdateTask(id, TaskPatch{Name: ptr("renamed"), PercentComplete: ptr(150.0)})
	assert.ErrorIs(t, err, domain.ErrValidation)
	after, _ := g.Task(id)
	assert.Equal(t, before, after)

	err = g.UpdateTask(42, TaskPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestSummaryRollup(t *testing.T) {
	g := newGraph(t)
	phase := addTask(t, g, "Phase", 1)
	a := addSubtask(t, g, phase, "A", 2)
	b := addSubtask(t, g, phase, "B", 6)
	require.NoError(t, g.UpdateTask(a, TaskPatch{PercentComplete: ptr(100.0)}))
	require.NoError(t, g.UpdateTask(b, TaskPatch{Start: ptr(time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC))}))

	sum, _ := g.Task(phase)
	assert.True(t, sum.IsSummary())
	assert.Equal(t, monday, sum.Start)
	assert.Equal(t, time.Date(2025, 3, 12, 16, 0, 0, 0, time.UTC), sum.End)
	assert.InDelta(t, 8.0, sum.Duration, 1e-9)
	assert.InDelta(t, 25.0, sum.PercentComplete, 1e-9, "duration weighted: 2d done of 8d")

	err := g.UpdateTask(phase, TaskPatch{Duration: ptr(3.0)})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NoError(t, g.UpdateTask(phase, TaskPatch{Name: ptr("Phase 1")}))
}

func TestRemoveTask_CascadesDescendantsAndEdges(t *testing.T) {
	g := newGraph(t)
	phase := addTask(t, g, "Phase", 1)
	a := addSubtask(t, g, phase, "A", 2)
	b := addSubtask(t, g, phase, "B", 2)
	c := addTask(t, g, "C", 1)
	rid, err := g.AddResource(ResourceInput{Name: "Ana", Rate: 100})
	require.NoError(t, err)
	require.NoError(t, g.Assign(a, rid, 50))
	require.NoError(t, g.AddDependency(domain.Dependency{PredecessorID: a, SuccessorID: c}))
	require.NoError(t, g.AddDependency(domain.Dependency{PredecessorID: b, SuccessorID: c, Type: domain.StartToStart}))

	removed, err := g.RemoveTask(phase)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{phase, a, b}, removed)
	assert.Equal(t, 1, g.Len())
	assert.Empty(t, g.Edges())
	ct, _ := g.Task(c)
	assert.Empty(t, ct.Dependencies)

	_, err = g.RemoveTask(phase)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestAddDependency_RejectsCycleAndLeavesEdgesUnchanged(t *testing.T) {
	g := newGraph(t)
	a := addTask(t, g, "A", 1)
	b := addTask(t, g, "B", 1)
	c := addTask(t, g, "C", 1)
	require.NoError(t, g.AddDependency(domain.Dependency{PredecessorID: a, SuccessorID: b}))
	require.NoError(t, g.AddDependency(domain.Dependency{PredecessorID: b, SuccessorID: c, Type: domain.FinishToFinish, Lag: 1}))
	before := g.Edges()

	err := g.AddDependency(domain.Dependency{PredecessorID: c, SuccessorID: a})
	require.ErrorIs(t, err, domain.ErrCyclicDependency)
	se, ok := domain.AsScheduleError(err)
	require.True(t, ok)
	assert.Equal(t, []int{a, b, c}, se.Path)
	assert.Equal(t, before, g.Edges())

	err = g.AddDependency(domain.Dependency{PredecessorID: a, SuccessorID: a})
	assert.ErrorIs(t, err, domain.ErrCyclicDependency)
	assert.Equal(t, before, g.Edges())
}

func TestSummaryRollup_FractionalDurationsStayWithinHundred(t *testing.T) {
	g := newGraph(t)
	phase := addTask(t, g, "Phase", 1)
	for _, d := range []float64{0.1, 0.1, 0.7} {
		id := addSubtask(t, g, phase, "step", d)
		require.NoError(t, g.UpdateTask(id, TaskPatch{PercentComplete: ptr(100.0)}))
	}

	sum, _ := g.Task(phase)
	assert.Equal(t, 100.0, sum.PercentComplete)
	assert.LessOrEqual(t, g.OverallCompletion(), 100.0)

	// The rolled-up summary must load back without tripping validation.
	_, err := Load(g.Calendar(), g.ProjectStart(), g.Snapshot())
	require.NoError(t, err)
}

func TestNonFiniteNumbersAreRejected(t *testing.T) {
	g := newGraph(t)
	a := addTask(t, g, "A", 2)
	b := addTask(t, g, "B", 1)
	r, err := g.AddResource(ResourceInput{Name: "Ana", Rate: 80})
	require.NoError(t, err)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := g.AddTask(TaskInput{Name: "x", Duration: ptr(v)})
		assert.ErrorIs(t, err, domain.ErrValidation, "add duration %v", v)
		_, err = g.AddTask(TaskInput{Name: "x", PercentComplete: v})
		assert.ErrorIs(t, err, domain.ErrValidation, "add percent %v", v)
		_, err = g.AddTask(TaskInput{Name: "x", Estimate: &domain.ThreePoint{Optimistic: 1, Likely: 2, Pessimistic: v}})
		assert.ErrorIs(t, err, domain.ErrValidation, "estimate %v", v)

		err = g.UpdateTask(a, TaskPatch{Duration: ptr(v)})
		assert.ErrorIs(t, err, domain.ErrValidation, "update duration %v", v)
		var schedErr *domain.ScheduleError
		require.True(t, errors.As(err, &schedErr))
		assert.Equal(t, domain.TaskRef(a), schedErr.Entity)
		assert.ErrorIs(t, g.UpdateTask(a, TaskPatch{PercentComplete: ptr(v)}), domain.ErrValidation)

		_, err = g.AddResource(ResourceInput{Name: "Bo", Rate: v})
		assert.ErrorIs(t, err, domain.ErrValidation, "rate %v", v)
		_, err = g.AddResource(ResourceInput{Name: "Bo", Capacity: v})
		assert.ErrorIs(t, err, domain.ErrValidation, "capacity %v", v)
		assert.ErrorIs(t, g.UpdateResource(r, ResourcePatch{Rate: ptr(v)}), domain.ErrValidation)
		assert.ErrorIs(t, g.Assign(a, r, v), domain.ErrValidation, "allocation %v", v)

		assert.ErrorIs(t, g.AddDependency(domain.Dependency{PredecessorID: a, SuccessorID: b, Lag: v}), domain.ErrValidation)
	}

	require.NoError(t, g.AddDependency(domain.Dependency{PredecessorID: a, SuccessorID: b}))
	assert.ErrorIs(t, g.UpdateDependency(a, b, domain.FinishToStart, math.NaN()), domain.ErrValidation)

	task, _ := g.Task(a)
	assert.Equal(t, 2.0, task.Duration)
	assert.Empty(t, task.Assignments)
	assert.Equal(t, 0.0, g.Edges()[0].Lag)
}

func TestAddDependency_Validation(t *testing.T) {
	g := newGraph(t)
	a := addTask(t, g, "A", 1)
	b := addTask(t, g, "B", 1)
	phase := addTask(t, g, "Phase", 1)
	addSubtask(t, g, phase, "child", 1)

	assert.ErrorIs(t, g.AddDependency(domain.Dependency{PredecessorID: a, SuccessorID: 77}), domain.ErrInvalidReference)
	assert.ErrorIs(t, g.AddDependency(domain.Dependency{PredecessorID: 77, SuccessorID: a}), domain.ErrInvalidReference)
	assert.ErrorIs(t, g.AddDependency(domain.Dependency{PredecessorID: phase, SuccessorID: a}), domain.ErrValidation)
	assert.ErrorIs(t, g.AddDependency(domain.Dependency{PredecessorID: a, SuccessorID: b, Type: domain.DependencyType(9)}), domain.ErrValidation)

	require.NoError(t, g.AddDependency(domain.Dependency{PredecessorID: a, SuccessorID: b}))
	assert.ErrorIs(t, g.AddDependency(domain.Dependency{PredecessorID: a, SuccessorID: b, Type: domain.StartToStart}), domain.ErrValidation)

	_, err := g.AddTask(TaskInput{Name: "under a", ParentID: &a})
	assert.ErrorIs(t, err, domain.ErrValidation, "a has a successor")
}

func TestUpdateAndRemoveDependency(t *testing.T) {
	g := newGraph(t)
	a := addTask(t, g, "A", 1)
	b := addTask(t, g, "B", 1)
	require.NoError(t, g.AddDependency(domain.Dependency{PredecessorID: a, SuccessorID: b}))

	require.NoError(t, g.UpdateDependency(a, b, domain.StartToStart, -0.5))
	edges := g.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, "1SS-0.5", edges[0].Notation())

	require.NoError(t, g.RemoveDependency(a, b))
	assert.Empty(t, g.Edges())
	assert.ErrorIs(t, g.RemoveDependency(a, b), domain.ErrInvalidReference)
}

func TestTopologicalOrder_Deterministic(t *testing.T) {
	g := newGraph(t)
	for i := 0; i < 6; i++ {
		addTask(t, g, "t", 1)
	}
	require.NoError(t, g.AddDependency(domain.Dependency{PredecessorID: 5, SuccessorID: 1}))
	require.NoError(t, g.AddDependency(domain.Dependency{PredecessorID: 6, SuccessorID: 2}))
	require.NoError(t, g.AddDependency(domain.Dependency{PredecessorID: 1, SuccessorID: 3}))

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 1, 3, 6, 2}, order)
}

func TestWBSAndMove(t *testing.T) {
	g := newGraph(t)
	p1 := addTask(t, g, "P1", 1)
	a := addSubtask(t, g, p1, "A", 1)
	b := addSubtask(t, g, p1, "B", 1)
	p2 := addTask(t, g, "P2", 1)

	assert.Equal(t, "1.2", g.WBS(b))
	assert.Equal(t, "2", g.WBS(p2))
	assert.Equal(t, []int{p1, a, b, p2}, g.TaskIDs())

	require.NoError(t, g.Indent(b))
	assert.Equal(t, "1.1.1", g.WBS(b))

	require.NoError(t, g.Outdent(b))
	assert.Equal(t, "1.2", g.WBS(b))
	require.NoError(t, g.Outdent(b))
	assert.Equal(t, "2", g.WBS(b))
	assert.Equal(t, "3", g.WBS(p2))

	assert.ErrorIs(t, g.MoveTask(p1, &a, -1), domain.ErrValidation, "cannot move under own subtask")
	assert.ErrorIs(t, g.Outdent(p1), domain.ErrValidation)
	assert.ErrorIs(t, g.Indent(p1), domain.ErrValidation)
}

func TestResourcesAndAssignments(t *testing.T) {
	g := newGraph(t)
	a := addTask(t, g, "A", 2)
	r1, err := g.AddResource(ResourceInput{Name: "Ana", Rate: 80})
	require.NoError(t, err)

	_, err = g.AddResource(ResourceInput{Name: "ana"})
	assert.ErrorIs(t, err, domain.ErrValidation, "names are unique")
	_, err = g.AddResource(ResourceInput{Name: "Bo", Rate: -1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	res, _ := g.Resource(r1)
	assert.Equal(t, domain.DefaultCapacity, res.Capacity)

	require.NoError(t, g.Assign(a, r1, 60))
	require.NoError(t, g.Assign(a, r1, 70))
	task, _ := g.Task(a)
	require.Len(t, task.Assignments, 1)
	assert.Equal(t, 70.0, task.Assignments[0].Allocation)

	assert.ErrorIs(t, g.Assign(a, 9, 50), domain.ErrInvalidReference)
	assert.ErrorIs(t, g.Assign(a, r1, 0), domain.ErrValidation)

	require.NoError(t, g.UpdateResource(r1, ResourcePatch{Rate: ptr(90.0)}))
	res, _ = g.Resource(r1)
	assert.Equal(t, 90.0, res.Rate)

	require.NoError(t, g.RemoveResource(r1))
	task, _ = g.Task(a)
	assert.Empty(t, task.Assignments)
	assert.ErrorIs(t, g.Unassign(a, r1), domain.ErrInvalidReference)
}

func TestCloneAndLoadAreIndependent(t *testing.T) {
	g := newGraph(t)
	a := addTask(t, g, "A", 2)
	b := addTask(t, g, "B", 3)
	require.NoError(t, g.AddDependency(domain.Dependency{PredecessorID: a, SuccessorID: b, Lag: 1}))

	c := g.Clone()
	require.NoError(t, c.UpdateTask(a, TaskPatch{Name: ptr("changed")}))
	orig, _ := g.Task(a)
	assert.Equal(t, "A", orig.Name)

	loaded, err := Load(g.Calendar(), g.ProjectStart(), g.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, g.Tasks(), loaded.Tasks())
	assert.Equal(t, g.Edges(), loaded.Edges())
	assert.Equal(t, g.NextTaskID(), loaded.NextTaskID())
}

func TestLoad_RejectsCycle(t *testing.T) {
	g := newGraph(t)
	a := addTask(t, g, "A", 1)
	b := addTask(t, g, "B", 1)
	snap := g.Snapshot()
	snap.Tasks[0].Dependencies = []domain.Dependency{{PredecessorID: b, SuccessorID: a}}
	snap.Tasks[1].Dependencies = []domain.Dependency{{PredecessorID: a, SuccessorID: b}}

	_, err := Load(g.Calendar(), g.ProjectStart(), snap)
	assert.ErrorIs(t, err, domain.ErrCyclicDependency)
}

func TestApplyDates_SkipsManualTasks(t *testing.T) {
	g := newGraph(t)
	auto := addTask(t, g, "auto", 1)
	manual, err := g.AddTask(TaskInput{Name: "manual", Duration: ptr(1.0), Mode: domain.ScheduleManual})
	require.NoError(t, err)

	later := DateRange{Start: monday.Add(24 * time.Hour), End: monday.Add(33 * time.Hour)}
	g.ApplyDates(map[int]DateRange{auto: later, manual: later, 99: later})

	at, _ := g.Task(auto)
	mt, _ := g.Task(manual)
	assert.Equal(t, later.Start, at.Start)
	assert.Equal(t, monday, mt.Start)
}

func TestOverallCompletion(t *testing.T) {
	g := newGraph(t)
	a := addTask(t, g, "A", 1)
	addTask(t, g, "B", 3)
	require.NoError(t, g.UpdateTask(a, TaskPatch{PercentComplete: ptr(100.0)}))
	assert.InDelta(t, 25.0, g.OverallCompletion(), 1e-9)
}
