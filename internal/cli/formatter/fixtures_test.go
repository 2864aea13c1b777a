package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
	"github.com/alexanderramin/tempo/internal/scheduler"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/require"
)

// 2025-03-03 is a Monday; the default calendar works 08:00-16:00.
func at(d, h int) time.Time {
	return time.Date(2025, 3, d, h, 0, 0, 0, time.UTC)
}

// samplePlan builds Design(5d) -> Build(3d) under a "Launch" summary plus a
// one-day "Docs" task off the critical path, with one over-allocated
// resource on Build.
func samplePlan(t *testing.T) *contract.PlanResult {
	t.Helper()
	p := testutil.NewTestProject("Website", testutil.WithShortID("WEB01"), testutil.WithCurrency("EUR"))
	g := graph.New(calendar.MustNew(p.Calendar, p.Unit), p.ProjectStart())

	add := func(name string, days float64, parent *int) int {
		id, err := g.AddTask(graph.TaskInput{Name: name, Duration: &days, ParentID: parent})
		require.NoError(t, err)
		return id
	}
	launch, err := g.AddTask(graph.TaskInput{Name: "Launch"})
	require.NoError(t, err)
	design := add("Design", 5, &launch)
	build := add("Build", 3, &launch)
	add("Docs", 1, nil)
	require.NoError(t, g.AddDependency(domain.Dependency{PredecessorID: design, SuccessorID: build, Type: domain.FinishToStart}))

	rid, err := g.AddResource(graph.ResourceInput{Name: "Ada", Rate: 100})
	require.NoError(t, err)
	require.NoError(t, g.Assign(build, rid, 150))

	s, err := scheduler.Compute(g)
	require.NoError(t, err)
	g.ApplyDates(s.Dates())

	tasks := g.Tasks()
	resources := g.Resources()
	profile := scheduler.AllocationProfile(scheduler.AllocationInput{Calendar: g.Calendar(), Tasks: tasks, Resources: resources})
	target := at(14, 0)
	p.TargetDate = &target
	return &contract.PlanResult{
		Project:         p,
		Tasks:           tasks,
		Resources:       resources,
		WBS:             g.WBSCodes(),
		Schedule:        s,
		Risk:            scheduler.ComputeRisk(scheduler.RiskInput{Now: at(3, 8), TargetDate: &target, Finish: s.ProjectFinish}),
		OverAllocations: scheduler.OverAllocations(profile),
		Action:          "add task 4",
		CreatedID:       4,
	}
}
