package importer

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/scheduler"
)

func TestBuild_MinimalProject(t *testing.T) {
	res, err := Build(validMinimalDocument(), Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Issues)

	assert.NotEmpty(t, res.Project.ID)
	assert.Equal(t, "WEB01", res.Project.ShortID)
	assert.Equal(t, domain.UnitDays, res.Project.Unit)
	assert.Equal(t, time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC), res.Graph.ProjectStart())

	task, ok := res.Graph.Task(1)
	require.True(t, ok)
	assert.Equal(t, "Design", task.Name)
	assert.Equal(t, 5.0, task.Duration)
	assert.Equal(t, domain.ScheduleAuto, task.Mode)
}

func TestBuild_FullProject(t *testing.T) {
	doc := &Document{
		Project: ProjectDoc{Name: "Office move", StartDate: "2025-03-03", TargetDate: ptrStr("2025-04-30"), Unit: "days", Currency: "EUR"},
		Calendar: &CalendarDoc{
			WorkingDays: []string{"mon", "tue", "wed", "thu"},
			Holidays:    []string{"2025-03-10"},
			HoursPerDay: ptrFloat(7.5),
			DayStart:    "09:00",
		},
		Resources: []ResourceDoc{
			{ID: 1, Name: "Mover", Rate: 400, Exceptions: []string{"2025-03-05", "2025-03-17 to 2025-03-19"}},
		},
		Tasks: []TaskDoc{
			{ID: 1, Name: "Prepare"},
			{ID: 2, Name: "Pack", ParentID: ptrInt(1), Duration: ptrFloat(3), Estimate: &EstimateDoc{Optimistic: 2, Likely: 3, Pessimistic: 6}},
			{ID: 3, Name: "Label", ParentID: ptrInt(1), Duration: ptrFloat(1), Predecessors: []string{"2SS+1"}},
			{ID: 4, Name: "Move", Duration: ptrFloat(2), Predecessors: []string{"2", "3FF-1"},
				Assignments: []AssignmentDoc{{ResourceID: 1, Allocation: 50}}},
			{ID: 5, Name: "Done", Milestone: true, Predecessors: []string{"4"}, Mode: "manual", Style: map[string]string{"color": "red"}},
		},
	}

	res, err := Build(doc, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Issues)

	cfg := res.Project.Calendar
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday}, cfg.WorkingDays)
	assert.Equal(t, 7.5, cfg.HoursPerDay)
	assert.Equal(t, 9*time.Hour, cfg.DayStart)
	require.Len(t, cfg.Holidays, 1)
	require.NotNil(t, res.Project.TargetDate)
	assert.Equal(t, "EUR", res.Project.Currency)

	g := res.Graph
	assert.Equal(t, 5, g.Len())
	assert.Equal(t, "1.2", g.WBS(3))

	label, _ := g.Task(3)
	require.Len(t, label.Dependencies, 1)
	assert.Equal(t, "2SS+1", label.Dependencies[0].Notation())

	move, _ := g.Task(4)
	assert.Len(t, move.Dependencies, 2)
	require.Len(t, move.Assignments, 1)
	assert.Equal(t, 50.0, move.Assignments[0].Allocation)

	done, _ := g.Task(5)
	assert.True(t, done.Milestone)
	assert.Zero(t, done.Duration)
	assert.Equal(t, domain.ScheduleManual, done.Mode)
	assert.Equal(t, "red", done.Style["color"])

	pack, _ := g.Task(2)
	require.NotNil(t, pack.Estimate)
	assert.Equal(t, 6.0, pack.Estimate.Pessimistic)

	mover, ok := g.Resource(1)
	require.True(t, ok)
	assert.Len(t, mover.Exceptions, 2)
	assert.Equal(t, domain.DefaultCapacity, mover.Capacity)
}

func TestBuild_EndDateDerivesDuration(t *testing.T) {
	doc := validMinimalDocument()
	doc.Tasks[0] = TaskDoc{ID: 1, Name: "Design", Start: "2025-03-03", End: "2025-03-07"}

	res, err := Build(doc, Options{})
	require.NoError(t, err)
	task, _ := res.Graph.Task(1)
	assert.InDelta(t, 5.0, task.Duration, 1e-9)
}

func TestBuild_ChildBeforeParent(t *testing.T) {
	doc := validMinimalDocument()
	doc.Tasks = []TaskDoc{
		{ID: 2, Name: "Child", ParentID: ptrInt(1)},
		{ID: 1, Name: "Parent"},
	}
	res, err := Build(doc, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	parent, _ := res.Graph.Task(1)
	assert.Equal(t, []int{2}, parent.Children)
}

// messyDocument has one valid chain plus one of each kind of skippable issue.
func messyDocument() *Document {
	return &Document{
		Project:   ProjectDoc{Name: "Messy", StartDate: "2025-03-03"},
		Resources: []ResourceDoc{{ID: 1, Name: "Dev", Rate: 100, Exceptions: []string{"next tuesday"}}},
		Tasks: []TaskDoc{
			{ID: 1, Name: "A", Duration: ptrFloat(2), Predecessors: []string{"2"}},
			{ID: 2, Name: "B", Duration: ptrFloat(2), Predecessors: []string{"1", "abc", "99FS"}},
			{ID: 3, Name: "", Duration: ptrFloat(1)},
			{ID: 4, Name: "Orphan", ParentID: ptrInt(42)},
			{ID: 5, Name: "C", Assignments: []AssignmentDoc{{ResourceID: 7, Allocation: 100}}},
			{ID: 1, Name: "Again"},
		},
	}
}

func TestBuild_SkipsAndReportsIssues(t *testing.T) {
	res, err := Build(messyDocument(), Options{})
	require.NoError(t, err)

	paths := make(map[string]bool)
	for _, is := range res.Issues {
		paths[is.Path] = true
	}
	for _, want := range []string{
		"resources[0].exceptions[0]",
		"tasks[1].predecessors[0]", // closes a cycle with 2 -> 1
		"tasks[1].predecessors[1]",
		"tasks[1].predecessors[2]",
		"tasks[2].name",
		"tasks[3].parent_id",
		"tasks[4].assignments[0]",
		"tasks[5].id",
	} {
		assert.True(t, paths[want], "missing issue at %s; got %v", want, res.Issues)
	}

	g := res.Graph
	assert.Equal(t, 3, g.Len(), "A, B and C survive")
	a, _ := g.Task(1)
	assert.Equal(t, "A", a.Name)
	require.Len(t, a.Dependencies, 1)
	assert.Equal(t, 2, a.Dependencies[0].PredecessorID)
	b, _ := g.Task(2)
	assert.Empty(t, b.Dependencies)
	_, err = g.TopologicalOrder()
	assert.NoError(t, err)
}

func TestBuild_StrictRejects(t *testing.T) {
	res, err := Build(messyDocument(), Options{Strict: true})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.GreaterOrEqual(t, len(rejected.Issues), 8)

	_, err = Build(validMinimalDocument(), Options{Strict: true})
	assert.NoError(t, err)
}

func TestBuild_ProjectProblemsAlwaysFail(t *testing.T) {
	cases := map[string]func(d *Document){
		"missing name":      func(d *Document) { d.Project.Name = "" },
		"bad start":         func(d *Document) { d.Project.StartDate = "March 3rd" },
		"target before":     func(d *Document) { d.Project.TargetDate = ptrStr("2025-01-01") },
		"bad short id":      func(d *Document) { d.Project.ShortID = "w1" },
		"bad unit":          func(d *Document) { d.Project.Unit = "weeks" },
		"no working days":   func(d *Document) { d.Calendar = &CalendarDoc{WorkingDays: []string{"funday"}} },
		"bad hours per day": func(d *Document) { d.Calendar = &CalendarDoc{HoursPerDay: ptrFloat(25)} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			doc := validMinimalDocument()
			mutate(doc)
			_, err := Build(doc, Options{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation), err.Error())
		})
	}
}

func TestBuild_LimitsRejectWholeImport(t *testing.T) {
	doc := validMinimalDocument()
	doc.Tasks = append(doc.Tasks, TaskDoc{ID: 2, Name: "Extra"})
	_, err := Build(doc, Options{Limits: Limits{MaxTasks: 1}})
	assert.True(t, errors.Is(err, domain.ErrCapacityExceeded))
}

func TestExportImportRoundTrip(t *testing.T) {
	doc := &Document{
		Project:  ProjectDoc{ShortID: "MOVE01", Name: "Office move", StartDate: "2025-03-03", TargetDate: ptrStr("2025-04-30"), Unit: "days", Currency: "EUR"},
		Calendar: &CalendarDoc{Holidays: []string{"2025-03-10"}},
		Resources: []ResourceDoc{
			{ID: 1, Name: "Mover", Rate: 400, Capacity: 80, Exceptions: []string{"2025-03-17 to 2025-03-19"}},
		},
		Tasks: []TaskDoc{
			{ID: 1, Name: "Prepare", Notes: "boxes first"},
			{ID: 2, Name: "Pack", ParentID: ptrInt(1), Duration: ptrFloat(3), PercentComplete: 50,
				Estimate: &EstimateDoc{Optimistic: 2, Likely: 3, Pessimistic: 6}},
			{ID: 3, Name: "Move", Duration: ptrFloat(2), Predecessors: []string{"2FS+1"},
				Assignments: []AssignmentDoc{{ResourceID: 1, Allocation: 50}}},
			{ID: 4, Name: "Done", Milestone: true, Predecessors: []string{"3"}},
		},
		Baselines: []BaselineDoc{{
			ID: "b-1", Name: "Plan", CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			Snapshots: []SnapshotDoc{{TaskID: 2, Name: "Pack", WBS: "1.1", Duration: 3}},
		}},
	}
	first, err := Build(doc, Options{Strict: true})
	require.NoError(t, err)
	sched, err := scheduler.Compute(first.Graph)
	require.NoError(t, err)
	first.Graph.ApplyDates(sched.Dates())

	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, Export(first.Project, first.Graph, first.Baselines)))
	reread, err := ReadDocument(&buf)
	require.NoError(t, err)
	assert.Equal(t, DocumentVersion, reread.Version)

	second, err := Build(reread, Options{Strict: true})
	require.NoError(t, err)

	assert.Equal(t, first.Project.ShortID, second.Project.ShortID)
	assert.Equal(t, first.Project.Name, second.Project.Name)
	assert.Equal(t, first.Project.StartDate, second.Project.StartDate)
	assert.Equal(t, *first.Project.TargetDate, *second.Project.TargetDate)
	assert.Equal(t, first.Project.Currency, second.Project.Currency)
	assert.Equal(t, first.Project.Calendar, second.Project.Calendar)

	require.Equal(t, first.Graph.Len(), second.Graph.Len())
	for _, want := range first.Graph.Tasks() {
		got, ok := second.Graph.Task(want.ID)
		require.True(t, ok, "task %d", want.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Notes, got.Notes)
		assert.Equal(t, want.ParentID, got.ParentID)
		assert.Equal(t, want.Children, got.Children)
		assert.InDelta(t, want.Duration, got.Duration, 1e-9)
		assert.Equal(t, want.Milestone, got.Milestone)
		assert.Equal(t, want.Estimate, got.Estimate)
		assert.Equal(t, want.Dependencies, got.Dependencies)
		assert.Equal(t, want.Assignments, got.Assignments)
		if !want.IsSummary() {
			assert.Equal(t, want.Start, got.Start)
			assert.Equal(t, want.PercentComplete, got.PercentComplete)
		}
	}
	assert.Equal(t, first.Graph.Resources(), second.Graph.Resources())
	assert.Equal(t, first.Baselines[0].Snapshots, second.Baselines[0].Snapshots)
}
