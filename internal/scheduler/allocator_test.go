package scheduler

import (
	"testing"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allocationInput(g *graph.Graph) AllocationInput {
	return AllocationInput{Calendar: g.Calendar(), Tasks: g.Tasks(), Resources: g.Resources()}
}

func TestOverAllocations_OverlappingAssignments(t *testing.T) {
	g := newNetwork(t)
	a := addTask(t, g, "A", 5)
	start := at(5, 8)
	b, err := g.AddTask(graph.TaskInput{Name: "B", Duration: ptr(4.0), Start: &start})
	require.NoError(t, err)
	r, err := g.AddResource(graph.ResourceInput{Name: "R", Rate: 10})
	require.NoError(t, err)
	require.NoError(t, g.Assign(a, r, 60))
	require.NoError(t, g.Assign(b, r, 70))

	profile := AllocationProfile(allocationInput(g))
	require.Len(t, profile, 1)
	assert.Len(t, profile[0].Days, 6, "Mon 3 to Mon 10")
	assert.InDelta(t, 130.0, profile[0].Peak(), 1e-9)

	over := OverAllocations(profile)
	require.Len(t, over, 3)
	for i, d := range []int{5, 6, 7} {
		assert.Equal(t, at(d, 0), over[i].Date)
		assert.InDelta(t, 130.0, over[i].Percent, 1e-9)
		assert.Equal(t, []int{a, b}, over[i].TaskIDs)
		assert.Equal(t, r, over[i].ResourceID)
	}
}

func TestAllocationProfile_SkipsExceptionDays(t *testing.T) {
	g := newNetwork(t)
	a := addTask(t, g, "A", 5)
	ex, err := domain.ParseException("2025-03-04")
	require.NoError(t, err)
	r, err := g.AddResource(graph.ResourceInput{Name: "R", Exceptions: []domain.ExceptionInterval{ex}})
	require.NoError(t, err)
	require.NoError(t, g.Assign(a, r, 120))

	profile := AllocationProfile(allocationInput(g))
	require.Len(t, profile[0].Days, 4)
	for _, d := range profile[0].Days {
		assert.NotEqual(t, at(4, 0), d.Date)
	}
	assert.Len(t, OverAllocations(profile), 4, "120% exceeds the default 100% capacity")
}

func TestAllocationProfile_CustomCapacity(t *testing.T) {
	g := newNetwork(t)
	a := addTask(t, g, "A", 2)
	r, err := g.AddResource(graph.ResourceInput{Name: "Contractor", Capacity: 150})
	require.NoError(t, err)
	require.NoError(t, g.Assign(a, r, 120))

	assert.Empty(t, OverAllocations(AllocationProfile(allocationInput(g))))
}
