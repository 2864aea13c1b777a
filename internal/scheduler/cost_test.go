package scheduler

import (
	"testing"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func costInput(g *graph.Graph) CostInput {
	return CostInput{Calendar: g.Calendar(), Tasks: g.Tasks(), Resources: g.Resources()}
}

func TestComputeCosts(t *testing.T) {
	g := newNetwork(t)
	a := addTask(t, g, "A", 5)
	b := addTask(t, g, "B", 2)
	dev, err := g.AddResource(graph.ResourceInput{Name: "Dev", Rate: 100})
	require.NoError(t, err)
	ex, err := domain.ParseException("2025-03-07")
	require.NoError(t, err)
	qa, err := g.AddResource(graph.ResourceInput{Name: "QA", Rate: 80, Exceptions: []domain.ExceptionInterval{ex}})
	require.NoError(t, err)
	require.NoError(t, g.Assign(a, dev, 50))
	require.NoError(t, g.Assign(a, qa, 100))
	require.NoError(t, g.Assign(b, dev, 100))

	report := ComputeCosts(costInput(g))
	require.Len(t, report.Resources, 2)
	assert.InDelta(t, 2.5+2, report.Resources[0].Work, 1e-9)
	assert.InDelta(t, 450.0, report.Resources[0].Cost, 1e-9)
	assert.InDelta(t, 4.0, report.Resources[1].Work, 1e-9, "Friday is an exception day")
	assert.InDelta(t, 320.0, report.Resources[1].Cost, 1e-9)
	assert.InDelta(t, 770.0, report.Total, 1e-9)

	require.Len(t, report.Tasks, 2)
	assert.InDelta(t, 570.0, report.Tasks[0].Cost, 1e-9)
	assert.InDelta(t, 200.0, report.Tasks[1].Cost, 1e-9)
}

func TestComputeCosts_AsOf(t *testing.T) {
	g := newNetwork(t)
	a := addTask(t, g, "A", 5)
	r, err := g.AddResource(graph.ResourceInput{Name: "Dev", Rate: 100})
	require.NoError(t, err)
	require.NoError(t, g.Assign(a, r, 100))

	in := costInput(g)
	in.AsOf = at(4, 16)
	assert.InDelta(t, 200.0, ComputeCosts(in).Total, 1e-9)
}

func TestCostBreakdown_DailyAndMonthly(t *testing.T) {
	g := newNetwork(t)
	a := addTask(t, g, "A", 5)
	r, err := g.AddResource(graph.ResourceInput{Name: "Dev", Rate: 100})
	require.NoError(t, err)
	require.NoError(t, g.Assign(a, r, 100))

	daily := CostBreakdown(costInput(g))
	require.Len(t, daily, 5)
	assert.Equal(t, "2025-03-03", daily[0].Label)
	var sum float64
	for _, p := range daily {
		sum += p.Cost
	}
	assert.InDelta(t, 500.0, sum, 1e-9)

	long := addTask(t, g, "Long", 40)
	require.NoError(t, g.Assign(long, r, 50))
	monthly := CostBreakdown(costInput(g))
	require.Len(t, monthly, 2)
	assert.Equal(t, "2025-03", monthly[0].Label)
	assert.Equal(t, "2025-04", monthly[1].Label)
	total := ComputeCosts(costInput(g)).Total
	assert.InDelta(t, total, monthly[0].Cost+monthly[1].Cost, 1e-9)

	assert.Nil(t, CostBreakdown(CostInput{Calendar: g.Calendar()}))
}
