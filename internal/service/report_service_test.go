package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostService_Costs(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	p := s.newProject(t, "Costs", "COS01")
	a := s.addTask(t, p.ID, "A", 5)
	dev := s.addResource(t, p.ID, "Dev", 100)
	_, err := s.plans.Assign(ctx, p.ID, a, dev, 100)
	require.NoError(t, err)

	res, err := s.costs.Costs(ctx, contract.NewCostRequest(p.ID))
	require.NoError(t, err)
	assert.InDelta(t, 500.0, res.Report.Total, 1e-9)
	require.Len(t, res.Report.Resources, 1)
	assert.InDelta(t, 5.0, res.Report.Resources[0].Work, 1e-9)
	assert.NotEmpty(t, res.Periods)

	req := contract.NewCostRequest(p.ID)
	req.AsOf = ptr(at(4, 16))
	req.Breakdown = false
	res, err = s.costs.Costs(ctx, req)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, res.Report.Total, 1e-9)
	assert.Empty(t, res.Periods)
}

func TestCostService_AllocationFlagsOverload(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	p := s.newProject(t, "Load", "LOA01")
	a := s.addTask(t, p.ID, "A", 5)
	b := s.addTask(t, p.ID, "B", 4)
	r := s.addResource(t, p.ID, "R", 10)
	_, err := s.plans.Assign(ctx, p.ID, a, r, 60)
	require.NoError(t, err)
	_, err = s.plans.Assign(ctx, p.ID, b, r, 70)
	require.NoError(t, err)

	res, err := s.costs.Allocation(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, res.Profile, 1)
	assert.InDelta(t, 130.0, res.Profile[0].Peak(), 1e-9)
	require.Len(t, res.OverAllocations, 4, "Monday to Thursday")
	for _, o := range res.OverAllocations {
		assert.Equal(t, []int{a, b}, o.TaskIDs)
	}

	plan, err := s.plans.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, plan.OverAllocations, 4, "plan results carry the same warnings")
}

func TestEVMService_RequiresBaseline(t *testing.T) {
	s := setupServices(t)
	p := s.newProject(t, "EVM", "EVM01")
	s.addTask(t, p.ID, "A", 1)

	_, err := s.evm.Evaluate(context.Background(), contract.NewEVMRequest(p.ID))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidReference))
}

func TestEVMService_Evaluate(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	p := s.newProject(t, "Earned", "EAR01")
	a := s.addTask(t, p.ID, "Build", 10)
	dev := s.addResource(t, p.ID, "Dev", 100)
	_, err := s.plans.Assign(ctx, p.ID, a, dev, 100)
	require.NoError(t, err)
	_, err = s.baselines.Capture(ctx, p.ID, "Old")
	require.NoError(t, err)
	_, err = s.baselines.Capture(ctx, p.ID, "Plan")
	require.NoError(t, err)
	_, err = s.plans.UpdateTask(ctx, p.ID, a, graph.TaskPatch{PercentComplete: ptr(40.0)})
	require.NoError(t, err)

	req := contract.NewEVMRequest(p.ID)
	req.StatusDate = ptr(at(7, 16))
	res, err := s.evm.Evaluate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Plan", res.Report.BaselineName, "newest baseline by default")

	m := res.Report.Project
	assert.InDelta(t, 1000.0, m.BAC, 1e-9)
	assert.InDelta(t, 500.0, m.PV, 1e-9)
	assert.InDelta(t, 400.0, m.EV, 1e-9)
	assert.InDelta(t, 500.0, m.AC, 1e-9)
	require.True(t, m.CPI.Defined)
	assert.InDelta(t, 0.8, m.CPI.Value, 1e-9)

	req.Baseline = "old"
	res, err = s.evm.Evaluate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Old", res.Report.BaselineName)
}
