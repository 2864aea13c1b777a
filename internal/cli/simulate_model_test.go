package cli

import (
	"errors"
	"testing"

	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/montecarlo"
	"github.com/alexanderramin/tempo/internal/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateModel_ShowsProgress(t *testing.T) {
	d := teatest.New(t, newSimulateModel("Simulating 200 iterations", 200, nil), teatest.WithSize(100, 20))
	d.DrainInit()

	d.Send(simProgressMsg{done: 50, total: 200})
	view := d.View()
	assert.Contains(t, view, "Simulating 200 iterations")
	assert.Contains(t, view, "50/200")
	assert.Contains(t, view, "25%")
	assert.Contains(t, view, "ctrl+c to cancel")
}

func TestSimulateModel_ProgressNeverGoesBackwards(t *testing.T) {
	d := teatest.New(t, newSimulateModel("run", 100, nil))
	d.Send(simProgressMsg{done: 60, total: 100})
	d.Send(simProgressMsg{done: 40, total: 100})

	m := d.Model.(simulateModel)
	assert.Equal(t, 60, m.done)
	assert.InDelta(t, 0.6, m.percent(), 1e-9)
}

func TestSimulateModel_DoneQuitsWithResult(t *testing.T) {
	d := teatest.New(t, newSimulateModel("run", 10, nil))
	res := &contract.SimulationResult{Result: &montecarlo.Result{Iterations: 10}}
	d.Send(simDoneMsg{result: res})

	require.True(t, d.Quitting)
	m := d.Model.(simulateModel)
	assert.True(t, m.finished)
	assert.Same(t, res, m.result)
	assert.Equal(t, 10, m.done)
	assert.Empty(t, d.View())
}

func TestSimulateModel_CtrlCCancelsAndWaits(t *testing.T) {
	calls := 0
	d := teatest.New(t, newSimulateModel("run", 10, func() { calls++ }))

	d.PressCtrlC()
	assert.Equal(t, 1, calls)
	assert.False(t, d.Quitting, "waits for the workers to report back")
	assert.Contains(t, d.View(), "cancelling")

	d.PressEsc()
	assert.Equal(t, 1, calls, "cancel runs once")

	d.Send(simDoneMsg{err: errors.New("context canceled")})
	assert.True(t, d.Quitting)
	m := d.Model.(simulateModel)
	assert.True(t, m.cancelled)
	assert.Error(t, m.err)
}
