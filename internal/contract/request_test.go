package contract

import (
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/montecarlo"
	"github.com/stretchr/testify/assert"
)

// --- SimulationRequest constructor defaults ---

func TestNewSimulationRequest_SetsDefaults(t *testing.T) {
	req := NewSimulationRequest("p1")

	assert.Equal(t, "p1", req.ProjectID)
	assert.Equal(t, 1000, req.Iterations)
	assert.Equal(t, 20, req.Bins)
	assert.Equal(t, 5, req.Drivers)
	assert.Equal(t, montecarlo.Triangular, req.Distribution)
	assert.NotZero(t, req.Seed)
	assert.Zero(t, req.Workers, "zero lets the simulator pick GOMAXPROCS")
	assert.Nil(t, req.Progress)
	assert.Nil(t, req.Now)
}

// --- CreateProjectRequest constructor defaults ---

func TestNewCreateProjectRequest_SetsDefaults(t *testing.T) {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	req := NewCreateProjectRequest("Website", "WEB01", start)

	assert.Equal(t, "Website", req.Name)
	assert.Equal(t, "WEB01", req.ShortID)
	assert.Equal(t, start, req.StartDate)
	assert.Equal(t, domain.UnitDays, req.Unit)
	assert.Equal(t, domain.DefaultCalendar(), req.Calendar)
	assert.Nil(t, req.TargetDate)
}

// --- Report request defaults ---

func TestNewEVMRequest_SetsDefaults(t *testing.T) {
	req := NewEVMRequest("p1")
	assert.Equal(t, 10, req.CurvePoints)
	assert.Empty(t, req.Baseline, "empty selects the newest baseline")
	assert.Nil(t, req.StatusDate)
}

func TestNewCostRequest_SetsDefaults(t *testing.T) {
	req := NewCostRequest("p1")
	assert.True(t, req.Breakdown)
	assert.Nil(t, req.AsOf)
}

func TestNewImportRequest_SetsDefaults(t *testing.T) {
	req := NewImportRequest("plan.json")
	assert.Equal(t, "plan.json", req.Path)
	assert.False(t, req.Strict)
	assert.Zero(t, req.Limits, "zero falls back to the configured limits")
}

func TestUseCaseError_Message(t *testing.T) {
	err := &UseCaseError{Code: ErrNothingToUndo, Message: "no edits to undo"}
	assert.Equal(t, "NOTHING_TO_UNDO: no edits to undo", err.Error())
}
