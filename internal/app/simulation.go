package app

import (
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/montecarlo"
	"github.com/alexanderramin/tempo/internal/scheduler"
)

type SimulationRequest struct {
	ProjectID    string
	Iterations   int
	Seed         uint64
	Workers      int
	Bins         int
	Drivers      int
	Distribution montecarlo.Distribution
	// Progress, when set, is called after every completed iteration.
	Progress func(done, total int)
	Now      *time.Time
}

// NewSimulationRequest defaults to 1000 triangular iterations with a seed
// taken from the clock.
func NewSimulationRequest(projectID string) SimulationRequest {
	return SimulationRequest{
		ProjectID:    projectID,
		Iterations:   montecarlo.DefaultIterations,
		Seed:         uint64(time.Now().UnixNano()),
		Bins:         montecarlo.DefaultBins,
		Drivers:      montecarlo.DefaultDrivers,
		Distribution: montecarlo.Triangular,
	}
}

type SimulationResult struct {
	Project *domain.Project
	Result  *montecarlo.Result
	// Finish is the deterministic CPM finish for comparison.
	Finish time.Time
	Risk   scheduler.RiskResult
}
