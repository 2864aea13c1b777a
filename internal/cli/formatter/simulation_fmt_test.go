package formatter

import (
	"strings"
	"testing"

	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/montecarlo"
	"github.com/alexanderramin/tempo/internal/scheduler"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFormatSimulation(t *testing.T) {
	res := &contract.SimulationResult{
		Project: testutil.NewTestProject("Website"),
		Finish:  at(12, 16),
		Risk:    scheduler.RiskResult{Level: domain.RiskAtRisk},
		Result: &montecarlo.Result{
			Iterations:   500,
			Seed:         42,
			Distribution: montecarlo.PERT,
			P50:          at(12, 16),
			P80:          at(13, 16),
			P90:          at(14, 12),
			Earliest:     at(11, 12),
			Latest:       at(17, 16),
			Mean:         8.2,
			StdDev:       0.75,
			Min:          7.5,
			Max:          11,
			Histogram:    []montecarlo.Bin{{Lower: 7.5, Upper: 9, Count: 400}, {Lower: 9, Upper: 11, Count: 100}},
			Drivers:      []montecarlo.Driver{{TaskID: 2, Name: "Design", Count: 450, Frequency: 0.9}},
		},
	}
	out := stripANSI(FormatSimulation(res))

	assert.Contains(t, out, "500 iterations · pert · seed 42")
	assert.Contains(t, out, "Thu Mar 13 2025 16:00", "P80")
	assert.Contains(t, out, "AT RISK")
	assert.Contains(t, out, "mean 8.2d")
	assert.Contains(t, out, "7.5–9d")
	assert.Contains(t, out, strings.Repeat(filledBlock, histogramWidth), "tallest bin spans the full width")
	assert.Contains(t, out, "Design")
	assert.Contains(t, out, "90%")
}
