package scheduler

import (
	"math"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

type RiskInput struct {
	Now        time.Time
	TargetDate *time.Time
	// Finish is the deterministic CPM project finish.
	Finish time.Time
	// P50 and P80 are simulated completion dates. Zero means no simulation
	// has been run and only the deterministic finish is judged.
	P50 time.Time
	P80 time.Time
}

type RiskResult struct {
	Level    domain.RiskLevel
	DaysLeft *int
	// BufferDays is the calendar time between the judged finish and the
	// target; negative when the finish overshoots.
	BufferDays float64
}

// ComputeRisk classifies a project's finish against its target date.
// With a forecast: on_track when P80 meets the target, at_risk when only P50
// does, critical otherwise. Without one: the deterministic finish must meet
// the target.
func ComputeRisk(input RiskInput) RiskResult {
	if input.TargetDate == nil {
		return RiskResult{Level: domain.RiskOnTrack}
	}
	target := *input.TargetDate
	daysLeft := int(math.Ceil(target.Sub(input.Now).Hours() / 24))

	judged := input.Finish
	if !input.P80.IsZero() {
		judged = input.P80
	}
	result := RiskResult{
		DaysLeft:   &daysLeft,
		BufferDays: target.Sub(judged).Hours() / 24,
	}

	// Past due with work still finishing after the target.
	if daysLeft <= 0 && input.Finish.After(target) {
		result.Level = domain.RiskCritical
		return result
	}

	hasForecast := !input.P50.IsZero() && !input.P80.IsZero()
	switch {
	case hasForecast && !input.P80.After(target):
		result.Level = domain.RiskOnTrack
	case hasForecast && !input.P50.After(target):
		result.Level = domain.RiskAtRisk
	case hasForecast:
		result.Level = domain.RiskCritical
	case !input.Finish.After(target):
		result.Level = domain.RiskOnTrack
	default:
		result.Level = domain.RiskCritical
	}
	return result
}
