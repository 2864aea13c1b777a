package app

import (
	"time"

	"github.com/alexanderramin/tempo/internal/baseline"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/evm"
	"github.com/alexanderramin/tempo/internal/scheduler"
)

type CostRequest struct {
	ProjectID string
	// AsOf limits cost to work performed up to this instant.
	AsOf      *time.Time
	Breakdown bool
}

func NewCostRequest(projectID string) CostRequest {
	return CostRequest{ProjectID: projectID, Breakdown: true}
}

type CostResult struct {
	Project *domain.Project
	Report  scheduler.CostReport
	Periods []scheduler.PeriodCost
}

type AllocationResult struct {
	Project         *domain.Project
	Profile         []scheduler.ResourceLoad
	OverAllocations []scheduler.OverAllocation
}

type CompareResult struct {
	Project    *domain.Project
	Comparison baseline.Comparison
}

type EVMRequest struct {
	ProjectID string
	// Baseline is a baseline id or name; empty selects the newest one.
	Baseline    string
	StatusDate  *time.Time
	CurvePoints int
}

func NewEVMRequest(projectID string) EVMRequest {
	return EVMRequest{ProjectID: projectID, CurvePoints: evm.DefaultCurvePoints}
}

type EVMResult struct {
	Project *domain.Project
	Report  evm.Report
}
