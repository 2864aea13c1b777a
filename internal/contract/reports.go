package contract

import "github.com/alexanderramin/tempo/internal/app"

type CostRequest = app.CostRequest

func NewCostRequest(projectID string) CostRequest {
	return app.NewCostRequest(projectID)
}

type CostResult = app.CostResult

type AllocationResult = app.AllocationResult

type CompareResult = app.CompareResult

type EVMRequest = app.EVMRequest

func NewEVMRequest(projectID string) EVMRequest {
	return app.NewEVMRequest(projectID)
}

type EVMResult = app.EVMResult

type SimulationRequest = app.SimulationRequest

func NewSimulationRequest(projectID string) SimulationRequest {
	return app.NewSimulationRequest(projectID)
}

type SimulationResult = app.SimulationResult

type ImportRequest = app.ImportRequest

func NewImportRequest(path string) ImportRequest {
	return app.NewImportRequest(path)
}

type ImportResult = app.ImportResult
