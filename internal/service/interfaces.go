package service

import (
	"context"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
)

type ProjectService interface {
	Create(ctx context.Context, req contract.CreateProjectRequest) (*domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// Resolve accepts a short id, a full id or a unique id prefix.
	Resolve(ctx context.Context, ref string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	UpdateSettings(ctx context.Context, id string, settings contract.ProjectSettings) (*contract.PlanResult, error)
	Delete(ctx context.Context, id string) error
}

// PlanService edits a project's network. Every mutation reschedules, persists
// and records an undo step in one transaction; a rejected mutation changes
// nothing.
type PlanService interface {
	Get(ctx context.Context, projectID string) (*contract.PlanResult, error)
	Schedule(ctx context.Context, projectID string) (*contract.PlanResult, error)

	AddTask(ctx context.Context, projectID string, in graph.TaskInput) (*contract.PlanResult, error)
	UpdateTask(ctx context.Context, projectID string, id int, patch graph.TaskPatch) (*contract.PlanResult, error)
	RemoveTask(ctx context.Context, projectID string, id int) (*contract.PlanResult, error)
	MoveTask(ctx context.Context, projectID string, id int, parent *int, index int) (*contract.PlanResult, error)
	IndentTask(ctx context.Context, projectID string, id int) (*contract.PlanResult, error)
	OutdentTask(ctx context.Context, projectID string, id int) (*contract.PlanResult, error)

	AddDependency(ctx context.Context, projectID string, dep domain.Dependency) (*contract.PlanResult, error)
	UpdateDependency(ctx context.Context, projectID string, dep domain.Dependency) (*contract.PlanResult, error)
	RemoveDependency(ctx context.Context, projectID string, pred, succ int) (*contract.PlanResult, error)

	AddResource(ctx context.Context, projectID string, in graph.ResourceInput) (*contract.PlanResult, error)
	UpdateResource(ctx context.Context, projectID string, id int, patch graph.ResourcePatch) (*contract.PlanResult, error)
	RemoveResource(ctx context.Context, projectID string, id int) (*contract.PlanResult, error)
	Assign(ctx context.Context, projectID string, taskID, resourceID int, allocation float64) (*contract.PlanResult, error)
	Unassign(ctx context.Context, projectID string, taskID, resourceID int) (*contract.PlanResult, error)

	Undo(ctx context.Context, projectID string) (*contract.PlanResult, error)
	Redo(ctx context.Context, projectID string) (*contract.PlanResult, error)
}

type BaselineService interface {
	Capture(ctx context.Context, projectID, name string) (*domain.Baseline, error)
	List(ctx context.Context, projectID string) ([]domain.Baseline, error)
	Rename(ctx context.Context, projectID, ref, name string) (*domain.Baseline, error)
	Delete(ctx context.Context, projectID, ref string) (*domain.Baseline, error)
	Compare(ctx context.Context, projectID, ref string) (*contract.CompareResult, error)
}

type CostService interface {
	Costs(ctx context.Context, req contract.CostRequest) (*contract.CostResult, error)
	Allocation(ctx context.Context, projectID string) (*contract.AllocationResult, error)
}

type EVMService interface {
	Evaluate(ctx context.Context, req contract.EVMRequest) (*contract.EVMResult, error)
}

type SimulationService interface {
	app.SimulateUseCase
}

type ImportService interface {
	app.ImportProjectUseCase
}

type ExportService interface {
	app.ExportProjectUseCase
	ExportFile(ctx context.Context, projectID, path string) error
}
