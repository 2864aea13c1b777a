package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
	"github.com/alexanderramin/tempo/internal/repository"
)

type planService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewPlanService(uow db.UnitOfWork, observers ...UseCaseObserver) PlanService {
	return &planService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// edit is one network mutation. It reports what it did for the result and
// the undo label.
type edit func(g *graph.Graph, r *contract.PlanResult) (action string, err error)

func (s *planService) mutate(ctx context.Context, name, projectID string, fields map[string]any, fn edit) (result *contract.PlanResult, err error) {
	if fields == nil {
		fields = make(map[string]any)
	}
	fields["project_id"] = projectID
	ctx, uc := startUseCase(ctx, s.observer, name, fields)
	defer func() { uc.end(err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ws, err := loadWorkspace(ctx, tx, projectID)
		if err != nil {
			return err
		}
		before := ws.graph.Snapshot()

		var r contract.PlanResult
		action, err := fn(ws.graph, &r)
		if err != nil {
			return err
		}
		sched, err := reschedule(ws.graph)
		if err != nil {
			return err
		}
		if err := repository.NewSQLiteNetworkRepo(tx).Save(ctx, projectID, ws.graph.Snapshot()); err != nil {
			return err
		}

		history := repository.NewSQLiteHistoryRepo(tx)
		entry := repository.HistoryEntry{Label: action, Snapshot: before, CreatedAt: time.Now().UTC()}
		if err := history.Push(ctx, projectID, repository.UndoStack, entry, HistoryLimit); err != nil {
			return err
		}
		if err := history.Clear(ctx, projectID, repository.RedoStack); err != nil {
			return err
		}

		result = planResult(ws.project, ws.graph, sched, time.Now().UTC())
		result.Action = action
		result.CreatedID = r.CreatedID
		result.Removed = r.Removed
		result.UndoDepth, result.RedoDepth, err = historyDepths(ctx, history, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.set("action", result.Action)
	uc.set("tasks", len(result.Tasks))
	return result, nil
}

// Get computes the schedule without persisting anything.
func (s *planService) Get(ctx context.Context, projectID string) (result *contract.PlanResult, err error) {
	ctx, uc := startUseCase(ctx, s.observer, "get-plan", map[string]any{"project_id": projectID})
	defer func() { uc.end(err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ws, err := loadWorkspace(ctx, tx, projectID)
		if err != nil {
			return err
		}
		sched, err := reschedule(ws.graph)
		if err != nil {
			return err
		}
		result = planResult(ws.project, ws.graph, sched, time.Now().UTC())
		result.UndoDepth, result.RedoDepth, err = historyDepths(ctx, repository.NewSQLiteHistoryRepo(tx), projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Schedule recomputes and stores the dates. It is not an undoable edit.
func (s *planService) Schedule(ctx context.Context, projectID string) (result *contract.PlanResult, err error) {
	ctx, uc := startUseCase(ctx, s.observer, "schedule", map[string]any{"project_id": projectID})
	defer func() { uc.end(err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ws, err := loadWorkspace(ctx, tx, projectID)
		if err != nil {
			return err
		}
		sched, err := reschedule(ws.graph)
		if err != nil {
			return err
		}
		if err := repository.NewSQLiteNetworkRepo(tx).Save(ctx, projectID, ws.graph.Snapshot()); err != nil {
			return err
		}
		result = planResult(ws.project, ws.graph, sched, time.Now().UTC())
		result.Action = "schedule"
		result.UndoDepth, result.RedoDepth, err = historyDepths(ctx, repository.NewSQLiteHistoryRepo(tx), projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.set("finish", result.Schedule.ProjectFinish.Format(time.RFC3339))
	return result, nil
}

func (s *planService) AddTask(ctx context.Context, projectID string, in graph.TaskInput) (*contract.PlanResult, error) {
	return s.mutate(ctx, "add-task", projectID, map[string]any{"name": in.Name}, func(g *graph.Graph, r *contract.PlanResult) (string, error) {
		id, err := g.AddTask(in)
		if err != nil {
			return "", err
		}
		r.CreatedID = id
		return fmt.Sprintf("add task %d", id), nil
	})
}

func (s *planService) UpdateTask(ctx context.Context, projectID string, id int, patch graph.TaskPatch) (*contract.PlanResult, error) {
	return s.mutate(ctx, "update-task", projectID, map[string]any{"task_id": id}, func(g *graph.Graph, _ *contract.PlanResult) (string, error) {
		if err := g.UpdateTask(id, patch); err != nil {
			return "", err
		}
		return fmt.Sprintf("edit task %d", id), nil
	})
}

func (s *planService) RemoveTask(ctx context.Context, projectID string, id int) (*contract.PlanResult, error) {
	return s.mutate(ctx, "remove-task", projectID, map[string]any{"task_id": id}, func(g *graph.Graph, r *contract.PlanResult) (string, error) {
		removed, err := g.RemoveTask(id)
		if err != nil {
			return "", err
		}
		r.Removed = removed
		return fmt.Sprintf("remove task %d", id), nil
	})
}

func (s *planService) MoveTask(ctx context.Context, projectID string, id int, parent *int, index int) (*contract.PlanResult, error) {
	return s.mutate(ctx, "move-task", projectID, map[string]any{"task_id": id}, func(g *graph.Graph, _ *contract.PlanResult) (string, error) {
		if err := g.MoveTask(id, parent, index); err != nil {
			return "", err
		}
		return fmt.Sprintf("move task %d", id), nil
	})
}

func (s *planService) IndentTask(ctx context.Context, projectID string, id int) (*contract.PlanResult, error) {
	return s.mutate(ctx, "indent-task", projectID, map[string]any{"task_id": id}, func(g *graph.Graph, _ *contract.PlanResult) (string, error) {
		if err := g.Indent(id); err != nil {
			return "", err
		}
		return fmt.Sprintf("indent task %d", id), nil
	})
}

func (s *planService) OutdentTask(ctx context.Context, projectID string, id int) (*contract.PlanResult, error) {
	return s.mutate(ctx, "outdent-task", projectID, map[string]any{"task_id": id}, func(g *graph.Graph, _ *contract.PlanResult) (string, error) {
		if err := g.Outdent(id); err != nil {
			return "", err
		}
		return fmt.Sprintf("outdent task %d", id), nil
	})
}

func (s *planService) AddDependency(ctx context.Context, projectID string, dep domain.Dependency) (*contract.PlanResult, error) {
	return s.mutate(ctx, "add-dependency", projectID, map[string]any{"edge": dep.Notation(), "successor": dep.SuccessorID}, func(g *graph.Graph, _ *contract.PlanResult) (string, error) {
		if err := g.AddDependency(dep); err != nil {
			return "", err
		}
		return fmt.Sprintf("link %s to task %d", dep.Notation(), dep.SuccessorID), nil
	})
}

func (s *planService) UpdateDependency(ctx context.Context, projectID string, dep domain.Dependency) (*contract.PlanResult, error) {
	return s.mutate(ctx, "update-dependency", projectID, map[string]any{"edge": dep.Notation(), "successor": dep.SuccessorID}, func(g *graph.Graph, _ *contract.PlanResult) (string, error) {
		if err := g.UpdateDependency(dep.PredecessorID, dep.SuccessorID, dep.Type, dep.Lag); err != nil {
			return "", err
		}
		return fmt.Sprintf("relink %s to task %d", dep.Notation(), dep.SuccessorID), nil
	})
}

func (s *planService) RemoveDependency(ctx context.Context, projectID string, pred, succ int) (*contract.PlanResult, error) {
	return s.mutate(ctx, "remove-dependency", projectID, map[string]any{"predecessor": pred, "successor": succ}, func(g *graph.Graph, _ *contract.PlanResult) (string, error) {
		if err := g.RemoveDependency(pred, succ); err != nil {
			return "", err
		}
		return fmt.Sprintf("unlink %d from task %d", pred, succ), nil
	})
}

func (s *planService) AddResource(ctx context.Context, projectID string, in graph.ResourceInput) (*contract.PlanResult, error) {
	return s.mutate(ctx, "add-resource", projectID, map[string]any{"name": in.Name}, func(g *graph.Graph, r *contract.PlanResult) (string, error) {
		id, err := g.AddResource(in)
		if err != nil {
			return "", err
		}
		r.CreatedID = id
		return fmt.Sprintf("add resource %d", id), nil
	})
}

func (s *planService) UpdateResource(ctx context.Context, projectID string, id int, patch graph.ResourcePatch) (*contract.PlanResult, error) {
	return s.mutate(ctx, "update-resource", projectID, map[string]any{"resource_id": id}, func(g *graph.Graph, _ *contract.PlanResult) (string, error) {
		if err := g.UpdateResource(id, patch); err != nil {
			return "", err
		}
		return fmt.Sprintf("edit resource %d", id), nil
	})
}

func (s *planService) RemoveResource(ctx context.Context, projectID string, id int) (*contract.PlanResult, error) {
	return s.mutate(ctx, "remove-resource", projectID, map[string]any{"resource_id": id}, func(g *graph.Graph, _ *contract.PlanResult) (string, error) {
		if err := g.RemoveResource(id); err != nil {
			return "", err
		}
		return fmt.Sprintf("remove resource %d", id), nil
	})
}

func (s *planService) Assign(ctx context.Context, projectID string, taskID, resourceID int, allocation float64) (*contract.PlanResult, error) {
	fields := map[string]any{"task_id": taskID, "resource_id": resourceID, "allocation": allocation}
	return s.mutate(ctx, "assign", projectID, fields, func(g *graph.Graph, _ *contract.PlanResult) (string, error) {
		if err := g.Assign(taskID, resourceID, allocation); err != nil {
			return "", err
		}
		return fmt.Sprintf("assign resource %d to task %d", resourceID, taskID), nil
	})
}

func (s *planService) Unassign(ctx context.Context, projectID string, taskID, resourceID int) (*contract.PlanResult, error) {
	fields := map[string]any{"task_id": taskID, "resource_id": resourceID}
	return s.mutate(ctx, "unassign", projectID, fields, func(g *graph.Graph, _ *contract.PlanResult) (string, error) {
		if err := g.Unassign(taskID, resourceID); err != nil {
			return "", err
		}
		return fmt.Sprintf("unassign resource %d from task %d", resourceID, taskID), nil
	})
}

func (s *planService) Undo(ctx context.Context, projectID string) (*contract.PlanResult, error) {
	return s.travel(ctx, "undo", projectID, repository.UndoStack, repository.RedoStack,
		&contract.UseCaseError{Code: contract.ErrNothingToUndo, Message: "no edits to undo"})
}

func (s *planService) Redo(ctx context.Context, projectID string) (*contract.PlanResult, error) {
	return s.travel(ctx, "redo", projectID, repository.RedoStack, repository.UndoStack,
		&contract.UseCaseError{Code: contract.ErrNothingToRedo, Message: "no undone edits to redo"})
}

// travel restores the newest entry of from and records the current network
// on to, so the step can be reversed.
func (s *planService) travel(ctx context.Context, name, projectID string, from, to repository.Stack, empty error) (result *contract.PlanResult, err error) {
	ctx, uc := startUseCase(ctx, s.observer, name, map[string]any{"project_id": projectID})
	defer func() { uc.end(err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ws, err := loadWorkspace(ctx, tx, projectID)
		if err != nil {
			return err
		}
		history := repository.NewSQLiteHistoryRepo(tx)
		entry, err := history.Pop(ctx, projectID, from)
		if err != nil {
			return err
		}
		if entry == nil {
			return empty
		}

		current := repository.HistoryEntry{Label: entry.Label, Snapshot: ws.graph.Snapshot(), CreatedAt: time.Now().UTC()}
		if err := history.Push(ctx, projectID, to, current, HistoryLimit); err != nil {
			return err
		}

		restored, err := buildGraph(ws.project, entry.Snapshot)
		if err != nil {
			return err
		}
		sched, err := reschedule(restored)
		if err != nil {
			return err
		}
		if err := repository.NewSQLiteNetworkRepo(tx).Save(ctx, projectID, restored.Snapshot()); err != nil {
			return err
		}
		result = planResult(ws.project, restored, sched, time.Now().UTC())
		result.Action = name + " " + entry.Label
		result.UndoDepth, result.RedoDepth, err = historyDepths(ctx, history, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.set("action", result.Action)
	return result, nil
}
