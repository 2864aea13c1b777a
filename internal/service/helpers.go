package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/scheduler"
)

// HistoryLimit is the number of undo steps kept per project.
const HistoryLimit = 100

// workspace is a project and its network loaded inside one transaction.
type workspace struct {
	project *domain.Project
	graph   *graph.Graph
}

func loadWorkspace(ctx context.Context, tx db.DBTX, projectID string) (*workspace, error) {
	p, err := repository.NewSQLiteProjectRepo(tx).GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	snap, err := repository.NewSQLiteNetworkRepo(tx).Load(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	g, err := buildGraph(p, snap)
	if err != nil {
		return nil, err
	}
	return &workspace{project: p, graph: g}, nil
}

func buildGraph(p *domain.Project, snap graph.Snapshot) (*graph.Graph, error) {
	cal, err := calendar.New(p.Calendar, p.Unit)
	if err != nil {
		return nil, fmt.Errorf("building calendar: %w", err)
	}
	g, err := graph.Load(cal, p.ProjectStart(), snap)
	if err != nil {
		return nil, fmt.Errorf("loading network: %w", err)
	}
	return g, nil
}

// reschedule runs CPM over g and writes the auto-scheduled dates back.
func reschedule(g *graph.Graph) (*scheduler.Schedule, error) {
	sched, err := scheduler.Compute(g)
	if err != nil {
		return nil, err
	}
	g.ApplyDates(sched.Dates())
	return sched, nil
}

// targetDeadline is the end of the project's target day, or nil.
func targetDeadline(p *domain.Project) *time.Time {
	if p.TargetDate == nil {
		return nil
	}
	d := domain.DateOf(*p.TargetDate).AddDate(0, 0, 1)
	return &d
}

func planResult(p *domain.Project, g *graph.Graph, sched *scheduler.Schedule, now time.Time) *contract.PlanResult {
	tasks := g.Tasks()
	resources := g.Resources()
	profile := scheduler.AllocationProfile(scheduler.AllocationInput{
		Calendar:  g.Calendar(),
		Tasks:     tasks,
		Resources: resources,
	})
	return &contract.PlanResult{
		Project:         p,
		Tasks:           tasks,
		Resources:       resources,
		WBS:             g.WBSCodes(),
		Schedule:        sched,
		Risk:            scheduler.ComputeRisk(scheduler.RiskInput{Now: now, TargetDate: targetDeadline(p), Finish: sched.ProjectFinish}),
		Completion:      g.OverallCompletion(),
		OverAllocations: scheduler.OverAllocations(profile),
	}
}

func historyDepths(ctx context.Context, history repository.HistoryRepo, projectID string) (undo, redo int, err error) {
	if undo, err = history.Count(ctx, projectID, repository.UndoStack); err != nil {
		return 0, 0, err
	}
	if redo, err = history.Count(ctx, projectID, repository.RedoStack); err != nil {
		return 0, 0, err
	}
	return undo, redo, nil
}
