package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}

// NetworkRepo persists a project's tasks, dependencies, resources and
// assignments as one unit.
type NetworkRepo interface {
	Save(ctx context.Context, projectID string, snap graph.Snapshot) error
	Load(ctx context.Context, projectID string) (graph.Snapshot, error)
}

type BaselineRepo interface {
	Create(ctx context.Context, b domain.Baseline) error
	ListByProject(ctx context.Context, projectID string) ([]domain.Baseline, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

// Stack names one side of a project's edit history.
type Stack string

const (
	UndoStack Stack = "undo"
	RedoStack Stack = "redo"
)

// HistoryEntry is a network state that undo or redo restores.
type HistoryEntry struct {
	Label     string
	Snapshot  graph.Snapshot
	CreatedAt time.Time
}

type HistoryRepo interface {
	// Push appends an entry and drops the oldest ones beyond limit.
	Push(ctx context.Context, projectID string, stack Stack, e HistoryEntry, limit int) error
	// Pop removes and returns the newest entry, or nil when the stack is empty.
	Pop(ctx context.Context, projectID string, stack Stack) (*HistoryEntry, error)
	Clear(ctx context.Context, projectID string, stack Stack) error
	Count(ctx context.Context, projectID string, stack Stack) (int, error)
}
