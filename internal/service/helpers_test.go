package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
	"github.com/alexanderramin/tempo/internal/importer"
	"github.com/alexanderramin/tempo/internal/montecarlo"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/require"
)

// services wires every service onto one in-memory store.
type services struct {
	db          *sql.DB
	uow         db.UnitOfWork
	projects    ProjectService
	plans       PlanService
	baselines   BaselineService
	costs       CostService
	evm         EVMService
	simulations SimulationService
	imports     ImportService
	exports     ExportService
}

func setupServices(t *testing.T, observers ...UseCaseObserver) *services {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	return &services{
		db:          database,
		uow:         uow,
		projects:    NewProjectService(uow, observers...),
		plans:       NewPlanService(uow, observers...),
		baselines:   NewBaselineService(uow, observers...),
		costs:       NewCostService(uow, observers...),
		evm:         NewEVMService(uow, observers...),
		simulations: NewSimulationService(uow, montecarlo.New(nil, nil), montecarlo.Config{Iterations: 200}, observers...),
		imports:     NewImportService(uow, importer.DefaultLimits, observers...),
		exports:     NewExportService(uow, observers...),
	}
}

func (s *services) newProject(t *testing.T, name, shortID string) *domain.Project {
	t.Helper()
	p, err := s.projects.Create(context.Background(), contract.NewCreateProjectRequest(name, shortID, testutil.Monday))
	require.NoError(t, err)
	return p
}

func (s *services) addTask(t *testing.T, projectID, name string, duration float64) int {
	t.Helper()
	res, err := s.plans.AddTask(context.Background(), projectID, graph.TaskInput{Name: name, Duration: &duration})
	require.NoError(t, err)
	return res.CreatedID
}

func (s *services) addResource(t *testing.T, projectID, name string, rate float64) int {
	t.Helper()
	res, err := s.plans.AddResource(context.Background(), projectID, graph.ResourceInput{Name: name, Rate: rate})
	require.NoError(t, err)
	return res.CreatedID
}

func (s *services) link(t *testing.T, projectID string, pred, succ int) {
	t.Helper()
	_, err := s.plans.AddDependency(context.Background(), projectID,
		domain.Dependency{PredecessorID: pred, SuccessorID: succ, Type: domain.FinishToStart})
	require.NoError(t, err)
}

func taskOf(t *testing.T, r *contract.PlanResult, id int) domain.Task {
	t.Helper()
	task, ok := r.Task(id)
	require.True(t, ok, "task %d missing from plan", id)
	return task
}

// at is a March 2025 instant; the default calendar works 08:00-16:00.
func at(day, hour int) time.Time {
	return time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

// recordingObserver keeps every event it receives.
type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) last(name string) (UseCaseEvent, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.events) - 1; i >= 0; i-- {
		if o.events[i].Name == name {
			return o.events[i], true
		}
	}
	return UseCaseEvent{}, false
}
