package app

import (
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/scheduler"
)

// PlanResult is what every network mutation returns: the network after the
// change with dates written back, and the schedule computed for it.
type PlanResult struct {
	Project   *domain.Project
	Tasks     []domain.Task
	Resources []domain.Resource
	WBS       map[int]string
	Schedule  *scheduler.Schedule
	Risk      scheduler.RiskResult
	// Completion is the duration-weighted percent complete of all leaf tasks.
	Completion float64
	// OverAllocations lists every resource day above capacity.
	OverAllocations []scheduler.OverAllocation
	// Action names the mutation, e.g. "add task 4".
	Action string
	// CreatedID is the id an add operation assigned, 0 otherwise.
	CreatedID int
	// Removed lists the task ids a removal deleted.
	Removed   []int
	UndoDepth int
	RedoDepth int
}

// Task returns a task of the result by id.
func (r *PlanResult) Task(id int) (domain.Task, bool) {
	for _, t := range r.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

type ErrorCode string

const (
	ErrNothingToUndo ErrorCode = "NOTHING_TO_UNDO"
	ErrNothingToRedo ErrorCode = "NOTHING_TO_REDO"
	ErrNotConfirmed  ErrorCode = "NOT_CONFIRMED"
)

// UseCaseError is a failure of the command surface itself, as opposed to a
// rejected schedule mutation.
type UseCaseError struct {
	Code    ErrorCode
	Message string
}

func (e *UseCaseError) Error() string {
	return string(e.Code) + ": " + e.Message
}
