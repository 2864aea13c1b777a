package domain

import (
	"math"
	"time"
)

// ThreePoint is an optimistic / most-likely / pessimistic duration estimate.
type ThreePoint struct {
	Optimistic  float64
	Likely      float64
	Pessimistic float64
}

// Validate checks optimistic <= likely <= pessimistic and finite, non-negative values.
func (e ThreePoint) Validate() error {
	for _, v := range []float64{e.Optimistic, e.Likely, e.Pessimistic} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Errorf(ErrValidation, Entity{}, "estimate %v is not a finite number", v)
		}
	}
	if e.Optimistic < 0 {
		return Errorf(ErrValidation, Entity{}, "optimistic estimate %.2f is negative", e.Optimistic)
	}
	if e.Optimistic > e.Likely || e.Likely > e.Pessimistic {
		return Errorf(ErrValidation, Entity{}, "estimate must satisfy optimistic <= likely <= pessimistic (got %.2f/%.2f/%.2f)",
			e.Optimistic, e.Likely, e.Pessimistic)
	}
	return nil
}

// Degenerate reports whether the estimate has no spread.
func (e ThreePoint) Degenerate() bool {
	return e.Pessimistic-e.Optimistic <= 1e-12
}

// Mean is the PERT expected duration (o + 4m + p) / 6.
func (e ThreePoint) Mean() float64 {
	return (e.Optimistic + 4*e.Likely + e.Pessimistic) / 6
}

type Task struct {
	ID              int
	Name            string
	Notes           string
	ParentID        *int
	Children        []int
	Start           time.Time
	End             time.Time
	Duration        float64
	PercentComplete float64
	Milestone       bool
	Mode            ScheduleMode
	Estimate        *ThreePoint
	// Dependencies are the incoming edges; SuccessorID is always ID.
	Dependencies []Dependency
	Assignments  []Assignment
	// Style carries opaque presentation attributes untouched by the engine.
	Style map[string]string
}

// IsSummary reports whether the task has children and derives its dates.
func (t *Task) IsSummary() bool {
	return len(t.Children) > 0
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() Task {
	c := *t
	if t.ParentID != nil {
		p := *t.ParentID
		c.ParentID = &p
	}
	if t.Estimate != nil {
		e := *t.Estimate
		c.Estimate = &e
	}
	c.Children = append([]int(nil), t.Children...)
	c.Dependencies = append([]Dependency(nil), t.Dependencies...)
	c.Assignments = append([]Assignment(nil), t.Assignments...)
	if t.Style != nil {
		c.Style = make(map[string]string, len(t.Style))
		for k, v := range t.Style {
			c.Style[k] = v
		}
	}
	return c
}

// State classifies progress against a reference instant.
func (t *Task) State(now time.Time) TaskState {
	switch {
	case t.PercentComplete >= 100:
		return TaskCompleted
	case now.After(t.End):
		return TaskOverdue
	case now.Before(t.Start):
		return TaskUpcoming
	default:
		return TaskInProgress
	}
}

// Assignment binds a resource to a task at an allocation percentage.
type Assignment struct {
	TaskID     int
	ResourceID int
	Allocation float64
}

// MaxAllocation bounds a single assignment's allocation percent.
const MaxAllocation = 1000.0
