package graph

import (
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

// MaxNameLength bounds task and resource names.
const MaxNameLength = 250

// TaskInput describes a new task. At most one of Duration and End may be set;
// with neither, a task lasts one unit (zero for milestones).
type TaskInput struct {
	Name            string
	Notes           string
	ParentID        *int
	Start           *time.Time
	Duration        *float64
	End             *time.Time
	PercentComplete float64
	Milestone       bool
	Mode            domain.ScheduleMode
	Estimate        *domain.ThreePoint
	Style           map[string]string
}

// TaskPatch describes an edit. Nil fields are left unchanged. At most one of
// Duration and End may be set; the other is recomputed through the calendar.
type TaskPatch struct {
	Name            *string
	Notes           *string
	Start           *time.Time
	Duration        *float64
	End             *time.Time
	PercentComplete *float64
	Milestone       *bool
	Mode            *domain.ScheduleMode
	Estimate        *domain.ThreePoint
	ClearEstimate   bool
	Style           map[string]string
}

func invalid(entity domain.Entity, format string, args ...any) error {
	return domain.Errorf(domain.ErrValidation, entity, format, args...)
}

// finite rejects NaN and infinities, which slip through ordered comparisons.
func finite(entity domain.Entity, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(entity, "%s must be a finite number, got %v", field, v)
	}
	return nil
}

func missingTask(id int) error {
	return domain.Errorf(domain.ErrInvalidReference, domain.TaskRef(id), "task %d does not exist", id)
}

func validateName(entity domain.Entity, name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid(entity, "name is required")
	}
	if len([]rune(name)) > MaxNameLength {
		return invalid(entity, "name exceeds %d characters", MaxNameLength)
	}
	return nil
}

// canParent checks that parentID may receive children.
func (g *Graph) canParent(parentID int, child domain.Entity) error {
	p, ok := g.tasks[parentID]
	if !ok {
		return domain.Errorf(domain.ErrInvalidReference, child, "parent task %d does not exist", parentID)
	}
	switch {
	case p.Milestone:
		return invalid(domain.TaskRef(parentID), "milestone cannot have subtasks")
	case len(p.Dependencies) > 0 || g.hasSuccessors(parentID):
		return invalid(domain.TaskRef(parentID), "task with dependencies cannot have subtasks")
	case len(p.Assignments) > 0:
		return invalid(domain.TaskRef(parentID), "task with assignments cannot have subtasks")
	}
	return nil
}

func (g *Graph) hasSuccessors(id int) bool {
	for _, t := range g.tasks {
		for _, d := range t.Dependencies {
			if d.PredecessorID == id {
				return true
			}
		}
	}
	return false
}

// AddTask validates in and appends a new task under its parent (or at the
// root). It returns the new task id.
func (g *Graph) AddTask(in TaskInput) (int, error) {
	id := g.nextTaskID
	t, err := g.buildTask(id, in)
	if err != nil {
		return 0, err
	}
	g.attach(t)
	g.nextTaskID++
	g.rollup()
	return id, nil
}

func (g *Graph) buildTask(id int, in TaskInput) (*domain.Task, error) {
	ref := domain.TaskRef(id)
	if err := validateName(ref, in.Name); err != nil {
		return nil, err
	}
	if len([]rune(in.Notes)) > MaxNameLength {
		return nil, invalid(ref, "notes exceed %d characters", MaxNameLength)
	}
	if in.Duration != nil && in.End != nil {
		return nil, invalid(ref, "duration and end cannot both be given")
	}
	if err := finite(ref, "percent complete", in.PercentComplete); err != nil {
		return nil, err
	}
	if in.PercentComplete < 0 || in.PercentComplete > 100 {
		return nil, invalid(ref, "percent complete must be in [0, 100], got %.2f", in.PercentComplete)
	}
	mode := in.Mode
	if mode == "" {
		mode = domain.ScheduleAuto
	}
	if !domain.ValidScheduleModes[string(mode)] {
		return nil, invalid(ref, "unknown schedule mode %q", mode)
	}
	if in.Estimate != nil {
		if err := in.Estimate.Validate(); err != nil {
			return nil, invalid(ref, "%v", err)
		}
	}
	if in.ParentID != nil {
		if err := g.canParent(*in.ParentID, ref); err != nil {
			return nil, err
		}
	}

	start := g.start
	if in.Start != nil {
		start = *in.Start
	}
	t := &domain.Task{
		ID:              id,
		Name:            in.Name,
		Notes:           in.Notes,
		Start:           start,
		PercentComplete: in.PercentComplete,
		Milestone:       in.Milestone,
		Mode:            mode,
		Style:           in.Style,
	}
	if in.ParentID != nil {
		p := *in.ParentID
		t.ParentID = &p
	}
	if in.Estimate != nil {
		e := *in.Estimate
		t.Estimate = &e
	}

	duration := 1.0
	switch {
	case in.Milestone:
		duration = 0
	case in.Duration != nil:
		duration = *in.Duration
	case in.End != nil:
		d, err := g.durationUntil(ref, start, *in.End)
		if err != nil {
			return nil, err
		}
		duration = d
	}
	if err := finite(ref, "duration", duration); err != nil {
		return nil, err
	}
	if duration < 0 {
		return nil, invalid(ref, "duration must not be negative, got %.2f", duration)
	}
	g.setDuration(t, duration)
	return t, nil
}

func (g *Graph) durationUntil(ref domain.Entity, start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, invalid(ref, "end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return g.cal.WorkingTimeBetween(g.cal.NextWorkingTime(start), end), nil
}

// setDuration stores d and recomputes Start/End through the calendar.
func (g *Graph) setDuration(t *domain.Task, d float64) {
	t.Duration = d
	if d == 0 {
		t.Start = g.cal.SnapForward(t.Start)
	} else {
		t.Start = g.cal.NextWorkingTime(t.Start)
	}
	t.End = g.cal.AddDuration(t.Start, d)
}

func (g *Graph) attach(t *domain.Task) {
	g.tasks[t.ID] = t
	if t.ParentID == nil {
		g.roots = append(g.roots, t.ID)
		return
	}
	p := g.tasks[*t.ParentID]
	p.Children = append(p.Children, t.ID)
}

// InsertTask adds a fully specified task under its explicit id. The parent,
// if any, must already exist. Children, dependencies and assignments on t
// are ignored; add them through the regular operations.
func (g *Graph) InsertTask(t domain.Task) error {
	ref := domain.TaskRef(t.ID)
	if t.ID <= 0 {
		return invalid(ref, "task id must be positive")
	}
	if _, exists := g.tasks[t.ID]; exists {
		return invalid(ref, "task %d already exists", t.ID)
	}
	in := TaskInput{
		Name:            t.Name,
		Notes:           t.Notes,
		ParentID:        t.ParentID,
		Start:           &t.Start,
		PercentComplete: t.PercentComplete,
		Milestone:       t.Milestone,
		Mode:            t.Mode,
		Estimate:        t.Estimate,
		Style:           t.Style,
	}
	d := t.Duration
	in.Duration = &d
	built, err := g.buildTask(t.ID, in)
	if err != nil {
		return err
	}
	g.attach(built)
	if t.ID >= g.nextTaskID {
		g.nextTaskID = t.ID + 1
	}
	return nil
}

// UpdateTask applies patch to task id.
func (g *Graph) UpdateTask(id int, patch TaskPatch) error {
	cur, ok := g.tasks[id]
	if !ok {
		return missingTask(id)
	}
	ref := domain.TaskRef(id)
	if cur.IsSummary() && (patch.Start != nil || patch.Duration != nil || patch.End != nil ||
		patch.PercentComplete != nil || (patch.Milestone != nil && *patch.Milestone)) {
		return invalid(ref, "summary task dates and progress are derived from its subtasks")
	}
	if patch.Duration != nil && patch.End != nil {
		return invalid(ref, "duration and end cannot both be given")
	}

	next := cur.Clone()
	if patch.Name != nil {
		if err := validateName(ref, *patch.Name); err != nil {
			return err
		}
		next.Name = *patch.Name
	}
	if patch.Notes != nil {
		if len([]rune(*patch.Notes)) > MaxNameLength {
			return invalid(ref, "notes exceed %d characters", MaxNameLength)
		}
		next.Notes = *patch.Notes
	}
	if patch.PercentComplete != nil {
		pct := *patch.PercentComplete
		if err := finite(ref, "percent complete", pct); err != nil {
			return err
		}
		if pct < 0 || pct > 100 {
			return invalid(ref, "percent complete must be in [0, 100], got %.2f", pct)
		}
		next.PercentComplete = pct
	}
	if patch.Mode != nil {
		if !domain.ValidScheduleModes[string(*patch.Mode)] {
			return invalid(ref, "unknown schedule mode %q", *patch.Mode)
		}
		next.Mode = *patch.Mode
	}
	if patch.ClearEstimate {
		next.Estimate = nil
	}
	if patch.Estimate != nil {
		if err := patch.Estimate.Validate(); err != nil {
			return invalid(ref, "%v", err)
		}
		e := *patch.Estimate
		next.Estimate = &e
	}
	if patch.Style != nil {
		next.Style = patch.Style
	}
	if patch.Milestone != nil {
		next.Milestone = *patch.Milestone
	}
	if patch.Start != nil {
		next.Start = *patch.Start
	}

	if !cur.IsSummary() {
		duration := next.Duration
		switch {
		case next.Milestone:
			duration = 0
		case patch.Duration != nil:
			duration = *patch.Duration
		case patch.End != nil:
			d, err := g.durationUntil(ref, next.Start, *patch.End)
			if err != nil {
				return err
			}
			duration = d
		}
		if err := finite(ref, "duration", duration); err != nil {
			return err
		}
		if duration < 0 {
			return invalid(ref, "duration must not be negative, got %.2f", duration)
		}
		g.setDuration(&next, duration)
	}

	*cur = next
	g.rollup()
	return nil
}

// RemoveTask deletes id and all its descendants together with every
// dependency touching them and their assignments. It returns the removed ids.
func (g *Graph) RemoveTask(id int) ([]int, error) {
	t, ok := g.tasks[id]
	if !ok {
		return nil, missingTask(id)
	}
	removed := append([]int{id}, g.Descendants(id)...)
	gone := make(map[int]bool, len(removed))
	for _, r := range removed {
		gone[r] = true
	}

	if t.ParentID == nil {
		g.roots = without(g.roots, id)
	} else {
		p := g.tasks[*t.ParentID]
		p.Children = without(p.Children, id)
	}
	for _, r := range removed {
		delete(g.tasks, r)
	}
	for _, other := range g.tasks {
		kept := other.Dependencies[:0]
		for _, d := range other.Dependencies {
			if !gone[d.PredecessorID] {
				kept = append(kept, d)
			}
		}
		other.Dependencies = kept
	}
	g.rollup()
	return removed, nil
}

// MoveTask re-parents id under newParent (nil for the root level) at
// position index; a negative or out-of-range index appends.
func (g *Graph) MoveTask(id int, newParent *int, index int) error {
	t, ok := g.tasks[id]
	if !ok {
		return missingTask(id)
	}
	ref := domain.TaskRef(id)
	if newParent != nil {
		if *newParent == id {
			return invalid(ref, "task cannot be its own parent")
		}
		for _, d := range g.Descendants(id) {
			if d == *newParent {
				return invalid(ref, "task cannot move under its own subtask %d", d)
			}
		}
		if err := g.canParent(*newParent, ref); err != nil {
			return err
		}
	}

	if t.ParentID == nil {
		g.roots = without(g.roots, id)
	} else {
		p := g.tasks[*t.ParentID]
		p.Children = without(p.Children, id)
	}
	if newParent == nil {
		t.ParentID = nil
		g.roots = insertAt(g.roots, id, index)
	} else {
		p := *newParent
		t.ParentID = &p
		g.tasks[p].Children = insertAt(g.tasks[p].Children, id, index)
	}
	g.rollup()
	return nil
}

// Indent moves id under its preceding sibling.
func (g *Graph) Indent(id int) error {
	t, ok := g.tasks[id]
	if !ok {
		return missingTask(id)
	}
	siblings := g.Children(t.ParentID)
	for i, s := range siblings {
		if s == id {
			if i == 0 {
				return invalid(domain.TaskRef(id), "first task at its level cannot be indented")
			}
			prev := siblings[i-1]
			return g.MoveTask(id, &prev, -1)
		}
	}
	return missingTask(id)
}

// Outdent moves id up one level, directly after its former parent.
func (g *Graph) Outdent(id int) error {
	t, ok := g.tasks[id]
	if !ok {
		return missingTask(id)
	}
	if t.ParentID == nil {
		return invalid(domain.TaskRef(id), "top-level task cannot be outdented")
	}
	parent := g.tasks[*t.ParentID]
	grand := parent.ParentID
	pos := indexOf(g.Children(grand), parent.ID) + 1
	return g.MoveTask(id, grand, pos)
}

func without(ids []int, id int) []int {
	out := make([]int, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func insertAt(ids []int, id, index int) []int {
	if index < 0 || index >= len(ids) {
		return append(ids, id)
	}
	ids = append(ids, 0)
	copy(ids[index+1:], ids[index:])
	ids[index] = id
	return ids
}

func indexOf(ids []int, id int) int {
	for i, x := range ids {
		if x == id {
			return i
		}
	}
	return -1
}
