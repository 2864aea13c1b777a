package graph

import (
	"sort"
	"strings"

	"github.com/alexanderramin/tempo/internal/domain"
)

type ResourceInput struct {
	Name       string
	Rate       float64
	Capacity   float64
	Exceptions []domain.ExceptionInterval
}

// ResourcePatch describes a resource edit; nil fields are unchanged.
type ResourcePatch struct {
	Name       *string
	Rate       *float64
	Capacity   *float64
	Exceptions *[]domain.ExceptionInterval
}

func missingResource(id int) error {
	return domain.Errorf(domain.ErrInvalidReference, domain.ResourceRef(id), "resource %d does not exist", id)
}

func (g *Graph) validateResource(id int, r domain.Resource) error {
	ref := domain.ResourceRef(id)
	if err := validateName(ref, r.Name); err != nil {
		return err
	}
	if err := finite(ref, "billing rate", r.Rate); err != nil {
		return err
	}
	if err := finite(ref, "capacity", r.Capacity); err != nil {
		return err
	}
	if r.Rate < 0 {
		return invalid(ref, "billing rate must not be negative, got %.2f", r.Rate)
	}
	if r.Capacity < 0 {
		return invalid(ref, "capacity must not be negative, got %.2f", r.Capacity)
	}
	for _, ex := range r.Exceptions {
		if ex.End.Before(ex.Start) {
			return invalid(ref, "exception %s ends before it starts", ex)
		}
	}
	for oid, other := range g.resources {
		if oid != id && strings.EqualFold(other.Name, r.Name) {
			return invalid(ref, "resource name %q is already used by resource %d", r.Name, oid)
		}
	}
	return nil
}

// AddResource validates and stores a new resource, returning its id.
func (g *Graph) AddResource(in ResourceInput) (int, error) {
	id := g.nextResourceID
	r := domain.Resource{
		ID:         id,
		Name:       in.Name,
		Rate:       in.Rate,
		Capacity:   in.Capacity,
		Exceptions: append([]domain.ExceptionInterval(nil), in.Exceptions...),
	}
	if r.Capacity == 0 {
		r.Capacity = domain.DefaultCapacity
	}
	if err := g.validateResource(id, r); err != nil {
		return 0, err
	}
	g.resources[id] = &r
	g.nextResourceID++
	return id, nil
}

// InsertResource stores a resource under its explicit id.
func (g *Graph) InsertResource(r domain.Resource) error {
	if r.ID <= 0 {
		return invalid(domain.ResourceRef(r.ID), "resource id must be positive")
	}
	if _, exists := g.resources[r.ID]; exists {
		return invalid(domain.ResourceRef(r.ID), "resource %d already exists", r.ID)
	}
	if err := g.validateResource(r.ID, r); err != nil {
		return err
	}
	c := r.Clone()
	if c.Capacity == 0 {
		c.Capacity = domain.DefaultCapacity
	}
	g.resources[r.ID] = &c
	if r.ID >= g.nextResourceID {
		g.nextResourceID = r.ID + 1
	}
	return nil
}

// UpdateResource applies patch to resource id.
func (g *Graph) UpdateResource(id int, patch ResourcePatch) error {
	cur, ok := g.resources[id]
	if !ok {
		return missingResource(id)
	}
	next := cur.Clone()
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Rate != nil {
		next.Rate = *patch.Rate
	}
	if patch.Capacity != nil {
		next.Capacity = *patch.Capacity
	}
	if patch.Exceptions != nil {
		next.Exceptions = append([]domain.ExceptionInterval(nil), (*patch.Exceptions)...)
	}
	if err := g.validateResource(id, next); err != nil {
		return err
	}
	*cur = next
	return nil
}

// RemoveResource deletes the resource and all of its assignments.
func (g *Graph) RemoveResource(id int) error {
	if _, ok := g.resources[id]; !ok {
		return missingResource(id)
	}
	delete(g.resources, id)
	for _, t := range g.tasks {
		kept := t.Assignments[:0]
		for _, a := range t.Assignments {
			if a.ResourceID != id {
				kept = append(kept, a)
			}
		}
		t.Assignments = kept
	}
	return nil
}

// Assign sets resourceID's allocation on taskID, replacing any existing
// assignment of the same pair.
func (g *Graph) Assign(taskID, resourceID int, allocation float64) error {
	ref := domain.Entity{Type: domain.EntityAssignment, ID: domain.TaskRef(taskID).ID + "/" + domain.ResourceRef(resourceID).ID}
	t, ok := g.tasks[taskID]
	if !ok {
		return missingTask(taskID)
	}
	if _, ok := g.resources[resourceID]; !ok {
		return missingResource(resourceID)
	}
	if t.IsSummary() {
		return invalid(ref, "summary task %d cannot take assignments", taskID)
	}
	if err := finite(ref, "allocation", allocation); err != nil {
		return err
	}
	if allocation <= 0 || allocation > domain.MaxAllocation {
		return invalid(ref, "allocation must be in (0, %.0f], got %.2f", domain.MaxAllocation, allocation)
	}
	for i, a := range t.Assignments {
		if a.ResourceID == resourceID {
			t.Assignments[i].Allocation = allocation
			return nil
		}
	}
	t.Assignments = append(t.Assignments, domain.Assignment{TaskID: taskID, ResourceID: resourceID, Allocation: allocation})
	sort.Slice(t.Assignments, func(i, j int) bool { return t.Assignments[i].ResourceID < t.Assignments[j].ResourceID })
	return nil
}

// Unassign removes the assignment of resourceID from taskID.
func (g *Graph) Unassign(taskID, resourceID int) error {
	t, ok := g.tasks[taskID]
	if !ok {
		return missingTask(taskID)
	}
	for i, a := range t.Assignments {
		if a.ResourceID == resourceID {
			t.Assignments = append(t.Assignments[:i], t.Assignments[i+1:]...)
			return nil
		}
	}
	return domain.Errorf(domain.ErrInvalidReference, domain.Entity{Type: domain.EntityAssignment, ID: domain.TaskRef(taskID).ID + "/" + domain.ResourceRef(resourceID).ID},
		"resource %d is not assigned to task %d", resourceID, taskID)
}
