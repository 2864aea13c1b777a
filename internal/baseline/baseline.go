// Package baseline captures immutable schedule snapshots and compares the
// live schedule against them.
package baseline

import (
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
	"github.com/google/uuid"
)

// Set is the bounded collection of baselines of one project.
type Set struct {
	projectID string
	items     []domain.Baseline
}

// NewSet wraps existing baselines, oldest first.
func NewSet(projectID string, existing []domain.Baseline) *Set {
	items := append([]domain.Baseline(nil), existing...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return &Set{projectID: projectID, items: items}
}

// List returns the baselines oldest first.
func (s *Set) List() []domain.Baseline {
	return append([]domain.Baseline(nil), s.items...)
}

func (s *Set) Len() int { return len(s.items) }

func notFound(id string) error {
	return domain.Errorf(domain.ErrInvalidReference, domain.Entity{Type: domain.EntityBaseline, ID: id}, "baseline %q does not exist", id)
}

// Get finds a baseline by id, then by case-insensitive name, then by a
// unique id prefix.
func (s *Set) Get(ref string) (domain.Baseline, error) {
	for _, b := range s.items {
		if b.ID == ref {
			return b, nil
		}
	}
	for _, b := range s.items {
		if strings.EqualFold(b.Name, ref) {
			return b, nil
		}
	}
	if ref == "" {
		return domain.Baseline{}, notFound(ref)
	}
	var matches []domain.Baseline
	for _, b := range s.items {
		if strings.HasPrefix(b.ID, strings.ToLower(ref)) {
			matches = append(matches, b)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Baseline{}, notFound(ref)
	case 1:
		return matches[0], nil
	}
	return domain.Baseline{}, domain.Errorf(domain.ErrInvalidReference, domain.Entity{Type: domain.EntityBaseline, ID: ref},
		"baseline prefix %q is ambiguous (%d matches)", ref, len(matches))
}

func (s *Set) validateName(id, name string) error {
	entity := domain.Entity{Type: domain.EntityBaseline, ID: id}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Errorf(domain.ErrValidation, entity, "baseline name is required")
	}
	if len([]rune(name)) > graph.MaxNameLength {
		return domain.Errorf(domain.ErrValidation, entity, "baseline name exceeds %d characters", graph.MaxNameLength)
	}
	for _, b := range s.items {
		if b.ID != id && strings.EqualFold(b.Name, name) {
			return domain.Errorf(domain.ErrValidation, entity, "baseline name %q is already used", name)
		}
	}
	return nil
}

// Capture freezes every task of g into a new baseline. It fails with
// CapacityExceeded once the project holds MaxBaselines baselines.
func (s *Set) Capture(g *graph.Graph, name string, now time.Time) (domain.Baseline, error) {
	if len(s.items) >= domain.MaxBaselines {
		return domain.Baseline{}, domain.Errorf(domain.ErrCapacityExceeded, domain.Entity{Type: domain.EntityBaseline},
			"a project holds at most %d baselines; delete one first", domain.MaxBaselines)
	}
	id := uuid.New().String()
	if err := s.validateName(id, name); err != nil {
		return domain.Baseline{}, err
	}

	wbs := g.WBSCodes()
	b := domain.Baseline{
		ID:        id,
		ProjectID: s.projectID,
		Name:      strings.TrimSpace(name),
		CreatedAt: now.UTC(),
		Snapshots: make(map[int]domain.TaskSnapshot, g.Len()),
	}
	for _, t := range g.Tasks() {
		b.Snapshots[t.ID] = domain.TaskSnapshot{
			TaskID:          t.ID,
			Name:            t.Name,
			WBS:             wbs[t.ID],
			Start:           t.Start,
			End:             t.End,
			Duration:        t.Duration,
			PercentComplete: t.PercentComplete,
			Summary:         t.IsSummary(),
		}
	}
	s.items = append(s.items, b)
	return b, nil
}

// Rename changes a baseline's name; its snapshots are untouched.
func (s *Set) Rename(ref, name string) (domain.Baseline, error) {
	b, err := s.Get(ref)
	if err != nil {
		return domain.Baseline{}, err
	}
	if err := s.validateName(b.ID, name); err != nil {
		return domain.Baseline{}, err
	}
	for i := range s.items {
		if s.items[i].ID == b.ID {
			s.items[i].Name = strings.TrimSpace(name)
			return s.items[i], nil
		}
	}
	return domain.Baseline{}, notFound(ref)
}

// Delete removes a baseline and returns it.
func (s *Set) Delete(ref string) (domain.Baseline, error) {
	b, err := s.Get(ref)
	if err != nil {
		return domain.Baseline{}, err
	}
	for i := range s.items {
		if s.items[i].ID == b.ID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return b, nil
}
