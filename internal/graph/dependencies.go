package graph

import (
	"sort"

	"github.com/alexanderramin/tempo/internal/domain"
)

// AddDependency inserts an edge after checking that both ends exist, that
// neither is a summary task, that the edge is new, and that it closes no
// cycle. On any failure the graph is unchanged.
func (g *Graph) AddDependency(dep domain.Dependency) error {
	ref := domain.EdgeRef(dep.PredecessorID, dep.SuccessorID)
	if !dep.Type.Valid() {
		return invalid(ref, "unknown dependency type %d", int(dep.Type))
	}
	if err := finite(ref, "lag", dep.Lag); err != nil {
		return err
	}
	pred, ok := g.tasks[dep.PredecessorID]
	if !ok {
		return domain.Errorf(domain.ErrInvalidReference, ref, "predecessor task %d does not exist", dep.PredecessorID)
	}
	succ, ok := g.tasks[dep.SuccessorID]
	if !ok {
		return domain.Errorf(domain.ErrInvalidReference, ref, "successor task %d does not exist", dep.SuccessorID)
	}
	if dep.PredecessorID == dep.SuccessorID {
		return domain.CycleError(dep.PredecessorID, dep.SuccessorID, []int{dep.SuccessorID})
	}
	if pred.IsSummary() {
		return invalid(ref, "summary task %d cannot be a predecessor", pred.ID)
	}
	if succ.IsSummary() {
		return invalid(ref, "summary task %d cannot be a successor", succ.ID)
	}
	for _, d := range succ.Dependencies {
		if d.PredecessorID == dep.PredecessorID {
			return invalid(ref, "task %d already depends on task %d", succ.ID, pred.ID)
		}
	}
	if path := g.pathBetween(dep.SuccessorID, dep.PredecessorID); path != nil {
		return domain.CycleError(dep.PredecessorID, dep.SuccessorID, path)
	}

	succ.Dependencies = append(succ.Dependencies, dep)
	sort.Slice(succ.Dependencies, func(i, j int) bool {
		return succ.Dependencies[i].PredecessorID < succ.Dependencies[j].PredecessorID
	})
	return nil
}

// UpdateDependency changes the type and lag of an existing edge.
func (g *Graph) UpdateDependency(pred, succ int, typ domain.DependencyType, lag float64) error {
	ref := domain.EdgeRef(pred, succ)
	if !typ.Valid() {
		return invalid(ref, "unknown dependency type %d", int(typ))
	}
	if err := finite(ref, "lag", lag); err != nil {
		return err
	}
	t, ok := g.tasks[succ]
	if !ok {
		return missingTask(succ)
	}
	for i, d := range t.Dependencies {
		if d.PredecessorID == pred {
			t.Dependencies[i].Type = typ
			t.Dependencies[i].Lag = lag
			return nil
		}
	}
	return domain.Errorf(domain.ErrInvalidReference, ref, "task %d does not depend on task %d", succ, pred)
}

// RemoveDependency deletes the edge pred -> succ.
func (g *Graph) RemoveDependency(pred, succ int) error {
	ref := domain.EdgeRef(pred, succ)
	t, ok := g.tasks[succ]
	if !ok {
		return missingTask(succ)
	}
	for i, d := range t.Dependencies {
		if d.PredecessorID == pred {
			t.Dependencies = append(t.Dependencies[:i], t.Dependencies[i+1:]...)
			return nil
		}
	}
	return domain.Errorf(domain.ErrInvalidReference, ref, "task %d does not depend on task %d", succ, pred)
}

// Successors returns the successor adjacency of every task, each list
// ordered by id.
func (g *Graph) Successors() map[int][]int {
	out := make(map[int][]int, len(g.tasks))
	for _, t := range g.tasks {
		for _, d := range t.Dependencies {
			out[d.PredecessorID] = append(out[d.PredecessorID], t.ID)
		}
	}
	for _, s := range out {
		sort.Ints(s)
	}
	return out
}

// pathBetween returns a path of task ids from -> ... -> to following
// successor edges, or nil when to is unreachable.
func (g *Graph) pathBetween(from, to int) []int {
	succ := g.Successors()
	visited := make(map[int]bool)
	var path []int
	var dfs func(id int) bool
	dfs = func(id int) bool {
		visited[id] = true
		path = append(path, id)
		if id == to {
			return true
		}
		for _, next := range succ[id] {
			if !visited[next] && dfs(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if dfs(from) {
		return path
	}
	return nil
}
