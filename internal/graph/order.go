package graph

import (
	"container/heap"
	"strconv"

	"github.com/alexanderramin/tempo/internal/domain"
)

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopologicalOrder returns every task id such that each predecessor precedes
// its successors. Ready tasks are emitted lowest id first, so the order is
// fully deterministic.
func (g *Graph) TopologicalOrder() ([]int, error) {
	indeg := make(map[int]int, len(g.tasks))
	for id, t := range g.tasks {
		indeg[id] = len(t.Dependencies)
	}
	succ := g.Successors()

	ready := &intMinHeap{}
	heap.Init(ready)
	for id, n := range indeg {
		if n == 0 {
			heap.Push(ready, id)
		}
	}
	out := make([]int, 0, len(g.tasks))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		out = append(out, n)
		for _, m := range succ[n] {
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}
	if len(out) < len(g.tasks) {
		stuck := 0
		for id, n := range indeg {
			if n > 0 && (stuck == 0 || id < stuck) {
				stuck = id
			}
		}
		return nil, domain.Errorf(domain.ErrCyclicDependency, domain.TaskRef(stuck), "task %d is part of a dependency cycle", stuck)
	}
	return out, nil
}

// WBS returns the outline number of id, e.g. "2.1.3", or "" if unknown.
func (g *Graph) WBS(id int) string {
	return g.WBSCodes()[id]
}

// WBSCodes returns the outline number of every task.
func (g *Graph) WBSCodes() map[int]string {
	out := make(map[int]string, len(g.tasks))
	var walk func(ids []int, prefix string)
	walk = func(ids []int, prefix string) {
		for i, id := range ids {
			code := prefix + strconv.Itoa(i+1)
			out[id] = code
			walk(g.tasks[id].Children, code+".")
		}
	}
	walk(g.roots, "")
	return out
}
