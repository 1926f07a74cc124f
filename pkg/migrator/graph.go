package migrator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dperalta86/chameleondb/pkg/schema"
)

// color represents the state of a node during DFS cycle detection.
type color int

const (
	white color = iota // unvisited
	gray               // in current DFS path (cycle if revisited)
	black              // fully processed
)

// Graph is the table dependency graph of a schema. Nodes are entity indices
// into Schema.Entities; Deps[a] lists the entities a holds a foreign key
// into, ascending and without self references.
type Graph struct {
	Names []string
	Deps  [][]int
}

// BuildGraph derives the dependency graph from the foreign-key columns of s.
func BuildGraph(s *schema.Schema) *Graph {
	g := &Graph{
		Names: s.EntityNames(),
		Deps:  make([][]int, len(s.Entities)),
	}
	for a := range s.Entities {
		for _, c := range s.Columns(&s.Entities[a]) {
			if c.References == "" {
				continue
			}
			b := s.Index(c.References)
			if b < 0 || b == a || slices.Contains(g.Deps[a], b) {
				continue
			}
			g.Deps[a] = append(g.Deps[a], b)
		}
		slices.Sort(g.Deps[a])
	}
	return g
}

// Order returns the entity indices in creation order: every entity comes
// after the entities it depends on. Among entities that are ready at the
// same time the lowest index goes first, so the order is deterministic and
// follows declaration order where dependencies allow.
//
// A dependency cycle yields a circular_dependency *schema.GenerationError
// whose Cycle holds the entity indices of one cycle.
func (g *Graph) Order() ([]int, error) {
	n := len(g.Deps)
	done := make([]bool, n)
	order := make([]int, 0, n)
	for len(order) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !done[i] && g.ready(i, done) {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, g.cycleError(done)
		}
		done[next] = true
		order = append(order, next)
	}
	return order, nil
}

func (g *Graph) ready(i int, done []bool) bool {
	for _, d := range g.Deps[i] {
		if !done[d] {
			return false
		}
	}
	return true
}

// cycleError finds a cycle among the entities not yet ordered.
func (g *Graph) cycleError(done []bool) error {
	cycle := g.findCycle(done)
	if cycle == nil {
		return &schema.InternalError{Message: fmt.Sprintf("no order and no cycle among %d entities", len(g.Deps))}
	}
	names := make([]string, len(cycle))
	for i, idx := range cycle {
		names[i] = g.Names[idx]
	}
	err := schema.Generationf(schema.KindCircularDependency, names[0],
		"circular dependency between tables: %s", strings.Join(names, " → "))
	err.Cycle = cycle
	return err
}

// findCycle uses DFS with three-color marking, visiting nodes in index
// order. The returned cycle starts and ends with the same index.
func (g *Graph) findCycle(skip []bool) []int {
	colors := make([]color, len(g.Deps))
	parent := make([]int, len(g.Deps))

	var dfs func(n int) []int
	dfs = func(n int) []int {
		colors[n] = gray

		for _, neighbor := range g.Deps[n] {
			if skip[neighbor] {
				continue
			}
			switch colors[neighbor] {
			case gray:
				return reconstructCycle(n, neighbor, parent)
			case white:
				parent[neighbor] = n
				if cycle := dfs(neighbor); cycle != nil {
					return cycle
				}
			}
		}

		colors[n] = black
		return nil
	}

	for n := range g.Deps {
		if !skip[n] && colors[n] == white {
			if cycle := dfs(n); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// reconstructCycle builds the cycle path from parent pointers.
// from is the node where we detected the back-edge, to is the node we're returning to.
func reconstructCycle(from, to int, parent []int) []int {
	cycle := []int{to}
	for n := from; n != to; n = parent[n] {
		cycle = append([]int{n}, cycle...)
	}
	return append([]int{to}, cycle...)
}
