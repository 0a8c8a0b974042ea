package topology

import (
	"sort"
	"strings"
)

type color int

const (
	white color = iota
	gray
	black
)

// Cycle is one loop in the graph: Nodes starts where the loop closes and
// does not repeat the first node at the end. Routers lists the routers
// along the loop in the same order.
type Cycle struct {
	Nodes   []string
	Routers []string
}

// Key identifies the cycle by its node set.
func (c Cycle) Key() string {
	set := make([]string, len(c.Nodes))
	copy(set, c.Nodes)
	sort.Strings(set)
	return strings.Join(set, "\x00")
}

// FindCycles runs a three-color depth-first search from every node in sorted
// order and returns each distinct cycle (by node set) once.
//
// After entering a node through a router, the search does not leave through
// that same router again: a router already joins all of its networks, so
// bouncing back through it is not a loop. Self-loops are always followed.
// A loop therefore needs at least two routers, or a router that lists one
// network twice.
func FindCycles(g *Graph) []Cycle {
	colors := make(map[string]color, len(g.Nodes))
	seen := map[string]bool{}
	var cycles []Cycle

	var path []string
	var via []string

	var visit func(node, entry string)
	visit = func(node, entry string) {
		colors[node] = gray
		path = append(path, node)

		for _, e := range g.Out(node) {
			if e.Via == entry && !e.IsSelfLoop() {
				continue
			}
			switch colors[e.To] {
			case white:
				via = append(via, e.Via)
				visit(e.To, e.Via)
				via = via[:len(via)-1]
			case gray:
				start := indexOf(path, e.To)
				c := Cycle{
					Nodes:   append([]string(nil), path[start:]...),
					Routers: append(append([]string(nil), via[start:]...), e.Via),
				}
				if k := c.Key(); !seen[k] {
					seen[k] = true
					cycles = append(cycles, c)
				}
			}
		}

		path = path[:len(path)-1]
		colors[node] = black
	}

	for _, n := range g.Nodes {
		if colors[n] == white {
			visit(n, "")
		}
	}
	return cycles
}

func indexOf(s []string, v string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == v {
			return i
		}
	}
	return -1
}
