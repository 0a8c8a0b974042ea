package topology

// Reachable returns every node connected to root, ignoring edge direction.
// The root itself is included when it is a node of the graph.
func Reachable(g *Graph, root string) map[string]bool {
	seen := map[string]bool{}
	if !g.HasNode(root) {
		return seen
	}

	seen[root] = true
	queue := []string{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range g.Neighbors(cur) {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return seen
}

// Components partitions the graph's nodes into connected components,
// ignoring edge direction. Components and their members are sorted.
func Components(g *Graph) [][]string {
	assigned := map[string]bool{}
	var out [][]string
	for _, n := range g.Nodes {
		if assigned[n] {
			continue
		}
		reach := Reachable(g, n)
		comp := make([]string, 0, len(reach))
		for _, m := range g.Nodes {
			if reach[m] {
				comp = append(comp, m)
				assigned[m] = true
			}
		}
		out = append(out, comp)
	}
	return out
}
