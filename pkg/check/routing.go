package check

import (
	"fmt"
	"sort"
	"strings"

	"github.com/newtron-network/topocheck/pkg/issue"
	"github.com/newtron-network/topocheck/pkg/topology"
)

// maxRoutingHops is the longest shortest path between two nodes that is
// not reported as suboptimal.
const maxRoutingHops = 4

func checkRoutingInefficiencies(in *Input) []issue.Issue {
	g := in.Graph
	var out []issue.Issue
	out = append(out, asymmetricRoutes(g)...)
	out = append(out, singleRouterNodes(g)...)
	out = append(out, missingRedundancy(g)...)
	out = append(out, longPaths(g)...)
	return out
}

// neighbors is g.Neighbors without the node itself.
func neighbors(g *topology.Graph, id string) []string {
	var out []string
	for _, n := range g.Neighbors(id) {
		if n != id {
			out = append(out, n)
		}
	}
	return out
}

// asymmetricRoutes reports node pairs with a route one way and none back.
func asymmetricRoutes(g *topology.Graph) []issue.Issue {
	back := map[[2]string]bool{}
	for _, e := range g.Edges {
		back[[2]string{e.From, e.To}] = true
	}

	via := map[[2]string][]string{}
	var pairs [][2]string
	for _, e := range g.Edges {
		pair := [2]string{e.From, e.To}
		if e.IsSelfLoop() || back[[2]string{e.To, e.From}] {
			continue
		}
		if via[pair] == nil {
			pairs = append(pairs, pair)
		}
		via[pair] = append(via[pair], e.Via)
	}

	var out []issue.Issue
	for _, p := range pairs {
		out = append(out, issue.New(string(RoutingInefficiencies), issue.Warning,
			fmt.Sprintf("asymmetric routing: %s can reach %s but not the reverse", p[0], p[1]),
			[]string{p[0], p[1]}, map[string]any{
				"kind":           "asymmetric-routing",
				"source_network": p[0],
				"target_network": p[1],
				"routers":        via[p],
			}))
	}
	return out
}

// singleRouterNodes reports nodes served by exactly one router that is also
// their only way to two or more other nodes.
func singleRouterNodes(g *topology.Graph) []issue.Issue {
	var out []issue.Issue
	for _, id := range g.Nodes {
		routers := map[string]bool{}
		for _, e := range g.Edges {
			if e.From == id || e.To == id {
				routers[e.Via] = true
			}
		}
		linked := neighbors(g, id)
		if len(routers) != 1 || len(linked) < 2 {
			continue
		}
		var router string
		for r := range routers {
			router = r
		}
		out = append(out, issue.New(string(RoutingInefficiencies), issue.Warning,
			fmt.Sprintf("router %s is the only router on %s; its failure cuts %d connected network(s)",
				router, id, len(linked)),
			[]string{router, id}, map[string]any{
				"kind":                     "router-single-point-failure",
				"router":                   router,
				"network":                  id,
				"connected_networks":       linked,
				"connected_networks_count": len(linked),
			}))
	}
	return out
}

// articulationPoints returns the nodes whose removal splits their connected
// component, ignoring edge direction. The result is sorted.
func articulationPoints(g *topology.Graph) []string {
	disc := map[string]int{}
	low := map[string]int{}
	cut := map[string]bool{}
	clock := 0

	var visit func(u, parent string)
	visit = func(u, parent string) {
		clock++
		disc[u], low[u] = clock, clock
		children := 0
		for _, v := range neighbors(g, u) {
			if _, seen := disc[v]; !seen {
				children++
				visit(v, u)
				low[u] = min(low[u], low[v])
				if parent != "" && low[v] >= disc[u] {
					cut[u] = true
				}
			} else if v != parent {
				low[u] = min(low[u], disc[v])
			}
		}
		if parent == "" && children > 1 {
			cut[u] = true
		}
	}

	for _, id := range g.Nodes {
		if _, seen := disc[id]; !seen {
			visit(id, "")
		}
	}

	out := make([]string, 0, len(cut))
	for id := range cut {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func missingRedundancy(g *topology.Graph) []issue.Issue {
	if len(g.Nodes) <= 2 {
		return nil
	}
	var out []issue.Issue
	for _, id := range articulationPoints(g) {
		linked := neighbors(g, id)
		out = append(out, issue.New(string(RoutingInefficiencies), issue.Warning,
			fmt.Sprintf("%s lacks redundant paths; losing it disconnects the topology", id),
			[]string{id}, map[string]any{
				"kind":                     "missing-redundancy",
				"network":                  id,
				"connected_networks":       linked,
				"connected_networks_count": len(linked),
			}))
	}
	return out
}

// shortestPaths runs a breadth-first search from source ignoring edge
// direction and returns the path to every reached node.
func shortestPaths(g *topology.Graph, source string) map[string][]string {
	paths := map[string][]string{source: {source}}
	queue := []string{source}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range g.Neighbors(cur) {
			if _, seen := paths[n]; seen {
				continue
			}
			p := make([]string, len(paths[cur]), len(paths[cur])+1)
			copy(p, paths[cur])
			paths[n] = append(p, n)
			queue = append(queue, n)
		}
	}
	return paths
}

// longPaths reports each node pair, once, whose shortest path is longer
// than maxRoutingHops.
func longPaths(g *topology.Graph) []issue.Issue {
	var out []issue.Issue
	for _, source := range g.Nodes {
		paths := shortestPaths(g, source)
		for _, target := range g.Nodes {
			p, ok := paths[target]
			if !ok || target <= source {
				continue
			}
			hops := len(p) - 1
			if hops <= maxRoutingHops {
				continue
			}
			out = append(out, issue.New(string(RoutingInefficiencies), issue.Warning,
				fmt.Sprintf("long routing path: %d hops from %s to %s (%s)", hops, source, target, strings.Join(p, " -> ")),
				[]string{source, target}, map[string]any{
					"kind":           "suboptimal-routing-path",
					"source_network": source,
					"target_network": target,
					"path_length":    hops,
					"routing_path":   p,
				}))
		}
	}
	return out
}
