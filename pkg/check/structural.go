package check

import (
	"fmt"
	"sort"
	"strings"

	"github.com/newtron-network/topocheck/pkg/issue"
	"github.com/newtron-network/topocheck/pkg/model"
	"github.com/newtron-network/topocheck/pkg/topology"
)

func checkNetworkLoops(in *Input) []issue.Issue {
	var out []issue.Issue
	for _, c := range topology.FindCycles(in.Graph) {
		path := append(append([]string(nil), c.Nodes...), c.Nodes[0])
		msg := fmt.Sprintf("routing loop %s", strings.Join(path, " -> "))
		if len(c.Nodes) == 1 {
			msg = fmt.Sprintf("router %s connects network %s to itself", c.Routers[0], c.Nodes[0])
		}
		out = append(out, issue.New(string(NetworkLoops), issue.Error, msg, c.Nodes, map[string]any{
			"cycle":   c.Nodes,
			"routers": c.Routers,
			"length":  len(c.Nodes),
		}))
	}
	return out
}

// rootNode picks the traversal root: the lowest-numbered network that has
// an edge, ties by id; other connected nodes by id only if no numbered
// network qualifies. Returns "" when the graph has no edges.
func rootNode(in *Input) string {
	var numbered []model.Network
	for _, n := range in.Doc.Networks {
		if n.IsNumbered() && in.Graph.HasEdges(n.ID) {
			numbered = append(numbered, n)
		}
	}
	if len(numbered) > 0 {
		sort.Slice(numbered, func(i, j int) bool {
			if numbered[i].Number != numbered[j].Number {
				return numbered[i].Number < numbered[j].Number
			}
			return numbered[i].ID < numbered[j].ID
		})
		return numbered[0].ID
	}
	for _, id := range in.Graph.Nodes {
		if in.Graph.HasEdges(id) {
			return id
		}
	}
	return ""
}

func checkUnreachableNetworks(in *Input) []issue.Issue {
	doc, g := in.Doc, in.Graph
	if len(doc.Networks) < 2 {
		return nil
	}

	root := rootNode(in)
	reach := topology.Reachable(g, root)
	components := topology.Components(g)
	componentOf := map[string][]string{}
	for _, comp := range components {
		for _, id := range comp {
			componentOf[id] = comp
		}
	}

	var out []issue.Issue
	report := func(id, kind, name string) {
		if !g.HasNode(id) {
			out = append(out, issue.New(string(UnreachableNetworks), issue.Warning,
				fmt.Sprintf("%s %s is not connected to any router", kind, name),
				[]string{id}, map[string]any{
					"isolation_type": "unrouted",
					"node_type":      kind,
				}))
			return
		}
		if reach[id] {
			return
		}
		comp := componentOf[id]
		isolation := "partial"
		if len(comp) == 1 {
			isolation = "isolated"
		}
		extra := map[string]any{
			"isolation_type": isolation,
			"node_type":      kind,
			"component":      comp,
		}
		msg := fmt.Sprintf("%s %s has no routing path to any other network", kind, name)
		if root != "" {
			extra["root"] = root
			msg = fmt.Sprintf("%s %s cannot reach root network %s", kind, name, root)
		}
		out = append(out, issue.New(string(UnreachableNetworks), issue.Error, msg, []string{id}, extra))
	}

	for _, n := range doc.Networks {
		report(n.ID, "network", n.DisplayName())
	}
	for _, s := range doc.Subnets {
		// a subnet inside a routed network is reached through that network
		if !g.HasNode(s.ID) && s.Network != "" && g.HasNode(s.Network) {
			continue
		}
		name := s.ID
		if s.Address != "" {
			name = fmt.Sprintf("%s (%s)", s.ID, s.Address)
		}
		report(s.ID, "subnet", name)
	}
	return out
}

func checkMissingRouters(in *Input) []issue.Issue {
	doc, g := in.Doc, in.Graph
	var out []issue.Issue

	for _, ref := range g.Unresolved {
		out = append(out, issue.New(string(MissingRouters), issue.Warning,
			fmt.Sprintf("router %s references unknown network %s", ref.Router, ref.Node),
			[]string{ref.Router, ref.Node}, map[string]any{"reason": "unknown-network"}))
	}

	for _, r := range doc.Routers {
		distinct := map[string]bool{}
		for _, id := range r.Networks {
			if id = strings.TrimSpace(id); id != "" {
				distinct[id] = true
			}
		}
		if len(distinct) < 2 {
			out = append(out, issue.New(string(MissingRouters), issue.Warning,
				fmt.Sprintf("router %s connects %d network(s); a router needs at least two", r.ID, len(distinct)),
				[]string{r.ID}, map[string]any{"reason": "single-network", "network_count": len(distinct)}))
		}
	}

	deviceCount := map[string]int{}
	for _, dev := range doc.Devices {
		if n, ok := doc.DeviceNetwork(dev); ok {
			deviceCount[n.ID]++
		}
	}
	if len(deviceCount) < 2 {
		return out
	}

	routed := map[string]bool{}
	for _, id := range g.Nodes {
		routed[id] = true
	}
	for _, s := range doc.Subnets {
		if g.HasNode(s.ID) && s.Network != "" {
			routed[s.Network] = true
		}
	}
	for _, n := range doc.Networks {
		count := deviceCount[n.ID]
		if count == 0 || routed[n.ID] {
			continue
		}
		out = append(out, issue.New(string(MissingRouters), issue.Warning,
			fmt.Sprintf("%s has %d device(s) but no router to the other %d device network(s)",
				n.DisplayName(), count, len(deviceCount)-1),
			[]string{n.ID}, map[string]any{"reason": "no-router", "device_count": count}))
	}
	return out
}
