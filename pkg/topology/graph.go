// Package topology derives the network-to-network reachability graph of a
// document from its routers.
package topology

import (
	"sort"
	"strings"

	"github.com/newtron-network/topocheck/pkg/model"
)

// Edge is one directed hop from network From to network To through router Via.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Via  string `json:"via"`
}

// IsSelfLoop reports whether the edge leaves and enters the same node.
func (e Edge) IsSelfLoop() bool {
	return e.From == e.To
}

// Ref is a router reference to a network or subnet the document does not define.
type Ref struct {
	Router string `json:"router"`
	Node   string `json:"node"`
}

// Graph is derived data: nodes are network and subnet ids referenced by
// routers, edges are router hops. It is never modified after Build.
type Graph struct {
	Nodes      []string
	Edges      []Edge
	Unresolved []Ref

	nodes map[string]bool
	out   map[string][]Edge
	adj   map[string][]string
}

// Build derives the graph from the document's routers. A router spanning N
// networks yields an edge for every ordered pair (full mesh), or only edges
// from its first network when unidirectional. Unknown references still
// become nodes and are recorded in Unresolved. Build is pure: equal
// documents yield equal graphs.
func Build(doc *model.Document) *Graph {
	g := &Graph{
		nodes: map[string]bool{},
		out:   map[string][]Edge{},
		adj:   map[string][]string{},
	}

	seenEdge := map[Edge]bool{}
	seenRef := map[Ref]bool{}
	addEdge := func(e Edge) {
		if seenEdge[e] {
			return
		}
		seenEdge[e] = true
		g.Edges = append(g.Edges, e)
	}

	for _, r := range doc.Routers {
		refs := make([]string, 0, len(r.Networks))
		for _, id := range r.Networks {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			refs = append(refs, id)
			g.nodes[id] = true
			if !doc.HasNode(id) {
				ref := Ref{Router: r.ID, Node: id}
				if !seenRef[ref] {
					seenRef[ref] = true
					g.Unresolved = append(g.Unresolved, ref)
				}
			}
		}

		if r.Unidirectional {
			for _, to := range refs[min(1, len(refs)):] {
				addEdge(Edge{From: refs[0], To: to, Via: r.ID})
			}
			continue
		}
		for i, from := range refs {
			for j, to := range refs {
				if i != j {
					addEdge(Edge{From: from, To: to, Via: r.ID})
				}
			}
		}
	}

	for id := range g.nodes {
		g.Nodes = append(g.Nodes, id)
	}
	sort.Strings(g.Nodes)

	sort.Slice(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Via < b.Via
	})
	sort.Slice(g.Unresolved, func(i, j int) bool {
		a, b := g.Unresolved[i], g.Unresolved[j]
		if a.Router != b.Router {
			return a.Router < b.Router
		}
		return a.Node < b.Node
	})

	undirected := map[string]map[string]bool{}
	link := func(a, b string) {
		if undirected[a] == nil {
			undirected[a] = map[string]bool{}
		}
		undirected[a][b] = true
	}
	for _, e := range g.Edges {
		g.out[e.From] = append(g.out[e.From], e)
		link(e.From, e.To)
		link(e.To, e.From)
	}
	for id, set := range undirected {
		for n := range set {
			g.adj[id] = append(g.adj[id], n)
		}
		sort.Strings(g.adj[id])
	}

	return g
}

// HasNode reports whether any router references id.
func (g *Graph) HasNode(id string) bool {
	return g.nodes[id]
}

// Out returns the edges leaving id, sorted by target then router.
func (g *Graph) Out(id string) []Edge {
	return g.out[id]
}

// Neighbors returns the nodes adjacent to id ignoring edge direction, sorted.
// A self-loop makes a node its own neighbor.
func (g *Graph) Neighbors(id string) []string {
	return g.adj[id]
}

// HasEdges reports whether id has any incoming or outgoing edge.
func (g *Graph) HasEdges(id string) bool {
	return len(g.adj[id]) > 0
}
