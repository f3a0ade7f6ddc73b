package game

import "fmt"

// Graph is the adjacency relation: who receives side effects from whom.
// It is fixed for the lifetime of a game. Symmetry is not assumed; the
// canonical triangle happens to be symmetric, but asymmetric topologies
// are legal.
type Graph struct {
	adj map[string][]string
}

// NewGraph builds a graph over the given player ids. Edges map an actor to
// the players affected by its extractions. Unknown ids and self-adjacency
// are rejected.
func NewGraph(ids []string, edges map[string][]string) (*Graph, error) {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	adj := make(map[string][]string, len(ids))
	for _, id := range ids {
		adj[id] = nil
	}
	for from, tos := range edges {
		if !known[from] {
			return nil, fmt.Errorf("adjacency references unknown player %q", from)
		}
		for _, to := range tos {
			if !known[to] {
				return nil, fmt.Errorf("adjacency references unknown player %q", to)
			}
			if to == from {
				return nil, fmt.Errorf("player %q cannot be adjacent to itself", from)
			}
			adj[from] = append(adj[from], to)
		}
	}
	return &Graph{adj: adj}, nil
}

// CompleteGraph builds the canonical topology: every player adjacent to
// every other player.
func CompleteGraph(ids []string) *Graph {
	adj := make(map[string][]string, len(ids))
	for _, id := range ids {
		for _, other := range ids {
			if other != id {
				adj[id] = append(adj[id], other)
			}
		}
	}
	return &Graph{adj: adj}
}

// Neighbors returns the players affected by the given player's actions,
// in a stable order. The returned slice is a copy.
func (g *Graph) Neighbors(id string) []string {
	tos := g.adj[id]
	out := make([]string, len(tos))
	copy(out, tos)
	return out
}

// HasEdge reports whether to receives side effects from from.
func (g *Graph) HasEdge(from, to string) bool {
	for _, id := range g.adj[from] {
		if id == to {
			return true
		}
	}
	return false
}
