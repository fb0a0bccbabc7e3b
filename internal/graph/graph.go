// Package graph indexes a similarity-network snapshot and answers the
// neighbourhood and common-point queries behind node selection.
package graph

import (
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/simnet/internal/models"
)

// Graph is an immutable snapshot of one similarity-network query result.
// All accessors return copies; nothing mutates a Graph after Build.
type Graph struct {
	nodes     []models.CrimeNode
	edges     []models.SimilarityEdge
	index     map[models.NodeID]int   // node id -> position in nodes
	adjacency map[models.NodeID][]int // node id -> positions of incident edges
	dropped   []error
}

// Stats summarizes a snapshot.
type Stats struct {
	Nodes   int `json:"nodes"`
	Edges   int `json:"edges"`
	Dropped int `json:"dropped"`
	Groups  int `json:"groups"`
}

// Build validates and indexes nodes and edges into a Graph.
//
// Duplicate node ids fail the whole snapshot with ErrDuplicateNode. Edges
// naming unknown ids or linking a node to itself are discarded; the causes
// are kept in Dropped() and their count is logged. Parallel edges between
// the same pair are all kept.
func Build(nodes []models.CrimeNode, edges []models.SimilarityEdge, logger *slog.Logger) (*Graph, error) {
	if logger == nil {
		logger = slog.Default()
	}

	g := &Graph{
		nodes:     make([]models.CrimeNode, len(nodes)),
		index:     make(map[models.NodeID]int, len(nodes)),
		adjacency: make(map[models.NodeID][]int, len(nodes)),
	}
	copy(g.nodes, nodes)

	for i, n := range g.nodes {
		if _, exists := g.index[n.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
		}
		g.index[n.ID] = i
	}

	g.edges = make([]models.SimilarityEdge, 0, len(edges))
	var dangling, selfLoops int
	for _, e := range edges {
		if err := g.checkEdge(e); err != nil {
			g.dropped = append(g.dropped, err)
			if e.From == e.To {
				selfLoops++
			} else {
				dangling++
			}
			continue
		}

		pos := len(g.edges)
		g.edges = append(g.edges, e)
		g.adjacency[e.From] = append(g.adjacency[e.From], pos)
		g.adjacency[e.To] = append(g.adjacency[e.To], pos)
	}

	if len(g.dropped) > 0 {
		logger.Warn("discarded invalid similarity edges",
			"dropped", len(g.dropped),
			"dangling", dangling,
			"self_loops", selfLoops,
		)
	}
	logger.Debug("graph built", "nodes", len(g.nodes), "edges", len(g.edges))

	return g, nil
}

func (g *Graph) checkEdge(e models.SimilarityEdge) error {
	if e.From == e.To {
		return fmt.Errorf("%w: %s", ErrSelfLoop, e.From)
	}
	for _, id := range []models.NodeID{e.From, e.To} {
		if _, ok := g.index[id]; !ok {
			return fmt.Errorf("%w: %s (edge %s-%s)", ErrDanglingEdge, id, e.From, e.To)
		}
	}
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id models.NodeID) (models.CrimeNode, bool) {
	i, ok := g.index[id]
	if !ok {
		return models.CrimeNode{}, false
	}
	return g.nodes[i], true
}

// Nodes returns the node set in response order.
func (g *Graph) Nodes() []models.CrimeNode {
	out := make([]models.CrimeNode, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the retained edges in response order.
func (g *Graph) Edges() []models.SimilarityEdge {
	out := make([]models.SimilarityEdge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Degree returns the number of retained edges incident to id.
func (g *Graph) Degree(id models.NodeID) int {
	return len(g.adjacency[id])
}

// Dropped returns the reasons edges were discarded during Build.
func (g *Graph) Dropped() []error {
	out := make([]error, len(g.dropped))
	copy(out, g.dropped)
	return out
}

// Empty reports whether the snapshot has no nodes.
func (g *Graph) Empty() bool {
	return g == nil || len(g.nodes) == 0
}

// Stats returns node, edge, dropped-edge and group counts.
func (g *Graph) Stats() Stats {
	groups := make(map[string]struct{})
	for _, n := range g.nodes {
		groups[n.GroupKey()] = struct{}{}
	}
	return Stats{
		Nodes:   len(g.nodes),
		Edges:   len(g.edges),
		Dropped: len(g.dropped),
		Groups:  len(groups),
	}
}
