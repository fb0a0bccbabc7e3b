package graph

import (
	"fmt"
	"math"
	"sort"

	"github.com/raphaelgruber/simnet/internal/models"
)

// DefaultTopK is the neighbourhood size shown for a selected node.
const DefaultTopK = 5

// NeighborsOf returns up to k nodes adjacent to id, ranked by link score
// descending with ties broken by ascending node id. When several edges link
// the same pair, the highest score wins. k <= 0 selects DefaultTopK.
//
// A node without incident edges yields an empty slice. An id missing from
// the graph, or an edge whose far endpoint cannot be resolved, yields
// ErrUnknownNode.
func (g *Graph) NeighborsOf(id models.NodeID, k int) ([]models.NeighborResult, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	if _, ok := g.index[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}

	incident := g.adjacency[id]
	best := make(map[models.NodeID]int, len(incident)) // neighbour -> position in results
	results := make([]models.NeighborResult, 0, len(incident))
	for _, pos := range incident {
		e := g.edges[pos]
		other := e.Other(id)
		if other == id {
			continue
		}
		if i, seen := best[other]; seen {
			if scoreAbove(e.Score, results[i].Score) {
				results[i].Score = e.Score
			}
			continue
		}
		node, ok := g.Node(other)
		if !ok {
			return nil, fmt.Errorf("%w: %s (neighbor of %s)", ErrUnknownNode, other, id)
		}
		best[other] = len(results)
		results = append(results, models.NeighborResult{Node: node, Score: e.Score})
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if scoreAbove(a.Score, b.Score) {
			return true
		}
		if scoreAbove(b.Score, a.Score) {
			return false
		}
		return a.Node.ID.Less(b.Node.ID)
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// scoreAbove orders scores descending; NaN ranks below every number.
func scoreAbove(a, b float64) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	default:
		return a > b
	}
}
