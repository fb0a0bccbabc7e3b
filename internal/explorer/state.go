// Package explorer implements the selection state machine of the
// similarity-network view: filter submission, graph loading, node
// selection and neighbour expansion.
package explorer

import (
	"github.com/raphaelgruber/simnet/internal/filter"
	"github.com/raphaelgruber/simnet/internal/graph"
	"github.com/raphaelgruber/simnet/internal/models"
)

// Phase is the coarse state of the view.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Neighbor is one ranked neighbour together with its common points with
// the selected node.
type Neighbor struct {
	Node         models.CrimeNode `json:"node"`
	Score        float64          `json:"score"`
	CommonPoints []string         `json:"common_points"`
}

// Selection is the open detail view for one node. It is replaced, never
// edited, when the user clicks elsewhere.
type Selection struct {
	Node      models.CrimeNode
	Neighbors []Neighbor
	Expanded  models.NodeID // Empty when no neighbour row is expanded
}

// IsExpanded reports whether the neighbour row for id is expanded.
func (s *Selection) IsExpanded(id models.NodeID) bool {
	return s != nil && s.Expanded != "" && s.Expanded == id
}

func (s *Selection) hasNeighbor(id models.NodeID) bool {
	for _, n := range s.Neighbors {
		if n.Node.ID == id {
			return true
		}
	}
	return false
}

// State is the full view state. Values are replaced as a whole on every
// transition; the Graph snapshot and Selection are shared read-only.
//
// Err is set in PhaseFailed, and in PhaseLoaded when a selection could not
// be computed; the graph stays usable in the latter case.
type State struct {
	Phase     Phase
	Seq       uint64 // Sequence number of the latest submission
	Params    filter.Params
	Graph     *graph.Graph
	Message   string
	Err       error
	Selection *Selection
}

// Request asks the caller to fetch the network for Params and feed the
// outcome back tagged with Seq.
type Request struct {
	Seq    uint64
	Params filter.Params
}
