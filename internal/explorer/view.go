package explorer

import (
	"github.com/raphaelgruber/simnet/internal/filter"
	"github.com/raphaelgruber/simnet/internal/graph"
	"github.com/raphaelgruber/simnet/internal/models"
)

// View is the serializable form of a State, as pushed to renderers.
type View struct {
	Phase     string         `json:"phase"`
	Seq       uint64         `json:"seq"`
	Filters   filter.Params  `json:"filters"`
	Message   string         `json:"message,omitempty"`
	Error     string         `json:"error,omitempty"`
	Empty     string         `json:"empty,omitempty"` // Set when the loaded network has no nodes
	Stats     *graph.Stats   `json:"stats,omitempty"`
	Selection *SelectionView `json:"selection,omitempty"`
}

// SelectionView is the detail modal for the selected node.
type SelectionView struct {
	Node      models.CrimeNode     `json:"node"`
	Details   []models.DetailField `json:"details"`
	Neighbors []NeighborView       `json:"neighbors"`
	Empty     string               `json:"empty,omitempty"`
}

// NeighborView is one neighbour row; Details is only filled when expanded.
type NeighborView struct {
	Neighbor
	Expanded bool                 `json:"expanded"`
	Details  []models.DetailField `json:"details,omitempty"`
}

// View converts the state for serialization.
func (s State) View() View {
	v := View{
		Phase:   s.Phase.String(),
		Seq:     s.Seq,
		Filters: s.Params,
		Message: s.Message,
		Error:   UserMessage(s.Err),
	}

	if s.Phase == PhaseLoaded && s.Graph != nil {
		stats := s.Graph.Stats()
		v.Stats = &stats
		if s.Graph.Empty() {
			v.Empty = MsgNoConnections
		}
	}

	if sel := s.Selection; sel != nil {
		sv := &SelectionView{
			Node:      sel.Node,
			Details:   models.DetailFields(sel.Node),
			Neighbors: make([]NeighborView, len(sel.Neighbors)),
		}
		if len(sel.Neighbors) == 0 {
			sv.Empty = MsgNoNeighbors
		}
		for i, n := range sel.Neighbors {
			row := NeighborView{Neighbor: n, Expanded: sel.IsExpanded(n.Node.ID)}
			if row.Expanded {
				row.Details = models.DetailFields(n.Node)
			}
			sv.Neighbors[i] = row
		}
		v.Selection = sv
	}

	return v
}
