package explorer

import "github.com/raphaelgruber/simnet/internal/models"

// Event is an input to the state machine. UI callbacks (form submit, graph
// node click, list row click, close button) are translated into events.
type Event interface {
	event()
}

// SubmitFilters requests a new network for the given filters.
type SubmitFilters struct {
	Bairro    string
	TipoCrime string
}

// FetchSucceeded delivers the backend response for request Seq.
type FetchSucceeded struct {
	Seq      uint64
	Response *models.NetworkResponse
}

// FetchFailed delivers a fetch error for request Seq.
type FetchFailed struct {
	Seq uint64
	Err error
}

// NodeClicked selects a graph node.
type NodeClicked struct {
	ID models.NodeID
}

// NeighborClicked toggles the expanded row of a neighbour in the detail view.
type NeighborClicked struct {
	ID models.NodeID
}

// DetailClosed closes the detail view, keeping the graph.
type DetailClosed struct{}

func (SubmitFilters) event()   {}
func (FetchSucceeded) event()  {}
func (FetchFailed) event()     {}
func (NodeClicked) event()     {}
func (NeighborClicked) event() {}
func (DetailClosed) event()    {}
