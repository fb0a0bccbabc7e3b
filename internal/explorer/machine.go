package explorer

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/simnet/internal/filter"
	"github.com/raphaelgruber/simnet/internal/graph"
	"github.com/raphaelgruber/simnet/internal/metrics"
)

var errEmptyResponse = errors.New("empty response")

// Machine holds the configuration of the transition function.
type Machine struct {
	TopK    int
	Logger  *slog.Logger
	Metrics *metrics.Collector
}

func (m Machine) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

// Reduce applies ev to s and returns the next state. When the next state
// needs backend data, a non-nil Request is returned; Reduce itself never
// performs I/O.
func (m Machine) Reduce(s State, ev Event) (State, *Request) {
	switch ev := ev.(type) {
	case SubmitFilters:
		return m.submit(s, ev)
	case FetchSucceeded:
		return m.fetchSucceeded(s, ev), nil
	case FetchFailed:
		return m.fetchFailed(s, ev), nil
	case NodeClicked:
		return m.selectNode(s, ev), nil
	case NeighborClicked:
		return toggleNeighbor(s, ev), nil
	case DetailClosed:
		if s.Selection != nil {
			s.Selection = nil
		}
		return s, nil
	default:
		m.logger().Warn("ignoring unknown event", "event", fmt.Sprintf("%T", ev))
		return s, nil
	}
}

// submit discards the current graph and selection. Every submission bumps
// the sequence number, so responses to earlier requests become stale even
// when the new filters are rejected.
func (m Machine) submit(s State, ev SubmitFilters) (State, *Request) {
	seq := s.Seq + 1

	params, err := filter.Build(ev.Bairro, ev.TipoCrime)
	if err != nil {
		return State{Phase: PhaseFailed, Seq: seq, Err: err}, nil
	}

	m.logger().Debug("network requested", "seq", seq, "filters", params.String())
	return State{Phase: PhaseLoading, Seq: seq, Params: params}, &Request{Seq: seq, Params: params}
}

func (m Machine) stale(s State, seq uint64) bool {
	if s.Phase == PhaseLoading && seq == s.Seq {
		return false
	}
	m.logger().Debug("discarding stale response", "seq", seq, "latest", s.Seq, "phase", s.Phase.String())
	m.Metrics.RecordStale()
	return true
}

func (m Machine) fetchSucceeded(s State, ev FetchSucceeded) State {
	if m.stale(s, ev.Seq) {
		return s
	}
	if ev.Response == nil {
		return State{Phase: PhaseFailed, Seq: s.Seq, Params: s.Params, Err: errEmptyResponse}
	}

	start := time.Now()
	g, err := graph.Build(ev.Response.Nodes, ev.Response.Edges, m.logger())
	m.Metrics.RecordTiming(metrics.OpBuild, time.Since(start), err)
	if err != nil {
		m.logger().Error("rejecting network snapshot", "seq", ev.Seq, "error", err)
		return State{Phase: PhaseFailed, Seq: s.Seq, Params: s.Params, Err: err}
	}

	return State{
		Phase:   PhaseLoaded,
		Seq:     s.Seq,
		Params:  s.Params,
		Graph:   g,
		Message: ev.Response.Message,
	}
}

func (m Machine) fetchFailed(s State, ev FetchFailed) State {
	if m.stale(s, ev.Seq) {
		return s
	}
	return State{Phase: PhaseFailed, Seq: s.Seq, Params: s.Params, Err: ev.Err}
}

// selectNode computes the neighbourhood from the graph already held; no
// request is issued. Any previous selection is replaced.
func (m Machine) selectNode(s State, ev NodeClicked) State {
	if s.Phase != PhaseLoaded || s.Graph == nil {
		return s
	}

	node, ok := s.Graph.Node(ev.ID)
	if !ok {
		m.logger().Warn("click on node outside the snapshot", "id", ev.ID)
		return s
	}

	start := time.Now()
	results, err := s.Graph.NeighborsOf(node.ID, m.TopK)
	m.Metrics.RecordTiming(metrics.OpNeighbors, time.Since(start), err)
	if err != nil {
		m.logger().Error("neighbor lookup failed", "id", node.ID, "error", err)
		s.Selection = nil
		s.Err = err
		return s
	}

	neighbors := make([]Neighbor, len(results))
	for i, r := range results {
		neighbors[i] = Neighbor{
			Node:         r.Node,
			Score:        r.Score,
			CommonPoints: graph.Explain(node, r.Node),
		}
	}

	s.Err = nil
	s.Selection = &Selection{Node: node, Neighbors: neighbors}
	return s
}

// toggleNeighbor expands a neighbour row, or collapses it when it is
// already expanded. Ids outside the current neighbour list are ignored.
func toggleNeighbor(s State, ev NeighborClicked) State {
	if s.Selection == nil || !s.Selection.hasNeighbor(ev.ID) {
		return s
	}

	next := *s.Selection
	if next.Expanded == ev.ID {
		next.Expanded = ""
	} else {
		next.Expanded = ev.ID
	}
	s.Selection = &next
	return s
}
