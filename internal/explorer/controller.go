package explorer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/raphaelgruber/simnet/internal/filter"
	"github.com/raphaelgruber/simnet/internal/graph"
	"github.com/raphaelgruber/simnet/internal/metrics"
	"github.com/raphaelgruber/simnet/internal/models"
)

// Fetcher loads a similarity network from the backend.
type Fetcher interface {
	SimilarityNetwork(ctx context.Context, p filter.Params) (*models.NetworkResponse, error)
}

// Options configures a Controller.
type Options struct {
	TopK    int                // Neighbourhood size, graph.DefaultTopK when zero
	Logger  *slog.Logger       // slog.Default() when nil
	Metrics *metrics.Collector // Optional
}

// Controller owns the view state and is its only writer. Transitions are
// applied under a lock and the state is swapped as a whole, so readers
// never observe a partially updated view.
type Controller struct {
	mu        sync.Mutex
	machine   Machine
	state     State
	fetcher   Fetcher
	logger    *slog.Logger
	metrics   *metrics.Collector
	listeners []func(State)
}

// NewController creates a controller in PhaseIdle.
func NewController(fetcher Fetcher, opts Options) *Controller {
	if opts.TopK <= 0 {
		opts.TopK = graph.DefaultTopK
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Controller{
		machine: Machine{TopK: opts.TopK, Logger: opts.Logger, Metrics: opts.Metrics},
		fetcher: fetcher,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// TopK returns the configured neighbourhood size.
func (c *Controller) TopK() int {
	return c.machine.TopK
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive every new state, in transition order.
// fn runs while the controller lock is held and must not call back into
// the controller.
func (c *Controller) Subscribe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Observe runs fn with the current state while holding the controller
// lock, so no transition or listener call interleaves with fn. fn must not
// call back into the controller.
func (c *Controller) Observe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.state)
}

// Dispatch applies ev and returns the resulting state plus the fetch the
// caller must perform, if any.
func (c *Controller) Dispatch(ev Event) (State, *Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, req := c.machine.Reduce(c.state, ev)
	c.state = next
	for _, fn := range c.listeners {
		fn(next)
	}
	return next, req
}

// Fetch performs req against the backend and returns the event that
// reports its outcome. It does not touch the state; feed the result to
// Dispatch.
func (c *Controller) Fetch(ctx context.Context, req Request) Event {
	start := time.Now()
	resp, err := c.fetcher.SimilarityNetwork(ctx, req.Params)
	c.metrics.RecordTiming(metrics.OpFetch, time.Since(start), err)
	if err != nil {
		c.logger.Warn("network fetch failed", "seq", req.Seq, "filters", req.Params.String(), "error", err)
		return FetchFailed{Seq: req.Seq, Err: err}
	}

	c.logger.Info("network fetched",
		"seq", req.Seq,
		"filters", req.Params.String(),
		"nodes", len(resp.Nodes),
		"edges", len(resp.Edges),
	)
	return FetchSucceeded{Seq: req.Seq, Response: resp}
}

// Submit runs a whole submission: dispatch, fetch, dispatch the outcome.
// Concurrent submissions are safe; whichever was issued last wins and
// older responses are discarded. The returned state is the one current
// after this submission's response was applied.
func (c *Controller) Submit(ctx context.Context, bairro, tipoCrime string) State {
	state, req := c.Dispatch(SubmitFilters{Bairro: bairro, TipoCrime: tipoCrime})
	if req == nil {
		return state
	}
	state, _ = c.Dispatch(c.Fetch(ctx, *req))
	return state
}

// Select dispatches a node click.
func (c *Controller) Select(id models.NodeID) State {
	state, _ := c.Dispatch(NodeClicked{ID: id})
	return state
}
