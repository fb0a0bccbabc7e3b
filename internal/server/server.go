// Package server exposes the explorer to an external force-directed graph
// renderer: the current snapshot as {nodes, links}, the selection detail,
// and a websocket that carries renderer clicks in and state pushes out.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raphaelgruber/simnet/internal/explorer"
	"github.com/raphaelgruber/simnet/internal/graph"
	"github.com/raphaelgruber/simnet/internal/models"
)

// DefaultSubmitTimeout bounds a backend fetch triggered by a renderer.
const DefaultSubmitTimeout = 60 * time.Second

// maxMessageSize caps inbound renderer frames.
const maxMessageSize = 64 << 10

// Renderer message types.
const (
	MsgSubmit        = "submit"
	MsgNodeClick     = "node_click"
	MsgNeighborClick = "neighbor_click"
	MsgClose         = "close"

	MsgState = "state"
	MsgGraph = "graph"
	MsgError = "error"
)

// Inbound is a message sent by the renderer. For node_click the renderer
// may send the full node payload instead of the bare id.
type Inbound struct {
	Type      string            `json:"type"`
	ID        models.NodeID     `json:"id,omitempty"`
	Node      *models.CrimeNode `json:"node,omitempty"`
	Bairro    string            `json:"bairro,omitempty"`
	TipoCrime string            `json:"tipo_crime,omitempty"`
}

// Outbound is a message pushed to the renderer.
type Outbound struct {
	Type  string             `json:"type"`
	View  *explorer.View     `json:"view,omitempty"`
	Graph *graph.RenderGraph `json:"graph,omitempty"`
	Error string             `json:"error,omitempty"`
}

// Options configures a Server.
type Options struct {
	Logger        *slog.Logger
	Registry      *prometheus.Registry // A fresh registry when nil
	SubmitTimeout time.Duration
}

// Server bridges an explorer.Controller and renderers.
type Server struct {
	ctrl          *explorer.Controller
	logger        *slog.Logger
	hub           *hub
	metrics       *bridgeMetrics
	registry      *prometheus.Registry
	upgrader      websocket.Upgrader
	submitTimeout time.Duration

	// ctx parents fetches started by renderers; cancelled when Run returns.
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a server and subscribes it to ctrl's transitions.
func New(ctrl *explorer.Controller, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = DefaultSubmitTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		ctx:      ctx,
		cancel:   cancel,
		ctrl:     ctrl,
		logger:   opts.Logger,
		hub:      newHub(),
		metrics:  newBridgeMetrics(opts.Registry),
		registry: opts.Registry,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Renderer may be served from another origin in local dev
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		submitTimeout: opts.SubmitTimeout,
	}

	var lastGraph *graph.Graph
	ctrl.Subscribe(func(st explorer.State) {
		s.metrics.transitions.WithLabelValues(st.Phase.String()).Inc()
		if st.Graph != lastGraph {
			lastGraph = st.Graph
			s.hub.broadcast(s.encode(graphMessage(st)))
		}
		s.hub.broadcast(s.encode(stateMessage(st)))
	})

	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /graph", s.handleGraph)
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("POST /submit", s.handleSubmit)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return LoggingMiddleware(s.logger, s.metrics, mux)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	defer s.cancel()

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 5 * time.Second,
		// Long enough for a backend fetch triggered by POST /submit.
		WriteTimeout: s.submitTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("renderer bridge listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down renderer bridge")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func graphMessage(st explorer.State) Outbound {
	g := st.Graph.Render()
	return Outbound{Type: MsgGraph, Graph: &g}
}

func stateMessage(st explorer.State) Outbound {
	v := st.View()
	return Outbound{Type: MsgState, View: &v}
}

func (s *Server) encode(msg Outbound) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to encode renderer message", "type", msg.Type, "error", err)
		data, _ = json.Marshal(Outbound{Type: MsgError, Error: "internal error"})
	}
	return data
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ctrl.State().Graph.Render())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ctrl.State().View())
}

// handleSubmit runs a submission synchronously and returns the resulting view.
// Body: {"bairro": "...", "tipo_crime": "..."}.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var in Inbound
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeJSON(w, http.StatusBadRequest, Outbound{Type: MsgError, Error: "invalid JSON body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.submitTimeout)
	defer cancel()
	st := s.ctrl.Submit(ctx, in.Bairro, in.TipoCrime)

	status := http.StatusOK
	if st.Phase == explorer.PhaseFailed {
		status = http.StatusBadGateway
		if st.Params.Bairro == "" {
			status = http.StatusBadRequest
		}
	}
	s.writeJSON(w, status, st.View())
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}
	// Registering and queueing the snapshot under the controller lock keeps
	// it ahead of every broadcast this renderer will receive.
	s.ctrl.Observe(func(st explorer.State) {
		s.hub.add(c)
		s.hub.enqueue(c, s.encode(graphMessage(st)))
		s.hub.enqueue(c, s.encode(stateMessage(st)))
	})
	s.metrics.clients.Set(float64(s.hub.size()))
	s.logger.Info("renderer connected", "remote", r.RemoteAddr)

	go c.writePump()
	s.readPump(c)

	s.hub.remove(c)
	s.metrics.clients.Set(float64(s.hub.size()))
	s.logger.Info("renderer disconnected", "remote", r.RemoteAddr)
}

// readPump translates renderer messages into controller events until the
// connection closes.
func (s *Server) readPump(c *wsClient) {
	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("renderer read failed", "error", err)
			}
			return
		}

		var in Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			s.hub.enqueue(c, s.encode(Outbound{Type: MsgError, Error: "invalid message: " + err.Error()}))
			continue
		}
		s.metrics.events.WithLabelValues(eventLabel(in.Type)).Inc()
		s.handleInbound(c, in)
	}
}

func (s *Server) handleInbound(c *wsClient, in Inbound) {
	switch in.Type {
	case MsgSubmit:
		// The fetch must not block this renderer's reads; stale results
		// are discarded by the controller.
		go func() {
			ctx, cancel := context.WithTimeout(s.ctx, s.submitTimeout)
			defer cancel()
			s.ctrl.Submit(ctx, in.Bairro, in.TipoCrime)
		}()
	case MsgNodeClick:
		id := in.ID
		if in.Node != nil {
			id = in.Node.ID
		}
		s.ctrl.Dispatch(explorer.NodeClicked{ID: id})
	case MsgNeighborClick:
		s.ctrl.Dispatch(explorer.NeighborClicked{ID: in.ID})
	case MsgClose:
		s.ctrl.Dispatch(explorer.DetailClosed{})
	default:
		s.hub.enqueue(c, s.encode(Outbound{Type: MsgError, Error: fmt.Sprintf("unknown message type %q", in.Type)}))
	}
}

// eventLabel bounds the metric label set to known message types.
func eventLabel(t string) string {
	switch t {
	case MsgSubmit, MsgNodeClick, MsgNeighborClick, MsgClose:
		return t
	default:
		return "unknown"
	}
}
