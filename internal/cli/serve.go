package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/raphaelgruber/simnet/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr   string
	serveBairro string
	serveTipo   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the network to a graph renderer",
	Long: `Run the renderer bridge: an HTTP server exposing the current network as
{nodes, links} on /graph, the selection detail on /state and a websocket on
/ws that accepts renderer clicks and pushes every state change.

With --bairro the network is loaded before the server starts accepting
connections.

Examples:
  simnet serve
  simnet serve --addr :9000 --bairro Centro`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default $SIMNET_LISTEN_ADDR or :8585)")
	serveCmd.Flags().StringVarP(&serveBairro, "bairro", "b", "", "neighbourhood to preload")
	serveCmd.Flags().StringVarP(&serveTipo, "tipo", "t", "", "crime type to preload")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctrl := newController()
	srv := server.New(ctrl, server.Options{
		Logger:        logger,
		SubmitTimeout: cfg.ClientTimeout,
	})

	if serveBairro != "" {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.ClientTimeout)
		state, err := loadNetwork(loadCtx, ctrl, serveBairro, serveTipo)
		cancel()
		if err != nil {
			return fmt.Errorf("preload network: %w", err)
		}
		stats := state.Graph.Stats()
		logger.Info("network preloaded", "filters", state.Params.String(), "nodes", stats.Nodes, "edges", stats.Edges)
	}

	return srv.Run(ctx, addr)
}
