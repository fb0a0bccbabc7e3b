// Package cli provides the command-line interface for simnet.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/simnet/internal/client"
	"github.com/raphaelgruber/simnet/internal/config"
	"github.com/raphaelgruber/simnet/internal/explorer"
	"github.com/raphaelgruber/simnet/internal/metrics"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	showStats bool
	apiURL    string
	topK      int

	// Global config and shared components
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	apiClient  *client.Client
	collector  *metrics.Collector
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "simnet",
	Short: "Explore crime similarity networks",
	Long: `Simnet explores the crime similarity networks computed by the analytics
backend. It fetches the network for a neighbourhood (and optionally a crime
type), ranks the most similar occurrences of any node and explains what they
have in common (time of day, weapon, weekday).

Use 'explore' for the interactive terminal view and 'serve' to feed a
force-directed graph renderer.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if apiURL != "" {
			cfg.APIURL = apiURL
		}
		if topK > 0 {
			cfg.TopK = topK
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		// The terminal UI owns stderr, so it only logs to the file.
		if cmd.Name() == "explore" {
			logger, logCleanup = config.SetupFileLogger(cfg.LogFile, cfg.LogLevel)
		} else {
			logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		}
		slog.SetDefault(logger)

		collector = metrics.NewCollector()
		apiClient = client.New(cfg.APIURL, cfg.ClientTimeout, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if showStats && collector != nil {
			data, _ := json.MarshalIndent(collector.Snapshot(), "", "  ")
			fmt.Fprintf(os.Stderr, "%s\n", data)
		}
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// newController creates an explorer controller wired to the backend client.
func newController() *explorer.Controller {
	return explorer.NewController(apiClient, explorer.Options{
		TopK:    cfg.TopK,
		Logger:  logger,
		Metrics: collector,
	})
}

// loadNetwork submits the filters and waits for the network. A failed
// submission is returned as an error carrying the user-visible message.
func loadNetwork(ctx context.Context, ctrl *explorer.Controller, bairro, tipoCrime string) (explorer.State, error) {
	state := ctrl.Submit(ctx, bairro, tipoCrime)
	if state.Phase == explorer.PhaseFailed {
		return state, fmt.Errorf("%s (%w)", explorer.UserMessage(state.Err), state.Err)
	}
	return state, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&showStats, "stats", false, "print timing statistics on exit")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "analytics backend URL (default $SIMNET_API_URL)")
	rootCmd.PersistentFlags().IntVarP(&topK, "top", "k", 0, "neighbours to rank per node (default $SIMNET_TOP_K or 5)")

	// Add subcommands
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(neighborsCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(serveCmd)
}

// addFilterFlags registers the network filters on cmd.
func addFilterFlags(cmd *cobra.Command, bairro, tipoCrime *string) {
	cmd.Flags().StringVarP(bairro, "bairro", "b", "", "neighbourhood (required)")
	cmd.Flags().StringVarP(tipoCrime, "tipo", "t", "", "crime type (optional)")
}
