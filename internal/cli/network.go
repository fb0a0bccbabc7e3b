package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/raphaelgruber/simnet/internal/explorer"
	"github.com/raphaelgruber/simnet/internal/models"
	"github.com/spf13/cobra"
)

var (
	networkBairro string
	networkTipo   string
	networkJSON   bool
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Fetch and summarize a similarity network",
	Long: `Fetch the similarity network for a neighbourhood and print its nodes,
ordered by the number of similarity links.

Examples:
  simnet network --bairro Centro
  simnet network --bairro Centro --tipo Roubo
  simnet network -b Centro --json`,
	Args: cobra.NoArgs,
	RunE: runNetwork,
}

func init() {
	addFilterFlags(networkCmd, &networkBairro, &networkTipo)
	networkCmd.Flags().BoolVar(&networkJSON, "json", false, "print the state as JSON")
}

func runNetwork(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ClientTimeout)
	defer cancel()

	ctrl := newController()
	state, err := loadNetwork(ctx, ctrl, networkBairro, networkTipo)
	if err != nil {
		return err
	}

	if networkJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(state.View())
	}
	printNetwork(cmd.OutOrStdout(), state)
	return nil
}

// printNetwork writes the summary of a loaded network, busiest nodes first.
func printNetwork(out io.Writer, state explorer.State) {
	if state.Message != "" {
		fmt.Fprintf(out, "%s\n\n", state.Message)
	}
	if state.Graph.Empty() {
		fmt.Fprintln(out, explorer.MsgNoConnections)
		return
	}

	stats := state.Graph.Stats()
	fmt.Fprintf(out, "Network %s: %d nodes, %d links, %d groups\n",
		state.Params.String(), stats.Nodes, stats.Edges, stats.Groups)
	if stats.Dropped > 0 {
		fmt.Fprintf(out, "Discarded %d invalid links\n", stats.Dropped)
	}
	fmt.Fprintln(out)

	nodes := state.Graph.Nodes()
	sort.SliceStable(nodes, func(i, j int) bool {
		di, dj := state.Graph.Degree(nodes[i].ID), state.Graph.Degree(nodes[j].ID)
		if di != dj {
			return di > dj
		}
		return nodes[i].ID.Less(nodes[j].ID)
	})
	for _, n := range nodes {
		fmt.Fprintf(out, "- [%s] %s (%d links)\n", n.ID, nodeTitle(n), state.Graph.Degree(n.ID))
	}
}

// nodeTitle is the one-line description of a node.
func nodeTitle(n models.CrimeNode) string {
	if n.Label != "" {
		return n.Label
	}
	if n.TipoCrime != "" {
		return n.TipoCrime
	}
	return models.NotAvailable
}
