package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/simnet/internal/explorer"
	"github.com/raphaelgruber/simnet/internal/graph"
	"github.com/raphaelgruber/simnet/internal/models"
	"github.com/spf13/cobra"
)

var (
	explainBairro string
	explainTipo   string
)

var explainCmd = &cobra.Command{
	Use:   "explain <id> <id>",
	Short: "Explain what two occurrences have in common",
	Long: `Fetch the similarity network and list the common points of two
occurrences: close time of day, same weapon, same weekday.

The two occurrences need not be linked in the network.

Examples:
  simnet explain 42 57 --bairro Centro`,
	Args: cobra.ExactArgs(2),
	RunE: runExplain,
}

func init() {
	addFilterFlags(explainCmd, &explainBairro, &explainTipo)
}

func runExplain(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ClientTimeout)
	defer cancel()

	state, err := loadNetwork(ctx, newController(), explainBairro, explainTipo)
	if err != nil {
		return err
	}

	var pair [2]models.CrimeNode
	for i, arg := range args {
		id := models.ParseNodeID(arg)
		n, ok := state.Graph.Node(id)
		if !ok {
			return fmt.Errorf("%s: %s", explorer.MsgUnknownNode, id)
		}
		pair[i] = n
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "[%s] %s\n[%s] %s\n\n", pair[0].ID, nodeTitle(pair[0]), pair[1].ID, nodeTitle(pair[1]))

	points := graph.Explain(pair[0], pair[1])
	if len(points) == 0 {
		fmt.Fprintln(out, "No common points.")
		return nil
	}
	for _, p := range points {
		fmt.Fprintf(out, "- %s\n", p)
	}
	return nil
}
