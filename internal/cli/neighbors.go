package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/raphaelgruber/simnet/internal/explorer"
	"github.com/raphaelgruber/simnet/internal/models"
	"github.com/spf13/cobra"
)

var (
	neighborsBairro string
	neighborsTipo   string
	neighborsJSON   bool
)

var neighborsCmd = &cobra.Command{
	Use:   "neighbors <id>",
	Short: "Show the most similar crimes of one occurrence",
	Long: `Fetch the similarity network, select one occurrence and print its
details followed by its most similar neighbours and what they have in
common.

Examples:
  simnet neighbors 42 --bairro Centro
  simnet neighbors 42 --bairro Centro --tipo Roubo -k 10
  simnet neighbors 42 -b Centro --json`,
	Args: cobra.ExactArgs(1),
	RunE: runNeighbors,
}

func init() {
	addFilterFlags(neighborsCmd, &neighborsBairro, &neighborsTipo)
	neighborsCmd.Flags().BoolVar(&neighborsJSON, "json", false, "print the selection as JSON")
}

func runNeighbors(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ClientTimeout)
	defer cancel()

	ctrl := newController()
	if _, err := loadNetwork(ctx, ctrl, neighborsBairro, neighborsTipo); err != nil {
		return err
	}

	id := models.ParseNodeID(args[0])
	state := ctrl.Select(id)
	if state.Err != nil {
		return fmt.Errorf("%s (%w)", explorer.UserMessage(state.Err), state.Err)
	}
	if state.Selection == nil {
		return fmt.Errorf("%s: %s", explorer.MsgUnknownNode, id)
	}

	view := state.View()
	if neighborsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(view.Selection)
	}
	printSelection(cmd.OutOrStdout(), view.Selection, ctrl.TopK())
	return nil
}

// printSelection writes the detail view of a selected node.
func printSelection(out io.Writer, sel *explorer.SelectionView, topK int) {
	fmt.Fprintf(out, "[%s] %s\n\n", sel.Node.ID, nodeTitle(sel.Node))
	printDetails(out, sel.Details, "  ")

	fmt.Fprintf(out, "\n%s:\n", fmt.Sprintf(explorer.MsgNeighborsHeader, topK))
	if sel.Empty != "" {
		fmt.Fprintf(out, "  %s\n", sel.Empty)
		return
	}
	for i, n := range sel.Neighbors {
		fmt.Fprintf(out, "%2d. [%s] %s  score %.4f\n", i+1, n.Node.ID, nodeTitle(n.Node), n.Score)
		if len(n.CommonPoints) > 0 {
			fmt.Fprintf(out, "    %s\n", strings.Join(n.CommonPoints, " · "))
		}
	}
}

func printDetails(out io.Writer, fields []models.DetailField, indent string) {
	width := 0
	for _, f := range fields {
		width = max(width, len([]rune(f.Label)))
	}
	for _, f := range fields {
		pad := width - len([]rune(f.Label))
		fmt.Fprintf(out, "%s%s:%s %s\n", indent, f.Label, strings.Repeat(" ", pad), f.Value)
	}
}
