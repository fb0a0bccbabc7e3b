package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the neighbourhoods and crime types accepted as filters",
	Long: `List the values accepted by the network filters, as reported by the
analytics backend.

Examples:
  simnet options`,
	Args: cobra.NoArgs,
	RunE: runOptions,
}

func runOptions(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ClientTimeout)
	defer cancel()

	bairros, err := apiClient.UniqueBairros(ctx)
	if err != nil {
		return fmt.Errorf("list bairros: %w", err)
	}
	tipos, err := apiClient.UniqueCrimeTypes(ctx)
	if err != nil {
		return fmt.Errorf("list crime types: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Bairros (%d):\n", len(bairros))
	for _, b := range bairros {
		fmt.Fprintf(out, "- %s\n", b)
	}
	fmt.Fprintf(out, "\nTipos de crime (%d):\n", len(tipos))
	for _, t := range tipos {
		fmt.Fprintf(out, "- %s\n", t)
	}
	return nil
}
