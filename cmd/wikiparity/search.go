package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wikiparity/wikiparity/internal/console"
	"github.com/wikiparity/wikiparity/pkg/wikidata"
)

// newSearchCommand creates the search command.
func newSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search Wikidata for entities",
		Long: `Search queries the Wikidata entity search and prints the top suggestions
with their id, label and description.`,
		Example: `  wikiparity search "Douglas Adams"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			client := wikidata.NewClient(cfg.API)
			suggestions, err := client.SearchEntities(ctx, args[0])
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			console.New(cmd.OutOrStdout()).Suggestions(suggestions)
			return nil
		},
	}
}
