package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tesh254/wikimd/internal/api"
)

var wikiCmd = &cobra.Command{
	Use:   "wiki [title]",
	Short: "Looks up a Wikipedia article and prints it as Markdown",
	Long: `Searches Wikipedia for the given title, fetches the first result and prints it
as Markdown, headed by the article title. Results are cached unless --no-cache
is set; --refresh refetches a cached article.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := args[0]
		refresh, _ := cmd.Flags().GetBool("refresh")

		wikiAPI, cleanup, err := newAPI()
		if err != nil {
			return err
		}
		defer cleanup()

		doc, err := wikiAPI.Lookup(cmd.Context(), title, api.LookupOptions{Refresh: refresh})
		if errors.Is(err, api.ErrNoResults) {
			fmt.Fprintf(cmd.OutOrStdout(), "No results found for '%s'\n", title)
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s\n", doc.Title, doc.Content)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(wikiCmd)
	wikiCmd.Flags().Bool("refresh", false, "Refetch the article even when it is cached")
}
