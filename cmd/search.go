package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tesh254/wikimd/internal/scraper"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Lists the Wikipedia search results for a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		numResults, _ := cmd.Flags().GetInt("num-results")

		s := scraper.New(scraperConfig())
		results, err := s.Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintf(out, "No results found for '%s'\n", args[0])
			return nil
		}
		for i, result := range results {
			if numResults > 0 && i >= numResults {
				break
			}
			fmt.Fprintf(out, "%d. %s\n", i+1, result.Title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntP("num-results", "n", 5, "Number of search results to show")
}
