package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists all cached articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStorage()
		if err != nil {
			return err
		}
		defer st.Close()

		docs, err := st.ListDocuments()
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}

		if len(docs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No documents found.")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Title", "URL", "Engine", "Size", "Fetched"})
		for _, doc := range docs {
			t.AppendRow(table.Row{doc.Title, doc.URL, doc.Engine, len(doc.Content), doc.FetchedAt.Format(time.DateTime)})
		}
		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
