package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [url-prefix]",
	Short: "Deletes cached articles whose URL starts with the prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStorage()
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.DeleteDocumentsByPrefix(args[0])
		if err != nil {
			return fmt.Errorf("failed to delete documents: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d documents matching '%s'.\n", n, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
