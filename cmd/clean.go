package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Deletes all cached articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		force, _ := cmd.Flags().GetBool("yes")
		if !force {
			color.New(color.FgRed).Fprintln(out, "WARNING: This will delete every cached article and is not recoverable.")
			fmt.Fprint(out, "Are you sure you want to continue? (yes/no): ")

			response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && response == "" {
				return fmt.Errorf("failed to read response: %w", err)
			}
			if strings.TrimSpace(strings.ToLower(response)) != "yes" {
				fmt.Fprintln(out, "Clean operation cancelled.")
				return nil
			}
		}

		st, err := openStorage()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Clean(); err != nil {
			return fmt.Errorf("failed to clean database: %w", err)
		}

		fmt.Fprintln(out, "Database cleaned successfully.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
