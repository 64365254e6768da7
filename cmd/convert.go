package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert [file|-]",
	Short: "Converts an HTML file, or stdin, to Markdown",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		data, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		parser, err := newParser()
		if err != nil {
			return err
		}
		md, err := parser.ToMarkdown(string(data))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
