package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tesh254/wikimd/internal/core"
	"github.com/tesh254/wikimd/internal/logger"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the MCP server",
	Long: `Starts the MCP server on stdio, or on streamable HTTP when --http-address is
set. In HTTP mode Prometheus metrics are served at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wikiAPI, cleanup, err := newAPI()
		if err != nil {
			return err
		}
		defer cleanup()

		logger.Info("starting MCP server...")
		return core.New(wikiAPI).StartServer(cmd.Context(), version, viper.GetString("http_address"))
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().String("http-address", "", "HTTP address to listen on, e.g. localhost:9014 (stdio when empty)")
	viper.BindPFlag("http_address", startCmd.Flags().Lookup("http-address"))
}
