package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tesh254/wikimd/internal/logger"
)

// version is set at build time with -ldflags "-X github.com/tesh254/wikimd/cmd.version=v1.2.3".
var version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "wikimd",
	Short: "wikimd converts HTML, and Wikipedia articles, to Markdown.",
	Long: `wikimd is a CLI tool that converts HTML documents to Markdown. It can look up
an article on Wikipedia, fetch it and print it as Markdown, caching the result
in a local SQLite database. It also runs as an MCP server.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "wikimd version %s\n", version)

		short, _ := cmd.Flags().GetBool("short")
		if short {
			return
		}
		fmt.Fprintf(out, "Go Version:   %s\n", runtime.Version())
		fmt.Fprintf(out, "Platform:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					fmt.Fprintf(out, "Git Commit:   %s\n", s.Value)
				case "vcs.time":
					fmt.Fprintf(out, "Build Date:   %s\n", s.Value)
				case "vcs.modified":
					fmt.Fprintf(out, "Modified:     %s\n", s.Value)
				}
			}
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.wikimd/config.yaml)")
	rootCmd.PersistentFlags().String("db", defaultDBPath(), "Path to the cache database file")
	rootCmd.PersistentFlags().StringSlice("skip-tags", []string{"script", "style"}, "Tags whose content is dropped from the output")
	rootCmd.PersistentFlags().String("engine", "native", "Conversion engine (native or library)")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Do not read or write the article cache")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	versionCmd.Flags().BoolP("short", "s", false, "Output the version only")
	rootCmd.AddCommand(versionCmd)

	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("skip_tags", rootCmd.PersistentFlags().Lookup("skip-tags"))
	viper.BindPFlag("engine", rootCmd.PersistentFlags().Lookup("engine"))
	viper.BindPFlag("no_cache", rootCmd.PersistentFlags().Lookup("no-cache"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".wikimd", "wikimd.db")
	}
	return filepath.Join(home, ".wikimd", "wikimd.db")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}

		configPath := filepath.Join(home, ".wikimd")
		viper.AddConfigPath(configPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Create config file if it doesn't exist
		if err := os.MkdirAll(configPath, os.ModePerm); err != nil {
			logger.Error("creating config directory: %v", err)
			os.Exit(1)
		}
		configFile := filepath.Join(configPath, "config.yaml")
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			if err := viper.SafeWriteConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					logger.Warn("writing config file: %v", err)
				}
			}
		}
	}

	viper.SetEnvPrefix("WIKIMD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("using config file: %s", viper.ConfigFileUsed())
	}

	logger.SetVerbose(viper.GetBool("verbose"))
}
