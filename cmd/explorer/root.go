package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
}

var rootCmd = &cobra.Command{
	Use:   "explorer",
	Short: "Ask questions about IPEDS education data",
	Long: "explorer fetches a dataset from the Education Data API, builds a bounded\n" +
		"digest of it and asks a language model questions about that digest.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "Path to config YAML (default: configs/config.yaml)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Override logging.level")

	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(datasetsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}
