// Package cli implements the contextd command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/harborist/contextd/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose   bool
	flagConfigDir string
)

var rootCmd = &cobra.Command{
	Use:   "contextd",
	Short: "Onboarding context aggregator",
	Long: `contextd ingests Telegram chats, Google Drive documents, and GitHub
pushes, and forwards their content to a hosted memory backend so an
assistant can answer questions with that context.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "",
		"config directory (default ~/.contextd)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
