package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"thudl/config"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "thudl",
	Short: "Download files from Tsinghua Cloud share links",
	Long: `thudl downloads files from Tsinghua Cloud shared folders.
It enumerates the shared folder tree, filters files with a glob pattern,
and saves the matches locally while preserving the remote directory layout.
Configuration is loaded from .env file or environment variables`,
}

func Execute(config *config.Config, log *zap.Logger) error {
	cfg = config
	logger = log
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(listCmd)

	rootCmd.PersistentFlags().StringP("pattern", "p", "", "Glob pattern to match remote file paths, e.g. '*.pptx'")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

func getPattern(cmd *cobra.Command) string {
	pattern, _ := cmd.Flags().GetString("pattern")
	return pattern
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}
