package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/herd/internal/paths"
)

// herdDir is the global --herd-dir flag value.
var herdDir string

var rootCmd = &cobra.Command{
	Use:   "herd",
	Short: "Interactive agent session supervisor",
	Long:  "herd supervises long-lived interactive Claude Code CLI sessions: it streams their output, buffers it, and detects permission prompts embedded in the terminal transcript.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Set HERD_DIR if --herd-dir is provided so all path helpers
		// pick up the override.
		if herdDir != "" {
			if err := os.Setenv(paths.EnvHerdDir, herdDir); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&herdDir, "herd-dir", "", "base directory for herd data (overrides ~/.herd)")
}

func Execute() error {
	return rootCmd.Execute()
}
