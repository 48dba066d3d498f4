package cli

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz-runner",
		Short: "Take quizzes from JSON or YAML documents in the terminal",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to YAML config")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log at debug level")
	cmd.AddCommand(NewTakeCmd(&configPath))
	cmd.AddCommand(NewCheckCmd())
	return cmd
}
