// Package cli defines the shuttle command tree. Commands stay thin:
// they resolve the workspace, call into the application services, and
// format the outcome.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shuttle/internal/infrastructure/logging"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	workspaceFlag string
	verboseFlag   bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "shuttle",
	Version: Version,
	Short:   "Carry file changes between your editor and an LLM chat",
	Long: `Shuttle drives a manual copy-paste loop with any LLM chat:
1. Pick the files the model should see and build a prompt.
2. Paste the prompt into the chat, paste the reply back.
3. Shuttle decodes the reply into file operations, applies them,
   and records everything on a task you can commit or undo.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetVerbose(verboseFlag)
	},
}

// Execute runs the root command and prints mapped errors with their
// hints. This is called by main.main().
func Execute() error {
	err := RootCmd.Execute()
	if err == nil {
		return nil
	}

	err = MapError(err)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.Hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", cliErr.Hint)
	}
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "C", "",
		"Workspace root directory (defaults to the current directory)")
	RootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"Enable debug logging")
}
