package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shuttle/pkg/workspace"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage the files shared with the model",
	Long: `The context set is the list of workspace files whose contents are
embedded in the prompt. Paths may be files or directories; directories
are walked recursively, pruned by the configured excludes.`,
}

var (
	contextInclude []string
	contextExclude []string
)

var contextAddCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Add files or directory trees to the context set",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		current, err := services.Ledger.CurrentTask()
		if err != nil {
			return err
		}

		filter := services.ContextFilter(contextInclude, contextExclude)
		files, added, err := services.Context.AddToTask(current.ID, args, filter)
		if err != nil {
			return fmt.Errorf("failed to add context files: %w", err)
		}

		if len(files) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No files matched.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d file(s) to context (%d matched, %d already present)\n",
			added, len(files), len(files)-added)
		return nil
	},
}

var contextRemoveCmd = &cobra.Command{
	Use:   "remove <path>...",
	Short: "Remove files from the context set",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		current, err := services.Ledger.CurrentTask()
		if err != nil {
			return err
		}

		// Normalize arguments the same way add did, so the entry the
		// user sees in 'context list' is what gets removed.
		paths := make([]string, 0, len(args))
		for _, a := range args {
			rel, err := workspace.Rel(services.Workspace.Root, a)
			if err != nil {
				rel = a
			}
			paths = append(paths, rel)
		}

		removed, err := services.Ledger.RemoveIncludedFiles(current.ID, paths...)
		if err != nil {
			return fmt.Errorf("failed to remove context files: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d file(s) from context\n", removed)
		return nil
	},
}

var contextListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the context set in prompt order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		current, err := services.Ledger.CurrentTask()
		if err != nil {
			return err
		}

		if len(current.IncludedFiles) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Context is empty. Run 'shuttle context add <path>'.")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Context files (%d)\n", len(current.IncludedFiles))
		for _, f := range current.IncludedFiles {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f)
		}
		return nil
	},
}

var contextClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the context set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		current, err := services.Ledger.CurrentTask()
		if err != nil {
			return err
		}

		cleared, err := services.Ledger.ClearIncludedFiles(current.ID)
		if err != nil {
			return fmt.Errorf("failed to clear context: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d file(s) from context\n", cleared)
		return nil
	},
}

func init() {
	contextAddCmd.Flags().StringSliceVar(&contextInclude, "include", nil,
		"Only pick up files matching these glob patterns (e.g. '*.go')")
	contextAddCmd.Flags().StringSliceVar(&contextExclude, "exclude", nil,
		"Skip files matching these glob patterns, in addition to the configured excludes")

	contextCmd.AddCommand(contextAddCmd)
	contextCmd.AddCommand(contextRemoveCmd)
	contextCmd.AddCommand(contextListCmd)
	contextCmd.AddCommand(contextClearCmd)

	RootCmd.AddCommand(contextCmd)
}
