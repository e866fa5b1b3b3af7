package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shuttle/internal/infrastructure/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the .shuttle store in this workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := workspaceRoot()
		if err != nil {
			return err
		}
		services, err := loadServices(root)
		if err != nil {
			return err
		}

		if err := services.Init.InitializeWorkspace(); err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}
		if err := config.Save(root, config.Default()); err != nil {
			return fmt.Errorf("failed to write default config: %w", err)
		}
		if err := ensureGitignore(root); err != nil {
			return fmt.Errorf("failed to update .gitignore: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized shuttle workspace in %s\n", root)
		fmt.Fprintln(cmd.OutOrStdout(), "Next: 'shuttle task start <name>' to begin a task.")
		return nil
	},
}

// ensureGitignore keeps the store out of task commits: 'task commit'
// stages the whole tree, and ledger records do not belong in it.
func ensureGitignore(root string) error {
	path := filepath.Join(root, ".gitignore")
	const entry = ".shuttle/"

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == entry {
			return nil
		}
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	data = append(data, entry+"\n"...)
	return os.WriteFile(path, data, 0644)
}

func init() {
	RootCmd.AddCommand(initCmd)
}
