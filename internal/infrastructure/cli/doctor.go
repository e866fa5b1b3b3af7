package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shuttle/internal/infrastructure/config"
	"github.com/felixgeelhaar/shuttle/pkg/domain/task"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of the shuttle workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Running shuttle doctor...")

		root, err := workspaceRoot()
		if err != nil {
			return err
		}
		services, err := loadServices(root)
		if err != nil {
			return err
		}
		repo := services.Workspace.Repo

		hasIssues := false
		check := func(name string, fn func() error) {
			fmt.Fprintf(out, "Checking %s... ", name)
			if err := fn(); err != nil {
				fmt.Fprintf(out, "FAIL\n  Error: %v\n", err)
				hasIssues = true
			} else {
				fmt.Fprintf(out, "PASS\n")
			}
		}

		check("store", func() error {
			if !repo.IsInitialized() {
				return fmt.Errorf(".shuttle directory not found (run 'shuttle init')")
			}
			return nil
		})

		check("config", func() error {
			_, err := config.Load(root)
			return err
		})

		check("task records", func() error {
			tasks, err := services.Ledger.LoadRecentTasks(0)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "(%d tasks) ", len(tasks))
			return nil
		})

		check("current task", func() error {
			_, err := services.Ledger.CurrentTask()
			if err == nil || errors.Is(err, task.ErrNoCurrentTask) {
				return nil
			}
			return err
		})

		check("version control", func() error {
			if !services.VCS.IsAvailable(cmd.Context()) {
				return fmt.Errorf("not a git work tree ('shuttle task commit' and 'undo' will not work)")
			}
			return nil
		})

		check("diagnostics log", func() error {
			_, err := repo.LoadDiagnostics()
			return err
		})

		if hasIssues {
			return fmt.Errorf("doctor found issues")
		}
		fmt.Fprintln(out, "All checks passed.")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}
