package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shuttle/pkg/domain/task"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage collaboration tasks",
}

var taskStartDescription string

var taskStartCmd = &cobra.Command{
	Use:   "start <name>",
	Short: "Start a new task, or resume the one with this name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		t, created, err := services.Ledger.StartTask(args[0], taskStartDescription)
		if err != nil {
			return fmt.Errorf("failed to start task: %w", err)
		}

		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "Started task %q (%s)\n", t.Name, t.ID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Resumed task %q (%s, status %s, %d operations)\n",
				t.Name, t.ID, t.Status, len(t.Operations))
		}
		return nil
	},
}

var taskListLimit int

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent tasks, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		tasks, err := services.Ledger.LoadRecentTasks(taskListLimit)
		if err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}
		if len(tasks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tasks yet. Run 'shuttle task start <name>'.")
			return nil
		}

		currentID := ""
		if current, err := services.Ledger.CurrentTask(); err == nil {
			currentID = current.ID
		}

		columns := []table.Column{
			{Title: " ", Width: 1},
			{Title: "Name", Width: 28},
			{Title: "Status", Width: 9},
			{Title: "Ops", Width: 4},
			{Title: "Files", Width: 5},
			{Title: "Updated", Width: 16},
			{Title: "ID", Width: 36},
		}

		rows := []table.Row{}
		for _, t := range tasks {
			marker := " "
			if t.ID == currentID {
				marker = "*"
			}
			rows = append(rows, table.Row{
				marker,
				t.Name,
				t.Status.String(),
				fmt.Sprintf("%d", len(t.Operations)),
				fmt.Sprintf("%d", len(t.AffectedFiles)),
				t.UpdatedAt.Local().Format("2006-01-02 15:04"),
				t.ID,
			})
		}

		tbl := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithHeight(len(rows)+1),
		)

		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Bold(true)
		s.Selected = lipgloss.NewStyle() // Disable selection style for static view
		tbl.SetStyles(s)

		fmt.Fprintf(cmd.OutOrStdout(), "Tasks (%d)\n", len(tasks))
		fmt.Fprintln(cmd.OutOrStdout(), tbl.View())
		return nil
	},
}

var taskSwitchCmd = &cobra.Command{
	Use:   "switch <task-id>",
	Short: "Make another task the current one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		id, err := resolveTaskID(services.Ledger.LoadRecentTasks, args[0])
		if err != nil {
			return err
		}
		t, err := services.Ledger.SwitchTask(id)
		if err != nil {
			return fmt.Errorf("failed to switch task: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Switched to task %q (%s, status %s)\n", t.Name, t.ID, t.Status)
		return nil
	},
}

var taskCommitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Stage and commit the working tree under the current task's name",
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
		t, err := services.Ledger.CommitTask(cmd.Context(), current.ID)
		if err != nil {
			return fmt.Errorf("failed to commit task: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Committed task %q (%d files)\n", t.Name, len(t.AffectedFiles))
		return nil
	},
}

var taskUndoYes bool

var taskUndoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Discard ALL uncommitted working-tree changes for the current task",
	Long: `Undo resets the whole working tree through version control: tracked
files go back to HEAD and untracked files are removed. It is deliberately
not limited to the files the task touched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		current, err := services.Ledger.CurrentTask()
		if err != nil {
			return err
		}

		confirm := askConfirm(cmd.InOrStdin(), cmd.OutOrStdout())
		if taskUndoYes {
			confirm = alwaysConfirm
		}

		t, err := services.Ledger.UndoTask(cmd.Context(), current.ID, confirm)
		if err != nil {
			return fmt.Errorf("failed to undo task: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Undid task %q: working tree reset\n", t.Name)
		return nil
	},
}

// resolveTaskID accepts a full task id or an unambiguous prefix.
func resolveTaskID(loadAll func(limit int) ([]*task.Task, error), arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", task.ErrNotFound
	}

	all, err := loadAll(0)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, t := range all {
		if t.ID == arg {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, arg) {
			matches = append(matches, t.ID)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", task.ErrNotFound
	default:
		return "", errors.New("task id prefix " + arg + " is ambiguous (" + strings.Join(matches, ", ") + ")")
	}
}

func init() {
	taskStartCmd.Flags().StringVarP(&taskStartDescription, "description", "d", "",
		"Optional description stored with the task")
	taskListCmd.Flags().IntVarP(&taskListLimit, "limit", "n", 10,
		"Maximum number of tasks to show (0 = all)")
	taskUndoCmd.Flags().BoolVarP(&taskUndoYes, "yes", "y", false,
		"Skip the confirmation prompt")

	taskCmd.AddCommand(taskStartCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskSwitchCmd)
	taskCmd.AddCommand(taskCommitCmd)
	taskCmd.AddCommand(taskUndoCmd)

	RootCmd.AddCommand(taskCmd)
}
