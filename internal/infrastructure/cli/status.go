package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shuttle/pkg/domain/protocol"
	"github.com/felixgeelhaar/shuttle/pkg/domain/task"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current task's state, operations, and files",
	Args:  cobra.NoArgs,
	RunE:  runStatusCmd,
}

// statusJSONOutput represents the JSON output format for status
type statusJSONOutput struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Operations    int            `json:"operations"`
	OperationsBy  map[string]int `json:"operations_by_kind,omitempty"`
	AffectedFiles []string       `json:"affected_files,omitempty"`
	IncludedFiles []string       `json:"included_files,omitempty"`
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	services, err := loadServicesForCurrentDir()
	if err != nil {
		return err
	}

	t, err := services.Ledger.CurrentTask()
	if err != nil {
		return err
	}

	if statusJSON {
		return outputStatusJSON(cmd, t)
	}
	return outputStatusText(cmd, t)
}

func outputStatusJSON(cmd *cobra.Command, t *task.Task) error {
	output := statusJSONOutput{
		ID:            t.ID,
		Name:          t.Name,
		Description:   t.Description,
		Status:        t.Status.String(),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Operations:    len(t.Operations),
		OperationsBy:  countOperationsByKind(t.Operations),
		AffectedFiles: t.AffectedFiles,
		IncludedFiles: t.IncludedFiles,
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputStatusText(cmd *cobra.Command, t *task.Task) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Task: %s (%s)\n", t.Name, t.ID)
	if t.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", t.Description)
	}
	fmt.Fprintf(out, "Status: %s\n", t.Status.DisplayName())
	fmt.Fprintf(out, "Updated: %s\n", ageOf(t.UpdatedAt))

	fmt.Fprintf(out, "\nOperations applied: %d\n", len(t.Operations))
	if counts := countOperationsByKind(t.Operations); len(counts) > 0 {
		for _, kind := range []protocol.Kind{
			protocol.KindCreate, protocol.KindDelete, protocol.KindRename,
			protocol.KindSearchReplace, protocol.KindOverwrite,
		} {
			if n := counts[kind.String()]; n > 0 {
				fmt.Fprintf(out, "- %-14s %d\n", kind, n)
			}
		}
	}

	fmt.Fprintf(out, "\nAffected files (%d)\n", len(t.AffectedFiles))
	for _, f := range t.AffectedFiles {
		fmt.Fprintf(out, "  %s\n", f)
	}

	fmt.Fprintf(out, "\nContext files (%d)\n", len(t.IncludedFiles))
	for _, f := range t.IncludedFiles {
		fmt.Fprintf(out, "  %s\n", f)
	}

	switch t.Status {
	case task.StatusPending:
		fmt.Fprintln(out, "\nNext: 'shuttle context add' to pick files, 'shuttle prompt' to build the prompt.")
	case task.StatusApplied:
		fmt.Fprintln(out, "\nNext: 'shuttle task commit' to keep the changes, 'shuttle task undo' to discard them.")
	}
	return nil
}

func countOperationsByKind(ops []protocol.Operation) map[string]int {
	if len(ops) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, op := range ops {
		counts[op.Kind.String()]++
	}
	return counts
}

// ageOf formats how long ago a timestamp was.
func ageOf(ts time.Time) string {
	d := time.Since(ts)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(statusCmd)
}
