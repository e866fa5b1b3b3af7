package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	logLimit int
	logJSON  bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent operation failures from the diagnostic log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		diags, err := services.Workspace.Repo.LoadDiagnostics()
		if err != nil {
			return fmt.Errorf("failed to load diagnostics: %w", err)
		}

		if logLimit > 0 && len(diags) > logLimit {
			diags = diags[len(diags)-logLimit:]
		}

		if logJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(diags)
		}

		if len(diags) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No failures recorded.")
			return nil
		}

		for _, d := range diags {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-14s %s\n",
				d.Timestamp.Local().Format("2006-01-02 15:04:05"), d.Kind, d.Reason)
			if d.Path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%21s path: %s\n", "", d.Path)
			}
		}
		return nil
	},
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Maximum number of entries to show (0 = all)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "Output in JSON format")

	RootCmd.AddCommand(logCmd)
}
