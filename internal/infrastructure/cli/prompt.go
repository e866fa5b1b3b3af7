package cli

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var (
	promptOutFile string
	promptCopy    bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Assemble the prompt for the current task",
	Long: `Prompt renders the protocol instructions, the context files, and the
task into one block of text ready to paste into an LLM chat. By default
it prints to stdout; --copy puts it on the clipboard instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		text, err := services.Prompt.BuildPrompt()
		if err != nil {
			return fmt.Errorf("failed to build prompt: %w", err)
		}

		if promptOutFile != "" {
			if err := os.WriteFile(promptOutFile, []byte(text), 0600); err != nil {
				return fmt.Errorf("failed to write prompt file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Prompt written to %s (%d bytes)\n", promptOutFile, len(text))
			return nil
		}

		if promptCopy {
			if err := clipboard.WriteAll(text); err != nil {
				return fmt.Errorf("failed to copy prompt to clipboard: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Prompt copied to clipboard (%d bytes)\n", len(text))
			return nil
		}

		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	promptCmd.Flags().StringVarP(&promptOutFile, "out", "o", "", "Write the prompt to a file instead of stdout")
	promptCmd.Flags().BoolVar(&promptCopy, "copy", false, "Copy the prompt to the clipboard instead of printing it")

	RootCmd.AddCommand(promptCmd)
}
