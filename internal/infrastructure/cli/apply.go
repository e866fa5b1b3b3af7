package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shuttle/internal/infrastructure/watch"
	"github.com/felixgeelhaar/shuttle/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/shuttle/pkg/application"
	"github.com/felixgeelhaar/shuttle/pkg/domain"
)

var (
	applyPaste bool
	applyYes   bool
	applyWatch bool
)

var applyCmd = &cobra.Command{
	Use:   "apply [reply-file]",
	Short: "Parse a model reply and apply its file operations",
	Long: `Apply reads the model's reply from a file, the clipboard (--paste), or
stdin, decodes the operation blocks, and applies them to the workspace.
Applied operations are recorded on the current task; failures are
counted and logged, never fatal to the rest of the batch.

With --watch the reply file is re-applied every time it changes, which
pairs well with keeping one scratch file open next to the chat.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApplyCmd,
}

func runApplyCmd(cmd *cobra.Command, args []string) error {
	services, err := loadServicesForCurrentDir()
	if err != nil {
		return err
	}

	if applyWatch {
		if len(args) != 1 {
			return errors.New("--watch requires a reply file argument")
		}
		if applyPaste {
			return errors.New("--watch reads from the file, not the clipboard")
		}
	}

	fromStdin := !applyPaste && len(args) == 0
	confirm := overwriteConfirmer(cmd, services, fromStdin)

	applySvc, err := services.NewApply(confirm, printNotifier{
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	if applyWatch {
		return runApplyWatch(cmd, services, applySvc, args[0])
	}

	text, err := readReply(cmd, args)
	if err != nil {
		return err
	}

	report, err := applySvc.ApplyReply(text)
	if err != nil {
		return err
	}
	printApplied(cmd.OutOrStdout(), report)
	return nil
}

// overwriteConfirmer picks how CREATE-over-existing-file prompts get
// answered. When the reply itself arrives on stdin there is nothing
// left to read an answer from, so unconfirmed overwrites are declined.
func overwriteConfirmer(cmd *cobra.Command, services *wiring.AppServices, fromStdin bool) domain.ConfirmFunc {
	if applyYes || services.Workspace.Config.Apply.AutoConfirmOverwrites {
		return alwaysConfirm
	}
	if fromStdin {
		return func(prompt string) bool {
			fmt.Fprintf(cmd.ErrOrStderr(), "Declining %s (re-run with --yes to allow overwrites)\n", prompt)
			return false
		}
	}
	return askConfirm(cmd.InOrStdin(), cmd.OutOrStdout())
}

func readReply(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case applyPaste:
		text, err := clipboard.ReadAll()
		if err != nil {
			return "", fmt.Errorf("failed to read clipboard: %w", err)
		}
		return text, nil

	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read reply file: %w", err)
		}
		return string(data), nil

	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
}

func runApplyWatch(cmd *cobra.Command, services *wiring.AppServices, applySvc *application.ApplyService, path string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runOnce := func() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: read %s: %v\n", path, err)
			return
		}

		report, err := applySvc.ApplyReply(string(data))
		if errors.Is(err, application.ErrNoOperations) {
			// An empty or half-written file is normal while watching.
			return
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", MapError(err))
			return
		}
		printApplied(cmd.OutOrStdout(), report)
	}

	// Apply whatever the file already holds, then follow changes.
	if _, err := os.Stat(path); err == nil {
		runOnce()
	}

	debounce := time.Duration(services.Workspace.Config.Apply.WatchDebounceMS) * time.Millisecond
	watcher, err := watch.NewReplyWatcher(path, debounce, runOnce)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", path)
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printApplied(out io.Writer, report *application.ApplyReport) {
	for _, op := range report.Result.Applied {
		fmt.Fprintf(out, "  + %s\n", op.Summary())
	}
}

// printNotifier surfaces the aggregate apply summary on the terminal.
type printNotifier struct {
	out    io.Writer
	errOut io.Writer
}

func (n printNotifier) Info(message string) { fmt.Fprintln(n.out, message) }
func (n printNotifier) Warn(message string) { fmt.Fprintln(n.errOut, "Warning: "+message) }

func init() {
	applyCmd.Flags().BoolVar(&applyPaste, "paste", false, "Read the reply from the clipboard")
	applyCmd.Flags().BoolVarP(&applyYes, "yes", "y", false, "Overwrite existing files without asking")
	applyCmd.Flags().BoolVarP(&applyWatch, "watch", "w", false, "Keep watching the reply file and re-apply on change")

	RootCmd.AddCommand(applyCmd)
}
