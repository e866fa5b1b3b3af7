package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/shuttle/pkg/domain"
)

// askConfirm builds a ConfirmFunc that asks a y/N question on out and
// reads the answer from in. Anything but an explicit yes declines.
func askConfirm(in io.Reader, out io.Writer) domain.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

// alwaysConfirm approves everything; used by --yes flags.
func alwaysConfirm(string) bool { return true }
