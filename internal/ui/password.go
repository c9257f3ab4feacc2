package ui

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/rescale-labs/gateway/internal/activity"
)

// PasswordPrompt reads a password from stdin with echo disabled,
// ported from the teacher's PromptProxyPassword/IsTerminal
// (internal/cli/prompt.go): read before the alternate screen is
// entered, matching spec.md §5's "a password prompt, during
// authentication, outside the UI".
type PasswordPrompt struct{}

func (PasswordPrompt) ReadPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("could not read password: %w", err)
	}
	return string(passwordBytes), nil
}

// IsTerminal reports whether stdin is connected to a terminal, used to
// decide whether an interactive password prompt is even possible.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var _ activity.PasswordPrompter = PasswordPrompt{}
