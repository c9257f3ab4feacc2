package ui

import (
	"os"
	"os/exec"

	"github.com/rescale-labs/gateway/internal/activity"
)

// ProcessEditor invokes the user's configured external text editor on a
// path and blocks until it exits, satisfying activity.Editor. The
// editor inherits stdin/stdout/stderr directly since it is expected to
// take over the terminal the same way the alternate screen does.
type ProcessEditor struct{}

// Open spawns $EDITOR (falling back to $VISUAL, then "vi") on path and
// waits for it to exit.
func (ProcessEditor) Open(path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		editor = "vi"
	}
	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

var _ activity.Editor = ProcessEditor{}
