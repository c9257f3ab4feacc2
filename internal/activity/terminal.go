package activity

// Terminal is the drawing/input surface an Activity draws on and reads
// input from. spec.md §6 specifies it only by contract (alternate
// screen, raw mode, clear, draw-by-closure) and leaves the concrete
// back-end an external collaborator; internal/ui's tcell wrapper
// satisfies this interface structurally, the same pattern
// internal/transfer uses for its protocol back-ends (DESIGN.md).
type Terminal interface {
	EnterAltScreen() error
	LeaveAltScreen() error
	EnableRawMode() error
	DisableRawMode() error

	// Size returns the current screen dimensions in columns, rows.
	Size() (width, height int)

	// Clear blanks the screen. Draw already clears before invoking its
	// closure, so callers rarely need this directly.
	Clear()

	// SetCell paints one cell. Used by box/border drawing.
	SetCell(x, y int, ch rune, style Style)

	// DrawText paints text left-to-right starting at (x, y).
	DrawText(x, y int, style Style, text string)

	// Draw clears the screen, runs render, then flushes to the
	// physical terminal. This is spec.md §6's "draw(closure)".
	Draw(render func())

	// PollEvent returns the next pending input event without
	// blocking. ok is false when no event is queued — the caller
	// drains in a loop until PollEvent reports none pending, per
	// spec.md §4.2's "non-blocking drain".
	PollEvent() (Event, bool)
}

// PasswordPrompter reads a password outside the alternate screen
// (spec.md §5: "a password prompt, during authentication, outside the
// UI"). internal/ui implements this with golang.org/x/term.
type PasswordPrompter interface {
	ReadPassword(prompt string) (string, error)
}

// Editor blocks until the external text editor process invoked on path
// exits (spec.md §4.4's "external text editor invocation" collaborator,
// specified only by this contract). internal/ui implements this with
// os/exec against $EDITOR.
type Editor interface {
	Open(path string) error
}

// Color is a small palette independent of any one terminal library.
type Color int

const (
	ColorDefault Color = iota
	ColorRed
	ColorYellow
	ColorGreen
	ColorBlue
	ColorWhite
)

// Style is the paint applied to a run of text or a single cell.
type Style struct {
	Fg   Color
	Bold bool
}

// Key is the closed set of bindings spec.md §4.3 names, plus KeyRune
// for ordinary printable input captured by Input/Help popups.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyUp
	KeyDown
	KeyPgUp
	KeyPgDn
	KeyLeft
	KeyRight
	KeyTab
	KeyEnter
	KeyEsc
	KeyBackspace
	KeySpace
	KeyDelete
	KeyCtrlD
	KeyCtrlG
	KeyCtrlH
	KeyCtrlQ
	KeyCtrlR
	KeyCtrlU
)

// Event is one input event: either a named Key or a printable Rune
// (Key == KeyRune).
type Event struct {
	Key  Key
	Rune rune
}
