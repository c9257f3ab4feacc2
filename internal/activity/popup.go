package activity

import "github.com/rescale-labs/gateway/internal/model"

// PopupKind is the closed set of overlays spec.md §3's InputMode names.
type PopupKind int

const (
	PopupAlert PopupKind = iota
	PopupFatal
	PopupFileInfo
	PopupHelp
	PopupInput
	PopupProgress
	PopupWait
	PopupYesNo
)

// Popup is one entry of the modal overlay stack. Not every field
// applies to every Kind; see the per-kind notes below.
type Popup struct {
	Kind  PopupKind
	Text  string // Alert/Fatal/Progress/Wait/FileInfo body
	Color Color  // Alert only, chosen from the triggering LogLevel

	Prompt string // Input/YesNo
	Buffer string // Input: accumulated text, edited by the user

	YesSelected bool // YesNo: true selects "Yes"

	OnSubmit func(text string) // Input, called on Enter
	OnYes    func()            // YesNo
	OnNo     func()            // YesNo

	// OnDismiss runs when an Alert/Fatal/Wait/Progress/Help/FileInfo
	// popup is closed via Esc or Enter. Fatal's default sets quit;
	// FileTransferActivity overrides it for connection failures to set
	// disconnected instead (spec.md §7).
	OnDismiss func()
}

// AlertColorForLevel maps a log severity to the Alert popup colour
// spec.md §4.3's log_and_alert describes.
func AlertColorForLevel(level model.LogLevel) Color {
	switch level {
	case model.LogError:
		return ColorRed
	case model.LogWarn:
		return ColorYellow
	default:
		return ColorGreen
	}
}

// ModeStack is the stacked InputMode spec.md §3 describes: the
// Explorer is the base (empty stack); pushing a Popup enters modal
// input; popping returns to whatever was active before it.
type ModeStack struct {
	popups []Popup
}

// Push installs p as the active (topmost) popup.
func (s *ModeStack) Push(p Popup) { s.popups = append(s.popups, p) }

// Pop removes the active popup, if any.
func (s *ModeStack) Pop() {
	if n := len(s.popups); n > 0 {
		s.popups = s.popups[:n-1]
	}
}

// Top returns the active popup, if the mode is not Explorer.
func (s *ModeStack) Top() (*Popup, bool) {
	if n := len(s.popups); n > 0 {
		return &s.popups[n-1], true
	}
	return nil, false
}

// IsExplorer reports whether no popup is active.
func (s *ModeStack) IsExplorer() bool { return len(s.popups) == 0 }

// Clear empties the stack, returning the mode to Explorer.
func (s *ModeStack) Clear() { s.popups = nil }
