// Package ui implements the activity.Terminal and activity.PasswordPrompter
// collaborators spec.md §6 leaves as external: a tcell.Screen-backed
// alternate-screen/raw-mode terminal (the pack's nearest full-screen
// TUI dependency, DESIGN.md) and a golang.org/x/term password prompt
// read before the screen is entered (spec.md §5).
package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/rescale-labs/gateway/internal/activity"
)

// Terminal wraps a tcell.Screen to satisfy activity.Terminal.
// gateway always runs the screen in raw mode with the alternate
// buffer active — EnableRawMode/EnterAltScreen are separated from
// construction only because spec.md's lifecycle names them as
// distinct steps the manager can sequence around (e.g. to drop back
// to a line-mode password prompt between activities).
type Terminal struct {
	screen tcell.Screen
}

// New allocates and initializes the underlying tcell.Screen.
func New() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("could not allocate terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("could not initialize terminal screen: %w", err)
	}
	return &Terminal{screen: screen}, nil
}

func (t *Terminal) EnterAltScreen() error {
	t.screen.EnableMouse()
	return nil
}

func (t *Terminal) LeaveAltScreen() error {
	t.screen.DisableMouse()
	t.screen.Fini()
	return nil
}

func (t *Terminal) EnableRawMode() error {
	t.screen.Clear()
	return nil
}

func (t *Terminal) DisableRawMode() error { return nil }

func (t *Terminal) Size() (int, int) {
	return t.screen.Size()
}

func (t *Terminal) Clear() { t.screen.Clear() }

func (t *Terminal) SetCell(x, y int, ch rune, style activity.Style) {
	t.screen.SetContent(x, y, ch, nil, convertStyle(style))
}

func (t *Terminal) DrawText(x, y int, style activity.Style, text string) {
	st := convertStyle(style)
	col := x
	for _, r := range text {
		t.screen.SetContent(col, y, r, nil, st)
		col++
	}
}

func (t *Terminal) Draw(render func()) {
	t.screen.Clear()
	render()
	t.screen.Show()
}

func (t *Terminal) PollEvent() (activity.Event, bool) {
	if !t.screen.HasPendingEvent() {
		return activity.Event{}, false
	}
	switch ev := t.screen.PollEvent().(type) {
	case *tcell.EventKey:
		return convertKey(ev), true
	default:
		// Resize and other non-key events don't carry a binding;
		// report them as consumed-but-inert so the drain loop keeps
		// moving instead of spinning on HasPendingEvent forever.
		return activity.Event{}, true
	}
}

func convertStyle(s activity.Style) tcell.Style {
	st := tcell.StyleDefault.Foreground(convertColor(s.Fg))
	if s.Bold {
		st = st.Bold(true)
	}
	return st
}

func convertColor(c activity.Color) tcell.Color {
	switch c {
	case activity.ColorRed:
		return tcell.ColorRed
	case activity.ColorYellow:
		return tcell.ColorYellow
	case activity.ColorGreen:
		return tcell.ColorGreen
	case activity.ColorBlue:
		return tcell.ColorBlue
	case activity.ColorWhite:
		return tcell.ColorWhite
	default:
		return tcell.ColorDefault
	}
}

func convertKey(ev *tcell.EventKey) activity.Event {
	switch ev.Key() {
	case tcell.KeyUp:
		return activity.Event{Key: activity.KeyUp}
	case tcell.KeyDown:
		return activity.Event{Key: activity.KeyDown}
	case tcell.KeyPgUp:
		return activity.Event{Key: activity.KeyPgUp}
	case tcell.KeyPgDn:
		return activity.Event{Key: activity.KeyPgDn}
	case tcell.KeyLeft:
		return activity.Event{Key: activity.KeyLeft}
	case tcell.KeyRight:
		return activity.Event{Key: activity.KeyRight}
	case tcell.KeyTab:
		return activity.Event{Key: activity.KeyTab}
	case tcell.KeyEnter:
		return activity.Event{Key: activity.KeyEnter}
	case tcell.KeyEsc:
		return activity.Event{Key: activity.KeyEsc}
	case tcell.KeyBackspace2:
		return activity.Event{Key: activity.KeyBackspace}
	case tcell.KeyDelete:
		return activity.Event{Key: activity.KeyDelete}
	case tcell.KeyCtrlD:
		return activity.Event{Key: activity.KeyCtrlD}
	case tcell.KeyCtrlG:
		return activity.Event{Key: activity.KeyCtrlG}
	case tcell.KeyCtrlH:
		return activity.Event{Key: activity.KeyCtrlH}
	case tcell.KeyCtrlQ:
		return activity.Event{Key: activity.KeyCtrlQ}
	case tcell.KeyCtrlR:
		return activity.Event{Key: activity.KeyCtrlR}
	case tcell.KeyCtrlU:
		return activity.Event{Key: activity.KeyCtrlU}
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			return activity.Event{Key: activity.KeySpace}
		}
		return activity.Event{Key: activity.KeyRune, Rune: ev.Rune()}
	default:
		return activity.Event{Key: activity.KeyNone}
	}
}

var _ activity.Terminal = (*Terminal)(nil)
