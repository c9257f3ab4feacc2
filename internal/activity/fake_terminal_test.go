package activity

// fakeTerminal is an in-memory stand-in for a real Terminal, used to
// drive activities without a tcell screen. Events are consumed from a
// queue in FIFO order; Draw only runs its closure (no pixel buffer is
// kept — tests assert on activity state, not rendered output).
type fakeTerminal struct {
	width, height int
	events        []Event
	draws         int
}

func newFakeTerminal(events ...Event) *fakeTerminal {
	return &fakeTerminal{width: 80, height: 24, events: events}
}

func (t *fakeTerminal) EnterAltScreen() error  { return nil }
func (t *fakeTerminal) LeaveAltScreen() error  { return nil }
func (t *fakeTerminal) EnableRawMode() error   { return nil }
func (t *fakeTerminal) DisableRawMode() error  { return nil }
func (t *fakeTerminal) Size() (int, int)       { return t.width, t.height }
func (t *fakeTerminal) Clear()                 {}
func (t *fakeTerminal) SetCell(int, int, rune, Style) {}
func (t *fakeTerminal) DrawText(int, int, Style, string) {}

func (t *fakeTerminal) Draw(render func()) {
	t.draws++
	render()
}

func (t *fakeTerminal) PollEvent() (Event, bool) {
	if len(t.events) == 0 {
		return Event{}, false
	}
	ev := t.events[0]
	t.events = t.events[1:]
	return ev, true
}

func runeEvent(r rune) Event { return Event{Key: KeyRune, Rune: r} }

func keyEvent(k Key) Event { return Event{Key: k} }

func stringEvents(s string) []Event {
	evs := make([]Event, len(s))
	for i, r := range s {
		evs[i] = runeEvent(r)
	}
	return evs
}
