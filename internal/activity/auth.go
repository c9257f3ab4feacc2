package activity

import (
	"github.com/rescale-labs/gateway/internal/model"
	"github.com/rescale-labs/gateway/internal/remoteaddr"
)

// AuthActivity collects the connection tuple FileTransferActivity
// needs (spec.md §4.2's run_authentication). When the manager already
// has params (the CLI's positional `remote` argument was given), it
// submits on the very first draw without showing anything; otherwise
// it prompts for a remote string via an Input popup.
type AuthActivity struct {
	ctx *Context

	seeded  model.Params
	params  model.Params
	quit    bool
	submit  bool
	created bool

	modes ModeStack
}

// NewAuthActivity constructs an AuthActivity. seeded, when non-zero
// (Address != ""), is submitted immediately.
func NewAuthActivity(seeded model.Params) *AuthActivity {
	return &AuthActivity{seeded: seeded}
}

func (a *AuthActivity) OnCreate(ctx *Context) {
	a.ctx = ctx
	if a.seeded.Address != "" {
		a.params = a.seeded
		a.submit = true
		return
	}
	a.promptRemote()
}

func (a *AuthActivity) promptRemote() {
	a.modes.Push(Popup{
		Kind:   PopupInput,
		Prompt: "Connect to (e.g. sftp://user@host:port):",
		OnSubmit: func(text string) {
			parsed, err := remoteaddr.Parse(text)
			if err != nil {
				a.modes.Clear()
				a.modes.Push(Popup{Kind: PopupAlert, Text: "bad remote syntax: " + err.Error(), Color: ColorRed,
					OnDismiss: func() { a.promptRemote() }})
				return
			}
			a.params = model.Params{Address: parsed.Address, Port: parsed.Port, Protocol: parsed.Protocol, Username: parsed.Username}
			a.submit = true
		},
	})
}

func (a *AuthActivity) OnDraw() {
	if a.submit || a.quit {
		return
	}
	a.drainInput()
	a.draw()
}

func (a *AuthActivity) drainInput() {
	for {
		ev, ok := a.ctx.Term.PollEvent()
		if !ok {
			return
		}
		a.handle(ev)
	}
}

func (a *AuthActivity) handle(ev Event) {
	top, ok := a.modes.Top()
	if !ok {
		return
	}
	switch top.Kind {
	case PopupInput:
		switch ev.Key {
		case KeyEnter:
			cb := top.OnSubmit
			a.modes.Pop()
			if cb != nil {
				cb(top.Buffer)
			}
		case KeyBackspace:
			if n := len(top.Buffer); n > 0 {
				top.Buffer = top.Buffer[:n-1]
			}
		case KeyEsc:
			a.quit = true
		case KeyRune:
			top.Buffer += string(ev.Rune)
		}
	case PopupAlert:
		if ev.Key == KeyEnter || ev.Key == KeyEsc {
			cb := top.OnDismiss
			a.modes.Pop()
			if cb != nil {
				cb()
			}
		}
	}
}

func (a *AuthActivity) draw() {
	a.ctx.Term.Draw(func() {
		width, height := a.ctx.Term.Size()
		title := "gateway — press Esc to quit"
		a.ctx.Term.DrawText(0, 0, Style{}, remoteaddr.AlignTextCenter(title, width))
		if top, ok := a.modes.Top(); ok && top.Kind == PopupInput {
			a.ctx.Term.DrawText(2, height/2-1, Style{Bold: true}, top.Prompt)
			a.ctx.Term.DrawText(2, height/2, Style{}, "> "+top.Buffer)
		}
		if top, ok := a.modes.Top(); ok && top.Kind == PopupAlert {
			a.ctx.Term.DrawText(2, height/2, Style{Fg: top.Color, Bold: true}, top.Text)
		}
	})
}

func (a *AuthActivity) OnDestroy() *Context {
	ctx := a.ctx
	a.ctx = nil
	return ctx
}

func (a *AuthActivity) Quit() bool           { return a.quit }
func (a *AuthActivity) Submit() bool         { return a.submit }
func (a *AuthActivity) Params() model.Params { return a.params }
