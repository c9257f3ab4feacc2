// Package activity implements the cooperative activity state machine
// spec.md §2, §4.2 and §4.3 describe: a Context single-owned by
// whichever Activity is live, an ActivityManager driving a fixed-tick
// create/draw/destroy loop, and the two concrete activities
// (AuthActivity, FileTransferActivity) that own the actual screens.
// Grounded on the teacher's daemon lifecycle (internal/daemon.Daemon's
// Start/pollLoop/Stop, DESIGN.md) generalized from a single background
// loop to the manager's two-activity transition table.
package activity

import (
	"fmt"
	"time"

	"github.com/rescale-labs/gateway/internal/model"
)

// stage names which activity the manager should run next.
type stage int

const (
	stageNone stage = iota
	stageAuthentication
	stageFileTransfer
)

// Activity is the lifecycle every screen implements: create with the
// Context, draw repeatedly, then give the Context back on destroy.
type Activity interface {
	OnCreate(ctx *Context)
	OnDraw()
	OnDestroy() *Context
}

// quitter is implemented by any Activity whose draw loop can ask the
// manager to stop entirely.
type quitter interface{ Quit() bool }

// submitter is implemented by AuthActivity: once Submit reports true,
// Params holds the connection tuple the manager hands to FileTransfer.
type submitter interface {
	Submit() bool
	Params() model.Params
}

// disconnecter is implemented by FileTransferActivity: Disconnected
// reports true once the user (or a connection failure) ends the
// session, sending the manager back to Authentication.
type disconnecter interface{ Disconnected() bool }

// Manager owns the single Context and the connection params collected
// by Authentication, and runs the outer create/draw/destroy loop
// spec.md §4.2 specifies.
type Manager struct {
	ctx      *Context
	tick     time.Duration
	params   model.Params
	prompter PasswordPrompter
}

// NewManager constructs a Manager bound to ctx, polling each activity
// at the given tick period (spec.md §6's -T flag, default 10ms).
func NewManager(ctx *Context, tick time.Duration) *Manager {
	return &Manager{ctx: ctx, tick: tick}
}

// SeedParams pre-supplies connection parameters (e.g. from the CLI's
// positional `remote` argument and its -P flag), letting AuthActivity
// submit immediately instead of prompting.
func (m *Manager) SeedParams(params model.Params) { m.params = params }

// SetPasswordPrompter installs the out-of-UI password reader used
// once Authentication submits a remote with no password attached
// (spec.md §5: the prompt happens outside the terminal UI). Left nil,
// the manager proceeds without a password — back-ends that require
// one will fail to connect and raise FileTransferActivity's Fatal
// popup.
func (m *Manager) SetPasswordPrompter(p PasswordPrompter) { m.prompter = p }

// Run drives the manager's transition table until no activity remains
// to launch.
func (m *Manager) Run() {
	current := stageAuthentication
	for current != stageNone {
		switch current {
		case stageAuthentication:
			current = m.runAuthentication()
		case stageFileTransfer:
			current = m.runFileTransfer()
		}
	}
}

func (m *Manager) runAuthentication() stage {
	act := NewAuthActivity(m.params)
	act.OnCreate(m.ctx)
	defer func() { m.ctx = act.OnDestroy() }()

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		act.OnDraw()
		if act.Quit() {
			return stageNone
		}
		if act.Submit() {
			m.params = act.Params()
			m.promptPasswordIfNeeded()
			return stageFileTransfer
		}
		<-ticker.C
	}
}

// promptPasswordIfNeeded reads a password outside the alternate screen
// when Authentication submitted a remote with none attached. Leaving
// and re-entering the alt screen around the read is best-effort: a
// failing terminal back-end must not block the transition.
func (m *Manager) promptPasswordIfNeeded() {
	if m.params.Password != nil || m.prompter == nil {
		return
	}
	user := "anonymous"
	if m.params.Username != nil {
		user = *m.params.Username
	}
	_ = m.ctx.Term.LeaveAltScreen()
	_ = m.ctx.Term.DisableRawMode()
	password, err := m.prompter.ReadPassword(fmt.Sprintf("Password for %s@%s: ", user, m.params.Address))
	_ = m.ctx.Term.EnableRawMode()
	_ = m.ctx.Term.EnterAltScreen()
	if err == nil {
		m.params.Password = &password
	}
}

func (m *Manager) runFileTransfer() stage {
	if m.params.Address == "" {
		return stageAuthentication
	}

	act := NewFileTransferActivity(m.params)
	act.OnCreate(m.ctx)
	defer func() { m.ctx = act.OnDestroy() }()

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		act.OnDraw()
		if act.Quit() {
			return stageNone
		}
		if act.Disconnected() {
			return stageAuthentication
		}
		<-ticker.C
	}
}

var (
	_ quitter      = (*AuthActivity)(nil)
	_ submitter    = (*AuthActivity)(nil)
	_ quitter      = (*FileTransferActivity)(nil)
	_ disconnecter = (*FileTransferActivity)(nil)
	_ Activity     = (*AuthActivity)(nil)
	_ Activity     = (*FileTransferActivity)(nil)
)
