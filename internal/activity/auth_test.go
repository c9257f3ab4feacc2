package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rescale-labs/gateway/internal/model"
)

func TestAuthActivity_SeededParamsSubmitImmediately(t *testing.T) {
	seeded := model.Params{Address: "host", Protocol: model.Sftp()}
	act := NewAuthActivity(seeded)
	act.OnCreate(&Context{Term: newFakeTerminal()})

	assert.True(t, act.Submit())
	assert.Equal(t, seeded, act.Params())
}

func TestAuthActivity_PromptParsesRemoteOnEnter(t *testing.T) {
	events := append(stringEvents("sftp://bob@example.com:2222"), keyEvent(KeyEnter))
	term := newFakeTerminal(events...)
	act := NewAuthActivity(model.Params{})
	act.OnCreate(&Context{Term: term})

	act.OnDraw()

	assert.True(t, act.Submit())
	got := act.Params()
	assert.Equal(t, "example.com", got.Address)
	assert.Equal(t, uint16(2222), got.Port)
	assert.Equal(t, model.Sftp(), got.Protocol)
	assert.Equal(t, "bob", *got.Username)
}

func TestAuthActivity_BadSyntaxShowsAlertThenReprompts(t *testing.T) {
	events := append(stringEvents("host:notanumber"), keyEvent(KeyEnter))
	events = append(events, keyEvent(KeyEnter)) // dismiss the alert
	term := newFakeTerminal(events...)
	act := NewAuthActivity(model.Params{})
	act.OnCreate(&Context{Term: term})

	act.OnDraw()

	assert.False(t, act.Submit())
	assert.False(t, act.Quit())
	top, ok := act.modes.Top()
	if assert.True(t, ok, "expected the reprompt to still be on the stack") {
		assert.Equal(t, PopupInput, top.Kind)
	}
}

func TestAuthActivity_EscQuits(t *testing.T) {
	term := newFakeTerminal(keyEvent(KeyEsc))
	act := NewAuthActivity(model.Params{})
	act.OnCreate(&Context{Term: term})

	act.OnDraw()

	assert.True(t, act.Quit())
	assert.False(t, act.Submit())
}
