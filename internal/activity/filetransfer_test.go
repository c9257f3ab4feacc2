package activity

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescale-labs/gateway/internal/explorer"
	"github.com/rescale-labs/gateway/internal/localhost"
	"github.com/rescale-labs/gateway/internal/model"
	"github.com/rescale-labs/gateway/internal/transfer"
)

// fakeBackend is an in-memory stand-in for a connected protocol
// back-end, mirroring internal/transfer's own fakeBackend test double
// closely enough to drive FileTransferActivity without a network.
type fakeBackend struct {
	dirs     map[string][]model.FsEntry
	files    map[string][]byte
	uploaded map[string]string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		dirs: map[string][]model.FsEntry{
			"/remote": {{Kind: model.KindFile, Name: "report.csv", AbsPath: "/remote/report.csv", Size: 3}},
		},
		files:    map[string][]byte{"/remote/report.csv": []byte("a,b")},
		uploaded: map[string]string{},
	}
}

func (b *fakeBackend) Connect(string, uint16, *string, *string) (string, error) { return "hi", nil }
func (b *fakeBackend) Disconnect() error                                       { return nil }
func (b *fakeBackend) IsConnected() bool                                       { return true }
func (b *fakeBackend) Pwd() (string, error)                                    { return "/remote", nil }
func (b *fakeBackend) ChangeDir(p string) (string, error) {
	if _, ok := b.dirs[p]; !ok {
		return "", model.NewError(model.NoSuchFileOrDirectory, p)
	}
	return p, nil
}
func (b *fakeBackend) ListDir(p string) ([]model.FsEntry, error) { return b.dirs[p], nil }
func (b *fakeBackend) Mkdir(p string) error                      { return nil }
func (b *fakeBackend) Remove(model.FsEntry) error                { return nil }
func (b *fakeBackend) Rename(model.FsEntry, string) error        { return nil }
func (b *fakeBackend) Stat(string) (model.FsEntry, error)        { return model.FsEntry{}, nil }

type memSink struct {
	path    string
	backend *fakeBackend
	buf     bytes.Buffer
}

func (s *memSink) Write(p []byte) (int, error) { return s.buf.Write(p) }

func (b *fakeBackend) SendFile(remotePath string, size int64) (transfer.Sink, error) {
	return &memSink{path: remotePath, backend: b}, nil
}
func (b *fakeBackend) OnSent(sink transfer.Sink) error {
	if s, ok := sink.(*memSink); ok {
		s.backend.uploaded[s.path] = s.buf.String()
	}
	return nil
}
func (b *fakeBackend) RecvFile(entry model.FsEntry) (transfer.Source, error) {
	data, ok := b.files[entry.AbsPath]
	if !ok {
		return nil, model.NewError(model.NoSuchFileOrDirectory, entry.AbsPath)
	}
	return bytes.NewReader(data), nil
}
func (b *fakeBackend) OnRecv(transfer.Source) error { return nil }

func newTestActivity(t *testing.T) (*FileTransferActivity, *fakeBackend, string) {
	t.Helper()
	dir := t.TempDir()
	local, err := localhost.New(dir)
	require.NoError(t, err)

	backend := newFakeBackend()
	a := NewFileTransferActivity(model.Params{Address: "example.com", Protocol: model.Sftp()})
	a.ctx = &Context{Local: local, Term: newFakeTerminal()}
	a.backend = backend
	a.local = explorer.New(explorer.LocalSource{Local: local}, local.Pwd(), false)
	a.remote = explorer.New(backend, "/remote", true)
	require.NoError(t, a.remote.Refresh())
	a.engine = transfer.New(backend, local, &a.state, a)
	return a, backend, dir
}

func TestFileTransferActivity_TabTogglesLogsFocus(t *testing.T) {
	a, _, _ := newTestActivity(t)
	assert.Equal(t, FocusLocal, a.focus)

	a.handle(keyEvent(KeyTab))
	assert.Equal(t, FocusLogs, a.focus)

	a.handle(keyEvent(KeyTab))
	assert.Equal(t, FocusLocal, a.focus)
}

func TestFileTransferActivity_LeftRightSwitchesExplorerPane(t *testing.T) {
	a, _, _ := newTestActivity(t)
	a.handle(keyEvent(KeyRight))
	assert.Equal(t, FocusRemote, a.focus)
	a.handle(keyEvent(KeyLeft))
	assert.Equal(t, FocusLocal, a.focus)
}

func TestFileTransferActivity_MoveNavigatesLogsWhenFocused(t *testing.T) {
	a, _, _ := newTestActivity(t)
	a.Log(model.LogInfo, "one")
	a.Log(model.LogInfo, "two")
	a.focus = FocusLogs

	a.handle(keyEvent(KeyDown))
	assert.Equal(t, 1, a.logIndex)

	a.handle(keyEvent(KeyUp))
	assert.Equal(t, 0, a.logIndex)

	// Clamped, never negative.
	a.handle(keyEvent(KeyUp))
	assert.Equal(t, 0, a.logIndex)
}

func TestFileTransferActivity_TransferSelectedDownloadsAndRefreshesLocal(t *testing.T) {
	a, _, dir := newTestActivity(t)
	a.focus = FocusRemote

	a.handle(keyEvent(KeySpace))

	data, err := os.ReadFile(dir + "/report.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b", string(data))

	require.Len(t, a.local.Files(), 1)
	assert.Equal(t, "report.csv", a.local.Files()[0].Name)
}

func TestFileTransferActivity_EscPromptsYesNoBeforeDisconnecting(t *testing.T) {
	a, _, _ := newTestActivity(t)
	a.handle(keyEvent(KeyEsc))
	assert.False(t, a.disconnected, "Esc should prompt for confirmation, not disconnect immediately")

	top, ok := a.modes.Top()
	require.True(t, ok)
	assert.Equal(t, PopupYesNo, top.Kind)

	a.handle(keyEvent(KeyLeft)) // toggle to Yes
	a.handle(keyEvent(KeyEnter))
	assert.True(t, a.disconnected)
}

func TestFileTransferActivity_HooksDriveModeStack(t *testing.T) {
	a, _, _ := newTestActivity(t)

	a.SetWait("copying…")
	top, ok := a.modes.Top()
	require.True(t, ok)
	assert.Equal(t, PopupWait, top.Kind)

	a.LogAlert(model.LogError, "boom")
	top, ok = a.modes.Top()
	require.True(t, ok)
	assert.Equal(t, PopupAlert, top.Kind)
	assert.Equal(t, ColorRed, top.Color)

	a.RestoreExplorer()
	_, ok = a.modes.Top()
	assert.False(t, ok)
}

func TestFileTransferActivity_DrainInputReportsAbortOnEscOrCtrlQ(t *testing.T) {
	a, _, _ := newTestActivity(t)
	a.ctx.Term = newFakeTerminal(runeEvent('x'), keyEvent(KeyCtrlQ))
	assert.True(t, a.DrainInput())

	a.ctx.Term = newFakeTerminal(runeEvent('x'))
	assert.False(t, a.DrainInput())
}

// fakeEditor is a stand-in activity.Editor for tests: it records the
// path it was invoked on and optionally mutates the file in place
// before returning, simulating a user saving an edit.
type fakeEditor struct {
	calls  []string
	mutate func(path string) error
}

func (e *fakeEditor) Open(path string) error {
	e.calls = append(e.calls, path)
	if e.mutate != nil {
		return e.mutate(path)
	}
	return nil
}

func TestFileTransferActivity_EditLocalRejectsBinary(t *testing.T) {
	a, _, dir := newTestActivity(t)
	require.NoError(t, os.WriteFile(dir+"/blob.bin", []byte{0x00, 0x01, 0x02}, 0o644))
	require.NoError(t, a.local.Refresh())

	editor := &fakeEditor{}
	a.ctx.Editor = editor

	a.activateSelected()

	assert.Empty(t, editor.calls, "binary file must not be handed to the editor")
}

func TestFileTransferActivity_EditLocalInvokesEditor(t *testing.T) {
	a, _, dir := newTestActivity(t)
	require.NoError(t, os.WriteFile(dir+"/notes.txt", []byte("hello"), 0o644))
	require.NoError(t, a.local.Refresh())

	editor := &fakeEditor{mutate: func(path string) error {
		return os.WriteFile(path, []byte("hello, edited"), 0o644)
	}}
	a.ctx.Editor = editor

	a.activateSelected()

	require.Len(t, editor.calls, 1)
	assert.Equal(t, dir+"/notes.txt", editor.calls[0])
	data, err := os.ReadFile(dir + "/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello, edited", string(data))
}

func TestFileTransferActivity_EditRemoteRoundTripsThroughTempFile(t *testing.T) {
	a, backend, _ := newTestActivity(t)
	a.focus = FocusRemote

	editor := &fakeEditor{mutate: func(path string) error {
		return os.WriteFile(path, []byte("a,b,edited"), 0o644)
	}}
	a.ctx.Editor = editor

	a.activateSelected()

	require.Len(t, editor.calls, 1)
	sink, ok := backend.uploaded["/remote/report.csv"]
	require.True(t, ok, "edited remote file must be uploaded back")
	assert.Equal(t, "a,b,edited", sink)
}

func TestJoinUnder_AppendsUnderWrkdir(t *testing.T) {
	a, _, _ := newTestActivity(t)
	assert.Equal(t, "/remote/new.txt", joinUnder(a.remote, "new.txt"))
}

