package transfer

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescale-labs/gateway/internal/localhost"
	"github.com/rescale-labs/gateway/internal/model"
)

// fakeBackend is an in-memory stand-in for a real protocol back-end,
// used to exercise the streaming engine without a network.
type fakeBackend struct {
	files map[string][]byte
	dirs  map[string]bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{files: map[string][]byte{}, dirs: map[string]bool{"/": true}}
}

func (f *fakeBackend) Connect(string, uint16, *string, *string) (string, error) { return "", nil }
func (f *fakeBackend) Disconnect() error                                       { return nil }
func (f *fakeBackend) IsConnected() bool                                       { return true }
func (f *fakeBackend) Pwd() (string, error)                                    { return "/", nil }
func (f *fakeBackend) ChangeDir(p string) (string, error)                      { return p, nil }
func (f *fakeBackend) ListDir(string) ([]model.FsEntry, error)                 { return nil, nil }
func (f *fakeBackend) Mkdir(p string) error                                    { f.dirs[p] = true; return nil }
func (f *fakeBackend) Remove(model.FsEntry) error                              { return nil }
func (f *fakeBackend) Rename(model.FsEntry, string) error                      { return nil }
func (f *fakeBackend) Stat(string) (model.FsEntry, error)                      { return model.FsEntry{}, nil }

type memSink struct {
	buf  bytes.Buffer
	path string
}

func (s *memSink) Write(p []byte) (int, error) { return s.buf.Write(p) }

func (f *fakeBackend) SendFile(remotePath string, size int64) (io.Writer, error) {
	return &memSink{path: remotePath}, nil
}

func (f *fakeBackend) OnSent(sink io.Writer) error {
	s := sink.(*memSink)
	f.files[s.path] = s.buf.Bytes()
	return nil
}

func (f *fakeBackend) RecvFile(entry model.FsEntry) (io.Reader, error) {
	data, ok := f.files[entry.AbsPath]
	if !ok {
		return nil, model.NewError(model.NoSuchFileOrDirectory, entry.AbsPath)
	}
	return bytes.NewReader(data), nil
}

func (f *fakeBackend) OnRecv(io.Reader) error { return nil }

// fakeHooks records calls without touching any real UI.
type fakeHooks struct {
	draws     int
	aborted   bool
	alerts    []string
	restored  bool
}

func (h *fakeHooks) SetWait(string)         {}
func (h *fakeHooks) SetProgress(string)     {}
func (h *fakeHooks) Draw()                  { h.draws++ }
func (h *fakeHooks) DrainInput() bool       { return h.aborted }
func (h *fakeHooks) Log(model.LogLevel, string)      {}
func (h *fakeHooks) LogAlert(_ model.LogLevel, msg string) { h.alerts = append(h.alerts, msg) }
func (h *fakeHooks) RestoreExplorer()       { h.restored = true }

func TestEngine_SendFile_StreamsWholeFileAndFinalizes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), bytes.Repeat([]byte("x"), ChunkSize+17), 0o644))

	local, err := localhost.New(dir)
	require.NoError(t, err)
	entry, err := local.Stat("a.txt")
	require.NoError(t, err)

	backend := newFakeBackend()
	hooks := &fakeHooks{}
	state := &model.TransferStates{}
	engine := New(backend, local, state, hooks)

	engine.Send(entry, "/remote", nil)

	assert.False(t, hooks.aborted)
	assert.True(t, hooks.restored)
	assert.Empty(t, hooks.alerts)
	assert.Equal(t, bytes.Repeat([]byte("x"), ChunkSize+17), backend.files["/remote/a.txt"])
	assert.Greater(t, hooks.draws, 0)
}

func TestEngine_RecvFile_WritesLocalCopy(t *testing.T) {
	dir := t.TempDir()
	local, err := localhost.New(dir)
	require.NoError(t, err)

	backend := newFakeBackend()
	backend.files["/remote/b.txt"] = []byte("hello world")
	hooks := &fakeHooks{}
	state := &model.TransferStates{}
	engine := New(backend, local, state, hooks)

	remoteEntry := model.FsEntry{Kind: model.KindFile, Name: "b.txt", AbsPath: "/remote/b.txt", Size: 11}
	engine.Recv(remoteEntry, dir, nil)

	data, err := os.ReadFile(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
	assert.True(t, hooks.restored)
}

func TestEngine_Send_AbortStopsStreamingAndAlerts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.bin"), bytes.Repeat([]byte("y"), ChunkSize*3), 0o644))

	local, err := localhost.New(dir)
	require.NoError(t, err)
	entry, err := local.Stat("big.bin")
	require.NoError(t, err)

	backend := newFakeBackend()
	hooks := &fakeHooks{aborted: true}
	state := &model.TransferStates{}
	engine := New(backend, local, state, hooks)
	engine.DrainInterval = 0

	engine.Send(entry, "/remote", nil)

	require.Len(t, hooks.alerts, 1)
	assert.Contains(t, hooks.alerts[0], "Upload aborted")
	assert.False(t, hooks.restored)
}
