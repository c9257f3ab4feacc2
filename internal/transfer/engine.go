package transfer

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rescale-labs/gateway/internal/localhost"
	"github.com/rescale-labs/gateway/internal/model"
	"github.com/rescale-labs/gateway/internal/remoteaddr"
	strutil "github.com/rescale-labs/gateway/internal/util/strings"
)

// drainInterval is how often the engine yields to pending input while
// streaming a chunked copy, per spec.md §4.4.
const drainInterval = 500 * time.Millisecond

// progressRedrawThreshold is the minimum change in TransferStates.Progress
// that triggers a redraw, per spec.md §4.4.
const progressRedrawThreshold = 1.0

// Hooks lets the streaming engine drive the popup/progress UI and the
// input loop without importing internal/ui, keeping the engine itself
// a pure streaming component (spec.md §9: Core has no UI dependency).
type Hooks interface {
	SetWait(message string)
	SetProgress(message string)
	Draw()
	// DrainInput processes any input pending since the last call and
	// reports whether the user asked to abort the transfer.
	DrainInput() bool
	Log(level model.LogLevel, msg string)
	LogAlert(level model.LogLevel, msg string)
	// RestoreExplorer returns InputMode to Explorer if a popup mode
	// installed by SetWait/SetProgress is still active.
	RestoreExplorer()
}

// Engine streams files and directory trees between a Localhost and a
// Backend, reporting progress through Hooks. One Engine exists per
// connected session.
type Engine struct {
	Backend Backend
	Local   *localhost.Localhost
	State   *model.TransferStates
	Hooks   Hooks

	// DrainInterval overrides drainInterval; tests shrink it so an
	// abort request doesn't have to wait out real wall-clock time.
	DrainInterval time.Duration

	filesDone int
}

// New constructs an Engine bound to a connected backend, the local
// working-directory handle, and the shared progress state the UI
// layer reads each frame.
func New(backend Backend, local *localhost.Localhost, state *model.TransferStates, hooks Hooks) *Engine {
	return &Engine{Backend: backend, Local: local, State: state, Hooks: hooks, DrainInterval: drainInterval}
}

// Send uploads entry (a file or, recursively, a directory) from the
// local working directory into remoteDir. dstName overrides the
// top-level destination name (used for save-as style renames);
// nested entries always keep their own name.
func (e *Engine) Send(entry model.FsEntry, remoteDir string, dstName *string) {
	name := entry.Name
	if dstName != nil {
		name = *dstName
	}
	remotePath := remoteJoin(remoteDir, name)
	e.filesDone = 0
	e.sendEntry(entry, remotePath)
	e.finish(entry, entry.AbsPath, "Upload")
}

// Recv downloads entry from the remote side into the local working
// directory, mirroring Send.
func (e *Engine) Recv(entry model.FsEntry, localDir string, dstName *string) {
	name := entry.Name
	if dstName != nil {
		name = *dstName
	}
	localPath := filepath.Join(localDir, name)
	e.filesDone = 0
	e.recvEntry(entry, localPath)
	e.finish(entry, entry.Name, "Download")
}

func (e *Engine) finish(entry model.FsEntry, label, verb string) {
	if e.State.Aborted {
		e.Hooks.LogAlert(model.LogWarn, fmt.Sprintf("%s aborted for %q!", verb, label))
		e.State.Aborted = false
		return
	}
	if entry.IsDir() {
		e.Hooks.Log(model.LogInfo, fmt.Sprintf("%s of %q complete: %d %s", verb, label, e.filesDone, strutil.Pluralize("file", int64(e.filesDone))))
	}
	e.Hooks.RestoreExplorer()
}

func (e *Engine) sendEntry(entry model.FsEntry, remotePath string) {
	if e.State.Aborted {
		return
	}
	if entry.IsDir() {
		e.sendDir(entry, remotePath)
		return
	}
	e.sendFile(entry, remotePath)
}

func (e *Engine) sendDir(entry model.FsEntry, remotePath string) {
	e.Hooks.SetWait("Creating directory " + remotePath + "…")
	e.Hooks.Draw()
	if err := e.Backend.Mkdir(remotePath); err != nil {
		e.Hooks.LogAlert(model.LogError, fmt.Sprintf("could not create directory %q: %v", remotePath, err))
		return
	}
	children, err := e.Local.ScanDir(entry.AbsPath)
	if err != nil {
		e.Hooks.Log(model.LogError, fmt.Sprintf("could not read directory %q: %v", entry.AbsPath, err))
		return
	}
	for _, child := range children {
		if e.State.Aborted {
			return
		}
		e.sendEntry(child, remoteJoin(remotePath, child.Name))
	}
}

func (e *Engine) sendFile(entry model.FsEntry, remotePath string) {
	e.Hooks.SetWait("Uploading " + entry.Name + "…")
	e.Hooks.Draw()

	local, err := e.Local.OpenFileRead(entry.AbsPath)
	if err != nil {
		e.Hooks.Log(model.LogError, fmt.Sprintf("could not open %q: %v", entry.AbsPath, err))
		return
	}
	defer local.Close()

	sink, err := e.Backend.SendFile(remotePath, entry.Size)
	if err != nil {
		e.Hooks.LogAlert(model.LogError, fmt.Sprintf("could not open remote file %q: %v", remotePath, err))
		return
	}

	e.State.Reset()
	e.Hooks.SetProgress("Uploading " + entry.Name + "…")

	if err := e.stream(local, sink, entry.Size); err != nil {
		e.Hooks.Log(model.LogError, fmt.Sprintf("upload of %q failed: %v", entry.Name, err))
	}
	if err := e.Backend.OnSent(sink); err != nil {
		e.Hooks.Log(model.LogWarn, fmt.Sprintf("could not finalize upload of %q: %v", entry.Name, err))
	}
	e.logTransferred(entry.Name, "Sent")
	e.filesDone++
}

func (e *Engine) recvEntry(entry model.FsEntry, localPath string) {
	if e.State.Aborted {
		return
	}
	if entry.IsDir() {
		e.recvDir(entry, localPath)
		return
	}
	e.recvFile(entry, localPath)
}

func (e *Engine) recvDir(entry model.FsEntry, localPath string) {
	e.Hooks.SetWait("Creating directory " + localPath + "…")
	e.Hooks.Draw()
	if err := e.Local.MkdirEx(localPath, true); err != nil {
		e.Hooks.LogAlert(model.LogError, fmt.Sprintf("could not create directory %q: %v", localPath, err))
		return
	}
	if entry.Pex != nil {
		if err := e.Local.Chmod(localPath, *entry.Pex); err != nil {
			e.Hooks.Log(model.LogWarn, fmt.Sprintf("could not set permissions on %q: %v", localPath, err))
		}
	}
	children, err := e.Backend.ListDir(entry.AbsPath)
	if err != nil {
		e.Hooks.Log(model.LogError, fmt.Sprintf("could not list remote directory %q: %v", entry.AbsPath, err))
		return
	}
	for _, child := range children {
		if e.State.Aborted {
			return
		}
		e.recvEntry(child, filepath.Join(localPath, child.Name))
	}
}

func (e *Engine) recvFile(entry model.FsEntry, localPath string) {
	e.Hooks.SetWait("Downloading " + entry.Name + "…")
	e.Hooks.Draw()

	source, err := e.Backend.RecvFile(entry)
	if err != nil {
		e.Hooks.LogAlert(model.LogError, fmt.Sprintf("could not open remote file %q: %v", entry.AbsPath, err))
		return
	}

	local, err := e.Local.OpenFileWrite(localPath)
	if err != nil {
		e.Hooks.LogAlert(model.LogError, fmt.Sprintf("could not create %q: %v", localPath, err))
		return
	}
	defer local.Close()

	e.State.Reset()
	e.Hooks.SetProgress("Downloading " + entry.Name + "…")

	if err := e.stream(source, local, entry.Size); err != nil {
		e.Hooks.Log(model.LogError, fmt.Sprintf("download of %q failed: %v", entry.Name, err))
	}
	if err := e.Backend.OnRecv(source); err != nil {
		e.Hooks.Log(model.LogWarn, fmt.Sprintf("could not finalize download of %q: %v", entry.Name, err))
	}
	if entry.Pex != nil {
		if err := e.Local.Chmod(localPath, *entry.Pex); err != nil {
			e.Hooks.Log(model.LogWarn, fmt.Sprintf("could not set permissions on %q: %v", localPath, err))
		}
	}
	e.logTransferred(entry.Name, "Received")
	e.filesDone++
}

// stream copies src into dst in ChunkSize pieces, updating e.State and
// redrawing or draining input at the cadence spec.md §4.4 sets.
func (e *Engine) stream(src io.Reader, dst io.Writer, total int64) error {
	buf := getBuffer()
	defer putBuffer(buf)

	lastDrawn := 0.0
	lastDrain := time.Now()

	for {
		if e.State.Aborted {
			return nil
		}
		if time.Since(lastDrain) >= e.DrainInterval {
			if e.Hooks.DrainInput() {
				e.State.Aborted = true
				return nil
			}
			lastDrain = time.Now()
		}

		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := writeAll(dst, buf[:n]); werr != nil {
				return werr
			}
			e.State.SetProgress(e.State.BytesWritten+int64(n), total)
			if e.State.Progress-lastDrawn > progressRedrawThreshold {
				e.Hooks.Draw()
				lastDrawn = e.State.Progress
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

func (e *Engine) logTransferred(name, verb string) {
	elapsed := e.State.Elapsed()
	avg := e.State.AverageBytesPerSec()
	e.Hooks.Log(model.LogInfo, fmt.Sprintf("%s %q in %s (avg %.0f B/s)", verb, name, remoteaddr.FormatDuration(elapsed), avg))
}

func writeAll(w io.Writer, buf []byte) (int, error) {
	written := 0
	for written < len(buf) {
		n, err := w.Write(buf[written:])
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
