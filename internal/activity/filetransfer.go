package activity

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rescale-labs/gateway/internal/explorer"
	"github.com/rescale-labs/gateway/internal/localhost"
	"github.com/rescale-labs/gateway/internal/model"
	"github.com/rescale-labs/gateway/internal/remoteaddr"
	"github.com/rescale-labs/gateway/internal/transfer"
)

// editSniffLimit is the "up to 2 KiB" spec.md §4.4 reads to decide
// whether a file is text before handing it to the external editor.
const editSniffLimit = 2048

// Focus names the three keyboard targets spec.md §4.3 lists.
type Focus int

const (
	FocusLogs Focus = iota
	FocusLocal
	FocusRemote
)

// FileTransferActivity is the browse-and-transfer screen (spec.md
// §4.3): two FileExplorers, the connected back-end, the log history, a
// popup stack, and the transfer-state block the streaming engine
// shares with the Progress popup.
type FileTransferActivity struct {
	ctx    *Context
	params model.Params

	backend transfer.Backend
	engine  *transfer.Engine

	local  *explorer.FileExplorer
	remote *explorer.FileExplorer

	focus             Focus
	lastExplorerFocus Focus

	logs     *model.LogHistory
	logIndex int

	modes ModeStack
	state model.TransferStates

	quit         bool
	disconnected bool
}

// NewFileTransferActivity constructs an activity for the given
// connection params. Connection itself happens in OnCreate, where a
// failure surfaces as a Fatal popup that sends the manager back to
// Authentication (spec.md §7).
func NewFileTransferActivity(params model.Params) *FileTransferActivity {
	return &FileTransferActivity{params: params, logs: model.NewLogHistory(), focus: FocusLocal, lastExplorerFocus: FocusLocal}
}

func (a *FileTransferActivity) OnCreate(ctx *Context) {
	a.ctx = ctx

	backend, err := transfer.New(a.params.Protocol)
	if err != nil {
		a.fatalf("unsupported protocol: %v", err)
		return
	}
	a.backend = backend

	banner, err := backend.Connect(a.params.Address, a.params.Port, a.params.Username, a.params.Password)
	if err != nil {
		a.fatalf("could not connect to %s: %v", a.params.Address, err)
		return
	}

	localWrkdir := ctx.Local.Pwd()
	a.local = explorer.New(explorer.LocalSource{Local: ctx.Local}, localWrkdir, false)
	if err := a.local.Refresh(); err != nil {
		a.Log(model.LogWarn, fmt.Sprintf("could not list %q: %v", localWrkdir, err))
	}

	remoteWrkdir, err := backend.Pwd()
	if err != nil {
		a.fatalf("could not read remote working directory: %v", err)
		return
	}
	a.remote = explorer.New(backend, remoteWrkdir, true)
	if err := a.remote.Refresh(); err != nil {
		a.Log(model.LogWarn, fmt.Sprintf("could not list %q: %v", remoteWrkdir, err))
	}

	a.engine = transfer.New(backend, ctx.Local, &a.state, a)
	if banner != "" {
		a.Log(model.LogInfo, "connected: "+banner)
	} else {
		a.Log(model.LogInfo, "connected to "+a.params.Address)
	}
}

func (a *FileTransferActivity) fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.modes.Clear()
	a.modes.Push(Popup{Kind: PopupFatal, Text: msg, OnDismiss: func() { a.disconnected = true }})
}

func (a *FileTransferActivity) OnDraw() {
	if a.quit || a.disconnected {
		return
	}
	a.drainInput()
	a.draw()
}

func (a *FileTransferActivity) drainInput() {
	for {
		ev, ok := a.ctx.Term.PollEvent()
		if !ok {
			return
		}
		a.handle(ev)
	}
}

func (a *FileTransferActivity) handle(ev Event) {
	if top, ok := a.modes.Top(); ok {
		a.handlePopup(top, ev)
		return
	}
	a.handleExplorer(ev)
}

func (a *FileTransferActivity) handlePopup(top *Popup, ev Event) {
	switch top.Kind {
	case PopupInput:
		switch ev.Key {
		case KeyEnter:
			cb := top.OnSubmit
			text := top.Buffer
			a.modes.Pop()
			if cb != nil {
				cb(text)
			}
		case KeyBackspace:
			if n := len(top.Buffer); n > 0 {
				top.Buffer = top.Buffer[:n-1]
			}
		case KeyEsc:
			a.modes.Pop()
		case KeyRune:
			top.Buffer += string(ev.Rune)
		}
	case PopupYesNo:
		switch ev.Key {
		case KeyLeft, KeyRight, KeyUp, KeyDown, KeyTab:
			top.YesSelected = !top.YesSelected
		case KeyEnter:
			yes, no := top.OnYes, top.OnNo
			selected := top.YesSelected
			a.modes.Pop()
			if selected && yes != nil {
				yes()
			} else if !selected && no != nil {
				no()
			}
		case KeyEsc:
			no := top.OnNo
			a.modes.Pop()
			if no != nil {
				no()
			}
		}
	default: // Alert, Fatal, FileInfo, Help, Progress, Wait
		if ev.Key == KeyEnter || ev.Key == KeyEsc {
			cb := top.OnDismiss
			fatal := top.Kind == PopupFatal
			a.modes.Pop()
			if cb != nil {
				cb()
			} else if fatal {
				a.quit = true
			}
		}
	}
}

func (a *FileTransferActivity) handleExplorer(ev Event) {
	switch ev.Key {
	case KeyEsc:
		a.confirmYesNo("Disconnect?", func() { a.disconnected = true }, nil)
	case KeyCtrlQ:
		a.confirmYesNo("Quit?", func() { a.quit = true }, nil)
	case KeyTab:
		if a.focus == FocusLogs {
			a.focus = a.lastExplorerFocus
		} else {
			a.lastExplorerFocus = a.focus
			a.focus = FocusLogs
		}
	case KeyLeft, KeyRight:
		if a.focus != FocusLogs {
			if a.focus == FocusLocal {
				a.focus = FocusRemote
			} else {
				a.focus = FocusLocal
			}
			a.lastExplorerFocus = a.focus
		}
	case KeyUp:
		a.move(-1)
	case KeyDown:
		a.move(1)
	case KeyPgUp:
		a.move(-8)
	case KeyPgDn:
		a.move(8)
	case KeyBackspace:
		if pane := a.focusedExplorer(); pane != nil {
			if _, err := pane.PopDir(); err != nil {
				a.Log(model.LogWarn, fmt.Sprintf("could not change directory: %v", err))
			}
		}
	case KeyCtrlU:
		if pane := a.focusedExplorer(); pane != nil {
			if err := pane.ToParent(); err != nil {
				a.Log(model.LogWarn, fmt.Sprintf("could not change directory: %v", err))
			}
		}
	case KeyEnter:
		a.activateSelected()
	case KeySpace:
		a.transferSelected()
	case KeyDelete:
		a.confirmDelete()
	case KeyCtrlD:
		a.promptMkdir()
	case KeyCtrlG:
		a.promptGoto()
	case KeyCtrlR:
		a.promptRename()
	case KeyCtrlH:
		a.modes.Push(Popup{Kind: PopupHelp, Text: helpText, OnDismiss: func() {}})
	}
}

func (a *FileTransferActivity) move(delta int) {
	if a.focus == FocusLogs {
		a.logIndex += delta
		if a.logIndex < 0 {
			a.logIndex = 0
		}
		if max := a.logs.Len() - 1; a.logIndex > max {
			a.logIndex = max
		}
		if a.logIndex < 0 {
			a.logIndex = 0
		}
		return
	}
	if pane := a.focusedExplorer(); pane != nil {
		pane.Move(delta)
	}
}

func (a *FileTransferActivity) focusedExplorer() *explorer.FileExplorer {
	switch a.focus {
	case FocusLocal:
		return a.local
	case FocusRemote:
		return a.remote
	default:
		return nil
	}
}

// activateSelected implements "Enter on directory" (cd into it) and,
// for a file, the edit-file bypass spec.md §4.4 describes as an
// Explorer-invoked extension point.
func (a *FileTransferActivity) activateSelected() {
	pane := a.focusedExplorer()
	if pane == nil {
		return
	}
	entry, ok := pane.Selected()
	if !ok {
		return
	}
	if entry.IsDir() {
		if err := pane.EnterSelected(); err != nil {
			a.Log(model.LogWarn, fmt.Sprintf("could not open %q: %v", entry.Name, err))
		}
		return
	}
	if a.focus == FocusRemote {
		a.editRemote(entry)
		return
	}
	a.editLocal(entry)
}

// editLocal implements the local half of the file-edit bypass: sniff,
// then suspend the UI around a blocking editor invocation.
func (a *FileTransferActivity) editLocal(entry model.FsEntry) {
	f, err := a.ctx.Local.OpenFileRead(entry.AbsPath)
	if err != nil {
		a.Log(model.LogWarn, fmt.Sprintf("could not open %q: %v", entry.Name, err))
		return
	}
	head, err := readSniff(f)
	f.Close()
	if err != nil {
		a.Log(model.LogWarn, fmt.Sprintf("could not read %q: %v", entry.Name, err))
		return
	}
	if looksBinary(head) {
		a.Log(model.LogWarn, fmt.Sprintf("%q looks like a binary file, not editing", entry.Name))
		return
	}
	a.runEditor(entry.AbsPath, entry.Name)
}

// editRemote implements the remote half: download to a temporary path,
// edit locally, then upload the result back over the same send path,
// per spec.md §4.4's "file edits on the remote pane require first
// downloading to a temporary path... then uploading back".
func (a *FileTransferActivity) editRemote(entry model.FsEntry) {
	source, err := a.backend.RecvFile(entry)
	if err != nil {
		a.Log(model.LogWarn, fmt.Sprintf("could not open remote file %q: %v", entry.Name, err))
		return
	}
	tmp, err := os.CreateTemp("", "gateway-edit-*-"+entry.Name)
	if err != nil {
		a.Log(model.LogWarn, fmt.Sprintf("could not create temporary file: %v", err))
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, copyErr := localhost.CopyFile(tmp, source)
	tmp.Close()
	if err := a.backend.OnRecv(source); err != nil {
		a.Log(model.LogWarn, fmt.Sprintf("could not finalize download of %q: %v", entry.Name, err))
	}
	if copyErr != nil {
		a.Log(model.LogWarn, fmt.Sprintf("could not download %q: %v", entry.Name, copyErr))
		return
	}

	head, err := os.ReadFile(tmpPath)
	if err != nil {
		a.Log(model.LogWarn, fmt.Sprintf("could not read %q: %v", entry.Name, err))
		return
	}
	if limit := len(head); limit > editSniffLimit {
		head = head[:editSniffLimit]
	}
	if looksBinary(head) {
		a.Log(model.LogWarn, fmt.Sprintf("%q looks like a binary file, not editing", entry.Name))
		return
	}

	if !a.runEditor(tmpPath, entry.Name) {
		return
	}

	edited, err := os.Open(tmpPath)
	if err != nil {
		a.Log(model.LogWarn, fmt.Sprintf("could not reopen %q after editing: %v", entry.Name, err))
		return
	}
	defer edited.Close()
	info, err := edited.Stat()
	if err != nil {
		a.Log(model.LogWarn, fmt.Sprintf("could not stat %q after editing: %v", entry.Name, err))
		return
	}
	sink, err := a.backend.SendFile(entry.AbsPath, info.Size())
	if err != nil {
		a.Log(model.LogWarn, fmt.Sprintf("could not reopen remote %q for writing: %v", entry.Name, err))
		return
	}
	if _, err := io.Copy(sink, edited); err != nil {
		a.Log(model.LogWarn, fmt.Sprintf("could not upload edited %q: %v", entry.Name, err))
	}
	if err := a.backend.OnSent(sink); err != nil {
		a.Log(model.LogWarn, fmt.Sprintf("could not finalize upload of edited %q: %v", entry.Name, err))
	}
}

// runEditor suspends raw mode and the alternate screen, blocks on the
// external editor, then restores both, per spec.md §4.4 and §5's
// suspension-point note. Reports whether the editor exited cleanly.
func (a *FileTransferActivity) runEditor(path, label string) bool {
	if a.ctx.Editor == nil {
		a.Log(model.LogWarn, "no editor configured for this session")
		return false
	}
	_ = a.ctx.Term.LeaveAltScreen()
	_ = a.ctx.Term.DisableRawMode()
	err := a.ctx.Editor.Open(path)
	_ = a.ctx.Term.EnableRawMode()
	_ = a.ctx.Term.EnterAltScreen()
	if err != nil {
		a.Log(model.LogWarn, fmt.Sprintf("editor exited with an error for %q: %v", label, err))
		return false
	}
	a.Log(model.LogInfo, fmt.Sprintf("finished editing %q", label))
	return true
}

// readSniff reads up to editSniffLimit bytes from r.
func readSniff(r io.Reader) ([]byte, error) {
	buf := make([]byte, editSniffLimit)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

// looksBinary applies the usual NUL-byte sniff: any NUL in the first
// chunk means this is not a text file worth editing in place.
func looksBinary(head []byte) bool {
	return bytes.IndexByte(head, 0) != -1
}

func (a *FileTransferActivity) transferSelected() {
	var src, dst *explorer.FileExplorer
	var upload bool
	switch a.focus {
	case FocusLocal:
		src, dst, upload = a.local, a.remote, true
	case FocusRemote:
		src, dst, upload = a.remote, a.local, false
	default:
		return
	}
	entry, ok := src.Selected()
	if !ok {
		return
	}
	if upload {
		a.engine.Send(entry, dst.Wrkdir(), nil)
	} else {
		a.engine.Recv(entry, dst.Wrkdir(), nil)
	}
	if err := dst.Refresh(); err != nil {
		a.Log(model.LogWarn, fmt.Sprintf("could not refresh listing: %v", err))
	}
}

func (a *FileTransferActivity) confirmDelete() {
	pane := a.focusedExplorer()
	if pane == nil {
		return
	}
	entry, ok := pane.Selected()
	if !ok {
		return
	}
	a.confirmYesNo(fmt.Sprintf("Delete %q?", entry.Name), func() {
		if err := a.removeFrom(pane, entry); err != nil {
			a.LogAlert(model.LogError, fmt.Sprintf("could not delete %q: %v", entry.Name, err))
			return
		}
		if err := pane.Refresh(); err != nil {
			a.Log(model.LogWarn, fmt.Sprintf("could not refresh listing: %v", err))
		}
	}, nil)
}

func (a *FileTransferActivity) removeFrom(pane *explorer.FileExplorer, entry model.FsEntry) error {
	if pane == a.local {
		return a.ctx.Local.Remove(entry.AbsPath)
	}
	return a.backend.Remove(entry)
}

func (a *FileTransferActivity) promptMkdir() {
	pane := a.focusedExplorer()
	if pane == nil {
		return
	}
	a.modes.Push(Popup{Kind: PopupInput, Prompt: "New directory name:", OnSubmit: func(name string) {
		if name == "" {
			return
		}
		if err := a.mkdirIn(pane, name); err != nil {
			a.LogAlert(model.LogError, fmt.Sprintf("could not create directory %q: %v", name, err))
			return
		}
		if err := pane.Refresh(); err != nil {
			a.Log(model.LogWarn, fmt.Sprintf("could not refresh listing: %v", err))
		}
	}})
}

func (a *FileTransferActivity) mkdirIn(pane *explorer.FileExplorer, name string) error {
	path := joinUnder(pane, name)
	if pane == a.local {
		return a.ctx.Local.MkdirEx(path, false)
	}
	return a.backend.Mkdir(path)
}

func (a *FileTransferActivity) promptGoto() {
	pane := a.focusedExplorer()
	if pane == nil {
		return
	}
	a.modes.Push(Popup{Kind: PopupInput, Prompt: "Go to absolute path:", OnSubmit: func(path string) {
		if path == "" {
			return
		}
		if err := pane.ChangeDir(path); err != nil {
			a.LogAlert(model.LogError, fmt.Sprintf("could not change directory to %q: %v", path, err))
		}
	}})
}

func (a *FileTransferActivity) promptRename() {
	pane := a.focusedExplorer()
	if pane == nil {
		return
	}
	entry, ok := pane.Selected()
	if !ok {
		return
	}
	a.modes.Push(Popup{Kind: PopupInput, Prompt: fmt.Sprintf("Rename %q to:", entry.Name), OnSubmit: func(name string) {
		if name == "" {
			return
		}
		dst := joinUnder(pane, name)
		var err error
		if pane == a.local {
			err = a.ctx.Local.Rename(entry.AbsPath, dst)
		} else {
			err = a.backend.Rename(entry, dst)
		}
		if err != nil {
			a.LogAlert(model.LogError, fmt.Sprintf("could not rename %q: %v", entry.Name, err))
			return
		}
		if err := pane.Refresh(); err != nil {
			a.Log(model.LogWarn, fmt.Sprintf("could not refresh listing: %v", err))
		}
	}})
}

// joinUnder appends name to pane's working directory with a '/'
// separator, for the local and the remote pane alike; no host-specific
// separator is used.
func joinUnder(pane *explorer.FileExplorer, name string) string {
	if pane == nil {
		return name
	}
	wrkdir := pane.Wrkdir()
	if pane.Wrkdir() == "" {
		return name
	}
	if strings.HasSuffix(wrkdir, "/") {
		return wrkdir + name
	}
	return wrkdir + "/" + name
}

func (a *FileTransferActivity) confirmYesNo(prompt string, onYes, onNo func()) {
	a.modes.Push(Popup{Kind: PopupYesNo, Prompt: prompt, OnYes: onYes, OnNo: onNo})
}

func (a *FileTransferActivity) draw() {
	a.ctx.Term.Draw(func() {
		width, height := a.ctx.Term.Size()
		half := width / 2
		topHeight := height * 3 / 4

		a.drawExplorer(0, 0, half, topHeight, "local", a.local, a.focus == FocusLocal)
		a.drawExplorer(half, 0, width-half, topHeight, a.params.Address, a.remote, a.focus == FocusRemote)
		a.drawLogs(0, topHeight, width, height-topHeight)

		if top, ok := a.modes.Top(); ok {
			a.drawPopup(top, width, height)
		}
	})
}

func (a *FileTransferActivity) drawExplorer(x, y, w, h int, host string, pane *explorer.FileExplorer, focused bool) {
	if pane == nil {
		return
	}
	title := host + ":" + remoteaddr.OmitWrkdirPath(pane.Wrkdir(), host, w)
	style := Style{}
	if focused {
		style.Bold = true
	}
	a.ctx.Term.DrawText(x, y, style, title)
	for i, entry := range pane.Files() {
		row := y + 1 + i
		if row >= y+h {
			break
		}
		rowStyle := Style{}
		if focused && i == pane.Index() {
			rowStyle.Bold = true
		}
		label := entry.Name
		if entry.IsDir() {
			label += "/"
		}
		a.ctx.Term.DrawText(x, row, rowStyle, label)
	}
}

func (a *FileTransferActivity) drawLogs(x, y, w, h int) {
	records := a.logs.Records()
	for i := 0; i < h && i < len(records); i++ {
		r := records[i]
		style := Style{}
		switch r.Level {
		case model.LogError:
			style.Fg = ColorRed
		case model.LogWarn:
			style.Fg = ColorYellow
		}
		if a.focus == FocusLogs && i == a.logIndex {
			style.Bold = true
		}
		prefix := fmt.Sprintf("%s [%s]: ", r.Time.Format("2006-01-02T15:04:05"), r.Level)
		line := prefix + r.Msg
		if maxWidth := w - 35; maxWidth > 0 && len(line) > maxWidth {
			line = line[:maxWidth]
		}
		a.ctx.Term.DrawText(x, y+i, style, line)
	}
}

func (a *FileTransferActivity) drawPopup(p *Popup, width, height int) {
	w, h := popupSize(p.Kind, width, height)
	x := (width - w) / 2
	y := (height - h) / 2
	body := p.Text
	if p.Kind == PopupInput {
		body = p.Prompt + " " + p.Buffer
	}
	if p.Kind == PopupYesNo {
		choice := "[Yes] No"
		if !p.YesSelected {
			choice = "Yes [No]"
		}
		body = p.Prompt + "  " + choice
	}
	if p.Kind == PopupHelp {
		body = helpText
	}
	style := Style{Bold: true}
	if p.Kind == PopupAlert || p.Kind == PopupFatal {
		style.Fg = p.Color
	}
	a.ctx.Term.DrawText(x, y, style, remoteaddr.AlignTextCenter(body, w))
}

func popupSize(kind PopupKind, width, height int) (int, int) {
	switch kind {
	case PopupHelp:
		return width / 2, height * 7 / 10
	case PopupInput:
		return width * 3 / 10, height / 10
	case PopupProgress:
		return width * 4 / 10, height / 10
	default:
		return width / 2, height / 10
	}
}

const helpText = `Esc        disconnect
Backspace  back to previous directory
Up/Down    move selection
PgUp/PgDn  move selection by a page
Enter      open directory
Space      transfer selected entry
Del        delete selected entry
Ctrl+D     make directory
Ctrl+G     go to path
Ctrl+H     this help
Ctrl+Q     quit
Ctrl+R     rename
Ctrl+U     go to parent directory
Tab        toggle logs/explorer focus
Left/Right switch local/remote pane`

// Hooks implementation (transfer.Hooks), bridging the streaming engine
// to this activity's popup stack and log history without the engine
// importing internal/activity.

func (a *FileTransferActivity) SetWait(message string) {
	a.modes.Clear()
	a.modes.Push(Popup{Kind: PopupWait, Text: message})
}

func (a *FileTransferActivity) SetProgress(message string) {
	a.modes.Clear()
	a.modes.Push(Popup{Kind: PopupProgress, Text: message})
}

func (a *FileTransferActivity) Draw() { a.draw() }

// DrainInput is called from inside the engine's tight copy loop, at
// the 500ms cadence spec.md §4.4/§9 specify. It discards all pending
// events except the cancel keys (Esc, Ctrl+Q), which is how the user
// aborts a transfer in progress.
func (a *FileTransferActivity) DrainInput() bool {
	aborted := false
	for {
		ev, ok := a.ctx.Term.PollEvent()
		if !ok {
			return aborted
		}
		if ev.Key == KeyEsc || ev.Key == KeyCtrlQ {
			aborted = true
		}
	}
}

func (a *FileTransferActivity) Log(level model.LogLevel, msg string) { a.logs.Push(level, msg) }

func (a *FileTransferActivity) LogAlert(level model.LogLevel, msg string) {
	a.logs.Push(level, msg)
	a.modes.Clear()
	a.modes.Push(Popup{Kind: PopupAlert, Text: msg, Color: AlertColorForLevel(level)})
}

func (a *FileTransferActivity) RestoreExplorer() { a.modes.Clear() }

func (a *FileTransferActivity) OnDestroy() *Context {
	if a.backend != nil && a.backend.IsConnected() {
		if err := a.backend.Disconnect(); err != nil {
			a.Log(model.LogWarn, fmt.Sprintf("disconnect: %v", err))
		}
	}
	ctx := a.ctx
	a.ctx = nil
	return ctx
}

func (a *FileTransferActivity) Quit() bool         { return a.quit }
func (a *FileTransferActivity) Disconnected() bool { return a.disconnected }
