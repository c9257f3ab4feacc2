// Package explorer implements FileExplorer, the per-pane browsing state
// spec.md §3 describes: a working directory, a selection index, the
// materialised listing, and a bounded stack of previously visited
// directories. FileTransferActivity owns two of these, one per side of
// the dual-pane layout (DESIGN.md).
package explorer

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rescale-labs/gateway/internal/localhost"
	"github.com/rescale-labs/gateway/internal/model"
)

// dirstackCapacity bounds the visited-directory stack per spec.md §8's
// quantified invariant "for all dirstack pushes, |dirstack| ≤ 16".
const dirstackCapacity = 16

// Source is the subset of directory operations a FileExplorer needs
// from whatever sits behind the pane. transfer.Backend already
// satisfies this directly; LocalSource adapts *localhost.Localhost,
// whose equivalent methods are named differently.
type Source interface {
	ChangeDir(path string) (string, error)
	ListDir(path string) ([]model.FsEntry, error)
}

// LocalSource adapts a *localhost.Localhost to Source so the same
// FileExplorer type drives both panes.
type LocalSource struct {
	Local *localhost.Localhost
}

func (s LocalSource) ChangeDir(path string) (string, error) { return s.Local.ChangeWrkdir(path) }
func (s LocalSource) ListDir(path string) ([]model.FsEntry, error) { return s.Local.ScanDir(path) }

// FileExplorer is one pane's browsing state: the working directory,
// the materialised (sorted) listing, the selection index, and a
// capacity-16 stack of directories visited via Enter/Ctrl+U, popped by
// Backspace (spec.md §4.3).
type FileExplorer struct {
	source   Source
	remote   bool
	wrkdir   string
	index    int
	files    []model.FsEntry
	dirstack *model.Deque[string]
}

// New builds a FileExplorer rooted at wrkdir. remote selects '/' path
// joining (as every wire protocol here uses) over the host OS's
// separator, which only applies to the local pane.
func New(source Source, wrkdir string, remote bool) *FileExplorer {
	return &FileExplorer{
		source:   source,
		remote:   remote,
		wrkdir:   wrkdir,
		dirstack: model.NewDeque[string](dirstackCapacity),
	}
}

// Wrkdir returns the pane's current directory.
func (e *FileExplorer) Wrkdir() string { return e.wrkdir }

// Files returns the current listing, sorted lexicographically by
// lowercased name per spec.md §3.
func (e *FileExplorer) Files() []model.FsEntry { return e.files }

// Index returns the currently selected row.
func (e *FileExplorer) Index() int { return e.index }

// Selected returns the entry at Index, if the listing is non-empty.
func (e *FileExplorer) Selected() (model.FsEntry, bool) {
	if e.index < 0 || e.index >= len(e.files) {
		return model.FsEntry{}, false
	}
	return e.files[e.index], true
}

// Move shifts the selection by delta (1 for Up/Down, 8 for PgUp/PgDn
// per spec.md §4.3), clamped to the listing's bounds.
func (e *FileExplorer) Move(delta int) {
	if len(e.files) == 0 {
		e.index = 0
		return
	}
	i := e.index + delta
	if i < 0 {
		i = 0
	}
	if i >= len(e.files) {
		i = len(e.files) - 1
	}
	e.index = i
}

// Refresh re-materialises files from the current wrkdir, sorting by
// lowercased name. Spec.md §3 requires this after every change_dir and
// mutating operation; callers invoke it directly after mkdir/delete/
// rename so a stale listing is never shown.
func (e *FileExplorer) Refresh() error {
	entries, err := e.source.ListDir(e.wrkdir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	e.files = entries
	if e.index >= len(e.files) {
		e.index = len(e.files) - 1
	}
	if e.index < 0 {
		e.index = 0
	}
	return nil
}

// ChangeDir pushes wrkdir onto dirstack, then cds to path and
// refreshes the listing with the selection reset to the top.
func (e *FileExplorer) ChangeDir(path string) error {
	e.dirstack.PushFront(e.wrkdir)
	newDir, err := e.source.ChangeDir(path)
	if err != nil {
		e.dirstack.PopFront()
		return err
	}
	e.wrkdir = newDir
	e.index = 0
	return e.Refresh()
}

// EnterSelected implements "Enter on directory" (spec.md line 129):
// cd into the selected entry if it is a directory; a no-op otherwise.
func (e *FileExplorer) EnterSelected() error {
	entry, ok := e.Selected()
	if !ok || !entry.IsDir() {
		return nil
	}
	return e.ChangeDir(entry.AbsPath)
}

// ToParent implements Ctrl+U: cd to the parent directory, pushing the
// current directory onto dirstack first.
func (e *FileExplorer) ToParent() error {
	return e.ChangeDir(e.parentOf(e.wrkdir))
}

// PopDir implements Backspace: pop the most recently visited directory
// off dirstack and cd there, without re-pushing the current directory.
// Reports false when the stack is empty (a no-op).
func (e *FileExplorer) PopDir() (bool, error) {
	dir, ok := e.dirstack.PopFront()
	if !ok {
		return false, nil
	}
	newDir, err := e.source.ChangeDir(dir)
	if err != nil {
		return false, err
	}
	e.wrkdir = newDir
	e.index = 0
	return true, e.Refresh()
}

func (e *FileExplorer) parentOf(dir string) string {
	if e.remote {
		return path.Dir(dir)
	}
	return filepath.Dir(dir)
}
