// Package localhost implements the Localhost interface spec.md §6
// names: a scoped handle to the working directory on the local
// machine, adapted from the teacher's internal/localfs package
// (DESIGN.md). The directory-scanner contract is specified, not its
// implementation — accordingly this package leans on the standard
// library exactly as the teacher's localfs package does.
package localhost

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rescale-labs/gateway/internal/model"
)

// Localhost is a scoped handle to a directory tree on the local
// machine. It exists for the lifetime of a connected session.
type Localhost struct {
	wrkdir string
}

// New scopes a Localhost to root, which must exist and be a directory.
func New(root string) (*Localhost, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, model.WrapIO(err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, model.WrapIO(err)
	}
	if !info.IsDir() {
		return nil, model.NewError(model.NoSuchFileOrDirectory, abs+" is not a directory")
	}
	return &Localhost{wrkdir: abs}, nil
}

// Pwd returns the current working directory.
func (l *Localhost) Pwd() string { return l.wrkdir }

// ChangeWrkdir moves the scoped working directory to path, rolling
// back to the previous directory if path cannot be entered.
func (l *Localhost) ChangeWrkdir(path string) (string, error) {
	target := l.resolve(path)
	info, err := os.Stat(target)
	if err != nil {
		return l.wrkdir, model.NewError(model.NoSuchFileOrDirectory, target)
	}
	if !info.IsDir() {
		return l.wrkdir, model.NewError(model.NoSuchFileOrDirectory, target+" is not a directory")
	}
	previous := l.wrkdir
	l.wrkdir = target
	// Verify the new directory is actually readable; roll back if not.
	if _, err := os.ReadDir(target); err != nil {
		l.wrkdir = previous
		return previous, model.WrapIO(err)
	}
	return l.wrkdir, nil
}

// ListDir lists the current working directory.
func (l *Localhost) ListDir() ([]model.FsEntry, error) {
	return l.ScanDir(l.wrkdir)
}

// ScanDir lists an arbitrary directory without changing wrkdir.
func (l *Localhost) ScanDir(path string) ([]model.FsEntry, error) {
	target := l.resolve(path)
	dirents, err := os.ReadDir(target)
	if err != nil {
		return nil, model.NewError(model.DirStatFailed, err.Error())
	}
	entries := make([]model.FsEntry, 0, len(dirents))
	for _, d := range dirents {
		entryPath := filepath.Join(target, d.Name())
		entry, ok := entryFromPath(entryPath)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries, nil
}

// OpenFileRead opens path for reading.
func (l *Localhost) OpenFileRead(path string) (*os.File, error) {
	f, err := os.Open(l.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.NewError(model.NoSuchFileOrDirectory, path)
		}
		return nil, model.WrapIO(err)
	}
	return f, nil
}

// OpenFileWrite opens path for writing, creating and truncating it.
// It distinguishes a read-only target from one that is simply not
// accessible.
func (l *Localhost) OpenFileWrite(path string) (*os.File, error) {
	target := l.resolve(path)
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		if os.IsPermission(err) {
			if info, statErr := os.Stat(target); statErr == nil && info.Mode().Perm()&0o200 == 0 {
				return nil, model.NewError(model.ReadonlyFile, path)
			}
			return nil, model.NewError(model.FileCreateDenied, path)
		}
		return nil, model.WrapIO(err)
	}
	return f, nil
}

// MkdirEx creates dir, optionally tolerating that it already exists.
func (l *Localhost) MkdirEx(dir string, allowExisting bool) error {
	target := l.resolve(dir)
	if err := os.Mkdir(target, 0o755); err != nil {
		if os.IsExist(err) && allowExisting {
			return nil
		}
		return model.NewError(model.FileCreateDenied, err.Error())
	}
	return nil
}

// Chmod applies a POSIX permission triad. On non-POSIX hosts this is a
// no-op wrapped as UnsupportedFeature, matching spec.md's note that
// POSIX fields are absent elsewhere.
func (l *Localhost) Chmod(path string, pex model.UnixPex) error {
	return chmod(l.resolve(path), pex)
}

// Remove deletes path, recursing into directories first.
func (l *Localhost) Remove(path string) error {
	target := l.resolve(path)
	if err := os.RemoveAll(target); err != nil {
		return model.WrapIO(err)
	}
	return nil
}

// Rename renames src to dst, rejecting any destination whose parent
// differs from the source's parent (DESIGN.md's Open Question
// decision on cross-directory rename).
func (l *Localhost) Rename(src, dst string) error {
	srcAbs := l.resolve(src)
	dstAbs := l.resolve(dst)
	if filepath.Dir(srcAbs) != filepath.Dir(dstAbs) {
		return model.NewError(model.ProtocolError, "cross-directory rename is not supported")
	}
	if err := os.Rename(srcAbs, dstAbs); err != nil {
		return model.WrapIO(err)
	}
	return nil
}

// Stat returns metadata for a single path.
func (l *Localhost) Stat(path string) (model.FsEntry, error) {
	entry, ok := entryFromPath(l.resolve(path))
	if !ok {
		return model.FsEntry{}, model.NewError(model.DirStatFailed, path)
	}
	return entry, nil
}

func (l *Localhost) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.wrkdir, path)
}

// CopyFile copies src into dst with a plain io.Copy (no progress
// reporting), so the edit-file bypass (spec.md §4.4) can stage a
// temporary local copy without depending on internal/transfer.
func CopyFile(dst io.Writer, src io.Reader) (int64, error) {
	n, err := io.Copy(dst, src)
	if err != nil {
		return n, fmt.Errorf("copy: %w", err)
	}
	return n, nil
}
