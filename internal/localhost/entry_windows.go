//go:build windows
// +build windows

package localhost

import (
	"os"
	"path/filepath"

	"github.com/rescale-labs/gateway/internal/model"
)

func entryFromPath(path string) (model.FsEntry, bool) {
	info, err := os.Lstat(path)
	if err != nil {
		return model.FsEntry{}, false
	}
	kind := model.KindFile
	if info.IsDir() {
		kind = model.KindDirectory
	}
	entry := model.FsEntry{
		Kind:     kind,
		Name:     info.Name(),
		AbsPath:  path,
		Mtime:    info.ModTime(),
		ReadOnly: info.Mode().Perm()&0o200 == 0,
	}
	if info.Mode()&os.ModeSymlink != 0 {
		if target, err := os.Readlink(path); err == nil {
			entry.Symlink = target
		}
	}
	if kind == model.KindFile {
		entry.Size = info.Size()
		if ext := filepath.Ext(info.Name()); len(ext) > 1 {
			entry.FType = ext[1:]
		}
	}
	// POSIX fields (User, Group, Pex) are absent on Windows hosts.
	return entry, true
}

func chmod(path string, pex model.UnixPex) error {
	return model.NewError(model.UnsupportedFeature, "chmod is not supported on this host")
}
