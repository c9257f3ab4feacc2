//go:build !windows
// +build !windows

package localhost

import (
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

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
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		entry.Atime = time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
		entry.Crtime = time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
		entry.User = &model.Owner{ID: stat.Uid, Name: lookupUser(stat.Uid)}
		entry.Group = &model.Owner{ID: stat.Gid, Name: lookupGroup(stat.Gid)}
		perm := uint32(info.Mode().Perm())
		entry.Pex = &model.UnixPex{
			Owner:  uint8((perm >> 6) & 0o7),
			Group:  uint8((perm >> 3) & 0o7),
			Others: uint8(perm & 0o7),
		}
	}
	return entry, true
}

// lookupUser/lookupGroup render a numeric id as its decimal string; no
// user/group name lookup is performed (that collaborator is out of
// scope per spec.md §1).
func lookupUser(uid uint32) string {
	return strconv.FormatUint(uint64(uid), 10)
}

func lookupGroup(gid uint32) string {
	return strconv.FormatUint(uint64(gid), 10)
}

func chmod(path string, pex model.UnixPex) error {
	mode := os.FileMode(pex.Owner)<<6 | os.FileMode(pex.Group)<<3 | os.FileMode(pex.Others)
	if err := os.Chmod(path, mode); err != nil {
		return model.NewError(model.PexError, err.Error())
	}
	return nil
}
