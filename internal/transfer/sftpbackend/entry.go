package sftpbackend

import (
	"os"
	"path"
	"strconv"
	"time"

	"github.com/pkg/sftp"

	"github.com/rescale-labs/gateway/internal/model"
)

// entryFromInfo converts an SFTP-protocol FileInfo (whose Sys() carries
// the wire-level *sftp.FileStat) into an FsEntry, recovering the POSIX
// permission triad and uid/gid the protocol actually transmits.
func entryFromInfo(info os.FileInfo, dir string) model.FsEntry {
	kind := model.KindFile
	if info.IsDir() {
		kind = model.KindDirectory
	}
	entry := model.FsEntry{
		Kind:     kind,
		Name:     info.Name(),
		AbsPath:  path.Join(dir, info.Name()),
		Mtime:    info.ModTime(),
		ReadOnly: info.Mode().Perm()&0o200 == 0,
	}
	if info.Mode()&os.ModeSymlink != 0 {
		entry.Symlink = "" // target resolution requires a follow-up ReadLink, out of scope here
	}
	if kind == model.KindFile {
		entry.Size = info.Size()
		entry.FType = fileExtension(info.Name())
	}
	if stat, ok := info.Sys().(*sftp.FileStat); ok {
		entry.Atime = time.Unix(int64(stat.Atime), 0)
		entry.User = &model.Owner{ID: stat.UID, Name: strconv.FormatUint(uint64(stat.UID), 10)}
		entry.Group = &model.Owner{ID: stat.GID, Name: strconv.FormatUint(uint64(stat.GID), 10)}
		perm := stat.Mode & 0o777
		entry.Pex = &model.UnixPex{
			Owner:  uint8((perm >> 6) & 0o7),
			Group:  uint8((perm >> 3) & 0o7),
			Others: uint8(perm & 0o7),
		}
	}
	return entry
}

func fileExtension(name string) string {
	for i := len(name) - 1; i > 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return ""
}
