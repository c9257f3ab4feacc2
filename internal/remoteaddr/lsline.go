package remoteaddr

import (
	"regexp"
	"strconv"
	"time"

	"github.com/rescale-labs/gateway/internal/model"
)

// lsLineRE mirrors the LIST-line grammar original_source's
// ftp_transfer.rs::parse_list_line uses: type, a 9-char permission
// string, link count, owner, group, size, mtime, name. The SCP
// back-end uses it because the bare scp wire protocol has no listing
// command of its own and the back-end instead execs `ls -la` over the
// session; the FTP back-end does not use it.
var lsLineRE = regexp.MustCompile(`^([\-ld])([\-rwxs]{9})\s+(\d+)\s+(\w+)\s+(\w+)\s+(\d+)\s+(\w{3}\s+\d{1,2}\s+(?:\d{1,2}:\d{1,2}|\d{4}))\s+(.+)$`)

// ParseLsLine parses one line of ls -la/FTP-LIST-style output into an
// FsEntry rooted at dir. It reports ok=false for lines the grammar
// does not recognize (header lines like "total 8", special files,
// malformed permission strings); callers skip those silently.
func ParseLsLine(line, dir string) (model.FsEntry, bool) {
	m := lsLineRE.FindStringSubmatch(line)
	if m == nil {
		return model.FsEntry{}, false
	}

	var kind model.EntryKind
	switch m[1] {
	case "-":
		kind = model.KindFile
	case "d":
		kind = model.KindDirectory
	case "l":
		kind = model.KindFile
	default:
		return model.FsEntry{}, false
	}

	perm := m[2]
	if len(perm) < 9 {
		return model.FsEntry{}, false
	}
	pex := model.UnixPex{
		Owner:  pexTriadFromString(perm[0:3]),
		Group:  pexTriadFromString(perm[3:6]),
		Others: pexTriadFromString(perm[6:9]),
	}

	size, err := strconv.ParseInt(m[6], 10, 64)
	if err != nil {
		return model.FsEntry{}, false
	}

	mtime, err := ParseLsTime(m[7], time.Now().Year())
	if err != nil {
		return model.FsEntry{}, false
	}

	name := m[8]
	entry := model.FsEntry{
		Kind:    kind,
		Name:    name,
		AbsPath: joinRemotePath(dir, name),
		Mtime:   mtime,
		Atime:   mtime,
		Crtime:  mtime,
		User:    ownerFromLsToken(m[4]),
		Group:   ownerFromLsToken(m[5]),
		Pex:     &pex,
	}
	if kind == model.KindFile {
		entry.Size = size
		if ext := lsFileExtension(name); ext != "" {
			entry.FType = ext
		}
	}
	return entry, true
}

func pexTriadFromString(triad string) uint8 {
	var n uint8
	weights := [3]uint8{4, 2, 1}
	for i, c := range triad {
		if c != '-' {
			n += weights[i]
		}
	}
	return n
}

// ownerFromLsToken resolves a numeric uid/gid token only, matching
// original_source's parse_list_line (which parses the token as u32 and
// stores None on any failure rather than falling back to the raw
// name — the owner/group name-lookup collaborator is out of scope).
func ownerFromLsToken(tok string) *model.Owner {
	id, err := strconv.ParseUint(tok, 10, 32)
	if err != nil {
		return nil
	}
	return &model.Owner{ID: uint32(id)}
}

func lsFileExtension(name string) string {
	for i := len(name) - 1; i > 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
		if name[i] == '/' {
			break
		}
	}
	return ""
}

func joinRemotePath(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	if dir[len(dir)-1] == '/' {
		return dir + name
	}
	return dir + "/" + name
}
