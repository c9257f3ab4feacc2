// Package ftpbackend implements transfer.Backend over FTP and FTPS,
// grounded on rclone's backend/ftp (DESIGN.md) for connection and
// directory-operation idiom, and on the jlaffaye/ftp client used
// throughout the example pack. Directory listings come from
// jlaffaye/ftp's own parsed Entry values; the raw LIST lines are not
// parsed here, so FTP entries carry no POSIX permission triad and no
// owner or group.
package ftpbackend

import (
	"crypto/tls"
	"fmt"
	"io"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/rescale-labs/gateway/internal/model"
)

// Backend is the FTP/FTPS transfer.Backend implementation.
type Backend struct {
	secure bool
	conn   *ftp.ServerConn
}

// New constructs an unconnected Backend. secure selects explicit FTPS.
func New(secure bool) *Backend {
	return &Backend{secure: secure}
}

func (b *Backend) Connect(address string, port uint16, username, password *string) (string, error) {
	addr := fmt.Sprintf("%s:%d", address, port)
	opts := []ftp.DialOption{ftp.DialWithTimeout(30 * time.Second)}
	if b.secure {
		opts = append(opts, ftp.DialWithExplicitTLS(&tls.Config{InsecureSkipVerify: false}))
	}
	conn, err := ftp.Dial(addr, opts...)
	if err != nil {
		return "", model.NewError(model.ConnectionError, err.Error())
	}
	user, pass := "anonymous", "anonymous@"
	if username != nil {
		user = *username
	}
	if password != nil {
		pass = *password
	}
	if err := conn.Login(user, pass); err != nil {
		return "", model.NewError(model.AuthenticationFailed, err.Error())
	}
	b.conn = conn
	return "connected to " + addr, nil
}

func (b *Backend) Disconnect() error {
	if b.conn == nil {
		return nil
	}
	err := b.conn.Quit()
	b.conn = nil
	if err != nil {
		return model.WrapIO(err)
	}
	return nil
}

func (b *Backend) IsConnected() bool { return b.conn != nil }

func (b *Backend) Pwd() (string, error) {
	dir, err := b.conn.CurrentDir()
	if err != nil {
		return "", model.WrapIO(err)
	}
	return dir, nil
}

func (b *Backend) ChangeDir(path string) (string, error) {
	if err := b.conn.ChangeDir(path); err != nil {
		return "", model.NewError(model.NoSuchFileOrDirectory, path)
	}
	return b.Pwd()
}

func (b *Backend) ListDir(path string) ([]model.FsEntry, error) {
	raw, err := b.conn.List(path)
	if err != nil {
		return nil, model.NewError(model.DirStatFailed, err.Error())
	}
	entries := make([]model.FsEntry, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, entryFromFtp(e, path))
	}
	return entries, nil
}

// entryFromFtp converts jlaffaye/ftp's parsed directory entry into an
// FsEntry. jlaffaye's Entry carries name, size, kind and mtime but no
// POSIX permission triad — most FTP servers' LIST output varies too
// much across implementations for the client library to guarantee
// one — so Pex/User/Group are always nil here.
func entryFromFtp(e *ftp.Entry, dir string) model.FsEntry {
	kind := model.KindFile
	if e.Type == ftp.EntryTypeFolder {
		kind = model.KindDirectory
	}
	entry := model.FsEntry{
		Kind:    kind,
		Name:    e.Name,
		AbsPath: remoteJoin(dir, e.Name),
		Mtime:   e.Time,
		Atime:   e.Time,
		Crtime:  e.Time,
	}
	if e.Type == ftp.EntryTypeLink {
		entry.Symlink = e.Target
	}
	if kind == model.KindFile {
		entry.Size = int64(e.Size)
	}
	return entry
}

func remoteJoin(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	if dir[len(dir)-1] == '/' {
		return dir + name
	}
	return dir + "/" + name
}

func (b *Backend) Mkdir(path string) error {
	if err := b.conn.MakeDir(path); err != nil {
		return model.NewError(model.FileCreateDenied, err.Error())
	}
	return nil
}

func (b *Backend) Remove(entry model.FsEntry) error {
	var err error
	if entry.IsDir() {
		err = b.conn.RemoveDir(entry.AbsPath)
	} else {
		err = b.conn.Delete(entry.AbsPath)
	}
	if err != nil {
		return model.WrapIO(err)
	}
	return nil
}

func (b *Backend) Rename(entry model.FsEntry, dst string) error {
	if parentOf(dst) != parentOf(entry.AbsPath) {
		return model.NewError(model.ProtocolError, "cross-directory rename is not supported")
	}
	if err := b.conn.Rename(entry.AbsPath, dst); err != nil {
		return model.WrapIO(err)
	}
	return nil
}

func (b *Backend) Stat(path string) (model.FsEntry, error) {
	entries, err := b.ListDir(parentOf(path))
	if err != nil {
		return model.FsEntry{}, err
	}
	base := baseOf(path)
	for _, e := range entries {
		if e.Name == base {
			return e, nil
		}
	}
	return model.FsEntry{}, model.NewError(model.NoSuchFileOrDirectory, path)
}

// pipeSink uploads through an io.Pipe since jlaffaye/ftp's Stor blocks
// on its reader reaching EOF rather than exposing an incremental
// writer.
type pipeSink struct {
	w    *io.PipeWriter
	done chan error
}

func (s *pipeSink) Write(p []byte) (int, error) { return s.w.Write(p) }

func (b *Backend) SendFile(remotePath string, size int64) (io.Writer, error) {
	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- b.conn.Stor(remotePath, pr)
	}()
	return &pipeSink{w: pw, done: done}, nil
}

func (b *Backend) OnSent(sink io.Writer) error {
	s, ok := sink.(*pipeSink)
	if !ok {
		return fmt.Errorf("ftpbackend: unexpected sink type")
	}
	if err := s.w.Close(); err != nil {
		return model.WrapIO(err)
	}
	if err := <-s.done; err != nil {
		return model.WrapIO(err)
	}
	return nil
}

type readCloserSource struct {
	rc *ftp.Response
}

func (s *readCloserSource) Read(p []byte) (int, error) { return s.rc.Read(p) }

func (b *Backend) RecvFile(entry model.FsEntry) (io.Reader, error) {
	resp, err := b.conn.Retr(entry.AbsPath)
	if err != nil {
		return nil, model.NewError(model.NoSuchFileOrDirectory, entry.AbsPath)
	}
	return &readCloserSource{rc: resp}, nil
}

func (b *Backend) OnRecv(source io.Reader) error {
	s, ok := source.(*readCloserSource)
	if !ok {
		return fmt.Errorf("ftpbackend: unexpected source type")
	}
	return s.rc.Close()
}

func parentOf(path string) string {
	i := lastSlash(path)
	if i < 0 {
		return "."
	}
	if i == 0 {
		return "/"
	}
	return path[:i]
}

func baseOf(path string) string {
	i := lastSlash(path)
	return path[i+1:]
}

func lastSlash(path string) int {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return i
		}
	}
	return -1
}
