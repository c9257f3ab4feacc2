// Package sftpbackend implements transfer.Backend over SFTP, grounded
// on the pkg/sftp + golang.org/x/crypto/ssh client idiom used
// throughout the example pack (DESIGN.md).
package sftpbackend

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/rescale-labs/gateway/internal/model"
)

// Backend is the SFTP transfer.Backend implementation.
type Backend struct {
	ssh  *ssh.Client
	sftp *sftp.Client
	pwd  string
}

// New constructs an unconnected Backend.
func New() *Backend {
	return &Backend{}
}

func (b *Backend) Connect(address string, port uint16, username, password *string) (string, error) {
	user := ""
	if username != nil {
		user = *username
	}
	config := &ssh.ClientConfig{
		User:            user,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         30 * time.Second,
	}
	if password != nil {
		config.Auth = append(config.Auth, ssh.Password(*password))
	}

	addr := fmt.Sprintf("%s:%d", address, port)
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return "", model.NewError(model.ConnectionError, err.Error())
	}

	sc, err := sftp.NewClient(client)
	if err != nil {
		client.Close()
		return "", model.NewError(model.ConnectionError, err.Error())
	}

	wd, err := sc.Getwd()
	if err != nil {
		wd = "/"
	}

	b.ssh = client
	b.sftp = sc
	b.pwd = wd
	return fmt.Sprintf("connected to %s (SFTP)", addr), nil
}

func (b *Backend) Disconnect() error {
	if b.sftp == nil {
		return nil
	}
	sftpErr := b.sftp.Close()
	sshErr := b.ssh.Close()
	b.sftp, b.ssh = nil, nil
	if sftpErr != nil {
		return model.WrapIO(sftpErr)
	}
	if sshErr != nil {
		return model.WrapIO(sshErr)
	}
	return nil
}

func (b *Backend) IsConnected() bool { return b.sftp != nil }

func (b *Backend) Pwd() (string, error) { return b.pwd, nil }

func (b *Backend) ChangeDir(path string) (string, error) {
	info, err := b.sftp.Stat(path)
	if err != nil {
		return "", model.NewError(model.NoSuchFileOrDirectory, path)
	}
	if !info.IsDir() {
		return "", model.NewError(model.NoSuchFileOrDirectory, path+" is not a directory")
	}
	b.pwd = path
	return b.pwd, nil
}

func (b *Backend) ListDir(path string) ([]model.FsEntry, error) {
	infos, err := b.sftp.ReadDir(path)
	if err != nil {
		return nil, model.NewError(model.DirStatFailed, err.Error())
	}
	entries := make([]model.FsEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, entryFromInfo(info, path))
	}
	return entries, nil
}

func (b *Backend) Mkdir(path string) error {
	if err := b.sftp.Mkdir(path); err != nil {
		return model.NewError(model.FileCreateDenied, err.Error())
	}
	return nil
}

func (b *Backend) Remove(entry model.FsEntry) error {
	var err error
	if entry.IsDir() {
		err = b.sftp.RemoveDirectory(entry.AbsPath)
	} else {
		err = b.sftp.Remove(entry.AbsPath)
	}
	if err != nil {
		return model.WrapIO(err)
	}
	return nil
}

func (b *Backend) Rename(entry model.FsEntry, dst string) error {
	if dst[:lastSlash(dst)+1] != entry.AbsPath[:lastSlash(entry.AbsPath)+1] {
		return model.NewError(model.ProtocolError, "cross-directory rename is not supported")
	}
	if err := b.sftp.Rename(entry.AbsPath, dst); err != nil {
		return model.WrapIO(err)
	}
	return nil
}

func (b *Backend) Stat(path string) (model.FsEntry, error) {
	info, err := b.sftp.Stat(path)
	if err != nil {
		return model.FsEntry{}, model.NewError(model.NoSuchFileOrDirectory, path)
	}
	parent := path[:lastSlash(path)+1]
	return entryFromInfo(info, parent), nil
}

func (b *Backend) SendFile(remotePath string, size int64) (io.Writer, error) {
	f, err := b.sftp.Create(remotePath)
	if err != nil {
		return nil, model.NewError(model.FileCreateDenied, err.Error())
	}
	return f, nil
}

func (b *Backend) OnSent(sink io.Writer) error {
	f, ok := sink.(*sftp.File)
	if !ok {
		return fmt.Errorf("sftpbackend: unexpected sink type")
	}
	return f.Close()
}

func (b *Backend) RecvFile(entry model.FsEntry) (io.Reader, error) {
	f, err := b.sftp.Open(entry.AbsPath)
	if err != nil {
		return nil, model.NewError(model.NoSuchFileOrDirectory, entry.AbsPath)
	}
	return f, nil
}

func (b *Backend) OnRecv(source io.Reader) error {
	f, ok := source.(*sftp.File)
	if !ok {
		return fmt.Errorf("sftpbackend: unexpected source type")
	}
	return f.Close()
}

func lastSlash(path string) int {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return i
		}
	}
	return -1
}
