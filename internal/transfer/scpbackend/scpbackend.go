// Package scpbackend implements transfer.Backend over SCP: raw
// ssh.Session pipes speaking the scp(1) source/sink protocol, grounded
// on the protocol implementation in andrewchambers-sftpplease's
// cmd/sftpplease/scp (DESIGN.md) — the pack's one complete reference
// for the wire format (header lines prefixed by C/D/E/T, single-byte
// 0x00/0x01/0x02 acks).
//
// The bare scp protocol has no listing, mkdir, remove or rename
// command, so those capabilities exec a one-shot remote shell command
// over its own ssh.Session and, for listing, parse its "ls -la"
// output with remoteaddr.ParseLsLine.
package scpbackend

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/rescale-labs/gateway/internal/model"
	"github.com/rescale-labs/gateway/internal/remoteaddr"
)

// Backend is the SCP transfer.Backend implementation.
type Backend struct {
	client *ssh.Client
	pwd    string
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
	b.client = client
	b.pwd = "."
	if out, err := b.exec("pwd"); err == nil {
		if wd := strings.TrimSpace(out); wd != "" {
			b.pwd = wd
		}
	}
	return fmt.Sprintf("connected to %s (SCP)", addr), nil
}

func (b *Backend) Disconnect() error {
	if b.client == nil {
		return nil
	}
	err := b.client.Close()
	b.client = nil
	if err != nil {
		return model.WrapIO(err)
	}
	return nil
}

func (b *Backend) IsConnected() bool { return b.client != nil }

func (b *Backend) Pwd() (string, error) { return b.pwd, nil }

// exec runs one shell command over a fresh session and returns its
// combined stdout.
func (b *Backend) exec(command string) (string, error) {
	session, err := b.client.NewSession()
	if err != nil {
		return "", model.NewError(model.ConnectionError, err.Error())
	}
	defer session.Close()
	out, err := session.Output(command)
	if err != nil {
		return string(out), model.WrapIO(err)
	}
	return string(out), nil
}

func (b *Backend) ChangeDir(path string) (string, error) {
	out, err := b.exec(fmt.Sprintf("cd %s && pwd", shellQuote(path)))
	if err != nil {
		return "", model.NewError(model.NoSuchFileOrDirectory, path)
	}
	b.pwd = strings.TrimSpace(out)
	return b.pwd, nil
}

func (b *Backend) ListDir(path string) ([]model.FsEntry, error) {
	out, err := b.exec("ls -la " + shellQuote(path))
	if err != nil {
		return nil, model.NewError(model.DirStatFailed, err.Error())
	}
	entries := []model.FsEntry{}
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		entry, ok := remoteaddr.ParseLsLine(line, path)
		if !ok {
			continue
		}
		if entry.Name == "." || entry.Name == ".." {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (b *Backend) Mkdir(path string) error {
	if _, err := b.exec("mkdir " + shellQuote(path)); err != nil {
		return model.NewError(model.FileCreateDenied, err.Error())
	}
	return nil
}

func (b *Backend) Remove(entry model.FsEntry) error {
	cmd := "rm -f " + shellQuote(entry.AbsPath)
	if entry.IsDir() {
		cmd = "rm -rf " + shellQuote(entry.AbsPath)
	}
	if _, err := b.exec(cmd); err != nil {
		return model.WrapIO(err)
	}
	return nil
}

func (b *Backend) Rename(entry model.FsEntry, dst string) error {
	if parentOf(dst) != parentOf(entry.AbsPath) {
		return model.NewError(model.ProtocolError, "cross-directory rename is not supported")
	}
	if _, err := b.exec(fmt.Sprintf("mv %s %s", shellQuote(entry.AbsPath), shellQuote(dst))); err != nil {
		return model.WrapIO(err)
	}
	return nil
}

func (b *Backend) Stat(path string) (model.FsEntry, error) {
	dir := parentOf(path)
	entries, err := b.ListDir(dir)
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

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func parentOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "."
	}
	if i == 0 {
		return "/"
	}
	return path[:i]
}

func baseOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	return path[i+1:]
}
