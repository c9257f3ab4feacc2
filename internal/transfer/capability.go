// Package transfer implements the single, uniform FileTransfer
// capability set spec.md §4.1 describes, and the streaming engine
// (§4.4) that drives it. Per spec.md §9, dispatch happens through one
// Go interface (Backend) with one concrete implementation per
// protocol, selected by model.Protocol — Go's natural expression of
// "a tagged variant with a dispatch table" in place of virtual
// inheritance.
package transfer

import (
	"fmt"
	"io"

	"github.com/rescale-labs/gateway/internal/model"
	"github.com/rescale-labs/gateway/internal/transfer/ftpbackend"
	"github.com/rescale-labs/gateway/internal/transfer/scpbackend"
	"github.com/rescale-labs/gateway/internal/transfer/sftpbackend"
)

// Sink is the opaque, writable handle Backend.SendFile returns. It is
// an alias for io.Writer so each back-end package can implement
// Backend without importing this package, avoiding an import cycle
// between transfer and its protocol sub-packages.
type Sink = io.Writer

// Source is the opaque, readable handle Backend.RecvFile returns,
// finalized by OnRecv. Alias for io.Reader, for the same reason as Sink.
type Source = io.Reader

// Backend is the capability every protocol back-end satisfies.
type Backend interface {
	// Connect opens the session. The returned banner is an optional
	// server greeting.
	Connect(address string, port uint16, username, password *string) (banner string, err error)
	Disconnect() error
	IsConnected() bool

	Pwd() (string, error)
	ChangeDir(path string) (string, error)
	ListDir(path string) ([]model.FsEntry, error)
	Mkdir(path string) error
	Remove(entry model.FsEntry) error
	Rename(entry model.FsEntry, dst string) error
	Stat(path string) (model.FsEntry, error)

	SendFile(remotePath string, size int64) (Sink, error)
	RecvFile(entry model.FsEntry) (Source, error)
	OnSent(sink Sink) error
	OnRecv(source Source) error
}

// New builds the Backend for protocol. It is the single dispatch point
// every caller uses instead of constructing a concrete back-end
// directly.
func New(protocol model.Protocol) (Backend, error) {
	switch protocol.Kind {
	case model.ProtocolSftp:
		return sftpbackend.New(), nil
	case model.ProtocolScp:
		return scpbackend.New(), nil
	case model.ProtocolFtp:
		return ftpbackend.New(protocol.Secure), nil
	default:
		return nil, fmt.Errorf("unsupported protocol %v", protocol)
	}
}
