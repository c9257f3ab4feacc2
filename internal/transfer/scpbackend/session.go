package scpbackend

import (
	"bufio"
	"fmt"
	"io"
	"path"

	"golang.org/x/crypto/ssh"

	"github.com/rescale-labs/gateway/internal/model"
)

// scpSink drives the client ("source") side of the scp(1) protocol for
// one file: it has already exchanged the header and initial ack by
// the time the engine starts writing bytes into it.
type scpSink struct {
	session *ssh.Session
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	remain  int64
}

func (s *scpSink) Write(p []byte) (int, error) {
	if int64(len(p)) > s.remain {
		p = p[:s.remain]
	}
	n, err := s.stdin.Write(p)
	s.remain -= int64(n)
	return n, err
}

// SendFile opens an ssh.Session running `scp -t <dir>` and performs
// the source-side handshake (initial ack, then the "C<perm> <size>
// <name>\n" header and its ack), per the scp protocol grounded in
// andrewchambers-sftpplease's cmd/sftpplease/scp/scp.go. The returned
// Sink streams the file body; OnSent sends the trailing zero byte and
// reads the final ack.
func (b *Backend) SendFile(remotePath string, size int64) (io.Writer, error) {
	dir, name := path.Split(remotePath)
	if dir == "" {
		dir = "."
	}

	session, err := b.client.NewSession()
	if err != nil {
		return nil, model.NewError(model.ConnectionError, err.Error())
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return nil, model.WrapIO(err)
	}
	stdoutPipe, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, model.WrapIO(err)
	}
	stdout := bufio.NewReader(stdoutPipe)

	if err := session.Start("scp -t " + shellQuote(dir)); err != nil {
		session.Close()
		return nil, model.NewError(model.ConnectionError, err.Error())
	}
	if err := readAck(stdout); err != nil {
		session.Close()
		return nil, model.NewError(model.ProtocolError, err.Error())
	}

	header := fmt.Sprintf("C0644 %d %s\n", size, name)
	if _, err := io.WriteString(stdin, header); err != nil {
		session.Close()
		return nil, model.WrapIO(err)
	}
	if err := readAck(stdout); err != nil {
		session.Close()
		return nil, model.NewError(model.ProtocolError, err.Error())
	}

	return &scpSink{session: session, stdin: stdin, stdout: stdout, remain: size}, nil
}

func (b *Backend) OnSent(sink io.Writer) error {
	s, ok := sink.(*scpSink)
	if !ok {
		return fmt.Errorf("scpbackend: unexpected sink type")
	}
	defer s.session.Close()
	if _, err := s.stdin.Write([]byte{0}); err != nil {
		return model.WrapIO(err)
	}
	if err := readAck(s.stdout); err != nil {
		return model.NewError(model.ProtocolError, err.Error())
	}
	return s.stdin.Close()
}

// scpSource drives the sink side of a download: the remote runs
// `scp -f <path>` (it is the protocol source) and this client reads
// its header, acks it, then streams exactly size bytes before sending
// the final ack.
type scpSource struct {
	session *ssh.Session
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	remain  int64
}

func (s *scpSource) Read(p []byte) (int, error) {
	if s.remain <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > s.remain {
		p = p[:s.remain]
	}
	n, err := s.stdout.Read(p)
	s.remain -= int64(n)
	return n, err
}

func (b *Backend) RecvFile(entry model.FsEntry) (io.Reader, error) {
	session, err := b.client.NewSession()
	if err != nil {
		return nil, model.NewError(model.ConnectionError, err.Error())
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return nil, model.WrapIO(err)
	}
	stdoutPipe, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, model.WrapIO(err)
	}
	stdout := bufio.NewReader(stdoutPipe)

	if err := session.Start("scp -f " + shellQuote(entry.AbsPath)); err != nil {
		session.Close()
		return nil, model.NewError(model.ConnectionError, err.Error())
	}

	// Request the transfer to start.
	if _, err := stdin.Write([]byte{0}); err != nil {
		session.Close()
		return nil, model.WrapIO(err)
	}
	line, err := stdout.ReadString('\n')
	if err != nil {
		session.Close()
		return nil, model.NewError(model.ProtocolError, err.Error())
	}
	_, size, _, err := parseHeader(line)
	if err != nil {
		session.Close()
		return nil, model.NewError(model.ProtocolError, err.Error())
	}
	if _, err := stdin.Write([]byte{0}); err != nil {
		session.Close()
		return nil, model.WrapIO(err)
	}

	return &scpSource{session: session, stdin: stdin, stdout: stdout, remain: size}, nil
}

func (b *Backend) OnRecv(source io.Reader) error {
	s, ok := source.(*scpSource)
	if !ok {
		return fmt.Errorf("scpbackend: unexpected source type")
	}
	defer s.session.Close()
	// Consume the trailing zero byte the sender appends after the body.
	if _, err := s.stdout.ReadByte(); err != nil {
		return model.WrapIO(err)
	}
	if _, err := s.stdin.Write([]byte{0}); err != nil {
		return model.WrapIO(err)
	}
	return s.stdin.Close()
}

// readAck reads one protocol ack byte: 0 is success; 1 (warning) and
// 2 (fatal) are both followed by a message line and both returned as
// an error.
func readAck(r *bufio.Reader) error {
	kind, err := r.ReadByte()
	if err != nil {
		return err
	}
	switch kind {
	case 0:
		return nil
	case 1, 2:
		line, _ := r.ReadString('\n')
		return fmt.Errorf("scp: %s", line)
	default:
		return fmt.Errorf("scp: unexpected ack byte %d", kind)
	}
}

// parseHeader parses a scp "C<perm> <size> <name>\n" control line.
func parseHeader(line string) (perm string, size int64, name string, err error) {
	if len(line) == 0 || (line[0] != 'C' && line[0] != 'D') {
		return "", 0, "", fmt.Errorf("scp: unexpected control line %q", line)
	}
	var n int
	n, err = fmt.Sscanf(line, "%s %d %s", &perm, &size, &name)
	if err != nil || n != 3 {
		return "", 0, "", fmt.Errorf("scp: malformed header %q", line)
	}
	return perm, size, name, nil
}
