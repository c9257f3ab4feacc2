// Package remoteaddr implements the small, precisely specified parsing
// and formatting helpers spec.md calls out by name in its testable
// properties: the remote-target grammar, permission-triad formatting,
// ls-style time parsing, and centered text alignment. These are ported
// from the upstream Gateway `utils` module (see DESIGN.md) rather than
// reinvented, since the grammar's exact tokenizing order is what makes
// ambiguous inputs like "ftp://anon@host:port" parse correctly.
package remoteaddr

import (
	"fmt"
	"os/user"
	"strconv"
	"strings"

	"github.com/rescale-labs/gateway/internal/model"
)

// Parsed is the result of a successful Parse: the connection tuple
// spec.md §6 and §8 describe.
type Parsed struct {
	Address  string
	Port     uint16
	Protocol model.Protocol
	Username *string
}

// Parse implements the grammar:
//
//	[protocol://][user@]host[:port]
//	protocol ∈ {sftp, scp, ftp, ftps}
//
// Defaults: protocol = sftp; port = 22 for sftp/scp, 21 for ftp/ftps;
// user for sftp/scp defaults to the current OS user, else absent.
// Unknown protocols and non-numeric ports are errors.
func Parse(remote string) (Parsed, error) {
	protocol := model.Sftp()
	port := protocol.DefaultPort()
	var username *string

	wrkstr := remote

	// Split on "://" first: at most one occurrence is legal.
	if tokens := strings.Split(wrkstr, "://"); len(tokens) > 1 {
		if len(tokens) != 2 {
			return Parsed{}, fmt.Errorf("bad syntax")
		}
		var err error
		protocol, err = parseProtocol(tokens[0])
		if err != nil {
			return Parsed{}, err
		}
		port = protocol.DefaultPort()
		wrkstr = tokens[1]
	}

	// sftp/scp default the username to the current OS user; everything
	// else leaves it unset unless the host part overrides it below.
	if protocol.Kind == model.ProtocolSftp || protocol.Kind == model.ProtocolScp {
		if u, err := user.Current(); err == nil {
			name := u.Username
			username = &name
		}
	}

	// Split on "@": at most one occurrence is legal.
	if tokens := strings.Split(wrkstr, "@"); len(tokens) > 1 {
		if len(tokens) != 2 {
			return Parsed{}, fmt.Errorf("bad syntax")
		}
		name := tokens[0]
		username = &name
		wrkstr = tokens[1]
	}

	// Split on ":": at most one occurrence is legal.
	address := wrkstr
	if tokens := strings.Split(wrkstr, ":"); len(tokens) > 1 {
		if len(tokens) != 2 {
			return Parsed{}, fmt.Errorf("bad syntax")
		}
		address = tokens[0]
		parsed, err := strconv.ParseUint(tokens[1], 10, 16)
		if err != nil {
			return Parsed{}, fmt.Errorf("port must be a number in range [0-65535], but is %q", tokens[1])
		}
		port = uint16(parsed)
	}

	if address == "" {
		return Parsed{}, fmt.Errorf("bad syntax: missing address")
	}

	return Parsed{Address: address, Port: port, Protocol: protocol, Username: username}, nil
}

func parseProtocol(s string) (model.Protocol, error) {
	switch s {
	case "sftp":
		return model.Sftp(), nil
	case "scp":
		return model.Scp(), nil
	case "ftp":
		return model.Ftp(false), nil
	case "ftps":
		return model.Ftp(true), nil
	default:
		return model.Protocol{}, fmt.Errorf("unknown protocol %q", s)
	}
}
