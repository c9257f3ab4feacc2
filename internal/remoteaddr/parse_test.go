package remoteaddr

import (
	"testing"

	"github.com/rescale-labs/gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name     string
		in       string
		wantAddr string
		wantPort uint16
		wantKind model.ProtocolKind
		wantSec  bool
		wantUser string // "" means nil
	}{
		{"bare address", "172.26.104.1", "172.26.104.1", 22, model.ProtocolSftp, false, ""},
		{"user and address", "root@172.26.104.1", "172.26.104.1", 22, model.ProtocolSftp, false, "root"},
		{"user address port", "root@172.26.104.1:8022", "172.26.104.1", 8022, model.ProtocolSftp, false, "root"},
		{"port only", "172.26.104.1:4022", "172.26.104.1", 4022, model.ProtocolSftp, false, ""},
		{"ftp default port", "ftp://172.26.104.1", "172.26.104.1", 21, model.ProtocolFtp, false, ""},
		{"sftp scheme", "sftp://172.26.104.1", "172.26.104.1", 22, model.ProtocolSftp, false, ""},
		{"scp scheme", "scp://172.26.104.1", "172.26.104.1", 22, model.ProtocolScp, false, ""},
		{"ftps user", "ftps://anon@172.26.104.1", "172.26.104.1", 21, model.ProtocolFtp, true, "anon"},
		{"all together", "ftp://anon@172.26.104.1:8021", "172.26.104.1", 8021, model.ProtocolFtp, false, "anon"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.wantAddr, got.Address)
			assert.Equal(t, tc.wantPort, got.Port)
			assert.Equal(t, tc.wantKind, got.Protocol.Kind)
			assert.Equal(t, tc.wantSec, got.Protocol.Secure)
			if tc.wantUser == "" {
				// sftp/scp still default to the current OS user.
				if tc.wantKind == model.ProtocolSftp || tc.wantKind == model.ProtocolScp {
					assert.NotNil(t, got.Username)
				}
			} else {
				require.NotNil(t, got.Username)
				assert.Equal(t, tc.wantUser, *got.Username)
			}
		})
	}
}

func TestParse_FtpNeverFallsBackToCurrentUser(t *testing.T) {
	got, err := Parse("ftp://172.26.104.1")
	require.NoError(t, err)
	assert.Nil(t, got.Username)
}

func TestParse_BadSyntax(t *testing.T) {
	for _, in := range []string{
		"://172.26.104.1",
		"omar://172.26.104.1",
		"172.26.104.1:abc",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.Error(t, err)
		})
	}
}
