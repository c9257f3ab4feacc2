package remoteaddr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLsLine_SimpleFile(t *testing.T) {
	entry, ok := ParseLsLine("-rw-rw-r-- 1 root  dialout  8192 Nov 5 2018 omar.txt", "/tmp")
	require.True(t, ok)
	assert.Equal(t, "/tmp/omar.txt", entry.AbsPath)
	assert.Equal(t, "omar.txt", entry.Name)
	assert.EqualValues(t, 8192, entry.Size)
	require.NotNil(t, entry.Pex)
	assert.Equal(t, uint8(6), entry.Pex.Owner)
	assert.Equal(t, uint8(6), entry.Pex.Group)
	assert.Equal(t, uint8(4), entry.Pex.Others)
	assert.Equal(t, time.Date(2018, time.November, 5, 0, 0, 0, 0, time.UTC), entry.Mtime)
	assert.Equal(t, entry.Mtime, entry.Atime)
	assert.Equal(t, entry.Mtime, entry.Crtime)
	assert.Nil(t, entry.User, "non-numeric owner token must not synthesize an Owner")
	assert.Nil(t, entry.Group, "non-numeric group token must not synthesize an Owner")
}

func TestParseLsLine_NumericOwnerAndGroup(t *testing.T) {
	entry, ok := ParseLsLine("-rwxr-xr-x 1 0  9  4096 Nov 5 16:32 omar.txt", "/tmp")
	require.True(t, ok)
	assert.EqualValues(t, 4096, entry.Size)
	require.NotNil(t, entry.User)
	assert.EqualValues(t, 0, entry.User.ID)
	require.NotNil(t, entry.Group)
	assert.EqualValues(t, 9, entry.Group.ID)
	require.NotNil(t, entry.Pex)
	assert.Equal(t, uint8(7), entry.Pex.Owner)
	assert.Equal(t, uint8(5), entry.Pex.Group)
	assert.Equal(t, uint8(5), entry.Pex.Others)
}

func TestParseLsLine_Directory(t *testing.T) {
	entry, ok := ParseLsLine("drwxrwxr-x 1 0  9  4096 Nov 5 2018 docs", "/tmp")
	require.True(t, ok)
	assert.Equal(t, "/tmp/docs", entry.AbsPath)
	assert.Equal(t, "docs", entry.Name)
	assert.True(t, entry.IsDir())
	require.NotNil(t, entry.Pex)
	assert.Equal(t, uint8(7), entry.Pex.Owner)
	assert.Equal(t, uint8(7), entry.Pex.Group)
	assert.Equal(t, uint8(5), entry.Pex.Others)
}

func TestParseLsLine_MalformedLineIsSkipped(t *testing.T) {
	_, ok := ParseLsLine("total 8", "/tmp")
	assert.False(t, ok)

	_, ok = ParseLsLine("crwxr-xr-x 1 0 9 4096 Nov 5 2018 dev", "/tmp")
	assert.False(t, ok)
}
