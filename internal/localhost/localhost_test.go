package localhost

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsNonDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := New(file)
	assert.Error(t, err)
}

func TestListDir_SortedLexicographicallyByLowercasedName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Banana", "apple", "Cherry"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	lh, err := New(dir)
	require.NoError(t, err)

	entries, err := lh.ListDir()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "apple", entries[0].Name)
	assert.Equal(t, "Banana", entries[1].Name)
	assert.Equal(t, "Cherry", entries[2].Name)
}

func TestChangeWrkdir_RollsBackOnFailure(t *testing.T) {
	dir := t.TempDir()
	lh, err := New(dir)
	require.NoError(t, err)

	_, err = lh.ChangeWrkdir(filepath.Join(dir, "does-not-exist"))
	assert.Error(t, err)
	assert.Equal(t, dir, lh.Pwd())
}

func TestOpenFileWrite_CreatesAndTruncates(t *testing.T) {
	dir := t.TempDir()
	lh, err := New(dir)
	require.NoError(t, err)

	f, err := lh.OpenFileWrite("out.txt")
	require.NoError(t, err)
	_, err = f.WriteString("hello")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f2, err := lh.OpenFileWrite("out.txt")
	require.NoError(t, err)
	require.NoError(t, f2.Close())

	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestMkdirEx_FailsWithoutAllowExisting(t *testing.T) {
	dir := t.TempDir()
	lh, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, lh.MkdirEx("sub", false))
	assert.Error(t, lh.MkdirEx("sub", false))
	assert.NoError(t, lh.MkdirEx("sub", true))
}

func TestRename_RejectsCrossDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "other"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))

	lh, err := New(dir)
	require.NoError(t, err)

	err = lh.Rename(filepath.Join(dir, "a.txt"), filepath.Join(dir, "other", "a.txt"))
	assert.Error(t, err)

	err = lh.Rename(filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt"))
	assert.NoError(t, err)
}
