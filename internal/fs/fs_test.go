package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	fpath := filepath.Join(dir, "test.txt")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	entries, err := lfs.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	newPath := filepath.Join(dir, "renamed.txt")
	require.NoError(t, lfs.Rename(fpath, newPath))
	require.NoError(t, lfs.Remove(newPath))
	_, err = os.Stat(newPath)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule("bad", Fault{FailWrite: true})
	ffs.AddRule("nosync", Fault{FailSync: true})
	ffs.AddRule("final", Fault{FailRename: true})

	f, err := ffs.OpenFile(filepath.Join(tmp, "bad.txt"), os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrInjected)
	require.NoError(t, f.Close())

	f, err = ffs.OpenFile(filepath.Join(tmp, "nosync.txt"), os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("x"))
	require.NoError(t, err)
	assert.ErrorIs(t, f.Sync(), ErrInjected)
	require.NoError(t, f.Close())

	ok := filepath.Join(tmp, "ok.txt")
	f, err = ffs.OpenFile(ok, os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.ErrorIs(t, ffs.Rename(ok, filepath.Join(tmp, "final.txt")), ErrInjected)
	assert.Equal(t, 0, ffs.Renames())

	require.NoError(t, ffs.Rename(ok, filepath.Join(tmp, "moved.txt")))
	assert.Equal(t, 1, ffs.Renames())

	ffs.ClearRules()
	f, err = ffs.OpenFile(filepath.Join(tmp, "bad2.txt"), os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("x"))
	assert.NoError(t, err)
	require.NoError(t, f.Close())

	custom := Fault{FailOpen: true, Err: os.ErrPermission}
	ffs.AddRule("locked", custom)
	_, err = ffs.OpenFile(filepath.Join(tmp, "locked.txt"), os.O_CREATE|os.O_RDWR, 0o644)
	assert.ErrorIs(t, err, os.ErrPermission)
}
