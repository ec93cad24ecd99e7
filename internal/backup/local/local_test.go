package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/homeclean/internal/backup"
)

func TestDirSaveAndOpen(t *testing.T) {
	dir, err := NewDir(filepath.Join(t.TempDir(), "backups"))
	require.NoError(t, err)
	ctx := context.Background()

	key, err := dir.Save(ctx, "snap.json", strings.NewReader(`{"areaTypes":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "snap.json", key)

	rc, err := dir.Open(ctx, key)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"areaTypes":[]}`, string(data))
}

func TestDirSaveRefusesOverwrite(t *testing.T) {
	base := t.TempDir()
	dir, err := NewDir(base)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = dir.Save(ctx, "snap.json", strings.NewReader("first"))
	require.NoError(t, err)

	_, err = dir.Save(ctx, "snap.json", strings.NewReader("second"))
	assert.ErrorIs(t, err, backup.ErrExists)

	data, err := os.ReadFile(filepath.Join(base, "snap.json"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	entries, err := dir.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")

	leftovers, err := filepath.Glob(filepath.Join(base, ".tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestDirDelete(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key, err := dir.Save(ctx, "snap.json", strings.NewReader("{}"))
	require.NoError(t, err)

	require.NoError(t, dir.Delete(ctx, key))

	_, err = dir.Open(ctx, key)
	assert.ErrorIs(t, err, backup.ErrNotFound)

	assert.ErrorIs(t, dir.Delete(ctx, key), backup.ErrNotFound)
}

func TestDirList(t *testing.T) {
	base := t.TempDir()
	dir, err := NewDir(base)
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"homeclean-backup-20240101T000000Z.json", "homeclean-backup-20240301T000000Z.yaml"} {
		_, err := dir.Save(ctx, name, strings.NewReader("{}"))
		require.NoError(t, err)
	}
	require.NoError(t, os.Mkdir(filepath.Join(base, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, ".tmp-123"), []byte("x"), 0600))

	entries, err := dir.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "homeclean-backup-20240301T000000Z.yaml", entries[0].Key)
	assert.Equal(t, "homeclean-backup-20240101T000000Z.json", entries[1].Key)
	assert.Equal(t, int64(2), entries[0].Size)
}

func TestDirListEmpty(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	require.NoError(t, err)

	entries, err := dir.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestDirRejectsTraversal(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"../../etc/passwd", "../escape.json", "a/b.json", "", ".hidden"} {
		_, err := dir.Open(ctx, key)
		assert.ErrorIs(t, err, backup.ErrInvalidName, key)

		_, err = dir.Save(ctx, key, strings.NewReader("{}"))
		assert.ErrorIs(t, err, backup.ErrInvalidName, key)

		assert.ErrorIs(t, dir.Delete(ctx, key), backup.ErrInvalidName, key)
	}
}
