package internal

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsArchive(t *testing.T) {
	exts := []string{".zip", ".tar", ".gz", ".bz2", ".xz", ".rar", ".7z", ".zst", ".ZIP"}
	for _, e := range exts {
		assert.True(t, IsArchive("x"+e), "expected archive for %s", e)
	}
	assert.False(t, IsArchive("file.txt"))
	assert.False(t, IsArchive("dir"))
}

func TestOpenDirReader_PlainDirectory(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "a")

	// archives enabled, but root is not an archive
	r, err := OpenDirReader(context.Background(), root, true)
	require.NoError(t, err)
	defer r.Close()
	_, ok := r.(osReader)
	assert.True(t, ok)

	ents, err := r.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, ents, 1)
	assert.Equal(t, "a", ents[0].Name())
	assert.True(t, ents[0].IsDir())
}

// writeZip builds an archive with explicit directory entries.
func writeZip(t *testing.T, path string, names ...string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, n := range names {
		w, err := zw.Create(n)
		require.NoError(t, err)
		if n[len(n)-1] != '/' {
			_, err = io.WriteString(w, "data")
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestScan_ArchiveRoot(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "tree.zip")
	writeZip(t, zipPath,
		"alpha/",
		"alpha/beta/",
		"alpha/beta/file.txt",
		"gamma/",
		"top.txt",
	)

	s := NewDirScanner(nil)
	got, err := s.Scan(context.Background(), zipPath, ScanOptions{Archives: true, Recursive: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, under(zipPath, "alpha", "gamma", "alpha/beta"), got)

	got, err = s.Scan(context.Background(), zipPath, ScanOptions{Archives: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, under(zipPath, "alpha", "gamma"), got)

	got, err = s.Scan(context.Background(), zipPath, ScanOptions{Archives: true, Recursive: true, Filter: "^a|^b"})
	require.NoError(t, err)
	assert.ElementsMatch(t, under(zipPath, "alpha", "alpha/beta"), got)
}

func TestScan_ArchiveIgnoredWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "tree.zip")
	writeZip(t, zipPath, "alpha/")

	_, err := NewDirScanner(nil).Scan(context.Background(), zipPath, ScanOptions{})
	require.ErrorIs(t, err, ErrFilesystem)
	assert.True(t, IsKind(err, KindFilesystem))
}
