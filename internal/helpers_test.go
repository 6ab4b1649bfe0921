package internal

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// mkdirs creates each slash-separated relative dir under root.
func mkdirs(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, r := range rels {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(r)), 0755))
	}
}

func touch(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, r := range rels {
		p := filepath.Join(root, filepath.FromSlash(r))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}
}

// under joins slash-separated rels onto root.
func under(root string, rels ...string) []string {
	out := make([]string, len(rels))
	for i, r := range rels {
		out[i] = filepath.Join(root, filepath.FromSlash(r))
	}
	return out
}

// dirsWithin walks root and returns every directory at depth 1..maxDepth
// (0 = any depth) whose path components all match keep.
func dirsWithin(t *testing.T, root string, maxDepth int, keep func(string) bool) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root || !d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		parts := strings.Split(rel, string(os.PathSeparator))
		if maxDepth > 0 && len(parts) > maxDepth {
			return filepath.SkipDir
		}
		for _, p := range parts {
			if keep != nil && !keep(p) {
				return filepath.SkipDir
			}
		}
		out = append(out, path)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(out)
	return out
}

type fakeEntry struct {
	name string
	dir  bool
}

func (e fakeEntry) Name() string { return e.name }
func (e fakeEntry) IsDir() bool  { return e.dir }
func (e fakeEntry) Type() iofs.FileMode {
	if e.dir {
		return iofs.ModeDir
	}
	return 0
}
func (e fakeEntry) Info() (iofs.FileInfo, error) { return nil, errors.New("no info") }

// fakeReader serves a tree from a map of dir -> entries; dirs listed in
// fail return their error. Reads of slow dirs sleep first. active counts
// reads still running.
type fakeReader struct {
	tree   map[string][]os.DirEntry
	fail   map[string]error
	slow   map[string]time.Duration
	reads  atomic.Int64
	active atomic.Int64
}

func (f *fakeReader) ReadDir(dir string) ([]os.DirEntry, error) {
	f.reads.Add(1)
	f.active.Add(1)
	defer f.active.Add(-1)
	if d, ok := f.slow[dir]; ok {
		time.Sleep(d)
	}
	if err, ok := f.fail[dir]; ok {
		return nil, &iofs.PathError{Op: "open", Path: dir, Err: err}
	}
	entries, ok := f.tree[dir]
	if !ok {
		return nil, &iofs.PathError{Op: "open", Path: dir, Err: iofs.ErrNotExist}
	}
	return entries, nil
}

func (f *fakeReader) Close() error { return nil }

func dirEntry(name string) os.DirEntry  { return fakeEntry{name: name, dir: true} }
func fileEntry(name string) os.DirEntry { return fakeEntry{name: name} }
