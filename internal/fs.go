package internal

import (
	"context"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
	"github.com/sirupsen/logrus"
)

// IsArchive by extension. O(1) map lookup
var archiveExt = map[string]struct{}{
	".zip": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".xz": {},
	".rar": {}, ".br": {}, ".lz4": {}, ".lz": {}, ".mz": {},
	".sz": {}, ".s2": {}, ".zz": {}, ".zst": {}, ".7z": {},
}

func IsArchive(path string) bool {
	_, ok := archiveExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// DirReader lists the immediate entries of a directory.
// DirEntry.IsDir must report the entry's own type (lstat semantics).
type DirReader interface {
	ReadDir(dir string) ([]os.DirEntry, error)
	Close() error
}

type osReader struct{}

func (osReader) ReadDir(dir string) ([]os.DirEntry, error) { return os.ReadDir(dir) }
func (osReader) Close() error                              { return nil }

// archiveReader serves directories inside an archive. Paths handed to it
// are display paths rooted at the archive file itself.
type archiveReader struct {
	root string
	fsys iofs.FS
}

func (a *archiveReader) ReadDir(dir string) ([]os.DirEntry, error) {
	rel, err := filepath.Rel(a.root, dir)
	if err != nil {
		return nil, &iofs.PathError{Op: "readdir", Path: dir, Err: iofs.ErrInvalid}
	}
	return iofs.ReadDir(a.fsys, filepath.ToSlash(rel))
}

func (a *archiveReader) Close() error {
	if closer, ok := a.fsys.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// OpenDirReader picks the source for a scan root: an archive when enabled
// and the root looks like one, the OS filesystem otherwise.
func OpenDirReader(ctx context.Context, root string, archivesEnabled bool) (DirReader, error) {
	if !archivesEnabled || !IsArchive(root) {
		return osReader{}, nil
	}
	fsys, err := archives.FileSystem(ctx, root, nil)
	if err != nil {
		logrus.WithError(err).WithField("archive", root).Error("open archive")
		return nil, err
	}
	return &archiveReader{root: filepath.Clean(root), fsys: fsys}, nil
}
