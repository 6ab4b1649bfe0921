package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DirScanner lists subdirectories. The zero value is ready to use.
type DirScanner struct {
	Stats  *ScanStats // optional
	Reader DirReader  // nil = chosen per scan root by OpenDirReader
}

// NewDirScanner returns a scanner that records counters into stats, which may be nil.
func NewDirScanner(stats *ScanStats) *DirScanner { return &DirScanner{Stats: stats} }

// walk is the per-call state shared by every level of one scan.
type walk struct {
	opts   ScanOptions
	filter Pattern
	reader DirReader
	pool   *ants.Pool
	stats  *ScanStats

	// slots mirrors the pool capacity so waiting for a worker honours ctx.
	slots    *semaphore.Weighted
	inflight sync.WaitGroup
}

// Scan returns the subdirectories of directory selected by opts.
//
// The result holds this level's matches first, then each match's own
// results in the same order, recursively. Any read failure aborts the
// whole scan; no partial result is returned.
func (s *DirScanner) Scan(ctx context.Context, directory string, opts ScanOptions) ([]string, error) {
	if directory == "" {
		return nil, MissingArgument(1)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.Prepare()

	filter, err := CompileFilter(opts.Filter)
	if err != nil {
		return nil, err
	}

	reader := s.Reader
	if reader == nil {
		if reader, err = OpenDirReader(ctx, directory, opts.Archives); err != nil {
			return nil, FilesystemError(directory, err)
		}
		defer reader.Close()
	}

	pool, err := ants.NewPool(opts.Threads)
	if err != nil {
		return nil, fmt.Errorf("pool: %w", err)
	}
	defer pool.Release()

	stats := s.Stats
	if stats == nil {
		stats = &ScanStats{}
	}

	w := &walk{
		opts:   opts,
		filter: filter,
		reader: reader,
		pool:   pool,
		stats:  stats,
		slots:  semaphore.NewWeighted(int64(opts.Threads)),
	}
	logrus.WithFields(logrus.Fields{
		"dir":       directory,
		"filter":    filter.Desc(),
		"levels":    opts.Levels,
		"recursive": opts.Recursive,
	}).Debug("scan started")

	dirs, err := w.scanLevel(ctx, directory, 0)
	// reads abandoned on cancel still hold the reader; let them drain
	// before the deferred Release and Close run.
	w.inflight.Wait()
	return dirs, err
}

func (w *walk) scanLevel(ctx context.Context, dir string, level int) ([]string, error) {
	entries, err := w.readDir(ctx, dir)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, e := range entries {
		// filter raw names before looking at the type
		if !w.filter.Match(e.Name()) {
			continue
		}
		if !e.IsDir() {
			continue
		}
		dirs = append(dirs, filepath.Join(dir, e.Name()))
	}
	w.stats.DirsMatched.Add(int64(len(dirs)))
	logrus.WithFields(logrus.Fields{"dir": dir, "level": level, "entries": len(entries), "dirs": len(dirs)}).Debug("level read")

	if len(dirs) == 0 || !w.opts.descend(level) {
		return dirs, nil
	}

	children := make([][]string, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	for i, sub := range dirs {
		g.Go(func() error {
			res, err := w.scanLevel(gctx, sub, level+1)
			if err != nil {
				return err
			}
			children[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return flatten(dirs, children), nil
}

type readResult struct {
	entries []os.DirEntry
	err     error
}

// readDir runs one listing on the pool. Pool tasks never wait on other
// tasks, so nested levels cannot starve the pool.
func (w *walk) readDir(ctx context.Context, dir string) ([]os.DirEntry, error) {
	if err := w.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	ch := make(chan readResult, 1)
	w.inflight.Add(1)
	if err := w.pool.Submit(func() {
		defer w.inflight.Done()
		defer w.slots.Release(1)
		if ctx.Err() != nil {
			return
		}
		entries, err := w.reader.ReadDir(dir)
		ch <- readResult{entries, err}
	}); err != nil {
		w.inflight.Done()
		w.slots.Release(1)
		return nil, fmt.Errorf("submit read of %s: %w", dir, err)
	}

	select {
	case r := <-ch:
		if r.err != nil {
			w.stats.Errors.Add(1)
			logrus.WithFields(logrus.Fields{"dir": dir, "err": r.err}).Error("read dir")
			return nil, FilesystemError(dir, r.err)
		}
		w.stats.DirsRead.Add(1)
		if w.opts.OnDir != nil {
			w.opts.OnDir(dir)
		}
		return r.entries, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func flatten(head []string, tails [][]string) []string {
	n := len(head)
	for _, t := range tails {
		n += len(t)
	}
	out := make([]string, 0, n)
	out = append(out, head...)
	for _, t := range tails {
		out = append(out, t...)
	}
	return out
}
