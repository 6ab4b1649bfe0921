// Package subdirs lists the subdirectories beneath a directory, optionally
// filtered by a regular expression and descending to a bounded or
// unbounded depth.
package subdirs

import (
	"context"

	"SubdirFinder/internal"
)

// Options configures List. The zero value lists immediate subdirectories.
type Options struct {
	// Filter is a regular expression matched (unanchored) against each
	// entry name at every level. Non-matching directories are neither
	// returned nor descended into.
	Filter string
	// MaxDepth caps the descent: 1 = immediate children only. 0 = unset.
	MaxDepth int
	// Recursive descends without limit unless MaxDepth is set.
	Recursive bool
	// Threads bounds concurrent directory reads. 0 picks a default.
	Threads int
	// Archives lists directories inside path when it is an archive file.
	Archives bool
}

type (
	ErrorKind = internal.ErrorKind
	ScanError = internal.ScanError
)

const (
	KindMissingArgument = internal.KindMissingArgument
	KindInvalidType     = internal.KindInvalidType
	KindInvalidRange    = internal.KindInvalidRange
	KindFilesystem      = internal.KindFilesystem
)

var (
	ErrMissingArgument = internal.ErrMissingArgument
	ErrInvalidType     = internal.ErrInvalidType
	ErrInvalidRange    = internal.ErrInvalidRange
	ErrFilesystem      = internal.ErrFilesystem
)

// IsKind reports whether err is a *ScanError of the given kind.
func IsKind(err error, kind ErrorKind) bool { return internal.IsKind(err, kind) }

// List returns the subdirectories of path selected by opts. Paths are
// path joined with each entry name, so a relative path yields relative
// results. Directories of one level come before any of their descendants.
func List(ctx context.Context, path string, opts Options) ([]string, error) {
	if path == "" {
		return nil, internal.MissingArgument(1)
	}
	so, err := opts.scanOptions()
	if err != nil {
		return nil, err
	}
	return internal.NewDirScanner(nil).Scan(ctx, path, so)
}

// ListWithConfig is List with options read from a YAML file.
func ListWithConfig(ctx context.Context, path, configFile string) ([]string, error) {
	if path == "" {
		return nil, internal.MissingArgument(1)
	}
	so, err := internal.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	return internal.NewDirScanner(nil).Scan(ctx, path, so)
}

func (o Options) scanOptions() (internal.ScanOptions, error) {
	if o.MaxDepth < 0 {
		return internal.ScanOptions{}, internal.InvalidRange("maxDepth must be a non-negative non-zero integer")
	}
	levels, recursive := internal.ResolveDepth(o.MaxDepth, o.Recursive)
	return internal.ScanOptions{
		Filter:    o.Filter,
		Levels:    levels,
		Recursive: recursive,
		Threads:   o.Threads,
		Archives:  o.Archives,
	}, nil
}
