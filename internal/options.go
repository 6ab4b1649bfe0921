package internal

import (
	"runtime"
)

const msgLevelsAndRecursive = "please specify one of: levels | recursive. We cannot correctly interpret your wishes when both are specified"

// ScanOptions - the scan request, shared read-only by every level of a scan.
type ScanOptions struct {
	Filter    string // regexp over entry names, empty = everything
	Levels    int    // depth cap, 0 = unset
	Recursive bool   // unbounded descent
	Threads   int    // concurrent directory reads
	Archives  bool   // list inside archive roots

	// OnDir, if set, is called once per directory read. Must be safe for
	// concurrent use.
	OnDir func(dir string)
}

// Validate checks invariants. Runs before any I/O.
func (o *ScanOptions) Validate() error {
	if o.Levels < 0 {
		return InvalidRange("levels must be a non-negative non-zero integer")
	}
	if o.Levels != 0 && o.Recursive {
		return LevelsAndRecursive()
	}
	if o.Threads < 0 {
		return InvalidRange("threads must not be negative")
	}
	if _, err := CompileFilter(o.Filter); err != nil {
		return err
	}
	return nil
}

// Prepare sets sensible defaults.
func (o *ScanOptions) Prepare() {
	if o.Threads <= 0 {
		o.Threads = max(32, runtime.GOMAXPROCS(0)*4)
	}
}

// descend reports whether a directory read at level should recurse into
// its matches. Level 0 is the scan root.
func (o *ScanOptions) descend(level int) bool {
	if o.Recursive {
		return true
	}
	return o.Levels > 0 && level < o.Levels-1
}

// ResolveDepth maps the user-facing pair (maxDepth, recursive) onto the
// levels/recursive contract. A depth cap always wins; recursive alone
// means unbounded.
func ResolveDepth(maxDepth int, recursive bool) (levels int, unbounded bool) {
	if maxDepth != 0 {
		return maxDepth, false
	}
	return 0, recursive
}
