package internal

import (
	"sync/atomic"
	"time"
)

// ScanStats atomic counters for totals
type ScanStats struct {
	start       time.Time
	DirsRead    atomic.Int64
	DirsMatched atomic.Int64
	Errors      atomic.Int64
}

func (s *ScanStats) Start() {
	s.start = time.Now()
}

func (s *ScanStats) Elapsed() time.Duration {
	return time.Since(s.start)
}
