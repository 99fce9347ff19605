// Package stats tracks patch application counters.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector tracks patch application statistics using lock-free atomic
// counters. The zero value is ready to use; NewCollector additionally
// records a start time for Elapsed.
type Collector struct {
	filesPatched   atomic.Int64
	filesSkipped   atomic.Int64
	filesCreated   atomic.Int64
	foldersApplied atomic.Int64
	bytesPatched   atomic.Int64
	memPatched     atomic.Int64
	memSkipped     atomic.Int64
	hooksRemoved   atomic.Int64
	startTime      time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

func (c *Collector) AddFilesPatched(n int64)   { c.filesPatched.Add(n) }
func (c *Collector) AddFilesSkipped(n int64)   { c.filesSkipped.Add(n) }
func (c *Collector) AddFilesCreated(n int64)   { c.filesCreated.Add(n) }
func (c *Collector) AddFoldersApplied(n int64) { c.foldersApplied.Add(n) }
func (c *Collector) AddBytesPatched(n int64)   { c.bytesPatched.Add(n) }
func (c *Collector) AddMemPatched(n int64)     { c.memPatched.Add(n) }
func (c *Collector) AddMemSkipped(n int64)     { c.memSkipped.Add(n) }
func (c *Collector) AddHooksRemoved(n int64)   { c.hooksRemoved.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesPatched   int64
	FilesSkipped   int64
	FilesCreated   int64
	FoldersApplied int64
	BytesPatched   int64
	MemPatched     int64
	MemSkipped     int64
	HooksRemoved   int64
	Elapsed        time.Duration
}

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesPatched:   c.filesPatched.Load(),
		FilesSkipped:   c.filesSkipped.Load(),
		FilesCreated:   c.filesCreated.Load(),
		FoldersApplied: c.foldersApplied.Load(),
		BytesPatched:   c.bytesPatched.Load(),
		MemPatched:     c.memPatched.Load(),
		MemSkipped:     c.memSkipped.Load(),
		HooksRemoved:   c.hooksRemoved.Load(),
		Elapsed:        c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"patched=%d skipped=%d created=%d folders=%d bytes=%d mem=%d mem_skipped=%d hooks_removed=%d",
		s.FilesPatched, s.FilesSkipped, s.FilesCreated, s.FoldersApplied,
		s.BytesPatched, s.MemPatched, s.MemSkipped, s.HooksRemoved,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
