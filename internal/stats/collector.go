package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector tracks file operation counters using lock-free atomics.
// A nil *Collector is valid and discards everything, so library code can
// record unconditionally.
type Collector struct {
	bytesCopied   atomic.Int64
	holeBytes     atomic.Int64
	holes         atomic.Int64
	reads         atomic.Int64
	writes        atomic.Int64
	seeks         atomic.Int64
	created       atomic.Int64
	alreadyExists atomic.Int64
	failed        atomic.Int64
	startTime     time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	BytesCopied   int64
	HoleBytes     int64
	Holes         int64
	Reads         int64
	Writes        int64
	Seeks         int64
	Created       int64
	AlreadyExists int64
	Failed        int64
	Elapsed       time.Duration
}

func (c *Collector) AddBytesCopied(n int64) {
	if c != nil {
		c.bytesCopied.Add(n)
	}
}

// AddHole records one skipped hole of n bytes.
func (c *Collector) AddHole(n int64) {
	if c != nil {
		c.holes.Add(1)
		c.holeBytes.Add(n)
	}
}

func (c *Collector) AddReads(n int64) {
	if c != nil {
		c.reads.Add(n)
	}
}

func (c *Collector) AddWrites(n int64) {
	if c != nil {
		c.writes.Add(n)
	}
}

func (c *Collector) AddSeeks(n int64) {
	if c != nil {
		c.seeks.Add(n)
	}
}

func (c *Collector) AddCreated(n int64) {
	if c != nil {
		c.created.Add(n)
	}
}

func (c *Collector) AddAlreadyExists(n int64) {
	if c != nil {
		c.alreadyExists.Add(n)
	}
}

func (c *Collector) AddFailed(n int64) {
	if c != nil {
		c.failed.Add(n)
	}
}

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		BytesCopied:   c.bytesCopied.Load(),
		HoleBytes:     c.holeBytes.Load(),
		Holes:         c.holes.Load(),
		Reads:         c.reads.Load(),
		Writes:        c.writes.Load(),
		Seeks:         c.seeks.Load(),
		Created:       c.created.Load(),
		AlreadyExists: c.alreadyExists.Load(),
		Failed:        c.failed.Load(),
		Elapsed:       c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	if c == nil {
		return 0
	}
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"bytes=%d holes=%d hole_bytes=%d reads=%d writes=%d seeks=%d created=%d exists=%d failed=%d",
		s.BytesCopied, s.Holes, s.HoleBytes, s.Reads, s.Writes, s.Seeks,
		s.Created, s.AlreadyExists, s.Failed,
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
