package fileio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	"github.com/bamsammich/fdlab/internal/stats"
)

// copyBufSize is the staging buffer used by both copies.
const copyBufSize = 1024

// CopyResult reports what a copy did.
type CopyResult struct {
	BytesCopied int64
	HoleBytes   int64
	Holes       int
}

// CopyOptions tunes CopyFileWith. The zero value copies unthrottled.
type CopyOptions struct {
	// Limiter throttles destination writes. Its burst must be at least
	// 1024 bytes; NewBWLimiter guarantees that.
	Limiter *rate.Limiter
	Stats   *stats.Collector
}

// NewBWLimiter creates a limiter capping copy throughput to bytesPerSec.
func NewBWLimiter(bytesPerSec int64) *rate.Limiter {
	burst := 1 << 20
	if bytesPerSec < int64(burst) {
		burst = max(int(bytesPerSec), copyBufSize)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// CopyFile copies src to dst, reproducing the holes of src in dst.
func CopyFile(src, dst string) (CopyResult, error) {
	return CopyFileWith(src, dst, CopyOptions{})
}

// CopyFileWith copies src to dst, walking src by alternating SEEK_HOLE and
// SEEK_DATA. Data extents go through a 1024-byte buffer; each hole is
// reproduced by seeking dst over it. dst is created with mode 0666 (before
// umask) and truncated, unless it is src itself, which is refused with
// ErrSameFile. Finally dst is sized to the length of src so that a
// trailing hole survives.
//
//nolint:revive // cognitive-complexity: extent walk with mid-buffer boundary handling
func CopyFileWith(src, dst string, opts CopyOptions) (res CopyResult, err error) {
	in, err := openFd(src, unix.O_RDONLY, 0)
	if err != nil {
		return res, err
	}
	defer closeFd(in, src, &err)

	var st unix.Stat_t
	if err := unix.Fstat(in, &st); err != nil {
		return res, wrap("fstat", src, err)
	}
	size := st.Size

	out, err := openDest(&st, src, dst)
	if err != nil {
		return res, err
	}
	defer closeFd(out, dst, &err)

	c := &holeCopier{in: in, out: out, src: src, dst: dst, opts: opts, buf: make([]byte, copyBufSize)}
	var offset int64
	for {
		holeStart, holeEnd, err := nextHole(in, offset, size)
		if err != nil {
			return c.res, wrap("lseek", src, err)
		}
		slog.Debug("next hole", "path", src, "offset", offset, "hole_start", holeStart, "hole_end", holeEnd)

		if holeStart == offset && holeEnd > holeStart {
			// Zero-length data extent: nothing to write.
			if err := c.skipHole(holeStart, holeEnd); err != nil {
				return c.res, err
			}
			offset = holeEnd
			continue
		}

		next, done, err := c.copyExtent(offset, holeStart, holeEnd)
		if err != nil {
			return c.res, err
		}
		if done {
			break
		}
		offset = next
	}

	if err := unix.Ftruncate(out, size); err != nil {
		return c.res, wrap("ftruncate", dst, err)
	}
	slog.Debug("sparse copy complete", "src", src, "dst", dst,
		"bytes", c.res.BytesCopied, "holes", c.res.Holes, "hole_bytes", c.res.HoleBytes)
	return c.res, nil
}

// ErrSameFile is wrapped by copies whose destination is the source itself.
var ErrSameFile = errors.New("source and destination are the same file")

// openDest opens dst for writing without truncating it, refuses it when it
// is the inode described by srcSt, and only then empties it.
func openDest(srcSt *unix.Stat_t, src, dst string) (int, error) {
	out, err := openFd(dst, unix.O_WRONLY|unix.O_CREAT, modeReadWrite)
	if err != nil {
		return -1, err
	}

	var st unix.Stat_t
	if err := unix.Fstat(out, &st); err != nil {
		_ = unix.Close(out)
		return -1, wrap("fstat", dst, err)
	}
	if st.Dev == srcSt.Dev && st.Ino == srcSt.Ino {
		_ = unix.Close(out)
		return -1, &Error{Op: "copy", Path: dst, Kind: KindOther, Err: fmt.Errorf("%w: %s", ErrSameFile, src)}
	}
	if err := unix.Ftruncate(out, 0); err != nil {
		_ = unix.Close(out)
		return -1, wrap("ftruncate", dst, err)
	}
	return out, nil
}

type holeCopier struct {
	in, out  int
	src, dst string
	opts     CopyOptions
	buf      []byte
	res      CopyResult
}

// copyExtent copies from offset until the read that reaches holeStart,
// writes only the bytes before holeStart, and skips dst over the hole.
// done is true once a read returns zero bytes.
func (c *holeCopier) copyExtent(offset, holeStart, holeEnd int64) (next int64, done bool, err error) {
	if _, err := seekFd(c.in, c.src, offset, io.SeekStart); err != nil {
		return 0, false, err
	}
	c.opts.Stats.AddSeeks(1)

	for {
		n, err := readFd(c.in, c.src, c.buf)
		if err != nil {
			return 0, false, err
		}
		c.opts.Stats.AddReads(1)
		if n == 0 {
			return offset, true, nil
		}

		if offset+int64(n) >= holeStart {
			// Bytes past the boundary are dropped; the next extent re-reads
			// from holeEnd.
			if err := c.write(c.buf[:holeStart-offset]); err != nil {
				return 0, false, err
			}
			if err := c.skipHole(holeStart, holeEnd); err != nil {
				return 0, false, err
			}
			return holeEnd, false, nil
		}

		if err := c.write(c.buf[:n]); err != nil {
			return 0, false, err
		}
		offset += int64(n)
	}
}

func (c *holeCopier) skipHole(start, end int64) error {
	if _, err := seekFd(c.out, c.dst, end, io.SeekStart); err != nil {
		return err
	}
	c.opts.Stats.AddSeeks(1)
	if end > start {
		c.res.Holes++
		c.res.HoleBytes += end - start
		c.opts.Stats.AddHole(end - start)
	}
	return nil
}

func (c *holeCopier) write(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if c.opts.Limiter != nil {
		if err := c.opts.Limiter.WaitN(context.Background(), len(data)); err != nil {
			return &Error{Op: "write", Path: c.dst, Kind: KindOther, Err: err}
		}
	}
	if err := writeOnce(c.out, c.dst, data); err != nil {
		return err
	}
	c.res.BytesCopied += int64(len(data))
	c.opts.Stats.AddBytesCopied(int64(len(data)))
	c.opts.Stats.AddWrites(1)
	return nil
}

// PlainCopy copies src to dst through a 1024-byte buffer without looking
// for holes; every zero byte of src is written out.
func PlainCopy(src, dst string) (n int64, err error) {
	in, err := openFd(src, unix.O_RDONLY, 0)
	if err != nil {
		return 0, err
	}
	defer closeFd(in, src, &err)

	var st unix.Stat_t
	if err := unix.Fstat(in, &st); err != nil {
		return 0, wrap("fstat", src, err)
	}
	out, err := openDest(&st, src, dst)
	if err != nil {
		return 0, err
	}
	defer closeFd(out, dst, &err)

	buf := make([]byte, copyBufSize)
	for {
		r, err := readFd(in, src, buf)
		if err != nil {
			return n, err
		}
		if r == 0 {
			return n, nil
		}
		if err := writeOnce(out, dst, buf[:r]); err != nil {
			return n, err
		}
		n += int64(r)
	}
}
