package verify

import (
	"fmt"
	"os"
	"slices"

	"github.com/bamsammich/fdlab/internal/fileio"
)

// Report is the outcome of comparing a copy against its source.
type Report struct {
	Algorithm   Algorithm
	SrcSize     int64
	DstSize     int64
	SrcDigest   string
	DstDigest   string
	SrcSegments []fileio.Segment
	DstSegments []fileio.Segment
}

// ContentEqual reports whether both files have the same length and digest.
func (r Report) ContentEqual() bool {
	return r.SrcSize == r.DstSize && r.SrcDigest == r.DstDigest
}

// HolesMatch reports whether both files have holes at the same offsets.
// Only meaningful when both live on filesystems with the same block size.
func (r Report) HolesMatch() bool {
	return slices.Equal(holes(r.SrcSegments), holes(r.DstSegments))
}

// HoleBytes returns the number of unallocated bytes in the source.
func (r Report) HoleBytes() int64 {
	var n int64
	for _, s := range holes(r.SrcSegments) {
		n += s.Length
	}
	return n
}

// Compare hashes src and dst with algo and maps their hole layouts.
func Compare(src, dst string, algo Algorithm) (Report, error) {
	r := Report{Algorithm: algo}

	var err error
	if r.SrcSize, r.SrcDigest, r.SrcSegments, err = inspect(src, algo); err != nil {
		return r, err
	}
	if r.DstSize, r.DstDigest, r.DstSegments, err = inspect(dst, algo); err != nil {
		return r, err
	}
	return r, nil
}

func inspect(path string, algo Algorithm) (int64, string, []fileio.Segment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, "", nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return 0, "", nil, fmt.Errorf("%s is not a regular file", path)
	}
	digest, err := HashFile(path, algo)
	if err != nil {
		return 0, "", nil, err
	}
	segs, err := fileio.DetectSegments(path)
	if err != nil {
		return 0, "", nil, fmt.Errorf("map holes: %w", err)
	}
	return info.Size(), digest, segs, nil
}

func holes(segs []fileio.Segment) []fileio.Segment {
	var out []fileio.Segment
	for _, s := range segs {
		if s.IsData || s.Length == 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].End() == s.Offset {
			out[n-1].Length += s.Length
			continue
		}
		out = append(out, s)
	}
	return out
}
