package fileio

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Segment describes a contiguous region of a file.
type Segment struct {
	Offset int64
	Length int64
	IsData bool
}

// End returns the offset just past the segment.
func (s Segment) End() int64 { return s.Offset + s.Length }

// DetectSegments maps the data and hole regions of the file at path.
func DetectSegments(path string) (segs []Segment, err error) {
	fd, err := openFd(path, unix.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer closeFd(fd, path, &err)

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, wrap("fstat", path, err)
	}
	segs, err = detectSegments(fd, st.Size)
	if err != nil {
		return nil, wrap("lseek", path, err)
	}
	return segs, nil
}

// detectSegments walks SEEK_DATA/SEEK_HOLE over the first size bytes of fd.
// Filesystems without hole support report a single data segment.
//
//nolint:revive // cognitive-complexity: SEEK_DATA/SEEK_HOLE state machine with error recovery
func detectSegments(fd int, size int64) ([]Segment, error) {
	if size == 0 {
		return nil, nil
	}

	var segments []Segment
	offset := int64(0)

	for offset < size {
		dataStart, err := unix.Seek(fd, offset, unix.SEEK_DATA)
		if err != nil {
			if errors.Is(err, unix.ENXIO) {
				// Rest of file is a hole.
				segments = append(segments, Segment{Offset: offset, Length: size - offset})
				break
			}
			if errors.Is(err, unix.EINVAL) {
				return wholeFile(size), nil
			}
			return nil, err
		}

		if dataStart > offset {
			segments = append(segments, Segment{Offset: offset, Length: dataStart - offset})
		}

		holeStart, err := unix.Seek(fd, dataStart, unix.SEEK_HOLE)
		switch {
		case errors.Is(err, unix.ENXIO):
			holeStart = size
		case errors.Is(err, unix.EINVAL):
			return wholeFile(size), nil
		case err != nil:
			return nil, err
		}
		holeStart = min(holeStart, size)

		segments = append(segments, Segment{
			Offset: dataStart,
			Length: holeStart - dataStart,
			IsData: true,
		})
		offset = holeStart
	}

	if len(segments) == 0 {
		return wholeFile(size), nil
	}
	return segments, nil
}

func wholeFile(size int64) []Segment {
	return []Segment{{Offset: 0, Length: size, IsData: true}}
}

// nextHole returns the hole at or after offset as [start, end). With no
// hole left, or on filesystems that cannot report holes, both are size.
func nextHole(fd int, offset, size int64) (start, end int64, err error) {
	if offset >= size {
		return size, size, nil
	}

	start, err = unix.Seek(fd, offset, unix.SEEK_HOLE)
	switch {
	case errors.Is(err, unix.ENXIO), errors.Is(err, unix.EINVAL):
		return size, size, nil
	case err != nil:
		return 0, 0, err
	}
	if start >= size {
		return size, size, nil
	}

	end, err = unix.Seek(fd, start, unix.SEEK_DATA)
	switch {
	case errors.Is(err, unix.ENXIO):
		// Hole runs to EOF.
		return start, size, nil
	case err != nil:
		return 0, 0, err
	}
	return start, min(end, size), nil
}
