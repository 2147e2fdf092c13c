package ui

import (
	"fmt"
	"strings"

	"github.com/bamsammich/fdlab/internal/fileio"
)

const (
	cellData = '█'
	cellHole = '░'
)

// SegmentMap renders the layout of a size-byte file in width cells. A
// cell shows data if any data segment overlaps the byte range it covers.
func SegmentMap(segs []fileio.Segment, size int64, width int, styled bool) string {
	if width <= 0 || size <= 0 {
		return ""
	}

	cells := make([]bool, width)
	for _, s := range segs {
		if !s.IsData || s.Length == 0 {
			continue
		}
		first := cellIndex(s.Offset, size, width)
		last := cellIndex(s.End()-1, size, width)
		for i := first; i <= last; i++ {
			cells[i] = true
		}
	}

	var b strings.Builder
	for i := 0; i < width; {
		j := i
		for j < width && cells[j] == cells[i] {
			j++
		}
		if cells[i] {
			b.WriteString(paint(styleData, strings.Repeat(string(cellData), j-i), styled))
		} else {
			b.WriteString(paint(styleHole, strings.Repeat(string(cellHole), j-i), styled))
		}
		i = j
	}
	return b.String()
}

func cellIndex(off, size int64, width int) int {
	i := int(float64(off) / float64(size) * float64(width))
	return min(max(i, 0), width-1)
}

// SegmentTable lists segments one per line.
func SegmentTable(segs []fileio.Segment) string {
	var b strings.Builder
	for _, s := range segs {
		kind := "hole"
		if s.IsData {
			kind = "data"
		}
		fmt.Fprintf(&b, "%-4s  %20s  %20s  %s\n",
			kind, FormatCount(s.Offset), FormatCount(s.Length), FormatBytes(s.Length))
	}
	return b.String()
}
