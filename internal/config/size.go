package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var sizeSuffixes = map[byte]int64{
	'B': 1,
	'K': 1 << 10,
	'M': 1 << 20,
	'G': 1 << 30,
	'T': 1 << 40,
}

// ParseSize turns a byte count such as "512", "64K", "10M" or "1.5G" into
// bytes. The optional suffix is case-insensitive and counts in powers of
// 1024.
func ParseSize(s string) (int64, error) {
	num := strings.TrimSpace(s)
	if num == "" {
		return 0, fmt.Errorf("empty size string")
	}

	unit := int64(1)
	if m, ok := sizeSuffixes[strings.ToUpper(num)[len(num)-1]]; ok {
		unit = m
		num = num[:len(num)-1]
	}

	if n, err := strconv.ParseInt(num, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative size: %q", s)
		}
		return n * unit, nil
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	return int64(f * float64(unit)), nil
}
