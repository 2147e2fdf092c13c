// Package verify checks that a copy matches its source in content,
// logical length and hole layout.
package verify

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Algorithm names a content digest.
type Algorithm string

const (
	BLAKE3 Algorithm = "blake3"
	XXHash Algorithm = "xxhash"
)

// ParseAlgorithm accepts "blake3", "xxhash" or "" (blake3).
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(s)) {
	case "", BLAKE3:
		return BLAKE3, nil
	case XXHash, "xxh64":
		return XXHash, nil
	default:
		return "", fmt.Errorf("unknown digest %q (use blake3 or xxhash)", s)
	}
}

func (a Algorithm) newHash() hash.Hash {
	if a == XXHash {
		return xxhash.New()
	}
	return blake3.New()
}

// HashFile computes the digest of the file at path, hex-encoded.
func HashFile(path string, algo Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := algo.newHash()
	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
