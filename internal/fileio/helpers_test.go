package fileio

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func randomASCII(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[rand.IntN(len(alphanumeric))]
	}
	return b
}

// requireHoles skips the test when dir's filesystem does not report holes
// through SEEK_DATA.
func requireHoles(t *testing.T, dir string) {
	t.Helper()

	path := filepath.Join(dir, ".hole-probe")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	require.NoError(t, err)
	defer os.Remove(path)
	defer f.Close()

	_, err = f.WriteAt([]byte("x"), 1<<20)
	require.NoError(t, err)

	off, err := unix.Seek(int(f.Fd()), 0, unix.SEEK_DATA)
	if err != nil || off == 0 {
		t.Skip("filesystem does not report holes")
	}
}

// dataAfter returns SEEK_DATA from offset, or the file size if no data follows.
func dataAfter(t *testing.T, path string, offset int64) int64 {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	off, err := unix.Seek(int(f.Fd()), offset, unix.SEEK_DATA)
	if err == unix.ENXIO {
		info, err := f.Stat()
		require.NoError(t, err)
		return info.Size()
	}
	require.NoError(t, err)
	return off
}

// writeSparse builds a file of size bytes with data written at each offset.
func writeSparse(t *testing.T, path string, size int64, chunks map[int64][]byte) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.Truncate(size))
	for off, data := range chunks {
		_, err := f.WriteAt(data, off)
		require.NoError(t, err)
	}
}
