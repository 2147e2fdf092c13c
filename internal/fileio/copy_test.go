package fileio

import (
	"bytes"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/fdlab/internal/stats"
)

func TestCopyFile_CopiesContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "somefile")
	dst := filepath.Join(dir, "somefile.bak")

	data := randomASCII(700000)
	require.NoError(t, os.WriteFile(src, data, 0o644))

	res, err := CopyFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), res.BytesCopied)
	assert.Zero(t, res.Holes)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCopyFile_SmallGap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "file_with_hole")
	dst := filepath.Join(dir, "file_with_hole_out")

	require.NoError(t, SeekIO(src, Script{Write{Data: []byte("abcde")}, Seek{Offset: 10}, Write{Data: []byte("z")}}, nil))

	_, err := CopyFile(src, dst)
	require.NoError(t, err)

	want, err := os.ReadFile(src)
	require.NoError(t, err)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Len(t, got, 11)
}

func TestCopyFile_PreservesHoles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	requireHoles(t, dir)

	src := filepath.Join(dir, "sparse")
	dst := filepath.Join(dir, "sparse.out")

	const mib = 1 << 20
	head := bytes.Repeat([]byte("A"), 4096)
	mid := bytes.Repeat([]byte("B"), 8192)
	tail := bytes.Repeat([]byte("C"), 4096)
	size := int64(4*mib + 4096)
	writeSparse(t, src, size, map[int64][]byte{
		0:       head,
		2 * mib: mid,
		4 * mib: tail,
	})

	res, err := CopyFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, int64(len(head)+len(mid)+len(tail)), res.BytesCopied)
	assert.Equal(t, 2, res.Holes)
	assert.Equal(t, size-res.BytesCopied, res.HoleBytes)

	want, err := os.ReadFile(src)
	require.NoError(t, err)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Each hole starts and ends at the same offsets in both files.
	for _, off := range []int64{4096, 2*mib + 8192} {
		assert.Equal(t, dataAfter(t, src, off), dataAfter(t, dst, off), "hole at %d", off)
	}
	assert.Equal(t, int64(2*mib), dataAfter(t, dst, 4096))

	srcSegs, err := DetectSegments(src)
	require.NoError(t, err)
	dstSegs, err := DetectSegments(dst)
	require.NoError(t, err)
	assert.Equal(t, srcSegs, dstSegs)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	st := info.Sys().(*syscall.Stat_t)
	assert.Less(t, st.Blocks*512, size, "destination should be sparse")
}

func TestCopyFile_LeadingAndTrailingHoles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	requireHoles(t, dir)

	src := filepath.Join(dir, "edges")
	dst := filepath.Join(dir, "edges.out")

	const mib = 1 << 20
	size := int64(3 * mib)
	writeSparse(t, src, size, map[int64][]byte{mib: bytes.Repeat([]byte("D"), 4096)})

	res, err := CopyFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), res.BytesCopied)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, size, info.Size())

	want, err := os.ReadFile(src)
	require.NoError(t, err)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(mib), dataAfter(t, dst, 0))
}

func TestCopyFile_AllHole(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "allhole")
	dst := filepath.Join(dir, "allhole.out")
	writeSparse(t, src, 1<<20, nil)

	res, err := CopyFile(src, dst)
	require.NoError(t, err)
	assert.Zero(t, res.BytesCopied)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), info.Size())

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 1<<20), got)
}

func TestCopyFile_Empty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "empty")
	dst := filepath.Join(dir, "empty.out")
	require.NoError(t, os.WriteFile(src, nil, 0o644))

	res, err := CopyFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, CopyResult{}, res)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestCopyFile_TruncatesExistingDestination(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "short")
	dst := filepath.Join(dir, "long")
	require.NoError(t, os.WriteFile(src, []byte("short"), 0o644))
	require.NoError(t, os.WriteFile(dst, bytes.Repeat([]byte("x"), 5000), 0o644))

	_, err := CopyFile(src, dst)
	require.NoError(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "short", string(got))
}

func TestCopyFile_RefusesSameFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "f")
	link := filepath.Join(dir, "link")
	require.NoError(t, os.WriteFile(src, []byte("hello world"), 0o644))
	require.NoError(t, os.Link(src, link))

	copies := map[string]func(string, string) error{
		"sparse": func(s, d string) error { _, err := CopyFile(s, d); return err },
		"plain":  func(s, d string) error { _, err := PlainCopy(s, d); return err },
	}
	for name, copyFn := range copies {
		for _, dst := range []string{src, link} {
			err := copyFn(src, dst)
			require.Error(t, err, "%s copy to %s", name, dst)
			assert.ErrorIs(t, err, ErrSameFile)
			assert.Equal(t, KindOther, KindOf(err))

			got, err := os.ReadFile(src)
			require.NoError(t, err)
			assert.Equal(t, "hello world", string(got), "%s copy to %s", name, dst)
		}
	}
}

func TestCopyFile_BufferBoundaries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, n := range []int{1, 1023, 1024, 1025, 2048, 3000} {
		src := filepath.Join(dir, "src")
		dst := filepath.Join(dir, "dst")
		data := randomASCII(n)
		require.NoError(t, os.WriteFile(src, data, 0o644))

		res, err := CopyFile(src, dst)
		require.NoError(t, err)
		assert.Equal(t, int64(n), res.BytesCopied)

		got, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, data, got, "size %d", n)
	}
}

func TestCopyFile_MissingSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dst := filepath.Join(dir, "dst")

	_, err := CopyFile(filepath.Join(dir, "nope"), dst)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr), "destination must not be created")
}

func TestCopyFile_DestinationMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("mode"), 0o600))

	old := syscall.Umask(0)
	defer syscall.Umask(old)

	_, err := CopyFile(src, dst)
	require.NoError(t, err)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o666), info.Mode().Perm())
}

func TestCopyFileWith_Stats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, randomASCII(2500), 0o644))

	collector := stats.NewCollector()
	_, err := CopyFileWith(src, dst, CopyOptions{Stats: collector})
	require.NoError(t, err)

	snap := collector.Snapshot()
	assert.Equal(t, int64(2500), snap.BytesCopied)
	assert.Equal(t, int64(3), snap.Writes)
	assert.GreaterOrEqual(t, snap.Reads, int64(3))
}

func TestCopyFileWith_Limiter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	data := randomASCII(8 * 1024)
	require.NoError(t, os.WriteFile(src, data, 0o644))

	// 8 KiB at 4 KiB/s with a 4 KiB burst takes about a second.
	start := time.Now()
	_, err := CopyFileWith(src, dst, CopyOptions{Limiter: NewBWLimiter(4 * 1024)})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 500*time.Millisecond)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestNewBWLimiter(t *testing.T) {
	assert.Equal(t, 1<<20, NewBWLimiter(10*1024*1024).Burst())
	assert.Equal(t, 4096, NewBWLimiter(4096).Burst())
	assert.Equal(t, copyBufSize, NewBWLimiter(10).Burst())
}

func TestPlainCopy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	data := randomASCII(5000)
	require.NoError(t, os.WriteFile(src, data, 0o644))

	n, err := PlainCopy(src, dst)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = PlainCopy(filepath.Join(dir, "missing"), dst)
	assert.ErrorIs(t, err, ErrNotFound)
}
