// Package fileio implements positioned file I/O exercises on raw
// descriptors: a scripted read/write/seek engine, a copy that preserves
// holes, and atomic versus racy exclusive creation.
package fileio

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sys/unix"
)

// Permission sets requested at creation time; the process umask still applies.
const (
	modeAll       = unix.S_IRWXU | unix.S_IRWXG | unix.S_IRWXO
	modeReadWrite = unix.S_IRUSR | unix.S_IWUSR | unix.S_IRGRP | unix.S_IWGRP | unix.S_IROTH | unix.S_IWOTH
	modeOwnerRW   = unix.S_IRUSR | unix.S_IWUSR
)

func openFd(path string, flags int, mode uint32) (int, error) {
	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, mode)
	if err != nil {
		return -1, wrap("open", path, err)
	}
	slog.Debug("opened descriptor", "path", path, "flags", flagString(flags), "fd", fd)
	return fd, nil
}

// closeFd releases fd. A close failure is stored in *errp unless an
// earlier error is already being returned.
func closeFd(fd int, path string, errp *error) {
	if err := unix.Close(fd); err != nil && *errp == nil {
		*errp = wrap("close", path, err)
	}
}

func seekFd(fd int, path string, offset int64, whence int) (int64, error) {
	off, err := unix.Seek(fd, offset, whence)
	if err != nil {
		return 0, wrap("lseek", path, err)
	}
	return off, nil
}

func readFd(fd int, path string, buf []byte) (int, error) {
	n, err := unix.Read(fd, buf)
	if err != nil {
		return 0, wrap("read", path, err)
	}
	return n, nil
}

// writeOnce issues a single write(2). A short count is an error: callers
// staging copy data never retry partial transfers.
func writeOnce(fd int, path string, data []byte) error {
	n, err := unix.Write(fd, data)
	if err != nil {
		return wrap("write", path, err)
	}
	if n < len(data) {
		return &Error{
			Op:   "write",
			Path: path,
			Kind: KindOther,
			Err:  fmt.Errorf("%w: %d of %d bytes", io.ErrShortWrite, n, len(data)),
		}
	}
	return nil
}

func flagString(flags int) string {
	var parts []string
	switch flags & unix.O_ACCMODE {
	case unix.O_RDONLY:
		parts = append(parts, "O_RDONLY")
	case unix.O_WRONLY:
		parts = append(parts, "O_WRONLY")
	case unix.O_RDWR:
		parts = append(parts, "O_RDWR")
	}
	for _, f := range []struct {
		bit  int
		name string
	}{
		{unix.O_CREAT, "O_CREAT"},
		{unix.O_EXCL, "O_EXCL"},
		{unix.O_TRUNC, "O_TRUNC"},
		{unix.O_APPEND, "O_APPEND"},
	} {
		if flags&f.bit != 0 {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}
