package fileio

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultRaceWindow is how long BadExclusiveOpen pauses between its
// existence check and the create when asked to sleep.
const DefaultRaceWindow = 5 * time.Second

// ExclusiveOpen creates path with O_WRONLY|O_CREAT|O_EXCL and mode 0600.
// The check and the create are one system call, so among concurrent
// callers naming the same path at most one succeeds; the rest get an
// error of KindAlreadyExists. The new file is closed before returning.
func ExclusiveOpen(path string) (err error) {
	fd, err := openFd(path, unix.O_WRONLY|unix.O_CREAT|unix.O_EXCL, modeOwnerRW)
	if err != nil {
		if KindOf(err) == KindAlreadyExists {
			slog.Debug("file already exists", "pid", os.Getpid(), "path", path)
		}
		return err
	}
	defer closeFd(fd, path, &err)

	slog.Debug("created file exclusively", "pid", os.Getpid(), "path", path)
	return nil
}

// BadOpenOptions controls the race window of BadExclusiveOpenWith.
type BadOpenOptions struct {
	// Window is slept between the existence check and the create.
	Window time.Duration
	// Probed, if set, is called once the check has found path absent.
	Probed func()
}

// BadExclusiveOpen is ExclusiveOpen done wrong: it checks for path with
// one open and creates it with another. With sleep set it pauses
// DefaultRaceWindow in between. Do not use it for anything but showing
// the race.
func BadExclusiveOpen(path string, sleep bool) error {
	var opts BadOpenOptions
	if sleep {
		opts.Window = DefaultRaceWindow
	}
	return BadExclusiveOpenWith(path, opts)
}

// BadExclusiveOpenWith is BadExclusiveOpen with an explicit race window.
// Another caller can create path between the check and the create; both
// then report success.
func BadExclusiveOpenWith(path string, opts BadOpenOptions) (err error) {
	pid := os.Getpid()

	probe, err := unix.Open(path, unix.O_WRONLY|unix.O_CLOEXEC, 0)
	if err == nil {
		slog.Debug("file already exists", "pid", pid, "path", path)
		if cerr := unix.Close(probe); cerr != nil {
			return wrap("close", path, cerr)
		}
		return &Error{Op: "open", Path: path, Kind: KindAlreadyExists, Err: unix.EEXIST}
	}
	if !errors.Is(err, unix.ENOENT) {
		return &Error{Op: "open", Path: path, Kind: KindOther, Err: err}
	}

	if opts.Probed != nil {
		opts.Probed()
	}
	if opts.Window > 0 {
		slog.Debug("sleeping between check and create", "pid", pid, "path", path, "window", opts.Window)
		time.Sleep(opts.Window)
	}

	fd, err := openFd(path, unix.O_WRONLY|unix.O_CREAT, modeOwnerRW)
	if err != nil {
		return err
	}
	defer closeFd(fd, path, &err)

	slog.Debug("created file exclusively", "pid", pid, "path", path)
	return nil
}
