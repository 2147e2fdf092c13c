package fileio

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Kind classifies a failure from one of the file operations.
type Kind int

const (
	KindOther Kind = iota
	KindNotFound
	KindAlreadyExists
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	default:
		return "other"
	}
}

// Sentinels for errors.Is. Any *Error of the matching kind satisfies them.
var (
	ErrNotFound      = errors.New("no such file or directory")
	ErrAlreadyExists = errors.New("file already exists")
)

// Error records a failed system call together with the path it acted on.
type Error struct {
	Op   string
	Path string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrAlreadyExists:
		return e.Kind == KindAlreadyExists
	}
	return false
}

// KindOf reports the Kind of err. Errors that are not *Error are classified
// by their errno; nil and unrecognized errors are KindOther.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return classify(err)
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, unix.ENOENT):
		return KindNotFound
	case errors.Is(err, unix.EEXIST):
		return KindAlreadyExists
	default:
		return KindOther
	}
}

func wrap(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Kind: classify(err), Err: err}
}
