package fileio

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/bamsammich/fdlab/internal/stats"
)

// PrintMode selects how a Read step renders the bytes it got.
type PrintMode int

const (
	Text PrintMode = iota
	Hex
)

func (m PrintMode) String() string {
	switch m {
	case Text:
		return "text"
	case Hex:
		return "hex"
	default:
		return "unknown"
	}
}

// Op is one step of a Script: Write, Read or Seek.
type Op interface {
	apply(s *session) error
	String() string
}

// Write writes Data at the current offset with a single write(2).
type Write struct {
	Data []byte
}

// Read reads up to Count bytes at the current offset and renders them.
type Read struct {
	Count int
	Mode  PrintMode
}

// Seek moves the offset to Offset bytes from the start of the file.
// Offsets past EOF are allowed; a later Write leaves a hole behind.
type Seek struct {
	Offset int64
}

// Script is an ordered list of operations run against one descriptor.
type Script []Op

func (s Script) String() string {
	parts := make([]string, len(s))
	for i, op := range s {
		parts[i] = op.String()
	}
	return strings.Join(parts, " ")
}

// Runner executes scripts. Diag receives the human-readable observations;
// failures writing to it are ignored.
type Runner struct {
	Diag  io.Writer
	Stats *stats.Collector
}

type session struct {
	fd    int
	path  string
	diag  io.Writer
	stats *stats.Collector
}

// SeekIO opens path read-write (creating it if absent) and runs script
// against it, writing observations to diag.
func SeekIO(path string, script Script, diag io.Writer) error {
	return Runner{Diag: diag}.Run(path, script)
}

// Run opens path with O_RDWR|O_CREAT and applies each operation in order.
// The descriptor is closed afterwards; a close failure is returned.
func (r Runner) Run(path string, script Script) (err error) {
	fd, err := openFd(path, unix.O_RDWR|unix.O_CREAT, modeAll)
	if err != nil {
		return err
	}
	defer closeFd(fd, path, &err)

	diag := r.Diag
	if diag == nil {
		diag = io.Discard
	}
	s := &session{fd: fd, path: path, diag: diag, stats: r.Stats}

	for i, op := range script {
		slog.Debug("script step", "path", path, "step", i, "op", op.String())
		if err := op.apply(s); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, op, err)
		}
	}
	return nil
}

func (w Write) apply(s *session) error {
	n, err := unix.Write(s.fd, w.Data)
	if err != nil {
		return wrap("write", s.path, err)
	}
	s.stats.AddWrites(1)
	fmt.Fprintf(s.diag, "wrote %d bytes\n", n)
	return nil
}

func (w Write) String() string {
	return "w:" + string(w.Data)
}

func (r Read) apply(s *session) error {
	if r.Count < 0 {
		return &Error{Op: "read", Path: s.path, Kind: KindOther, Err: unix.EINVAL}
	}
	buf := make([]byte, r.Count)
	n, err := readFd(s.fd, s.path, buf)
	if err != nil {
		return err
	}
	s.stats.AddReads(1)
	if n == 0 {
		fmt.Fprintln(s.diag, "EOF")
		return nil
	}
	fmt.Fprintln(s.diag, render(buf[:n], r.Mode))
	return nil
}

func (r Read) String() string {
	return fmt.Sprintf("r:%d:%s", r.Count, r.Mode)
}

func (k Seek) apply(s *session) error {
	if _, err := seekFd(s.fd, s.path, k.Offset, io.SeekStart); err != nil {
		return err
	}
	s.stats.AddSeeks(1)
	fmt.Fprintf(s.diag, "seek to %d succeeded.\n", k.Offset)
	return nil
}

func (k Seek) String() string {
	return fmt.Sprintf("s:%d", k.Offset)
}

// render formats the bytes actually read. Invalid UTF-8 in text mode is
// replaced with U+FFFD.
func render(data []byte, mode PrintMode) string {
	if mode == Hex {
		return HexDump(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}

// HexDump formats data as [0x61, 0x62, ...].
func HexDump(data []byte) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, c := range data {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "0x%02X", c)
	}
	b.WriteByte(']')
	return b.String()
}
