package fileio

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseOp parses one inline step:
//
//	w:<text>           write text (everything after the first colon)
//	r:<n>[:text|:hex]  read n bytes, rendered as text by default
//	s:<offset>         seek to an absolute offset
//
// The long prefixes write:, read: and seek: are accepted too.
func ParseOp(tok string) (Op, error) {
	verb, arg, ok := strings.Cut(tok, ":")
	if !ok {
		return nil, fmt.Errorf("missing ':' in %q", tok)
	}

	switch strings.ToLower(verb) {
	case "w", "write":
		return Write{Data: []byte(arg)}, nil
	case "r", "read":
		countStr, modeStr, _ := strings.Cut(arg, ":")
		count, err := strconv.Atoi(countStr)
		if err != nil || count < 0 {
			return nil, fmt.Errorf("invalid read count %q", countStr)
		}
		mode, err := ParsePrintMode(modeStr)
		if err != nil {
			return nil, err
		}
		return Read{Count: count, Mode: mode}, nil
	case "s", "seek":
		off, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || off < 0 {
			return nil, fmt.Errorf("invalid seek offset %q", arg)
		}
		return Seek{Offset: off}, nil
	default:
		return nil, fmt.Errorf("unknown operation %q", verb)
	}
}

// ParsePrintMode accepts "text", "hex" or "" (text).
func ParsePrintMode(s string) (PrintMode, error) {
	switch strings.ToLower(s) {
	case "", "text", "utf8", "unicode":
		return Text, nil
	case "hex":
		return Hex, nil
	default:
		return Text, fmt.Errorf("unknown print mode %q (use text or hex)", s)
	}
}

// ParseScript parses a list of inline steps.
func ParseScript(tokens []string) (Script, error) {
	script := make(Script, 0, len(tokens))
	for i, tok := range tokens {
		op, err := ParseOp(tok)
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		script = append(script, op)
	}
	return script, nil
}

// scriptStep is the YAML form of a single step. Exactly one field is set.
type scriptStep struct {
	Write *string   `yaml:"write"`
	Read  *readStep `yaml:"read"`
	Seek  *int64    `yaml:"seek"`
}

// readStep accepts either `read: 5` or `read: {count: 5, mode: hex}`.
type readStep struct {
	Count int    `yaml:"count"`
	Mode  string `yaml:"mode"`
}

func (r *readStep) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&r.Count)
	}
	type plain readStep
	return node.Decode((*plain)(r))
}

func (st scriptStep) op() (Op, error) {
	set := 0
	var op Op
	if st.Write != nil {
		set++
		op = Write{Data: []byte(*st.Write)}
	}
	if st.Read != nil {
		set++
		if st.Read.Count < 0 {
			return nil, fmt.Errorf("invalid read count %d", st.Read.Count)
		}
		mode, err := ParsePrintMode(st.Read.Mode)
		if err != nil {
			return nil, err
		}
		op = Read{Count: st.Read.Count, Mode: mode}
	}
	if st.Seek != nil {
		set++
		if *st.Seek < 0 {
			return nil, fmt.Errorf("invalid seek offset %d", *st.Seek)
		}
		op = Seek{Offset: *st.Seek}
	}
	if set != 1 {
		return nil, errors.New("exactly one of write, read or seek is required")
	}
	return op, nil
}

// LoadScript decodes a YAML script: a sequence of single-key steps,
// write (a string), seek (an offset) or read (a count, or a map with
// count and mode).
func LoadScript(r io.Reader) (Script, error) {
	var steps []scriptStep
	if err := yaml.NewDecoder(r).Decode(&steps); err != nil {
		if errors.Is(err, io.EOF) {
			return Script{}, nil
		}
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	script := make(Script, 0, len(steps))
	for i, st := range steps {
		op, err := st.op()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		script = append(script, op)
	}
	return script, nil
}
