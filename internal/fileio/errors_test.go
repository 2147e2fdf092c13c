package fileio

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestKindOf(t *testing.T) {
	tests := map[string]struct {
		err  error
		want Kind
	}{
		"nil":             {err: nil, want: KindOther},
		"raw ENOENT":      {err: unix.ENOENT, want: KindNotFound},
		"raw EEXIST":      {err: unix.EEXIST, want: KindAlreadyExists},
		"raw EACCES":      {err: unix.EACCES, want: KindOther},
		"wrapped ENOENT":  {err: fmt.Errorf("ctx: %w", unix.ENOENT), want: KindNotFound},
		"typed error":     {err: &Error{Op: "open", Path: "/x", Kind: KindAlreadyExists, Err: unix.EEXIST}, want: KindAlreadyExists},
		"wrapped typed":   {err: fmt.Errorf("step 1: %w", wrap("open", "/x", unix.ENOENT)), want: KindNotFound},
		"unrelated error": {err: errors.New("boom"), want: KindOther},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", wrap("open", "/tmp/x", unix.EEXIST))

	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, unix.EEXIST)
	assert.ErrorIs(t, err, os.ErrExist)
}

func TestErrorString(t *testing.T) {
	err := wrap("open", "/tmp/missing", unix.ENOENT)
	assert.Equal(t, "open /tmp/missing: no such file or directory", err.Error())
	assert.Equal(t, KindNotFound, err.Kind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "other", KindOther.String())
	assert.Equal(t, "not found", KindNotFound.String())
	assert.Equal(t, "already exists", KindAlreadyExists.String())
}
