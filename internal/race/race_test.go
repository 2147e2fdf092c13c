package race_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/fdlab/internal/race"
	"github.com/bamsammich/fdlab/internal/stats"
)

func TestRun_AtomicIsExclusive(t *testing.T) {
	t.Parallel()

	for range 20 {
		path := filepath.Join(t.TempDir(), "x")
		out, err := race.Run(context.Background(), race.Config{Path: path, Atomic: true})
		require.NoError(t, err)
		assert.Equal(t, 1, out.Created)
		assert.Equal(t, 1, out.AlreadyExists)
		assert.Zero(t, out.Failed)
		assert.True(t, out.Exclusive())
	}
}

func TestRun_RacyBothSucceed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "y")
	collector := stats.NewCollector()

	out, err := race.Run(context.Background(), race.Config{
		Path:   path,
		Window: 200 * time.Millisecond,
		Stats:  collector,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Created)
	assert.False(t, out.Exclusive())
	assert.Equal(t, int64(2), collector.Snapshot().Created)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRun_RacyExistingPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exists")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	out, err := race.Run(context.Background(), race.Config{Path: path, Window: time.Millisecond})
	require.NoError(t, err)
	assert.Zero(t, out.Created)
	assert.Equal(t, 1, out.AlreadyExists)
	assert.Equal(t, 1, out.NotStarted)
	assert.Zero(t, out.Failed)
	assert.NoError(t, out.Err)
	assert.False(t, out.Exclusive())
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	_, err := race.Run(context.Background(), race.Config{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = race.Run(ctx, race.Config{Path: filepath.Join(t.TempDir(), "z")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_MissingParentFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "no", "dir")
	out, err := race.Run(context.Background(), race.Config{Path: path, Atomic: true})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Failed)
	assert.Error(t, out.Err)
}
