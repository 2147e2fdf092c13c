// Package race pits two callers against each other creating the same
// path, to show which exclusive-create variant holds up.
package race

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bamsammich/fdlab/internal/fileio"
	"github.com/bamsammich/fdlab/internal/stats"
)

// DefaultWindow is the racy variant's pause between check and create.
const DefaultWindow = 500 * time.Millisecond

// Config describes one race.
type Config struct {
	Path string
	// Atomic selects ExclusiveOpen; otherwise BadExclusiveOpen is raced.
	Atomic bool
	// Window is how long the first racy caller sleeps after its check.
	Window time.Duration
	Stats  *stats.Collector
}

// ErrNotStarted is recorded for the second racy caller when the first
// caller's check failed, leaving no window to race into.
var ErrNotStarted = errors.New("caller not started")

// Outcome aggregates what the two callers saw.
type Outcome struct {
	Created       int
	AlreadyExists int
	Failed        int
	NotStarted    int
	Err           error
}

// Exclusive reports whether exactly one caller created the file.
func (o Outcome) Exclusive() bool {
	return o.Created == 1 && o.AlreadyExists == 1
}

func (o *Outcome) record(err error, st *stats.Collector) {
	switch {
	case errors.Is(err, ErrNotStarted):
		o.NotStarted++
	case err == nil:
		o.Created++
		st.AddCreated(1)
	case fileio.KindOf(err) == fileio.KindAlreadyExists:
		o.AlreadyExists++
		st.AddAlreadyExists(1)
	default:
		o.Failed++
		st.AddFailed(1)
		o.Err = errors.Join(o.Err, err)
	}
}

// Run races two callers on cfg.Path, which should not exist yet.
//
// Atomic: both call ExclusiveOpen at the same moment. Racy: the first
// calls BadExclusiveOpen with a sleep after its check, and the second
// starts as soon as that check has found the path absent.
func Run(ctx context.Context, cfg Config) (Outcome, error) {
	if cfg.Path == "" {
		return Outcome{}, errors.New("race: empty path")
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	var results [2]error
	var err error
	if cfg.Atomic {
		results = runAtomic(cfg.Path)
	} else {
		results, err = runRacy(ctx, cfg)
		if err != nil {
			return Outcome{}, err
		}
	}

	var out Outcome
	for _, r := range results {
		out.record(r, cfg.Stats)
	}
	slog.Debug("race finished", "path", cfg.Path, "atomic", cfg.Atomic,
		"created", out.Created, "exists", out.AlreadyExists, "failed", out.Failed,
		"not_started", out.NotStarted)
	return out, nil
}

func runAtomic(path string) [2]error {
	var results [2]error
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results[i] = fileio.ExclusiveOpen(path)
		}()
	}
	close(start)
	wg.Wait()
	return results
}

func runRacy(ctx context.Context, cfg Config) ([2]error, error) {
	var results [2]error
	window := cfg.Window
	if window <= 0 {
		window = DefaultWindow
	}

	probed := make(chan struct{})
	slowDone := make(chan struct{})
	go func() {
		defer close(slowDone)
		results[0] = fileio.BadExclusiveOpenWith(cfg.Path, fileio.BadOpenOptions{
			Window: window,
			Probed: func() { close(probed) },
		})
	}()

	select {
	case <-probed:
	case <-slowDone:
		if !isClosed(probed) {
			results[1] = ErrNotStarted
			return results, nil
		}
	case <-ctx.Done():
		<-slowDone
		return results, ctx.Err()
	}

	results[1] = fileio.BadExclusiveOpenWith(cfg.Path, fileio.BadOpenOptions{})
	<-slowDone
	return results, nil
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
