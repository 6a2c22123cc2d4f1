// Package workload contains the synthetic programs driven by the scopetimer
// CLI: the pipeline and compute demos and the nested-loop overhead benchmark.
package workload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Scoper opens and closes named scopes. A nil Scoper runs the workload
// uninstrumented.
type Scoper interface {
	Enter(name string) error
	Exit(name string) error
}

// ProgressFunc receives the running stage and completed/planned step counts.
type ProgressFunc func(stage string, done, total int)

func nopProgress(string, int, int) {}

func scope(s Scoper, name string, fn func() error) error {
	if s == nil {
		return fn()
	}
	if err := s.Enter(name); err != nil {
		return err
	}
	if err := fn(); err != nil {
		// keep the stack balanced even when the body failed
		return errors.Join(err, s.Exit(name))
	}
	return s.Exit(name)
}

func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil || d <= 0 {
		return err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Pipeline runs pipeline{preprocess{load_data, clean_data},
// postprocess{save_results}} with sleeps of 2, 3 and 1 times step.
func Pipeline(ctx context.Context, s Scoper, step time.Duration, progress ProgressFunc) error {
	if progress == nil {
		progress = nopProgress
	}
	const total = 3
	return scope(s, "pipeline", func() error {
		err := scope(s, "preprocess", func() error {
			progress("load_data", 0, total)
			if err := scope(s, "load_data", func() error { return sleep(ctx, 2*step) }); err != nil {
				return err
			}
			progress("clean_data", 1, total)
			return scope(s, "clean_data", func() error { return sleep(ctx, 3*step) })
		})
		if err != nil {
			return err
		}
		return scope(s, "postprocess", func() error {
			progress("save_results", 2, total)
			err := scope(s, "save_results", func() error { return sleep(ctx, step) })
			progress("save_results", total, total)
			return err
		})
	})
}

// Compute runs rounds of compute{matmul, activation} pairs, ten per round,
// with sleeps of 2 and 1 times step.
func Compute(ctx context.Context, s Scoper, rounds int, step time.Duration, progress ProgressFunc) error {
	if progress == nil {
		progress = nopProgress
	}
	const pairs = 10
	total := rounds * pairs
	for r := range rounds {
		err := scope(s, "compute", func() error {
			for i := range pairs {
				progress(fmt.Sprintf("compute %d/%d", r+1, rounds), r*pairs+i, total)
				if err := scope(s, "matmul", func() error { return sleep(ctx, 2*step) }); err != nil {
					return err
				}
				if err := scope(s, "activation", func() error { return sleep(ctx, step) }); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	progress("compute", total, total)
	return nil
}

// FanOut runs fn on n goroutines and returns the first error. Every worker
// gets its own goroutine, and therefore its own scope stack.
func FanOut(ctx context.Context, n int, fn func(ctx context.Context, worker int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for w := range max(n, 1) {
		g.Go(func() error { return fn(ctx, w) })
	}
	return g.Wait()
}
