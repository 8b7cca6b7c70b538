package site

import (
	"context"
	"log/slog"
	"time"
)

// BuildFunc runs one build.
type BuildFunc func(ctx context.Context, opts BuildOptions) (*BuildResult, error)

// Rebuilder coalesces change notifications into debounced rebuilds.
type Rebuilder struct {
	build    BuildFunc
	opts     BuildOptions
	debounce time.Duration
	logger   *slog.Logger
	done     func(*BuildResult, error)
	trigger  chan struct{}
}

// NewRebuilder wires a rebuilder. done, if non-nil, is called after every
// rebuild with its outcome.
func NewRebuilder(build BuildFunc, opts BuildOptions, debounce time.Duration, logger *slog.Logger, done func(*BuildResult, error)) *Rebuilder {
	return &Rebuilder{
		build:    build,
		opts:     opts,
		debounce: debounce,
		logger:   logger,
		done:     done,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests a rebuild. It never blocks; requests made while one is
// already pending are merged.
func (r *Rebuilder) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run performs rebuilds until ctx is cancelled. A failed rebuild is logged
// and reported; the previous output stays in place.
func (r *Rebuilder) Run(ctx context.Context) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case <-r.trigger:
			if timer == nil {
				timer = time.NewTimer(r.debounce)
				fire = timer.C
				continue
			}
			timer.Reset(r.debounce)

		case <-fire:
			timer, fire = nil, nil
			res, err := r.build(ctx, r.opts)
			if err != nil {
				r.logger.Error("site: rebuild failed", slog.String("error", err.Error()))
			}
			if r.done != nil {
				r.done(res, err)
			}
		}
	}
}
