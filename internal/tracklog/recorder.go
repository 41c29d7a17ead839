package tracklog

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/yash/laeportal/internal/logger"
	"github.com/yash/laeportal/internal/simulator"
)

// FrameSource is anything that fans out frames, normally *simulator.Simulator.
type FrameSource interface {
	Subscribe(buffer int) (<-chan simulator.Frame, func())
}

// RecorderConfig controls sampling and retention.
type RecorderConfig struct {
	// Every records one frame in Every. 20 at a 50ms frame gives 1Hz.
	Every int `koanf:"every" yaml:"every"`
	// Keep is the per-vehicle retention applied after each PruneEvery writes.
	Keep       int `koanf:"keep" yaml:"keep"`
	PruneEvery int `koanf:"prune_every" yaml:"prune_every"`
}

// DefaultRecorderConfig samples at 1Hz and keeps ten minutes per vehicle.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{Every: 20, Keep: 600, PruneEvery: 60}
}

// Validate checks the sampling settings.
func (c RecorderConfig) Validate() error {
	if c.Every < 1 {
		return fmt.Errorf("tracklog: every must be at least 1, got %d", c.Every)
	}
	if c.Keep < 1 {
		return fmt.Errorf("tracklog: keep must be at least 1, got %d", c.Keep)
	}
	if c.PruneEvery < 1 {
		return fmt.Errorf("tracklog: prune_every must be at least 1, got %d", c.PruneEvery)
	}
	return nil
}

// Recorder samples frames from a source into a Store.
type Recorder struct {
	store *Store
	cfg   RecorderConfig
	log   logger.Logger

	seen    atomic.Int64
	written atomic.Int64
}

// NewRecorder creates a recorder. A nil logger discards output.
func NewRecorder(store *Store, cfg RecorderConfig, log logger.Logger) (*Recorder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{store: store, cfg: cfg, log: log}, nil
}

// Written returns the number of frames persisted so far.
func (r *Recorder) Written() int64 { return r.written.Load() }

// Run records until ctx is done or the source closes the subscription.
// Write failures are logged and do not stop the recorder.
func (r *Recorder) Run(ctx context.Context, src FrameSource) {
	frames, cancel := src.Subscribe(4)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			r.handle(ctx, f)
		}
	}
}

func (r *Recorder) handle(ctx context.Context, f simulator.Frame) {
	n := r.seen.Add(1)
	if (n-1)%int64(r.cfg.Every) != 0 {
		return
	}

	if _, err := r.store.Record(ctx, f); err != nil {
		if ctx.Err() == nil {
			r.log.Warn("track write failed", "seq", f.Seq, "error", err)
		}
		return
	}

	w := r.written.Add(1)
	if w%int64(r.cfg.PruneEvery) == 0 {
		removed, err := r.store.Prune(ctx, r.cfg.Keep)
		if err != nil {
			r.log.Warn("track prune failed", "error", err)
			return
		}
		r.log.Debug("track log pruned", "removed", removed)
	}
}
