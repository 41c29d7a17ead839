// Package simulator runs the vehicle redraw loop: on every tick it computes
// one marker per vehicle and fans the frame out to subscribers.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yash/laeportal/internal/logger"
	"github.com/yash/laeportal/internal/metrics"
	"github.com/yash/laeportal/internal/motion"
	"github.com/yash/laeportal/pkg/models"
)

const (
	// DefaultFrameInterval is one redraw every 50ms.
	DefaultFrameInterval = 50 * time.Millisecond

	defaultSubscriberBuffer = 8
)

// ErrAlreadyRunning is returned by Start on a running simulator.
var ErrAlreadyRunning = errors.New("simulator already running")

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

// Config configures the redraw loop.
type Config struct {
	FrameInterval time.Duration `koanf:"frame_interval" yaml:"frame_interval"`
	CycleDuration time.Duration `koanf:"cycle_duration" yaml:"cycle_duration"`
	Stagger       float64       `koanf:"stagger" yaml:"stagger"`
}

// DefaultConfig returns a 50ms frame, 20s cycle and 0.2 stagger.
func DefaultConfig() Config {
	return Config{
		FrameInterval: DefaultFrameInterval,
		CycleDuration: motion.DefaultCycle,
		Stagger:       motion.DefaultStagger,
	}
}

// Validate rejects intervals that would stall or spin the loop.
func (c Config) Validate() error {
	if c.FrameInterval <= 0 {
		return fmt.Errorf("simulator: frame interval must be positive, got %s", c.FrameInterval)
	}
	if c.CycleDuration <= 0 {
		return fmt.Errorf("simulator: cycle duration must be positive, got %s", c.CycleDuration)
	}
	if c.Stagger < 0 {
		return fmt.Errorf("simulator: stagger must not be negative, got %v", c.Stagger)
	}
	return nil
}

func (c Config) motionConfig() motion.Config {
	return motion.Config{Cycle: c.CycleDuration, Stagger: c.Stagger}
}

// ---------------------------------------------------------------------------
// Frames
// ---------------------------------------------------------------------------

// Frame is the full marker set at one instant.
type Frame struct {
	Seq       uint64          `json:"seq"`
	Timestamp time.Time       `json:"timestamp"`
	Elapsed   time.Duration   `json:"elapsed_ns"`
	Markers   []motion.Marker `json:"markers"`
}

// Marker returns the marker for a vehicle id.
func (f Frame) Marker(vehicleID string) (motion.Marker, bool) {
	for _, m := range f.Markers {
		if m.VehicleID == vehicleID {
			return m, true
		}
	}
	return motion.Marker{}, false
}

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

// Metrics collects loop counters.
type Metrics struct {
	Frames      atomic.Int64
	Dropped     atomic.Int64
	Subscribers atomic.Int64
	LastBuildNs atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Frames      int64   `json:"frames"`
	Dropped     int64   `json:"dropped"`
	Subscribers int64   `json:"subscribers"`
	LastBuildMs float64 `json:"last_build_ms"`
}

// Snapshot returns a copy of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Frames:      m.Frames.Load(),
		Dropped:     m.Dropped.Load(),
		Subscribers: m.Subscribers.Load(),
		LastBuildMs: float64(m.LastBuildNs.Load()) / 1e6,
	}
}

// ---------------------------------------------------------------------------
// Simulator
// ---------------------------------------------------------------------------

// Clock supplies the current time. Tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Option configures a Simulator.
type Option func(*Simulator)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Simulator) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Simulator) { s.log = l }
}

type subscriber struct {
	ch   chan Frame
	once sync.Once
}

// Simulator animates a fixed vehicle list. Positions depend only on the
// time since the epoch, so every subscriber sees the same motion.
type Simulator struct {
	vehicles []models.Vehicle
	cfg      Config
	clock    Clock
	log      logger.Logger
	metrics  *Metrics
	epoch    time.Time
	seq      atomic.Uint64

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	subMu   sync.RWMutex
	subs    map[uint64]*subscriber
	nextSub uint64
}

// New creates a simulator. The animation epoch is the clock's current time.
func New(vehicles []models.Vehicle, cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		vehicles: append([]models.Vehicle(nil), vehicles...),
		cfg:      cfg,
		clock:    systemClock{},
		log:      logger.Nop(),
		metrics:  &Metrics{},
		subs:     make(map[uint64]*subscriber),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.epoch = s.clock.Now()
	return s, nil
}

// Config returns the loop configuration.
func (s *Simulator) Config() Config { return s.cfg }

// Vehicles returns a copy of the animated vehicles.
func (s *Simulator) Vehicles() []models.Vehicle {
	return append([]models.Vehicle(nil), s.vehicles...)
}

// Metrics returns the simulator's counters.
func (s *Simulator) Metrics() *Metrics { return s.metrics }

// Now reads the simulator's clock. Frames served outside the loop are
// computed at this time so they agree with published ones.
func (s *Simulator) Now() time.Time { return s.clock.Now() }

// Snapshot computes the frame for now without publishing it or advancing
// the sequence number.
func (s *Simulator) Snapshot(now time.Time) Frame {
	elapsed := now.Sub(s.epoch)
	if elapsed < 0 {
		elapsed = 0
	}
	mc := s.cfg.motionConfig()
	markers := make([]motion.Marker, len(s.vehicles))
	for i, v := range s.vehicles {
		markers[i] = motion.Animate(v, i, elapsed, mc)
	}
	return Frame{Seq: s.seq.Load(), Timestamp: now, Elapsed: elapsed, Markers: markers}
}

// Tick computes the frame for now and delivers it to every subscriber.
func (s *Simulator) Tick(now time.Time) Frame {
	start := time.Now()
	f := s.Snapshot(now)
	f.Seq = s.seq.Add(1)
	s.publish(f)

	build := time.Since(start)
	s.metrics.Frames.Add(1)
	s.metrics.LastBuildNs.Store(build.Nanoseconds())
	metrics.FramesTotal.Inc()
	metrics.FrameBuildSeconds.Observe(build.Seconds())
	return f
}

// Start begins the redraw loop. Non-blocking.
func (s *Simulator) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx, s.done)

	s.log.Info("simulator started",
		"vehicles", len(s.vehicles),
		"frame_interval", s.cfg.FrameInterval.String(),
		"cycle", s.cfg.CycleDuration.String())
	return nil
}

// Stop halts the loop and waits for it to exit. No frame is published
// after Stop returns.
func (s *Simulator) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Info("simulator stopped", "frames", s.metrics.Frames.Load())
}

// IsRunning returns whether the loop is active.
func (s *Simulator) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Simulator) run(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(s.cfg.FrameInterval)
	defer func() {
		ticker.Stop()
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(s.clock.Now())
		}
	}
}

// ---------------------------------------------------------------------------
// Fan-out
// ---------------------------------------------------------------------------

// Subscribe registers a frame consumer. buffer <= 0 uses a default size.
// A subscriber whose buffer is full misses that frame; the drop is counted.
// The returned cancel func closes the channel and is safe to call twice.
func (s *Simulator) Subscribe(buffer int) (<-chan Frame, func()) {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	sub := &subscriber{ch: make(chan Frame, buffer)}

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	s.subMu.Unlock()

	s.metrics.Subscribers.Add(1)
	metrics.Subscribers.Inc()

	cancel := func() {
		sub.once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			close(sub.ch)
			s.subMu.Unlock()
			s.metrics.Subscribers.Add(-1)
			metrics.Subscribers.Dec()
		})
	}
	return sub.ch, cancel
}

// publish holds the read lock while sending so cancel cannot close a
// channel mid-send.
func (s *Simulator) publish(f Frame) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, sub := range s.subs {
		select {
		case sub.ch <- f:
		default:
			s.metrics.Dropped.Add(1)
			metrics.FramesDropped.Inc()
		}
	}
}
