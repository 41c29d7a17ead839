package benchmarks

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yash/laeportal/internal/simulator"
	"github.com/yash/laeportal/internal/tracklog"
)

// ---------------------------------------------------------------------------
// Frame loop
// ---------------------------------------------------------------------------

func TestFrameLoadCatalogScale(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping load test in short mode")
	}
	fl := NewFrameLoad(5, 10, 20*time.Millisecond, 2*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats := fl.Run(ctx)
	t.Logf("frames=%d (%.1f/s) delivered=%d dropped=%d build p50=%v p99=%v",
		stats.Frames, stats.FramesPerSec, stats.Delivered, stats.Dropped, stats.BuildP50, stats.BuildP99)

	assert.GreaterOrEqual(t, stats.FramesPerSec, 40.0, "should hold 80% of a 50 fps target")
	assert.Equal(t, stats.Frames*10-stats.Dropped, stats.Delivered)
}

func TestFrameLoadLargeFleet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping load test in short mode")
	}
	fl := NewFrameLoad(1000, 25, 50*time.Millisecond, 2*time.Second)
	stats := fl.Run(context.Background())
	t.Logf("frames=%d build p99=%v dropped=%d", stats.Frames, stats.BuildP99, stats.Dropped)

	assert.Less(t, stats.BuildP99, 20*time.Millisecond, "a 1000-vehicle frame should build well inside its slot")
}

func TestSlowViewerDoesNotStallLoop(t *testing.T) {
	sim, err := simulator.New(syntheticFleet(50, 3), simulator.DefaultConfig())
	require.NoError(t, err)

	_, cancel := sim.Subscribe(1)
	defer cancel()

	now := time.Now()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			sim.Tick(now.Add(time.Duration(i) * 50 * time.Millisecond))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("tick loop blocked on a slow viewer")
	}
	assert.Equal(t, int64(499), sim.Metrics().Snapshot().Dropped)
}

// ---------------------------------------------------------------------------
// API
// ---------------------------------------------------------------------------

func TestConcurrentAPI10Workers(t *testing.T) {
	stats := NewConcurrentAPIBench().RunConcurrent(10, 100)
	t.Logf("req/s=%.0f p50=%v p95=%v p99=%v", stats.RequestsPerSec, stats.P50, stats.P95, stats.P99)

	assert.Equal(t, 1000, stats.TotalRequests)
	assert.Zero(t, stats.Failures)
}

func TestConcurrentAPI50Workers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping load test in short mode")
	}
	stats := NewConcurrentAPIBench().RunConcurrent(50, 100)
	t.Logf("req/s=%.0f p50=%v p99=%v max=%v", stats.RequestsPerSec, stats.P50, stats.P99, stats.Max)

	assert.Zero(t, stats.Failures)
	assert.Less(t, stats.P99, 50*time.Millisecond)
}

// ---------------------------------------------------------------------------
// Track log
// ---------------------------------------------------------------------------

func TestRecorderKeepsUpWithFrameLoop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping load test in short mode")
	}
	store, err := tracklog.OpenMemory()
	require.NoError(t, err)
	defer store.Close()

	sim, err := simulator.New(syntheticFleet(200, 7), simulator.Config{
		FrameInterval: 10 * time.Millisecond,
		CycleDuration: simulator.DefaultConfig().CycleDuration,
		Stagger:       simulator.DefaultConfig().Stagger,
	})
	require.NoError(t, err)

	rec, err := tracklog.NewRecorder(store, tracklog.RecorderConfig{Every: 5, Keep: 20, PruneEvery: 10}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sim.Start(ctx))
	defer sim.Stop()

	done := make(chan struct{})
	go func() {
		rec.Run(ctx, sim)
		close(done)
	}()
	<-done

	assert.Greater(t, rec.Written(), int64(10))
	n, err := store.Count(context.Background())
	require.NoError(t, err)
	// Keep plus at most PruneEvery unpruned writes per vehicle.
	assert.LessOrEqual(t, n, 200*30)
}

// ---------------------------------------------------------------------------
// Memory
// ---------------------------------------------------------------------------

func TestMemoryFootprint(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping memory test in short mode")
	}
	runtime.GC()
	before := CaptureMemoryProfile()

	fl := NewFrameLoad(1000, 10, 10*time.Millisecond, time.Second)
	fl.Run(context.Background())
	NewConcurrentAPIBench().RunConcurrent(10, 100)

	runtime.GC()
	after := CaptureMemoryProfile()
	t.Logf("heap before=%.2fMB after=%.2fMB sys=%.2fMB", before.HeapMB(), after.HeapMB(), after.SysMB())
	assert.Less(t, after.HeapMB(), 256.0)
}
