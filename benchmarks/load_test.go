package benchmarks

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yash/laeportal/internal/catalog"
	"github.com/yash/laeportal/internal/ontology"
	"github.com/yash/laeportal/internal/query"
	"github.com/yash/laeportal/internal/server"
	"github.com/yash/laeportal/internal/simulator"
	"github.com/yash/laeportal/pkg/models"
)

// ---------------------------------------------------------------------------
// Frame Load - drives the animation loop with many vehicles and viewers
// ---------------------------------------------------------------------------

// syntheticFleet scatters n vehicles across the service zone.
func syntheticFleet(n int, seed int64) []models.Vehicle {
	rng := rand.New(rand.NewSource(seed))
	types := []models.VehicleType{models.VehicleAirTaxi, models.VehicleDrone, models.VehicleCargoDrone}
	jitter := func() models.Position {
		return models.Position{
			Lat: 22.30 + (rng.Float64()-0.5)*0.14,
			Lng: 114.17 + (rng.Float64()-0.5)*0.14,
		}
	}

	fleet := make([]models.Vehicle, n)
	for i := range fleet {
		fleet[i] = models.Vehicle{
			ID:   fmt.Sprintf("SV-%05d", i),
			Type: types[i%len(types)],
			From: jitter(),
			To:   jitter(),
		}
	}
	return fleet
}

// FrameLoad ticks a simulator at a fixed rate while viewers drain frames.
type FrameLoad struct {
	sim      *simulator.Simulator
	viewers  int
	interval time.Duration
	duration time.Duration

	received atomic.Int64
	builds   []time.Duration
}

// NewFrameLoad builds a simulator over vehicles synthetic vehicles.
func NewFrameLoad(vehicles, viewers int, interval, duration time.Duration) *FrameLoad {
	sim, err := simulator.New(syntheticFleet(vehicles, 42), simulator.DefaultConfig())
	if err != nil {
		panic(err)
	}
	return &FrameLoad{
		sim:      sim,
		viewers:  viewers,
		interval: interval,
		duration: duration,
		builds:   make([]time.Duration, 0, int(duration/interval)+1),
	}
}

// Run ticks until the duration elapses or ctx is cancelled.
func (fl *FrameLoad) Run(ctx context.Context) FrameStats {
	var wg sync.WaitGroup
	cancels := make([]func(), 0, fl.viewers)
	for i := 0; i < fl.viewers; i++ {
		ch, cancel := fl.sim.Subscribe(8)
		cancels = append(cancels, cancel)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range ch {
				fl.received.Add(1)
			}
		}()
	}

	ticker := time.NewTicker(fl.interval)
	defer ticker.Stop()
	deadline := time.After(fl.duration)
	start := time.Now()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-deadline:
			break loop
		case now := <-ticker.C:
			t := time.Now()
			fl.sim.Tick(now)
			fl.builds = append(fl.builds, time.Since(t))
		}
	}

	for _, cancel := range cancels {
		cancel()
	}
	wg.Wait()
	return fl.stats(time.Since(start))
}

func (fl *FrameLoad) stats(elapsed time.Duration) FrameStats {
	snap := fl.sim.Metrics().Snapshot()
	p := percentiles(fl.builds)
	return FrameStats{
		Frames:       snap.Frames,
		Delivered:    fl.received.Load(),
		Dropped:      snap.Dropped,
		FramesPerSec: float64(snap.Frames) / elapsed.Seconds(),
		Duration:     elapsed,
		BuildP50:     p.P50,
		BuildP99:     p.P99,
	}
}

// FrameStats summarises a frame load run.
type FrameStats struct {
	Frames       int64
	Delivered    int64
	Dropped      int64
	FramesPerSec float64
	Duration     time.Duration
	BuildP50     time.Duration
	BuildP99     time.Duration
}

// ---------------------------------------------------------------------------
// Concurrent API Benchmark
// ---------------------------------------------------------------------------

// ConcurrentAPIBench sends parallel requests through the portal router.
type ConcurrentAPIBench struct {
	handler http.Handler

	latencies []time.Duration
	latencyMu sync.Mutex
	failures  atomic.Int64
}

// apiRequest is one entry in the request rotation.
type apiRequest struct {
	path string
	mode models.Mode
}

var apiRotation = []apiRequest{
	{"/api/v1/map/vehicles", models.ModeUser},
	{"/api/v1/map/stations", models.ModeUser},
	{"/api/v1/map/nearest?lat=22.2855&lng=114.1577", models.ModeUser},
	{"/api/v1/map/bearing?from=22.3080,113.9185&to=22.2855,114.1577&progress=0.4", models.ModeUser},
	{"/api/v1/trips/next", models.ModeUser},
	{"/api/v1/services?available=true", models.ModeUser},
	{"/api/v1/ops/flights?status=delayed,in-flight", models.ModeEnabler},
	{"/api/v1/ops/incidents?unresolved=true", models.ModeEnabler},
	{"/api/v1/ops/heatmap", models.ModeEnabler},
	{"/api/v1/ops/summary", models.ModeEnabler},
}

// NewConcurrentAPIBench wires the catalog into a router.
func NewConcurrentAPIBench() *ConcurrentAPIBench {
	data := catalog.Default()
	graph := ontology.New()
	if _, err := catalog.Load(graph, data); err != nil {
		panic(err)
	}
	sim, err := simulator.New(data.Vehicles, simulator.DefaultConfig())
	if err != nil {
		panic(err)
	}

	srv := server.New(server.Config{}, server.Deps{
		Data:   data,
		Graph:  graph,
		Query:  query.New(graph),
		Frames: sim,
	})
	return &ConcurrentAPIBench{
		handler:   srv.Router(),
		latencies: make([]time.Duration, 0, 10000),
	}
}

// RunConcurrent issues requestsPerWorker requests from each worker.
func (b *ConcurrentAPIBench) RunConcurrent(workers, requestsPerWorker int) ConcurrentStats {
	var wg sync.WaitGroup
	start := time.Now()

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < requestsPerWorker; i++ {
				ar := apiRotation[(worker+i)%len(apiRotation)]
				req := httptest.NewRequest(http.MethodGet, ar.path, nil)
				req.Header.Set(server.ModeHeader, string(ar.mode))
				rec := httptest.NewRecorder()

				t := time.Now()
				b.handler.ServeHTTP(rec, req)
				d := time.Since(t)

				if rec.Code != http.StatusOK {
					b.failures.Add(1)
				}
				b.latencyMu.Lock()
				b.latencies = append(b.latencies, d)
				b.latencyMu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	total := workers * requestsPerWorker
	elapsed := time.Since(start)

	b.latencyMu.Lock()
	defer b.latencyMu.Unlock()
	stats := percentiles(b.latencies)
	stats.TotalRequests = total
	stats.Failures = b.failures.Load()
	stats.TotalTime = elapsed
	stats.RequestsPerSec = float64(total) / elapsed.Seconds()
	return stats
}

// ConcurrentStats holds latency percentiles for a run.
type ConcurrentStats struct {
	TotalRequests  int
	Failures       int64
	TotalTime      time.Duration
	RequestsPerSec float64
	P50            time.Duration
	P95            time.Duration
	P99            time.Duration
	Min            time.Duration
	Max            time.Duration
	Avg            time.Duration
}

func percentiles(samples []time.Duration) ConcurrentStats {
	if len(samples) == 0 {
		return ConcurrentStats{}
	}
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, s := range sorted {
		total += s
	}
	return ConcurrentStats{
		P50: sorted[len(sorted)*50/100],
		P95: sorted[len(sorted)*95/100],
		P99: sorted[len(sorted)*99/100],
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: total / time.Duration(len(sorted)),
	}
}

// ---------------------------------------------------------------------------
// Memory Profile
// ---------------------------------------------------------------------------

// MemoryProfile captures memory usage at a point in time.
type MemoryProfile struct {
	Alloc       uint64
	Sys         uint64
	HeapAlloc   uint64
	HeapObjects uint64
	NumGC       uint32
}

// CaptureMemoryProfile returns current memory statistics.
func CaptureMemoryProfile() MemoryProfile {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryProfile{
		Alloc:       m.Alloc,
		Sys:         m.Sys,
		HeapAlloc:   m.HeapAlloc,
		HeapObjects: m.HeapObjects,
		NumGC:       m.NumGC,
	}
}

func (mp MemoryProfile) HeapMB() float64 { return float64(mp.HeapAlloc) / 1024 / 1024 }
func (mp MemoryProfile) SysMB() float64  { return float64(mp.Sys) / 1024 / 1024 }

// ---------------------------------------------------------------------------
// Benchmarks
// ---------------------------------------------------------------------------

func BenchmarkTick(b *testing.B) {
	for _, n := range []int{5, 100, 1000} {
		b.Run(fmt.Sprintf("vehicles=%d", n), func(b *testing.B) {
			sim, err := simulator.New(syntheticFleet(n, 1), simulator.DefaultConfig())
			if err != nil {
				b.Fatal(err)
			}
			now := time.Now()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				sim.Tick(now.Add(time.Duration(i) * time.Millisecond))
			}
		})
	}
}

func BenchmarkTickFanOut(b *testing.B) {
	sim, err := simulator.New(syntheticFleet(100, 1), simulator.DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		ch, cancel := sim.Subscribe(64)
		defer cancel()
		go func() {
			for range ch {
			}
		}()
	}

	now := time.Now()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sim.Tick(now.Add(time.Duration(i) * time.Millisecond))
	}
	b.StopTimer()
}

func BenchmarkConcurrentAPI10Workers(b *testing.B) {
	for i := 0; i < b.N; i++ {
		stats := NewConcurrentAPIBench().RunConcurrent(10, 100)
		b.ReportMetric(stats.RequestsPerSec, "req/s")
		b.ReportMetric(float64(stats.P99.Microseconds()), "p99_us")
	}
}

func BenchmarkConcurrentAPI50Workers(b *testing.B) {
	for i := 0; i < b.N; i++ {
		stats := NewConcurrentAPIBench().RunConcurrent(50, 100)
		b.ReportMetric(stats.RequestsPerSec, "req/s")
		b.ReportMetric(float64(stats.P99.Microseconds()), "p99_us")
	}
}
