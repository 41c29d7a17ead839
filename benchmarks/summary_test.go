package benchmarks

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"testing"
	"time"
)

var (
	separator    = strings.Repeat("=", 70)
	subseparator = strings.Repeat("-", 70)
)

// TestBenchmarkSummary runs the load scenarios and prints a report.
// Run with: go test -v -run TestBenchmarkSummary -timeout=5m ./benchmarks/
func TestBenchmarkSummary(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping summary in short mode")
	}

	fmt.Println("\n" + separator)
	fmt.Println("LAE Portal Performance Summary")
	fmt.Println(separator + "\n")

	fmt.Printf("System Information:\n")
	fmt.Printf("  Go Version: %s\n", runtime.Version())
	fmt.Printf("  GOOS/GOARCH: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))

	runtime.GC()
	baseline := CaptureMemoryProfile()
	fmt.Printf("  Heap baseline: %.2f MB\n\n", baseline.HeapMB())

	fmt.Println(subseparator)
	fmt.Println("1. FRAME LOOP (50ms target)")
	fmt.Println(subseparator)
	for _, fleet := range []int{5, 100, 1000} {
		fl := NewFrameLoad(fleet, 10, 50*time.Millisecond, 2*time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		stats := fl.Run(ctx)
		cancel()

		fmt.Printf("\n  Vehicles: %d, viewers: 10\n", fleet)
		fmt.Printf("    Frames/sec: %.1f\n", stats.FramesPerSec)
		fmt.Printf("    Build P50/P99: %v / %v\n", stats.BuildP50, stats.BuildP99)
		fmt.Printf("    Delivered: %d, dropped: %d\n", stats.Delivered, stats.Dropped)
		fmt.Printf("    Status: %s\n", passFailStr(stats.BuildP99 < 50*time.Millisecond))
	}

	fmt.Println("\n" + subseparator)
	fmt.Println("2. CONCURRENT API REQUESTS")
	fmt.Println(subseparator)
	for _, workers := range []int{10, 25, 50} {
		stats := NewConcurrentAPIBench().RunConcurrent(workers, 100)

		fmt.Printf("\n  Workers: %d (100 requests each)\n", workers)
		fmt.Printf("    Requests/sec: %.0f\n", stats.RequestsPerSec)
		fmt.Printf("    P50/P95/P99: %v / %v / %v\n", stats.P50, stats.P95, stats.P99)
		fmt.Printf("    Failures: %d\n", stats.Failures)
		fmt.Printf("    Status: %s\n", passFailStr(stats.Failures == 0 && stats.P99 < 50*time.Millisecond))
	}

	runtime.GC()
	final := CaptureMemoryProfile()
	fmt.Println("\n" + subseparator)
	fmt.Println("3. MEMORY")
	fmt.Println(subseparator)
	fmt.Printf("  Heap: %.2f MB (baseline %.2f MB)\n", final.HeapMB(), baseline.HeapMB())
	fmt.Printf("  Sys: %.2f MB\n", final.SysMB())
	fmt.Println("\n" + separator)
}

func passFailStr(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}
