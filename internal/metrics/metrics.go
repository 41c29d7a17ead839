// Package metrics declares the portal's Prometheus metrics. All metrics are
// registered on the default registry at init and exposed by Handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "laeportal"

// ---------------------------------------------------------------------------
// Pre-defined Application Metrics
// ---------------------------------------------------------------------------

var (
	// Animation metrics
	FramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_total",
		Help:      "Animation frames computed",
	})
	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_dropped_total",
		Help:      "Frames not delivered to a slow subscriber",
	})
	FrameBuildSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "frame_build_seconds",
		Help:      "Time to compute and fan out one frame",
		Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})
	Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_subscribers",
		Help:      "Active frame subscribers",
	})

	// Graph metrics
	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "graph_nodes",
		Help:      "Nodes in the network graph",
	})
	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "graph_edges",
		Help:      "Edges in the network graph",
	})

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_latency_seconds",
		Help:      "HTTP request latency",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"route"})
	ModeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mode_requests_total",
		Help:      "API requests by resolved portal mode",
	}, []string{"mode"})

	// Stream and storage metrics
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections",
		Help:      "Open WebSocket connections",
	})
	TrackRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "track_rows_total",
		Help:      "Marker rows written to the track log",
	})
	TrackErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "track_errors_total",
		Help:      "Failed track log writes",
	})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
