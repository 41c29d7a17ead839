// Package server exposes the portal over HTTP: health checks, Prometheus
// metrics, the JSON API for both portal modes and the live vehicle stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/yash/laeportal/internal/catalog"
	"github.com/yash/laeportal/internal/logger"
	"github.com/yash/laeportal/internal/metrics"
	"github.com/yash/laeportal/internal/ontology"
	"github.com/yash/laeportal/internal/query"
	"github.com/yash/laeportal/internal/simulator"
	"github.com/yash/laeportal/internal/tracklog"
	"github.com/yash/laeportal/pkg/models"
)

// Version is reported by /health.
var Version = "dev"

// Config holds router settings.
type Config struct {
	DefaultMode    models.Mode
	RequestTimeout time.Duration
	CORSOrigins    []string
}

// Animator produces marker frames on demand.
type Animator interface {
	Now() time.Time
	Snapshot(now time.Time) simulator.Frame
	Metrics() *simulator.Metrics
	IsRunning() bool
}

// TrackReader returns recorded vehicle history.
type TrackReader interface {
	Track(ctx context.Context, vehicleID string, limit int) ([]tracklog.Point, error)
}

// Deps are the components the handlers read from. Tracks and Stream are
// optional.
type Deps struct {
	Data   *catalog.Dataset
	Graph  *ontology.Engine
	Query  *query.Engine
	Frames Animator
	Tracks TrackReader
	Stream http.Handler
	Log    logger.Logger
}

// Server routes portal requests.
type Server struct {
	cfg       Config
	deps      Deps
	log       logger.Logger
	router    chi.Router
	httpMu    sync.Mutex
	http      *http.Server
	ln        net.Listener
	ready     atomic.Bool
	startTime time.Time
}

// New builds the router. The server reports not-ready until SetReady(true).
func New(cfg Config, deps Deps) *Server {
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = models.ModeUser
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{cfg: cfg, deps: deps, log: log, startTime: time.Now()}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", ModeHeader},
		ExposedHeaders: []string{ModeHeader},
		MaxAge:         300,
	}))

	// Health
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/live", s.handleLive)
	r.Handle("/metrics", metrics.Handler())

	// The stream is long-lived and sits outside the request timeout.
	if s.deps.Stream != nil {
		r.Handle("/ws/vehicles", s.deps.Stream)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if s.cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		}
		r.Use(s.observe)
		r.Use(s.resolveMode)

		// Shared
		r.Get("/status", s.handleStatus)
		r.Route("/map", func(r chi.Router) {
			r.Get("/stations", s.handleStations)
			r.Get("/corridors", s.handleCorridors)
			r.Get("/zone", s.handleZone)
			r.Get("/nearest", s.handleNearest)
			r.Get("/bearing", s.handleBearing)
			r.Get("/vehicles", s.handleVehicles)
			r.Get("/vehicles/{id}", s.handleVehicle)
			r.Get("/vehicles/{id}/track", s.handleTrack)
		})

		// Passenger view
		r.Get("/services", s.handleServices)
		r.Get("/trips", s.handleTrips)
		r.Get("/trips/next", s.handleNextTrip)
		r.Get("/trips/stats", s.handleTripStats)

		// Operations view
		r.Route("/ops", func(r chi.Router) {
			r.Use(requireMode(models.ModeEnabler))
			r.Get("/flights", s.handleFlights)
			r.Get("/flights/{id}", s.handleFlightByID)
			r.Get("/incidents", s.handleIncidents)
			r.Get("/infrastructure", s.handleInfrastructure)
			r.Get("/operators", s.handleOperators)
			r.Get("/operators/{name}", s.handleOperatorByName)
			r.Get("/analytics", s.handleAnalytics)
			r.Get("/heatmap", s.handleHeatmap)
			r.Get("/summary", s.handleSummary)
			r.Get("/stats", s.handleStats)
			r.Get("/graph/nodes", s.handleGraphNodes)
			r.Get("/graph/nodes/{id}", s.handleGraphNode)
			r.Get("/graph/nodes/{id}/props/{key}", s.handleGraphNodeProp)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Router returns the configured router.
func (s *Server) Router() chi.Router { return s.router }

// SetReady flips the readiness check.
func (s *Server) SetReady(ready bool) { s.ready.Store(ready) }

// Listen binds addr and prepares the HTTP server without serving. Once it
// returns, Shutdown releases the port whether or not Serve has started.
func (s *Server) Listen(addr string, readTimeout, writeTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	s.httpMu.Lock()
	s.http, s.ln = srv, ln
	s.httpMu.Unlock()

	s.log.Info("HTTP server listening", "addr", ln.Addr().String())
	return nil
}

// Addr is the bound listener address, or "" before Listen.
func (s *Server) Addr() string {
	s.httpMu.Lock()
	defer s.httpMu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Serve accepts connections on the listener from Listen until Shutdown. It
// returns nil after a clean shutdown.
func (s *Server) Serve() error {
	s.httpMu.Lock()
	srv, ln := s.http, s.ln
	s.httpMu.Unlock()
	if srv == nil {
		return errors.New("server: Serve called before Listen")
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe is Listen followed by Serve.
func (s *Server) ListenAndServe(addr string, readTimeout, writeTimeout time.Duration) error {
	if err := s.Listen(addr, readTimeout, writeTimeout); err != nil {
		return err
	}
	return s.Serve()
}

// Shutdown gracefully stops the server and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)
	s.httpMu.Lock()
	srv, ln := s.http, s.ln
	s.httpMu.Unlock()
	if srv == nil {
		return nil
	}
	err := srv.Shutdown(ctx)
	// Serve may not have taken ownership of the listener yet.
	if cerr := ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) && err == nil {
		err = cerr
	}
	return err
}

// ---------------------------------------------------------------------------
// Health Handlers
// ---------------------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startTime).String(),
		"version":   Version,
	}
	if !s.ready.Load() {
		health["status"] = "starting"
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, health)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready.Load() {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write([]byte("not ready"))
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}

// handleStats reports graph, animation and runtime figures.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	g := s.deps.Graph
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"graph": map[string]interface{}{
			"total_nodes": g.Size(),
			"total_edges": g.EdgeCount(),
			"stations":    g.TypeCount(ontology.TypeStation),
			"assets":      g.TypeCount(ontology.TypeAsset),
			"operators":   g.TypeCount(ontology.TypeOperator),
			"flights":     g.TypeCount(ontology.TypeFlight),
			"incidents":   g.TypeCount(ontology.TypeIncident),
			"services":    g.TypeCount(ontology.TypeService),
			"trips":       g.TypeCount(ontology.TypeTrip),
		},
		"animation": map[string]interface{}{
			"running": s.deps.Frames.IsRunning(),
			"metrics": s.deps.Frames.Metrics().Snapshot(),
		},
		"memory": map[string]interface{}{
			"alloc_mb":      float64(mem.Alloc) / 1024 / 1024,
			"heap_alloc_mb": float64(mem.HeapAlloc) / 1024 / 1024,
			"sys_mb":        float64(mem.Sys) / 1024 / 1024,
			"gc_runs":       mem.NumGC,
		},
		"runtime": map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"gomaxprocs": runtime.GOMAXPROCS(0),
			"uptime":     time.Since(s.startTime).String(),
		},
	})
}
