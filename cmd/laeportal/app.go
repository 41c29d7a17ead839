package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yash/laeportal/internal/catalog"
	"github.com/yash/laeportal/internal/config"
	"github.com/yash/laeportal/internal/logger"
	"github.com/yash/laeportal/internal/metrics"
	"github.com/yash/laeportal/internal/ontology"
	"github.com/yash/laeportal/internal/query"
	"github.com/yash/laeportal/internal/server"
	"github.com/yash/laeportal/internal/simulator"
	"github.com/yash/laeportal/internal/stream"
	"github.com/yash/laeportal/internal/tracklog"
)

// App holds all application components.
type App struct {
	cfg *config.Config
	log logger.Logger

	data     *catalog.Dataset
	graph    *ontology.Engine
	query    *query.Engine
	sim      *simulator.Simulator
	hub      *stream.Hub
	server   *server.Server
	tracks   *tracklog.Store
	recorder *tracklog.Recorder

	recorderDone sync.WaitGroup
	startTime    time.Time
}

// NewApp wires every component from cfg. Nothing runs until Run.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	cfg.Runtime.Apply()

	graph := ontology.New(
		ontology.WithCapacity(cfg.Runtime.GraphCapacity()),
		ontology.WithNodeAddedCallback(func(string) { metrics.GraphNodes.Inc() }),
	)

	data := catalog.Default()
	stats, err := catalog.Load(graph, data)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	metrics.GraphEdges.Set(float64(graph.EdgeCount()))
	log.Info("network graph loaded", "nodes", stats.Nodes, "edges", stats.Edges)

	sim, err := simulator.New(data.Vehicles, cfg.Simulator, simulator.WithLogger(log.With("component", "simulator")))
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		log:       log,
		data:      data,
		graph:     graph,
		query:     query.New(graph),
		sim:       sim,
		hub:       stream.NewHub(sim, log.With("component", "stream")),
		startTime: time.Now(),
	}

	deps := server.Deps{
		Data:   data,
		Graph:  graph,
		Query:  a.query,
		Frames: sim,
		Stream: a.hub,
		Log:    log.With("component", "http"),
	}

	if cfg.Track.Enabled {
		a.tracks, err = tracklog.Open(cfg.Track.Path)
		if err != nil {
			return nil, err
		}
		a.recorder, err = tracklog.NewRecorder(a.tracks, cfg.Track.Recorder, log.With("component", "tracklog"))
		if err != nil {
			a.tracks.Close()
			return nil, err
		}
		deps.Tracks = a.tracks
		log.Info("track recording enabled", "path", cfg.Track.Path, "every", cfg.Track.Recorder.Every)
	}

	a.server = server.New(server.Config{
		DefaultMode:    cfg.Mode(),
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSOrigins:    cfg.Server.CORSOrigins,
	}, deps)

	return a, nil
}

// Run starts the frame loop, the recorder and the HTTP server, and blocks
// until ctx is cancelled or the listener fails.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("LAE portal starting",
		"addr", a.cfg.Server.Addr,
		"default_mode", a.cfg.DefaultMode,
		"frame_interval", a.cfg.Simulator.FrameInterval.String(),
		"profile", a.cfg.Runtime.Profile)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.sim.Start(ctx); err != nil {
		return err
	}

	if a.recorder != nil {
		a.recorderDone.Add(1)
		go func() {
			defer a.recorderDone.Done()
			a.recorder.Run(ctx, a.sim)
		}()
	}

	if err := a.server.Listen(a.cfg.Server.Addr, a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout); err != nil {
		a.log.Error("HTTP server failed", "error", err)
		cancel()
		a.Shutdown()
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Serve()
	}()

	a.server.SetReady(true)
	a.log.Info("LAE portal ready",
		"stations", a.graph.TypeCount(ontology.TypeStation),
		"vehicles", len(a.data.Vehicles))

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
	case runErr = <-errCh:
		a.log.Error("HTTP server failed", "error", runErr)
	}
	cancel()

	if err := a.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown stops accepting requests, closes streams, stops the frame loop
// and closes the track log.
func (a *App) Shutdown() error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var firstErr error
	if err := a.server.Shutdown(ctx); err != nil {
		a.log.Warn("HTTP server shutdown error", "error", err)
		firstErr = err
	}
	a.hub.Close()
	a.sim.Stop()

	a.recorderDone.Wait()
	if a.tracks != nil {
		if err := a.tracks.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	a.log.Info("LAE portal stopped",
		"uptime", time.Since(a.startTime).String(),
		"frames", a.sim.Metrics().Snapshot().Frames)
	return firstErr
}
