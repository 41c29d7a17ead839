package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yash/laeportal/internal/metrics"
	"github.com/yash/laeportal/pkg/models"
)

// ModeHeader carries the portal mode on requests and responses.
const ModeHeader = "X-LAE-Mode"

type ctxKey int

const modeKey ctxKey = iota

// ModeFrom returns the mode resolved for the request, or ModeUser when the
// mode middleware did not run.
func ModeFrom(ctx context.Context) models.Mode {
	if m, ok := ctx.Value(modeKey).(models.Mode); ok {
		return m
	}
	return models.ModeUser
}

// resolveMode reads the mode from the X-LAE-Mode header, falling back to
// ?mode= and then the configured default. The header wins when both are set.
func (s *Server) resolveMode(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(ModeHeader)
		if raw == "" {
			raw = r.URL.Query().Get("mode")
		}

		mode := s.cfg.DefaultMode
		if raw != "" {
			m, err := models.ParseMode(raw)
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid mode "+strconv.Quote(raw)+": must be user or enabler")
				return
			}
			mode = m
		}

		metrics.ModeRequests.WithLabelValues(string(mode)).Inc()
		w.Header().Set(ModeHeader, string(mode))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), modeKey, mode)))
	})
}

// requireMode rejects requests resolved to any other mode.
func requireMode(want models.Mode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := ModeFrom(r.Context()); got != want {
				respondError(w, http.StatusForbidden, "requires "+string(want)+" mode")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// observe records request count and latency per route pattern and logs
// each request at debug level.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		metrics.HTTPLatency.WithLabelValues(route).Observe(elapsed.Seconds())
		s.log.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"elapsed_ms", float64(elapsed.Microseconds())/1000,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
