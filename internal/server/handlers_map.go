package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yash/laeportal/internal/motion"
	"github.com/yash/laeportal/internal/tracklog"
	"github.com/yash/laeportal/pkg/models"
)

// ---------------------------------------------------------------------------
// Shared Handlers
// ---------------------------------------------------------------------------

type statusResponse struct {
	models.SystemStatus
	Mode models.Mode `json:"mode"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, statusResponse{
		SystemStatus: s.deps.Data.Status,
		Mode:         ModeFrom(r.Context()),
	})
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	stations := s.deps.Query.Stations()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stations": stations,
		"count":    len(stations),
	})
}

func (s *Server) handleCorridors(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"corridors": s.deps.Data.Corridors,
		"count":     len(s.deps.Data.Corridors),
	})
}

func (s *Server) handleZone(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Data.Zone)
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	pos, err := latLngParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.deps.Query.Nearest(pos)
	if err != nil {
		respondQueryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"station":     res.Station,
		"distance_km": res.DistanceKM,
		"in_zone":     motion.InZone(s.deps.Data.Zone, pos),
		"elapsed":     res.Elapsed.String(),
	})
}

type bearingResponse struct {
	From       models.Position `json:"from"`
	To         models.Position `json:"to"`
	Progress   float64         `json:"progress"`
	Bearing    float64         `json:"bearing"`
	Defined    bool            `json:"defined"`
	Position   models.Position `json:"position"`
	DistanceKM float64         `json:"distance_km"`
}

// handleBearing evaluates the route math for an arbitrary pair of points.
// progress defaults to 0 and is not clamped.
func (s *Server) handleBearing(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := models.ParsePosition(q.Get("from"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "from: "+err.Error())
		return
	}
	to, err := models.ParsePosition(q.Get("to"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "to: "+err.Error())
		return
	}
	var progress float64
	if v := q.Get("progress"); v != "" {
		progress, err = strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(progress) || math.IsInf(progress, 0) {
			respondError(w, http.StatusBadRequest, "progress must be a finite number")
			return
		}
	}

	respondJSON(w, http.StatusOK, bearingResponse{
		From:       from,
		To:         to,
		Progress:   progress,
		Bearing:    motion.Bearing(from, to),
		Defined:    motion.Defined(from, to),
		Position:   motion.Interpolate(from, to, progress),
		DistanceKM: motion.DistanceKM(from, to),
	})
}

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Frames.Snapshot(s.deps.Frames.Now()))
}

func (s *Server) handleVehicle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, ok := s.deps.Frames.Snapshot(s.deps.Frames.Now()).Marker(id)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("vehicle %q not found", id))
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.deps.Data.Vehicle(id); !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("vehicle %q not found", id))
		return
	}
	if s.deps.Tracks == nil {
		respondError(w, http.StatusNotFound, "track recording is disabled")
		return
	}

	limit := tracklog.DefaultTrackLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	points, err := s.deps.Tracks.Track(r.Context(), id, limit)
	if err != nil {
		s.log.Error("track query failed", "vehicle", id, "error", err)
		respondError(w, http.StatusInternalServerError, "track query failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"vehicle_id": id,
		"points":     points,
		"count":      len(points),
	})
}

// ---------------------------------------------------------------------------
// Parameter parsing
// ---------------------------------------------------------------------------

func latLngParams(r *http.Request) (models.Position, error) {
	q := r.URL.Query()
	return models.ParseLatLng(q.Get("lat"), q.Get("lng"))
}
