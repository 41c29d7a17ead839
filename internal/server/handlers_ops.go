package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yash/laeportal/internal/motion"
	"github.com/yash/laeportal/internal/ontology"
	"github.com/yash/laeportal/internal/query"
	"github.com/yash/laeportal/pkg/models"
)

// ---------------------------------------------------------------------------
// Passenger Handlers
// ---------------------------------------------------------------------------

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res := s.deps.Query.Services(query.ServiceFilter{
		Type:          models.ServiceType(q.Get("type")),
		AvailableOnly: q.Get("available") == "true",
	})
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleTrips(w http.ResponseWriter, r *http.Request) {
	res := s.deps.Query.Trips(models.TripStatus(r.URL.Query().Get("status")))
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleNextTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.deps.Query.NextTrip()
	if err != nil {
		respondQueryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

func (s *Server) handleTripStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Query.TripStats())
}

// ---------------------------------------------------------------------------
// Operations Handlers
// ---------------------------------------------------------------------------

// handleFlights lists flights. ?asset= switches to the flights touching one
// asset; otherwise ?status= (comma separated), ?operator= and ?limit= filter.
func (s *Server) handleFlights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if asset := q.Get("asset"); asset != "" {
		res, err := s.deps.Query.FlightsAt(asset)
		if err != nil {
			respondQueryError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, res)
		return
	}

	f := query.FlightFilter{Operator: q.Get("operator"), Limit: 100}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		f.Limit = n
	}
	if v := q.Get("status"); v != "" {
		for _, st := range strings.Split(v, ",") {
			f.Statuses = append(f.Statuses, models.FlightStatus(strings.TrimSpace(st)))
		}
	}
	respondJSON(w, http.StatusOK, s.deps.Query.Flights(f))
}

func (s *Server) handleFlightByID(w http.ResponseWriter, r *http.Request) {
	fl, err := s.deps.Query.FlightByID(chi.URLParam(r, "id"))
	if err != nil {
		respondQueryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fl)
}

// handleIncidents lists incidents. ?asset= restricts to incidents linked to
// one asset; otherwise ?unresolved=true, ?min_severity= and ?type= filter.
func (s *Server) handleIncidents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if asset := q.Get("asset"); asset != "" {
		res, err := s.deps.Query.IncidentsAffecting(asset)
		if err != nil {
			respondQueryError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, res)
		return
	}

	f := query.IncidentFilter{
		UnresolvedOnly: q.Get("unresolved") == "true",
		Type:           models.IncidentType(q.Get("type")),
	}
	if v := q.Get("min_severity"); v != "" {
		sev := models.Severity(v)
		if sev.Rank() == 0 {
			respondError(w, http.StatusBadRequest, "min_severity must be low, medium or high")
			return
		}
		f.MinSeverity = sev
	}
	respondJSON(w, http.StatusOK, s.deps.Query.Incidents(f))
}

func (s *Server) handleInfrastructure(w http.ResponseWriter, r *http.Request) {
	res := s.deps.Query.Infrastructure(models.AssetStatus(r.URL.Query().Get("status")))
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleOperators(w http.ResponseWriter, r *http.Request) {
	res := s.deps.Query.Operators(models.OperatorStatus(r.URL.Query().Get("status")))
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleOperatorByName(w http.ResponseWriter, r *http.Request) {
	op, err := s.deps.Query.OperatorDetail(chi.URLParam(r, "name"))
	if err != nil {
		respondQueryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, op)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Data.Analytics)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	cells := motion.Heatmap(s.deps.Data.Hotspots)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"cells": cells,
		"count": len(cells),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Query.OperationsSummary())
}

// ---------------------------------------------------------------------------
// Graph Handlers
// ---------------------------------------------------------------------------

// handleGraphNodes lists the nodes of one ?type=.
func (s *Server) handleGraphNodes(w http.ResponseWriter, r *http.Request) {
	nt, ok := ontology.ParseNodeType(r.URL.Query().Get("type"))
	if !ok {
		respondError(w, http.StatusBadRequest, "type must name a node type")
		return
	}
	respondJSON(w, http.StatusOK, s.deps.Query.Nodes(nt))
}

// handleGraphNode returns one node with its edges. ?rel= (comma separated)
// keeps only those relations.
func (s *Server) handleGraphNode(w http.ResponseWriter, r *http.Request) {
	var rels []ontology.RelationType
	if v := r.URL.Query().Get("rel"); v != "" {
		for _, name := range strings.Split(v, ",") {
			rel, ok := ontology.ParseRelationType(strings.TrimSpace(name))
			if !ok {
				respondError(w, http.StatusBadRequest, "unknown relation "+strconv.Quote(name))
				return
			}
			rels = append(rels, rel)
		}
	}
	d, err := s.deps.Query.Node(chi.URLParam(r, "id"), rels...)
	if err != nil {
		respondQueryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) handleGraphNodeProp(w http.ResponseWriter, r *http.Request) {
	id, key := chi.URLParam(r, "id"), chi.URLParam(r, "key")
	v, err := s.deps.Query.NodeProp(id, key)
	if err != nil {
		respondQueryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "key": key, "value": v})
}
