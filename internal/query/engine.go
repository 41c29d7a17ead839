// Package query answers the portal's read questions against the network
// graph: which flights are active, which incidents are open, how loaded
// each asset is, what a passenger has booked.
package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/yash/laeportal/internal/catalog"
	"github.com/yash/laeportal/internal/ontology"
	"github.com/yash/laeportal/pkg/models"
)

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("not found")

// ---------------------------------------------------------------------------
// Filters
// ---------------------------------------------------------------------------

// FlightFilter selects flights. Zero fields match everything; Limit <= 0
// means no limit.
type FlightFilter struct {
	Statuses []models.FlightStatus
	Operator string
	Limit    int
}

func (f FlightFilter) match(fl models.Flight) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, fl.Status) {
		return false
	}
	return f.Operator == "" || f.Operator == fl.Operator
}

// IncidentFilter selects incidents. An empty MinSeverity or Type matches all.
type IncidentFilter struct {
	UnresolvedOnly bool
	MinSeverity    models.Severity
	Type           models.IncidentType
}

func (f IncidentFilter) match(inc models.Incident) bool {
	if f.UnresolvedOnly && inc.Resolved {
		return false
	}
	if f.Type != "" && inc.Type != f.Type {
		return false
	}
	return inc.Severity.Rank() >= f.MinSeverity.Rank()
}

// ServiceFilter selects services. An empty Type matches all.
type ServiceFilter struct {
	Type          models.ServiceType
	AvailableOnly bool
}

func (f ServiceFilter) match(s models.Service) bool {
	if f.AvailableOnly && !s.Available {
		return false
	}
	return f.Type == "" || s.Type == f.Type
}

// ---------------------------------------------------------------------------
// Results
// ---------------------------------------------------------------------------

// FlightResult holds flight query results with metadata.
type FlightResult struct {
	Flights []models.Flight `json:"flights"`
	Total   int             `json:"total"` // matches before Limit
	Elapsed time.Duration   `json:"elapsed_ns"`
}

type IncidentResult struct {
	Incidents []models.Incident `json:"incidents"`
	Elapsed   time.Duration     `json:"elapsed_ns"`
}

// AssetInfo is an infrastructure asset with its derived load figures.
type AssetInfo struct {
	models.InfrastructureAsset
	Utilization  float64 `json:"utilization"`
	OverCapacity bool    `json:"over_capacity"`
}

type AssetResult struct {
	Assets  []AssetInfo   `json:"assets"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

type OperatorResult struct {
	Operators []models.Operator `json:"operators"`
	Elapsed   time.Duration     `json:"elapsed_ns"`
}

type ServiceResult struct {
	Services []models.Service `json:"services"`
	Elapsed  time.Duration    `json:"elapsed_ns"`
}

type TripResult struct {
	Trips   []models.Trip `json:"trips"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// TripStats summarises a passenger's completed trips.
type TripStats struct {
	Completed    int           `json:"completed"`
	MinutesSaved int           `json:"minutes_saved"`
	Elapsed      time.Duration `json:"elapsed_ns"`
}

// Summary is the operations dashboard headline.
type Summary struct {
	ActiveFlights       int           `json:"active_flights"`
	DelayedFlights      int           `json:"delayed_flights"`
	UnresolvedIncidents int           `json:"unresolved_incidents"`
	HighSeverityOpen    int           `json:"high_severity_open"`
	AssetsDown          int           `json:"assets_down"` // maintenance or offline
	ActiveOperators     int           `json:"active_operators"`
	PendingOperators    int           `json:"pending_operators"`
	Elapsed             time.Duration `json:"elapsed_ns"`
}

// NearestStation is the result of a proximity lookup.
type NearestStation struct {
	Station    models.Station `json:"station"`
	DistanceKM float64        `json:"distance_km"`
	Elapsed    time.Duration  `json:"elapsed_ns"`
}

// Utilization is CurrentLoad/Capacity, or 0 for a zero-capacity asset.
func Utilization(a models.InfrastructureAsset) float64 {
	if a.Capacity <= 0 {
		return 0
	}
	return float64(a.CurrentLoad) / float64(a.Capacity)
}

// ---------------------------------------------------------------------------
// Query Engine
// ---------------------------------------------------------------------------

// Engine executes portal queries against a network graph.
type Engine struct {
	ont *ontology.Engine
}

// New creates a query engine backed by the given graph.
func New(ont *ontology.Engine) *Engine {
	return &Engine{ont: ont}
}

// collect walks every node of ntype in insertion order, decodes it and keeps
// the ones keep accepts.
func collect[T any](e *Engine, ntype ontology.NodeType, decode func(*ontology.Node) T, keep func(T) bool) []T {
	out := make([]T, 0, e.ont.TypeCount(ntype))
	e.ont.ForEachNodeOfType(ntype, func(n *ontology.Node) bool {
		v := decode(n)
		if keep == nil || keep(v) {
			out = append(out, v)
		}
		return true
	})
	return out
}

// ---------------------------------------------------------------------------
// Flights
// ---------------------------------------------------------------------------

// Flights returns the flights matching f in catalog order.
func (e *Engine) Flights(f FlightFilter) FlightResult {
	start := time.Now()
	all := collect(e, ontology.TypeFlight, nodeToFlight, f.match)
	total := len(all)
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return FlightResult{Flights: all, Total: total, Elapsed: time.Since(start)}
}

// ActiveFlights returns flights that are in the air or boarding.
func (e *Engine) ActiveFlights() FlightResult {
	return e.Flights(FlightFilter{Statuses: []models.FlightStatus{models.FlightInFlight, models.FlightBoarding}})
}

// DelayedFlights returns flights whose status is delayed.
func (e *Engine) DelayedFlights() FlightResult {
	return e.Flights(FlightFilter{Statuses: []models.FlightStatus{models.FlightDelayed}})
}

// FlightByID returns a single flight.
func (e *Engine) FlightByID(id string) (models.Flight, error) {
	n, ok := e.ont.GetNode(id)
	if !ok || n.Type != ontology.TypeFlight {
		return models.Flight{}, fmt.Errorf("flight %q: %w", id, ErrNotFound)
	}
	return nodeToFlight(&n), nil
}

// FlightsAt returns the flights departing from or arriving at the named
// asset, following graph edges.
func (e *Engine) FlightsAt(assetName string) (FlightResult, error) {
	start := time.Now()
	asset, ok := e.ont.GetByName(ontology.TypeAsset, assetName)
	if !ok {
		return FlightResult{}, fmt.Errorf("asset %q: %w", assetName, ErrNotFound)
	}

	seen := make(map[string]struct{})
	flights := []models.Flight{}
	e.ont.ForEachEdgeTo(asset.ID, func(rel ontology.RelationType, n *ontology.Node) bool {
		if rel != ontology.RelDepartsFrom && rel != ontology.RelArrivesAt {
			return true
		}
		if _, dup := seen[n.ID]; dup {
			return true
		}
		seen[n.ID] = struct{}{}
		flights = append(flights, nodeToFlight(n))
		return true
	})
	slices.SortFunc(flights, func(a, b models.Flight) int { return strings.Compare(a.ID, b.ID) })
	return FlightResult{Flights: flights, Total: len(flights), Elapsed: time.Since(start)}, nil
}

// ---------------------------------------------------------------------------
// Incidents
// ---------------------------------------------------------------------------

// Incidents returns the incidents matching f.
func (e *Engine) Incidents(f IncidentFilter) IncidentResult {
	start := time.Now()
	return IncidentResult{
		Incidents: collect(e, ontology.TypeIncident, nodeToIncident, f.match),
		Elapsed:   time.Since(start),
	}
}

// IncidentsAffecting returns incidents linked to the named asset.
func (e *Engine) IncidentsAffecting(assetName string) (IncidentResult, error) {
	start := time.Now()
	asset, ok := e.ont.GetByName(ontology.TypeAsset, assetName)
	if !ok {
		return IncidentResult{}, fmt.Errorf("asset %q: %w", assetName, ErrNotFound)
	}
	out := []models.Incident{}
	e.ont.ForEachEdgeTo(asset.ID, func(rel ontology.RelationType, n *ontology.Node) bool {
		if rel == ontology.RelAffects {
			out = append(out, nodeToIncident(n))
		}
		return true
	})
	return IncidentResult{Incidents: out, Elapsed: time.Since(start)}, nil
}

// ---------------------------------------------------------------------------
// Infrastructure and operators
// ---------------------------------------------------------------------------

// Infrastructure returns assets with the given status, or all when empty.
func (e *Engine) Infrastructure(status models.AssetStatus) AssetResult {
	start := time.Now()
	assets := collect(e, ontology.TypeAsset, nodeToAsset, func(a AssetInfo) bool {
		return status == "" || a.Status == status
	})
	return AssetResult{Assets: assets, Elapsed: time.Since(start)}
}

// Operators returns operators with the given status, or all when empty.
func (e *Engine) Operators(status models.OperatorStatus) OperatorResult {
	start := time.Now()
	ops := collect(e, ontology.TypeOperator, nodeToOperator, func(o models.Operator) bool {
		return status == "" || o.Status == status
	})
	return OperatorResult{Operators: ops, Elapsed: time.Since(start)}
}

// PendingOperators returns operators awaiting approval.
func (e *Engine) PendingOperators() OperatorResult {
	return e.Operators(models.OperatorPending)
}

// OperatorByName returns the operator with the exact name.
func (e *Engine) OperatorByName(name string) (models.Operator, error) {
	n, ok := e.ont.GetByName(ontology.TypeOperator, name)
	if !ok {
		return models.Operator{}, fmt.Errorf("operator %q: %w", name, ErrNotFound)
	}
	return nodeToOperator(&n), nil
}

// ---------------------------------------------------------------------------
// Passenger view
// ---------------------------------------------------------------------------

// Services returns the services matching f.
func (e *Engine) Services(f ServiceFilter) ServiceResult {
	start := time.Now()
	return ServiceResult{
		Services: collect(e, ontology.TypeService, nodeToService, f.match),
		Elapsed:  time.Since(start),
	}
}

// Trips returns trips with the given status, or all when empty.
func (e *Engine) Trips(status models.TripStatus) TripResult {
	start := time.Now()
	trips := collect(e, ontology.TypeTrip, nodeToTrip, func(t models.Trip) bool {
		return status == "" || t.Status == status
	})
	return TripResult{Trips: trips, Elapsed: time.Since(start)}
}

// NextTrip returns the first upcoming trip in catalog order.
func (e *Engine) NextTrip() (models.Trip, error) {
	var next models.Trip
	found := false
	e.ont.ForEachNodeOfType(ontology.TypeTrip, func(n *ontology.Node) bool {
		if models.TripStatus(str(n, catalog.KeyStatus)) == models.TripUpcoming {
			next, found = nodeToTrip(n), true
			return false
		}
		return true
	})
	if !found {
		return models.Trip{}, fmt.Errorf("upcoming trip: %w", ErrNotFound)
	}
	return next, nil
}

// TripStats counts completed trips and the minutes they saved.
func (e *Engine) TripStats() TripStats {
	start := time.Now()
	var s TripStats
	e.ont.ForEachNodeOfType(ontology.TypeTrip, func(n *ontology.Node) bool {
		t := nodeToTrip(n)
		if t.Status == models.TripCompleted {
			s.Completed++
			s.MinutesSaved += t.TimeSaved
		}
		return true
	})
	s.Elapsed = time.Since(start)
	return s
}

// ---------------------------------------------------------------------------
// Dashboard
// ---------------------------------------------------------------------------

// OperationsSummary counts what the operations dashboard headlines.
func (e *Engine) OperationsSummary() Summary {
	start := time.Now()
	var s Summary

	e.ont.ForEachNodeOfType(ontology.TypeFlight, func(n *ontology.Node) bool {
		switch models.FlightStatus(str(n, catalog.KeyStatus)) {
		case models.FlightInFlight, models.FlightBoarding:
			s.ActiveFlights++
		case models.FlightDelayed:
			s.DelayedFlights++
		}
		return true
	})
	e.ont.ForEachNodeOfType(ontology.TypeIncident, func(n *ontology.Node) bool {
		inc := nodeToIncident(n)
		if !inc.Resolved {
			s.UnresolvedIncidents++
			if inc.Severity == models.SeverityHigh {
				s.HighSeverityOpen++
			}
		}
		return true
	})
	e.ont.ForEachNodeOfType(ontology.TypeAsset, func(n *ontology.Node) bool {
		switch models.AssetStatus(str(n, catalog.KeyStatus)) {
		case models.AssetMaintenance, models.AssetOffline:
			s.AssetsDown++
		}
		return true
	})
	e.ont.ForEachNodeOfType(ontology.TypeOperator, func(n *ontology.Node) bool {
		switch models.OperatorStatus(str(n, catalog.KeyStatus)) {
		case models.OperatorActive:
			s.ActiveOperators++
		case models.OperatorPending:
			s.PendingOperators++
		}
		return true
	})

	s.Elapsed = time.Since(start)
	return s
}

// ---------------------------------------------------------------------------
// Map
// ---------------------------------------------------------------------------

// Stations returns every map station in catalog order.
func (e *Engine) Stations() []models.Station {
	return collect(e, ontology.TypeStation, nodeToStation, nil)
}

// Nearest returns the station closest to pos.
func (e *Engine) Nearest(pos models.Position) (NearestStation, error) {
	start := time.Now()
	n, dist, ok := e.ont.NearestOfType(ontology.TypeStation, pos)
	if !ok {
		return NearestStation{}, fmt.Errorf("station near %.4f,%.4f: %w", pos.Lat, pos.Lng, ErrNotFound)
	}
	return NearestStation{Station: nodeToStation(&n), DistanceKM: dist, Elapsed: time.Since(start)}, nil
}
