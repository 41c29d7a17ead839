package catalog

import (
	"fmt"

	"github.com/yash/laeportal/internal/ontology"
	"github.com/yash/laeportal/pkg/models"
)

// Property keys written by Load. Read back by the query layer.
const (
	KeyStatus      = "status"
	KeyType        = "type"
	KeyOperator    = "operator"
	KeyRoute       = "route"
	KeyOrigin      = "origin"
	KeyDestination = "destination"
	KeyETA         = "eta"
	KeyAircraft    = "aircraft"
	KeyPassengers  = "passengers"
	KeyDelay       = "delay"
	KeySeverity    = "severity"
	KeyDescription = "description"
	KeyTimestamp   = "timestamp"
	KeyPlace       = "place"
	KeyResolved    = "resolved"
	KeyCapacity    = "capacity"
	KeyLoad        = "current_load"
	KeyVerified    = "verified"
	KeySafety      = "safety_score"
	KeyFleet       = "fleet_size"
	KeyOnTime      = "on_time_rate"
	KeyETARange    = "eta_range"
	KeyPriceRange  = "price_range"
	KeyBadge       = "safety_badge"
	KeyPickups     = "pickup_nodes"
	KeyRating      = "rating"
	KeyAvailable   = "available"
	KeyDate        = "date"
	KeyTime        = "time"
	KeyPrice       = "price"
	KeyDuration    = "duration"
	KeyTimeSaved   = "time_saved"
)

// LoadStats reports what Load put into the graph.
type LoadStats struct {
	Nodes int
	Edges int
}

// Load seeds every record of d into eng and links them:
//
//	operator -operates->     flight   (by operator name)
//	flight   -departs_from-> asset    (by origin name)
//	flight   -arrives_at->   asset    (by destination name)
//	incident -affects->      asset    (by location name)
//	operator -serves->       service  (by operator name)
//
// Names that match nothing produce no edge. Load returns an error when two
// records share an id.
func Load(eng *ontology.Engine, d *Dataset) (LoadStats, error) {
	var stats LoadStats
	seen := make(map[string]struct{})
	add := func(n ontology.Node) error {
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("catalog: duplicate %s id %q", n.Type, n.ID)
		}
		seen[n.ID] = struct{}{}
		eng.AddNode(n)
		stats.Nodes++
		return nil
	}
	link := func(from, to string, rel ontology.RelationType) {
		if eng.AddEdge(from, to, rel) {
			stats.Edges++
		}
	}

	for i, s := range d.Stations {
		if err := add(StationNode(i, s)); err != nil {
			return stats, err
		}
	}
	for _, a := range d.Infrastructure {
		if err := add(AssetNode(a)); err != nil {
			return stats, err
		}
	}
	for _, o := range d.Operators {
		if err := add(OperatorNode(o)); err != nil {
			return stats, err
		}
	}
	for _, f := range d.Flights {
		if err := add(FlightNode(f)); err != nil {
			return stats, err
		}
	}
	for _, inc := range d.Incidents {
		if err := add(IncidentNode(inc)); err != nil {
			return stats, err
		}
	}
	for _, s := range d.Services {
		if err := add(ServiceNode(s)); err != nil {
			return stats, err
		}
	}
	for _, t := range d.Trips {
		if err := add(TripNode(t)); err != nil {
			return stats, err
		}
	}

	for _, f := range d.Flights {
		if op, ok := eng.GetByName(ontology.TypeOperator, f.Operator); ok {
			link(op.ID, f.ID, ontology.RelOperates)
		}
		if a, ok := eng.GetByName(ontology.TypeAsset, f.Origin); ok {
			link(f.ID, a.ID, ontology.RelDepartsFrom)
		}
		if a, ok := eng.GetByName(ontology.TypeAsset, f.Destination); ok {
			link(f.ID, a.ID, ontology.RelArrivesAt)
		}
	}
	for _, inc := range d.Incidents {
		if a, ok := eng.GetByName(ontology.TypeAsset, inc.Location); ok {
			link(inc.ID, a.ID, ontology.RelAffects)
		}
	}
	for _, s := range d.Services {
		if op, ok := eng.GetByName(ontology.TypeOperator, s.Operator); ok {
			link(op.ID, s.ID, ontology.RelServes)
		}
	}
	return stats, nil
}

// ---------------------------------------------------------------------------
// Record -> node encoders
// ---------------------------------------------------------------------------

// StationID is the graph id of the i-th station.
func StationID(i int) string { return fmt.Sprintf("ST%02d", i+1) }

func StationNode(i int, s models.Station) ontology.Node {
	n := ontology.NewNode(StationID(i), ontology.TypeStation, s.Name)
	n.SetLocation(ontology.KeyLocation, s.Position.Lat, s.Position.Lng)
	n.SetString(KeyType, string(s.Type))
	n.SetString(KeyStatus, string(s.Status))
	return n
}

func AssetNode(a models.InfrastructureAsset) ontology.Node {
	n := ontology.NewNode(a.ID, ontology.TypeAsset, a.Name)
	n.SetString(KeyType, string(a.Type))
	n.SetString(KeyStatus, string(a.Status))
	n.SetInt(KeyCapacity, a.Capacity)
	n.SetInt(KeyLoad, a.CurrentLoad)
	n.SetString(KeyPlace, a.Location)
	return n
}

func OperatorNode(o models.Operator) ontology.Node {
	n := ontology.NewNode(o.ID, ontology.TypeOperator, o.Name)
	n.SetString(KeyType, string(o.Type))
	n.SetBool(KeyVerified, o.Verified)
	n.SetInt(KeySafety, o.SafetyScore)
	n.SetInt(KeyFleet, o.FleetSize)
	n.SetInt(KeyOnTime, o.OnTimeRate)
	n.SetString(KeyStatus, string(o.Status))
	return n
}

func FlightNode(f models.Flight) ontology.Node {
	n := ontology.NewNode(f.ID, ontology.TypeFlight, f.ID)
	n.SetString(KeyOperator, f.Operator)
	n.SetString(KeyRoute, f.Route)
	n.SetString(KeyOrigin, f.Origin)
	n.SetString(KeyDestination, f.Destination)
	n.SetString(KeyStatus, string(f.Status))
	n.SetString(KeyETA, f.ETA)
	n.SetString(KeyAircraft, f.Aircraft)
	n.SetInt(KeyPassengers, f.Passengers)
	if f.Delay != 0 {
		n.SetInt(KeyDelay, f.Delay)
	}
	return n
}

func IncidentNode(inc models.Incident) ontology.Node {
	n := ontology.NewNode(inc.ID, ontology.TypeIncident, inc.Title)
	n.SetString(KeyType, string(inc.Type))
	n.SetString(KeySeverity, string(inc.Severity))
	n.SetString(KeyDescription, inc.Description)
	n.SetString(KeyTimestamp, inc.Timestamp)
	n.SetString(KeyPlace, inc.Location)
	n.SetBool(KeyResolved, inc.Resolved)
	return n
}

func ServiceNode(s models.Service) ontology.Node {
	n := ontology.NewNode(s.ID, ontology.TypeService, s.Name)
	n.SetString(KeyType, string(s.Type))
	n.SetString(KeyOperator, s.Operator)
	n.SetString(KeyETARange, s.ETARange)
	n.SetString(KeyPriceRange, s.PriceRange)
	n.SetBool(KeyBadge, s.SafetyBadge)
	n.SetList(KeyPickups, s.PickupNodes)
	n.SetFloat(KeyRating, s.Rating)
	n.SetBool(KeyAvailable, s.Available)
	return n
}

func TripNode(t models.Trip) ontology.Node {
	n := ontology.NewNode(t.ID, ontology.TypeTrip, t.ID)
	n.SetString(KeyType, string(t.Type))
	n.SetString(KeyOrigin, t.Origin)
	n.SetString(KeyDestination, t.Destination)
	n.SetString(KeyDate, t.Date)
	n.SetString(KeyTime, t.Time)
	n.SetString(KeyStatus, string(t.Status))
	n.SetString(KeyOperator, t.Operator)
	n.SetInt(KeyPrice, t.Price)
	n.SetInt(KeyDuration, t.Duration)
	if t.TimeSaved != 0 {
		n.SetInt(KeyTimeSaved, t.TimeSaved)
	}
	return n
}
