package query

import (
	"github.com/yash/laeportal/internal/catalog"
	"github.com/yash/laeportal/internal/ontology"
	"github.com/yash/laeportal/pkg/models"
)

// ---------------------------------------------------------------------------
// Node -> record decoders
// ---------------------------------------------------------------------------

func str(n *ontology.Node, key string) string {
	v, _ := n.GetString(key)
	return v
}

func num(n *ontology.Node, key string) int {
	v, _ := n.GetInt(key)
	return v
}

func flag(n *ontology.Node, key string) bool {
	v, _ := n.GetBool(key)
	return v
}

func nodeToFlight(n *ontology.Node) models.Flight {
	return models.Flight{
		ID:          n.ID,
		Operator:    str(n, catalog.KeyOperator),
		Route:       str(n, catalog.KeyRoute),
		Origin:      str(n, catalog.KeyOrigin),
		Destination: str(n, catalog.KeyDestination),
		Status:      models.FlightStatus(str(n, catalog.KeyStatus)),
		ETA:         str(n, catalog.KeyETA),
		Aircraft:    str(n, catalog.KeyAircraft),
		Passengers:  num(n, catalog.KeyPassengers),
		Delay:       num(n, catalog.KeyDelay),
	}
}

func nodeToIncident(n *ontology.Node) models.Incident {
	return models.Incident{
		ID:          n.ID,
		Type:        models.IncidentType(str(n, catalog.KeyType)),
		Severity:    models.Severity(str(n, catalog.KeySeverity)),
		Title:       n.Name(),
		Description: str(n, catalog.KeyDescription),
		Timestamp:   str(n, catalog.KeyTimestamp),
		Location:    str(n, catalog.KeyPlace),
		Resolved:    flag(n, catalog.KeyResolved),
	}
}

func nodeToAsset(n *ontology.Node) AssetInfo {
	a := models.InfrastructureAsset{
		ID:          n.ID,
		Name:        n.Name(),
		Type:        models.AssetType(str(n, catalog.KeyType)),
		Status:      models.AssetStatus(str(n, catalog.KeyStatus)),
		Capacity:    num(n, catalog.KeyCapacity),
		CurrentLoad: num(n, catalog.KeyLoad),
		Location:    str(n, catalog.KeyPlace),
	}
	return AssetInfo{
		InfrastructureAsset: a,
		Utilization:         Utilization(a),
		OverCapacity:        a.CurrentLoad > a.Capacity,
	}
}

func nodeToOperator(n *ontology.Node) models.Operator {
	return models.Operator{
		ID:          n.ID,
		Name:        n.Name(),
		Type:        models.ServiceType(str(n, catalog.KeyType)),
		Verified:    flag(n, catalog.KeyVerified),
		SafetyScore: num(n, catalog.KeySafety),
		FleetSize:   num(n, catalog.KeyFleet),
		OnTimeRate:  num(n, catalog.KeyOnTime),
		Status:      models.OperatorStatus(str(n, catalog.KeyStatus)),
	}
}

func nodeToService(n *ontology.Node) models.Service {
	pickups, _ := n.GetList(catalog.KeyPickups)
	rating, _ := n.GetFloat(catalog.KeyRating)
	return models.Service{
		ID:          n.ID,
		Name:        n.Name(),
		Type:        models.ServiceType(str(n, catalog.KeyType)),
		Operator:    str(n, catalog.KeyOperator),
		ETARange:    str(n, catalog.KeyETARange),
		PriceRange:  str(n, catalog.KeyPriceRange),
		SafetyBadge: flag(n, catalog.KeyBadge),
		PickupNodes: append([]string(nil), pickups...),
		Rating:      rating,
		Available:   flag(n, catalog.KeyAvailable),
	}
}

func nodeToTrip(n *ontology.Node) models.Trip {
	return models.Trip{
		ID:          n.ID,
		Type:        models.TripType(str(n, catalog.KeyType)),
		Origin:      str(n, catalog.KeyOrigin),
		Destination: str(n, catalog.KeyDestination),
		Date:        str(n, catalog.KeyDate),
		Time:        str(n, catalog.KeyTime),
		Status:      models.TripStatus(str(n, catalog.KeyStatus)),
		Operator:    str(n, catalog.KeyOperator),
		Price:       num(n, catalog.KeyPrice),
		Duration:    num(n, catalog.KeyDuration),
		TimeSaved:   num(n, catalog.KeyTimeSaved),
	}
}

func nodeToStation(n *ontology.Node) models.Station {
	lat, lng, _ := n.GetLocation(ontology.KeyLocation)
	return models.Station{
		Name:     n.Name(),
		Position: models.Position{Lat: lat, Lng: lng},
		Type:     models.StationType(str(n, catalog.KeyType)),
		Status:   models.StationStatus(str(n, catalog.KeyStatus)),
	}
}
