// Package catalog holds the portal's fixed dataset: the operations records
// shown to enablers, the bookings shown to users and the map layer the
// vehicle animation runs over. Load seeds it into the network graph.
package catalog

import "github.com/yash/laeportal/pkg/models"

// Dataset is one complete copy of the catalog. Default returns a fresh copy
// each call so callers may mutate it freely.
type Dataset struct {
	Flights        []models.Flight
	Incidents      []models.Incident
	Infrastructure []models.InfrastructureAsset
	Operators      []models.Operator
	Trips          []models.Trip
	Services       []models.Service
	Status         models.SystemStatus
	Analytics      models.Analytics

	Stations  []models.Station
	Vehicles  []models.Vehicle
	Corridors []models.Corridor
	Hotspots  []models.Hotspot
	Zone      models.ServiceZone
}

// Map anchors shared by stations, vehicles and corridors.
var (
	centralHelipad   = models.Position{Lat: 22.2855, Lng: 114.1577}
	westKowloon      = models.Position{Lat: 22.3048, Lng: 114.1614}
	tsimShaTsui      = models.Position{Lat: 22.2988, Lng: 114.1722}
	hongKongAirport  = models.Position{Lat: 22.3080, Lng: 113.9185}
	victoriaPeak     = models.Position{Lat: 22.2759, Lng: 114.1455}
	shaTinDepot      = models.Position{Lat: 22.3874, Lng: 114.1952}
	tseungKwanO      = models.Position{Lat: 22.3153, Lng: 114.2649}
	serviceZoneFocus = models.Position{Lat: 22.30, Lng: 114.17}
)

// Default returns the built-in dataset.
func Default() *Dataset {
	return &Dataset{
		Flights: []models.Flight{
			{ID: "FL001", Operator: "SkyLink HK", Route: "Central → Kowloon", Origin: "Central Station Pad", Destination: "Kowloon Bay Vertiport", Status: models.FlightInFlight, ETA: "14:25", Aircraft: "eVTOL-200", Passengers: 4},
			{ID: "FL002", Operator: "AeroCab", Route: "Airport → Tsim Sha Tsui", Origin: "HKIA Terminal 1", Destination: "TST Rooftop", Status: models.FlightBoarding, ETA: "14:45", Aircraft: "AirTaxi-X1", Passengers: 2},
			{ID: "FL003", Operator: "DroneEx", Route: "Depot → Sheung Wan", Origin: "Cargo Depot Alpha", Destination: "Sheung Wan Hub", Status: models.FlightOnTime, ETA: "15:00", Aircraft: "Cargo-D500", Passengers: 0},
			{ID: "FL004", Operator: "Vista Air", Route: "Victoria Harbour Tour", Origin: "IFC Pad", Destination: "IFC Pad", Status: models.FlightDelayed, ETA: "15:30", Aircraft: "TourPod-8", Passengers: 6, Delay: 15},
			{ID: "FL005", Operator: "SkyLink HK", Route: "Sha Tin → Central", Origin: "Sha Tin Vertiport", Destination: "Central Station Pad", Status: models.FlightOnTime, ETA: "15:15", Aircraft: "eVTOL-200", Passengers: 3},
		},
		Incidents: []models.Incident{
			{ID: "INC001", Type: models.IncidentWeather, Severity: models.SeverityMedium, Title: "Strong crosswinds at HKIA sector", Description: "Wind speed exceeding 25 knots. Approach adjustments in effect.", Timestamp: "13:45", Location: "HKIA Approach"},
			{ID: "INC002", Type: models.IncidentTechnical, Severity: models.SeverityLow, Title: "Charging station maintenance", Description: "Bay 3 charging station under routine maintenance until 16:00.", Timestamp: "12:00", Location: "Kowloon Bay Vertiport"},
			{ID: "INC003", Type: models.IncidentAirspace, Severity: models.SeverityHigh, Title: "Temporary flight restriction", Description: "VIP movement. Restricted zone active over Victoria Park area.", Timestamp: "14:00", Location: "Victoria Park Zone"},
		},
		Infrastructure: []models.InfrastructureAsset{
			{ID: "INF001", Name: "Central Station Pad", Type: models.AssetStationPad, Status: models.AssetOperational, Capacity: 4, CurrentLoad: 2, Location: "Central"},
			{ID: "INF002", Name: "Kowloon Bay Vertiport", Type: models.AssetVertiport, Status: models.AssetOperational, Capacity: 8, CurrentLoad: 5, Location: "Kowloon Bay"},
			{ID: "INF003", Name: "Cargo Depot Alpha", Type: models.AssetDepot, Status: models.AssetOperational, Capacity: 20, CurrentLoad: 12, Location: "Kwai Chung"},
			{ID: "INF004", Name: "TST Rooftop Pad", Type: models.AssetStationPad, Status: models.AssetMaintenance, Capacity: 2, CurrentLoad: 0, Location: "Tsim Sha Tsui"},
			{ID: "INF005", Name: "LAE Control Center", Type: models.AssetControlCenter, Status: models.AssetOperational, Capacity: 100, CurrentLoad: 45, Location: "Tung Chung"},
		},
		Operators: []models.Operator{
			{ID: "OP001", Name: "SkyLink HK", Type: models.ServiceAirTaxi, Verified: true, SafetyScore: 98, FleetSize: 12, OnTimeRate: 94, Status: models.OperatorActive},
			{ID: "OP002", Name: "AeroCab", Type: models.ServiceAirTaxi, Verified: true, SafetyScore: 96, FleetSize: 8, OnTimeRate: 91, Status: models.OperatorActive},
			{ID: "OP003", Name: "DroneEx", Type: models.ServiceCargo, Verified: true, SafetyScore: 99, FleetSize: 45, OnTimeRate: 97, Status: models.OperatorActive},
			{ID: "OP004", Name: "Vista Air", Type: models.ServiceSightseeing, Verified: true, SafetyScore: 97, FleetSize: 6, OnTimeRate: 89, Status: models.OperatorActive},
			{ID: "OP005", Name: "QuickDrone", Type: models.ServiceCargo, Verified: false, SafetyScore: 0, FleetSize: 15, OnTimeRate: 0, Status: models.OperatorPending},
		},
		Trips: []models.Trip{
			{ID: "TR001", Type: models.TripAirTaxi, Origin: "Central", Destination: "Kowloon Bay", Date: "2025-01-08", Time: "09:15", Status: models.TripCompleted, Operator: "SkyLink HK", Price: 280, Duration: 8, TimeSaved: 25},
			{ID: "TR002", Type: models.TripDelivery, Origin: "Online Store", Destination: "Sheung Wan Office", Date: "2025-01-07", Time: "14:30", Status: models.TripCompleted, Operator: "DroneEx", Price: 45, Duration: 12, TimeSaved: 40},
			{ID: "TR003", Type: models.TripSightseeing, Origin: "IFC Pad", Destination: "Victoria Harbour Tour", Date: "2025-01-05", Time: "16:00", Status: models.TripCompleted, Operator: "Vista Air", Price: 580, Duration: 25},
			{ID: "TR004", Type: models.TripAirTaxi, Origin: "Sha Tin", Destination: "Central", Date: "2025-01-09", Time: "18:30", Status: models.TripUpcoming, Operator: "AeroCab", Price: 320, Duration: 10},
		},
		Services: []models.Service{
			{ID: "SVC001", Name: "SkyLink Express", Type: models.ServiceAirTaxi, Operator: "SkyLink HK", ETARange: "5-12 min", PriceRange: "HK$180-380", SafetyBadge: true, PickupNodes: []string{"Central Pad", "Admiralty Pad", "Kowloon Bay"}, Rating: 4.8, Available: true},
			{ID: "SVC002", Name: "AeroCab Premium", Type: models.ServiceAirTaxi, Operator: "AeroCab", ETARange: "8-15 min", PriceRange: "HK$220-450", SafetyBadge: true, PickupNodes: []string{"HKIA", "TST Rooftop", "Central Pad"}, Rating: 4.6, Available: true},
			{ID: "SVC003", Name: "DroneEx Rapid", Type: models.ServiceCargo, Operator: "DroneEx", ETARange: "15-30 min", PriceRange: "HK$35-120", SafetyBadge: true, PickupNodes: []string{"Any registered address"}, Rating: 4.9, Available: true},
			{ID: "SVC004", Name: "Vista Harbour Tour", Type: models.ServiceSightseeing, Operator: "Vista Air", ETARange: "25 min tour", PriceRange: "HK$480-680", SafetyBadge: true, PickupNodes: []string{"IFC Pad", "ICC Pad"}, Rating: 4.7, Available: false},
		},
		Status: models.SystemStatus{
			Overall:     models.OverallNormal,
			Weather:     models.WeatherClear,
			Airspace:    models.AirspaceOpen,
			LastUpdated: "14:30",
		},
		Analytics: models.Analytics{
			TotalFlightsToday: 247,
			OnTimePercentage:  93.2,
			ActiveOperators:   4,
			SafetyIncidents:   0,
			PeakHour:          "08:00-09:00",
			TopRoute:          "Central ↔ Kowloon Bay",
			DemandTrend:       models.TrendUp,
			ReliabilityTrend:  models.TrendStable,
		},

		Stations: []models.Station{
			{Name: "Central Helipad", Position: centralHelipad, Type: models.StationHub, Status: models.StationActive},
			{Name: "West Kowloon Station", Position: westKowloon, Type: models.StationStop, Status: models.StationActive},
			{Name: "Tsim Sha Tsui Hub", Position: tsimShaTsui, Type: models.StationHub, Status: models.StationActive},
			{Name: "Hong Kong Airport", Position: hongKongAirport, Type: models.StationAirport, Status: models.StationActive},
			{Name: "Victoria Peak", Position: victoriaPeak, Type: models.StationScenic, Status: models.StationActive},
			{Name: "Sha Tin Depot", Position: shaTinDepot, Type: models.StationDepot, Status: models.StationMaintenance},
			{Name: "Tseung Kwan O", Position: tseungKwanO, Type: models.StationStop, Status: models.StationActive},
		},
		Vehicles: []models.Vehicle{
			{ID: "AV-001", Type: models.VehicleAirTaxi, From: hongKongAirport, To: centralHelipad},
			{ID: "AV-002", Type: models.VehicleDrone, From: tsimShaTsui, To: shaTinDepot},
			{ID: "AV-003", Type: models.VehicleAirTaxi, From: victoriaPeak, To: westKowloon},
			{ID: "AV-004", Type: models.VehicleCargoDrone, From: tseungKwanO, To: tsimShaTsui},
			{ID: "AV-005", Type: models.VehicleAirTaxi, From: westKowloon, To: hongKongAirport},
		},
		Corridors: []models.Corridor{
			{Name: "Airport-Central Corridor", From: hongKongAirport, To: centralHelipad},
			{Name: "TST-Sha Tin Route", From: tsimShaTsui, To: shaTinDepot},
			{Name: "West Kowloon-TKO Route", From: westKowloon, To: tseungKwanO},
		},
		Hotspots: []models.Hotspot{
			{Name: "Central", Position: centralHelipad, Intensity: 0.95, Requests: 156},
			{Name: "West Kowloon", Position: westKowloon, Intensity: 0.85, Requests: 128},
			{Name: "TST", Position: tsimShaTsui, Intensity: 0.9, Requests: 142},
			{Name: "HKIA", Position: hongKongAirport, Intensity: 0.75, Requests: 98},
			{Name: "Victoria Peak", Position: victoriaPeak, Intensity: 0.5, Requests: 67},
			{Name: "Sha Tin", Position: shaTinDepot, Intensity: 0.6, Requests: 78},
			{Name: "TKO", Position: tseungKwanO, Intensity: 0.45, Requests: 52},
			{Name: "Tsuen Wan", Position: models.Position{Lat: 22.3700, Lng: 114.1130}, Intensity: 0.55, Requests: 64},
			{Name: "Admiralty", Position: models.Position{Lat: 22.2815, Lng: 114.1580}, Intensity: 0.8, Requests: 112},
			{Name: "Mong Kok", Position: models.Position{Lat: 22.3360, Lng: 114.1760}, Intensity: 0.65, Requests: 85},
		},
		Zone: models.ServiceZone{Center: serviceZoneFocus, RadiusM: 8000},
	}
}

// Vehicle returns the vehicle with the given id.
func (d *Dataset) Vehicle(id string) (models.Vehicle, bool) {
	for _, v := range d.Vehicles {
		if v.ID == id {
			return v, true
		}
	}
	return models.Vehicle{}, false
}
