package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Portal mode
// ---------------------------------------------------------------------------

// Mode selects which side of the portal a request is served from.
type Mode string

const (
	ModeUser    Mode = "user"
	ModeEnabler Mode = "enabler"
)

// ErrInvalidMode is returned by ParseMode for anything but user/enabler.
var ErrInvalidMode = errors.New("invalid portal mode")

// ParseMode converts "user" or "enabler" (case-insensitive) to a Mode.
// An empty string yields the default, ModeUser.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeUser:
		return ModeUser, nil
	case ModeEnabler:
		return ModeEnabler, nil
	}
	return "", ErrInvalidMode
}

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	if m == ModeEnabler {
		return ModeUser
	}
	return ModeEnabler
}

func (m Mode) String() string { return string(m) }

// ---------------------------------------------------------------------------
// Geography
// ---------------------------------------------------------------------------

// Position is a WGS84 coordinate in decimal degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ParseLatLng parses decimal degree strings and range-checks them.
func ParseLatLng(lat, lng string) (Position, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil || math.IsNaN(la) || la < -90 || la > 90 {
		return Position{}, fmt.Errorf("latitude %q out of range", lat)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil || math.IsNaN(lo) || lo < -180 || lo > 180 {
		return Position{}, fmt.Errorf("longitude %q out of range", lng)
	}
	return Position{Lat: la, Lng: lo}, nil
}

// ParsePosition parses "lat,lng".
func ParsePosition(s string) (Position, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return Position{}, fmt.Errorf("want lat,lng, got %q", s)
	}
	return ParseLatLng(lat, lng)
}

// ---------------------------------------------------------------------------
// Flights
// ---------------------------------------------------------------------------

// FlightStatus is the operational state of a scheduled flight.
type FlightStatus string

const (
	FlightOnTime    FlightStatus = "on-time"
	FlightDelayed   FlightStatus = "delayed"
	FlightCancelled FlightStatus = "cancelled"
	FlightBoarding  FlightStatus = "boarding"
	FlightInFlight  FlightStatus = "in-flight"
)

// Flight is a scheduled aerial movement operated by an LAE operator.
type Flight struct {
	ID          string       `json:"id"`
	Operator    string       `json:"operator"`
	Route       string       `json:"route"`
	Origin      string       `json:"origin"`
	Destination string       `json:"destination"`
	Status      FlightStatus `json:"status"`
	ETA         string       `json:"eta"`
	Aircraft    string       `json:"aircraft"`
	Passengers  int          `json:"passengers"`
	Delay       int          `json:"delay,omitempty"` // minutes
}

// ---------------------------------------------------------------------------
// Incidents
// ---------------------------------------------------------------------------

// IncidentType categorises an incident.
type IncidentType string

const (
	IncidentSafety    IncidentType = "safety"
	IncidentWeather   IncidentType = "weather"
	IncidentTechnical IncidentType = "technical"
	IncidentAirspace  IncidentType = "airspace"
)

// Severity ranks incidents; the zero value ranks below SeverityLow.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities low < medium < high. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	}
	return 0
}

// Incident is an entry in the operations incident feed. Location is free
// text and is matched to infrastructure by name only.
type Incident struct {
	ID          string       `json:"id"`
	Type        IncidentType `json:"type"`
	Severity    Severity     `json:"severity"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Timestamp   string       `json:"timestamp"`
	Location    string       `json:"location"`
	Resolved    bool         `json:"resolved"`
}

// ---------------------------------------------------------------------------
// Infrastructure
// ---------------------------------------------------------------------------

type AssetType string

const (
	AssetStationPad    AssetType = "station-pad"
	AssetDepot         AssetType = "depot"
	AssetControlCenter AssetType = "control-center"
	AssetVertiport     AssetType = "vertiport"
)

type AssetStatus string

const (
	AssetOperational AssetStatus = "operational"
	AssetMaintenance AssetStatus = "maintenance"
	AssetOffline     AssetStatus = "offline"
)

// InfrastructureAsset is a pad, depot, vertiport or control centre.
// Nothing prevents CurrentLoad from exceeding Capacity.
type InfrastructureAsset struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        AssetType   `json:"type"`
	Status      AssetStatus `json:"status"`
	Capacity    int         `json:"capacity"`
	CurrentLoad int         `json:"current_load"`
	Location    string      `json:"location"`
}

// ---------------------------------------------------------------------------
// Operators and services
// ---------------------------------------------------------------------------

// ServiceType is shared by operators and the services they sell.
type ServiceType string

const (
	ServiceAirTaxi     ServiceType = "air-taxi"
	ServiceCargo       ServiceType = "cargo"
	ServiceSightseeing ServiceType = "sightseeing"
)

type OperatorStatus string

const (
	OperatorActive    OperatorStatus = "active"
	OperatorPending   OperatorStatus = "pending"
	OperatorSuspended OperatorStatus = "suspended"
)

type Operator struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        ServiceType    `json:"type"`
	Verified    bool           `json:"verified"`
	SafetyScore int            `json:"safety_score"`
	FleetSize   int            `json:"fleet_size"`
	OnTimeRate  int            `json:"on_time_rate"`
	Status      OperatorStatus `json:"status"`
}

// Service is a bookable product shown to passengers.
type Service struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        ServiceType `json:"type"`
	Operator    string      `json:"operator"`
	ETARange    string      `json:"eta_range"`
	PriceRange  string      `json:"price_range"`
	SafetyBadge bool        `json:"safety_badge"`
	PickupNodes []string    `json:"pickup_nodes"`
	Rating      float64     `json:"rating"`
	Available   bool        `json:"available"`
}

// ---------------------------------------------------------------------------
// Trips
// ---------------------------------------------------------------------------

type TripType string

const (
	TripAirTaxi     TripType = "air-taxi"
	TripDelivery    TripType = "delivery"
	TripSightseeing TripType = "sightseeing"
)

type TripStatus string

const (
	TripUpcoming   TripStatus = "upcoming"
	TripInProgress TripStatus = "in-progress"
	TripCompleted  TripStatus = "completed"
	TripCancelled  TripStatus = "cancelled"
)

// Trip is a passenger's booking history entry.
type Trip struct {
	ID          string     `json:"id"`
	Type        TripType   `json:"type"`
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Status      TripStatus `json:"status"`
	Operator    string     `json:"operator"`
	Price       int        `json:"price"`
	Duration    int        `json:"duration"`             // minutes
	TimeSaved   int        `json:"time_saved,omitempty"` // minutes
}

// ---------------------------------------------------------------------------
// Network status and analytics
// ---------------------------------------------------------------------------

type OverallStatus string

const (
	OverallNormal          OverallStatus = "normal"
	OverallMinorIssues     OverallStatus = "minor-issues"
	OverallMajorDisruption OverallStatus = "major-disruption"
)

type WeatherStatus string

const (
	WeatherClear    WeatherStatus = "clear"
	WeatherModerate WeatherStatus = "moderate"
	WeatherAdverse  WeatherStatus = "adverse"
)

type AirspaceStatus string

const (
	AirspaceOpen       AirspaceStatus = "open"
	AirspaceRestricted AirspaceStatus = "restricted"
	AirspaceClosed     AirspaceStatus = "closed"
)

type SystemStatus struct {
	Overall     OverallStatus  `json:"overall"`
	Weather     WeatherStatus  `json:"weather"`
	Airspace    AirspaceStatus `json:"airspace"`
	LastUpdated string         `json:"last_updated"`
}

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

type Analytics struct {
	TotalFlightsToday int     `json:"total_flights_today"`
	OnTimePercentage  float64 `json:"on_time_percentage"`
	ActiveOperators   int     `json:"active_operators"`
	SafetyIncidents   int     `json:"safety_incidents"`
	PeakHour          string  `json:"peak_hour"`
	TopRoute          string  `json:"top_route"`
	DemandTrend       Trend   `json:"demand_trend"`
	ReliabilityTrend  Trend   `json:"reliability_trend"`
}

// ---------------------------------------------------------------------------
// Map layer
// ---------------------------------------------------------------------------

type StationType string

const (
	StationHub     StationType = "hub"
	StationStop    StationType = "station"
	StationAirport StationType = "airport"
	StationScenic  StationType = "scenic"
	StationDepot   StationType = "depot"
)

type StationStatus string

const (
	StationActive      StationStatus = "active"
	StationMaintenance StationStatus = "maintenance"
	StationOffline     StationStatus = "offline"
)

// Station is a map marker for a take-off/landing point.
type Station struct {
	Name     string        `json:"name"`
	Position Position      `json:"position"`
	Type     StationType   `json:"type"`
	Status   StationStatus `json:"status"`
}

type VehicleType string

const (
	VehicleAirTaxi    VehicleType = "air-taxi"
	VehicleDrone      VehicleType = "drone"
	VehicleCargoDrone VehicleType = "cargo-drone"
)

// Vehicle flies back and forth along the straight line From→To.
type Vehicle struct {
	ID   string      `json:"id"`
	Type VehicleType `json:"type"`
	From Position    `json:"from"`
	To   Position    `json:"to"`
}

// Corridor is a published flight corridor drawn between two points.
type Corridor struct {
	Name string   `json:"name"`
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Hotspot is a demand cluster; Intensity is in [0,1].
type Hotspot struct {
	Name      string   `json:"name"`
	Position  Position `json:"position"`
	Intensity float64  `json:"intensity"`
	Requests  int      `json:"requests"` // per hour
}

// ServiceZone is the primary coverage circle.
type ServiceZone struct {
	Center  Position `json:"center"`
	RadiusM float64  `json:"radius_m"`
}
