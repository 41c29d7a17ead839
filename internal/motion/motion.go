// Package motion holds the closed-form geometry behind the live map: bearing
// between two coordinates, straight-line interpolation and the ping-pong
// cycle that moves vehicle markers back and forth along their routes.
//
// Every function here is pure. Callers evaluate them once per frame.
package motion

import (
	"math"
	"time"

	"github.com/skypies/geo"

	"github.com/yash/laeportal/pkg/models"
)

const (
	// DefaultCycle is the time for one full out-and-back cycle.
	DefaultCycle = 20 * time.Second

	// DefaultStagger offsets the cycle of vehicle i by i*DefaultStagger.
	DefaultStagger = 0.2

	// antipodalEpsilon bounds how close to antipodal two points may be
	// before their bearing is reported as undefined.
	antipodalEpsilon = 1e-9
)

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

// ---------------------------------------------------------------------------
// Bearing and interpolation
// ---------------------------------------------------------------------------

// Bearing returns the initial great-circle bearing from -> to in degrees,
// normalised to [0, 360). Identical points yield 0.
func Bearing(from, to models.Position) float64 {
	b := latlong(from).BearingTowards(latlong(to))
	if b >= 360 {
		// Mod can round a tiny negative angle up to exactly 360.
		b = 0
	}
	return b
}

// Defined reports whether Bearing(from, to) is meaningful. It is not for
// coincident points and for antipodal points, where every direction is a
// great circle.
func Defined(from, to models.Position) bool {
	if from == to {
		return false
	}
	lat1, lat2 := toRad(from.Lat), toRad(to.Lat)
	dLng := toRad(to.Lng - from.Lng)
	cosAngle := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(dLng)
	return cosAngle > -1+antipodalEpsilon
}

// Interpolate returns the point a fraction p of the way along the straight
// line from -> to, component-wise in lat/lng. p is not clamped.
func Interpolate(from, to models.Position, p float64) models.Position {
	ll := latlong(from).InterpolateTo(latlong(to), p)
	return models.Position{Lat: ll.Lat, Lng: ll.Long}
}

// ---------------------------------------------------------------------------
// Cycle
// ---------------------------------------------------------------------------

// CycleProgress returns where in its cycle a vehicle is, in [0, 1).
// A non-positive cycle freezes every vehicle at its offset.
func CycleProgress(elapsed, cycle time.Duration, offset float64) float64 {
	var p float64
	if cycle > 0 {
		p = float64(elapsed) / float64(cycle)
	}
	p = math.Mod(p+offset, 1)
	if p < 0 {
		p++
	}
	return p
}

// PingPong folds a cycle progress into a leg fraction: the first half of the
// cycle runs 0->1 outbound, the second half runs 1->0 back.
func PingPong(progress float64) (leg float64, outbound bool) {
	if progress < 0.5 {
		return progress * 2, true
	}
	return (1 - progress) * 2, false
}

// Marker is the rendered state of one vehicle for a single frame.
type Marker struct {
	VehicleID string             `json:"vehicle_id"`
	Type      models.VehicleType `json:"type"`
	Position  models.Position    `json:"position"`
	Heading   float64            `json:"heading"`
	Progress  float64            `json:"progress"`
	Outbound  bool               `json:"outbound"`
}

// Config controls the shape of the animation cycle.
type Config struct {
	Cycle   time.Duration
	Stagger float64
}

// DefaultConfig returns the 20s cycle with a 0.2 stagger.
func DefaultConfig() Config {
	return Config{Cycle: DefaultCycle, Stagger: DefaultStagger}
}

// Animate computes the marker for the index-th vehicle after elapsed.
// Heading points along the direction of travel, so it flips on the way back.
func Animate(v models.Vehicle, index int, elapsed time.Duration, cfg Config) Marker {
	offset := math.Mod(float64(index)*cfg.Stagger, 1)
	progress := CycleProgress(elapsed, cfg.Cycle, offset)
	leg, outbound := PingPong(progress)

	heading := Bearing(v.From, v.To)
	if !outbound {
		heading = Bearing(v.To, v.From)
	}

	return Marker{
		VehicleID: v.ID,
		Type:      v.Type,
		Position:  Interpolate(v.From, v.To, leg),
		Heading:   heading,
		Progress:  progress,
		Outbound:  outbound,
	}
}

// ---------------------------------------------------------------------------
// Distance and coverage
// ---------------------------------------------------------------------------

func latlong(p models.Position) geo.Latlong {
	return geo.Latlong{Lat: p.Lat, Long: p.Lng}
}

// DistanceKM is the great-circle distance between two positions.
func DistanceKM(a, b models.Position) float64 {
	return latlong(a).DistKM(latlong(b))
}

// InZone reports whether p lies inside the coverage circle.
func InZone(zone models.ServiceZone, p models.Position) bool {
	return DistanceKM(zone.Center, p)*1000 <= zone.RadiusM
}
