package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yash/laeportal/internal/catalog"
	"github.com/yash/laeportal/internal/ontology"
	"github.com/yash/laeportal/pkg/models"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func setupEngine(t *testing.T) *Engine {
	t.Helper()
	ont := ontology.New()
	_, err := catalog.Load(ont, catalog.Default())
	require.NoError(t, err)
	return New(ont)
}

func flightIDs(fs []models.Flight) []string {
	ids := make([]string, 0, len(fs))
	for _, f := range fs {
		ids = append(ids, f.ID)
	}
	return ids
}

// ---------------------------------------------------------------------------
// Flights
// ---------------------------------------------------------------------------

func TestFlightsAll(t *testing.T) {
	qe := setupEngine(t)
	res := qe.Flights(FlightFilter{})
	assert.Equal(t, []string{"FL001", "FL002", "FL003", "FL004", "FL005"}, flightIDs(res.Flights))
	assert.Equal(t, 5, res.Total)
	assert.GreaterOrEqual(t, res.Elapsed.Nanoseconds(), int64(0))
}

func TestFlightsRoundTripFields(t *testing.T) {
	qe := setupEngine(t)
	want := catalog.Default().Flights
	got := qe.Flights(FlightFilter{}).Flights
	assert.Equal(t, want, got)
}

func TestFlightFilters(t *testing.T) {
	qe := setupEngine(t)
	for _, tc := range []struct {
		name   string
		filter FlightFilter
		want   []string
		total  int
	}{
		{"on-time", FlightFilter{Statuses: []models.FlightStatus{models.FlightOnTime}}, []string{"FL003", "FL005"}, 2},
		{"operator", FlightFilter{Operator: "SkyLink HK"}, []string{"FL001", "FL005"}, 2},
		{"operator and status", FlightFilter{Operator: "SkyLink HK", Statuses: []models.FlightStatus{models.FlightInFlight}}, []string{"FL001"}, 1},
		{"limit", FlightFilter{Limit: 2}, []string{"FL001", "FL002"}, 5},
		{"cancelled", FlightFilter{Statuses: []models.FlightStatus{models.FlightCancelled}}, []string{}, 0},
	} {
		res := qe.Flights(tc.filter)
		assert.Equal(t, tc.want, flightIDs(res.Flights), tc.name)
		assert.Equal(t, tc.total, res.Total, tc.name)
	}
}

func TestActiveAndDelayedFlights(t *testing.T) {
	qe := setupEngine(t)
	assert.Equal(t, []string{"FL001", "FL002"}, flightIDs(qe.ActiveFlights().Flights))

	delayed := qe.DelayedFlights().Flights
	require.Len(t, delayed, 1)
	assert.Equal(t, "FL004", delayed[0].ID)
	assert.Equal(t, 15, delayed[0].Delay)
}

func TestFlightByID(t *testing.T) {
	qe := setupEngine(t)
	f, err := qe.FlightByID("FL002")
	require.NoError(t, err)
	assert.Equal(t, "AeroCab", f.Operator)

	_, err = qe.FlightByID("FL999")
	assert.True(t, errors.Is(err, ErrNotFound))

	// Ids of other node types are not flights.
	_, err = qe.FlightByID("OP001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFlightsAt(t *testing.T) {
	qe := setupEngine(t)

	res, err := qe.FlightsAt("Central Station Pad")
	require.NoError(t, err)
	assert.Equal(t, []string{"FL001", "FL005"}, flightIDs(res.Flights))

	res, err = qe.FlightsAt("TST Rooftop Pad")
	require.NoError(t, err)
	assert.Empty(t, res.Flights)

	_, err = qe.FlightsAt("Nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ---------------------------------------------------------------------------
// Incidents
// ---------------------------------------------------------------------------

func TestIncidentFilters(t *testing.T) {
	qe := setupEngine(t)
	ids := func(r IncidentResult) []string {
		out := []string{}
		for _, i := range r.Incidents {
			out = append(out, i.ID)
		}
		return out
	}

	assert.Equal(t, []string{"INC001", "INC002", "INC003"}, ids(qe.Incidents(IncidentFilter{UnresolvedOnly: true})))
	assert.Equal(t, []string{"INC001", "INC003"}, ids(qe.Incidents(IncidentFilter{MinSeverity: models.SeverityMedium})))
	assert.Equal(t, []string{"INC003"}, ids(qe.Incidents(IncidentFilter{MinSeverity: models.SeverityHigh})))
	assert.Equal(t, []string{"INC001"}, ids(qe.Incidents(IncidentFilter{Type: models.IncidentWeather})))
	assert.Equal(t, []string{}, ids(qe.Incidents(IncidentFilter{Type: models.IncidentSafety})))
}

func TestUnresolvedOnlyExcludesResolved(t *testing.T) {
	ont := ontology.New()
	d := catalog.Default()
	d.Incidents[1].Resolved = true
	_, err := catalog.Load(ont, d)
	require.NoError(t, err)

	res := New(ont).Incidents(IncidentFilter{UnresolvedOnly: true})
	require.Len(t, res.Incidents, 2)
	for _, inc := range res.Incidents {
		assert.NotEqual(t, "INC002", inc.ID)
	}
}

func TestIncidentsAffecting(t *testing.T) {
	qe := setupEngine(t)
	res, err := qe.IncidentsAffecting("Kowloon Bay Vertiport")
	require.NoError(t, err)
	require.Len(t, res.Incidents, 1)
	assert.Equal(t, "Charging station maintenance", res.Incidents[0].Title)

	_, err = qe.IncidentsAffecting("HKIA Approach")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ---------------------------------------------------------------------------
// Infrastructure and operators
// ---------------------------------------------------------------------------

func TestInfrastructureUtilization(t *testing.T) {
	qe := setupEngine(t)
	res := qe.Infrastructure("")
	require.Len(t, res.Assets, 5)

	byID := map[string]AssetInfo{}
	for _, a := range res.Assets {
		byID[a.ID] = a
	}
	assert.InDelta(t, 0.5, byID["INF001"].Utilization, 1e-9)
	assert.InDelta(t, 0.625, byID["INF002"].Utilization, 1e-9)
	assert.InDelta(t, 0.0, byID["INF004"].Utilization, 1e-9)
	for _, a := range res.Assets {
		assert.False(t, a.OverCapacity, a.ID)
	}

	maint := qe.Infrastructure(models.AssetMaintenance)
	require.Len(t, maint.Assets, 1)
	assert.Equal(t, "TST Rooftop Pad", maint.Assets[0].Name)
}

func TestUtilizationEdgeCases(t *testing.T) {
	assert.Equal(t, 0.0, Utilization(models.InfrastructureAsset{Capacity: 0, CurrentLoad: 3}))
	assert.Equal(t, 1.5, Utilization(models.InfrastructureAsset{Capacity: 2, CurrentLoad: 3}))

	ont := ontology.New()
	ont.AddNode(catalog.AssetNode(models.InfrastructureAsset{ID: "X", Name: "Overloaded", Capacity: 2, CurrentLoad: 3}))
	res := New(ont).Infrastructure("")
	require.Len(t, res.Assets, 1)
	assert.True(t, res.Assets[0].OverCapacity)
}

func TestOperators(t *testing.T) {
	qe := setupEngine(t)
	assert.Len(t, qe.Operators("").Operators, 5)
	assert.Len(t, qe.Operators(models.OperatorActive).Operators, 4)

	pending := qe.PendingOperators().Operators
	require.Len(t, pending, 1)
	assert.Equal(t, "QuickDrone", pending[0].Name)
	assert.False(t, pending[0].Verified)

	op, err := qe.OperatorByName("DroneEx")
	require.NoError(t, err)
	assert.Equal(t, 45, op.FleetSize)

	_, err = qe.OperatorByName("droneex")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ---------------------------------------------------------------------------
// Passenger view
// ---------------------------------------------------------------------------

func TestServices(t *testing.T) {
	qe := setupEngine(t)
	assert.Len(t, qe.Services(ServiceFilter{}).Services, 4)
	assert.Len(t, qe.Services(ServiceFilter{AvailableOnly: true}).Services, 3)

	airTaxi := qe.Services(ServiceFilter{Type: models.ServiceAirTaxi}).Services
	require.Len(t, airTaxi, 2)
	assert.Equal(t, []string{"HKIA", "TST Rooftop", "Central Pad"}, airTaxi[1].PickupNodes)

	tours := qe.Services(ServiceFilter{Type: models.ServiceSightseeing, AvailableOnly: true}).Services
	assert.Empty(t, tours)
}

func TestTrips(t *testing.T) {
	qe := setupEngine(t)
	assert.Len(t, qe.Trips("").Trips, 4)
	assert.Len(t, qe.Trips(models.TripCompleted).Trips, 3)

	next, err := qe.NextTrip()
	require.NoError(t, err)
	assert.Equal(t, "TR004", next.ID)
	assert.Equal(t, "Sha Tin", next.Origin)

	stats := qe.TripStats()
	assert.Equal(t, 3, stats.Completed)
	assert.Equal(t, 65, stats.MinutesSaved)
}

func TestNextTripNone(t *testing.T) {
	ont := ontology.New()
	d := catalog.Default()
	d.Trips = d.Trips[:3]
	_, err := catalog.Load(ont, d)
	require.NoError(t, err)

	_, err = New(ont).NextTrip()
	assert.ErrorIs(t, err, ErrNotFound)
}

// ---------------------------------------------------------------------------
// Dashboard and map
// ---------------------------------------------------------------------------

func TestOperationsSummary(t *testing.T) {
	qe := setupEngine(t)
	s := qe.OperationsSummary()
	assert.Equal(t, 2, s.ActiveFlights)
	assert.Equal(t, 1, s.DelayedFlights)
	assert.Equal(t, 3, s.UnresolvedIncidents)
	assert.Equal(t, 1, s.HighSeverityOpen)
	assert.Equal(t, 1, s.AssetsDown)
	assert.Equal(t, 4, s.ActiveOperators)
	assert.Equal(t, 1, s.PendingOperators)
}

func TestStationsAndNearest(t *testing.T) {
	qe := setupEngine(t)
	stations := qe.Stations()
	require.Len(t, stations, 7)
	assert.Equal(t, catalog.Default().Stations, stations)

	near, err := qe.Nearest(models.Position{Lat: 22.31, Lng: 114.26})
	require.NoError(t, err)
	assert.Equal(t, "Tseung Kwan O", near.Station.Name)
	assert.Less(t, near.DistanceKM, 1.0)

	_, err = New(ontology.New()).Nearest(models.Position{})
	assert.ErrorIs(t, err, ErrNotFound)
}
