package catalog

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitbase/transitbase_core/internal/models"
)

var routing = models.RoutingSettings{BusWaitTime: 2, BusVelocity: 30}

func stopReq(name string, lat, lon float64, dist map[string]int32) models.BaseRequest {
	return models.BaseRequest{
		Type:          models.RequestStop,
		Name:          name,
		Latitude:      lat,
		Longitude:     lon,
		RoadDistances: dist,
	}
}

func busReq(name string, stops []string, roundtrip bool) models.BaseRequest {
	return models.BaseRequest{
		Type:        models.RequestBus,
		Name:        name,
		Stops:       stops,
		IsRoundtrip: roundtrip,
	}
}

func TestNewCatalog(t *testing.T) {
	base := []models.BaseRequest{
		stopReq("A", 55.61, 37.20, map[string]int32{"B": 3900}),
		stopReq("B", 55.58, 37.25, map[string]int32{"A": 3900}),
		busReq("1", []string{"A", "B"}, false),
	}
	db, err := New(base, routing)
	require.NoError(t, err)

	t.Run("settings conversion", func(t *testing.T) {
		assert.Equal(t, 2.0, db.WaitTime)
		assert.InDelta(t, 30.0/3.6, db.BusVelocity, 1e-12)
	})

	t.Run("non-rounded aggregates", func(t *testing.T) {
		bus := db.Bus("1")
		require.NotNil(t, bus)
		assert.Equal(t, int32(7800), bus.RouteLength)
		assert.Equal(t, int32(3), bus.StopsCnt)
		assert.Equal(t, int32(2), bus.UniqueStopsCnt)
		assert.Equal(t, [2]int32{0, 1}, bus.EndPoints)

		oneWay := geo.Distance(orb.Point{37.20, 55.61}, orb.Point{37.25, 55.58})
		assert.InDelta(t, 2*oneWay, bus.GeoRouteLength, 1e-6)
		assert.InDelta(t, 7800/(2*oneWay), bus.Curvature(), 1e-9)
	})

	t.Run("name ordering", func(t *testing.T) {
		assert.Equal(t, []string{"A", "B"}, db.StopNames())
		assert.Equal(t, []string{"1"}, db.BusNames())
	})

	t.Run("stop buses", func(t *testing.T) {
		assert.Equal(t, []string{"1"}, db.Stop("A").Buses())
	})
}

func TestRoadDistanceSymmetry(t *testing.T) {
	t.Run("one-way declaration is mirrored", func(t *testing.T) {
		db, err := New([]models.BaseRequest{
			stopReq("A", 0, 0, map[string]int32{"B": 100}),
			stopReq("B", 0, 1, nil),
		}, routing)
		require.NoError(t, err)
		assert.Equal(t, int32(100), db.Stop("A").Distances["B"])
		assert.Equal(t, int32(100), db.Stop("B").Distances["A"])
	})

	t.Run("explicit declarations are kept as-is", func(t *testing.T) {
		db, err := New([]models.BaseRequest{
			stopReq("A", 0, 0, map[string]int32{"B": 100}),
			stopReq("B", 0, 1, map[string]int32{"A": 150}),
		}, routing)
		require.NoError(t, err)
		assert.Equal(t, int32(100), db.Stop("A").Distances["B"])
		assert.Equal(t, int32(150), db.Stop("B").Distances["A"])
	})

	t.Run("self distance is zero", func(t *testing.T) {
		db, err := New([]models.BaseRequest{stopReq("A", 0, 0, nil)}, routing)
		require.NoError(t, err)
		assert.Equal(t, int32(0), db.Stop("A").Distances["A"])
	})
}

func TestRoundedBus(t *testing.T) {
	base := []models.BaseRequest{
		stopReq("X", 0, 0, map[string]int32{"Y": 1000}),
		stopReq("Y", 0, 1, map[string]int32{"Z": 2000}),
		stopReq("Z", 0, 2, map[string]int32{"X": 3000}),
		busReq("2", []string{"X", "Y", "Z", "X"}, true),
	}
	db, err := New(base, routing)
	require.NoError(t, err)

	bus := db.Bus("2")
	require.NotNil(t, bus)
	assert.Equal(t, int32(4), bus.StopsCnt)
	assert.Equal(t, int32(3), bus.UniqueStopsCnt)
	assert.Equal(t, [2]int32{0, 3}, bus.EndPoints)
	assert.Equal(t, int32(1000+2000+3000), bus.RouteLength)
}

func TestPosInRoutesIndex(t *testing.T) {
	base := []models.BaseRequest{
		stopReq("X", 0, 0, map[string]int32{"Y": 1000}),
		stopReq("Y", 0, 1, map[string]int32{"Z": 2000}),
		stopReq("Z", 0, 2, map[string]int32{"X": 3000}),
		busReq("2", []string{"X", "Y", "Z", "X"}, true),
	}
	db, err := New(base, routing)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 3}, db.Stop("X").PosInRoutes["2"])
	assert.Equal(t, []int{1}, db.Stop("Y").PosInRoutes["2"])
	assert.Equal(t, []int{2}, db.Stop("Z").PosInRoutes["2"])

	// Every recorded position points back at the stop.
	for _, stopName := range db.StopNames() {
		stop := db.Stop(stopName)
		for busName, positions := range stop.PosInRoutes {
			route := db.Bus(busName).Route
			for _, p := range positions {
				assert.Equal(t, stopName, route[p])
			}
		}
	}
}

func TestMissingRoadDistance(t *testing.T) {
	base := []models.BaseRequest{
		stopReq("A", 0, 0, nil),
		stopReq("B", 0, 1, nil),
		busReq("1", []string{"A", "B"}, true),
	}
	_, err := New(base, routing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no road distance")
}

func TestDuplicateBusRecordReplacesRoute(t *testing.T) {
	base := []models.BaseRequest{
		stopReq("A", 0, 0, map[string]int32{"B": 100}),
		stopReq("B", 0, 1, map[string]int32{"C": 200}),
		stopReq("C", 0, 2, nil),
		busReq("7", []string{"A", "B"}, true),
		busReq("7", []string{"B", "C"}, true),
	}
	db, err := New(base, routing)
	require.NoError(t, err)

	bus := db.Bus("7")
	assert.Equal(t, []string{"B", "C"}, bus.Route)
	assert.Empty(t, db.Stop("A").PosInRoutes["7"])
	assert.Equal(t, []int{0}, db.Stop("B").PosInRoutes["7"])
}
