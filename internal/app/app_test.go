package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const renderSettingsJSON = `{
	"width": 1200, "height": 500, "padding": 50, "outer_margin": 150,
	"color_palette": ["green", "red"],
	"line_width": 14, "underlayer_color": [255, 255, 255, 0.85],
	"underlayer_width": 3, "stop_radius": 5,
	"bus_label_offset": [7, 15], "bus_label_font_size": 20,
	"stop_label_offset": [7, -3], "stop_label_font_size": 18,
	"layers": ["bus_lines", "bus_labels", "stop_points", "stop_labels"]
}`

func makeBaseInput(file string) string {
	return fmt.Sprintf(`{
		"serialization_settings": {"file": %q},
		"routing_settings": {"bus_wait_time": 2, "bus_velocity": 30},
		"render_settings": %s,
		"base_requests": [
			{"type": "Stop", "name": "A", "latitude": 55.61, "longitude": 37.20,
			 "road_distances": {"B": 3900}},
			{"type": "Stop", "name": "B", "latitude": 55.58, "longitude": 37.25,
			 "road_distances": {"A": 3900}},
			{"type": "Bus", "name": "1", "stops": ["A", "B"], "is_roundtrip": false}
		]
	}`, file, renderSettingsJSON)
}

func serveInput(file string) string {
	return fmt.Sprintf(`{
		"serialization_settings": {"file": %q},
		"stat_requests": [
			{"id": 1, "type": "Bus", "name": "1"},
			{"id": 2, "type": "Route", "from": "A", "to": "B"},
			{"id": 3, "type": "Stop", "name": "B"},
			{"id": 4, "type": "Bus", "name": "nope"},
			{"id": 5, "type": "Map"}
		]
	}`, file)
}

func TestMakeBaseThenProcessRequests(t *testing.T) {
	file := filepath.Join(t.TempDir(), "transit.db")
	require.NoError(t, MakeBase(strings.NewReader(makeBaseInput(file))))

	var out bytes.Buffer
	require.NoError(t, ProcessRequests(strings.NewReader(serveInput(file)), &out))

	var results []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 5)

	t.Run("bus stats", func(t *testing.T) {
		res := results[0]
		assert.Equal(t, float64(1), res["request_id"])
		assert.Equal(t, float64(7800), res["route_length"])
		assert.Equal(t, float64(3), res["stop_count"])
		assert.Equal(t, float64(2), res["unique_stop_count"])
		// The road length is shorter than the great-circle length here.
		oneWay := geo.Distance(orb.Point{37.20, 55.61}, orb.Point{37.25, 55.58})
		assert.InDelta(t, 7800/(2*oneWay), res["curvature"].(float64), 1e-9)
	})

	t.Run("route", func(t *testing.T) {
		res := results[1]
		assert.Equal(t, float64(2), res["request_id"])
		rideTime := 3900.0 / (30.0 / 3.6) / 60
		assert.InDelta(t, 2+rideTime, res["total_time"].(float64), 1e-9)

		items := res["items"].([]any)
		require.Len(t, items, 2)
		wait := items[0].(map[string]any)
		assert.Equal(t, "Wait", wait["type"])
		assert.Equal(t, "A", wait["stop_name"])
		assert.Equal(t, float64(2), wait["time"])
		ride := items[1].(map[string]any)
		assert.Equal(t, "Bus", ride["type"])
		assert.Equal(t, "1", ride["bus"])
		assert.Equal(t, float64(1), ride["span_count"])
		assert.InDelta(t, rideTime, ride["time"].(float64), 1e-9)

		assert.Contains(t, res["map"], "<polyline")
	})

	t.Run("stop stats", func(t *testing.T) {
		res := results[2]
		assert.Equal(t, []any{"1"}, res["buses"])
	})

	t.Run("unknown bus", func(t *testing.T) {
		res := results[3]
		assert.Equal(t, "not found", res["error_message"])
		assert.Equal(t, float64(4), res["request_id"])
	})

	t.Run("map", func(t *testing.T) {
		m := results[4]["map"].(string)
		assert.True(t, strings.HasPrefix(m, `<?xml version="1.0" encoding="UTF-8" ?><svg`))
		assert.True(t, strings.HasSuffix(strings.TrimSpace(m), "</svg>"))
		// SVG markup survives JSON encoding unescaped.
		assert.Contains(t, out.String(), "<svg xmlns")
	})
}

func TestProcessRequestsMissingArtifact(t *testing.T) {
	file := filepath.Join(t.TempDir(), "absent.db")
	var out bytes.Buffer
	err := ProcessRequests(strings.NewReader(serveInput(file)), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read artifact")
}

func TestMakeBaseMalformedInput(t *testing.T) {
	err := MakeBase(strings.NewReader("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode input document")
}
