package canvas

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitbase/transitbase_core/internal/artifact"
	"github.com/transitbase/transitbase_core/internal/catalog"
	"github.com/transitbase/transitbase_core/internal/models"
	"github.com/transitbase/transitbase_core/internal/render"
	"github.com/transitbase/transitbase_core/internal/router"
	"github.com/transitbase/transitbase_core/internal/transit"
)

const settingsJSON = `{
	"width": 1200, "height": 500, "padding": 50, "outer_margin": 150,
	"color_palette": ["green", "red"],
	"line_width": 14, "underlayer_color": [255, 255, 255, 0.85],
	"underlayer_width": 3, "stop_radius": 5,
	"bus_label_offset": [7, 15], "bus_label_font_size": 20,
	"stop_label_offset": [7, -3], "stop_label_font_size": 18,
	"layers": ["bus_lines", "bus_labels", "stop_points", "stop_labels"]
}`

func buildBase(t *testing.T, base []models.BaseRequest) *artifact.Base {
	t.Helper()
	db, err := catalog.New(base, models.RoutingSettings{BusWaitTime: 2, BusVelocity: 30})
	require.NoError(t, err)
	tg := transit.Build(db)
	settings, err := render.ParseSettings(json.RawMessage(settingsJSON))
	require.NoError(t, err)
	return artifact.Build(db, tg, router.BuildTable(tg.Weights), render.NewBuilder(db, settings))
}

func TestEmptyCatalogMap(t *testing.T) {
	c := New(buildBase(t, nil))
	out := c.DrawnMap()
	// Header and footer only: no body primitives, not even the frame.
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8" ?><svg xmlns="http://www.w3.org/2000/svg" version="1.1"></svg>`, out)
	assert.Equal(t, 0, strings.Count(out, "<rect"))
}

func networkBase(t *testing.T) *artifact.Base {
	return buildBase(t, []models.BaseRequest{
		{Type: models.RequestStop, Name: "A", Latitude: 55.61, Longitude: 37.20,
			RoadDistances: map[string]int32{"B": 3900}},
		{Type: models.RequestStop, Name: "B", Latitude: 55.58, Longitude: 37.25},
		{Type: models.RequestBus, Name: "1", Stops: []string{"A", "B"}, IsRoundtrip: false},
	})
}

func TestFullMapLayers(t *testing.T) {
	c := New(networkBase(t))
	out := c.DrawnMap()

	t.Run("frame first", func(t *testing.T) {
		assert.Contains(t, out, `<rect x="-150" y="-150" width="1500" height="800"`)
		assert.Less(t, strings.Index(out, "<rect"), strings.Index(out, "<polyline"))
	})

	t.Run("bus line includes return traversal", func(t *testing.T) {
		// Non-rounded A-B: polyline visits A, B, A -> three points.
		start := strings.Index(out, `<polyline points="`) + len(`<polyline points="`)
		end := strings.Index(out[start:], `"`)
		points := strings.Split(out[start:start+end], " ")
		assert.Len(t, points, 3)
		assert.Equal(t, points[0], points[2])
	})

	t.Run("layer order", func(t *testing.T) {
		assert.Less(t, strings.Index(out, "<polyline"), strings.Index(out, "<circle"))
		assert.Less(t, strings.Index(out, "<polyline"), strings.Index(out, "font-weight"))
	})

	t.Run("labels drawn twice", func(t *testing.T) {
		// Bus "1" labels at both endpoints, each an underlayer plus a
		// foreground text; stop labels for A and B likewise.
		assert.Equal(t, 2*2+2*2, strings.Count(out, "<text"))
		assert.Equal(t, 2, strings.Count(out, `>A</text>`))
		assert.Equal(t, 4, strings.Count(out, `>1</text>`))
	})

	t.Run("stop circles", func(t *testing.T) {
		assert.Equal(t, 2, strings.Count(out, "<circle"))
		assert.Contains(t, out, `r="5" fill="white"`)
	})

	t.Run("bus colour from palette", func(t *testing.T) {
		assert.Contains(t, out, `stroke="green" stroke-width="14"`)
	})
}

func TestRoundedBusLabelOnce(t *testing.T) {
	c := New(buildBase(t, []models.BaseRequest{
		{Type: models.RequestStop, Name: "X", RoadDistances: map[string]int32{"Y": 100}},
		{Type: models.RequestStop, Name: "Y", Latitude: 1, RoadDistances: map[string]int32{"X": 100}},
		{Type: models.RequestBus, Name: "2", Stops: []string{"X", "Y", "X"}, IsRoundtrip: true},
	}))
	out := c.DrawnMap()
	assert.Equal(t, 2, strings.Count(out, `>2</text>`)) // one label, two passes
}

func TestDrawRoute(t *testing.T) {
	base := networkBase(t)
	c := New(base)

	out := c.DrawRoute([]RouteSegment{{
		Bus:   "1",
		Stops: []string{"A", "B"},
		Start: 0,
		End:   1,
	}}, []string{"A", "B"})

	t.Run("restricted polyline", func(t *testing.T) {
		start := strings.Index(out, `<polyline points="`) + len(`<polyline points="`)
		end := strings.Index(out[start:], `"`)
		points := strings.Split(out[start:start+end], " ")
		assert.Len(t, points, 2)
	})

	t.Run("bus labels at ridden terminals", func(t *testing.T) {
		assert.Equal(t, 4, strings.Count(out, `>1</text>`)) // both terminals, two passes each
	})

	t.Run("stop artwork restricted to itinerary", func(t *testing.T) {
		assert.Equal(t, 2, strings.Count(out, "<circle"))
		assert.Equal(t, 2, strings.Count(out, `>A</text>`))
		assert.Equal(t, 2, strings.Count(out, `>B</text>`))
	})

	t.Run("frame is painted", func(t *testing.T) {
		assert.Contains(t, out, `<rect`)
	})
}

func TestDrawRoutePartialSpan(t *testing.T) {
	// Segment B..C of a three-stop line: the segment ends are not both
	// terminals, so only C (a route end) gets a bus label.
	base := buildBase(t, []models.BaseRequest{
		{Type: models.RequestStop, Name: "A", RoadDistances: map[string]int32{"B": 100}},
		{Type: models.RequestStop, Name: "B", Latitude: 1, RoadDistances: map[string]int32{"C": 100}},
		{Type: models.RequestStop, Name: "C", Latitude: 2},
		{Type: models.RequestBus, Name: "9", Stops: []string{"A", "B", "C"}, IsRoundtrip: false},
	})
	c := New(base)
	out := c.DrawRoute([]RouteSegment{{
		Bus:   "9",
		Stops: []string{"B", "C"},
		Start: 1,
		End:   2,
	}}, []string{"B", "C"})

	assert.Equal(t, 2, strings.Count(out, `>9</text>`)) // label only at C
	assert.Equal(t, 2, strings.Count(out, "<circle"))
}
