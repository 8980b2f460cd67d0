package render

import (
	"sort"

	"github.com/paulmach/orb"

	"github.com/transitbase/transitbase_core/internal/catalog"
	"github.com/transitbase/transitbase_core/internal/svg"
)

// Builder computes the precomputed render layout: a drawing point per stop
// and a colour per bus. Built once at base-build time and frozen into the
// artifact.
type Builder struct {
	Settings    Settings
	StopsPoints map[string]svg.Point
	BusesColors map[string]svg.Color
}

// NewBuilder lays out the catalog under the given settings.
func NewBuilder(db *catalog.Catalog, settings Settings) *Builder {
	return &Builder{
		Settings:    settings,
		StopsPoints: constructStopsPoints(db, settings),
		BusesColors: constructBusesColors(db, settings.Palette),
	}
}

// constructBusesColors walks buses alphabetically and hands out palette
// entries round-robin. An empty palette leaves every bus uncoloured.
func constructBusesColors(db *catalog.Catalog, palette []svg.Color) map[string]svg.Color {
	colors := make(map[string]svg.Color, db.BusesCount())
	if len(palette) == 0 {
		return colors
	}
	next := 0
	for _, name := range db.BusNames() {
		colors[name] = palette[next]
		next = (next + 1) % len(palette)
	}
	return colors
}

// constructStopsPoints turns geographic stop positions into drawing points:
// smooth intermediate stops onto the line between route anchors, glue
// neighbouring stops into shared grid columns and rows, then scale the grid
// into the padded drawing plane.
func constructStopsPoints(db *catalog.Catalog, settings Settings) map[string]svg.Point {
	points := make(map[string]svg.Point, db.StopsCount())
	if db.StopsCount() == 0 {
		return points
	}
	uniform := computeUniformArrangements(db)

	lonSorted := make([]string, 0, db.StopsCount())
	latSorted := make([]string, 0, db.StopsCount())
	for _, name := range db.StopNames() {
		lonSorted = append(lonSorted, name)
		latSorted = append(latSorted, name)
	}
	sort.SliceStable(lonSorted, func(i, j int) bool {
		return uniform[lonSorted[i]][0] < uniform[lonSorted[j]][0]
	})
	sort.SliceStable(latSorted, func(i, j int) bool {
		return uniform[latSorted[i]][1] < uniform[latSorted[j]][1]
	})

	xIndex, xMax := glue(db, lonSorted)
	yIndex, yMax := glue(db, latSorted)

	var xStep, yStep float64
	if xMax > 0 {
		xStep = (settings.Width - 2*settings.Padding) / float64(xMax)
	}
	if yMax > 0 {
		yStep = (settings.Height - 2*settings.Padding) / float64(yMax)
	}
	for _, name := range db.StopNames() {
		points[name] = svg.Point{
			X: float64(xIndex[name])*xStep + settings.Padding,
			Y: settings.Height - settings.Padding - float64(yIndex[name])*yStep,
		}
	}
	return points
}

// computeUniformArrangements repositions the stops between route anchors
// onto evenly spaced points of the anchor-to-anchor line. Anchors are route
// ends, stops shared between buses, and stops a bus visits more than twice
// per trip. Stops outside every bus keep their real coordinates, as does
// anything a degenerate route leaves untouched.
func computeUniformArrangements(db *catalog.Catalog) map[string]orb.Point {
	uniform := make(map[string]orb.Point, db.StopsCount())
	for _, busName := range db.BusNames() {
		bus := db.Bus(busName)
		route := bus.Route
		anchor := 0
		for j := 1; j < len(route); j++ {
			if !isAnchor(db, bus, j) {
				continue
			}
			from := db.Stop(route[anchor]).Pos
			to := db.Stop(route[j]).Pos
			step := orb.Point{
				(to[0] - from[0]) / float64(j-anchor),
				(to[1] - from[1]) / float64(j-anchor),
			}
			for k := anchor; k < j; k++ {
				uniform[route[k]] = orb.Point{
					from[0] + step[0]*float64(k-anchor),
					from[1] + step[1]*float64(k-anchor),
				}
			}
			uniform[route[j]] = to
			anchor = j
		}
	}
	for _, name := range db.StopNames() {
		if _, ok := uniform[name]; !ok {
			uniform[name] = db.Stop(name).Pos
		}
	}
	return uniform
}

func isAnchor(db *catalog.Catalog, bus *catalog.Bus, j int) bool {
	if j == len(bus.Route)-1 {
		return true
	}
	stop := db.Stop(bus.Route[j])
	if len(stop.PosInRoutes) > 1 {
		return true
	}
	visits := len(stop.PosInRoutes[bus.Name])
	if !bus.IsRounded {
		visits *= 2
	}
	return visits > 2
}

// glue assigns each stop of the axis-sorted list a discrete index: one past
// the highest index among already placed neighbours, so adjacent stops never
// share a column while unrelated stops collapse into one.
func glue(db *catalog.Catalog, sorted []string) (map[string]int, int) {
	indexes := make(map[string]int, len(sorted))
	maxIndex := 0
	for _, name := range sorted {
		candidate := -1
		stop := db.Stop(name)
		for placedName, placedIndex := range indexes {
			if placedIndex > candidate && isNeighbours(stop, db.Stop(placedName)) {
				candidate = placedIndex
			}
		}
		indexes[name] = candidate + 1
		if candidate+1 > maxIndex {
			maxIndex = candidate + 1
		}
	}
	return indexes, maxIndex
}

// isNeighbours reports whether some bus visits the two stops at adjacent
// route positions.
func isNeighbours(stop1, stop2 *catalog.Stop) bool {
	for bus, positions1 := range stop1.PosInRoutes {
		positions2, ok := stop2.PosInRoutes[bus]
		if !ok {
			continue
		}
		for _, p1 := range positions1 {
			for _, p2 := range positions2 {
				if p1-p2 == 1 || p2-p1 == 1 {
					return true
				}
			}
		}
	}
	return false
}
