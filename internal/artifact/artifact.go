// Package artifact defines the frozen snapshot written by make_base and
// served by process_requests: the catalog statistics, the transit graph, the
// all-pairs routes table and the render layout, persisted as one protobuf
// wire blob. The serving side never recomputes any of it.
package artifact

import (
	"sort"

	"github.com/transitbase/transitbase_core/internal/catalog"
	"github.com/transitbase/transitbase_core/internal/graph"
	"github.com/transitbase/transitbase_core/internal/render"
	"github.com/transitbase/transitbase_core/internal/router"
	"github.com/transitbase/transitbase_core/internal/svg"
	"github.com/transitbase/transitbase_core/internal/transit"
)

// Bus is the per-bus record: aggregates plus the full forward route.
type Bus struct {
	Name           string
	RouteLength    int32
	Curvature      float64
	StopsCnt       int32
	UniqueStopsCnt int32
	IsRounded      bool
	EndPoints      [2]int32
	Route          []string
}

// Stop is the per-stop record: the serving buses in alphabetical order.
type Stop struct {
	Name  string
	Buses []string
}

// Vertex is the wait/ride vertex pair of one stop.
type Vertex struct {
	Name string
	Wait graph.VertexID
	Ride graph.VertexID
}

// GraphInfo is the frozen transit graph: vertex pairs by stop name and the
// typed edge table indexed by edge id.
type GraphInfo struct {
	Vertices map[string]Vertex
	Edges    []transit.Edge
}

// RenderData is the frozen render block: settings, the precomputed layout
// and the per-bus colours. Colours are carried in their rendered textual
// form.
type RenderData struct {
	Width             float64
	Height            float64
	Padding           float64
	OuterMargin       float64
	Palette           []string
	LineWidth         float64
	UnderlayerColor   string
	UnderlayerWidth   float64
	StopRadius        float64
	BusLabelOffset    svg.Point
	BusLabelFontSize  int32
	StopLabelOffset   svg.Point
	StopLabelFontSize int32
	Layers            []string
	StopsPoints       map[string]svg.Point
	BusesColors       map[string]string
}

// Base is the whole artifact.
type Base struct {
	Buses  map[string]*Bus
	Stops  map[string]*Stop
	Graph  GraphInfo
	Routes router.Table
	Render RenderData

	busNames  []string
	stopNames []string
}

// BusNames returns bus names in alphabetical order.
func (b *Base) BusNames() []string { return b.busNames }

// StopNames returns stop names in alphabetical order.
func (b *Base) StopNames() []string { return b.stopNames }

func (b *Base) refreshNameIndexes() {
	b.busNames = b.busNames[:0]
	for name := range b.Buses {
		b.busNames = append(b.busNames, name)
	}
	sort.Strings(b.busNames)
	b.stopNames = b.stopNames[:0]
	for name := range b.Stops {
		b.stopNames = append(b.stopNames, name)
	}
	sort.Strings(b.stopNames)
}

// Build assembles the artifact from the freshly built components.
func Build(db *catalog.Catalog, tg *transit.Graph, routes router.Table, rb *render.Builder) *Base {
	base := &Base{
		Buses:  make(map[string]*Bus, db.BusesCount()),
		Stops:  make(map[string]*Stop, db.StopsCount()),
		Routes: routes,
	}
	for _, name := range db.BusNames() {
		bus := db.Bus(name)
		base.Buses[name] = &Bus{
			Name:           name,
			RouteLength:    bus.RouteLength,
			Curvature:      bus.Curvature(),
			StopsCnt:       bus.StopsCnt,
			UniqueStopsCnt: bus.UniqueStopsCnt,
			IsRounded:      bus.IsRounded,
			EndPoints:      bus.EndPoints,
			Route:          bus.Route,
		}
	}
	for _, name := range db.StopNames() {
		base.Stops[name] = &Stop{Name: name, Buses: db.Stop(name).Buses()}
	}
	base.Graph = GraphInfo{
		Vertices: make(map[string]Vertex, len(tg.Vertices)),
		Edges:    tg.Edges,
	}
	for name, v := range tg.Vertices {
		base.Graph.Vertices[name] = Vertex{Name: name, Wait: v.Wait, Ride: v.Ride}
	}
	base.Render = renderData(rb)
	base.refreshNameIndexes()
	return base
}

func renderData(rb *render.Builder) RenderData {
	s := rb.Settings
	data := RenderData{
		Width:             s.Width,
		Height:            s.Height,
		Padding:           s.Padding,
		OuterMargin:       s.OuterMargin,
		LineWidth:         s.LineWidth,
		UnderlayerColor:   s.UnderlayerColor.String(),
		UnderlayerWidth:   s.UnderlayerWidth,
		StopRadius:        s.StopRadius,
		BusLabelOffset:    s.BusLabelOffset,
		BusLabelFontSize:  s.BusLabelFontSize,
		StopLabelOffset:   s.StopLabelOffset,
		StopLabelFontSize: s.StopLabelFontSize,
		Layers:            s.Layers,
		StopsPoints:       rb.StopsPoints,
		BusesColors:       make(map[string]string, len(rb.BusesColors)),
	}
	for _, color := range s.Palette {
		data.Palette = append(data.Palette, color.String())
	}
	for name, color := range rb.BusesColors {
		data.BusesColors[name] = color.String()
	}
	return data
}
