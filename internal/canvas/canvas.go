// Package canvas draws the frozen map. It consumes only the artifact: the
// precomputed stop points, bus colours and layer order, never the catalog.
package canvas

import (
	"github.com/transitbase/transitbase_core/internal/artifact"
	"github.com/transitbase/transitbase_core/internal/render"
	"github.com/transitbase/transitbase_core/internal/svg"
)

// RouteSegment is the ridden span of one Bus leg of an itinerary: the
// forward-route slice between the leg's end points.
type RouteSegment struct {
	Bus   string
	Stops []string
	Start int32
	End   int32
}

// Canvas renders the full map once and route overlays on demand.
type Canvas struct {
	base     *artifact.Base
	drawnMap string
	layers   map[string]func(*svg.Document)
}

// New prepares a canvas and renders the full map.
func New(base *artifact.Base) *Canvas {
	c := &Canvas{base: base}
	c.layers = map[string]func(*svg.Document){
		render.LayerBusLines:   c.renderBusLines,
		render.LayerBusLabels:  c.renderBusLabels,
		render.LayerStopPoints: c.renderStopPoints,
		render.LayerStopLabels: c.renderStopLabels,
	}
	var doc svg.Document
	// An empty catalog renders as header and footer only, with no body
	// primitives, so even the frame stays out.
	if len(base.StopNames()) > 0 {
		c.addFrame(&doc)
		for _, layer := range base.Render.Layers {
			if draw, ok := c.layers[layer]; ok {
				draw(&doc)
			}
		}
	}
	c.drawnMap = doc.Render()
	return c
}

// DrawnMap returns the full-map drawing.
func (c *Canvas) DrawnMap() string {
	return c.drawnMap
}

// DrawRoute renders the overlay for one itinerary: the configured layers
// restricted to the ridden segments, the stops on them, and the given label
// stops (boarding stops plus destination), over a fresh frame.
func (c *Canvas) DrawRoute(segments []RouteSegment, labelStops []string) string {
	var doc svg.Document
	c.addFrame(&doc)
	for _, layer := range c.base.Render.Layers {
		switch layer {
		case render.LayerBusLines:
			c.renderRouteBusLines(&doc, segments)
		case render.LayerBusLabels:
			c.renderRouteBusLabels(&doc, segments)
		case render.LayerStopPoints:
			c.renderRouteStopPoints(&doc, segments)
		case render.LayerStopLabels:
			c.renderRouteStopLabels(&doc, labelStops)
		}
	}
	return doc.Render()
}

// addFrame paints the outer frame rectangle the layers sit on.
func (c *Canvas) addFrame(doc *svg.Document) {
	r := &c.base.Render
	doc.Add(svg.Rect{
		Origin: svg.Point{X: -r.OuterMargin, Y: -r.OuterMargin},
		Width:  r.Width + 2*r.OuterMargin,
		Height: r.Height + 2*r.OuterMargin,
		Attrs:  svg.Attrs{Fill: svg.Named(r.UnderlayerColor), Stroke: svg.NoneColor},
	})
}

func (c *Canvas) busColor(name string) svg.Color {
	if color, ok := c.base.Render.BusesColors[name]; ok {
		return svg.Named(color)
	}
	return svg.NoneColor
}

func (c *Canvas) linePolyline(busName string, stops []string) svg.Polyline {
	line := svg.Polyline{Attrs: svg.Attrs{
		Stroke:         c.busColor(busName),
		StrokeWidth:    c.base.Render.LineWidth,
		StrokeLineCap:  "round",
		StrokeLineJoin: "round",
	}}
	for _, stop := range stops {
		line.AddPoint(c.base.Render.StopsPoints[stop])
	}
	return line
}

func (c *Canvas) renderBusLines(doc *svg.Document) {
	for _, name := range c.base.BusNames() {
		bus := c.base.Buses[name]
		if len(bus.Route) == 0 {
			continue
		}
		stops := make([]string, 0, 2*len(bus.Route)-1)
		stops = append(stops, bus.Route...)
		if !bus.IsRounded {
			for i := len(bus.Route) - 2; i >= 0; i-- {
				stops = append(stops, bus.Route[i])
			}
		}
		doc.Add(c.linePolyline(name, stops))
	}
}

// addLabel draws one text twice: the underlayer halo, then the foreground.
func (c *Canvas) addLabel(doc *svg.Document, at svg.Point, offset svg.Point, fontSize int32, bold bool, data string, fill svg.Color) {
	r := &c.base.Render
	text := svg.Text{
		Point:      at,
		Offset:     offset,
		FontSize:   fontSize,
		FontFamily: "Verdana",
		Data:       data,
	}
	if bold {
		text.FontWeight = "bold"
	}
	under := text
	under.Attrs = svg.Attrs{
		Fill:           svg.Named(r.UnderlayerColor),
		Stroke:         svg.Named(r.UnderlayerColor),
		StrokeWidth:    r.UnderlayerWidth,
		StrokeLineCap:  "round",
		StrokeLineJoin: "round",
	}
	doc.Add(under)
	text.Attrs = svg.Attrs{Fill: fill}
	doc.Add(text)
}

func (c *Canvas) addBusLabel(doc *svg.Document, busName, stopName string) {
	r := &c.base.Render
	c.addLabel(doc, r.StopsPoints[stopName], r.BusLabelOffset, r.BusLabelFontSize, true, busName, c.busColor(busName))
}

func (c *Canvas) renderBusLabels(doc *svg.Document) {
	for _, name := range c.base.BusNames() {
		bus := c.base.Buses[name]
		if len(bus.Route) == 0 {
			continue
		}
		first := bus.Route[bus.EndPoints[0]]
		c.addBusLabel(doc, name, first)
		if last := bus.Route[bus.EndPoints[1]]; !bus.IsRounded && last != first {
			c.addBusLabel(doc, name, last)
		}
	}
}

func (c *Canvas) addStopPoint(doc *svg.Document, stopName string) {
	r := &c.base.Render
	doc.Add(svg.Circle{
		Center: r.StopsPoints[stopName],
		Radius: r.StopRadius,
		Attrs:  svg.Attrs{Fill: svg.Named("white"), Stroke: svg.NoneColor},
	})
}

func (c *Canvas) renderStopPoints(doc *svg.Document) {
	for _, name := range c.base.StopNames() {
		c.addStopPoint(doc, name)
	}
}

func (c *Canvas) addStopLabel(doc *svg.Document, stopName string) {
	r := &c.base.Render
	c.addLabel(doc, r.StopsPoints[stopName], r.StopLabelOffset, r.StopLabelFontSize, false, stopName, svg.Named("black"))
}

func (c *Canvas) renderStopLabels(doc *svg.Document) {
	for _, name := range c.base.StopNames() {
		c.addStopLabel(doc, name)
	}
}

func (c *Canvas) renderRouteBusLines(doc *svg.Document, segments []RouteSegment) {
	for _, seg := range segments {
		if len(seg.Stops) == 0 {
			continue
		}
		doc.Add(c.linePolyline(seg.Bus, seg.Stops))
	}
}

// renderRouteBusLabels labels a ridden segment end only where it coincides
// with a terminal of the bus, once per (bus, stop).
func (c *Canvas) renderRouteBusLabels(doc *svg.Document, segments []RouteSegment) {
	type labelKey struct {
		bus  string
		stop string
	}
	drawn := make(map[labelKey]bool)
	for _, seg := range segments {
		bus := c.base.Buses[seg.Bus]
		if bus == nil {
			continue
		}
		for _, pos := range [2]int32{seg.Start, seg.End} {
			if pos != bus.EndPoints[0] && pos != bus.EndPoints[1] {
				continue
			}
			key := labelKey{bus: seg.Bus, stop: bus.Route[pos]}
			if drawn[key] {
				continue
			}
			drawn[key] = true
			c.addBusLabel(doc, key.bus, key.stop)
		}
	}
}

func (c *Canvas) renderRouteStopPoints(doc *svg.Document, segments []RouteSegment) {
	drawn := make(map[string]bool)
	for _, seg := range segments {
		for _, stop := range seg.Stops {
			if drawn[stop] {
				continue
			}
			drawn[stop] = true
			c.addStopPoint(doc, stop)
		}
	}
}

func (c *Canvas) renderRouteStopLabels(doc *svg.Document, labelStops []string) {
	for _, stop := range labelStops {
		c.addStopLabel(doc, stop)
	}
}
