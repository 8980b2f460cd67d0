package artifact

import (
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/transitbase/transitbase_core/internal/router"
	"github.com/transitbase/transitbase_core/internal/transit"
)

// Wire schema. Scalar fields follow proto3 presence (defaults are omitted);
// the route-table rows and end-point pairs are positional and always carry
// every element. All repeated sequences are written in deterministic order
// (alphabetical names, ascending ids), so encoding the same Base twice
// yields identical bytes.
//
//	message TransportBase {
//	  repeated Bus buses = 1;              // alphabetical
//	  repeated Stop stops = 2;             // alphabetical
//	  Graph graph = 3;
//	  repeated RouteRow routes = 4;        // one row per vertex
//	  Render render = 5;
//	}
//	message Bus {
//	  string name = 1;
//	  int32 route_length = 2;
//	  double curvature = 3;
//	  int32 stops_cnt = 4;
//	  int32 unique_stops_cnt = 5;
//	  bool is_rouded = 6;                  // historical wire spelling
//	  repeated uint32 end_points = 7;      // exactly two entries
//	  repeated string route = 8;
//	}
//	message Stop { string name = 1; repeated string buses = 2; }
//	message Graph {
//	  repeated Vertex vertices = 1;        // alphabetical
//	  repeated Edge edges = 2;             // by edge id
//	}
//	message Vertex { string name = 1; uint32 wait = 2; uint32 ride = 3; }
//	message Edge {
//	  bool is_wait_edge = 1;
//	  uint32 from = 2;
//	  uint32 to = 3;
//	  double time = 4;
//	  WaitMeta wait = 5;                   // wait edges only
//	  BusMeta bus = 6;                     // bus edges only
//	}
//	message WaitMeta { string stop = 1; }
//	message BusMeta { string bus = 1; int32 span_cnt = 2; repeated uint32 end_points = 3; }
//	message RouteRow { repeated RouteEntry element = 1; }  // positional, V entries
//	message RouteEntry { bool has_value = 1; bool has_prev = 2; uint32 prev_edge = 3; double weight = 4; }
//	message Render {
//	  double width = 1; double height = 2; double padding = 3; double outer_margin = 4;
//	  repeated string color_palette = 5;
//	  double line_width = 6;
//	  string underlayer_color = 7;
//	  double underlayer_width = 8;
//	  double stop_radius = 9;
//	  Point bus_label_offset = 10;
//	  int32 bus_label_font_size = 11;
//	  Point stop_label_offset = 12;
//	  int32 stop_label_font_size = 13;
//	  repeated string layers = 14;
//	  repeated StopPoint stops_points = 15;  // alphabetical
//	  repeated BusColor buses_colors = 16;   // alphabetical
//	}
//	message Point { double x = 1; double y = 2; }
//	message StopPoint { string name = 1; Point point = 2; }
//	message BusColor { string name = 1; string color = 2; }
const (
	fieldBuses  = 1
	fieldStops  = 2
	fieldGraph  = 3
	fieldRoutes = 4
	fieldRender = 5
)

// Marshal encodes the whole artifact.
func (b *Base) Marshal() []byte {
	var out []byte
	for _, name := range b.busNames {
		out = appendMessage(out, fieldBuses, b.Buses[name].marshal())
	}
	for _, name := range b.stopNames {
		out = appendMessage(out, fieldStops, b.Stops[name].marshal())
	}
	out = appendMessage(out, fieldGraph, b.Graph.marshal())
	for _, row := range b.Routes {
		out = appendMessage(out, fieldRoutes, marshalRouteRow(row))
	}
	out = appendMessage(out, fieldRender, b.Render.marshal())
	return out
}

func (bus *Bus) marshal() []byte {
	var out []byte
	out = appendString(out, 1, bus.Name)
	out = appendVarint(out, 2, uint64(bus.RouteLength))
	out = appendDouble(out, 3, bus.Curvature)
	out = appendVarint(out, 4, uint64(bus.StopsCnt))
	out = appendVarint(out, 5, uint64(bus.UniqueStopsCnt))
	out = appendBool(out, 6, bus.IsRounded)
	out = appendEndPoints(out, 7, bus.EndPoints)
	for _, stop := range bus.Route {
		out = appendString(out, 8, stop)
	}
	return out
}

func (stop *Stop) marshal() []byte {
	var out []byte
	out = appendString(out, 1, stop.Name)
	for _, bus := range stop.Buses {
		out = appendString(out, 2, bus)
	}
	return out
}

func (g *GraphInfo) marshal() []byte {
	var out []byte
	names := make([]string, 0, len(g.Vertices))
	for name := range g.Vertices {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := g.Vertices[name]
		var body []byte
		body = appendString(body, 1, v.Name)
		body = appendVarint(body, 2, uint64(v.Wait))
		body = appendVarint(body, 3, uint64(v.Ride))
		out = appendMessage(out, 1, body)
	}
	for i := range g.Edges {
		edge := &g.Edges[i]
		var body []byte
		body = appendBool(body, 1, edge.Kind == transit.KindWait)
		body = appendVarint(body, 2, uint64(edge.From))
		body = appendVarint(body, 3, uint64(edge.To))
		body = appendDouble(body, 4, edge.Time)
		if edge.Kind == transit.KindWait {
			body = appendMessage(body, 5, appendString(nil, 1, edge.Stop))
		} else {
			var meta []byte
			meta = appendString(meta, 1, edge.Bus)
			meta = appendVarint(meta, 2, uint64(edge.SpanCnt))
			meta = appendEndPoints(meta, 3, edge.EndPoints)
			body = appendMessage(body, 6, meta)
		}
		out = appendMessage(out, 2, body)
	}
	return out
}

func marshalRouteRow(row []router.RouteEntry) []byte {
	var out []byte
	for _, entry := range row {
		var body []byte
		body = appendBool(body, 1, entry.Exists)
		if entry.Exists {
			body = appendBool(body, 2, entry.HasPrev)
			if entry.HasPrev {
				body = appendVarint(body, 3, uint64(entry.PrevEdge))
			}
			body = appendDouble(body, 4, entry.Weight)
		}
		out = appendMessage(out, 1, body)
	}
	return out
}

func (r *RenderData) marshal() []byte {
	var out []byte
	out = appendDouble(out, 1, r.Width)
	out = appendDouble(out, 2, r.Height)
	out = appendDouble(out, 3, r.Padding)
	out = appendDouble(out, 4, r.OuterMargin)
	for _, color := range r.Palette {
		out = appendString(out, 5, color)
	}
	out = appendDouble(out, 6, r.LineWidth)
	out = appendString(out, 7, r.UnderlayerColor)
	out = appendDouble(out, 8, r.UnderlayerWidth)
	out = appendDouble(out, 9, r.StopRadius)
	out = appendMessage(out, 10, marshalPoint(r.BusLabelOffset.X, r.BusLabelOffset.Y))
	out = appendVarint(out, 11, uint64(r.BusLabelFontSize))
	out = appendMessage(out, 12, marshalPoint(r.StopLabelOffset.X, r.StopLabelOffset.Y))
	out = appendVarint(out, 13, uint64(r.StopLabelFontSize))
	for _, layer := range r.Layers {
		out = appendString(out, 14, layer)
	}
	names := make([]string, 0, len(r.StopsPoints))
	for name := range r.StopsPoints {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		point := r.StopsPoints[name]
		var body []byte
		body = appendString(body, 1, name)
		body = appendMessage(body, 2, marshalPoint(point.X, point.Y))
		out = appendMessage(out, 15, body)
	}
	names = names[:0]
	for name := range r.BusesColors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		var body []byte
		body = appendString(body, 1, name)
		body = appendString(body, 2, r.BusesColors[name])
		out = appendMessage(out, 16, body)
	}
	return out
}

func marshalPoint(x, y float64) []byte {
	var out []byte
	out = appendDouble(out, 1, x)
	out = appendDouble(out, 2, y)
	return out
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarint(b, num, 1)
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

// appendMessage always emits the field, even with an empty body, because
// positional sequences (route rows) rely on element count.
func appendMessage(b []byte, num protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

// appendEndPoints writes both pair elements unconditionally; the pair is
// positional and zero is a valid index.
func appendEndPoints(b []byte, num protowire.Number, pair [2]int32) []byte {
	for _, v := range pair {
		b = protowire.AppendTag(b, num, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(v))
	}
	return b
}
