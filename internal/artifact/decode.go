package artifact

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/transitbase/transitbase_core/internal/graph"
	"github.com/transitbase/transitbase_core/internal/router"
	"github.com/transitbase/transitbase_core/internal/svg"
	"github.com/transitbase/transitbase_core/internal/transit"
)

// Unmarshal reconstructs the artifact from its wire form. Nothing is
// recomputed; the decoded Base serves queries as-is.
func Unmarshal(data []byte) (*Base, error) {
	base := &Base{
		Buses: make(map[string]*Bus),
		Stops: make(map[string]*Stop),
		Graph: GraphInfo{Vertices: make(map[string]Vertex)},
	}
	err := eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) error {
		switch num {
		case fieldBuses:
			bus, err := unmarshalBus(data)
			if err != nil {
				return err
			}
			base.Buses[bus.Name] = bus
		case fieldStops:
			stop, err := unmarshalStop(data)
			if err != nil {
				return err
			}
			base.Stops[stop.Name] = stop
		case fieldGraph:
			return unmarshalGraph(data, &base.Graph)
		case fieldRoutes:
			row, err := unmarshalRouteRow(data)
			if err != nil {
				return err
			}
			base.Routes = append(base.Routes, row)
		case fieldRender:
			return unmarshalRender(data, &base.Render)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("artifact: %w", err)
	}
	base.refreshNameIndexes()
	return base, nil
}

// eachField walks one message level, handing length-delimited fields their
// payload and skipping over everything unknown.
func eachField(data []byte, visit func(num protowire.Number, typ protowire.Type, data []byte) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		var payload []byte
		switch typ {
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			payload, data = v, data[n:]
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			payload, data = protowire.AppendVarint(nil, v), data[n:]
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			payload, data = protowire.AppendFixed64(nil, v), data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
			continue
		}
		if err := visit(num, typ, payload); err != nil {
			return err
		}
	}
	return nil
}

func asVarint(data []byte) uint64 {
	v, _ := protowire.ConsumeVarint(data)
	return v
}

func asDouble(data []byte) float64 {
	v, _ := protowire.ConsumeFixed64(data)
	return math.Float64frombits(v)
}

func unmarshalBus(data []byte) (*Bus, error) {
	bus := &Bus{}
	var endPoints []int32
	err := eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) error {
		switch num {
		case 1:
			bus.Name = string(data)
		case 2:
			bus.RouteLength = int32(asVarint(data))
		case 3:
			bus.Curvature = asDouble(data)
		case 4:
			bus.StopsCnt = int32(asVarint(data))
		case 5:
			bus.UniqueStopsCnt = int32(asVarint(data))
		case 6:
			bus.IsRounded = asVarint(data) != 0
		case 7:
			endPoints = append(endPoints, int32(asVarint(data)))
		case 8:
			bus.Route = append(bus.Route, string(data))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(endPoints) != 2 {
		return nil, fmt.Errorf("bus %q: end point pair has %d entries", bus.Name, len(endPoints))
	}
	bus.EndPoints = [2]int32{endPoints[0], endPoints[1]}
	return bus, nil
}

func unmarshalStop(data []byte) (*Stop, error) {
	stop := &Stop{}
	err := eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) error {
		switch num {
		case 1:
			stop.Name = string(data)
		case 2:
			stop.Buses = append(stop.Buses, string(data))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if stop.Buses == nil {
		stop.Buses = []string{}
	}
	return stop, nil
}

func unmarshalGraph(data []byte, info *GraphInfo) error {
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) error {
		switch num {
		case 1:
			var v Vertex
			err := eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) error {
				switch num {
				case 1:
					v.Name = string(data)
				case 2:
					v.Wait = graph.VertexID(asVarint(data))
				case 3:
					v.Ride = graph.VertexID(asVarint(data))
				}
				return nil
			})
			if err != nil {
				return err
			}
			info.Vertices[v.Name] = v
		case 2:
			edge, err := unmarshalEdge(data)
			if err != nil {
				return err
			}
			info.Edges = append(info.Edges, edge)
		}
		return nil
	})
}

func unmarshalEdge(data []byte) (transit.Edge, error) {
	edge := transit.Edge{Kind: transit.KindBus}
	var endPoints []int32
	err := eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) error {
		switch num {
		case 1:
			if asVarint(data) != 0 {
				edge.Kind = transit.KindWait
			}
		case 2:
			edge.From = graph.VertexID(asVarint(data))
		case 3:
			edge.To = graph.VertexID(asVarint(data))
		case 4:
			edge.Time = asDouble(data)
		case 5:
			return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) error {
				if num == 1 {
					edge.Stop = string(data)
				}
				return nil
			})
		case 6:
			return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) error {
				switch num {
				case 1:
					edge.Bus = string(data)
				case 2:
					edge.SpanCnt = int32(asVarint(data))
				case 3:
					endPoints = append(endPoints, int32(asVarint(data)))
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return transit.Edge{}, err
	}
	if edge.Kind == transit.KindBus {
		if len(endPoints) != 2 {
			return transit.Edge{}, fmt.Errorf("bus edge: end point pair has %d entries", len(endPoints))
		}
		edge.EndPoints = [2]int32{endPoints[0], endPoints[1]}
	}
	return edge, nil
}

func unmarshalRouteRow(data []byte) ([]router.RouteEntry, error) {
	var row []router.RouteEntry
	err := eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) error {
		if num != 1 {
			return nil
		}
		var entry router.RouteEntry
		err := eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) error {
			switch num {
			case 1:
				entry.Exists = asVarint(data) != 0
			case 2:
				entry.HasPrev = asVarint(data) != 0
			case 3:
				entry.PrevEdge = graph.EdgeID(asVarint(data))
			case 4:
				entry.Weight = asDouble(data)
			}
			return nil
		})
		if err != nil {
			return err
		}
		row = append(row, entry)
		return nil
	})
	return row, err
}

func unmarshalRender(data []byte, r *RenderData) error {
	r.StopsPoints = make(map[string]svg.Point)
	r.BusesColors = make(map[string]string)
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) error {
		switch num {
		case 1:
			r.Width = asDouble(data)
		case 2:
			r.Height = asDouble(data)
		case 3:
			r.Padding = asDouble(data)
		case 4:
			r.OuterMargin = asDouble(data)
		case 5:
			r.Palette = append(r.Palette, string(data))
		case 6:
			r.LineWidth = asDouble(data)
		case 7:
			r.UnderlayerColor = string(data)
		case 8:
			r.UnderlayerWidth = asDouble(data)
		case 9:
			r.StopRadius = asDouble(data)
		case 10:
			return unmarshalPoint(data, &r.BusLabelOffset)
		case 11:
			r.BusLabelFontSize = int32(asVarint(data))
		case 12:
			return unmarshalPoint(data, &r.StopLabelOffset)
		case 13:
			r.StopLabelFontSize = int32(asVarint(data))
		case 14:
			r.Layers = append(r.Layers, string(data))
		case 15:
			var name string
			var point svg.Point
			err := eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) error {
				switch num {
				case 1:
					name = string(data)
				case 2:
					return unmarshalPoint(data, &point)
				}
				return nil
			})
			if err != nil {
				return err
			}
			r.StopsPoints[name] = point
		case 16:
			var name, color string
			err := eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) error {
				switch num {
				case 1:
					name = string(data)
				case 2:
					color = string(data)
				}
				return nil
			})
			if err != nil {
				return err
			}
			r.BusesColors[name] = color
		}
		return nil
	})
}

func unmarshalPoint(data []byte, p *svg.Point) error {
	return eachField(data, func(num protowire.Number, typ protowire.Type, data []byte) error {
		switch num {
		case 1:
			p.X = asDouble(data)
		case 2:
			p.Y = asDouble(data)
		}
		return nil
	})
}
