package transit

import (
	"github.com/transitbase/transitbase_core/internal/catalog"
	"github.com/transitbase/transitbase_core/internal/graph"
)

// EdgeKind discriminates the two edge variants of the transit graph.
type EdgeKind string

const (
	KindWait EdgeKind = "Wait"
	KindBus  EdgeKind = "Bus"
)

// Vertex is the double-vertex encoding of one stop: passengers stand at Wait
// and sit at Ride.
type Vertex struct {
	Wait graph.VertexID
	Ride graph.VertexID
}

// Edge is one entry of the typed edge table, indexed by the matching
// graph.EdgeID. Stop is set for Wait edges; Bus, SpanCnt and EndPoints for
// Bus edges. EndPoints are indices into the bus's forward route, low first,
// for both travel directions.
type Edge struct {
	Kind EdgeKind
	From graph.VertexID
	To   graph.VertexID
	Time float64

	Stop string

	Bus       string
	SpanCnt   int32
	EndPoints [2]int32
}

// Graph is the time-weighted transit graph: the weight-only multigraph plus
// the parallel typed edge table and the stop name → vertex pair mapping.
type Graph struct {
	Vertices map[string]Vertex
	Edges    []Edge
	Weights  *graph.DirectedWeightedGraph
}

// Build derives the transit graph from the catalog. Vertices are allocated
// in catalog iteration order: stop k gets (2k, 2k+1). Every stop gets one
// Wait edge; every ordered stop pair i < j along a bus route gets a Bus edge
// whose weight is the accumulated road time, with the reverse traversal
// producing its own edge family for non-rounded buses.
func Build(db *catalog.Catalog) *Graph {
	g := &Graph{
		Vertices: make(map[string]Vertex, db.StopsCount()),
		Weights:  graph.NewDirectedWeightedGraph(db.StopsCount() * 2),
	}
	cnt := graph.VertexID(0)
	for _, name := range db.StopNames() {
		v := Vertex{Wait: cnt, Ride: cnt + 1}
		g.Vertices[name] = v
		g.Weights.AddEdge(graph.Edge{From: v.Wait, To: v.Ride, Weight: db.WaitTime})
		g.Edges = append(g.Edges, Edge{
			Kind: KindWait,
			From: v.Wait,
			To:   v.Ride,
			Time: db.WaitTime,
			Stop: name,
		})
		cnt += 2
	}
	for _, name := range db.BusNames() {
		bus := db.Bus(name)
		forward := make([]int, len(bus.Route))
		for i := range forward {
			forward[i] = i
		}
		g.registerBusEdges(db, bus, forward)
		if !bus.IsRounded {
			backward := make([]int, len(bus.Route))
			for i := range backward {
				backward[i] = len(bus.Route) - 1 - i
			}
			g.registerBusEdges(db, bus, backward)
		}
	}
	return g
}

// registerBusEdges walks one traversal direction of a route, given as a
// sequence of forward-route indices, and emits a Bus edge for every ordered
// position pair.
func (g *Graph) registerBusEdges(db *catalog.Catalog, bus *catalog.Bus, order []int) {
	for i := 0; i < len(order); i++ {
		var distance int32
		from := db.Stop(bus.Route[order[i]])
		prev := from
		for j := i + 1; j < len(order); j++ {
			to := db.Stop(bus.Route[order[j]])
			distance += prev.Distances[to.Name]
			time := float64(distance) / db.BusVelocity / 60
			g.Weights.AddEdge(graph.Edge{
				From:   g.Vertices[from.Name].Ride,
				To:     g.Vertices[to.Name].Wait,
				Weight: time,
			})
			g.Edges = append(g.Edges, Edge{
				Kind:      KindBus,
				From:      g.Vertices[from.Name].Ride,
				To:        g.Vertices[to.Name].Wait,
				Time:      time,
				Bus:       bus.Name,
				SpanCnt:   int32(j - i),
				EndPoints: endPoints(order[i], order[j]),
			})
			prev = to
		}
	}
}

func endPoints(a, b int) [2]int32 {
	if a > b {
		a, b = b, a
	}
	return [2]int32{int32(a), int32(b)}
}
