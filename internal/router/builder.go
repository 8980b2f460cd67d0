package router

import (
	"github.com/transitbase/transitbase_core/internal/graph"
)

// RouteEntry is one cell of the all-pairs table. Exists is false for
// unreachable pairs; HasPrev is false only on the diagonal.
type RouteEntry struct {
	Exists   bool
	Weight   float64
	HasPrev  bool
	PrevEdge graph.EdgeID
}

// Table is the V×V all-pairs shortest path matrix, indexed [from][to].
type Table [][]RouteEntry

// BuildTable runs the Floyd–Warshall dynamic program over the graph. The
// relaxation order is fixed (k-major, then from, then to) and ties keep the
// incumbent entry, so PrevEdge is deterministic. Edge weights must be
// non-negative.
func BuildTable(g *graph.DirectedWeightedGraph) Table {
	vertexCount := g.GetVertexCount()
	table := make(Table, vertexCount)
	for i := range table {
		table[i] = make([]RouteEntry, vertexCount)
	}

	for v := graph.VertexID(0); int(v) < vertexCount; v++ {
		table[v][v] = RouteEntry{Exists: true}
		for _, edgeID := range g.GetIncidentEdges(v) {
			edge := g.GetEdge(edgeID)
			entry := &table[v][edge.To]
			if !entry.Exists || entry.Weight > edge.Weight {
				*entry = RouteEntry{
					Exists:   true,
					Weight:   edge.Weight,
					HasPrev:  true,
					PrevEdge: edgeID,
				}
			}
		}
	}

	for through := 0; through < vertexCount; through++ {
		for from := 0; from < vertexCount; from++ {
			first := table[from][through]
			if !first.Exists {
				continue
			}
			for to := 0; to < vertexCount; to++ {
				second := table[through][to]
				if !second.Exists {
					continue
				}
				relax(&table[from][to], first, second)
			}
		}
	}
	return table
}

func relax(entry *RouteEntry, first, second RouteEntry) {
	candidate := first.Weight + second.Weight
	if entry.Exists && entry.Weight <= candidate {
		return
	}
	*entry = RouteEntry{Exists: true, Weight: candidate}
	if second.HasPrev {
		entry.HasPrev = true
		entry.PrevEdge = second.PrevEdge
	} else if first.HasPrev {
		entry.HasPrev = true
		entry.PrevEdge = first.PrevEdge
	}
}
