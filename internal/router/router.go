package router

import (
	"github.com/transitbase/transitbase_core/internal/graph"
	"github.com/transitbase/transitbase_core/internal/transit"
)

// RouteID is an opaque handle for one reconstructed itinerary.
type RouteID uint64

// RouteInfo describes a reconstructed route: its cache handle, the total
// weight from the frozen table, and the number of edges to fetch.
type RouteInfo struct {
	ID        RouteID
	Weight    float64
	EdgeCount int
}

// Router reconstructs itineraries from a frozen routes table. It keeps a
// per-query cache of expanded routes, keyed by a monotonically increasing
// id and removed by explicit release. Not safe for concurrent use.
type Router struct {
	routes Table
	edges  []transit.Edge

	nextRouteID RouteID
	expanded    map[RouteID][]graph.EdgeID
}

// New creates a router over the frozen table and its typed edge list.
func New(routes Table, edges []transit.Edge) *Router {
	return &Router{
		routes:   routes,
		edges:    edges,
		expanded: make(map[RouteID][]graph.EdgeID),
	}
}

// BuildRoute expands the shortest path between two vertices by walking the
// predecessor chain backwards from to. The second result is false when to
// is unreachable from from. The expansion stays cached until released.
func (r *Router) BuildRoute(from, to graph.VertexID) (RouteInfo, bool) {
	entry := r.routes[from][to]
	if !entry.Exists {
		return RouteInfo{}, false
	}
	var edges []graph.EdgeID
	if entry.HasPrev {
		edges = make([]graph.EdgeID, 0, 8)
		for edgeID := entry.PrevEdge; ; {
			edges = append(edges, edgeID)
			prev := r.routes[from][r.edges[edgeID].From]
			if !prev.HasPrev {
				break
			}
			edgeID = prev.PrevEdge
		}
		for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
			edges[i], edges[j] = edges[j], edges[i]
		}
	}

	id := r.nextRouteID
	r.nextRouteID++
	r.expanded[id] = edges
	return RouteInfo{ID: id, Weight: entry.Weight, EdgeCount: len(edges)}, true
}

// RouteEdge returns the id of the idx-th edge of a cached route.
func (r *Router) RouteEdge(id RouteID, idx int) graph.EdgeID {
	return r.expanded[id][idx]
}

// ReleaseRoute drops a cached expansion.
func (r *Router) ReleaseRoute(id RouteID) {
	delete(r.expanded, id)
}
