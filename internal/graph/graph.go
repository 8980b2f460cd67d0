package graph

// VertexID identifies a vertex. Vertices are dense integers allocated by the
// caller; the graph only needs to know how many there are.
type VertexID int

// EdgeID is the insertion index of an edge and stays valid for the lifetime
// of the graph.
type EdgeID int

// Edge is a directed weighted connection between two vertices.
type Edge struct {
	From   VertexID
	To     VertexID
	Weight float64
}

// DirectedWeightedGraph is a directed weighted multigraph. Edges are stored
// in a flat sequence in insertion order and indexed per source vertex, so an
// EdgeID doubles as an index into any parallel metadata table the caller
// maintains. The graph is append-only during build and immutable afterwards.
type DirectedWeightedGraph struct {
	edges         []Edge
	incidenceList [][]EdgeID
}

// NewDirectedWeightedGraph creates a graph with a fixed number of vertices
// and no edges.
func NewDirectedWeightedGraph(vertexCount int) *DirectedWeightedGraph {
	return &DirectedWeightedGraph{
		incidenceList: make([][]EdgeID, vertexCount),
	}
}

// AddEdge appends an edge and returns its id, equal to its insertion order.
func (g *DirectedWeightedGraph) AddEdge(e Edge) EdgeID {
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, e)
	g.incidenceList[e.From] = append(g.incidenceList[e.From], id)
	return id
}

// GetEdge returns the edge stored under id.
func (g *DirectedWeightedGraph) GetEdge(id EdgeID) Edge {
	return g.edges[id]
}

// GetIncidentEdges returns the ids of all edges whose source is v, in
// insertion order. The returned slice is owned by the graph.
func (g *DirectedWeightedGraph) GetIncidentEdges(v VertexID) []EdgeID {
	return g.incidenceList[v]
}

// GetVertexCount returns the number of vertices.
func (g *DirectedWeightedGraph) GetVertexCount() int {
	return len(g.incidenceList)
}

// GetEdgeCount returns the number of edges.
func (g *DirectedWeightedGraph) GetEdgeCount() int {
	return len(g.edges)
}
