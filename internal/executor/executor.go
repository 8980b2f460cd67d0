// Package executor dispatches stat requests against a loaded artifact and
// produces one result per request, in request order.
package executor

import (
	"github.com/transitbase/transitbase_core/internal/artifact"
	"github.com/transitbase/transitbase_core/internal/canvas"
	"github.com/transitbase/transitbase_core/internal/models"
	"github.com/transitbase/transitbase_core/internal/router"
	"github.com/transitbase/transitbase_core/internal/transit"
)

// Executor owns the serve-time views over one artifact.
type Executor struct {
	base   *artifact.Base
	router *router.Router
	canvas *canvas.Canvas
}

// New prepares an executor for the loaded artifact.
func New(base *artifact.Base) *Executor {
	return &Executor{
		base:   base,
		router: router.New(base.Routes, base.Graph.Edges),
		canvas: canvas.New(base),
	}
}

// ExecuteRequests answers every request in input order.
func (e *Executor) ExecuteRequests(requests []models.StatRequest) []any {
	results := make([]any, 0, len(requests))
	for _, req := range requests {
		results = append(results, e.execute(req))
	}
	return results
}

func (e *Executor) execute(req models.StatRequest) any {
	switch req.Type {
	case models.RequestBus:
		return e.executeBus(req)
	case models.RequestStop:
		return e.executeStop(req)
	case models.RequestRoute:
		return e.executeRoute(req)
	case models.RequestMap:
		return models.MapResponse{RequestID: req.ID, Map: e.canvas.DrawnMap()}
	}
	return notFound(req.ID)
}

func notFound(requestID int) models.ErrorResponse {
	return models.ErrorResponse{RequestID: requestID, ErrorMessage: "not found"}
}

func (e *Executor) executeBus(req models.StatRequest) any {
	bus, ok := e.base.Buses[req.Name]
	if !ok {
		return notFound(req.ID)
	}
	return models.BusStatResponse{
		RequestID:       req.ID,
		RouteLength:     bus.RouteLength,
		Curvature:       bus.Curvature,
		StopCount:       bus.StopsCnt,
		UniqueStopCount: bus.UniqueStopsCnt,
	}
}

func (e *Executor) executeStop(req models.StatRequest) any {
	stop, ok := e.base.Stops[req.Name]
	if !ok {
		return notFound(req.ID)
	}
	return models.StopStatResponse{RequestID: req.ID, Buses: stop.Buses}
}

func (e *Executor) executeRoute(req models.StatRequest) any {
	fromVertex, okFrom := e.base.Graph.Vertices[req.From]
	toVertex, okTo := e.base.Graph.Vertices[req.To]
	if !okFrom || !okTo {
		return notFound(req.ID)
	}
	info, ok := e.router.BuildRoute(fromVertex.Wait, toVertex.Wait)
	if !ok {
		return notFound(req.ID)
	}
	defer e.router.ReleaseRoute(info.ID)

	items := make([]models.RouteItem, 0, info.EdgeCount)
	var segments []canvas.RouteSegment
	var labelStops []string
	for i := 0; i < info.EdgeCount; i++ {
		edge := e.base.Graph.Edges[e.router.RouteEdge(info.ID, i)]
		switch edge.Kind {
		case transit.KindWait:
			items = append(items, models.RouteItem{
				Type:     models.ItemWait,
				StopName: edge.Stop,
				Time:     edge.Time,
			})
			labelStops = append(labelStops, edge.Stop)
		case transit.KindBus:
			items = append(items, models.RouteItem{
				Type:      models.RequestBus,
				Bus:       edge.Bus,
				SpanCount: edge.SpanCnt,
				Time:      edge.Time,
			})
			segments = append(segments, e.segment(edge))
		}
	}
	if req.From != req.To {
		labelStops = append(labelStops, req.To)
	}
	return models.RouteResponse{
		RequestID: req.ID,
		TotalTime: info.Weight,
		Items:     items,
		Map:       e.canvas.DrawRoute(segments, labelStops),
	}
}

// segment slices the ridden span out of the bus's forward route.
func (e *Executor) segment(edge transit.Edge) canvas.RouteSegment {
	bus := e.base.Buses[edge.Bus]
	return canvas.RouteSegment{
		Bus:   edge.Bus,
		Stops: bus.Route[edge.EndPoints[0] : edge.EndPoints[1]+1],
		Start: edge.EndPoints[0],
		End:   edge.EndPoints[1],
	}
}
