package catalog

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/transitbase/transitbase_core/internal/models"
)

// Stop is a transit station. Distances holds declared road distances in
// metres, keyed by destination stop name, symmetrised on load. PosInRoutes
// maps a bus name to the ascending positions at which this stop appears in
// that bus's forward route.
type Stop struct {
	Name        string
	Pos         orb.Point // lon, lat
	Distances   map[string]int32
	PosInRoutes map[string][]int
}

// Buses returns the names of the buses serving this stop in alphabetical
// order. Never nil.
func (s *Stop) Buses() []string {
	buses := make([]string, 0, len(s.PosInRoutes))
	for name := range s.PosInRoutes {
		buses = append(buses, name)
	}
	sort.Strings(buses)
	return buses
}

// Bus is a named line with its authoritative forward route and the aggregate
// statistics fixed at load time.
type Bus struct {
	Name           string
	IsRounded      bool
	RouteLength    int32
	GeoRouteLength float64
	Route          []string
	StopsCnt       int32
	UniqueStopsCnt int32
	EndPoints      [2]int32
}

// Curvature is the ratio of road length to great-circle length.
func (b *Bus) Curvature() float64 {
	return float64(b.RouteLength) / b.GeoRouteLength
}

// Catalog is the in-memory transit database. It is mutated only while New
// runs and is immutable afterwards; iteration order is alphabetical by name
// throughout.
type Catalog struct {
	WaitTime    float64 // minutes
	BusVelocity float64 // m/s

	stops     map[string]*Stop
	buses     map[string]*Bus
	stopNames []string
	busNames  []string
}

// New builds the catalog in two passes over the base requests: stops first,
// then buses. Input is trusted; a missing road distance between adjacent
// route stops is a build fault.
func New(base []models.BaseRequest, settings models.RoutingSettings) (*Catalog, error) {
	c := &Catalog{
		WaitTime:    float64(settings.BusWaitTime),
		BusVelocity: settings.BusVelocity / 3.6,
		stops:       make(map[string]*Stop),
		buses:       make(map[string]*Bus),
	}
	for _, req := range base {
		if req.Type == models.RequestStop {
			c.loadStop(req)
		}
	}
	for _, req := range base {
		if req.Type == models.RequestBus {
			if err := c.loadBus(req); err != nil {
				return nil, err
			}
		}
	}
	c.stopNames = sortedKeys(c.stops)
	c.busNames = sortedKeys(c.buses)
	return c, nil
}

func (c *Catalog) ensureStop(name string) *Stop {
	stop, ok := c.stops[name]
	if !ok {
		stop = &Stop{
			Name:        name,
			Distances:   map[string]int32{name: 0},
			PosInRoutes: make(map[string][]int),
		}
		c.stops[name] = stop
	}
	return stop
}

func (c *Catalog) loadStop(req models.BaseRequest) {
	stop := c.ensureStop(req.Name)
	stop.Pos = orb.Point{req.Longitude, req.Latitude}
	for neighbour, distance := range req.RoadDistances {
		stop.Distances[neighbour] = distance
		back := c.ensureStop(neighbour)
		if _, ok := back.Distances[req.Name]; !ok {
			back.Distances[req.Name] = distance
		}
	}
}

func (c *Catalog) loadBus(req models.BaseRequest) error {
	bus, ok := c.buses[req.Name]
	if !ok {
		bus = &Bus{Name: req.Name}
		c.buses[req.Name] = bus
	} else {
		// A later record replaces the earlier route wholesale.
		c.dropBusPositions(req.Name)
		*bus = Bus{Name: req.Name}
	}
	bus.IsRounded = req.IsRoundtrip

	unique := make(map[string]struct{}, len(req.Stops))
	for _, stopName := range req.Stops {
		stop := c.ensureStop(stopName)
		unique[stopName] = struct{}{}
		stop.PosInRoutes[req.Name] = append(stop.PosInRoutes[req.Name], len(bus.Route))
		bus.Route = append(bus.Route, stopName)
	}
	if len(bus.Route) == 0 {
		return nil
	}

	bus.EndPoints = [2]int32{0, int32(len(bus.Route) - 1)}
	bus.UniqueStopsCnt = int32(len(unique))
	if bus.IsRounded {
		bus.StopsCnt = int32(len(bus.Route))
	} else {
		bus.StopsCnt = int32(len(bus.Route)*2 - 1)
	}

	length, geoLength, err := c.computeDistances(bus.Route)
	if err != nil {
		return fmt.Errorf("bus %q: %w", req.Name, err)
	}
	bus.RouteLength = length
	bus.GeoRouteLength = geoLength
	if !bus.IsRounded {
		reversed := make([]string, len(bus.Route))
		for i, name := range bus.Route {
			reversed[len(bus.Route)-1-i] = name
		}
		length, geoLength, err = c.computeDistances(reversed)
		if err != nil {
			return fmt.Errorf("bus %q: %w", req.Name, err)
		}
		bus.RouteLength += length
		bus.GeoRouteLength += geoLength
	}
	return nil
}

// computeDistances accumulates road and great-circle lengths over successive
// stops of a traversal.
func (c *Catalog) computeDistances(route []string) (int32, float64, error) {
	var length int32
	var geoLength float64
	for i := 0; i+1 < len(route); i++ {
		curr, next := c.stops[route[i]], c.stops[route[i+1]]
		d, ok := curr.Distances[next.Name]
		if !ok {
			return 0, 0, fmt.Errorf("no road distance between %q and %q", curr.Name, next.Name)
		}
		length += d
		geoLength += geo.Distance(curr.Pos, next.Pos)
	}
	return length, geoLength, nil
}

func (c *Catalog) dropBusPositions(busName string) {
	for _, stop := range c.stops {
		delete(stop.PosInRoutes, busName)
	}
}

// StopsCount returns the number of stops.
func (c *Catalog) StopsCount() int { return len(c.stops) }

// BusesCount returns the number of buses.
func (c *Catalog) BusesCount() int { return len(c.buses) }

// StopNames returns stop names in alphabetical order.
func (c *Catalog) StopNames() []string { return c.stopNames }

// BusNames returns bus names in alphabetical order.
func (c *Catalog) BusNames() []string { return c.busNames }

// Stop returns the stop by name, or nil.
func (c *Catalog) Stop(name string) *Stop { return c.stops[name] }

// Bus returns the bus by name, or nil.
func (c *Catalog) Bus(name string) *Bus { return c.buses[name] }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
