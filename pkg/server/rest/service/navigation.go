package service

import (
	"context"
	"errors"

	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"github.com/lintang-b-s/chroute/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/chroute/pkg/geo"
	"github.com/lintang-b-s/chroute/pkg/server"
	"go.uber.org/zap"
)

type RoutingAlgorithm interface {
	ShortestPath(ctx context.Context, from, to int32) (routingalgorithm.Route, error)
	ShortestDistanceMatrix(ctx context.Context, sources, targets []int32) ([][]float64, error)
	AreConnected(ctx context.Context, from, to int32) (bool, error)
}

type Snapper interface {
	Snap(lat, lon float64) (int32, float64, error)
}

type Graph interface {
	GetNode(v int32) datastructure.CHNode
}

type TagTable interface {
	Find(ref int32, key string) string
}

type NavigationService struct {
	graph   Graph
	snapper Snapper
	routing RoutingAlgorithm
	tags    TagTable
	logger  *zap.Logger

	// titik query yang lebih jauh dari ini ke vertex terdekat dianggap di luar peta. 0 = tanpa batas.
	maxSnapDistance float64
}

func NewNavigationService(graph Graph, snapper Snapper, routing RoutingAlgorithm, tags TagTable,
	logger *zap.Logger, maxSnapDistance float64) *NavigationService {
	return &NavigationService{
		graph:           graph,
		snapper:         snapper,
		routing:         routing,
		tags:            tags,
		logger:          logger,
		maxSnapDistance: maxSnapDistance,
	}
}

// RouteStep groups consecutive arcs of the same street.
type RouteStep struct {
	Street        string  `json:"street"`
	Highway       string  `json:"highway"`
	ETA           float64 `json:"eta"`
	DistanceMeter float64 `json:"distance"`
}

type ShortestPathResult struct {
	Path          string
	ETA           float64
	DistanceMeter float64
	Nodes         []int32
	Steps         []RouteStep
	Coordinates   []datastructure.Coordinate
}

const notCoveredMessage = "sorry!! the location you entered is not covered on my map :(, please use diferrent opensteetmap pbf file"

func (uc *NavigationService) SnapLocToStreetNode(lat, lon float64) (int32, error) {
	nodeID, dist, err := uc.snapper.Snap(lat, lon)
	if err != nil {
		return -1, server.WrapErrorf(err, server.ErrNotFound, notCoveredMessage)
	}
	if uc.maxSnapDistance > 0 && dist > uc.maxSnapDistance {
		return -1, server.NewErrorf(server.ErrNotFound, notCoveredMessage)
	}
	return nodeID, nil
}

func (uc *NavigationService) ShortestPathETA(ctx context.Context, srcLat, srcLon float64,
	dstLat float64, dstLon float64) (ShortestPathResult, error) {
	from, err := uc.SnapLocToStreetNode(srcLat, srcLon)
	if err != nil {
		return ShortestPathResult{}, err
	}
	to, err := uc.SnapLocToStreetNode(dstLat, dstLon)
	if err != nil {
		return ShortestPathResult{}, err
	}

	route, err := uc.routing.ShortestPath(ctx, from, to)
	if err != nil {
		return ShortestPathResult{}, wrapQueryError(err)
	}
	if !route.Found {
		return ShortestPathResult{}, server.NewErrorf(server.ErrNotFound, "no route found between the two locations")
	}

	coords := make([]datastructure.Coordinate, 0, len(route.Nodes))
	for _, v := range route.Nodes {
		coords = append(coords, uc.graph.GetNode(v).Coordinate())
	}

	return ShortestPathResult{
		Path:          datastructure.CreatePolyline(geo.RamesDouglasPeucker(coords)),
		ETA:           route.Cost,
		DistanceMeter: geo.PathLengthMeter(coords),
		Nodes:         route.Nodes,
		Steps:         uc.routeSteps(route.Arcs),
		Coordinates:   coords,
	}, nil
}

func (uc *NavigationService) routeSteps(arcs []routingalgorithm.PathArc) []RouteStep {
	steps := make([]RouteStep, 0)
	for _, arc := range arcs {
		street := uc.tags.Find(arc.TagsRef, "name")
		dist := geo.DistanceMeter(uc.graph.GetNode(arc.From).Coordinate(), uc.graph.GetNode(arc.To).Coordinate())
		if len(steps) > 0 && steps[len(steps)-1].Street == street {
			steps[len(steps)-1].ETA += arc.Weight
			steps[len(steps)-1].DistanceMeter += dist
			continue
		}
		steps = append(steps, RouteStep{
			Street:        street,
			Highway:       uc.tags.Find(arc.TagsRef, "highway"),
			ETA:           arc.Weight,
			DistanceMeter: dist,
		})
	}
	return steps
}

// DistanceMatrix returns the eta in minutes between every source and target. unreachable pairs are +Inf.
func (uc *NavigationService) DistanceMatrix(ctx context.Context, sources, targets []datastructure.Coordinate) ([][]float64, error) {
	sourceIDs, err := uc.snapAll(sources)
	if err != nil {
		return nil, err
	}
	targetIDs, err := uc.snapAll(targets)
	if err != nil {
		return nil, err
	}

	matrix, err := uc.routing.ShortestDistanceMatrix(ctx, sourceIDs, targetIDs)
	if err != nil {
		return nil, wrapQueryError(err)
	}
	return matrix, nil
}

func (uc *NavigationService) snapAll(coords []datastructure.Coordinate) ([]int32, error) {
	ids := make([]int32, 0, len(coords))
	for _, c := range coords {
		id, err := uc.SnapLocToStreetNode(c.Lat, c.Lon)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (uc *NavigationService) AreConnected(ctx context.Context, srcLat, srcLon, dstLat, dstLon float64) (bool, error) {
	from, err := uc.SnapLocToStreetNode(srcLat, srcLon)
	if err != nil {
		return false, err
	}
	to, err := uc.SnapLocToStreetNode(dstLat, dstLon)
	if err != nil {
		return false, err
	}

	connected, err := uc.routing.AreConnected(ctx, from, to)
	if err != nil {
		return false, wrapQueryError(err)
	}
	return connected, nil
}

func wrapQueryError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return server.WrapErrorf(err, server.ErrTimeout, "request cancelled or timed out")
	}
	return server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
}
