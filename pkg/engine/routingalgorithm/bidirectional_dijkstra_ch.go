package routingalgorithm

import (
	"context"
	"fmt"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/chroute/pkg/contractor"
	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"github.com/lintang-b-s/chroute/pkg/util"
	"go.uber.org/zap"
)

const (
	defaultUnpackCacheSize = 4096
	defaultWorkers         = 4
	checkInterval          = 256
)

type RouteAlgorithm struct {
	g         ContractedGraph
	queryOpts QueryOptions
	logger    *zap.Logger
	workers   int
	cacheSize int

	unpackCache *lru.Cache[int64, []PathArc]
	scc         []int32
	sccCount    int
}

type Option func(*RouteAlgorithm)

func WithQueryOptions(opts QueryOptions) Option {
	return func(rt *RouteAlgorithm) {
		rt.queryOpts = opts
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(rt *RouteAlgorithm) {
		rt.logger = logger
	}
}

// WithUnpackCacheSize sets the number of unpacked shortcuts kept in memory. 0 disables the cache.
func WithUnpackCacheSize(size int) Option {
	return func(rt *RouteAlgorithm) {
		rt.cacheSize = size
	}
}

// WithWorkers sets the number of goroutines used by ShortestDistanceMatrix.
func WithWorkers(workers int) Option {
	return func(rt *RouteAlgorithm) {
		rt.workers = workers
	}
}

func NewRouteAlgorithm(g ContractedGraph, opts ...Option) (*RouteAlgorithm, error) {
	if !g.IsFullyContracted() {
		return nil, ErrGraphNotContracted
	}
	rt := &RouteAlgorithm{
		g:         g,
		logger:    zap.NewNop(),
		workers:   defaultWorkers,
		cacheSize: defaultUnpackCacheSize,
	}
	for _, opt := range opts {
		opt(rt)
	}

	if rt.cacheSize > 0 {
		cache, err := lru.New[int64, []PathArc](rt.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create unpack cache: %w", err)
		}
		rt.unpackCache = cache
	}

	st := time.Now()
	rt.scc, rt.sccCount = contractor.StronglyConnectedComponents(g)
	rt.logger.Info("route algorithm ready",
		zap.Int("nodes", g.NumNodes()), zap.Int("strongly connected components", rt.sccCount),
		zap.Duration("elapsed", time.Since(st)))
	return rt, nil
}

/*
upwardSearch. dijkstra yang hanya relax arc ke node dengan level lebih tinggi.
forward search relax out arcs, backward search relax in arcs (arah dibalik).
stall on demand: kalau ada tetangga dengan level lebih tinggi yang bisa mencapai node v lebih murah
lewat arc ke arah sebaliknya, arc dari v tidak di relax.
*/
type upwardSearch struct {
	g        ContractedGraph
	backward bool
	pq       *datastructure.MinHeap[int32]
	dist     map[int32]float64
	parent   map[int32]int32
}

func newUpwardSearch(g ContractedGraph, start int32, backward bool) *upwardSearch {
	s := &upwardSearch{
		g:        g,
		backward: backward,
		pq:       datastructure.NewMinHeap[int32](),
		dist:     make(map[int32]float64),
		parent:   make(map[int32]int32),
	}
	s.dist[start] = 0
	s.parent[start] = -1
	s.pq.Insert(datastructure.NewPriorityQueueNode(0, start))
	return s
}

func (s *upwardSearch) minKey() float64 {
	item, err := s.pq.GetMin()
	if err != nil {
		return math.Inf(1)
	}
	return item.Rank
}

func (s *upwardSearch) relaxArcs(v int32, handle func(arc datastructure.AdjacentArc)) {
	if s.backward {
		s.g.ForInArcs(v, handle)
	} else {
		s.g.ForOutArcs(v, handle)
	}
}

func (s *upwardSearch) stallArcs(v int32, handle func(arc datastructure.AdjacentArc)) {
	if s.backward {
		s.g.ForOutArcs(v, handle)
	} else {
		s.g.ForInArcs(v, handle)
	}
}

// settleNext pops the closest vertex. stalled vertices keep their distance but their arcs are not relaxed.
func (s *upwardSearch) settleNext() (int32, float64, bool) {
	item, _ := s.pq.ExtractMin()
	v, d := item.Item, item.Rank
	level := s.g.GetLevel(v)

	stalled := false
	s.stallArcs(v, func(arc datastructure.AdjacentArc) {
		if stalled || s.g.GetLevel(arc.NeighborID) <= level {
			return
		}
		if dn, ok := s.dist[arc.NeighborID]; ok && dn+arc.Weight < d {
			stalled = true
		}
	})
	if stalled {
		return v, d, true
	}

	s.relaxArcs(v, func(arc datastructure.AdjacentArc) {
		toNID := arc.NeighborID
		if s.g.GetLevel(toNID) <= level {
			return
		}
		newCost := d + arc.Weight
		if oldCost, ok := s.dist[toNID]; ok && newCost >= oldCost {
			return
		}
		s.dist[toNID] = newCost
		s.parent[toNID] = v
		s.pq.Insert(datastructure.NewPriorityQueueNode(newCost, toNID))
	})
	return v, d, false
}

// pathTo returns the vertices from the search root to v, root first.
func (s *upwardSearch) pathTo(v int32) []int32 {
	path := make([]int32, 0)
	for curr := v; curr != -1; curr = s.parent[curr] {
		path = append(path, curr)
	}
	return util.ReverseG(path)
}

// ShortestPath answers a point to point query with the configured QueryOptions.
func (rt *RouteAlgorithm) ShortestPath(ctx context.Context, from, to int32) (Route, error) {
	return rt.shortestPath(ctx, from, to, rt.queryOpts)
}

/*
shortestPath. bidirectional dijkstra di upward graph. setiap iterasi settle node dengan cost terkecil dari kedua
priority queue. pencarian berhenti ketika min kedua priority queue >= cost best candidate path.
kalau budget (max settled nodes/timeout) habis, best candidate path yang sudah ketemu yang dikembalikan.
*/
func (rt *RouteAlgorithm) shortestPath(ctx context.Context, from, to int32, opts QueryOptions) (Route, error) {
	if !rt.g.HasNode(from) || !rt.g.HasNode(to) {
		return NoRoute(), nil
	}
	if from == to {
		return Route{Found: true, Cost: 0, Nodes: []int32{from}, Arcs: []PathArc{}}, nil
	}

	var deadline time.Time
	if opts.Timeout > 0 {
		deadline = time.Now().Add(opts.Timeout)
	}

	forward := newUpwardSearch(rt.g, from, false)
	backward := newUpwardSearch(rt.g, to, true)

	estimate := math.Inf(1)
	bestCommonVertex := int32(-1)
	settled := 0
	for {
		fMin, bMin := forward.minKey(), backward.minKey()
		if fMin >= estimate && bMin >= estimate {
			break
		}
		if settled%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return NoRoute(), err
			}
			if !deadline.IsZero() && time.Now().After(deadline) {
				rt.logger.Debug("query timeout reached", zap.Int32("from", from), zap.Int32("to", to))
				break
			}
		}
		if opts.MaxSettledNodes > 0 && settled >= opts.MaxSettledNodes {
			rt.logger.Debug("query settled node budget reached", zap.Int32("from", from), zap.Int32("to", to))
			break
		}

		search, other := forward, backward
		if bMin < fMin {
			search, other = backward, forward
		}
		v, d, _ := search.settleNext()
		settled++

		if dOther, ok := other.dist[v]; ok && d+dOther < estimate {
			estimate = d + dOther
			bestCommonVertex = v
		}
	}

	if bestCommonVertex == -1 {
		return NoRoute(), nil
	}

	nodes := forward.pathTo(bestCommonVertex)
	backPath := util.ReverseG(backward.pathTo(bestCommonVertex))
	nodes = append(nodes, backPath[1:]...)

	arcs := make([]PathArc, 0, len(nodes))
	for i := 0; i+1 < len(nodes); i++ {
		unpacked, err := rt.unpackMove(nodes[i], nodes[i+1])
		if err != nil {
			return NoRoute(), err
		}
		arcs = append(arcs, unpacked...)
	}
	return newRoute(from, estimate, arcs), nil
}

func newRoute(from int32, cost float64, arcs []PathArc) Route {
	nodes := make([]int32, 0, len(arcs)+1)
	nodes = append(nodes, from)
	for _, arc := range arcs {
		nodes = append(nodes, arc.To)
	}
	return Route{
		Found: true,
		Cost:  cost,
		Nodes: nodes,
		Arcs:  arcs,
	}
}
