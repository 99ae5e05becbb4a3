package routingalgorithm

import (
	"errors"
	"time"

	"github.com/lintang-b-s/chroute/pkg/datastructure"
)

var (
	ErrGraphNotContracted = errors.New("graph is not fully contracted")
)

// ContractedGraph is the read-only view of a contracted graph used by queries.
type ContractedGraph interface {
	NumNodes() int
	HasNode(v int32) bool
	GetNode(v int32) datastructure.CHNode
	GetLevel(v int32) int32
	IsFullyContracted() bool

	ForOutArcs(v int32, handle func(arc datastructure.AdjacentArc))
	ForInArcs(v int32, handle func(arc datastructure.AdjacentArc))
	DirectedArc(from, to int32) (datastructure.ArcData, bool)
}

// PathArc is one original arc of an unpacked route.
type PathArc struct {
	From    int32   `json:"from"`
	To      int32   `json:"to"`
	Weight  float64 `json:"weight"`
	TagsRef int32   `json:"tags_ref"`
}

type Route struct {
	Found bool
	Cost  float64
	Nodes []int32
	Arcs  []PathArc
}

func NoRoute() Route {
	return Route{Found: false}
}

// QueryOptions bounds a single point to point query. zero values mean unlimited.
type QueryOptions struct {
	MaxSettledNodes int
	Timeout         time.Duration
}
