package snap

import (
	"errors"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"github.com/lintang-b-s/chroute/pkg/geo"
	"go.uber.org/zap"
)

var (
	ErrEmptyIndex = errors.New("snapper has no vertices")
)

const (
	minChildren = 25
	maxChildren = 50
	// rtree nearest neighbour pakai jarak euclid di derajat lat/lon, jadi ambil beberapa kandidat
	// lalu pilih yang paling dekat dengan jarak great circle.
	numCandidates = 8
	nodeTolerance = 1e-9
)

type rtreeNode struct {
	id    int32
	coord datastructure.Coordinate
}

func (n *rtreeNode) Bounds() rtreego.Rect {
	return rtreego.Point{n.coord.Lat, n.coord.Lon}.ToRect(nodeTolerance)
}

// NodeSnapper resolves a coordinate to the nearest vertex of the road graph.
type NodeSnapper struct {
	rtree  *rtreego.Rtree
	logger *zap.Logger
}

func NewNodeSnapper(logger *zap.Logger) *NodeSnapper {
	return &NodeSnapper{
		rtree:  rtreego.NewTree(2, minChildren, maxChildren),
		logger: logger,
	}
}

// Build inserts every vertex of g into the rtree.
func (rs *NodeSnapper) Build(g *datastructure.Graph) {
	for _, node := range g.GetNodes() {
		if (node.ID+1)%10000 == 0 {
			rs.logger.Debug("insert node to r-tree...", zap.Int32("node", node.ID+1))
		}
		rs.InsertNode(node.ID, node.Coordinate())
	}
	rs.logger.Info("r-tree snapper ready", zap.Int("nodes", rs.rtree.Size()))
}

func (rs *NodeSnapper) InsertNode(id int32, coord datastructure.Coordinate) {
	rs.rtree.Insert(&rtreeNode{id: id, coord: coord})
}

// Snap returns the vertex closest to (lat, lon) and its distance in metres. ties go to the smaller id.
func (rs *NodeSnapper) Snap(lat, lon float64) (int32, float64, error) {
	if rs.rtree.Size() == 0 {
		return -1, 0, ErrEmptyIndex
	}

	query := datastructure.NewCoordinate(lat, lon)
	best, bestDist := int32(-1), math.Inf(1)
	for _, obj := range rs.rtree.NearestNeighbors(numCandidates, rtreego.Point{lat, lon}) {
		node, ok := obj.(*rtreeNode)
		if !ok {
			continue
		}
		dist := geo.DistanceMeter(query, node.coord)
		if dist < bestDist || (dist == bestDist && node.id < best) {
			best, bestDist = node.id, dist
		}
	}
	return best, bestDist, nil
}
