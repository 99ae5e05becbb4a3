package kv

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/kelindar/binary"
	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"github.com/lintang-b-s/chroute/pkg/geo"
	"github.com/uber/h3-go/v4"
	"go.uber.org/zap"
)

var (
	ErrNodesNotFound = errors.New("nodes not found")
)

const (
	h3Resolution = 9
	h3Prefix     = "h3:"
	maxRingLevel = 10
	batchSize    = 1000
)

type h3Node struct {
	ID  int32
	Lat float64
	Lon float64
}

// H3Index buckets vertices by their h3 cell so the nearest vertex of a point can be found without the graph in memory.
type H3Index struct {
	db     *badger.DB
	logger *zap.Logger
}

func NewH3Index(db *badger.DB, logger *zap.Logger) *H3Index {
	return &H3Index{db: db, logger: logger}
}

func cellKey(cell h3.Cell) []byte {
	return []byte(h3Prefix + cell.String())
}

func (k *H3Index) Build(ctx context.Context, g *datastructure.Graph) error {
	st := time.Now()
	k.logger.Info("creating & saving h3 indexed nodes to key-value db...")

	cells := make(map[h3.Cell][]h3Node)
	for _, node := range g.GetNodes() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		cell := h3.LatLngToCell(h3.NewLatLng(node.Lat, node.Lon), h3Resolution)
		cells[cell] = append(cells[cell], h3Node{ID: node.ID, Lat: node.Lat, Lon: node.Lon})
	}

	batch := make([]kvPair, 0, batchSize)
	for cell, nodes := range cells {
		val, err := binary.Marshal(nodes)
		if err != nil {
			return err
		}
		batch = append(batch, kvPair{key: cellKey(cell), value: val})
		if len(batch) == batchSize {
			if err := badgerWriteBatch(ctx, k.db, k.logger, batch); err != nil {
				return err
			}
			batch = make([]kvPair, 0, batchSize)
		}
	}
	if len(batch) > 0 {
		if err := badgerWriteBatch(ctx, k.db, k.logger, batch); err != nil {
			return err
		}
	}

	k.logger.Info("creating & saving h3 indexed nodes to key-value db done",
		zap.Int("cells", len(cells)), zap.Duration("elapsed", time.Since(st)))
	return nil
}

func (k *H3Index) getCell(cell h3.Cell) ([]h3Node, error) {
	val, err := badgerGet(k.db, cellKey(cell))
	if errors.Is(err, ErrKeyNotFound) {
		return []h3Node{}, nil
	}
	if err != nil {
		return nil, err
	}
	var nodes []h3Node
	if err := binary.Unmarshal(val, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

/*
nearbyNodes. ambil node di cell h3 dari titik query, kalau kosong perbesar grid disk
(ring 1 sampai maxRingLevel) sampai ada node yang ditemukan.
*/
func (k *H3Index) nearbyNodes(lat, lon float64) ([]h3Node, error) {
	origin := h3.LatLngToCell(h3.NewLatLng(lat, lon), h3Resolution)
	nodes, err := k.getCell(origin)
	if err != nil {
		return nil, err
	}

	seen := map[h3.Cell]struct{}{origin: {}}
	for lev := 1; lev <= maxRingLevel && len(nodes) == 0; lev++ {
		for _, cell := range h3.GridDisk(origin, lev) {
			if _, ok := seen[cell]; ok {
				continue
			}
			seen[cell] = struct{}{}

			found, err := k.getCell(cell)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, found...)
		}
	}

	if len(nodes) == 0 {
		return nil, ErrNodesNotFound
	}
	return nodes, nil
}

// Snap returns the vertex closest to (lat, lon) and its distance in metres.
func (k *H3Index) Snap(lat, lon float64) (int32, float64, error) {
	nodes, err := k.nearbyNodes(lat, lon)
	if err != nil {
		return -1, 0, err
	}

	query := datastructure.NewCoordinate(lat, lon)
	best, bestDist := int32(-1), math.Inf(1)
	for _, node := range nodes {
		dist := geo.DistanceMeter(query, datastructure.NewCoordinate(node.Lat, node.Lon))
		if dist < bestDist || (dist == bestDist && node.ID < best) {
			best, bestDist = node.ID, dist
		}
	}
	return best, bestDist, nil
}

func (k *H3Index) Close() error {
	return k.db.Close()
}
