package routingalgorithm

import (
	"context"

	"github.com/lintang-b-s/chroute/pkg/datastructure"
)

/*
dijkstra. plain dijkstra di semua live move (level diabaikan), hanya lewat node yang diterima keep.
berhenti ketika target di settle (target -1 = semua node).
*/
func dijkstra(ctx context.Context, g ContractedGraph, from, target int32,
	keep func(v int32) bool) (map[int32]float64, map[int32]int32, error) {
	dist := map[int32]float64{from: 0}
	parent := map[int32]int32{from: -1}
	settled := make(map[int32]struct{})

	pq := datastructure.NewMinHeap[int32]()
	pq.Insert(datastructure.NewPriorityQueueNode(0, from))
	for pq.Size() > 0 {
		if len(settled)%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		curr, _ := pq.ExtractMin()
		settled[curr.Item] = struct{}{}
		if curr.Item == target {
			break
		}

		g.ForOutArcs(curr.Item, func(arc datastructure.AdjacentArc) {
			toNID := arc.NeighborID
			if _, ok := settled[toNID]; ok {
				return
			}
			if keep != nil && !keep(toNID) {
				return
			}
			newCost := curr.Rank + arc.Weight
			if oldCost, ok := dist[toNID]; ok && newCost >= oldCost {
				return
			}
			dist[toNID] = newCost
			parent[toNID] = curr.Item
			pq.Insert(datastructure.NewPriorityQueueNode(newCost, toNID))
		})
	}
	return dist, parent, nil
}

// DijkstraDistances returns the cost from `from` to every vertex it reaches through vertices accepted by keep.
// a nil keep accepts every vertex.
func DijkstraDistances(ctx context.Context, g ContractedGraph, from int32,
	keep func(v int32) bool) (map[int32]float64, error) {
	if !g.HasNode(from) {
		return map[int32]float64{}, nil
	}
	dist, _, err := dijkstra(ctx, g, from, -1, keep)
	return dist, err
}

// ShortestPathDijkstra answers a point to point query without the hierarchy. used as the baseline of ShortestPath.
func (rt *RouteAlgorithm) ShortestPathDijkstra(ctx context.Context, from, to int32) (Route, error) {
	if !rt.g.HasNode(from) || !rt.g.HasNode(to) {
		return NoRoute(), nil
	}
	dist, parent, err := dijkstra(ctx, rt.g, from, to, nil)
	if err != nil {
		return NoRoute(), err
	}
	cost, ok := dist[to]
	if !ok {
		return NoRoute(), nil
	}

	nodes := make([]int32, 0)
	for curr := to; curr != -1; curr = parent[curr] {
		nodes = append(nodes, curr)
	}
	arcs := make([]PathArc, 0, len(nodes))
	for i := len(nodes) - 1; i > 0; i-- {
		unpacked, err := rt.unpackMove(nodes[i], nodes[i-1])
		if err != nil {
			return NoRoute(), err
		}
		arcs = append(arcs, unpacked...)
	}
	return newRoute(from, cost, arcs), nil
}
