package contractor

import (
	"github.com/lintang-b-s/chroute/pkg/datastructure"
)

const (
	defaultMaxSettledNodes = 500
	defaultMaxHops         = 5
)

// WitnessTarget is a neighbour w of the contracted vertex together with c(u,v)+c(v,w).
type WitnessTarget struct {
	NodeID int32
	Weight float64
}

type WitnessCalculator interface {
	// FindWitnesses searches from source while ignoring the vertex being contracted. found[i] is true
	// when a path to targets[i].NodeID with cost <= targets[i].Weight exists. excluded vertices are never visited.
	FindWitnesses(g *datastructure.Graph, source, ignore int32, targets []WitnessTarget,
		excluded map[int32]struct{}) []bool
	// Clone returns a calculator with the same limits and its own search state.
	Clone() WitnessCalculator
}

/*
DijkstraWitnessCalculator. bounded dijkstra dari node u yang meng ignore node v (node yang sedang dikontraksi).
satu search dari u dipakai untuk semua target w.
search dihentikan kalau cost > max target weight, jumlah settled node > MaxSettledNodes, atau semua target sudah ketemu.
kalau limit tercapai, target yang belum ketemu dianggap tidak punya witness (shortcut tetap ditambahkan).

not safe for concurrent use, Clone it per worker.
*/
type DijkstraWitnessCalculator struct {
	MaxSettledNodes int
	MaxHops         int

	pq   *datastructure.MinHeap[int32]
	dist map[int32]float64
	hops map[int32]int
}

func NewDijkstraWitnessCalculator(maxSettledNodes, maxHops int) *DijkstraWitnessCalculator {
	return &DijkstraWitnessCalculator{
		MaxSettledNodes: maxSettledNodes,
		MaxHops:         maxHops,
		pq:              datastructure.NewMinHeap[int32](),
		dist:            make(map[int32]float64),
		hops:            make(map[int32]int),
	}
}

func NewDefaultWitnessCalculator() *DijkstraWitnessCalculator {
	return NewDijkstraWitnessCalculator(defaultMaxSettledNodes, defaultMaxHops)
}

func (w *DijkstraWitnessCalculator) Clone() WitnessCalculator {
	return NewDijkstraWitnessCalculator(w.MaxSettledNodes, w.MaxHops)
}

func (w *DijkstraWitnessCalculator) reset() {
	w.pq.Clear()
	clear(w.dist)
	clear(w.hops)
}

func (w *DijkstraWitnessCalculator) FindWitnesses(g *datastructure.Graph, source, ignore int32,
	targets []WitnessTarget, excluded map[int32]struct{}) []bool {
	found := make([]bool, len(targets))
	if len(targets) == 0 {
		return found
	}
	w.reset()

	maxWeight := 0.0
	targetIdx := make(map[int32][]int, len(targets))
	for i, target := range targets {
		if target.Weight > maxWeight {
			maxWeight = target.Weight
		}
		targetIdx[target.NodeID] = append(targetIdx[target.NodeID], i)
	}
	remaining := len(targets)

	w.dist[source] = 0
	w.hops[source] = 0
	w.pq.Insert(datastructure.NewPriorityQueueNode(0, source))

	settledNodes := 0
	for w.pq.Size() > 0 && remaining > 0 {
		if w.MaxSettledNodes > 0 && settledNodes >= w.MaxSettledNodes {
			break
		}
		curr, _ := w.pq.ExtractMin()
		if curr.Rank > maxWeight {
			break
		}
		settledNodes++

		for _, idx := range targetIdx[curr.Item] {
			if !found[idx] && curr.Rank <= targets[idx].Weight {
				found[idx] = true
				remaining--
			}
		}

		currHops := w.hops[curr.Item]
		if w.MaxHops > 0 && currHops >= w.MaxHops {
			continue
		}

		g.ForOutArcs(curr.Item, func(arc datastructure.AdjacentArc) {
			toNID := arc.NeighborID
			if toNID == ignore || g.IsContracted(toNID) {
				return
			}
			if _, ok := excluded[toNID]; ok {
				return
			}
			newCost := curr.Rank + arc.Weight
			if newCost > maxWeight {
				return
			}
			if oldCost, ok := w.dist[toNID]; !ok || newCost < oldCost {
				w.dist[toNID] = newCost
				w.hops[toNID] = currHops + 1
				w.pq.Insert(datastructure.NewPriorityQueueNode(newCost, toNID))
			}
		})
	}

	// a tentative distance is still the cost of a real path avoiding the ignored vertex
	for i, target := range targets {
		if found[i] {
			continue
		}
		if d, ok := w.dist[target.NodeID]; ok && d <= target.Weight {
			found[i] = true
		}
	}
	return found
}
