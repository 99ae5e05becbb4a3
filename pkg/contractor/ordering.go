package contractor

import (
	"github.com/lintang-b-s/chroute/pkg/datastructure"
)

// ScoreFunc returns the current priority of an uncontracted vertex. lower is contracted first.
type ScoreFunc func(v int32) float64

type OrderingStrategy interface {
	Init(nodes []int32, score ScoreFunc)
	// Next removes and returns the vertex to contract next.
	Next(score ScoreFunc) (int32, bool)
	// Contracted is called after v was contracted, with its uncontracted neighbours.
	Contracted(v int32, neighbors []int32, score ScoreFunc)
	Len() int
}

/*
LazyOrdering. lazy update: pop node dengan priority terkecil, hitung ulang priority nya.
kalau priority baru lebih besar dari priority item berikutnya di priority queue, insert lagi & coba item berikutnya.
*/
type LazyOrdering struct {
	pq *datastructure.MinHeap[int32]
}

func NewLazyOrdering() *LazyOrdering {
	return &LazyOrdering{pq: datastructure.NewMinHeap[int32]()}
}

func (o *LazyOrdering) Init(nodes []int32, score ScoreFunc) {
	o.pq.Clear()
	for _, v := range nodes {
		o.pq.Insert(datastructure.NewPriorityQueueNode(score(v), v))
	}
}

func (o *LazyOrdering) Next(score ScoreFunc) (int32, bool) {
	for o.pq.Size() > 0 {
		polledItem, _ := o.pq.ExtractMin()
		if o.pq.Size() == 0 {
			return polledItem.Item, true
		}

		priority := score(polledItem.Item)
		smallestItem, _ := o.pq.GetMin()
		if priority > smallestItem.Rank ||
			(priority == smallestItem.Rank && polledItem.Item > smallestItem.Item) {
			o.pq.Insert(datastructure.NewPriorityQueueNode(priority, polledItem.Item))
			continue
		}
		return polledItem.Item, true
	}
	return -1, false
}

func (o *LazyOrdering) Contracted(v int32, neighbors []int32, score ScoreFunc) {}

func (o *LazyOrdering) Len() int {
	return o.pq.Size()
}

// EagerOrdering recomputes every uncontracted neighbour right after a contraction.
type EagerOrdering struct {
	pq *datastructure.MinHeap[int32]
}

func NewEagerOrdering() *EagerOrdering {
	return &EagerOrdering{pq: datastructure.NewMinHeap[int32]()}
}

func (o *EagerOrdering) Init(nodes []int32, score ScoreFunc) {
	o.pq.Clear()
	for _, v := range nodes {
		o.pq.Insert(datastructure.NewPriorityQueueNode(score(v), v))
	}
}

func (o *EagerOrdering) Next(score ScoreFunc) (int32, bool) {
	if o.pq.Size() == 0 {
		return -1, false
	}
	item, _ := o.pq.ExtractMin()
	return item.Item, true
}

func (o *EagerOrdering) Contracted(v int32, neighbors []int32, score ScoreFunc) {
	for _, n := range neighbors {
		if !o.pq.Contains(n) {
			continue
		}
		_ = o.pq.Update(datastructure.NewPriorityQueueNode(score(n), n))
	}
}

func (o *EagerOrdering) Len() int {
	return o.pq.Size()
}

// NewOrdering returns the strategy named "lazy" or "eager". unknown names get lazy.
func NewOrdering(name string) OrderingStrategy {
	if name == "eager" {
		return NewEagerOrdering()
	}
	return NewLazyOrdering()
}
