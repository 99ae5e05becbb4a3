package datastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
)

func generateRandomInteger(min int, max int) int {

	return min + rand.Intn(max-min)
}

func TestPriorityQueue(t *testing.T) {
	rand.Seed(42)
	pq := NewMinHeap[int32]()
	if pq == nil {
		t.Errorf("PriorityQueue is nil")
	}

	for i := 0; i < 10000; i++ {
		item := PriorityQueueNode[int32]{Rank: float64(generateRandomInteger(0, 10000)), Item: int32(i)}
		pq.Insert(item)

		if (i+1)%100 == 0 && item.Rank > 1 {
			item.Rank = float64(generateRandomInteger(0, int(item.Rank)))
			err := pq.DecreaseKey(item)
			if err != nil {
				t.Errorf("Error decrease key")
			}
		}
	}

	prevItem, err := pq.ExtractMin()
	if err != nil {
		t.Errorf("Error extract min")
	}
	for i := 1; i < 10000; i++ {
		item, err := pq.ExtractMin()
		if err != nil {
			t.Errorf("Error extract min")
		}

		if prevItem.Rank > item.Rank {
			t.Errorf("PriorityQueue is not sorted")
		}
		if prevItem.Rank == item.Rank && prevItem.Item > item.Item {
			t.Errorf("ties must be broken by item id")
		}
		prevItem = item
	}

	_, err = pq.ExtractMin()
	assert.ErrorIs(t, err, ErrEmptyHeap)
}

func TestPriorityQueueTieBreak(t *testing.T) {
	pq := NewMinHeap[int32]()
	pq.Insert(NewPriorityQueueNode[int32](1, 5))
	pq.Insert(NewPriorityQueueNode[int32](1, 2))
	pq.Insert(NewPriorityQueueNode[int32](1, 9))
	pq.Insert(NewPriorityQueueNode[int32](0.5, 7))

	order := []int32{}
	for pq.Size() > 0 {
		item, _ := pq.ExtractMin()
		order = append(order, item.Item)
	}
	assert.Equal(t, []int32{7, 2, 5, 9}, order)
}

func TestPriorityQueueUpdate(t *testing.T) {
	pq := NewMinHeap[int32]()
	for i := int32(0); i < 10; i++ {
		pq.Insert(NewPriorityQueueNode(float64(i), i))
	}

	assert.NoError(t, pq.Update(NewPriorityQueueNode[int32](100, 0)))
	assert.NoError(t, pq.Update(NewPriorityQueueNode[int32](-1, 9)))
	assert.ErrorIs(t, pq.Update(NewPriorityQueueNode[int32](1, 42)), ErrItemNotFound)
	assert.Error(t, pq.DecreaseKey(NewPriorityQueueNode[int32](50, 1)))

	minItem, err := pq.GetMin()
	assert.NoError(t, err)
	assert.Equal(t, int32(9), minItem.Item)

	rank, ok := pq.GetRank(0)
	assert.True(t, ok)
	assert.Equal(t, 100.0, rank)

	// inserting an existing item updates it
	pq.Insert(NewPriorityQueueNode[int32](-5, 3))
	assert.Equal(t, 10, pq.Size())
	minItem, _ = pq.GetMin()
	assert.Equal(t, int32(3), minItem.Item)

	last := int32(-1)
	for pq.Size() > 0 {
		item, _ := pq.ExtractMin()
		last = item.Item
	}
	assert.Equal(t, int32(0), last)
	assert.False(t, pq.Contains(0))

	pq.Insert(NewPriorityQueueNode[int32](1, 1))
	pq.Clear()
	assert.Equal(t, 0, pq.Size())
	assert.False(t, pq.Contains(1))
}
