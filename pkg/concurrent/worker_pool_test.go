package concurrent

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool(t *testing.T) {
	var calls atomic.Int64
	wp := NewWorkerPool[int, int](4, 100)
	wp.Start(func(job int) int {
		calls.Add(1)
		return job * job
	})
	for i := 0; i < 100; i++ {
		wp.AddJob(i, i)
	}
	wp.Close()
	wp.Wait()

	results := make(map[int]int)
	for res := range wp.CollectResults() {
		results[res.ID] = res.Result
	}

	assert.Equal(t, int64(100), calls.Load())
	assert.Len(t, results, 100)
	assert.Equal(t, 81, results[9])
}

func TestParallelMapKeepsOrder(t *testing.T) {
	items := []ContractNodeJob{
		NewContractNodeJob(3, nil),
		NewContractNodeJob(1, nil),
		NewContractNodeJob(2, nil),
	}
	out := ParallelMap(0, items, func(job ContractNodeJob) int32 {
		return job.NodeID * 10
	})
	assert.Equal(t, []int32{30, 10, 20}, out)

	assert.Empty(t, ParallelMap(2, []int{}, func(job int) int { return job }))
}
