package routingalgorithm

import (
	"context"
	"math"
	"time"

	"github.com/lintang-b-s/chroute/pkg/concurrent"
	"go.uber.org/zap"
)

type bucketEntry struct {
	targetIdx int
	dist      float64
}

// searchSpace runs a full upward search from start and returns the distance of every non stalled vertex it settled.
func (rt *RouteAlgorithm) searchSpace(ctx context.Context, start int32, backward bool) map[int32]float64 {
	search := newUpwardSearch(rt.g, start, backward)
	space := make(map[int32]float64)
	settled := 0
	for search.pq.Size() > 0 {
		if settled%checkInterval == 0 && ctx.Err() != nil {
			break
		}
		v, d, stalled := search.settleNext()
		settled++
		if !stalled {
			space[v] = d
		}
	}
	return space
}

/*
ShortestDistanceMatrix. many to many pakai bucket:
 1. backward upward search dari tiap target t, simpan (t, d(v,t)) di bucket[v] untuk semua node v yang di settle.
 2. forward upward search dari tiap source s, untuk tiap node v yang di settle scan bucket[v]:
    d(s,t) = min(d(s,v) + d(v,t)).

backward & forward search dijalankan paralel di worker pool. unreachable atau unknown id = +Inf.
*/
func (rt *RouteAlgorithm) ShortestDistanceMatrix(ctx context.Context, sources, targets []int32) ([][]float64, error) {
	st := time.Now()
	matrix := make([][]float64, len(sources))
	for i := range matrix {
		matrix[i] = make([]float64, len(targets))
		for j := range matrix[i] {
			matrix[i][j] = math.Inf(1)
		}
	}

	jobs := make([]concurrent.BucketSearchJob, 0, len(targets))
	for i, t := range targets {
		if rt.g.HasNode(t) {
			jobs = append(jobs, concurrent.NewBucketSearchJob(i, t))
		}
	}
	spaces := concurrent.ParallelMap(rt.workers, jobs, func(job concurrent.BucketSearchJob) map[int32]float64 {
		return rt.searchSpace(ctx, job.NodeID, true)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buckets := make(map[int32][]bucketEntry)
	for i, job := range jobs {
		for v, d := range spaces[i] {
			buckets[v] = append(buckets[v], bucketEntry{targetIdx: job.TargetIdx, dist: d})
		}
	}

	sourceIdx := make([]int, 0, len(sources))
	for i, s := range sources {
		if rt.g.HasNode(s) {
			sourceIdx = append(sourceIdx, i)
		}
	}
	rows := concurrent.ParallelMap(rt.workers, sourceIdx, func(i int) []float64 {
		row := matrix[i]
		for v, d := range rt.searchSpace(ctx, sources[i], false) {
			for _, entry := range buckets[v] {
				if d+entry.dist < row[entry.targetIdx] {
					row[entry.targetIdx] = d + entry.dist
				}
			}
		}
		return row
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for k, i := range sourceIdx {
		matrix[i] = rows[k]
	}

	rt.logger.Debug("distance matrix done",
		zap.Int("sources", len(sources)), zap.Int("targets", len(targets)), zap.Duration("elapsed", time.Since(st)))
	return matrix, nil
}
