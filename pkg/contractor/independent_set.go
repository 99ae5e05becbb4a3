package contractor

import (
	"context"
	"sort"
	"time"

	"github.com/lintang-b-s/chroute/pkg/concurrent"
	"go.uber.org/zap"
)

type contractionResult struct {
	shortcuts []shortcut
	stats     NodeStats
}

// witnessPool hands every worker its own witness calculator.
type witnessPool chan WitnessCalculator

func newWitnessPool(prototype WitnessCalculator, size int) witnessPool {
	pool := make(witnessPool, size)
	for i := 0; i < size; i++ {
		pool <- prototype.Clone()
	}
	return pool
}

func (c *Contractor) numWorkers() int {
	if c.workers > 0 {
		return c.workers
	}
	return 4
}

/*
ContractParallel. kontraksi per round. tiap round pilih independent set: node yang priority nya lebih kecil dari
semua tetangga yang belum dikontraksi (tie break pakai node id), jadi tidak ada arc antar dua node di set yang sama.
shortcut tiap node di set dihitung paralel (semua node di set di exclude dari witness search), lalu
shortcut & level diterapkan serial setelah semua worker selesai.
*/
func (c *Contractor) ContractParallel(ctx context.Context) error {
	st := time.Now()
	if err := c.initState(); err != nil {
		return err
	}

	workers := c.numWorkers()
	pool := newWitnessPool(c.witness, workers)

	remaining := c.uncontractedNodes()
	c.logger.Info("contracting graph in independent set rounds",
		zap.Int("nodes", len(remaining)), zap.Int("workers", workers))

	for len(remaining) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		scores := concurrent.ParallelMap(workers, remaining, func(v int32) float64 {
			witness := <-pool
			defer func() { pool <- witness }()
			_, stats := c.findShortcuts(v, witness, nil)
			return c.policy.Score(stats)
		})
		scoreOf := make(map[int32]float64, len(remaining))
		for i, v := range remaining {
			scoreOf[v] = scores[i]
		}

		batch := c.independentSet(remaining, scoreOf)
		excluded := make(map[int32]struct{}, len(batch))
		for _, v := range batch {
			excluded[v] = struct{}{}
		}

		jobs := make([]concurrent.ContractNodeJob, len(batch))
		for i, v := range batch {
			jobs[i] = concurrent.NewContractNodeJob(v, excluded)
		}
		results := concurrent.ParallelMap(workers, jobs, func(job concurrent.ContractNodeJob) contractionResult {
			witness := <-pool
			defer func() { pool <- witness }()
			shortcuts, stats := c.findShortcuts(job.NodeID, witness, job.Excluded)
			return contractionResult{shortcuts: shortcuts, stats: stats}
		})

		// barrier: every shortcut of this round is computed before any of them is applied
		for i, v := range batch {
			if err := c.applyShortcuts(v, results[i].shortcuts); err != nil {
				return err
			}
		}
		for _, v := range batch {
			c.finishNode(v)
		}
		c.stats.Rounds++

		next := remaining[:0]
		for _, v := range remaining {
			if !c.graph.IsContracted(v) {
				next = append(next, v)
			}
		}
		remaining = next

		c.logger.Debug("independent set round done",
			zap.Int("round", c.stats.Rounds), zap.Int("batch", len(batch)), zap.Int("remaining", len(remaining)))
	}

	c.stats.Elapsed += time.Since(st)
	c.logger.Info("contraction hierarchies preprocessing done",
		zap.Int("rounds", c.stats.Rounds), zap.Int("shortcuts", c.stats.ShortcutsAdded),
		zap.Duration("elapsed", c.stats.Elapsed))
	return nil
}

func scoreLess(scoreA float64, a int32, scoreB float64, b int32) bool {
	if scoreA != scoreB {
		return scoreA < scoreB
	}
	return a < b
}

// independentSet returns the vertices whose score is a strict local minimum among their uncontracted neighbours,
// ordered by score.
func (c *Contractor) independentSet(remaining []int32, scoreOf map[int32]float64) []int32 {
	batch := make([]int32, 0)
	for _, v := range remaining {
		isMin := true
		for _, n := range c.uncontractedNeighbors(v) {
			if !scoreLess(scoreOf[v], v, scoreOf[n], n) {
				isMin = false
				break
			}
		}
		if isMin {
			batch = append(batch, v)
		}
	}

	sort.Slice(batch, func(i, j int) bool {
		return scoreLess(scoreOf[batch[i]], batch[i], scoreOf[batch[j]], batch[j])
	})
	return batch
}
