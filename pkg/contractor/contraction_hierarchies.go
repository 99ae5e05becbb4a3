package contractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"github.com/lintang-b-s/chroute/pkg/util"
	"go.uber.org/zap"
)

var (
	ErrAlreadyContracted     = errors.New("graph is already contracted")
	ErrNodeAlreadyContracted = errors.New("node is already contracted")
)

type Stats struct {
	ContractedNodes int
	ShortcutsAdded  int
	Rounds          int
	Elapsed         time.Duration
}

type shortcut struct {
	from          int32
	to            int32
	weight        float64
	originalEdges int
}

/*
Contractor. contraction hierarchies preprocessing di atas graph yang diberikan.
graph dimutasi langsung: shortcut ditambahkan & level tiap node di set sesuai urutan kontraksi.
*/
type Contractor struct {
	graph    *datastructure.Graph
	ordering OrderingStrategy
	witness  WitnessCalculator
	policy   PriorityPolicy
	logger   *zap.Logger
	workers  int

	initialized   bool
	level         int32
	depth         []int
	originalEdges map[int64]int
	stats         Stats
}

type Option func(*Contractor)

func WithPolicy(policy PriorityPolicy) Option {
	return func(c *Contractor) {
		c.policy = policy
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Contractor) {
		c.logger = logger
	}
}

// WithWorkers sets the number of goroutines used by ContractParallel.
func WithWorkers(workers int) Option {
	return func(c *Contractor) {
		c.workers = workers
	}
}

func NewContractor(g *datastructure.Graph, ordering OrderingStrategy, witness WitnessCalculator,
	opts ...Option) *Contractor {
	c := &Contractor{
		graph:         g,
		ordering:      ordering,
		witness:       witness,
		policy:        DefaultPolicy(),
		logger:        zap.NewNop(),
		originalEdges: make(map[int64]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ordering == nil {
		c.ordering = NewLazyOrdering()
	}
	if c.witness == nil {
		c.witness = NewDefaultWitnessCalculator()
	}
	return c
}

func (c *Contractor) Stats() Stats {
	return c.stats
}

func moveKey(from, to int32) int64 {
	return util.BitPackInt64(int64(from), int64(to), 32)
}

func (c *Contractor) initState() error {
	if c.initialized {
		return nil
	}
	n := c.graph.NumNodes()
	if n > 0 && c.graph.IsFullyContracted() {
		return ErrAlreadyContracted
	}

	c.depth = make([]int, n)
	c.level = 0
	for _, node := range c.graph.GetNodes() {
		if node.IsContracted() && node.Level >= c.level {
			c.level = node.Level + 1
		}
	}
	c.initialized = true
	return nil
}

func (c *Contractor) uncontractedNodes() []int32 {
	nodes := make([]int32, 0, c.graph.NumNodes())
	for _, node := range c.graph.GetNodes() {
		if !node.IsContracted() {
			nodes = append(nodes, node.ID)
		}
	}
	return nodes
}

func (c *Contractor) initOrdering() error {
	if err := c.initState(); err != nil {
		return err
	}
	if c.ordering.Len() == 0 {
		st := time.Now()
		c.ordering.Init(c.uncontractedNodes(), c.score)
		c.logger.Info("initial node ordering done",
			zap.Int("nodes", c.ordering.Len()), zap.Duration("elapsed", time.Since(st)))
	}
	return nil
}

// Contract contracts every remaining vertex in the order chosen by the ordering strategy.
func (c *Contractor) Contract(ctx context.Context) error {
	st := time.Now()
	if err := c.initOrdering(); err != nil {
		return err
	}
	c.logger.Info("contracting graph",
		zap.Int("nodes", c.graph.NumNodes()), zap.Int("arcs", c.graph.NumArcs()))

	for {
		if c.stats.ContractedNodes%1000 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		_, ok, err := c.Step()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if c.stats.ContractedNodes%10000 == 0 {
			c.logger.Info("contracting node", zap.Int("contracted", c.stats.ContractedNodes))
		}
	}

	c.stats.Elapsed += time.Since(st)
	c.logger.Info("contraction hierarchies preprocessing done",
		zap.Int("shortcuts", c.stats.ShortcutsAdded), zap.Duration("elapsed", c.stats.Elapsed))
	return nil
}

// Step contracts exactly one vertex. ok is false when nothing is left to contract.
func (c *Contractor) Step() (int32, bool, error) {
	if err := c.initOrdering(); err != nil {
		if errors.Is(err, ErrAlreadyContracted) {
			return -1, false, nil
		}
		return -1, false, err
	}

	for {
		v, ok := c.ordering.Next(c.score)
		if !ok {
			return -1, false, nil
		}
		if c.graph.IsContracted(v) {
			// contracted directly through ContractNode
			continue
		}
		if err := c.ContractNode(v); err != nil {
			return v, false, err
		}
		return v, true, nil
	}
}

// ContractNode contracts v now, regardless of its priority.
func (c *Contractor) ContractNode(v int32) error {
	if !c.graph.HasNode(v) {
		return fmt.Errorf("contract node %d: %w", v, datastructure.ErrNodeNotFound)
	}
	if c.graph.IsContracted(v) {
		return fmt.Errorf("contract node %d: %w", v, ErrNodeAlreadyContracted)
	}
	if err := c.initState(); err != nil {
		return err
	}

	shortcuts, _ := c.findShortcuts(v, c.witness, nil)
	if err := c.applyShortcuts(v, shortcuts); err != nil {
		return err
	}
	neighbors := c.finishNode(v)
	c.ordering.Contracted(v, neighbors, c.score)
	return nil
}

// finishNode assigns the next level to v and returns its uncontracted neighbours.
func (c *Contractor) finishNode(v int32) []int32 {
	c.graph.SetLevel(v, c.level)
	c.level++
	c.stats.ContractedNodes++

	neighbors := c.uncontractedNeighbors(v)
	for _, n := range neighbors {
		if c.depth[v]+1 > c.depth[n] {
			c.depth[n] = c.depth[v] + 1
		}
	}
	return neighbors
}

func (c *Contractor) applyShortcuts(v int32, shortcuts []shortcut) error {
	for _, sc := range shortcuts {
		err := c.graph.AddArc(sc.from, sc.to, datastructure.NewShortcutArcData(sc.weight, true, false, v))
		if err != nil {
			return fmt.Errorf("add shortcut (%d,%d) via %d: %w", sc.from, sc.to, v, err)
		}
		c.originalEdges[moveKey(sc.from, sc.to)] = sc.originalEdges
		c.stats.ShortcutsAdded++
	}
	return nil
}

func (c *Contractor) uncontractedNeighbors(v int32) []int32 {
	seen := make(map[int32]struct{})
	neighbors := make([]int32, 0)
	add := func(arc datastructure.AdjacentArc) {
		if c.graph.IsContracted(arc.NeighborID) {
			return
		}
		if _, ok := seen[arc.NeighborID]; ok {
			return
		}
		seen[arc.NeighborID] = struct{}{}
		neighbors = append(neighbors, arc.NeighborID)
	}
	c.graph.ForOutArcs(v, add)
	c.graph.ForInArcs(v, add)
	return neighbors
}

func (c *Contractor) originalEdgeCount(from, to int32, arc datastructure.AdjacentArc) int {
	if !arc.IsShortcut {
		return 1
	}
	if count, ok := c.originalEdges[moveKey(from, to)]; ok {
		return count
	}
	return 2
}

/*
findShortcuts. ketika mengontraksi node v, untuk setiap pasangan (u,w) dengan u->v dan v->w, cari witness path u->w
yang tidak lewat v dengan cost <= c(u,v) + c(v,w). kalau tidak ada witness, shortcut (u,w) diperlukan.
tidak memutasi graph, dipakai untuk kontraksi & untuk menghitung priority.
*/
func (c *Contractor) findShortcuts(v int32, witness WitnessCalculator,
	excluded map[int32]struct{}) ([]shortcut, NodeStats) {
	stats := NodeStats{Depth: c.depthOf(v)}

	inArcs := make([]datastructure.AdjacentArc, 0)
	c.graph.ForInArcs(v, func(arc datastructure.AdjacentArc) {
		if c.graph.IsContracted(arc.NeighborID) {
			stats.ContractedNeighbors++
			return
		}
		inArcs = append(inArcs, arc)
	})
	outArcs := make([]datastructure.AdjacentArc, 0)
	c.graph.ForOutArcs(v, func(arc datastructure.AdjacentArc) {
		if c.graph.IsContracted(arc.NeighborID) {
			stats.ContractedNeighbors++
			return
		}
		outArcs = append(outArcs, arc)
	})
	stats.RemovedArcs = len(inArcs) + len(outArcs)

	shortcuts := make([]shortcut, 0)
	targets := make([]WitnessTarget, 0, len(outArcs))
	targetArcs := make([]datastructure.AdjacentArc, 0, len(outArcs))
	for _, inArc := range inArcs {
		u := inArc.NeighborID

		targets = targets[:0]
		targetArcs = targetArcs[:0]
		for _, outArc := range outArcs {
			w := outArc.NeighborID
			if w == u {
				// gak perlu search witness dari node balik ke node itu lagi
				continue
			}
			targets = append(targets, WitnessTarget{NodeID: w, Weight: inArc.Weight + outArc.Weight})
			targetArcs = append(targetArcs, outArc)
		}
		if len(targets) == 0 {
			continue
		}

		found := witness.FindWitnesses(c.graph, u, v, targets, excluded)
		for i, ok := range found {
			if ok {
				continue
			}
			w := targets[i].NodeID
			origEdges := c.originalEdgeCount(u, v, inArc) + c.originalEdgeCount(v, w, targetArcs[i])
			shortcuts = append(shortcuts, shortcut{
				from:          u,
				to:            w,
				weight:        targets[i].Weight,
				originalEdges: origEdges,
			})
			stats.OriginalEdges += origEdges
		}
	}

	stats.Shortcuts = len(shortcuts)
	stats.EdgeDifference = stats.Shortcuts - stats.RemovedArcs
	return shortcuts, stats
}

func (c *Contractor) depthOf(v int32) int {
	if int(v) < len(c.depth) {
		return c.depth[v]
	}
	return 0
}

// Simulate returns the stats of contracting v now without changing the graph.
func (c *Contractor) Simulate(v int32) NodeStats {
	_, stats := c.findShortcuts(v, c.witness, nil)
	return stats
}

func (c *Contractor) score(v int32) float64 {
	return c.policy.Score(c.Simulate(v))
}
