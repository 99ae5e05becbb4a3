package datastructure

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/chroute/pkg/util"
)

var (
	ErrNodeNotFound   = errors.New("node not found")
	ErrNegativeWeight = errors.New("arc weight must be non-negative")
	ErrSelfLoop       = errors.New("self loop arc")
)

/*
Graph. mutable directed weighted graph used by the contractor and the query engine.

every ordered pair (from,to) has at most one stored arc record. a directed move a->b is carried
by exactly one record: rec(a,b) with Forward or rec(b,a) with Backward.
outArcs[v] holds the ids of records whose FromID == v, inArcs[v] the ids of records whose ToID == v.
*/
type Graph struct {
	nodes    []CHNode
	arcs     []Arc
	outArcs  [][]int32
	inArcs   [][]int32
	arcIndex map[int64]int32
}

func NewGraph() *Graph {
	return &Graph{
		nodes:    make([]CHNode, 0),
		arcs:     make([]Arc, 0),
		outArcs:  make([][]int32, 0),
		inArcs:   make([][]int32, 0),
		arcIndex: make(map[int64]int32),
	}
}

func pairKey(from, to int32) int64 {
	return util.BitPackInt64(int64(from), int64(to), 32)
}

func (g *Graph) AddVertex(coord Coordinate) int32 {
	id := int32(len(g.nodes))
	g.nodes = append(g.nodes, NewCHNode(coord.Lat, coord.Lon, id))
	g.outArcs = append(g.outArcs, []int32{})
	g.inArcs = append(g.inArcs, []int32{})
	return id
}

func (g *Graph) hasNode(id int32) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

/*
AddArc. insert arc (from,to). kalau sudah ada arc untuk pasangan yang sama, di merge: tiap arah
pakai weight yang paling kecil.
*/
func (g *Graph) AddArc(from, to int32, data ArcData) error {
	if !g.hasNode(from) {
		return fmt.Errorf("add arc (%d,%d): from %w", from, to, ErrNodeNotFound)
	}
	if !g.hasNode(to) {
		return fmt.Errorf("add arc (%d,%d): to %w", from, to, ErrNodeNotFound)
	}
	if from == to {
		return fmt.Errorf("add arc (%d,%d): %w", from, to, ErrSelfLoop)
	}
	if data.Weight < 0 {
		return fmt.Errorf("add arc (%d,%d): %w", from, to, ErrNegativeWeight)
	}
	if !data.IsShortcut {
		data.ViaNodeID = NoVia
	}

	if data.Forward {
		g.upsertMove(from, to, data)
	}
	if data.Backward {
		g.upsertMove(to, from, data)
	}
	return nil
}

// upsertMove stores the directed move a->b if it is cheaper than the current one. returns true if the graph changed.
func (g *Graph) upsertMove(a, b int32, data ArcData) bool {
	if cur, ok := g.DirectedArc(a, b); ok && cur.Weight <= data.Weight {
		return false
	}

	abID, abOk := g.arcIndex[pairKey(a, b)]
	baID, baOk := g.arcIndex[pairKey(b, a)]

	if abOk {
		g.arcs[abID].Data.Forward = false
	}
	if baOk {
		g.arcs[baID].Data.Backward = false
	}

	if abOk {
		rec := &g.arcs[abID]
		if rec.Data.IsDeleted() || rec.Data.sameContent(data) {
			g.overwrite(rec, data, true, rec.Data.Backward && rec.Data.sameContent(data))
			return true
		}
	}

	if baOk {
		rec := &g.arcs[baID]
		if rec.Data.IsDeleted() || rec.Data.sameContent(data) {
			g.overwrite(rec, data, rec.Data.Forward && rec.Data.sameContent(data), true)
			return true
		}
	}

	if abOk {
		// rec(a,b) still carries b->a with a different weight, rec(b,a) does not exist yet
		g.appendArc(b, a, data, false, true)
		return true
	}

	g.appendArc(a, b, data, true, false)
	return true
}

func (g *Graph) overwrite(rec *Arc, data ArcData, forward, backward bool) {
	rec.Data = ArcData{
		Weight:     data.Weight,
		Forward:    forward,
		Backward:   backward,
		IsShortcut: data.IsShortcut,
		ViaNodeID:  data.ViaNodeID,
		TagsRef:    data.TagsRef,
	}
}

func (g *Graph) appendArc(from, to int32, data ArcData, forward, backward bool) int32 {
	arcID := int32(len(g.arcs))
	arc := NewArc(arcID, from, to, data)
	g.arcs = append(g.arcs, arc)
	g.overwrite(&g.arcs[arcID], data, forward, backward)

	g.outArcs[from] = append(g.outArcs[from], arcID)
	g.inArcs[to] = append(g.inArcs[to], arcID)
	g.arcIndex[pairKey(from, to)] = arcID
	return arcID
}

// DeleteArc removes every direction flag between from and to.
func (g *Graph) DeleteArc(from, to int32) {
	if arcID, ok := g.arcIndex[pairKey(from, to)]; ok {
		g.arcs[arcID].Data.Forward = false
		g.arcs[arcID].Data.Backward = false
	}
	if arcID, ok := g.arcIndex[pairKey(to, from)]; ok {
		g.arcs[arcID].Data.Forward = false
		g.arcs[arcID].Data.Backward = false
	}
}

// GetArc returns the live record stored for exactly (from,to).
func (g *Graph) GetArc(from, to int32) (ArcData, bool) {
	arcID, ok := g.arcIndex[pairKey(from, to)]
	if !ok || g.arcs[arcID].Data.IsDeleted() {
		return ArcData{}, false
	}
	return g.arcs[arcID].Data, true
}

// DirectedArc returns the record that carries the move from->to, seen from (from,to).
func (g *Graph) DirectedArc(from, to int32) (ArcData, bool) {
	if arcID, ok := g.arcIndex[pairKey(from, to)]; ok && g.arcs[arcID].Data.Forward {
		return g.arcs[arcID].Data, true
	}
	if arcID, ok := g.arcIndex[pairKey(to, from)]; ok && g.arcs[arcID].Data.Backward {
		return g.arcs[arcID].Data.Reversed(), true
	}
	return ArcData{}, false
}

// ForOutArcs calls handle for every live move leaving v.
func (g *Graph) ForOutArcs(v int32, handle func(arc AdjacentArc)) {
	for _, arcID := range g.outArcs[v] {
		arc := &g.arcs[arcID]
		if arc.Data.Forward {
			handle(newAdjacentArc(arc, arc.ToID))
		}
	}
	for _, arcID := range g.inArcs[v] {
		arc := &g.arcs[arcID]
		if arc.Data.Backward {
			handle(newAdjacentArc(arc, arc.FromID))
		}
	}
}

// ForInArcs calls handle for every live move entering v.
func (g *Graph) ForInArcs(v int32, handle func(arc AdjacentArc)) {
	for _, arcID := range g.inArcs[v] {
		arc := &g.arcs[arcID]
		if arc.Data.Forward {
			handle(newAdjacentArc(arc, arc.FromID))
		}
	}
	for _, arcID := range g.outArcs[v] {
		arc := &g.arcs[arcID]
		if arc.Data.Backward {
			handle(newAdjacentArc(arc, arc.ToID))
		}
	}
}

func (g *Graph) OutArcs(v int32) []AdjacentArc {
	out := make([]AdjacentArc, 0, len(g.outArcs[v])+len(g.inArcs[v]))
	g.ForOutArcs(v, func(arc AdjacentArc) {
		out = append(out, arc)
	})
	return out
}

func (g *Graph) InArcs(v int32) []AdjacentArc {
	in := make([]AdjacentArc, 0, len(g.outArcs[v])+len(g.inArcs[v]))
	g.ForInArcs(v, func(arc AdjacentArc) {
		in = append(in, arc)
	})
	return in
}

func (g *Graph) GetNode(v int32) CHNode {
	return g.nodes[v]
}

func (g *Graph) HasNode(v int32) bool {
	return g.hasNode(v)
}

func (g *Graph) SetLevel(v int32, level int32) {
	g.nodes[v].Level = level
}

func (g *Graph) GetLevel(v int32) int32 {
	return g.nodes[v].Level
}

func (g *Graph) IsContracted(v int32) bool {
	return g.nodes[v].IsContracted()
}

func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// NumArcs counts live arc records.
func (g *Graph) NumArcs() int {
	count := 0
	for i := range g.arcs {
		if !g.arcs[i].Data.IsDeleted() {
			count++
		}
	}
	return count
}

func (g *Graph) NumShortcuts() int {
	count := 0
	for i := range g.arcs {
		if g.arcs[i].Data.IsShortcut && !g.arcs[i].Data.IsDeleted() {
			count++
		}
	}
	return count
}

func (g *Graph) GetNodes() []CHNode {
	return g.nodes
}

// GetArcs returns every stored record, deleted ones included.
func (g *Graph) GetArcs() []Arc {
	return g.arcs
}

// IsFullyContracted reports whether every vertex has a level.
func (g *Graph) IsFullyContracted() bool {
	for _, node := range g.nodes {
		if !node.IsContracted() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (g *Graph) Clone() *Graph {
	cloned := &Graph{
		nodes:    make([]CHNode, len(g.nodes)),
		arcs:     make([]Arc, len(g.arcs)),
		outArcs:  make([][]int32, len(g.outArcs)),
		inArcs:   make([][]int32, len(g.inArcs)),
		arcIndex: make(map[int64]int32, len(g.arcIndex)),
	}
	copy(cloned.nodes, g.nodes)
	copy(cloned.arcs, g.arcs)
	for v := range g.outArcs {
		cloned.outArcs[v] = append([]int32{}, g.outArcs[v]...)
		cloned.inArcs[v] = append([]int32{}, g.inArcs[v]...)
	}
	for key, arcID := range g.arcIndex {
		cloned.arcIndex[key] = arcID
	}
	return cloned
}

/*
RestoreGraph. rebuild graph dari nodes & arcs yang sudah disimpan (levels, shortcut flags, via tetap sama).
arc id harus sama dengan posisinya di slice.
*/
func RestoreGraph(nodes []CHNode, arcs []Arc) (*Graph, error) {
	g := NewGraph()
	g.nodes = make([]CHNode, len(nodes))
	copy(g.nodes, nodes)
	g.outArcs = make([][]int32, len(nodes))
	g.inArcs = make([][]int32, len(nodes))
	for i := range g.outArcs {
		g.outArcs[i] = []int32{}
		g.inArcs[i] = []int32{}
	}

	for i, arc := range arcs {
		if arc.ArcID != int32(i) {
			return nil, fmt.Errorf("restore graph: arc %d stored at position %d", arc.ArcID, i)
		}
		if !g.hasNode(arc.FromID) || !g.hasNode(arc.ToID) {
			return nil, fmt.Errorf("restore graph: arc %d: %w", arc.ArcID, ErrNodeNotFound)
		}
		g.arcs = append(g.arcs, arc)
		g.outArcs[arc.FromID] = append(g.outArcs[arc.FromID], arc.ArcID)
		g.inArcs[arc.ToID] = append(g.inArcs[arc.ToID], arc.ArcID)
		g.arcIndex[pairKey(arc.FromID, arc.ToID)] = arc.ArcID
	}
	return g, nil
}
