package contractor

// NodeStats describes what contracting a vertex right now would do to the graph.
type NodeStats struct {
	Shortcuts           int // shortcuts that would be inserted
	RemovedArcs         int // moves between v and its uncontracted neighbours
	EdgeDifference      int // Shortcuts - RemovedArcs
	ContractedNeighbors int
	Depth               int // search space depth reached by v
	OriginalEdges       int // original arcs represented by the new shortcuts
}

type PriorityPolicy interface {
	Score(stats NodeStats) float64
}

// WeightedPolicy is a linear combination of the node stats.
type WeightedPolicy struct {
	EdgeDifference      float64
	ContractedNeighbors float64
	Depth               float64
	OriginalEdges       float64
}

func (p WeightedPolicy) Score(stats NodeStats) float64 {
	return p.EdgeDifference*float64(stats.EdgeDifference) +
		p.ContractedNeighbors*float64(stats.ContractedNeighbors) +
		p.Depth*float64(stats.Depth) +
		p.OriginalEdges*float64(stats.OriginalEdges)
}

func DefaultPolicy() WeightedPolicy {
	return WeightedPolicy{
		EdgeDifference:      1,
		ContractedNeighbors: 2,
		Depth:               1,
	}
}

// EdgeDifferencePolicy: 10*edgeDifference + originalEdges.
func EdgeDifferencePolicy() WeightedPolicy {
	return WeightedPolicy{
		EdgeDifference: 10,
		OriginalEdges:  1,
	}
}

// PolicyFunc adapts a plain function to a PriorityPolicy.
type PolicyFunc func(stats NodeStats) float64

func (f PolicyFunc) Score(stats NodeStats) float64 {
	return f(stats)
}
