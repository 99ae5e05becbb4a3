package contractor

import (
	"github.com/lintang-b-s/chroute/pkg/datastructure"
	"github.com/lintang-b-s/chroute/pkg/util"
)

// Adjacency is the read-only view the scc search needs.
type Adjacency interface {
	NumNodes() int
	ForOutArcs(v int32, handle func(arc datastructure.AdjacentArc))
	ForInArcs(v int32, handle func(arc datastructure.AdjacentArc))
}

/*
StronglyConnectedComponents. kosaraju: dfs di graph untuk dapat finishing order, lalu dfs di reversed graph
dengan urutan finishing order terbalik. return component id tiap node & jumlah component.
dfs pakai explicit stack.
*/
func StronglyConnectedComponents(g Adjacency) ([]int32, int) {
	n := int32(g.NumNodes())

	order := make([]int32, 0, n)
	visited := make([]bool, n)
	for i := int32(0); i < n; i++ {
		if !visited[i] {
			dfs(g, i, &order, visited, false)
		}
	}

	order = util.ReverseG[int32](order)

	visited = make([]bool, n)
	scc := make([]int32, n)
	componentCount := 0
	for _, v := range order {
		if visited[v] {
			continue
		}
		component := make([]int32, 0)
		dfs(g, v, &component, visited, true)
		for _, node := range component {
			scc[node] = int32(componentCount)
		}
		componentCount++
	}
	return scc, componentCount
}

type dfsFrame struct {
	nodeID    int32
	neighbors []int32
	next      int
}

func adjacentNodes(g Adjacency, v int32, reversed bool) []int32 {
	neighbors := make([]int32, 0)
	collect := func(arc datastructure.AdjacentArc) {
		neighbors = append(neighbors, arc.NeighborID)
	}
	if reversed {
		g.ForInArcs(v, collect)
	} else {
		g.ForOutArcs(v, collect)
	}
	return neighbors
}

// dfs appends vertices to output in finishing order.
func dfs(g Adjacency, start int32, output *[]int32, visited []bool, reversed bool) {
	visited[start] = true
	stack := []dfsFrame{{nodeID: start, neighbors: adjacentNodes(g, start, reversed)}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.neighbors) {
			to := top.neighbors[top.next]
			top.next++
			if !visited[to] {
				visited[to] = true
				stack = append(stack, dfsFrame{nodeID: to, neighbors: adjacentNodes(g, to, reversed)})
			}
			continue
		}
		*output = append(*output, top.nodeID)
		stack = stack[:len(stack)-1]
	}
}
