package routingalgorithm

import "context"

/*
AreConnected. strongly connected component dihitung kosaraju, component id nya urut topological order
dari condensation graph. jadi:
  - scc sama -> pasti connected
  - scc[from] > scc[to] -> pasti tidak ada path
  - selain itu pakai query ch tanpa budget.
*/
func (rt *RouteAlgorithm) AreConnected(ctx context.Context, from, to int32) (bool, error) {
	if !rt.g.HasNode(from) || !rt.g.HasNode(to) {
		return false, nil
	}
	if rt.scc[from] == rt.scc[to] {
		return true, nil
	}
	if rt.scc[from] > rt.scc[to] {
		return false, nil
	}
	route, err := rt.shortestPath(ctx, from, to, QueryOptions{})
	if err != nil {
		return false, err
	}
	return route.Found, nil
}

func (rt *RouteAlgorithm) NumComponents() int {
	return rt.sccCount
}
