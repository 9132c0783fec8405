package algolib

import (
	"github.com/psymphonic/synthdb/topology"
)

// degree returns the undirected degree of v (out plus in, both directions
// counted so a loop contributes twice, matching graph_tool's convention).
func degree(g *topology.Graph, v int) int {
	return len(g.OutNeighbors(v)) + len(g.InNeighbors(v))
}

// kcoreDecomposition computes each vertex's coreness via the standard
// repeated-min-degree-removal peeling order (Batagelj-Zaversnik), native
// to topology.Graph — no pack library implements degeneracy ordering.
func kcoreDecomposition(g *topology.Graph, params map[string]interface{}) (Result, error) {
	n := g.VertexCount()
	deg := make([]int, n)
	removed := make([]bool, n)
	for v := 0; v < n; v++ {
		deg[v] = degree(g, v)
	}

	core := make([]float64, n)
	remaining := n
	for remaining > 0 {
		// Find the minimum-degree unremoved vertex (O(n) scan; kcore
		// decomposition doesn't need a bucket-queue for this module's
		// graph sizes).
		min, minV := -1, -1
		for v := 0; v < n; v++ {
			if removed[v] {
				continue
			}
			if min == -1 || deg[v] < min {
				min, minV = deg[v], v
			}
		}
		core[minV] = float64(min)
		removed[minV] = true
		remaining--

		for _, u := range g.OutNeighbors(minV) {
			if !removed[u] && deg[u] > min {
				deg[u]--
			}
		}
		for _, u := range g.InNeighbors(minV) {
			if !removed[u] && deg[u] > min {
				deg[u]--
			}
		}
	}

	return Result{Vectors: map[string][]float64{"core": core}}, nil
}

// maxCardinalityMatching greedily pairs adjacent unmatched vertices. This
// is a heuristic, not graph_tool's exact blossom algorithm (no pack
// example implements blossom matching; see DESIGN.md Open Questions).
func maxCardinalityMatching(g *topology.Graph, params map[string]interface{}) (Result, error) {
	n := g.VertexCount()
	matched := make([]bool, n)
	partner := make([]float64, n)
	for v := range partner {
		partner[v] = -1
	}

	for _, e := range g.AllEdges() {
		if e.Origin == e.Terminus || matched[e.Origin] || matched[e.Terminus] {
			continue
		}
		matched[e.Origin] = true
		matched[e.Terminus] = true
		partner[e.Origin] = float64(e.Terminus)
		partner[e.Terminus] = float64(e.Origin)
	}

	pairs := 0
	for _, p := range partner {
		if p >= 0 {
			pairs++
		}
	}

	return Result{
		Scalars: map[string]float64{"matched_pairs": float64(pairs / 2)},
		Vectors: map[string][]float64{"partner": partner},
	}, nil
}

// isBipartite reports (Scalars["is_bipartite"]) whether g is bipartite,
// via a two-coloring BFS sweep from every unvisited vertex, in the same
// queue-and-visited style as bfs/bfs.go.
func isBipartite(g *topology.Graph, params map[string]interface{}) (Result, error) {
	n := g.VertexCount()
	color := make([]int, n)
	for v := range color {
		color[v] = -1
	}

	bipartite := true
	for s := 0; s < n && bipartite; s++ {
		if color[s] != -1 {
			continue
		}
		color[s] = 0
		queue := []int{s}
		for len(queue) > 0 && bipartite {
			v := queue[0]
			queue = queue[1:]
			neighbors := append(append([]int{}, g.OutNeighbors(v)...), g.InNeighbors(v)...)
			for _, u := range neighbors {
				if u == v {
					bipartite = false
					break
				}
				if color[u] == -1 {
					color[u] = 1 - color[v]
					queue = append(queue, u)
				} else if color[u] == color[v] {
					bipartite = false
					break
				}
			}
		}
	}

	v := 1.0
	if !bipartite {
		v = 0.0
	}
	return Result{Scalars: map[string]float64{"is_bipartite": v}}, nil
}

// pseudoDiameter estimates the graph diameter via the standard double-BFS
// sweep: BFS from an arbitrary vertex to find a farthest vertex u, then
// BFS from u; the eccentricity of u is the pseudo-diameter.
func pseudoDiameter(g *topology.Graph, params map[string]interface{}) (Result, error) {
	n := g.VertexCount()
	if n == 0 {
		return Result{Scalars: map[string]float64{"pseudo_diameter": 0}}, nil
	}

	start := intParamOr(params, "start", 0)
	far, _ := farthest(g, start)
	_, ecc := farthest(g, far)

	return Result{Scalars: map[string]float64{"pseudo_diameter": float64(ecc)}}, nil
}

// farthest runs BFS from start and returns the farthest vertex reached and
// its distance.
func farthest(g *topology.Graph, start int) (int, int) {
	n := g.VertexCount()
	dist := make([]int, n)
	for v := range dist {
		dist[v] = -1
	}
	dist[start] = 0
	queue := []int{start}
	far, ecc := start, 0
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if dist[v] > ecc {
			far, ecc = v, dist[v]
		}
		for _, u := range g.OutNeighbors(v) {
			if dist[u] == -1 {
				dist[u] = dist[v] + 1
				queue = append(queue, u)
			}
		}
		for _, u := range g.InNeighbors(v) {
			if dist[u] == -1 {
				dist[u] = dist[v] + 1
				queue = append(queue, u)
			}
		}
	}
	return far, ecc
}
