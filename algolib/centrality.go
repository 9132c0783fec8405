package algolib

import (
	"math"

	"github.com/psymphonic/synthdb/topology"
)

// pagerank computes PageRank scores via power iteration over g's out-edge
// structure. No pack library exposes a plain-slice power-iteration kernel
// (the teacher's matrix package is dropped, see DESIGN.md), so this walks
// adjacency directly: the same style topology.Graph's own methods use.
func pagerank(g *topology.Graph, params map[string]interface{}) (Result, error) {
	damping := floatParamOr(params, "damping", 0.85)
	iterations := intParamOr(params, "iterations", 50)

	n := g.VertexCount()
	if n == 0 {
		return Result{Vectors: map[string][]float64{"rank": {}}}, nil
	}

	outDeg := make([]int, n)
	for v := 0; v < n; v++ {
		outDeg[v] = len(g.OutNeighbors(v))
	}

	rank := make([]float64, n)
	for v := range rank {
		rank[v] = 1.0 / float64(n)
	}

	for iter := 0; iter < iterations; iter++ {
		next := make([]float64, n)
		dangling := 0.0
		for v := 0; v < n; v++ {
			if outDeg[v] == 0 {
				dangling += rank[v]
			}
		}
		base := (1 - damping + damping*dangling) / float64(n)
		for v := range next {
			next[v] = base
		}
		for v := 0; v < n; v++ {
			if outDeg[v] == 0 {
				continue
			}
			share := damping * rank[v] / float64(outDeg[v])
			for _, u := range g.OutNeighbors(v) {
				next[u] += share
			}
		}
		rank = next
	}

	return Result{Vectors: map[string][]float64{"rank": rank}}, nil
}

// betweenness computes unweighted betweenness centrality via Brandes'
// algorithm, reusing the same BFS-queue structure as the teacher's
// bfs.BFS walker (see bfs/bfs.go) adapted to accumulate shortest-path
// counts and dependencies instead of a visit order.
func betweenness(g *topology.Graph, params map[string]interface{}) (Result, error) {
	n := g.VertexCount()
	centrality := make([]float64, n)

	for s := 0; s < n; s++ {
		stack := make([]int, 0, n)
		preds := make([][]int, n)
		sigma := make([]float64, n)
		dist := make([]int, n)
		for v := range dist {
			dist[v] = -1
		}
		sigma[s] = 1
		dist[s] = 0

		queue := []int{s}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, w := range g.OutNeighbors(v) {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		delta := make([]float64, n)
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
			}
			if w != s {
				centrality[w] += delta[w]
			}
		}
	}

	return Result{Vectors: map[string][]float64{"betweenness": centrality}}, nil
}

// eigenvector computes eigenvector centrality via power iteration over the
// symmetrized adjacency relation (same rationale as pagerank: the teacher's
// matrix/ops.Eigen is unreachable, see DESIGN.md).
func eigenvector(g *topology.Graph, params map[string]interface{}) (Result, error) {
	iterations := intParamOr(params, "iterations", 100)
	n := g.VertexCount()
	if n == 0 {
		return Result{Vectors: map[string][]float64{"centrality": {}}}, nil
	}

	score := make([]float64, n)
	for v := range score {
		score[v] = 1.0
	}

	for iter := 0; iter < iterations; iter++ {
		next := make([]float64, n)
		for v := 0; v < n; v++ {
			for _, u := range g.OutNeighbors(v) {
				next[u] += score[v]
			}
			for _, u := range g.InNeighbors(v) {
				next[u] += score[v]
			}
		}
		norm := 0.0
		for _, x := range next {
			norm += x * x
		}
		if norm > 0 {
			inv := 1.0 / math.Sqrt(norm)
			for v := range next {
				next[v] *= inv
			}
		}
		score = next
	}

	return Result{Vectors: map[string][]float64{"centrality": score}}, nil
}
