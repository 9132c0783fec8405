package algolib

import (
	"math"
	"math/rand"

	"github.com/psymphonic/synthdb/topology"
)

// randomLayout assigns each vertex an independent uniform-random (x, y)
// position in [0, scale)^2, matching graph_tool's random_layout.
func randomLayout(g *topology.Graph, params map[string]interface{}) (Result, error) {
	seed := int64(intParamOr(params, "seed", 1))
	scale := floatParamOr(params, "scale", 1.0)
	n := g.VertexCount()

	rng := rand.New(rand.NewSource(seed))
	x := make([]float64, n)
	y := make([]float64, n)
	for v := 0; v < n; v++ {
		x[v] = rng.Float64() * scale
		y[v] = rng.Float64() * scale
	}

	return Result{Vectors: map[string][]float64{"x": x, "y": y}}, nil
}

// radialTree lays out g's vertices on concentric rings by BFS depth from
// "root", spreading each ring's members evenly around the circle —
// graph_tool's radial_tree_layout, built over bfs's depth-tier idiom
// (see walk.Result.Depth) rather than lvlath/bfs directly, since this
// needs every vertex's depth rather than a filtered walk order.
func radialTree(g *topology.Graph, params map[string]interface{}) (Result, error) {
	root := intParamOr(params, "root", 0)
	scale := floatParamOr(params, "scale", 1.0)
	n := g.VertexCount()
	if n == 0 {
		return Result{Vectors: map[string][]float64{"x": {}, "y": {}}}, nil
	}

	depth := make([]int, n)
	for v := range depth {
		depth[v] = -1
	}
	depth[root] = 0
	queue := []int{root}
	order := []int{root}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, u := range g.OutNeighbors(v) {
			if depth[u] == -1 {
				depth[u] = depth[v] + 1
				queue = append(queue, u)
				order = append(order, u)
			}
		}
	}
	// Unreached vertices sit on their own outermost ring, after the
	// farthest reached depth, in ascending id order.
	maxDepth := 0
	for _, d := range depth {
		if d > maxDepth {
			maxDepth = d
		}
	}
	for v := 0; v < n; v++ {
		if depth[v] == -1 {
			maxDepth++
			depth[v] = maxDepth
			order = append(order, v)
		}
	}

	ringCount := make(map[int]int)
	ringSeen := make(map[int]int)
	for _, v := range order {
		ringCount[depth[v]]++
	}

	x := make([]float64, n)
	y := make([]float64, n)
	for _, v := range order {
		d := depth[v]
		idx := ringSeen[d]
		ringSeen[d]++
		count := ringCount[d]
		angle := 2 * math.Pi * float64(idx) / float64(count)
		radius := float64(d) * scale
		x[v] = radius * math.Cos(angle)
		y[v] = radius * math.Sin(angle)
	}

	return Result{Vectors: map[string][]float64{"x": x, "y": y}}, nil
}
