package algolib

import (
	"strconv"

	"github.com/katalvlaran/lvlath/dijkstra"

	"github.com/psymphonic/synthdb/preqlerr"
	"github.com/psymphonic/synthdb/topology"
)

// shortestDistance computes single-source shortest distances, grounded on
// lvlath/dijkstra.Dijkstra. Parameter "source" names the origin vertex.
func shortestDistance(g *topology.Graph, params map[string]interface{}) (Result, error) {
	source, err := intParam(params, "source")
	if err != nil {
		return Result{}, err
	}
	if !g.HasVertex(source) {
		return Result{}, preqlerr.Topologyf("topology", "source", "no such vertex %d", source)
	}

	cg := toCoreGraph(g, ConstantWeight)
	dist, _, err := dijkstra.Dijkstra(cg, dijkstra.Source(strconv.Itoa(source)))
	if err != nil {
		return Result{}, preqlerr.Topologyf("topology", "", "%s", err)
	}

	vec := make([]float64, g.VertexCount())
	for idStr, d := range dist {
		vec[parseVertexID(idStr)] = float64(d)
	}
	return Result{Vectors: map[string][]float64{"distance": vec}}, nil
}

// shortestPath reconstructs a single shortest path from "source" to
// "target", grounded on lvlath/dijkstra's WithReturnPath predecessor map.
func shortestPath(g *topology.Graph, params map[string]interface{}) (Result, error) {
	source, err := intParam(params, "source")
	if err != nil {
		return Result{}, err
	}
	target, err := intParam(params, "target")
	if err != nil {
		return Result{}, err
	}
	if !g.HasVertex(source) || !g.HasVertex(target) {
		return Result{}, preqlerr.Topologyf("topology", "source", "no such vertex")
	}

	cg := toCoreGraph(g, ConstantWeight)
	dist, prev, err := dijkstra.Dijkstra(cg, dijkstra.Source(strconv.Itoa(source)), dijkstra.WithReturnPath())
	if err != nil {
		return Result{}, preqlerr.Topologyf("topology", "", "%s", err)
	}

	targetStr := strconv.Itoa(target)
	if _, ok := dist[targetStr]; !ok {
		return Result{Paths: map[int][]int{target: nil}}, nil
	}

	sourceStr := strconv.Itoa(source)
	var path []int
	for cur := targetStr; ; {
		path = append([]int{parseVertexID(cur)}, path...)
		if cur == sourceStr {
			break
		}
		next, ok := prev[cur]
		if !ok || next == "" {
			break
		}
		cur = next
	}

	return Result{Paths: map[int][]int{target: path}}, nil
}
