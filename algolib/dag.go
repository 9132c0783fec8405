package algolib

import (
	"github.com/katalvlaran/lvlath/dfs"

	"github.com/psymphonic/synthdb/preqlerr"
	"github.com/psymphonic/synthdb/topology"
)

// isDAG reports (as Scalars["is_dag"] == 1/0) whether g is acyclic,
// grounded on lvlath/dfs.DetectCycles.
func isDAG(g *topology.Graph, params map[string]interface{}) (Result, error) {
	cg := toCoreGraph(g, ConstantWeight)
	hasCycle, _, err := dfs.DetectCycles(cg)
	if err != nil {
		return Result{}, preqlerr.Topologyf("topology", "", "%s", err)
	}
	v := 1.0
	if hasCycle {
		v = 0.0
	}
	return Result{Scalars: map[string]float64{"is_dag": v}}, nil
}

// topologicalSort returns a topological order of g's vertices, grounded
// on lvlath/dfs.TopologicalSort. Errors with TopologyError if g has a
// cycle.
func topologicalSort(g *topology.Graph, params map[string]interface{}) (Result, error) {
	cg := toCoreGraph(g, ConstantWeight)
	order, err := dfs.TopologicalSort(cg)
	if err != nil {
		return Result{}, preqlerr.Topologyf("topology", "", "%s", err)
	}

	vec := make([]float64, len(order))
	for rank, idStr := range order {
		vec[rank] = float64(parseVertexID(idStr))
	}
	return Result{Vectors: map[string][]float64{"order": vec}}, nil
}
