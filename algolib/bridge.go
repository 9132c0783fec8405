// Package algolib adapts SynthDB's topology.Graph to the algorithms
// library spec.md treats as an external collaborator (§1, §4.F, §9):
// each named algorithm is registered once in Registry and invoked by
// name from the query planner, matching graph_tool's role in the
// original Python server.
//
// Where the teacher (lvlath) already implements an algorithm, this
// package converts a topology.Graph into the teacher's string-keyed
// *core.Graph and calls straight through (dijkstra, dfs, prim_kruskal,
// flow). Where no pack library covers the algorithm cleanly (pagerank,
// betweenness, kcore_decomposition, matching, layouts, tsp), it is
// implemented directly against topology.Graph in the teacher's
// walker/struct idiom (see DESIGN.md Open Questions for the scope
// decision on graph_tool's remaining catalog, and on why the teacher's
// own matrix/tsp packages were dropped rather than adapted).
package algolib

import (
	"strconv"

	"github.com/katalvlaran/lvlath/core"

	"github.com/psymphonic/synthdb/topology"
)

// WeightFunc supplies an edge's weight for algorithms that need one
// (dijkstra, prim_kruskal, flow capacities). Callers typically read it
// from a link document's "weight" field or a propmap.
type WeightFunc func(e topology.Edge) int64

// ConstantWeight returns a WeightFunc that reports 1 for every edge,
// the default when no weight source is configured (matches the
// original's "unweighted implies weight 1" convention for MST/shortest
// path over unweighted graphs).
func ConstantWeight(e topology.Edge) int64 { return 1 }

// toCoreGraph converts g into the teacher's string-keyed, weighted,
// directed, multi-edge-capable *core.Graph, so lvlath's algorithm
// packages (which only know core.Graph) can run over it unmodified.
// Vertex ids become their decimal string form.
func toCoreGraph(g *topology.Graph, weight WeightFunc) *core.Graph {
	if weight == nil {
		weight = ConstantWeight
	}

	cg := core.NewGraph(core.WithDirected(true), core.WithWeighted(), core.WithMultiEdges(), core.WithLoops())
	n := g.VertexCount()
	for v := 0; v < n; v++ {
		_ = cg.AddVertex(strconv.Itoa(v))
	}
	for _, e := range g.AllEdges() {
		_, _ = cg.AddEdge(strconv.Itoa(e.Origin), strconv.Itoa(e.Terminus), weight(e))
	}
	return cg
}

func parseVertexID(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
