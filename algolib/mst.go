package algolib

import (
	"math/rand"

	"github.com/katalvlaran/lvlath/prim_kruskal"

	"github.com/psymphonic/synthdb/preqlerr"
	"github.com/psymphonic/synthdb/topology"
)

// minSpanningTree computes a minimum spanning tree's total weight and
// member edges, grounded on lvlath/prim_kruskal.Kruskal (undirected MST
// over the bridged core.Graph).
func minSpanningTree(g *topology.Graph, params map[string]interface{}) (Result, error) {
	cg := toCoreGraph(g, ConstantWeight)
	edges, total, err := prim_kruskal.Kruskal(cg)
	if err != nil {
		return Result{}, preqlerr.Topologyf("topology", "", "%s", err)
	}

	vec := make([]float64, len(edges))
	for i, e := range edges {
		vec[i] = float64(parseVertexID(e.From)*1_000_000 + parseVertexID(e.To))
	}
	return Result{
		Scalars: map[string]float64{"total_weight": float64(total)},
		Vectors: map[string][]float64{"edges": vec},
	}, nil
}

// randomSpanningTree computes a spanning tree over a randomly-shuffled
// edge view via lvlath/prim_kruskal.Prim, approximating graph_tool's
// random_spanning_tree (which samples uniformly over spanning trees; this
// port instead randomizes Prim's tie-breaking order — see DESIGN.md).
func randomSpanningTree(g *topology.Graph, params map[string]interface{}) (Result, error) {
	seed := int64(intParamOr(params, "seed", 1))
	root := intParamOr(params, "root", 0)
	if !g.HasVertex(root) {
		return Result{}, preqlerr.Topologyf("topology", "root", "no such vertex %d", root)
	}

	rng := rand.New(rand.NewSource(seed))
	shuffled := topology.NewGraph(topology.WithLoops())
	n := g.VertexCount()
	for v := 0; v < n; v++ {
		shuffled.AddVertex()
	}
	edges := g.AllEdges()
	rng.Shuffle(len(edges), func(i, j int) { edges[i], edges[j] = edges[j], edges[i] })
	for _, e := range edges {
		_, _ = shuffled.AddEdge(e.Origin, e.Terminus)
	}

	cg := toCoreGraph(shuffled, ConstantWeight)
	edgesOut, total, err := prim_kruskal.Prim(cg, itoa(root))
	if err != nil {
		return Result{}, preqlerr.Topologyf("topology", "", "%s", err)
	}

	vec := make([]float64, len(edgesOut))
	for i, e := range edgesOut {
		vec[i] = float64(parseVertexID(e.From)*1_000_000 + parseVertexID(e.To))
	}
	return Result{
		Scalars: map[string]float64{"total_weight": total},
		Vectors: map[string][]float64{"edges": vec},
	}, nil
}
