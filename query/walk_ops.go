package query

import (
	"math"

	"github.com/psymphonic/synthdb/catalog"
	"github.com/psymphonic/synthdb/preqlerr"
	"github.com/psymphonic/synthdb/walk"
)

// handleWalk implements spec.md §4.I: bounded BFS/DFS with per-tier
// node/link filters, and the induced-subgraph-analytics / similarity
// extensions when "topo" names an algorithm.
func (e *Engine) handleWalk(req Request) (interface{}, error) {
	g, err := e.Catalog.Get(req.GraphID)
	if err != nil {
		return nil, err
	}
	sourceRef, err := requiredStringParam(req.Parameters, "source", "walk")
	if err != nil {
		return nil, err
	}
	source, _, err := ResolveNode(g, e.Store, sourceRef)
	if err != nil {
		return nil, err
	}

	opts, err := e.buildWalkOptions(req)
	if err != nil {
		return nil, err
	}

	res, err := walk.Walk(g, e.Store, source, opts)
	if err != nil {
		return nil, err
	}

	topoName, hasTopo := req.Parameters["topo"].(string)
	if !hasTopo {
		return map[string]interface{}{"order": res.Order, "depth": res.Depth}, nil
	}
	if topoName == "hits" {
		return nil, preqlerr.Syntaxf("walk", "topo", "use hits_hub/hits_authority instead of hits on an induced-subgraph walk")
	}
	if topoName == "similarity" {
		return e.walkSimilarity(g, source, res, req)
	}
	return e.walkInducedAnalytics(g, res, topoName, req)
}

func (e *Engine) buildWalkOptions(req Request) (walk.Options, error) {
	dist := intParamOr(req.Parameters, "dist", 1)

	var directions []string
	switch v := req.Parameters["direction"].(type) {
	case string:
		directions = []string{v}
	case []interface{}:
		for _, d := range v {
			s, _ := d.(string)
			directions = append(directions, s)
		}
	}

	var filterSpecs []interface{}
	if fs, ok := req.Parameters["filters"].([]interface{}); ok {
		filterSpecs = fs
	}

	tiers := make([]walk.Tier, dist)
	for i := 0; i < dist; i++ {
		tier := walk.Tier{}
		dir := "out"
		if len(directions) == 1 {
			dir = directions[0]
		} else if i < len(directions) {
			dir = directions[i]
		}
		if dir == "in" {
			tier.Direction = walk.In
		}
		if i < len(filterSpecs) {
			spec, _ := filterSpecs[i].(map[string]interface{})
			if nodeSpec, ok := spec["node"]; ok {
				p, err := e.resolvePredicate(nodeSpec)
				if err != nil {
					return walk.Options{}, err
				}
				tier.Node = walk.NodeFilter(p)
			}
			if linkSpec, ok := spec["link"]; ok {
				p, err := e.resolvePredicate(linkSpec)
				if err != nil {
					return walk.Options{}, err
				}
				tier.Link = walk.LinkFilter(p)
			}
		}
		tiers[i] = tier
	}

	return walk.Options{Tiers: tiers, DFS: boolParamOr(req.Parameters, "dfs", false), MaxDepth: dist}, nil
}

func boolParamOr(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

// walkInducedAnalytics builds the secondary topology of exactly the
// discovered nodes, runs the named algorithm via algolib, and maps
// results back to host vertex ids with Inf/NaN sentinel substitution
// (spec.md §4.I). The secondary graph is registered under a fresh
// catalog name only long enough to borrow algolib's registry call, then
// dropped — algolib.Registry.Run takes a bare *topology.Graph so no
// catalog round-trip is actually required.
func (e *Engine) walkInducedAnalytics(g *catalog.Graph, res *walk.Result, topoName string, req Request) (interface{}, error) {
	clone := walk.InducedSubgraph(g.Topology, res.Order)
	result, err := e.Algo.Run(clone.Graph, topoName, req.Parameters)
	if err != nil {
		return nil, preqlerr.Topologyf("walk", "topo", "%s", err)
	}

	scalars := make(map[string]interface{}, len(result.Scalars))
	for k, v := range result.Scalars {
		scalars[k] = sentinel(v)
	}
	vectors := make(map[string]map[int]interface{}, len(result.Vectors))
	for name, vec := range result.Vectors {
		byHostID := make(map[int]interface{}, len(vec))
		for cloneID, v := range vec {
			hostID, ok := clone.ToHost[cloneID]
			if !ok {
				continue
			}
			byHostID[hostID] = sentinel(v)
		}
		vectors[name] = byHostID
	}
	return map[string]interface{}{"nodes": res.Order, "scalars": scalars, "vectors": vectors}, nil
}

func sentinel(v float64) interface{} {
	switch {
	case math.IsInf(v, 1) || v >= math.MaxInt32:
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	default:
		return v
	}
}

// walkSimilarity implements spec.md §4.I's similarity mode: per-discovered
// node neighbour-set overlap (Jaccard) against the source's neighbour set.
func (e *Engine) walkSimilarity(g *catalog.Graph, source int, res *walk.Result, req Request) (interface{}, error) {
	scores := make(map[int]float64, len(res.Order))
	for _, id := range res.Order {
		if id == source {
			continue
		}
		scores[id] = walk.JaccardSimilarity(g.Topology, source, id)
	}
	return map[string]interface{}{"source": source, "similarity": scores}, nil
}
