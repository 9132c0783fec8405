package query

import (
	"github.com/psymphonic/synthdb/identifier"
	"github.com/psymphonic/synthdb/preqlerr"
)

// handleTopology implements spec.md §4.F's topology dispatch rule:
// on a node -> per-node functions (neighbours, degree, links); on a link
// -> origin/terminus; on the graph -> the algorithms library.
func (e *Engine) handleTopology(req Request) (interface{}, error) {
	g, err := e.Catalog.Get(req.GraphID)
	if err != nil {
		return nil, err
	}

	if ref, ok := req.Parameters["node"].(string); ok {
		id, _, rerr := ResolveNode(g, e.Store, ref)
		if rerr != nil {
			return nil, rerr
		}
		switch stringParamOr(req.Parameters, "func", "neighbours") {
		case "neighbours":
			return map[string]interface{}{
				"out": g.Topology.OutNeighbors(id),
				"in":  g.Topology.InNeighbors(id),
			}, nil
		case "degree":
			return map[string]interface{}{
				"out_degree": len(g.Topology.OutEdges(id)),
				"in_degree":  len(g.Topology.InEdges(id)),
			}, nil
		case "links":
			out := g.Topology.OutEdges(id)
			in := g.Topology.InEdges(id)
			ids := make([]string, 0, len(out)+len(in))
			for _, edge := range out {
				ids = append(ids, identifier.EdgeID(edge.Origin, edge.LocalIdx, edge.Terminus))
			}
			for _, edge := range in {
				ids = append(ids, identifier.EdgeID(edge.Origin, edge.LocalIdx, edge.Terminus))
			}
			return ids, nil
		default:
			return nil, preqlerr.Syntaxf("topology", "func", "unrecognized per-node function")
		}
	}

	if ref, ok := req.Parameters["link"].(string); ok {
		primary, rerr := ResolveLink(g, e.Store, ref)
		if rerr != nil {
			return nil, rerr
		}
		origin, localIdx, terminus, ok := identifier.ParseEdgeID(primary)
		if !ok {
			return nil, preqlerr.Syntaxf("topology", "link", "malformed link id %q", primary)
		}
		return map[string]interface{}{"origin": origin, "local_idx": localIdx, "terminus": terminus}, nil
	}

	name, err := requiredStringParam(req.Parameters, "algorithm", "topology")
	if err != nil {
		return nil, err
	}
	result, err := e.Algo.Run(g.Topology, name, req.Parameters)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"scalars": result.Scalars,
		"vectors": result.Vectors,
		"paths":   result.Paths,
	}, nil
}

// handleGenerate implements spec.md §4.F's "generate -> generator
// library, then the finalize protocol".
func (e *Engine) handleGenerate(req Request) (interface{}, error) {
	g, err := e.Catalog.Get(req.GraphID)
	if err != nil {
		return nil, err
	}
	genType, err := requiredStringParam(req.Parameters, "gen_type", "generate")
	if err != nil {
		return nil, err
	}
	return e.Gen.Generate(g, e.Store, genType, req.Parameters)
}
