// Package walk implements SynthDB's walk engine: bounded BFS/DFS over a
// graph's topology with per-tier node/link document filters, plus the
// induced-subgraph-clone analytics mode that hands a secondary topology
// of exactly the discovered vertices/edges to algolib.
//
// Grounded on lvlath/bfs's walker struct (queueItem/visited/ctx
// cancellation shape) and on original_source/server.py's
// bfs/clone_bfs2/breadth_first.
package walk

import (
	"context"
	"strconv"

	"github.com/psymphonic/synthdb/catalog"
	"github.com/psymphonic/synthdb/document"
	"github.com/psymphonic/synthdb/identifier"
	"github.com/psymphonic/synthdb/preqlerr"
	"github.com/psymphonic/synthdb/topology"
)

// NodeFilter decides whether a discovered vertex's node document passes
// this tier's filter, given the row's raw JSON.
type NodeFilter func(doc string) bool

// LinkFilter decides whether a candidate edge's link document passes this
// tier's filter.
type LinkFilter func(doc string) bool

// Direction selects which of a vertex's edges a tier expands along,
// spec.md §4.I's per-tier direction parameter.
type Direction int

const (
	// Out expands a vertex's outgoing edges (the default).
	Out Direction = iota
	// In expands a vertex's incoming edges.
	In
)

// Tier configures one hop of the walk: the direction to expand in, an
// optional NodeFilter applied to the vertex being expanded into, and an
// optional LinkFilter applied to the edge used to reach it. A zero Tier
// means "expand outgoing edges, unconditionally allowed", matching the
// original's "no filter on this tier" default.
type Tier struct {
	Direction Direction
	Node      NodeFilter
	Link      LinkFilter
}

// Options configures a walk invocation.
type Options struct {
	// Tiers gives one Tier per hop; len(Tiers) bounds the walk depth.
	// Hops beyond len(Tiers)-1 reuse the last tier, matching the
	// original's "tiers shorter than the observed depth repeat the final
	// filter" convention.
	Tiers []Tier
	// DFS selects depth-first order; default is breadth-first.
	DFS bool
	// MaxDepth bounds expansion to spec.md §4.I's dist parameter (depth
	// limit d >= 1); 0 means "use len(Tiers)", matching the common case
	// where one tier is supplied per hop.
	MaxDepth int
	// Ctx allows cancellation of long walks.
	Ctx context.Context
}

// Result is the outcome of a plain walk: the discovered vertices in
// visitation order, their BFS/DFS depth, and the edge used to reach each
// (empty Edge for the start vertex).
type Result struct {
	Order []int
	Depth map[int]int
	Via   map[int]topology.Edge
}

type queueItem struct {
	id    int
	depth int
	via   topology.Edge
	hasVia bool
}

// Walk explores g's topology from start, applying per-tier node/link
// filters and returning every vertex that passed them.
func Walk(g *catalog.Graph, store *document.Store, start int, opts Options) (*Result, error) {
	if !g.Topology.HasVertex(start) {
		return nil, preqlerr.Nonexistencef("walk", "start", "no such vertex %d", start)
	}
	ctx := opts.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	maxDepth := opts.MaxDepth
	if maxDepth == 0 {
		maxDepth = len(opts.Tiers)
	}
	if maxDepth == 0 {
		maxDepth = 1
	}

	res := &Result{Depth: make(map[int]int), Via: make(map[int]topology.Edge)}
	visited := map[int]bool{start: true}
	queue := []queueItem{{id: start, depth: 0}}
	res.Depth[start] = 0

	tierFor := func(depth int) Tier {
		if len(opts.Tiers) == 0 {
			return Tier{}
		}
		if depth < len(opts.Tiers) {
			return opts.Tiers[depth]
		}
		return opts.Tiers[len(opts.Tiers)-1]
	}

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		var item queueItem
		if opts.DFS {
			item = queue[len(queue)-1]
			queue = queue[:len(queue)-1]
		} else {
			item = queue[0]
			queue = queue[1:]
		}

		res.Order = append(res.Order, item.id)

		if item.depth >= maxDepth {
			continue
		}

		tier := tierFor(item.depth)
		edges := g.Topology.OutEdges(item.id)
		if tier.Direction == In {
			edges = g.Topology.InEdges(item.id)
		}

		for _, edge := range edges {
			target := edge.Terminus
			if tier.Direction == In {
				target = edge.Origin
			}
			if target == start || visited[target] {
				continue
			}

			if tier.Link != nil {
				linkID := identifier.EdgeID(edge.Origin, edge.LocalIdx, edge.Terminus)
				doc, ok, err := store.Get(g.Name, document.TableLinks, linkID)
				if err != nil {
					return nil, err
				}
				if !ok || !tier.Link(doc) {
					continue
				}
			}
			if tier.Node != nil {
				nodeID := strconv.Itoa(target)
				doc, ok, err := store.Get(g.Name, document.TableNodes, nodeID)
				if err != nil {
					return nil, err
				}
				if !ok || !tier.Node(doc) {
					continue
				}
			}

			visited[target] = true
			res.Depth[target] = item.depth + 1
			res.Via[target] = edge
			queue = append(queue, queueItem{id: target, depth: item.depth + 1, via: edge, hasVia: true})
		}
	}

	return res, nil
}
