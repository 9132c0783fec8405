package walk

import "github.com/psymphonic/synthdb/topology"

// CloneResult is a secondary topology built from exactly the vertices a
// walk discovered and the edges among them, for algolib to run an
// algorithm over without touching the host graph. Mapping translates
// between the clone's own dense ids and the host's original vertex ids,
// since the clone renumbers from 0 regardless of which ids the walk
// actually visited.
type CloneResult struct {
	Graph     *topology.Graph
	ToHost    map[int]int // clone id -> host id
	ToClone   map[int]int // host id -> clone id
}

// InducedSubgraph builds the secondary topology used by analytics walks
// (spec.md §4.I): a fresh topology.Graph containing exactly the vertices
// in order, plus every edge of host whose endpoints are both in order.
func InducedSubgraph(host *topology.Graph, order []int) *CloneResult {
	clone := &CloneResult{
		Graph:   topology.NewGraph(topology.WithLoops()),
		ToHost:  make(map[int]int, len(order)),
		ToClone: make(map[int]int, len(order)),
	}

	for _, hostID := range order {
		cloneID := clone.Graph.AddVertex()
		clone.ToHost[cloneID] = hostID
		clone.ToClone[hostID] = cloneID
	}

	for _, hostID := range order {
		for _, e := range host.OutEdges(hostID) {
			cloneTerminus, ok := clone.ToClone[e.Terminus]
			if !ok {
				continue
			}
			cloneOrigin := clone.ToClone[hostID]
			_, _ = clone.Graph.AddEdge(cloneOrigin, cloneTerminus)
		}
	}

	return clone
}

// NeighborSet returns the set of vertices directly reachable from v in
// either direction, the basis of walk's similarity mode (spec.md §4.I):
// comparing a candidate vertex's neighbor overlap against source's.
func NeighborSet(g *topology.Graph, v int) map[int]struct{} {
	set := make(map[int]struct{})
	for _, n := range g.OutNeighbors(v) {
		set[n] = struct{}{}
	}
	for _, n := range g.InNeighbors(v) {
		set[n] = struct{}{}
	}
	return set
}

// JaccardSimilarity scores neighbor-set overlap between two vertices, 0
// (disjoint) to 1 (identical neighbor sets), the original's similarity
// mode metric.
func JaccardSimilarity(g *topology.Graph, a, b int) float64 {
	sa := NeighborSet(g, a)
	sb := NeighborSet(g, b)
	if len(sa) == 0 && len(sb) == 0 {
		return 0
	}

	intersection := 0
	for n := range sa {
		if _, ok := sb[n]; ok {
			intersection++
		}
	}
	union := len(sa) + len(sb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
