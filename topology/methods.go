package topology

// SwapResult reports the consequence of removing a vertex under the
// dense-id invariant: the vertex previously numbered OldID (the last live
// id before the delete) now lives at NewID (the deleted slot), unless
// Moved is false because the removed vertex already was the last one.
type SwapResult struct {
	OldID int
	NewID int
	Moved bool
}

// VertexCount returns the number of live vertices.
func (g *Graph) VertexCount() int {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	return g.count
}

// HasVertex reports whether id is a currently live vertex.
func (g *Graph) HasVertex(id int) bool {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	return id >= 0 && id < g.count
}

// AddVertex appends a new vertex and returns its id, always count-1 after
// the insert (preserving the [0,N) dense invariant).
//
// Complexity: O(1) amortized.
func (g *Graph) AddVertex() int {
	g.muVert.Lock()
	defer g.muVert.Unlock()
	id := g.count
	g.count++
	return id
}

// RemoveVertex deletes vertex id, swapping the highest-numbered vertex into
// its slot to keep ids dense in [0,N). All incident edges (in either
// direction) on the removed vertex are dropped first; edges touching the
// swapped-in vertex survive, renamed in place to reference its new id
// (spec.md §4.H step 2b: "removing a middle vertex renames vertex s to v
// in the in-memory model" — the swap must not drop s's edges).
//
// Complexity: O(deg(id) + deg(last)).
func (g *Graph) RemoveVertex(id int) (SwapResult, error) {
	g.muVert.Lock()
	defer g.muVert.Unlock()
	g.muAdj.Lock()
	defer g.muAdj.Unlock()

	if id < 0 || id >= g.count {
		return SwapResult{}, ErrVertexNotFound
	}

	last := g.count - 1
	g.removeAllIncident(id)

	if id == last {
		g.count--
		return SwapResult{OldID: id, NewID: id, Moved: false}, nil
	}

	g.renameVertex(last, id)
	g.count--

	return SwapResult{OldID: last, NewID: id, Moved: true}, nil
}

// removeAllIncident drops every edge touching v, in either direction.
// Callers must hold muAdj.
func (g *Graph) removeAllIncident(v int) {
	for terminus := range g.adj[v] {
		delete(g.adj[v], terminus)
		g.forgetRev(v, terminus)
	}
	delete(g.adj, v)

	for origin := range g.rev[v] {
		delete(g.adj[origin], v)
	}
	delete(g.rev, v)
}

// renameVertex moves every edge touching oldID onto newID, in both
// directions, including a self-loop on oldID (which becomes a self-loop
// on newID). Callers must hold muAdj and must have already cleared newID
// of any incident edges of its own (RemoveVertex's removeAllIncident(id)
// call does this before renameVertex runs).
func (g *Graph) renameVertex(oldID, newID int) {
	if outs, ok := g.adj[oldID]; ok {
		delete(g.adj, oldID)
		newOuts := make(map[int][]struct{}, len(outs))
		for t, slots := range outs {
			nt := t
			if t == oldID {
				nt = newID
			} else if s, ok := g.rev[t]; ok {
				delete(s, oldID)
				s[newID] = struct{}{}
			}
			newOuts[nt] = slots
		}
		g.adj[newID] = newOuts
	}

	if ins, ok := g.rev[oldID]; ok {
		delete(g.rev, oldID)
		newIns := make(map[int]struct{}, len(ins))
		for o := range ins {
			no := o
			if o == oldID {
				no = newID
			} else if slots, ok := g.adj[o][oldID]; ok {
				delete(g.adj[o], oldID)
				g.adj[o][newID] = slots
			}
			newIns[no] = struct{}{}
		}
		g.rev[newID] = newIns
	}
}

func (g *Graph) forgetRev(origin, terminus int) {
	if s, ok := g.rev[terminus]; ok {
		delete(s, origin)
		if len(s) == 0 {
			delete(g.rev, terminus)
		}
	}
}

// AddEdge inserts a new parallel edge from origin to terminus and returns
// it with its newly assigned, dense LocalIdx.
//
// Complexity: O(1) amortized.
func (g *Graph) AddEdge(origin, terminus int) (Edge, error) {
	g.muVert.RLock()
	n := g.count
	g.muVert.RUnlock()

	if origin < 0 || origin >= n || terminus < 0 || terminus >= n {
		return Edge{}, ErrVertexNotFound
	}
	if origin == terminus && !g.allowLoops {
		return Edge{}, ErrLoopNotAllowed
	}

	g.muAdj.Lock()
	defer g.muAdj.Unlock()

	if g.adj[origin] == nil {
		g.adj[origin] = make(map[int][]struct{})
	}
	slots := g.adj[origin][terminus]
	idx := len(slots)
	g.adj[origin][terminus] = append(slots, struct{}{})

	if g.rev[terminus] == nil {
		g.rev[terminus] = make(map[int]struct{})
	}
	g.rev[terminus][origin] = struct{}{}

	return Edge{Origin: origin, Terminus: terminus, LocalIdx: idx}, nil
}

// RemoveEdge deletes the parallel edge identified by (origin, terminus,
// localIdx), compacting the remaining parallel edges between that ordered
// pair back to 0..k-1. It reports the LocalIdx values that moved as a
// result, keyed by their new index.
//
// Complexity: O(k) where k is the number of parallel edges on (origin,terminus).
func (g *Graph) RemoveEdge(origin, terminus, localIdx int) error {
	g.muAdj.Lock()
	defer g.muAdj.Unlock()

	slots, ok := g.adj[origin][terminus]
	if !ok || localIdx < 0 || localIdx >= len(slots) {
		return ErrEdgeNotFound
	}

	slots = append(slots[:localIdx], slots[localIdx+1:]...)
	if len(slots) == 0 {
		delete(g.adj[origin], terminus)
		if len(g.adj[origin]) == 0 {
			delete(g.adj, origin)
		}
		g.forgetRev(origin, terminus)
		return nil
	}
	g.adj[origin][terminus] = slots
	return nil
}

// EdgeCount returns the number of parallel edges currently live between
// origin and terminus (0 if there are none).
func (g *Graph) EdgeCount(origin, terminus int) int {
	g.muAdj.RLock()
	defer g.muAdj.RUnlock()
	return len(g.adj[origin][terminus])
}

// OutNeighbors returns the distinct termini reachable directly from
// origin, sorted ascending for deterministic iteration.
func (g *Graph) OutNeighbors(origin int) []int {
	g.muAdj.RLock()
	defer g.muAdj.RUnlock()
	out := make([]int, 0, len(g.adj[origin]))
	for t := range g.adj[origin] {
		out = append(out, t)
	}
	sortInts(out)
	return out
}

// InNeighbors returns the distinct origins with at least one edge into
// terminus, sorted ascending.
func (g *Graph) InNeighbors(terminus int) []int {
	g.muAdj.RLock()
	defer g.muAdj.RUnlock()
	out := make([]int, 0, len(g.rev[terminus]))
	for o := range g.rev[terminus] {
		out = append(out, o)
	}
	sortInts(out)
	return out
}

// OutEdges returns every live edge originating at v, sorted by
// (Terminus, LocalIdx).
func (g *Graph) OutEdges(v int) []Edge {
	g.muAdj.RLock()
	defer g.muAdj.RUnlock()
	var edges []Edge
	termini := make([]int, 0, len(g.adj[v]))
	for t := range g.adj[v] {
		termini = append(termini, t)
	}
	sortInts(termini)
	for _, t := range termini {
		for idx := range g.adj[v][t] {
			edges = append(edges, Edge{Origin: v, Terminus: t, LocalIdx: idx})
		}
	}
	return edges
}

// InEdges returns every live edge terminating at v, sorted by
// (Origin, LocalIdx).
func (g *Graph) InEdges(v int) []Edge {
	g.muAdj.RLock()
	defer g.muAdj.RUnlock()
	var edges []Edge
	origins := make([]int, 0, len(g.rev[v]))
	for o := range g.rev[v] {
		origins = append(origins, o)
	}
	sortInts(origins)
	for _, o := range origins {
		for idx := range g.adj[o][v] {
			edges = append(edges, Edge{Origin: o, Terminus: v, LocalIdx: idx})
		}
	}
	return edges
}

// AllEdges returns every live edge in the graph in deterministic order,
// for algorithms (algolib, generate.finalize) that need a full edge list.
func (g *Graph) AllEdges() []Edge {
	g.muAdj.RLock()
	defer g.muAdj.RUnlock()
	origins := make([]int, 0, len(g.adj))
	for o := range g.adj {
		origins = append(origins, o)
	}
	sortInts(origins)

	var edges []Edge
	for _, o := range origins {
		termini := make([]int, 0, len(g.adj[o]))
		for t := range g.adj[o] {
			termini = append(termini, t)
		}
		sortInts(termini)
		for _, t := range termini {
			for idx := range g.adj[o][t] {
				edges = append(edges, Edge{Origin: o, Terminus: t, LocalIdx: idx})
			}
		}
	}
	return edges
}

// sortInts is a tiny insertion-free sort kept local to avoid pulling in
// sort.Ints for call sites that already hold a lock (sort.Ints is safe to
// call directly; this wrapper exists only to keep import lists short and
// centralize the determinism contract documented on the methods above).
func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
