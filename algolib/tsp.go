package algolib

import (
	"github.com/psymphonic/synthdb/preqlerr"
	"github.com/psymphonic/synthdb/topology"
)

// tspTour computes an approximate Hamiltonian tour over g's vertices via a
// nearest-neighbor construction followed by a 2-opt local-search pass. The
// teacher's own tsp package targets a distance-matrix abstraction this
// module does not carry forward (see DESIGN.md); this walks topology.Graph
// directly, in the same struct-and-loop style as the teacher's bfs walker.
// Parameter "start" selects the starting vertex (default 0).
func tspTour(g *topology.Graph, params map[string]interface{}) (Result, error) {
	start := intParamOr(params, "start", 0)
	n := g.VertexCount()
	if !g.HasVertex(start) {
		return Result{}, preqlerr.Topologyf("topology", "start", "no such vertex %d", start)
	}

	dist := buildDistanceMatrix(g)
	tour := nearestNeighborTour(dist, n, start)
	tour, cost := twoOpt(dist, tour)

	vec := make([]float64, len(tour))
	for i, v := range tour {
		vec[i] = float64(v)
	}
	return Result{
		Scalars: map[string]float64{"cost": cost},
		Vectors: map[string][]float64{"tour": vec},
	}, nil
}

const unreachable = 1e18

// buildDistanceMatrix materializes an n×n symmetric cost table from g's
// edges, treating every existing edge (in either direction) as cost 1 and
// every absent pair as unreachable. Parallel edges and loops collapse to
// the same cost; the tour construction only needs "is there a hop".
func buildDistanceMatrix(g *topology.Graph) [][]float64 {
	n := g.VertexCount()
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			if i == j {
				dist[i][j] = 0
			} else {
				dist[i][j] = unreachable
			}
		}
	}
	for _, e := range g.AllEdges() {
		dist[e.Origin][e.Terminus] = 1
		dist[e.Terminus][e.Origin] = 1
	}
	return dist
}

// nearestNeighborTour greedily extends a tour from start, always hopping to
// the closest unvisited vertex; any vertex left unreached by real edges is
// appended in id order at the end so the tour always covers all n vertices.
func nearestNeighborTour(dist [][]float64, n, start int) []int {
	visited := make([]bool, n)
	tour := make([]int, 0, n)

	cur := start
	visited[cur] = true
	tour = append(tour, cur)

	for len(tour) < n {
		best, bestCost := -1, unreachable+1
		for v := 0; v < n; v++ {
			if visited[v] {
				continue
			}
			if dist[cur][v] < bestCost {
				best, bestCost = v, dist[cur][v]
			}
		}
		if best == -1 {
			for v := 0; v < n; v++ {
				if !visited[v] {
					best = v
					break
				}
			}
		}
		visited[best] = true
		tour = append(tour, best)
		cur = best
	}
	return tour
}

// twoOpt repeatedly reverses tour segments that shorten total cost, until a
// full pass finds no improving move. Returns the refined tour and its cost.
func twoOpt(dist [][]float64, tour []int) ([]int, float64) {
	n := len(tour)
	improved := true
	for improved {
		improved = false
		for i := 0; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				if tourDelta(dist, tour, i, j) < 0 {
					reverseSegment(tour, i, j)
					improved = true
				}
			}
		}
	}
	return tour, tourCost(dist, tour)
}

func tourDelta(dist [][]float64, tour []int, i, j int) float64 {
	n := len(tour)
	a, b := tour[i], tour[(i+1)%n]
	c, d := tour[j], tour[(j+1)%n]
	if a == c || b == d {
		return 0
	}
	before := dist[a][b] + dist[c][d]
	after := dist[a][c] + dist[b][d]
	return after - before
}

func reverseSegment(tour []int, i, j int) {
	for l, r := i+1, j; l < r; l, r = l+1, r-1 {
		tour[l], tour[r] = tour[r], tour[l]
	}
}

func tourCost(dist [][]float64, tour []int) float64 {
	n := len(tour)
	total := 0.0
	for i := 0; i < n; i++ {
		total += dist[tour[i]][tour[(i+1)%n]]
	}
	return total
}
