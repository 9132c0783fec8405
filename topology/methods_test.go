package topology

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddVertexDense(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex()
	b := g.AddVertex()
	c := g.AddVertex()
	require.Equal(t, 0, a)
	require.Equal(t, 1, b)
	require.Equal(t, 2, c)
	require.Equal(t, 3, g.VertexCount())
}

func TestAddEdgeLocalIdxDense(t *testing.T) {
	g := NewGraph()
	o := g.AddVertex()
	term := g.AddVertex()

	e0, err := g.AddEdge(o, term)
	require.NoError(t, err)
	require.Equal(t, 0, e0.LocalIdx)

	e1, err := g.AddEdge(o, term)
	require.NoError(t, err)
	require.Equal(t, 1, e1.LocalIdx)

	require.Equal(t, 2, g.EdgeCount(o, term))
}

func TestRemoveVertexSwapsLastIntoSlot(t *testing.T) {
	g := NewGraph()
	_ = g.AddVertex() // 0
	_ = g.AddVertex() // 1
	_ = g.AddVertex() // 2

	res, err := g.RemoveVertex(0)
	require.NoError(t, err)
	require.True(t, res.Moved)
	require.Equal(t, 2, res.OldID)
	require.Equal(t, 0, res.NewID)
	require.Equal(t, 2, g.VertexCount())
}

func TestRemoveVertexLastNoSwap(t *testing.T) {
	g := NewGraph()
	_ = g.AddVertex()
	_ = g.AddVertex()

	res, err := g.RemoveVertex(1)
	require.NoError(t, err)
	require.False(t, res.Moved)
	require.Equal(t, 1, g.VertexCount())
}

func TestRemoveVertexSwapPreservesSurvivingEdges(t *testing.T) {
	g := NewGraph()
	_ = g.AddVertex() // 0
	_ = g.AddVertex() // 1
	_ = g.AddVertex() // 2 (last, will be renamed to 0)

	_, err := g.AddEdge(2, 1) // outgoing edge on the swapped vertex
	require.NoError(t, err)
	_, err = g.AddEdge(1, 2) // incoming edge on the swapped vertex
	require.NoError(t, err)

	res, err := g.RemoveVertex(0)
	require.NoError(t, err)
	require.True(t, res.Moved)
	require.Equal(t, 2, res.OldID)
	require.Equal(t, 0, res.NewID)

	require.Equal(t, 1, g.EdgeCount(0, 1))
	require.Equal(t, 1, g.EdgeCount(1, 0))
	require.Equal(t, 0, g.EdgeCount(2, 1))
	require.Equal(t, 0, g.EdgeCount(1, 2))
}

func TestRemoveVertexSwapPreservesSelfLoop(t *testing.T) {
	g := NewGraph(WithLoops())
	_ = g.AddVertex() // 0
	_ = g.AddVertex() // 1 (last, will be renamed to 0)

	_, err := g.AddEdge(1, 1)
	require.NoError(t, err)

	res, err := g.RemoveVertex(0)
	require.NoError(t, err)
	require.True(t, res.Moved)

	require.Equal(t, 1, g.EdgeCount(0, 0))
}

func TestRemoveEdgeCompactsLocalIdx(t *testing.T) {
	g := NewGraph()
	o := g.AddVertex()
	term := g.AddVertex()

	_, _ = g.AddEdge(o, term) // idx 0
	_, _ = g.AddEdge(o, term) // idx 1
	_, _ = g.AddEdge(o, term) // idx 2

	require.NoError(t, g.RemoveEdge(o, term, 0))
	require.Equal(t, 2, g.EdgeCount(o, term))

	edges := g.OutEdges(o)
	require.Len(t, edges, 2)
	require.Equal(t, 0, edges[0].LocalIdx)
	require.Equal(t, 1, edges[1].LocalIdx)
}

func TestLoopRejectedByDefault(t *testing.T) {
	g := NewGraph()
	v := g.AddVertex()
	_, err := g.AddEdge(v, v)
	require.ErrorIs(t, err, ErrLoopNotAllowed)
}

func TestLoopAllowedWithOption(t *testing.T) {
	g := NewGraph(WithLoops())
	v := g.AddVertex()
	e, err := g.AddEdge(v, v)
	require.NoError(t, err)
	require.Equal(t, v, e.Origin)
	require.Equal(t, v, e.Terminus)
}

func TestNeighborsSortedAndDeterministic(t *testing.T) {
	g := NewGraph()
	o := g.AddVertex()
	b := g.AddVertex()
	c := g.AddVertex()
	_, _ = g.AddEdge(o, c)
	_, _ = g.AddEdge(o, b)

	require.Equal(t, []int{b, c}, g.OutNeighbors(o))
}

func TestInEdgesMirrorsOutEdges(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex()
	b := g.AddVertex()
	c := g.AddVertex()
	_, _ = g.AddEdge(a, c)
	_, _ = g.AddEdge(b, c)
	_, _ = g.AddEdge(a, c)

	edges := g.InEdges(c)
	require.Len(t, edges, 3)
	for _, e := range edges {
		require.Equal(t, c, e.Terminus)
	}
	require.Equal(t, []int{a, a, b}, []int{edges[0].Origin, edges[1].Origin, edges[2].Origin})
}
