package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psymphonic/synthdb/document"
)

func newTestStore(t *testing.T) *document.Store {
	t.Helper()
	store, err := document.Open(document.Options{DataDir: t.TempDir(), InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBootstrapRebuildsEmptyGraph(t *testing.T) {
	store := newTestStore(t)

	c := New(store, nil)
	_, err := c.CreateGraph("g1")
	require.NoError(t, err)

	reloaded, err := Bootstrap(store, nil, false)
	require.NoError(t, err)

	g, err := reloaded.Get("g1")
	require.NoError(t, err)
	require.Equal(t, 0, g.Topology.VertexCount())
	require.True(t, g.NodeTypes.Has("Node"))
	require.True(t, g.LinkTypes.Has("Link"))
}

func TestBootstrapRebuildsNodesAndLinksFromRows(t *testing.T) {
	store := newTestStore(t)

	c := New(store, nil)
	g, err := c.CreateGraph("g1")
	require.NoError(t, err)

	a := g.Topology.AddVertex()
	b := g.Topology.AddVertex()
	_, err = store.Insert("g1", document.TableNodes, "0", `{"id":"0","type":"Node"}`)
	require.NoError(t, err)
	_, err = store.Insert("g1", document.TableNodes, "1", `{"id":"1","type":"Node"}`)
	require.NoError(t, err)

	edge, err := g.Topology.AddEdge(a, b)
	require.NoError(t, err)
	primary := "0_" + "0" + "_1"
	_, err = store.Insert("g1", document.TableLinks, primary, `{"id":"0_0_1","type":"Link"}`)
	require.NoError(t, err)
	require.Equal(t, 0, edge.LocalIdx)

	reloaded, err := Bootstrap(store, nil, false)
	require.NoError(t, err)

	g2, err := reloaded.Get("g1")
	require.NoError(t, err)
	require.Equal(t, 2, g2.Topology.VertexCount())
	require.Len(t, g2.Topology.AllEdges(), 1)
	require.Equal(t, 1, g2.Topology.EdgeCount(0, 1))
}

func TestBootstrapDropsOrphanedLinkRows(t *testing.T) {
	store := newTestStore(t)

	c := New(store, nil)
	_, err := c.CreateGraph("g1")
	require.NoError(t, err)

	_, err = store.Insert("g1", document.TableNodes, "0", `{"id":"0"}`)
	require.NoError(t, err)
	// A link referencing vertex 5, which no node row justifies existing.
	_, err = store.Insert("g1", document.TableLinks, "0_0_5", `{"id":"0_0_5"}`)
	require.NoError(t, err)

	reloaded, err := Bootstrap(store, nil, false)
	require.NoError(t, err)

	g, err := reloaded.Get("g1")
	require.NoError(t, err)
	require.Equal(t, 1, g.Topology.VertexCount())
	require.Empty(t, g.Topology.AllEdges())
}

func TestBootstrapAppliesFreeModeToReloadedGraphs(t *testing.T) {
	store := newTestStore(t)

	c := New(store, nil)
	_, err := c.CreateGraph("g1")
	require.NoError(t, err)

	reloaded, err := Bootstrap(store, nil, true)
	require.NoError(t, err)

	g, err := reloaded.Get("g1")
	require.NoError(t, err)
	require.True(t, g.FreeMode)
}
