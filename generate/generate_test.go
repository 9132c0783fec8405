package generate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psymphonic/synthdb/catalog"
	"github.com/psymphonic/synthdb/document"
)

func newTestGraph(t *testing.T) (*catalog.Graph, *document.Store) {
	t.Helper()
	store, err := document.Open(document.Options{DataDir: t.TempDir(), InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cat := catalog.New(store, nil)
	g, err := cat.CreateGraph("g1")
	require.NoError(t, err)
	return g, store
}

func TestRegistryRunsEveryRegisteredGenerator(t *testing.T) {
	r := NewRegistry()
	cases := map[string]map[string]interface{}{
		"path":           {"n": 4},
		"cycle":          {"n": 4},
		"star":           {"n": 4},
		"wheel":          {"n": 5},
		"complete":       {"n": 3},
		"bipartite":      {"n1": 2, "n2": 3},
		"grid":           {"rows": 2, "cols": 2},
		"random_sparse":  {"n": 6, "p": 0.3, "seed": 7},
		"random_regular": {"n": 6, "d": 2, "seed": 7},
		"platonic":       {"solid": "cube"},
		"hexagram":       {"variant": "default"},
		"letters":        {"text": "AB"},
		"word":           {"word": "cab"},
		"pulse":          {"n": 8, "seed": 3},
		"chirp":          {"n": 8, "seed": 3},
		"ohlc":           {"days": 5, "seed": 3},
	}
	for _, name := range r.Names() {
		params, ok := cases[name]
		require.Truef(t, ok, "missing test case for generator %q", name)

		g, store := newTestGraph(t)
		res, err := r.Generate(g, store, name, params)
		require.NoErrorf(t, err, "generator %q", name)
		require.Greaterf(t, res.NodesInserted, 0, "generator %q", name)
	}
}

func TestGenPathLaysOutDensePathTopology(t *testing.T) {
	g, store := newTestGraph(t)
	res, err := genPath(g, store, map[string]interface{}{"n": 4})
	require.NoError(t, err)
	require.Equal(t, 4, res.NodesInserted)
	require.Equal(t, 3, res.LinksInserted)
	require.Equal(t, 4, g.Topology.VertexCount())
}

func TestGenPulseRegistersElasticSignalLinkType(t *testing.T) {
	g, store := newTestGraph(t)
	_, err := genPulse(g, store, map[string]interface{}{"n": 16, "seed": 5})
	require.NoError(t, err)

	doc, ok, err := store.Get(g.Name, document.TableLinkTypes, seriesLinkType)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "elastic", document.Project(doc, "function").String())
}
