package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psymphonic/synthdb/catalog"
	"github.com/psymphonic/synthdb/document"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	store, err := document.Open(document.Options{DataDir: t.TempDir(), InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	cat := catalog.New(store, nil)
	return NewEngine(cat, store)
}

func TestPingReturnsLiteralGreeting(t *testing.T) {
	e := newTestEngine(t)
	result, err := e.Dispatch(Request{Operation: "ping"})
	require.NoError(t, err)
	require.Equal(t, "Hi there!", result)
}

func TestCreateGraphThenListGraphs(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Dispatch(Request{Operation: "create_graph", GraphID: "g1"})
	require.NoError(t, err)
	names, err := e.Dispatch(Request{Operation: "list_graphs"})
	require.NoError(t, err)
	require.Equal(t, []string{"g1"}, names)
}

func TestCreateGraphTwiceFailsDuplicate(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Dispatch(Request{Operation: "create_graph", GraphID: "g1"})
	require.NoError(t, err)
	_, err = e.Dispatch(Request{Operation: "create_graph", GraphID: "g1"})
	require.Error(t, err)
}

func TestInsertNodeThenGraphStats(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Dispatch(Request{Operation: "create_graph", GraphID: "g1"})
	require.NoError(t, err)

	_, err = e.Dispatch(Request{Operation: "insert", GraphID: "g1",
		Parameters: map[string]interface{}{"type": "A"}, Body: "{}"})
	require.NoError(t, err)
	_, err = e.Dispatch(Request{Operation: "insert", GraphID: "g1",
		Parameters: map[string]interface{}{"type": "B"}, Body: "{}"})
	require.NoError(t, err)

	stats, err := e.Dispatch(Request{Operation: "graph_stats", GraphID: "g1"})
	require.NoError(t, err)
	m := stats.(map[string]interface{})
	require.Equal(t, 2, m["num_nodes"])
	require.Equal(t, 0, m["num_links"])
}

func TestInsertBatchReportsInsertedCount(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Dispatch(Request{Operation: "create_graph", GraphID: "g1"})
	require.NoError(t, err)

	result, err := e.Dispatch(Request{Operation: "insert", GraphID: "g1",
		Parameters: map[string]interface{}{"conflict": "error"},
		Body:       `[{"type":"A"},{"type":"B"}]`})
	require.NoError(t, err)
	m := result.(map[string]interface{})
	require.Equal(t, 2, m["inserted"])
	require.Equal(t, 0, m["errors"])

	stats, err := e.Dispatch(Request{Operation: "graph_stats", GraphID: "g1"})
	require.NoError(t, err)
	require.Equal(t, 2, stats.(map[string]interface{})["num_nodes"])
}

func TestInsertConflictReplaceReusesExistingVertex(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Dispatch(Request{Operation: "create_graph", GraphID: "g1"})
	require.NoError(t, err)

	_, err = e.Dispatch(Request{Operation: "insert", GraphID: "g1", Body: `{"label":"first"}`})
	require.NoError(t, err)

	result, err := e.Dispatch(Request{Operation: "insert", GraphID: "g1",
		Parameters: map[string]interface{}{"conflict": "replace"},
		Body:       `{"id":"0","label":"second"}`})
	require.NoError(t, err)
	m := result.(map[string]interface{})
	require.Equal(t, "0", m["id"])
	require.Contains(t, m["doc"].(string), `"label":"second"`)

	g, err := e.Catalog.Get("g1")
	require.NoError(t, err)
	require.Equal(t, 1, g.Topology.VertexCount())
}

func TestInsertLinkThenPluckByCompositeID(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Dispatch(Request{Operation: "create_graph", GraphID: "g1"})
	require.NoError(t, err)
	_, err = e.Dispatch(Request{Operation: "insert", GraphID: "g1", Body: "{}"})
	require.NoError(t, err)
	_, err = e.Dispatch(Request{Operation: "insert", GraphID: "g1", Body: "{}"})
	require.NoError(t, err)

	res, err := e.Dispatch(Request{Operation: "insert", GraphID: "g1",
		Parameters: map[string]interface{}{"origin": 0, "terminus": 1}, Body: `{"value":5}`})
	require.NoError(t, err)
	id := res.(map[string]interface{})["id"].(string)
	require.Equal(t, "0_0_1", id)

	doc, err := e.Dispatch(Request{Operation: "pluck", GraphID: "g1",
		Parameters: map[string]interface{}{"kind": "link", "id": "0_0_1"}})
	require.NoError(t, err)
	require.Contains(t, doc.(string), `"value":5`)
}

func TestDeleteNodeAppliesSwapProtocol(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Dispatch(Request{Operation: "create_graph", GraphID: "g1"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = e.Dispatch(Request{Operation: "insert", GraphID: "g1", Body: "{}"})
		require.NoError(t, err)
	}
	_, err = e.Dispatch(Request{Operation: "insert", GraphID: "g1",
		Parameters: map[string]interface{}{"origin": 0, "terminus": 2}, Body: "{}"})
	require.NoError(t, err)

	_, err = e.Dispatch(Request{Operation: "delete", GraphID: "g1",
		Parameters: map[string]interface{}{"kind": "node", "id": "1"}})
	require.NoError(t, err)

	_, err = e.Dispatch(Request{Operation: "pluck", GraphID: "g1",
		Parameters: map[string]interface{}{"kind": "link", "id": "0_0_1"}})
	require.NoError(t, err)
}

func TestStreamCountsAllNodes(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Dispatch(Request{Operation: "create_graph", GraphID: "g1"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = e.Dispatch(Request{Operation: "insert", GraphID: "g1", Body: "{}"})
		require.NoError(t, err)
	}
	result, err := e.Dispatch(Request{Operation: "stream", GraphID: "g1",
		Parameters: map[string]interface{}{"table": "nodes", "count": true}})
	require.NoError(t, err)
	require.Equal(t, 3, result)
}

func TestWalkDefaultDistOneFromSource(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Dispatch(Request{Operation: "create_graph", GraphID: "g1"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = e.Dispatch(Request{Operation: "insert", GraphID: "g1", Body: "{}"})
		require.NoError(t, err)
	}
	_, err = e.Dispatch(Request{Operation: "insert", GraphID: "g1",
		Parameters: map[string]interface{}{"origin": 0, "terminus": 1}, Body: "{}"})
	require.NoError(t, err)
	_, err = e.Dispatch(Request{Operation: "insert", GraphID: "g1",
		Parameters: map[string]interface{}{"origin": 1, "terminus": 2}, Body: "{}"})
	require.NoError(t, err)

	result, err := e.Dispatch(Request{Operation: "walk", GraphID: "g1",
		Parameters: map[string]interface{}{"source": "0"}})
	require.NoError(t, err)
	order := result.(map[string]interface{})["order"].([]int)
	require.Equal(t, []int{0, 1}, order)
}

func TestGenerateCreatesPathTopology(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Dispatch(Request{Operation: "create_graph", GraphID: "g1"})
	require.NoError(t, err)
	result, err := e.Dispatch(Request{Operation: "generate", GraphID: "g1",
		Parameters: map[string]interface{}{"gen_type": "path", "n": 4}})
	require.NoError(t, err)
	g, err := e.Catalog.Get("g1")
	require.NoError(t, err)
	require.Equal(t, 4, g.Topology.VertexCount())
	_ = result
}

func TestGraphFilterCreatesInducedSubgraph(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Dispatch(Request{Operation: "create_graph", GraphID: "g1"})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err = e.Dispatch(Request{Operation: "insert", GraphID: "g1", Body: "{}"})
		require.NoError(t, err)
	}
	_, err = e.Dispatch(Request{Operation: "insert", GraphID: "g1",
		Parameters: map[string]interface{}{"origin": 0, "terminus": 1}, Body: "{}"})
	require.NoError(t, err)
	_, err = e.Dispatch(Request{Operation: "insert", GraphID: "g1",
		Parameters: map[string]interface{}{"origin": 2, "terminus": 3}, Body: "{}"})
	require.NoError(t, err)

	result, err := e.Dispatch(Request{Operation: "graph_filter", GraphID: "g1",
		Parameters: map[string]interface{}{
			"filter_id": "g1_small",
			"nodes":     map[string]interface{}{"field": "id", "op": "lt", "value": 2},
		}})
	require.NoError(t, err)
	require.Equal(t, "g1_small", result.(map[string]interface{})["subgraph"])

	sub, err := e.Catalog.Get("g1_small")
	require.NoError(t, err)
	require.Equal(t, 2, sub.Topology.VertexCount())
	require.Len(t, sub.Topology.AllEdges(), 1)
}

func TestGraphFilterRefusesToOverwriteLiveGraph(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Dispatch(Request{Operation: "create_graph", GraphID: "g1"})
	require.NoError(t, err)
	_, err = e.Dispatch(Request{Operation: "create_graph", GraphID: "g2"})
	require.NoError(t, err)

	_, err = e.Dispatch(Request{Operation: "graph_filter", GraphID: "g1",
		Parameters: map[string]interface{}{"filter_id": "g2"}})
	require.Error(t, err)
}

func TestUnrecognizedOperationIsSyntaxError(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Dispatch(Request{Operation: "not_a_real_op"})
	require.Error(t, err)
}
