package mutate

import (
	"fmt"
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

func TestInsertNodeAssignsDenseID(t *testing.T) {
	g, store := newTestGraph(t)

	p0, _, err := InsertNode(g, store, "Node", "{}")
	require.NoError(t, err)
	require.Equal(t, "0", p0)

	p1, _, err := InsertNode(g, store, "Node", "{}")
	require.NoError(t, err)
	require.Equal(t, "1", p1)
}

func TestInsertLinkComposesCompositeID(t *testing.T) {
	g, store := newTestGraph(t)
	o, _, _ := InsertNode(g, store, "Node", "{}")
	tm, _, _ := InsertNode(g, store, "Node", "{}")
	_ = o
	_ = tm

	primary, _, err := InsertLink(g, store, "Link", 0, 1, "{}")
	require.NoError(t, err)
	require.Equal(t, "0_0_1", primary)

	primary2, _, err := InsertLink(g, store, "Link", 0, 1, "{}")
	require.NoError(t, err)
	require.Equal(t, "0_1_1", primary2)
}

func TestDeleteNodeSwapsLastIntoSlot(t *testing.T) {
	g, store := newTestGraph(t)
	_, _, _ = InsertNode(g, store, "Node", "{}") // 0
	_, _, _ = InsertNode(g, store, "Node", "{}") // 1
	_, _, _ = InsertNode(g, store, "Node", "{}") // 2

	manifest, err := DeleteNode(g, store, 0)
	require.NoError(t, err)
	require.True(t, manifest.Moved)
	require.Equal(t, 2, manifest.OldID)
	require.Equal(t, 0, manifest.NewID)
	require.NotEmpty(t, manifest.MovedUID)

	doc, ok, err := store.Get(g.Name, document.TableNodes, "0")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "0", document.Project(doc, "id").String())

	_, ok, err = store.Get(g.Name, document.TableNodes, "2")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteNodeRenamesSurvivingLinks(t *testing.T) {
	g, store := newTestGraph(t)
	_, _, _ = InsertNode(g, store, "Node", "{}") // 0
	_, _, _ = InsertNode(g, store, "Node", "{}") // 1
	_, _, _ = InsertNode(g, store, "Node", "{}") // 2

	_, _, err := InsertLink(g, store, "Link", 2, 1, "{}")
	require.NoError(t, err)

	_, err = DeleteNode(g, store, 0)
	require.NoError(t, err)

	// Vertex 2 (now renamed to 0) had an outgoing link to 1, which must now
	// carry the composite id "0_0_1" (origin/terminus live only in the id).
	doc, ok, err := store.Get(g.Name, document.TableLinks, "0_0_1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "0_0_1", document.Project(doc, "id").String())

	_, ok, err = store.Get(g.Name, document.TableLinks, "2_0_1")
	require.NoError(t, err)
	require.False(t, ok)

	// The in-memory topology must carry the same renamed edge the document
	// store does, not just drop it on the swap.
	require.Equal(t, 1, g.Topology.EdgeCount(0, 1))
	require.Equal(t, 0, g.Topology.EdgeCount(2, 1))
}

func TestInsertNodeAutoCreatesUnknownType(t *testing.T) {
	g, store := newTestGraph(t)
	require.False(t, g.NodeTypes.Has("Station"))

	_, _, err := InsertNode(g, store, "Station", "{}")
	require.NoError(t, err)
	require.True(t, g.NodeTypes.Has("Station"))

	doc, ok, err := store.Get(g.Name, document.TableNodeTypes, "Station")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Station", document.Project(doc, "id").String())
}

func TestInsertLinkAutoCreatesUnknownType(t *testing.T) {
	g, store := newTestGraph(t)
	_, _, _ = InsertNode(g, store, "Node", "{}")
	_, _, _ = InsertNode(g, store, "Node", "{}")
	require.False(t, g.LinkTypes.Has("Tunnel"))

	primary, finalDoc, err := InsertLink(g, store, "Tunnel", 0, 1, "{}")
	require.NoError(t, err)
	require.True(t, g.LinkTypes.Has("Tunnel"))
	require.Empty(t, document.Project(finalDoc, "origin").String())
	require.Empty(t, document.Project(finalDoc, "terminus").String())

	doc, ok, err := store.Get(g.Name, document.TableLinks, primary)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, document.Project(doc, "origin").Exists())
}

func TestInsertLinkWidensElasticRange(t *testing.T) {
	g, store := newTestGraph(t)
	_, _, _ = InsertNode(g, store, "Node", "{}")
	_, _, _ = InsertNode(g, store, "Node", "{}")
	g.LinkTypes.EnsureLinkType("Weighted").Function = "elastic"

	_, _, err := InsertLink(g, store, "Weighted", 0, 1, `{"value":5}`)
	require.NoError(t, err)
	_, _, err = InsertLink(g, store, "Weighted", 0, 1, `{"value":-2}`)
	require.NoError(t, err)

	doc, ok, err := store.Get(g.Name, document.TableLinkTypes, "Weighted")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, float64(-2), document.Project(doc, "min").Num)
	require.Equal(t, float64(5), document.Project(doc, "max").Num)
}

func TestDeleteLinkCompactsLocalIdx(t *testing.T) {
	g, store := newTestGraph(t)
	_, _, _ = InsertNode(g, store, "Node", "{}")
	_, _, _ = InsertNode(g, store, "Node", "{}")

	_, _, _ = InsertLink(g, store, "Link", 0, 1, "{}") // 0_0_1
	_, _, _ = InsertLink(g, store, "Link", 0, 1, "{}") // 0_1_1
	_, _, _ = InsertLink(g, store, "Link", 0, 1, "{}") // 0_2_1

	manifest, err := DeleteLink(g, store, "0_0_1")
	require.NoError(t, err)
	require.Equal(t, []string{"0_1_1", "0_2_1"}, manifest.RenamedFrom)
	require.Equal(t, []string{"0_0_1", "0_1_1"}, manifest.RenamedTo)

	_, ok, err := store.Get(g.Name, document.TableLinks, "0_2_1")
	require.NoError(t, err)
	require.False(t, ok)

	doc, ok, err := store.Get(g.Name, document.TableLinks, "0_1_1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "0_1_1", document.Project(doc, "id").String())
}

func TestInsertNodeWithConflictErrorIgnoresID(t *testing.T) {
	g, store := newTestGraph(t)
	p0, _, _, err := InsertNodeWithConflict(g, store, "Node", "{}", "error")
	require.NoError(t, err)
	require.Equal(t, "0", p0)

	// conflict=error never reuses an existing vertex, even if the body
	// names one: it allocates a fresh vertex exactly like InsertNode.
	p1, _, outcome, err := InsertNodeWithConflict(g, store, "Node", `{"id":"0"}`, "error")
	require.NoError(t, err)
	require.Equal(t, "1", p1)
	require.Equal(t, OutcomeInserted, outcome)
}

func TestInsertNodeWithConflictReplaceReusesByID(t *testing.T) {
	g, store := newTestGraph(t)
	p0, _, _, err := InsertNodeWithConflict(g, store, "Node", `{"label":"first"}`, "error")
	require.NoError(t, err)
	require.Equal(t, "0", p0)

	primary, finalDoc, outcome, err := InsertNodeWithConflict(g, store, "Node", `{"id":"0","label":"second"}`, "replace")
	require.NoError(t, err)
	require.Equal(t, "0", primary)
	require.Equal(t, OutcomeReplaced, outcome)
	require.Equal(t, "second", document.Project(finalDoc, "label").String())
	require.Equal(t, 1, g.Topology.VertexCount(), "replace must not allocate a new vertex")
}

func TestInsertNodeWithConflictUpdateMergesByUID(t *testing.T) {
	g, store := newTestGraph(t)
	_, finalDoc, _, err := InsertNodeWithConflict(g, store, "Node", `{"label":"first","color":"red"}`, "error")
	require.NoError(t, err)
	uid := document.Project(finalDoc, "uid").String()
	require.NotEmpty(t, uid)

	primary, merged, outcome, err := InsertNodeWithConflict(g, store, "Node", fmt.Sprintf(`{"uid":%q,"label":"second"}`, uid), "update")
	require.NoError(t, err)
	require.Equal(t, "0", primary)
	require.Equal(t, OutcomeReplaced, outcome)
	require.Equal(t, "second", document.Project(merged, "label").String())
	require.Equal(t, "red", document.Project(merged, "color").String(), "update merges fields instead of replacing the document")
}

func TestInsertNodeWithConflictUpdateUnchangedWhenIdentical(t *testing.T) {
	g, store := newTestGraph(t)
	_, _, _, err := InsertNodeWithConflict(g, store, "Node", `{"label":"first"}`, "error")
	require.NoError(t, err)

	_, _, outcome, err := InsertNodeWithConflict(g, store, "Node", `{"id":"0","label":"first"}`, "update")
	require.NoError(t, err)
	require.Equal(t, OutcomeUnchanged, outcome)
}
