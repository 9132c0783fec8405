// Package mutate implements SynthDB's mutation protocol: node/link
// insert and delete, the dense-id swap triggered by node deletion, and
// the local-idx compaction triggered by link deletion (spec.md §4.H).
//
// Grounded on original_source/server.py's add_node/add_link/remove_node/
// remove_link, adapted to Go's explicit-error-return idiom instead of the
// original's exception-based control flow.
package mutate

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/psymphonic/synthdb/catalog"
	"github.com/psymphonic/synthdb/document"
	"github.com/psymphonic/synthdb/identifier"
	"github.com/psymphonic/synthdb/preqlerr"
)

// InsertNode creates a new vertex in g.Topology and a matching row in the
// nodes table. doc is the caller-supplied JSON body (may be "{}"). If typ
// is not yet registered in g.NodeTypes, it is auto-created as a default
// record (spec.md §4.H's insert protocol), matching the behavior observed
// in spec.md §8's example 1.
func InsertNode(g *catalog.Graph, store *document.Store, typ, doc string) (primary string, finalDoc string, err error) {
	if g.FreeMode && g.Topology.VertexCount() >= catalog.FreeModeMaxNodes {
		return "", "", preqlerr.LimitsExceededf("insert", "id", "free-mode quota of %d nodes exceeded", catalog.FreeModeMaxNodes)
	}

	isNewType := !g.NodeTypes.Has(typ)
	g.NodeTypes.Ensure(typ)
	if isNewType {
		if err := ensureNodeTypeRecord(g, store, typ); err != nil {
			return "", "", err
		}
	}

	id := g.Topology.AddVertex()
	primary = fmt.Sprintf("%d", id)

	doc, err = sjson.Set(doc, "id", primary)
	if err != nil {
		return "", "", fmt.Errorf("mutate: set id: %w", err)
	}
	doc, err = sjson.Set(doc, "type", typ)
	if err != nil {
		return "", "", fmt.Errorf("mutate: set type: %w", err)
	}

	finalDoc, err = store.Insert(g.Name, document.TableNodes, primary, doc)
	if err != nil {
		return "", "", err
	}
	return primary, finalDoc, nil
}

// InsertLink creates a new parallel edge from origin to terminus in
// g.Topology and a matching row in the links table, with the composite
// edge id derived from the topology engine's assigned LocalIdx. typ is
// auto-created as a default LinkType record if not yet registered; if the
// type's function is "elastic" and doc carries a numeric "value" outside
// the type's current range, the range is widened and persisted before the
// link row is written. origin/terminus are not persisted in the link
// document — they live only in its composite id (spec.md §4.H).
func InsertLink(g *catalog.Graph, store *document.Store, typ string, origin, terminus int, doc string) (primary string, finalDoc string, err error) {
	if g.FreeMode && len(g.Topology.AllEdges()) >= catalog.FreeModeMaxLinks {
		return "", "", preqlerr.LimitsExceededf("insert", "id", "free-mode quota of %d links exceeded", catalog.FreeModeMaxLinks)
	}
	if !g.Topology.HasVertex(origin) {
		return "", "", preqlerr.Topologyf("insert", "origin", "no such vertex %d", origin)
	}
	if !g.Topology.HasVertex(terminus) {
		return "", "", preqlerr.Topologyf("insert", "terminus", "no such vertex %d", terminus)
	}

	isNewType := !g.LinkTypes.Has(typ)
	g.LinkTypes.EnsureLinkType(typ)
	if isNewType {
		if err := ensureLinkTypeRecord(g, store, typ); err != nil {
			return "", "", err
		}
	}

	edge, err := g.Topology.AddEdge(origin, terminus)
	if err != nil {
		return "", "", preqlerr.Topologyf("insert", "", "%s", err)
	}
	primary = identifier.EdgeID(edge.Origin, edge.LocalIdx, edge.Terminus)

	doc, err = sjson.Set(doc, "id", primary)
	if err != nil {
		return "", "", fmt.Errorf("mutate: set id: %w", err)
	}
	doc, err = sjson.Set(doc, "type", typ)
	if err != nil {
		return "", "", fmt.Errorf("mutate: set type: %w", err)
	}

	if valueResult := gjson.Get(doc, "value"); valueResult.Exists() {
		if widened, min, max := g.LinkTypes.Widen(typ, valueResult.Float()); widened {
			if err := widenLinkTypeRecord(g, store, typ, min, max); err != nil {
				return "", "", err
			}
		}
	}

	finalDoc, err = store.Insert(g.Name, document.TableLinks, primary, doc)
	if err != nil {
		return "", "", err
	}
	return primary, finalDoc, nil
}

// InsertOutcome classifies what InsertNodeWithConflict did to a vertex,
// the per-document unit spec.md §4.A's batch insert tallies into the
// {inserted,replaced,unchanged,errors} envelope.
type InsertOutcome int

const (
	OutcomeInserted InsertOutcome = iota
	OutcomeReplaced
	OutcomeUnchanged
)

// InsertNodeWithConflict is InsertNode's conflict-aware sibling (spec.md
// §4.H's "Node insert" rule): when conflict is "replace" or "update" and
// doc carries an "id" that resolves to a currently live vertex, or a
// "uid" that resolves to one via the store's uid index, that vertex is
// reused instead of allocating a new one. conflict "error" (and any doc
// without an id/uid that resolves) always allocates a fresh vertex,
// identically to InsertNode.
func InsertNodeWithConflict(g *catalog.Graph, store *document.Store, typ, doc, conflict string) (primary, finalDoc string, outcome InsertOutcome, err error) {
	if conflict == "replace" || conflict == "update" {
		existingPrimary, found, rerr := resolveExistingNode(g, store, doc)
		if rerr != nil {
			return "", "", OutcomeInserted, rerr
		}
		if found {
			return applyNodeConflict(g, store, typ, doc, conflict, existingPrimary)
		}
	}
	primary, finalDoc, err = InsertNode(g, store, typ, doc)
	return primary, finalDoc, OutcomeInserted, err
}

// resolveExistingNode locates the vertex doc's "id" or "uid" field names
// under spec.md §4.H's reuse rule: a dense-integer "id" that is still a
// live vertex takes priority; otherwise a non-empty "uid" resolved
// through the store's secondary index.
func resolveExistingNode(g *catalog.Graph, store *document.Store, doc string) (primary string, found bool, err error) {
	if idResult := gjson.Get(doc, "id"); idResult.Exists() {
		if id, ok := identifier.ParseVertexID(idResult.String()); ok && g.Topology.HasVertex(id) {
			return fmt.Sprintf("%d", id), true, nil
		}
	}
	if uidResult := gjson.Get(doc, "uid"); uidResult.Exists() && uidResult.String() != "" {
		existingPrimary, _, ok, gerr := store.GetByUID(g.Name, document.TableNodes, uidResult.String())
		if gerr != nil {
			return "", false, gerr
		}
		if ok {
			return existingPrimary, true, nil
		}
	}
	return "", false, nil
}

// applyNodeConflict reuses an existing vertex under conflict=replace
// (doc overwrites the stored row outright) or conflict=update (doc's
// top-level fields are merged into the existing row, the same
// literal-field-patch semantics query.handleUpdate applies). Reports
// OutcomeUnchanged rather than writing anything when the result would be
// byte-identical to what is already stored.
func applyNodeConflict(g *catalog.Graph, store *document.Store, typ, doc, conflict, primary string) (string, string, InsertOutcome, error) {
	existing, ok, err := store.Get(g.Name, document.TableNodes, primary)
	if err != nil {
		return "", "", OutcomeInserted, err
	}
	if !ok {
		return "", "", OutcomeInserted, preqlerr.Nonexistencef("insert", "id", "no such vertex %q", primary)
	}

	newDoc := existing
	if conflict == "replace" {
		newDoc = doc
	} else {
		var patchErr error
		gjson.Parse(doc).ForEach(func(key, value gjson.Result) bool {
			newDoc, patchErr = document.SetField(newDoc, key.String(), value.Value())
			return patchErr == nil
		})
		if patchErr != nil {
			return "", "", OutcomeInserted, patchErr
		}
	}

	newDoc, err = sjson.Set(newDoc, "id", primary)
	if err != nil {
		return "", "", OutcomeInserted, fmt.Errorf("mutate: set id: %w", err)
	}
	if !gjson.Get(newDoc, "type").Exists() {
		if newDoc, err = sjson.Set(newDoc, "type", typ); err != nil {
			return "", "", OutcomeInserted, fmt.Errorf("mutate: set type: %w", err)
		}
	}
	// A literal replace body that omits "uid" must not erase the vertex's
	// stable uid (the secondary index still points at this primary).
	if !gjson.Get(newDoc, "uid").Exists() {
		if uid := gjson.Get(existing, "uid").String(); uid != "" {
			if newDoc, err = sjson.Set(newDoc, "uid", uid); err != nil {
				return "", "", OutcomeInserted, fmt.Errorf("mutate: preserve uid: %w", err)
			}
		}
	}

	if newDoc == existing {
		return primary, existing, OutcomeUnchanged, nil
	}
	if err := store.Update(g.Name, document.TableNodes, primary, newDoc); err != nil {
		return "", "", OutcomeInserted, err
	}
	return primary, newDoc, OutcomeReplaced, nil
}

// ensureNodeTypeRecord persists a default NodeType row the first time typ
// is seen by an insert (spec.md §3's {id, shape, color, image} default
// form), skipping the two protected defaults which are assumed pre-seeded
// by catalog.CreateGraph.
func ensureNodeTypeRecord(g *catalog.Graph, store *document.Store, typ string) error {
	if typ == "Node" {
		return nil
	}
	rec := fmt.Sprintf(`{"id":%q,"shape":"dynamic","color":"dynamic","image":null}`, typ)
	_, err := store.Insert(g.Name, document.TableNodeTypes, typ, rec)
	return err
}

// ensureLinkTypeRecord persists a default LinkType row the first time typ
// is seen by a link insert (spec.md §3's {id, color, image, min, max,
// function, units} default form, with function absent until a later
// create_index configures it).
func ensureLinkTypeRecord(g *catalog.Graph, store *document.Store, typ string) error {
	if typ == "Link" {
		return nil
	}
	rec := fmt.Sprintf(`{"id":%q,"color":null,"image":null,"min":0,"max":0,"function":null,"units":null}`, typ)
	_, err := store.Insert(g.Name, document.TableLinkTypes, typ, rec)
	return err
}

// widenLinkTypeRecord persists an elastic LinkType's widened [min,max]
// range back to its document row.
func widenLinkTypeRecord(g *catalog.Graph, store *document.Store, typ string, min, max float64) error {
	doc, ok, err := store.Get(g.Name, document.TableLinkTypes, typ)
	if err != nil {
		return err
	}
	if !ok {
		doc = fmt.Sprintf(`{"id":%q}`, typ)
	}
	doc, err = sjson.Set(doc, "min", min)
	if err != nil {
		return err
	}
	doc, err = sjson.Set(doc, "max", max)
	if err != nil {
		return err
	}
	if ok {
		return store.Update(g.Name, document.TableLinkTypes, typ, doc)
	}
	_, err = store.Insert(g.Name, document.TableLinkTypes, typ, doc)
	return err
}

// NodeDeleteManifest reports the consequence of a node delete: if another
// vertex was renumbered to fill the deleted slot, OldID/NewID/MovedUID
// describe that swap so clients can update any cached references.
type NodeDeleteManifest struct {
	RemovedID int
	Moved     bool
	OldID     int
	NewID     int
	MovedUID  string
}

// DeleteNode removes vertex id: first collecting every link document row
// touching it (or the vertex that will be swapped into its place), then
// applying topology.Graph.RemoveVertex, then reconciling the document
// store to match — deleting rows for edges that no longer exist and
// rewriting the id field and row key of the swapped vertex's own row and
// of any surviving edges that touched it (a link's origin and terminus
// live only in its composite id).
func DeleteNode(g *catalog.Graph, store *document.Store, id int) (NodeDeleteManifest, error) {
	if !g.Topology.HasVertex(id) {
		return NodeDeleteManifest{}, preqlerr.Nonexistencef("delete", "id", "no such vertex %d", id)
	}

	removedIncident := incidentLinkPrimaries(g, id)
	last := g.Topology.VertexCount() - 1
	var survivingIncident []linkRef
	if last != id {
		survivingIncident = incidentLinkPrimaries(g, last)
	}

	res, err := g.Topology.RemoveVertex(id)
	if err != nil {
		return NodeDeleteManifest{}, err
	}

	for _, ref := range removedIncident {
		if err := store.Delete(g.Name, document.TableLinks, ref.primary); err != nil {
			return NodeDeleteManifest{}, err
		}
	}

	nodePrimary := fmt.Sprintf("%d", id)
	if err := store.Delete(g.Name, document.TableNodes, nodePrimary); err != nil {
		return NodeDeleteManifest{}, err
	}

	manifest := NodeDeleteManifest{RemovedID: id, Moved: res.Moved}
	if !res.Moved {
		return manifest, nil
	}

	oldPrimary := fmt.Sprintf("%d", res.OldID)
	newPrimary := fmt.Sprintf("%d", res.NewID)

	oldDoc, ok, err := store.Get(g.Name, document.TableNodes, oldPrimary)
	if err != nil {
		return NodeDeleteManifest{}, err
	}
	if ok {
		newDoc, err := sjson.Set(oldDoc, "id", newPrimary)
		if err != nil {
			return NodeDeleteManifest{}, fmt.Errorf("mutate: rewrite swapped node id: %w", err)
		}
		if err := store.Delete(g.Name, document.TableNodes, oldPrimary); err != nil {
			return NodeDeleteManifest{}, err
		}
		if _, err := store.Insert(g.Name, document.TableNodes, newPrimary, newDoc); err != nil {
			return NodeDeleteManifest{}, err
		}
		manifest.OldID = res.OldID
		manifest.NewID = res.NewID
		manifest.MovedUID = gjson.Get(newDoc, "uid").String()
	}

	for _, ref := range survivingIncident {
		if err := renameLinkEndpoint(g, store, ref, res.OldID, res.NewID); err != nil {
			return NodeDeleteManifest{}, err
		}
	}

	return manifest, nil
}

type linkRef struct {
	primary  string
	origin   int
	terminus int
	localIdx int
}

// incidentLinkPrimaries lists the primary of every link document row
// touching vertex v, derived from the topology's adjacency; callers run it
// before RemoveVertex mutates that adjacency.
func incidentLinkPrimaries(g *catalog.Graph, v int) []linkRef {
	var refs []linkRef
	for _, e := range g.Topology.OutEdges(v) {
		refs = append(refs, linkRef{
			primary:  identifier.EdgeID(e.Origin, e.LocalIdx, e.Terminus),
			origin:   e.Origin, terminus: e.Terminus, localIdx: e.LocalIdx,
		})
	}
	for _, origin := range g.Topology.InNeighbors(v) {
		if origin == v {
			continue // already covered by OutEdges(v) above for self-loops
		}
		n := g.Topology.EdgeCount(origin, v)
		for idx := 0; idx < n; idx++ {
			refs = append(refs, linkRef{
				primary:  identifier.EdgeID(origin, idx, v),
				origin:   origin, terminus: v, localIdx: idx,
			})
		}
	}
	return refs
}

// renameLinkEndpoint rewrites a surviving edge's document row so its
// composite id reflects the renumbered vertex. origin/terminus are not
// document fields (spec.md §4.H); they live only in the composite id.
func renameLinkEndpoint(g *catalog.Graph, store *document.Store, ref linkRef, oldID, newID int) error {
	doc, ok, err := store.Get(g.Name, document.TableLinks, ref.primary)
	if err != nil || !ok {
		return err
	}

	newOrigin, newTerminus := ref.origin, ref.terminus
	if ref.origin == oldID {
		newOrigin = newID
	}
	if ref.terminus == oldID {
		newTerminus = newID
	}
	newPrimary := identifier.EdgeID(newOrigin, ref.localIdx, newTerminus)

	doc, err = sjson.Set(doc, "id", newPrimary)
	if err != nil {
		return err
	}

	if newPrimary != ref.primary {
		if err := store.Delete(g.Name, document.TableLinks, ref.primary); err != nil {
			return err
		}
		_, err = store.Insert(g.Name, document.TableLinks, newPrimary, doc)
		return err
	}
	return store.Update(g.Name, document.TableLinks, ref.primary, doc)
}

// LinkDeleteManifest reports which surviving parallel edges had their
// LocalIdx compacted as a consequence of a link delete.
type LinkDeleteManifest struct {
	RemovedPrimary string
	RenamedFrom    []string
	RenamedTo      []string
}

// DeleteLink removes the edge identified by the composite primary id,
// compacting remaining parallel edges on (origin,terminus) back to
// 0..k-1 in both topology and the document store.
func DeleteLink(g *catalog.Graph, store *document.Store, primary string) (LinkDeleteManifest, error) {
	origin, localIdx, terminus, ok := identifier.ParseEdgeID(primary)
	if !ok {
		return LinkDeleteManifest{}, preqlerr.Syntaxf("delete", "id", "malformed link id %q", primary)
	}

	total := g.Topology.EdgeCount(origin, terminus)
	if localIdx >= total {
		return LinkDeleteManifest{}, preqlerr.Nonexistencef("delete", "id", "no such link %q", primary)
	}

	// Snapshot the primaries of edges that will shift down by one index.
	var shifted []string
	for idx := localIdx + 1; idx < total; idx++ {
		shifted = append(shifted, identifier.EdgeID(origin, idx, terminus))
	}

	if err := g.Topology.RemoveEdge(origin, terminus, localIdx); err != nil {
		return LinkDeleteManifest{}, err
	}
	if err := store.Delete(g.Name, document.TableLinks, primary); err != nil {
		return LinkDeleteManifest{}, err
	}

	manifest := LinkDeleteManifest{RemovedPrimary: primary}
	for i, oldPrimary := range shifted {
		newIdx := localIdx + i
		newPrimary := identifier.EdgeID(origin, newIdx, terminus)

		doc, ok, err := store.Get(g.Name, document.TableLinks, oldPrimary)
		if err != nil {
			return LinkDeleteManifest{}, err
		}
		if !ok {
			continue
		}
		doc, err = sjson.Set(doc, "id", newPrimary)
		if err != nil {
			return LinkDeleteManifest{}, err
		}
		if err := store.Delete(g.Name, document.TableLinks, oldPrimary); err != nil {
			return LinkDeleteManifest{}, err
		}
		if _, err := store.Insert(g.Name, document.TableLinks, newPrimary, doc); err != nil {
			return LinkDeleteManifest{}, err
		}
		manifest.RenamedFrom = append(manifest.RenamedFrom, oldPrimary)
		manifest.RenamedTo = append(manifest.RenamedTo, newPrimary)
	}

	return manifest, nil
}
