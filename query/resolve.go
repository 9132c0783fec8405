package query

import (
	"strconv"

	"github.com/psymphonic/synthdb/catalog"
	"github.com/psymphonic/synthdb/document"
	"github.com/psymphonic/synthdb/identifier"
	"github.com/psymphonic/synthdb/preqlerr"
)

// tableByName maps the wire table names spec.md §6 lists to their Table
// constant, the string-to-enum half of the Document Store Adapter's
// "create table"/table-addressing surface.
func tableByName(name string) (document.Table, bool) {
	switch name {
	case "nodes":
		return document.TableNodes, true
	case "links":
		return document.TableLinks, true
	case "node_types":
		return document.TableNodeTypes, true
	case "link_types":
		return document.TableLinkTypes, true
	default:
		return 0, false
	}
}

// ResolveNode implements spec.md §4.E for a node reference: numeric ->
// dense vertex id; non-numeric -> uid lookup in nodes. Returns the
// resolved vertex id and its primary-key string.
func ResolveNode(g *catalog.Graph, store *document.Store, ref string) (id int, primary string, err error) {
	if vid, ok := identifier.ParseVertexID(ref); ok {
		if !g.Topology.HasVertex(vid) {
			return 0, "", preqlerr.Nonexistencef("resolve", "id", "no such vertex %d", vid)
		}
		return vid, ref, nil
	}
	if identifier.IsPrimaryID(ref) {
		return 0, "", preqlerr.Syntaxf("resolve", "id", "malformed node reference %q", ref)
	}

	primary, _, ok, getErr := store.GetByUID(g.Name, document.TableNodes, ref)
	if getErr != nil {
		return 0, "", getErr
	}
	if !ok {
		return 0, "", preqlerr.Nonexistencef("resolve", "uid", "no node with uid %q", ref)
	}
	id, convErr := strconv.Atoi(primary)
	if convErr != nil {
		return 0, "", preqlerr.Syntaxf("resolve", "id", "corrupt node primary key %q", primary)
	}
	return id, primary, nil
}

// ResolveLink implements spec.md §4.E for a link reference: composite
// "{o}_{local_idx}_{t}" -> the parsed triple; non-composite -> uid
// lookup in links. Returns the resolved composite primary key.
func ResolveLink(g *catalog.Graph, store *document.Store, ref string) (primary string, err error) {
	if identifier.IsPrimaryID(ref) {
		if _, _, _, ok := identifier.ParseEdgeID(ref); !ok {
			return "", preqlerr.Syntaxf("resolve", "id", "malformed link reference %q", ref)
		}
		if _, ok, getErr := store.Get(g.Name, document.TableLinks, ref); getErr != nil {
			return "", getErr
		} else if !ok {
			return "", preqlerr.Nonexistencef("resolve", "id", "no such link %q", ref)
		}
		return ref, nil
	}

	primary, _, ok, getErr := store.GetByUID(g.Name, document.TableLinks, ref)
	if getErr != nil {
		return "", getErr
	}
	if !ok {
		return "", preqlerr.Nonexistencef("resolve", "uid", "no link with uid %q", ref)
	}
	return primary, nil
}
