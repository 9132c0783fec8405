package query

import (
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/psymphonic/synthdb/catalog"
	"github.com/psymphonic/synthdb/document"
	"github.com/psymphonic/synthdb/identifier"
	"github.com/psymphonic/synthdb/mutate"
	"github.com/psymphonic/synthdb/preqlerr"
)

// Dispatch routes one request to its handler, implementing spec.md
// §4.F's operation table. It returns a JSON-encodable result (a map,
// slice, string, or *stream.Cursor left for the caller to drain) or an
// error from preqlerr's taxonomy.
func (e *Engine) Dispatch(req Request) (interface{}, error) {
	switch req.Operation {
	case "ping":
		return "Hi there!", nil
	case "list_graphs":
		return e.Catalog.Names(), nil
	case "create_graph":
		return e.handleCreateGraph(req)
	case "drop_graph":
		return e.handleDropGraph(req)
	case "graph_stats":
		return e.handleGraphStats(req)
	case "insert":
		return e.handleInsert(req)
	case "pluck":
		return e.handlePluck(req)
	case "update":
		return e.handleUpdate(req)
	case "delete":
		return e.handleDelete(req)
	case "stream":
		return e.handleStream(req)
	case "topology":
		return e.handleTopology(req)
	case "generate":
		return e.handleGenerate(req)
	case "walk":
		return e.handleWalk(req)
	case "fields":
		return e.handleFields(req)
	case "create_index":
		return e.handleCreateIndex(req)
	case "commit":
		return e.handleCommit(req)
	case "graph_filter":
		return e.handleGraphFilter(req)
	default:
		return nil, preqlerr.Syntaxf("dispatch", "operation", "unrecognized operation %q", req.Operation)
	}
}

func (e *Engine) handleCreateGraph(req Request) (interface{}, error) {
	g, err := e.Catalog.CreateGraph(req.GraphID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": g.Name}, nil
}

func (e *Engine) handleDropGraph(req Request) (interface{}, error) {
	if err := e.Catalog.DropGraph(req.GraphID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": req.GraphID, "dropped": true}, nil
}

func (e *Engine) handleGraphStats(req Request) (interface{}, error) {
	g, err := e.Catalog.Get(req.GraphID)
	if err != nil {
		return nil, err
	}
	numLinks, err := e.Store.Count(g.Name, document.TableLinks)
	if err != nil {
		return nil, err
	}
	nodeTypeRows, err := e.Store.Scan(g.Name, document.TableNodeTypes)
	if err != nil {
		return nil, err
	}
	linkTypeRows, err := e.Store.Scan(g.Name, document.TableLinkTypes)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"id":          g.Name,
		"num_nodes":   g.Topology.VertexCount(),
		"num_links":   numLinks,
		"node_types":  rowIDs(nodeTypeRows),
		"link_types":  rowIDs(linkTypeRows),
	}, nil
}

func rowIDs(rows []document.Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.Primary
	}
	return ids
}

// handleInsert implements spec.md §4.A's insert(batch, conflict,
// durability) operation. conflict (default "error") governs whether a
// node document carrying an id/uid that already resolves to a live
// vertex is rejected, or reused via mutate.InsertNodeWithConflict
// (spec.md §4.H's "Node insert" rule). When Body is a JSON array, every
// element is inserted as its own node document and the call reports the
// batch envelope spec.md §8 scenario 1 shows
// ({inserted,replaced,unchanged,errors}) instead of a single {id,doc}.
// Batching only applies to node inserts; a link insert (an "origin"
// parameter present) always addresses exactly one edge, matching
// spec.md's per-document link-insert shape.
func (e *Engine) handleInsert(req Request) (interface{}, error) {
	g, err := e.Catalog.Get(req.GraphID)
	if err != nil {
		return nil, err
	}
	typ := stringParamOr(req.Parameters, "type", "Node")
	conflict := stringParamOr(req.Parameters, "conflict", "error")
	if conflict != "error" && conflict != "replace" && conflict != "update" {
		return nil, preqlerr.Syntaxf("insert", "conflict", "unrecognized conflict mode %q", conflict)
	}

	if originRef, hasOrigin := req.Parameters["origin"]; hasOrigin {
		origin, err := parseVertexRef(e.Store, g.Name, originRef)
		if err != nil {
			return nil, err
		}
		terminusRef, ok := req.Parameters["terminus"]
		if !ok {
			return nil, preqlerr.Syntaxf("insert", "terminus", "missing required parameter %q", "terminus")
		}
		terminus, err := parseVertexRef(e.Store, g.Name, terminusRef)
		if err != nil {
			return nil, err
		}
		primary, finalDoc, err := mutate.InsertLink(g, e.Store, typ, origin, terminus, req.Body)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"id": primary, "doc": finalDoc}, nil
	}

	if body := gjson.Parse(req.Body); body.IsArray() {
		return handleInsertBatch(e, g, typ, conflict, body)
	}

	primary, finalDoc, _, err := mutate.InsertNodeWithConflict(g, e.Store, typ, req.Body, conflict)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": primary, "doc": finalDoc}, nil
}

// handleInsertBatch inserts every element of body (a JSON array of node
// documents) under conflict, tallying each document's
// mutate.InsertOutcome into the {inserted,replaced,unchanged,errors}
// envelope. A per-document error is counted rather than aborting the
// batch, matching the original's per-row RethinkDB insert-conflict
// report. An element's own "type" field, if present, overrides
// defaultType for that document only.
func handleInsertBatch(e *Engine, g *catalog.Graph, defaultType, conflict string, body gjson.Result) (interface{}, error) {
	inserted, replaced, unchanged, errs := 0, 0, 0, 0
	for _, item := range body.Array() {
		typ := defaultType
		if t := item.Get("type"); t.Exists() {
			typ = t.String()
		}
		_, _, outcome, err := mutate.InsertNodeWithConflict(g, e.Store, typ, item.Raw, conflict)
		if err != nil {
			errs++
			continue
		}
		switch outcome {
		case mutate.OutcomeReplaced:
			replaced++
		case mutate.OutcomeUnchanged:
			unchanged++
		default:
			inserted++
		}
	}
	return map[string]interface{}{
		"inserted":  inserted,
		"replaced":  replaced,
		"unchanged": unchanged,
		"errors":    errs,
	}, nil
}

func (e *Engine) handlePluck(req Request) (interface{}, error) {
	g, err := e.Catalog.Get(req.GraphID)
	if err != nil {
		return nil, err
	}
	kind := stringParamOr(req.Parameters, "kind", "node")
	ref, err := requiredStringParam(req.Parameters, "id", "pluck")
	if err != nil {
		return nil, err
	}

	var doc string
	switch kind {
	case "node":
		_, primary, rerr := ResolveNode(g, e.Store, ref)
		if rerr != nil {
			return nil, rerr
		}
		found, ok, gerr := e.Store.Get(g.Name, document.TableNodes, primary)
		if gerr != nil {
			return nil, gerr
		}
		if !ok {
			return nil, preqlerr.Nonexistencef("pluck", "id", "no node %q", ref)
		}
		doc = found
	case "link":
		primary, rerr := ResolveLink(g, e.Store, ref)
		if rerr != nil {
			return nil, rerr
		}
		found, ok, gerr := e.Store.Get(g.Name, document.TableLinks, primary)
		if gerr != nil {
			return nil, gerr
		}
		if !ok {
			return nil, preqlerr.Nonexistencef("pluck", "id", "no link %q", ref)
		}
		doc = found
	case "type":
		tbl, ok := tableByName(stringParamOr(req.Parameters, "table", "node_types"))
		if !ok {
			return nil, preqlerr.Syntaxf("pluck", "table", "unrecognized table name")
		}
		found, ok, gerr := e.Store.Get(g.Name, tbl, ref)
		if gerr != nil {
			return nil, gerr
		}
		if !ok {
			return nil, preqlerr.Nonexistencef("pluck", "id", "no type %q", ref)
		}
		doc = found
	default:
		return nil, preqlerr.Syntaxf("pluck", "kind", "unrecognized kind %q", kind)
	}

	if field, ok := req.Parameters["field"].(string); ok && field != "" {
		return document.Project(doc, field).Value(), nil
	}
	return doc, nil
}

func (e *Engine) handleUpdate(req Request) (interface{}, error) {
	g, err := e.Catalog.Get(req.GraphID)
	if err != nil {
		return nil, err
	}
	kind := stringParamOr(req.Parameters, "kind", "node")
	ref, err := requiredStringParam(req.Parameters, "id", "update")
	if err != nil {
		return nil, err
	}

	var tbl document.Table
	var primary string
	switch kind {
	case "node":
		tbl = document.TableNodes
		_, primary, err = ResolveNode(g, e.Store, ref)
	case "link":
		tbl = document.TableLinks
		primary, err = ResolveLink(g, e.Store, ref)
	default:
		return nil, preqlerr.Syntaxf("update", "kind", "unrecognized kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	existing, ok, err := e.Store.Get(g.Name, tbl, primary)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, preqlerr.Nonexistencef("update", "id", "no such %s %q", kind, ref)
	}

	// Literal-replacement escape (spec.md §4.A): a request body wins
	// outright; otherwise individual "set" field patches are applied.
	newDoc := existing
	if req.Body != "" {
		newDoc = req.Body
	} else if patch, ok := req.Parameters["set"].(map[string]interface{}); ok {
		for field, value := range patch {
			newDoc, err = document.SetField(newDoc, field, value)
			if err != nil {
				return nil, err
			}
		}
	}
	if err := e.Store.Update(g.Name, tbl, primary, newDoc); err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": primary, "doc": newDoc}, nil
}

func (e *Engine) handleDelete(req Request) (interface{}, error) {
	g, err := e.Catalog.Get(req.GraphID)
	if err != nil {
		return nil, err
	}
	kind := stringParamOr(req.Parameters, "kind", "node")
	ref, err := requiredStringParam(req.Parameters, "id", "delete")
	if err != nil {
		return nil, err
	}

	switch kind {
	case "node":
		id, _, rerr := ResolveNode(g, e.Store, ref)
		if rerr != nil {
			return nil, rerr
		}
		return mutate.DeleteNode(g, e.Store, id)
	case "link":
		primary, rerr := ResolveLink(g, e.Store, ref)
		if rerr != nil {
			return nil, rerr
		}
		return mutate.DeleteLink(g, e.Store, primary)
	default:
		return nil, preqlerr.Syntaxf("delete", "kind", "unrecognized kind %q", kind)
	}
}

func requiredStringParam(params map[string]interface{}, key, op string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", preqlerr.Syntaxf(op, key, "missing required parameter %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", preqlerr.Syntaxf(op, key, "expected string")
	}
	return s, nil
}

func stringParamOr(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

func intParamOr(params map[string]interface{}, key string, def int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

func parseVertexRef(store *document.Store, graph string, ref interface{}) (int, error) {
	switch v := ref.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	case string:
		if id, ok := identifier.ParseVertexID(v); ok {
			return id, nil
		}
		primary, _, ok, err := store.GetByUID(graph, document.TableNodes, v)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, preqlerr.Nonexistencef("insert", "origin", "no node with uid %q", v)
		}
		return strconv.Atoi(primary)
	default:
		return 0, preqlerr.Syntaxf("insert", "origin", "expected node reference")
	}
}
