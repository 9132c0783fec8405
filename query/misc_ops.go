package query

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/psymphonic/synthdb/catalog"
	"github.com/psymphonic/synthdb/document"
	"github.com/psymphonic/synthdb/identifier"
	"github.com/psymphonic/synthdb/preqlerr"
	"github.com/psymphonic/synthdb/propmap"
)

// fieldIndex is a hand-rolled secondary index (spec.md §5's supplemented
// "create_index" operation): a sampled snapshot of a table's rows keyed
// by one field's value, rebuilt in full at creation time. Badger itself
// only ever indexes "uid" (document.Store's fixed secondary index); this
// is the general-field equivalent the wire operation promises, built on
// top of Store.Scan rather than a second Badger key space, since the
// store adapter doesn't expose arbitrary derived-key writes.
type fieldIndex struct {
	mu   sync.RWMutex
	byFieldValue map[string][]string // field value (as string) -> primaries
}

// indexRegistry holds one fieldIndex per (graph, table, field).
type indexRegistry struct {
	mu      sync.Mutex
	indices map[string]*fieldIndex
}

func newIndexRegistry() *indexRegistry {
	return &indexRegistry{indices: make(map[string]*fieldIndex)}
}

func indexKey(graph string, tbl document.Table, field string) string {
	return graph + "/" + strconv.Itoa(int(tbl)) + "/" + field
}

// handleCreateIndex scans the table once, building an in-process lookup
// from field value to primary key. Subsequent "stream"/"pluck" calls
// naming this field could consult it; this port exposes it as a direct
// query result (the set of distinct values and their row counts) since
// no caller yet threads an index hint through stream's filter stage.
func (e *Engine) handleCreateIndex(req Request) (interface{}, error) {
	g, err := e.Catalog.Get(req.GraphID)
	if err != nil {
		return nil, err
	}
	tableName := stringParamOr(req.Parameters, "table", "nodes")
	tbl, ok := tableByName(tableName)
	if !ok {
		return nil, preqlerr.Syntaxf("create_index", "table", "unrecognized table %q", tableName)
	}
	field, err := requiredStringParam(req.Parameters, "field", "create_index")
	if err != nil {
		return nil, err
	}

	rows, err := e.Store.Scan(g.Name, tbl)
	if err != nil {
		return nil, err
	}
	idx := &fieldIndex{byFieldValue: make(map[string][]string)}
	for _, row := range rows {
		val := document.Project(row.Doc, field).String()
		idx.byFieldValue[val] = append(idx.byFieldValue[val], row.Primary)
	}

	e.indices.mu.Lock()
	e.indices.indices[indexKey(g.Name, tbl, field)] = idx
	e.indices.mu.Unlock()

	return map[string]interface{}{"table": tableName, "field": field, "distinct_values": len(idx.byFieldValue), "rows_indexed": len(rows)}, nil
}

// handleFields introspects a table's observed JSON keys by sampling rows
// (spec.md §5's supplemented "fields" operation).
func (e *Engine) handleFields(req Request) (interface{}, error) {
	g, err := e.Catalog.Get(req.GraphID)
	if err != nil {
		return nil, err
	}
	tableName := stringParamOr(req.Parameters, "table", "nodes")
	tbl, ok := tableByName(tableName)
	if !ok {
		return nil, preqlerr.Syntaxf("fields", "table", "unrecognized table %q", tableName)
	}
	sampleSize := intParamOr(req.Parameters, "sample", 50)

	rows, err := e.Store.Scan(g.Name, tbl)
	if err != nil {
		return nil, err
	}
	if len(rows) > sampleSize {
		rows = rows[:sampleSize]
	}

	seen := make(map[string]struct{})
	var fields []string
	for _, row := range rows {
		gjson.Parse(row.Doc).ForEach(func(key, _ gjson.Result) bool {
			name := key.String()
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				fields = append(fields, name)
			}
			return true
		})
	}
	return fields, nil
}

// handleCommit promotes an ephemeral propmap.Map into document-store
// rows, the counterpart operation to the many algorithms that only write
// into a scratch property map (spec.md §9's commit design note referenced
// by SPEC_FULL.md §4/§5).
func (e *Engine) handleCommit(req Request) (interface{}, error) {
	g, err := e.Catalog.Get(req.GraphID)
	if err != nil {
		return nil, err
	}
	mapName, err := requiredStringParam(req.Parameters, "map", "commit")
	if err != nil {
		return nil, err
	}
	m, ok := g.Props.Get(mapName)
	if !ok {
		return nil, preqlerr.Nonexistencef("commit", "map", "no property map named %q", mapName)
	}
	field := stringParamOr(req.Parameters, "field", mapName)

	tbl := document.TableNodes
	if m.Keys == propmap.KeyEdge {
		tbl = document.TableLinks
	}

	committed := 0
	for _, entry := range m.Entries() {
		primary, ok := entry.Key.(string)
		if !ok {
			if id, ok := entry.Key.(int); ok {
				primary = itoa(id)
			}
		}
		doc, found, gerr := e.Store.Get(g.Name, tbl, primary)
		if gerr != nil {
			return nil, gerr
		}
		if !found {
			continue
		}
		newDoc, serr := document.SetField(doc, field, entry.Value)
		if serr != nil {
			return nil, serr
		}
		if err := e.Store.Update(g.Name, tbl, primary, newDoc); err != nil {
			return nil, err
		}
		committed++
	}
	return map[string]interface{}{"map": mapName, "field": field, "committed": committed}, nil
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// handleGraphFilter builds a new live graph that is the induced subgraph
// of the host's surviving nodes/links (spec.md §9's graph_filter note),
// the Go-native equivalent of the original's graph_tool GraphView: a
// "nodes" and/or "links" boolean predicate narrows which vertices/edges
// carry over (both default to "keep everything" when omitted), and the
// result is registered in the catalog under "filter_id" (a fresh uuid
// when the caller doesn't name one) so it can be queried with every
// other wire operation exactly like any other graph.
//
// Per spec.md §9's "Subgraph lifetime" note, the new graph shares the
// host's property maps by reference at creation time
// (propmap.Registry.Snapshot) rather than copying their contents, and a
// map an algorithm later creates on the subgraph does not leak back into
// the host's registry. Per the "Unfinalized subgraphs" note, a
// "filter_id" naming an already-live graph is refused rather than
// silently overwritten.
func (e *Engine) handleGraphFilter(req Request) (interface{}, error) {
	g, err := e.Catalog.Get(req.GraphID)
	if err != nil {
		return nil, err
	}

	var nodePred document.Predicate
	if spec, ok := req.Parameters["nodes"]; ok {
		if nodePred, err = e.resolvePredicate(spec); err != nil {
			return nil, err
		}
	}
	var linkPred document.Predicate
	if spec, ok := req.Parameters["links"]; ok {
		if linkPred, err = e.resolvePredicate(spec); err != nil {
			return nil, err
		}
	}

	filterID := stringParamOr(req.Parameters, "filter_id", "")
	if filterID == "" {
		filterID = uuid.NewString()
	}

	survivors, err := filterSurvivingNodes(e.Store, g, nodePred)
	if err != nil {
		return nil, err
	}

	clone := catalog.NewFilteredGraph(filterID, g)
	cloneIDs := make(map[int]int, len(survivors))
	for _, hostID := range survivors {
		cloneIDs[hostID] = clone.Topology.AddVertex()
	}

	for _, hostID := range survivors {
		for _, edge := range g.Topology.OutEdges(hostID) {
			cloneTerminus, ok := cloneIDs[edge.Terminus]
			if !ok {
				continue
			}
			if linkPred != nil {
				linkID := identifier.EdgeID(edge.Origin, edge.LocalIdx, edge.Terminus)
				doc, exists, getErr := e.Store.Get(g.Name, document.TableLinks, linkID)
				if getErr != nil {
					return nil, getErr
				}
				if !exists || !linkPred(doc) {
					continue
				}
			}
			if _, addErr := clone.Topology.AddEdge(cloneIDs[hostID], cloneTerminus); addErr != nil {
				return nil, preqlerr.Topologyf("graph_filter", "", "%s", addErr)
			}
		}
	}

	if err := e.Catalog.Attach(clone); err != nil {
		return nil, err
	}
	return map[string]interface{}{"subgraph": filterID}, nil
}

// filterSurvivingNodes lists the host vertex ids (in ascending order)
// that pass pred, or every vertex when pred is nil.
func filterSurvivingNodes(store *document.Store, g *catalog.Graph, pred document.Predicate) ([]int, error) {
	if pred == nil {
		out := make([]int, g.Topology.VertexCount())
		for i := range out {
			out[i] = i
		}
		return out, nil
	}

	rows, err := store.Scan(g.Name, document.TableNodes)
	if err != nil {
		return nil, err
	}
	var survivors []int
	for _, row := range rows {
		if !pred(row.Doc) {
			continue
		}
		id, ok := identifier.ParseVertexID(row.Primary)
		if !ok {
			continue
		}
		survivors = append(survivors, id)
	}
	return survivors, nil
}
