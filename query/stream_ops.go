package query

import (
	"github.com/psymphonic/synthdb/document"
	"github.com/psymphonic/synthdb/preqlerr"
	"github.com/psymphonic/synthdb/propmap"
	"github.com/psymphonic/synthdb/stream"
)

// handleStream composes the lazy Stream Executor pipeline described in
// spec.md §4.F/§4.G: get_all (implicit, via the table scan), optional
// filter/map/sort/limit, then a terminal count or coerce_to.
func (e *Engine) handleStream(req Request) (interface{}, error) {
	g, err := e.Catalog.Get(req.GraphID)
	if err != nil {
		return nil, err
	}
	tableName := stringParamOr(req.Parameters, "table", "nodes")
	tbl, ok := tableByName(tableName)
	if !ok {
		return nil, preqlerr.Syntaxf("stream", "table", "unrecognized table %q", tableName)
	}

	rows, err := e.Store.Scan(g.Name, tbl)
	if err != nil {
		return nil, err
	}
	cur := stream.FromRows(rows)

	if pred, ok := req.Parameters["filter"]; ok {
		p, ferr := e.resolvePredicate(pred)
		if ferr != nil {
			return nil, ferr
		}
		cur.Filter(p)
	}

	if proj, ok := req.Parameters["map"]; ok {
		p, ferr := e.resolveProjection(proj)
		if ferr != nil {
			return nil, ferr
		}
		cur.Map(p)
	}

	if sortSpec, ok := req.Parameters["sort"].(map[string]interface{}); ok {
		field, _ := sortSpec["field"].(string)
		desc, _ := sortSpec["desc"].(bool)
		if field == "" {
			return nil, preqlerr.Syntaxf("stream", "sort", "missing required parameter %q", "field")
		}
		cur.OrderBy(func(doc string) float64 { return document.Project(doc, field).Float() }, desc)
	}

	if _, ok := req.Parameters["limit"]; ok {
		cur.Limit(intParamOr(req.Parameters, "limit", -1))
	}

	if _, wantsCount := req.Parameters["count"]; wantsCount {
		return cur.Count()
	}

	coerceTo := stringParamOr(req.Parameters, "coerce_to", "array")
	if stream.CoerceTo(coerceTo) == stream.CoercePropertyMap {
		keyField := stringParamOr(req.Parameters, "key_field", "id")
		valField := stringParamOr(req.Parameters, "value_field", "value")
		return cur.Coerce(stream.CoercePropertyMap, propmap.KeyVertex, propmap.TypeFloat,
			func(doc string) interface{} { return int(document.Project(doc, keyField).Int()) },
			func(doc string) interface{} { return document.Project(doc, valField).Float() },
		)
	}
	return cur.Collect()
}

func (e *Engine) resolvePredicate(spec interface{}) (document.Predicate, error) {
	switch v := spec.(type) {
	case string:
		p, ok := e.UDFs.Predicate(v)
		if !ok {
			return nil, preqlerr.Syntaxf("stream", "filter", "no such registered predicate %q", v)
		}
		return p, nil
	case map[string]interface{}:
		field, _ := v["field"].(string)
		op, _ := v["op"].(string)
		return document.FieldPredicate{Field: field, Op: document.CompareOp(op), Value: v["value"]}.Compile(), nil
	default:
		return nil, preqlerr.Syntaxf("stream", "filter", "unrecognized predicate shape")
	}
}

func (e *Engine) resolveProjection(spec interface{}) (document.Projection, error) {
	name, ok := spec.(string)
	if !ok {
		return nil, preqlerr.Syntaxf("stream", "map", "map must name a registered projection")
	}
	p, ok := e.UDFs.Projection(name)
	if !ok {
		return nil, preqlerr.Syntaxf("stream", "map", "no such registered projection %q", name)
	}
	return p, nil
}
