// Package stream implements SynthDB's Stream Executor (spec.md §4.G): a
// lazy pipeline of get_all/filter/map/reduce/sort/limit/coerce_to stages
// over document.Store rows, plus the two wire output framings (tab mode,
// event-stream mode).
//
// Grounded on lvlath/bfs's queue-draining shape generalized to a
// sequential pipeline, and on original_source/server.py's stream_cursor
// composition (get_all().filter().map()...).
package stream

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/psymphonic/synthdb/document"
	"github.com/psymphonic/synthdb/preqlerr"
	"github.com/psymphonic/synthdb/propmap"
)

// Item is one element flowing through a Cursor: the row it came from (for
// get_all/filter stages) and, once a map stage runs, the JSON it was
// rewritten into.
type Item struct {
	Primary string
	Doc     string
}

// ReduceFn folds a stream down to a single JSON-encodable value. binop
// mirrors spec.md §4.A's reduce(binop): applied left-to-right over the
// stream in order.
type ReduceFn func(acc, next string) string

// Cursor is the lazy, in-memory realization of a stream: spec.md asks
// for "a lazy sequence of JSON-encodable items", but since document.Store
// rows are already fully materialized by Scan, this implementation
// composes stages over a slice rather than a channel — lazy in the sense
// that no stage runs until Collect/Count/Coerce is called.
type Cursor struct {
	items []Item
	err   error
}

// FromRows starts a cursor over every row of a table scan (get_all).
func FromRows(rows []document.Row) *Cursor {
	items := make([]Item, len(rows))
	for i, r := range rows {
		items[i] = Item{Primary: r.Primary, Doc: r.Doc}
	}
	return &Cursor{items: items}
}

// Err reports the first error raised by any stage, short-circuiting
// subsequent stages (they become no-ops once Err is non-nil).
func (c *Cursor) Err() error { return c.err }

func (c *Cursor) fail(err error) *Cursor {
	if c.err == nil {
		c.err = err
	}
	c.items = nil
	return c
}

// Filter keeps only items whose Doc satisfies pred.
func (c *Cursor) Filter(pred document.Predicate) *Cursor {
	if c.err != nil {
		return c
	}
	kept := c.items[:0:0]
	for _, it := range c.items {
		if pred(it.Doc) {
			kept = append(kept, it)
		}
	}
	c.items = kept
	return c
}

// Map rewrites every item's Doc via proj.
func (c *Cursor) Map(proj document.Projection) *Cursor {
	if c.err != nil {
		return c
	}
	for i := range c.items {
		c.items[i].Doc = proj(c.items[i].Doc)
	}
	return c
}

// OrderBy sorts items by the result of key, ascending unless desc is set.
// Sort is stable, matching spec.md §4.A's order_by(expr, desc?).
func (c *Cursor) OrderBy(key func(doc string) float64, desc bool) *Cursor {
	if c.err != nil {
		return c
	}
	sort.SliceStable(c.items, func(i, j int) bool {
		a, b := key(c.items[i].Doc), key(c.items[j].Doc)
		if desc {
			return a > b
		}
		return a < b
	})
	return c
}

// Limit truncates the stream to at most n items.
func (c *Cursor) Limit(n int) *Cursor {
	if c.err != nil {
		return c
	}
	if n >= 0 && n < len(c.items) {
		c.items = c.items[:n]
	}
	return c
}

// Distinct drops items whose key(doc) has already been seen, preserving
// first-occurrence order (spec.md §4.A's distinct).
func (c *Cursor) Distinct(key func(doc string) string) *Cursor {
	if c.err != nil {
		return c
	}
	seen := make(map[string]struct{}, len(c.items))
	kept := c.items[:0:0]
	for _, it := range c.items {
		k := key(it.Doc)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, it)
	}
	c.items = kept
	return c
}

// Collect materializes the remaining items' documents.
func (c *Cursor) Collect() ([]string, error) {
	if c.err != nil {
		return nil, c.err
	}
	docs := make([]string, len(c.items))
	for i, it := range c.items {
		docs[i] = it.Doc
	}
	return docs, nil
}

// Count consumes the stream and reports its length, spec.md §4.G's
// "count short-circuits the stream by consuming it and emitting a single
// integer".
func (c *Cursor) Count() (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	return len(c.items), nil
}

// Reduce folds the stream into one JSON value via fn, seeded with init.
func (c *Cursor) Reduce(fn ReduceFn, init string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	acc := init
	for _, it := range c.items {
		acc = fn(acc, it.Doc)
	}
	return acc, nil
}

// CoerceTo is the closed set of output shapes a stream's final stage may
// request (spec.md §4.F's "coerce_to" pipeline parameter).
type CoerceTo string

const (
	CoerceArray       CoerceTo = "array"
	CoercePropertyMap CoerceTo = "property_map"
)

// Coerce renders the stream into the requested shape. coerce_to=array
// just collects the documents; coerce_to=property_map builds a fresh
// propmap.Map keyed by keyFn over valFn(doc), per spec.md §4.F's "the
// handler builds a new map in C instead of streaming" rule — the only
// mode where the Stream Executor does not emit frames at all.
func (c *Cursor) Coerce(kind CoerceTo, keyKind propmap.KeyKind, valType propmap.ValueType, keyFn func(doc string) interface{}, valFn func(doc string) interface{}) (interface{}, error) {
	if c.err != nil {
		return nil, c.err
	}
	switch kind {
	case CoerceArray, "":
		return c.Collect()
	case CoercePropertyMap:
		m := propmap.NewMap(uuid.NewString(), valType, keyKind)
		for _, it := range c.items {
			m.Set(keyFn(it.Doc), valFn(it.Doc))
		}
		return m, nil
	default:
		return nil, preqlerr.Syntaxf("stream", "coerce_to", "unrecognized coercion %q", kind)
	}
}

// SortPropertyMapSelection implements spec.md §4.G's rule for sorting a
// property map backed by a dense array: compute the permutation over
// [0,N), intersect it with a prior get_all/filter selection (the set of
// vertex ids still present in the cursor), then return the intersected
// order for limit to apply to.
func SortPropertyMapSelection(m *propmap.Map, desc bool, selection map[int]struct{}) ([]int, error) {
	entries := m.Entries()
	perm := make([]int, 0, len(entries))
	for _, e := range entries {
		id, ok := e.Key.(int)
		if !ok {
			return nil, preqlerr.ValueTypef("stream", "sort", "property map is not vertex-keyed")
		}
		perm = append(perm, id)
	}
	sort.SliceStable(perm, func(i, j int) bool {
		vi, _ := m.Get(perm[i])
		vj, _ := m.Get(perm[j])
		a, aok := vi.(float64)
		b, bok := vj.(float64)
		if !aok || !bok {
			return false
		}
		if desc {
			return a > b
		}
		return a < b
	})
	if selection == nil {
		return perm, nil
	}
	out := make([]int, 0, len(selection))
	for _, id := range perm {
		if _, ok := selection[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// String satisfies fmt.Stringer for debug logging.
func (c *Cursor) String() string {
	return fmt.Sprintf("Cursor(%d items, err=%v)", len(c.items), c.err)
}
