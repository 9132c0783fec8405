// Package query implements SynthDB's Query Planner (spec.md §4.F):
// request-envelope parsing, per-operation parameter coercion into the
// closed type set, and dispatch to catalog/mutate/stream/walk/algolib/
// generate for the sixteen wire operations.
//
// Grounded on original_source/server.py's handle_request/convert_fields
// dispatch shape, adapted to Go's explicit-error-return idiom and to a
// single Dispatch entry point instead of a big if/elif chain.
package query

import (
	"github.com/psymphonic/synthdb/algolib"
	"github.com/psymphonic/synthdb/catalog"
	"github.com/psymphonic/synthdb/document"
	"github.com/psymphonic/synthdb/generate"
)

// Request is the wire request envelope (spec.md §4.F).
type Request struct {
	GraphID    string
	Operation  string
	Parameters map[string]interface{}
	Body       string
}

// Engine bundles every collaborator the planner dispatches into. One
// Engine is shared by every request the transport layer handles.
type Engine struct {
	Catalog *catalog.Catalog
	Store   *document.Store
	Algo    *algolib.Registry
	Gen     *generate.Registry
	UDFs    *document.UDFRegistry
	indices *indexRegistry
}

// NewEngine wires a planner around a catalog/store pair, constructing
// fresh algorithm/generator registries and an empty UDF registry.
func NewEngine(cat *catalog.Catalog, store *document.Store) *Engine {
	return &Engine{
		Catalog: cat,
		Store:   store,
		Algo:    algolib.NewRegistry(),
		Gen:     generate.NewRegistry(),
		UDFs:    document.NewUDFRegistry(),
		indices: newIndexRegistry(),
	}
}
