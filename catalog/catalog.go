// Package catalog implements SynthDB's graph catalog: the process-global,
// read-mostly registry of live graph databases, each pairing one
// topology.Graph with its document.Store namespace and propmap.Registry.
//
// Grounded on straga-Mimir_lite's server bootstrap shape
// (cmd/nornicdb/main.go's serveCmd/runServe) and on
// original_source/server.py's create_graph/load_graph. Logging uses
// go.uber.org/zap, per SPEC_FULL.md's ambient stack.
package catalog

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/psymphonic/synthdb/document"
	"github.com/psymphonic/synthdb/preqlerr"
	"github.com/psymphonic/synthdb/propmap"
	"github.com/psymphonic/synthdb/topology"
)

// Graph bundles everything one SynthDB graph database needs: its live
// topology, the shared document store (namespaced by Name), and the
// property map registry algorithms/generators scribble into.
type Graph struct {
	Name      string
	Topology  *topology.Graph
	Props     *propmap.Registry
	NodeTypes *TypeTable
	LinkTypes *TypeTable
	FreeMode  bool
}

// Free-mode quotas (spec.md §1): enforced at insert time only, and only
// when a graph's FreeMode is set (the server's --free CLI flag).
const (
	FreeModeMaxNodes = 1000
	FreeModeMaxLinks = 10000
)

// Catalog is the process-wide registry of live graph databases.
type Catalog struct {
	mu     sync.RWMutex
	store  *document.Store
	log    *zap.SugaredLogger
	graphs map[string]*Graph

	// FreeMode stamps every graph this Catalog creates or reloads with
	// the server's --free quota enforcement (spec.md §1). Set directly
	// after New/Bootstrap, before any graph is created.
	FreeMode bool
}

// New constructs a Catalog backed by store, logging through log (a nop
// logger is substituted if log is nil, matching zap.NewNop()'s role as
// the teacher corpus's standard "logging disabled" value).
func New(store *document.Store, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{store: store, log: log.Sugar(), graphs: make(map[string]*Graph)}
}

// CreateGraph registers a brand-new, empty graph database named name.
func (c *Catalog) CreateGraph(name string) (*Graph, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.graphs[name]; exists {
		return nil, preqlerr.DuplicateIDf("create_graph", "name", "graph %q already exists", name)
	}

	if c.store != nil {
		if err := c.store.RegisterGraph(name); err != nil {
			return nil, fmt.Errorf("catalog: register graph %q: %w", name, err)
		}
	}

	g := newEmptyGraph(name)
	g.FreeMode = c.FreeMode
	c.graphs[name] = g
	c.log.Infow("graph created", "graph", name)
	return g, nil
}

// DropGraph removes a graph database from the catalog. It does not purge
// its rows from the document store; callers that need reclamation should
// do so explicitly (spec.md leaves table-level GC as an operator task).
func (c *Catalog) DropGraph(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.graphs[name]; !exists {
		return preqlerr.Nonexistencef("drop_graph", "name", "no such graph %q", name)
	}
	if c.store != nil {
		if err := c.store.UnregisterGraph(name); err != nil {
			return fmt.Errorf("catalog: unregister graph %q: %w", name, err)
		}
	}
	delete(c.graphs, name)
	c.log.Infow("graph dropped", "graph", name)
	return nil
}

// Attach registers an already-built Graph (e.g. graph_filter's induced
// subgraph) under its own Name. It refuses to overwrite a name that
// already names a live graph (spec.md §9's "Unfinalized subgraphs" note)
// rather than silently replacing it.
func (c *Catalog) Attach(g *Graph) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.graphs[g.Name]; exists {
		return preqlerr.InvalidOperationf("graph_filter", "filter_id", "graph %q is already live", g.Name)
	}
	if c.store != nil {
		if err := c.store.RegisterGraph(g.Name); err != nil {
			return fmt.Errorf("catalog: register graph %q: %w", g.Name, err)
		}
	}
	c.graphs[g.Name] = g
	c.log.Infow("subgraph attached", "graph", g.Name)
	return nil
}

// NewFilteredGraph builds the Graph shape for a graph_filter result
// (spec.md §9): an empty topology for the caller to populate with the
// induced subgraph's vertices/edges, a property-map registry snapshotted
// from host at this moment (shared references to maps that already
// exist, isolated from anything host registers afterward), and host's
// own type catalogs, since a filtered subgraph's node/link types are a
// subset of the graph it was cut from, not a fresh domain.
func NewFilteredGraph(name string, host *Graph) *Graph {
	return &Graph{
		Name:      name,
		Topology:  topology.NewGraph(),
		Props:     host.Props.Snapshot(),
		NodeTypes: host.NodeTypes,
		LinkTypes: host.LinkTypes,
		FreeMode:  host.FreeMode,
	}
}

// newEmptyGraph builds a fresh, empty Graph record (the shape CreateGraph
// hands out for a brand-new graph database).
func newEmptyGraph(name string) *Graph {
	g := &Graph{
		Name:      name,
		Topology:  topology.NewGraph(),
		Props:     propmap.NewRegistry(),
		NodeTypes: newTypeTable(),
		LinkTypes: newTypeTable(),
	}
	g.LinkTypes.links = make(map[string]*LinkTypeInfo)
	return g
}

// Get resolves a graph database by name.
func (c *Catalog) Get(name string) (*Graph, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	g, exists := c.graphs[name]
	if !exists {
		return nil, preqlerr.Nonexistencef("graph", "name", "no such graph %q", name)
	}
	return g, nil
}

// Names lists every registered graph database name.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.graphs))
	for n := range c.graphs {
		names = append(names, n)
	}
	return names
}

// TypeTable tracks a node/link type catalog, including the two protected
// default names ("Node"/"Link") spec.md requires every graph to carry and
// forbids dropping.
type TypeTable struct {
	mu    sync.RWMutex
	names map[string]struct{}
	links map[string]*LinkTypeInfo // populated only for a graph's LinkTypes table
}

// LinkTypeInfo is a LinkType record's range-tracking fields (spec.md §3):
// {min, max, function}. When Function is "elastic", a link insert whose
// value falls outside [Min,Max] widens the range in place.
type LinkTypeInfo struct {
	Min      float64
	Max      float64
	Function string
}

func newTypeTable() *TypeTable {
	t := &TypeTable{names: map[string]struct{}{"Node": {}, "Link": {}}}
	return t
}

// Add registers a new type name, returning an error if it already exists.
func (t *TypeTable) Add(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.names[name]; exists {
		return preqlerr.DuplicateIDf("create_index", "type", "type %q already exists", name)
	}
	t.names[name] = struct{}{}
	return nil
}

// Remove drops a type name. The two protected defaults ("Node", "Link")
// can never be removed.
func (t *TypeTable) Remove(name string) error {
	if name == "Node" || name == "Link" {
		return preqlerr.InvalidOperationf("delete", "type", "cannot remove protected default type %q", name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.names[name]; !exists {
		return preqlerr.Nonexistencef("delete", "type", "no such type %q", name)
	}
	delete(t.names, name)
	return nil
}

// Has reports whether name is a registered type.
func (t *TypeTable) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.names[name]
	return ok
}

// Ensure registers name if it is not already present (spec.md's node/link
// insert auto-creating a default type record on first use), and is a
// no-op otherwise.
func (t *TypeTable) Ensure(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.names[name]; !ok {
		t.names[name] = struct{}{}
	}
}

// EnsureLinkType registers name if absent (spec.md's "if type is new,
// auto-create a default LinkType record") and returns its info, creating
// it with the non-widening default (Function "") the first time it is
// seen. Only meaningful on a graph's LinkTypes table.
func (t *TypeTable) EnsureLinkType(name string) *LinkTypeInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.names[name]; !ok {
		t.names[name] = struct{}{}
	}
	info, ok := t.links[name]
	if !ok {
		info = &LinkTypeInfo{}
		t.links[name] = info
	}
	return info
}

// Widen reports whether value falls outside [info.Min, info.Max] for an
// "elastic" LinkType and, if so, widens the range to include it.
func (t *TypeTable) Widen(name string, value float64) (widened bool, min, max float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	info, ok := t.links[name]
	if !ok || info.Function != "elastic" {
		return false, 0, 0
	}
	if value < info.Min {
		info.Min = value
		widened = true
	}
	if value > info.Max {
		info.Max = value
		widened = true
	}
	return widened, info.Min, info.Max
}

// String satisfies fmt.Stringer for debug logging.
func (t *TypeTable) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fmt.Sprintf("TypeTable(%d types)", len(t.names))
}
