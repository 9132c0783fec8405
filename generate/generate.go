// Package generate implements SynthDB's generator collaborator (spec.md
// §4.F's "generate" operation) and the finalize-graph protocol (§4.H) that
// turns a freshly-built in-memory topology into a persisted graph database.
//
// Grounded on the teacher's builder package for the actual topology shapes
// (Path/Cycle/Star/Wheel/Complete/CompleteBipartite/Grid/RandomSparse/
// RandomRegular/PlatonicSolid/Hexagram/Letters/Word) and on
// original_source/server.py's finalize_graph for the batch-insert protocol.
package generate

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/lvlath/builder"
	"github.com/katalvlaran/lvlath/core"

	"github.com/psymphonic/synthdb/catalog"
	"github.com/psymphonic/synthdb/document"
	"github.com/psymphonic/synthdb/mutate"
	"github.com/psymphonic/synthdb/preqlerr"
)

// Result reports how many rows finalize-graph wrote, matching the shape a
// "generate" wire response echoes back to the caller.
type Result struct {
	NodesInserted int
	LinksInserted int
}

// Generator builds a raw topology into g/store under genType's rules and
// parameters.
type Generator func(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error)

// Registry maps gen_type names (the "generate" operation's catalog,
// spec.md §4.F/§5) to their implementation.
type Registry struct {
	generators map[string]Generator
}

// NewRegistry builds a Registry pre-populated with every generator this
// port implements (see DESIGN.md for the grounding of each entry).
func NewRegistry() *Registry {
	r := &Registry{generators: make(map[string]Generator)}
	r.register()
	return r
}

func (r *Registry) register() {
	r.generators["path"] = genPath
	r.generators["cycle"] = genCycle
	r.generators["star"] = genStar
	r.generators["wheel"] = genWheel
	r.generators["complete"] = genComplete
	r.generators["bipartite"] = genBipartite
	r.generators["grid"] = genGrid
	r.generators["random_sparse"] = genRandomSparse
	r.generators["random_regular"] = genRandomRegular
	r.generators["platonic"] = genPlatonic
	r.generators["hexagram"] = genHexagram
	r.generators["letters"] = genLetters
	r.generators["word"] = genWord
	r.generators["pulse"] = genPulse
	r.generators["chirp"] = genChirp
	r.generators["ohlc"] = genOHLC
}

// Names lists every registered gen_type name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.generators))
	for n := range r.generators {
		names = append(names, n)
	}
	return names
}

// Generate runs the named generator against g, persisting the result
// through store via the finalize-graph protocol.
func (r *Registry) Generate(g *catalog.Graph, store *document.Store, genType string, params map[string]interface{}) (Result, error) {
	fn, ok := r.generators[genType]
	if !ok {
		return Result{}, preqlerr.Syntaxf("generate", "gen_type", "no such generator %q", genType)
	}
	return fn(g, store, params)
}

func genPath(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error) {
	n, err := intParam(params, "n")
	if err != nil {
		return Result{}, err
	}
	cg, err := builder.BuildGraph(nil, nil, builder.Path(n))
	if err != nil {
		return Result{}, fmt.Errorf("generate: path: %w", err)
	}
	return finalizeCoreGraph(g, store, cg)
}

func genCycle(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error) {
	n, err := intParam(params, "n")
	if err != nil {
		return Result{}, err
	}
	cg, err := builder.BuildGraph(nil, nil, builder.Cycle(n))
	if err != nil {
		return Result{}, fmt.Errorf("generate: cycle: %w", err)
	}
	return finalizeCoreGraph(g, store, cg)
}

func genStar(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error) {
	n, err := intParam(params, "n")
	if err != nil {
		return Result{}, err
	}
	cg, err := builder.BuildGraph(nil, nil, builder.Star(n))
	if err != nil {
		return Result{}, fmt.Errorf("generate: star: %w", err)
	}
	return finalizeCoreGraph(g, store, cg)
}

func genWheel(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error) {
	n, err := intParam(params, "n")
	if err != nil {
		return Result{}, err
	}
	cg, err := builder.BuildGraph(nil, nil, builder.Wheel(n))
	if err != nil {
		return Result{}, fmt.Errorf("generate: wheel: %w", err)
	}
	return finalizeCoreGraph(g, store, cg)
}

func genComplete(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error) {
	n, err := intParam(params, "n")
	if err != nil {
		return Result{}, err
	}
	cg, err := builder.BuildGraph(nil, nil, builder.Complete(n))
	if err != nil {
		return Result{}, fmt.Errorf("generate: complete: %w", err)
	}
	return finalizeCoreGraph(g, store, cg)
}

func genBipartite(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error) {
	n1, err := intParam(params, "n1")
	if err != nil {
		return Result{}, err
	}
	n2, err := intParam(params, "n2")
	if err != nil {
		return Result{}, err
	}
	left := stringParamOr(params, "left_prefix", "")
	right := stringParamOr(params, "right_prefix", "")
	cg, err := builder.BuildGraph(nil, []builder.BuilderOption{builder.WithPartitionPrefix(left, right)}, builder.CompleteBipartite(n1, n2))
	if err != nil {
		return Result{}, fmt.Errorf("generate: bipartite: %w", err)
	}
	return finalizeCoreGraph(g, store, cg)
}

func genGrid(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error) {
	rows, err := intParam(params, "rows")
	if err != nil {
		return Result{}, err
	}
	cols, err := intParam(params, "cols")
	if err != nil {
		return Result{}, err
	}
	cg, err := builder.BuildGraph(nil, nil, builder.Grid(rows, cols))
	if err != nil {
		return Result{}, fmt.Errorf("generate: grid: %w", err)
	}
	return finalizeCoreGraph(g, store, cg)
}

func genRandomSparse(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error) {
	n, err := intParam(params, "n")
	if err != nil {
		return Result{}, err
	}
	p := floatParamOr(params, "p", 0.1)
	seed := int64(intParamOr(params, "seed", 1))
	cg, err := builder.BuildGraph(nil, []builder.BuilderOption{builder.WithSeed(seed)}, builder.RandomSparse(n, p))
	if err != nil {
		return Result{}, fmt.Errorf("generate: random_sparse: %w", err)
	}
	return finalizeCoreGraph(g, store, cg)
}

func genRandomRegular(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error) {
	n, err := intParam(params, "n")
	if err != nil {
		return Result{}, err
	}
	d, err := intParam(params, "d")
	if err != nil {
		return Result{}, err
	}
	seed := int64(intParamOr(params, "seed", 1))
	cg, err := builder.BuildGraph(nil, []builder.BuilderOption{builder.WithSeed(seed)}, builder.RandomRegular(n, d))
	if err != nil {
		return Result{}, fmt.Errorf("generate: random_regular: %w", err)
	}
	return finalizeCoreGraph(g, store, cg)
}

var platonicNames = map[string]builder.PlatonicName{
	"tetrahedron":  builder.Tetrahedron,
	"cube":         builder.Cube,
	"octahedron":   builder.Octahedron,
	"dodecahedron": builder.Dodecahedron,
	"icosahedron":  builder.Icosahedron,
}

func genPlatonic(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error) {
	name, err := stringParam(params, "solid")
	if err != nil {
		return Result{}, err
	}
	solid, ok := platonicNames[name]
	if !ok {
		return Result{}, preqlerr.Syntaxf("generate", "solid", "no such Platonic solid %q", name)
	}
	withCenter := intParamOr(params, "with_center", 0) != 0
	cg, err := builder.BuildGraph(nil, nil, builder.PlatonicSolid(solid, withCenter))
	if err != nil {
		return Result{}, fmt.Errorf("generate: platonic: %w", err)
	}
	return finalizeCoreGraph(g, store, cg)
}

var hexagramVariants = map[string]builder.HexagramVariant{
	"default": builder.HexDefault,
	"medium":  builder.HexMedium,
	"big":     builder.HexBig,
	"huge":    builder.HexHuge,
}

func genHexagram(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error) {
	name := stringParamOr(params, "variant", "default")
	variant, ok := hexagramVariants[name]
	if !ok {
		return Result{}, preqlerr.Syntaxf("generate", "variant", "no such hexagram variant %q", name)
	}
	cg, err := builder.BuildGraph(nil, nil, builder.Hexagram(variant))
	if err != nil {
		return Result{}, fmt.Errorf("generate: hexagram: %w", err)
	}
	return finalizeCoreGraph(g, store, cg)
}

func genLetters(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error) {
	text, err := stringParam(params, "text")
	if err != nil {
		return Result{}, err
	}
	scope := stringParamOr(params, "scope", "")
	cg := core.NewGraph()
	if err := builder.BuildLetters(cg, text, scope); err != nil {
		return Result{}, fmt.Errorf("generate: letters: %w", err)
	}
	return finalizeCoreGraph(g, store, cg)
}

func genWord(g *catalog.Graph, store *document.Store, params map[string]interface{}) (Result, error) {
	word, err := stringParam(params, "word")
	if err != nil {
		return Result{}, err
	}
	scope := stringParamOr(params, "scope", "")
	cg := core.NewGraph()
	if err := builder.BuildWord(cg, word, scope); err != nil {
		return Result{}, fmt.Errorf("generate: word: %w", err)
	}
	return finalizeCoreGraph(g, store, cg)
}

// finalizeCoreGraph implements spec.md §4.H's finalize-graph protocol for
// generators built atop the teacher's string-keyed core.Graph: every
// vertex becomes a dense-id node document of the default type "Node",
// every edge becomes a link document of the default type "Link" with
// value 1, inserted in deterministic (sorted core-id) order so the
// resulting dense ids are reproducible for a fixed generator input.
func finalizeCoreGraph(g *catalog.Graph, store *document.Store, cg *core.Graph) (Result, error) {
	ids := cg.Vertices()
	sort.Strings(ids)

	byCoreID := make(map[string]int, len(ids))
	var res Result
	for _, cid := range ids {
		primary, _, err := mutate.InsertNode(g, store, "Node", fmt.Sprintf(`{"label":%q}`, cid))
		if err != nil {
			return Result{}, err
		}
		id, err := parseDenseID(primary)
		if err != nil {
			return Result{}, err
		}
		byCoreID[cid] = id
		res.NodesInserted++
	}

	edges := cg.Edges()
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	for _, e := range edges {
		origin, ok := byCoreID[e.From]
		if !ok {
			return Result{}, preqlerr.Syntaxf("generate", "from", "unresolved vertex %q", e.From)
		}
		terminus, ok := byCoreID[e.To]
		if !ok {
			return Result{}, preqlerr.Syntaxf("generate", "to", "unresolved vertex %q", e.To)
		}
		if _, _, err := mutate.InsertLink(g, store, "Link", origin, terminus, `{"value":1}`); err != nil {
			return Result{}, err
		}
		res.LinksInserted++
	}
	return res, nil
}

func parseDenseID(primary string) (int, error) {
	var id int
	if _, err := fmt.Sscanf(primary, "%d", &id); err != nil {
		return 0, fmt.Errorf("generate: malformed node primary %q: %w", primary, err)
	}
	return id, nil
}
