package document

import "github.com/tidwall/gjson"

// Predicate reports whether a row's JSON document should be kept by a
// filter stage (spec.md §4.A's filter(predicate)).
type Predicate func(doc string) bool

// Projection rewrites a row's JSON document into the shape a map stage
// should emit (spec.md §4.A's map(projection)).
type Projection func(doc string) string

// CompareOp is the closed set of field comparisons a structured Predicate
// expression supports, per spec.md §9's "small expression AST for
// server-side evaluation of field comparisons".
type CompareOp string

const (
	OpEq       CompareOp = "eq"
	OpNeq      CompareOp = "ne"
	OpLt       CompareOp = "lt"
	OpLte      CompareOp = "lte"
	OpGt       CompareOp = "gt"
	OpGte      CompareOp = "gte"
	OpContains CompareOp = "contains"
)

// FieldPredicate is a structured predicate expression: Field (dotted
// gjson path) Op Value. It is the portable, server-evaluated counterpart
// to an opaque UDF name.
type FieldPredicate struct {
	Field string
	Op    CompareOp
	Value interface{}
}

// Compile returns a Predicate closure evaluating this expression against
// a row's JSON via gjson. A missing field never matches. Comparison is
// numeric (the field read as a float) when Value is an int or float64,
// lexical when Value is a string; any other Value type matches nothing.
func (fp FieldPredicate) Compile() Predicate {
	return func(doc string) bool {
		field := gjson.Get(doc, fp.Field)
		if !field.Exists() {
			return false
		}
		switch fp.Op {
		case OpContains:
			return containsString(field.String(), fp.Value)
		default:
			return compareOrdered(field, fp.Op, fp.Value)
		}
	}
}

func containsString(haystack string, needle interface{}) bool {
	s, ok := needle.(string)
	if !ok {
		return false
	}
	for i := 0; i+len(s) <= len(haystack); i++ {
		if haystack[i:i+len(s)] == s {
			return true
		}
	}
	return false
}

func compareOrdered(field gjson.Result, op CompareOp, value interface{}) bool {
	if num, ok := toFloat(value); ok {
		a, b := field.Float(), num
		return applyOp(op, a < b, a == b, a > b)
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	a, b := field.String(), s
	return applyOp(op, a < b, a == b, a > b)
}

func applyOp(op CompareOp, lt, eq, gt bool) bool {
	switch op {
	case OpEq:
		return eq
	case OpNeq:
		return !eq
	case OpLt:
		return lt
	case OpLte:
		return lt || eq
	case OpGt:
		return gt
	case OpGte:
		return gt || eq
	default:
		return false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// UDFRegistry holds named predicates/projections a client may reference
// by opaque name instead of sending a structured expression or a code
// fragment, per spec.md §9's recommendation to treat code-string
// fragments as registered-UDF identifiers rather than executing them.
type UDFRegistry struct {
	predicates  map[string]Predicate
	projections map[string]Projection
}

// NewUDFRegistry constructs an empty registry.
func NewUDFRegistry() *UDFRegistry {
	return &UDFRegistry{
		predicates:  make(map[string]Predicate),
		projections: make(map[string]Projection),
	}
}

// RegisterPredicate names a Predicate for later resolution by opaque name.
func (u *UDFRegistry) RegisterPredicate(name string, p Predicate) {
	u.predicates[name] = p
}

// RegisterProjection names a Projection for later resolution by opaque name.
func (u *UDFRegistry) RegisterProjection(name string, p Projection) {
	u.projections[name] = p
}

// Predicate resolves a registered predicate by name.
func (u *UDFRegistry) Predicate(name string) (Predicate, bool) {
	p, ok := u.predicates[name]
	return p, ok
}

// Projection resolves a registered projection by name.
func (u *UDFRegistry) Projection(name string) (Projection, bool) {
	p, ok := u.projections[name]
	return p, ok
}
