// Package preqlerr implements SynthDB's wire-level error taxonomy: typed
// errors carrying enough context to format the multi-line diagnostic
// messages PreQL clients surface to their users.
//
// Error policy mirrors lvlath/builder's sentinel convention (errors.Is
// branching, %w wrapping at call sites) but each kind here is a struct,
// not a bare sentinel, because the wire format requires the offending
// operation/key/value in the message, not just the error class.
package preqlerr

import "fmt"

// Kind classifies a preqlerr error for errors.Is-style branching via Is().
type Kind int

const (
	Nonexistence Kind = iota
	Syntax
	InvalidOperation
	DuplicateID
	Topology
	ValueType
	LimitsExceeded
)

func (k Kind) String() string {
	switch k {
	case Nonexistence:
		return "NonexistenceError"
	case Syntax:
		return "PreqlSyntaxError"
	case InvalidOperation:
		return "InvalidOperationError"
	case DuplicateID:
		return "DuplicateIDError"
	case Topology:
		return "TopologyError"
	case ValueType:
		return "ValueTypeError"
	case LimitsExceeded:
		return "LimitsExceededError"
	default:
		return "UnknownError"
	}
}

// Error is the concrete type returned across SynthDB's query/mutate/walk
// packages. Op names the wire operation that failed (e.g. "insert",
// "walk"), Key names the offending field/parameter when applicable, and
// Detail is a short human-readable explanation.
type Error struct {
	Kind   Kind
	Op     string
	Key    string
	Detail string
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s in %q: %s (%s)", e.Kind, e.Op, e.Detail, e.Key)
	}
	return fmt.Sprintf("%s in %q: %s", e.Kind, e.Op, e.Detail)
}

// Is lets errors.Is(err, &preqlerr.Error{Kind: preqlerr.Nonexistence})
// style checks compare by Kind alone, ignoring Op/Key/Detail.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func newf(kind Kind, op, key, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Key: key, Detail: fmt.Sprintf(format, args...)}
}

// Nonexistencef reports a reference to a node/link/graph/type that does
// not exist.
func Nonexistencef(op, key, format string, args ...interface{}) *Error {
	return newf(Nonexistence, op, key, format, args...)
}

// Syntaxf reports a malformed request: a missing required parameter, an
// unrecognized operation name, or a structurally invalid envelope.
func Syntaxf(op, key, format string, args ...interface{}) *Error {
	return newf(Syntax, op, key, format, args...)
}

// InvalidOperationf reports a request that parses but cannot be carried
// out given the current graph/database state (e.g. dropping the
// protected "Node" type).
func InvalidOperationf(op, key, format string, args ...interface{}) *Error {
	return newf(InvalidOperation, op, key, format, args...)
}

// DuplicateIDf reports an attempt to insert a row whose primary id already
// exists.
func DuplicateIDf(op, key, format string, args ...interface{}) *Error {
	return newf(DuplicateID, op, key, format, args...)
}

// Topologyf reports a violation of a topology invariant (e.g. inserting
// an edge whose endpoints do not exist).
func Topologyf(op, key, format string, args ...interface{}) *Error {
	return newf(Topology, op, key, format, args...)
}

// ValueTypef reports a parameter whose value does not match its expected
// coerced type.
func ValueTypef(op, key, format string, args ...interface{}) *Error {
	return newf(ValueType, op, key, format, args...)
}

// LimitsExceededf reports a request that would violate a configured
// resource bound (e.g. walk depth, result size).
func LimitsExceededf(op, key, format string, args ...interface{}) *Error {
	return newf(LimitsExceeded, op, key, format, args...)
}
