package query

import "github.com/psymphonic/synthdb/preqlerr"

// ParamType is the closed set of parameter kinds spec.md §4.F declares:
// "every algorithm declares allowed/required names and per-name expected
// types from the closed set {float, bool, int, string, array,
// property-map reference, node reference, link reference}".
type ParamType int

const (
	TFloat ParamType = iota
	TBool
	TInt
	TString
	TArray
	TPropertyMapRef
	TNodeRef
	TLinkRef
)

// ParamSpec names one expected parameter and whether it is required.
type ParamSpec struct {
	Name     string
	Type     ParamType
	Required bool
}

// Coerce validates params against specs, returning PreqlSyntaxError for
// the first missing required name or the first wrong-typed value,
// matching spec.md §4.F's coercion-error wording ("missing required ->
// PreqlSyntaxError listing missing names"; "wrong type -> PreqlSyntaxError
// naming the offending key and expected type").
func Coerce(op string, params map[string]interface{}, specs []ParamSpec) error {
	var missing []string
	for _, spec := range specs {
		v, present := params[spec.Name]
		if !present {
			if spec.Required {
				missing = append(missing, spec.Name)
			}
			continue
		}
		if !matchesType(v, spec.Type) {
			return preqlerr.Syntaxf(op, spec.Name, "expected %s", typeName(spec.Type))
		}
	}
	if len(missing) > 0 {
		return preqlerr.Syntaxf(op, missing[0], "missing required parameter(s) %v", missing)
	}
	return nil
}

func matchesType(v interface{}, t ParamType) bool {
	switch t {
	case TFloat:
		switch v.(type) {
		case float64, int:
			return true
		}
		return false
	case TBool:
		_, ok := v.(bool)
		return ok
	case TInt:
		switch v.(type) {
		case int, float64:
			return true
		}
		return false
	case TString, TNodeRef, TLinkRef, TPropertyMapRef:
		_, ok := v.(string)
		if ok {
			return true
		}
		if t == TNodeRef || t == TLinkRef {
			switch v.(type) {
			case int, float64:
				return true
			}
		}
		return false
	case TArray:
		_, ok := v.([]interface{})
		return ok
	default:
		return false
	}
}

func typeName(t ParamType) string {
	switch t {
	case TFloat:
		return "float"
	case TBool:
		return "bool"
	case TInt:
		return "int"
	case TString:
		return "string"
	case TArray:
		return "array"
	case TPropertyMapRef:
		return "property-map reference"
	case TNodeRef:
		return "node reference"
	case TLinkRef:
		return "link reference"
	default:
		return "unknown"
	}
}
