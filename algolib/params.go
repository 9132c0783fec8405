package algolib

import "github.com/psymphonic/synthdb/preqlerr"

func intParam(params map[string]interface{}, key string) (int, error) {
	v, ok := params[key]
	if !ok {
		return 0, preqlerr.Syntaxf("topology", key, "missing required parameter")
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		return int(n), nil
	default:
		return 0, preqlerr.ValueTypef("topology", key, "expected int, got %T", v)
	}
}

func intParamOr(params map[string]interface{}, key string, def int) int {
	n, err := intParam(params, key)
	if err != nil {
		return def
	}
	return n
}

func floatParamOr(params map[string]interface{}, key string, def float64) float64 {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	default:
		return def
	}
}
