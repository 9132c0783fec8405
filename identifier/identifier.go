// Package identifier resolves and formats the two kinds of reference a
// PreQL request can use to name a node or link: its primary id
// (dense-integer vertex id, or composite "{origin}_{local_idx}_{terminus}"
// edge id) and its stable uid (a UUID surviving vertex renumbering).
//
// Grounded on original_source/server.py's primary_id_check/trim_id/
// id_or_uid/get_vertex_id/get_edge_id helpers.
package identifier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// primaryIDPattern matches either a bare vertex id ("42") or a composite
// edge id ("42_0_7"): digits, optionally followed by "_" digits "_" digits.
var primaryIDPattern = regexp.MustCompile(`^\d+(_\d+_\d+)?$`)

// IsPrimaryID reports whether s has the shape of a primary id (as opposed
// to a uid, which callers are expected to treat as the fallback case).
func IsPrimaryID(s string) bool {
	return primaryIDPattern.MatchString(s)
}

// EdgeID formats the composite edge id for an edge from origin to
// terminus at the given dense local index.
func EdgeID(origin, localIdx, terminus int) string {
	return fmt.Sprintf("%d_%d_%d", origin, localIdx, terminus)
}

// ParseEdgeID parses a composite edge id produced by EdgeID. It returns
// ok=false if s is not a well-formed composite edge id.
func ParseEdgeID(s string) (origin, localIdx, terminus int, ok bool) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	var err error
	if origin, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, false
	}
	if localIdx, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, false
	}
	if terminus, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, false
	}
	return origin, localIdx, terminus, true
}

// ParseVertexID parses a bare vertex id. ok is false if s carries the
// "_local_" composite shape (i.e. it names an edge, not a vertex) or is
// not numeric at all.
func ParseVertexID(s string) (id int, ok bool) {
	if strings.Contains(s, "_") {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// TrimID strips a leading table-name prefix some clients send joined with
// a colon (e.g. "nodes:42" -> "42"), matching the original's trim_id.
func TrimID(s string) string {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[i+1:]
	}
	return s
}
