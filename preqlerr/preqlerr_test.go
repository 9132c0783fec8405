package preqlerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsBranchesByKind(t *testing.T) {
	err := Nonexistencef("pluck", "uid", "no row with uid %s", "abc-123")
	require.True(t, errors.Is(err, &Error{Kind: Nonexistence}))
	require.False(t, errors.Is(err, &Error{Kind: Syntax}))
}

func TestErrorMessageIncludesKey(t *testing.T) {
	err := ValueTypef("insert", "weight", "expected float, got string")
	require.Contains(t, err.Error(), "weight")
	require.Contains(t, err.Error(), "ValueTypeError")
}
