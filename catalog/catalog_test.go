package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psymphonic/synthdb/preqlerr"
)

func TestCreateGraphThenGet(t *testing.T) {
	c := New(nil, nil)
	g, err := c.CreateGraph("g1")
	require.NoError(t, err)
	require.Equal(t, "g1", g.Name)

	got, err := c.Get("g1")
	require.NoError(t, err)
	require.Same(t, g, got)
}

func TestCreateGraphDuplicateFails(t *testing.T) {
	c := New(nil, nil)
	_, err := c.CreateGraph("g1")
	require.NoError(t, err)

	_, err = c.CreateGraph("g1")
	var perr *preqlerr.Error
	require.True(t, errors.As(err, &perr))
	require.Equal(t, preqlerr.DuplicateID, perr.Kind)
}

func TestDropGraphRemovesFromRegistry(t *testing.T) {
	c := New(nil, nil)
	_, _ = c.CreateGraph("g1")
	require.NoError(t, c.DropGraph("g1"))

	_, err := c.Get("g1")
	require.Error(t, err)
}

func TestProtectedTypesCannotBeRemoved(t *testing.T) {
	g, _ := New(nil, nil).CreateGraph("g1")
	require.True(t, g.NodeTypes.Has("Node"))
	require.Error(t, g.NodeTypes.Remove("Node"))
}
