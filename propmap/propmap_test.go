package propmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntriesSortedByVertexKey(t *testing.T) {
	m := NewMap("rank", TypeFloat, KeyVertex)
	m.Set(3, 0.1)
	m.Set(1, 0.9)
	m.Set(2, 0.5)

	entries := m.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, 1, entries[0].Key)
	require.Equal(t, 2, entries[1].Key)
	require.Equal(t, 3, entries[2].Key)
}

func TestRegistryPutGetDelete(t *testing.T) {
	r := NewRegistry()
	m := NewMap("centrality", TypeFloat, KeyVertex)
	r.Put(m)

	got, ok := r.Get("centrality")
	require.True(t, ok)
	require.Same(t, m, got)

	r.Delete("centrality")
	_, ok = r.Get("centrality")
	require.False(t, ok)
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()
	r.Put(NewMap("zeta", TypeInt, KeyVertex))
	r.Put(NewMap("alpha", TypeInt, KeyVertex))
	require.Equal(t, []string{"alpha", "zeta"}, r.Names())
}

func TestSnapshotSharesExistingMapsNotFutureOnes(t *testing.T) {
	host := NewRegistry()
	existing := NewMap("rank", TypeFloat, KeyVertex)
	existing.Set(1, 0.5)
	host.Put(existing)

	snap := host.Snapshot()

	got, ok := snap.Get("rank")
	require.True(t, ok)
	require.Same(t, existing, got)

	got.Set(1, 0.9)
	hostCopy, _ := host.Get("rank")
	require.Equal(t, 0.9, mustFloat(t, hostCopy, 1))

	host.Put(NewMap("later", TypeInt, KeyVertex))
	_, ok = snap.Get("later")
	require.False(t, ok)
}

func mustFloat(t *testing.T, m *Map, key interface{}) float64 {
	t.Helper()
	v, ok := m.Get(key)
	require.True(t, ok)
	return v.(float64)
}
