package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{DataDir: t.TempDir(), InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertGeneratesUID(t *testing.T) {
	s := openTestStore(t)

	doc, err := s.Insert("g1", TableNodes, "0", `{"type":"Node"}`)
	require.NoError(t, err)
	require.NotEmpty(t, Project(doc, "uid").String())
}

func TestInsertDuplicatePrimaryFails(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Insert("g1", TableNodes, "0", `{"type":"Node"}`)
	require.NoError(t, err)

	_, err = s.Insert("g1", TableNodes, "0", `{"type":"Node"}`)
	require.Error(t, err)
}

func TestGetByUIDResolvesPrimary(t *testing.T) {
	s := openTestStore(t)

	doc, err := s.Insert("g1", TableNodes, "0", `{"type":"Node"}`)
	require.NoError(t, err)
	uid := Project(doc, "uid").String()

	primary, got, ok, err := s.GetByUID("g1", TableNodes, uid)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "0", primary)
	require.Equal(t, doc, got)
}

func TestDeleteRemovesUIDIndex(t *testing.T) {
	s := openTestStore(t)

	doc, err := s.Insert("g1", TableNodes, "0", `{"type":"Node"}`)
	require.NoError(t, err)
	uid := Project(doc, "uid").String()

	require.NoError(t, s.Delete("g1", TableNodes, "0"))

	_, _, ok, err := s.GetByUID("g1", TableNodes, uid)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestScanOrdersByPrimary(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Insert("g1", TableNodes, "1", `{"type":"Node"}`)
	require.NoError(t, err)
	_, err = s.Insert("g1", TableNodes, "0", `{"type":"Node"}`)
	require.NoError(t, err)

	rows, err := s.Scan("g1", TableNodes)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "0", rows[0].Primary)
	require.Equal(t, "1", rows[1].Primary)
}

func TestGraphsAreNamespaced(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Insert("g1", TableNodes, "0", `{"type":"Node"}`)
	require.NoError(t, err)

	rows, err := s.Scan("g2", TableNodes)
	require.NoError(t, err)
	require.Empty(t, rows)
}
