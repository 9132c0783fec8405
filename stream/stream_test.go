package stream

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psymphonic/synthdb/document"
	"github.com/psymphonic/synthdb/propmap"
)

func rows(docs ...string) []document.Row {
	out := make([]document.Row, len(docs))
	for i, d := range docs {
		out[i] = document.Row{Primary: string(rune('a' + i)), Doc: d}
	}
	return out
}

func TestFilterKeepsMatchingDocs(t *testing.T) {
	c := FromRows(rows(`{"n":1}`, `{"n":2}`, `{"n":3}`))
	c.Filter(document.FieldPredicate{Field: "n", Op: document.OpGt, Value: 1}.Compile())
	docs, err := c.Collect()
	require.NoError(t, err)
	require.Equal(t, []string{`{"n":2}`, `{"n":3}`}, docs)
}

func TestMapRewritesDocs(t *testing.T) {
	c := FromRows(rows(`{"n":1}`))
	c.Map(func(doc string) string {
		out, _ := document.SetField(doc, "doubled", true)
		return out
	})
	docs, err := c.Collect()
	require.NoError(t, err)
	require.Contains(t, docs[0], `"doubled":true`)
}

func TestOrderByAndLimit(t *testing.T) {
	c := FromRows(rows(`{"n":3}`, `{"n":1}`, `{"n":2}`))
	c.OrderBy(func(doc string) float64 { return document.Project(doc, "n").Float() }, false)
	c.Limit(2)
	docs, err := c.Collect()
	require.NoError(t, err)
	require.Equal(t, []string{`{"n":1}`, `{"n":2}`}, docs)
}

func TestCountShortCircuits(t *testing.T) {
	c := FromRows(rows(`{}`, `{}`, `{}`))
	n, err := c.Count()
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestDistinctDropsDuplicateKeys(t *testing.T) {
	c := FromRows(rows(`{"k":"a"}`, `{"k":"b"}`, `{"k":"a"}`))
	c.Distinct(func(doc string) string { return document.Project(doc, "k").String() })
	docs, err := c.Collect()
	require.NoError(t, err)
	require.Len(t, docs, 2)
}

func TestCoercePropertyMapBuildsMap(t *testing.T) {
	c := FromRows(rows(`{"id":0,"v":0.5}`, `{"id":1,"v":0.1}`))
	result, err := c.Coerce(CoercePropertyMap, propmap.KeyVertex, propmap.TypeFloat,
		func(doc string) interface{} { return int(document.Project(doc, "id").Int()) },
		func(doc string) interface{} { return document.Project(doc, "v").Float() },
	)
	require.NoError(t, err)
	m := result.(*propmap.Map)
	require.Equal(t, 2, m.Len())
	v, ok := m.Get(0)
	require.True(t, ok)
	require.Equal(t, 0.5, v)
}

func TestErrorShortCircuitsLaterStages(t *testing.T) {
	c := FromRows(rows(`{}`))
	c.fail(errors.New("boom"))
	c.Filter(func(string) bool { return true })
	_, err := c.Collect()
	require.Error(t, err)
}

func TestWriteFramesTabMode(t *testing.T) {
	var buf strings.Builder
	err := WriteFrames(&buf, TabMode, "", []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, "a\tb\t", buf.String())
}

func TestWriteFramesEventStreamMode(t *testing.T) {
	var buf strings.Builder
	err := WriteFrames(&buf, EventStreamMode, "", []string{"a"})
	require.NoError(t, err)
	require.Equal(t, "data: a\n\nevent: done\n\n", buf.String())
}

func TestWriteFramesErrorFrameFirst(t *testing.T) {
	var buf strings.Builder
	err := WriteFrames(&buf, TabMode, `{"error":{"type":"Syntax"}}`, []string{"a"})
	require.NoError(t, err)
	require.Equal(t, `{"error":{"type":"Syntax"}}`+"\t", buf.String())
}
