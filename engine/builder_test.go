package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirdb/dirdb/entity"
	"github.com/dirdb/dirdb/jsonval"
)

func names(recs []*entity.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Field("name").StrVal()
	}
	return out
}

func TestChainFilterAndSort(t *testing.T) {
	e := newEngine(t)
	seedUsers(t, e)

	recs, err := e.Table("users").FilterBy("active", jsonval.Bool(true), OpEq).Sort("age").All()
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, []string{"Eve", "Alice", "Diana", "Bob"}, names(recs))
}

func TestChainWhereOrderBy(t *testing.T) {
	e := newEngine(t)
	seedUsers(t, e)

	recs, err := e.Table("users").Where("city", jsonval.String("New York")).OrderBy("name").All()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Charlie", "Eve"}, names(recs))
}

func TestChainDescendingSort(t *testing.T) {
	e := newEngine(t)
	seedUsers(t, e)

	recs, err := e.Table("users").FilterBy("age", jsonval.Int(30), OpGt).Sort("age", false).All()
	require.NoError(t, err)
	assert.Equal(t, []string{"Charlie", "Bob", "Diana"}, names(recs))
}

func TestChainLimit(t *testing.T) {
	e := newEngine(t)
	seedUsers(t, e)

	recs, err := e.Table("users").Sort("age").Limit(3).All()
	require.NoError(t, err)
	assert.Equal(t, []string{"Eve", "Alice", "Diana"}, names(recs))
}

func TestChainSkipAndLimit(t *testing.T) {
	e := newEngine(t)
	seedUsers(t, e)

	recs, err := e.Table("users").Sort("age").Skip(1).Limit(2).All()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Diana"}, names(recs))
}

func TestChainSelect(t *testing.T) {
	e := newEngine(t)
	seedUsers(t, e)

	rows, err := e.Table("users").FilterBy("active", jsonval.Bool(true), OpEq).Select("name", "city")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for _, row := range rows {
		assert.Equal(t, []string{"name", "city"}, row.Keys())
	}
}

func TestChainToMaps(t *testing.T) {
	e := newEngine(t)
	seedUsers(t, e)

	rows, err := e.Table("users").Limit(2).ToMaps()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, jsonval.KindObject, row.Kind())
		assert.True(t, row.Has("id"))
	}
}

func TestChainCount(t *testing.T) {
	e := newEngine(t)
	seedUsers(t, e)

	n, err := e.Table("users").FilterBy("active", jsonval.Bool(true), OpEq).Count()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestChainFirstAndLast(t *testing.T) {
	e := newEngine(t)
	seedUsers(t, e)

	youngest, err := e.Table("users").Sort("age").First()
	require.NoError(t, err)
	require.NotNil(t, youngest)
	assert.Equal(t, "Eve", youngest.Field("name").StrVal())

	oldest, err := e.Table("users").Sort("age").Last()
	require.NoError(t, err)
	require.NotNil(t, oldest)
	assert.Equal(t, "Charlie", oldest.Field("name").StrVal())
}

func TestChainComplexPipeline(t *testing.T) {
	e := newEngine(t)
	seedUsers(t, e)

	rows, err := e.Table("users").
		Where("city", jsonval.String("New York")).
		FilterBy("active", jsonval.Bool(true), OpEq).
		Sort("age").
		Limit(2).
		Select("name", "age")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Eve", rows[0].Get("name").StrVal())
	assert.Equal(t, "Alice", rows[1].Get("name").StrVal())
}

func TestChainMultipleFilters(t *testing.T) {
	e := newEngine(t)
	seedUsers(t, e)

	recs, err := e.Table("users").
		FilterBy("active", jsonval.Bool(true), OpEq).
		FilterBy("age", jsonval.Int(30), OpLt).
		All()
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestChainGroupBy(t *testing.T) {
	e := newEngine(t)
	seedUsers(t, e)

	groups, err := e.Table("users").GroupBy("city")
	require.NoError(t, err)
	require.Len(t, groups, 3)
	sizes := map[string]int{}
	for _, g := range groups {
		sizes[g.Key.StrVal()] = len(g.Records)
	}
	assert.Equal(t, map[string]int{"New York": 3, "San Francisco": 1, "Boston": 1}, sizes)
}

func TestChainEmptyResults(t *testing.T) {
	e := newEngine(t)
	seedUsers(t, e)
	over100 := e.Table("users").FilterBy("age", jsonval.Int(100), OpGt)

	recs, err := over100.All()
	require.NoError(t, err)
	assert.Empty(t, recs)

	first, err := over100.First()
	require.NoError(t, err)
	assert.Nil(t, first)

	last, err := over100.Last()
	require.NoError(t, err)
	assert.Nil(t, last)

	n, err := over100.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestChainNonexistentTable(t *testing.T) {
	e := newEngine(t)

	recs, err := e.Table("nonexistent").All()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestChainBadOperatorSurfacesAtTerminal(t *testing.T) {
	e := newEngine(t)
	seedUsers(t, e)

	_, err := e.Table("users").FilterBy("age", jsonval.Int(1), Op("between")).All()
	assert.Error(t, err)
}

func TestChainDerivesFreshBuilders(t *testing.T) {
	e := newEngine(t)
	seedUsers(t, e)

	base := e.Table("users").FilterBy("active", jsonval.Bool(true), OpEq)
	limited := base.Limit(1)

	n, err := base.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, n, "deriving a builder must not change its parent")

	m, err := limited.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, m)
}
