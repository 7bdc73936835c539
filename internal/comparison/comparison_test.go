package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browo097302/splink/internal/colexpr"
	"github.com/browo097302/splink/internal/level"
	"github.com/browo097302/splink/internal/sqldialect"
)

func TestNew(t *testing.T) {
	comp, err := New(NewExactMatch(colexpr.Col("first_name")))
	require.NoError(t, err)

	assert.Equal(t, "first_name", comp.OutputColumnName)
	assert.Equal(t, "Exact match 'first_name' vs. anything else", comp.Description)
	require.Len(t, comp.Levels, 3)
	assert.True(t, level.IsElse(comp.Levels[2]))
	assert.Equal(t, []string{"first_name"}, comp.InputColumns())
}

func TestNew_PropagatesConstructionError(t *testing.T) {
	_, err := New(NewLevenshteinAtThresholds(colexpr.Col("name"), -3))
	assert.True(t, level.IsConstructionError(err))
}

func TestToMap(t *testing.T) {
	comp, err := New(NewExactMatch(colexpr.Col("city")))
	require.NoError(t, err)

	m, err := comp.ToMap(sqldialect.DuckDB)
	require.NoError(t, err)

	assert.Equal(t, "city", m[KeyOutputColumnName])
	assert.Equal(t, "Exact match 'city' vs. anything else", m[KeyDescription])

	levels, ok := m[KeyComparisonLevels].([]any)
	require.True(t, ok)
	require.Len(t, levels, 3)
	assert.Equal(t, map[string]any{
		"sql_condition":    "city_l = city_r",
		"label_for_charts": "Exact match on city",
	}, levels[1])
	assert.Equal(t, map[string]any{
		"sql_condition":    "ELSE",
		"label_for_charts": "All other comparisons",
	}, levels[2])
}

func TestFromMap_RoundTrip(t *testing.T) {
	c := NewDateComparison(colexpr.Col("dob"))
	c.SeparateFirstJanuary = true
	comp, err := New(c)
	require.NoError(t, err)

	m, err := comp.ToMap(sqldialect.DuckDB)
	require.NoError(t, err)

	restored, err := FromMap(m)
	require.NoError(t, err)

	m2, err := restored.ToMap(sqldialect.DuckDB)
	require.NoError(t, err)
	assert.Equal(t, m, m2)
}

func TestFromMap_TermFrequencySurvives(t *testing.T) {
	comp, err := New(ExactMatch{Col: colexpr.Col("city"), TermFrequencyAdjustments: true})
	require.NoError(t, err)

	m, err := comp.ToMap(sqldialect.Spark)
	require.NoError(t, err)

	restored, err := FromMap(m)
	require.NoError(t, err)
	assert.True(t, restored.Levels[1].TermFrequencyEligible())
}

func TestFromMap_Invalid(t *testing.T) {
	_, err := FromMap(map[string]any{"comparison_levels": []any{}})
	assert.True(t, level.IsConstructionError(err))

	_, err = FromMap(map[string]any{"output_column_name": "x"})
	assert.True(t, level.IsConstructionError(err))

	_, err = FromMap(map[string]any{
		"output_column_name": "x",
		"comparison_levels":  "not a list",
	})
	require.Error(t, err)
	assert.True(t, level.IsConstructionError(err))
	assert.Contains(t, err.Error(), "string")

	_, err = FromMap(map[string]any{
		"output_column_name": "x",
		"comparison_levels":  []any{"not a map"},
	})
	assert.True(t, level.IsConstructionError(err))
}
