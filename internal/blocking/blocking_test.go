package blocking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browo097302/splink/internal/colexpr"
	"github.com/browo097302/splink/internal/sqldialect"
)

func TestCustomRule(t *testing.T) {
	r := NewCustomRule("l.first_name = r.first_name")

	rule, err := r.GetBlockingRule(sqldialect.DuckDB)
	require.NoError(t, err)
	assert.Equal(t, "l.first_name = r.first_name", rule.BlockingRuleSQL)
	assert.Equal(t, sqldialect.DuckDB, rule.Dialect)
}

func TestBlockOn(t *testing.T) {
	r := BlockOn(colexpr.Col("first_name"), colexpr.Col("dob"))

	rule, err := r.GetBlockingRule(sqldialect.Spark)
	require.NoError(t, err)
	assert.Equal(t, "first_name_l = first_name_r AND dob_l = dob_r", rule.BlockingRuleSQL)
}

func TestBlockOn_Transformed(t *testing.T) {
	r := BlockOn(colexpr.Col("postcode").Substr(1, 2))

	rule, err := r.GetBlockingRule(sqldialect.DuckDB)
	require.NoError(t, err)
	assert.Equal(t, "SUBSTR(postcode_l, 1, 2) = SUBSTR(postcode_r, 1, 2)", rule.BlockingRuleSQL)
}

func TestBlockOn_NoColumns(t *testing.T) {
	_, err := BlockOn().GetBlockingRule(sqldialect.DuckDB)
	assert.True(t, IsInvalidRuleInput(err))
}

func TestToCreator(t *testing.T) {
	c, err := ToCreator("l.city = r.city")
	require.NoError(t, err)
	rule, err := c.GetBlockingRule(sqldialect.DuckDB)
	require.NoError(t, err)
	assert.Equal(t, "l.city = r.city", rule.BlockingRuleSQL)

	c, err = ToCreator(map[string]any{"blocking_rule": "l.dob = r.dob"})
	require.NoError(t, err)
	rule, err = c.GetBlockingRule(sqldialect.DuckDB)
	require.NoError(t, err)
	assert.Equal(t, "l.dob = r.dob", rule.BlockingRuleSQL)

	// Creators pass through unchanged.
	original := BlockOn(colexpr.Col("email"))
	c, err = ToCreator(original)
	require.NoError(t, err)
	assert.Equal(t, original, c)
}

func TestToCreator_RejectsUnknownTypes(t *testing.T) {
	_, err := ToCreator(42)
	require.Error(t, err)
	assert.True(t, IsInvalidRuleInput(err))
	assert.Contains(t, err.Error(), "42")
	assert.Contains(t, err.Error(), "int")

	_, err = ToCreator(map[string]any{"sql": "l.a = r.a"})
	assert.True(t, IsInvalidRuleInput(err))

	_, err = ToCreator(map[string]any{"blocking_rule": 7})
	assert.True(t, IsInvalidRuleInput(err))
}

func TestRulesFromArgs(t *testing.T) {
	rules, err := RulesFromArgs("l.a = r.a", sqldialect.DuckDB)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "l.a = r.a", rules[0].BlockingRuleSQL)

	rules, err = RulesFromArgs([]string{"l.a = r.a", "l.b = r.b"}, sqldialect.Spark)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, sqldialect.Spark, rules[1].Dialect)

	rules, err = RulesFromArgs([]any{
		"l.a = r.a",
		BlockOn(colexpr.Col("city")),
		map[string]any{"blocking_rule": "l.c = r.c"},
	}, sqldialect.DuckDB)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, "city_l = city_r", rules[1].BlockingRuleSQL)

	_, err = RulesFromArgs([]any{"l.a = r.a", 3.14}, sqldialect.DuckDB)
	assert.True(t, IsInvalidRuleInput(err))
}
