package sqlcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browo097302/splink/internal/colexpr"
	"github.com/browo097302/splink/internal/comparison"
	"github.com/browo097302/splink/internal/compiler"
	"github.com/browo097302/splink/internal/sqldialect"
)

func TestCheckCondition(t *testing.T) {
	c, err := Open([]string{"first_name", "dob"})
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.CheckCondition("first_name_l = first_name_r"))
	assert.NoError(t, c.CheckCondition("first_name_l IS NULL OR first_name_r IS NULL"))
	assert.Error(t, c.CheckCondition("first_name_l = = first_name_r"))
	assert.Error(t, c.CheckCondition("no_such_column_l = first_name_r"))
}

func TestCheckCase_CompiledComparison(t *testing.T) {
	comp, err := comparison.New(comparison.NewExactMatch(colexpr.Col("first_name")))
	require.NoError(t, err)

	out, err := compiler.CompileComparison(comp, sqldialect.SQLite)
	require.NoError(t, err)

	c, err := Open(ColumnsFromSQL(out.CaseSQL))
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.CheckCase(out.CaseSQL))
}

func TestColumnsFromSQL(t *testing.T) {
	cols := ColumnsFromSQL("CASE WHEN dob_l IS NULL OR dob_r IS NULL THEN -1 WHEN city_l = city_r THEN 1 ELSE 0 END AS gamma_dob")
	assert.Equal(t, []string{"city", "dob"}, cols)

	assert.Empty(t, ColumnsFromSQL("1 = 1"))
}

func TestOpen_NoColumns(t *testing.T) {
	c, err := Open(nil)
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.CheckCondition("1 = 1"))
}
