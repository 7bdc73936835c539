package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJobFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const yamlJob = `
dialect: duckdb
comparisons:
  - output_column_name: first_name
    comparison_description: Exact match vs. anything else
    comparison_levels:
      - sql_condition: first_name_l IS NULL OR first_name_r IS NULL
        label_for_charts: first_name is NULL
        is_null_level: true
      - sql_condition: first_name_l = first_name_r
        label_for_charts: Exact match
        term_frequency_adjustments: true
      - sql_condition: ELSE
        label_for_charts: All other comparisons
blocking_rules:
  - l.surname = r.surname
  - blocking_rule: l.dob = r.dob
`

const cueJob = `
dialect: "spark"
comparisons: [{
	output_column_name: "city"
	comparison_levels: [
		{sql_condition: "city_l IS NULL OR city_r IS NULL", is_null_level: true},
		{sql_condition: "city_l = city_r", label_for_charts: "Exact match"},
		{sql_condition: "ELSE"},
	]
}]
blocking_rules: ["l.city = r.city"]
`

func TestLoadJob_YAML(t *testing.T) {
	path := writeJobFile(t, "job.yaml", yamlJob)

	spec, err := LoadJob(path)
	require.NoError(t, err)

	assert.Equal(t, "duckdb", spec.Dialect)
	require.Len(t, spec.Comparisons, 1)
	assert.Equal(t, "first_name", spec.Comparisons[0]["output_column_name"])
	require.Len(t, spec.BlockingRules, 2)
	assert.Equal(t, "l.surname = r.surname", spec.BlockingRules[0])
}

func TestLoadJob_CUE(t *testing.T) {
	path := writeJobFile(t, "job.cue", cueJob)

	spec, err := LoadJob(path)
	require.NoError(t, err)

	assert.Equal(t, "spark", spec.Dialect)
	require.Len(t, spec.Comparisons, 1)
	levels, ok := spec.Comparisons[0]["comparison_levels"].([]any)
	require.True(t, ok)
	assert.Len(t, levels, 3)
}

func TestLoadJob_Errors(t *testing.T) {
	_, err := LoadJob(filepath.Join(t.TempDir(), "missing.yaml"))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)

	path := writeJobFile(t, "job.toml", "dialect = 'duckdb'")
	_, err = LoadJob(path)
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeParseFailed, loadErr.Code)

	path = writeJobFile(t, "job.yaml", "comparisons: []")
	_, err = LoadJob(path)
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Message, "dialect")

	path = writeJobFile(t, "job.yaml", "dialect: duckdb\ncomparisons: 7")
	_, err = LoadJob(path)
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeParseFailed, loadErr.Code)
}
