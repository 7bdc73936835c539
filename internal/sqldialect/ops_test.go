package sqldialect

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, d := range All() {
		got, err := Parse(string(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
}

func TestParse_Unknown(t *testing.T) {
	_, err := Parse("oracle")
	require.Error(t, err)

	var ue *UnknownDialectError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "oracle", ue.Name)
	assert.Contains(t, err.Error(), "oracle")
}

func TestFuzzyPolarity(t *testing.T) {
	tests := []struct {
		op       Op
		polarity Polarity
		operator string
	}{
		{OpLevenshtein, PolarityDistance, "<="},
		{OpDamerauLevenshtein, PolarityDistance, "<="},
		{OpJaro, PolaritySimilarity, ">="},
		{OpJaroWinkler, PolaritySimilarity, ">="},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			p, ok := FuzzyPolarity(tt.op)
			require.True(t, ok)
			assert.Equal(t, tt.polarity, p)
			assert.Equal(t, tt.operator, p.ComparisonOperator())
		})
	}

	_, ok := FuzzyPolarity(OpRegexExtract)
	assert.False(t, ok, "regex extraction is not a fuzzy metric")
}

// TestSupportMatrix enumerates the full (operation x dialect)
// cross-product: every cell either renders or yields a typed
// UnsupportedOperationError naming the operation and dialect.
func TestSupportMatrix(t *testing.T) {
	for _, d := range All() {
		for _, op := range Operations() {
			t.Run(fmt.Sprintf("%s/%s", d, op), func(t *testing.T) {
				sql, err := renderAny(d, op)
				if Supports(d, op) {
					require.NoError(t, err)
					assert.NotEmpty(t, sql)
					return
				}
				require.Error(t, err)
				var ue *UnsupportedOperationError
				require.ErrorAs(t, err, &ue)
				assert.Equal(t, op, ue.Op)
				assert.Equal(t, d, ue.Dialect)
				assert.Contains(t, err.Error(), string(op))
				assert.Contains(t, err.Error(), string(d))
			})
		}
	}
}

// renderAny renders an operation with placeholder arguments so the
// matrix test can probe every cell uniformly.
func renderAny(d Dialect, op Op) (string, error) {
	switch op {
	case OpLevenshtein, OpDamerauLevenshtein, OpJaro, OpJaroWinkler:
		return RenderFuzzy(d, op, "a_l", "a_r")
	case OpRegexExtract:
		return RenderRegexExtract(d, "a_l", "^[A-Z]+")
	case OpRegexMatch:
		return RenderRegexMatch(d, "a_l", "^[A-Z]+")
	case OpTryParseDate:
		return RenderTryParseDate(d, "a_l", "%Y-%m-%d")
	case OpDateDiff:
		return RenderDateDiff(d, MetricDay, "a_l", "a_r")
	case OpArrayIntersect:
		return RenderArrayIntersectSize(d, "a_l", "a_r")
	case OpArraySize:
		return RenderArraySize(d, "a_l")
	case OpGreatCircleDistance:
		return RenderGreatCircleKM(d, "lat_l", "lat_r", "long_l", "long_r")
	case OpCastToString:
		return StringTypeName(d)
	default:
		return "", fmt.Errorf("unhandled op %q", op)
	}
}

func TestRenderFuzzy_DialectSyntax(t *testing.T) {
	tests := []struct {
		dialect Dialect
		op      Op
		want    string
	}{
		{DuckDB, OpLevenshtein, "LEVENSHTEIN(name_l, name_r)"},
		{DuckDB, OpJaroWinkler, "JARO_WINKLER_SIMILARITY(name_l, name_r)"},
		{Spark, OpDamerauLevenshtein, "DAMERAU_LEVENSHTEIN(name_l, name_r)"},
		{Postgres, OpLevenshtein, "LEVENSHTEIN(name_l, name_r)"},
		{Athena, OpLevenshtein, "LEVENSHTEIN_DISTANCE(name_l, name_r)"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.dialect, tt.op), func(t *testing.T) {
			got, err := RenderFuzzy(tt.dialect, tt.op, "name_l", "name_r")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderFuzzy_SQLiteUnsupported(t *testing.T) {
	for _, op := range []Op{OpLevenshtein, OpDamerauLevenshtein, OpJaro, OpJaroWinkler} {
		_, err := RenderFuzzy(SQLite, op, "a", "b")
		assert.True(t, IsUnsupportedOperation(err), "sqlite must reject %s", op)
	}
}

func TestRenderDateDiff(t *testing.T) {
	tests := []struct {
		dialect Dialect
		metric  DateMetric
		want    string
	}{
		{DuckDB, MetricDay, "ABS(DATEDIFF('day', dob_l, dob_r))"},
		{DuckDB, MetricMonth, "ABS(DATEDIFF('month', dob_l, dob_r))"},
		{Spark, MetricDay, "ABS(DATEDIFF(dob_l, dob_r))"},
		{Spark, MetricYear, "ABS(YEAR(dob_l) - YEAR(dob_r))"},
		{Postgres, MetricDay, "ABS(CAST(dob_l AS DATE) - CAST(dob_r AS DATE))"},
		{Athena, MetricYear, "ABS(DATE_DIFF('year', dob_l, dob_r))"},
		{SQLite, MetricDay, "CAST(ABS(JULIANDAY(dob_l) - JULIANDAY(dob_r)) AS INTEGER)"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.dialect, tt.metric), func(t *testing.T) {
			got, err := RenderDateDiff(tt.dialect, tt.metric, "dob_l", "dob_r")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderDateDiff_InvalidMetric(t *testing.T) {
	_, err := RenderDateDiff(DuckDB, DateMetric("fortnight"), "l", "r")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fortnight")
}

func TestRenderDateDiff_SQLiteMonthUnsupported(t *testing.T) {
	_, err := RenderDateDiff(SQLite, MetricMonth, "l", "r")
	assert.True(t, IsUnsupportedOperation(err))
}

func TestRenderRegexExtract_EscapesQuotes(t *testing.T) {
	got, err := RenderRegexExtract(DuckDB, "col_l", "o'brien")
	require.NoError(t, err)
	assert.Equal(t, "REGEXP_EXTRACT(col_l, 'o''brien', 0)", got)
}

func TestRenderGreatCircleKM_Clamped(t *testing.T) {
	got, err := RenderGreatCircleKM(DuckDB, "lat_l", "lat_r", "long_l", "long_r")
	require.NoError(t, err)
	assert.Contains(t, got, "ACOS(LEAST(GREATEST(")
	assert.Contains(t, got, "* 6371")
	assert.Contains(t, got, "RADIANS(long_r - long_l)")
}

func TestRenderLeast_SQLiteUsesMin(t *testing.T) {
	got, err := RenderLeast(SQLite, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "MIN(a, b)", got)

	got, err = RenderLeast(DuckDB, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "LEAST(a, b)", got)
}
