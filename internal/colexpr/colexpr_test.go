package colexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browo097302/splink/internal/sqldialect"
)

func TestCol_PlainRendering(t *testing.T) {
	c := Col("first_name")

	l, err := c.NameL(sqldialect.DuckDB)
	require.NoError(t, err)
	assert.Equal(t, "first_name_l", l)

	r, err := c.NameR(sqldialect.DuckDB)
	require.NoError(t, err)
	assert.Equal(t, "first_name_r", r)
}

func TestTransforms_ApplyLeftToRight(t *testing.T) {
	c := Col("email").Lower().RegexExtract("^[^@]+")

	got, err := c.NameL(sqldialect.DuckDB)
	require.NoError(t, err)
	assert.Equal(t, "REGEXP_EXTRACT(LOWER(email_l), '^[^@]+', 0)", got)
}

func TestTransforms_ValueSemantics(t *testing.T) {
	base := Col("surname")
	lowered := base.Lower()
	extracted := base.RegexExtract("^[A-Z]")

	// The base expression must be unchanged by derived expressions.
	l, err := base.NameL(sqldialect.DuckDB)
	require.NoError(t, err)
	assert.Equal(t, "surname_l", l)

	ll, err := lowered.NameL(sqldialect.DuckDB)
	require.NoError(t, err)
	assert.Equal(t, "LOWER(surname_l)", ll)

	el, err := extracted.NameL(sqldialect.DuckDB)
	require.NoError(t, err)
	assert.Equal(t, "REGEXP_EXTRACT(surname_l, '^[A-Z]', 0)", el)
}

func TestTransforms_SharedPrefixNotAliased(t *testing.T) {
	base := Col("x").Lower()
	a := base.RegexExtract("a")
	b := base.RegexExtract("b")

	al, err := a.NameL(sqldialect.DuckDB)
	require.NoError(t, err)
	bl, err := b.NameL(sqldialect.DuckDB)
	require.NoError(t, err)

	assert.Equal(t, "REGEXP_EXTRACT(LOWER(x_l), 'a', 0)", al)
	assert.Equal(t, "REGEXP_EXTRACT(LOWER(x_l), 'b', 0)", bl)
}

func TestTryParseDate_PerDialect(t *testing.T) {
	c := Col("dob").TryParseDate("%Y-%m-%d")

	tests := []struct {
		dialect sqldialect.Dialect
		want    string
	}{
		{sqldialect.DuckDB, "TRY_STRPTIME(dob_l, '%Y-%m-%d')"},
		{sqldialect.Spark, "TO_DATE(dob_l, '%Y-%m-%d')"},
		{sqldialect.Athena, "TRY(DATE_PARSE(dob_l, '%Y-%m-%d'))"},
	}
	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			got, err := c.NameL(tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTryParseDate_DefaultFormat(t *testing.T) {
	c := Col("dob").TryParseDate("")
	got, err := c.NameL(sqldialect.DuckDB)
	require.NoError(t, err)
	assert.Equal(t, "TRY_STRPTIME(dob_l, '%Y-%m-%d')", got)
}

func TestTryParseDate_UnsupportedDialect(t *testing.T) {
	c := Col("dob").TryParseDate("%Y-%m-%d")

	_, err := c.NameL(sqldialect.Postgres)
	require.Error(t, err)

	var te *UnsupportedTransformError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "try_parse_date", te.Transform)
	assert.Equal(t, sqldialect.Postgres, te.Dialect)
	assert.True(t, sqldialect.IsUnsupportedOperation(err), "must wrap the dialect error")
}

func TestRegexExtract_UnsupportedOnSQLite(t *testing.T) {
	c := Col("postcode").RegexExtract("^[A-Z]{1,2}")
	_, err := c.NameL(sqldialect.SQLite)
	assert.True(t, IsUnsupportedTransform(err))
}

func TestSubstrAndCast(t *testing.T) {
	c := Col("dob").CastToString().Substr(6, 5)

	got, err := c.NameL(sqldialect.DuckDB)
	require.NoError(t, err)
	assert.Equal(t, "SUBSTR(CAST(dob_l AS VARCHAR), 6, 5)", got)

	got, err = c.NameL(sqldialect.Spark)
	require.NoError(t, err)
	assert.Equal(t, "SUBSTR(CAST(dob_l AS STRING), 6, 5)", got)
}

func TestOutputColumnName(t *testing.T) {
	tests := []struct {
		column string
		want   string
	}{
		{"first_name", "first_name"},
		{"date of birth", "date_of_birth"},
		{"post-code", "post_code"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Col(tt.column).OutputColumnName())
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "first_name", Col("first_name").Label())
	assert.Equal(t, "lower(first_name)", Col("first_name").Lower().Label())
	assert.Equal(t,
		"regex_extract(lower(email), '^[^@]+')",
		Col("email").Lower().RegexExtract("^[^@]+").Label())
}
