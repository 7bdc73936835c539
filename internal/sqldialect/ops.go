package sqldialect

import (
	"fmt"
	"strings"
)

// Op names an abstract operation that comparison levels and column
// transforms rely on. Each dialect either renders an Op or reports it
// unsupported; there is no partial rendering.
type Op string

const (
	OpLevenshtein         Op = "levenshtein"
	OpDamerauLevenshtein  Op = "damerau_levenshtein"
	OpJaro                Op = "jaro"
	OpJaroWinkler         Op = "jaro_winkler"
	OpRegexExtract        Op = "regex_extract"
	OpRegexMatch          Op = "regex_match"
	OpTryParseDate        Op = "try_parse_date"
	OpDateDiff            Op = "date_diff"
	OpArrayIntersect      Op = "array_intersect"
	OpArraySize           Op = "array_size"
	OpGreatCircleDistance Op = "great_circle_distance"
	OpCastToString        Op = "cast_to_string"
)

// Operations returns every abstract operation in stable order.
// Tests enumerate this against All() to prove the support matrix has no
// silent gaps.
func Operations() []Op {
	return []Op{
		OpLevenshtein,
		OpDamerauLevenshtein,
		OpJaro,
		OpJaroWinkler,
		OpRegexExtract,
		OpRegexMatch,
		OpTryParseDate,
		OpDateDiff,
		OpArrayIntersect,
		OpArraySize,
		OpGreatCircleDistance,
		OpCastToString,
	}
}

// Polarity describes how a fuzzy metric's rendered value relates to its
// threshold. Distance metrics match when the value is small, similarity
// metrics when it is large. Confusing the two inverts match semantics,
// so the polarity lives here next to the function tables.
type Polarity int

const (
	PolarityDistance Polarity = iota
	PolaritySimilarity
)

// ComparisonOperator returns the SQL comparison operator for the polarity.
func (p Polarity) ComparisonOperator() string {
	if p == PolaritySimilarity {
		return ">="
	}
	return "<="
}

// FuzzyPolarity returns the polarity of a fuzzy metric operation.
// The second return is false for non-fuzzy operations.
func FuzzyPolarity(op Op) (Polarity, bool) {
	switch op {
	case OpLevenshtein, OpDamerauLevenshtein:
		return PolarityDistance, true
	case OpJaro, OpJaroWinkler:
		return PolaritySimilarity, true
	default:
		return 0, false
	}
}

// fuzzyFunctions maps each dialect to the SQL function implementing each
// fuzzy metric. Absence means the dialect cannot evaluate the metric.
// SQLite deliberately has no entries: the library targets stock SQLite,
// which ships no string-distance functions.
var fuzzyFunctions = map[Dialect]map[Op]string{
	DuckDB: {
		OpLevenshtein:        "LEVENSHTEIN",
		OpDamerauLevenshtein: "DAMERAU_LEVENSHTEIN",
		OpJaro:               "JARO_SIMILARITY",
		OpJaroWinkler:        "JARO_WINKLER_SIMILARITY",
	},
	Spark: {
		OpLevenshtein:        "LEVENSHTEIN",
		OpDamerauLevenshtein: "DAMERAU_LEVENSHTEIN",
		OpJaro:               "JARO_SIM",
		OpJaroWinkler:        "JARO_WINKLER",
	},
	SQLite: {},
	Postgres: {
		OpLevenshtein: "LEVENSHTEIN",
	},
	Athena: {
		OpLevenshtein: "LEVENSHTEIN_DISTANCE",
	},
}

// FuzzyFunction returns the dialect's SQL function name for a fuzzy
// metric operation.
func FuzzyFunction(d Dialect, op Op) (string, error) {
	fns, ok := fuzzyFunctions[d]
	if !ok {
		return "", &UnknownDialectError{Name: string(d)}
	}
	fn, ok := fns[op]
	if !ok {
		return "", unsupported(op, d)
	}
	return fn, nil
}

// RenderFuzzy renders a fuzzy metric call over two expressions.
func RenderFuzzy(d Dialect, op Op, left, right string) (string, error) {
	fn, err := FuzzyFunction(d, op)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s, %s)", fn, left, right), nil
}

// RenderRegexExtract renders extraction of the first match of pattern
// from expr.
func RenderRegexExtract(d Dialect, expr, pattern string) (string, error) {
	p := EscapeStringLiteral(pattern)
	switch d {
	case DuckDB, Spark:
		return fmt.Sprintf("REGEXP_EXTRACT(%s, '%s', 0)", expr, p), nil
	case Postgres:
		return fmt.Sprintf("SUBSTRING(%s FROM '%s')", expr, p), nil
	case Athena:
		return fmt.Sprintf("REGEXP_EXTRACT(%s, '%s')", expr, p), nil
	default:
		return "", unsupported(OpRegexExtract, d)
	}
}

// RenderRegexMatch renders a boolean full-pattern test of expr against
// pattern.
func RenderRegexMatch(d Dialect, expr, pattern string) (string, error) {
	p := EscapeStringLiteral(pattern)
	switch d {
	case DuckDB:
		return fmt.Sprintf("REGEXP_MATCHES(%s, '%s')", expr, p), nil
	case Spark:
		return fmt.Sprintf("%s RLIKE '%s'", expr, p), nil
	case Postgres:
		return fmt.Sprintf("%s ~ '%s'", expr, p), nil
	case Athena:
		return fmt.Sprintf("REGEXP_LIKE(%s, '%s')", expr, p), nil
	default:
		return "", unsupported(OpRegexMatch, d)
	}
}

// RenderTryParseDate renders parsing of a string expression to a date,
// yielding NULL (not an error) on unparseable input. Dialects whose date
// parsers raise on bad input have no mapping here.
func RenderTryParseDate(d Dialect, expr, format string) (string, error) {
	f := EscapeStringLiteral(format)
	switch d {
	case DuckDB:
		return fmt.Sprintf("TRY_STRPTIME(%s, '%s')", expr, f), nil
	case Spark:
		return fmt.Sprintf("TO_DATE(%s, '%s')", expr, f), nil
	case Athena:
		return fmt.Sprintf("TRY(DATE_PARSE(%s, '%s'))", expr, f), nil
	default:
		return "", unsupported(OpTryParseDate, d)
	}
}

// DateMetric is the unit for date-difference comparisons.
type DateMetric string

const (
	MetricDay   DateMetric = "day"
	MetricMonth DateMetric = "month"
	MetricYear  DateMetric = "year"
)

// DateMetrics returns the valid date metrics in stable order.
func DateMetrics() []DateMetric {
	return []DateMetric{MetricDay, MetricMonth, MetricYear}
}

// ValidDateMetric reports whether m is one of day, month or year.
func ValidDateMetric(m DateMetric) bool {
	return m == MetricDay || m == MetricMonth || m == MetricYear
}

// RenderDateDiff renders the absolute difference between two date
// expressions in the given unit.
func RenderDateDiff(d Dialect, metric DateMetric, left, right string) (string, error) {
	if !ValidDateMetric(metric) {
		return "", fmt.Errorf("invalid date metric %q: must be one of %v", metric, DateMetrics())
	}
	switch d {
	case DuckDB:
		return fmt.Sprintf("ABS(DATEDIFF('%s', %s, %s))", metric, left, right), nil
	case Athena:
		return fmt.Sprintf("ABS(DATE_DIFF('%s', %s, %s))", metric, left, right), nil
	case Spark:
		switch metric {
		case MetricDay:
			return fmt.Sprintf("ABS(DATEDIFF(%s, %s))", left, right), nil
		case MetricMonth:
			return fmt.Sprintf("ABS((YEAR(%s) - YEAR(%s)) * 12 + MONTH(%s) - MONTH(%s))", left, right, left, right), nil
		default:
			return fmt.Sprintf("ABS(YEAR(%s) - YEAR(%s))", left, right), nil
		}
	case Postgres:
		switch metric {
		case MetricDay:
			return fmt.Sprintf("ABS(CAST(%s AS DATE) - CAST(%s AS DATE))", left, right), nil
		case MetricMonth:
			return fmt.Sprintf("ABS((EXTRACT(YEAR FROM %s) - EXTRACT(YEAR FROM %s)) * 12 + EXTRACT(MONTH FROM %s) - EXTRACT(MONTH FROM %s))", left, right, left, right), nil
		default:
			return fmt.Sprintf("ABS(EXTRACT(YEAR FROM %s) - EXTRACT(YEAR FROM %s))", left, right), nil
		}
	case SQLite:
		// Stock SQLite has julianday but no month/year arithmetic.
		if metric == MetricDay {
			return fmt.Sprintf("CAST(ABS(JULIANDAY(%s) - JULIANDAY(%s)) AS INTEGER)", left, right), nil
		}
		return "", unsupported(OpDateDiff, d)
	default:
		return "", unsupported(OpDateDiff, d)
	}
}

// RenderArrayIntersectSize renders the cardinality of the set
// intersection of two array expressions.
func RenderArrayIntersectSize(d Dialect, left, right string) (string, error) {
	switch d {
	case DuckDB:
		return fmt.Sprintf("LEN(LIST_INTERSECT(%s, %s))", left, right), nil
	case Spark:
		return fmt.Sprintf("SIZE(ARRAY_INTERSECT(%s, %s))", left, right), nil
	case Postgres:
		return fmt.Sprintf("CARDINALITY(ARRAY(SELECT UNNEST(%s) INTERSECT SELECT UNNEST(%s)))", left, right), nil
	case Athena:
		return fmt.Sprintf("CARDINALITY(ARRAY_INTERSECT(%s, %s))", left, right), nil
	default:
		return "", unsupported(OpArrayIntersect, d)
	}
}

// RenderArraySize renders the length of an array expression.
func RenderArraySize(d Dialect, expr string) (string, error) {
	switch d {
	case DuckDB:
		return fmt.Sprintf("LEN(%s)", expr), nil
	case Spark:
		return fmt.Sprintf("SIZE(%s)", expr), nil
	case Postgres, Athena:
		return fmt.Sprintf("CARDINALITY(%s)", expr), nil
	default:
		return "", unsupported(OpArraySize, d)
	}
}

// RenderLeast renders the scalar minimum of two expressions.
func RenderLeast(d Dialect, a, b string) (string, error) {
	switch d {
	case DuckDB, Spark, Postgres, Athena:
		return fmt.Sprintf("LEAST(%s, %s)", a, b), nil
	case SQLite:
		// SQLite's scalar MIN is its LEAST.
		return fmt.Sprintf("MIN(%s, %s)", a, b), nil
	default:
		return "", &UnknownDialectError{Name: string(d)}
	}
}

// RenderGreatCircleKM renders the haversine great-circle distance in
// kilometres between two lat/long pairs. The inner dot product is
// clamped to [-1, 1] so ACOS never sees rounding noise outside its
// domain.
func RenderGreatCircleKM(d Dialect, latL, latR, longL, longR string) (string, error) {
	switch d {
	case DuckDB, Spark, Postgres, Athena:
	default:
		return "", unsupported(OpGreatCircleDistance, d)
	}
	dot := fmt.Sprintf(
		"SIN(RADIANS(%s)) * SIN(RADIANS(%s)) + COS(RADIANS(%s)) * COS(RADIANS(%s)) * COS(RADIANS(%s - %s))",
		latL, latR, latL, latR, longR, longL,
	)
	return fmt.Sprintf("ACOS(LEAST(GREATEST(%s, -1.0), 1.0)) * 6371", dot), nil
}

// StringTypeName returns the dialect's type name for casting to string.
func StringTypeName(d Dialect) (string, error) {
	switch d {
	case DuckDB, Athena:
		return "VARCHAR", nil
	case Spark:
		return "STRING", nil
	case Postgres, SQLite:
		return "TEXT", nil
	default:
		return "", &UnknownDialectError{Name: string(d)}
	}
}

// Supports reports whether the dialect implements the operation for at
// least one argument shape. OpDateDiff counts as supported when any
// metric renders.
func Supports(d Dialect, op Op) bool {
	switch op {
	case OpLevenshtein, OpDamerauLevenshtein, OpJaro, OpJaroWinkler:
		_, err := FuzzyFunction(d, op)
		return err == nil
	case OpRegexExtract:
		_, err := RenderRegexExtract(d, "x", "p")
		return err == nil
	case OpRegexMatch:
		_, err := RenderRegexMatch(d, "x", "p")
		return err == nil
	case OpTryParseDate:
		_, err := RenderTryParseDate(d, "x", "%Y-%m-%d")
		return err == nil
	case OpDateDiff:
		_, err := RenderDateDiff(d, MetricDay, "l", "r")
		return err == nil
	case OpArrayIntersect:
		_, err := RenderArrayIntersectSize(d, "l", "r")
		return err == nil
	case OpArraySize:
		_, err := RenderArraySize(d, "x")
		return err == nil
	case OpGreatCircleDistance:
		_, err := RenderGreatCircleKM(d, "a", "b", "c", "e")
		return err == nil
	case OpCastToString:
		_, err := StringTypeName(d)
		return err == nil
	default:
		return false
	}
}

// EscapeStringLiteral doubles single quotes for embedding in a SQL
// string literal.
func EscapeStringLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
