// Package colexpr models a column reference plus an ordered chain of
// value transformations (case folding, regex extraction, date parsing).
//
// ColumnExpression is an immutable value: every transform method returns
// a copy, so expressions can be shared by reference across many
// comparison levels without synchronization. Rendering is dialect-aware
// and pairwise - a comparison always references the left record as
// "<col>_l" and the right record as "<col>_r".
package colexpr

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/browo097302/splink/internal/sqldialect"
)

type transformKind string

const (
	transformLower        transformKind = "lower"
	transformRegexExtract transformKind = "regex_extract"
	transformTryParseDate transformKind = "try_parse_date"
	transformSubstr       transformKind = "substr"
	transformCastToString transformKind = "cast_to_string"
)

// transform is one step in the chain. Steps apply left-to-right.
type transform struct {
	kind    transformKind
	pattern string // regex_extract
	format  string // try_parse_date
	start   int    // substr
	length  int    // substr
}

// ColumnExpression wraps a base column name and its transform chain.
// The zero value is not usable; construct with Col.
type ColumnExpression struct {
	column     string
	transforms []transform
}

// Col creates a ColumnExpression over a raw column name.
func Col(name string) ColumnExpression {
	return ColumnExpression{column: name}
}

// Column returns the base column name.
func (c ColumnExpression) Column() string {
	return c.column
}

func (c ColumnExpression) with(t transform) ColumnExpression {
	ts := make([]transform, len(c.transforms), len(c.transforms)+1)
	copy(ts, c.transforms)
	return ColumnExpression{column: c.column, transforms: append(ts, t)}
}

// Lower appends a lowercase fold.
func (c ColumnExpression) Lower() ColumnExpression {
	return c.with(transform{kind: transformLower})
}

// RegexExtract appends extraction of the first match of pattern.
func (c ColumnExpression) RegexExtract(pattern string) ColumnExpression {
	return c.with(transform{kind: transformRegexExtract, pattern: pattern})
}

// TryParseDate appends string-to-date parsing that yields NULL on
// unparseable input. An empty format means the dialect's default date
// format.
func (c ColumnExpression) TryParseDate(format string) ColumnExpression {
	if format == "" {
		format = DefaultDateFormat
	}
	return c.with(transform{kind: transformTryParseDate, format: format})
}

// DefaultDateFormat is used when no explicit date format is supplied.
const DefaultDateFormat = "%Y-%m-%d"

// Substr appends a substring extraction (1-based start, as in SQL).
func (c ColumnExpression) Substr(start, length int) ColumnExpression {
	return c.with(transform{kind: transformSubstr, start: start, length: length})
}

// CastToString appends a cast to the dialect's string type.
func (c ColumnExpression) CastToString() ColumnExpression {
	return c.with(transform{kind: transformCastToString})
}

// UnsupportedTransformError indicates a transform step that the target
// dialect has no primitive for. It wraps the underlying
// sqldialect.UnsupportedOperationError.
type UnsupportedTransformError struct {
	Transform string
	Dialect   sqldialect.Dialect
	Err       error
}

func (e *UnsupportedTransformError) Error() string {
	return fmt.Sprintf("transform %q on column cannot be rendered for dialect %q: %v", e.Transform, e.Dialect, e.Err)
}

func (e *UnsupportedTransformError) Unwrap() error {
	return e.Err
}

// IsUnsupportedTransform reports whether err is (or wraps) an
// UnsupportedTransformError.
func IsUnsupportedTransform(err error) bool {
	var ue *UnsupportedTransformError
	return errors.As(err, &ue)
}

// NameL renders the left-record expression for the dialect.
func (c ColumnExpression) NameL(d sqldialect.Dialect) (string, error) {
	return c.render(d, "l")
}

// NameR renders the right-record expression for the dialect.
func (c ColumnExpression) NameR(d sqldialect.Dialect) (string, error) {
	return c.render(d, "r")
}

func (c ColumnExpression) render(d sqldialect.Dialect, side string) (string, error) {
	expr := c.column + "_" + side
	for _, t := range c.transforms {
		var err error
		expr, err = renderTransform(d, t, expr)
		if err != nil {
			return "", &UnsupportedTransformError{Transform: string(t.kind), Dialect: d, Err: err}
		}
	}
	return expr, nil
}

func renderTransform(d sqldialect.Dialect, t transform, expr string) (string, error) {
	switch t.kind {
	case transformLower:
		return fmt.Sprintf("LOWER(%s)", expr), nil
	case transformRegexExtract:
		return sqldialect.RenderRegexExtract(d, expr, t.pattern)
	case transformTryParseDate:
		return sqldialect.RenderTryParseDate(d, expr, t.format)
	case transformSubstr:
		return fmt.Sprintf("SUBSTR(%s, %d, %d)", expr, t.start, t.length), nil
	case transformCastToString:
		typeName, err := sqldialect.StringTypeName(d)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("CAST(%s AS %s)", expr, typeName), nil
	default:
		return "", fmt.Errorf("unknown transform kind %q", t.kind)
	}
}

var identifierPattern = regexp.MustCompile(`[^A-Za-z0-9_]`)

// OutputColumnName derives a valid SQL identifier from the base column.
// Characters outside [A-Za-z0-9_] are folded to underscores.
func (c ColumnExpression) OutputColumnName() string {
	return identifierPattern.ReplaceAllString(c.column, "_")
}

// Label is the human-readable form used in descriptions and chart
// labels, e.g. "lower(first_name)".
func (c ColumnExpression) Label() string {
	label := c.column
	for _, t := range c.transforms {
		switch t.kind {
		case transformRegexExtract:
			label = fmt.Sprintf("%s(%s, '%s')", t.kind, label, t.pattern)
		case transformTryParseDate:
			label = fmt.Sprintf("%s(%s, '%s')", t.kind, label, t.format)
		case transformSubstr:
			label = fmt.Sprintf("%s(%s, %d, %d)", t.kind, label, t.start, t.length)
		default:
			label = fmt.Sprintf("%s(%s)", t.kind, label)
		}
	}
	return label
}

// HasTransforms reports whether any transform steps are present.
func (c ColumnExpression) HasTransforms() bool {
	return len(c.transforms) > 0
}

// String returns the label; ColumnExpression prints usefully in errors
// and %v formatting.
func (c ColumnExpression) String() string {
	return c.Label()
}
