package comparison

import (
	"fmt"
	"strings"

	"github.com/browo097302/splink/internal/colexpr"
	"github.com/browo097302/splink/internal/level"
	"github.com/browo097302/splink/internal/sqldialect"
)

// CustomComparison carries user-supplied levels directly. Entries may
// be level.Level values or serialized level mappings; anything else is
// rejected with an error naming the offending value and its type.
type CustomComparison struct {
	OutputColumnName string
	Levels           []any
	Description      string
}

func (c CustomComparison) CreateComparisonLevels() ([]level.Level, error) {
	levels := make([]level.Level, 0, len(c.Levels))
	for _, entry := range c.Levels {
		l, err := toLevel(entry)
		if err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return levels, nil
}

func toLevel(entry any) (level.Level, error) {
	switch v := entry.(type) {
	case level.Level:
		return v, nil
	case map[string]any:
		return level.FromMap(v)
	default:
		return nil, level.NewConstructionError("comparison_levels",
			"entries must be levels or mappings, but found type %T for entry %v", entry, entry)
	}
}

func (c CustomComparison) CreateDescription() string {
	if c.Description != "" {
		return c.Description
	}
	return fmt.Sprintf("Comparison for %s", c.OutputColumnName)
}

func (c CustomComparison) CreateOutputColumnName() string { return c.OutputColumnName }

// ExactMatch compares a column with two levels: exact match, and
// anything else.
type ExactMatch struct {
	Col                      colexpr.ColumnExpression
	TermFrequencyAdjustments bool
}

// NewExactMatch creates an exact-match comparison without
// term-frequency adjustment.
func NewExactMatch(col colexpr.ColumnExpression) ExactMatch {
	return ExactMatch{Col: col}
}

func (c ExactMatch) CreateComparisonLevels() ([]level.Level, error) {
	return []level.Level{
		level.NewNullLevel(c.Col),
		level.ExactMatchLevel{Col: c.Col, TermFrequencyAdjustments: c.TermFrequencyAdjustments},
		level.ElseLevel{},
	}, nil
}

func (c ExactMatch) CreateDescription() string {
	return fmt.Sprintf("Exact match '%s' vs. anything else", c.Col.Label())
}

func (c ExactMatch) CreateOutputColumnName() string { return c.Col.OutputColumnName() }

// LevenshteinAtThresholds compares a column with an exact-match level
// followed by one Levenshtein level per distance threshold.
type LevenshteinAtThresholds struct {
	Col        colexpr.ColumnExpression
	Thresholds []int
}

// NewLevenshteinAtThresholds creates the comparison. With no thresholds
// given, the distances default to 1 and 2.
func NewLevenshteinAtThresholds(col colexpr.ColumnExpression, thresholds ...int) LevenshteinAtThresholds {
	if len(thresholds) == 0 {
		thresholds = []int{1, 2}
	}
	return LevenshteinAtThresholds{Col: col, Thresholds: thresholds}
}

func (c LevenshteinAtThresholds) CreateComparisonLevels() ([]level.Level, error) {
	levels := []level.Level{
		level.NewNullLevel(c.Col),
		level.NewExactMatchLevel(c.Col),
	}
	for _, threshold := range c.Thresholds {
		l, err := level.NewLevenshteinLevel(c.Col, threshold)
		if err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return append(levels, level.ElseLevel{}), nil
}

func (c LevenshteinAtThresholds) CreateDescription() string {
	return fmt.Sprintf("Exact match '%s' vs. Levenshtein distance at thresholds %s vs. anything else",
		c.Col.Label(), joinInts(c.Thresholds))
}

func (c LevenshteinAtThresholds) CreateOutputColumnName() string { return c.Col.OutputColumnName() }

// DatediffAtThresholds compares a date column with an exact-match level
// followed by one date-difference level per (threshold, metric) pair.
//
// InvalidDatesAsNull routes unparseable date strings to the null level
// by parsing the null-check column; it defaults to on via the
// constructor. CastStringsToDates parses the column for the difference
// levels themselves.
type DatediffAtThresholds struct {
	Col                      colexpr.ColumnExpression
	DateMetrics              []sqldialect.DateMetric
	DateThresholds           []int
	CastStringsToDates       bool
	DateFormat               string
	TermFrequencyAdjustments bool
	InvalidDatesAsNull       bool
}

// NewDatediffAtThresholds creates the comparison. The metric and
// threshold lists are parallel and must be non-empty and of equal
// length.
func NewDatediffAtThresholds(col colexpr.ColumnExpression, metrics []sqldialect.DateMetric, thresholds []int) (*DatediffAtThresholds, error) {
	c := &DatediffAtThresholds{
		Col:                col,
		DateMetrics:        metrics,
		DateThresholds:     thresholds,
		InvalidDatesAsNull: true,
	}
	if err := validateDateLists(metrics, thresholds); err != nil {
		return nil, err
	}
	return c, nil
}

func validateDateLists(metrics []sqldialect.DateMetric, thresholds []int) error {
	if len(metrics) == 0 {
		return level.NewConstructionError("date_metrics", "at least one metric is required")
	}
	if len(thresholds) == 0 {
		return level.NewConstructionError("date_thresholds", "at least one threshold is required")
	}
	if len(metrics) != len(thresholds) {
		return level.NewConstructionError("date_thresholds",
			"got %d metrics but %d thresholds; the lists must be the same length",
			len(metrics), len(thresholds))
	}
	return nil
}

func (c *DatediffAtThresholds) CreateComparisonLevels() ([]level.Level, error) {
	if err := validateDateLists(c.DateMetrics, c.DateThresholds); err != nil {
		return nil, err
	}

	nullCol := c.Col
	if c.InvalidDatesAsNull {
		nullCol = nullCol.TryParseDate(c.DateFormat)
	}
	diffCol := c.Col
	if c.CastStringsToDates {
		diffCol = diffCol.TryParseDate(c.DateFormat)
	}

	levels := []level.Level{
		level.NewNullLevel(nullCol),
		level.ExactMatchLevel{Col: c.Col, TermFrequencyAdjustments: c.TermFrequencyAdjustments},
	}
	for i, threshold := range c.DateThresholds {
		l, err := level.NewDatediffLevel(diffCol, c.DateMetrics[i], threshold)
		if err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return append(levels, level.ElseLevel{}), nil
}

func (c *DatediffAtThresholds) CreateDescription() string {
	return fmt.Sprintf("Exact match '%s' vs. date difference at thresholds %s with metrics %s vs. anything else",
		c.Col.Label(), joinInts(c.DateThresholds), joinMetrics(c.DateMetrics))
}

func (c *DatediffAtThresholds) CreateOutputColumnName() string { return c.Col.OutputColumnName() }

// ArrayIntersectAtSizes compares an array column with one level per
// minimum intersection size, supplied from most to least stringent.
type ArrayIntersectAtSizes struct {
	Col   colexpr.ColumnExpression
	Sizes []int
}

// NewArrayIntersectAtSizes creates the comparison. With no sizes given,
// a single minimum size of 1 is used. A negative size fails here, not
// at compile time.
func NewArrayIntersectAtSizes(col colexpr.ColumnExpression, sizes ...int) (*ArrayIntersectAtSizes, error) {
	if len(sizes) == 0 {
		sizes = []int{1}
	}
	for _, size := range sizes {
		if size < 0 {
			return nil, level.NewConstructionError("min_intersection",
				"intersection size thresholds must be non-negative integers, got %d", size)
		}
	}
	return &ArrayIntersectAtSizes{Col: col, Sizes: sizes}, nil
}

func (c *ArrayIntersectAtSizes) CreateComparisonLevels() ([]level.Level, error) {
	levels := []level.Level{level.NewNullLevel(c.Col)}
	for _, size := range c.Sizes {
		l, err := level.NewArrayIntersectLevel(c.Col, size)
		if err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return append(levels, level.ElseLevel{}), nil
}

func (c *ArrayIntersectAtSizes) CreateDescription() string {
	return fmt.Sprintf("Array intersection at minimum sizes %s vs. anything else", joinInts(c.Sizes))
}

func (c *ArrayIntersectAtSizes) CreateOutputColumnName() string { return c.Col.OutputColumnName() }

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}

func joinMetrics(metrics []sqldialect.DateMetric) string {
	parts := make([]string, len(metrics))
	for i, m := range metrics {
		parts[i] = string(m)
	}
	return strings.Join(parts, ", ")
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, ", ")
}
