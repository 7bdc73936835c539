package level

import (
	"fmt"
	"strings"

	"github.com/browo097302/splink/internal/colexpr"
	"github.com/browo097302/splink/internal/sqldialect"
)

// Level is one predicate within a comparison, tested in priority order.
//
// Level types:
//   - NullLevel: either side null (or invalid under a pattern)
//   - ExactMatchLevel: transformed values equal
//   - FuzzyLevel: string distance/similarity against a threshold
//   - DatediffLevel: absolute date difference against a threshold
//   - ArrayIntersectLevel, ArraySubsetLevel: array set relations
//   - DistanceInKMLevel: great-circle distance threshold
//   - CustomLevel: raw SQL escape hatch
//   - AndLevel, OrLevel, NotLevel: boolean combinators
//   - ElseLevel: the unconditional terminal catch-all
type Level interface {
	// Condition renders the boolean SQL condition for the dialect.
	// ElseLevel is the one exception: it renders the literal "ELSE".
	Condition(d sqldialect.Dialect) (string, error)

	// Label is the human-readable name used in descriptions and
	// score-inspection tooling.
	Label() string

	// TermFrequencyEligible reports whether the downstream scoring
	// engine should apply term-frequency adjustment to this level.
	TermFrequencyEligible() bool

	// InputColumns lists the base columns the level reads, for
	// metadata handed to the execution engine. Nil when unknown
	// (custom SQL).
	InputColumns() []string

	levelNode() // Marker method - seals interface to this package
}

// elseCondition is the sentinel Condition() result of ElseLevel,
// consumed by the compiler's CASE rendering and by the serialized form.
const elseCondition = "ELSE"

// ElseLevel matches unconditionally. Every comparison must end with
// exactly one.
type ElseLevel struct{}

func (ElseLevel) levelNode() {}

// Condition returns the "ELSE" sentinel regardless of dialect.
func (ElseLevel) Condition(sqldialect.Dialect) (string, error) {
	return elseCondition, nil
}

func (ElseLevel) Label() string { return "All other comparisons" }

func (ElseLevel) TermFrequencyEligible() bool { return false }

func (ElseLevel) InputColumns() []string { return nil }

// IsElse reports whether l is the unconditional catch-all.
func IsElse(l Level) bool {
	switch l.(type) {
	case ElseLevel, *ElseLevel:
		return true
	}
	return false
}

// IsNullCheck reports whether l routes pairs to the null branch rather
// than expressing a degree of match.
func IsNullCheck(l Level) bool {
	switch v := l.(type) {
	case NullLevel, *NullLevel:
		return true
	case CustomLevel:
		return v.IsNullLevel
	case *CustomLevel:
		return v.IsNullLevel
	}
	return false
}

// CustomLevel carries a raw SQL boolean condition and an explicit
// label. It bypasses all validation: the caller is trusted completely.
// It is also the generic deserialization target for saved levels that
// match no named variant.
type CustomLevel struct {
	SQLCondition             string
	LabelForCharts           string
	TermFrequencyAdjustments bool

	// IsNullLevel marks the level as a null check for compilation, so
	// deserialized null levels keep their -1 dispatch value.
	IsNullLevel bool
}

func (CustomLevel) levelNode() {}

// Condition returns the raw condition unchanged for every dialect.
func (l CustomLevel) Condition(sqldialect.Dialect) (string, error) {
	return l.SQLCondition, nil
}

func (l CustomLevel) Label() string {
	if l.LabelForCharts != "" {
		return l.LabelForCharts
	}
	return l.SQLCondition
}

func (l CustomLevel) TermFrequencyEligible() bool { return l.TermFrequencyAdjustments }

func (l CustomLevel) InputColumns() []string { return nil }

// NullLevel matches when either side's expression is null, or - when
// ValidStringPattern is set - fails the validity pattern. Routing
// invalid values to the null branch is a deliberate policy the caller
// opts into by supplying a pattern.
type NullLevel struct {
	Col                colexpr.ColumnExpression
	ValidStringPattern string
}

// NewNullLevel creates a NullLevel without a validity pattern.
func NewNullLevel(col colexpr.ColumnExpression) NullLevel {
	return NullLevel{Col: col}
}

// NewNullLevelWithPattern creates a NullLevel that also treats values
// not matching pattern as null.
func NewNullLevelWithPattern(col colexpr.ColumnExpression, pattern string) NullLevel {
	return NullLevel{Col: col, ValidStringPattern: pattern}
}

func (NullLevel) levelNode() {}

func (l NullLevel) Condition(d sqldialect.Dialect) (string, error) {
	nameL, err := l.Col.NameL(d)
	if err != nil {
		return "", err
	}
	nameR, err := l.Col.NameR(d)
	if err != nil {
		return "", err
	}

	cond := fmt.Sprintf("%s IS NULL OR %s IS NULL", nameL, nameR)
	if l.ValidStringPattern == "" {
		return cond, nil
	}

	matchL, err := sqldialect.RenderRegexMatch(d, nameL, l.ValidStringPattern)
	if err != nil {
		return "", err
	}
	matchR, err := sqldialect.RenderRegexMatch(d, nameR, l.ValidStringPattern)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s OR NOT (%s) OR NOT (%s)", cond, matchL, matchR), nil
}

func (l NullLevel) Label() string {
	return fmt.Sprintf("%s is NULL", l.Col.Label())
}

func (NullLevel) TermFrequencyEligible() bool { return false }

func (l NullLevel) InputColumns() []string { return []string{l.Col.Column()} }

// ExactMatchLevel matches when the transformed expressions are equal.
type ExactMatchLevel struct {
	Col colexpr.ColumnExpression

	// TermFrequencyAdjustments marks the level for frequency-based
	// score adjustment downstream; the adjustment itself is computed
	// by the scoring engine, not here.
	TermFrequencyAdjustments bool
}

// NewExactMatchLevel creates an ExactMatchLevel without term-frequency
// adjustment.
func NewExactMatchLevel(col colexpr.ColumnExpression) ExactMatchLevel {
	return ExactMatchLevel{Col: col}
}

func (ExactMatchLevel) levelNode() {}

func (l ExactMatchLevel) Condition(d sqldialect.Dialect) (string, error) {
	nameL, err := l.Col.NameL(d)
	if err != nil {
		return "", err
	}
	nameR, err := l.Col.NameR(d)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = %s", nameL, nameR), nil
}

func (l ExactMatchLevel) Label() string {
	return fmt.Sprintf("Exact match on %s", l.Col.Label())
}

func (l ExactMatchLevel) TermFrequencyEligible() bool { return l.TermFrequencyAdjustments }

func (l ExactMatchLevel) InputColumns() []string { return []string{l.Col.Column()} }

// AndLevel matches when all child levels match.
type AndLevel struct {
	Children      []Level
	LabelOverride string
}

// NewAnd combines child levels with AND. At least one child is
// required.
func NewAnd(children ...Level) (*AndLevel, error) {
	if err := validateChildren("and", children); err != nil {
		return nil, err
	}
	return &AndLevel{Children: children}, nil
}

func (*AndLevel) levelNode() {}

func (l *AndLevel) Condition(d sqldialect.Dialect) (string, error) {
	return combineConditions(d, l.Children, " AND ")
}

func (l *AndLevel) Label() string {
	if l.LabelOverride != "" {
		return l.LabelOverride
	}
	return joinLabels(l.Children, " AND ")
}

func (*AndLevel) TermFrequencyEligible() bool { return false }

func (l *AndLevel) InputColumns() []string { return unionInputColumns(l.Children) }

// OrLevel matches when any child level matches.
type OrLevel struct {
	Children      []Level
	LabelOverride string
}

// NewOr combines child levels with OR. At least one child is required.
func NewOr(children ...Level) (*OrLevel, error) {
	if err := validateChildren("or", children); err != nil {
		return nil, err
	}
	return &OrLevel{Children: children}, nil
}

func (*OrLevel) levelNode() {}

func (l *OrLevel) Condition(d sqldialect.Dialect) (string, error) {
	return combineConditions(d, l.Children, " OR ")
}

func (l *OrLevel) Label() string {
	if l.LabelOverride != "" {
		return l.LabelOverride
	}
	return joinLabels(l.Children, " OR ")
}

func (*OrLevel) TermFrequencyEligible() bool { return false }

func (l *OrLevel) InputColumns() []string { return unionInputColumns(l.Children) }

// NotLevel inverts a child level.
type NotLevel struct {
	Child         Level
	LabelOverride string
}

// NewNot inverts a child level. ElseLevel cannot be negated.
func NewNot(child Level) (*NotLevel, error) {
	if child == nil {
		return nil, NewConstructionError("not", "child level is required")
	}
	if IsElse(child) {
		return nil, NewConstructionError("not", "the unconditional catch-all level cannot be negated")
	}
	return &NotLevel{Child: child}, nil
}

func (*NotLevel) levelNode() {}

func (l *NotLevel) Condition(d sqldialect.Dialect) (string, error) {
	cond, err := l.Child.Condition(d)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("NOT (%s)", cond), nil
}

func (l *NotLevel) Label() string {
	if l.LabelOverride != "" {
		return l.LabelOverride
	}
	return fmt.Sprintf("NOT (%s)", l.Child.Label())
}

func (*NotLevel) TermFrequencyEligible() bool { return false }

func (l *NotLevel) InputColumns() []string { return l.Child.InputColumns() }

func validateChildren(field string, children []Level) error {
	if len(children) == 0 {
		return NewConstructionError(field, "at least one child level is required")
	}
	for i, c := range children {
		if c == nil {
			return NewConstructionError(field, "child level %d is nil", i)
		}
		if IsElse(c) {
			return NewConstructionError(field, "the unconditional catch-all level cannot be combined")
		}
	}
	return nil
}

func combineConditions(d sqldialect.Dialect, children []Level, sep string) (string, error) {
	parts := make([]string, 0, len(children))
	for _, c := range children {
		cond, err := c.Condition(d)
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+cond+")")
	}
	return strings.Join(parts, sep), nil
}

func joinLabels(children []Level, sep string) string {
	labels := make([]string, 0, len(children))
	for _, c := range children {
		labels = append(labels, c.Label())
	}
	return strings.Join(labels, sep)
}

func unionInputColumns(children []Level) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, c := range children {
		for _, col := range c.InputColumns() {
			if !seen[col] {
				seen[col] = true
				cols = append(cols, col)
			}
		}
	}
	return cols
}
