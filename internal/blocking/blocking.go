// Package blocking models the predicates that restrict which record
// pairs are considered at all. A blocking rule is structurally a single
// boolean condition over the pair; it compiles to one SQL expression
// tagged with the dialect it was rendered for.
package blocking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/browo097302/splink/internal/colexpr"
	"github.com/browo097302/splink/internal/sqldialect"
)

// Rule is a compiled blocking rule: the rendered SQL condition plus the
// dialect it was rendered for. The downstream engine joins candidate
// pairs on this condition.
type Rule struct {
	BlockingRuleSQL string
	Dialect         sqldialect.Dialect
}

// Creator builds a blocking rule for a dialect.
type Creator interface {
	GetBlockingRule(d sqldialect.Dialect) (Rule, error)
}

// CustomRule carries a raw SQL blocking condition, trusted as-is.
type CustomRule struct {
	BlockingRule string
}

// NewCustomRule creates a blocking rule from a raw SQL condition.
func NewCustomRule(sql string) CustomRule {
	return CustomRule{BlockingRule: sql}
}

func (r CustomRule) GetBlockingRule(d sqldialect.Dialect) (Rule, error) {
	return Rule{BlockingRuleSQL: r.BlockingRule, Dialect: d}, nil
}

// ExactMatchRule blocks on equality of every listed column: the
// block_on helper. At least one column is required.
type ExactMatchRule struct {
	Cols []colexpr.ColumnExpression
}

// BlockOn creates an equality blocking rule over the named columns.
func BlockOn(cols ...colexpr.ColumnExpression) ExactMatchRule {
	return ExactMatchRule{Cols: cols}
}

func (r ExactMatchRule) GetBlockingRule(d sqldialect.Dialect) (Rule, error) {
	if len(r.Cols) == 0 {
		return Rule{}, &InvalidRuleInputError{Value: r.Cols, Reason: "at least one column is required"}
	}
	parts := make([]string, 0, len(r.Cols))
	for _, col := range r.Cols {
		nameL, err := col.NameL(d)
		if err != nil {
			return Rule{}, err
		}
		nameR, err := col.NameR(d)
		if err != nil {
			return Rule{}, err
		}
		parts = append(parts, fmt.Sprintf("%s = %s", nameL, nameR))
	}
	return Rule{BlockingRuleSQL: strings.Join(parts, " AND "), Dialect: d}, nil
}

// InvalidRuleInputError reports a blocking rule input that is neither a
// raw SQL string, a rule mapping, nor a Creator. It names the offending
// value and its type.
type InvalidRuleInputError struct {
	Value  any
	Reason string
}

func (e *InvalidRuleInputError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid blocking rule input: %s (value %v of type %T)", e.Reason, e.Value, e.Value)
	}
	return fmt.Sprintf("invalid blocking rule input: value %v of type %T cannot be interpreted as a rule", e.Value, e.Value)
}

// IsInvalidRuleInput reports whether err is an InvalidRuleInputError.
func IsInvalidRuleInput(err error) bool {
	var target *InvalidRuleInputError
	return errors.As(err, &target)
}

// ToCreator normalizes the accepted blocking rule input forms to a
// Creator: a raw SQL string, a mapping with a "blocking_rule" key, or a
// Creator passed through unchanged.
func ToCreator(input any) (Creator, error) {
	switch v := input.(type) {
	case Creator:
		return v, nil
	case string:
		return NewCustomRule(v), nil
	case map[string]any:
		raw, ok := v["blocking_rule"]
		if !ok {
			return nil, &InvalidRuleInputError{Value: input, Reason: `mapping is missing the "blocking_rule" key`}
		}
		sql, ok := raw.(string)
		if !ok {
			return nil, &InvalidRuleInputError{Value: raw, Reason: `"blocking_rule" must be a string`}
		}
		return NewCustomRule(sql), nil
	default:
		return nil, &InvalidRuleInputError{Value: input}
	}
}

// RulesFromArgs normalizes a caller-supplied scalar or slice of rule
// inputs to compiled rules. A single string or Creator is treated as a
// one-element list.
func RulesFromArgs(input any, d sqldialect.Dialect) ([]Rule, error) {
	var entries []any
	switch v := input.(type) {
	case []any:
		entries = v
	case []string:
		entries = make([]any, len(v))
		for i, s := range v {
			entries[i] = s
		}
	case []Creator:
		entries = make([]any, len(v))
		for i, c := range v {
			entries[i] = c
		}
	default:
		entries = []any{input}
	}

	rules := make([]Rule, 0, len(entries))
	for _, entry := range entries {
		creator, err := ToCreator(entry)
		if err != nil {
			return nil, err
		}
		rule, err := creator.GetBlockingRule(d)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
