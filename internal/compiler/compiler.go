// Package compiler renders comparisons and blocking rules to dialect
// SQL plus the metadata the scoring engine consumes. Compilation is
// pure: the output is returned, never executed.
package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/browo097302/splink/internal/blocking"
	"github.com/browo097302/splink/internal/comparison"
	"github.com/browo097302/splink/internal/level"
	"github.com/browo097302/splink/internal/sqldialect"
)

// UsageError reports a structurally invalid comparison handed to the
// compiler, such as a missing terminal catch-all level.
type UsageError struct {
	ComparisonName string
	Message        string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("invalid comparison %q: %s", e.ComparisonName, e.Message)
}

// IsUsageError reports whether err is a UsageError.
func IsUsageError(err error) bool {
	var target *UsageError
	return errors.As(err, &target)
}

// CompiledLevel is one rendered dispatch branch: the SQL condition, the
// numeric value the branch assigns, and scoring metadata.
type CompiledLevel struct {
	SQLCondition          string `json:"sql_condition"`
	Value                 int    `json:"value"`
	Label                 string `json:"label"`
	TermFrequencyEligible bool   `json:"term_frequency_eligible,omitempty"`
}

// CompiledComparison is the full compiled output for one comparison:
// the ordered dispatch branches, the CASE expression implementing
// first-match-wins over them, and identifying metadata.
type CompiledComparison struct {
	OutputColumnName string          `json:"output_column_name"`
	Description      string          `json:"description"`
	Dialect          string          `json:"dialect"`
	Levels           []CompiledLevel `json:"levels"`
	CaseSQL          string          `json:"case_sql"`
	InputColumns     []string        `json:"input_columns,omitempty"`
	Fingerprint      string          `json:"fingerprint"`
}

// gammaPrefix names the output column of the dispatch expression.
const gammaPrefix = "gamma_"

// CompileComparison renders a comparison for a dialect.
//
// Branch values follow the engine's convention: null-check levels get
// -1, the catch-all gets 0, and the remaining levels count down from
// most to least specific so the highest value is the strongest match.
func CompileComparison(c *comparison.Comparison, d sqldialect.Dialect) (*CompiledComparison, error) {
	if err := validateLevels(c); err != nil {
		return nil, err
	}

	positive := 0
	for _, l := range c.Levels {
		if !level.IsElse(l) && !level.IsNullCheck(l) {
			positive++
		}
	}

	compiled := make([]CompiledLevel, 0, len(c.Levels))
	next := positive
	for _, l := range c.Levels {
		cond, err := l.Condition(d)
		if err != nil {
			return nil, err
		}
		value := 0
		switch {
		case level.IsNullCheck(l):
			value = -1
		case level.IsElse(l):
			value = 0
		default:
			value = next
			next--
		}
		compiled = append(compiled, CompiledLevel{
			SQLCondition:          cond,
			Value:                 value,
			Label:                 l.Label(),
			TermFrequencyEligible: l.TermFrequencyEligible(),
		})
	}

	out := &CompiledComparison{
		OutputColumnName: c.OutputColumnName,
		Description:      c.Description,
		Dialect:          string(d),
		Levels:           compiled,
		CaseSQL:          renderCase(c.OutputColumnName, compiled),
		InputColumns:     c.InputColumns(),
	}
	fp, err := comparisonFingerprint(out)
	if err != nil {
		return nil, err
	}
	out.Fingerprint = fp
	return out, nil
}

func validateLevels(c *comparison.Comparison) error {
	if len(c.Levels) == 0 {
		return &UsageError{ComparisonName: c.OutputColumnName, Message: "at least one comparison level is required"}
	}
	last := len(c.Levels) - 1
	if !level.IsElse(c.Levels[last]) {
		return &UsageError{
			ComparisonName: c.OutputColumnName,
			Message:        "the final comparison level must be the unconditional catch-all",
		}
	}
	for i, l := range c.Levels[:last] {
		if level.IsElse(l) {
			return &UsageError{
				ComparisonName: c.OutputColumnName,
				Message:        fmt.Sprintf("the unconditional catch-all must appear exactly once, last; found it at position %d", i),
			}
		}
	}
	return nil
}

// renderCase builds the first-match-wins dispatch expression. The
// catch-all branch becomes the CASE's ELSE arm.
func renderCase(outputColumnName string, levels []CompiledLevel) string {
	var b strings.Builder
	b.WriteString("CASE")
	elseValue := 0
	for _, l := range levels {
		if l.SQLCondition == "ELSE" {
			elseValue = l.Value
			continue
		}
		fmt.Fprintf(&b, " WHEN %s THEN %d", l.SQLCondition, l.Value)
	}
	fmt.Fprintf(&b, " ELSE %d END AS %s%s", elseValue, gammaPrefix, outputColumnName)
	return b.String()
}

// CompileBlockingRule normalizes any accepted blocking rule input form
// and renders it for the dialect.
func CompileBlockingRule(input any, d sqldialect.Dialect) (blocking.Rule, error) {
	creator, err := blocking.ToCreator(input)
	if err != nil {
		return blocking.Rule{}, err
	}
	return creator.GetBlockingRule(d)
}
