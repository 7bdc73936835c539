package level

import (
	"github.com/browo097302/splink/internal/sqldialect"
)

// Serialized map keys for the plain-mapping representation of a level.
// The serialized form carries rendered SQL, so it is tied to the
// dialect it was rendered for.
const (
	KeySQLCondition  = "sql_condition"
	KeyLabel         = "label_for_charts"
	KeyTermFrequency = "term_frequency_adjustments"
	KeyIsNullLevel   = "is_null_level"
)

// ToMap renders a level to its plain-mapping representation for
// save/load round-tripping. ElseLevel serializes its "ELSE" sentinel.
func ToMap(l Level, d sqldialect.Dialect) (map[string]any, error) {
	cond, err := l.Condition(d)
	if err != nil {
		return nil, err
	}
	m := map[string]any{
		KeySQLCondition: cond,
		KeyLabel:        l.Label(),
	}
	if l.TermFrequencyEligible() {
		m[KeyTermFrequency] = true
	}
	if IsNullCheck(l) {
		m[KeyIsNullLevel] = true
	}
	return m, nil
}

// FromMap rebuilds a level from its plain-mapping representation.
// The "ELSE" sentinel becomes ElseLevel; everything else becomes a
// CustomLevel - the generic deserialization target for any condition
// not covered by a named variant.
func FromMap(m map[string]any) (Level, error) {
	raw, ok := m[KeySQLCondition]
	if !ok {
		return nil, NewConstructionError(KeySQLCondition, "missing required key")
	}
	cond, ok := raw.(string)
	if !ok {
		return nil, NewConstructionError(KeySQLCondition,
			"must be a string, but found value %v of type %T", raw, raw)
	}

	label := ""
	if raw, ok := m[KeyLabel]; ok {
		label, ok = raw.(string)
		if !ok {
			return nil, NewConstructionError(KeyLabel,
				"must be a string, but found value %v of type %T", raw, raw)
		}
	}

	tf := false
	if raw, ok := m[KeyTermFrequency]; ok {
		tf, ok = raw.(bool)
		if !ok {
			return nil, NewConstructionError(KeyTermFrequency,
				"must be a bool, but found value %v of type %T", raw, raw)
		}
	}

	nullLevel := false
	if raw, ok := m[KeyIsNullLevel]; ok {
		nullLevel, ok = raw.(bool)
		if !ok {
			return nil, NewConstructionError(KeyIsNullLevel,
				"must be a bool, but found value %v of type %T", raw, raw)
		}
	}

	if cond == elseCondition {
		return ElseLevel{}, nil
	}
	return CustomLevel{
		SQLCondition:             cond,
		LabelForCharts:           label,
		TermFrequencyAdjustments: tf,
		IsNullLevel:              nullLevel,
	}, nil
}
