package comparison

import (
	"github.com/browo097302/splink/internal/level"
	"github.com/browo097302/splink/internal/sqldialect"
)

// Creator builds the three facets of a comparison. Implementations are
// pure: calling the methods repeatedly returns equivalent results.
type Creator interface {
	// CreateComparisonLevels returns the ordered level list, most
	// specific first, ending with the unconditional catch-all.
	CreateComparisonLevels() ([]level.Level, error)

	// CreateDescription returns the human-readable summary used in
	// charts and diagnostics.
	CreateDescription() string

	// CreateOutputColumnName returns the identifier the compiled
	// output column is derived from.
	CreateOutputColumnName() string
}

// Comparison is the materialized form of a Creator: ordered levels plus
// naming metadata. It is immutable by convention once built and safe to
// compile concurrently for multiple dialects.
type Comparison struct {
	OutputColumnName string
	Description      string
	Levels           []level.Level
}

// New materializes a creator into a Comparison. Construction errors
// from the creator's levels surface here.
func New(c Creator) (*Comparison, error) {
	levels, err := c.CreateComparisonLevels()
	if err != nil {
		return nil, err
	}
	return &Comparison{
		OutputColumnName: c.CreateOutputColumnName(),
		Description:      c.CreateDescription(),
		Levels:           levels,
	}, nil
}

// InputColumns returns the union of base columns read by the levels,
// in first-appearance order.
func (c *Comparison) InputColumns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, l := range c.Levels {
		for _, col := range l.InputColumns() {
			if !seen[col] {
				seen[col] = true
				cols = append(cols, col)
			}
		}
	}
	return cols
}

// Serialized map keys for the plain-mapping representation.
const (
	KeyOutputColumnName = "output_column_name"
	KeyDescription      = "comparison_description"
	KeyComparisonLevels = "comparison_levels"
)

// ToMap renders the comparison to its plain-mapping representation for
// save/load round-tripping. The level conditions are rendered SQL, so
// the result is tied to the dialect.
func (c *Comparison) ToMap(d sqldialect.Dialect) (map[string]any, error) {
	levels := make([]any, 0, len(c.Levels))
	for _, l := range c.Levels {
		m, err := level.ToMap(l, d)
		if err != nil {
			return nil, err
		}
		levels = append(levels, m)
	}
	return map[string]any{
		KeyOutputColumnName: c.OutputColumnName,
		KeyDescription:      c.Description,
		KeyComparisonLevels: levels,
	}, nil
}

func (c *Comparison) fromMapLevels(raw any) error {
	entries, err := levelEntries(raw)
	if err != nil {
		return err
	}
	levels := make([]level.Level, 0, len(entries))
	for _, e := range entries {
		l, err := level.FromMap(e)
		if err != nil {
			return err
		}
		levels = append(levels, l)
	}
	c.Levels = levels
	return nil
}

// FromMap rebuilds a comparison from its plain-mapping representation.
// Levels deserialize through the generic custom target, so a rebuilt
// comparison re-serializes to an equivalent mapping.
func FromMap(m map[string]any) (*Comparison, error) {
	c := &Comparison{}

	raw, ok := m[KeyOutputColumnName]
	if !ok {
		return nil, level.NewConstructionError(KeyOutputColumnName, "missing required key")
	}
	name, ok := raw.(string)
	if !ok {
		return nil, level.NewConstructionError(KeyOutputColumnName,
			"must be a string, but found value %v of type %T", raw, raw)
	}
	c.OutputColumnName = name

	if raw, ok := m[KeyDescription]; ok {
		desc, ok := raw.(string)
		if !ok {
			return nil, level.NewConstructionError(KeyDescription,
				"must be a string, but found value %v of type %T", raw, raw)
		}
		c.Description = desc
	}

	raw, ok = m[KeyComparisonLevels]
	if !ok {
		return nil, level.NewConstructionError(KeyComparisonLevels, "missing required key")
	}
	if err := c.fromMapLevels(raw); err != nil {
		return nil, err
	}
	return c, nil
}

// levelEntries normalizes the serialized level list, which arrives as
// []any from JSON-ish decoders or []map[string]any from direct
// construction.
func levelEntries(raw any) ([]map[string]any, error) {
	switch v := raw.(type) {
	case []map[string]any:
		return v, nil
	case []any:
		entries := make([]map[string]any, 0, len(v))
		for _, e := range v {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, level.NewConstructionError(KeyComparisonLevels,
					"entries must be mappings, but found value %v of type %T", e, e)
			}
			entries = append(entries, m)
		}
		return entries, nil
	default:
		return nil, level.NewConstructionError(KeyComparisonLevels,
			"must be a list, but found value %v of type %T", raw, raw)
	}
}
