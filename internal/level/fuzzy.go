package level

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/browo097302/splink/internal/colexpr"
	"github.com/browo097302/splink/internal/sqldialect"
)

// fuzzyMetrics maps user-facing metric names to abstract operations and
// display names. This is the valid set named in unknown-metric errors.
var fuzzyMetrics = map[string]struct {
	op      sqldialect.Op
	display string
}{
	"levenshtein":         {sqldialect.OpLevenshtein, "Levenshtein distance"},
	"damerau_levenshtein": {sqldialect.OpDamerauLevenshtein, "Damerau-Levenshtein distance"},
	"jaro":                {sqldialect.OpJaro, "Jaro similarity"},
	"jaro_winkler":        {sqldialect.OpJaroWinkler, "Jaro-Winkler similarity"},
}

// FuzzyMetricNames returns the valid fuzzy metric names, sorted.
func FuzzyMetricNames() []string {
	names := make([]string, 0, len(fuzzyMetrics))
	for name := range fuzzyMetrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func quotedMetricNames() string {
	names := FuzzyMetricNames()
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}

// FuzzyLevel matches when a string distance or similarity metric over
// the two sides clears a threshold. Polarity is metric-dependent:
// distance metrics match at <= threshold, similarity metrics at
// >= threshold.
type FuzzyLevel struct {
	Col       colexpr.ColumnExpression
	Metric    string
	Threshold float64

	op       sqldialect.Op
	polarity sqldialect.Polarity
}

// NewFuzzyLevel creates a fuzzy level from a metric name. Unknown
// metric names fail immediately, naming the valid set. Distance
// thresholds must be non-negative integers; similarity thresholds must
// lie in [0, 1].
func NewFuzzyLevel(col colexpr.ColumnExpression, metric string, threshold float64) (*FuzzyLevel, error) {
	m, ok := fuzzyMetrics[metric]
	if !ok {
		return nil, NewConstructionError("fuzzy_metric",
			"invalid metric %q: must choose one of %s", metric, quotedMetricNames())
	}

	polarity, _ := sqldialect.FuzzyPolarity(m.op)
	switch polarity {
	case sqldialect.PolarityDistance:
		if threshold < 0 || threshold != math.Trunc(threshold) {
			return nil, NewConstructionError("distance_threshold",
				"%s threshold must be a non-negative integer, got %v", metric, threshold)
		}
	case sqldialect.PolaritySimilarity:
		if threshold < 0 || threshold > 1 {
			return nil, NewConstructionError("similarity_threshold",
				"%s threshold must lie in [0, 1], got %v", metric, threshold)
		}
	}

	return &FuzzyLevel{
		Col:       col,
		Metric:    metric,
		Threshold: threshold,
		op:        m.op,
		polarity:  polarity,
	}, nil
}

// NewLevenshteinLevel creates a Levenshtein distance level.
func NewLevenshteinLevel(col colexpr.ColumnExpression, threshold int) (*FuzzyLevel, error) {
	return NewFuzzyLevel(col, "levenshtein", float64(threshold))
}

// NewDamerauLevenshteinLevel creates a Damerau-Levenshtein distance level.
func NewDamerauLevenshteinLevel(col colexpr.ColumnExpression, threshold int) (*FuzzyLevel, error) {
	return NewFuzzyLevel(col, "damerau_levenshtein", float64(threshold))
}

// NewJaroLevel creates a Jaro similarity level.
func NewJaroLevel(col colexpr.ColumnExpression, threshold float64) (*FuzzyLevel, error) {
	return NewFuzzyLevel(col, "jaro", threshold)
}

// NewJaroWinklerLevel creates a Jaro-Winkler similarity level.
func NewJaroWinklerLevel(col colexpr.ColumnExpression, threshold float64) (*FuzzyLevel, error) {
	return NewFuzzyLevel(col, "jaro_winkler", threshold)
}

func (*FuzzyLevel) levelNode() {}

func (l *FuzzyLevel) Condition(d sqldialect.Dialect) (string, error) {
	nameL, err := l.Col.NameL(d)
	if err != nil {
		return "", err
	}
	nameR, err := l.Col.NameR(d)
	if err != nil {
		return "", err
	}
	call, err := sqldialect.RenderFuzzy(d, l.op, nameL, nameR)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", call, l.polarity.ComparisonOperator(), l.thresholdText()), nil
}

func (l *FuzzyLevel) thresholdText() string {
	if l.polarity == sqldialect.PolarityDistance {
		return strconv.Itoa(int(l.Threshold))
	}
	return strconv.FormatFloat(l.Threshold, 'g', -1, 64)
}

func (l *FuzzyLevel) Label() string {
	return fmt.Sprintf("%s of %s %s %s",
		fuzzyMetrics[l.Metric].display, l.Col.Label(),
		l.polarity.ComparisonOperator(), l.thresholdText())
}

func (*FuzzyLevel) TermFrequencyEligible() bool { return false }

func (l *FuzzyLevel) InputColumns() []string { return []string{l.Col.Column()} }

// DisplayMetric returns the human display name of a valid metric name,
// or the name itself if unknown.
func DisplayMetric(metric string) string {
	if m, ok := fuzzyMetrics[metric]; ok {
		return m.display
	}
	return metric
}
