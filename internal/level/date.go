package level

import (
	"fmt"

	"github.com/browo097302/splink/internal/colexpr"
	"github.com/browo097302/splink/internal/sqldialect"
)

// DatediffLevel matches when the absolute difference between the two
// dates, measured in Metric units, is at most Threshold.
//
// If the column expression parses strings to dates and parsing fails,
// the value is NULL and the condition is simply false for that pair;
// whether such pairs instead route to the null branch is decided by the
// comparison's null level configuration, not here.
type DatediffLevel struct {
	Col       colexpr.ColumnExpression
	Metric    sqldialect.DateMetric
	Threshold int
}

// NewDatediffLevel creates a date-difference level. The metric must be
// day, month or year and the threshold non-negative.
func NewDatediffLevel(col colexpr.ColumnExpression, metric sqldialect.DateMetric, threshold int) (*DatediffLevel, error) {
	if !sqldialect.ValidDateMetric(metric) {
		return nil, NewConstructionError("date_metric",
			"invalid metric %q: must be one of %v", metric, sqldialect.DateMetrics())
	}
	if threshold < 0 {
		return nil, NewConstructionError("date_threshold",
			"threshold must be non-negative, got %d", threshold)
	}
	return &DatediffLevel{Col: col, Metric: metric, Threshold: threshold}, nil
}

func (*DatediffLevel) levelNode() {}

func (l *DatediffLevel) Condition(d sqldialect.Dialect) (string, error) {
	nameL, err := l.Col.NameL(d)
	if err != nil {
		return "", err
	}
	nameR, err := l.Col.NameR(d)
	if err != nil {
		return "", err
	}
	diff, err := sqldialect.RenderDateDiff(d, l.Metric, nameL, nameR)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s <= %d", diff, l.Threshold), nil
}

func (l *DatediffLevel) Label() string {
	return fmt.Sprintf("Abs date difference of %s <= %d %s", l.Col.Label(), l.Threshold, l.Metric)
}

func (*DatediffLevel) TermFrequencyEligible() bool { return false }

func (l *DatediffLevel) InputColumns() []string { return []string{l.Col.Column()} }
