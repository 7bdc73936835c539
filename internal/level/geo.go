package level

import (
	"fmt"
	"strconv"

	"github.com/browo097302/splink/internal/colexpr"
	"github.com/browo097302/splink/internal/sqldialect"
)

// DistanceInKMLevel matches when the great-circle (haversine) distance
// between the two lat/long pairs is at most KMThreshold kilometres.
type DistanceInKMLevel struct {
	LatCol      colexpr.ColumnExpression
	LongCol     colexpr.ColumnExpression
	KMThreshold float64
}

// NewDistanceInKMLevel creates a geographic distance level. A negative
// threshold is a construction-time error.
func NewDistanceInKMLevel(latCol, longCol colexpr.ColumnExpression, kmThreshold float64) (*DistanceInKMLevel, error) {
	if kmThreshold < 0 {
		return nil, NewConstructionError("km_threshold",
			"distance threshold must be non-negative, got %v", kmThreshold)
	}
	return &DistanceInKMLevel{LatCol: latCol, LongCol: longCol, KMThreshold: kmThreshold}, nil
}

func (*DistanceInKMLevel) levelNode() {}

func (l *DistanceInKMLevel) Condition(d sqldialect.Dialect) (string, error) {
	latL, err := l.LatCol.NameL(d)
	if err != nil {
		return "", err
	}
	latR, err := l.LatCol.NameR(d)
	if err != nil {
		return "", err
	}
	longL, err := l.LongCol.NameL(d)
	if err != nil {
		return "", err
	}
	longR, err := l.LongCol.NameR(d)
	if err != nil {
		return "", err
	}
	distance, err := sqldialect.RenderGreatCircleKM(d, latL, latR, longL, longR)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s <= %s", distance, strconv.FormatFloat(l.KMThreshold, 'g', -1, 64)), nil
}

func (l *DistanceInKMLevel) Label() string {
	return fmt.Sprintf("Distance in km <= %s", strconv.FormatFloat(l.KMThreshold, 'g', -1, 64))
}

func (*DistanceInKMLevel) TermFrequencyEligible() bool { return false }

func (l *DistanceInKMLevel) InputColumns() []string {
	return []string{l.LatCol.Column(), l.LongCol.Column()}
}
