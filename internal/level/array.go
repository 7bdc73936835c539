package level

import (
	"fmt"

	"github.com/browo097302/splink/internal/colexpr"
	"github.com/browo097302/splink/internal/sqldialect"
)

// ArrayIntersectLevel matches when the set intersection of the two
// array values has at least MinSize elements.
type ArrayIntersectLevel struct {
	Col     colexpr.ColumnExpression
	MinSize int
}

// NewArrayIntersectLevel creates an array-intersection level. A
// negative size is a construction-time error.
func NewArrayIntersectLevel(col colexpr.ColumnExpression, minSize int) (*ArrayIntersectLevel, error) {
	if minSize < 0 {
		return nil, NewConstructionError("min_intersection",
			"intersection size threshold must be a non-negative integer, got %d", minSize)
	}
	return &ArrayIntersectLevel{Col: col, MinSize: minSize}, nil
}

func (*ArrayIntersectLevel) levelNode() {}

func (l *ArrayIntersectLevel) Condition(d sqldialect.Dialect) (string, error) {
	nameL, err := l.Col.NameL(d)
	if err != nil {
		return "", err
	}
	nameR, err := l.Col.NameR(d)
	if err != nil {
		return "", err
	}
	size, err := sqldialect.RenderArrayIntersectSize(d, nameL, nameR)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s >= %d", size, l.MinSize), nil
}

func (l *ArrayIntersectLevel) Label() string {
	return fmt.Sprintf("Array intersection size >= %d", l.MinSize)
}

func (*ArrayIntersectLevel) TermFrequencyEligible() bool { return false }

func (l *ArrayIntersectLevel) InputColumns() []string { return []string{l.Col.Column()} }

// ArraySubsetLevel matches when one array is a subset of the other AND
// both are non-empty. An empty array never satisfies the level even
// though the empty set is mathematically a subset of everything - empty
// data carries no matching evidence.
type ArraySubsetLevel struct {
	Col colexpr.ColumnExpression
}

// NewArraySubsetLevel creates an array-subset level.
func NewArraySubsetLevel(col colexpr.ColumnExpression) ArraySubsetLevel {
	return ArraySubsetLevel{Col: col}
}

func (ArraySubsetLevel) levelNode() {}

func (l ArraySubsetLevel) Condition(d sqldialect.Dialect) (string, error) {
	nameL, err := l.Col.NameL(d)
	if err != nil {
		return "", err
	}
	nameR, err := l.Col.NameR(d)
	if err != nil {
		return "", err
	}
	intersect, err := sqldialect.RenderArrayIntersectSize(d, nameL, nameR)
	if err != nil {
		return "", err
	}
	sizeL, err := sqldialect.RenderArraySize(d, nameL)
	if err != nil {
		return "", err
	}
	sizeR, err := sqldialect.RenderArraySize(d, nameR)
	if err != nil {
		return "", err
	}
	smaller, err := sqldialect.RenderLeast(d, sizeL, sizeR)
	if err != nil {
		return "", err
	}
	// Subset holds when the intersection covers the smaller side; the
	// trailing guard excludes empty arrays.
	return fmt.Sprintf("%s = %s AND %s > 0", intersect, smaller, smaller), nil
}

func (l ArraySubsetLevel) Label() string { return "Array subset" }

func (ArraySubsetLevel) TermFrequencyEligible() bool { return false }

func (l ArraySubsetLevel) InputColumns() []string { return []string{l.Col.Column()} }
