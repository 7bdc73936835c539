package comparison

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/browo097302/splink/internal/colexpr"
	"github.com/browo097302/splink/internal/level"
	"github.com/browo097302/splink/internal/sqldialect"
)

var titleCaser = cases.Title(language.English)

// DateComparison is a preconfigured comparison for a date column. The
// defaults give levels:
//
//   - Exact match
//   - Damerau-Levenshtein distance <= 1
//   - Date difference <= 1 month
//   - Date difference <= 1 year
//   - Date difference <= 10 years
//   - Anything else
//
// SeparateFirstJanuary inserts a dedicated "both dates are 1st January
// and equal" level strictly before the general exact match, so 1st Jan
// placeholder dates report the more specific label.
type DateComparison struct {
	Col                  colexpr.ColumnExpression
	DateFormat           string
	InvalidDatesAsNull   bool
	IncludeExactMatch    bool
	SeparateFirstJanuary bool
	FuzzyMetric          string
	FuzzyThresholds      []float64
	DatediffThresholds   []int
	DatediffMetrics      []sqldialect.DateMetric
}

// NewDateComparison creates a date comparison with the library
// defaults. Adjust fields before materializing to customize; an empty
// (non-nil) threshold slice drops the corresponding level family.
func NewDateComparison(col colexpr.ColumnExpression) *DateComparison {
	return &DateComparison{
		Col:                col,
		IncludeExactMatch:  true,
		FuzzyMetric:        "damerau_levenshtein",
		FuzzyThresholds:    []float64{1},
		DatediffThresholds: []int{1, 1, 10},
		DatediffMetrics:    []sqldialect.DateMetric{sqldialect.MetricMonth, sqldialect.MetricYear, sqldialect.MetricYear},
	}
}

func (c *DateComparison) CreateComparisonLevels() ([]level.Level, error) {
	if len(c.DatediffThresholds) != len(c.DatediffMetrics) {
		return nil, level.NewConstructionError("datediff_thresholds",
			"got %d metrics but %d thresholds; the lists must be the same length",
			len(c.DatediffMetrics), len(c.DatediffThresholds))
	}

	nullCol := c.Col
	if c.InvalidDatesAsNull {
		nullCol = nullCol.TryParseDate(c.DateFormat)
	}
	levels := []level.Level{level.NewNullLevel(nullCol)}

	if c.SeparateFirstJanuary {
		firstJan := level.CustomLevel{
			SQLCondition:   fmt.Sprintf("SUBSTR(%s_l, 6, 5) = '01-01'", c.Col.OutputColumnName()),
			LabelForCharts: "Match 1st Jan.",
		}
		both, err := level.NewAnd(firstJan, level.NewExactMatchLevel(c.Col))
		if err != nil {
			return nil, err
		}
		levels = append(levels, both)
	}
	if c.IncludeExactMatch {
		levels = append(levels, level.NewExactMatchLevel(c.Col))
	}

	for _, threshold := range c.FuzzyThresholds {
		l, err := level.NewFuzzyLevel(c.Col, c.FuzzyMetric, threshold)
		if err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	for i, threshold := range c.DatediffThresholds {
		l, err := level.NewDatediffLevel(c.Col, c.DatediffMetrics[i], threshold)
		if err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}

	return append(levels, level.ElseLevel{}), nil
}

func (c *DateComparison) CreateDescription() string {
	var b strings.Builder
	if c.IncludeExactMatch {
		b.WriteString("Exact match ")
		if c.SeparateFirstJanuary {
			b.WriteString("(with separate 1st Jan) ")
		}
		b.WriteString("vs. ")
	}
	if len(c.FuzzyThresholds) > 0 {
		fmt.Fprintf(&b, "%s at threshold%s %s vs. ",
			c.FuzzyMetric, plural(len(c.FuzzyThresholds)), joinFloats(c.FuzzyThresholds))
	}
	if len(c.DatediffThresholds) > 0 {
		pairs := make([]string, len(c.DatediffThresholds))
		for i, threshold := range c.DatediffThresholds {
			pairs[i] = fmt.Sprintf("%s(s): %d", titleCaser.String(string(c.DatediffMetrics[i])), threshold)
		}
		fmt.Fprintf(&b, "dates within the following threshold%s %s vs. ",
			plural(len(c.DatediffThresholds)), strings.Join(pairs, ", "))
	}
	b.WriteString("anything else")
	return b.String()
}

func (c *DateComparison) CreateOutputColumnName() string { return c.Col.OutputColumnName() }

// UK postcode structure, coarsest to finest: area, district, sector.
const (
	PostcodeSectorRegex   = "^[A-Za-z]{1,2}[0-9][A-Za-z0-9]? [0-9]"
	PostcodeDistrictRegex = "^[A-Za-z]{1,2}[0-9][A-Za-z0-9]?"
	PostcodeAreaRegex     = "^[A-Za-z]{1,2}"

	// DefaultValidPostcodeRegex matches a full UK postcode.
	DefaultValidPostcodeRegex = "^[A-Za-z]{1,2}[0-9][A-Za-z0-9]? [0-9][A-Za-z]{2}$"
)

// PostcodeComparison is a preconfigured comparison for a UK postcode
// column: exact match on the full postcode, then on successively
// coarser prefixes (sector, district, area). Supplying lat/long columns
// and KMThresholds appends geographic distance levels after the prefix
// levels.
type PostcodeComparison struct {
	Col                    colexpr.ColumnExpression
	InvalidPostcodesAsNull bool
	ValidPostcodeRegex     string
	IncludeFullMatch       bool
	IncludeSectorMatch     bool
	IncludeDistrictMatch   bool
	IncludeAreaMatch       bool
	LatCol                 colexpr.ColumnExpression
	LongCol                colexpr.ColumnExpression
	KMThresholds           []float64
}

// NewPostcodeComparison creates a postcode comparison with all prefix
// levels enabled and no geographic levels.
func NewPostcodeComparison(col colexpr.ColumnExpression) *PostcodeComparison {
	return &PostcodeComparison{
		Col:                  col,
		ValidPostcodeRegex:   DefaultValidPostcodeRegex,
		IncludeFullMatch:     true,
		IncludeSectorMatch:   true,
		IncludeDistrictMatch: true,
		IncludeAreaMatch:     true,
	}
}

func (c *PostcodeComparison) CreateComparisonLevels() ([]level.Level, error) {
	var levels []level.Level
	if c.InvalidPostcodesAsNull {
		levels = append(levels, level.NewNullLevelWithPattern(c.Col, c.ValidPostcodeRegex))
	} else {
		levels = append(levels, level.NewNullLevel(c.Col))
	}

	if c.IncludeFullMatch {
		levels = append(levels, level.NewExactMatchLevel(c.Col))
	}
	if c.IncludeSectorMatch {
		levels = append(levels, level.NewExactMatchLevel(c.Col.RegexExtract(PostcodeSectorRegex)))
	}
	if c.IncludeDistrictMatch {
		levels = append(levels, level.NewExactMatchLevel(c.Col.RegexExtract(PostcodeDistrictRegex)))
	}
	if c.IncludeAreaMatch {
		levels = append(levels, level.NewExactMatchLevel(c.Col.RegexExtract(PostcodeAreaRegex)))
	}
	for _, threshold := range c.KMThresholds {
		l, err := level.NewDistanceInKMLevel(c.LatCol, c.LongCol, threshold)
		if err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}

	return append(levels, level.ElseLevel{}), nil
}

func (c *PostcodeComparison) CreateDescription() string {
	var b strings.Builder
	if c.IncludeFullMatch {
		b.WriteString("Exact match vs. ")
	}
	if c.IncludeSectorMatch {
		b.WriteString("Exact sector match vs. ")
	}
	if c.IncludeDistrictMatch {
		b.WriteString("Exact district match vs. ")
	}
	if c.IncludeAreaMatch {
		b.WriteString("Exact area match vs. ")
	}
	if len(c.KMThresholds) > 0 {
		fmt.Fprintf(&b, "km distance within threshold%s %s vs. ",
			plural(len(c.KMThresholds)), joinFloats(c.KMThresholds))
	}
	b.WriteString("anything else")
	return b.String()
}

func (c *PostcodeComparison) CreateOutputColumnName() string { return c.Col.OutputColumnName() }

const (
	EmailUsernameRegex = "^[^@]+"
	EmailDomainRegex   = "@([^@]+)$"

	// DefaultValidEmailRegex matches a plausible full email address.
	DefaultValidEmailRegex = "^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+[.][a-zA-Z]{2,}$"
)

// EmailComparison is a preconfigured comparison for an email column:
// exact match, exact username match, then fuzzy matches on the full
// address and on the username.
type EmailComparison struct {
	Col                  colexpr.ColumnExpression
	InvalidEmailsAsNull  bool
	ValidEmailRegex      string
	IncludeExactMatch    bool
	IncludeUsernameMatch bool
	IncludeUsernameFuzzy bool
	IncludeDomainMatch   bool
	FuzzyMetric          string
	FuzzyThresholds      []float64
}

// NewEmailComparison creates an email comparison with the library
// defaults: Jaro-Winkler at 0.88 on the full address and username.
func NewEmailComparison(col colexpr.ColumnExpression) *EmailComparison {
	return &EmailComparison{
		Col:                  col,
		ValidEmailRegex:      DefaultValidEmailRegex,
		IncludeExactMatch:    true,
		IncludeUsernameMatch: true,
		IncludeUsernameFuzzy: true,
		FuzzyMetric:          "jaro_winkler",
		FuzzyThresholds:      []float64{0.88},
	}
}

func (c *EmailComparison) CreateComparisonLevels() ([]level.Level, error) {
	username := c.Col.RegexExtract(EmailUsernameRegex)

	var levels []level.Level
	if c.InvalidEmailsAsNull {
		levels = append(levels, level.NewNullLevelWithPattern(c.Col, c.ValidEmailRegex))
	} else {
		levels = append(levels, level.NewNullLevel(c.Col))
	}

	if c.IncludeExactMatch {
		levels = append(levels, level.NewExactMatchLevel(c.Col))
	}
	if c.IncludeUsernameMatch {
		levels = append(levels, level.NewExactMatchLevel(username))
	}
	for _, threshold := range c.FuzzyThresholds {
		l, err := level.NewFuzzyLevel(c.Col, c.FuzzyMetric, threshold)
		if err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	if c.IncludeUsernameFuzzy {
		for _, threshold := range c.FuzzyThresholds {
			l, err := level.NewFuzzyLevel(username, c.FuzzyMetric, threshold)
			if err != nil {
				return nil, err
			}
			levels = append(levels, l)
		}
	}
	if c.IncludeDomainMatch {
		levels = append(levels, level.NewExactMatchLevel(c.Col.RegexExtract(EmailDomainRegex)))
	}

	return append(levels, level.ElseLevel{}), nil
}

func (c *EmailComparison) CreateDescription() string {
	var b strings.Builder
	if c.IncludeExactMatch {
		b.WriteString("Exact match vs. ")
	}
	if c.IncludeUsernameMatch {
		b.WriteString("Exact username match different domain vs. ")
	}
	if len(c.FuzzyThresholds) > 0 {
		fmt.Fprintf(&b, "%s at threshold%s %s vs. ",
			c.FuzzyMetric, plural(len(c.FuzzyThresholds)), joinFloats(c.FuzzyThresholds))
		if c.IncludeUsernameFuzzy {
			fmt.Fprintf(&b, "%s on username at threshold%s %s vs. ",
				c.FuzzyMetric, plural(len(c.FuzzyThresholds)), joinFloats(c.FuzzyThresholds))
		}
	}
	if c.IncludeDomainMatch {
		b.WriteString("Domain-only match vs. ")
	}
	b.WriteString("anything else")
	return b.String()
}

func (c *EmailComparison) CreateOutputColumnName() string { return c.Col.OutputColumnName() }

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
