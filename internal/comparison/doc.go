// Package comparison models the comparison of one logical attribute
// across a candidate record pair: an ordered list of match levels from
// most to least specific, terminated by an unconditional catch-all.
//
// Creators are the construction surface. A Creator produces the level
// list, a human-readable description and an output column name; the
// Comparison itself is the pure data result, ready for compilation.
// The library creators (ExactMatch, LevenshteinAtThresholds, ...) cover
// the common shapes; CustomComparison is the escape hatch and the
// generic deserialization target.
package comparison
