// Package level defines the atomic predicate units of a comparison: a
// closed set of comparison level variants, each rendering a boolean SQL
// condition over one or more column expressions for a target dialect.
//
// Level is a sealed interface - only types in this package implement
// it. The marker method pattern prevents external implementations and
// enables exhaustive type switches in the compiler. CustomLevel is the
// escape hatch for conditions outside the named variants and the
// generic target when deserializing saved comparisons.
//
// All parameter-domain validation (negative thresholds, unknown metric
// names, invalid date units) happens at construction time. Rendering a
// level can only fail because the target dialect lacks an operation.
package level
