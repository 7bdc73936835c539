// Package sqldialect maps abstract comparison operations to the concrete
// SQL syntax of each supported backend.
//
// All other internal packages that render SQL go through this package;
// it imports nothing internal. A missing mapping for a requested
// operation is always a typed UnsupportedOperationError, never a
// fallback to syntax that happens to parse somewhere else.
package sqldialect
