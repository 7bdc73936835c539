package sqldialect

import (
	"errors"
	"fmt"
)

// Dialect identifies a supported SQL backend.
type Dialect string

const (
	DuckDB   Dialect = "duckdb"
	Spark    Dialect = "spark"
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
	Athena   Dialect = "athena"
)

// All returns the supported dialects in stable order.
func All() []Dialect {
	return []Dialect{DuckDB, Spark, SQLite, Postgres, Athena}
}

// Parse resolves a dialect name. Unknown names fail immediately with an
// UnknownDialectError; there is no default dialect.
func Parse(name string) (Dialect, error) {
	for _, d := range All() {
		if string(d) == name {
			return d, nil
		}
	}
	return "", &UnknownDialectError{Name: name}
}

// UnknownDialectError indicates a dialect name outside the supported set.
type UnknownDialectError struct {
	Name string
}

func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("unknown SQL dialect %q: must be one of %v", e.Name, All())
}

// UnsupportedOperationError indicates an abstract operation with no
// implementation in the requested dialect. It names both sides so the
// fault is attributable without reading the rendered SQL.
type UnsupportedOperationError struct {
	Op      Op
	Dialect Dialect
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation %q has no implementation for dialect %q", e.Op, e.Dialect)
}

// IsUnsupportedOperation reports whether err is (or wraps) an
// UnsupportedOperationError.
func IsUnsupportedOperation(err error) bool {
	var ue *UnsupportedOperationError
	return errors.As(err, &ue)
}

func unsupported(op Op, d Dialect) *UnsupportedOperationError {
	return &UnsupportedOperationError{Op: op, Dialect: d}
}
