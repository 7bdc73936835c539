// Package sqlcheck validates compiled SQL fragments by preparing them
// against an in-memory SQLite database holding a synthetic pair table.
// Preparation exercises the parser only: no linkage SQL ever runs over
// data. It applies to the sqlite dialect output; other dialects use
// syntax SQLite cannot parse.
package sqlcheck

import (
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Checker holds an in-memory SQLite connection with a two-sided pair
// table covering the columns under comparison.
type Checker struct {
	db *sql.DB
}

// Open creates a checker with a pair table holding _l and _r variants
// of each column.
func Open(columns []string) (*Checker, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// The in-memory database vanishes if the pool opens a second
	// connection, so pin it to one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(pairTableDDL(columns)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create pair table: %w", err)
	}
	return &Checker{db: db}, nil
}

// Close closes the database connection.
func (c *Checker) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func pairTableDDL(columns []string) string {
	var cols []string
	for _, col := range columns {
		cols = append(cols, fmt.Sprintf("%s_l TEXT, %s_r TEXT", col, col))
	}
	if len(cols) == 0 {
		cols = append(cols, "placeholder_l TEXT, placeholder_r TEXT")
	}
	return fmt.Sprintf("CREATE TABLE pairs (%s)", strings.Join(cols, ", "))
}

var pairColumnPattern = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)_[lr]\b`)

// ColumnsFromSQL extracts the base names of the _l/_r pair columns a
// SQL fragment references, sorted. It lets the checker build a pair
// table for fragments whose source levels carry no column metadata,
// such as deserialized custom levels.
func ColumnsFromSQL(sqlText string) []string {
	seen := make(map[string]bool)
	for _, m := range pairColumnPattern.FindAllStringSubmatch(sqlText, -1) {
		seen[m[1]] = true
	}
	cols := make([]string, 0, len(seen))
	for col := range seen {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// CheckCondition prepares a boolean condition over the pair table and
// reports any syntax error.
func (c *Checker) CheckCondition(condition string) error {
	return c.prepare(fmt.Sprintf("SELECT %s FROM pairs", condition))
}

// CheckCase prepares a full dispatch expression over the pair table.
func (c *Checker) CheckCase(caseSQL string) error {
	return c.prepare(fmt.Sprintf("SELECT %s FROM pairs", caseSQL))
}

func (c *Checker) prepare(query string) error {
	stmt, err := c.db.Prepare(query)
	if err != nil {
		return fmt.Errorf("statement failed to parse: %w", err)
	}
	return stmt.Close()
}
