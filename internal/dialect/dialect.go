// Package dialect holds the per-database formatting rules shared by the
// query builder and the grid DML generator: identifier quoting, literal
// formatting, and pagination clause shape. Everything here is a pure
// function over its inputs; no function in this package can fail.
package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect identifies the SQL syntax variant of a connection's driver.
type Dialect string

const (
	Postgres  Dialect = "postgres"
	MySQL     Dialect = "mysql"
	SQLite    Dialect = "sqlite"
	SQLServer Dialect = "sqlserver"
	// Mongo is a passthrough variant: identifiers are emitted unquoted and
	// no SQL-specific rewriting applies.
	Mongo Dialect = "mongodb"
)

// QuoteIdent wraps an identifier in the dialect's quoting character.
// MySQL uses backticks, the other SQL dialects use double quotes, and the
// Mongo passthrough leaves the name untouched.
func QuoteIdent(d Dialect, name string) string {
	switch d {
	case MySQL:
		return "`" + name + "`"
	case Mongo:
		return name
	default:
		return `"` + name + `"`
	}
}

// QuoteQualified quotes a schema-qualified table name. An empty schema
// yields just the quoted table name.
func QuoteQualified(d Dialect, schema, name string) string {
	if schema == "" {
		return QuoteIdent(d, name)
	}
	return QuoteIdent(d, schema) + "." + QuoteIdent(d, name)
}

// FormatValue renders a raw value as a SQL literal. typeHint is the target
// column's declared type name ("" when unknown) and only influences the
// boolean-string case below. The function is total: every input has a
// defined textual output and nothing is ever rejected.
//
// Rules:
//   - nil renders as unquoted NULL
//   - booleans render as unquoted true/false
//   - numeric values render as unquoted decimal text
//   - strings render single-quoted with embedded quotes doubled, except the
//     literal texts "true"/"false" against a column whose type name contains
//     "bool", which stay unquoted so boolean semantics survive values that
//     arrive as strings from the grid
//   - anything else is stringified and quoted like a string
func FormatValue(d Dialect, v interface{}, typeHint string) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		if (val == "true" || val == "false") && strings.Contains(strings.ToLower(typeHint), "bool") {
			return val
		}
		return quoteString(val)
	default:
		return quoteString(fmt.Sprintf("%v", v))
	}
}

// quoteString single-quotes s, doubling embedded single quotes.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Pagination returns the dialect's pagination clause for the given limit and
// offset (nil means absent). Most dialects emit LIMIT and OFFSET as separate
// keywords; SQL Server emits OFFSET n ROWS with an optional FETCH NEXT, and
// does so whenever either value is present. An empty string means no clause.
func Pagination(d Dialect, limit, offset *int) string {
	if limit == nil && offset == nil {
		return ""
	}

	if d == SQLServer {
		off := 0
		if offset != nil {
			off = *offset
		}
		clause := fmt.Sprintf("OFFSET %d ROWS", off)
		if limit != nil {
			clause += fmt.Sprintf(" FETCH NEXT %d ROWS ONLY", *limit)
		}
		return clause
	}

	var parts []string
	if limit != nil {
		parts = append(parts, fmt.Sprintf("LIMIT %d", *limit))
	}
	if offset != nil {
		parts = append(parts, fmt.Sprintf("OFFSET %d", *offset))
	}
	return strings.Join(parts, "\n")
}

// FromDriver maps a connection profile's driver name to its dialect.
// Unknown drivers fall back to the Postgres rules (double-quote quoting).
func FromDriver(driver string) Dialect {
	switch driver {
	case "postgres", "pgx":
		return Postgres
	case "mysql":
		return MySQL
	case "sqlite", "sqlite3":
		return SQLite
	case "sqlserver", "mssql":
		return SQLServer
	case "mongodb":
		return Mongo
	default:
		return Postgres
	}
}
