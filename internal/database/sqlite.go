package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/querydeck/querydeck/internal/dialect"
	"github.com/querydeck/querydeck/internal/model"
)

// SQLiteStore implements Store for SQLite database files.
type SQLiteStore struct {
	sqlStore
}

// OpenSQLite opens a SQLite database file.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &SQLiteStore{sqlStore{
		driver:  "sqlite",
		name:    path,
		dialect: dialect.SQLite,
		conn:    conn,
	}}, nil
}

// ListTables reads sqlite_master, skipping SQLite's internal tables.
// SQLite has a single schema, reported as "main".
func (s *SQLiteStore) ListTables() ([]model.TableRef, error) {
	rows, err := s.conn.Query(`
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []model.TableRef
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table: %w", err)
		}
		tables = append(tables, model.TableRef{Schema: "main", Name: name})
	}
	return tables, rows.Err()
}

// TableColumns reads column metadata from pragma_table_info. An INTEGER
// primary key is a rowid alias, which SQLite fills itself, so it is
// reported as auto-increment.
func (s *SQLiteStore) TableColumns(schema, table string) ([]model.Column, error) {
	rows, err := s.conn.Query(
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`,
		table)
	if err != nil {
		return nil, fmt.Errorf("describing table: %w", err)
	}
	defer rows.Close()

	var cols []model.Column
	for rows.Next() {
		var c model.Column
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&c.Name, &c.DataType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		c.Nullable = notNull == 0
		c.IsPrimaryKey = pk > 0
		c.DefaultValue = dflt.String
		c.IsAutoIncrement = c.IsPrimaryKey && strings.EqualFold(c.DataType, "INTEGER")
		cols = append(cols, c)
	}
	return cols, rows.Err()
}
