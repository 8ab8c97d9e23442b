package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/querydeck/querydeck/internal/dialect"
	"github.com/querydeck/querydeck/internal/model"
)

// MySQLStore implements Store for MySQL and MariaDB.
type MySQLStore struct {
	sqlStore
}

// OpenMySQL connects to a MySQL database.
// dsn is a go-sql-driver DSN (e.g. "user:pass@tcp(host:3306)/db").
func OpenMySQL(dsn string) (*MySQLStore, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &MySQLStore{sqlStore{
		driver:  "mysql",
		name:    dsn,
		dialect: dialect.MySQL,
		conn:    conn,
	}}, nil
}

// ListTables returns tables in the connection's current schema.
func (s *MySQLStore) ListTables() ([]model.TableRef, error) {
	rows, err := s.conn.Query(`
		SELECT TABLE_SCHEMA, TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_TYPE = 'BASE TABLE' AND TABLE_SCHEMA = DATABASE()
		ORDER BY TABLE_NAME`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []model.TableRef
	for rows.Next() {
		var t model.TableRef
		if err := rows.Scan(&t.Schema, &t.Name); err != nil {
			return nil, fmt.Errorf("scanning table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// TableColumns reads column metadata from INFORMATION_SCHEMA. COLUMN_KEY
// marks primary keys; the EXTRA field carries the auto_increment flag.
func (s *MySQLStore) TableColumns(schema, table string) ([]model.Column, error) {
	rows, err := s.conn.Query(`
		SELECT
			COLUMN_NAME,
			DATA_TYPE,
			IS_NULLABLE,
			COALESCE(COLUMN_DEFAULT, ''),
			COLUMN_KEY,
			EXTRA
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE()) AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("describing table: %w", err)
	}
	defer rows.Close()

	var cols []model.Column
	for rows.Next() {
		var c model.Column
		var nullable, key, extra string
		if err := rows.Scan(&c.Name, &c.DataType, &nullable, &c.DefaultValue, &key, &extra); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		c.Nullable = nullable == "YES"
		c.IsPrimaryKey = key == "PRI"
		c.IsAutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")
		cols = append(cols, c)
	}
	return cols, rows.Err()
}
