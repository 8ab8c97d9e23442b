// Package database owns the live connection: opening it per driver,
// introspecting schema metadata for the browser tree and the grid editor,
// and executing statement text produced elsewhere. The query construction
// packages never import this one; they only consume the metadata it
// produces.
package database

import (
	"database/sql"
	"fmt"

	"github.com/querydeck/querydeck/internal/dialect"
	"github.com/querydeck/querydeck/internal/model"
)

// Store defines the operations the application needs from a connected
// database. app.go depends on this interface, not on a concrete store.
type Store interface {
	// Schema browsing
	ListTables() ([]model.TableRef, error)
	TableColumns(schema, table string) ([]model.Column, error)

	// Execution of SQL text built by the query construction engine.
	// QueryPage runs a SELECT and returns column names plus rows;
	// ExecStatements runs a batch of DML inside one transaction.
	QueryPage(query string) ([]string, []model.Row, error)
	ExecStatements(statements []string) error

	// Connection identity
	Driver() string
	Dialect() dialect.Dialect
	Name() string

	Close() error
}

// sqlStore is the database/sql plumbing shared by every concrete store.
type sqlStore struct {
	driver  string
	name    string
	dialect dialect.Dialect
	conn    *sql.DB
}

func (s *sqlStore) Driver() string           { return s.driver }
func (s *sqlStore) Dialect() dialect.Dialect { return s.dialect }
func (s *sqlStore) Name() string             { return s.name }

func (s *sqlStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// QueryPage executes a SELECT and materializes the result generically,
// since the grid has no compile-time row type. Byte slices are converted to
// strings so values survive the JSON bridge to the frontend.
func (s *sqlStore) QueryPage(query string) ([]string, []model.Row, error) {
	rows, err := s.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("running query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("reading columns: %w", err)
	}

	var result []model.Row
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(model.Row, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		result = append(result, row)
	}

	return cols, result, rows.Err()
}

// ExecStatements runs the batch inside one transaction so a grid commit is
// all-or-nothing.
func (s *sqlStore) ExecStatements(statements []string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt, err)
		}
	}
	return tx.Commit()
}
