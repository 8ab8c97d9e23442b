package database

import (
	"path/filepath"
	"testing"

	"github.com/querydeck/querydeck/internal/dialect"
	"github.com/querydeck/querydeck/internal/querybuilder"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	err = db.ExecStatements([]string{
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			email TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true
		)`,
		`INSERT INTO users (email, active) VALUES ('alice@example.com', true)`,
		`INSERT INTO users (email, active) VALUES ('bob@example.com', false)`,
	})
	if err != nil {
		t.Fatalf("failed to seed test db: %v", err)
	}
	return db
}

func TestSQLiteListTables(t *testing.T) {
	db := createTestStore(t)

	tables, err := db.ListTables()
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if tables[0].Schema != "main" || tables[0].Name != "users" {
		t.Errorf("unexpected table ref: %+v", tables[0])
	}
}

func TestSQLiteTableColumns(t *testing.T) {
	db := createTestStore(t)

	cols, err := db.TableColumns("main", "users")
	if err != nil {
		t.Fatalf("TableColumns failed: %v", err)
	}
	if len(cols) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(cols))
	}

	id := cols[0]
	if !id.IsPrimaryKey {
		t.Error("id should be flagged as primary key")
	}
	if !id.IsAutoIncrement {
		t.Error("INTEGER PRIMARY KEY is a rowid alias and should be auto-increment")
	}

	email := cols[1]
	if email.Nullable {
		t.Error("email is NOT NULL")
	}
	if email.IsPrimaryKey || email.IsAutoIncrement {
		t.Error("email should carry no key flags")
	}

	active := cols[2]
	if active.DefaultValue != "true" {
		t.Errorf("expected default 'true', got %q", active.DefaultValue)
	}
}

func TestSQLiteQueryPageWithCompiledSQL(t *testing.T) {
	db := createTestStore(t)

	// Feed the store exactly what the builder produces.
	limit := 10
	m := &querybuilder.Model{
		Dialect: dialect.SQLite,
		Tables:  []querybuilder.Table{{Alias: "u", Schema: "main", Name: "users"}},
		Columns: []querybuilder.Column{
			{ID: "c1", TableAlias: "u", ColumnName: "id"},
			{ID: "c2", TableAlias: "u", ColumnName: "email"},
		},
		OrderBy: []querybuilder.OrderByColumn{{ID: "o1", TableAlias: "u", ColumnName: "id", Direction: "ASC"}},
		Limit:   &limit,
	}

	cols, rows, err := db.QueryPage(querybuilder.Compile(m))
	if err != nil {
		t.Fatalf("QueryPage failed: %v", err)
	}
	if len(cols) != 2 {
		t.Fatalf("expected 2 columns, got %v", cols)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["email"] != "alice@example.com" {
		t.Errorf("unexpected first row: %v", rows[0])
	}
}

func TestSQLiteExecStatementsRollsBackOnError(t *testing.T) {
	db := createTestStore(t)

	err := db.ExecStatements([]string{
		`INSERT INTO users (email) VALUES ('carol@example.com')`,
		`INSERT INTO no_such_table (email) VALUES ('x')`,
	})
	if err == nil {
		t.Fatal("expected error from bad statement")
	}

	// The first statement must have been rolled back with the batch.
	_, rows, err := db.QueryPage("SELECT id FROM users")
	if err != nil {
		t.Fatalf("QueryPage failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows after rollback, got %d", len(rows))
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open("oracle", "dsn"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
