package gridedit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/querydeck/querydeck/internal/dialect"
	"github.com/querydeck/querydeck/internal/model"
)

// ErrNoPrimaryKey is returned when UPDATE or DELETE generation is attempted
// against a table with no primary key. Targeting rows by non-unique
// criteria could corrupt unrelated rows, so this is a hard failure rather
// than a degraded statement.
var ErrNoPrimaryKey = errors.New("table has no primary key to identify rows")

// serverDefaultMarkers are default-expression fragments that mean the
// server fills the column itself; matching columns are omitted from
// generated INSERTs. Matching is a case-insensitive substring test.
var serverDefaultMarkers = []string{
	"uuid_generate",
	"gen_random_uuid",
	"current_timestamp",
	"now()",
	"getdate()",
}

// GenerateUpdates builds one UPDATE per edited row. SET clauses carry the
// edited values; the WHERE clause targets the row by its original stored
// primary-key values, never the edited ones.
func GenerateUpdates(t *Tracker, d dialect.Dialect, schema, table string) ([]string, error) {
	pks := model.PrimaryKeys(t.columns)
	if len(pks) == 0 {
		return nil, ErrNoPrimaryKey
	}

	target := dialect.QuoteQualified(d, schema, table)
	var stmts []string

	for _, row := range t.changedRows() {
		rowChanges := t.changes[row]

		var sets []string
		for _, c := range t.columns {
			change, ok := rowChanges[c.Name]
			if !ok {
				continue
			}
			sets = append(sets, fmt.Sprintf("%s = %s",
				dialect.QuoteIdent(d, c.Name),
				dialect.FormatValue(d, change.NewValue, c.DataType)))
		}
		if len(sets) == 0 {
			continue
		}

		stmts = append(stmts, fmt.Sprintf("UPDATE %s SET %s WHERE %s;",
			target, strings.Join(sets, ", "), t.primaryKeyClause(d, row, pks)))
	}

	return stmts, nil
}

// GenerateDeletes builds one DELETE per selected row, targeted exactly like
// updates.
func GenerateDeletes(t *Tracker, d dialect.Dialect, schema, table string) ([]string, error) {
	pks := model.PrimaryKeys(t.columns)
	if len(pks) == 0 {
		return nil, ErrNoPrimaryKey
	}

	target := dialect.QuoteQualified(d, schema, table)
	var stmts []string
	for _, row := range t.selectedRows() {
		stmts = append(stmts, fmt.Sprintf("DELETE FROM %s WHERE %s;",
			target, t.primaryKeyClause(d, row, pks)))
	}
	return stmts, nil
}

// GenerateInserts builds one INSERT per pending new row. Columns the server
// fills itself are omitted: auto-increment columns, columns whose default
// expression matches a server-generated marker, primary keys that follow
// the UUID naming/typing convention and carry a UUID-generating default,
// and database-managed created_at/updated_at timestamps. A UUID-style
// column with no default at all gets a client-generated UUID instead,
// because the server cannot produce one. A row whose every column is
// omitted degrades to INSERT INTO ... DEFAULT VALUES.
func GenerateInserts(t *Tracker, d dialect.Dialect, schema, table string) []string {
	target := dialect.QuoteQualified(d, schema, table)
	var stmts []string

	for _, id := range t.newOrder {
		values, ok := t.newRows[id]
		if !ok {
			continue
		}

		var names, literals []string
		for _, c := range t.columns {
			if skipOnInsert(c) {
				continue
			}

			v := values[c.Name]
			if v == nil && needsClientUUID(c) {
				v = uuid.NewString()
			}

			names = append(names, dialect.QuoteIdent(d, c.Name))
			literals = append(literals, dialect.FormatValue(d, v, c.DataType))
		}

		if len(names) == 0 {
			stmts = append(stmts, fmt.Sprintf("INSERT INTO %s DEFAULT VALUES;", target))
			continue
		}
		stmts = append(stmts, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
			target, strings.Join(names, ", "), strings.Join(literals, ", ")))
	}

	return stmts
}

// GeneratePending builds the full ordered statement list for the tracker's
// pending state: updates, then inserts, then deletes.
func GeneratePending(t *Tracker, d dialect.Dialect, schema, table string) ([]string, error) {
	var stmts []string

	if t.TotalChanges() > 0 {
		updates, err := GenerateUpdates(t, d, schema, table)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, updates...)
	}

	stmts = append(stmts, GenerateInserts(t, d, schema, table)...)

	if t.SelectedCount() > 0 {
		deletes, err := GenerateDeletes(t, d, schema, table)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, deletes...)
	}

	return stmts, nil
}

// primaryKeyClause renders the WHERE predicate targeting one loaded row by
// its original primary-key values. A null stored value compares with
// IS NULL, since pk = NULL would never match.
func (t *Tracker) primaryKeyClause(d dialect.Dialect, row int, pks []model.Column) string {
	var parts []string
	for _, pk := range pks {
		var stored interface{}
		if row >= 0 && row < len(t.rows) {
			stored = t.rows[row][pk.Name]
		}
		if stored == nil {
			parts = append(parts, dialect.QuoteIdent(d, pk.Name)+" IS NULL")
		} else {
			parts = append(parts, fmt.Sprintf("%s = %s",
				dialect.QuoteIdent(d, pk.Name),
				dialect.FormatValue(d, stored, pk.DataType)))
		}
	}
	return strings.Join(parts, " AND ")
}

// skipOnInsert reports whether the server owns this column's insert value.
func skipOnInsert(c model.Column) bool {
	if c.IsAutoIncrement {
		return true
	}
	if hasServerDefault(c.DefaultValue) {
		return true
	}
	if c.IsPrimaryKey && uuidNamed(c.Name) && uuidTyped(c.DataType) && hasUUIDDefault(c.DefaultValue) {
		return true
	}
	if managedTimestamp(c) {
		return true
	}
	return false
}

// needsClientUUID reports whether the engine must generate the value
// itself: the column looks like a UUID key but has no default the database
// could apply.
func needsClientUUID(c model.Column) bool {
	return uuidNamed(c.Name) && uuidTyped(c.DataType) && c.DefaultValue == ""
}

func hasServerDefault(def string) bool {
	if def == "" {
		return false
	}
	lower := strings.ToLower(def)
	for _, marker := range serverDefaultMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func hasUUIDDefault(def string) bool {
	lower := strings.ToLower(def)
	return strings.Contains(lower, "uuid_generate") || strings.Contains(lower, "gen_random_uuid")
}

// uuidNamed matches the naming convention for UUID key columns.
func uuidNamed(name string) bool {
	lower := strings.ToLower(name)
	return lower == "id" || lower == "uuid" || lower == "guid" || strings.HasSuffix(lower, "_id")
}

// uuidTyped matches character and native-uuid column types.
func uuidTyped(dataType string) bool {
	lower := strings.ToLower(dataType)
	return strings.Contains(lower, "char") || strings.Contains(lower, "uuid")
}

// managedTimestamp matches the created_at/updated_at columns that database
// triggers or defaults keep current.
func managedTimestamp(c model.Column) bool {
	name := strings.ToLower(c.Name)
	if name != "created_at" && name != "updated_at" {
		return false
	}
	dt := strings.ToLower(c.DataType)
	return strings.Contains(dt, "timestamp") || strings.Contains(dt, "datetime")
}
