package gridedit

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/querydeck/querydeck/internal/dialect"
	"github.com/querydeck/querydeck/internal/model"
)

func TestGenerateUpdateSingleCell(t *testing.T) {
	tr := NewTracker(usersColumns(), usersRows())
	tr.ApplyChange(0, "email", "alice@example.com", "new@example.com")

	stmts, err := GenerateUpdates(tr, dialect.Postgres, "public", "users")
	if err != nil {
		t.Fatalf("GenerateUpdates failed: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}

	want := `UPDATE "public"."users" SET "email" = 'new@example.com' WHERE "id" = 5;`
	if stmts[0] != want {
		t.Errorf("unexpected statement:\ngot:  %s\nwant: %s", stmts[0], want)
	}
}

func TestGenerateUpdateTargetsOriginalKey(t *testing.T) {
	// Editing the primary key itself must still target the original value.
	tr := NewTracker(usersColumns(), usersRows())
	tr.ApplyChange(0, "id", 5, 99)

	stmts, err := GenerateUpdates(tr, dialect.Postgres, "public", "users")
	if err != nil {
		t.Fatalf("GenerateUpdates failed: %v", err)
	}
	if !strings.Contains(stmts[0], `WHERE "id" = 5`) {
		t.Errorf("WHERE must use the original stored key: %s", stmts[0])
	}
	if !strings.Contains(stmts[0], `SET "id" = 99`) {
		t.Errorf("SET must carry the edited value: %s", stmts[0])
	}
}

func TestGenerateUpdateNullKeyValue(t *testing.T) {
	cols := []model.Column{
		{Name: "code", DataType: "text", IsPrimaryKey: true},
		{Name: "label", DataType: "text"},
	}
	rows := []model.Row{{"code": nil, "label": "old"}}

	tr := NewTracker(cols, rows)
	tr.ApplyChange(0, "label", "old", "new")

	stmts, err := GenerateUpdates(tr, dialect.Postgres, "public", "lookup")
	if err != nil {
		t.Fatalf("GenerateUpdates failed: %v", err)
	}
	if !strings.Contains(stmts[0], `WHERE "code" IS NULL`) {
		t.Errorf("null stored key must compare with IS NULL: %s", stmts[0])
	}
}

func TestGenerateUpdateNoPrimaryKey(t *testing.T) {
	cols := []model.Column{{Name: "note", DataType: "text"}}
	tr := NewTracker(cols, []model.Row{{"note": "a"}})
	tr.ApplyChange(0, "note", "a", "b")

	if _, err := GenerateUpdates(tr, dialect.Postgres, "public", "notes"); !errors.Is(err, ErrNoPrimaryKey) {
		t.Errorf("expected ErrNoPrimaryKey, got %v", err)
	}
	if _, err := GenerateDeletes(tr, dialect.Postgres, "public", "notes"); !errors.Is(err, ErrNoPrimaryKey) {
		t.Errorf("expected ErrNoPrimaryKey, got %v", err)
	}
}

func TestGenerateDeletes(t *testing.T) {
	tr := NewTracker(usersColumns(), usersRows())
	tr.ToggleRowSelection(1)
	tr.ToggleRowSelection(0)

	stmts, err := GenerateDeletes(tr, dialect.Postgres, "public", "users")
	if err != nil {
		t.Fatalf("GenerateDeletes failed: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	// Ascending row order keeps output deterministic.
	if stmts[0] != `DELETE FROM "public"."users" WHERE "id" = 5;` {
		t.Errorf("unexpected first delete: %s", stmts[0])
	}
	if stmts[1] != `DELETE FROM "public"."users" WHERE "id" = 6;` {
		t.Errorf("unexpected second delete: %s", stmts[1])
	}
}

func TestGenerateInsertSkipsAutoIncrement(t *testing.T) {
	tr := NewTracker(usersColumns(), usersRows())
	id := tr.AddRow()
	tr.UpdateNewRowValue(id, "email", "carol@example.com")
	tr.UpdateNewRowValue(id, "active", true)

	stmts := GenerateInserts(tr, dialect.Postgres, "public", "users")
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	want := `INSERT INTO "public"."users" ("email", "active") VALUES ('carol@example.com', true);`
	if stmts[0] != want {
		t.Errorf("unexpected statement:\ngot:  %s\nwant: %s", stmts[0], want)
	}
	if strings.Contains(stmts[0], `"id"`) {
		t.Errorf("auto-increment id must be omitted entirely: %s", stmts[0])
	}
}

func TestGenerateInsertSkipsServerDefaults(t *testing.T) {
	cols := []model.Column{
		{Name: "id", DataType: "uuid", IsPrimaryKey: true, DefaultValue: "gen_random_uuid()"},
		{Name: "created_at", DataType: "timestamp with time zone", DefaultValue: "CURRENT_TIMESTAMP"},
		{Name: "updated_at", DataType: "timestamptz"},
		{Name: "title", DataType: "text"},
	}
	tr := NewTracker(cols, nil)
	id := tr.AddRow()
	tr.UpdateNewRowValue(id, "title", "hello")

	stmts := GenerateInserts(tr, dialect.Postgres, "public", "posts")
	want := `INSERT INTO "public"."posts" ("title") VALUES ('hello');`
	if stmts[0] != want {
		t.Errorf("unexpected statement:\ngot:  %s\nwant: %s", stmts[0], want)
	}
}

func TestGenerateInsertClientSideUUID(t *testing.T) {
	// UUID-shaped key with no default: the database cannot fill it, so the
	// generator must include a client-side random UUID.
	cols := []model.Column{
		{Name: "id", DataType: "varchar(36)", IsPrimaryKey: true},
		{Name: "name", DataType: "text"},
	}
	tr := NewTracker(cols, nil)
	rowID := tr.AddRow()
	tr.UpdateNewRowValue(rowID, "name", "widget")

	stmts := GenerateInserts(tr, dialect.Postgres, "public", "widgets")
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if !strings.Contains(stmts[0], `"id"`) {
		t.Fatalf("id column must be present: %s", stmts[0])
	}

	// Pull the generated literal back out and check it parses as a UUID.
	start := strings.Index(stmts[0], "VALUES ('") + len("VALUES ('")
	end := strings.Index(stmts[0][start:], "'")
	if _, err := uuid.Parse(stmts[0][start : start+end]); err != nil {
		t.Errorf("generated id is not a valid UUID in %s: %v", stmts[0], err)
	}
}

func TestGenerateInsertDefaultValues(t *testing.T) {
	cols := []model.Column{
		{Name: "id", DataType: "integer", IsPrimaryKey: true, IsAutoIncrement: true},
		{Name: "created_at", DataType: "timestamp", DefaultValue: "now()"},
	}
	tr := NewTracker(cols, nil)
	tr.AddRow()

	stmts := GenerateInserts(tr, dialect.Postgres, "public", "events")
	if stmts[0] != `INSERT INTO "public"."events" DEFAULT VALUES;` {
		t.Errorf("expected DEFAULT VALUES degenerate, got %s", stmts[0])
	}
}

func TestGenerateInsertBooleanStringValue(t *testing.T) {
	// Grid values arrive as strings; "true" against a boolean column must
	// stay unquoted.
	tr := NewTracker(usersColumns(), usersRows())
	id := tr.AddRow()
	tr.UpdateNewRowValue(id, "email", "dave@example.com")
	tr.UpdateNewRowValue(id, "active", "false")

	stmts := GenerateInserts(tr, dialect.Postgres, "public", "users")
	if !strings.Contains(stmts[0], "VALUES ('dave@example.com', false)") {
		t.Errorf("boolean-string value must be unquoted: %s", stmts[0])
	}
}

func TestGenerateInsertsPreserveAddOrder(t *testing.T) {
	tr := NewTracker(usersColumns(), usersRows())
	a := tr.AddRow()
	b := tr.AddRow()
	tr.UpdateNewRowValue(a, "email", "first@example.com")
	tr.UpdateNewRowValue(b, "email", "second@example.com")

	stmts := GenerateInserts(tr, dialect.Postgres, "public", "users")
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	if !strings.Contains(stmts[0], "first@example.com") || !strings.Contains(stmts[1], "second@example.com") {
		t.Errorf("inserts must come out in add order: %v", stmts)
	}
}

func TestGeneratePendingOrder(t *testing.T) {
	tr := NewTracker(usersColumns(), usersRows())
	tr.ApplyChange(0, "email", "alice@example.com", "a2@example.com")
	id := tr.AddRow()
	tr.UpdateNewRowValue(id, "email", "new@example.com")
	tr.ToggleRowSelection(1)

	stmts, err := GeneratePending(tr, dialect.Postgres, "public", "users")
	if err != nil {
		t.Fatalf("GeneratePending failed: %v", err)
	}
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}
	if !strings.HasPrefix(stmts[0], "UPDATE") || !strings.HasPrefix(stmts[1], "INSERT") || !strings.HasPrefix(stmts[2], "DELETE") {
		t.Errorf("expected UPDATE, INSERT, DELETE order: %v", stmts)
	}
}

func TestGenerateUpdateMySQLQuoting(t *testing.T) {
	tr := NewTracker(usersColumns(), usersRows())
	tr.ApplyChange(1, "email", "bob@example.com", "b2@example.com")

	stmts, err := GenerateUpdates(tr, dialect.MySQL, "shop", "users")
	if err != nil {
		t.Fatalf("GenerateUpdates failed: %v", err)
	}
	want := "UPDATE `shop`.`users` SET `email` = 'b2@example.com' WHERE `id` = 6;"
	if stmts[0] != want {
		t.Errorf("unexpected statement:\ngot:  %s\nwant: %s", stmts[0], want)
	}
}
