package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/querydeck/querydeck/internal/database"
	"github.com/querydeck/querydeck/internal/dialect"
	"github.com/querydeck/querydeck/internal/gridedit"
	"github.com/querydeck/querydeck/internal/model"
	"github.com/querydeck/querydeck/internal/querybuilder"
)

// App is the main application struct that Wails binds to the frontend.
// All exported methods become callable from JavaScript. It holds the open
// connection and the edit session for the currently open table; the
// query-builder model lives in the frontend and is sent whole on every
// recompile, so SQL text and validation are always derived from the
// latest state.
type App struct {
	ctx   context.Context
	store database.Store

	grid       *gridedit.Tracker
	gridSchema string
	gridTable  string
}

// NewApp creates a new App instance.
func NewApp() *App {
	return &App{}
}

// startup is called when the app starts. The context is saved
// so we can call runtime methods (dialogs, events, etc.)
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// shutdown is called when the app is closing.
func (a *App) shutdown(ctx context.Context) {
	if a.store != nil {
		a.store.Close()
	}
}

// -- Connection Operations --

// ConnectionProfile is the connection form state sent by the frontend.
type ConnectionProfile struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

// ConnectionInfo contains summary info about the active connection.
type ConnectionInfo struct {
	Driver  string          `json:"driver"`
	Name    string          `json:"name"`
	Dialect dialect.Dialect `json:"dialect"`
}

// Connect opens a connection for the given profile, replacing any existing
// one. The driver choice also fixes the dialect used for every SQL preview
// until the next Connect.
func (a *App) Connect(profile ConnectionProfile) (*ConnectionInfo, error) {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	a.closeGrid()

	store, err := database.Open(profile.Driver, profile.DSN)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	a.store = store

	runtime.EventsEmit(a.ctx, "connection:opened", store.Name())
	return &ConnectionInfo{
		Driver:  store.Driver(),
		Name:    store.Name(),
		Dialect: store.Dialect(),
	}, nil
}

// OpenDatabaseFile opens a file dialog and connects to the chosen SQLite
// database file.
func (a *App) OpenDatabaseFile() (*ConnectionInfo, error) {
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Open SQLite Database",
		Filters: []runtime.FileFilter{
			{DisplayName: "SQLite Database (*.db, *.sqlite)", Pattern: "*.db;*.sqlite"},
			{DisplayName: "All Files (*.*)", Pattern: "*.*"},
		},
	})
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil // user cancelled
	}
	return a.Connect(ConnectionProfile{Driver: "sqlite", DSN: path})
}

// Disconnect closes the current connection and returns to the welcome screen.
func (a *App) Disconnect() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	a.closeGrid()
	runtime.EventsEmit(a.ctx, "connection:closed")
}

// -- Schema Operations --

// ListTables returns the connected database's tables for the schema tree.
func (a *App) ListTables() ([]model.TableRef, error) {
	if a.store == nil {
		return nil, fmt.Errorf("no connection open")
	}
	return a.store.ListTables()
}

// GetTableColumns returns column metadata for one table.
func (a *App) GetTableColumns(schema, table string) ([]model.Column, error) {
	if a.store == nil {
		return nil, fmt.Errorf("no connection open")
	}
	return a.store.TableColumns(schema, table)
}

// -- Query Builder Operations --

// QueryPreview is what the builder pane shows after every model edit:
// the compiled SQL plus the validation result gating the Run button.
type QueryPreview struct {
	SQL        string              `json:"sql"`
	Validation querybuilder.Result `json:"validation"`
}

// BuildQuery compiles and validates the builder model. It touches no
// connection state, so the frontend can recompute the preview on every
// drag and keystroke.
func (a *App) BuildQuery(m querybuilder.Model) QueryPreview {
	return QueryPreview{
		SQL:        querybuilder.Compile(&m),
		Validation: querybuilder.Validate(&m),
	}
}

// QueryResult is one executed result set.
type QueryResult struct {
	SQL     string      `json:"sql"`
	Columns []string    `json:"columns"`
	Rows    []model.Row `json:"rows"`
}

// RunQuery validates, compiles, and executes the builder model against the
// active connection.
func (a *App) RunQuery(m querybuilder.Model) (*QueryResult, error) {
	if a.store == nil {
		return nil, fmt.Errorf("no connection open")
	}

	validation := querybuilder.Validate(&m)
	if !validation.Valid {
		return nil, fmt.Errorf("query is not valid: %s", validation.Errors[0])
	}

	sqlText := querybuilder.Compile(&m)
	cols, rows, err := a.store.QueryPage(sqlText)
	if err != nil {
		return nil, fmt.Errorf("running query: %w", err)
	}
	return &QueryResult{SQL: sqlText, Columns: cols, Rows: rows}, nil
}

// -- Data Grid Operations --

// GridPage is one loaded page of table data.
type GridPage struct {
	Schema  string         `json:"schema"`
	Table   string         `json:"tableName"`
	Columns []model.Column `json:"columns"`
	Rows    []model.Row    `json:"rows"`
}

// PendingChanges is the grid's derived DML preview, recomputed after every
// edit-session mutation.
type PendingChanges struct {
	Statements   []string `json:"statements"`
	ChangedCells int      `json:"changedCells"`
	NewRows      int      `json:"newRows"`
	SelectedRows int      `json:"selectedRows"`
	NoPrimaryKey bool     `json:"noPrimaryKey"`
}

// OpenTable loads a page of rows for the data grid and starts a fresh edit
// session against it. The page query goes through the same compiler the
// query builder uses.
func (a *App) OpenTable(schema, table string, limit int) (*GridPage, error) {
	if a.store == nil {
		return nil, fmt.Errorf("no connection open")
	}

	cols, err := a.store.TableColumns(schema, table)
	if err != nil {
		return nil, fmt.Errorf("loading columns: %w", err)
	}

	if limit <= 0 {
		limit = 500
	}
	m := querybuilder.Model{
		Dialect: a.store.Dialect(),
		Tables:  []querybuilder.Table{{Alias: "t", Schema: schema, Name: table}},
		Limit:   &limit,
	}
	_, rows, err := a.store.QueryPage(querybuilder.Compile(&m))
	if err != nil {
		return nil, fmt.Errorf("loading rows: %w", err)
	}

	a.grid = gridedit.NewTracker(cols, rows)
	a.gridSchema = schema
	a.gridTable = table

	return &GridPage{Schema: schema, Table: table, Columns: cols, Rows: rows}, nil
}

// StartCellEdit puts one cell into edit mode.
func (a *App) StartCellEdit(row int, col string) error {
	if a.grid == nil {
		return fmt.Errorf("no table open")
	}
	a.grid.StartEdit(row, col)
	return nil
}

// CancelCellEdit leaves edit mode without recording anything.
func (a *App) CancelCellEdit() {
	if a.grid != nil {
		a.grid.CancelEdit()
	}
}

// ApplyCellEdit records a cell edit and returns the refreshed DML preview.
func (a *App) ApplyCellEdit(row int, col string, oldValue, newValue interface{}) (*PendingChanges, error) {
	if a.grid == nil {
		return nil, fmt.Errorf("no table open")
	}
	a.grid.ApplyChange(row, col, oldValue, newValue)
	a.grid.CancelEdit()
	return a.pendingChanges()
}

// AddGridRow buffers a new row and returns its id with the refreshed preview.
func (a *App) AddGridRow() (int, *PendingChanges, error) {
	if a.grid == nil {
		return 0, nil, fmt.Errorf("no table open")
	}
	id := a.grid.AddRow()
	pending, err := a.pendingChanges()
	return id, pending, err
}

// RemoveGridRow discards a pending new row.
func (a *App) RemoveGridRow(id int) (*PendingChanges, error) {
	if a.grid == nil {
		return nil, fmt.Errorf("no table open")
	}
	a.grid.RemoveNewRow(id)
	return a.pendingChanges()
}

// SetNewRowValue sets one column of a pending new row.
func (a *App) SetNewRowValue(id int, col string, value interface{}) (*PendingChanges, error) {
	if a.grid == nil {
		return nil, fmt.Errorf("no table open")
	}
	a.grid.UpdateNewRowValue(id, col, value)
	return a.pendingChanges()
}

// ToggleRowSelection flips one row's deletion mark.
func (a *App) ToggleRowSelection(row int) (*PendingChanges, error) {
	if a.grid == nil {
		return nil, fmt.Errorf("no table open")
	}
	a.grid.ToggleRowSelection(row)
	return a.pendingChanges()
}

// SelectAllRows marks every loaded row for deletion.
func (a *App) SelectAllRows() (*PendingChanges, error) {
	if a.grid == nil {
		return nil, fmt.Errorf("no table open")
	}
	a.grid.SelectAll()
	return a.pendingChanges()
}

// ClearRowSelection unmarks all rows.
func (a *App) ClearRowSelection() (*PendingChanges, error) {
	if a.grid == nil {
		return nil, fmt.Errorf("no table open")
	}
	a.grid.ClearSelection()
	return a.pendingChanges()
}

// DiscardGridChanges drops all pending edits and new rows.
func (a *App) DiscardGridChanges() (*PendingChanges, error) {
	if a.grid == nil {
		return nil, fmt.Errorf("no table open")
	}
	a.grid.DiscardChanges()
	return a.pendingChanges()
}

// PreviewPendingChanges returns the current DML preview without mutating
// the edit session.
func (a *App) PreviewPendingChanges() (*PendingChanges, error) {
	if a.grid == nil {
		return nil, fmt.Errorf("no table open")
	}
	return a.pendingChanges()
}

// CommitGridChanges executes the pending statements in one transaction and
// reloads the page on success.
func (a *App) CommitGridChanges() (*GridPage, error) {
	if a.grid == nil || a.store == nil {
		return nil, fmt.Errorf("no table open")
	}

	stmts, err := gridedit.GeneratePending(a.grid, a.store.Dialect(), a.gridSchema, a.gridTable)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, fmt.Errorf("nothing to commit")
	}

	if err := a.store.ExecStatements(stmts); err != nil {
		return nil, fmt.Errorf("committing changes: %w", err)
	}

	runtime.EventsEmit(a.ctx, "grid:committed", len(stmts))
	return a.OpenTable(a.gridSchema, a.gridTable, 0)
}

// pendingChanges recomputes the DML preview from the edit session. A table
// with no primary key is reported as a flag instead of failing the whole
// preview, so the grid can still show inserts and disable the rest.
func (a *App) pendingChanges() (*PendingChanges, error) {
	d := a.store.Dialect()

	pending := &PendingChanges{
		Statements:   []string{},
		ChangedCells: a.grid.TotalChanges(),
		NewRows:      a.grid.NewRowCount(),
		SelectedRows: a.grid.SelectedCount(),
	}

	stmts, err := gridedit.GeneratePending(a.grid, d, a.gridSchema, a.gridTable)
	if errors.Is(err, gridedit.ErrNoPrimaryKey) {
		pending.NoPrimaryKey = true
		pending.Statements = gridedit.GenerateInserts(a.grid, d, a.gridSchema, a.gridTable)
		return pending, nil
	}
	if err != nil {
		return nil, err
	}
	pending.Statements = stmts
	return pending, nil
}

func (a *App) closeGrid() {
	a.grid = nil
	a.gridSchema = ""
	a.gridTable = ""
}

// GetVersion returns the application version string.
func (a *App) GetVersion() string {
	return Version
}
