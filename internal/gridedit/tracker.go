// Package gridedit tracks cell-level edits, pending new rows, and deletion
// selections against one loaded page of table rows, and turns that state
// into UPDATE/INSERT/DELETE statement text. The package never executes
// anything; committing the generated statements is the caller's business.
package gridedit

import (
	"reflect"
	"sort"

	"github.com/querydeck/querydeck/internal/model"
)

// CellChange records one cell's original and edited value.
type CellChange struct {
	OldValue interface{} `json:"oldValue"`
	NewValue interface{} `json:"newValue"`
}

// Tracker is the edit state for one loaded grid page. Loaded rows keep
// their non-negative page index; pending new rows get negative sentinel ids
// from a strictly decreasing counter so both kinds share one key space.
type Tracker struct {
	columns []model.Column
	rows    []model.Row

	changes  map[int]map[string]CellChange
	newRows  map[int]map[string]interface{}
	newOrder []int
	selected map[int]bool

	nextNewRowID int

	editing bool
	editRow int
	editCol string
}

// NewTracker creates the edit state for a loaded page. columns is the
// table's metadata (read-only here); rows are the loaded page in display
// order.
func NewTracker(columns []model.Column, rows []model.Row) *Tracker {
	return &Tracker{
		columns:      columns,
		rows:         rows,
		changes:      make(map[int]map[string]CellChange),
		newRows:      make(map[int]map[string]interface{}),
		selected:     make(map[int]bool),
		nextNewRowID: -1,
	}
}

// Columns returns the table metadata the tracker was created with.
func (t *Tracker) Columns() []model.Column { return t.columns }

// StartEdit marks a single cell as being edited. At most one cell is in
// edit mode at a time; starting a new edit replaces the previous one.
func (t *Tracker) StartEdit(row int, col string) {
	t.editing = true
	t.editRow = row
	t.editCol = col
}

// CancelEdit leaves edit mode without recording anything.
func (t *Tracker) CancelEdit() {
	t.editing = false
	t.editRow = 0
	t.editCol = ""
}

// EditingCell returns the cell currently in edit mode, if any.
func (t *Tracker) EditingCell() (row int, col string, ok bool) {
	return t.editRow, t.editCol, t.editing
}

// ApplyChange records an edit. Negative rows are pending new rows and their
// value map is written directly (new rows have no original state to diff
// against). For loaded rows the change is stored as {old,new}; reverting a
// cell to its original value removes the entry, and a row whose change set
// becomes empty disappears from the tracker entirely.
func (t *Tracker) ApplyChange(row int, col string, oldValue, newValue interface{}) {
	if row < 0 {
		if values, ok := t.newRows[row]; ok {
			values[col] = newValue
		}
		return
	}

	if valuesEqual(oldValue, newValue) {
		if rowChanges, ok := t.changes[row]; ok {
			delete(rowChanges, col)
			if len(rowChanges) == 0 {
				delete(t.changes, row)
			}
		}
		return
	}

	if t.changes[row] == nil {
		t.changes[row] = make(map[string]CellChange)
	}
	t.changes[row][col] = CellChange{OldValue: oldValue, NewValue: newValue}
}

// CellValue resolves the display value for a cell: new-row buffer first,
// then tracked change, then the originally loaded value.
func (t *Tracker) CellValue(row int, col string) interface{} {
	if row < 0 {
		if values, ok := t.newRows[row]; ok {
			return values[col]
		}
		return nil
	}
	if rowChanges, ok := t.changes[row]; ok {
		if change, ok := rowChanges[col]; ok {
			return change.NewValue
		}
	}
	if row < len(t.rows) {
		return t.rows[row][col]
	}
	return nil
}

// AddRow buffers a pending new row seeded from each column's default value
// (nil where the column has none) and returns its sentinel id. Ids are
// never reused within a tracker's lifetime.
func (t *Tracker) AddRow() int {
	id := t.nextNewRowID
	t.nextNewRowID--

	values := make(map[string]interface{}, len(t.columns))
	for _, c := range t.columns {
		if c.DefaultValue != "" {
			values[c.Name] = c.DefaultValue
		} else {
			values[c.Name] = nil
		}
	}
	t.newRows[id] = values
	t.newOrder = append(t.newOrder, id)
	return id
}

// RemoveNewRow discards a pending new row.
func (t *Tracker) RemoveNewRow(id int) {
	delete(t.newRows, id)
	for i, existing := range t.newOrder {
		if existing == id {
			t.newOrder = append(t.newOrder[:i], t.newOrder[i+1:]...)
			break
		}
	}
}

// UpdateNewRowValue sets one column of a pending new row.
func (t *Tracker) UpdateNewRowValue(id int, col string, value interface{}) {
	if values, ok := t.newRows[id]; ok {
		values[col] = value
	}
}

// ToggleRowSelection flips a loaded row's deletion mark.
func (t *Tracker) ToggleRowSelection(row int) {
	if t.selected[row] {
		delete(t.selected, row)
	} else {
		t.selected[row] = true
	}
}

// SelectAll marks every loaded row for deletion.
func (t *Tracker) SelectAll() {
	for i := range t.rows {
		t.selected[i] = true
	}
}

// ClearSelection unmarks all rows.
func (t *Tracker) ClearSelection() {
	t.selected = make(map[int]bool)
}

// DiscardChanges drops all cell edits and pending new rows. The deletion
// selection survives; it is cleared explicitly or by a commit.
func (t *Tracker) DiscardChanges() {
	t.changes = make(map[int]map[string]CellChange)
	t.newRows = make(map[int]map[string]interface{})
	t.newOrder = nil
}

// TotalChanges is the number of edited cells across all loaded rows.
// Pending new rows are counted separately via NewRowCount.
func (t *Tracker) TotalChanges() int {
	total := 0
	for _, rowChanges := range t.changes {
		total += len(rowChanges)
	}
	return total
}

// NewRowCount is the number of pending new rows.
func (t *Tracker) NewRowCount() int { return len(t.newRows) }

// SelectedCount is the number of rows marked for deletion.
func (t *Tracker) SelectedCount() int { return len(t.selected) }

// changedRows returns the indices of edited rows in ascending order, so
// generated statements come out in a stable order.
func (t *Tracker) changedRows() []int {
	rows := make([]int, 0, len(t.changes))
	for row := range t.changes {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	return rows
}

// selectedRows returns the deletion marks in ascending order.
func (t *Tracker) selectedRows() []int {
	rows := make([]int, 0, len(t.selected))
	for row := range t.selected {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	return rows
}

// valuesEqual compares cell values. Grid values are scalars decoded from
// JSON, but DeepEqual keeps the revert check safe for anything the frontend
// sends.
func valuesEqual(a, b interface{}) bool {
	return reflect.DeepEqual(a, b)
}
