// Package model holds the schema metadata types shared by the database
// layer, the query builder, and the grid editor. The metadata is fetched by
// the database layer and is read-only everywhere else.
package model

// Column describes one column of a browsed table, as reported by the
// database catalog. DefaultValue is the raw default expression text;
// empty means the column has no default.
type Column struct {
	Name            string `json:"name"`
	DataType        string `json:"dataType"`
	Nullable        bool   `json:"nullable"`
	IsPrimaryKey    bool   `json:"isPrimaryKey"`
	IsAutoIncrement bool   `json:"isAutoIncrement"`
	DefaultValue    string `json:"defaultValue"`
}

// TableRef identifies a table within a connected database.
type TableRef struct {
	Schema string `json:"schema"`
	Name   string `json:"tableName"`
}

// Row is one loaded grid row, keyed by column name.
type Row map[string]interface{}

// PrimaryKeys returns the primary-key columns in declaration order.
func PrimaryKeys(cols []Column) []Column {
	var pks []Column
	for _, c := range cols {
		if c.IsPrimaryKey {
			pks = append(pks, c)
		}
	}
	return pks
}
