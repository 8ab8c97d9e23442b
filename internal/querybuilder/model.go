// Package querybuilder turns the visual builder's declarative query model
// into a single SELECT statement for the active dialect, and statically
// validates the model's referential and aggregation consistency. Nothing in
// this package executes SQL or touches a connection.
package querybuilder

import "github.com/querydeck/querydeck/internal/dialect"

// GroupOperator combines sibling conditions and nested groups.
type GroupOperator string

const (
	And GroupOperator = "AND"
	Or  GroupOperator = "OR"
)

// Operator is a WHERE/HAVING comparison operator. The set is closed; the
// compiler branches exhaustively on it.
type Operator string

const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpLike         Operator = "LIKE"
	OpNotLike      Operator = "NOT LIKE"
	OpIn           Operator = "IN"
	OpNotIn        Operator = "NOT IN"
	OpBetween      Operator = "BETWEEN"
	OpIsNull       Operator = "IS NULL"
	OpIsNotNull    Operator = "IS NOT NULL"
)

// Aggregate is an aggregate function applied to a projected column.
type Aggregate string

const (
	AggNone          Aggregate = ""
	AggCount         Aggregate = "COUNT"
	AggCountDistinct Aggregate = "COUNT_DISTINCT"
	AggSum           Aggregate = "SUM"
	AggAvg           Aggregate = "AVG"
	AggMin           Aggregate = "MIN"
	AggMax           Aggregate = "MAX"
)

// JoinType is the JOIN variant keyword.
type JoinType string

const (
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
	RightJoin JoinType = "RIGHT"
	FullJoin  JoinType = "FULL"
)

// Table is a table declared in the builder. The first declared table is the
// implicit FROM target; aliases are unique within a model.
type Table struct {
	Alias   string   `json:"alias"`
	Schema  string   `json:"schema"`
	Name    string   `json:"tableName"`
	Columns []string `json:"columns,omitempty"`
}

// Column is a projected column. Aggregate and Alias are optional; Distinct
// applies inside the aggregate when one is set.
type Column struct {
	ID         string    `json:"id"`
	TableAlias string    `json:"tableAlias"`
	ColumnName string    `json:"columnName"`
	Alias      string    `json:"alias,omitempty"`
	Aggregate  Aggregate `json:"aggregate,omitempty"`
	Distinct   bool      `json:"distinct,omitempty"`
}

// Join links two declared tables on one column pair.
type Join struct {
	ID          string   `json:"id"`
	Type        JoinType `json:"type"`
	LeftTable   string   `json:"leftTable"`
	LeftColumn  string   `json:"leftColumn"`
	RightTable  string   `json:"rightTable"`
	RightColumn string   `json:"rightColumn"`
}

// Condition is a single WHERE predicate. Value2 is used only for BETWEEN,
// Values only for IN / NOT IN.
type Condition struct {
	TableAlias string        `json:"tableAlias"`
	ColumnName string        `json:"columnName"`
	Operator   Operator      `json:"operator"`
	Value      interface{}   `json:"value,omitempty"`
	Value2     interface{}   `json:"value2,omitempty"`
	Values     []interface{} `json:"values,omitempty"`
}

// ConditionGroup is a recursive node combining sibling conditions and nested
// groups under one logical operator. Each group owns its children by value;
// the tree is rebuilt wholesale on edit.
type ConditionGroup struct {
	Operator   GroupOperator    `json:"operator"`
	Conditions []Condition      `json:"conditions"`
	Groups     []ConditionGroup `json:"groups"`
}

// GroupByColumn names one grouping column.
type GroupByColumn struct {
	TableAlias string `json:"tableAlias"`
	ColumnName string `json:"columnName"`
}

// HavingCondition is an aggregate-wrapped comparison; HAVING conditions are
// always joined with AND.
type HavingCondition struct {
	ID         string      `json:"id"`
	TableAlias string      `json:"tableAlias"`
	ColumnName string      `json:"columnName"`
	Aggregate  Aggregate   `json:"aggregate"`
	Operator   Operator    `json:"operator"`
	Value      interface{} `json:"value"`
}

// OrderByColumn names one ordering column and direction ("ASC"/"DESC").
type OrderByColumn struct {
	ID         string `json:"id"`
	TableAlias string `json:"tableAlias"`
	ColumnName string `json:"columnName"`
	Direction  string `json:"direction"`
}

// Model is the full declarative representation of a SELECT query. One model
// belongs to exactly one builder session and is bound to one dialect; the
// frontend rebuilds it on every edit and asks for a fresh compile.
type Model struct {
	Dialect  dialect.Dialect   `json:"dialect"`
	Tables   []Table           `json:"tables"`
	Columns  []Column          `json:"columns"`
	Joins    []Join            `json:"joins"`
	Where    *ConditionGroup   `json:"where,omitempty"`
	GroupBy  []GroupByColumn   `json:"groupBy"`
	Having   []HavingCondition `json:"having"`
	OrderBy  []OrderByColumn   `json:"orderBy"`
	Limit    *int              `json:"limit,omitempty"`
	Offset   *int              `json:"offset,omitempty"`
	Distinct bool              `json:"distinct"`
}

// hasTableAlias reports whether alias is declared in the model.
func (m *Model) hasTableAlias(alias string) bool {
	for _, t := range m.Tables {
		if t.Alias == alias {
			return true
		}
	}
	return false
}
