package querybuilder

import (
	"fmt"
	"strings"

	"github.com/querydeck/querydeck/internal/dialect"
)

// noTablesComment is returned when the model has no tables yet. It is a
// deliberate non-failing degenerate output so the preview pane always has
// something to show, never malformed SQL.
const noTablesComment = "-- Add a table to the canvas to start building a query"

// Compile renders the model as a single SELECT statement for its dialect.
// Clauses are emitted one per line in fixed order: SELECT, FROM, JOINs,
// WHERE, GROUP BY, HAVING, ORDER BY, pagination. The output always ends
// with a semicolon.
func Compile(m *Model) string {
	if len(m.Tables) == 0 {
		return noTablesComment
	}

	d := m.Dialect
	var lines []string

	lines = append(lines, selectClause(m))

	from := m.Tables[0]
	lines = append(lines, fmt.Sprintf("FROM %s AS %s",
		dialect.QuoteQualified(d, from.Schema, from.Name),
		dialect.QuoteIdent(d, from.Alias)))

	for _, j := range m.Joins {
		lines = append(lines, joinClause(m, j))
	}

	if m.Where != nil {
		if cond := renderGroup(d, *m.Where, false); cond != "" {
			lines = append(lines, "WHERE "+cond)
		}
	}

	if len(m.GroupBy) > 0 {
		cols := make([]string, len(m.GroupBy))
		for i, g := range m.GroupBy {
			cols[i] = qualified(d, g.TableAlias, g.ColumnName)
		}
		lines = append(lines, "GROUP BY "+strings.Join(cols, ", "))
	}

	if len(m.Having) > 0 {
		parts := make([]string, len(m.Having))
		for i, h := range m.Having {
			parts[i] = fmt.Sprintf("%s %s %s",
				aggregateExpr(d, h.Aggregate, h.TableAlias, h.ColumnName, false),
				h.Operator,
				dialect.FormatValue(d, h.Value, ""))
		}
		lines = append(lines, "HAVING "+strings.Join(parts, " AND "))
	}

	if len(m.OrderBy) > 0 {
		parts := make([]string, len(m.OrderBy))
		for i, o := range m.OrderBy {
			dir := o.Direction
			if dir != "DESC" {
				dir = "ASC"
			}
			parts[i] = qualified(d, o.TableAlias, o.ColumnName) + " " + dir
		}
		lines = append(lines, "ORDER BY "+strings.Join(parts, ", "))
	}

	if page := dialect.Pagination(d, m.Limit, m.Offset); page != "" {
		lines = append(lines, page)
	}

	return strings.Join(lines, "\n") + ";"
}

// selectClause renders the SELECT line, falling back to * when no columns
// are projected.
func selectClause(m *Model) string {
	d := m.Dialect

	sel := "SELECT "
	if m.Distinct {
		sel = "SELECT DISTINCT "
	}

	if len(m.Columns) == 0 {
		return sel + "*"
	}

	parts := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		expr := qualified(d, c.TableAlias, c.ColumnName)
		if c.Aggregate != AggNone {
			expr = aggregateExpr(d, c.Aggregate, c.TableAlias, c.ColumnName, c.Distinct)
		}
		if c.Alias != "" {
			expr += " AS " + dialect.QuoteIdent(d, c.Alias)
		}
		parts[i] = expr
	}
	return sel + strings.Join(parts, ", ")
}

// aggregateExpr wraps a qualified column in an aggregate function.
// COUNT_DISTINCT is spelled COUNT(DISTINCT col); for the other aggregates
// the distinct flag injects DISTINCT inside the parentheses.
func aggregateExpr(d dialect.Dialect, agg Aggregate, tableAlias, columnName string, distinct bool) string {
	col := qualified(d, tableAlias, columnName)
	if agg == AggCountDistinct {
		return "COUNT(DISTINCT " + col + ")"
	}
	if distinct {
		return string(agg) + "(DISTINCT " + col + ")"
	}
	return string(agg) + "(" + col + ")"
}

func joinClause(m *Model, j Join) string {
	d := m.Dialect

	var target Table
	for _, t := range m.Tables {
		if t.Alias == j.RightTable {
			target = t
			break
		}
	}

	return fmt.Sprintf("%s JOIN %s AS %s ON %s = %s",
		j.Type,
		dialect.QuoteQualified(d, target.Schema, target.Name),
		dialect.QuoteIdent(d, j.RightTable),
		qualified(d, j.LeftTable, j.LeftColumn),
		qualified(d, j.RightTable, j.RightColumn))
}

// renderGroup renders a condition group by recursive descent. Conditions and
// nested groups are siblings joined with the group's operator; nested groups
// are parenthesized, the root is not. Empty groups render as "".
func renderGroup(d dialect.Dialect, g ConditionGroup, nested bool) string {
	op := string(g.Operator)
	if op == "" {
		op = string(And)
	}

	var parts []string
	for _, c := range g.Conditions {
		parts = append(parts, renderCondition(d, c))
	}
	for _, child := range g.Groups {
		if rendered := renderGroup(d, child, true); rendered != "" {
			parts = append(parts, rendered)
		}
	}

	if len(parts) == 0 {
		return ""
	}

	joined := strings.Join(parts, " "+op+" ")
	if nested {
		return "(" + joined + ")"
	}
	return joined
}

// renderCondition renders one predicate. IS NULL / IS NOT NULL take no
// value; IN / NOT IN render their list even when it is empty, which is
// syntactically valid but always-false (resp. always-true) SQL — preserved
// on purpose rather than silently dropping the clause.
func renderCondition(d dialect.Dialect, c Condition) string {
	col := qualified(d, c.TableAlias, c.ColumnName)

	switch c.Operator {
	case OpIsNull, OpIsNotNull:
		return col + " " + string(c.Operator)
	case OpIn, OpNotIn:
		vals := make([]string, len(c.Values))
		for i, v := range c.Values {
			vals[i] = dialect.FormatValue(d, v, "")
		}
		return fmt.Sprintf("%s %s (%s)", col, c.Operator, strings.Join(vals, ", "))
	case OpBetween:
		return fmt.Sprintf("%s BETWEEN %s AND %s", col,
			dialect.FormatValue(d, c.Value, ""),
			dialect.FormatValue(d, c.Value2, ""))
	default:
		return fmt.Sprintf("%s %s %s", col, c.Operator,
			dialect.FormatValue(d, c.Value, ""))
	}
}

// qualified renders alias.column with dialect quoting.
func qualified(d dialect.Dialect, tableAlias, columnName string) string {
	return dialect.QuoteIdent(d, tableAlias) + "." + dialect.QuoteIdent(d, columnName)
}
