package querybuilder

import "fmt"

// Result is the outcome of a structural validation pass. Errors is always
// non-nil so the frontend can render it directly.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate runs the structural checks that gate the Run button: at least one
// table, every projected column and join side referencing a declared alias,
// and GROUP BY consistency. It never mutates the model and never fails;
// problems come back as human-readable strings.
func Validate(m *Model) Result {
	errs := []string{}

	if len(m.Tables) == 0 {
		errs = append(errs, "query must reference at least one table")
	}

	for _, c := range m.Columns {
		if !m.hasTableAlias(c.TableAlias) {
			errs = append(errs, fmt.Sprintf(
				"column %q references unknown table alias %q", c.ColumnName, c.TableAlias))
		}
	}

	for _, j := range m.Joins {
		if !m.hasTableAlias(j.LeftTable) {
			errs = append(errs, fmt.Sprintf(
				"join references unknown table alias %q", j.LeftTable))
		}
		if !m.hasTableAlias(j.RightTable) {
			errs = append(errs, fmt.Sprintf(
				"join references unknown table alias %q", j.RightTable))
		}
	}

	// With grouping active, every projected column must be grouped or
	// aggregated; anything else would be rejected by the database anyway.
	if len(m.GroupBy) > 0 {
		for _, c := range m.Columns {
			if c.Aggregate != AggNone {
				continue
			}
			if !isGrouped(m, c) {
				errs = append(errs, fmt.Sprintf(
					"column %q must appear in GROUP BY or use an aggregate function", c.ColumnName))
			}
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func isGrouped(m *Model, c Column) bool {
	for _, g := range m.GroupBy {
		if g.TableAlias == c.TableAlias && g.ColumnName == c.ColumnName {
			return true
		}
	}
	return false
}
