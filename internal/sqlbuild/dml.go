// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlbuild

import (
	"strings"

	"sqlbridge/cli/internal/dialect"
)

// Assign pairs a column with a value fragment. Value is inserted verbatim:
// callers render literals through the dialect before building.
type Assign struct {
	Column string
	Value  string
}

// Insert renders INSERT INTO table (cols) VALUES (values).
func Insert(d dialect.Dialect, table string, cols []Assign) string {
	names := make([]string, len(cols))
	values := make([]string, len(cols))
	for i, c := range cols {
		names[i] = d.QuoteIdent(c.Column)
		values[i] = c.Value
	}
	return "INSERT INTO " + d.QuoteIdent(table) + " (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(values, ", ") + ")"
}

// Update renders an UPDATE. A positive limit caps the number of rows touched
// using the dialect's limited-update form.
func Update(d dialect.Dialect, table string, set []Assign, where []string, limit int) string {
	pairs := make([]string, len(set))
	for i, a := range set {
		pairs[i] = d.QuoteIdent(a.Column) + " = " + a.Value
	}
	qt := d.QuoteIdent(table)
	sets := strings.Join(pairs, ", ")
	if limit > 0 {
		return d.UpdateLimit(qt, sets, strings.Join(where, " AND "), limit)
	}
	return "UPDATE " + qt + " SET " + sets + whereClause(where)
}

// Delete renders DELETE FROM table WHERE ...
func Delete(d dialect.Dialect, table string, where []string) string {
	return "DELETE FROM " + d.QuoteIdent(table) + whereClause(where)
}
