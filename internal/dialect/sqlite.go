// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dialect

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"sqlbridge/cli/internal/entity"
	apperrors "sqlbridge/cli/internal/errors"
)

var sqliteQuoting = newQuoting(`"`, `"`, mixedIdent, "abort", "autoincrement", "exists", "glob", "indexed", "match", "pragma", "regexp", "vacuum")

// SQLite renders SQLite syntax (modernc.org/sqlite driver).
type SQLite struct{}

func (SQLite) Name() string       { return "sqlite" }
func (SQLite) DriverName() string { return "sqlite" }

func (SQLite) QuoteIdent(name string) string { return sqliteQuoting.quote(name) }
func (SQLite) QuoteString(s string) string   { return quoteStandard(s) }

func (SQLite) BoolLiteral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (s SQLite) Literal(v any, t entity.FieldType) string {
	return renderLiteral(s, v, t, func(q string) string { return q })
}

func (SQLite) Cast(expr, typeName string) string { return "CAST(" + expr + " AS " + typeName + ")" }
func (SQLite) AsText(expr string) string         { return "CAST(" + expr + " AS TEXT)" }

func (SQLite) LimitOffset(start, count int) (string, bool) {
	return fmt.Sprintf("LIMIT %d OFFSET %d", max(count, 0), max(start, 0)), true
}

func (SQLite) UpdateLimit(table, set, where string, n int) string {
	inner := "SELECT rowid FROM " + table
	if where != "" {
		inner += " WHERE " + where
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE rowid IN (%s LIMIT %d)", table, set, inner, n)
}

// ConcatWS skips NULL parts like CONCAT_WS on the other products. Each part
// carries its own leading separator; SUBSTR drops the first one.
func (SQLite) ConcatWS(sep string, exprs ...string) string {
	q := quoteStandard(sep)
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = "COALESCE(" + q + " || " + e + ", '')"
	}
	return fmt.Sprintf("SUBSTR(%s, %d)", strings.Join(parts, " || "), utf8.RuneCountInString(sep)+1)
}

func (SQLite) YearOf(expr string) string {
	return "CAST(strftime('%Y', " + expr + ") AS INTEGER)"
}

func (SQLite) ILike(expr, pattern string) string {
	return "LOWER(" + expr + ") LIKE LOWER(" + pattern + ")"
}

func (SQLite) Callable(c Call) (string, error) {
	return "", apperrors.Newf(apperrors.Unsupported, "sqlite has no stored routines (cannot call %s)", c.Routine)
}

// Classify works on extended result codes as reported by modernc.org/sqlite.
func (SQLite) Classify(code, message string) apperrors.Kind {
	switch code {
	case "2067", "1555":
		return apperrors.DuplicateKey
	case "787":
		return apperrors.ForeignKey
	case "5", "6", "14":
		return apperrors.Connection
	case "19", "":
		return classifyText(message)
	}
	return apperrors.Query
}
