// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dialect

import (
	"fmt"
	"strings"

	"sqlbridge/cli/internal/entity"
	apperrors "sqlbridge/cli/internal/errors"
)

var pgQuoting = newQuoting(`"`, `"`, lowerIdent, "analyse", "analyze", "array", "cast", "collate", "current_date", "current_user", "do", "for", "only", "returning", "window", "with")

// Postgres renders PostgreSQL syntax. Connections go through pgx, not
// database/sql.
type Postgres struct{}

func (Postgres) Name() string       { return "postgres" }
func (Postgres) DriverName() string { return "" }

func (Postgres) QuoteIdent(name string) string { return pgQuoting.quote(name) }
func (Postgres) QuoteString(s string) string   { return quoteStandard(s) }

func (Postgres) BoolLiteral(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (p Postgres) Literal(v any, t entity.FieldType) string {
	return renderLiteral(p, v, t, func(q string) string { return q + "::date" })
}

func (Postgres) Cast(expr, typeName string) string { return expr + "::" + typeName }
func (Postgres) AsText(expr string) string         { return expr + "::text" }

func (Postgres) LimitOffset(start, count int) (string, bool) {
	return fmt.Sprintf("LIMIT %d OFFSET %d", max(count, 0), max(start, 0)), true
}

func (Postgres) UpdateLimit(table, set, where string, n int) string {
	inner := "SELECT ctid FROM " + table
	if where != "" {
		inner += " WHERE " + where
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE ctid IN (%s LIMIT %d)", table, set, inner, n)
}

func (Postgres) ConcatWS(sep string, exprs ...string) string {
	return "CONCAT_WS(" + quoteStandard(sep) + ", " + strings.Join(exprs, ", ") + ")"
}

func (Postgres) YearOf(expr string) string {
	return "CAST(EXTRACT(YEAR FROM " + expr + ") AS integer)"
}

func (Postgres) ILike(expr, pattern string) string { return expr + " ILIKE " + pattern }

// Callable renders SELECT for functions and CALL for procedures. Output
// arguments of a procedure are passed as NULL placeholders; PostgreSQL
// returns their values as the single result row.
func (p Postgres) Callable(c Call) (string, error) {
	if err := c.validate(); err != nil {
		return "", err
	}
	args := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		var v string
		switch {
		case a.Mode == ArgOut && c.Kind == Function:
			continue
		case a.Mode == ArgOut:
			v = "NULL"
			if a.TypeName != "" {
				v = p.Cast(v, a.castType())
			}
		default:
			v = renderArg(p, a)
		}
		if c.Named {
			v = p.QuoteIdent(a.Name) + " => " + v
		}
		args = append(args, v)
	}
	invocation := p.QuoteIdent(c.Routine) + "(" + strings.Join(args, ", ") + ")"
	switch {
	case c.Kind == Procedure:
		return "CALL " + invocation, nil
	case c.Returns == Records:
		return "SELECT * FROM " + invocation, nil
	default:
		return "SELECT " + invocation, nil
	}
}

func (Postgres) Classify(code, message string) apperrors.Kind {
	switch {
	case code == "23505":
		return apperrors.DuplicateKey
	case code == "23503":
		return apperrors.ForeignKey
	case code == "40001":
		return apperrors.StaleRow
	case strings.HasPrefix(code, "08"), code == "57P01", code == "28P01":
		return apperrors.Connection
	case code != "":
		return apperrors.Query
	}
	return classifyText(message)
}
