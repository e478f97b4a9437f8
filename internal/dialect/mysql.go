// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dialect

import (
	"fmt"
	"strings"

	"sqlbridge/cli/internal/entity"
	apperrors "sqlbridge/cli/internal/errors"
)

var mysqlQuoting = newQuoting("`", "`", mixedIdent, "change", "condition", "database", "databases", "div", "for", "force", "interval", "keys", "lock", "match", "mod", "range", "read", "regexp", "rlike", "show", "status", "write")

// MySQL renders MySQL and MariaDB syntax.
type MySQL struct{}

func (MySQL) Name() string       { return "mysql" }
func (MySQL) DriverName() string { return "mysql" }

func (MySQL) QuoteIdent(name string) string { return mysqlQuoting.quote(name) }

func (MySQL) QuoteString(s string) string {
	return quoteStandard(strings.ReplaceAll(s, `\`, `\\`))
}

func (MySQL) BoolLiteral(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (m MySQL) Literal(v any, t entity.FieldType) string {
	return renderLiteral(m, v, t, func(q string) string { return q })
}

func (MySQL) Cast(expr, typeName string) string { return "CAST(" + expr + " AS " + typeName + ")" }
func (MySQL) AsText(expr string) string         { return "CAST(" + expr + " AS CHAR)" }

func (MySQL) LimitOffset(start, count int) (string, bool) {
	return fmt.Sprintf("LIMIT %d OFFSET %d", max(count, 0), max(start, 0)), true
}

func (MySQL) UpdateLimit(table, set, where string, n int) string {
	stmt := "UPDATE " + table + " SET " + set
	if where != "" {
		stmt += " WHERE " + where
	}
	return fmt.Sprintf("%s LIMIT %d", stmt, n)
}

func (MySQL) ConcatWS(sep string, exprs ...string) string {
	return "CONCAT_WS(" + quoteStandard(sep) + ", " + strings.Join(exprs, ", ") + ")"
}

func (MySQL) YearOf(expr string) string { return "YEAR(" + expr + ")" }

func (MySQL) ILike(expr, pattern string) string {
	return "LOWER(" + expr + ") LIKE LOWER(" + pattern + ")"
}

// Callable renders SELECT for functions and CALL for procedures. MySQL has no
// named arguments, so they are always positional. Output arguments are bound
// to session variables which a trailing SELECT returns as the last result set.
func (m MySQL) Callable(c Call) (string, error) {
	if err := c.validate(); err != nil {
		return "", err
	}
	var args, outs []string
	for _, a := range c.Args {
		if a.Mode == ArgOut {
			if c.Kind == Function {
				continue
			}
			args = append(args, "@"+a.Name)
			outs = append(outs, "@"+a.Name+" AS "+m.QuoteIdent(a.Name))
			continue
		}
		args = append(args, renderArg(m, a))
	}
	invocation := m.QuoteIdent(c.Routine) + "(" + strings.Join(args, ", ") + ")"
	if c.Kind == Function {
		return "SELECT " + invocation, nil
	}
	stmt := "CALL " + invocation
	if len(outs) > 0 {
		stmt += "; SELECT " + strings.Join(outs, ", ")
	}
	return stmt, nil
}

// Classify takes MySQL error numbers, or the SQLSTATE of errors raised with
// SIGNAL in stored routines.
func (MySQL) Classify(code, message string) apperrors.Kind {
	switch code {
	case "1062", "1586":
		return apperrors.DuplicateKey
	case "1451", "1452", "1216", "1217":
		return apperrors.ForeignKey
	case "1045", "1040", "2002", "2003", "2006", "2013":
		return apperrors.Connection
	case "1213", "40001":
		return apperrors.StaleRow
	case "":
		return classifyText(message)
	}
	return apperrors.Query
}
