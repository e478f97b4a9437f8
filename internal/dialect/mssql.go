// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dialect

import (
	"fmt"
	"strings"

	"sqlbridge/cli/internal/entity"
	apperrors "sqlbridge/cli/internal/errors"
)

var mssqlQuoting = newQuoting("[", "]", mixedIdent, "backup", "begin", "browse", "clustered", "database", "exec", "execute", "file", "identity", "merge", "percent", "plan", "proc", "procedure", "top", "tran", "transaction", "use")

// MSSQL renders Microsoft SQL Server syntax.
type MSSQL struct{}

func (MSSQL) Name() string       { return "mssql" }
func (MSSQL) DriverName() string { return "sqlserver" }

func (MSSQL) QuoteIdent(name string) string { return mssqlQuoting.quote(name) }
func (MSSQL) QuoteString(s string) string   { return quoteStandard(s) }

func (MSSQL) BoolLiteral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (m MSSQL) Literal(v any, t entity.FieldType) string {
	return renderLiteral(m, v, t, func(q string) string { return "CAST(" + q + " AS date)" })
}

func (MSSQL) Cast(expr, typeName string) string { return "CAST(" + expr + " AS " + typeName + ")" }
func (MSSQL) AsText(expr string) string         { return "CAST(" + expr + " AS nvarchar(max))" }

// LimitOffset cannot express an empty page: FETCH NEXT requires a positive
// row count.
func (MSSQL) LimitOffset(start, count int) (string, bool) {
	if count <= 0 {
		return "", false
	}
	return fmt.Sprintf("OFFSET %d ROWS FETCH NEXT %d ROWS ONLY", max(start, 0), count), true
}

func (MSSQL) UpdateLimit(table, set, where string, n int) string {
	stmt := fmt.Sprintf("UPDATE TOP (%d) %s SET %s", n, table, set)
	if where != "" {
		stmt += " WHERE " + where
	}
	return stmt
}

func (MSSQL) ConcatWS(sep string, exprs ...string) string {
	return "CONCAT_WS(" + quoteStandard(sep) + ", " + strings.Join(exprs, ", ") + ")"
}

func (MSSQL) YearOf(expr string) string { return "YEAR(" + expr + ")" }

func (MSSQL) ILike(expr, pattern string) string {
	return "LOWER(" + expr + ") LIKE LOWER(" + pattern + ")"
}

func (m MSSQL) routineName(name string) string {
	if !strings.Contains(name, ".") {
		name = "dbo." + name
	}
	return m.QuoteIdent(name)
}

// Callable renders SELECT for functions (schema-qualified, dbo by default)
// and EXEC for procedures. Output arguments are declared as local variables,
// passed with OUTPUT, and selected back as the last result set; typed input
// arguments are declared and initialized the same way.
func (m MSSQL) Callable(c Call) (string, error) {
	if err := c.validate(); err != nil {
		return "", err
	}
	if c.Kind == Function {
		var args []string
		for _, a := range c.Args {
			if a.Mode == ArgIn {
				args = append(args, renderArg(m, a))
			}
		}
		invocation := m.routineName(c.Routine) + "(" + strings.Join(args, ", ") + ")"
		if c.Returns == Records {
			return "SELECT * FROM " + invocation, nil
		}
		return "SELECT " + invocation, nil
	}

	// Once an argument is passed by name every later one must be too, so a
	// call with output arguments is rendered fully named.
	named := c.Named || c.HasOutput()
	var decls, args, outs []string
	for i, a := range c.Args {
		if named && a.Name == "" {
			return "", apperrors.Newf(apperrors.InvalidArgument, "argument %d of %s needs a name", i+1, c.Routine)
		}
		if a.Mode == ArgOut {
			typ := a.castType()
			if typ == "" {
				typ = "nvarchar(4000)"
			}
			decls = append(decls, fmt.Sprintf("DECLARE @%s %s;", a.Name, typ))
			args = append(args, fmt.Sprintf("@%s = @%s OUTPUT", a.Name, a.Name))
			outs = append(outs, "@"+a.Name+" AS "+m.QuoteIdent(a.Name))
			continue
		}
		v := m.execArg(a)
		if a.TypeName != "" {
			// Unnamed typed arguments get a positional variable.
			variable := a.Name
			if variable == "" {
				variable = fmt.Sprintf("arg%d", i+1)
			}
			decls = append(decls, fmt.Sprintf("DECLARE @%s %s = %s;", variable, a.castType(), v))
			v = "@" + variable
		}
		if named {
			v = "@" + a.Name + " = " + v
		}
		args = append(args, v)
	}
	stmt := "EXEC " + m.QuoteIdent(c.Routine)
	if len(args) > 0 {
		stmt += " " + strings.Join(args, ", ")
	}
	if len(decls) > 0 {
		stmt = strings.Join(decls, " ") + " " + stmt
	}
	if len(outs) == 0 {
		return stmt, nil
	}
	return stmt + "; SELECT " + strings.Join(outs, ", "), nil
}

// execArg renders an EXEC parameter value. EXEC takes constants and
// variables only, so dates stay plain strings and casts become typed
// variables in Callable.
func (m MSSQL) execArg(a Arg) string {
	return renderLiteral(m, a.Value, a.fieldType(), func(q string) string { return q })
}

// Classify takes SQL Server error numbers. 50001 is raised by the registry
// routines when the row version no longer matches.
func (MSSQL) Classify(code, message string) apperrors.Kind {
	switch code {
	case "2627", "2601":
		return apperrors.DuplicateKey
	case "547":
		return apperrors.ForeignKey
	case "18456", "4060", "10054", "10060", "233":
		return apperrors.Connection
	case "1205", "50001":
		return apperrors.StaleRow
	case "":
		return classifyText(message)
	}
	return apperrors.Query
}
