// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dialect captures the SQL syntax differences between the supported
// database products: identifier quoting, literal and cast rendering,
// pagination, limited updates, routine invocation, and classification of
// vendor errors.
//
// Each product has one Dialect implementation. Callers pick one by name from
// configuration with Lookup; nothing in the query builder branches on the
// product itself.
package dialect

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"sqlbridge/cli/internal/entity"
	apperrors "sqlbridge/cli/internal/errors"
)

// Dialect is the capability set the query builder and drivers depend on.
type Dialect interface {
	// Name is the canonical product name (postgres, mysql, mssql, sqlite).
	Name() string
	// DriverName is the database/sql driver name; empty when the product is
	// served by a native client.
	DriverName() string

	QuoteIdent(name string) string
	QuoteString(s string) string
	BoolLiteral(b bool) string
	// Literal renders v as a SQL literal according to its field type.
	Literal(v any, t entity.FieldType) string
	Cast(expr, typeName string) string
	// AsText converts expr to the product's text type, for pattern matching
	// on non-string columns.
	AsText(expr string) string

	// LimitOffset renders the pagination clause for count rows starting at
	// start. ok is false when the product cannot express the page (an empty
	// page on SQL Server); the caller then guards the query with a false
	// predicate instead.
	LimitOffset(start, count int) (clause string, ok bool)
	// UpdateLimit renders an UPDATE touching at most n rows. table is quoted,
	// set and where are finished fragments; where may be empty.
	UpdateLimit(table, set, where string, n int) string

	ConcatWS(sep string, exprs ...string) string
	YearOf(expr string) string
	// ILike renders a case-insensitive LIKE of expr against a pattern literal.
	ILike(expr, pattern string) string

	// Callable renders the invocation text of a stored routine.
	Callable(c Call) (string, error)

	// Classify maps a vendor error code and message to an error kind.
	Classify(code, message string) apperrors.Kind
}

var registry = map[string]Dialect{}

func register(d Dialect, aliases ...string) {
	registry[d.Name()] = d
	for _, a := range aliases {
		registry[a] = d
	}
}

func init() {
	register(Postgres{}, "postgresql", "pgsql", "pgx")
	register(MySQL{}, "mariadb")
	register(MSSQL{}, "sqlserver", "mssqlserver")
	register(SQLite{}, "sqlite3")
}

// Lookup returns the dialect registered under name (case-insensitive).
func Lookup(name string) (Dialect, error) {
	d, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, apperrors.Newf(apperrors.Unsupported, "unknown SQL dialect %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return d, nil
}

// Names lists canonical dialect names.
func Names() []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range registry {
		if !seen[d.Name()] {
			seen[d.Name()] = true
			out = append(out, d.Name())
		}
	}
	sort.Strings(out)
	return out
}

// quoting holds the identifier rules shared by all products.
type quoting struct {
	open, close string
	simple      *regexp.Regexp
	reserved    map[string]struct{}
}

var (
	lowerIdent = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	mixedIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	numberText = regexp.MustCompile(`^[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?$`)
)

var commonReserved = []string{
	"all", "and", "as", "asc", "between", "by", "case", "check", "column", "constraint",
	"create", "default", "delete", "desc", "distinct", "drop", "else", "end", "from",
	"grant", "group", "having", "in", "index", "insert", "into", "is", "join", "key",
	"like", "limit", "not", "null", "offset", "on", "or", "order", "primary",
	"references", "select", "set", "table", "then", "to", "union", "unique", "update",
	"user", "values", "when", "where",
}

func newQuoting(open, close string, simple *regexp.Regexp, extra ...string) quoting {
	q := quoting{open: open, close: close, simple: simple, reserved: map[string]struct{}{}}
	for _, w := range append(commonReserved, extra...) {
		q.reserved[w] = struct{}{}
	}
	return q
}

// quote quotes each dot-separated part that is not a plain identifier.
func (q quoting) quote(name string) string {
	if name == "*" {
		return name
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if p == "*" {
			continue
		}
		if _, res := q.reserved[strings.ToLower(p)]; q.simple.MatchString(p) && !res {
			continue
		}
		parts[i] = q.open + strings.ReplaceAll(p, q.close, q.close+q.close) + q.close
	}
	return strings.Join(parts, ".")
}

func quoteStandard(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// text renders scalar Go values as the text a literal carries.
func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func parseBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case int:
		return x != 0, true
	case int64:
		return x != 0, true
	case float64:
		return x != 0, true
	}
	switch strings.ToLower(strings.TrimSpace(text(v))) {
	case "true", "t", "1", "yes", "y", "on":
		return true, true
	case "false", "f", "0", "no", "n", "off":
		return false, true
	}
	return false, false
}

// renderLiteral implements Literal on top of a dialect's primitives.
// date wraps an already quoted date literal.
func renderLiteral(d Dialect, v any, t entity.FieldType, date func(string) string) string {
	if v == nil {
		return "NULL"
	}
	switch t {
	case entity.TypeBoolean:
		if b, ok := parseBool(v); ok {
			return d.BoolLiteral(b)
		}
	case entity.TypeNumeric, entity.TypeRowVersion:
		if s := strings.TrimSpace(text(v)); numberText.MatchString(s) {
			return s
		}
	case entity.TypeDate:
		if tm, ok := v.(time.Time); ok {
			return date(d.QuoteString(tm.Format("2006-01-02")))
		}
		return date(d.QuoteString(text(v)))
	}
	return d.QuoteString(text(v))
}

// classifyText is the last-resort classification on message text, used when
// the driver gave no vendor code.
func classifyText(message string) apperrors.Kind {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "duplicate key"),
		strings.Contains(lower, "duplicate entry"),
		strings.Contains(lower, "unique constraint"),
		strings.Contains(lower, "violation of primary key"):
		return apperrors.DuplicateKey
	case strings.Contains(lower, "foreign key"),
		strings.Contains(lower, "reference constraint"):
		return apperrors.ForeignKey
	case strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "connection reset"),
		strings.Contains(lower, "broken pipe"),
		strings.Contains(lower, "bad connection"),
		strings.Contains(lower, "no such host"),
		strings.Contains(lower, "timeout"),
		strings.Contains(lower, "deadline exceeded"):
		return apperrors.Connection
	case strings.Contains(lower, "could not serialize"),
		strings.Contains(lower, "row was updated or deleted"):
		return apperrors.StaleRow
	}
	return apperrors.Query
}
