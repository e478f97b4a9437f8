// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlbuild

import (
	"regexp"
	"strconv"
	"strings"

	apperrors "sqlbridge/cli/internal/errors"
)

// StatementKind is the verb of a parsed DML statement.
type StatementKind string

const (
	KindInsert StatementKind = "INSERT"
	KindUpdate StatementKind = "UPDATE"
	KindDelete StatementKind = "DELETE"
)

// Statement is what ParseDML recovers from generated DML text. Names are
// unquoted. Values holds the VALUES list of an INSERT or the right-hand sides
// of an UPDATE's SET list, in column order.
type Statement struct {
	Kind    StatementKind
	Table   string
	Columns []string
	Values  []string
	Where   string
	// Limit is the row cap of a limited UPDATE, 0 when there is none.
	Limit int
}

const identPattern = "(?:\"(?:[^\"]|\"\")*\"|`(?:[^`]|``)*`|\\[(?:[^\\]]|\\]\\])*\\]|[A-Za-z_][A-Za-z0-9_$]*)"

var (
	tablePattern = identPattern + `(?:\.` + identPattern + `)*`

	insertRegex   = regexp.MustCompile(`(?is)^\s*INSERT\s+INTO\s+(` + tablePattern + `)\s*\((.*?)\)\s*VALUES\s*\((.*)\)\s*;?\s*$`)
	updateTopRe   = regexp.MustCompile(`(?is)^\s*UPDATE\s+TOP\s*\(\s*(\d+)\s*\)\s+(` + tablePattern + `)\s+SET\s+(.*?)\s*;?\s*$`)
	updateRegex   = regexp.MustCompile(`(?is)^\s*UPDATE\s+(` + tablePattern + `)\s+SET\s+(.*?)\s*;?\s*$`)
	deleteRegex   = regexp.MustCompile(`(?is)^\s*DELETE\s+FROM\s+(` + tablePattern + `)(.*?)\s*;?\s*$`)
	trailingLimit = regexp.MustCompile(`(?is)^(.*?)\s+LIMIT\s+(\d+)$`)
	rowIDSubquery = regexp.MustCompile(`(?is)^(ctid|rowid)\s+IN\s*\(\s*SELECT\s+(?:ctid|rowid)\s+FROM\s+` + tablePattern + `(?:\s+WHERE\s+(.*?))?\s+LIMIT\s+(\d+)\s*\)$`)
	identRegex    = regexp.MustCompile(`^` + tablePattern)
)

// ParseDML recovers the table, columns and row limit of INSERT, UPDATE and
// DELETE text in any supported dialect. It understands the statement shapes
// this package generates, not arbitrary SQL.
func ParseDML(text string) (*Statement, error) {
	if m := insertRegex.FindStringSubmatch(text); m != nil {
		st := &Statement{Kind: KindInsert, Table: unquoteName(m[1])}
		for _, c := range splitTopLevel(m[2]) {
			st.Columns = append(st.Columns, unquoteName(c))
		}
		st.Values = splitTopLevel(m[3])
		if len(st.Values) != len(st.Columns) {
			return nil, apperrors.Newf(apperrors.InvalidArgument, "INSERT into %s has %d columns but %d values", st.Table, len(st.Columns), len(st.Values))
		}
		return st, nil
	}

	if m := updateTopRe.FindStringSubmatch(text); m != nil {
		limit, _ := strconv.Atoi(m[1])
		st, err := parseUpdate(m[2], m[3])
		if err != nil {
			return nil, err
		}
		st.Limit = limit
		return st, nil
	}

	if m := updateRegex.FindStringSubmatch(text); m != nil {
		st, err := parseUpdate(m[1], m[2])
		if err != nil {
			return nil, err
		}
		if rm := rowIDSubquery.FindStringSubmatch(st.Where); rm != nil {
			st.Where = strings.TrimSpace(rm[2])
			st.Limit, _ = strconv.Atoi(rm[3])
			return st, nil
		}
		// MySQL puts the limit last, after WHERE or directly after SET.
		tail := &st.Where
		if st.Where == "" && len(st.Values) > 0 {
			tail = &st.Values[len(st.Values)-1]
		}
		if lm := trailingLimit.FindStringSubmatch(*tail); lm != nil {
			*tail = strings.TrimSpace(lm[1])
			st.Limit, _ = strconv.Atoi(lm[2])
		}
		return st, nil
	}

	if m := deleteRegex.FindStringSubmatch(text); m != nil {
		st := &Statement{Kind: KindDelete, Table: unquoteName(m[1])}
		rest := strings.TrimSpace(m[2])
		if rest != "" {
			i := indexKeyword(rest, "WHERE")
			if i != 0 {
				return nil, apperrors.Newf(apperrors.InvalidArgument, "unexpected text after DELETE FROM %s", st.Table)
			}
			st.Where = strings.TrimSpace(rest[len("WHERE"):])
		}
		return st, nil
	}

	return nil, apperrors.New(apperrors.InvalidArgument, "not an INSERT, UPDATE or DELETE statement")
}

func parseUpdate(table, rest string) (*Statement, error) {
	st := &Statement{Kind: KindUpdate, Table: unquoteName(table)}
	set := rest
	if i := indexKeyword(rest, "WHERE"); i >= 0 {
		set = strings.TrimSpace(rest[:i])
		st.Where = strings.TrimSpace(rest[i+len("WHERE"):])
	}
	for _, pair := range splitTopLevel(set) {
		name := identRegex.FindString(pair)
		if name == "" {
			return nil, apperrors.Newf(apperrors.InvalidArgument, "cannot parse SET item %q", pair)
		}
		value := strings.TrimSpace(pair[len(name):])
		if !strings.HasPrefix(value, "=") {
			return nil, apperrors.Newf(apperrors.InvalidArgument, "SET item %q has no assignment", pair)
		}
		st.Columns = append(st.Columns, unquoteName(name))
		st.Values = append(st.Values, strings.TrimSpace(value[1:]))
	}
	return st, nil
}

// scan walks s and calls fn for every byte outside quotes and brackets, with
// the current parenthesis depth. fn returns false to stop.
func scan(s string, fn func(i, depth int) bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '"', '`', '[':
			closer := c
			if c == '[' {
				closer = ']'
			}
			for i++; i < len(s); i++ {
				if s[i] != closer {
					continue
				}
				if i+1 < len(s) && s[i+1] == closer {
					i++
					continue
				}
				break
			}
		case '(':
			depth++
		case ')':
			depth--
		default:
			if !fn(i, depth) {
				return
			}
		}
	}
}

// splitTopLevel splits a comma-separated list, ignoring commas inside quotes
// and parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	start := 0
	scan(s, func(i, depth int) bool {
		if s[i] == ',' && depth == 0 {
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
		return true
	})
	if last := strings.TrimSpace(s[start:]); last != "" || len(parts) > 0 {
		parts = append(parts, last)
	}
	return parts
}

// indexKeyword finds kw as a whole word at parenthesis depth zero, outside
// quotes. It returns -1 when absent.
func indexKeyword(s, kw string) int {
	found := -1
	scan(s, func(i, depth int) bool {
		if depth != 0 || i+len(kw) > len(s) || !strings.EqualFold(s[i:i+len(kw)], kw) {
			return true
		}
		if i > 0 && isWordByte(s[i-1]) || i+len(kw) < len(s) && isWordByte(s[i+len(kw)]) {
			return true
		}
		found = i
		return false
	})
	return found
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// unquoteName strips identifier quotes from each part of a dotted name.
func unquoteName(name string) string {
	var parts []string
	rest := strings.TrimSpace(name)
	for rest != "" {
		var part string
		switch rest[0] {
		case '"', '`', '[':
			closer := rest[0]
			if closer == '[' {
				closer = ']'
			}
			i := 1
			for ; i < len(rest); i++ {
				if rest[i] != closer {
					continue
				}
				if i+1 < len(rest) && rest[i+1] == closer {
					i++
					continue
				}
				break
			}
			part = strings.ReplaceAll(rest[1:min(i, len(rest))], string([]byte{closer, closer}), string(closer))
			rest = rest[min(i+1, len(rest)):]
		default:
			j := strings.IndexByte(rest, '.')
			if j < 0 {
				j = len(rest)
			}
			part = rest[:j]
			rest = rest[j:]
		}
		parts = append(parts, part)
		rest = strings.TrimPrefix(rest, ".")
	}
	return strings.Join(parts, ".")
}
