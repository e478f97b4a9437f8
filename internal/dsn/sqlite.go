// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

// SQLiteResolver handles sqlite://path, sqlite3://path and file: DSNs.
// sqlite://:memory: opens a private in-memory database.
type SQLiteResolver struct{}

// NewSQLiteResolver creates a new SQLite resolver
func NewSQLiteResolver() *SQLiteResolver {
	return &SQLiteResolver{}
}

func (r *SQLiteResolver) Parse(dsn string) (*DSNInfo, error) {
	rest := strings.TrimSpace(dsn)
	lower := strings.ToLower(rest)
	for _, prefix := range []string{"sqlite3://", "sqlite://", "file:"} {
		if strings.HasPrefix(lower, prefix) {
			rest = rest[len(prefix):]
			break
		}
	}

	info := &DSNInfo{
		Type:     DBTypeSQLite,
		Params:   make(map[string]string),
		Original: dsn,
	}
	path, query, _ := strings.Cut(rest, "?")
	info.Database = path
	for _, param := range strings.Split(query, "&") {
		if kv := strings.SplitN(param, "=", 2); len(kv) == 2 {
			info.Params[kv[0]] = kv[1]
		}
	}
	if info.Database == "" {
		return nil, NewParseError(dsn, "missing database path", "use sqlite:///path/to/file.db or sqlite://:memory:")
	}
	return info, nil
}

// Normalize renders a file: URI for modernc.org/sqlite with foreign keys
// enforced unless the DSN sets its own pragmas.
func (r *SQLiteResolver) Normalize(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	params := make(map[string]string, len(info.Params)+1)
	for k, v := range info.Params {
		params[k] = v
	}
	if _, ok := params["_pragma"]; !ok {
		params["_pragma"] = "foreign_keys(1)"
	}
	return "file:" + info.Database + "?" + encodeParams(params), nil
}

func (r *SQLiteResolver) Validate(dsn string) error {
	_, err := r.Parse(dsn)
	return err
}
