// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"net/url"
	"sort"
	"strings"
)

// DetectDBType detects the database type from a DSN string
func DetectDBType(dsn string) DBType {
	lower := strings.ToLower(strings.TrimSpace(dsn))

	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DBTypePostgreSQL
	case strings.HasPrefix(lower, "mysql://"), strings.HasPrefix(lower, "mariadb://"):
		return DBTypeMySQL
	case strings.HasPrefix(lower, "sqlserver://"), strings.HasPrefix(lower, "mssql://"):
		return DBTypeSQLServer
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "sqlite3://"), strings.HasPrefix(lower, "file:"):
		return DBTypeSQLite
	case strings.HasPrefix(lower, "oracle://"):
		return DBTypeOracle
	}
	return DBTypeUnknown
}

// resolverFor picks the resolver for the DSN's scheme.
func resolverFor(dsn string) (Resolver, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}

	switch DetectDBType(dsn) {
	case DBTypePostgreSQL:
		return NewPostgreSQLResolver(), nil
	case DBTypeMySQL:
		return NewMySQLResolver(), nil
	case DBTypeSQLServer:
		return NewSQLServerResolver(), nil
	case DBTypeSQLite:
		return NewSQLiteResolver(), nil
	case DBTypeOracle:
		return nil, NewParseError(dsn, "Oracle is not supported", "use postgres://, mysql://, sqlserver:// or sqlite://")
	}
	return nil, NewParseError(dsn, "unknown database type", "use postgres://, mysql://, sqlserver:// or sqlite://")
}

// Parse parses a DSN string and returns the driver connection string.
// This is the main entry point for DSN parsing
func Parse(dsn string) (string, error) {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return "", err
	}

	info, err := resolver.Parse(dsn)
	if err != nil {
		return "", err
	}

	return resolver.Normalize(info)
}

// Validate validates a DSN string without normalizing it
func Validate(dsn string) error {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return err
	}
	return resolver.Validate(dsn)
}

// ParseInfo parses a DSN string and returns detailed DSN info
// Useful for inspecting connection details
func ParseInfo(dsn string) (*DSNInfo, error) {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return nil, err
	}
	return resolver.Parse(dsn)
}

// Resolve parses dsn and returns both the details and the driver connection
// string.
func Resolve(dsn string) (*DSNInfo, string, error) {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return nil, "", err
	}
	info, err := resolver.Parse(dsn)
	if err != nil {
		return nil, "", err
	}
	normalized, err := resolver.Normalize(info)
	if err != nil {
		return nil, "", err
	}
	return info, normalized, nil
}

// encodeParams renders params as a query string with sorted keys.
func encodeParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("&")
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteString("=")
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

// queryParams flattens URL query values to their first value.
func queryParams(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for key, v := range values {
		if len(v) > 0 {
			out[key] = v[0]
		}
	}
	return out
}
