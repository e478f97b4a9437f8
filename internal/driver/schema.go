// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package driver

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"sqlbridge/cli/internal/entity"
)

// TableInfo is the live shape of a table.
type TableInfo struct {
	// Table is the name as requested, schema-qualified or not.
	Table      string
	PrimaryKey []string
	// Columns lists column names in ordinal order; Types maps them to their
	// information_schema data type.
	Columns []string
	Types   map[string]string
}

// SchemaInspector reads table metadata from information_schema and caches
// it per table.
type SchemaInspector struct {
	pool  *pgxpool.Pool
	cache map[string]*TableInfo
	mu    sync.RWMutex
}

// NewSchemaInspector creates a new SchemaInspector with the given connection pool.
func NewSchemaInspector(pool *pgxpool.Pool) *SchemaInspector {
	return &SchemaInspector{
		pool:  pool,
		cache: make(map[string]*TableInfo),
	}
}

// Table returns the metadata of tableName ("table" or "schema.table").
func (si *SchemaInspector) Table(ctx context.Context, tableName string) (*TableInfo, error) {
	si.mu.RLock()
	if info, ok := si.cache[tableName]; ok {
		si.mu.RUnlock()
		return info, nil
	}
	si.mu.RUnlock()

	schema, table := parseTableName(tableName)
	info := &TableInfo{Table: tableName, Types: make(map[string]string)}

	conn, err := si.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	if err := loadColumns(ctx, conn, schema, table, info); err != nil {
		return nil, err
	}
	if len(info.Columns) == 0 {
		return nil, fmt.Errorf("table %s.%s not found", schema, table)
	}
	if err := loadPrimaryKey(ctx, conn, schema, table, info); err != nil {
		return nil, err
	}

	si.mu.Lock()
	si.cache[tableName] = info
	si.mu.Unlock()
	return info, nil
}

// ClearCache drops all cached metadata.
func (si *SchemaInspector) ClearCache() {
	si.mu.Lock()
	defer si.mu.Unlock()
	si.cache = make(map[string]*TableInfo)
}

// parseTableName splits a table name into schema and table components.
// If no schema is specified, it defaults to "public".
func parseTableName(tableName string) (schema string, table string) {
	parts := strings.Split(tableName, ".")
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "public", tableName
}

func loadColumns(ctx context.Context, conn *pgxpool.Conn, schema, table string, info *TableInfo) error {
	rows, err := conn.Query(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, schema, table)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return err
		}
		info.Columns = append(info.Columns, name)
		info.Types[name] = dataType
	}
	return rows.Err()
}

func loadPrimaryKey(ctx context.Context, conn *pgxpool.Conn, schema, table string, info *TableInfo) error {
	rows, err := conn.Query(ctx, `
		SELECT kc.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kc
		  ON tc.constraint_name = kc.constraint_name AND tc.table_schema = kc.table_schema
		WHERE tc.table_schema = $1 AND tc.table_name = $2 AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kc.ordinal_position`, schema, table)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		info.PrimaryKey = append(info.PrimaryKey, name)
	}
	return rows.Err()
}

// FieldTypeOf maps an information_schema data type to a field type tag.
func FieldTypeOf(dataType string) entity.FieldType {
	dt := strings.ToLower(dataType)
	switch {
	case dt == "boolean" || dt == "bit":
		return entity.TypeBoolean
	case dt == "date" || strings.HasPrefix(dt, "timestamp") || strings.HasPrefix(dt, "datetime"):
		return entity.TypeDate
	case strings.Contains(dt, "int") || dt == "numeric" || dt == "decimal" ||
		dt == "real" || dt == "double precision" || dt == "float" || dt == "money":
		return entity.TypeNumeric
	}
	return entity.TypeString
}

// Diff lists the differences between a descriptor and the live table:
// stored fields missing from the table, type tags that disagree, and key
// mismatches. Computed fields are not checked.
func Diff(desc *entity.Descriptor, info *TableInfo) []string {
	var out []string
	for _, f := range desc.Fields() {
		if f.Computed() {
			continue
		}
		dt, ok := info.Types[f.Name]
		if !ok {
			out = append(out, fmt.Sprintf("field %s: no such column", f.Name))
			continue
		}
		want := f.Type
		if want == entity.TypeRowVersion {
			want = entity.TypeNumeric
		}
		if got := FieldTypeOf(dt); got != want {
			out = append(out, fmt.Sprintf("field %s: declared %s, column is %s", f.Name, f.Type, dt))
		}
	}
	if keys := desc.Keys(); strings.Join(keys, ",") != strings.Join(info.PrimaryKey, ",") {
		out = append(out, fmt.Sprintf("key: declared (%s), primary key is (%s)", strings.Join(keys, ", "), strings.Join(info.PrimaryKey, ", ")))
	}
	return out
}
