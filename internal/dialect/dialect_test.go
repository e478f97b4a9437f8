// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dialect

import (
	"testing"
	"time"

	"sqlbridge/cli/internal/entity"
	apperrors "sqlbridge/cli/internal/errors"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"postgres", "postgres"},
		{"PostgreSQL", "postgres"},
		{"mariadb", "mysql"},
		{" sqlserver ", "mssql"},
		{"sqlite3", "sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.name, err)
			}
			if d.Name() != tt.want {
				t.Errorf("Lookup(%q).Name() = %q, want %q", tt.name, d.Name(), tt.want)
			}
		})
	}

	if _, err := Lookup("oracle"); !apperrors.Is(err, apperrors.Unsupported) {
		t.Errorf("Lookup(oracle) error = %v, want unsupported", err)
	}
}

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		name  string
		d     Dialect
		ident string
		want  string
	}{
		{"pg plain", Postgres{}, "codigo", "codigo"},
		{"pg mixed case", Postgres{}, "Codigo", `"Codigo"`},
		{"pg reserved", Postgres{}, "order", `"order"`},
		{"pg qualified", Postgres{}, "tb_paises.paises_codigo", "tb_paises.paises_codigo"},
		{"pg embedded quote", Postgres{}, `a"b`, `"a""b"`},
		{"pg star", Postgres{}, "*", "*"},
		{"mysql reserved", MySQL{}, "order", "`order`"},
		{"mysql mixed case", MySQL{}, "Codigo", "Codigo"},
		{"mssql reserved", MSSQL{}, "user", "[user]"},
		{"mssql bracket", MSSQL{}, "a]b", "[a]]b]"},
		{"sqlite space", SQLite{}, "first name", `"first name"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.QuoteIdent(tt.ident); got != tt.want {
				t.Errorf("QuoteIdent(%q) = %s, want %s", tt.ident, got, tt.want)
			}
		})
	}
}

func TestQuoteString(t *testing.T) {
	if got := (Postgres{}).QuoteString("O'Brien"); got != "'O''Brien'" {
		t.Errorf("postgres QuoteString = %s", got)
	}
	if got := (MySQL{}).QuoteString(`a\b'c`); got != `'a\\b''c'` {
		t.Errorf("mysql QuoteString = %s", got)
	}
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		name string
		d    Dialect
		v    any
		t    entity.FieldType
		want string
	}{
		{"nil", Postgres{}, nil, entity.TypeString, "NULL"},
		{"string", Postgres{}, "ABC", entity.TypeString, "'ABC'"},
		{"number as string type", Postgres{}, 5, entity.TypeString, "'5'"},
		{"numeric", Postgres{}, "42", entity.TypeNumeric, "42"},
		{"numeric float", MySQL{}, 2.5, entity.TypeNumeric, "2.5"},
		{"numeric garbage quoted", Postgres{}, "4x", entity.TypeNumeric, "'4x'"},
		{"pg boolean", Postgres{}, "true", entity.TypeBoolean, "TRUE"},
		{"mssql boolean", MSSQL{}, true, entity.TypeBoolean, "1"},
		{"sqlite boolean", SQLite{}, "f", entity.TypeBoolean, "0"},
		{"pg date", Postgres{}, "2020-01-02", entity.TypeDate, "'2020-01-02'::date"},
		{"mssql date", MSSQL{}, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), entity.TypeDate, "CAST('2020-01-02' AS date)"},
		{"mysql date", MySQL{}, "2020-01-02", entity.TypeDate, "'2020-01-02'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Literal(tt.v, tt.t); got != tt.want {
				t.Errorf("Literal(%v) = %s, want %s", tt.v, got, tt.want)
			}
		})
	}
}

func TestLimitOffset(t *testing.T) {
	tests := []struct {
		name         string
		d            Dialect
		start, count int
		want         string
		ok           bool
	}{
		{"postgres", Postgres{}, 0, 10, "LIMIT 10 OFFSET 0", true},
		{"mysql", MySQL{}, 20, 5, "LIMIT 5 OFFSET 20", true},
		{"sqlite empty page", SQLite{}, 0, 0, "LIMIT 0 OFFSET 0", true},
		{"mssql", MSSQL{}, 20, 10, "OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY", true},
		{"mssql empty page", MSSQL{}, 0, 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.d.LimitOffset(tt.start, tt.count)
			if got != tt.want || ok != tt.ok {
				t.Errorf("LimitOffset(%d, %d) = %q, %v; want %q, %v", tt.start, tt.count, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestUpdateLimit(t *testing.T) {
	tests := []struct {
		name string
		d    Dialect
		want string
	}{
		{"mysql", MySQL{}, "UPDATE t SET a = 1 WHERE b = 2 LIMIT 1"},
		{"mssql", MSSQL{}, "UPDATE TOP (1) t SET a = 1 WHERE b = 2"},
		{"postgres", Postgres{}, "UPDATE t SET a = 1 WHERE ctid IN (SELECT ctid FROM t WHERE b = 2 LIMIT 1)"},
		{"sqlite", SQLite{}, "UPDATE t SET a = 1 WHERE rowid IN (SELECT rowid FROM t WHERE b = 2 LIMIT 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.UpdateLimit("t", "a = 1", "b = 2", 1); got != tt.want {
				t.Errorf("UpdateLimit() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCallable(t *testing.T) {
	tests := []struct {
		name string
		d    Dialect
		call Call
		want string
	}{
		{
			name: "pg set returning function",
			d:    Postgres{},
			call: Call{Routine: "fn_paises", Kind: Function, Returns: Records, Args: []Arg{{Value: "PE"}, {Value: true}, {Value: 3}}},
			want: "SELECT * FROM fn_paises('PE', TRUE, 3)",
		},
		{
			name: "pg procedure with cast",
			d:    Postgres{},
			call: Call{Routine: "sp_atletas_save_record", Kind: Procedure, Args: []Arg{{Value: "X", TypeName: "varchar", Size: 15}, {Value: false}}},
			want: "CALL sp_atletas_save_record('X'::varchar(15), FALSE)",
		},
		{
			name: "pg named",
			d:    Postgres{},
			call: Call{Routine: "f", Kind: Function, Named: true, Args: []Arg{{Name: "p_code", Value: "a"}}},
			want: "SELECT f(p_code => 'a')",
		},
		{
			name: "pg output placeholder",
			d:    Postgres{},
			call: Call{Routine: "p", Kind: Procedure, Args: []Arg{{Value: 1}, {Name: "total", Mode: ArgOut, TypeName: "integer"}}},
			want: "CALL p(1, NULL::integer)",
		},
		{
			name: "mysql function",
			d:    MySQL{},
			call: Call{Routine: "fn_x", Kind: Function, Args: []Arg{{Value: 2.5}}},
			want: "SELECT fn_x(2.5)",
		},
		{
			name: "mysql procedure output",
			d:    MySQL{},
			call: Call{Routine: "sp_count", Kind: Procedure, Args: []Arg{{Value: "PE"}, {Name: "total", Mode: ArgOut}}},
			want: "CALL sp_count('PE', @total); SELECT @total AS total",
		},
		{
			name: "mssql scalar function",
			d:    MSSQL{},
			call: Call{Routine: "fn_x", Kind: Function, Args: []Arg{{Value: true}}},
			want: "SELECT dbo.fn_x(1)",
		},
		{
			name: "mssql procedure positional",
			d:    MSSQL{},
			call: Call{Routine: "sp_x", Kind: Procedure, Args: []Arg{{Value: "a"}, {Value: 7}}},
			want: "EXEC sp_x 'a', 7",
		},
		{
			name: "mssql procedure output",
			d:    MSSQL{},
			call: Call{Routine: "sp_count", Kind: Procedure, Args: []Arg{{Name: "code", Value: "PE"}, {Name: "total", Mode: ArgOut, TypeName: "int"}}},
			want: "DECLARE @total int; EXEC sp_count @code = 'PE', @total = @total OUTPUT; SELECT @total AS total",
		},
		{
			name: "mssql procedure typed and date args",
			d:    MSSQL{},
			call: Call{Routine: "sp_atletas_save_record", Kind: Procedure, Args: []Arg{
				{Name: "atletas_codigo", Value: "A1", TypeName: "varchar", Size: 15},
				{Name: "atletas_fecha_nacimiento", Value: "1990-05-04", Type: entity.TypeDate},
				{Name: "is_update", Value: false},
			}},
			want: "DECLARE @atletas_codigo varchar(15) = 'A1'; EXEC sp_atletas_save_record @atletas_codigo, '1990-05-04', 0",
		},
		{
			name: "mssql procedure unnamed typed arg keeps its cast",
			d:    MSSQL{},
			call: Call{Routine: "sp_x", Kind: Procedure, Args: []Arg{
				{Value: "A1", TypeName: "varchar", Size: 15},
				{Value: int64(7)},
			}},
			want: "DECLARE @arg1 varchar(15) = 'A1'; EXEC sp_x @arg1, 7",
		},
		{
			name: "postgres procedure unnamed typed arg",
			d:    Postgres{},
			call: Call{Routine: "sp_x", Kind: Procedure, Args: []Arg{{Value: "A1", TypeName: "varchar", Size: 15}}},
			want: "CALL sp_x('A1'::varchar(15))",
		},
		{
			name: "mysql procedure unnamed typed arg",
			d:    MySQL{},
			call: Call{Routine: "sp_x", Kind: Procedure, Args: []Arg{{Value: "A1", TypeName: "varchar", Size: 15}}},
			want: "CALL sp_x(CAST('A1' AS varchar(15)))",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.d.Callable(tt.call)
			if err != nil {
				t.Fatalf("Callable() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Callable() =\n  %s\nwant\n  %s", got, tt.want)
			}
		})
	}
}

func TestCallableErrors(t *testing.T) {
	if _, err := (SQLite{}).Callable(Call{Routine: "f"}); !apperrors.Is(err, apperrors.Unsupported) {
		t.Errorf("sqlite Callable error = %v, want unsupported", err)
	}
	if _, err := (MySQL{}).Callable(Call{Routine: "p", Kind: Procedure, Args: []Arg{{Mode: ArgOut}}}); !apperrors.Is(err, apperrors.InvalidArgument) {
		t.Errorf("unnamed output error = %v, want invalid_argument", err)
	}
	if _, err := (Postgres{}).Callable(Call{}); !apperrors.Is(err, apperrors.InvalidArgument) {
		t.Errorf("empty routine error = %v, want invalid_argument", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		d       Dialect
		code    string
		message string
		want    apperrors.Kind
	}{
		{"pg unique", Postgres{}, "23505", "", apperrors.DuplicateKey},
		{"pg fk", Postgres{}, "23503", "", apperrors.ForeignKey},
		{"pg connection class", Postgres{}, "08006", "", apperrors.Connection},
		{"pg other", Postgres{}, "42601", "syntax error", apperrors.Query},
		{"mysql duplicate", MySQL{}, "1062", "", apperrors.DuplicateKey},
		{"mysql fk child", MySQL{}, "1452", "", apperrors.ForeignKey},
		{"mssql pk", MSSQL{}, "2627", "", apperrors.DuplicateKey},
		{"mssql fk", MSSQL{}, "547", "", apperrors.ForeignKey},
		{"mssql routine conflict", MSSQL{}, "50001", "athlete was changed", apperrors.StaleRow},
		{"mysql signalled conflict", MySQL{}, "40001", "athlete was changed", apperrors.StaleRow},
		{"sqlite unique", SQLite{}, "2067", "", apperrors.DuplicateKey},
		{"sqlite fk", SQLite{}, "787", "", apperrors.ForeignKey},
		{"sqlite generic constraint", SQLite{}, "19", "UNIQUE constraint failed: t.a", apperrors.DuplicateKey},
		{"text fallback duplicate", MySQL{}, "", "Duplicate entry 'PE' for key 'PRIMARY'", apperrors.DuplicateKey},
		{"text fallback refused", Postgres{}, "", "dial tcp: connection refused", apperrors.Connection},
		{"code wins over text", Postgres{}, "42601", "duplicate key near", apperrors.Query},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Classify(tt.code, tt.message); got != tt.want {
				t.Errorf("Classify(%q, %q) = %v, want %v", tt.code, tt.message, got, tt.want)
			}
		})
	}
}

func TestComputedExpressions(t *testing.T) {
	if got := (Postgres{}).YearOf("atletas_fecha_nacimiento"); got != "CAST(EXTRACT(YEAR FROM atletas_fecha_nacimiento) AS integer)" {
		t.Errorf("postgres YearOf = %s", got)
	}
	if got := (MySQL{}).ConcatWS(" ", "a", "b"); got != "CONCAT_WS(' ', a, b)" {
		t.Errorf("mysql ConcatWS = %s", got)
	}
	if got := (SQLite{}).ConcatWS(" ", "a", "b"); got != "SUBSTR(COALESCE(' ' || a, '') || COALESCE(' ' || b, ''), 2)" {
		t.Errorf("sqlite ConcatWS = %s", got)
	}
	if got := (Postgres{}).ILike("x", "'%a%'"); got != "x ILIKE '%a%'" {
		t.Errorf("postgres ILike = %s", got)
	}
}
