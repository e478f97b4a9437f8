// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package accessor

import (
	"strings"
	"testing"

	"sqlbridge/cli/internal/criteria"
	"sqlbridge/cli/internal/dialect"
	"sqlbridge/cli/internal/entity"
	apperrors "sqlbridge/cli/internal/errors"
)

func paisesFixture() *entity.Descriptor {
	return entity.MustDescriptor("paises", "tb_paises", []string{"paises_codigo"},
		entity.NewField("paises_codigo", entity.TypeString),
		entity.NewField("paises_descripcion", entity.TypeString),
		entity.NewField("paises_protected", entity.TypeBoolean, entity.OpReadOnly),
		entity.NewField("version", entity.TypeRowVersion, entity.OpReadOnly),
	)
}

func atletasFixture() *entity.Descriptor {
	return entity.MustDescriptor("atletas", "tb_atletas", []string{"atletas_codigo"},
		entity.NewField("atletas_codigo", entity.TypeString),
		entity.NewField("atletas_ap_paterno", entity.TypeString),
		entity.NewField("atletas_ap_materno", entity.TypeString),
		entity.NewField("atletas_nombres", entity.TypeString),
		entity.NewField("atletas_nombre_completo", entity.TypeString, entity.OpComputed),
		entity.NewField("atletas_fecha_nacimiento", entity.TypeDate),
		entity.NewField("atletas_agno", entity.TypeNumeric, entity.OpComputed),
		entity.NewField("atletas_protected", entity.TypeBoolean, entity.OpReadOnly),
		entity.NewField("version", entity.TypeRowVersion, entity.OpReadOnly),
	)
}

func record(t *testing.T, desc *entity.Descriptor, values map[string]any) *entity.Record {
	t.Helper()
	rec := entity.NewRecord(desc)
	for k, v := range values {
		if err := rec.Set(k, v); err != nil {
			t.Fatal(err)
		}
	}
	return rec
}

func TestBaseAddSkipsComputedFields(t *testing.T) {
	desc := atletasFixture()
	rec := record(t, desc, map[string]any{
		"atletas_codigo":          "A1",
		"atletas_nombres":         "Ana",
		"atletas_nombre_completo": "Ana Perez",
		"atletas_agno":            "2000",
		"atletas_protected":       "true",
	})
	got, err := New(dialect.SQLite{}, desc).AddQuery(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := "INSERT INTO tb_atletas (atletas_codigo, atletas_nombres) VALUES ('A1', 'Ana')"
	if got != want {
		t.Errorf("AddQuery() = %s, want %s", got, want)
	}
}

func TestBaseAddRequiresKey(t *testing.T) {
	desc := paisesFixture()
	rec := record(t, desc, map[string]any{"paises_descripcion": "Peru"})
	if _, err := New(dialect.Postgres{}, desc).AddQuery(rec); !apperrors.Is(err, apperrors.InvalidArgument) {
		t.Errorf("AddQuery() error = %v, want invalid_argument", err)
	}
}

func TestBaseReadQuery(t *testing.T) {
	desc := paisesFixture()
	rec := record(t, desc, map[string]any{"paises_codigo": "PE"})
	got, err := New(dialect.Postgres{}, desc).ReadQuery(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT paises_codigo, paises_descripcion, paises_protected, version FROM tb_paises WHERE paises_codigo = 'PE'"
	if got != want {
		t.Errorf("ReadQuery() = %s, want %s", got, want)
	}
}

func TestBaseUpdateWithoutValues(t *testing.T) {
	desc := paisesFixture()
	rec := record(t, desc, map[string]any{"paises_codigo": "PE", "version": "1"})
	if _, err := New(dialect.Postgres{}, desc).UpdateQuery(rec); !apperrors.Is(err, apperrors.InvalidArgument) {
		t.Errorf("UpdateQuery() error = %v, want invalid_argument", err)
	}
}

func TestPaisesGuardsProtectedRows(t *testing.T) {
	desc := paisesFixture()
	rec := record(t, desc, map[string]any{
		"paises_codigo":      "PE",
		"paises_descripcion": "Peru",
		"paises_protected":   "false",
		"version":            "2",
	})

	upd, err := NewPaises(dialect.MySQL{}, desc).UpdateQuery(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := "UPDATE tb_paises SET paises_descripcion = 'Peru', version = version + 1 WHERE paises_codigo = 'PE' AND version = 2 AND paises_protected = FALSE"
	if upd != want {
		t.Errorf("UpdateQuery() =\n  %s\nwant\n  %s", upd, want)
	}

	del, err := NewPaises(dialect.MSSQL{}, desc).RemoveQuery(rec)
	if err != nil {
		t.Fatal(err)
	}
	want = "DELETE FROM tb_paises WHERE paises_codigo = 'PE' AND version = 2 AND paises_protected = 0"
	if del != want {
		t.Errorf("RemoveQuery() =\n  %s\nwant\n  %s", del, want)
	}
}

func TestProtectedGuardIgnoresClientFilters(t *testing.T) {
	desc := paisesFixture()
	rec := record(t, desc, map[string]any{
		"paises_codigo":      "PE",
		"paises_descripcion": "Peru",
		"paises_protected":   "true",
	})

	tests := []struct {
		name string
		d    dialect.Dialect
		want string
	}{
		{"postgres", dialect.Postgres{}, "paises_protected = FALSE"},
		{"sqlite", dialect.SQLite{}, "paises_protected = 0"},
		{"mssql", dialect.MSSQL{}, "paises_protected = 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPaises(tt.d, desc).guard(rec)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("guard() = %q, want [%q]", got, tt.want)
			}
		})
	}
}

func TestPaisesFetchIsGeneric(t *testing.T) {
	desc := paisesFixture()
	rec := entity.NewRecord(desc)
	req, err := criteria.Parse(criteria.Params{"op": "fetch", "paises_codigo": "PE"}, rec)
	if err != nil {
		t.Fatal(err)
	}
	f, err := NewPaises(dialect.Postgres{}, desc).FetchQuery(rec, req.Constraints)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(f.SQL, "paises_protected =") {
		t.Errorf("fetch must not filter protected rows: %s", f.SQL)
	}
}

func TestAtletasFetchComputesColumns(t *testing.T) {
	desc := atletasFixture()
	rec := entity.NewRecord(desc)
	req, err := criteria.Parse(criteria.Params{"op": "fetch", "atletas_agno": "2000"}, rec)
	if err != nil {
		t.Fatal(err)
	}
	f, err := NewAtletas(dialect.Postgres{}, desc).FetchQuery(rec, req.Constraints)
	if err != nil {
		t.Fatal(err)
	}
	year := "CAST(EXTRACT(YEAR FROM atletas_fecha_nacimiento) AS integer)"
	want := "SELECT atletas_codigo, atletas_ap_paterno, atletas_ap_materno, atletas_nombres, " +
		"CONCAT_WS(' ', atletas_ap_paterno, atletas_ap_materno, atletas_nombres) AS atletas_nombre_completo, " +
		"atletas_fecha_nacimiento, " + year + " AS atletas_agno, atletas_protected, version " +
		"FROM tb_atletas WHERE " + year + " = 2000 ORDER BY atletas_codigo"
	if f.SQL != want {
		t.Errorf("FetchQuery().SQL =\n  %s\nwant\n  %s", f.SQL, want)
	}
	if f.Count != "SELECT COUNT(*) FROM tb_atletas WHERE "+year+" = 2000" {
		t.Errorf("FetchQuery().Count = %s", f.Count)
	}
}

func TestAtletasWritesThroughRoutine(t *testing.T) {
	desc := atletasFixture()
	values := map[string]any{
		"atletas_codigo":           "A1",
		"atletas_ap_paterno":       "Perez",
		"atletas_nombres":          "Ana",
		"atletas_nombre_completo":  "ignored",
		"atletas_fecha_nacimiento": "2000-05-01",
		"atletas_agno":             "2000",
	}
	acc := NewAtletas(dialect.Postgres{}, desc)

	add, err := acc.AddQuery(record(t, desc, values))
	if err != nil {
		t.Fatal(err)
	}
	want := "CALL sp_atletas_save_record('A1', 'Perez', NULL, 'Ana', '2000-05-01'::date, NULL, FALSE)"
	if add != want {
		t.Errorf("AddQuery() =\n  %s\nwant\n  %s", add, want)
	}

	if _, err := acc.UpdateQuery(record(t, desc, values)); !apperrors.Is(err, apperrors.InvalidArgument) {
		t.Errorf("UpdateQuery() without version error = %v, want invalid_argument", err)
	}

	values["version"] = "3"
	upd, err := acc.UpdateQuery(record(t, desc, values))
	if err != nil {
		t.Fatal(err)
	}
	want = "CALL sp_atletas_save_record('A1', 'Perez', NULL, 'Ana', '2000-05-01'::date, 3, TRUE)"
	if upd != want {
		t.Errorf("UpdateQuery() =\n  %s\nwant\n  %s", upd, want)
	}

	del, err := acc.RemoveQuery(record(t, desc, values))
	if err != nil {
		t.Fatal(err)
	}
	if want := "DELETE FROM tb_atletas WHERE atletas_codigo = 'A1' AND version = 3 AND atletas_protected = FALSE"; del != want {
		t.Errorf("RemoveQuery() = %s, want %s", del, want)
	}
}

func TestAtletasUpdateKeepsOmittedFields(t *testing.T) {
	desc := atletasFixture()
	acc := NewAtletas(dialect.Postgres{}, desc)

	tests := []struct {
		name   string
		values map[string]any
		want   string
	}{
		{
			name:   "omitted fields are null",
			values: map[string]any{"atletas_codigo": "A1", "atletas_nombres": "Ana", "version": "3"},
			want:   "CALL sp_atletas_save_record('A1', NULL, NULL, 'Ana', NULL, 3, TRUE)",
		},
		{
			name:   "null text clears the field",
			values: map[string]any{"atletas_codigo": "A1", "atletas_ap_materno": nil, "version": "3"},
			want:   "CALL sp_atletas_save_record('A1', NULL, '', NULL, NULL, 3, TRUE)",
		},
		{
			name:   "null date is kept",
			values: map[string]any{"atletas_codigo": "A1", "atletas_fecha_nacimiento": nil, "version": "3"},
			want:   "CALL sp_atletas_save_record('A1', NULL, NULL, NULL, NULL, 3, TRUE)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := acc.UpdateQuery(record(t, desc, tt.values))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("UpdateQuery() =\n  %s\nwant\n  %s", got, tt.want)
			}
		})
	}

	add, err := acc.AddQuery(record(t, desc, map[string]any{"atletas_codigo": "A1", "atletas_ap_materno": nil}))
	if err != nil {
		t.Fatal(err)
	}
	if want := "CALL sp_atletas_save_record('A1', NULL, NULL, NULL, NULL, NULL, FALSE)"; add != want {
		t.Errorf("AddQuery() = %s, want %s", add, want)
	}
}

func TestAtletasOnSQLiteHasNoRoutine(t *testing.T) {
	desc := atletasFixture()
	rec := record(t, desc, map[string]any{"atletas_codigo": "A1"})
	if _, err := NewAtletas(dialect.SQLite{}, desc).AddQuery(rec); !apperrors.Is(err, apperrors.Unsupported) {
		t.Errorf("AddQuery() error = %v, want unsupported", err)
	}
}
