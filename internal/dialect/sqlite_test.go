// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dialect

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func TestSQLiteConcatWSSkipsNulls(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	tests := []struct {
		name  string
		sep   string
		exprs []string
		want  string
	}{
		{"all parts", " ", []string{"'Perez'", "'Soto'", "'Ana'"}, "Perez Soto Ana"},
		{"null middle", " ", []string{"'Perez'", "NULL", "'Ana'"}, "Perez Ana"},
		{"null first", " ", []string{"NULL", "'Soto'", "'Ana'"}, "Soto Ana"},
		{"null last", ", ", []string{"'Perez'", "'Ana'", "NULL"}, "Perez, Ana"},
		{"empty string kept", "-", []string{"'a'", "''", "'b'"}, "a--b"},
		{"all null", " ", []string{"NULL", "NULL"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if err := db.QueryRow("SELECT " + (SQLite{}).ConcatWS(tt.sep, tt.exprs...)).Scan(&got); err != nil {
				t.Fatalf("query error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ConcatWS = %q, want %q", got, tt.want)
			}
		})
	}
}
