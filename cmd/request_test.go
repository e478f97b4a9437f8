// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"testing"

	"sqlbridge/cli/internal/criteria"
)

func TestRequestParams(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		input      string
		wantEntity string
		want       criteria.Params
		wantErr    bool
	}{
		{
			name:       "arguments",
			args:       []string{"paises", "op=fetch", "_sortBy=-paises_descripcion", "regiones_codigo="},
			wantEntity: "paises",
			want:       criteria.Params{"op": "fetch", "_sortBy": "-paises_descripcion", "regiones_codigo": ""},
		},
		{
			name:       "json input with inline criteria",
			args:       []string{"atletas"},
			input:      `{"op":"fetch","_startRow":0,"_acriteria":[{"fieldName":"atletas_nombres","operator":"iStartsWith","value":"an"}],"atletas_email":null}`,
			wantEntity: "atletas",
			want: criteria.Params{
				"op":         "fetch",
				"_startRow":  "0",
				"_acriteria": `[{"fieldName":"atletas_nombres","operator":"iStartsWith","value":"an"}]`,
			},
		},
		{
			name:       "arguments override input",
			args:       []string{"paises", "op=remove"},
			input:      `{"op":"fetch","paises_codigo":"PE"}`,
			wantEntity: "paises",
			want:       criteria.Params{"op": "remove", "paises_codigo": "PE"},
		},
		{
			name:       "entity from dataSource",
			args:       []string{"dataSource=regiones", "op=fetch"},
			wantEntity: "regiones",
			want:       criteria.Params{"op": "fetch", "dataSource": "regiones"},
		},
		{name: "no entity", args: []string{"op=fetch"}, wantErr: true},
		{name: "two entities", args: []string{"paises", "atletas"}, wantErr: true},
		{name: "empty key", args: []string{"paises", "=x"}, wantErr: true},
		{name: "input not an object", args: []string{"paises"}, input: `[1]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity, params, err := requestParams(tt.args, []byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("requestParams() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if entity != tt.wantEntity {
				t.Errorf("entity = %q, want %q", entity, tt.wantEntity)
			}
			if len(params) != len(tt.want) {
				t.Errorf("params = %v, want %v", params, tt.want)
			}
			for k, v := range tt.want {
				if params[k] != v {
					t.Errorf("params[%q] = %q, want %q", k, params[k], v)
				}
			}
		})
	}
}
