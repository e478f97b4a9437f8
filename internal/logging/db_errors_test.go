// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"strings"
	"testing"

	"github.com/pterm/pterm"

	apperrors "sqlbridge/cli/internal/errors"
)

func TestFormatDBError(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "connection masks the DSN",
			err:      apperrors.Wrap(apperrors.Connection, "cannot connect", errors.New("dial postgres://app:s3cret@db:5432/x: connection refused")),
			contains: []string{"Database Unreachable", "sqlbridge dbinfo", "postgres://*:*@db:5432/x"},
		},
		{
			name:     "stale row",
			err:      apperrors.New(apperrors.StaleRow, "paises was changed"),
			contains: []string{"Record Changed", "Fetch the record again", "paises was changed"},
		},
		{
			name:     "uncategorized",
			err:      errors.New("boom"),
			contains: []string{"Request Failed", "Technical details: boom"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDBError(tt.err)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatDBError() missing %q in:\n%s", want, got)
				}
			}
			if strings.Contains(got, "s3cret") {
				t.Errorf("FormatDBError() leaked a password:\n%s", got)
			}
		})
	}
	if FormatDBError(nil) != "" {
		t.Error("FormatDBError(nil) should be empty")
	}
}
