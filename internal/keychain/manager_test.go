// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import "testing"

func TestDSNKey(t *testing.T) {
	tests := []struct {
		profile string
		want    string
	}{
		{"", "db_dsn:default"},
		{"  ", "db_dsn:default"},
		{"staging", "db_dsn:staging"},
		{" prod ", "db_dsn:prod"},
	}
	for _, tt := range tests {
		if got := dsnKey(tt.profile); got != tt.want {
			t.Errorf("dsnKey(%q) = %q, want %q", tt.profile, got, tt.want)
		}
	}
}
