package storage

import (
	"strings"
	"testing"
	"time"
)

func TestBuildExportPath(t *testing.T) {
	at := time.Date(2025, 6, 3, 14, 30, 12, 500, time.UTC)
	key, err := BuildExportPath("db1", at)
	if err != nil {
		t.Fatalf("BuildExportPath() error = %v", err)
	}
	if !strings.HasPrefix(key, "exports/db1/date=2025-06-03/batch-") {
		t.Fatalf("key = %q", key)
	}
	if !strings.HasSuffix(key, ".parquet") {
		t.Fatalf("key = %q", key)
	}
}

func TestBuildExportPathRejectsBadTenant(t *testing.T) {
	cases := []string{"", "../escape", "tenant/with/slash", "-leading-dash"}
	for _, tenantID := range cases {
		if _, err := BuildExportPath(tenantID, time.Now()); err == nil {
			t.Fatalf("BuildExportPath(%q) expected error", tenantID)
		}
	}
}
