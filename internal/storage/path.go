package storage

import (
	"fmt"
	"path"
	"regexp"
	"time"
)

var tenantComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// BuildExportPath returns the object key for an exported batch result.
// Keys are partitioned by tenant and day so that bucket lifecycle rules
// can expire old exports per tenant.
func BuildExportPath(tenantID string, exportedAt time.Time) (string, error) {
	if !tenantComponentPattern.MatchString(tenantID) {
		return "", fmt.Errorf("invalid tenant id: %q", tenantID)
	}

	ts := exportedAt.UTC()
	return path.Join(
		"exports",
		tenantID,
		fmt.Sprintf("date=%04d-%02d-%02d", ts.Year(), ts.Month(), ts.Day()),
		fmt.Sprintf("batch-%d.parquet", ts.UnixNano()),
	), nil
}
