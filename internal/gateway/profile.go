package gateway

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DriverPostgres routes sessions through the pgx stdlib driver.
	DriverPostgres = "pgx"
	// DriverDuckDB runs against an embedded DuckDB database file,
	// useful for local development without a server.
	DriverDuckDB = "duckdb"
)

// Profile identifies exactly one tenant-scoped database session. It is
// immutable once a session is constructed; the session owns the resulting
// connection for its whole lifetime.
type Profile struct {
	Driver   string
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

// DSN renders the driver-specific connection string. For DuckDB the
// Database field is a file path and host/credentials are ignored.
func (p Profile) DSN() (string, error) {
	switch p.Driver {
	case DriverDuckDB:
		return p.Database, nil
	case DriverPostgres, "":
		if strings.TrimSpace(p.Host) == "" {
			return "", fmt.Errorf("profile host is required")
		}
		if strings.TrimSpace(p.Database) == "" {
			return "", fmt.Errorf("profile database is required")
		}
		u := url.URL{
			Scheme: "postgres",
			Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
			Path:   "/" + p.Database,
		}
		if p.Username != "" {
			u.User = url.UserPassword(p.Username, p.Password)
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported driver %q", p.Driver)
	}
}

func (p Profile) driverName() string {
	if p.Driver == "" {
		return DriverPostgres
	}
	return p.Driver
}
