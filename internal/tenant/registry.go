// Package tenant maps tenant identifiers to connection profiles and
// hands out one gateway session per acquisition.
package tenant

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sqlgate/sqlgate/internal/gateway"
)

var ErrUnknownTenant = errors.New("tenant: unknown tenant")

// Registry is the session factory for configured tenants. A registry is
// immutable after construction; every Open returns a fresh session the
// caller must Close.
type Registry struct {
	profiles map[string]gateway.Profile
	options  []gateway.SessionOption
}

func NewRegistry(profiles map[string]gateway.Profile, options ...gateway.SessionOption) *Registry {
	copied := make(map[string]gateway.Profile, len(profiles))
	for id, profile := range profiles {
		copied[id] = profile
	}
	return &Registry{profiles: copied, options: options}
}

// Open acquires a new session scoped to the tenant's connection profile.
func (r *Registry) Open(tenantID string) (*gateway.Session, error) {
	profile, ok := r.profiles[tenantID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTenant, tenantID)
	}
	return gateway.NewSession(profile, r.options...), nil
}

func (r *Registry) Has(tenantID string) bool {
	_, ok := r.profiles[tenantID]
	return ok
}

func (r *Registry) Tenants() []string {
	tenants := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		tenants = append(tenants, id)
	}
	sort.Strings(tenants)
	return tenants
}

// ParseProfiles parses the SQLGATE_TENANTS spec string. Entries are
// comma-separated `tenant=host:port:username:password:database`; the
// driver applies to every entry. For the duckdb driver the entry form is
// `tenant=path`.
func ParseProfiles(spec, driver string) (map[string]gateway.Profile, error) {
	profiles := map[string]gateway.Profile{}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return profiles, nil
	}

	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, found := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("invalid tenant entry %q: expected tenant=profile", entry)
		}
		if _, exists := profiles[name]; exists {
			return nil, fmt.Errorf("duplicate tenant %q", name)
		}

		if driver == gateway.DriverDuckDB {
			if strings.TrimSpace(value) == "" {
				return nil, fmt.Errorf("invalid tenant entry %q: empty database path", entry)
			}
			profiles[name] = gateway.Profile{Driver: driver, Database: strings.TrimSpace(value)}
			continue
		}

		parts := strings.Split(value, ":")
		if len(parts) != 5 {
			return nil, fmt.Errorf("invalid tenant entry %q: expected host:port:username:password:database", entry)
		}
		port, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid tenant entry %q: bad port: %w", entry, err)
		}
		profile := gateway.Profile{
			Driver:   driver,
			Host:     strings.TrimSpace(parts[0]),
			Port:     port,
			Username: strings.TrimSpace(parts[2]),
			Password: parts[3],
			Database: strings.TrimSpace(parts[4]),
		}
		if profile.Host == "" || profile.Database == "" {
			return nil, fmt.Errorf("invalid tenant entry %q: empty host/database", entry)
		}
		profiles[name] = profile
	}
	return profiles, nil
}
