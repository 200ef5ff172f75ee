package catalog_migrations

import "sync/atomic"

var dialect atomic.Value

// SetDialect selects the DDL flavour ("sqlite3" or "postgres") used by the
// migrations that differ between drivers.
func SetDialect(name string) {
	dialect.Store(name)
}

func Dialect() string {
	if d, ok := dialect.Load().(string); ok {
		return d
	}
	return "sqlite3"
}
