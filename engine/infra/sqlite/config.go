package sqlite

import "time"

// Config captures dataset connection settings derived from application settings.
type Config struct {
	// Path is the database file or ":memory:".
	Path string

	// CreateViews adds lowercase views over the Northwind tables before the
	// connection becomes read-only.
	CreateViews bool

	// MaxOpenConns controls the pool size exposed by database/sql.
	MaxOpenConns int

	// BusyTimeout configures sqlite busy timeout via PRAGMA busy_timeout.
	BusyTimeout time.Duration
}

const defaultBusyTimeout = 5 * time.Second

func (c *Config) busyTimeout() time.Duration {
	if c.BusyTimeout <= 0 {
		return defaultBusyTimeout
	}
	return c.BusyTimeout
}
