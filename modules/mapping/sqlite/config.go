package sqlite

import (
	"fmt"

	"github.com/flemzord/transbridge/internal/mapping"
)

const (
	defaultBusyTimeout = 5000
	defaultDBFile      = "mappings.db"
)

// Config holds the SQLite mapping module configuration.
type Config struct {
	// Path is the database file path. Defaults to {DataDir}/mappings.db.
	Path string `yaml:"path"`

	// WAL enables WAL journal mode for concurrent reads. Defaults to true.
	WAL *bool `yaml:"wal"`

	// BusyTimeout is the milliseconds to wait on a busy lock. Defaults to 5000.
	BusyTimeout int `yaml:"busy_timeout"`

	// AutoMapThreshold is the minimum display-name similarity for
	// auto-mapping. Zero means mapping.DefaultAutoMapThreshold.
	AutoMapThreshold float64 `yaml:"auto_map_threshold"`

	// Mappings is the declarative user/group mapping list imported once
	// at startup.
	Mappings mapping.Seed `yaml:"mappings"`
}

func (c *Config) defaults() {
	if c.WAL == nil {
		t := true
		c.WAL = &t
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = defaultBusyTimeout
	}
	if c.AutoMapThreshold == 0 {
		c.AutoMapThreshold = mapping.DefaultAutoMapThreshold
	}
}

func (c *Config) walEnabled() bool {
	return c.WAL == nil || *c.WAL
}

func (c *Config) validate() error {
	if c.BusyTimeout < 0 {
		return fmt.Errorf("sqlite: busy_timeout must be non-negative, got %d", c.BusyTimeout)
	}
	if c.AutoMapThreshold < 0 || c.AutoMapThreshold > 1 {
		return fmt.Errorf("sqlite: auto_map_threshold must be in [0,1], got %v", c.AutoMapThreshold)
	}
	return nil
}
