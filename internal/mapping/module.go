package mapping

import (
	"fmt"
	"log/slog"

	"github.com/flemzord/transbridge/internal/core"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// ServiceName is the registry name the active mapping backend publishes
// its Store under.
const ServiceName = "mapping.store"

// Compile-time interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
)

// Config holds the in-memory mapping module configuration.
type Config struct {
	// AutoMapThreshold is the minimum display-name similarity for
	// auto-mapping. Zero means DefaultAutoMapThreshold.
	AutoMapThreshold float64 `yaml:"auto_map_threshold"`

	// Mappings is the declarative user/group mapping list imported once
	// at startup.
	Mappings Seed `yaml:"mappings"`
}

// Module is the in-memory mapping backend, registered as "mapping.memory".
// State lives for the lifetime of the process; use mapping.sqlite for
// mappings that must survive restarts.
type Module struct {
	config Config
	store  *MemoryStore
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "mapping.memory",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("mapping: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner. It builds the store, imports the
// declarative seed, and registers the Store service.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger
	m.store = NewMemoryStore(m.config.AutoMapThreshold)
	LoadSeed(m.store, m.config.Mappings, m.logger)
	ctx.RegisterService(ServiceName, Store(m.store))
	m.logger.Info("mapping store ready",
		"backend", "memory",
		"seed_users", len(m.config.Mappings.Users),
		"seed_groups", len(m.config.Mappings.Groups),
	)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if t := m.config.AutoMapThreshold; t < 0 || t > 1 {
		return fmt.Errorf("mapping: auto_map_threshold must be in [0,1], got %v", t)
	}
	return nil
}
