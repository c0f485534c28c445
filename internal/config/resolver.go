package config

import (
	"maps"
	"slices"
)

// Resolve returns the configured module IDs in sorted order. YAML map
// iteration is randomized; sorting keeps the load and start sequence
// identical across restarts. Cross-module wiring does not depend on this
// order: services are registered during provisioning and resolved at start.
func Resolve(cfg *Config) []string {
	return slices.Sorted(maps.Keys(cfg.Modules))
}
