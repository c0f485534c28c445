package config

import (
	"errors"
	"fmt"

	"github.com/flemzord/transbridge/internal/core"
)

// Validate checks the structural validity of a Config.
// It verifies the version field, ensures modules are present, and checks
// that all referenced module IDs exist in the registry. Exactly one channel
// module per platform and at most one module per exclusive namespace
// (mapping, translator) may be configured.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if len(cfg.Modules) == 0 {
		errs = append(errs, errors.New("config: at least one module must be configured"))
	}

	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
	}

	// The mapping store and the translation provider each register a single
	// well-known service; loading two backends would have the second silently
	// shadow the first, so reject that up front.
	for _, ns := range []string{"mapping", "translator"} {
		if n := countNamespace(cfg, ns); n > 1 {
			errs = append(errs, fmt.Errorf("config: at most one %q module may be configured, got %d", ns, n))
		}
	}

	return errors.Join(errs...)
}

func countNamespace(cfg *Config, namespace string) int {
	n := 0
	for id := range cfg.Modules {
		if core.ModuleID(id).Namespace() == namespace {
			n++
		}
	}
	return n
}
