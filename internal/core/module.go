package core

// ModuleID uniquely identifies a module, namespaced by dots
// (e.g. "channel.line", "translator.openai").
type ModuleID string

// Namespace returns the portion of the ID before the first dot.
func (id ModuleID) Namespace() string {
	for i := 0; i < len(id); i++ {
		if id[i] == '.' {
			return string(id[:i])
		}
	}
	return string(id)
}

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	// ID is the module's unique identifier.
	ID ModuleID

	// New returns a fresh, unconfigured instance of the module.
	New func() Module
}

// Module is the minimal interface every transbridge module implements.
// Modules opt into lifecycle phases by additionally implementing
// Configurable, Provisioner, Validator, Starter, or Stopper.
type Module interface {
	ModuleInfo() ModuleInfo
}
