// Package app provides the shared bootstrap for the transbridge binary:
// configuration resolution, the redacting logger, and module lifecycle.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/transbridge/internal/config"
	"github.com/flemzord/transbridge/internal/core"
	"github.com/flemzord/transbridge/internal/security"
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called automatically.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// DataDir overrides the default persistent data directory.
	DataDir string

	// LogLevel sets the minimum log level. Defaults to slog.LevelInfo.
	LogLevel slog.Level
}

// Run loads configuration, starts all modules, and blocks until a shutdown
// signal is received.
func Run(params RunParams) error {
	application, _, err := Build(params)
	if err != nil {
		return err
	}
	return application.Run()
}

// Build loads configuration and returns a fully loaded (but not started)
// App. The config check command uses it to validate a deployment without
// opening listeners.
func Build(params RunParams) (*core.App, []string, error) {
	cfgPath := params.ConfigPath
	if cfgPath == "" {
		resolved, err := ResolveConfigPath()
		if err != nil {
			return nil, nil, err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}

	// Every secret the config carries is registered with the redactor
	// before the first module logs anything.
	redactor := security.NewRedactor()
	registerConfigSecrets(cfg, redactor)

	innerHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: params.LogLevel,
	})
	logger := slog.New(security.NewRedactingHandler(innerHandler, redactor))

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	appCtx := core.NewAppContext(logger, dataDir)
	appCtx = appCtx.WithModuleConfigs(cfg.Modules)
	appCtx.RegisterService("config.path", cfgPath)
	appCtx.RegisterService("security.redactor", redactor)

	application := core.NewApp(appCtx)
	ids := config.Resolve(cfg)
	if err := application.LoadModules(ids); err != nil {
		return nil, nil, err
	}

	return application, ids, nil
}

// secretKeyPattern matches config keys whose values must never reach logs.
var secretKeyPattern = regexp.MustCompile(`(?i)(secret|token|api_key|aes_key|password)`)

// registerConfigSecrets walks every module's raw config mapping and adds
// values under secret-looking keys as redactor literals. Nested mappings
// are walked recursively; non-scalar values are skipped.
func registerConfigSecrets(cfg *config.Config, redactor *security.Redactor) {
	for _, node := range cfg.Modules {
		addSecretLiterals(&node, redactor)
	}
}

func addSecretLiterals(node *yaml.Node, redactor *security.Redactor) {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		addSecretLiterals(node.Content[0], redactor)
		return
	}
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch value.Kind {
		case yaml.ScalarNode:
			if secretKeyPattern.MatchString(key.Value) {
				redactor.AddLiteral(value.Value)
			}
		case yaml.MappingNode:
			addSecretLiterals(value, redactor)
		}
	}
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/transbridge/transbridge.yaml →
// ~/.config/transbridge/transbridge.yaml → ./transbridge.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "transbridge", "transbridge.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "transbridge", "transbridge.yaml"))
	}

	candidates = append(candidates, "transbridge.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/transbridge if set, otherwise ~/.local/share/transbridge.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "transbridge")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "transbridge")
}
