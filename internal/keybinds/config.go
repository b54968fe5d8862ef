package keybinds

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the keybinding override file inside the config directory
const FileName = "keybinds.yaml"

// Config maps context -> action -> comma separated keys.
//
//	display:
//	  copy_result: "c,ctrl+y"
//	editor:
//	  paste: "ctrl+v"
type Config map[Context]map[Action]string

// LoadConfig loads keybinding overrides from a YAML file
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid %s format: %w", filepath.Base(path), err)
	}
	return config, nil
}

// ApplyConfig applies user overrides. An action listed in a context loses
// its default keys in that context.
func ApplyConfig(registry *Registry, config Config) error {
	for context, actions := range config {
		for action, keys := range actions {
			if !action.IsKnown() {
				return fmt.Errorf("unknown action %q in context %q", action, context)
			}
			registry.Unbind(context, action)
			for _, key := range strings.Split(keys, ",") {
				key = strings.TrimSpace(key)
				if err := ValidateKey(key); err != nil {
					return fmt.Errorf("invalid key for %s.%s: %w", context, action, err)
				}
				registry.Register(context, key, action)
			}
		}
	}
	return nil
}

// LoadOrDefault loads user overrides if the file exists, otherwise returns the defaults
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	if _, err := os.Stat(configPath); err != nil {
		return registry, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", FileName, err)
	}
	if err := ApplyConfig(registry, config); err != nil {
		return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
	}

	result := NewValidator().ValidateRegistry(registry)
	if result.HasErrors() {
		return nil, fmt.Errorf("invalid keybindings:\n%s", result.String())
	}

	return registry, nil
}
