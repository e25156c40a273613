package lint

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/drone/envsubst"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/mtlin/internal"
	tt "github.com/gnolang/mtlin/internal/types"
)

const (
	DefaultConfigFile     = ".mtlin.yaml"
	DefaultTOMLConfigFile = ".mtlin.toml"
)

// Config represents the overall configuration with a name and a slice of rules.
type Config struct {
	Name        string                   `yaml:"name" toml:"name"`
	Rules       map[string]tt.ConfigRule `yaml:"rules" toml:"rules"`
	IgnorePaths []string                 `yaml:"ignore_paths,omitempty" toml:"ignore_paths,omitempty"`
}

// DefaultConfig enables every known rule at warning severity.
func DefaultConfig() Config {
	rules := make(map[string]tt.ConfigRule)
	for _, name := range internal.RuleNames() {
		rules[name] = tt.ConfigRule{Severity: tt.SeverityWarning}
	}
	return Config{
		Name:  "mtlin",
		Rules: rules,
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func isDefaultConfigPath(path string) bool {
	base := filepath.Base(path)
	return base == DefaultConfigFile || base == DefaultTOMLConfigFile
}

// LoadConfig reads a yaml or toml configuration file, chosen by extension.
// ${VAR} references are expanded from the environment before decoding.
func LoadConfig(path string) (Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	expanded, err := envsubst.EvalEnv(string(data))
	if err != nil {
		return config, fmt.Errorf("expanding %s: %w", path, err)
	}

	if isTOML(path) {
		if _, err := toml.Decode(expanded, &config); err != nil {
			return config, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
			return config, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	return config, nil
}

// parseConfigurationFile loads path. An empty path, or a default config
// file that does not exist, yields DefaultConfig.
func parseConfigurationFile(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	config, err := LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) && isDefaultConfigPath(path) {
		return DefaultConfig(), nil
	}
	return config, err
}

// MarshalConfig encodes config as toml when path ends in .toml, yaml otherwise.
func MarshalConfig(path string, config Config) ([]byte, error) {
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(config); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return yaml.Marshal(config)
}
