package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Config holds the options that steer the CLI rather than the engine
// itself; the defragmentation threshold and on-disk format are engine
// constants, never configurable here.
type Config struct {
	BackingFile string `json:"backing_file,omitempty"` //nolint:tagliatelle // snake_case for config file
	FilePerm    string `json:"file_perm,omitempty"`     //nolint:tagliatelle // snake_case for config file
}

// DefaultConfig returns the baseline configuration before any config file
// or flag is applied.
func DefaultConfig() Config {
	return Config{
		BackingFile: "filevfs.db",
		FilePerm:    "0644",
	}
}

// ConfigFileName is the default project-local config file name.
const ConfigFileName = ".filevfs.json"

var errConfigFileNotFound = errors.New("config: file not found")

// getGlobalConfigPath returns ~/.config/filevfs/config.json, honoring
// XDG_CONFIG_HOME, or "" if no home directory can be determined.
func getGlobalConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "filevfs", "config.json")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "filevfs", "config.json")
}

// LoadConfig merges configuration with this precedence (highest wins):
// defaults, global user config, project config (.filevfs.json or an
// explicit --config path), then CLI flag overrides applied by the caller.
func LoadConfig(workDir, configPath string) (Config, error) {
	cfg := DefaultConfig()

	globalCfg, err := loadOptionalConfigFile(getGlobalConfigPath())
	if err != nil {
		return Config{}, err
	}

	cfg = mergeConfig(cfg, globalCfg)

	projectCfg, err := loadProjectConfig(workDir, configPath)
	if err != nil {
		return Config{}, err
	}

	return mergeConfig(cfg, projectCfg), nil
}

func loadProjectConfig(workDir, configPath string) (Config, error) {
	if configPath != "" {
		if !filepath.IsAbs(configPath) {
			configPath = filepath.Join(workDir, configPath)
		}

		if _, err := os.Stat(configPath); err != nil {
			return Config{}, fmt.Errorf("%w: %s", errConfigFileNotFound, configPath)
		}

		return loadOptionalConfigFile(configPath)
	}

	return loadOptionalConfigFile(filepath.Join(workDir, ConfigFileName))
}

func loadOptionalConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // config path is intentionally user-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}

		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid JSONC in %s: %w", path, err)
	}

	var cfg Config

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: invalid JSON in %s: %w", path, err)
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.BackingFile != "" {
		base.BackingFile = overlay.BackingFile
	}

	if overlay.FilePerm != "" {
		base.FilePerm = overlay.FilePerm
	}

	return base
}

// FileMode parses the configured permission string (e.g. "0644") as an
// os.FileMode.
func (c Config) FileMode() (os.FileMode, error) {
	trimmed := strings.TrimPrefix(c.FilePerm, "0")
	if trimmed == "" {
		trimmed = "0"
	}

	var mode uint32
	if _, err := fmt.Sscanf(trimmed, "%o", &mode); err != nil {
		return 0, fmt.Errorf("config: invalid file_perm %q: %w", c.FilePerm, err)
	}

	return os.FileMode(mode), nil
}
