package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load builds the configuration from defaults, the config file and RCHAT_*
// environment variables, then validates it. An empty path means the default
// location; a missing default file is not an error, a missing explicit one is.
func Load(path string) (*Config, error) {
	required := path != ""
	if path == "" {
		path = DefaultPath()
	}
	return load(path, required, os.Getenv)
}

func load(path string, required bool, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(&cfg, path); err != nil {
			if !required && errors.Is(err, fs.ErrNotExist) {
				err = nil
			} else {
				return nil, fmt.Errorf("loading %s: %w", path, err)
			}
		}
	}

	cfg.Warnings = append(cfg.Warnings, applyEnvOverrides(&cfg, getenv)...)
	cfg.Warnings = append(cfg.Warnings, cfg.Validate()...)
	return &cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/rchat/config.toml, falling back to
// ~/.config/rchat/config.toml. It returns "" when neither can be resolved.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "rchat", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rchat", "config.toml")
}

// decodeFile overlays the keys present in the file onto cfg.
func decodeFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	for _, key := range md.Undecoded() {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s: unknown key %q", filepath.Base(path), key.String()))
	}
	return nil
}

// applyEnvOverrides applies RCHAT_* variables. Unparsable values are
// reported and ignored.
func applyEnvOverrides(cfg *Config, getenv func(string) string) []string {
	var warnings []string
	intVar := func(name string, dst *int) {
		v := strings.TrimSpace(getenv(name))
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s=%q is not a valid integer, ignoring", name, v))
			return
		}
		*dst = n
	}

	intVar("RCHAT_CHUNK_SIZE", &cfg.View.ChunkSize)
	intVar("RCHAT_MARGIN_ROWS", &cfg.View.MarginRows)
	intVar("RCHAT_BATCH_SIZE", &cfg.Search.BatchSize)
	intVar("RCHAT_TOP_K", &cfg.Search.TopK)
	if v := getenv("RCHAT_PERSPECTIVE"); v != "" {
		cfg.Display.Perspective = v
	}
	return warnings
}
