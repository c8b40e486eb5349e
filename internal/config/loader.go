// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath returns <user config dir>/e33config/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config directory: %w", err)
	}
	return filepath.Join(dir, "e33config", "config.yaml"), nil
}

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	explicit        bool
	ConsumedEnvKeys map[string]struct{} // Mechanical tracking of consumed keys
}

// NewLoader creates a loader for configPath. An empty path falls back to
// $E33_CONFIG and then to DefaultPath; only an explicitly named file has to
// exist.
func NewLoader(configPath string) *Loader {
	l := &Loader{ConsumedEnvKeys: make(map[string]struct{})}
	switch {
	case configPath != "":
		l.configPath, l.explicit = configPath, true
	case l.envString(EnvConfig, "") != "":
		l.configPath, l.explicit = os.Getenv(EnvConfig), true
	default:
		if p, err := DefaultPath(); err == nil {
			l.configPath = p
		}
	}
	return l
}

// Path is the configuration file the loader reads.
func (l *Loader) Path() string { return l.configPath }

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults
// It enforces Strict Validated Order: Parse File (Strict) -> Apply Env -> Validate
func (l *Loader) Load() (AppConfig, error) {
	// 1. Set defaults
	cfg := Defaults()

	// 2. Load from file (if present)
	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		switch {
		case err == nil:
			mergeFileConfig(&cfg, fileCfg)
			cfg.ConfigFile = filepath.Clean(l.configPath)
		case errors.Is(err, ErrConfigNotFound) && !l.explicit:
		default:
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	// 3. Override with environment variables (highest priority)
	l.mergeEnvConfig(&cfg)

	// 4. Validate final configuration
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		Distribution:        "steam",
		IncludeEngineTweaks: true,
		Log: LogConfig{
			Level:  "warn",
			Format: "json",
		},
	}
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(&fileCfg); err != nil {
		if err == io.EOF {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) {
	if src.Distribution != "" {
		dst.Distribution = src.Distribution
	}
	if src.Paths.Steam != "" {
		dst.Paths.Steam = src.Paths.Steam
	}
	if src.Paths.GamePass != "" {
		dst.Paths.GamePass = src.Paths.GamePass
	}
	if src.StagingDir != "" {
		dst.StagingDir = src.StagingDir
	}
	if src.PresetsFile != "" {
		dst.PresetsFile = src.PresetsFile
	}
	if src.IncludeEngineTweaks != nil {
		dst.IncludeEngineTweaks = *src.IncludeEngineTweaks
	}
	if src.Log.Level != "" {
		dst.Log.Level = src.Log.Level
	}
	if src.Log.Format != "" {
		dst.Log.Format = src.Log.Format
	}
	if src.MetricsTextfile != "" {
		dst.MetricsTextfile = src.MetricsTextfile
	}
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.Distribution = l.envString(EnvDistribution, cfg.Distribution)
	cfg.Paths.Steam = l.envString(EnvSteamDir, cfg.Paths.Steam)
	cfg.Paths.GamePass = l.envString(EnvGamePassDir, cfg.Paths.GamePass)
	cfg.StagingDir = l.envString(EnvStagingDir, cfg.StagingDir)
	cfg.PresetsFile = l.envString(EnvPresetsFile, cfg.PresetsFile)
	cfg.IncludeEngineTweaks = l.envBool(EnvIncludeEngineTweaks, cfg.IncludeEngineTweaks)
	cfg.Log.Level = l.envString(EnvLogLevel, cfg.Log.Level)
	cfg.Log.Format = l.envString(EnvLogFormat, cfg.Log.Format)
	cfg.MetricsTextfile = l.envString(EnvMetricsTextfile, cfg.MetricsTextfile)

	cfg.Distribution = strings.ToLower(strings.TrimSpace(cfg.Distribution))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
}
