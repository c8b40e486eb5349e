// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

// AppConfig is the effective configuration after defaults, file and
// environment have been merged.
type AppConfig struct {
	Distribution        string
	Paths               PathsConfig
	StagingDir          string
	PresetsFile         string
	IncludeEngineTweaks bool
	Log                 LogConfig
	MetricsTextfile     string

	// ConfigFile is the file that was read, empty when none was.
	ConfigFile string
}

// PathsConfig overrides the settings directory per distribution.
type PathsConfig struct {
	Steam    string `yaml:"steam"`
	GamePass string `yaml:"gamepass"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FileConfig is the YAML file schema. Pointer fields distinguish "absent"
// from the zero value.
type FileConfig struct {
	Distribution        string      `yaml:"distribution"`
	Paths               PathsConfig `yaml:"paths"`
	StagingDir          string      `yaml:"stagingDir"`
	PresetsFile         string      `yaml:"presetsFile"`
	IncludeEngineTweaks *bool       `yaml:"includeEngineTweaks"`
	Log                 LogConfig   `yaml:"log"`
	MetricsTextfile     string      `yaml:"metricsTextfile"`
}
