// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"path/filepath"
	"strings"

	"github.com/ManuGH/e33config/internal/distro"
	"github.com/ManuGH/e33config/internal/validate"
)

// LogFormats lists the accepted log.format values.
var LogFormats = []string{"json", "console"}

// Validate checks the merged configuration and reports every problem at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	if _, err := distro.Parse(cfg.Distribution); err != nil {
		v.AddError("distribution", err.Error(), cfg.Distribution)
	}
	v.LogLevel("log.level", cfg.Log.Level)
	v.OneOf("log.format", cfg.Log.Format, LogFormats)

	v.AbsolutePath("paths.steam", cfg.Paths.Steam)
	v.AbsolutePath("paths.gamepass", cfg.Paths.GamePass)
	v.AbsolutePath("stagingDir", cfg.StagingDir)

	if cfg.PresetsFile != "" {
		switch strings.ToLower(filepath.Ext(cfg.PresetsFile)) {
		case ".toml", ".yaml", ".yml":
		default:
			v.AddError("presetsFile", "must be a .toml, .yaml or .yml file", cfg.PresetsFile)
		}
	}

	return v.Err()
}
