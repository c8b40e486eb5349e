// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the application configuration of e33config.
//
// This is the tool's own configuration (default distribution, directory
// overrides, logging), not the game's Engine.ini. Precedence is
// defaults < YAML file < E33_* environment variables.
package config
