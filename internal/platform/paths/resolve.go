// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package paths maps a game distribution to the location of its Engine.ini.
//
// Placement differs per platform for otherwise identical distributions. The
// differences live in the Rules table, not in conditionals: each rule names
// where the game is installed, where the settings directory is and which
// Placement strategy writes to it.
package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ManuGH/e33config/internal/cfgerr"
	"github.com/ManuGH/e33config/internal/distro"
	"github.com/ManuGH/e33config/internal/log"
)

// Env is the part of the process environment path templates may reference.
// Tests construct it directly; production code uses CurrentEnv.
type Env struct {
	GOOS         string
	Home         string
	LocalAppData string
	User         string
	CacheDir     string
}

// CurrentEnv captures the running process environment.
func CurrentEnv() Env {
	env := Env{
		GOOS:         runtime.GOOS,
		LocalAppData: os.Getenv("LOCALAPPDATA"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		env.Home = home
	}
	if u, err := user.Current(); err == nil {
		env.User = u.Username
		if i := strings.LastIndexAny(env.User, `\/`); i >= 0 {
			env.User = env.User[i+1:]
		}
	}
	if cache, err := os.UserCacheDir(); err == nil {
		env.CacheDir = cache
	}
	return env
}

// Rule describes where one distribution keeps its settings on one platform.
//
// Templates use forward slashes and the placeholders {home}, {localappdata},
// {user}, {appid}, {subdir} (the distribution's Unreal config directory) and,
// in ConfigDir only, {install} (the first existing Installs candidate).
type Rule struct {
	Distribution distro.Distribution
	GOOS         string
	Installs     []string
	ConfigDir    string
	CreateDirs   bool
	Strategy     Strategy
}

const savedConfig = "AppData/Local/Sandfall/Saved/Config/{subdir}"

// Rules is the placement table. Platforms without a row are unsupported.
var Rules = []Rule{
	{
		Distribution: distro.Steam,
		GOOS:         "linux",
		Installs: []string{
			"{home}/.local/share/Steam/steamapps/compatdata/{appid}",
			"{home}/.steam/steam/steamapps/compatdata/{appid}",
			"{home}/.var/app/com.valvesoftware.Steam/.local/share/Steam/steamapps/compatdata/{appid}",
		},
		ConfigDir:  "{install}/pfx/drive_c/users/steamuser/" + savedConfig,
		CreateDirs: true,
		Strategy:   StrategyDirect,
	},
	{
		Distribution: distro.Steam,
		GOOS:         "windows",
		Installs:     []string{"{localappdata}"},
		ConfigDir:    "{localappdata}/Sandfall/Saved/Config/{subdir}",
		CreateDirs:   true,
		Strategy:     StrategyDirect,
	},
	{
		Distribution: distro.GamePass,
		GOOS:         "windows",
		Installs:     []string{"{localappdata}"},
		ConfigDir:    "{localappdata}/Sandfall/Saved/Config/{subdir}",
		CreateDirs:   true,
		Strategy:     StrategyDirect,
	},
	{
		Distribution: distro.GamePass,
		GOOS:         "linux",
		Installs:     []string{"{home}/.wine", "{home}/Games/gamepass"},
		ConfigDir:    "{install}/drive_c/users/{user}/" + savedConfig,
		CreateDirs:   true,
		Strategy:     StrategyStaged,
	},
}

// Options configures a Resolver.
type Options struct {
	Env Env
	// Overrides replace the settings directory of a distribution. An
	// override skips the installation check.
	Overrides map[distro.Distribution]string
	// StagingDir is the working directory for StrategyStaged. Defaults to
	// <cache>/e33config/staging.
	StagingDir string
	// Rules defaults to the package Rules table.
	Rules []Rule
}

// Resolver maps distributions to settings file locations.
type Resolver struct {
	opts Options
}

// NewResolver returns a Resolver for opts.
func NewResolver(opts Options) *Resolver {
	if opts.Rules == nil {
		opts.Rules = Rules
	}
	return &Resolver{opts: opts}
}

// Resolution describes the outcome of resolving one distribution.
// It is authoritative for reporting and testing.
type Resolution struct {
	Distribution distro.Distribution
	Path         string // final location of Engine.ini
	Dir          string // directory holding Engine.ini (backups live here too)
	InstallDir   string // matched installation directory, empty with an override
	Placement    Placement

	// Flags for observability
	UsedOverride bool // True if a caller-supplied directory was used
	CreatedDirs  bool // True if Dir did not exist and was created
}

// Resolve returns the settings file location of d, creating intermediate
// directories when the rule asks for it. The file itself is never created.
func (r *Resolver) Resolve(d distro.Distribution) (Resolution, error) {
	return r.resolve(d, true)
}

// Lookup is Resolve without side effects: a missing settings directory is
// reported as-is and nothing is created.
func (r *Resolver) Lookup(d distro.Distribution) (Resolution, error) {
	return r.resolve(d, false)
}

func (r *Resolver) resolve(d distro.Distribution, create bool) (Resolution, error) {
	res := Resolution{Distribution: d}

	def, ok := distro.Lookup(d)
	if !ok {
		return res, fmt.Errorf("resolve: unknown distribution %q", d)
	}

	rule, ok := r.rule(d)
	if !ok {
		return res, cfgerr.New(cfgerr.ErrUnsupportedPlatform, "resolve", "",
			fmt.Sprintf("no placement rule for %s on %s", def.Label, r.opts.Env.GOOS), nil)
	}

	vars := map[string]string{
		"{home}":         r.opts.Env.Home,
		"{localappdata}": r.opts.Env.LocalAppData,
		"{user}":         r.opts.Env.User,
		"{appid}":        distro.SteamAppID,
		"{subdir}":       def.ConfigSubdir,
	}

	if override := strings.TrimSpace(r.opts.Overrides[d]); override != "" {
		res.Dir = filepath.Clean(override)
		res.UsedOverride = true
	} else {
		install, err := findInstall(rule, vars)
		if err != nil {
			return res, err
		}
		res.InstallDir = install
		vars["{install}"] = install
		dir, err := expand(rule.ConfigDir, vars)
		if err != nil {
			return res, cfgerr.New(cfgerr.ErrPathNotFound, "resolve", "", err.Error(), nil)
		}
		res.Dir = dir
	}

	if _, err := os.Stat(res.Dir); errors.Is(err, fs.ErrNotExist) && create {
		if !rule.CreateDirs && !res.UsedOverride {
			return res, cfgerr.New(cfgerr.ErrPathNotFound, "resolve", res.Dir, "settings directory does not exist", err)
		}
		if err := os.MkdirAll(res.Dir, 0o755); err != nil {
			return res, fmt.Errorf("create settings directory %s: %w", res.Dir, err)
		}
		res.CreatedDirs = true
		log.L().Info().
			Str(log.FieldEvent, "paths.dir_created").
			Str(log.FieldDistribution, d.String()).
			Str(log.FieldPath, res.Dir).
			Msg("created settings directory")
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return res, fmt.Errorf("stat settings directory %s: %w", res.Dir, err)
	}

	res.Path = filepath.Join(res.Dir, distro.SettingsFileName)
	res.Placement = r.placement(rule.Strategy, d, res.Path)
	return res, nil
}

func (r *Resolver) rule(d distro.Distribution) (Rule, bool) {
	for _, rule := range r.opts.Rules {
		if rule.Distribution == d && rule.GOOS == r.opts.Env.GOOS {
			return rule, true
		}
	}
	return Rule{}, false
}

func (r *Resolver) placement(s Strategy, d distro.Distribution, target string) Placement {
	if s != StrategyStaged {
		return DirectPlacement{target: target}
	}
	staging := r.opts.StagingDir
	if staging == "" {
		base := r.opts.Env.CacheDir
		if base == "" {
			base = os.TempDir()
		}
		staging = filepath.Join(base, "e33config", "staging")
	}
	return StagedPlacement{target: target, dir: filepath.Join(staging, d.String())}
}

func findInstall(rule Rule, vars map[string]string) (string, error) {
	candidates := make([]string, 0, len(rule.Installs))
	for _, tmpl := range rule.Installs {
		dir, err := expand(tmpl, vars)
		if err != nil {
			continue
		}
		candidates = append(candidates, dir)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	detail := fmt.Sprintf("no %s installation found for %s; set an override path (paths.%s or E33_%s_DIR)",
		rule.Distribution.Label(), rule.GOOS, rule.Distribution, strings.ToUpper(rule.Distribution.String()))
	if len(candidates) > 0 {
		detail += "; looked in " + strings.Join(candidates, ", ")
	}
	return "", cfgerr.New(cfgerr.ErrPathNotFound, "resolve", "", detail, nil)
}

// expand substitutes placeholders. A placeholder whose value is empty makes
// the template unusable.
func expand(tmpl string, vars map[string]string) (string, error) {
	out := tmpl
	for k, v := range vars {
		if !strings.Contains(out, k) {
			continue
		}
		if v == "" {
			return "", fmt.Errorf("template %s needs %s, which is not set", tmpl, k)
		}
		out = strings.ReplaceAll(out, k, filepath.ToSlash(v))
	}
	if strings.Contains(out, "{") {
		return "", fmt.Errorf("template %s has unknown placeholders", tmpl)
	}
	return filepath.Clean(filepath.FromSlash(out)), nil
}
