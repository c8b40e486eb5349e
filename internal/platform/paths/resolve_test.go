package paths

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/e33config/internal/cfgerr"
	"github.com/ManuGH/e33config/internal/distro"
)

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	dir := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

func TestResolve_Matrix(t *testing.T) {
	steamPrefix := filepath.Join(".local", "share", "Steam", "steamapps", "compatdata", distro.SteamAppID)

	tests := []struct {
		name  string
		dist  distro.Distribution
		goos  string
		setup func(t *testing.T, home, appData string)

		// Expectations
		expectDirSuffix string
		expectStrategy  Strategy
		expectKind      error
	}{
		{
			name:  "Steam_Linux_Proton",
			dist:  distro.Steam,
			goos:  "linux",
			setup: func(t *testing.T, home, _ string) { mkdir(t, home, steamPrefix) },
			expectDirSuffix: filepath.Join(steamPrefix, "pfx", "drive_c", "users", "steamuser",
				"AppData", "Local", "Sandfall", "Saved", "Config", "Windows"),
			expectStrategy: StrategyDirect,
		},
		{
			name:       "Steam_Linux_NotInstalled",
			dist:       distro.Steam,
			goos:       "linux",
			expectKind: cfgerr.ErrPathNotFound,
		},
		{
			name:            "Steam_Windows",
			dist:            distro.Steam,
			goos:            "windows",
			expectDirSuffix: filepath.Join("Sandfall", "Saved", "Config", "Windows"),
			expectStrategy:  StrategyDirect,
		},
		{
			name:            "GamePass_Windows",
			dist:            distro.GamePass,
			goos:            "windows",
			expectDirSuffix: filepath.Join("Sandfall", "Saved", "Config", "WinGDK"),
			expectStrategy:  StrategyDirect,
		},
		{
			name:  "GamePass_Linux_Wine_Staged",
			dist:  distro.GamePass,
			goos:  "linux",
			setup: func(t *testing.T, home, _ string) { mkdir(t, home, ".wine") },
			expectDirSuffix: filepath.Join(".wine", "drive_c", "users", "player",
				"AppData", "Local", "Sandfall", "Saved", "Config", "WinGDK"),
			expectStrategy: StrategyStaged,
		},
		{
			name:       "Steam_Darwin_Unsupported",
			dist:       distro.Steam,
			goos:       "darwin",
			expectKind: cfgerr.ErrUnsupportedPlatform,
		},
		{
			name:       "GamePass_Darwin_Unsupported",
			dist:       distro.GamePass,
			goos:       "darwin",
			expectKind: cfgerr.ErrUnsupportedPlatform,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			appData := t.TempDir()
			if tt.setup != nil {
				tt.setup(t, home, appData)
			}

			r := NewResolver(Options{
				Env: Env{GOOS: tt.goos, Home: home, LocalAppData: appData, User: "player", CacheDir: t.TempDir()},
			})
			res, err := r.Resolve(tt.dist)

			if tt.expectKind != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectKind)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(res.Dir, tt.expectDirSuffix), "dir %s", res.Dir)
			assert.Equal(t, filepath.Join(res.Dir, distro.SettingsFileName), res.Path)
			assert.Equal(t, tt.expectStrategy, res.Placement.Strategy())
			assert.Equal(t, res.Path, res.Placement.Resolve())
			assert.True(t, res.CreatedDirs)
			assert.DirExists(t, res.Dir)
			assert.NoFileExists(t, res.Path, "resolve must not create the settings file")
		})
	}
}

func TestResolve_OverrideSkipsInstallCheck(t *testing.T) {
	override := filepath.Join(t.TempDir(), "custom", "Config")

	r := NewResolver(Options{
		Env:       Env{GOOS: "linux", Home: t.TempDir()},
		Overrides: map[distro.Distribution]string{distro.Steam: override},
	})
	res, err := r.Resolve(distro.Steam)
	require.NoError(t, err)

	assert.True(t, res.UsedOverride)
	assert.Empty(t, res.InstallDir)
	assert.Equal(t, override, res.Dir)
	assert.Equal(t, filepath.Join(override, "Engine.ini"), res.Path)
	assert.DirExists(t, override)
}

func TestResolve_OverrideStillHonoursPlatformRules(t *testing.T) {
	r := NewResolver(Options{
		Env:       Env{GOOS: "darwin", Home: t.TempDir()},
		Overrides: map[distro.Distribution]string{distro.Steam: t.TempDir()},
	})
	_, err := r.Resolve(distro.Steam)
	assert.ErrorIs(t, err, cfgerr.ErrUnsupportedPlatform)
}

func TestResolve_ExistingDirNotReportedAsCreated(t *testing.T) {
	appData := t.TempDir()
	mkdir(t, appData, "Sandfall", "Saved", "Config", "Windows")

	r := NewResolver(Options{Env: Env{GOOS: "windows", LocalAppData: appData}})
	res, err := r.Resolve(distro.Steam)
	require.NoError(t, err)
	assert.False(t, res.CreatedDirs)
}

func TestResolve_MissingLocalAppData(t *testing.T) {
	r := NewResolver(Options{Env: Env{GOOS: "windows"}})
	_, err := r.Resolve(distro.GamePass)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cfgerr.ErrPathNotFound))
}

func TestResolve_SteamFallbackCandidates(t *testing.T) {
	home := t.TempDir()
	flatpak := mkdir(t, home, ".var", "app", "com.valvesoftware.Steam", ".local", "share", "Steam",
		"steamapps", "compatdata", distro.SteamAppID)

	r := NewResolver(Options{Env: Env{GOOS: "linux", Home: home}})
	res, err := r.Resolve(distro.Steam)
	require.NoError(t, err)
	assert.Equal(t, flatpak, res.InstallDir)
}

func TestResolve_UnknownDistribution(t *testing.T) {
	r := NewResolver(Options{Env: Env{GOOS: "linux"}})
	_, err := r.Resolve(distro.Distribution("epic"))
	assert.Error(t, err)
}

func TestLookup_HasNoSideEffects(t *testing.T) {
	appData := t.TempDir()
	r := NewResolver(Options{Env: Env{GOOS: "windows", LocalAppData: appData}})

	res, err := r.Lookup(distro.GamePass)
	require.NoError(t, err)
	assert.False(t, res.CreatedDirs)
	assert.NoDirExists(t, res.Dir)
	assert.Equal(t, filepath.Join(res.Dir, "Engine.ini"), res.Path)
	assert.NotNil(t, res.Placement)
}
