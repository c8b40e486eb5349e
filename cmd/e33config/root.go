package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ManuGH/e33config/internal/config"
	"github.com/ManuGH/e33config/internal/distro"
	"github.com/ManuGH/e33config/internal/log"
	"github.com/ManuGH/e33config/internal/manager"
	"github.com/ManuGH/e33config/internal/metrics"
	"github.com/ManuGH/e33config/internal/platform/paths"
	"github.com/ManuGH/e33config/internal/preset"
	"github.com/ManuGH/e33config/internal/validate"
	"github.com/ManuGH/e33config/internal/version"
)

// skipSetup marks commands that run without loading configuration.
const skipSetup = "e33config/skip-setup"

// app is the state shared by all commands of one invocation.
type app struct {
	stdout, stderr io.Writer

	// global flags
	configPath   string
	distribution string
	logLevel     string
	logFormat    string

	cfg     config.AppConfig
	dist    distro.Distribution
	metrics *metrics.Recorder
	mgr     *manager.Manager
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "e33config",
		Short: "Manage Engine.ini for Clair Obscur: Expedition 33",
		Long: `e33config applies performance presets and custom settings to the
Engine.ini of Clair Obscur: Expedition 33 (Steam or Game Pass), keeps
timestamped backups and controls the file's read-only flag so the game
cannot overwrite it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if needsSetup(cmd) {
				return a.setup(cmd)
			}
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to config file (YAML); defaults to $E33_CONFIG or the user config dir")
	pf.StringVarP(&a.distribution, "distribution", "d", "", "game distribution: steam or gamepass (default from config)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: "+strings.Join(validate.LogLevels, ", "))
	pf.StringVar(&a.logFormat, "log-format", "", "log format: json or console")

	root.AddCommand(
		newCreateCmd(a),
		newShowCmd(a),
		newBackupCmd(a),
		newBackupsCmd(a),
		newRestoreCmd(a),
		newCustomCmd(a),
		newReadOnlyCmd(a),
		newPresetsCmd(a),
		newStatusCmd(a),
		newWatchCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

func needsSetup(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipSetup] != "" || c.Name() == "help" || c.Name() == "completion" {
			return false
		}
	}
	return true
}

// setup loads configuration and wires the manager.
func (a *app) setup(cmd *cobra.Command) error {
	if a.logLevel != "" {
		level, err := validate.ParseLogLevel(a.logLevel)
		if err != nil {
			return &usageError{err: fmt.Errorf("--log-level: %w", err)}
		}
		a.logLevel = level.String()
	}
	log.Configure(log.Config{Level: a.logLevel, Format: a.logFormat, Output: a.stderr, Version: version.Version})

	cfg, err := config.NewLoader(a.configPath).Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	log.Configure(log.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: a.stderr, Version: version.Version})
	a.cfg = cfg

	logger := log.WithComponent("cli")
	if cfg.ConfigFile != "" {
		logger.Debug().Str(log.FieldEvent, "config.loaded").Str(log.FieldPath, cfg.ConfigFile).Msg("loaded configuration from file")
	} else {
		logger.Debug().Str(log.FieldEvent, "config.loaded").Str("source", "env+defaults").Msg("loaded configuration from environment and defaults")
	}

	name := cfg.Distribution
	if cmd.Flags().Changed("distribution") {
		name = a.distribution
	}
	if a.dist, err = distro.Parse(name); err != nil {
		return &usageError{err: err}
	}

	overrides := make(map[distro.Distribution]string)
	if cfg.Paths.Steam != "" {
		overrides[distro.Steam] = cfg.Paths.Steam
	}
	if cfg.Paths.GamePass != "" {
		overrides[distro.GamePass] = cfg.Paths.GamePass
	}
	resolver := paths.NewResolver(paths.Options{
		Env:        paths.CurrentEnv(),
		Overrides:  overrides,
		StagingDir: cfg.StagingDir,
	})

	catalog := preset.Default()
	if cfg.PresetsFile != "" {
		if catalog, err = preset.LoadFile(cfg.PresetsFile); err != nil {
			return err
		}
	}

	a.metrics = metrics.NewRecorder()
	a.mgr, err = manager.New(manager.Options{Resolver: resolver, Catalog: catalog, Metrics: a.metrics})
	return err
}

// flushMetrics writes the metrics textfile when one is configured.
func (a *app) flushMetrics() error {
	if a.metrics == nil {
		return nil
	}
	return a.metrics.WriteTextfile(a.cfg.MetricsTextfile)
}

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
)

func addFormatFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVarP(dst, "format", "o", formatText, "output format: text or json")
}

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	}
	return usagef("invalid --format %q (want text or json)", format)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}
