package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ManuGH/e33config/internal/config"
	"github.com/ManuGH/e33config/internal/preset"
	"github.com/ManuGH/e33config/internal/version"
	"github.com/ManuGH/e33config/internal/watch"
)

type table struct{ tw *tabwriter.Writer }

func newTable(w io.Writer, header ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.row(header...)
	return t
}

func (t *table) row(cols ...string) { fmt.Fprintln(t.tw, strings.Join(cols, "\t")) }
func (t *table) flush() error       { return t.tw.Flush() }

type presetsOutput struct {
	Default      string              `json:"default"`
	Presets      []preset.Definition `json:"presets"`
	EngineTweaks []preset.Tweak      `json:"engineTweaks"`
}

func newPresetsCmd(a *app) *cobra.Command {
	var (
		format  string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the available presets",
		Args:  exactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			if format == formatJSON {
				return a.printJSON(presetsOutput{
					Default:      a.mgr.DefaultPreset(),
					Presets:      a.mgr.Presets(),
					EngineTweaks: a.mgr.EngineTweaks(),
				})
			}

			tw := newTable(a.stdout, "NAME", "LABEL", "TWEAKS")
			for _, p := range a.mgr.Presets() {
				name := p.Name
				if name == a.mgr.DefaultPreset() {
					name += " (default)"
				}
				tw.row(name, p.Label, fmt.Sprint(len(p.Tweaks)))
				if verbose {
					for _, t := range p.Tweaks {
						tw.row("", "  ["+t.Section+"]", t.Key+"="+t.Value)
					}
				}
			}
			if err := tw.flush(); err != nil {
				return err
			}
			if verbose {
				a.printf("\nEngine tweaks (applied by create unless --no-tweaks):\n")
				for _, t := range a.mgr.EngineTweaks() {
					a.printf("  [%s] %s=%s\n", t.Section, t.Key, t.Value)
				}
			}
			return nil
		},
	}
	addFormatFlag(cmd, &format)
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list every tweak")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the settings file of every distribution",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			statuses, err := a.mgr.Status(cmd.Context())
			if err != nil {
				return err
			}
			if format == formatJSON {
				return a.printJSON(statuses)
			}
			tw := newTable(a.stdout, "DISTRIBUTION", "FILE", "READ-ONLY", "BACKUPS", "PATH")
			for _, st := range statuses {
				if st.Code != "ok" {
					tw.row(st.Label, st.Code, "-", "-", st.Error)
					continue
				}
				file := "missing"
				if st.Exists {
					file = "present"
				}
				tw.row(st.Label, file, yesNo(st.ReadOnly), fmt.Sprint(st.Backups), st.Path+" ("+st.Placement+")")
			}
			return tw.flush()
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newWatchCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Report changes to Engine.ini until interrupted",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return a.mgr.Watch(cmd.Context(), a.dist, func(c watch.Change) {
				if format == formatJSON {
					_ = a.printJSON(c)
					return
				}
				a.printf("%s %-6s %s\n", c.Time.Local().Format(time.TimeOnly), c.Op, c.Path)
			})
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        exactArgs(0),
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			info := version.Get()
			if format == formatJSON {
				return a.printJSON(info)
			}
			a.printf("e33config %s\n", info)
			return nil
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  exactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := a.cfg
			tweaks := cfg.IncludeEngineTweaks
			out := config.FileConfig{
				Distribution:        a.dist.String(),
				Paths:               cfg.Paths,
				StagingDir:          cfg.StagingDir,
				PresetsFile:         cfg.PresetsFile,
				IncludeEngineTweaks: &tweaks,
				Log:                 cfg.Log,
				MetricsTextfile:     cfg.MetricsTextfile,
			}
			source := cfg.ConfigFile
			if source == "" {
				source = "defaults and environment"
			}
			a.printf("# source: %s\n", source)
			enc := yaml.NewEncoder(a.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
