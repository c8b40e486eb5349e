package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ManuGH/e33config/internal/backup"
	"github.com/ManuGH/e33config/internal/custom"
	"github.com/ManuGH/e33config/internal/ini"
	"github.com/ManuGH/e33config/internal/manager"
)

func newCreateCmd(a *app) *cobra.Command {
	var (
		presetName string
		readOnly   bool
		noTweaks   bool
		force      bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Apply a performance preset to Engine.ini",
		Long: `Merge a preset into Engine.ini, creating the file if needed. Keys the
preset does not name are kept and an existing file is backed up first.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.mgr.Create(cmd.Context(), a.dist, manager.CreateOptions{
				Preset:              presetName,
				ReadOnly:            readOnly,
				IncludeEngineTweaks: a.cfg.IncludeEngineTweaks && !noTweaks,
				Force:               force,
			})
			if err != nil {
				return err
			}
			verb := "Updated"
			if res.Created {
				verb = "Created"
			}
			a.printf("%s %s with preset %q\n", verb, res.Path, res.Preset)
			if res.Backup != nil {
				a.printf("Backup: %s\n", res.Backup.Path)
			}
			if res.ReadOnly {
				a.printf("File is read-only\n")
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&presetName, "preset", "p", "", "preset name (see 'e33config presets'); default from the preset table")
	f.BoolVar(&readOnly, "read-only", false, "leave the file read-only so the game cannot overwrite it")
	f.BoolVar(&noTweaks, "no-tweaks", false, "do not apply the engine tweak set after the preset")
	f.BoolVarP(&force, "force", "f", false, "write even if the file is read-only")
	return cmd
}

type showSetting struct {
	Key   string        `json:"key"`
	Value string        `json:"value"`
	Kind  ini.ValueKind `json:"kind"`
	Typed any           `json:"typed"`
}

type showSection struct {
	Name     string        `json:"name"`
	Settings []showSetting `json:"settings"`
}

type showOutput struct {
	Distribution string        `json:"distribution"`
	Path         string        `json:"path"`
	ReadOnly     bool          `json:"readOnly"`
	Encoding     string        `json:"encoding"`
	Sections     []showSection `json:"sections"`
}

func newShowCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current Engine.ini settings",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			res, err := a.mgr.Show(cmd.Context(), a.dist)
			if err != nil {
				return err
			}
			if format == formatJSON {
				out := showOutput{
					Distribution: res.Distribution.String(),
					Path:         res.Path,
					ReadOnly:     res.ReadOnly,
					Encoding:     res.Encoding,
					Sections:     make([]showSection, 0, len(res.Sections)),
				}
				for _, s := range res.Sections {
					sec := showSection{Name: s.Name, Settings: make([]showSetting, 0, len(s.Entries))}
					for _, e := range s.Entries {
						t := ini.Interpret(e.Value)
						sec.Settings = append(sec.Settings, showSetting{Key: e.Key, Value: e.Value, Kind: t.Kind, Typed: t.Any()})
					}
					out.Sections = append(out.Sections, sec)
				}
				return a.printJSON(out)
			}

			ro := ""
			if res.ReadOnly {
				ro = ", read-only"
			}
			a.printf("; %s (%s%s)\n", res.Path, res.Encoding, ro)
			for _, s := range res.Sections {
				a.printf("\n[%s]\n", s.Name)
				for _, e := range s.Entries {
					a.printf("%s=%s\n", e.Key, e.Value)
				}
			}
			return nil
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func newCustomCmd(a *app) *cobra.Command {
	var (
		section  string
		settings []string
		force    bool
		doBackup bool
	)
	cmd := &cobra.Command{
		Use:   "custom --section SECTION (--setting KEY=VALUE | KEY VALUE)...",
		Short: "Set individual keys in one section",
		Long: `Set one or more keys in SECTION. Settings are given as repeated
--setting KEY=VALUE flags or as KEY VALUE argument pairs. All settings are
validated before the file is touched and are written in one go.`,
		Example: `  e33config custom --section SystemSettings r.ScreenPercentage 90
  e33config custom --section SystemSettings -s r.FilmGrain=0 -s r.Tonemapper.Sharpen=0.5`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args)%2 != 0 {
				return usagef("settings must be KEY VALUE pairs, got %d arguments", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := parseOverrides(section, settings, args)
			if err != nil {
				return err
			}
			res, err := a.mgr.ApplyOverrides(cmd.Context(), a.dist, overrides, manager.WriteOptions{Force: force, Backup: doBackup})
			if err != nil {
				return err
			}
			for _, o := range overrides {
				a.printf("Set %s\n", o)
			}
			if res.Backup != nil {
				a.printf("Backup: %s\n", res.Backup.Path)
			}
			a.printf("Wrote %s\n", res.Path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&section, "section", "", "section to modify, e.g. SystemSettings")
	f.StringArrayVarP(&settings, "setting", "s", nil, "KEY=VALUE to set (repeatable)")
	f.BoolVarP(&force, "force", "f", false, "write even if the file is read-only; the flag is restored afterwards")
	f.BoolVar(&doBackup, "backup", false, "back up the file before writing")
	_ = cmd.MarkFlagRequired("section")
	return cmd
}

// parseOverrides combines --setting KEY=VALUE flags and KEY VALUE argument
// pairs in command line order, flags first.
func parseOverrides(section string, flags, args []string) ([]custom.Override, error) {
	var out []custom.Override
	for _, s := range flags {
		key, value, ok := strings.Cut(s, "=")
		if !ok {
			return nil, usagef("invalid --setting %q (want KEY=VALUE)", s)
		}
		out = append(out, custom.Override{Section: section, Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
	}
	for i := 0; i+1 < len(args); i += 2 {
		out = append(out, custom.Override{Section: section, Key: args[i], Value: args[i+1]})
	}
	if len(out) == 0 {
		return nil, usagef("no settings given")
	}
	return out, nil
}

func newReadOnlyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "readonly on|off",
		Short:     "Set or clear the read-only flag of Engine.ini",
		Args:      exactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var want bool
			switch strings.ToLower(args[0]) {
			case "on", "true", "yes", "1":
				want = true
			case "off", "false", "no", "0":
			default:
				return usagef("invalid argument %q (want on or off)", args[0])
			}
			res, err := a.mgr.SetReadOnly(cmd.Context(), a.dist, want)
			if err != nil {
				return err
			}
			state := "writable"
			if res.ReadOnly {
				state = "read-only"
			}
			if res.Changed {
				a.printf("%s is now %s\n", res.Path, state)
			} else {
				a.printf("%s is already %s\n", res.Path, state)
			}
			return nil
		},
	}
}

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Snapshot Engine.ini into a timestamped backup",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := a.mgr.Backup(cmd.Context(), a.dist)
			if err != nil {
				return err
			}
			a.printf("Backup: %s\n", rec.Path)
			return nil
		},
	}
}

func newBackupsCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "List backups, newest first",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			records, err := a.mgr.Backups(cmd.Context(), a.dist)
			if err != nil {
				return err
			}
			if format == formatJSON {
				if records == nil {
					records = []backup.Record{}
				}
				return a.printJSON(records)
			}
			if len(records) == 0 {
				a.printf("No backups\n")
				return nil
			}
			tw := newTable(a.stdout, "CREATED", "SIZE", "PATH")
			for _, r := range records {
				tw.row(r.CreatedAt.Local().Format("2006-01-02 15:04:05"), fmt.Sprint(r.Size), r.Path)
			}
			return tw.flush()
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func newRestoreCmd(a *app) *cobra.Command {
	var (
		from  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace Engine.ini with a backup (the latest by default)",
		Long: `Replace Engine.ini with a backup. The current content is backed up
first, so a restore can itself be undone.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := manager.RestoreOptions{Force: force}
			if from != "" {
				abs, err := filepath.Abs(from)
				if err != nil {
					return usagef("invalid --backup %q: %v", from, err)
				}
				opts.Record = &backup.Record{Path: abs}
			}
			res, err := a.mgr.Restore(cmd.Context(), a.dist, opts)
			if err != nil {
				return err
			}
			a.printf("Restored %s\n", res.Restored.Path)
			if res.Previous.Path != "" {
				a.printf("Previous content saved to %s\n", res.Previous.Path)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&from, "backup", "", "backup file to restore (see 'e33config backups')")
	f.BoolVarP(&force, "force", "f", false, "restore even if the file is read-only; the flag is restored afterwards")
	return cmd
}
