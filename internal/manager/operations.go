package manager

import (
	"context"

	"github.com/ManuGH/e33config/internal/backup"
	"github.com/ManuGH/e33config/internal/cfgerr"
	"github.com/ManuGH/e33config/internal/custom"
	"github.com/ManuGH/e33config/internal/distro"
	"github.com/ManuGH/e33config/internal/fsutil"
	"github.com/ManuGH/e33config/internal/ini"
	"github.com/ManuGH/e33config/internal/log"
	"github.com/ManuGH/e33config/internal/platform/paths"
	"github.com/ManuGH/e33config/internal/preset"
	"github.com/ManuGH/e33config/internal/watch"
)

// CreateOptions controls Create.
type CreateOptions struct {
	Preset              string // empty selects the catalog default
	ReadOnly            bool   // leave the file read-only afterwards
	IncludeEngineTweaks bool   // apply the engine tweak set after the preset
	Force               bool   // write even if the file is read-only
}

// CreateResult reports a Create.
type CreateResult struct {
	Path     string
	Preset   string
	Created  bool           // the file did not exist before
	Backup   *backup.Record // backup of the previous content, if any
	ReadOnly bool
}

// Create merges a preset (and optionally the engine tweaks) into the
// settings file of d, creating it if needed. Existing content is backed up
// first and every key the preset does not name is kept. A read-only flag
// cleared by Force is put back if the create fails.
func (m *Manager) Create(ctx context.Context, d distro.Distribution, opts CreateOptions) (result CreateResult, err error) {
	ctx, logger, finish := m.begin(ctx, "create", d)
	defer func() { finish(err) }()

	name := opts.Preset
	if name == "" {
		name = m.catalog.DefaultName()
	}
	def, err := m.catalog.Get(name)
	if err != nil {
		return result, err
	}
	result.Preset = def.Name

	res, err := m.resolver.Resolve(d)
	if err != nil {
		return result, err
	}
	result.Path = res.Path
	defer m.lock(res.Path)()

	doc, exists, err := m.load(res.Path)
	if err != nil {
		return result, err
	}
	result.Created = !exists

	wasRO, err := m.unlockForWrite("create", res.Path, exists, opts.Force)
	if err != nil {
		return result, err
	}
	if wasRO {
		defer func() {
			if err == nil {
				return
			}
			if rerr := m.setReadOnly(ctx, d, res.Path, true); rerr != nil {
				logger.Error().Err(rerr).Str(log.FieldPath, res.Path).Msg("read-only flag not restored after failed create")
			}
		}()
	}
	if exists {
		if result.Backup, err = m.backup(ctx, d, res.Path); err != nil {
			return result, err
		}
	}

	doc = preset.Apply(doc, def)
	if opts.IncludeEngineTweaks {
		doc = preset.ApplyTweaks(doc, m.catalog.EngineTweaks())
	}
	if err := m.writeBytes(ctx, res, doc.Serialize()); err != nil {
		return result, err
	}

	ro, err := fsutil.IsReadOnly(res.Path)
	if err != nil {
		return result, err
	}
	if ro != opts.ReadOnly {
		if err := m.setReadOnly(ctx, d, res.Path, opts.ReadOnly); err != nil {
			return result, err
		}
	}
	result.ReadOnly = opts.ReadOnly

	logger.Info().
		Str(log.FieldPreset, def.Name).
		Str(log.FieldPath, res.Path).
		Bool("engine_tweaks", opts.IncludeEngineTweaks).
		Msg("preset applied")
	return result, nil
}

// Section is one section of a shown document.
type Section struct {
	Name    string      `json:"name"`
	Entries []ini.Entry `json:"entries"`
}

// ShowResult is the current content of a settings file.
type ShowResult struct {
	Distribution distro.Distribution `json:"distribution"`
	Path         string              `json:"path"`
	ReadOnly     bool                `json:"readOnly"`
	Encoding     string              `json:"encoding"`
	Sections     []Section           `json:"sections"`
}

// Show returns the sections and key/value pairs of the settings file of d
// verbatim. A missing file fails with cfgerr.ErrSourceNotFound.
func (m *Manager) Show(ctx context.Context, d distro.Distribution) (result ShowResult, err error) {
	_, _, finish := m.begin(ctx, "show", d)
	defer func() { finish(err) }()

	res, err := m.resolver.Lookup(d)
	if err != nil {
		return result, err
	}
	result.Distribution = d
	result.Path = res.Path

	defer m.lock(res.Path)()
	doc, exists, err := m.load(res.Path)
	if err != nil {
		return result, err
	}
	if !exists {
		return result, cfgerr.New(cfgerr.ErrSourceNotFound, "show", res.Path, "run create first", nil)
	}
	if result.ReadOnly, err = fsutil.IsReadOnly(res.Path); err != nil {
		return result, err
	}
	result.Encoding = doc.Encoding().String()
	for _, name := range doc.Sections() {
		result.Sections = append(result.Sections, Section{Name: name, Entries: doc.Entries(name)})
	}
	return result, nil
}

// Backup snapshots the settings file of d.
func (m *Manager) Backup(ctx context.Context, d distro.Distribution) (rec backup.Record, err error) {
	ctx, _, finish := m.begin(ctx, "backup", d)
	defer func() { finish(err) }()

	res, err := m.resolver.Lookup(d)
	if err != nil {
		return rec, err
	}
	defer m.lock(res.Path)()
	r, err := m.backup(ctx, d, res.Path)
	if err != nil {
		return rec, err
	}
	return *r, nil
}

// Backups lists the backups of d, newest first.
func (m *Manager) Backups(ctx context.Context, d distro.Distribution) (records []backup.Record, err error) {
	_, _, finish := m.begin(ctx, "backups", d)
	defer func() { finish(err) }()

	res, err := m.resolver.Lookup(d)
	if err != nil {
		return nil, err
	}
	return m.backups.List(d, res.Path)
}

// RestoreOptions controls Restore.
type RestoreOptions struct {
	Record *backup.Record // nil restores the most recent backup
	Force  bool           // restore even if the file is read-only
}

// Restore replaces the settings file of d with a backup. The replaced
// content is itself backed up. A read-only flag cleared by Force is put back.
func (m *Manager) Restore(ctx context.Context, d distro.Distribution, opts RestoreOptions) (result backup.RestoreResult, err error) {
	ctx, _, finish := m.begin(ctx, "restore", d)
	defer func() { finish(err) }()

	res, err := m.resolver.Resolve(d)
	if err != nil {
		return result, err
	}
	defer m.lock(res.Path)()

	var rec backup.Record
	if opts.Record != nil {
		rec = *opts.Record
		rec.Distribution = d
	} else if rec, err = m.backups.Latest(d, res.Path); err != nil {
		return result, err
	}

	exists, err := fsutil.Exists(res.Path)
	if err != nil {
		return result, err
	}
	wasRO, err := m.unlockForWrite("restore", res.Path, exists, opts.Force)
	if err != nil {
		return result, err
	}

	result, err = m.backups.Restore(ctx, rec, res.Path, backup.RestoreOptions{
		Write: func(data []byte) error { return m.writeBytes(ctx, res, data) },
	})
	if result.Previous.Path != "" {
		m.metrics.BackupCreated(d.String())
	}
	if wasRO {
		if rerr := m.setReadOnly(ctx, d, res.Path, true); rerr != nil && err == nil {
			err = rerr
		}
	}
	return result, err
}

// WriteOptions controls writes of custom overrides.
type WriteOptions struct {
	Force  bool // write even if the file is read-only; the flag is restored
	Backup bool // back up an existing file before writing
}

// WriteResult reports a write of custom overrides.
type WriteResult struct {
	Path    string
	Applied int
	Backup  *backup.Record
}

// Custom sets a single key. See ApplyOverrides.
func (m *Manager) Custom(ctx context.Context, d distro.Distribution, section, key, value string, opts WriteOptions) (WriteResult, error) {
	return m.ApplyOverrides(ctx, d, []custom.Override{{Section: section, Key: key, Value: value}}, opts)
}

// ApplyOverrides sets every override on the settings file of d in one write.
// Invalid overrides fail the whole call before anything is touched.
func (m *Manager) ApplyOverrides(ctx context.Context, d distro.Distribution, overrides []custom.Override, opts WriteOptions) (result WriteResult, err error) {
	ctx, logger, finish := m.begin(ctx, "custom", d)
	defer func() { finish(err) }()

	for _, o := range overrides {
		if err := custom.Validate(o); err != nil {
			return result, err
		}
	}

	res, err := m.resolver.Resolve(d)
	if err != nil {
		return result, err
	}
	result.Path = res.Path
	defer m.lock(res.Path)()

	doc, exists, err := m.load(res.Path)
	if err != nil {
		return result, err
	}
	wasRO, err := m.unlockForWrite("custom", res.Path, exists, opts.Force)
	if err != nil {
		return result, err
	}
	if wasRO {
		defer func() {
			if rerr := m.setReadOnly(ctx, d, res.Path, true); rerr != nil && err == nil {
				err = rerr
			}
		}()
	}

	if exists && opts.Backup {
		if result.Backup, err = m.backup(ctx, d, res.Path); err != nil {
			return result, err
		}
	}

	doc, err = custom.ApplyAll(doc, overrides)
	if err != nil {
		return result, err
	}
	if err := m.writeBytes(ctx, res, doc.Serialize()); err != nil {
		return result, err
	}
	result.Applied = len(overrides)

	for _, o := range overrides {
		logger.Info().
			Str(log.FieldSection, o.Section).
			Str(log.FieldKey, o.Key).
			Msg("custom setting applied")
	}
	return result, nil
}

// ReadOnlyResult reports SetReadOnly.
type ReadOnlyResult struct {
	Path     string
	ReadOnly bool
	Changed  bool
}

// SetReadOnly toggles the read-only flag of the settings file of d. A
// missing file fails with cfgerr.ErrSourceNotFound.
func (m *Manager) SetReadOnly(ctx context.Context, d distro.Distribution, readOnly bool) (result ReadOnlyResult, err error) {
	ctx, _, finish := m.begin(ctx, "readonly", d)
	defer func() { finish(err) }()

	res, err := m.resolver.Lookup(d)
	if err != nil {
		return result, err
	}
	result.Path = res.Path
	defer m.lock(res.Path)()

	exists, err := fsutil.Exists(res.Path)
	if err != nil {
		return result, err
	}
	if !exists {
		return result, cfgerr.New(cfgerr.ErrSourceNotFound, "readonly", res.Path, "run create first", nil)
	}
	current, err := fsutil.IsReadOnly(res.Path)
	if err != nil {
		return result, err
	}
	result.ReadOnly = readOnly
	if current == readOnly {
		return result, nil
	}
	if err := m.setReadOnly(ctx, d, res.Path, readOnly); err != nil {
		return result, err
	}
	result.Changed = true
	return result, nil
}

// Watch reports changes of the settings file of d until ctx is done.
func (m *Manager) Watch(ctx context.Context, d distro.Distribution, handler watch.Handler) (err error) {
	ctx, _, finish := m.begin(ctx, "watch", d)
	defer func() { finish(err) }()

	res, err := m.resolver.Resolve(d)
	if err != nil {
		return err
	}
	return watch.Watch(ctx, res.Path, handler)
}

// Presets returns the preset catalog in declaration order.
func (m *Manager) Presets() []preset.Definition { return m.catalog.List() }

// DefaultPreset names the preset Create uses when none is given.
func (m *Manager) DefaultPreset() string { return m.catalog.DefaultName() }

// EngineTweaks returns the tweak set Create applies on request.
func (m *Manager) EngineTweaks() []preset.Tweak { return m.catalog.EngineTweaks() }

// Resolve exposes path resolution for callers that only need the location.
func (m *Manager) Resolve(d distro.Distribution) (paths.Resolution, error) {
	return m.resolver.Lookup(d)
}
