// Package preset holds the named performance presets and applies them to
// settings documents.
//
// The catalog is loaded once from a declarative table (TOML or YAML) and is
// read-only afterwards; it is safe for concurrent use.
package preset

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ManuGH/e33config/internal/cfgerr"
	"github.com/ManuGH/e33config/internal/validate"
)

//go:embed data/presets.toml
var embeddedPresets []byte

// Tweak is a single section/key/value triple.
type Tweak struct {
	Section string `json:"section"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}

// Definition is a named, ordered set of tweaks.
type Definition struct {
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Tweaks []Tweak `json:"tweaks"`
}

// Catalog is an immutable preset table.
type Catalog struct {
	presets     []Definition
	index       map[string]int
	defaultName string
	engine      []Tweak
}

// tableFile is the on-disk format shared by TOML and YAML sources.
type tableFile struct {
	Default      string       `toml:"default" yaml:"default"`
	Presets      []presetFile `toml:"preset" yaml:"presets"`
	EngineTweaks []tweakFile  `toml:"engine_tweak" yaml:"engineTweaks"`
}

type presetFile struct {
	Name   string      `toml:"name" yaml:"name"`
	Label  string      `toml:"label" yaml:"label"`
	Tweaks []tweakFile `toml:"tweak" yaml:"tweaks"`
}

type tweakFile struct {
	Section string `toml:"section" yaml:"section"`
	Key     string `toml:"key" yaml:"key"`
	Value   any    `toml:"value" yaml:"value"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog. It is parsed on first use.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := ParseTOML(embeddedPresets)
		if err != nil {
			panic(fmt.Sprintf("preset: embedded table is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadFile loads a catalog from a .toml, .yaml or .yml file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- preset path is operator-provided
	if err != nil {
		return nil, fmt.Errorf("read preset table %s: %w", path, err)
	}
	var c *Catalog
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		c, err = ParseTOML(data)
	case ".yaml", ".yml":
		c, err = ParseYAML(data)
	default:
		return nil, fmt.Errorf("preset table %s: unsupported extension %q (want .toml, .yaml or .yml)", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("preset table %s: %w", path, err)
	}
	return c, nil
}

// ParseTOML builds a catalog from a TOML table. Unknown keys are rejected.
func ParseTOML(data []byte) (*Catalog, error) {
	var tf tableFile
	meta, err := toml.Decode(string(data), &tf)
	if err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parse toml: unknown keys: %s", strings.Join(keys, ", "))
	}
	return build(tf)
}

// ParseYAML builds a catalog from a YAML table. Unknown keys are rejected.
func ParseYAML(data []byte) (*Catalog, error) {
	var tf tableFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tf); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return build(tf)
}

func build(tf tableFile) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int, len(tf.Presets))}
	v := validate.New()

	for i, p := range tf.Presets {
		field := fmt.Sprintf("preset[%d]", i)
		name := strings.TrimSpace(p.Name)
		v.NotEmpty(field+".name", name)
		if _, dup := c.index[name]; dup && name != "" {
			v.AddError(field+".name", "duplicate preset name", name)
			continue
		}
		def := Definition{Name: name, Label: p.Label, Tweaks: make([]Tweak, 0, len(p.Tweaks))}
		if def.Label == "" {
			def.Label = name
		}
		for j, t := range p.Tweaks {
			tw, err := convertTweak(v, fmt.Sprintf("%s.tweak[%d]", field, j), t)
			if err == nil {
				def.Tweaks = append(def.Tweaks, tw)
			}
		}
		c.index[name] = len(c.presets)
		c.presets = append(c.presets, def)
	}
	for j, t := range tf.EngineTweaks {
		tw, err := convertTweak(v, fmt.Sprintf("engine_tweak[%d]", j), t)
		if err == nil {
			c.engine = append(c.engine, tw)
		}
	}

	c.defaultName = strings.TrimSpace(tf.Default)
	switch {
	case c.defaultName == "" && len(c.presets) > 0:
		c.defaultName = c.presets[0].Name
	case c.defaultName != "":
		if _, ok := c.index[c.defaultName]; !ok {
			v.AddError("default", "names no preset in the table", c.defaultName)
		}
	}
	if len(c.presets) == 0 {
		v.AddError("preset", "table defines no presets", nil)
	}

	if err := v.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

func convertTweak(v *validate.Validator, field string, t tweakFile) (Tweak, error) {
	before := len(v.Errors())
	v.SectionName(field+".section", t.Section)
	v.KeyName(field+".key", t.Key)
	value, err := formatValue(t.Value)
	if err != nil {
		v.AddError(field+".value", err.Error(), t.Value)
	} else {
		v.SettingValue(field+".value", value)
	}
	if len(v.Errors()) > before {
		return Tweak{}, fmt.Errorf("%s is invalid", field)
	}
	return Tweak{Section: t.Section, Key: t.Key, Value: value}, nil
}

// formatValue renders a declared scalar the way the game writes it:
// booleans as True/False, floats keep a decimal point.
func formatValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		if x {
			return "True", nil
		}
		return "False", nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s, nil
	case nil:
		return "", fmt.Errorf("value is missing")
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// List returns the presets in declaration order.
func (c *Catalog) List() []Definition {
	out := make([]Definition, len(c.presets))
	for i, p := range c.presets {
		out[i] = p.clone()
	}
	return out
}

// Names returns the preset names in declaration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.presets))
	for i, p := range c.presets {
		out[i] = p.Name
	}
	return out
}

// Get returns the named preset or an ErrUnknownPreset error.
func (c *Catalog) Get(name string) (Definition, error) {
	i, ok := c.index[name]
	if !ok {
		return Definition{}, cfgerr.New(cfgerr.ErrUnknownPreset, "preset", "",
			fmt.Sprintf("%q is not one of %s", name, strings.Join(c.Names(), ", ")), nil)
	}
	return c.presets[i].clone(), nil
}

// DefaultName is the preset used when a caller names none.
func (c *Catalog) DefaultName() string { return c.defaultName }

// EngineTweaks returns the tweak set applied after a preset on create.
func (c *Catalog) EngineTweaks() []Tweak {
	return append([]Tweak(nil), c.engine...)
}

func (d Definition) clone() Definition {
	d.Tweaks = append([]Tweak(nil), d.Tweaks...)
	return d
}
