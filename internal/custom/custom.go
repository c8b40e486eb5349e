// Package custom applies one-off section/key/value overrides that are not
// part of any preset.
package custom

import (
	"fmt"

	"github.com/ManuGH/e33config/internal/cfgerr"
	"github.com/ManuGH/e33config/internal/ini"
	"github.com/ManuGH/e33config/internal/validate"
)

// Override is a single user-supplied setting.
type Override struct {
	Section string
	Key     string
	Value   string
}

func (o Override) String() string {
	return fmt.Sprintf("[%s] %s=%s", o.Section, o.Key, o.Value)
}

// Validate rejects overrides that would corrupt the serialized document.
// The value is not interpreted.
func Validate(o Override) error {
	v := validate.New()
	v.SectionName("section", o.Section)
	v.KeyName("key", o.Key)
	v.SettingValue("value", o.Value)
	if err := v.Err(); err != nil {
		return cfgerr.New(cfgerr.ErrInvalidSetting, "custom", "", o.String(), err)
	}
	return nil
}

// Apply returns a copy of doc with o set, replacing any existing value.
func Apply(doc *ini.Document, o Override) (*ini.Document, error) {
	return ApplyAll(doc, []Override{o})
}

// ApplyAll validates every override before touching the document, then sets
// them in order. Nothing is applied if any override is invalid.
func ApplyAll(doc *ini.Document, overrides []Override) (*ini.Document, error) {
	for _, o := range overrides {
		if err := Validate(o); err != nil {
			return nil, err
		}
	}
	out := doc.Clone()
	for _, o := range overrides {
		out.Set(o.Section, o.Key, o.Value)
	}
	return out, nil
}
