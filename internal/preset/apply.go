package preset

import (
	"github.com/ManuGH/e33config/internal/ini"
)

// Apply returns a copy of doc with every tweak of def applied in order.
// Keys the preset does not name are left alone; a later tweak for the same
// key overrides an earlier one.
func Apply(doc *ini.Document, def Definition) *ini.Document {
	return ApplyTweaks(doc, def.Tweaks)
}

// ApplyTweaks is Apply for a bare tweak list such as the engine tweak set.
func ApplyTweaks(doc *ini.Document, tweaks []Tweak) *ini.Document {
	out := doc.Clone()
	for _, t := range tweaks {
		out.Set(t.Section, t.Key, t.Value)
	}
	return out
}
