// Package distro describes the release channels of the game and where each
// one keeps Engine.ini.
package distro

import (
	"fmt"
	"strings"
)

// Distribution identifies a release channel of the game.
type Distribution string

const (
	Steam    Distribution = "steam"
	GamePass Distribution = "gamepass"
)

// SettingsFileName is the engine settings file managed by this tool.
const SettingsFileName = "Engine.ini"

// SteamAppID is the Steam application id, which also names the Proton prefix.
const SteamAppID = "1903340"

// Definition is the immutable description of one distribution.
type Definition struct {
	ID    Distribution
	Label string
	// ConfigSubdir is the Unreal platform directory below Saved/Config.
	ConfigSubdir string
}

var definitions = []Definition{
	{ID: Steam, Label: "Steam", ConfigSubdir: "Windows"},
	{ID: GamePass, Label: "Game Pass", ConfigSubdir: "WinGDK"},
}

// All returns every known distribution in display order.
func All() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup returns the definition of d.
func Lookup(d Distribution) (Definition, bool) {
	for _, def := range definitions {
		if def.ID == d {
			return def, true
		}
	}
	return Definition{}, false
}

// Parse maps user input ("steam", "GamePass", "xbox") to a Distribution.
func Parse(s string) (Distribution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "steam", "":
		return Steam, nil
	case "gamepass", "game-pass", "xbox", "msstore":
		return GamePass, nil
	default:
		return "", fmt.Errorf("unknown distribution %q (want steam or gamepass)", s)
	}
}

func (d Distribution) String() string { return string(d) }

// Label returns the human-readable name of d.
func (d Distribution) Label() string {
	if def, ok := Lookup(d); ok {
		return def.Label
	}
	return string(d)
}
