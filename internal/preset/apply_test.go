package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/e33config/internal/ini"
)

func TestApply_NonInterference(t *testing.T) {
	doc, err := ini.Parse([]byte("[Custom]\nfoo=1\n"))
	require.NoError(t, err)
	ultra, err := Default().Get("ultra")
	require.NoError(t, err)

	out := Apply(doc, ultra)

	v, ok := out.Get("Custom", "foo")
	require.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, []string{"Custom", "SystemSettings"}, out.Sections())
	for _, tw := range ultra.Tweaks {
		got, ok := out.Get(tw.Section, tw.Key)
		require.True(t, ok, tw.Key)
		assert.Equal(t, tw.Value, got, tw.Key)
	}
	assert.Equal(t, "[Custom]\nfoo=1\n", string(doc.Serialize()), "input document is not modified")
}

func TestApply_Idempotent(t *testing.T) {
	doc, err := ini.Parse([]byte("; keep me\n[SystemSettings]\nr.ViewDistanceScale=0.1\nr.Other=7\n"))
	require.NoError(t, err)

	for _, p := range Default().List() {
		t.Run(p.Name, func(t *testing.T) {
			once := Apply(doc, p)
			twice := Apply(once, p)
			assert.Equal(t, string(once.Serialize()), string(twice.Serialize()))
		})
	}
}

func TestApply_LastWriteWins(t *testing.T) {
	def := Definition{Name: "x", Tweaks: []Tweak{
		{Section: "S", Key: "k", Value: "first"},
		{Section: "S", Key: "j", Value: "other"},
		{Section: "S", Key: "k", Value: "second"},
	}}
	out := Apply(ini.NewDocument("\n"), def)

	v, _ := out.Get("S", "k")
	assert.Equal(t, "second", v)
	assert.Equal(t, []string{"k", "j"}, out.Keys("S"))
}

func TestApplyTweaks_EngineTweaksAfterPreset(t *testing.T) {
	c := Default()
	balanced, err := c.Get(c.DefaultName())
	require.NoError(t, err)

	out := ApplyTweaks(Apply(ini.NewDocument("\n"), balanced), c.EngineTweaks())
	for _, tw := range c.EngineTweaks() {
		got, ok := out.Get(tw.Section, tw.Key)
		require.True(t, ok)
		assert.Equal(t, tw.Value, got)
	}
	assert.True(t, out.HasSection("/Script/Engine.RendererSettings"))
}
