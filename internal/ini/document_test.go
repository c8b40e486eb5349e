package ini

import (
	"errors"
	"testing"

	"github.com/ManuGH/e33config/internal/cfgerr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const canonical = `; Clair Obscur engine overrides
[SystemSettings]
r.ViewDistanceScale=1.5
r.Shadow.MaxResolution=2048

[/Script/Engine.RendererSettings]
r.DefaultFeature.MotionBlur=False

[Custom]
foo=1
`

func TestParseSerialize_RoundTrip(t *testing.T) {
	inputs := map[string]string{
		"canonical":          canonical,
		"empty":              "",
		"no trailing eol":    "[A]\nk=v",
		"crlf":               "[A]\r\nk=v\r\n\r\n[B]\r\nx=y\r\n",
		"mixed endings":      "[A]\r\nk=v\nj=w\r\n",
		"spaced separator":   "[A]\nkey = value with spaces\n",
		"comments and blank": "# top\n\n[A]\n; note\nk=v\n\n\n",
		"array ops":          "[Paths]\n+Paths=a\n+Paths=b\n-Paths=c\n",
		"opaque line":        "[A]\nnot a pair\nk=v\n",
		"empty value":        "[A]\nk=\n",
		"value with equals":  "[A]\nr.Cmd=a=b\n",
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse([]byte(in))
			require.NoError(t, err)
			assert.Equal(t, in, string(doc.Serialize()))
		})
	}
}

func TestParse_Structure(t *testing.T) {
	doc, err := Parse([]byte(canonical))
	require.NoError(t, err)

	assert.Equal(t, []string{"SystemSettings", "/Script/Engine.RendererSettings", "Custom"}, doc.Sections())
	want := []Entry{
		{Key: "r.ViewDistanceScale", Value: "1.5"},
		{Key: "r.Shadow.MaxResolution", Value: "2048"},
	}
	if diff := cmp.Diff(want, doc.Entries("SystemSettings")); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	v, ok := doc.Get("Custom", "foo")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = doc.Get("custom", "foo")
	assert.False(t, ok, "section names are case-sensitive")
}

func TestParse_Malformed(t *testing.T) {
	tests := map[string]string{
		"key outside section":      "k=v\n[A]\n",
		"text outside section":     "garbage\n[A]\n",
		"empty header":             "[]\nk=v\n",
		"empty key":                "[A]\n=v\n",
		"repeated header conflict": "[A]\nk=1\n[B]\n[A]\nk=2\n",
		"invalid utf8":             "[A]\nk=\xff\n",
		"text after header":        "[A]\nx=1\n[B] note\ny=2\n",
		"unterminated header":      "[A]\nx=1\n[B\ny=2\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, cfgerr.ErrMalformedDocument), "got %v", err)
		})
	}
}

func TestParse_HeaderWithTrailingComment(t *testing.T) {
	in := "[A]\nx=1\n[B] ; note\ny=2\n\n[C]# other\nz=3\n"
	doc, err := Parse([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, in, string(doc.Serialize()))
	assert.Equal(t, []string{"A", "B", "C"}, doc.Sections())
	assert.Equal(t, []Entry{{Key: "x", Value: "1"}}, doc.Entries("A"))
	assert.Equal(t, []Entry{{Key: "y", Value: "2"}}, doc.Entries("B"))

	doc.Set("B", "w", "4")
	assert.Equal(t, "[A]\nx=1\n[B] ; note\ny=2\nw=4\n\n[C]# other\nz=3\n", string(doc.Serialize()))
}

func TestParse_MalformedReportsLine(t *testing.T) {
	_, err := Parse([]byte("; ok\n\nk=v\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParse_RepeatedHeaderMergeCases(t *testing.T) {
	in := "[A]\nk=1\n+Arr=x\n\n[B]\nz=0\n\n[A]\nk=1\nj=2\n+Arr=y\n"
	doc, err := Parse([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, in, string(doc.Serialize()))
	assert.Equal(t, []string{"A", "B"}, doc.Sections())
	assert.Equal(t, []string{"k", "+Arr", "j"}, doc.Keys("A"))

	v, ok := doc.Get("A", "j")
	require.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestSet_ExistingKeyKeepsPosition(t *testing.T) {
	doc, err := Parse([]byte(canonical))
	require.NoError(t, err)

	doc.Set("SystemSettings", "r.ViewDistanceScale", "2.0")

	want := `; Clair Obscur engine overrides
[SystemSettings]
r.ViewDistanceScale=2.0
r.Shadow.MaxResolution=2048

[/Script/Engine.RendererSettings]
r.DefaultFeature.MotionBlur=False

[Custom]
foo=1
`
	assert.Equal(t, want, string(doc.Serialize()))
}

func TestSet_KeepsOriginalSpacing(t *testing.T) {
	doc, err := Parse([]byte("[A]\nkey = old\n"))
	require.NoError(t, err)
	doc.Set("A", "key", "new")
	assert.Equal(t, "[A]\nkey = new\n", string(doc.Serialize()))
}

func TestSet_NewKeyAppendsAfterLastEntry(t *testing.T) {
	doc, err := Parse([]byte(canonical))
	require.NoError(t, err)

	doc.Set("SystemSettings", "r.Tonemapper.Sharpen", "0.5")

	want := `; Clair Obscur engine overrides
[SystemSettings]
r.ViewDistanceScale=1.5
r.Shadow.MaxResolution=2048
r.Tonemapper.Sharpen=0.5

[/Script/Engine.RendererSettings]
r.DefaultFeature.MotionBlur=False

[Custom]
foo=1
`
	assert.Equal(t, want, string(doc.Serialize()))
}

func TestSet_NewSectionAppendsCanonically(t *testing.T) {
	doc, err := Parse([]byte("[A]\nk=v"))
	require.NoError(t, err)

	doc.Set("B", "x", "1")
	assert.Equal(t, "[A]\nk=v\n\n[B]\nx=1\n", string(doc.Serialize()))
}

func TestSet_UsesDocumentNewline(t *testing.T) {
	doc, err := Parse([]byte("[A]\r\nk=v\r\n"))
	require.NoError(t, err)

	doc.Set("A", "j", "w")
	doc.Set("B", "x", "1")
	assert.Equal(t, "[A]\r\nk=v\r\nj=w\r\n\r\n[B]\r\nx=1\r\n", string(doc.Serialize()))
}

func TestSet_OnEmptyDocument(t *testing.T) {
	doc := NewDocument("")
	doc.Set("SystemSettings", "r.ViewDistanceScale", "1.5")
	doc.Set("SystemSettings", "r.Fog", "True")
	doc.Set("/Script/Engine.RendererSettings", "r.MSAACount", "4")

	want := "[SystemSettings]\nr.ViewDistanceScale=1.5\nr.Fog=True\n\n[/Script/Engine.RendererSettings]\nr.MSAACount=4\n"
	assert.Equal(t, want, string(doc.Serialize()))

	reparsed, err := Parse(doc.Serialize())
	require.NoError(t, err)
	assert.Equal(t, want, string(reparsed.Serialize()))
}

func TestSet_SameValueLeavesLineUntouched(t *testing.T) {
	doc, err := Parse([]byte("[A]\nk =  1\n"))
	require.NoError(t, err)
	doc.Set("A", "k", "1")
	assert.Equal(t, "[A]\nk =  1\n", string(doc.Serialize()))
}

func TestRemove(t *testing.T) {
	doc, err := Parse([]byte("[A]\n+Arr=1\nk=v\n+Arr=2\n"))
	require.NoError(t, err)

	assert.True(t, doc.Remove("A", "+Arr"))
	assert.False(t, doc.Remove("A", "+Arr"))
	assert.False(t, doc.Remove("Missing", "k"))
	assert.Equal(t, "[A]\nk=v\n", string(doc.Serialize()))
	assert.True(t, doc.HasSection("A"))
}

func TestClone_IsIndependent(t *testing.T) {
	doc, err := Parse([]byte(canonical))
	require.NoError(t, err)

	c := doc.Clone()
	c.Set("Custom", "foo", "2")
	c.Set("New", "k", "v")

	v, _ := doc.Get("Custom", "foo")
	assert.Equal(t, "1", v)
	assert.False(t, doc.HasSection("New"))
	assert.Equal(t, canonical, string(doc.Serialize()))
}

func TestEncoding_UTF16AndBOMRoundTrip(t *testing.T) {
	text := "[SystemSettings]\r\nr.Fog=True\r\n"

	for _, enc := range []Encoding{UTF8BOM, UTF16LE, UTF16BE} {
		t.Run(enc.String(), func(t *testing.T) {
			raw, err := encode(text, enc)
			require.NoError(t, err)

			doc, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, enc, doc.Encoding())

			v, ok := doc.Get("SystemSettings", "r.Fog")
			require.True(t, ok)
			assert.Equal(t, "True", v)
			assert.Equal(t, raw, doc.Serialize())

			doc.Set("SystemSettings", "r.Fog", "False")
			again, err := Parse(doc.Serialize())
			require.NoError(t, err)
			assert.Equal(t, enc, again.Encoding())
			v, _ = again.Get("SystemSettings", "r.Fog")
			assert.Equal(t, "False", v)
		})
	}
}

func TestIsArrayOp(t *testing.T) {
	for key, want := range map[string]bool{
		"+Paths": true, "-Paths": true, ".Paths": true, "!Paths": true,
		"Paths": false, "": false, "r.Fog": false,
	} {
		assert.Equal(t, want, IsArrayOp(key), key)
	}
}
