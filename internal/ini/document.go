// Package ini is an order-preserving model of Unreal Engine style INI files.
//
// A Document keeps every line it was parsed from (comments, blank lines,
// original spacing and line endings), so serialising an unmodified document
// reproduces its input byte for byte. Values are always text; typed
// interpretation happens at the edges (see Interpret).
package ini

import "strings"

type lineKind int

const (
	kindBlank lineKind = iota
	kindComment
	kindHeader
	kindEntry
	kindOpaque
)

type line struct {
	kind lineKind
	raw  string // text without line terminator
	eol  string // "\n", "\r\n", "\r" or "" for a final unterminated line

	// entries only
	key    string
	value  string
	prefix string // raw text up to the value, keeps the original "key = " spacing
	dirty  bool   // raw no longer reflects key/value
}

func (l *line) text() string {
	if l.kind == kindEntry && l.dirty {
		if l.prefix != "" {
			return l.prefix + l.value
		}
		return l.key + "=" + l.value
	}
	return l.raw
}

func (l *line) clone() *line {
	c := *l
	return &c
}

// block is one "[Section]" header and the lines up to the next header.
// A section name may own several blocks when the file repeats a header.
type block struct {
	name   string
	header *line
	lines  []*line
}

// Document is a parsed settings file.
type Document struct {
	preamble []*line // lines before the first header (blank/comment only)
	blocks   []*block
	newline  string
	encoding Encoding
}

// Entry is one key/value pair of a section in file order.
type Entry struct {
	Key   string
	Value string
}

// NewDocument returns an empty document whose new lines end with newline
// ("\n" if empty).
func NewDocument(newline string) *Document {
	if newline == "" {
		newline = "\n"
	}
	return &Document{newline: newline, encoding: UTF8}
}

// Encoding reports the byte encoding the document will be serialised with.
func (d *Document) Encoding() Encoding { return d.encoding }

// Newline reports the line terminator used for lines added to the document.
func (d *Document) Newline() string { return d.newline }

// Empty reports whether the document has no sections and no preamble.
func (d *Document) Empty() bool {
	return len(d.blocks) == 0 && len(d.preamble) == 0
}

// Sections returns section names in order of first appearance.
func (d *Document) Sections() []string {
	seen := make(map[string]struct{}, len(d.blocks))
	out := make([]string, 0, len(d.blocks))
	for _, b := range d.blocks {
		if _, ok := seen[b.name]; ok {
			continue
		}
		seen[b.name] = struct{}{}
		out = append(out, b.name)
	}
	return out
}

// HasSection reports whether at least one header names section.
func (d *Document) HasSection(section string) bool {
	for _, b := range d.blocks {
		if b.name == section {
			return true
		}
	}
	return false
}

// Entries returns every key/value line of section in file order, including
// repeated array-operation keys.
func (d *Document) Entries(section string) []Entry {
	var out []Entry
	for _, b := range d.blocks {
		if b.name != section {
			continue
		}
		for _, l := range b.lines {
			if l.kind == kindEntry {
				out = append(out, Entry{Key: l.key, Value: l.value})
			}
		}
	}
	return out
}

// Keys returns the distinct keys of section in order of first appearance.
func (d *Document) Keys(section string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range d.Entries(section) {
		if _, ok := seen[e.Key]; ok {
			continue
		}
		seen[e.Key] = struct{}{}
		out = append(out, e.Key)
	}
	return out
}

// Get returns the value of key in section. When the key occurs more than
// once the last occurrence wins, matching how the engine reads the file.
func (d *Document) Get(section, key string) (string, bool) {
	if l := d.lastEntry(section, key); l != nil {
		return l.value, true
	}
	return "", false
}

// Set assigns value to key in section. An existing key keeps its position
// (the last occurrence is rewritten); a new key is appended after the last
// entry of the section's last block; a new section is appended at the end of
// the document.
func (d *Document) Set(section, key, value string) {
	if l := d.lastEntry(section, key); l != nil {
		if l.value != value {
			l.value = value
			l.dirty = true
		}
		return
	}

	entry := &line{kind: kindEntry, key: key, value: value, dirty: true, eol: d.newline}

	if b := d.lastBlock(section); b != nil {
		at := 0
		for i, l := range b.lines {
			if l.kind == kindEntry || l.kind == kindOpaque {
				at = i + 1
			}
		}
		prev := b.header
		if at > 0 {
			prev = b.lines[at-1]
		}
		d.terminate(prev)
		b.lines = append(b.lines, nil)
		copy(b.lines[at+1:], b.lines[at:])
		b.lines[at] = entry
		return
	}

	if last := d.lastLine(); last != nil {
		d.terminate(last)
		if last.kind != kindBlank {
			sep := &line{kind: kindBlank, eol: d.newline}
			if n := len(d.blocks); n > 0 {
				d.blocks[n-1].lines = append(d.blocks[n-1].lines, sep)
			} else {
				d.preamble = append(d.preamble, sep)
			}
		}
	}
	d.blocks = append(d.blocks, &block{
		name:   section,
		header: &line{kind: kindHeader, raw: "[" + section + "]", eol: d.newline},
		lines:  []*line{entry},
	})
}

// Remove deletes every occurrence of key in section and reports whether
// anything was removed. The section itself is kept.
func (d *Document) Remove(section, key string) bool {
	removed := false
	for _, b := range d.blocks {
		if b.name != section {
			continue
		}
		kept := b.lines[:0]
		for _, l := range b.lines {
			if l.kind == kindEntry && l.key == key {
				removed = true
				continue
			}
			kept = append(kept, l)
		}
		b.lines = kept
	}
	return removed
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	c := &Document{newline: d.newline, encoding: d.encoding}
	c.preamble = cloneLines(d.preamble)
	c.blocks = make([]*block, len(d.blocks))
	for i, b := range d.blocks {
		c.blocks[i] = &block{name: b.name, header: b.header.clone(), lines: cloneLines(b.lines)}
	}
	return c
}

// String renders the document as text (before byte encoding).
func (d *Document) String() string {
	var sb strings.Builder
	write := func(l *line) {
		sb.WriteString(l.text())
		sb.WriteString(l.eol)
	}
	for _, l := range d.preamble {
		write(l)
	}
	for _, b := range d.blocks {
		write(b.header)
		for _, l := range b.lines {
			write(l)
		}
	}
	return sb.String()
}

func (d *Document) lastEntry(section, key string) *line {
	for i := len(d.blocks) - 1; i >= 0; i-- {
		b := d.blocks[i]
		if b.name != section {
			continue
		}
		for j := len(b.lines) - 1; j >= 0; j-- {
			if l := b.lines[j]; l.kind == kindEntry && l.key == key {
				return l
			}
		}
	}
	return nil
}

func (d *Document) lastBlock(section string) *block {
	for i := len(d.blocks) - 1; i >= 0; i-- {
		if d.blocks[i].name == section {
			return d.blocks[i]
		}
	}
	return nil
}

func (d *Document) lastLine() *line {
	if n := len(d.blocks); n > 0 {
		b := d.blocks[n-1]
		if m := len(b.lines); m > 0 {
			return b.lines[m-1]
		}
		return b.header
	}
	if n := len(d.preamble); n > 0 {
		return d.preamble[n-1]
	}
	return nil
}

// terminate gives an unterminated final line a line ending before something
// is placed after it.
func (d *Document) terminate(l *line) {
	if l != nil && l.eol == "" {
		l.eol = d.newline
	}
}

func cloneLines(in []*line) []*line {
	if in == nil {
		return nil
	}
	out := make([]*line, len(in))
	for i, l := range in {
		out[i] = l.clone()
	}
	return out
}
