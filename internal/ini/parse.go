package ini

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ManuGH/e33config/internal/cfgerr"
)

// Parse reconstructs a Document from the raw bytes of a settings file.
//
// Parsing accepts a missing trailing newline and mixed "\n" / "\r\n" line
// endings. A header may carry a trailing ';' or '#' comment. It fails with
// cfgerr.ErrMalformedDocument when a key/value line appears before the first
// section header, when a line starting with '[' is not a well-formed header,
// or when a section header is repeated and the repetition redefines a plain
// key.
func Parse(data []byte) (*Document, error) {
	text, enc, err := decode(data)
	if err != nil {
		return nil, malformed(0, "undecodable content", err)
	}
	if !utf8.ValidString(text) {
		return nil, malformed(0, "content is not valid UTF-8", nil)
	}

	doc := &Document{encoding: enc}
	var cur *block

	for n, ln := range splitLines(text) {
		lineNo := n + 1
		if doc.newline == "" && ln.eol != "" {
			doc.newline = ln.eol
		}
		trimmed := strings.TrimSpace(ln.raw)
		l := &line{raw: ln.raw, eol: ln.eol}

		switch {
		case trimmed == "":
			l.kind = kindBlank
		case trimmed[0] == ';' || trimmed[0] == '#':
			l.kind = kindComment
		case trimmed[0] == '[':
			name, err := headerName(trimmed)
			if err != nil {
				return nil, malformed(lineNo, err.Error(), nil)
			}
			l.kind = kindHeader
			cur = &block{name: name, header: l}
			doc.blocks = append(doc.blocks, cur)
			continue
		default:
			idx := strings.IndexByte(ln.raw, '=')
			if idx < 0 {
				if cur == nil {
					return nil, malformed(lineNo, fmt.Sprintf("unexpected content %q outside any section", trimmed), nil)
				}
				l.kind = kindOpaque
				break
			}
			if cur == nil {
				return nil, malformed(lineNo, "key/value line outside any section", nil)
			}
			key := strings.TrimSpace(ln.raw[:idx])
			if key == "" {
				return nil, malformed(lineNo, "key/value line with empty key", nil)
			}
			rest := ln.raw[idx+1:]
			value := strings.TrimSpace(rest)
			l.kind = kindEntry
			l.key = key
			l.value = value
			l.prefix = ln.raw[:idx+1] + leadingSpace(rest)
		}

		if cur == nil {
			doc.preamble = append(doc.preamble, l)
		} else {
			cur.lines = append(cur.lines, l)
		}
	}

	if doc.newline == "" {
		doc.newline = "\n"
	}
	if err := checkRepeatedSections(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// headerName returns the section name of a line starting with '['. A
// comment may follow the closing bracket; anything else is an error.
func headerName(trimmed string) (string, error) {
	end := strings.IndexByte(trimmed, ']')
	if end < 0 {
		return "", fmt.Errorf("unterminated section header %q", trimmed)
	}
	if rest := strings.TrimSpace(trimmed[end+1:]); rest != "" && rest[0] != ';' && rest[0] != '#' {
		return "", fmt.Errorf("unexpected content %q after section header", rest)
	}
	name := strings.TrimSpace(trimmed[1:end])
	if name == "" {
		return "", fmt.Errorf("empty section header")
	}
	return name, nil
}

// Serialize encodes d back into bytes using the encoding it was parsed with.
// For an unmodified parsed document the output equals the parser input.
func (d *Document) Serialize() []byte {
	out, err := encode(d.String(), d.encoding)
	if err != nil {
		// UTF-16 encoding of valid UTF-8 cannot fail; fall back to UTF-8.
		return []byte(d.String())
	}
	return out
}

// IsArrayOp reports whether key uses Unreal's array operation syntax
// (+Key, -Key, .Key, !Key). Such keys may legitimately repeat.
func IsArrayOp(key string) bool {
	if key == "" {
		return false
	}
	switch key[0] {
	case '+', '-', '.', '!':
		return true
	}
	return false
}

// checkRepeatedSections accepts a repeated header only when no plain key is
// given two different values across the blocks of that section.
func checkRepeatedSections(doc *Document) error {
	type seenKey struct {
		block int
		value string
	}
	counts := make(map[string]int, len(doc.blocks))
	for _, b := range doc.blocks {
		counts[b.name]++
	}
	keys := make(map[string]map[string]seenKey)
	for bi, b := range doc.blocks {
		if counts[b.name] < 2 {
			continue
		}
		known := keys[b.name]
		if known == nil {
			known = make(map[string]seenKey)
			keys[b.name] = known
		}
		for _, l := range b.lines {
			if l.kind != kindEntry || IsArrayOp(l.key) {
				continue
			}
			prev, ok := known[l.key]
			if ok && prev.block != bi && prev.value != l.value {
				return malformed(0, fmt.Sprintf("duplicate section [%s] redefines key %q", b.name, l.key), nil)
			}
			known[l.key] = seenKey{block: bi, value: l.value}
		}
	}
	return nil
}

func malformed(lineNo int, detail string, cause error) error {
	if lineNo > 0 {
		detail = fmt.Sprintf("line %d: %s", lineNo, detail)
	}
	return cfgerr.New(cfgerr.ErrMalformedDocument, "parse", "", detail, cause)
}

type rawLine struct {
	raw string
	eol string
}

// splitLines splits text keeping each line's terminator. A trailing
// terminator does not produce an extra empty line.
func splitLines(text string) []rawLine {
	var out []rawLine
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			out = append(out, rawLine{raw: text[start:i], eol: "\n"})
			start = i + 1
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				out = append(out, rawLine{raw: text[start:i], eol: "\r\n"})
				i++
			} else {
				out = append(out, rawLine{raw: text[start:i], eol: "\r"})
			}
			start = i + 1
		}
	}
	if start < len(text) {
		out = append(out, rawLine{raw: text[start:], eol: ""})
	}
	return out
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
