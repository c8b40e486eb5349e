package ini

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is the byte encoding of a settings file. Unreal writes UTF-8, but
// files touched by Windows tools frequently carry a BOM or are UTF-16.
type Encoding int

const (
	UTF8 Encoding = iota
	UTF8BOM
	UTF16LE
	UTF16BE
)

func (e Encoding) String() string {
	switch e {
	case UTF8BOM:
		return "utf-8-bom"
	case UTF16LE:
		return "utf-16le"
	case UTF16BE:
		return "utf-16be"
	default:
		return "utf-8"
	}
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

func (e Encoding) codec() encoding.Encoding {
	switch e {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	default:
		return nil
	}
}

// decode sniffs the BOM and returns the text content.
func decode(data []byte) (string, Encoding, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), UTF8BOM, nil
	case bytes.HasPrefix(data, bomUTF16LE):
		out, err := UTF16LE.codec().NewDecoder().Bytes(data)
		if err != nil {
			return "", UTF16LE, fmt.Errorf("decode utf-16le: %w", err)
		}
		return string(out), UTF16LE, nil
	case bytes.HasPrefix(data, bomUTF16BE):
		out, err := UTF16BE.codec().NewDecoder().Bytes(data)
		if err != nil {
			return "", UTF16BE, fmt.Errorf("decode utf-16be: %w", err)
		}
		return string(out), UTF16BE, nil
	default:
		return string(data), UTF8, nil
	}
}

func encode(text string, enc Encoding) ([]byte, error) {
	switch enc {
	case UTF8BOM:
		out := make([]byte, 0, len(bomUTF8)+len(text))
		out = append(out, bomUTF8...)
		return append(out, text...), nil
	case UTF16LE, UTF16BE:
		return enc.codec().NewEncoder().Bytes([]byte(text))
	default:
		return []byte(text), nil
	}
}
