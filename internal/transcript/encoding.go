package transcript

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

type unicodeEncoding int

const (
	encodingUnknown unicodeEncoding = iota
	encodingUTF8BOM
	encodingUTF16LE
	encodingUTF16BE
)

func detectUnicodeEncoding(sample []byte) unicodeEncoding {
	if len(sample) >= 3 && sample[0] == 0xEF && sample[1] == 0xBB && sample[2] == 0xBF {
		return encodingUTF8BOM
	}
	if len(sample) >= 2 {
		switch {
		case sample[0] == 0xFF && sample[1] == 0xFE:
			return encodingUTF16LE
		case sample[0] == 0xFE && sample[1] == 0xFF:
			return encodingUTF16BE
		}
	}
	return encodingUnknown
}

// normalizeContent converts BOM-prefixed UTF-8 and UTF-16 exports into plain
// UTF-8 bytes. Anything else is returned untouched.
func normalizeContent(content []byte) []byte {
	switch detectUnicodeEncoding(content) {
	case encodingUTF8BOM:
		return content[3:]
	case encodingUTF16LE:
		return decodeUTF16(content, unicode.LittleEndian)
	case encodingUTF16BE:
		return decodeUTF16(content, unicode.BigEndian)
	default:
		return content
	}
}

func decodeUTF16(content []byte, endian unicode.Endianness) []byte {
	decoder := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder()
	out, err := decoder.Bytes(content)
	if err != nil {
		return content
	}
	return out
}

// repairMojibake undoes the latin-1 escaping used by newer Messenger exports,
// where every UTF-8 byte was written as its own \u00XX escape. Strings that
// are not pure latin-1, or that do not form valid UTF-8 once re-encoded, are
// returned unchanged.
func repairMojibake(s string) string {
	if s == "" {
		return s
	}
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}
	raw, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return s
	}
	if !utf8.ValidString(raw) {
		return s
	}
	return raw
}
