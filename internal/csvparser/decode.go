package csvparser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUndecodable is returned when the input is not text in any supported
// encoding (typically a binary file uploaded by mistake).
var ErrUndecodable = errors.New("input is not decodable as text")

// Encoding names reported by Decode.
const (
	EncodingUTF8        = "UTF-8"
	EncodingUTF8BOM     = "UTF-8 (BOM)"
	EncodingUTF16LE     = "UTF-16LE"
	EncodingUTF16BE     = "UTF-16BE"
	EncodingWindows1252 = "Windows-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw file bytes into text.
//
// DECODING ORDER:
//  1. UTF-8 with BOM (BOM stripped)
//  2. UTF-16 with BOM (Excel "Unicode text" exports)
//  3. Valid UTF-8
//  4. Windows-1252, used by Excel on European Windows installs
//
// NUL bytes in the decoded text mean the input is binary and cannot be parsed.
func Decode(raw []byte) (string, string, error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return checkText(string(raw[len(bomUTF8):]), EncodingUTF8BOM)
	case bytes.HasPrefix(raw, bomUTF16LE):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), raw, EncodingUTF16LE)
	case bytes.HasPrefix(raw, bomUTF16BE):
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.UseBOM), raw, EncodingUTF16BE)
	case utf8.Valid(raw):
		return checkText(string(raw), EncodingUTF8)
	}
	return decodeWith(charmap.Windows1252, raw, EncodingWindows1252)
}

func decodeWith(enc encoding.Encoding, raw []byte, name string) (string, string, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", name, fmt.Errorf("%w: %s: %v", ErrUndecodable, name, err)
	}
	return checkText(string(out), name)
}

func checkText(text, name string) (string, string, error) {
	if strings.IndexByte(text, 0) >= 0 {
		return "", name, fmt.Errorf("%w: contains NUL bytes", ErrUndecodable)
	}
	return text, name, nil
}
