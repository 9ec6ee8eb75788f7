package encoding

import (
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const byteOrderMark = '\ufeff'

// Decode converts data in the named charset to a string. UTF-8 is strict
// and fails on invalid input. The single-byte charsets and the fixed-order
// UTF-16 variants substitute U+FFFD for bytes they cannot map. The generic
// utf-16 label honours a leading byte order mark and otherwise uses the
// host byte order; it needs at least two bytes. Unknown labels fail
func Decode(label string, data []byte) (string, bool) {
	canonical, ok := Canonical(label)
	if !ok {
		return "", false
	}

	switch canonical {
	case UTF8:
		return decodeUTF8(data)
	case ISO8859_1:
		return decodeWith(charmap.ISO8859_1, data)
	case ISO885915:
		return decodeWith(charmap.ISO8859_15, data)
	case USASCII:
		return decodeASCII(data), true
	case UTF16LE:
		return decodeUTF16Fixed(unicode.LittleEndian, data)
	case UTF16BE:
		return decodeUTF16Fixed(unicode.BigEndian, data)
	case UTF16:
		return decodeUTF16(data)
	}
	return "", false
}

func decodeUTF8(data []byte) (string, bool) {
	out, _, err := transform.Bytes(encoding.UTF8Validator, data)
	if err != nil {
		return "", false
	}
	return string(out), true
}

func decodeWith(enc encoding.Encoding, data []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// decodeASCII maps bytes above 0x7F to U+FFFD. x/text has no US-ASCII
// decoder; its index aliases the label to windows-1252
func decodeASCII(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c >= utf8.RuneSelf {
			b.WriteRune(utf8.RuneError)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// decodeUTF16Fixed decodes with a fixed byte order. A leading BOM in that
// order is dropped; one in the other order decodes as U+FFFE and stays
func decodeUTF16Fixed(order unicode.Endianness, data []byte) (string, bool) {
	s, ok := decodeWith(unicode.UTF16(order, unicode.IgnoreBOM), data)
	if !ok {
		return "", false
	}
	return strings.TrimPrefix(s, string(byteOrderMark)), true
}

func decodeUTF16(data []byte) (string, bool) {
	if len(data) < 2 {
		return "", false
	}
	return decodeWith(unicode.UTF16(HostByteOrder(), unicode.UseBOM), data)
}

// HostByteOrder returns the native byte order of the running platform
func HostByteOrder() unicode.Endianness {
	if binary.NativeEndian.Uint16([]byte{0x01, 0x00}) == 0x0001 {
		return unicode.LittleEndian
	}
	return unicode.BigEndian
}
