// Package encoding resolves the charset of clipboard targets and decodes
// their bytes to text
package encoding

import "strings"

// Charset labels produced by the resolver and accepted by Decode
const (
	UTF8      = "utf-8"
	UTF16LE   = "utf-16le"
	UTF16BE   = "utf-16be"
	UTF16     = "utf-16"
	ISO8859_1 = "iso-8859-1"
	ISO885915 = "iso-8859-15"
	USASCII   = "us-ascii"
)

// Aliases accepted in addition to the canonical labels
const (
	aliasUnicode = "unicode"
	aliasASCII   = "ascii"
)

var labels = []string{UTF8, UTF16LE, UTF16BE, UTF16, ISO8859_1, ISO885915, USASCII}

// Labels returns the canonical charset labels in display order
func Labels() []string {
	return append([]string(nil), labels...)
}

// Canonical maps a label or alias to its canonical form. The second result
// is false for labels Decode does not support
func Canonical(label string) (string, bool) {
	switch l := strings.ToLower(strings.TrimSpace(label)); l {
	case UTF8, UTF16LE, UTF16BE, ISO8859_1, ISO885915, USASCII:
		return l, true
	case UTF16, aliasUnicode:
		return UTF16, true
	case aliasASCII:
		return USASCII, true
	}
	return "", false
}
