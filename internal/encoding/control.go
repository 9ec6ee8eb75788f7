package encoding

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// User-facing notices for the decode outcome
const (
	ControlCharsNotice = "Control characters have been replaced with \ufffd."
	conversionFailed   = "Could not convert data to %s"
)

// ConversionFailedNotice returns the notice shown when data cannot be
// decoded with label
func ConversionFailedNotice(label string) string {
	if label == "" {
		label = "an unknown encoding"
	}
	return fmt.Sprintf(conversionFailed, label)
}

// IsControl reports whether r is a C0 control other than tab, line feed
// and carriage return
func IsControl(r rune) bool {
	return r < 0x20 && r != '\t' && r != '\n' && r != '\r'
}

// ContainsControlChars reports whether s holds any character IsControl
// accepts
func ContainsControlChars(s string) bool {
	return strings.ContainsFunc(s, IsControl)
}

// ReplaceControlChars substitutes U+FFFD for every control character
func ReplaceControlChars(s string) string {
	if !ContainsControlChars(s) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if IsControl(r) {
			return utf8.RuneError
		}
		return r
	}, s)
}
