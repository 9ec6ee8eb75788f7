// Package transform implements replacement templates and the character
// transformations built from them
package transform

import (
	"fmt"
	"strconv"
	"strings"
)

// Pattern renders one fragment of replacement text for a matched character.
// Implementations are Literal, EscapedHexBytes, SimpleUnicodeCodepoint,
// EscapedUnicode, UplusUnicode, DebugEscapedUnicode, Entity and Identity
type Pattern interface {
	Render(r rune) string
	// Tag returns the template spelling of the pattern
	Tag() string
	isPattern()
}

// Literal emits fixed text regardless of the character
type Literal struct {
	Text string
}

// EscapedHexBytes emits the four big-endian bytes of the codepoint as \xHH
type EscapedHexBytes struct{}

// SimpleUnicodeCodepoint emits the codepoint as 4 or 8 lowercase hex digits
type SimpleUnicodeCodepoint struct{}

// EscapedUnicode emits \uXXXX, or \UXXXXXXXX above the BMP
type EscapedUnicode struct{}

// UplusUnicode emits U+ followed by unpadded hex
type UplusUnicode struct{}

// DebugEscapedUnicode emits \u{hex}
type DebugEscapedUnicode struct{}

// Entity emits a decimal numeric character reference
type Entity struct{}

// Identity emits the character itself
type Identity struct{}

// Render implementations
func (p Literal) Render(rune) string { return p.Text }

func (EscapedHexBytes) Render(r rune) string {
	n := uint32(r)
	return fmt.Sprintf(`\x%02x\x%02x\x%02x\x%02x`, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
}

func (SimpleUnicodeCodepoint) Render(r rune) string {
	if r > 0xFFFF {
		return fmt.Sprintf("%08x", uint32(r))
	}
	return fmt.Sprintf("%04x", uint32(r))
}

func (EscapedUnicode) Render(r rune) string {
	if r > 0xFFFF {
		return fmt.Sprintf(`\U%08x`, uint32(r))
	}
	return fmt.Sprintf(`\u%04x`, uint32(r))
}

func (UplusUnicode) Render(r rune) string {
	return "U+" + strconv.FormatUint(uint64(uint32(r)), 16)
}

func (DebugEscapedUnicode) Render(r rune) string {
	return `\u{` + strconv.FormatUint(uint64(uint32(r)), 16) + "}"
}

func (Entity) Render(r rune) string {
	return "&#" + strconv.FormatUint(uint64(uint32(r)), 10) + ";"
}

func (Identity) Render(r rune) string { return string(r) }

// Tag returns the literal text verbatim. Braces cannot be escaped in a
// template, so a literal containing '{' does not parse back to itself
func (p Literal) Tag() string { return p.Text }

// Placeholder tags
func (EscapedHexBytes) Tag() string        { return "{hex-esc}" }
func (SimpleUnicodeCodepoint) Tag() string { return "{uni-simple}" }
func (EscapedUnicode) Tag() string         { return "{uni-esc}" }
func (UplusUnicode) Tag() string           { return "{uni-codepoint}" }
func (DebugEscapedUnicode) Tag() string    { return "{rust}" }
func (Entity) Tag() string                 { return "{entity}" }
func (Identity) Tag() string               { return "{ident}" }

// Pattern is sealed to this package
func (Literal) isPattern()                {}
func (EscapedHexBytes) isPattern()        {}
func (SimpleUnicodeCodepoint) isPattern() {}
func (EscapedUnicode) isPattern()         {}
func (UplusUnicode) isPattern()           {}
func (DebugEscapedUnicode) isPattern()    {}
func (Entity) isPattern()                 {}
func (Identity) isPattern()               {}

// Template is a compiled replacement: its patterns rendered in order
type Template []Pattern

// Render concatenates every pattern's output for r
func (t Template) Render(r rune) string {
	if len(t) == 1 {
		return t[0].Render(r)
	}
	var b strings.Builder
	for _, p := range t {
		b.WriteString(p.Render(r))
	}
	return b.String()
}

// String returns the template in template syntax
func (t Template) String() string {
	var b strings.Builder
	for _, p := range t {
		b.WriteString(p.Tag())
	}
	return b.String()
}
