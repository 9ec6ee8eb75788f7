// Package charfilter matches single characters against sets of single
// codepoints and inclusive codepoint ranges
package charfilter

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/raaihank/clipboard-cleaner/internal/config"
)

// ErrInvalidRange is returned for a range entry that is neither a single
// character nor a complete start/end pair, or that names a codepoint which
// is not a Unicode scalar value
var ErrInvalidRange = errors.New("invalid character range")

// Component is one alternative of a Filter: Single or Range
type Component interface {
	Matches(r rune) bool
	String() string
	isComponent()
}

// Single matches exactly one character
type Single struct {
	Char rune
}

// Matches reports whether r is the character
func (s Single) Matches(r rune) bool {
	return r == s.Char
}

func (s Single) String() string {
	return fmt.Sprintf("U+%04X", s.Char)
}

func (Single) isComponent() {}

// Range matches First..Last inclusive. A reversed range matches nothing
type Range struct {
	First rune
	Last  rune
}

// Matches reports whether r lies within the range
func (rg Range) Matches(r rune) bool {
	return rg.First <= r && r <= rg.Last
}

func (rg Range) String() string {
	return fmt.Sprintf("U+%04X..U+%04X", rg.First, rg.Last)
}

func (Range) isComponent() {}

// Filter is an ordered set of components combined with logical OR
type Filter struct {
	components []Component
}

// New creates a filter from components, matched in the given order
func New(components ...Component) Filter {
	return Filter{components: append([]Component(nil), components...)}
}

// Matches reports whether any component matches r
func (f Filter) Matches(r rune) bool {
	for _, c := range f.components {
		if c.Matches(r) {
			return true
		}
	}
	return false
}

// Components returns a copy of the filter's components
func (f Filter) Components() []Component {
	return append([]Component(nil), f.components...)
}

// Len returns the number of components
func (f Filter) Len() int {
	return len(f.components)
}

func (f Filter) String() string {
	parts := make([]string, len(f.components))
	for i, c := range f.components {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// FromConfig builds a filter from its configuration definition. Single
// takes precedence when an entry carries both forms
func FromConfig(def config.CharacterFilter) (Filter, error) {
	components := make([]Component, 0, len(def.Ranges))

	for i, entry := range def.Ranges {
		switch {
		case entry.Single != nil:
			ch, err := toRune(*entry.Single)
			if err != nil {
				return Filter{}, fmt.Errorf("range %d: %w", i, err)
			}
			components = append(components, Single{Char: ch})
		case entry.Start != nil && entry.End != nil:
			first, err := toRune(*entry.Start)
			if err != nil {
				return Filter{}, fmt.Errorf("range %d: start: %w", i, err)
			}
			last, err := toRune(*entry.End)
			if err != nil {
				return Filter{}, fmt.Errorf("range %d: end: %w", i, err)
			}
			components = append(components, Range{First: first, Last: last})
		default:
			return Filter{}, fmt.Errorf("%w: entry %d must either be a single character or both start and end characters", ErrInvalidRange, i)
		}
	}

	return Filter{components: components}, nil
}

func toRune(codepoint uint32) (rune, error) {
	if codepoint > utf8.MaxRune || !utf8.ValidRune(rune(codepoint)) {
		return 0, fmt.Errorf("%w: %#x is not a Unicode scalar value", ErrInvalidRange, codepoint)
	}
	return rune(codepoint), nil
}
