package transform

import (
	"fmt"
	"sort"
	"strings"
)

var tags = map[string]Pattern{
	"ident":         Identity{},
	"char":          Identity{},
	"hex-esc":       EscapedHexBytes{},
	"uni-simple":    SimpleUnicodeCodepoint{},
	"uni-esc":       EscapedUnicode{},
	"uni-codepoint": UplusUnicode{},
	"rust":          DebugEscapedUnicode{},
	"entity":        Entity{},
}

// Tags returns the recognised tag names, sorted
func Tags() []string {
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTemplate compiles a replacement template. Text outside braces is
// literal and {tag} selects a pattern. There is no escaping or nesting: a
// '{' inside a tag is part of the tag name and a '}' outside one is literal.
// When input ends inside an open tag, the text collected after the '{' is
// kept as a trailing literal
func ParseTemplate(src string) (Template, error) {
	var (
		out    Template
		token  strings.Builder
		inTag  bool
		offset int
	)

	for i, ch := range src {
		switch {
		case !inTag && ch == '{':
			if token.Len() > 0 {
				out = append(out, Literal{Text: token.String()})
				token.Reset()
			}
			inTag = true
			offset = i
		case inTag && ch == '}':
			name := token.String()
			p, ok := tags[name]
			if !ok {
				return nil, fmt.Errorf("%w: unknown tag {%s} at offset %d", ErrPatternSyntax, name, offset)
			}
			out = append(out, p)
			token.Reset()
			inTag = false
		default:
			token.WriteRune(ch)
		}
	}

	if token.Len() > 0 {
		out = append(out, Literal{Text: token.String()})
	}
	return out, nil
}

// MustParseTemplate is like ParseTemplate but panics on error
func MustParseTemplate(src string) Template {
	t, err := ParseTemplate(src)
	if err != nil {
		panic(err)
	}
	return t
}
