package transform

import (
	"strings"

	"github.com/raaihank/clipboard-cleaner/internal/charfilter"
)

// SimpleTransformation applies one action to every character matched by
// any of its filters
type SimpleTransformation struct {
	filters []charfilter.Filter
	action  Action
}

// NewSimpleTransformation creates a step. Filters are tested in order
func NewSimpleTransformation(action Action, filters ...charfilter.Filter) SimpleTransformation {
	if action == nil {
		action = Remove{}
	}
	return SimpleTransformation{
		filters: append([]charfilter.Filter(nil), filters...),
		action:  action,
	}
}

// Filters returns a copy of the step's filters
func (s SimpleTransformation) Filters() []charfilter.Filter {
	return append([]charfilter.Filter(nil), s.filters...)
}

// Action returns the step's action
func (s SimpleTransformation) Action() Action {
	return s.action
}

// Execute scans text rune by rune. The first matching filter decides the
// character; unmatched characters are copied unchanged. Invalid UTF-8 is
// read as U+FFFD
func (s SimpleTransformation) Execute(text string) string {
	if len(s.filters) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		matched := false
		for _, f := range s.filters {
			if !f.Matches(r) {
				continue
			}
			matched = true
			if out, ok := s.action.Apply(r); ok {
				b.WriteString(out)
			}
			break
		}
		if !matched {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// TextTransformation is a named profile: an ordered list of steps, each
// re-scanning the whole output of the previous one
type TextTransformation struct {
	Name        string
	DisplayName string
	Description string
	steps       []SimpleTransformation
}

// NewTextTransformation creates a profile from its steps
func NewTextTransformation(name string, steps ...SimpleTransformation) *TextTransformation {
	return &TextTransformation{
		Name:  name,
		steps: append([]SimpleTransformation(nil), steps...),
	}
}

// IdentityProfile returns a profile without steps
func IdentityProfile() *TextTransformation {
	return &TextTransformation{
		Name:        "identity",
		DisplayName: "Identity transformation",
		Description: "Does not change the text.",
	}
}

// Execute folds the steps over text, left to right
func (t *TextTransformation) Execute(text string) string {
	if t == nil {
		return text
	}
	for _, step := range t.steps {
		text = step.Execute(text)
	}
	return text
}

// Steps returns a copy of the profile's steps
func (t *TextTransformation) Steps() []SimpleTransformation {
	return append([]SimpleTransformation(nil), t.steps...)
}

// Len returns the number of steps
func (t *TextTransformation) Len() int {
	return len(t.steps)
}

// Label returns the display name, or the name when there is none
func (t *TextTransformation) Label() string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.Name
}
