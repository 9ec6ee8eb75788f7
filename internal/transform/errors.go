package transform

import "errors"

var (
	// ErrPatternSyntax is returned when a template names an unknown tag
	ErrPatternSyntax = errors.New("syntax error in replacement pattern")

	// ErrUnknownFilterReference is returned by strict compilation when a
	// transformation references a filter name that is not defined
	ErrUnknownFilterReference = errors.New("unknown filter reference")
)
