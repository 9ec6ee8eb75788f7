package transform

// Action decides what a matched character becomes: Remove or Replace
type Action interface {
	// Apply returns the replacement for r and whether anything is emitted
	Apply(r rune) (string, bool)
	String() string
	isAction()
}

// Remove drops the matched character
type Remove struct{}

// Replace substitutes the rendered template for the matched character
type Replace struct {
	Template Template
}

func (Remove) Apply(rune) (string, bool) { return "", false }

func (a Replace) Apply(r rune) (string, bool) { return a.Template.Render(r), true }

func (Remove) String() string { return "remove" }

func (a Replace) String() string { return "replace " + a.Template.String() }

func (Remove) isAction()  {}
func (Replace) isAction() {}

// NewReplace parses src into a Replace action
func NewReplace(src string) (Replace, error) {
	t, err := ParseTemplate(src)
	if err != nil {
		return Replace{}, err
	}
	return Replace{Template: t}, nil
}
