package cleaner

import (
	"fmt"
	"strings"

	"github.com/raaihank/clipboard-cleaner/internal/charfilter"
	"github.com/raaihank/clipboard-cleaner/internal/config"
	"github.com/raaihank/clipboard-cleaner/internal/transform"
)

// compiler resolves filter references against one document. The compiled
// values copy everything they need and keep no reference to the document
type compiler struct {
	filters  map[string]config.CharacterFilter
	strict   bool
	warnings []string
}

func newCompiler(doc config.Document, strict bool) *compiler {
	return &compiler{filters: doc.Filters, strict: strict}
}

func (c *compiler) profile(p config.Profile) (*transform.TextTransformation, error) {
	steps := make([]transform.SimpleTransformation, 0, len(p.Transformations))
	for i, t := range p.Transformations {
		step, err := c.step(p.Name, i, t)
		if err != nil {
			return nil, fmt.Errorf("profile %q: transformation %d: %w", p.Name, i, err)
		}
		steps = append(steps, step)
	}

	out := transform.NewTextTransformation(p.Name, steps...)
	out.DisplayName = p.DisplayName
	out.Description = p.Description
	return out, nil
}

func (c *compiler) step(profile string, index int, t config.Transformation) (transform.SimpleTransformation, error) {
	filters := make([]charfilter.Filter, 0, len(t.Filters))

	for _, ref := range t.Filters {
		def, ok := c.resolve(ref)
		if !ok {
			if c.strict {
				return transform.SimpleTransformation{}, fmt.Errorf("%w: %q", transform.ErrUnknownFilterReference, ref.Ref)
			}
			c.warnings = append(c.warnings, fmt.Sprintf("profile %q: transformation %d: skipping unknown filter %q", profile, index, ref.Ref))
			continue
		}

		f, err := charfilter.FromConfig(def)
		if err != nil {
			return transform.SimpleTransformation{}, fmt.Errorf("filter %s: %w", describeRef(ref), err)
		}
		filters = append(filters, f)
	}

	action, err := compileAction(t.Action)
	if err != nil {
		return transform.SimpleTransformation{}, err
	}

	return transform.NewSimpleTransformation(action, filters...), nil
}

// resolve returns the definition behind a filter entry. Map keys read
// through viper are lower-cased, so a reference that misses exactly is
// retried in lower case
func (c *compiler) resolve(ref config.FilterRef) (config.CharacterFilter, bool) {
	if ref.Filter != nil {
		return *ref.Filter, true
	}
	if def, ok := c.filters[ref.Ref]; ok {
		return def, true
	}
	def, ok := c.filters[strings.ToLower(ref.Ref)]
	return def, ok
}

func compileAction(a config.Action) (transform.Action, error) {
	switch a.Kind {
	case config.ActionRemove:
		return transform.Remove{}, nil
	case config.ActionReplace:
		return transform.NewReplace(a.Template)
	}
	return nil, fmt.Errorf("unknown action %q", a.Kind)
}

func describeRef(ref config.FilterRef) string {
	if ref.Filter != nil {
		return "(inline)"
	}
	return fmt.Sprintf("%q", ref.Ref)
}
