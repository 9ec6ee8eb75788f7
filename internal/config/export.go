package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Export formats understood by Encode
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatTOML = "toml"
)

// Map renders the document in the file schema: actions as "remove" or
// {replace: ...}, filters as {ref: ...} or {filter: ...}
func (d Document) Map() map[string]any {
	filters := make(map[string]any, len(d.Filters))
	for name, f := range d.Filters {
		filters[name] = f.Map()
	}

	profiles := make([]any, 0, len(d.Profiles))
	for _, p := range d.Profiles {
		profiles = append(profiles, p.Map())
	}

	out := map[string]any{
		"filters":  filters,
		"profiles": profiles,
	}
	if d.DefaultProfile != "" {
		out["default_profile"] = d.DefaultProfile
	}
	if d.GUIReplacementProfile != "" {
		out["gui_replacement_profile"] = d.GUIReplacementProfile
	}
	return out
}

// Map renders a filter definition
func (f CharacterFilter) Map() map[string]any {
	ranges := make([]any, 0, len(f.Ranges))
	for _, r := range f.Ranges {
		entry := make(map[string]any, 2)
		if r.Single != nil {
			entry["single"] = int64(*r.Single)
		}
		if r.Start != nil {
			entry["start"] = int64(*r.Start)
		}
		if r.End != nil {
			entry["end"] = int64(*r.End)
		}
		ranges = append(ranges, entry)
	}
	return map[string]any{"ranges": ranges}
}

// Map renders a profile
func (p Profile) Map() map[string]any {
	steps := make([]any, 0, len(p.Transformations))
	for _, t := range p.Transformations {
		refs := make([]any, 0, len(t.Filters))
		for _, ref := range t.Filters {
			if ref.Filter != nil {
				refs = append(refs, map[string]any{"filter": ref.Filter.Map()})
				continue
			}
			refs = append(refs, map[string]any{"ref": ref.Ref})
		}
		steps = append(steps, map[string]any{
			"filters": refs,
			"action":  t.Action.Value(),
		})
	}

	out := map[string]any{
		"name":            p.Name,
		"transformations": steps,
	}
	if p.DisplayName != "" {
		out["display_name"] = p.DisplayName
	}
	if p.Description != "" {
		out["description"] = p.Description
	}
	return out
}

// Value returns the file spelling of the action
func (a Action) Value() any {
	if a.Kind == ActionReplace {
		return map[string]any{"replace": a.Template}
	}
	return string(ActionRemove)
}

// Encode writes the document in the requested format
func (d Document) Encode(format string) ([]byte, error) {
	doc := d.Map()

	switch strings.ToLower(format) {
	case FormatYAML, "yml", "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(out, '\n'), nil
	case FormatTOML:
		out, err := toml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
		return out, nil
	}

	return nil, fmt.Errorf("unsupported format %q (want yaml, json or toml)", format)
}

// FilterNames returns the filter names in sorted order
func (d Document) FilterNames() []string {
	names := make([]string, 0, len(d.Filters))
	for name := range d.Filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
