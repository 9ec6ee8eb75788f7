package cleaner

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/raaihank/clipboard-cleaner/internal/config"
	"github.com/raaihank/clipboard-cleaner/internal/logger"
	"github.com/raaihank/clipboard-cleaner/internal/transform"
)

// IdentityName is the name of the built-in pass-through profile. A
// configured profile with the same name replaces it
const IdentityName = "identity"

// Option configures Load
type Option func(*options)

type options struct {
	strict bool
	logger *logger.Logger
}

// WithStrictReferences makes unknown filter references a load error
// instead of being skipped
func WithStrictReferences() Option {
	return func(o *options) { o.strict = true }
}

// WithLogger sets the logger that receives load warnings
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// ProfileSet is the compiled, immutable form of a configuration document
type ProfileSet struct {
	profiles    []*transform.TextTransformation
	byName      map[string]*transform.TextTransformation
	defaultName string
	guiName     string
	warnings    []string
}

// Load compiles every profile in doc. Malformed ranges and unknown
// template tags fail the whole load, so a bad profile never runs
func Load(doc config.Document, opts ...Option) (*ProfileSet, error) {
	o := options{logger: logger.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	c := newCompiler(doc, o.strict)
	set := &ProfileSet{
		profiles:    make([]*transform.TextTransformation, 0, len(doc.Profiles)+1),
		byName:      make(map[string]*transform.TextTransformation, len(doc.Profiles)+1),
		defaultName: doc.DefaultProfile,
		guiName:     doc.GUIReplacementProfile,
	}

	for _, p := range doc.Profiles {
		if _, dup := set.byName[p.Name]; dup {
			return nil, fmt.Errorf("profile %q: duplicate name", p.Name)
		}
		compiled, err := c.profile(p)
		if err != nil {
			return nil, err
		}
		set.profiles = append(set.profiles, compiled)
		set.byName[p.Name] = compiled
	}

	if _, ok := set.byName[IdentityName]; !ok {
		id := transform.IdentityProfile()
		set.profiles = append(set.profiles, id)
		set.byName[IdentityName] = id
	}

	set.warnings = c.warnings
	for _, name := range []string{set.defaultName, set.guiName} {
		if name != "" && set.byName[name] == nil {
			set.warnings = append(set.warnings, fmt.Sprintf("selected profile %q is not defined", name))
		}
	}

	for _, w := range set.warnings {
		o.logger.Warn("Configuration warning", zap.String("warning", w))
	}
	o.logger.Debug("Profiles compiled",
		zap.Int("profiles", len(set.profiles)),
		zap.Int("filters", len(doc.Filters)),
		zap.String("default_profile", set.defaultName),
	)

	return set, nil
}

// Validate compiles doc strictly and also checks that the selected
// default and GUI replacement profiles exist
func Validate(doc config.Document) error {
	set, err := Load(doc, WithStrictReferences())
	if err != nil {
		return err
	}

	var errs []error
	if set.defaultName != "" && set.byName[set.defaultName] == nil {
		errs = append(errs, fmt.Errorf("default_profile: %w: %q", ErrUnknownProfile, set.defaultName))
	}
	if set.guiName != "" && set.byName[set.guiName] == nil {
		errs = append(errs, fmt.Errorf("gui_replacement_profile: %w: %q", ErrUnknownProfile, set.guiName))
	}
	return errors.Join(errs...)
}

// Select returns the profile with the given name
func (s *ProfileSet) Select(name string) (*transform.TextTransformation, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// Default returns the profile named by default_profile, if it exists
func (s *ProfileSet) Default() (*transform.TextTransformation, bool) {
	if s.defaultName == "" {
		return nil, false
	}
	return s.Select(s.defaultName)
}

// GUIReplacement returns the profile named by gui_replacement_profile, if
// it exists
func (s *ProfileSet) GUIReplacement() (*transform.TextTransformation, bool) {
	if s.guiName == "" {
		return nil, false
	}
	return s.Select(s.guiName)
}

// DefaultName returns the configured default profile name
func (s *ProfileSet) DefaultName() string {
	return s.defaultName
}

// GUIReplacementName returns the configured GUI replacement profile name
func (s *ProfileSet) GUIReplacementName() string {
	return s.guiName
}

// Names returns the profile names in declaration order, identity last
// unless configured
func (s *ProfileSet) Names() []string {
	names := make([]string, len(s.profiles))
	for i, p := range s.profiles {
		names[i] = p.Name
	}
	return names
}

// Profiles returns the compiled profiles in declaration order
func (s *ProfileSet) Profiles() []*transform.TextTransformation {
	return append([]*transform.TextTransformation(nil), s.profiles...)
}

// Warnings returns the problems Load tolerated
func (s *ProfileSet) Warnings() []string {
	return append([]string(nil), s.warnings...)
}

// Apply runs profile over text. It never fails
func Apply(profile *transform.TextTransformation, text string) string {
	return profile.Execute(text)
}
