package cleaner

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/raaihank/clipboard-cleaner/internal/config"
	"github.com/raaihank/clipboard-cleaner/internal/encoding"
	"github.com/raaihank/clipboard-cleaner/internal/logger"
	"github.com/raaihank/clipboard-cleaner/internal/transform"
)

// Cleaner decodes clipboard data and runs profiles over it. The compiled
// profile set is swapped atomically on Reload, so calls never block on a
// reload in progress
type Cleaner struct {
	set     atomic.Pointer[ProfileSet]
	logger  *logger.Logger
	opts    []Option
	mu      sync.RWMutex
	sinks   []Notifier
	nowFunc func() time.Time
}

// New creates a new cleaner from a configuration document
func New(doc config.Document, log *logger.Logger, opts ...Option) (*Cleaner, error) {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("cleaner")

	opts = append([]Option{WithLogger(log)}, opts...)
	set, err := Load(doc, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	c := &Cleaner{
		logger:  log,
		opts:    opts,
		nowFunc: time.Now,
	}
	c.set.Store(set)

	log.Info("Cleaner initialized",
		zap.Int("profiles", len(set.profiles)),
		zap.String("default_profile", set.defaultName),
		zap.String("gui_replacement_profile", set.guiName),
	)

	return c, nil
}

// Profiles returns the current profile set
func (c *Cleaner) Profiles() *ProfileSet {
	return c.set.Load()
}

// Subscribe registers a notifier for engine events
func (c *Cleaner) Subscribe(n Notifier) {
	if n == nil {
		return
	}
	c.mu.Lock()
	c.sinks = append(c.sinks, n)
	c.mu.Unlock()
}

// Reload compiles doc and swaps it in. On error the current set stays
func (c *Cleaner) Reload(doc config.Document) error {
	set, err := Load(doc, c.opts...)
	if err != nil {
		c.logger.Error("Configuration reload failed, keeping previous profiles", zap.Error(err))
		return fmt.Errorf("failed to reload profiles: %w", err)
	}
	c.set.Store(set)

	c.logger.Info("Configuration reloaded", zap.Int("profiles", len(set.profiles)))
	c.notify(Event{
		Kind:    EventConfigReloaded,
		Profile: set.defaultName,
		Message: fmt.Sprintf("%d profiles loaded", len(set.profiles)),
		Data:    map[string]any{"profiles": set.Names(), "warnings": len(set.warnings)},
	})
	return nil
}

// CleanText runs the named profile over text. An empty name selects the
// default profile, or identity when there is none
func (c *Cleaner) CleanText(name, text string) (Result, error) {
	profile, err := c.profile(name)
	if err != nil {
		return Result{}, err
	}

	out := Apply(profile, text)
	res := Result{
		Profile:     profile.Name,
		Text:        out,
		Changed:     out != text,
		InputChars:  utf8.RuneCountInString(text),
		OutputChars: utf8.RuneCountInString(out),
	}

	c.logger.Debug("Profile applied",
		zap.String("profile", profile.Name),
		zap.Int("input_chars", res.InputChars),
		zap.Int("output_chars", res.OutputChars),
		zap.Bool("changed", res.Changed),
	)
	c.notify(Event{
		Kind:    EventProfileApplied,
		Profile: profile.Name,
		Data: map[string]any{
			"inputChars":  res.InputChars,
			"outputChars": res.OutputChars,
			"changed":     res.Changed,
		},
	})

	return res, nil
}

// Preview renders text through the GUI replacement profile, making
// invisible characters visible. Without one the text is returned as is
func (c *Cleaner) Preview(text string) string {
	profile, ok := c.set.Load().GUIReplacement()
	if !ok {
		return text
	}
	return Apply(profile, text)
}

// DecodeTarget turns clipboard bytes into text. An explicit charset wins
// over the one resolved from target; with sniff set, content sniffing is
// tried when neither yields an encoding. Control characters in the result
// are replaced with U+FFFD
func (c *Cleaner) DecodeTarget(target, charset string, data []byte, sniff bool) DecodeResult {
	res := DecodeResult{Target: target, Bytes: len(data)}

	label, ok := c.resolveCharset(target, charset, data, sniff, &res)
	if !ok {
		if charset != "" {
			label = charset
		}
		return c.decodeFailed(res, label)
	}
	res.Charset = label

	text, ok := encoding.Decode(label, data)
	if !ok {
		return c.decodeFailed(res, label)
	}

	res.OK = true
	if encoding.ContainsControlChars(text) {
		text = encoding.ReplaceControlChars(text)
		res.ControlChars = true
		res.Notice = encoding.ControlCharsNotice

		c.notify(Event{
			Kind:    EventControlCharsReplaced,
			Charset: label,
			Message: res.Notice,
		})
	}
	res.Text = text

	c.logger.Debug("Data decoded",
		zap.String("target", target),
		zap.String("charset", label),
		zap.Bool("sniffed", res.Sniffed),
		zap.Int("bytes", len(data)),
		zap.Bool("control_chars", res.ControlChars),
	)
	return res
}

// Process decodes the request data and runs the requested profile over
// the text
func (c *Cleaner) Process(req Request) (ProcessResult, error) {
	decoded := c.DecodeTarget(req.Target, req.Charset, req.Data, req.Sniff)
	out := ProcessResult{Decode: decoded}
	if !decoded.OK {
		return out, fmt.Errorf("%w: %s", ErrUndecodable, decoded.Notice)
	}

	res, err := c.CleanText(req.Profile, decoded.Text)
	if err != nil {
		return out, err
	}
	out.Result = &res
	out.Preview = c.Preview(decoded.Text)
	return out, nil
}

func (c *Cleaner) profile(name string) (*transform.TextTransformation, error) {
	set := c.set.Load()
	if name == "" {
		if p, ok := set.Default(); ok {
			return p, nil
		}
		name = IdentityName
	}
	p, ok := set.Select(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

func (c *Cleaner) resolveCharset(target, charset string, data []byte, sniff bool, res *DecodeResult) (string, bool) {
	if charset != "" {
		return encoding.Canonical(charset)
	}
	if label, ok := encoding.ResolveTargetEncoding(target); ok {
		return label, true
	}
	if sniff {
		if label, ok := encoding.SniffEncoding(data); ok {
			res.Sniffed = true
			return label, true
		}
	}
	return "", false
}

func (c *Cleaner) decodeFailed(res DecodeResult, label string) DecodeResult {
	res.OK = false
	res.Charset = label
	res.Notice = encoding.ConversionFailedNotice(label)

	c.logger.Debug("Data could not be decoded",
		zap.String("target", res.Target),
		zap.String("charset", label),
		zap.Int("bytes", res.Bytes),
	)
	c.notify(Event{
		Kind:    EventDecodeFailed,
		Charset: label,
		Message: res.Notice,
	})
	return res
}

func (c *Cleaner) notify(e Event) {
	c.mu.RLock()
	sinks := c.sinks
	c.mu.RUnlock()

	if len(sinks) == 0 {
		return
	}
	e.Timestamp = c.nowFunc()
	for _, s := range sinks {
		s.Notify(e)
	}
}
