package cleaner

import (
	"errors"
	"time"
)

var (
	// ErrUnknownProfile is returned when a profile name is not in the set
	ErrUnknownProfile = errors.New("unknown profile")

	// ErrUndecodable is returned by Process when the input bytes cannot
	// be turned into text
	ErrUndecodable = errors.New("cannot decode data")
)

// Result is the outcome of running a profile over text
type Result struct {
	Profile     string `json:"profile"`
	Text        string `json:"text"`
	Changed     bool   `json:"changed"`
	InputChars  int    `json:"inputChars"`
	OutputChars int    `json:"outputChars"`
}

// DecodeResult is the outcome of turning clipboard bytes into text
type DecodeResult struct {
	Target       string `json:"target,omitempty"`
	Charset      string `json:"charset,omitempty"`
	Sniffed      bool   `json:"sniffed,omitempty"`
	OK           bool   `json:"ok"`
	Text         string `json:"text"`
	ControlChars bool   `json:"controlChars"`
	Notice       string `json:"notice,omitempty"`
	Bytes        int    `json:"bytes"`
}

// Request asks for bytes to be decoded and then cleaned
type Request struct {
	Target  string
	Charset string
	Profile string
	Sniff   bool
	Data    []byte
}

// ProcessResult carries both stages of a Process call. Preview is the
// decoded text rendered through the GUI replacement profile
type ProcessResult struct {
	Decode  DecodeResult `json:"decode"`
	Result  *Result      `json:"result,omitempty"`
	Preview string       `json:"preview,omitempty"`
}

// EventKind identifies an engine event
type EventKind string

const (
	EventProfileApplied       EventKind = "profile_applied"
	EventControlCharsReplaced EventKind = "control_chars_replaced"
	EventDecodeFailed         EventKind = "decode_failed"
	EventConfigReloaded       EventKind = "config_reloaded"
)

// Event is delivered to every subscribed Notifier. Events never carry
// clipboard text
type Event struct {
	Kind      EventKind      `json:"kind"`
	Profile   string         `json:"profile,omitempty"`
	Charset   string         `json:"charset,omitempty"`
	Message   string         `json:"message,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Notifier receives engine events. Notify must not block
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Event)

// Notify calls f(e)
func (f NotifierFunc) Notify(e Event) { f(e) }
