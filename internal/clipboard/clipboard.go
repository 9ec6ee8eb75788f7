// Package clipboard reads and writes the system clipboard as text
package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when no clipboard utility is available, e.g.
// on a headless machine without xclip, xsel or wl-clipboard
var ErrUnavailable = errors.New("system clipboard is unavailable")

// Clipboard is a text clipboard
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// System is the desktop clipboard
type System struct{}

// NewSystem returns the desktop clipboard, or ErrUnavailable
func NewSystem() (*System, error) {
	if clipboard.Unsupported {
		return nil, ErrUnavailable
	}
	return &System{}, nil
}

// ReadText returns the clipboard contents
func (System) ReadText() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}

// WriteText replaces the clipboard contents
func (System) WriteText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// Memory is an in-process clipboard
type Memory struct {
	mu   sync.Mutex
	text string
}

// NewMemory returns a memory clipboard holding text
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

func (m *Memory) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

// Wipe clears the clipboard
func Wipe(c Clipboard) error {
	return c.WriteText("")
}
