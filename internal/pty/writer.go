package pty

import (
	"time"

	"github.com/rvolkert/keydeck/internal/action"
)

// Writer sends key sequences to a PTY with an optional pause between
// keys so the hosted application can keep up with pasted sequences.
type Writer struct {
	manager  *Manager
	keyDelay time.Duration
}

// NewWriter creates a Writer around the given manager.
func NewWriter(manager *Manager, keyDelay time.Duration) *Writer {
	return &Writer{
		manager:  manager,
		keyDelay: keyDelay,
	}
}

// WriteKey sends a single key press.
func (w *Writer) WriteKey(key action.KeyPress) error {
	return w.manager.WriteKey(key)
}

// WriteKeys sends a sequence of key presses in order.
func (w *Writer) WriteKeys(keys []action.KeyPress) error {
	for i, key := range keys {
		if err := w.manager.WriteKey(key); err != nil {
			return err
		}
		if w.keyDelay > 0 && i < len(keys)-1 {
			time.Sleep(w.keyDelay)
		}
	}
	return nil
}

// WriteString sends raw text to the PTY.
func (w *Writer) WriteString(s string) error {
	return w.manager.WriteString(s)
}
