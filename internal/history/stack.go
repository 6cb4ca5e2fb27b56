// Package history keeps a bounded undo/redo stack of executed button
// actions. Only actions that declare a reverse key sequence are
// recorded; everything else is fire-and-forget.
package history

import (
	"errors"
	"sync"
	"time"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Command is an executed action that knows how to reverse itself.
type Command interface {
	// Apply re-runs the action (used by redo).
	Apply() error
	// Revert undoes the action.
	Revert() error
	// Description names the action for logs and display.
	Description() string
}

type entry struct {
	command   Command
	timestamp time.Time
}

// OperationInfo describes a recorded operation.
type OperationInfo struct {
	Description string
	Timestamp   time.Time
}

// Stack manages undo/redo state. Safe for concurrent use.
type Stack struct {
	mu sync.Mutex

	undo []*entry
	redo []*entry

	maxEntries int
}

// NewStack creates a stack holding at most maxEntries operations.
func NewStack(maxEntries int) *Stack {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &Stack{maxEntries: maxEntries}
}

// Push records an executed command and clears the redo stack.
func (s *Stack) Push(cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.undo = append(s.undo, &entry{command: cmd, timestamp: time.Now()})
	s.redo = nil

	if len(s.undo) > s.maxEntries {
		excess := len(s.undo) - s.maxEntries
		s.undo = s.undo[excess:]
	}
}

// Undo reverts the most recent command. The lock is released while the
// command runs so a slow key write cannot block Push from the event
// loop.
func (s *Stack) Undo() error {
	s.mu.Lock()
	if len(s.undo) == 0 {
		s.mu.Unlock()
		return ErrNothingToUndo
	}
	e := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.mu.Unlock()

	if err := e.command.Revert(); err != nil {
		s.mu.Lock()
		s.undo = append(s.undo, e)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.redo = append(s.redo, e)
	s.mu.Unlock()
	return nil
}

// Redo re-applies the most recently undone command.
func (s *Stack) Redo() error {
	s.mu.Lock()
	if len(s.redo) == 0 {
		s.mu.Unlock()
		return ErrNothingToRedo
	}
	e := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.mu.Unlock()

	if err := e.command.Apply(); err != nil {
		s.mu.Lock()
		s.redo = append(s.redo, e)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.undo = append(s.undo, e)
	s.mu.Unlock()
	return nil
}

// CanUndo returns true if undo is available.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo returns true if redo is available.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// UndoCount returns the number of undoable operations.
func (s *Stack) UndoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo)
}

// RedoCount returns the number of redoable operations.
func (s *Stack) RedoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo)
}

// PeekUndo returns info about the next undo without removing it.
func (s *Stack) PeekUndo() (OperationInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undo) == 0 {
		return OperationInfo{}, false
	}
	e := s.undo[len(s.undo)-1]
	return OperationInfo{Description: e.command.Description(), Timestamp: e.timestamp}, true
}

// Clear drops all recorded history.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undo = nil
	s.redo = nil
}
