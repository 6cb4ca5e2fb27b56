package action

import (
	"fmt"

	"github.com/rvolkert/keydeck/internal/history"
)

// KeyWriter is the interface for writing key sequences
type KeyWriter interface {
	WriteKey(key KeyPress) error
}

// Executor executes actions and records undoable ones.
type Executor struct {
	writer  KeyWriter
	history *history.Stack
}

// NewExecutor creates an executor writing through writer. The history
// stack may be nil to disable undo recording.
func NewExecutor(writer KeyWriter, hist *history.Stack) *Executor {
	return &Executor{writer: writer, history: hist}
}

// Execute runs an action's key sequence. Actions declaring undo keys
// are pushed onto the history stack after a successful run.
func (e *Executor) Execute(act Action) error {
	if err := e.writeSequence(act.Keys); err != nil {
		return err
	}

	if e.history != nil && len(act.UndoKeys) > 0 {
		e.history.Push(&keyCommand{executor: e, action: act})
	}
	return nil
}

// Undo reverts the most recent undoable action by replaying its undo
// key sequence.
func (e *Executor) Undo() error {
	if e.history == nil {
		return history.ErrNothingToUndo
	}
	return e.history.Undo()
}

// Redo re-applies the most recently undone action.
func (e *Executor) Redo() error {
	if e.history == nil {
		return history.ErrNothingToRedo
	}
	return e.history.Redo()
}

func (e *Executor) writeSequence(keys []string) error {
	for _, keyStr := range keys {
		key, err := ParseKey(keyStr)
		if err != nil {
			return fmt.Errorf("invalid key %q: %w", keyStr, err)
		}
		if err := e.writer.WriteKey(key); err != nil {
			return fmt.Errorf("failed to write key %q: %w", keyStr, err)
		}
	}
	return nil
}

// keyCommand adapts an executed action to the history.Command
// interface: redo replays the action keys, undo replays the undo keys.
type keyCommand struct {
	executor *Executor
	action   Action
}

func (c *keyCommand) Apply() error {
	return c.executor.writeSequence(c.action.Keys)
}

func (c *keyCommand) Revert() error {
	return c.executor.writeSequence(c.action.UndoKeys)
}

func (c *keyCommand) Description() string {
	return c.action.Name
}
