package action

import (
	"sync"

	"github.com/rvolkert/keydeck/internal/config"
	"github.com/rvolkert/keydeck/internal/press"
)

// Action is a resolved key sequence for a classified press. Actions
// with UndoKeys are recorded on the undo stack when executed.
type Action struct {
	Name     string
	Keys     []string
	UndoKeys []string
}

// Trigger is a resolved fast-path binding: a dedicated key that fires
// a press type directly, bypassing timing classification.
type Trigger struct {
	Button int
	Type   press.Type
}

// Mapper maps classified presses and trigger keys to actions based on
// configuration.
type Mapper struct {
	mu       sync.RWMutex
	pressMap map[string]Action  // press.Event.Key() -> action
	triggers map[string]Trigger // key name -> trigger
}

// NewMapper creates a new action mapper from configuration
func NewMapper(cfg *config.Config) *Mapper {
	m := &Mapper{}
	m.rebuild(cfg)
	return m
}

// Map returns the action for a classified press, or false if unmapped.
func (m *Mapper) Map(ev press.Event) (Action, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	act, ok := m.pressMap[ev.Key()]
	return act, ok
}

// Trigger returns the fast-path binding for a key name, if any.
func (m *Mapper) Trigger(key string) (Trigger, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.triggers[key]
	return t, ok
}

// Reload replaces all mappings with new configuration.
func (m *Mapper) Reload(cfg *config.Config) {
	m.rebuild(cfg)
}

func (m *Mapper) rebuild(cfg *config.Config) {
	pressMap := make(map[string]Action)
	triggers := make(map[string]Trigger)

	for _, btn := range cfg.Buttons {
		name := btn.Name
		if name == "" {
			name = press.NewSingleEvent(btn.Index).Key()
		}
		if btn.Press != nil {
			pressMap[press.NewSingleEvent(btn.Index).Key()] = Action{
				Name:     name,
				Keys:     btn.Press.Keys,
				UndoKeys: btn.Press.UndoKeys,
			}
		}
		if btn.DoublePress != nil {
			pressMap[press.NewDoubleEvent(btn.Index).Key()] = Action{
				Name:     name + " (double)",
				Keys:     btn.DoublePress.Keys,
				UndoKeys: btn.DoublePress.UndoKeys,
			}
		}
		if btn.LongPress != nil {
			pressMap[press.NewLongEvent(btn.Index).Key()] = Action{
				Name:     name + " (long)",
				Keys:     btn.LongPress.Keys,
				UndoKeys: btn.LongPress.UndoKeys,
			}
		}
	}

	for _, tk := range cfg.TriggerKeys {
		// Kind was validated at config load.
		t, err := press.ParseType(tk.Kind)
		if err != nil {
			continue
		}
		triggers[tk.Key] = Trigger{Button: tk.Button, Type: t}
	}

	m.mu.Lock()
	m.pressMap = pressMap
	m.triggers = triggers
	m.mu.Unlock()
}
