package press

import "fmt"

// Type represents the classification of a physical button interaction
type Type int

const (
	Single Type = iota
	Double
	Long
)

func (t Type) String() string {
	switch t {
	case Single:
		return "single"
	case Double:
		return "double"
	case Long:
		return "long"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// ParseType parses a press type name as used in configuration files
func ParseType(s string) (Type, error) {
	switch s {
	case "single":
		return Single, nil
	case "double":
		return Double, nil
	case "long":
		return Long, nil
	default:
		return 0, fmt.Errorf("unknown press type: %q", s)
	}
}

// Event is a classified press on a specific button
type Event struct {
	Type   Type
	Button int
}

func (e Event) String() string {
	return fmt.Sprintf("%s(%d)", e.Type, e.Button)
}

// Key returns a unique key for this event, used for mapping lookups
func (e Event) Key() string {
	return fmt.Sprintf("%s:%d", e.Type, e.Button)
}

// NewSingleEvent creates a single-press event for a button
func NewSingleEvent(button int) Event {
	return Event{Type: Single, Button: button}
}

// NewDoubleEvent creates a double-press event for a button
func NewDoubleEvent(button int) Event {
	return Event{Type: Double, Button: button}
}

// NewLongEvent creates a long-press event for a button
func NewLongEvent(button int) Event {
	return Event{Type: Long, Button: button}
}
