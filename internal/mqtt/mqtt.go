// Package mqtt publishes classified press events to an MQTT broker,
// with an abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/rvolkert/keydeck/internal/press"
)

// TopicPress is the topic for classified press events.
const TopicPress = "keydeck/events/press"

// TopicSystem is the topic for daemon lifecycle events.
const TopicSystem = "keydeck/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishPress sends a classified press to the broker. A failed
	// publish is reported, never fatal; the interaction already
	// happened locally.
	PublishPress(event press.Event, at time.Time) error

	// PublishSystem sends a lifecycle event (STARTUP, SHUTDOWN).
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// SystemEvent is a daemon lifecycle notification.
type SystemEvent struct {
	Timestamp time.Time
	Event     string // e.g. "STARTUP", "SHUTDOWN"
	Reason    string // e.g. "SIGTERM" (shutdown only)
}

// PressPayload is the wire form of a press event.
type PressPayload struct {
	Timestamp string `json:"timestamp"`
	Button    int    `json:"button"`
	Type      string `json:"type"` // single, double or long
}

// FormatPressPayload creates the JSON payload for a press event.
func FormatPressPayload(event press.Event, at time.Time) ([]byte, error) {
	payload := PressPayload{
		Timestamp: at.UTC().Format(time.RFC3339Nano),
		Button:    event.Button,
		Type:      event.Type.String(),
	}
	return json.Marshal(payload)
}

// SystemPayload is the wire form of a lifecycle event.
type SystemPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	payload := SystemPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     event.Event,
		Reason:    event.Reason,
	}
	return json.Marshal(payload)
}
