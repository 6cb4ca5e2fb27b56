// Package press classifies raw down/up button edges into semantic press
// events: single, double, or long, with an optional repeat-fire mode.
// The classifier itself never reads the wall clock; every operation takes
// an explicit timestamp so the caller decides the scheduling primitive.
package press

import (
	"fmt"
	"time"
)

// Default thresholds applied by Options.withDefaults for zero values.
const (
	DefaultLongPressThreshold = 500 * time.Millisecond
	DefaultDoublePressWindow  = 100 * time.Millisecond
	DefaultRepeatInitDelay    = 600 * time.Millisecond
	DefaultRepeatInterval     = 130 * time.Millisecond
)

// Options configures a single Classifier. Thresholds must be positive;
// zero values are replaced with defaults before validation.
type Options struct {
	LongPress          bool
	LongPressThreshold time.Duration

	DoublePress bool
	// DoublePressWindow runs from the first press's down edge; an
	// unmatched half-press resolves to a single once a tick lands past
	// that deadline.
	DoublePressWindow time.Duration

	Repeat              bool
	RepeatFireImmediate bool
	// RepeatOverridesLong suppresses the long-press event while repeat
	// mode is active: the threshold crossing is still marked so it is
	// not re-evaluated, but no event is emitted.
	RepeatOverridesLong bool
	RepeatInitDelay     time.Duration
	RepeatInterval      time.Duration
}

func (o Options) withDefaults() Options {
	if o.LongPressThreshold == 0 {
		o.LongPressThreshold = DefaultLongPressThreshold
	}
	if o.DoublePressWindow == 0 {
		o.DoublePressWindow = DefaultDoublePressWindow
	}
	if o.RepeatInitDelay == 0 {
		o.RepeatInitDelay = DefaultRepeatInitDelay
	}
	if o.RepeatInterval == 0 {
		o.RepeatInterval = DefaultRepeatInterval
	}
	return o
}

func (o Options) validate() error {
	if o.LongPressThreshold <= 0 {
		return fmt.Errorf("long press threshold must be positive, got %v", o.LongPressThreshold)
	}
	if o.DoublePressWindow <= 0 {
		return fmt.Errorf("double press window must be positive, got %v", o.DoublePressWindow)
	}
	if o.RepeatInitDelay <= 0 {
		return fmt.Errorf("repeat init delay must be positive, got %v", o.RepeatInitDelay)
	}
	if o.RepeatInterval <= 0 {
		return fmt.Errorf("repeat interval must be positive, got %v", o.RepeatInterval)
	}
	return nil
}

// repeatPhase is the repeat-fire sub-state: Idle until a press arrives,
// Holding while waiting out the init delay, Repeating once firing.
type repeatPhase int

const (
	repeatIdle repeatPhase = iota
	repeatHolding
	repeatRepeating
)

// Classifier is the press-disambiguation state machine for one button.
// It is not safe for concurrent use; callers must serialize Down, Up,
// Tick and the toggles on a single logical owner.
type Classifier struct {
	opts Options
	fire func(Type)

	pressed        bool
	lastPressAt    time.Time
	longPressFired bool

	// A completed press waiting to see whether a second press follows.
	halfDoublePending bool
	halfDoubleAt      time.Time

	repeatState  repeatPhase
	repeatNextAt time.Time
}

// NewClassifier creates a classifier that reports classified presses
// through fire. Options are defaulted then validated.
func NewClassifier(opts Options, fire func(Type)) (*Classifier, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid press options: %w", err)
	}
	if fire == nil {
		return nil, fmt.Errorf("fire callback is required")
	}
	return &Classifier{opts: opts, fire: fire}, nil
}

// Down records a press edge at the given time.
func (c *Classifier) Down(now time.Time) {
	c.pressed = true
	c.lastPressAt = now

	if c.opts.Repeat {
		if c.opts.RepeatFireImmediate {
			c.fire(Single)
		}
		c.repeatState = repeatHolding
		c.repeatNextAt = now.Add(c.opts.RepeatInitDelay)
	}
}

// Up records a release edge at the given time and resolves the press.
// A release with no preceding press only clears state; it never emits.
func (c *Classifier) Up(now time.Time) {
	c.repeatState = repeatIdle

	if !c.pressed {
		c.longPressFired = false
		return
	}
	c.pressed = false

	if !c.opts.DoublePress {
		// Long press already reported this hold, and repeat-immediate
		// already reported on the down edge.
		if !c.longPressFired && !(c.opts.Repeat && c.opts.RepeatFireImmediate) {
			c.fire(Single)
		}
	} else if !c.longPressFired {
		if c.halfDoublePending {
			// Second release resolves the pair immediately.
			c.halfDoublePending = false
			c.fire(Double)
		} else {
			c.halfDoublePending = true
			// The double window is anchored at the down edge, not the
			// release, so a slow first tap does not stretch it.
			c.halfDoubleAt = c.lastPressAt
		}
	}

	c.longPressFired = false
}

// Cancel abandons the current interaction without emitting anything,
// used when a pointer leaves the control instead of releasing it.
func (c *Classifier) Cancel() {
	c.pressed = false
	c.longPressFired = false
	c.halfDoublePending = false
	c.repeatState = repeatIdle
}

// Tick evaluates the time-based checks. It must be called often enough
// to resolve the configured thresholds (16ms is plenty) and emits at
// most one event per check per call.
func (c *Classifier) Tick(now time.Time) {
	// An unmatched half-press past the window becomes a single press.
	if !c.pressed && c.opts.DoublePress && c.halfDoublePending &&
		now.After(c.halfDoubleAt.Add(c.opts.DoublePressWindow)) {
		c.halfDoublePending = false
		c.fire(Single)
	}

	// A hold past the threshold becomes a long press, unless repeat
	// mode replaces long-press semantics with continuous firing. The
	// crossing is marked either way so it is evaluated once per hold.
	if c.pressed && c.opts.LongPress && !c.longPressFired &&
		now.After(c.lastPressAt.Add(c.opts.LongPressThreshold)) {
		if !(c.opts.Repeat && c.opts.RepeatOverridesLong) {
			c.fire(Long)
		}
		c.longPressFired = true
	}

	if c.pressed && c.opts.Repeat && c.repeatState != repeatIdle &&
		!now.Before(c.repeatNextAt) {
		c.repeatState = repeatRepeating
		c.repeatNextAt = now.Add(c.opts.RepeatInterval)
		c.fire(Single)
	}
}

// Fire bypasses the state machine and reports the given type directly.
// This is the discrete-key fast path: a dedicated single/double/long
// key is a manual trigger, not a timing decision.
func (c *Classifier) Fire(t Type) {
	c.fire(t)
}

// SetLongPress enables or disables long-press detection. The change
// applies on the next evaluation; it never rewinds an in-flight hold.
func (c *Classifier) SetLongPress(enabled bool) {
	c.opts.LongPress = enabled
}

// SetRepeat enables or disables repeat-fire mode, effective on the
// next evaluation.
func (c *Classifier) SetRepeat(enabled bool) {
	c.opts.Repeat = enabled
}

// Pressed reports whether a down edge is currently unmatched.
func (c *Classifier) Pressed() bool {
	return c.pressed
}
