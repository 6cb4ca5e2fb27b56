package press

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultTickInterval resolves the default thresholds with room to spare.
const DefaultTickInterval = 16 * time.Millisecond

// Edge is a debounced down/up transition from a transport adapter.
// Adapters are responsible for collapsing raw hardware chatter into
// single edges; timestamps must be non-decreasing per button.
type Edge struct {
	Button int
	Down   bool
	Time   time.Time
}

// Engine owns one Classifier per button and serializes all access to
// them: transport edges, the tick loop, manual triggers and toggles all
// run under a single lock so classifier state is never observed
// mid-mutation.
type Engine struct {
	onPress      func(Event)
	tickInterval time.Duration
	defaults     Options

	mu          sync.Mutex
	classifiers map[int]*Classifier
	perButton   map[int]Options
	stopped     bool
	cancel      context.CancelFunc
}

// NewEngine creates an engine that classifies presses using the given
// default options, overridden per button where an entry exists in
// perButton. Classified events are reported through onPress.
func NewEngine(defaults Options, perButton map[int]Options, tickInterval time.Duration, onPress func(Event)) (*Engine, error) {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	defaults = defaults.withDefaults()
	if err := defaults.validate(); err != nil {
		return nil, fmt.Errorf("default options: %w", err)
	}
	overrides := make(map[int]Options, len(perButton))
	for btn, opts := range perButton {
		opts = opts.withDefaults()
		if err := opts.validate(); err != nil {
			return nil, fmt.Errorf("button %d options: %w", btn, err)
		}
		overrides[btn] = opts
	}
	return &Engine{
		onPress:      onPress,
		tickInterval: tickInterval,
		defaults:     defaults,
		classifiers:  make(map[int]*Classifier),
		perButton:    overrides,
	}, nil
}

// Start launches the tick loop. The loop stops when ctx is cancelled
// or Stop is called.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)

	ticker := time.NewTicker(e.tickInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.tick(time.Now())
			}
		}
	}()
}

// Stop halts ticking and anything currently armed. No events are
// emitted after Stop returns; calling it again is a no-op.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
}

// ProcessEdge feeds a single debounced transition into the matching
// classifier. A down edge for an already-pressed button is dropped.
func (e *Engine) ProcessEdge(edge Edge) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}

	now := edge.Time
	if now.IsZero() {
		now = time.Now()
	}

	c := e.classifier(edge.Button)
	if edge.Down {
		if c.Pressed() {
			return
		}
		c.Down(now)
	} else {
		c.Up(now)
	}
}

// CancelButton abandons an in-flight interaction on a button without
// emitting anything, e.g. when a pointer leaves the control.
func (e *Engine) CancelButton(button int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	if c, ok := e.classifiers[button]; ok {
		c.Cancel()
	}
}

// Trigger reports a press of the given type for a button directly,
// bypassing timing classification. Used by the dedicated
// single/double/long trigger keys.
func (e *Engine) Trigger(button int, t Type) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.classifier(button).Fire(t)
}

// SetLongPress toggles long-press detection on every classifier,
// effective on their next evaluation.
func (e *Engine) SetLongPress(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaults.LongPress = enabled
	for _, c := range e.classifiers {
		c.SetLongPress(enabled)
	}
}

// SetRepeat toggles repeat-fire mode on every classifier, effective on
// their next evaluation.
func (e *Engine) SetRepeat(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaults.Repeat = enabled
	for _, c := range e.classifiers {
		c.SetRepeat(enabled)
	}
}

// Reconfigure replaces the default and per-button options, validating
// them first. In-flight interactions are cancelled and classifiers are
// rebuilt with the new options on their next edge.
func (e *Engine) Reconfigure(defaults Options, perButton map[int]Options) error {
	defaults = defaults.withDefaults()
	if err := defaults.validate(); err != nil {
		return fmt.Errorf("default options: %w", err)
	}
	overrides := make(map[int]Options, len(perButton))
	for btn, opts := range perButton {
		opts = opts.withDefaults()
		if err := opts.validate(); err != nil {
			return fmt.Errorf("button %d options: %w", btn, err)
		}
		overrides[btn] = opts
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaults = defaults
	e.perButton = overrides
	for _, c := range e.classifiers {
		c.Cancel()
	}
	e.classifiers = make(map[int]*Classifier)
	return nil
}

func (e *Engine) tick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	for _, c := range e.classifiers {
		c.Tick(now)
	}
}

// classifier returns the classifier for a button, creating it on first
// use. Caller holds e.mu.
func (e *Engine) classifier(button int) *Classifier {
	if c, ok := e.classifiers[button]; ok {
		return c
	}

	opts := e.defaults
	if o, ok := e.perButton[button]; ok {
		opts = o
	}
	btn := button
	// Options were validated in NewEngine, so construction cannot fail.
	c, _ := NewClassifier(opts, func(t Type) {
		e.onPress(Event{Type: t, Button: btn})
	})
	e.classifiers[button] = c
	return c
}
