package press

import (
	"reflect"
	"testing"
	"time"
)

// at converts a millisecond offset into a timestamp for scenario tests.
func at(ms int) time.Time {
	return time.Unix(0, 0).Add(time.Duration(ms) * time.Millisecond)
}

func newTestClassifier(t *testing.T, opts Options) (*Classifier, *[]Type) {
	t.Helper()
	var fired []Type
	c, err := NewClassifier(opts, func(pt Type) {
		fired = append(fired, pt)
	})
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}
	return c, &fired
}

func TestClassifierSinglePress(t *testing.T) {
	c, fired := newTestClassifier(t, Options{LongPress: true})

	c.Down(at(0))
	c.Tick(at(16))
	c.Up(at(50))
	c.Tick(at(66))

	if want := []Type{Single}; !reflect.DeepEqual(*fired, want) {
		t.Errorf("fired = %v, want %v", *fired, want)
	}
}

func TestClassifierLongPress(t *testing.T) {
	c, fired := newTestClassifier(t, Options{LongPress: true})

	c.Down(at(0))
	for ms := 16; ms <= 800; ms += 16 {
		c.Tick(at(ms))
	}
	c.Up(at(810))
	c.Tick(at(826))

	// One long press for the hold, nothing further on release.
	if want := []Type{Long}; !reflect.DeepEqual(*fired, want) {
		t.Errorf("fired = %v, want %v", *fired, want)
	}
}

func TestClassifierLongPressFiresOnce(t *testing.T) {
	c, fired := newTestClassifier(t, Options{LongPress: true})

	c.Down(at(0))
	// Many ticks past the threshold must still produce one event.
	for ms := 501; ms < 5000; ms += 16 {
		c.Tick(at(ms))
	}

	if len(*fired) != 1 || (*fired)[0] != Long {
		t.Errorf("fired = %v, want exactly one long", *fired)
	}
}

func TestClassifierDoublePress(t *testing.T) {
	c, fired := newTestClassifier(t, Options{DoublePress: true})

	c.Down(at(0))
	c.Up(at(30))
	c.Down(at(80)) // 50ms after release, inside the 100ms window
	c.Up(at(110))
	c.Tick(at(300))

	if want := []Type{Double}; !reflect.DeepEqual(*fired, want) {
		t.Errorf("fired = %v, want %v", *fired, want)
	}
}

func TestClassifierHalfDoubleTimesOutToSingle(t *testing.T) {
	c, fired := newTestClassifier(t, Options{DoublePress: true})

	c.Down(at(0))
	c.Up(at(30))
	c.Tick(at(100)) // boundary tick: deadline is down+window, exclusive
	if len(*fired) != 0 {
		t.Fatalf("fired = %v before window elapsed, want none", *fired)
	}
	c.Tick(at(131))
	c.Tick(at(147))

	if want := []Type{Single}; !reflect.DeepEqual(*fired, want) {
		t.Errorf("fired = %v, want %v", *fired, want)
	}
}

func TestClassifierHalfDoubleWindowAnchorsAtDown(t *testing.T) {
	// A slow first tap must not stretch the double window: with
	// down@0/up@80, the pending half resolves once a tick lands past
	// down+window, not release+window.
	c, fired := newTestClassifier(t, Options{DoublePress: true})

	c.Down(at(0))
	c.Up(at(80))
	c.Tick(at(121))

	if want := []Type{Single}; !reflect.DeepEqual(*fired, want) {
		t.Errorf("fired = %v, want %v", *fired, want)
	}
}

func TestClassifierLateSecondPressIsIndependent(t *testing.T) {
	// Thresholds long=500, double=100. down@0, up@50, tick@121 resolves
	// the unmatched half to a single, then down@122 begins a fresh
	// interaction.
	c, fired := newTestClassifier(t, Options{DoublePress: true})

	c.Down(at(0))
	c.Up(at(50))
	c.Tick(at(121))

	if want := []Type{Single}; !reflect.DeepEqual(*fired, want) {
		t.Fatalf("fired = %v after timeout tick, want %v", *fired, want)
	}

	c.Down(at(122))
	c.Up(at(160))
	c.Tick(at(280))

	if want := []Type{Single, Single}; !reflect.DeepEqual(*fired, want) {
		t.Errorf("fired = %v, want %v", *fired, want)
	}
}

func TestClassifierLongSuppressesDouble(t *testing.T) {
	c, fired := newTestClassifier(t, Options{LongPress: true, DoublePress: true})

	c.Down(at(0))
	c.Tick(at(501))
	c.Up(at(510))
	c.Tick(at(700))

	// The long hold must not leave a half-double pending behind.
	if want := []Type{Long}; !reflect.DeepEqual(*fired, want) {
		t.Errorf("fired = %v, want %v", *fired, want)
	}
}

func TestClassifierRepeatFire(t *testing.T) {
	c, fired := newTestClassifier(t, Options{
		Repeat:              true,
		RepeatFireImmediate: true,
	})

	c.Down(at(0))
	if want := []Type{Single}; !reflect.DeepEqual(*fired, want) {
		t.Fatalf("fired = %v immediately after down, want %v", *fired, want)
	}

	// Nothing more until the init delay elapses.
	for ms := 16; ms < 600; ms += 16 {
		c.Tick(at(ms))
	}
	if len(*fired) != 1 {
		t.Fatalf("fired = %v during init delay, want 1 event", *fired)
	}

	// Then one single per interval.
	c.Tick(at(600))
	c.Tick(at(650)) // before next interval deadline
	c.Tick(at(730))
	c.Tick(at(860))

	if want := []Type{Single, Single, Single, Single}; !reflect.DeepEqual(*fired, want) {
		t.Fatalf("fired = %v, want %v", *fired, want)
	}

	// Release stops further emissions even if the schedule would fire.
	c.Up(at(900))
	for ms := 900; ms < 2000; ms += 16 {
		c.Tick(at(ms))
	}
	if len(*fired) != 4 {
		t.Errorf("fired = %v after up, want no further events", *fired)
	}
}

func TestClassifierRepeatWithoutImmediate(t *testing.T) {
	c, fired := newTestClassifier(t, Options{Repeat: true})

	c.Down(at(0))
	if len(*fired) != 0 {
		t.Fatalf("fired = %v on down, want none without immediate", *fired)
	}
	c.Up(at(40))
	c.Tick(at(60))

	// A quick tap in repeat mode still reports a plain single.
	if want := []Type{Single}; !reflect.DeepEqual(*fired, want) {
		t.Errorf("fired = %v, want %v", *fired, want)
	}
}

func TestClassifierRepeatOverridesLong(t *testing.T) {
	c, fired := newTestClassifier(t, Options{
		LongPress:           true,
		Repeat:              true,
		RepeatOverridesLong: true,
	})

	c.Down(at(0))
	for ms := 16; ms <= 560; ms += 16 {
		c.Tick(at(ms))
	}

	// The long threshold was crossed but repeat replaces long-press
	// semantics; no long event, and the crossing is not re-evaluated.
	for _, pt := range *fired {
		if pt == Long {
			t.Fatalf("fired = %v, want no long event", *fired)
		}
	}
	if !c.longPressFired {
		t.Error("longPressFired = false, want threshold crossing marked")
	}
}

func TestClassifierCancelEmitsNothing(t *testing.T) {
	c, fired := newTestClassifier(t, Options{LongPress: true, DoublePress: true})

	c.Down(at(0))
	c.Tick(at(501)) // long fires
	c.Cancel()

	if c.pressed {
		t.Error("pressed = true after Cancel")
	}
	if c.longPressFired {
		t.Error("longPressFired = true after Cancel")
	}

	before := len(*fired)
	c.Tick(at(2000))
	if len(*fired) != before {
		t.Errorf("fired = %v, Cancel must not lead to further events", *fired)
	}
}

func TestClassifierUpWithoutDown(t *testing.T) {
	c, fired := newTestClassifier(t, Options{LongPress: true, DoublePress: true})

	c.Up(at(0))
	c.Up(at(10))
	c.Tick(at(500))

	if len(*fired) != 0 {
		t.Errorf("fired = %v, spurious release must not emit", *fired)
	}
	if c.Pressed() {
		t.Error("Pressed() = true after releases only")
	}
}

func TestClassifierFireBypassesState(t *testing.T) {
	c, fired := newTestClassifier(t, Options{DoublePress: true})

	c.Down(at(0))
	c.Fire(Long)

	if want := []Type{Long}; !reflect.DeepEqual(*fired, want) {
		t.Errorf("fired = %v, want %v", *fired, want)
	}
	if !c.Pressed() {
		t.Error("Fire must not touch click state")
	}
}

func TestClassifierToggles(t *testing.T) {
	c, fired := newTestClassifier(t, Options{})

	c.SetLongPress(true)
	c.Down(at(0))
	c.Tick(at(501))
	if want := []Type{Long}; !reflect.DeepEqual(*fired, want) {
		t.Fatalf("fired = %v after enabling long press, want %v", *fired, want)
	}

	c.Up(at(510))
	c.SetLongPress(false)
	c.Down(at(600))
	c.Tick(at(1200))
	c.Up(at(1210))

	if want := []Type{Long, Single}; !reflect.DeepEqual(*fired, want) {
		t.Errorf("fired = %v after disabling long press, want %v", *fired, want)
	}
}

func TestNewClassifierRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative long threshold", Options{LongPressThreshold: -time.Second}},
		{"negative double window", Options{DoublePressWindow: -time.Millisecond}},
		{"negative repeat delay", Options{RepeatInitDelay: -time.Millisecond}},
		{"negative repeat interval", Options{RepeatInterval: -time.Millisecond}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClassifier(tt.opts, func(Type) {}); err == nil {
				t.Error("NewClassifier() error = nil, want validation error")
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.withDefaults()

	if opts.LongPressThreshold != 500*time.Millisecond {
		t.Errorf("LongPressThreshold = %v, want 500ms", opts.LongPressThreshold)
	}
	if opts.DoublePressWindow != 100*time.Millisecond {
		t.Errorf("DoublePressWindow = %v, want 100ms", opts.DoublePressWindow)
	}
	if opts.RepeatInitDelay != 600*time.Millisecond {
		t.Errorf("RepeatInitDelay = %v, want 600ms", opts.RepeatInitDelay)
	}
	if opts.RepeatInterval != 130*time.Millisecond {
		t.Errorf("RepeatInterval = %v, want 130ms", opts.RepeatInterval)
	}
}
