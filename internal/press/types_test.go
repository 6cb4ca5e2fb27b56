package press

import "testing"

func TestTypeString(t *testing.T) {
	tests := []struct {
		pt   Type
		want string
	}{
		{Single, "single"},
		{Double, "double"},
		{Long, "long"},
		{Type(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.pt.String(); got != tt.want {
				t.Errorf("Type.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseType(t *testing.T) {
	for _, pt := range []Type{Single, Double, Long} {
		got, err := ParseType(pt.String())
		if err != nil {
			t.Errorf("ParseType(%q) error = %v", pt, err)
		}
		if got != pt {
			t.Errorf("ParseType(%q) = %v, want %v", pt, got, pt)
		}
	}

	if _, err := ParseType("triple"); err == nil {
		t.Error("ParseType(\"triple\") error = nil, want error")
	}
}

func TestEventKey(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{NewSingleEvent(0), "single:0"},
		{NewDoubleEvent(5), "double:5"},
		{NewLongEvent(3), "long:3"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.event.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventString(t *testing.T) {
	if s := NewLongEvent(2).String(); s != "long(2)" {
		t.Errorf("String() = %q, want %q", s, "long(2)")
	}
}
