package pty

import (
	"testing"
)

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer(5)

	rb.Write([]byte("abc"))
	if got := rb.String(); got != "abc" {
		t.Errorf("String() = %q, want %q", got, "abc")
	}

	// Overwrites oldest data once the buffer wraps
	rb.Write([]byte("hello world"))
	if got := rb.String(); got != "world" {
		t.Errorf("String() after wrap = %q, want %q", got, "world")
	}
}

func TestRingBufferEmpty(t *testing.T) {
	rb := NewRingBuffer(8)
	if got := rb.String(); got != "" {
		t.Errorf("String() on empty buffer = %q, want empty", got)
	}
}

func TestRingBufferExactFit(t *testing.T) {
	rb := NewRingBuffer(5)
	rb.Write([]byte("12345"))
	if got := rb.String(); got != "12345" {
		t.Errorf("String() = %q, want %q", got, "12345")
	}
}

func TestRingBufferMultipleWrites(t *testing.T) {
	rb := NewRingBuffer(10)
	rb.Write([]byte("hello"))
	rb.Write([]byte(" "))
	rb.Write([]byte("world"))
	if got := rb.String(); got != "ello world" {
		t.Errorf("String() = %q, want %q", got, "ello world")
	}
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager("", nil, ""); err == nil {
		t.Error("NewManager() with empty command should return error")
	}

	m, err := NewManager("echo", []string{"hi"}, "")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if m == nil {
		t.Fatal("NewManager() returned nil manager")
	}
}

func TestIsRunningBeforeStart(t *testing.T) {
	m, err := NewManager("echo", nil, "")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if m.IsRunning() {
		t.Error("IsRunning() = true before Start()")
	}
}

func TestGetRecentOutputEmpty(t *testing.T) {
	m, err := NewManager("echo", nil, "")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if got := m.GetRecentOutput(); got != "" {
		t.Errorf("GetRecentOutput() = %q, want empty", got)
	}
}
