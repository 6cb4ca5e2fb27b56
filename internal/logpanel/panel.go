// Package logpanel keeps a bounded in-memory tail of log lines so the
// most recent activity can be mirrored to the device display and the
// terminal without re-reading the log file.
package logpanel

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	lineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6B7280")).
			Padding(0, 1)
)

// Panel is a fixed-capacity ring of log lines. It implements io.Writer
// so it can sit behind the standard logger via io.MultiWriter.
type Panel struct {
	mu       sync.Mutex
	capacity int
	lines    []string
	partial  strings.Builder
}

// New creates a panel holding at most capacity lines.
func New(capacity int) *Panel {
	if capacity <= 0 {
		capacity = 100
	}
	return &Panel{capacity: capacity}
}

// Write appends log output, splitting it into lines. Partial lines are
// buffered until their newline arrives. Never returns an error.
func (p *Panel) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, b := range data {
		if b == '\n' {
			p.appendLine(p.partial.String())
			p.partial.Reset()
			continue
		}
		p.partial.WriteByte(b)
	}
	return len(data), nil
}

// caller holds p.mu
func (p *Panel) appendLine(line string) {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return
	}
	p.lines = append(p.lines, line)
	if len(p.lines) > p.capacity {
		excess := len(p.lines) - p.capacity
		p.lines = append(p.lines[:0], p.lines[excess:]...)
	}
}

// Tail returns the most recent n lines, oldest first.
func (p *Panel) Tail(n int) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n <= 0 || len(p.lines) == 0 {
		return nil
	}
	if n > len(p.lines) {
		n = len(p.lines)
	}
	out := make([]string, n)
	copy(out, p.lines[len(p.lines)-n:])
	return out
}

// Len returns the number of retained lines.
func (p *Panel) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.lines)
}

// Clear drops all retained lines.
func (p *Panel) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = nil
}

// View renders the last n lines as a styled panel for the terminal.
func (p *Panel) View(n int) string {
	lines := p.Tail(n)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Log"))
	for _, line := range lines {
		sb.WriteString("\n")
		sb.WriteString(lineStyle.Render(line))
	}
	return panelStyle.Render(sb.String())
}
