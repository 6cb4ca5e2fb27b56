package display

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rvolkert/keydeck/internal/config"
	"github.com/rvolkert/keydeck/internal/hid"
	"github.com/rvolkert/keydeck/internal/logpanel"
	"github.com/rvolkert/keydeck/internal/press"
)

// DeviceWriter sends display commands to the device.
type DeviceWriter interface {
	SendFrame(frame *hid.DisplayFrame) error
}

// Manager drives the OLED panel. It keeps a status line, the most
// recent classified press, and a tail of the mirrored log, and
// pushes a fresh frame whenever any of them change.
type Manager struct {
	config   config.DisplayConfig
	device   DeviceWriter
	renderer *Renderer
	encoder  *FrameEncoder
	logs     *logpanel.Panel

	mu        sync.Mutex
	status    string
	lastPress string
	lastLogs  string
	dirty     bool
	cancel    context.CancelFunc
}

// NewManager creates a display manager. logs may be nil when log
// mirroring is disabled.
func NewManager(cfg config.DisplayConfig, device DeviceWriter, logs *logpanel.Panel) *Manager {
	return &Manager{
		config:   cfg,
		device:   device,
		renderer: NewRenderer(cfg.Width, cfg.Height),
		encoder:  NewFrameEncoder(cfg.Width, cfg.Height),
		logs:     logs,
		status:   "ready",
		dirty:    true,
	}
}

// Start runs the display update loop until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)

	interval := time.Duration(m.config.UpdateIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.update()
			}
		}
	}()
}

// Stop halts the update loop and blanks the panel.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.device != nil {
		m.device.SendFrame(m.encoder.EncodeClear())
	}
}

// SetStatus updates the status line.
func (m *Manager) SetStatus(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != status {
		m.status = status
		m.dirty = true
	}
}

// NotePress records a classified press for the event line.
func (m *Manager) NotePress(event press.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	line := fmt.Sprintf("btn %d %s", event.Button, event.Type)
	if m.lastPress != line {
		m.lastPress = line
		m.dirty = true
	}
}

// ForceRefresh pushes a frame on the next update cycle regardless of
// tracked changes.
func (m *Manager) ForceRefresh() {
	m.mu.Lock()
	m.dirty = true
	m.mu.Unlock()
}

func (m *Manager) update() {
	m.mu.Lock()
	defer m.mu.Unlock()

	tail := m.logTail()
	joined := strings.Join(tail, "\n")
	if joined != m.lastLogs {
		m.lastLogs = joined
		m.dirty = true
	}

	if !m.dirty {
		return
	}
	m.dirty = false

	m.renderer.Clear()
	m.renderer.DrawText(2, 12, m.status)
	m.renderer.DrawHLine(0, 16, m.renderer.Width())
	if m.lastPress != "" {
		m.renderer.DrawText(2, 30, m.lastPress)
	}

	y := 44
	for _, line := range tail {
		if y > m.renderer.Height() {
			break
		}
		m.renderer.DrawText(2, y, line)
		y += 10
	}

	frame := m.encoder.EncodeFullFrame(m.renderer.Bitmap())
	m.device.SendFrame(frame)
}

func (m *Manager) logTail() []string {
	if m.logs == nil || m.config.LogLines <= 0 {
		return nil
	}
	return m.logs.Tail(m.config.LogLines)
}
