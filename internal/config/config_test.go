package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	content := `
device:
  vendor_id: 0x1234
  product_id: 0x5678
  poll_interval_ms: 20

serial:
  port: /dev/ttyUSB0
  baud_rate: 115200
  debounce_ms: 30
  button_count: 6

mqtt:
  enabled: true
  broker: tcp://localhost:1883
  client_id: deck-test

timing:
  long_press_threshold_ms: 400
  double_press_window_ms: 120
  tick_interval_ms: 8
  long_press_enabled: true
  double_press_enabled: true

tui:
  command: "test-app"
  args: ["--flag", "value"]
  working_dir: "/tmp"

buttons:
  - index: 0
    name: btn_a
    press:
      keys: ["ctrl+c"]
      undo_keys: ["ctrl+z"]
    double_press:
      keys: ["ctrl+z"]
    long_press:
      keys: ["q", "enter"]
    repeat:
      enabled: true
      fire_immediate: true
      overrides_long: true
      init_delay_ms: 700
      interval_ms: 100

  - index: 1
    name: btn_b
    press:
      keys: ["down"]

trigger_keys:
  - key: f13
    button: 0
    kind: single
  - key: f14
    button: 0
    kind: long

display:
  enabled: true
  width: 128
  height: 64
  update_interval_ms: 50
  log_lines: 4

history:
  max_entries: 50
`

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.VendorID != 0x1234 {
		t.Errorf("VendorID = 0x%04X, want 0x1234", cfg.Device.VendorID)
	}
	if cfg.Serial.Port != "/dev/ttyUSB0" {
		t.Errorf("Serial.Port = %q, want /dev/ttyUSB0", cfg.Serial.Port)
	}
	if cfg.Serial.BaudRate != 115200 {
		t.Errorf("Serial.BaudRate = %d, want 115200", cfg.Serial.BaudRate)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("MQTT = %+v, want enabled with local broker", cfg.MQTT)
	}
	if cfg.Timing.LongPressThresholdMs != 400 {
		t.Errorf("LongPressThresholdMs = %d, want 400", cfg.Timing.LongPressThresholdMs)
	}
	if cfg.Timing.TickIntervalMs != 8 {
		t.Errorf("TickIntervalMs = %d, want 8", cfg.Timing.TickIntervalMs)
	}

	if len(cfg.Buttons) != 2 {
		t.Fatalf("len(Buttons) = %d, want 2", len(cfg.Buttons))
	}
	btn := cfg.Buttons[0]
	if btn.Press == nil || btn.Press.Keys[0] != "ctrl+c" {
		t.Errorf("button 0 press = %+v, want ctrl+c", btn.Press)
	}
	if btn.Press.UndoKeys[0] != "ctrl+z" {
		t.Errorf("button 0 undo keys = %v, want [ctrl+z]", btn.Press.UndoKeys)
	}
	if btn.Repeat == nil || !btn.Repeat.Enabled || btn.Repeat.InitDelayMs != 700 {
		t.Errorf("button 0 repeat = %+v, want enabled with 700ms delay", btn.Repeat)
	}

	if len(cfg.TriggerKeys) != 2 || cfg.TriggerKeys[1].Kind != "long" {
		t.Errorf("TriggerKeys = %+v, want f13/single and f14/long", cfg.TriggerKeys)
	}
	if cfg.Display.LogLines != 4 {
		t.Errorf("Display.LogLines = %d, want 4", cfg.Display.LogLines)
	}
	if cfg.History.MaxEntries != 50 {
		t.Errorf("History.MaxEntries = %d, want 50", cfg.History.MaxEntries)
	}
}

func TestLoadDefaults(t *testing.T) {
	content := `
serial:
  port: /dev/ttyACM0
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Timing.LongPressThresholdMs != 500 {
		t.Errorf("LongPressThresholdMs = %d, want default 500", cfg.Timing.LongPressThresholdMs)
	}
	if cfg.Timing.DoublePressWindowMs != 100 {
		t.Errorf("DoublePressWindowMs = %d, want default 100", cfg.Timing.DoublePressWindowMs)
	}
	if cfg.Timing.TickIntervalMs != 16 {
		t.Errorf("TickIntervalMs = %d, want default 16", cfg.Timing.TickIntervalMs)
	}
	if cfg.Serial.BaudRate != 19200 {
		t.Errorf("BaudRate = %d, want default 19200", cfg.Serial.BaudRate)
	}
	if cfg.Serial.DebounceMs != 50 {
		t.Errorf("DebounceMs = %d, want default 50", cfg.Serial.DebounceMs)
	}
	if cfg.MQTT.ClientID != "keydeck" {
		t.Errorf("ClientID = %q, want default keydeck", cfg.MQTT.ClientID)
	}
	if cfg.History.MaxEntries != 100 {
		t.Errorf("MaxEntries = %d, want default 100", cfg.History.MaxEntries)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no transport",
			content: "timing:\n  long_press_threshold_ms: 500\n",
			wantErr: "serial.port",
		},
		{
			name: "negative long press threshold",
			content: `
serial:
  port: /dev/ttyUSB0
timing:
  long_press_threshold_ms: -5
`,
			wantErr: "long_press_threshold_ms",
		},
		{
			name: "negative double press window",
			content: `
serial:
  port: /dev/ttyUSB0
timing:
  double_press_window_ms: -100
`,
			wantErr: "double_press_window_ms",
		},
		{
			name: "duplicate button index",
			content: `
serial:
  port: /dev/ttyUSB0
buttons:
  - index: 2
  - index: 2
`,
			wantErr: "duplicate button index",
		},
		{
			name: "negative repeat interval",
			content: `
serial:
  port: /dev/ttyUSB0
buttons:
  - index: 0
    repeat:
      enabled: true
      interval_ms: -1
`,
			wantErr: "interval_ms",
		},
		{
			name: "bad trigger kind",
			content: `
serial:
  port: /dev/ttyUSB0
trigger_keys:
  - key: f13
    button: 0
    kind: triple
`,
			wantErr: "unknown kind",
		},
		{
			name: "mqtt enabled without broker",
			content: `
serial:
  port: /dev/ttyUSB0
mqtt:
  enabled: true
`,
			wantErr: "mqtt.broker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() error = nil, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateDeviceIDs(t *testing.T) {
	content := `device:
  vendor_id: 0x1111
  product_id: 0x2222
serial:
  port: /dev/ttyUSB0
`
	path := writeConfig(t, content)

	if err := UpdateDeviceIDs(path, 0xABCD, 0xEF01); err != nil {
		t.Fatalf("UpdateDeviceIDs() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after update error = %v", err)
	}
	if cfg.Device.VendorID != 0xABCD || cfg.Device.ProductID != 0xEF01 {
		t.Errorf("IDs = 0x%04X:0x%04X, want 0xABCD:0xEF01", cfg.Device.VendorID, cfg.Device.ProductID)
	}
}

func TestCreateDefaultConfigAndExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.yaml")

	if Exists(path) {
		t.Fatal("Exists() = true before creation")
	}
	if err := CreateDefaultConfig(path, 0x1234, 0x5678); err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if !Exists(path) {
		t.Fatal("Exists() = false after creation")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() of generated config error = %v", err)
	}
	if cfg.Device.VendorID != 0x1234 {
		t.Errorf("VendorID = 0x%04X, want 0x1234", cfg.Device.VendorID)
	}
}
