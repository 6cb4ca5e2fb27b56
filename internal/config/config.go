package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Device      DeviceConfig  `yaml:"device"`
	Serial      SerialConfig  `yaml:"serial"`
	MQTT        MQTTConfig    `yaml:"mqtt"`
	Timing      TimingConfig  `yaml:"timing"`
	TUI         TUIConfig     `yaml:"tui"`
	Buttons     []Button      `yaml:"buttons"`
	TriggerKeys []TriggerKey  `yaml:"trigger_keys"`
	Display     DisplayConfig `yaml:"display"`
	History     HistoryConfig `yaml:"history"`
}

type DeviceConfig struct {
	VendorID       uint16 `yaml:"vendor_id"`
	ProductID      uint16 `yaml:"product_id"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`
}

type SerialConfig struct {
	Port        string `yaml:"port,omitempty"`
	BaudRate    uint   `yaml:"baud_rate"`
	DebounceMs  int    `yaml:"debounce_ms"`
	ButtonCount int    `yaml:"button_count"`
}

type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker,omitempty"`
	ClientID string `yaml:"client_id,omitempty"`
}

type TimingConfig struct {
	LongPressThresholdMs int  `yaml:"long_press_threshold_ms"`
	DoublePressWindowMs  int  `yaml:"double_press_window_ms"`
	TickIntervalMs       int  `yaml:"tick_interval_ms"`
	LongPressEnabled     bool `yaml:"long_press_enabled"`
	DoublePressEnabled   bool `yaml:"double_press_enabled"`
}

type TUIConfig struct {
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args"`
	WorkingDir string   `yaml:"working_dir,omitempty"`
}

type Button struct {
	Index       int           `yaml:"index"`
	Name        string        `yaml:"name,omitempty"`
	Press       *KeyAction    `yaml:"press,omitempty"`
	DoublePress *KeyAction    `yaml:"double_press,omitempty"`
	LongPress   *KeyAction    `yaml:"long_press,omitempty"`
	Repeat      *RepeatConfig `yaml:"repeat,omitempty"`
	// DisableLongPress opts a single button out of the global
	// long-press setting.
	DisableLongPress bool `yaml:"disable_long_press,omitempty"`
}

type KeyAction struct {
	Keys []string `yaml:"keys"`
	// UndoKeys, when set, makes the action undoable: executing the
	// action records it, and the undo trigger replays these keys.
	UndoKeys []string `yaml:"undo_keys,omitempty"`
}

// RepeatConfig layers repeat-fire mode on top of a button's press
// classification.
type RepeatConfig struct {
	Enabled       bool `yaml:"enabled"`
	FireImmediate bool `yaml:"fire_immediate"`
	OverridesLong bool `yaml:"overrides_long"`
	InitDelayMs   int  `yaml:"init_delay_ms"`
	IntervalMs    int  `yaml:"interval_ms"`
}

// TriggerKey binds a key name to a press kind on a button, bypassing
// timing classification entirely.
type TriggerKey struct {
	Key    string `yaml:"key"`
	Button int    `yaml:"button"`
	Kind   string `yaml:"kind"` // single, double or long
}

type DisplayConfig struct {
	Enabled          bool `yaml:"enabled"`
	Width            int  `yaml:"width"`
	Height           int  `yaml:"height"`
	UpdateIntervalMs int  `yaml:"update_interval_ms"`
	LogLines         int  `yaml:"log_lines"`
}

type HistoryConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Serial.Port == "" && (c.Device.VendorID == 0 || c.Device.ProductID == 0) {
		return fmt.Errorf("either serial.port or device.vendor_id/product_id is required")
	}

	// A zero-or-negative threshold would make every press a long press
	// or make double-press detection unreachable.
	if c.Timing.LongPressThresholdMs <= 0 {
		return fmt.Errorf("timing.long_press_threshold_ms must be positive, got %d", c.Timing.LongPressThresholdMs)
	}
	if c.Timing.DoublePressWindowMs <= 0 {
		return fmt.Errorf("timing.double_press_window_ms must be positive, got %d", c.Timing.DoublePressWindowMs)
	}
	if c.Timing.TickIntervalMs <= 0 {
		return fmt.Errorf("timing.tick_interval_ms must be positive, got %d", c.Timing.TickIntervalMs)
	}

	seen := make(map[int]bool)
	for _, btn := range c.Buttons {
		if seen[btn.Index] {
			return fmt.Errorf("duplicate button index: %d", btn.Index)
		}
		seen[btn.Index] = true

		if r := btn.Repeat; r != nil && r.Enabled {
			if r.InitDelayMs <= 0 {
				return fmt.Errorf("button %d: repeat.init_delay_ms must be positive, got %d", btn.Index, r.InitDelayMs)
			}
			if r.IntervalMs <= 0 {
				return fmt.Errorf("button %d: repeat.interval_ms must be positive, got %d", btn.Index, r.IntervalMs)
			}
		}
	}

	for i, tk := range c.TriggerKeys {
		if tk.Key == "" {
			return fmt.Errorf("trigger_keys[%d]: key is required", i)
		}
		switch tk.Kind {
		case "single", "double", "long":
		default:
			return fmt.Errorf("trigger_keys[%d]: unknown kind %q", i, tk.Kind)
		}
	}

	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Device.PollIntervalMs == 0 {
		c.Device.PollIntervalMs = 10
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = 19200
	}
	if c.Serial.DebounceMs == 0 {
		c.Serial.DebounceMs = 50
	}
	if c.Serial.ButtonCount == 0 {
		c.Serial.ButtonCount = 8
	}
	if c.Timing.LongPressThresholdMs == 0 {
		c.Timing.LongPressThresholdMs = 500
	}
	if c.Timing.DoublePressWindowMs == 0 {
		c.Timing.DoublePressWindowMs = 100
	}
	if c.Timing.TickIntervalMs == 0 {
		c.Timing.TickIntervalMs = 16
	}
	for _, btn := range c.Buttons {
		if r := btn.Repeat; r != nil && r.Enabled {
			if r.InitDelayMs == 0 {
				r.InitDelayMs = 600
			}
			if r.IntervalMs == 0 {
				r.IntervalMs = 130
			}
		}
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "keydeck"
	}
	if c.Display.Width == 0 {
		c.Display.Width = 128
	}
	if c.Display.Height == 0 {
		c.Display.Height = 64
	}
	if c.Display.UpdateIntervalMs == 0 {
		c.Display.UpdateIntervalMs = 100
	}
	if c.Display.LogLines == 0 {
		c.Display.LogLines = 3
	}
	if c.History.MaxEntries == 0 {
		c.History.MaxEntries = 100
	}
}

// UpdateDeviceIDs updates the vendor_id and product_id in a config file
// while preserving the rest of the file structure and comments
func UpdateDeviceIDs(path string, vendorID, productID uint16) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	content := string(data)

	vendorRegex := regexp.MustCompile(`(?m)^(\s*vendor_id:\s*)(?:0x[0-9A-Fa-f]+|\d+)`)
	content = vendorRegex.ReplaceAllString(content, fmt.Sprintf("${1}0x%04X", vendorID))

	productRegex := regexp.MustCompile(`(?m)^(\s*product_id:\s*)(?:0x[0-9A-Fa-f]+|\d+)`)
	content = productRegex.ReplaceAllString(content, fmt.Sprintf("${1}0x%04X", productID))

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CreateDefaultConfig creates a new config file with default values and the specified device
func CreateDefaultConfig(path string, vendorID, productID uint16) error {
	content := fmt.Sprintf(`# keydeck configuration

device:
  vendor_id: 0x%04X
  product_id: 0x%04X
  poll_interval_ms: 10

timing:
  long_press_threshold_ms: 500
  double_press_window_ms: 100
  tick_interval_ms: 16
  long_press_enabled: true
  double_press_enabled: true

tui:
  command: "your-tui-app"
  args: []

# Button mappings
buttons:
  - index: 0
    name: btn_0
    press:
      keys: ["enter"]

display:
  enabled: true
  width: 128
  height: 64
  update_interval_ms: 100
`, vendorID, productID)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// Exists checks if a config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
