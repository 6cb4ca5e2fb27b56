package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/rvolkert/keydeck/internal/action"
	"github.com/rvolkert/keydeck/internal/config"
	"github.com/rvolkert/keydeck/internal/display"
	"github.com/rvolkert/keydeck/internal/hid"
	"github.com/rvolkert/keydeck/internal/history"
	"github.com/rvolkert/keydeck/internal/logpanel"
	"github.com/rvolkert/keydeck/internal/mqtt"
	"github.com/rvolkert/keydeck/internal/press"
	"github.com/rvolkert/keydeck/internal/pty"
	"github.com/rvolkert/keydeck/internal/serialio"
	"github.com/rvolkert/keydeck/internal/ui"
)

const Version = "0.1.0"

func main() {
	// Subcommands before flag parsing
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "list-devices":
			runListDevices()
			return
		case "set-device", "select-device":
			runSetDevice(os.Args[2:])
			return
		case "help", "-h", "--help":
			printUsage()
			os.Exit(0)
		}
	}

	configPath := flag.String("config", "config.yaml", "path to configuration file")
	verbose := flag.Bool("verbose", false, "enable verbose logging")
	version := flag.Bool("version", false, "print version and exit")

	flag.Usage = printUsage
	flag.Parse()

	if *version {
		ui.PrintVersion(Version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *verbose {
		log.Printf("Loaded configuration from %s", *configPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	app, err := newApp(cfg, *configPath, *verbose)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	go func() {
		sig := <-sigChan
		app.noteSignal(sig.String())
		if *verbose {
			log.Printf("Received %s, shutting down", sig)
		}
		cancel()
	}()

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Application error: %v", err)
	}

	if *verbose {
		log.Println("Shutdown complete")
	}
}

func printUsage() {
	ui.PrintUsage(Version)
}

// runListDevices handles the list-devices subcommand
func runListDevices() {
	devices, err := hid.ListDevices()
	if err != nil {
		ui.PrintFatalError("Failed to list devices", err.Error())
		os.Exit(1)
	}
	uiDevices := make([]ui.DeviceInfo, len(devices))
	for i, d := range devices {
		uiDevices[i] = ui.DeviceInfo{
			VendorID:     d.VendorID,
			ProductID:    d.ProductID,
			Manufacturer: d.Manufacturer,
			Product:      d.Product,
		}
	}
	ui.PrintDeviceList(uiDevices)
}

// runSetDevice handles the set-device subcommand
func runSetDevice(args []string) {
	fs := flag.NewFlagSet("set-device", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	fs.Usage = func() {
		ui.PrintSetDeviceUsage()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	remaining := fs.Args()

	var vendorID, productID uint16

	switch {
	case len(remaining) >= 2:
		vid, err := parseID(remaining[0])
		if err != nil {
			ui.PrintFatalError("Invalid vendor_id", fmt.Sprintf("%q: %v", remaining[0], err))
			os.Exit(1)
		}
		pid, err := parseID(remaining[1])
		if err != nil {
			ui.PrintFatalError("Invalid product_id", fmt.Sprintf("%q: %v", remaining[1], err))
			os.Exit(1)
		}
		vendorID, productID = vid, pid
	case len(remaining) == 1:
		ui.PrintFatalError("Invalid arguments", "Both vendor_id and product_id must be provided, or neither")
		os.Exit(1)
	default:
		device, err := selectDevice()
		if err != nil {
			ui.PrintFatalError("Device selection failed", err.Error())
			os.Exit(1)
		}
		if device == nil {
			fmt.Println(ui.Muted("No device selected"))
			os.Exit(0)
		}
		vendorID = device.VendorID
		productID = device.ProductID
	}

	if config.Exists(*configPath) {
		if err := config.UpdateDeviceIDs(*configPath, vendorID, productID); err != nil {
			ui.PrintFatalError("Failed to update config", err.Error())
			os.Exit(1)
		}
		ui.PrintDeviceUpdated(*configPath, vendorID, productID)
	} else {
		if err := config.CreateDefaultConfig(*configPath, vendorID, productID); err != nil {
			ui.PrintFatalError("Failed to create config", err.Error())
			os.Exit(1)
		}
		ui.PrintDeviceCreated(*configPath, vendorID, productID)
	}
}

// parseID parses a vendor or product ID, hex with 0x prefix or decimal.
func parseID(s string) (uint16, error) {
	s = strings.TrimSpace(s)

	var val uint64
	var err error

	if strings.HasPrefix(strings.ToLower(s), "0x") {
		val, err = strconv.ParseUint(s[2:], 16, 16)
	} else {
		val, err = strconv.ParseUint(s, 10, 16)
	}

	if err != nil {
		return 0, err
	}

	return uint16(val), nil
}

// selectDevice shows the interactive device picker over attached devices.
func selectDevice() (*ui.DeviceInfo, error) {
	devices, err := hid.ListDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no HID devices found")
	}

	// Collapse duplicate interfaces of the same device
	seen := make(map[uint32]bool)
	var unique []ui.DeviceInfo

	for _, d := range devices {
		if d.VendorID == 0 && d.ProductID == 0 {
			continue
		}
		key := uint32(d.VendorID)<<16 | uint32(d.ProductID)
		if seen[key] {
			continue
		}
		seen[key] = true

		unique = append(unique, ui.DeviceInfo{
			VendorID:     d.VendorID,
			ProductID:    d.ProductID,
			Manufacturer: d.Manufacturer,
			Product:      d.Product,
		})
	}

	if len(unique) == 0 {
		return nil, fmt.Errorf("no identifiable HID devices found")
	}

	return ui.SelectDevice(unique)
}

type App struct {
	config  *config.Config
	verbose bool

	hidDevice    *hid.Device
	serialReader *serialio.Reader
	engine       *press.Engine
	mapper       *action.Mapper
	executor     *action.Executor
	ptyManager   *pty.Manager
	ptyWriter    *pty.Writer
	display      *display.Manager
	logs         *logpanel.Panel
	publisher    mqtt.Publisher
	watcher      *config.Watcher

	signalName string
}

func newApp(cfg *config.Config, configPath string, verbose bool) (*App, error) {
	app := &App{
		config:  cfg,
		verbose: verbose,
		logs:    logpanel.New(100),
	}

	// Mirror log output into the panel ring so the display and the
	// terminal see the same lines.
	log.SetOutput(io.MultiWriter(os.Stderr, app.logs))

	// Transport: serial when a port is configured, HID otherwise.
	if cfg.Serial.Port != "" {
		reader, err := serialio.Open(serialio.Options{
			Port:        cfg.Serial.Port,
			BaudRate:    cfg.Serial.BaudRate,
			Debounce:    time.Duration(cfg.Serial.DebounceMs) * time.Millisecond,
			ButtonCount: cfg.Serial.ButtonCount,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open serial port: %w", err)
		}
		app.serialReader = reader
	} else {
		device, err := hid.NewDevice(cfg.Device.VendorID, cfg.Device.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to open HID device: %w", err)
		}
		app.hidDevice = device
	}

	app.mapper = action.NewMapper(cfg)

	ptyManager, err := pty.NewManager(cfg.TUI.Command, cfg.TUI.Args, cfg.TUI.WorkingDir)
	if err != nil {
		app.closeTransport()
		return nil, fmt.Errorf("failed to create PTY manager: %w", err)
	}
	app.ptyManager = ptyManager
	app.ptyWriter = pty.NewWriter(ptyManager, 0)

	app.executor = action.NewExecutor(app.ptyWriter, history.NewStack(cfg.History.MaxEntries))

	engine, err := press.NewEngine(
		engineOptions(cfg.Timing),
		buttonOverrides(cfg),
		time.Duration(cfg.Timing.TickIntervalMs)*time.Millisecond,
		app.handlePress,
	)
	if err != nil {
		app.closeTransport()
		return nil, fmt.Errorf("failed to create press engine: %w", err)
	}
	app.engine = engine

	if cfg.MQTT.Enabled {
		publisher, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
		if err != nil {
			app.closeTransport()
			return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
		app.publisher = publisher
	}

	if cfg.Display.Enabled && app.hidDevice != nil {
		app.display = display.NewManager(cfg.Display, app.hidDevice, app.logs)
	}

	// Reload mappings and toggles when the config file changes. A
	// failed watch is not fatal; the daemon just runs without reload.
	if watcher, err := config.NewWatcher(configPath); err == nil {
		watcher.OnReload(app.handleReload)
		app.watcher = watcher
	} else if verbose {
		log.Printf("Config watching disabled: %v", err)
	}

	return app, nil
}

// engineOptions translates global timing config to classifier options.
func engineOptions(t config.TimingConfig) press.Options {
	return press.Options{
		LongPress:          t.LongPressEnabled,
		LongPressThreshold: time.Duration(t.LongPressThresholdMs) * time.Millisecond,
		DoublePress:        t.DoublePressEnabled,
		DoublePressWindow:  time.Duration(t.DoublePressWindowMs) * time.Millisecond,
	}
}

// buttonOverrides builds per-button classifier options for buttons
// that opt out of long press or opt in to repeat-fire mode.
func buttonOverrides(cfg *config.Config) map[int]press.Options {
	overrides := make(map[int]press.Options)
	for _, btn := range cfg.Buttons {
		if !btn.DisableLongPress && btn.Repeat == nil {
			continue
		}
		opts := engineOptions(cfg.Timing)
		if btn.DisableLongPress {
			opts.LongPress = false
		}
		if btn.Repeat != nil && btn.Repeat.Enabled {
			opts.Repeat = true
			opts.RepeatFireImmediate = btn.Repeat.FireImmediate
			opts.RepeatOverridesLong = btn.Repeat.OverridesLong
			opts.RepeatInitDelay = time.Duration(btn.Repeat.InitDelayMs) * time.Millisecond
			opts.RepeatInterval = time.Duration(btn.Repeat.IntervalMs) * time.Millisecond
		}
		overrides[btn.Index] = opts
	}
	return overrides
}

// handlePress is the engine callback: publish, show, execute.
func (a *App) handlePress(ev press.Event) {
	if a.verbose {
		log.Printf("Press: %s", ev)
	}
	if a.display != nil {
		a.display.NotePress(ev)
	}
	if a.publisher != nil {
		if err := a.publisher.PublishPress(ev, time.Now()); err != nil {
			log.Printf("MQTT publish failed: %v", err)
		}
	}

	act, ok := a.mapper.Map(ev)
	if !ok {
		return
	}
	if err := a.executor.Execute(act); err != nil {
		log.Printf("Failed to execute %q: %v", act.Name, err)
	}
}

func (a *App) handleReload(cfg *config.Config) {
	a.mapper.Reload(cfg)
	// Rebuild classifier options so changed thresholds and per-button
	// repeat blocks take effect. The tick interval stays until restart.
	if err := a.engine.Reconfigure(engineOptions(cfg.Timing), buttonOverrides(cfg)); err != nil {
		log.Printf("Failed to apply reloaded timing config: %v", err)
		return
	}
	log.Println("Configuration reloaded")
}

func (a *App) noteSignal(name string) {
	a.signalName = name
}

func (a *App) Run(ctx context.Context) error {
	if err := a.ptyManager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	if a.display != nil {
		a.display.Start(ctx)
		a.display.SetStatus("running")
	}

	a.engine.Start(ctx)

	if a.watcher != nil {
		a.watcher.Start()
	}

	if a.publisher != nil {
		err := a.publisher.PublishSystem(mqtt.SystemEvent{
			Timestamp: time.Now(),
			Event:     "STARTUP",
		})
		if err != nil {
			log.Printf("MQTT publish failed: %v", err)
		}
	}

	go a.readTriggerKeys(ctx)

	edges := make(chan press.Edge, 64)
	go func() {
		defer close(edges)
		var err error
		if a.serialReader != nil {
			err = a.serialReader.ReadEdges(ctx, edges, nil, a.handleAux)
		} else {
			err = a.hidDevice.ReadEdges(ctx, edges)
		}
		if err != nil && ctx.Err() == nil {
			log.Printf("Transport read error: %v", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			a.shutdown()
			return nil
		case edge, ok := <-edges:
			if !ok {
				a.shutdown()
				return fmt.Errorf("input device disconnected")
			}
			a.engine.ProcessEdge(edge)
		}
	}
}

// handleAux maps the serial pad's auxiliary buttons to history
// operations: aux 0 undoes the last recorded action, aux 1 redoes.
func (a *App) handleAux(index int) {
	var err error
	switch index {
	case 0:
		err = a.executor.Undo()
	case 1:
		err = a.executor.Redo()
	default:
		return
	}
	if err != nil {
		if err == history.ErrNothingToUndo || err == history.ErrNothingToRedo {
			return
		}
		log.Printf("History operation failed: %v", err)
	}
}

// readTriggerKeys listens on the daemon's own stdin for configured
// trigger keys, which fire a press type directly without timing
// classification. ctrl+z and ctrl+y are wired to undo and redo.
func (a *App) readTriggerKeys(ctx context.Context) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		if a.verbose {
			log.Printf("Trigger keys disabled: %v", err)
		}
		return
	}
	defer term.Restore(fd, oldState)

	buf := make([]byte, 1)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return
		}

		name := keyName(buf[0])
		switch name {
		case "ctrl+c":
			// Raw mode swallows the signal; synthesize it.
			syscall.Kill(os.Getpid(), syscall.SIGINT)
			return
		case "ctrl+z":
			a.handleAux(0)
			continue
		case "ctrl+y":
			a.handleAux(1)
			continue
		}

		if t, ok := a.mapper.Trigger(name); ok {
			a.engine.Trigger(t.Button, t.Type)
		}
	}
}

// keyName decodes a single raw-mode byte into the key name used by
// trigger key configuration.
func keyName(b byte) string {
	switch {
	case b == 0x1b:
		return "esc"
	case b == '\r' || b == '\n':
		return "enter"
	case b == '\t':
		return "tab"
	case b == 0x7f:
		return "backspace"
	case b < 0x20:
		return "ctrl+" + string(rune('a'+b-1))
	default:
		return string(rune(b))
	}
}

func (a *App) closeTransport() {
	if a.serialReader != nil {
		a.serialReader.Close()
	}
	if a.hidDevice != nil {
		a.hidDevice.Close()
	}
}

func (a *App) shutdown() {
	if a.verbose {
		log.Println("Shutting down...")
	}
	if a.watcher != nil {
		a.watcher.Stop()
	}
	a.engine.Stop()
	if a.display != nil {
		a.display.Stop()
	}
	a.ptyManager.Stop()
	a.closeTransport()
	if a.publisher != nil {
		err := a.publisher.PublishSystem(mqtt.SystemEvent{
			Timestamp: time.Now(),
			Event:     "SHUTDOWN",
			Reason:    a.signalName,
		})
		if err != nil {
			log.Printf("MQTT publish failed: %v", err)
		}
		a.publisher.Close()
	}
}
