// Package hid talks to the key deck over USB HID: button state
// reports in, chunked display frames out.
package hid

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/karalabe/hid"

	"github.com/rvolkert/keydeck/internal/press"
)

// Device represents a connection to the key deck HID device
type Device struct {
	vendorID  uint16
	productID uint16
	mu        sync.Mutex
	device    *hid.Device
	closed    bool
}

// NewDevice opens a connection to a HID device with the specified vendor and product IDs
func NewDevice(vendorID, productID uint16) (*Device, error) {
	devices := hid.Enumerate(vendorID, productID)
	if len(devices) == 0 {
		allDevices := hid.Enumerate(0, 0)
		if len(allDevices) == 0 {
			return nil, fmt.Errorf("no HID devices found on system - check USB connection")
		}
		return nil, fmt.Errorf("no device found with VendorID=0x%04X, ProductID=0x%04X\n"+
			"  Run 'keydeck list-devices' to see available devices\n"+
			"  Run 'keydeck set-device' to configure the correct device",
			vendorID, productID)
	}

	// Some devices expose multiple interfaces and not all of them can
	// be opened; take the first one that succeeds.
	var lastErr error
	for _, devInfo := range devices {
		dev, err := devInfo.Open()
		if err == nil {
			return &Device{
				vendorID:  vendorID,
				productID: productID,
				device:    dev,
			}, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("failed to open any of %d interfaces for device 0x%04X:0x%04X: %w\n"+
		"  This may be a permissions issue (udev rules on Linux,\n"+
		"  Input Monitoring permission on macOS)",
		len(devices), vendorID, productID, lastErr)
}

// Close closes the HID device connection
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if d.device != nil {
		return d.device.Close()
	}
	return nil
}

// ReadEdges reads state reports from the device, diffs consecutive
// bitmasks and sends the resulting button edges to the channel. The
// device reports whole snapshots, so a report that flips several bits
// produces several edges with the same timestamp.
func (d *Device) ReadEdges(ctx context.Context, edges chan<- press.Edge) error {
	buf := make([]byte, ReportSize)
	var prevMask uint8

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			return fmt.Errorf("device closed")
		}
		dev := d.device
		d.mu.Unlock()

		n, err := dev.Read(buf)
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}
		if n == 0 {
			continue
		}

		report, err := ParseStateReport(buf[:n])
		if err != nil {
			// Skip malformed reports rather than dropping the link.
			continue
		}

		now := time.Now()
		downs, ups := report.Diff(prevMask)
		prevMask = report.Buttons

		for _, btn := range downs {
			select {
			case edges <- press.Edge{Button: btn, Down: true, Time: now}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		for _, btn := range ups {
			select {
			case edges <- press.Edge{Button: btn, Down: false, Time: now}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Write sends raw data to the HID device
func (d *Device) Write(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return fmt.Errorf("device closed")
	}

	_, err := d.device.Write(data)
	return err
}

// SendFrame sends a display frame, splitting oversized payloads into
// report-sized chunks.
func (d *Device) SendFrame(frame *DisplayFrame) error {
	for _, chunk := range frame.Chunk() {
		if err := d.Write(chunk.Encode()); err != nil {
			return err
		}
	}
	return nil
}

// Reconnect attempts to reconnect to the device
func (d *Device) Reconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device != nil {
		d.device.Close()
		d.device = nil
	}
	d.closed = false

	devices := hid.Enumerate(d.vendorID, d.productID)
	if len(devices) == 0 {
		return fmt.Errorf("device not found")
	}

	var lastErr error
	for _, devInfo := range devices {
		dev, err := devInfo.Open()
		if err == nil {
			d.device = dev
			return nil
		}
		lastErr = err
	}

	return fmt.Errorf("failed to open device: %w", lastErr)
}

// WaitForDevice waits for a device to become available and connects to it
func (d *Device) WaitForDevice(ctx context.Context, pollInterval time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.Reconnect(); err == nil {
				return nil
			}
		}
	}
}
