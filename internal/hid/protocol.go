package hid

import (
	"encoding/binary"
	"fmt"
)

// Report IDs
const (
	ReportIDState   byte = 0x01
	ReportIDDisplay byte = 0x02
)

// ReportSize is the fixed HID report length for this device. Display
// payloads larger than one report are chunked into partial frames.
const ReportSize = 64

// Display commands
const (
	DisplayCmdFullFrame byte = 0x01
	DisplayCmdPartial   byte = 0x02
	DisplayCmdClear     byte = 0x03
)

// StateReport is the device's button state snapshot.
type StateReport struct {
	Buttons uint8  // current bitmask, bit 0 = button 0
	Uptime  uint32 // ms since device boot
}

// ParseStateReport parses a raw HID report.
// Format:
//
//	Byte 0:   Report ID (0x01)
//	Byte 1:   Button bitmask
//	Byte 2-5: Uptime (ms since boot, little-endian u32)
func ParseStateReport(data []byte) (*StateReport, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("state report too short: %d bytes", len(data))
	}
	if data[0] != ReportIDState {
		return nil, fmt.Errorf("unexpected report ID: 0x%02X", data[0])
	}

	return &StateReport{
		Buttons: data[1],
		Uptime:  binary.LittleEndian.Uint32(data[2:6]),
	}, nil
}

// Diff compares this report against a previous bitmask and returns the
// buttons that went down and the buttons that came up.
func (r *StateReport) Diff(prev uint8) (downs, ups []int) {
	changed := r.Buttons ^ prev
	for i := 0; i < 8; i++ {
		bit := uint8(1) << i
		if changed&bit == 0 {
			continue
		}
		if r.Buttons&bit != 0 {
			downs = append(downs, i)
		} else {
			ups = append(ups, i)
		}
	}
	return downs, ups
}

// DisplayFrame represents a frame to be sent to the OLED display
type DisplayFrame struct {
	Command byte
	X       uint16
	Y       uint16
	Width   uint16
	Height  uint16
	Data    []byte // 1-bit packed pixel data, row-major
}

// frameHeaderSize is the encoded size before pixel data.
const frameHeaderSize = 10

// MaxFramePayload is the pixel data that fits in one report.
const MaxFramePayload = ReportSize - frameHeaderSize

// Encode serializes the DisplayFrame for transmission
// Format:
//
//	Byte 0:   Report ID (0x02)
//	Byte 1:   Command (0x01=full frame, 0x02=partial, 0x03=clear)
//	Byte 2-3: X offset (for partial)
//	Byte 4-5: Y offset (for partial)
//	Byte 6-7: Width
//	Byte 8-9: Height
//	Byte 10+: Pixel data (1-bit packed, row-major)
func (f *DisplayFrame) Encode() []byte {
	buf := make([]byte, frameHeaderSize+len(f.Data))

	buf[0] = ReportIDDisplay
	buf[1] = f.Command
	binary.LittleEndian.PutUint16(buf[2:4], f.X)
	binary.LittleEndian.PutUint16(buf[4:6], f.Y)
	binary.LittleEndian.PutUint16(buf[6:8], f.Width)
	binary.LittleEndian.PutUint16(buf[8:10], f.Height)

	if len(f.Data) > 0 {
		copy(buf[frameHeaderSize:], f.Data)
	}

	return buf
}

// NewFullFrame creates a full frame display update
func NewFullFrame(width, height uint16, data []byte) *DisplayFrame {
	return &DisplayFrame{
		Command: DisplayCmdFullFrame,
		Width:   width,
		Height:  height,
		Data:    data,
	}
}

// NewPartialFrame creates a partial frame display update
func NewPartialFrame(x, y, width, height uint16, data []byte) *DisplayFrame {
	return &DisplayFrame{
		Command: DisplayCmdPartial,
		X:       x,
		Y:       y,
		Width:   width,
		Height:  height,
		Data:    data,
	}
}

// NewClearCommand creates a display clear command
func NewClearCommand() *DisplayFrame {
	return &DisplayFrame{Command: DisplayCmdClear}
}

// Chunk splits a frame whose payload exceeds one report into partial
// frames of whole pixel rows, each fitting a single report. Frames
// that already fit are returned unchanged.
func (f *DisplayFrame) Chunk() []*DisplayFrame {
	if len(f.Data) <= MaxFramePayload {
		return []*DisplayFrame{f}
	}

	bytesPerRow := (int(f.Width) + 7) / 8
	rowsPerChunk := MaxFramePayload / bytesPerRow
	if rowsPerChunk == 0 {
		rowsPerChunk = 1
	}

	var chunks []*DisplayFrame
	for y := 0; y < int(f.Height); y += rowsPerChunk {
		h := rowsPerChunk
		if y+h > int(f.Height) {
			h = int(f.Height) - y
		}

		start := y * bytesPerRow
		end := (y + h) * bytesPerRow
		if end > len(f.Data) {
			end = len(f.Data)
		}

		chunks = append(chunks, NewPartialFrame(
			f.X, f.Y+uint16(y),
			f.Width, uint16(h),
			f.Data[start:end],
		))
	}

	return chunks
}
