package display

import (
	"github.com/rvolkert/keydeck/internal/hid"
)

// FrameEncoder turns packed bitmaps into display commands sized for
// the panel. Splitting into report-sized chunks happens on the wire,
// see hid.DisplayFrame.Chunk.
type FrameEncoder struct {
	width  int
	height int
}

// NewFrameEncoder creates an encoder for a panel of the given size.
func NewFrameEncoder(width, height int) *FrameEncoder {
	return &FrameEncoder{
		width:  width,
		height: height,
	}
}

// EncodeFullFrame wraps a whole-panel bitmap in a full frame command.
func (e *FrameEncoder) EncodeFullFrame(data []byte) *hid.DisplayFrame {
	return hid.NewFullFrame(uint16(e.width), uint16(e.height), data)
}

// EncodePartialFrame wraps a window bitmap in a partial update command.
func (e *FrameEncoder) EncodePartialFrame(x, y, width, height int, data []byte) *hid.DisplayFrame {
	return hid.NewPartialFrame(
		uint16(x), uint16(y),
		uint16(width), uint16(height),
		data,
	)
}

// EncodeClear builds a command that blanks the panel.
func (e *FrameEncoder) EncodeClear() *hid.DisplayFrame {
	return hid.NewClearCommand()
}
