// Package display renders status information to the pad's OLED panel.
package display

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Renderer draws text and primitives onto a monochrome frame buffer.
type Renderer struct {
	width  int
	height int
	img    *image.Gray
	face   font.Face
}

// NewRenderer creates a renderer for a panel of the given dimensions.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		width:  width,
		height: height,
		img:    image.NewGray(image.Rect(0, 0, width, height)),
		face:   basicfont.Face7x13,
	}
}

// Clear blanks the frame buffer.
func (r *Renderer) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.Black, image.Point{}, draw.Src)
}

// DrawText draws text with its baseline at (x, y).
func (r *Renderer) DrawText(x, y int, text string) {
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.White,
		Face: r.face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// DrawTextWrapped draws text word-wrapped to maxWidth pixels and
// returns the vertical space consumed.
func (r *Renderer) DrawTextWrapped(x, y, maxWidth int, text string) int {
	lineHeight := r.face.Metrics().Height.Ceil()
	currentY := y

	line := ""
	for _, word := range strings.Fields(text) {
		candidate := line
		if candidate != "" {
			candidate += " "
		}
		candidate += word

		if font.MeasureString(r.face, candidate).Ceil() > maxWidth && line != "" {
			r.DrawText(x, currentY, line)
			currentY += lineHeight
			line = word
		} else {
			line = candidate
		}
	}

	if line != "" {
		r.DrawText(x, currentY, line)
		currentY += lineHeight
	}

	return currentY - y
}

// DrawRect draws a one pixel rectangle outline.
func (r *Renderer) DrawRect(x, y, width, height int) {
	for i := x; i < x+width; i++ {
		r.img.SetGray(i, y, color.Gray{Y: 255})
		r.img.SetGray(i, y+height-1, color.Gray{Y: 255})
	}
	for i := y; i < y+height; i++ {
		r.img.SetGray(x, i, color.Gray{Y: 255})
		r.img.SetGray(x+width-1, i, color.Gray{Y: 255})
	}
}

// FillRect fills a rectangle.
func (r *Renderer) FillRect(x, y, width, height int) {
	for py := y; py < y+height; py++ {
		for px := x; px < x+width; px++ {
			r.img.SetGray(px, py, color.Gray{Y: 255})
		}
	}
}

// DrawHLine draws a horizontal divider line.
func (r *Renderer) DrawHLine(x, y, width int) {
	for i := x; i < x+width; i++ {
		r.img.SetGray(i, y, color.Gray{Y: 255})
	}
}

// SetPixel sets or clears a single pixel.
func (r *Renderer) SetPixel(x, y int, on bool) {
	if on {
		r.img.SetGray(x, y, color.Gray{Y: 255})
	} else {
		r.img.SetGray(x, y, color.Gray{Y: 0})
	}
}

// Bitmap packs the frame buffer into 1-bit row-major data, eight
// pixels per byte, MSB first.
func (r *Renderer) Bitmap() []byte {
	return r.pack(0, 0, r.width, r.height)
}

// RegionBitmap packs a window of the frame buffer in the same format.
func (r *Renderer) RegionBitmap(x, y, width, height int) []byte {
	return r.pack(x, y, width, height)
}

func (r *Renderer) pack(x, y, width, height int) []byte {
	bytesPerRow := (width + 7) / 8
	data := make([]byte, bytesPerRow*height)

	for dy := 0; dy < height; dy++ {
		for dx := 0; dx < width; dx++ {
			if r.img.GrayAt(x+dx, y+dy).Y > 127 {
				data[dy*bytesPerRow+dx/8] |= 1 << (7 - dx%8)
			}
		}
	}

	return data
}

// Width returns the panel width in pixels.
func (r *Renderer) Width() int {
	return r.width
}

// Height returns the panel height in pixels.
func (r *Renderer) Height() int {
	return r.height
}
