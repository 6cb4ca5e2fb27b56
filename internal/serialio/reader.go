package serialio

import (
	"context"
	"fmt"
	"io"
	"time"

	goserial "github.com/jacobsa/go-serial/serial"

	"github.com/rvolkert/keydeck/internal/press"
)

// Debouncer turns raw bitmask samples into clean per-button edges,
// suppressing contact chatter within the debounce window.
type Debouncer struct {
	debounce    time.Duration
	buttonCount int
	down        []bool
	lastEdgeAt  []time.Time
}

// NewDebouncer tracks up to buttonCount buttons (bit 0 first).
func NewDebouncer(buttonCount int, debounce time.Duration) *Debouncer {
	if buttonCount > 8 {
		buttonCount = 8
	}
	return &Debouncer{
		debounce:    debounce,
		buttonCount: buttonCount,
		down:        make([]bool, buttonCount),
		lastEdgeAt:  make([]time.Time, buttonCount),
	}
}

// Sample compares a bitmask against the tracked state and returns the
// debounced edges it produces. Release edges are never suppressed:
// dropping one would leave the classifier holding a phantom press.
func (d *Debouncer) Sample(mask uint8, now time.Time) []press.Edge {
	var edges []press.Edge
	for i := 0; i < d.buttonCount; i++ {
		pressed := mask&(1<<i) != 0
		if pressed == d.down[i] {
			continue
		}
		if pressed && now.Before(d.lastEdgeAt[i].Add(d.debounce)) {
			continue
		}
		d.down[i] = pressed
		d.lastEdgeAt[i] = now
		edges = append(edges, press.Edge{Button: i, Down: pressed, Time: now})
	}
	return edges
}

// Reader owns the serial port and pumps decoded edges to a channel.
type Reader struct {
	port      io.ReadWriteCloser
	scanner   Scanner
	debouncer *Debouncer
}

// Options configures the serial link.
type Options struct {
	Port        string
	BaudRate    uint
	Debounce    time.Duration
	ButtonCount int
}

// Open opens the serial port and prepares a reader.
func Open(opts Options) (*Reader, error) {
	if opts.Port == "" {
		return nil, fmt.Errorf("serial port is required")
	}

	port, err := goserial.Open(goserial.OpenOptions{
		PortName:        opts.Port,
		BaudRate:        opts.BaudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", opts.Port, err)
	}

	return &Reader{
		port:      port,
		debouncer: NewDebouncer(opts.ButtonCount, opts.Debounce),
	}, nil
}

// ReadEdges reads frames until ctx is cancelled or the port fails,
// sending debounced button edges to the channel. Analog and aux data
// are reported through the optional callbacks.
func (r *Reader) ReadEdges(ctx context.Context, edges chan<- press.Edge, onAnalog func(uint8), onAux func(index int)) error {
	buf := make([]byte, 64)
	var auxDown [2]bool

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := r.port.Read(buf)
		if err != nil {
			if err == io.EOF {
				return fmt.Errorf("serial port closed")
			}
			return fmt.Errorf("serial read: %w", err)
		}
		if n == 0 {
			continue
		}

		now := time.Now()
		for _, frame := range r.scanner.Feed(buf[:n]) {
			for _, edge := range r.debouncer.Sample(frame.Buttons, now) {
				select {
				case edges <- edge:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			if onAnalog != nil {
				onAnalog(frame.Analog)
			}
			if onAux != nil {
				for i, down := range frame.Aux {
					// Aux buttons fire on the release edge.
					if auxDown[i] && !down {
						onAux(i)
					}
					auxDown[i] = down
				}
			}
		}
	}
}

// Close closes the serial port.
func (r *Reader) Close() error {
	return r.port.Close()
}
