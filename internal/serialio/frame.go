// Package serialio reads button edges from a serial-attached key deck.
// The device streams fixed-size frames delimited by a four-byte
// signature; this package reframes the byte stream, extracts button
// bitmask transitions, debounces them and hands clean down/up edges to
// the press engine.
package serialio

import "bytes"

// frameSignature delimits frames on the wire. The payload follows
// immediately after.
var frameSignature = []byte{0x02, 0x04, 0x03, 0x04}

// PayloadSize is the number of bytes following the signature:
// byte 0 is the button bitmask, byte 1 the analog level, bytes 2-3 the
// auxiliary (profile) buttons, active low.
const PayloadSize = 4

// Frame is one decoded report from the device.
type Frame struct {
	Buttons uint8
	Analog  uint8
	Aux     [2]bool
}

func decodeFrame(payload []byte) Frame {
	return Frame{
		Buttons: payload[0],
		Analog:  payload[1],
		// Aux lines idle high.
		Aux: [2]bool{payload[2] == 0, payload[3] == 0},
	}
}

// Scanner reassembles frames from arbitrarily-chunked reads. The
// device offers no flow control, so a read may start mid-frame; the
// scanner drops bytes until it sees the signature again.
type Scanner struct {
	buf []byte
}

// Feed appends raw bytes and returns every complete frame they close.
func (s *Scanner) Feed(data []byte) []Frame {
	s.buf = append(s.buf, data...)

	var frames []Frame
	for {
		start := bytes.Index(s.buf, frameSignature)
		if start < 0 {
			// Keep a partial signature tail, drop the rest.
			keep := len(frameSignature) - 1
			if len(s.buf) > keep {
				s.buf = append(s.buf[:0], s.buf[len(s.buf)-keep:]...)
			}
			return frames
		}

		rest := s.buf[start+len(frameSignature):]
		if len(rest) < PayloadSize {
			// Signature seen but payload still in flight.
			s.buf = append(s.buf[:0], s.buf[start:]...)
			return frames
		}

		frames = append(frames, decodeFrame(rest[:PayloadSize]))
		s.buf = append(s.buf[:0], rest[PayloadSize:]...)
	}
}
