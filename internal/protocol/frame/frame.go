package frame

import (
	"fmt"

	"github.com/danmuck/esphost/internal/protocol"
)

// Seal finalizes a frame whose payload already sits at buf[HeaderSize:].
// It writes h with Length and Offset set, then patches the checksum over
// the whole frame. Returns the total frame length.
func Seal(buf []byte, h Header, payloadLen int) (int, error) {
	if payloadLen < 0 || payloadLen > MaxPayload {
		return 0, fmt.Errorf("%w: payload length %d", protocol.ErrCapacity, payloadLen)
	}
	total := HeaderSize + payloadLen
	if total > len(buf) {
		return 0, fmt.Errorf("%w: frame needs %d bytes, have %d", protocol.ErrCapacity, total, len(buf))
	}
	h.Length = uint16(payloadLen)
	h.Offset = HeaderSize
	h.Checksum = 0
	if err := PutHeader(buf, h); err != nil {
		return 0, err
	}
	if _, err := PatchChecksum(buf[:total]); err != nil {
		return 0, err
	}
	return total, nil
}

// Build copies payload behind the header in dst and seals the frame.
func Build(dst []byte, h Header, payload []byte) (int, error) {
	if HeaderSize+len(payload) > len(dst) {
		return 0, fmt.Errorf("%w: frame needs %d bytes, have %d", protocol.ErrCapacity, HeaderSize+len(payload), len(dst))
	}
	copy(dst[HeaderSize:], payload)
	return Seal(dst, h, len(payload))
}

// Frame is a parsed inbound frame. Payload borrows from the source buffer.
type Frame struct {
	Header  Header
	Payload []byte
}

// Len is the number of source bytes the frame occupies.
func (f Frame) Len() int {
	return HeaderSize + len(f.Payload)
}

// Parse decodes the header at the front of buf and slices out its payload.
// Bytes after the declared length are ignored. With verify set the checksum
// is checked over the frame's own bytes.
func Parse(buf []byte, verify bool) (Frame, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return Frame{}, err
	}
	if h.Offset != HeaderSize {
		return Frame{}, fmt.Errorf("%w: payload offset %d", protocol.ErrInvalidData, h.Offset)
	}
	end := HeaderSize + int(h.Length)
	if end > len(buf) {
		return Frame{}, fmt.Errorf("%w: length %d overruns %d byte buffer", protocol.ErrInvalidData, h.Length, len(buf))
	}
	if verify {
		if err := VerifyChecksum(buf[:end]); err != nil {
			return Frame{}, err
		}
	}
	return Frame{Header: h, Payload: buf[HeaderSize:end]}, nil
}
