package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/danmuck/esphost/internal/protocol"
)

// Checksum is the wrapping 16-bit sum of every byte in b.
func Checksum(b []byte) uint16 {
	var sum uint16
	for _, c := range b {
		sum += uint16(c)
	}
	return sum
}

// frameSum sums a whole frame with the checksum field read as zero.
func frameSum(frame []byte) uint16 {
	return Checksum(frame[:offChecksum]) + Checksum(frame[offChecksum+2:])
}

// PatchChecksum zeroes bytes 6-7, sums the frame and writes the result back.
// It must run after every other header and payload byte is final.
func PatchChecksum(frame []byte) (uint16, error) {
	if len(frame) < HeaderSize {
		return 0, fmt.Errorf("%w: short frame: %d bytes", protocol.ErrInvalidData, len(frame))
	}
	frame[offChecksum] = 0
	frame[offChecksum+1] = 0
	sum := Checksum(frame)
	binary.LittleEndian.PutUint16(frame[offChecksum:], sum)
	return sum, nil
}

// VerifyChecksum compares the stored checksum with the sum of frame.
func VerifyChecksum(frame []byte) error {
	if len(frame) < HeaderSize {
		return fmt.Errorf("%w: short frame: %d bytes", protocol.ErrInvalidData, len(frame))
	}
	want := binary.LittleEndian.Uint16(frame[offChecksum:])
	if got := frameSum(frame); got != want {
		return fmt.Errorf("%w: header=0x%04x computed=0x%04x", protocol.ErrChecksumMismatch, want, got)
	}
	return nil
}
