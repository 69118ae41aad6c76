// Package resync recovers frame alignment when reception jitter leaves the
// receive buffer starting a few bytes away from a true header.
//
// The recovery is a best-effort match against two byte patterns that sit at
// a known distance from the header: the little-endian payload offset (12)
// at bytes 4-5, and the H4 event prefix of an LE advertising report right
// after the header. Shifted buffers are assumed to be HCI traffic. The
// Wi-Fi path is never shifted: a misaligned RPC frame is not detected here.
package resync

import (
	"fmt"

	"github.com/danmuck/esphost/internal/logs"
	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/protocol/frame"
)

// DefaultWindow is how many byte positions either side of zero are scanned.
const DefaultWindow = 4

// Pattern names the sub-pattern that located the header.
type Pattern uint8

const (
	PatternNone Pattern = iota
	PatternOffsetField
	PatternAdvReport
)

func (p Pattern) String() string {
	switch p {
	case PatternOffsetField:
		return "offset-field"
	case PatternAdvReport:
		return "adv-report"
	default:
		return "none"
	}
}

type Options struct {
	Window int
}

func DefaultOptions() Options {
	return Options{Window: DefaultWindow}
}

// Result describes how to read buf.
type Result struct {
	// Aligned means byte 0 holds a plausible interface type and the buffer
	// can go straight to header parsing.
	Aligned bool
	// Shift is where the true header starts relative to byte 0. Negative
	// values mean the header began before the buffer.
	Shift int
	// PayloadStart indexes the first HCI byte after the shifted header.
	PayloadStart int
	Pattern      Pattern
}

// Payload returns the bytes to hand to the HCI parser for a shifted result.
func (r Result) Payload(buf []byte) []byte {
	if r.Aligned || r.PayloadStart >= len(buf) {
		return nil
	}
	return buf[r.PayloadStart:]
}

const (
	offsetFieldPos = 4
	h4Event        = 0x04
	leMetaEvent    = 0x3E
	advReportSub   = 0x02
)

// Inspect decides whether buf is aligned, and if not, where its header sits.
func Inspect(buf []byte, opts Options) (Result, error) {
	if len(buf) == 0 {
		return Result{}, fmt.Errorf("%w: empty buffer", protocol.ErrInvalidData)
	}
	if frame.InterfaceType(buf[0] & 0x0F).Plausible() {
		logs.Wiref(logs.SubResync, "resync.Inspect aligned byte0=0x%02x", buf[0])
		return Result{Aligned: true}, nil
	}
	window := opts.Window
	if window <= 0 {
		window = DefaultWindow
	}
	for i := 0; i <= 2*window; i++ {
		// 0, -1, +1, -2, +2, ...
		shift := (i + 1) / 2
		if i%2 == 1 {
			shift = -shift
		}
		if p := match(buf, shift); p != PatternNone {
			res := Result{Shift: shift, PayloadStart: frame.HeaderSize + shift, Pattern: p}
			if res.PayloadStart >= len(buf) {
				continue
			}
			logs.Debugf("resync.Inspect byte0=0x%02x shift=%d pattern=%s", buf[0], shift, p)
			return res, nil
		}
	}
	logs.Debugf("resync.Inspect byte0=0x%02x no pattern within %d bytes", buf[0], window)
	return Result{}, fmt.Errorf("%w: no frame boundary within %d bytes (byte0=0x%02x)", protocol.ErrInvalidData, window, buf[0])
}

// match reports which pattern places a header at shift. An offset-field hit
// only counts when an H4 event indicator follows the header, since the length
// field two bytes earlier can also read 0C 00.
func match(buf []byte, shift int) Pattern {
	p := frame.HeaderSize + shift
	if at(buf, offsetFieldPos+shift) == frame.HeaderSize && at(buf, offsetFieldPos+shift+1) == 0 && at(buf, p) == h4Event {
		return PatternOffsetField
	}
	if at(buf, p) == h4Event && at(buf, p+1) == leMetaEvent && at(buf, p+3) == advReportSub {
		return PatternAdvReport
	}
	return PatternNone
}

// at returns buf[i], or -1 when i is out of range.
func at(buf []byte, i int) int {
	if i < 0 || i >= len(buf) {
		return -1
	}
	return int(buf[i])
}
