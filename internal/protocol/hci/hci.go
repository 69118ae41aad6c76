// Package hci decodes the Bluetooth HCI events the co-processor forwards on
// the Hci interface and builds the HCI commands the host sends back.
//
// Parsing never allocates once a Parser is built: decoded events borrow from
// the input buffer and from storage sized by Limits.
package hci

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/esphost/internal/protocol"
)

// H4 packet indicators.
const (
	H4Command uint8 = 0x01
	H4ACL     uint8 = 0x02
	H4SCO     uint8 = 0x03
	H4Event   uint8 = 0x04
	H4ISO     uint8 = 0x05
)

// CommandHeaderLen is opcode (2) plus parameter length (1).
const CommandHeaderLen = 3

// EventHeaderLen is indicator, event code and parameter length.
const EventHeaderLen = 3

// MaxParams is the largest parameter block one command or event can carry.
const MaxParams = 0xFF

// Opcode packs OGF (upper 6 bits) and OCF (lower 10 bits).
type Opcode uint16

const (
	OpSetEventMask     Opcode = 0x0C01
	OpReset            Opcode = 0x0C03
	OpLESetEventMask   Opcode = 0x2001
	OpLEReadBufferSize Opcode = 0x2002
	OpLESetRandomAddr  Opcode = 0x2005
	OpLESetScanParams  Opcode = 0x200B
	OpLESetScanEnable  Opcode = 0x200C
)

var opNames = map[Opcode]string{
	OpSetEventMask:     "SET_EVENT_MASK",
	OpReset:            "RESET",
	OpLESetEventMask:   "LE_SET_EVENT_MASK",
	OpLEReadBufferSize: "LE_READ_BUFFER_SIZE",
	OpLESetRandomAddr:  "LE_SET_RANDOM_ADDRESS",
	OpLESetScanParams:  "LE_SET_SCAN_PARAMS",
	OpLESetScanEnable:  "LE_SET_SCAN_ENABLE",
}

func (o Opcode) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("opcode(0x%04X)", uint16(o))
}

// ParseOpcode accepts a command name such as "LE_SET_SCAN_ENABLE" or a
// numeric opcode.
func ParseOpcode(raw string) (Opcode, error) {
	raw = strings.TrimSpace(raw)
	if v, err := strconv.ParseUint(raw, 0, 16); err == nil {
		return Opcode(v), nil
	}
	for op, name := range opNames {
		if strings.EqualFold(name, raw) {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown hci command %q", protocol.ErrInvalidData, raw)
}

func (o Opcode) OGF() uint8  { return uint8(o >> 10) }
func (o Opcode) OCF() uint16 { return uint16(o) & 0x03FF }

// MakeOpcode combines a group and command field.
func MakeOpcode(ogf uint8, ocf uint16) Opcode {
	return Opcode(uint16(ogf&0x3F)<<10 | ocf&0x03FF)
}

// Event codes.
const (
	EvtCommandComplete uint8 = 0x0E
	EvtCommandStatus   uint8 = 0x0F
	EvtLEMeta          uint8 = 0x3E
)

// LE meta sub-events.
const (
	SubAdvertisingReport uint8 = 0x02
)

// MakeCommand writes opcode (little-endian), parameter length and params to
// dst and returns the command length. The H4 indicator is not written: on
// the link it travels in the frame header's packet type.
func MakeCommand(dst []byte, op Opcode, params []byte) (int, error) {
	if len(params) > MaxParams {
		return 0, fmt.Errorf("%w: %d parameter bytes for %s", protocol.ErrCapacity, len(params), op)
	}
	n := CommandHeaderLen + len(params)
	if len(dst) < n {
		return 0, fmt.Errorf("%w: command needs %d bytes, have %d", protocol.ErrCapacity, n, len(dst))
	}
	binary.LittleEndian.PutUint16(dst, uint16(op))
	dst[2] = uint8(len(params))
	copy(dst[CommandHeaderLen:], params)
	return n, nil
}

// Scan types for LE Set Scan Parameters.
const (
	ScanPassive uint8 = 0x00
	ScanActive  uint8 = 0x01
)

// ScanParams is the parameter block of LE Set Scan Parameters. Interval and
// Window are in 0.625 ms units.
type ScanParams struct {
	Type         uint8
	Interval     uint16
	Window       uint16
	OwnAddrType  uint8
	FilterPolicy uint8
}

// DefaultScanParams is an active scan at 100 ms interval, 50 ms window.
func DefaultScanParams() ScanParams {
	return ScanParams{Type: ScanActive, Interval: 0x00A0, Window: 0x0050}
}

func (p ScanParams) Validate() error {
	if p.Type > ScanActive {
		return fmt.Errorf("%w: scan type %d", protocol.ErrInvalidData, p.Type)
	}
	if p.Interval < 0x0004 || p.Interval > 0x4000 {
		return fmt.Errorf("%w: scan interval 0x%04X out of range", protocol.ErrInvalidData, p.Interval)
	}
	if p.Window < 0x0004 || p.Window > p.Interval {
		return fmt.Errorf("%w: scan window 0x%04X out of range", protocol.ErrInvalidData, p.Window)
	}
	return nil
}

func (p ScanParams) Bytes() [7]byte {
	var b [7]byte
	b[0] = p.Type
	binary.LittleEndian.PutUint16(b[1:], p.Interval)
	binary.LittleEndian.PutUint16(b[3:], p.Window)
	b[5] = p.OwnAddrType
	b[6] = p.FilterPolicy
	return b
}

// ScanEnable is the parameter block of LE Set Scan Enable.
func ScanEnable(enable, filterDuplicates bool) [2]byte {
	var b [2]byte
	if enable {
		b[0] = 1
	}
	if filterDuplicates {
		b[1] = 1
	}
	return b
}
