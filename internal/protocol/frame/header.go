// Package frame encodes the 12-byte ESP-Hosted header that prefixes every
// unit on the link, computes its wrapping byte-sum checksum, and draws
// sequence numbers from an injected counter.
package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/danmuck/esphost/internal/protocol"
)

// HeaderSize is the fixed header length and the only legal payload offset.
const HeaderSize = 12

// MaxPayload is the largest payload the 16-bit length field can describe.
const MaxPayload = 0xFFFF

// Byte offsets within the header.
const (
	offIface    = 0
	offFlags    = 1
	offLength   = 2
	offOffset   = 4
	offChecksum = 6
	offSeq      = 8
	offThrottle = 10
	offPktType  = 11
)

// FlagMoreFragment marks a frame whose payload continues in the next frame.
const FlagMoreFragment uint8 = 0x01

// InterfaceType is the low nibble of header byte 0.
type InterfaceType uint8

const (
	IfInvalid InterfaceType = iota
	IfStation
	IfAccessPoint
	IfSerial
	IfHci
	IfPrivate
	IfTest
	IfEthernet
	IfMax
)

var ifNames = [...]string{"invalid", "sta", "ap", "serial", "hci", "priv", "test", "eth", "max"}

func (t InterfaceType) String() string {
	if int(t) < len(ifNames) {
		return ifNames[t]
	}
	return fmt.Sprintf("iface(%d)", uint8(t))
}

// Known reports whether t is a defined variant, Invalid and Max included.
func (t InterfaceType) Known() bool {
	return t <= IfMax
}

// Plausible reports whether t names a real interface a frame can travel on.
func (t InterfaceType) Plausible() bool {
	return t >= IfStation && t <= IfEthernet
}

// PacketType is header byte 11. Its meaning depends on the interface: on Hci
// it carries the HCI packet kind, elsewhere it marks special control frames.
type PacketType uint8

const (
	PacketNone       PacketType = 0x00
	PacketPrivInit   PacketType = 0x22
	PacketSlaveEvent PacketType = 0x33

	PacketHciCommand PacketType = 0x01
	PacketHciACL     PacketType = 0x02
	PacketHciSCO     PacketType = 0x03
	PacketHciEvent   PacketType = 0x04
	PacketHciISO     PacketType = 0x05
)

// ParsePacketType validates b as a discriminator for iface.
func ParsePacketType(iface InterfaceType, b uint8) (PacketType, error) {
	p := PacketType(b)
	if iface == IfHci {
		if p >= PacketHciCommand && p <= PacketHciISO {
			return p, nil
		}
		return 0, fmt.Errorf("%w: hci packet type 0x%02x", protocol.ErrInvalidData, b)
	}
	switch p {
	case PacketNone, PacketPrivInit, PacketSlaveEvent:
		return p, nil
	default:
		return 0, fmt.Errorf("%w: packet type 0x%02x on %s", protocol.ErrInvalidData, b, iface)
	}
}

// Throttle is the 2-bit flow control command in byte 10.
type Throttle uint8

const (
	ThrottleNoChange Throttle = iota
	ThrottlePermitSend
	ThrottlePauseSend
)

func (t Throttle) String() string {
	switch t {
	case ThrottleNoChange:
		return "no-change"
	case ThrottlePermitSend:
		return "permit"
	case ThrottlePauseSend:
		return "pause"
	default:
		return fmt.Sprintf("throttle(%d)", uint8(t))
	}
}

// Header is the decoded 12-byte frame header.
type Header struct {
	IfType   InterfaceType
	IfNum    uint8
	Flags    uint8
	Length   uint16
	Offset   uint16
	Checksum uint16
	SeqNum   uint16
	Throttle Throttle
	PktType  PacketType
}

// NewHeader builds an outbound header with the next sequence number from seq.
// Length is filled in by Seal.
func NewHeader(seq *SeqCounter, iface InterfaceType, pkt PacketType) (Header, error) {
	if !iface.Plausible() {
		return Header{}, fmt.Errorf("%w: cannot send on interface %s", protocol.ErrInvalidData, iface)
	}
	if _, err := ParsePacketType(iface, uint8(pkt)); err != nil {
		return Header{}, err
	}
	h := Header{IfType: iface, Offset: HeaderSize, PktType: pkt}
	if seq != nil {
		h.SeqNum = seq.Next()
	}
	return h, nil
}

// Validate checks the fields that do not fit their wire width or enum.
func (h Header) Validate() error {
	if !h.IfType.Known() {
		return fmt.Errorf("%w: interface type %d", protocol.ErrInvalidData, uint8(h.IfType))
	}
	if h.IfNum > 0x0F {
		return fmt.Errorf("%w: interface number %d", protocol.ErrInvalidData, h.IfNum)
	}
	if h.Throttle > ThrottlePauseSend {
		return fmt.Errorf("%w: throttle %d", protocol.ErrInvalidData, h.Throttle)
	}
	_, err := ParsePacketType(h.IfType, uint8(h.PktType))
	return err
}

// EncodeHeader packs h. The checksum field is written as given.
func EncodeHeader(h Header) [HeaderSize]byte {
	var b [HeaderSize]byte
	putHeader(b[:], h)
	return b
}

// PutHeader validates h and packs it into the front of dst.
func PutHeader(dst []byte, h Header) error {
	if len(dst) < HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, have %d", protocol.ErrCapacity, HeaderSize, len(dst))
	}
	if err := h.Validate(); err != nil {
		return err
	}
	putHeader(dst, h)
	return nil
}

func putHeader(b []byte, h Header) {
	b[offIface] = (h.IfNum&0x0F)<<4 | uint8(h.IfType)&0x0F
	b[offFlags] = h.Flags
	binary.LittleEndian.PutUint16(b[offLength:], h.Length)
	binary.LittleEndian.PutUint16(b[offOffset:], h.Offset)
	binary.LittleEndian.PutUint16(b[offChecksum:], h.Checksum)
	binary.LittleEndian.PutUint16(b[offSeq:], h.SeqNum)
	b[offThrottle] = uint8(h.Throttle) & 0x03
	b[offPktType] = uint8(h.PktType)
}

// DecodeHeader parses the first 12 bytes of b.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: short header: %d bytes", protocol.ErrInvalidData, len(b))
	}
	iface := InterfaceType(b[offIface] & 0x0F)
	if !iface.Known() {
		return Header{}, fmt.Errorf("%w: interface type %d", protocol.ErrInvalidData, uint8(iface))
	}
	pkt, err := ParsePacketType(iface, b[offPktType])
	if err != nil {
		return Header{}, err
	}
	throttle := Throttle(b[offThrottle] & 0x03)
	if throttle > ThrottlePauseSend {
		return Header{}, fmt.Errorf("%w: throttle %d", protocol.ErrInvalidData, uint8(throttle))
	}
	return Header{
		IfType:   iface,
		IfNum:    b[offIface] >> 4,
		Flags:    b[offFlags],
		Length:   binary.LittleEndian.Uint16(b[offLength:]),
		Offset:   binary.LittleEndian.Uint16(b[offOffset:]),
		Checksum: binary.LittleEndian.Uint16(b[offChecksum:]),
		SeqNum:   binary.LittleEndian.Uint16(b[offSeq:]),
		Throttle: throttle,
		PktType:  pkt,
	}, nil
}
