// Package varint implements the unsigned LEB128 integers and field tags used
// by the RPC envelope and by the nested response walker.
package varint

import (
	"fmt"

	"github.com/danmuck/esphost/internal/protocol"
	"google.golang.org/protobuf/encoding/protowire"
)

// MaxLen is the longest encoding of a uint64.
const MaxLen = 10

// WireType is the low three bits of a field tag.
type WireType uint8

const (
	Varint          WireType = WireType(protowire.VarintType)
	Fixed64         WireType = WireType(protowire.Fixed64Type)
	LengthDelimited WireType = WireType(protowire.BytesType)
	Fixed32         WireType = WireType(protowire.Fixed32Type)
)

func (w WireType) Valid() bool {
	switch w {
	case Varint, Fixed64, LengthDelimited, Fixed32:
		return true
	default:
		return false
	}
}

func (w WireType) String() string {
	switch w {
	case Varint:
		return "varint"
	case Fixed64:
		return "fixed64"
	case LengthDelimited:
		return "len"
	case Fixed32:
		return "fixed32"
	default:
		return fmt.Sprintf("wiretype(%d)", uint8(w))
	}
}

// Size returns the encoded length of v.
func Size(v uint64) int {
	return protowire.SizeVarint(v)
}

// Encode writes v into dst and returns the number of bytes written. dst is
// left untouched when it cannot hold the whole encoding.
func Encode(dst []byte, v uint64) (int, error) {
	n := protowire.SizeVarint(v)
	if n > len(dst) {
		return 0, fmt.Errorf("%w: varint needs %d bytes, have %d", protocol.ErrCapacity, n, len(dst))
	}
	protowire.AppendVarint(dst[:0:n], v)
	return n, nil
}

// Decode reads one varint from the front of src.
func Decode(src []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(src)
	if n < 0 {
		return 0, 0, fmt.Errorf("%w: varint: %v", protocol.ErrInvalidData, protowire.ParseError(n))
	}
	return v, n, nil
}

// MakeTag computes (field << 3) | wt.
func MakeTag(field uint32, wt WireType) uint64 {
	return protowire.EncodeTag(protowire.Number(field), protowire.Type(wt))
}

// DecodeTag splits a tag into its field number and wire type.
func DecodeTag(tag uint64) (uint32, WireType) {
	return uint32(tag >> 3), WireType(tag & 7)
}

// EncodeTag writes the tag for (field, wt) into dst.
func EncodeTag(dst []byte, field uint32, wt WireType) (int, error) {
	return Encode(dst, MakeTag(field, wt))
}

// ConsumeTag reads a tag and rejects field 0 and reserved wire types.
func ConsumeTag(src []byte) (uint32, WireType, int, error) {
	tag, n, err := Decode(src)
	if err != nil {
		return 0, 0, 0, err
	}
	field, wt := DecodeTag(tag)
	if field == 0 || uint64(field) > uint64(protowire.MaxValidNumber) {
		return 0, 0, 0, fmt.Errorf("%w: tag field number %d", protocol.ErrInvalidData, field)
	}
	if !wt.Valid() {
		return 0, 0, 0, fmt.Errorf("%w: tag wire type %d", protocol.ErrInvalidData, uint8(wt))
	}
	return field, wt, n, nil
}
