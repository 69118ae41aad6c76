// Package rpc encodes the envelope that carries request, response and event
// messages inside a frame payload, and walks protobuf fields of the few
// response bodies the host decodes without a generated schema.
package rpc

import (
	"fmt"
	"math"

	"github.com/danmuck/esphost/internal/logs"
	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/protocol/varint"
)

// MsgType is envelope field 1.
type MsgType uint8

const (
	TypeInvalid MsgType = iota
	TypeReq
	TypeResp
	TypeEvent
	TypeMax
)

func (t MsgType) String() string {
	switch t {
	case TypeInvalid:
		return "invalid"
	case TypeReq:
		return "req"
	case TypeResp:
		return "resp"
	case TypeEvent:
		return "event"
	case TypeMax:
		return "max"
	default:
		return fmt.Sprintf("msg_type(%d)", uint8(t))
	}
}

// Envelope field numbers.
const (
	FieldMsgType = 1
	FieldMsgID   = 2
	FieldUID     = 3
)

// uidTag is the byte that introduces the optional uid field.
var uidTag = byte(varint.MakeTag(FieldUID, varint.Varint))

// Envelope size bounds for the scalar fields, tags included.
const (
	maxTypeLen = 2
	maxIDLen   = 4
	maxUIDLen  = 6
	// MaxOverhead bounds everything an envelope adds around a payload
	// of at most 0xFFFF bytes.
	MaxOverhead = maxTypeLen + maxIDLen + maxUIDLen + 3 + 3
)

// Rpc is the decoded envelope.
type Rpc struct {
	Type MsgType
	ID   MsgID
	// UID correlates a response with its request. Zero on events.
	UID uint32
}

func NewReq(id MsgID, uid uint32) Rpc {
	return Rpc{Type: TypeReq, ID: id, UID: uid}
}

func NewResp(id MsgID, uid uint32) Rpc {
	return Rpc{Type: TypeResp, ID: id, UID: uid}
}

func NewEvent(id MsgID) Rpc {
	return Rpc{Type: TypeEvent, ID: id}
}

func (r Rpc) String() string {
	return fmt.Sprintf("%s %s uid=%d", r.Type, r.ID, r.UID)
}

func (r Rpc) hasUID() bool {
	return r.Type != TypeEvent
}

// Size is the exact envelope length for a payload of n bytes.
func (r Rpc) Size(n int) int {
	size := 1 + varint.Size(uint64(r.Type)) + 1 + varint.Size(uint64(r.ID))
	if r.hasUID() {
		size += 1 + varint.Size(uint64(r.UID))
	}
	size += varint.Size(varint.MakeTag(uint32(r.ID), varint.LengthDelimited))
	size += varint.Size(uint64(n)) + n
	return size
}

// PutHeader writes every envelope byte that precedes a payload of n bytes.
// The payload itself goes at dst[written:].
func (r Rpc) PutHeader(dst []byte, n int) (int, error) {
	if r.ID == MsgIDInvalid {
		return 0, fmt.Errorf("%w: envelope without msg_id", protocol.ErrInvalidData)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: payload length %d", protocol.ErrInvalidData, n)
	}
	w := NewWriter(dst)
	w.Varint(FieldMsgType, uint64(r.Type))
	w.Varint(FieldMsgID, uint64(r.ID))
	if r.hasUID() {
		w.Varint(FieldUID, uint64(r.UID))
	}
	w.Tag(uint32(r.ID), varint.LengthDelimited)
	w.Raw(uint64(n))
	if err := w.Err(); err != nil {
		return 0, err
	}
	if w.Len()+n > len(dst) {
		return 0, fmt.Errorf("%w: envelope needs %d bytes, have %d", protocol.ErrCapacity, w.Len()+n, len(dst))
	}
	return w.Len(), nil
}

// ToBytes writes the envelope and payload into dst. The uid field is
// omitted for events.
func (r Rpc) ToBytes(dst []byte, payload []byte) (int, error) {
	n, err := r.PutHeader(dst, len(payload))
	if err != nil {
		return 0, err
	}
	copy(dst[n:], payload)
	return n + len(payload), nil
}

// FromBytes decodes an envelope and locates its payload at
// buf[start:start+n]. Scalar fields are read first; the payload tag is then
// derived from msg_id. A response whose payload is a lone field-1 varint of
// three bytes carries a device error code, returned as *protocol.DeviceError
// alongside the parsed envelope.
func FromBytes(buf []byte) (r Rpc, start, n int, err error) {
	if len(buf) < 2 {
		return Rpc{}, 0, 0, fmt.Errorf("%w: envelope of %d bytes", protocol.ErrInvalidData, len(buf))
	}
	rd := NewFieldReader(buf)

	msgType, err := rd.expectVarint(FieldMsgType)
	if err != nil {
		return Rpc{}, 0, 0, err
	}
	switch msgType {
	case uint64(TypeReq), uint64(TypeResp), uint64(TypeEvent):
		r.Type = MsgType(msgType)
	default:
		return Rpc{}, 0, 0, fmt.Errorf("%w: msg_type %d", protocol.ErrInvalidData, msgType)
	}

	id, err := rd.expectVarint(FieldMsgID)
	if err != nil {
		return Rpc{}, 0, 0, err
	}
	if id > math.MaxUint16 || !MsgID(id).Known() {
		return Rpc{}, 0, 0, fmt.Errorf("%w: msg_id %d", protocol.ErrInvalidData, id)
	}
	r.ID = MsgID(id)

	if rd.Remaining() > 0 && buf[rd.Pos()] == uidTag {
		uid, err := rd.expectVarint(FieldUID)
		if err != nil {
			return Rpc{}, 0, 0, err
		}
		if uid > math.MaxUint32 {
			return Rpc{}, 0, 0, fmt.Errorf("%w: uid %d", protocol.ErrInvalidData, uid)
		}
		r.UID = uint32(uid)
	}

	f, err := rd.Next()
	if err != nil {
		return Rpc{}, 0, 0, fmt.Errorf("payload tag: %w", err)
	}
	if f.Num != uint32(r.ID) || f.Type != varint.LengthDelimited {
		return Rpc{}, 0, 0, fmt.Errorf("%w: payload tag field=%d type=%s for %s", protocol.ErrInvalidData, f.Num, f.Type, r.ID)
	}
	payload, err := rd.Bytes()
	if err != nil {
		return Rpc{}, 0, 0, fmt.Errorf("payload: %w", err)
	}
	start = rd.Pos() - len(payload)
	n = len(payload)

	if r.Type == TypeResp {
		if code, ok := embeddedErrorCode(payload); ok {
			logs.Debugf("rpc.FromBytes device error msg_id=%s uid=%d code=%s", r.ID, r.UID, code)
			return r, start, n, &protocol.DeviceError{MsgID: uint16(r.ID), Code: code}
		}
	}
	return r, start, n, nil
}

func embeddedErrorCode(payload []byte) (protocol.ErrorCode, bool) {
	if len(payload) != 3 || payload[0] != byte(varint.MakeTag(1, varint.Varint)) {
		return 0, false
	}
	v, n, err := varint.Decode(payload[1:])
	if err != nil || n != 2 {
		return 0, false
	}
	return protocol.ErrorCode(v), true
}
