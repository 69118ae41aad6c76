// Package tlv wraps RPC bytes for the co-processor's serial interface:
// an endpoint-name record followed by a data record, each [type][len LE16][value].
package tlv

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/danmuck/esphost/internal/protocol"
)

// HeaderLen is the size of one record's type and length prefix.
const HeaderLen = 3

// Record type IDs.
const (
	TypeEndpointName uint8 = 0x01
	TypeData         uint8 = 0x02
)

// Overhead is the wrapping cost for an endpoint name of the standard length.
const Overhead = 2*HeaderLen + len(protocol.EndpointResponse)

// Field is one record. Value borrows from the decoded buffer.
type Field struct {
	Type  uint8
	Value []byte
}

// Message is a decoded serial unit.
type Message struct {
	Endpoint []byte
	Data     []byte
}

// IsEvent reports whether the message arrived on the event endpoint.
func (m Message) IsEvent() bool {
	return bytes.Equal(m.Endpoint, []byte(protocol.EndpointEvent))
}

func (m Message) IsResponse() bool {
	return bytes.Equal(m.Endpoint, []byte(protocol.EndpointResponse))
}

// PutField writes one record into dst.
func PutField(dst []byte, f Field) (int, error) {
	n := HeaderLen + len(f.Value)
	if len(f.Value) > 0xFFFF {
		return 0, fmt.Errorf("%w: tlv value %d bytes", protocol.ErrCapacity, len(f.Value))
	}
	if n > len(dst) {
		return 0, fmt.Errorf("%w: tlv record needs %d bytes, have %d", protocol.ErrCapacity, n, len(dst))
	}
	dst[0] = f.Type
	binary.LittleEndian.PutUint16(dst[1:3], uint16(len(f.Value)))
	copy(dst[HeaderLen:], f.Value)
	return n, nil
}

// Encode writes the endpoint and data records into dst.
func Encode(dst []byte, endpoint string, data []byte) (int, error) {
	n, err := PutField(dst, Field{Type: TypeEndpointName, Value: []byte(endpoint)})
	if err != nil {
		return 0, err
	}
	m, err := PutField(dst[n:], Field{Type: TypeData, Value: data})
	if err != nil {
		return 0, err
	}
	return n + m, nil
}

// EncodeInPlace wraps data that already sits at dst[Overhead:] for an
// endpoint name of the standard length, without copying it.
func EncodeInPlace(dst []byte, endpoint string, dataLen int) (int, error) {
	if len(endpoint) != len(protocol.EndpointResponse) {
		return 0, fmt.Errorf("%w: endpoint %q", protocol.ErrInvalidData, endpoint)
	}
	total := Overhead + dataLen
	if dataLen < 0 || dataLen > 0xFFFF || total > len(dst) {
		return 0, fmt.Errorf("%w: tlv unit needs %d bytes, have %d", protocol.ErrCapacity, total, len(dst))
	}
	dst[0] = TypeEndpointName
	binary.LittleEndian.PutUint16(dst[1:3], uint16(len(endpoint)))
	copy(dst[HeaderLen:], endpoint)
	i := HeaderLen + len(endpoint)
	dst[i] = TypeData
	binary.LittleEndian.PutUint16(dst[i+1:i+3], uint16(dataLen))
	return total, nil
}

// Next decodes the record at the front of buf.
func Next(buf []byte) (Field, int, error) {
	if len(buf) < HeaderLen {
		return Field{}, 0, fmt.Errorf("%w: short tlv header", protocol.ErrInvalidData)
	}
	l := int(binary.LittleEndian.Uint16(buf[1:3]))
	if len(buf)-HeaderLen < l {
		return Field{}, 0, fmt.Errorf("%w: tlv type 0x%02x length %d overruns %d bytes", protocol.ErrInvalidData, buf[0], l, len(buf)-HeaderLen)
	}
	return Field{Type: buf[0], Value: buf[HeaderLen : HeaderLen+l]}, HeaderLen + l, nil
}

// Decode walks every record in buf. Unknown record types are skipped.
func Decode(buf []byte) (Message, error) {
	var msg Message
	var haveEndpoint, haveData bool
	for i := 0; i < len(buf); {
		f, n, err := Next(buf[i:])
		if err != nil {
			return Message{}, err
		}
		i += n
		switch f.Type {
		case TypeEndpointName:
			msg.Endpoint = f.Value
			haveEndpoint = true
		case TypeData:
			msg.Data = f.Value
			haveData = true
		}
	}
	if !haveEndpoint {
		return Message{}, fmt.Errorf("%w: tlv missing endpoint name", protocol.ErrInvalidData)
	}
	if !haveData {
		return Message{}, fmt.Errorf("%w: tlv missing data", protocol.ErrInvalidData)
	}
	return msg, nil
}
