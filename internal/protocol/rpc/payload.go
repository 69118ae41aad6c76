package rpc

import (
	"fmt"

	"github.com/danmuck/esphost/internal/protocol"
	"google.golang.org/protobuf/proto"
)

// MarshalPayload encodes m into dst for use as an envelope payload.
func MarshalPayload(dst []byte, m proto.Message) (int, error) {
	size := proto.Size(m)
	if size > len(dst) {
		return 0, fmt.Errorf("%w: payload needs %d bytes, have %d", protocol.ErrCapacity, size, len(dst))
	}
	out, err := proto.MarshalOptions{Deterministic: true}.MarshalAppend(dst[:0:size], m)
	if err != nil {
		return 0, fmt.Errorf("%w: marshal %T: %v", protocol.ErrInvalidData, m, err)
	}
	if len(out) != size {
		return 0, fmt.Errorf("%w: marshal %T wrote %d bytes, sized %d", protocol.ErrInvalidData, m, len(out), size)
	}
	return size, nil
}

// UnmarshalPayload decodes an envelope payload into m.
func UnmarshalPayload(payload []byte, m proto.Message) error {
	if err := proto.Unmarshal(payload, m); err != nil {
		return fmt.Errorf("%w: unmarshal %T: %v", protocol.ErrInvalidData, m, err)
	}
	return nil
}

// AppendMessage writes an envelope whose payload is m.
func (r Rpc) AppendMessage(dst []byte, m proto.Message) (int, error) {
	size := proto.Size(m)
	n, err := r.PutHeader(dst, size)
	if err != nil {
		return 0, err
	}
	written, err := MarshalPayload(dst[n:], m)
	if err != nil {
		return 0, err
	}
	return n + written, nil
}
