package rpc

import (
	"errors"
	"testing"

	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/testutil/testlog"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestAppendMessageRoundTrip(t *testing.T) {
	testlog.Start(t)
	buf := make([]byte, 64)
	req := NewReq(ReqWifiSetMaxTxPower, 5)
	n, err := req.AppendMessage(buf, wrapperspb.Int32(78))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	got, start, l, err := FromBytes(buf[:n])
	if err != nil {
		t.Fatalf("from bytes: %v", err)
	}
	if got != req {
		t.Fatalf("envelope mismatch: %v", got)
	}
	var out wrapperspb.Int32Value
	if err := UnmarshalPayload(buf[start:start+l], &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.GetValue() != 78 {
		t.Fatalf("value=%d", out.GetValue())
	}
}

func TestMarshalPayloadMatchesDeviceErrorShape(t *testing.T) {
	testlog.Start(t)
	buf := make([]byte, 8)
	n, err := MarshalPayload(buf, wrapperspb.UInt32(uint32(protocol.CodeWifiNotInit)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if n != 3 || buf[0] != 0x08 {
		t.Fatalf("unexpected encoding % X", buf[:n])
	}
	frame := make([]byte, 32)
	m, err := NewResp(RespWifiStart, 1).ToBytes(frame, buf[:n])
	if err != nil {
		t.Fatalf("to bytes: %v", err)
	}
	if _, _, _, err := FromBytes(frame[:m]); !errors.Is(err, protocol.ErrDeviceError) {
		t.Fatalf("expected ErrDeviceError, got %v", err)
	}
}

func TestMarshalPayloadCapacity(t *testing.T) {
	testlog.Start(t)
	if _, err := MarshalPayload(make([]byte, 2), wrapperspb.String("too long for two bytes")); !errors.Is(err, protocol.ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
}

func TestUnmarshalPayloadInvalid(t *testing.T) {
	testlog.Start(t)
	var out wrapperspb.StringValue
	if err := UnmarshalPayload([]byte{0x0A, 0x05, 'a'}, &out); !errors.Is(err, protocol.ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}
