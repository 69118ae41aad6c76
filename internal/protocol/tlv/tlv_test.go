package tlv

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/testutil/testlog"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	testlog.Start(t)
	data := []byte{0x08, 0x01, 0x10, 0x9E, 0x02, 0x18, 0x01}
	buf := make([]byte, 64)
	n, err := Encode(buf, protocol.EndpointResponse, data)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if n != Overhead+len(data) {
		t.Fatalf("encoded %d bytes, want %d", n, Overhead+len(data))
	}
	want := append([]byte{0x01, 0x06, 0x00}, "RPCRsp"...)
	want = append(want, 0x02, byte(len(data)), 0x00)
	want = append(want, data...)
	if !bytes.Equal(buf[:n], want) {
		t.Fatalf("layout mismatch:\n got % X\nwant % X", buf[:n], want)
	}

	msg, err := Decode(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !msg.IsResponse() || msg.IsEvent() {
		t.Fatalf("unexpected endpoint %q", msg.Endpoint)
	}
	if !bytes.Equal(msg.Data, data) {
		t.Fatalf("data mismatch: % X", msg.Data)
	}
}

func TestEncodeInPlaceMatchesEncode(t *testing.T) {
	testlog.Start(t)
	data := []byte("payload")
	a := make([]byte, 32)
	n, err := Encode(a, protocol.EndpointEvent, data)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b := make([]byte, 32)
	copy(b[Overhead:], data)
	m, err := EncodeInPlace(b, protocol.EndpointEvent, len(data))
	if err != nil {
		t.Fatalf("encode in place: %v", err)
	}
	if !bytes.Equal(a[:n], b[:m]) {
		t.Fatalf("in-place encoding differs:\n% X\n% X", a[:n], b[:m])
	}
}

func TestDecodeSkipsUnknownRecords(t *testing.T) {
	testlog.Start(t)
	buf := make([]byte, 64)
	n, _ := PutField(buf, Field{Type: 0x7F, Value: []byte{0xAA}})
	m, err := Encode(buf[n:], protocol.EndpointEvent, []byte{0x01})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	msg, err := Decode(buf[:n+m])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !msg.IsEvent() {
		t.Fatalf("expected event endpoint, got %q", msg.Endpoint)
	}
}

func TestDecodeMalformedIsDeterministic(t *testing.T) {
	testlog.Start(t)
	cases := map[string][]byte{
		"short header": {0x01, 0x06},
		"overrun":      {0x01, 0x06, 0x00, 'R', 'P'},
		"no data":      append([]byte{0x01, 0x06, 0x00}, "RPCRsp"...),
		"no endpoint":  {0x02, 0x01, 0x00, 0x08},
	}
	for name, in := range cases {
		if _, err := Decode(in); !errors.Is(err, protocol.ErrInvalidData) {
			t.Fatalf("%s: expected ErrInvalidData, got %v", name, err)
		}
	}
}

func TestEncodeCapacity(t *testing.T) {
	testlog.Start(t)
	if _, err := Encode(make([]byte, 10), protocol.EndpointResponse, []byte{1}); !errors.Is(err, protocol.ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
	if _, err := EncodeInPlace(make([]byte, Overhead), protocol.EndpointResponse, 1); !errors.Is(err, protocol.ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
}

func FuzzDecode(f *testing.F) {
	buf := make([]byte, 32)
	n, _ := Encode(buf, protocol.EndpointResponse, []byte{0x08, 0x02})
	f.Add(buf[:n])
	f.Add([]byte{0x01, 0xFF, 0xFF})

	f.Fuzz(func(t *testing.T, data []byte) {
		msg, err := Decode(data)
		if err != nil {
			return
		}
		if len(msg.Data) > len(data) {
			t.Fatalf("data longer than input")
		}
	})
}
